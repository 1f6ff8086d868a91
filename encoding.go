package ntfs

import (
	"encoding/binary"
)

// defaultEncoding is the byte order every restruct.Unpack call in this
// package uses. NTFS, like exFAT, is little-endian throughout.
var defaultEncoding = binary.LittleEndian
