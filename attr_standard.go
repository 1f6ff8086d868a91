package ntfs

import (
	"encoding/binary"
	"time"

	"github.com/dsoprea/go-logging"
)

// FileAttributes mirrors the Windows FILE_ATTRIBUTE_* bitflags, shared by
// StandardInformation and FileName.
type FileAttributes uint32

// The flag bits FileAttributes decodes.
const (
	FileAttributeReadonly   FileAttributes = 0x0001
	FileAttributeHidden     FileAttributes = 0x0002
	FileAttributeSystem     FileAttributes = 0x0004
	FileAttributeDirectory  FileAttributes = 0x0010
	FileAttributeArchive    FileAttributes = 0x0020
	FileAttributeDevice     FileAttributes = 0x0040
	FileAttributeNormal     FileAttributes = 0x0080
	FileAttributeTemporary  FileAttributes = 0x0100
	FileAttributeSparse     FileAttributes = 0x0200
	FileAttributeReparse    FileAttributes = 0x0400
	FileAttributeCompressed FileAttributes = 0x0800
	FileAttributeOffline    FileAttributes = 0x1000
	FileAttributeNotIndexed FileAttributes = 0x2000
	FileAttributeEncrypted  FileAttributes = 0x4000
)

// IsDirectory reports the directory bit.
func (fa FileAttributes) IsDirectory() bool {
	return fa&FileAttributeDirectory != 0
}

const (
	standardInformationSizeBasic    = 48
	standardInformationSizeExtended = 72
)

// StandardInformation is the decoded $STANDARD_INFORMATION attribute.
type StandardInformation struct {
	CreationTime     time.Time
	AlteredTime      time.Time
	MftAlteredTime   time.Time
	AccessedTime     time.Time
	Flags            FileAttributes
	VersionMaximumNumber uint32
	VersionNumber    uint32
	ClassID          uint32
	OwnerID          *uint32
	SecurityID       *uint32
	QuotaCharged     *uint64
	Usn              *uint64
}

// parseStandardInformation decodes a $STANDARD_INFORMATION content buffer.
// Only the 48-byte (pre-NTFS 3.0) and 72-byte (with quota/usn) forms are
// accepted; anything else is treated as corrupt rather than guessed at.
func parseStandardInformation(content []byte) (si *StandardInformation, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	size := len(content)

	if size != standardInformationSizeBasic && size != standardInformationSizeExtended {
		log.Panicf("%s", ErrMftAttributeStandardInvalidSize)
	}

	si = &StandardInformation{
		CreationTime:         TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[0:8])),
		AlteredTime:          TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[8:16])),
		MftAlteredTime:       TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[16:24])),
		AccessedTime:         TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[24:32])),
		Flags:                FileAttributes(binary.LittleEndian.Uint32(content[32:36])),
		VersionMaximumNumber: binary.LittleEndian.Uint32(content[36:40]),
		VersionNumber:        binary.LittleEndian.Uint32(content[40:44]),
		ClassID:              binary.LittleEndian.Uint32(content[44:48]),
	}

	if size == standardInformationSizeExtended {
		ownerID := binary.LittleEndian.Uint32(content[48:52])
		securityID := binary.LittleEndian.Uint32(content[52:56])
		quotaCharged := binary.LittleEndian.Uint64(content[56:64])
		usn := binary.LittleEndian.Uint64(content[64:72])

		si.OwnerID = &ownerID
		si.SecurityID = &securityID
		si.QuotaCharged = &quotaCharged
		si.Usn = &usn
	}

	return si, nil
}
