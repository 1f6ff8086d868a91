package ntfs

import (
	"time"

	"github.com/dsoprea/go-logging"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf16leDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
)

// DecodeUtf16Le decodes raw, a byte-count (not character-count) of UTF-16LE
// data, trimming any trailing NUL characters. Every on-disk NTFS name
// (FileName, VolumeName, AttributeList item names) uses this convention.
func DecodeUtf16Le(raw []byte) (s string, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	decoded, err := utf16leDecoder.Bytes(raw)
	log.PanicIf(err)

	s = string(decoded)

	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}

	return s, nil
}

// windowsEpochOffset is the number of 100ns ticks between the Windows
// FILETIME epoch (1601-01-01) and the Unix epoch (1970-01-01).
const windowsEpochOffset = 116444736000000000

// TimeFromWindowsTimestamp converts a FILETIME-style tick count, as found on
// every NTFS timestamp field, to a time.Time.
func TimeFromWindowsTimestamp(ticks uint64) time.Time {
	if ticks < windowsEpochOffset {
		return time.Unix(0, 0).UTC()
	}

	unixNanos := (ticks - windowsEpochOffset) * 100

	return time.Unix(0, int64(unixNanos)).UTC()
}
