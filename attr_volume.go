package ntfs

import (
	"fmt"

	"github.com/dsoprea/go-logging"
)

// VolumeInformation is the decoded $VOLUME_INFORMATION attribute.
type VolumeInformation struct {
	MajorVersion uint8
	MinorVersion uint8
}

// parseVolumeInformation decodes a $VOLUME_INFORMATION content buffer. The
// version fields sit at content offset 8, after an 8-byte reserved prefix.
func parseVolumeInformation(content []byte) (vi *VolumeInformation, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	if len(content) < 10 {
		log.Panicf("volume information content too small")
	}

	vi = &VolumeInformation{
		MajorVersion: content[8],
		MinorVersion: content[9],
	}

	return vi, nil
}

// Description returns a human-readable release name for the volume's NTFS
// version, matching the well-known major.minor pairs Windows has shipped.
func (vi *VolumeInformation) Description() string {
	switch {
	case vi.MajorVersion == 1 && (vi.MinorVersion == 1 || vi.MinorVersion == 2):
		return fmt.Sprintf("%d.%d (Windows NT4)", vi.MajorVersion, vi.MinorVersion)
	case vi.MajorVersion == 2:
		return fmt.Sprintf("%d.%d (Windows 2000 Beta)", vi.MajorVersion, vi.MinorVersion)
	case vi.MajorVersion == 3 && vi.MinorVersion == 0:
		return "3.0 (Windows 2000)"
	case vi.MajorVersion == 3 && vi.MinorVersion == 1:
		return "3.1 (Windows XP, 2003, Vista)"
	default:
		return fmt.Sprintf("%d.%d", vi.MajorVersion, vi.MinorVersion)
	}
}

// parseVolumeName decodes a $VOLUME_NAME attribute, which is UTF-16LE over
// the whole of its content with no length prefix.
func parseVolumeName(content []byte) (string, error) {
	return DecodeUtf16Le(content)
}
