package ntfs

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dsoprea/go-logging"
)

// NameSpace identifies which of NTFS's four filename namespaces a FileName
// attribute belongs to.
type NameSpace uint8

// The namespace values NTFS defines.
const (
	NameSpacePosix   NameSpace = 0
	NameSpaceWin32   NameSpace = 1
	NameSpaceDos     NameSpace = 2
	NameSpaceDosWin32 NameSpace = 3
)

// String implements fmt.Stringer.
func (ns NameSpace) String() string {
	switch ns {
	case NameSpacePosix:
		return "Posix"
	case NameSpaceWin32:
		return "Win32"
	case NameSpaceDos:
		return "Dos"
	case NameSpaceDosWin32:
		return "DosWin32"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(ns))
	}
}

const fileNameHeaderSize = 66

// FileName is one decoded $FILE_NAME attribute.
type FileName struct {
	ParentMftEntryID uint64
	ParentSequence   uint16
	CreationTime     time.Time
	ModificationTime time.Time
	MftModificationTime time.Time
	AccessedTime     time.Time
	AllocatedSize    uint64
	RealSize         uint64
	Flags            FileAttributes
	ReparseValue     uint32
	NameSpace        NameSpace
	FileName         string
}

// parseFileName decodes a $FILE_NAME content buffer.
func parseFileName(content []byte) (fn *FileName, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	if len(content) < fileNameHeaderSize {
		log.Panicf("%s", ErrMftAttributeNameSpaceInvalidSize)
	}

	nameLength := content[64]
	nameSpaceRaw := content[65]

	if nameSpaceRaw > uint8(NameSpaceDosWin32) {
		log.Panicf("%s: %d", ErrMftAttributeUnknownNameSpace, nameSpaceRaw)
	}

	nameBytes := int(nameLength) * 2
	if nameBytes > len(content)-fileNameHeaderSize {
		log.Panicf("%s", ErrMftAttributeNameSpaceInvalidSize)
	}

	name, err := DecodeUtf16Le(content[fileNameHeaderSize : fileNameHeaderSize+nameBytes])
	log.PanicIf(err)

	fn = &FileName{
		ParentMftEntryID:    padU64(content[0:6]),
		ParentSequence:      binary.LittleEndian.Uint16(content[6:8]),
		CreationTime:        TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[8:16])),
		ModificationTime:    TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[16:24])),
		MftModificationTime: TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[24:32])),
		AccessedTime:        TimeFromWindowsTimestamp(binary.LittleEndian.Uint64(content[32:40])),
		AllocatedSize:       binary.LittleEndian.Uint64(content[40:48]),
		RealSize:            binary.LittleEndian.Uint64(content[48:56]),
		Flags:               FileAttributes(binary.LittleEndian.Uint32(content[56:60])),
		ReparseValue:        binary.LittleEndian.Uint32(content[60:64]),
		NameSpace:           NameSpace(nameSpaceRaw),
		FileName:            name,
	}

	return fn, nil
}

// preferFileName implements the namespace-preference rule: the first
// FileName seen wins unless a later one arrives in the Win32 or DosWin32
// namespace, which always takes over.
func preferFileName(current *FileName, candidate *FileName) *FileName {
	if current == nil {
		return candidate
	}

	if candidate.NameSpace == NameSpaceWin32 || candidate.NameSpace == NameSpaceDosWin32 {
		return candidate
	}

	return current
}
