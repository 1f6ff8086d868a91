package ntfs

import (
	"fmt"

	"github.com/dsoprea/go-logging"
	"github.com/go-restruct/restruct"
)

// NtfsAttributeType identifies the kind of content an MFT attribute holds.
type NtfsAttributeType uint32

// The attribute type-codes NTFS defines.
const (
	AttributeTypeStandardInformation  NtfsAttributeType = 0x10
	AttributeTypeAttributeList        NtfsAttributeType = 0x20
	AttributeTypeFileName             NtfsAttributeType = 0x30
	AttributeTypeObjectID             NtfsAttributeType = 0x40
	AttributeTypeSecurityDescriptor   NtfsAttributeType = 0x50
	AttributeTypeVolumeName           NtfsAttributeType = 0x60
	AttributeTypeVolumeInformation    NtfsAttributeType = 0x70
	AttributeTypeData                 NtfsAttributeType = 0x80
	AttributeTypeIndexRoot            NtfsAttributeType = 0x90
	AttributeTypeIndexAllocation      NtfsAttributeType = 0xA0
	AttributeTypeBitmap               NtfsAttributeType = 0xB0
	AttributeTypeReparsePoint         NtfsAttributeType = 0xC0
	AttributeTypeEaInformation        NtfsAttributeType = 0xD0
	AttributeTypeEa                   NtfsAttributeType = 0xE0
	AttributeTypePropertySet          NtfsAttributeType = 0xF0
	AttributeTypeLoggedUtilityStream  NtfsAttributeType = 0xF6
)

var attributeTypeNames = map[NtfsAttributeType]string{
	AttributeTypeStandardInformation: "StandardInformation",
	AttributeTypeAttributeList:       "AttributeList",
	AttributeTypeFileName:            "FileName",
	AttributeTypeObjectID:            "ObjectID",
	AttributeTypeSecurityDescriptor:  "SecurityDescriptor",
	AttributeTypeVolumeName:          "VolumeName",
	AttributeTypeVolumeInformation:   "VolumeInformation",
	AttributeTypeData:                "Data",
	AttributeTypeIndexRoot:           "IndexRoot",
	AttributeTypeIndexAllocation:     "IndexAllocation",
	AttributeTypeBitmap:              "Bitmap",
	AttributeTypeReparsePoint:        "ReparsePoint",
	AttributeTypeEaInformation:       "EaInformation",
	AttributeTypeEa:                  "Ea",
	AttributeTypePropertySet:         "PropertySet",
	AttributeTypeLoggedUtilityStream: "LoggedUtilityStream",
}

// String implements fmt.Stringer.
func (t NtfsAttributeType) String() string {
	if name, found := attributeTypeNames[t]; found {
		return name
	}

	return fmt.Sprintf("Unknown(0x%x)", uint32(t))
}

const mftAttributeHeaderSize = 16

type mftAttributeHeaderRaw struct {
	TypeID          uint32
	Length          uint32
	NonResidentFlag uint8
	NameSize        uint8
	NameOffset      uint16
	Flags           uint16
	AttributeID     uint16
}

const residentBodySize = 6

type residentBodyRaw struct {
	ContentSize   uint32
	ContentOffset uint16
}

const nonResidentBodySize = 48

type nonResidentBodyRaw struct {
	VncStart                uint64
	VncEnd                  uint64
	RunListOffset           uint16
	CompressionBlockSize    uint16
	Unused                  uint32
	ContentAllocatedSize    uint64
	ContentActualSize       uint64
	ContentInitializedSize  uint64
}

// MftAttribute is one decoded attribute record from an MFT entry.
type MftAttribute struct {
	TypeID          NtfsAttributeType
	Length          uint32
	NonResident     bool
	Flags           uint16
	AttributeID     uint16
	Name            string
	resident        *residentBodyRaw
	nonResident     *nonResidentBodyRaw
	runs            []Run
	entryBuilder    VFileBuilder
	attributeOffset uint64
}

// IsCompressed reports whether the non-resident compression flag is set.
func (ma *MftAttribute) IsCompressed() bool {
	return ma.NonResident && ma.Flags&0x0001 != 0
}

// IsSparse reports whether the non-resident sparse flag is set.
func (ma *MftAttribute) IsSparse() bool {
	return ma.NonResident && ma.Flags&0x8000 != 0
}

// IsEncrypted reports whether the non-resident encrypted flag is set.
func (ma *MftAttribute) IsEncrypted() bool {
	return ma.NonResident && ma.Flags&0x4000 != 0
}

// ContentSize is the logical size of the attribute's content, regardless of
// residency.
func (ma *MftAttribute) ContentSize() uint64 {
	if !ma.NonResident {
		return uint64(ma.resident.ContentSize)
	}

	return ma.nonResident.ContentActualSize
}

// parseMftAttribute decodes one attribute record starting at offset within
// data, the fully fixed-up bytes of an MFT entry. It returns
// ErrMftAttributesEnd, unwrapped, when it encounters the type-id sentinel.
func parseMftAttribute(data []byte, offset uint64, entryBuilder VFileBuilder) (*MftAttribute, error) {
	if offset+4 > uint64(len(data)) {
		return nil, ErrMftAttributesEnd
	}

	// Peek the type-id before committing to a full header decode, since
	// 0xFFFFFFFF is a valid sentinel but not a valid restruct-able header.
	typeIDPeek := defaultEncoding.Uint32(data[offset : offset+4])
	if typeIDPeek == 0xFFFFFFFF {
		return nil, ErrMftAttributesEnd
	}

	if offset+mftAttributeHeaderSize > uint64(len(data)) {
		return nil, ErrMftAttributesEnd
	}

	var header mftAttributeHeaderRaw

	err := restruct.Unpack(data[offset:offset+mftAttributeHeaderSize], defaultEncoding, &header)
	if err != nil {
		return nil, log.Wrap(err)
	}

	if _, found := attributeTypeNames[NtfsAttributeType(header.TypeID)]; !found {
		return nil, log.Wrap(fmt.Errorf("%w: 0x%x", ErrMftAttributeUnknownType, header.TypeID))
	}

	var nonResident bool

	switch header.NonResidentFlag {
	case 0:
		nonResident = false
	case 1:
		nonResident = true
	default:
		return nil, log.Wrap(fmt.Errorf("%w: non_resident_flag=0x%x", ErrMftAttributeDataType, header.NonResidentFlag))
	}

	ma := &MftAttribute{
		TypeID:          NtfsAttributeType(header.TypeID),
		Length:          header.Length,
		NonResident:     nonResident,
		Flags:           header.Flags,
		AttributeID:     header.AttributeID,
		entryBuilder:    entryBuilder,
		attributeOffset: offset,
	}

	if header.NameSize > 0 {
		nameStart := offset + uint64(header.NameOffset)
		nameEnd := nameStart + uint64(header.NameSize)*2

		if nameEnd > uint64(len(data)) {
			return nil, log.Wrap(fmt.Errorf("%w: name", ErrMftAttributeDataType))
		}

		name, err := DecodeUtf16Le(data[nameStart:nameEnd])
		if err != nil {
			return nil, log.Wrap(err)
		}

		ma.Name = name
	}

	bodyOffset := offset + mftAttributeHeaderSize

	if !ma.NonResident {
		if bodyOffset+residentBodySize > uint64(len(data)) {
			return nil, log.Wrap(ErrMftAttributeDataType)
		}

		var rb residentBodyRaw

		err := restruct.Unpack(data[bodyOffset:bodyOffset+residentBodySize], defaultEncoding, &rb)
		if err != nil {
			return nil, log.Wrap(err)
		}

		ma.resident = &rb
	} else {
		if bodyOffset+nonResidentBodySize > uint64(len(data)) {
			return nil, log.Wrap(ErrMftAttributeDataType)
		}

		var nrb nonResidentBodyRaw

		err := restruct.Unpack(data[bodyOffset:bodyOffset+nonResidentBodySize], defaultEncoding, &nrb)
		if err != nil {
			return nil, log.Wrap(err)
		}

		ma.nonResident = &nrb

		runListStart := offset + uint64(nrb.RunListOffset)
		if runListStart > uint64(len(data)) {
			return nil, log.Wrap(ErrMftAttributeDataType)
		}

		runListEnd := offset + uint64(header.Length)
		if runListEnd > uint64(len(data)) {
			runListEnd = uint64(len(data))
		}

		ma.runs = decodeRunList(data[runListStart:runListEnd])
	}

	return ma, nil
}

// Builder returns a VFileBuilder over the attribute's content.
//
// For a resident attribute this maps directly into the MFT entry's bytes.
// For a non-resident attribute it stitches the run-list together against
// partitionBuilder (real clusters) and zeroBuilder (sparse holes); it fails
// with ErrNonResidentWithoutVolume if partitionBuilder is nil, which is the
// case for every entry of a table built by NewMftTableFromMft.
func (ma *MftAttribute) Builder(partitionBuilder VFileBuilder, clusterSize uint64) (b VFileBuilder, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	if !ma.NonResident {
		size := uint64(ma.resident.ContentSize)
		contentOffset := ma.attributeOffset + uint64(ma.resident.ContentOffset)

		if contentOffset > ma.entryBuilder.Size() {
			log.Panicf("%s", ErrResidentAttributeOffsetTooLarge)
		}

		if contentOffset+size > ma.entryBuilder.Size() {
			log.Panicf("%s", ErrResidentAttributeContentTooLarge)
		}

		ranges := NewFileRanges()

		if size > 0 {
			err = ranges.Push(0, size, contentOffset, ma.entryBuilder)
			log.PanicIf(err)
		}

		return NewMappedVFileBuilder(ranges), nil
	}

	if partitionBuilder == nil {
		log.Panicf("%s", ErrNonResidentWithoutVolume)
	}

	zeroBuilder := NewZeroVFileBuilder()
	ranges := NewFileRanges()

	totalSize := ma.nonResident.VncStart * clusterSize

	for _, run := range ma.runs {
		runSize := run.Length * clusterSize

		if run.Offset == 0 {
			err = ranges.Push(totalSize, totalSize+runSize, 0, zeroBuilder)
			log.PanicIf(err)
		} else {
			srcOffset := run.Offset * clusterSize

			if srcOffset+runSize > partitionBuilder.Size() {
				log.Panicf("%s", ErrNonResidentAttributeOffsetTooLarge)
			}

			err = ranges.Push(totalSize, totalSize+runSize, srcOffset, partitionBuilder)
			log.PanicIf(err)
		}

		totalSize += runSize
	}

	return NewMappedVFileBuilder(ranges), nil
}
