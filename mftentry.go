package ntfs

import (
	"encoding/binary"
	"fmt"

	"github.com/dsoprea/go-logging"
)

const mftEntryHeaderSize = 42

var (
	mftSignatureFile = [4]byte{'F', 'I', 'L', 'E'}
	mftSignatureBaad = [4]byte{'B', 'A', 'A', 'D'}
)

// MftEntry is one decoded, fixup-corrected record of the Master File Table.
type MftEntry struct {
	EntryIndex uint64

	signature             [4]byte
	fixupArrayOffset      uint16
	fixupArrayEntryCount  uint16
	Lsn                   uint64
	Sequence              uint16
	LinkCount             uint16
	FirstAttributeOffset  uint16
	Flags                 uint16
	UsedSize              uint32
	AllocatedSize         uint32
	FileReferenceID       uint64
	FileReferenceSequence uint16
	NextAttributeID       uint16

	data         []byte
	entryBuilder VFileBuilder
}

// parseMftEntry decodes and fixup-splices one record_size-byte raw MFT
// record read from entryIndex's offset in the MFT stream.
func parseMftEntry(raw []byte, entryIndex uint64, sectorSize uint64) (me *MftEntry, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	if uint64(len(raw)) < mftEntryHeaderSize {
		log.Panicf("mft entry shorter than its header")
	}

	me = &MftEntry{EntryIndex: entryIndex}

	copy(me.signature[:], raw[0:4])
	me.fixupArrayOffset = binary.LittleEndian.Uint16(raw[4:6])
	me.fixupArrayEntryCount = binary.LittleEndian.Uint16(raw[6:8])
	me.Lsn = binary.LittleEndian.Uint64(raw[8:16])
	me.Sequence = binary.LittleEndian.Uint16(raw[16:18])
	me.LinkCount = binary.LittleEndian.Uint16(raw[18:20])
	me.FirstAttributeOffset = binary.LittleEndian.Uint16(raw[20:22])
	me.Flags = binary.LittleEndian.Uint16(raw[22:24])
	me.UsedSize = binary.LittleEndian.Uint32(raw[24:28])
	me.AllocatedSize = binary.LittleEndian.Uint32(raw[28:32])
	me.FileReferenceID = padU64(raw[32:38])
	me.FileReferenceSequence = binary.LittleEndian.Uint16(raw[38:40])
	me.NextAttributeID = binary.LittleEndian.Uint16(raw[40:42])

	if me.signature != mftSignatureFile && me.signature != mftSignatureBaad {
		return nil, log.Wrap(fmt.Errorf("%w: entry %d", ErrMftInvalidSignature, entryIndex))
	}

	if me.UsedSize == 0xFFFFFFFF {
		return nil, log.Wrap(fmt.Errorf("%w: entry %d", ErrMftUnusedEntry, entryIndex))
	}

	me.data = spliceFixups(raw, me.fixupArrayOffset, me.fixupArrayEntryCount, sectorSize)
	me.entryBuilder = NewMemoryVFileBuilderFromBytes(me.data)

	return me, nil
}

// spliceFixups replaces the last two bytes of every sectorSize-wide stride
// of raw with the real bytes recorded in the fixup array, undoing the
// update-sequence protection NTFS applies before writing a record to disk.
func spliceFixups(raw []byte, fixupArrayOffset, fixupArrayEntryCountRaw uint16, sectorSize uint64) []byte {
	fixedUp := make([]byte, len(raw))
	copy(fixedUp, raw)

	entryCount := fixupArrayEntryCountRaw
	if entryCount > 0 {
		entryCount--
	}

	for i := uint16(0); uint64(i)*sectorSize+sectorSize <= uint64(len(raw)) && i < entryCount; i++ {
		strideEnd := uint64(i)*sectorSize + sectorSize

		realOffset := uint64(fixupArrayOffset) + 2 + uint64(i)*2
		if realOffset+2 > uint64(len(raw)) {
			break
		}

		copy(fixedUp[strideEnd-2:strideEnd], raw[realOffset:realOffset+2])
	}

	return fixedUp
}

// IsValid reports whether the entry carries the "FILE" signature.
func (me *MftEntry) IsValid() bool {
	return me.signature == mftSignatureFile
}

// IsDamaged reports whether the entry carries the "BAAD" signature, meaning
// NTFS itself flagged this record as corrupt.
func (me *MftEntry) IsDamaged() bool {
	return me.signature == mftSignatureBaad
}

// IsUsed reports whether the entry's in-use flag is set.
func (me *MftEntry) IsUsed() bool {
	return me.Flags&0x1 != 0
}

// IsDirectory reports whether the entry's directory flag is set.
func (me *MftEntry) IsDirectory() bool {
	return me.Flags&0x2 != 0
}

// Contents decodes every attribute record in the entry, in on-disk order,
// stopping at the first parse error, the end-of-attributes sentinel, or a
// zero-length attribute (which would otherwise loop forever).
func (me *MftEntry) Contents() (attributes []*MftAttribute, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	attributes = make([]*MftAttribute, 0)

	offset := uint64(me.FirstAttributeOffset)

	for offset < uint64(me.UsedSize) {
		ma, err := parseMftAttribute(me.data, offset, me.entryBuilder)
		if err == ErrMftAttributesEnd {
			break
		}

		log.PanicIf(err)

		if ma.Length == 0 {
			break
		}

		attributes = append(attributes, ma)
		offset += uint64(ma.Length)
	}

	return attributes, nil
}

// DataAttribute returns the entry's first unnamed or named Data attribute.
// It is used only to bootstrap $MFT itself, whose Data attribute holds the
// whole table.
func (me *MftEntry) DataAttribute() (ma *MftAttribute, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	attributes, err := me.Contents()
	log.PanicIf(err)

	for _, ma := range attributes {
		if ma.TypeID == AttributeTypeData {
			return ma, nil
		}
	}

	return nil, log.Wrap(fmt.Errorf("%w: data", ErrMftAttributeNotFound))
}
