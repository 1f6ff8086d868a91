package ntfs

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dsoprea/go-logging"
)

// defaultSectorSize is assumed when a caller hands over $MFT without a
// boot sector to read the real geometry from.
const defaultSectorSize = 512

// MftTable caches the Master File Table in memory and resolves entry
// indices to decoded, fixup-corrected MftEntry records.
type MftTable struct {
	partitionBuilder VFileBuilder
	clusterSize      uint64
	sectorSize       uint64
	recordSize       uint64

	masterMftBuilder VFileBuilder
	numberOfEntries  uint64
	masterEntry      *MftEntry
}

// NewMftTableFromPartition bootstraps the table by reading $MFT's own entry
// (entry 0) directly off the partition at the cluster the boot sector
// names, then slurping $MFT's Data attribute into memory so every later
// Entry() lookup is a plain memory read.
func NewMftTableFromPartition(partitionBuilder VFileBuilder, bs *BootSector) (t *MftTable, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	clusterSize := bs.ClusterSize()
	recordSize := bs.MftRecordSize()
	sectorSize := bs.BytesPerSector()

	masterMftOffset := bs.MftLogicalClusterNumber() * clusterSize

	pf, err := partitionBuilder.Open()
	log.PanicIf(err)

	_, err = pf.Seek(int64(masterMftOffset), io.SeekStart)
	log.PanicIf(err)

	raw := make([]byte, recordSize)

	err = ReadExact(pf, raw)
	log.PanicIf(err)

	masterEntry, err := parseMftEntry(raw, 0, sectorSize)
	log.PanicIf(err)

	dataAttribute, err := masterEntry.DataAttribute()
	log.PanicIf(err)

	dataBuilder, err := dataAttribute.Builder(partitionBuilder, clusterSize)
	log.PanicIf(err)

	masterMftBuilder, err := NewMemoryVFileBuilder(dataBuilder)
	log.PanicIf(err)

	t = &MftTable{
		partitionBuilder: partitionBuilder,
		clusterSize:      clusterSize,
		sectorSize:        sectorSize,
		recordSize:       recordSize,
		masterMftBuilder: masterMftBuilder,
		numberOfEntries:  masterMftBuilder.Size() / recordSize,
		masterEntry:      masterEntry,
	}

	return t, nil
}

// NewMftTableFromMft bootstraps the table directly from a caller-supplied
// $MFT stream, for the common forensics case where the enclosing partition
// isn't available and only $MFT itself was carved out or exported. If bs is
// nil, the record size is guessed from entry 0's own AllocatedSize field
// (which NTFS always sets to the record size) and the sector size is
// assumed to be the common 512-byte default, since neither is recoverable
// from $MFT alone. Because no partitionBuilder is known here, non-resident
// attributes on entries this table returns still need a real
// partitionBuilder passed explicitly to their own Builder() call.
func NewMftTableFromMft(mftBuilder VFileBuilder, bs *BootSector) (t *MftTable, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	var clusterSize, sectorSize, recordSize uint64

	if bs != nil {
		clusterSize = bs.ClusterSize()
		recordSize = bs.MftRecordSize()
		sectorSize = bs.BytesPerSector()
	} else {
		sectorSize = defaultSectorSize

		probeVf, err := mftBuilder.Open()
		log.PanicIf(err)

		probe := make([]byte, mftEntryHeaderSize)

		err = ReadExact(probeVf, probe)
		log.PanicIf(err)

		recordSize = uint64(binary.LittleEndian.Uint32(probe[28:32]))
		if recordSize == 0 {
			log.Panicf("%s", ErrMftRecordSizeInvalid)
		}
	}

	vf, err := mftBuilder.Open()
	log.PanicIf(err)

	raw := make([]byte, recordSize)

	err = ReadExact(vf, raw)
	log.PanicIf(err)

	masterEntry, err := parseMftEntry(raw, 0, sectorSize)
	log.PanicIf(err)

	t = &MftTable{
		partitionBuilder: nil,
		clusterSize:      clusterSize,
		sectorSize:        sectorSize,
		recordSize:       recordSize,
		masterMftBuilder: mftBuilder,
		numberOfEntries:  mftBuilder.Size() / recordSize,
		masterEntry:      masterEntry,
	}

	return t, nil
}

// NumberOfEntries is the entry count $MFT's own size implies.
func (t *MftTable) NumberOfEntries() uint64 {
	return t.numberOfEntries
}

// ClusterSize is the volume's cluster size, needed by every non-resident
// attribute this table's entries expose.
func (t *MftTable) ClusterSize() uint64 {
	return t.clusterSize
}

// PartitionBuilder is the raw volume stream non-resident runs resolve
// against.
func (t *MftTable) PartitionBuilder() VFileBuilder {
	return t.partitionBuilder
}

// MasterEntry is $MFT's own entry (index 0).
func (t *MftTable) MasterEntry() *MftEntry {
	return t.masterEntry
}

// Entry decodes and returns the MFT entry at entryIndex.
func (t *MftTable) Entry(entryIndex uint64) (me *MftEntry, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	if entryIndex == 0 {
		return t.masterEntry, nil
	}

	if entryIndex >= t.numberOfEntries {
		log.Panicf("%s", fmt.Errorf("entry %d is past the end of the table (%d entries)", entryIndex, t.numberOfEntries))
	}

	vf, err := t.masterMftBuilder.Open()
	log.PanicIf(err)

	_, err = vf.Seek(int64(entryIndex*t.recordSize), io.SeekStart)
	log.PanicIf(err)

	raw := make([]byte, t.recordSize)

	err = ReadExact(vf, raw)
	log.PanicIf(err)

	me, err = parseMftEntry(raw, entryIndex, t.sectorSize)
	log.PanicIf(err)

	return me, nil
}
