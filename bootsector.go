package ntfs

import (
	"fmt"

	"github.com/dsoprea/go-logging"
	"github.com/go-restruct/restruct"
)

const (
	bootSectorSize = 512
)

// bootSectorRaw mirrors the on-disk NTFS BIOS parameter block exactly,
// including the unused stretches, so that a single restruct.Unpack call
// decodes the whole sector.
type bootSectorRaw struct {
	Jump                          [3]byte
	OemID                         [8]byte
	BytesPerSector                uint16
	SectorsPerCluster             uint8
	Unused0                       [26]byte
	TotalSectors                  uint64
	MftLogicalClusterNumber       uint64
	MftMirrorLogicalClusterNumber uint64
	ClustersPerMftRecord          int8
	Unused1                       [3]byte
	ClustersPerIndexRecord        int8
	Unused2                       [3]byte
	VolumeSerialNumber            uint64
	Checksum                      uint32
	Unused3                       [426]byte
	EndOfSectorMarker             uint16
}

// BootSector is the decoded and validated $Boot sector.
type BootSector struct {
	raw bootSectorRaw
}

// NewBootSector reads and validates the first 512 bytes of vf.
func NewBootSector(vf VFile) (bs *BootSector, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	raw := make([]byte, bootSectorSize)

	err = ReadExact(vf, raw)
	log.PanicIf(err)

	var bsr bootSectorRaw

	err = restruct.Unpack(raw, defaultEncoding, &bsr)
	log.PanicIf(err)

	bs = &BootSector{raw: bsr}

	err = bs.validate()
	log.PanicIf(err)

	return bs, nil
}

func (bs *BootSector) validate() (err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	r := bs.raw

	if r.EndOfSectorMarker != 0xAA55 {
		log.Panicf("%s: end of sector", ErrBootSectorInvalid)
	}

	if r.BytesPerSector == 0 || r.BytesPerSector%512 != 0 {
		log.Panicf("%s: bytes per sector", ErrBootSectorInvalid)
	}

	if r.SectorsPerCluster == 0 {
		log.Panicf("%s: sectors per cluster", ErrBootSectorInvalid)
	}

	if r.TotalSectors == 0 {
		log.Panicf("%s: total sectors", ErrBootSectorInvalid)
	}

	if r.MftLogicalClusterNumber > r.TotalSectors && r.MftMirrorLogicalClusterNumber > r.TotalSectors {
		log.Panicf("%s: mft logical cluster number", ErrBootSectorInvalid)
	}

	if r.ClustersPerMftRecord == 0 {
		log.Panicf("%s: clusters per mft record", ErrBootSectorInvalid)
	}

	if r.ClustersPerIndexRecord == 0 {
		log.Panicf("%s: clusters per index record", ErrBootSectorInvalid)
	}

	return nil
}

// OemID returns the raw 8-byte OEM identifier (typically "NTFS    ").
func (bs *BootSector) OemID() string {
	return string(bs.raw.OemID[:])
}

// BytesPerSector is the sector size in bytes.
func (bs *BootSector) BytesPerSector() uint64 {
	return uint64(bs.raw.BytesPerSector)
}

// SectorsPerCluster is the cluster size expressed in sectors.
func (bs *BootSector) SectorsPerCluster() uint64 {
	return uint64(bs.raw.SectorsPerCluster)
}

// ClusterSize is the cluster size in bytes.
func (bs *BootSector) ClusterSize() uint64 {
	return bs.SectorsPerCluster() * bs.BytesPerSector()
}

// TotalSectors is the size of the volume expressed in sectors.
func (bs *BootSector) TotalSectors() uint64 {
	return bs.raw.TotalSectors
}

// MftLogicalClusterNumber is the cluster at which $MFT begins.
func (bs *BootSector) MftLogicalClusterNumber() uint64 {
	return bs.raw.MftLogicalClusterNumber
}

// MftMirrorLogicalClusterNumber is the cluster at which $MFTMirr begins.
func (bs *BootSector) MftMirrorLogicalClusterNumber() uint64 {
	return bs.raw.MftMirrorLogicalClusterNumber
}

// VolumeSerialNumber is the volume's 64-bit serial number.
func (bs *BootSector) VolumeSerialNumber() uint64 {
	return bs.raw.VolumeSerialNumber
}

func recordSizeFromEncodedByte(encoded int8, clusterSize uint64) uint64 {
	if encoded > 0 {
		return uint64(encoded) * clusterSize
	}

	return uint64(1) << uint(-encoded)
}

// MftRecordSize is the size, in bytes, of a single MFT entry.
func (bs *BootSector) MftRecordSize() uint64 {
	return recordSizeFromEncodedByte(bs.raw.ClustersPerMftRecord, bs.ClusterSize())
}

// IndexRecordSize is the size, in bytes, of a single index record.
func (bs *BootSector) IndexRecordSize() uint64 {
	return recordSizeFromEncodedByte(bs.raw.ClustersPerIndexRecord, bs.ClusterSize())
}

// Size is the span of the volume that the boot sector itself is considered
// to occupy, for attribute-tagging purposes: the first 16 sectors.
func (bs *BootSector) Size() uint64 {
	return bs.BytesPerSector() * 16
}

// String implements fmt.Stringer.
func (bs *BootSector) String() string {
	return fmt.Sprintf(
		"BootSector<OEM=[%s] BYTES-PER-SECTOR=(%d) CLUSTER-SIZE=(%d) MFT-RECORD-SIZE=(%d) TOTAL-SECTORS=(%d)>",
		bs.OemID(), bs.BytesPerSector(), bs.ClusterSize(), bs.MftRecordSize(), bs.TotalSectors())
}
