package ntfs

import (
	"bytes"
	"encoding/binary"
)

// buildBootSectorBytes assembles a syntactically valid 512-byte $Boot
// sector for the given geometry, for use by tests that do not have (and do
// not need) a real volume image.
func buildBootSectorBytes(bytesPerSector uint16, sectorsPerCluster uint8, totalSectors uint64, mftCluster uint64, mftMirrorCluster uint64, clustersPerMftRecord int8, clustersPerIndexRecord int8) []byte {
	raw := make([]byte, bootSectorSize)

	copy(raw[3:11], []byte("NTFS    "))
	binary.LittleEndian.PutUint16(raw[0x0B:0x0D], bytesPerSector)
	raw[0x0D] = sectorsPerCluster
	binary.LittleEndian.PutUint64(raw[0x28:0x30], totalSectors)
	binary.LittleEndian.PutUint64(raw[0x30:0x38], mftCluster)
	binary.LittleEndian.PutUint64(raw[0x38:0x40], mftMirrorCluster)
	raw[0x40] = byte(clustersPerMftRecord)
	raw[0x44] = byte(clustersPerIndexRecord)
	binary.LittleEndian.PutUint16(raw[510:512], 0xAA55)

	return raw
}

// buildMftEntryBytes builds a fixup-protected raw MFT record of recordSize
// bytes containing the given already-encoded attribute bytes. The update
// sequence number (1) is written into the last two bytes of every sector,
// and the displaced real bytes are recorded in the fixup array, so
// spliceFixups round-trips back to attributeBytes unmodified.
func buildMftEntryBytes(recordSize uint64, sectorSize uint64, signature [4]byte, flags uint16, usedSize uint32, attributeBytes []byte) []byte {
	raw := make([]byte, recordSize)

	sectorCount := recordSize / sectorSize
	fixupArrayOffset := uint16(mftEntryHeaderSize)
	fixupArrayEntryCount := uint16(sectorCount + 1)

	copy(raw[0:4], signature[:])
	binary.LittleEndian.PutUint16(raw[4:6], fixupArrayOffset)
	binary.LittleEndian.PutUint16(raw[6:8], fixupArrayEntryCount)
	binary.LittleEndian.PutUint16(raw[22:24], flags)
	binary.LittleEndian.PutUint32(raw[24:28], usedSize)
	binary.LittleEndian.PutUint32(raw[28:32], uint32(recordSize))
	binary.LittleEndian.PutUint16(raw[20:22], uint16(mftEntryHeaderSize)+2+uint16(sectorCount)*2)

	bodyOffset := uint64(mftEntryHeaderSize) + 2 + sectorCount*2
	copy(raw[bodyOffset:], attributeBytes)

	usn := uint16(1)
	binary.LittleEndian.PutUint16(raw[fixupArrayOffset:fixupArrayOffset+2], usn)

	for i := uint64(0); i < sectorCount; i++ {
		strideEnd := i*sectorSize + sectorSize

		real := make([]byte, 2)
		copy(real, raw[strideEnd-2:strideEnd])

		entryOffset := uint64(fixupArrayOffset) + 2 + i*2
		copy(raw[entryOffset:entryOffset+2], real)

		binary.LittleEndian.PutUint16(raw[strideEnd-2:strideEnd], usn)
	}

	return raw
}

// buildResidentAttributeBytes encodes one resident attribute header plus
// content, for stitching into a test MFT entry via buildMftEntryBytes.
func buildResidentAttributeBytes(typeID NtfsAttributeType, attributeID uint16, content []byte) []byte {
	headerSize := uint32(mftAttributeHeaderSize + residentBodySize)
	length := headerSize + uint32(len(content))

	// Keep attributes 8-byte aligned, as real NTFS records do.
	if length%8 != 0 {
		length += 8 - length%8
	}

	buf := make([]byte, length)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(typeID))
	binary.LittleEndian.PutUint32(buf[4:8], length)
	buf[8] = 0 // resident
	buf[9] = 0 // name size
	binary.LittleEndian.PutUint16(buf[10:12], uint16(mftAttributeHeaderSize+residentBodySize))
	binary.LittleEndian.PutUint16(buf[14:16], attributeID)

	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(content)))
	binary.LittleEndian.PutUint16(buf[20:22], uint16(mftAttributeHeaderSize+residentBodySize))

	copy(buf[mftAttributeHeaderSize+residentBodySize:], content)

	return buf
}

// mftAttributesEndMarker is the 0xFFFFFFFF sentinel terminating an entry's
// attribute list, padded with zeros to 8 bytes.
func mftAttributesEndMarker() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], 0xFFFFFFFF)

	return buf
}

// buildAttributeListItemBytes encodes one unnamed $ATTRIBUTE_LIST item
// record, for stitching into a resident AttributeList attribute's content.
func buildAttributeListItemBytes(typeID NtfsAttributeType, mftEntryID uint64, attributeID uint16) []byte {
	buf := make([]byte, attributeListItemHeaderSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(typeID))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(attributeListItemHeaderSize))

	buf[16] = byte(mftEntryID)
	buf[17] = byte(mftEntryID >> 8)
	buf[18] = byte(mftEntryID >> 16)
	buf[19] = byte(mftEntryID >> 24)
	buf[20] = byte(mftEntryID >> 32)
	buf[21] = byte(mftEntryID >> 40)

	binary.LittleEndian.PutUint16(buf[24:26], attributeID)

	return buf
}

func encodeUtf16LeString(s string) []byte {
	var buf bytes.Buffer

	for _, r := range s {
		buf.WriteByte(byte(r))
		buf.WriteByte(byte(r >> 8))
	}

	return buf.Bytes()
}
