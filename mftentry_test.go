package ntfs

import (
	"testing"
)

func buildStandardInformationContent(flags uint32) []byte {
	content := make([]byte, standardInformationSizeBasic)
	content[32] = byte(flags)
	content[33] = byte(flags >> 8)
	content[34] = byte(flags >> 16)
	content[35] = byte(flags >> 24)

	return content
}

func TestParseMftEntry_FixupSpliceRoundTrips(t *testing.T) {
	si := buildStandardInformationContent(uint32(FileAttributeArchive))
	attrBytes := buildResidentAttributeBytes(AttributeTypeStandardInformation, 0, si)
	attrBytes = append(attrBytes, mftAttributesEndMarker()...)

	recordSize := uint64(1024)
	sectorSize := uint64(512)

	usedSize := uint32(mftEntryHeaderSize) + 2 + uint32(recordSize/sectorSize)*2 + uint32(len(attrBytes))

	raw := buildMftEntryBytes(recordSize, sectorSize, mftSignatureFile, 0x1, usedSize, attrBytes)

	entry, err := parseMftEntry(raw, 7, sectorSize)
	if err != nil {
		t.Fatalf("did not expect an error: %v", err)
	}

	if !entry.IsValid() {
		t.Fatalf("expected a valid entry")
	}

	if !entry.IsUsed() {
		t.Fatalf("expected an in-use entry")
	}

	contents, err := entry.Contents()
	if err != nil {
		t.Fatalf("did not expect an error reading contents: %v", err)
	}

	if len(contents) != 1 {
		t.Fatalf("expected exactly one attribute, got %d", len(contents))
	}

	if contents[0].TypeID != AttributeTypeStandardInformation {
		t.Fatalf("attribute type not correct: %v", contents[0].TypeID)
	}

	b, err := contents[0].Builder(nil, 0)
	if err != nil {
		t.Fatalf("did not expect an error building content: %v", err)
	}

	vf, err := b.Open()
	if err != nil {
		t.Fatalf("did not expect an error opening: %v", err)
	}

	out := make([]byte, standardInformationSizeBasic)

	err = ReadExact(vf, out)
	if err != nil {
		t.Fatalf("did not expect an error reading: %v", err)
	}

	decoded, err := parseStandardInformation(out)
	if err != nil {
		t.Fatalf("did not expect an error decoding: %v", err)
	}

	if decoded.Flags != FileAttributeArchive {
		t.Fatalf("flags not correct: %v", decoded.Flags)
	}
}

func TestParseMftEntry_UnusedEntryIsAnError(t *testing.T) {
	recordSize := uint64(1024)
	sectorSize := uint64(512)

	raw := buildMftEntryBytes(recordSize, sectorSize, mftSignatureFile, 0, 0xFFFFFFFF, []byte{})

	_, err := parseMftEntry(raw, 9, sectorSize)
	if err == nil {
		t.Fatalf("expected an error for an unused entry")
	}
}

func TestParseMftEntry_DamagedSignatureIsNotValid(t *testing.T) {
	recordSize := uint64(1024)
	sectorSize := uint64(512)

	raw := buildMftEntryBytes(recordSize, sectorSize, mftSignatureBaad, 0, uint32(mftEntryHeaderSize)+2+uint32(recordSize/sectorSize)*2, []byte{})

	entry, err := parseMftEntry(raw, 11, sectorSize)
	if err != nil {
		t.Fatalf("did not expect an error: %v", err)
	}

	if entry.IsValid() {
		t.Fatalf("a BAAD-signature entry must not be considered valid")
	}

	if !entry.IsDamaged() {
		t.Fatalf("expected IsDamaged to be true")
	}
}
