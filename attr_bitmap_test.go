package ntfs

import (
	"reflect"
	"testing"
)

func TestDecodeBitmapUnallocatedRanges(t *testing.T) {
	content := []byte{0xf0, 0x0f} // 0b11110000, 0b00001111

	ranges := decodeBitmapUnallocatedRanges(content)

	expected := []ClusterRange{
		{Start: 0, End: 3},
		{Start: 12, End: 15},
	}

	if !reflect.DeepEqual(ranges, expected) {
		t.Fatalf("ranges not correct: %v", ranges)
	}
}

func TestDecodeBitmapUnallocatedRanges_AllAllocated(t *testing.T) {
	content := []byte{0xff, 0xff}

	ranges := decodeBitmapUnallocatedRanges(content)

	if len(ranges) != 0 {
		t.Fatalf("expected no unallocated ranges, got %v", ranges)
	}
}

func TestDecodeBitmapUnallocatedRanges_TrailingRunAtEnd(t *testing.T) {
	content := []byte{0xff, 0x00}

	ranges := decodeBitmapUnallocatedRanges(content)

	expected := []ClusterRange{
		{Start: 8, End: 15},
	}

	if !reflect.DeepEqual(ranges, expected) {
		t.Fatalf("ranges not correct: %v", ranges)
	}
}
