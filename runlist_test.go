package ntfs

import (
	"reflect"
	"testing"
)

func TestDecodeRunList_MixedSparseAndNegativeDelta(t *testing.T) {
	raw := []byte{
		0x11, 5, 10, // length=5, offset=+10 -> LCN 10
		0x01, 3, // length=3, sparse hole
		0x11, 2, 0xFC, // length=2, offset=-4 -> LCN 10-4=6
		0x00, // terminator
	}

	runs := decodeRunList(raw)

	expected := []Run{
		{Offset: 10, Length: 5},
		{Offset: 0, Length: 3},
		{Offset: 6, Length: 2},
	}

	if !reflect.DeepEqual(runs, expected) {
		t.Fatalf("runs not correct: %v", runs)
	}
}

func TestDecodeRunList_EmptyIsNoRuns(t *testing.T) {
	runs := decodeRunList([]byte{})

	if len(runs) != 0 {
		t.Fatalf("expected no runs")
	}
}

func TestDecodeRunList_StopsOnZeroLength(t *testing.T) {
	raw := []byte{0x11, 0, 10}

	runs := decodeRunList(raw)

	if len(runs) != 0 {
		t.Fatalf("expected a zero-length run to terminate decoding, got %v", runs)
	}
}

func TestPadI64_SignExtendsOnHighBit(t *testing.T) {
	if v := padI64([]byte{0xFC}); v != -4 {
		t.Fatalf("expected -4, got %d", v)
	}

	if v := padI64([]byte{0x0A}); v != 10 {
		t.Fatalf("expected 10, got %d", v)
	}
}

func TestPadU64_ZeroExtends(t *testing.T) {
	if v := padU64([]byte{0xFF}); v != 0xFF {
		t.Fatalf("expected 255, got %d", v)
	}
}
