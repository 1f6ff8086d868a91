package ntfs

import (
	"encoding/binary"
)

// Run is one decoded entry of a non-resident attribute's data-run list.
// Offset is the absolute logical cluster number the run starts at; a Run
// with Offset == 0 denotes a sparse hole of Length clusters rather than a
// real reference to cluster zero (cluster zero can never itself start a
// run, since the boot sector always occupies it).
type Run struct {
	Offset uint64
	Length uint64
}

// padU64 zero-extends a little-endian byte slice of up to 8 bytes.
func padU64(b []byte) uint64 {
	var buf [8]byte
	copy(buf[:], b)

	return binary.LittleEndian.Uint64(buf[:])
}

// padI64 sign-extends a little-endian byte slice of up to 8 bytes, based on
// the high bit of its most-significant (last) byte.
func padI64(b []byte) int64 {
	var buf [8]byte

	if len(b) > 0 && b[len(b)-1]&0x80 != 0 {
		for i := range buf {
			buf[i] = 0xFF
		}
	}

	copy(buf[:], b)

	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// decodeRunList decodes an NTFS data-run list: a sequence of
// (length-size|offset-size) header bytes each followed by a little-endian
// run length and a signed little-endian cluster delta, terminated by a
// zero header byte or by running out of data.
func decodeRunList(data []byte) []Run {
	runs := make([]Run, 0)

	pos := 0
	var previousOffset int64

	for pos < len(data) {
		header := data[pos]
		pos++

		if header == 0 {
			break
		}

		lengthSize := int(header & 0x0f)
		offsetSize := int(header >> 4)

		if lengthSize == 0 || lengthSize > 8 || offsetSize > 8 {
			break
		}

		if pos+lengthSize > len(data) {
			break
		}

		runLength := padU64(data[pos : pos+lengthSize])
		pos += lengthSize

		var runOffset int64

		if offsetSize > 0 {
			if pos+offsetSize > len(data) {
				break
			}

			runOffset = padI64(data[pos : pos+offsetSize])
			pos += offsetSize
		}

		if runLength == 0 {
			break
		}

		previousOffset += runOffset

		emittedOffset := uint64(0)
		if offsetSize > 0 {
			emittedOffset = uint64(previousOffset)
		}

		runs = append(runs, Run{
			Offset: emittedOffset,
			Length: runLength,
		})
	}

	return runs
}
