package ntfs

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/dsoprea/go-logging"
)

// VFile is a seekable byte stream. It is the minimal surface every builder
// in this package produces, whether the bytes ultimately come from a
// partition image, a stitched run-list, or an all-zero sparse hole.
type VFile interface {
	io.Reader
	io.Seeker
}

// VFileBuilder knows the size of the stream it produces and can hand out a
// fresh, independently-seekable VFile on demand. A builder is cheap to hold
// onto; opening it is the only operation that touches the underlying
// resource.
type VFileBuilder interface {
	Open() (VFile, error)
	Size() uint64
}

// ReadExact fills buf completely or returns an error, including io.EOF if
// the stream ends early.
func ReadExact(vf VFile, buf []byte) (err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	_, err = io.ReadFull(vf, buf)
	log.PanicIf(err)

	return nil
}

// OsFileVFileBuilder produces a fresh *os.File handle on every Open() call,
// so concurrent readers never share a seek cursor.
type OsFileVFileBuilder struct {
	filepath string
	size     uint64
}

// NewOsFileVFileBuilder stats filepath once and remembers its size.
func NewOsFileVFileBuilder(filepath string) (b *OsFileVFileBuilder, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	fi, err := os.Stat(filepath)
	log.PanicIf(err)

	b = &OsFileVFileBuilder{
		filepath: filepath,
		size:     uint64(fi.Size()),
	}

	return b, nil
}

// Open implements VFileBuilder.
func (b *OsFileVFileBuilder) Open() (VFile, error) {
	f, err := os.Open(b.filepath)
	if err != nil {
		return nil, log.Wrap(err)
	}

	return f, nil
}

// Size implements VFileBuilder.
func (b *OsFileVFileBuilder) Size() uint64 {
	return b.size
}

// fileRange maps a contiguous span of a synthetic stream, [DstStart,DstEnd),
// onto an offset within another builder's stream.
type fileRange struct {
	DstStart  uint64
	DstEnd    uint64
	SrcOffset uint64
	Builder   VFileBuilder
}

// FileRanges accumulates the contiguous, non-overlapping spans that make up
// a mapped stream. Runs must be pushed in destination order; this is how
// resident attribute content, run-list decode, and the freespace view build
// their streams.
type FileRanges struct {
	ranges []fileRange
}

// NewFileRanges returns an empty range list.
func NewFileRanges() *FileRanges {
	return &FileRanges{
		ranges: make([]fileRange, 0),
	}
}

// Push appends a range covering [dstStart, dstEnd) of the destination
// stream, sourced from srcOffset in builder. dstStart must equal the end of
// the previously-pushed range (or 0, for the first range).
func (fr *FileRanges) Push(dstStart, dstEnd, srcOffset uint64, builder VFileBuilder) (err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	if dstEnd <= dstStart {
		log.Panicf("range is empty or inverted")
	}

	expectedStart := uint64(0)
	if len(fr.ranges) > 0 {
		expectedStart = fr.ranges[len(fr.ranges)-1].DstEnd
	}

	if dstStart != expectedStart {
		log.Panicf("range is not contiguous with the previous range")
	}

	fr.ranges = append(fr.ranges, fileRange{
		DstStart:  dstStart,
		DstEnd:    dstEnd,
		SrcOffset: srcOffset,
		Builder:   builder,
	})

	return nil
}

// Size returns the total length of the mapped stream.
func (fr *FileRanges) Size() uint64 {
	if len(fr.ranges) == 0 {
		return 0
	}

	return fr.ranges[len(fr.ranges)-1].DstEnd
}

// MappedVFileBuilder stitches together ranges from other builders into a
// single logical stream. This is how resident attribute content, decoded
// run-lists, and the freespace view are represented. Fixed-up MFT entries
// are plain in-memory copies instead, and Data attributes reached through
// an AttributeList are not stitched into one stream: each keeps its own
// builder.
type MappedVFileBuilder struct {
	ranges *FileRanges
}

// NewMappedVFileBuilder wraps a finished FileRanges list.
func NewMappedVFileBuilder(ranges *FileRanges) *MappedVFileBuilder {
	return &MappedVFileBuilder{
		ranges: ranges,
	}
}

// Size implements VFileBuilder.
func (b *MappedVFileBuilder) Size() uint64 {
	return b.ranges.Size()
}

// Open implements VFileBuilder.
func (b *MappedVFileBuilder) Open() (VFile, error) {
	return &mappedVFile{
		ranges: b.ranges.ranges,
		opened: make(map[VFileBuilder]VFile),
		size:   b.ranges.Size(),
	}, nil
}

type mappedVFile struct {
	ranges []fileRange
	opened map[VFileBuilder]VFile
	pos    uint64
	size   uint64
}

func (mv *mappedVFile) rangeFor(pos uint64) (fileRange, bool) {
	for _, r := range mv.ranges {
		if pos >= r.DstStart && pos < r.DstEnd {
			return r, true
		}
	}

	return fileRange{}, false
}

func (mv *mappedVFile) handleFor(r fileRange) (VFile, error) {
	if vf, found := mv.opened[r.Builder]; found {
		return vf, nil
	}

	vf, err := r.Builder.Open()
	if err != nil {
		return nil, log.Wrap(err)
	}

	mv.opened[r.Builder] = vf

	return vf, nil
}

// Read implements io.Reader.
func (mv *mappedVFile) Read(p []byte) (n int, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	if mv.pos >= mv.size {
		return 0, io.EOF
	}

	r, found := mv.rangeFor(mv.pos)
	if !found {
		return 0, io.EOF
	}

	vf, err := mv.handleFor(r)
	log.PanicIf(err)

	toRead := r.DstEnd - mv.pos
	if uint64(len(p)) < toRead {
		toRead = uint64(len(p))
	}

	srcPos := r.SrcOffset + (mv.pos - r.DstStart)

	_, err = vf.Seek(int64(srcPos), io.SeekStart)
	log.PanicIf(err)

	n, err = io.ReadFull(vf, p[:toRead])
	log.PanicIf(err)

	mv.pos += uint64(n)

	return n, nil
}

// Seek implements io.Seeker.
func (mv *mappedVFile) Seek(offset int64, whence int) (int64, error) {
	var newPos int64

	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = int64(mv.pos) + offset
	case io.SeekEnd:
		newPos = int64(mv.size) + offset
	default:
		return 0, log.Wrap(ErrInvalidSeekWhence)
	}

	if newPos < 0 {
		return 0, log.Wrap(ErrInvalidSeekOffset)
	}

	mv.pos = uint64(newPos)

	return newPos, nil
}

// ZeroVFileBuilder produces an effectively unbounded stream of zero bytes.
// Sparse run-list holes are mapped against it rather than materializing
// zeroes on disk.
type ZeroVFileBuilder struct{}

// NewZeroVFileBuilder returns a builder for the infinite zero stream.
func NewZeroVFileBuilder() *ZeroVFileBuilder {
	return &ZeroVFileBuilder{}
}

// Size implements VFileBuilder, returning a sentinel "unbounded" size.
func (b *ZeroVFileBuilder) Size() uint64 {
	return math.MaxUint64
}

// Open implements VFileBuilder.
func (b *ZeroVFileBuilder) Open() (VFile, error) {
	return &zeroVFile{}, nil
}

type zeroVFile struct {
	pos uint64
}

func (z *zeroVFile) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}

	z.pos += uint64(len(p))

	return len(p), nil
}

func (z *zeroVFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		z.pos = uint64(offset)
	case io.SeekCurrent:
		z.pos = uint64(int64(z.pos) + offset)
	case io.SeekEnd:
		z.pos = uint64(offset)
	default:
		return 0, log.Wrap(ErrInvalidSeekWhence)
	}

	return int64(z.pos), nil
}

// MemoryVFileBuilder eagerly slurps a source stream into memory. The $MFT's
// own data attribute is read this way so that every later MFT-entry lookup
// is a memory access rather than a fresh chain of mapped-range reads.
type MemoryVFileBuilder struct {
	data []byte
}

// NewMemoryVFileBuilder reads src fully into a byte buffer.
func NewMemoryVFileBuilder(src VFileBuilder) (b *MemoryVFileBuilder, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	vf, err := src.Open()
	log.PanicIf(err)

	data := make([]byte, src.Size())

	err = ReadExact(vf, data)
	log.PanicIf(err)

	return &MemoryVFileBuilder{data: data}, nil
}

// NewMemoryVFileBuilderFromBytes wraps an already-in-memory buffer directly,
// with no read involved.
func NewMemoryVFileBuilderFromBytes(data []byte) *MemoryVFileBuilder {
	return &MemoryVFileBuilder{data: data}
}

// Size implements VFileBuilder.
func (b *MemoryVFileBuilder) Size() uint64 {
	return uint64(len(b.data))
}

// Open implements VFileBuilder.
func (b *MemoryVFileBuilder) Open() (VFile, error) {
	return bytes.NewReader(b.data), nil
}
