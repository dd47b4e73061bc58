package readat

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mogaika/stingray_extractor/stingray"
)

// RangeError is raised when a read does not fit into the underlying buffer.
type RangeError struct {
	Offset int64
	Size   int64
	Len    int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("read of %d bytes at 0x%x exceeds buffer of 0x%x bytes", e.Size, e.Offset, e.Len)
}

func (e *RangeError) Is(target error) bool {
	return target == stingray.ErrCorrupt
}

// Reader is a bounds-checked view of a byte buffer. Offsets passed to the
// Read* methods are relative to the view start. Failed reads panic with
// *RangeError; use Recover at the decode boundary.
type Reader struct {
	source []byte
	offset int64
}

func NewReader(source []byte, offset int64) *Reader {
	return &Reader{
		source: source,
		offset: offset,
	}
}

func (r *Reader) Offset() int64 {
	return r.offset
}

// Len is the number of bytes addressable from the view start.
func (r *Reader) Len() int64 {
	if r.offset >= int64(len(r.source)) {
		return 0
	}
	return int64(len(r.source)) - r.offset
}

func (r *Reader) SubReader(offset int64) *Reader {
	return &Reader{
		source: r.source,
		offset: r.offset + offset,
	}
}

// Slice returns size bytes at off without copying.
func (r *Reader) Slice(off, size int64) ([]byte, error) {
	abs := r.offset + off
	if off < 0 || size < 0 || abs < 0 || abs > int64(len(r.source)) || size > int64(len(r.source))-abs {
		return nil, &RangeError{Offset: abs, Size: size, Len: int64(len(r.source))}
	}
	return r.source[abs : abs+size : abs+size], nil
}

func (r *Reader) SliceP(off, size int64) []byte {
	b, err := r.Slice(off, size)
	if err != nil {
		panic(err)
	}
	return b
}

// Window returns a reader limited to size bytes at off.
func (r *Reader) Window(off, size int64) (*Reader, error) {
	b, err := r.Slice(off, size)
	if err != nil {
		return nil, err
	}
	return NewReader(b, 0), nil
}

func (r *Reader) ReadU64LE(off int64) uint64 { return binary.LittleEndian.Uint64(r.SliceP(off, 8)) }
func (r *Reader) ReadU64BE(off int64) uint64 { return binary.BigEndian.Uint64(r.SliceP(off, 8)) }
func (r *Reader) ReadU32LE(off int64) uint32 { return binary.LittleEndian.Uint32(r.SliceP(off, 4)) }
func (r *Reader) ReadU32BE(off int64) uint32 { return binary.BigEndian.Uint32(r.SliceP(off, 4)) }
func (r *Reader) ReadU16LE(off int64) uint16 { return binary.LittleEndian.Uint16(r.SliceP(off, 2)) }
func (r *Reader) ReadU16BE(off int64) uint16 { return binary.BigEndian.Uint16(r.SliceP(off, 2)) }
func (r *Reader) ReadU8(off int64) uint8     { return r.SliceP(off, 1)[0] }

func (r *Reader) ReadF32LE(off int64) float32 { return math.Float32frombits(r.ReadU32LE(off)) }

// ReadU32sLE reads count consecutive little-endian words.
func (r *Reader) ReadU32sLE(off int64, count int) []uint32 {
	b := r.SliceP(off, int64(count)*4)
	res := make([]uint32, count)
	for i := range res {
		res[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return res
}

// Recover turns a *RangeError panic into *err. Other panics propagate.
func Recover(err *error) {
	if r := recover(); r != nil {
		if re, ok := r.(*RangeError); ok {
			*err = re
			return
		}
		panic(r)
	}
}
