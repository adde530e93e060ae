package flatbuffers

import (
	"encoding/binary"
	"math"
)

// RawBuffer is a fixed-capacity byte region with bounds-asserted,
// little-endian scalar access. It never resizes itself; the Builder grows by
// allocating a larger region and copying. An access outside the region
// panics, which is the right behavior on the write path (the offsets there
// are computed by this package and by generated code, so a violation is a
// bug, not bad input). The read path in Table pre-validates every offset
// with check and so never trips the panic on malformed data.
type RawBuffer struct {
	data []byte
}

// NewRawBuffer wraps data without copying it.
func NewRawBuffer(data []byte) RawBuffer {
	return RawBuffer{data: data}
}

func (b RawBuffer) Len() int { return len(b.data) }

// Data exposes the underlying region. Callers must treat finished regions as
// read-only.
func (b RawBuffer) Data() []byte { return b.data }

// Slice returns the subrange [start, end), bounds-asserted.
func (b RawBuffer) Slice(start, end UOffsetT) []byte {
	if start > end || int64(end) > int64(len(b.data)) {
		panic("flatbuffers: buffer access out of bounds")
	}
	return b.data[start:end]
}

// check reports whether size bytes at off lie inside the region, as a
// recoverable error for the decode path.
func (b RawBuffer) check(off UOffsetT, size int) error {
	if int64(off)+int64(size) > int64(len(b.data)) {
		return decodeErr(off, ErrOutOfBounds)
	}
	return nil
}

func (b RawBuffer) assert(off UOffsetT, size int) {
	if int64(off)+int64(size) > int64(len(b.data)) {
		panic("flatbuffers: buffer access out of bounds")
	}
}

func (b RawBuffer) Bool(off UOffsetT) bool { return b.Byte(off) != 0 }

func (b RawBuffer) Byte(off UOffsetT) byte {
	b.assert(off, SizeByte)
	return b.data[off]
}

func (b RawBuffer) Uint8(off UOffsetT) uint8 { return b.Byte(off) }

func (b RawBuffer) Uint16(off UOffsetT) uint16 {
	b.assert(off, SizeUint16)
	return binary.LittleEndian.Uint16(b.data[off:])
}

func (b RawBuffer) Uint32(off UOffsetT) uint32 {
	b.assert(off, SizeUint32)
	return binary.LittleEndian.Uint32(b.data[off:])
}

func (b RawBuffer) Uint64(off UOffsetT) uint64 {
	b.assert(off, SizeUint64)
	return binary.LittleEndian.Uint64(b.data[off:])
}

func (b RawBuffer) Int8(off UOffsetT) int8 { return int8(b.Byte(off)) }

func (b RawBuffer) Int16(off UOffsetT) int16 { return int16(b.Uint16(off)) }

func (b RawBuffer) Int32(off UOffsetT) int32 { return int32(b.Uint32(off)) }

func (b RawBuffer) Int64(off UOffsetT) int64 { return int64(b.Uint64(off)) }

func (b RawBuffer) Float32(off UOffsetT) float32 {
	return math.Float32frombits(b.Uint32(off))
}

func (b RawBuffer) Float64(off UOffsetT) float64 {
	return math.Float64frombits(b.Uint64(off))
}

func (b RawBuffer) UOffsetT(off UOffsetT) UOffsetT { return UOffsetT(b.Uint32(off)) }

func (b RawBuffer) SOffsetT(off UOffsetT) SOffsetT { return SOffsetT(b.Uint32(off)) }

func (b RawBuffer) VOffsetT(off UOffsetT) VOffsetT { return VOffsetT(b.Uint16(off)) }

func (b RawBuffer) PutBool(off UOffsetT, v bool) {
	if v {
		b.PutByte(off, 1)
	} else {
		b.PutByte(off, 0)
	}
}

func (b RawBuffer) PutByte(off UOffsetT, v byte) {
	b.assert(off, SizeByte)
	b.data[off] = v
}

func (b RawBuffer) PutUint8(off UOffsetT, v uint8) { b.PutByte(off, v) }

func (b RawBuffer) PutUint16(off UOffsetT, v uint16) {
	b.assert(off, SizeUint16)
	binary.LittleEndian.PutUint16(b.data[off:], v)
}

func (b RawBuffer) PutUint32(off UOffsetT, v uint32) {
	b.assert(off, SizeUint32)
	binary.LittleEndian.PutUint32(b.data[off:], v)
}

func (b RawBuffer) PutUint64(off UOffsetT, v uint64) {
	b.assert(off, SizeUint64)
	binary.LittleEndian.PutUint64(b.data[off:], v)
}

func (b RawBuffer) PutInt8(off UOffsetT, v int8) { b.PutByte(off, byte(v)) }

func (b RawBuffer) PutInt16(off UOffsetT, v int16) { b.PutUint16(off, uint16(v)) }

func (b RawBuffer) PutInt32(off UOffsetT, v int32) { b.PutUint32(off, uint32(v)) }

func (b RawBuffer) PutInt64(off UOffsetT, v int64) { b.PutUint64(off, uint64(v)) }

func (b RawBuffer) PutFloat32(off UOffsetT, v float32) {
	b.PutUint32(off, math.Float32bits(v))
}

func (b RawBuffer) PutFloat64(off UOffsetT, v float64) {
	b.PutUint64(off, math.Float64bits(v))
}

func (b RawBuffer) PutUOffsetT(off UOffsetT, v UOffsetT) { b.PutUint32(off, uint32(v)) }

func (b RawBuffer) PutSOffsetT(off UOffsetT, v SOffsetT) { b.PutUint32(off, uint32(v)) }

func (b RawBuffer) PutVOffsetT(off UOffsetT, v VOffsetT) { b.PutUint16(off, uint16(v)) }
