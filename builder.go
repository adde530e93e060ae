package flatbuffers

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Builder is a state machine for creating FlatBuffer objects.
// Use a Builder to construct object(s) starting from leaf nodes.
//
// A Builder constructs byte buffers in a last-first manner for simplicity
// and performance: the buffer fills from its end toward its start, so grown
// capacity is prepended without disturbing what is already written.
type Builder struct {
	buf   RawBuffer
	alloc Allocator

	// head is the offset of the first used byte; everything left of it is
	// unwritten space. Offset() measures the same cursor from the right
	// edge, which is how all inter-object references are expressed.
	head UOffsetT

	minalign  int
	vtable    []UOffsetT
	objectEnd UOffsetT

	// Finalized vtable locations, plus an index from their xxhash sum, for
	// byte-for-byte deduplication in writeVtable.
	vtables     []UOffsetT
	vtableIndex map[uint64][]UOffsetT

	sharedStrings map[string]StringOffset

	vectorNumElems int
	nested         bool
	finished       bool
	forceDefaults  bool
}

// NewBuilder initializes a Builder of size initialSize. The internal buffer
// is grown as needed.
func NewBuilder(initialSize int) *Builder {
	return NewBuilderWithAllocator(initialSize, NewGoAllocator())
}

// NewBuilderWithAllocator is like NewBuilder but grows through alloc, so
// callers can pool or arena the backing arrays.
func NewBuilderWithAllocator(initialSize int, alloc Allocator) *Builder {
	if initialSize < 0 {
		initialSize = 0
	}
	b := &Builder{
		buf:         NewRawBuffer(alloc.Allocate(initialSize)),
		alloc:       alloc,
		head:        UOffsetT(initialSize),
		minalign:    1,
		vtables:     make([]UOffsetT, 0, 16),
		vtableIndex: make(map[uint64][]UOffsetT),
	}
	return b
}

// Reset truncates the underlying buffer, facilitating alloc-free reuse of a
// Builder. It also resets all bookkeeping data.
func (b *Builder) Reset() {
	b.buf.data = b.buf.data[:cap(b.buf.data)]
	b.head = UOffsetT(len(b.buf.data))
	b.minalign = 1
	b.vtable = b.vtable[:0]
	b.vtables = b.vtables[:0]
	for k := range b.vtableIndex {
		delete(b.vtableIndex, k)
	}
	b.sharedStrings = nil
	b.vectorNumElems = 0
	b.nested = false
	b.finished = false
}

// ForceDefaults controls whether fields equal to their declared default are
// written anyway. Off (the default) they are omitted and the reader
// substitutes the default through the vtable's zero entry.
func (b *Builder) ForceDefaults(on bool) { b.forceDefaults = on }

// FinishedBytes returns the written data in the byte buffer. Panics before
// Finish has been called.
func (b *Builder) FinishedBytes() []byte {
	b.assertFinished()
	return b.buf.data[b.head:]
}

// Head gives the start of useful data in the underlying byte buffer.
// Note: unlike other functions, this value is interpreted as from the left.
func (b *Builder) Head() UOffsetT { return b.head }

// Offset is the write cursor, relative to the end of the buffer.
func (b *Builder) Offset() UOffsetT {
	return UOffsetT(b.buf.Len()) - b.head
}

// Pad places n zero bytes at the current offset.
func (b *Builder) Pad(n int) {
	for i := 0; i < n; i++ {
		b.PlaceByte(0)
	}
}

// Prep prepares to write an element of size bytes after additionalBytes
// have been written, e.g. if you write a string, you need to align such
// that the int32 length field is aligned to SizeInt32, and the string data
// follows it directly. If all you need to do is align, additionalBytes
// will be 0. Grows the buffer as needed and emits the padding.
func (b *Builder) Prep(size, additionalBytes int) {
	// Track the biggest thing we've ever aligned to.
	if size > b.minalign {
		b.minalign = size
	}

	// Find the amount of alignment needed such that size is properly
	// aligned after additionalBytes. Alignment is measured from the end of
	// the buffer, since that is the end that stays put.
	alignSize := -(b.buf.Len() - int(b.head) + additionalBytes)
	alignSize &= size - 1

	for int(b.head) <= alignSize+size+additionalBytes {
		oldLen := b.buf.Len()
		b.grow()
		b.head += UOffsetT(b.buf.Len() - oldLen)
	}

	b.Pad(alignSize)
}

// grow doubles the buffer and copies the old data to the end of the new
// region, keeping content anchored to the right edge.
func (b *Builder) grow() {
	if int64(b.buf.Len())&0xC0000000 != 0 {
		panic("flatbuffers: cannot grow buffer beyond 2 gigabytes")
	}
	newLen := b.buf.Len() * 2
	if newLen == 0 {
		newLen = 1
	}
	old := b.buf.data
	data := b.alloc.Allocate(newLen)
	copy(data[newLen-len(old):], old)
	b.buf = NewRawBuffer(data)
	b.alloc.Free(old)
}

// StartObject initializes bookkeeping for writing a new table with
// numFields vtable slots. Exactly one object may be open at a time; every
// referenced string, vector or table must already be finished.
func (b *Builder) StartObject(numFields int) {
	b.assertNotNested()
	b.assertNotFinished()
	b.nested = true

	if cap(b.vtable) < numFields {
		b.vtable = make([]UOffsetT, numFields)
	} else {
		b.vtable = b.vtable[:numFields]
		for i := range b.vtable {
			b.vtable[i] = 0
		}
	}

	b.objectEnd = b.Offset()
}

// Slot sets vtable slot slotnum to the current write cursor. Called right
// after the slot's field value has been written.
func (b *Builder) Slot(slotnum int) {
	b.assertNested()
	b.vtable[slotnum] = b.Offset()
}

// EndObject writes data necessary to finish table construction: the vtable,
// shared with an earlier byte-identical one where possible, and the table's
// soffset to it.
func (b *Builder) EndObject() TableOffset {
	b.assertNested()
	n := b.writeVtable()
	b.nested = false
	return TableOffset(n)
}

// writeVtable serializes the vtable for the current object.
//
// A vtable has the following format:
//
//	<VOffsetT: size of the vtable in bytes, including this value>
//	<VOffsetT: size of the table in bytes, including the vtable offset>
//	<VOffsetT: offset for a field> * N, where N is the number of declared
//	           fields, trailing absent fields trimmed.
//
// A table starts with an SOffsetT holding the distance back (or forward)
// to its vtable. Because vtable bytes depend only on the table's shape,
// byte-identical vtables are written once and shared.
func (b *Builder) writeVtable() UOffsetT {
	// Placeholder for the table's vtable soffset; patched below once the
	// vtable's final location is known.
	b.PrependSOffsetT(0)

	objectOffset := b.Offset()

	// Trailing zero slots carry no information; trim them so equal-shaped
	// tables produce equal vtable bytes.
	i := len(b.vtable) - 1
	for ; i >= 0 && b.vtable[i] == 0; i-- {
	}
	b.vtable = b.vtable[:i+1]

	// Write out the vtable in reverse, because serialization occurs in
	// last-first order: field entries, then the two metadata fields.
	for j := len(b.vtable) - 1; j >= 0; j-- {
		var off UOffsetT
		if b.vtable[j] != 0 {
			// Forward distance from the table start to the field.
			off = objectOffset - b.vtable[j]
		}
		b.PrependVOffsetT(VOffsetT(off))
	}

	objectSize := objectOffset - b.objectEnd
	b.PrependVOffsetT(VOffsetT(objectSize))

	vtableSize := (len(b.vtable) + VtableMetadataFields) * SizeVOffsetT
	b.PrependVOffsetT(VOffsetT(vtableSize))

	// Look for an earlier identical vtable. The hash index narrows the
	// candidates to one bucket; each candidate is still compared
	// byte-for-byte, with its leading length field as a cheap reject, so
	// sharing is exact.
	vtableLoc := b.Offset()
	written := b.buf.Slice(b.head, b.head+UOffsetT(vtableSize))
	sum := xxhash.Sum64(written)

	existing := UOffsetT(0)
	for _, cand := range b.vtableIndex[sum] {
		candStart := UOffsetT(b.buf.Len()) - cand
		candSize := int(b.buf.VOffsetT(candStart))
		if candSize != vtableSize {
			continue
		}
		if bytes.Equal(written, b.buf.Slice(candStart, candStart+UOffsetT(candSize))) {
			existing = cand
			break
		}
	}

	tablePos := UOffsetT(b.buf.Len()) - objectOffset
	if existing == 0 {
		b.vtables = append(b.vtables, vtableLoc)
		b.vtableIndex[sum] = append(b.vtableIndex[sum], vtableLoc)
		b.buf.PutSOffsetT(tablePos, SOffsetT(vtableLoc)-SOffsetT(objectOffset))
	} else {
		// Duplicate: discard the bytes just written and point the table at
		// the earlier copy.
		b.head = tablePos
		b.buf.PutSOffsetT(tablePos, SOffsetT(existing)-SOffsetT(objectOffset))
	}

	b.vtable = b.vtable[:0]
	return objectOffset
}

// Required asserts that the field at voffset field was set on the table
// just returned by EndObject. Generated code calls this for fields the
// schema marks required; a missing one is a construction bug and panics.
func (b *Builder) Required(table TableOffset, field VOffsetT) {
	pos := UOffsetT(b.buf.Len()) - UOffsetT(table)
	vtable := UOffsetT(SOffsetT(pos) - b.buf.SOffsetT(pos))
	vtableSize := UOffsetT(b.buf.VOffsetT(vtable))
	if UOffsetT(field) >= vtableSize || b.buf.VOffsetT(vtable+UOffsetT(field)) == 0 {
		panic(fmt.Sprintf("flatbuffers: required field at voffset %d is not set", field))
	}
}

// StartVector initializes bookkeeping for writing a new vector of numElems
// elements of elemSize bytes each, aligned to alignment.
//
// A vector has the following format:
//
//	<UOffsetT: number of elements in this vector>
//	<T: data>+, where T is the type of elements of this vector.
//
// Elements are prepended between StartVector and EndVector, last first.
func (b *Builder) StartVector(elemSize, numElems, alignment int) UOffsetT {
	b.assertNotNested()
	b.assertNotFinished()
	b.nested = true
	b.vectorNumElems = numElems
	b.Prep(SizeUint32, elemSize*numElems)
	b.Prep(alignment, elemSize*numElems) // In case alignment > uint32.
	return b.Offset()
}

// EndVector writes the element count recorded by StartVector and finishes
// vector construction.
func (b *Builder) EndVector() VectorOffset {
	return VectorOffset(b.endVector())
}

func (b *Builder) endVector() UOffsetT {
	b.assertNested()
	// Space for the count was reserved by StartVector's Prep.
	b.PlaceUOffsetT(UOffsetT(b.vectorNumElems))
	b.nested = false
	return b.Offset()
}

// CreateString writes a null-terminated string as a vector of bytes. The
// terminating zero is not counted in the stored length.
func (b *Builder) CreateString(s string) StringOffset {
	b.assertNotNested()
	b.assertNotFinished()
	b.nested = true

	b.Prep(SizeUOffsetT, (len(s)+1)*SizeByte)
	b.PlaceByte(0)

	l := UOffsetT(len(s))
	b.head -= l
	copy(b.buf.data[b.head:b.head+l], s)

	b.vectorNumElems = len(s)
	return StringOffset(b.endVector())
}

// CreateSharedString is CreateString, except identical strings are written
// once and the same offset returned for every later occurrence.
func (b *Builder) CreateSharedString(s string) StringOffset {
	if off, ok := b.sharedStrings[s]; ok {
		return off
	}
	off := b.CreateString(s)
	if b.sharedStrings == nil {
		b.sharedStrings = make(map[string]StringOffset)
	}
	b.sharedStrings[s] = off
	return off
}

// CreateByteString writes a byte slice as a string (null-terminated).
func (b *Builder) CreateByteString(s []byte) StringOffset {
	b.assertNotNested()
	b.assertNotFinished()
	b.nested = true

	b.Prep(SizeUOffsetT, (len(s)+1)*SizeByte)
	b.PlaceByte(0)

	l := UOffsetT(len(s))
	b.head -= l
	copy(b.buf.data[b.head:b.head+l], s)

	b.vectorNumElems = len(s)
	return StringOffset(b.endVector())
}

// CreateByteVector writes a ubyte vector, without a terminating zero.
func (b *Builder) CreateByteVector(v []byte) VectorOffset {
	b.assertNotNested()
	b.assertNotFinished()
	b.nested = true

	b.Prep(SizeUOffsetT, len(v)*SizeByte)

	l := UOffsetT(len(v))
	b.head -= l
	copy(b.buf.data[b.head:b.head+l], v)

	b.vectorNumElems = len(v)
	return VectorOffset(b.endVector())
}

// CreateVectorOfTables writes a vector of the given table offsets in order.
// For keyed lookup the caller sorts offs by the key field first.
func (b *Builder) CreateVectorOfTables(offs []TableOffset) VectorOffset {
	b.StartVector(SizeUOffsetT, len(offs), SizeUOffsetT)
	for i := len(offs) - 1; i >= 0; i-- {
		b.PrependTableOffset(offs[i])
	}
	return b.EndVector()
}

// Finish finalizes the buffer, pointing it at root. The builder must not be
// used again without Reset.
func (b *Builder) Finish(root TableOffset) {
	b.assertNotNested()
	b.assertNotFinished()
	b.Prep(b.minalign, SizeUOffsetT)
	b.PrependUOffsetT(UOffsetT(root))
	b.finished = true
}

// FinishWithFileIdentifier is Finish, with a 4-byte identifier placed
// directly after the root offset so readers can sniff the buffer type.
func (b *Builder) FinishWithFileIdentifier(root TableOffset, fid []byte) {
	if len(fid) != fileIdentifierLength {
		panic("flatbuffers: file identifier must be 4 bytes")
	}
	b.assertNotNested()
	b.assertNotFinished()
	b.Prep(b.minalign, SizeUOffsetT+fileIdentifierLength)
	for i := fileIdentifierLength - 1; i >= 0; i-- {
		b.PlaceByte(fid[i])
	}
	b.Finish(root)
}

// PrependUOffsetT prepends a forward reference to an already-written
// object, encoded relative to where it will be written.
func (b *Builder) PrependUOffsetT(off UOffsetT) {
	b.Prep(SizeUOffsetT, 0)
	if off > b.Offset() {
		// Only content that has already been written may be referenced;
		// see StartObject.
		panic("flatbuffers: unreachable: off <= b.Offset()")
	}
	b.PlaceUOffsetT(b.Offset() - off + SizeUOffsetT)
}

// PrependSOffsetT prepends an SOffsetT, relative to where it will be
// written.
func (b *Builder) PrependSOffsetT(off SOffsetT) {
	b.Prep(SizeSOffsetT, 0)
	if UOffsetT(off) > b.Offset() {
		panic("flatbuffers: unreachable: off <= b.Offset()")
	}
	b.PlaceSOffsetT(SOffsetT(b.Offset()) - off + SizeSOffsetT)
}

// PrependTableOffset prepends a reference to a finished table.
func (b *Builder) PrependTableOffset(off TableOffset) { b.PrependUOffsetT(UOffsetT(off)) }

// PrependVectorOffset prepends a reference to a finished vector.
func (b *Builder) PrependVectorOffset(off VectorOffset) { b.PrependUOffsetT(UOffsetT(off)) }

// PrependStringOffset prepends a reference to a finished string.
func (b *Builder) PrependStringOffset(off StringOffset) { b.PrependUOffsetT(UOffsetT(off)) }

// PrependTableOffsetSlot prepends a table reference onto the open object at
// vtable slot o. A zero offset means "no table" and leaves the slot absent.
func (b *Builder) PrependTableOffsetSlot(o int, x TableOffset) {
	if x != 0 {
		b.PrependTableOffset(x)
		b.Slot(o)
	}
}

// PrependVectorOffsetSlot prepends a vector reference onto the open object
// at vtable slot o, if non-zero.
func (b *Builder) PrependVectorOffsetSlot(o int, x VectorOffset) {
	if x != 0 {
		b.PrependVectorOffset(x)
		b.Slot(o)
	}
}

// PrependStringOffsetSlot prepends a string reference onto the open object
// at vtable slot o, if non-zero.
func (b *Builder) PrependStringOffsetSlot(o int, x StringOffset) {
	if x != 0 {
		b.PrependStringOffset(x)
		b.Slot(o)
	}
}

// PrependStructSlot records the struct just written inline as vtable slot
// o. Structs are stored inline, so nothing additional is added here; x must
// be the current offset. In generated code, d is always 0.
func (b *Builder) PrependStructSlot(o int, x, d UOffsetT) {
	if x != d {
		b.assertNested()
		if x != b.Offset() {
			panic("flatbuffers: inline data write outside of object")
		}
		b.Slot(o)
	}
}

// PrependBoolSlot prepends a bool onto the open object at vtable slot o.
// If x equals the default d the slot is left absent and nothing is written,
// unless ForceDefaults is on. The remaining *Slot scalar writers follow the
// same rule.
func (b *Builder) PrependBoolSlot(o int, x, d bool) {
	if x != d || b.forceDefaults {
		b.PrependBool(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependByteSlot(o int, x, d byte) {
	if x != d || b.forceDefaults {
		b.PrependByte(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependUint8Slot(o int, x, d uint8) {
	if x != d || b.forceDefaults {
		b.PrependUint8(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependUint16Slot(o int, x, d uint16) {
	if x != d || b.forceDefaults {
		b.PrependUint16(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependUint32Slot(o int, x, d uint32) {
	if x != d || b.forceDefaults {
		b.PrependUint32(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependUint64Slot(o int, x, d uint64) {
	if x != d || b.forceDefaults {
		b.PrependUint64(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependInt8Slot(o int, x, d int8) {
	if x != d || b.forceDefaults {
		b.PrependInt8(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependInt16Slot(o int, x, d int16) {
	if x != d || b.forceDefaults {
		b.PrependInt16(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependInt32Slot(o int, x, d int32) {
	if x != d || b.forceDefaults {
		b.PrependInt32(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependInt64Slot(o int, x, d int64) {
	if x != d || b.forceDefaults {
		b.PrependInt64(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependFloat32Slot(o int, x, d float32) {
	if x != d || b.forceDefaults {
		b.PrependFloat32(x)
		b.Slot(o)
	}
}

func (b *Builder) PrependFloat64Slot(o int, x, d float64) {
	if x != d || b.forceDefaults {
		b.PrependFloat64(x)
		b.Slot(o)
	}
}

// PrependBool prepends a bool to the Builder buffer.
// Aligns and checks for space. The remaining Prepend* scalar writers do the
// same for their types.
func (b *Builder) PrependBool(x bool) {
	b.Prep(SizeBool, 0)
	b.PlaceBool(x)
}

func (b *Builder) PrependByte(x byte) {
	b.Prep(SizeByte, 0)
	b.PlaceByte(x)
}

func (b *Builder) PrependUint8(x uint8) {
	b.Prep(SizeUint8, 0)
	b.PlaceUint8(x)
}

func (b *Builder) PrependUint16(x uint16) {
	b.Prep(SizeUint16, 0)
	b.PlaceUint16(x)
}

func (b *Builder) PrependUint32(x uint32) {
	b.Prep(SizeUint32, 0)
	b.PlaceUint32(x)
}

func (b *Builder) PrependUint64(x uint64) {
	b.Prep(SizeUint64, 0)
	b.PlaceUint64(x)
}

func (b *Builder) PrependInt8(x int8) {
	b.Prep(SizeInt8, 0)
	b.PlaceInt8(x)
}

func (b *Builder) PrependInt16(x int16) {
	b.Prep(SizeInt16, 0)
	b.PlaceInt16(x)
}

func (b *Builder) PrependInt32(x int32) {
	b.Prep(SizeInt32, 0)
	b.PlaceInt32(x)
}

func (b *Builder) PrependInt64(x int64) {
	b.Prep(SizeInt64, 0)
	b.PlaceInt64(x)
}

func (b *Builder) PrependFloat32(x float32) {
	b.Prep(SizeFloat32, 0)
	b.PlaceFloat32(x)
}

func (b *Builder) PrependFloat64(x float64) {
	b.Prep(SizeFloat64, 0)
	b.PlaceFloat64(x)
}

func (b *Builder) PrependVOffsetT(x VOffsetT) {
	b.Prep(SizeVOffsetT, 0)
	b.PlaceVOffsetT(x)
}

// PlaceBool prepends a bool to the Builder, without checking for space.
// The remaining Place* writers do the same for their types; Prep must have
// reserved the room.
func (b *Builder) PlaceBool(x bool) {
	b.head -= SizeBool
	b.buf.PutBool(b.head, x)
}

func (b *Builder) PlaceByte(x byte) {
	b.head -= SizeByte
	b.buf.PutByte(b.head, x)
}

func (b *Builder) PlaceUint8(x uint8) {
	b.head -= SizeUint8
	b.buf.PutUint8(b.head, x)
}

func (b *Builder) PlaceUint16(x uint16) {
	b.head -= SizeUint16
	b.buf.PutUint16(b.head, x)
}

func (b *Builder) PlaceUint32(x uint32) {
	b.head -= SizeUint32
	b.buf.PutUint32(b.head, x)
}

func (b *Builder) PlaceUint64(x uint64) {
	b.head -= SizeUint64
	b.buf.PutUint64(b.head, x)
}

func (b *Builder) PlaceInt8(x int8) {
	b.head -= SizeInt8
	b.buf.PutInt8(b.head, x)
}

func (b *Builder) PlaceInt16(x int16) {
	b.head -= SizeInt16
	b.buf.PutInt16(b.head, x)
}

func (b *Builder) PlaceInt32(x int32) {
	b.head -= SizeInt32
	b.buf.PutInt32(b.head, x)
}

func (b *Builder) PlaceInt64(x int64) {
	b.head -= SizeInt64
	b.buf.PutInt64(b.head, x)
}

func (b *Builder) PlaceFloat32(x float32) {
	b.head -= SizeFloat32
	b.buf.PutFloat32(b.head, x)
}

func (b *Builder) PlaceFloat64(x float64) {
	b.head -= SizeFloat64
	b.buf.PutFloat64(b.head, x)
}

func (b *Builder) PlaceVOffsetT(x VOffsetT) {
	b.head -= SizeVOffsetT
	b.buf.PutVOffsetT(b.head, x)
}

func (b *Builder) PlaceSOffsetT(x SOffsetT) {
	b.head -= SizeSOffsetT
	b.buf.PutSOffsetT(b.head, x)
}

func (b *Builder) PlaceUOffsetT(x UOffsetT) {
	b.head -= SizeUOffsetT
	b.buf.PutUOffsetT(b.head, x)
}

func (b *Builder) assertNested() {
	// If you get this assert, you're writing data that belongs inside an
	// object while no object is open. Call StartObject or StartVector
	// first.
	if !b.nested {
		panic("flatbuffers: incorrect creation order: must be inside object")
	}
}

func (b *Builder) assertNotNested() {
	// If you hit this, you're trying to construct a table, vector or
	// string during the construction of its parent. Finish the inner
	// objects before StartObject on the outer one; storing them inline
	// would break vtable offsets and sharing.
	if b.nested {
		panic("flatbuffers: incorrect creation order: object must not be nested")
	}
}

func (b *Builder) assertNotFinished() {
	// A finished buffer is immutable; call Reset to build another.
	if b.finished {
		panic("flatbuffers: builder already finished; call Reset before reuse")
	}
}

func (b *Builder) assertFinished() {
	// Attempting to read a buffer which hasn't been finished: call Finish
	// with your root table first.
	if !b.finished {
		panic("flatbuffers: incorrect use of FinishedBytes: must call Finish first")
	}
}
