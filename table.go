package flatbuffers

import (
	"unicode/utf8"
)

// Table is a read cursor over an encoded buffer: Pos is the position of the
// table it exposes. A Table never mutates the buffer through its accessors,
// so any number may read the same buffer concurrently. Each accessor
// validates every offset it dereferences and reports malformed input as a
// DecodeError instead of crashing.
type Table struct {
	Bytes []byte
	Pos   UOffsetT // Always < 1<<31.
}

// GetRootTable returns a Table positioned on the root table of the finished
// buffer region starting at offset.
func GetRootTable(buf []byte, offset UOffsetT) (Table, error) {
	pos, err := (&Table{Bytes: buf}).Indirect(offset)
	if err != nil {
		return Table{}, err
	}
	return Table{Bytes: buf, Pos: pos}, nil
}

// GetRootAs initializes any generated table type to the root table of the
// finished buffer region starting at offset.
func GetRootAs(buf []byte, offset UOffsetT, fb FlatBuffer) error {
	pos, err := (&Table{Bytes: buf}).Indirect(offset)
	if err != nil {
		return err
	}
	fb.Init(buf, pos)
	return nil
}

// BufferHasIdentifier reports whether the 4-byte identifier placed after
// the root offset matches ident. Use it to sniff a buffer's type before
// decoding. A wrong-length ident is a caller bug and panics.
func BufferHasIdentifier(buf []byte, ident string) (bool, error) {
	if len(ident) != fileIdentifierLength {
		panic("flatbuffers: file identifier must be 4 bytes")
	}
	rb := NewRawBuffer(buf)
	if err := rb.check(SizeUOffsetT, fileIdentifierLength); err != nil {
		return false, err
	}
	return string(rb.Slice(SizeUOffsetT, SizeUOffsetT+fileIdentifierLength)) == ident, nil
}

func (t *Table) raw() RawBuffer { return NewRawBuffer(t.Bytes) }

// Offset provides access into the table's vtable: it returns the byte
// distance from Pos to the field whose vtable entry sits at vtableOffset,
// or 0 when the field is absent. Fields beyond the vtable's length — data
// written before the field existed in the schema, or deprecated slots —
// resolve to 0 the same way, which is what makes defaulting work across
// schema versions.
func (t *Table) Offset(vtableOffset VOffsetT) (VOffsetT, error) {
	rb := t.raw()
	if err := rb.check(t.Pos, SizeSOffsetT); err != nil {
		return 0, err
	}
	vtable := int64(t.Pos) - int64(rb.SOffsetT(t.Pos))
	if vtable < 0 || vtable+SizeVOffsetT > int64(len(t.Bytes)) {
		return 0, decodeErr(t.Pos, ErrOutOfBounds)
	}
	vt := UOffsetT(vtable)
	if vtableOffset >= rb.VOffsetT(vt) {
		return 0, nil
	}
	if err := rb.check(vt+UOffsetT(vtableOffset), SizeVOffsetT); err != nil {
		return 0, err
	}
	return rb.VOffsetT(vt + UOffsetT(vtableOffset)), nil
}

// Indirect resolves one hop of relative addressing: the UOffsetT stored at
// off, added to off.
func (t *Table) Indirect(off UOffsetT) (UOffsetT, error) {
	rb := t.raw()
	if err := rb.check(off, SizeUOffsetT); err != nil {
		return 0, err
	}
	target := off + rb.UOffsetT(off)
	if target < off || int64(target) > int64(len(t.Bytes)) {
		return 0, decodeErr(off, ErrOutOfBounds)
	}
	return target, nil
}

// String reads the string referenced at off (an absolute buffer position,
// typically Pos plus a field offset). The bytes must be valid UTF-8.
func (t *Table) String(off UOffsetT) (string, error) {
	b, err := t.ByteVector(off)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", decodeErr(off, ErrInvalidUTF8)
	}
	return string(b), nil
}

// ByteVector reads the length-prefixed byte data referenced at off. The
// returned slice aliases the buffer.
func (t *Table) ByteVector(off UOffsetT) ([]byte, error) {
	target, err := t.Indirect(off)
	if err != nil {
		return nil, err
	}
	rb := t.raw()
	if err := rb.check(target, SizeUOffsetT); err != nil {
		return nil, err
	}
	length := rb.UOffsetT(target)
	start := target + SizeUOffsetT
	if int64(start)+int64(length) > int64(len(t.Bytes)) {
		return nil, decodeErr(target, ErrOutOfBounds)
	}
	return t.Bytes[start : start+length], nil
}

// VectorLen reads the element count of the vector whose reference is
// stored off bytes into this table.
func (t *Table) VectorLen(off UOffsetT) (int, error) {
	target, err := t.Indirect(off + t.Pos)
	if err != nil {
		return 0, err
	}
	rb := t.raw()
	if err := rb.check(target, SizeUOffsetT); err != nil {
		return 0, err
	}
	return int(rb.UOffsetT(target)), nil
}

// Vector resolves the start of element data of the vector whose reference
// is stored off bytes into this table.
func (t *Table) Vector(off UOffsetT) (UOffsetT, error) {
	target, err := t.Indirect(off + t.Pos)
	if err != nil {
		return 0, err
	}
	// Element data follows the length field.
	return target + SizeUOffsetT, nil
}

// Union positions t2 on the union value whose reference is stored off
// bytes into this table. The discriminant lives in a sibling scalar field
// and is read separately by generated code.
func (t *Table) Union(t2 *Table, off UOffsetT) error {
	pos, err := t.Indirect(off + t.Pos)
	if err != nil {
		return err
	}
	t2.Bytes = t.Bytes
	t2.Pos = pos
	return nil
}

// GetBool retrieves a bool at the given absolute position. The remaining
// Get* scalar readers do the same for their types.
func (t *Table) GetBool(off UOffsetT) (bool, error) {
	if err := t.raw().check(off, SizeBool); err != nil {
		return false, err
	}
	return t.raw().Bool(off), nil
}

func (t *Table) GetByte(off UOffsetT) (byte, error) {
	if err := t.raw().check(off, SizeByte); err != nil {
		return 0, err
	}
	return t.raw().Byte(off), nil
}

func (t *Table) GetUint8(off UOffsetT) (uint8, error) {
	return t.GetByte(off)
}

func (t *Table) GetUint16(off UOffsetT) (uint16, error) {
	if err := t.raw().check(off, SizeUint16); err != nil {
		return 0, err
	}
	return t.raw().Uint16(off), nil
}

func (t *Table) GetUint32(off UOffsetT) (uint32, error) {
	if err := t.raw().check(off, SizeUint32); err != nil {
		return 0, err
	}
	return t.raw().Uint32(off), nil
}

func (t *Table) GetUint64(off UOffsetT) (uint64, error) {
	if err := t.raw().check(off, SizeUint64); err != nil {
		return 0, err
	}
	return t.raw().Uint64(off), nil
}

func (t *Table) GetInt8(off UOffsetT) (int8, error) {
	v, err := t.GetByte(off)
	return int8(v), err
}

func (t *Table) GetInt16(off UOffsetT) (int16, error) {
	v, err := t.GetUint16(off)
	return int16(v), err
}

func (t *Table) GetInt32(off UOffsetT) (int32, error) {
	v, err := t.GetUint32(off)
	return int32(v), err
}

func (t *Table) GetInt64(off UOffsetT) (int64, error) {
	v, err := t.GetUint64(off)
	return int64(v), err
}

func (t *Table) GetFloat32(off UOffsetT) (float32, error) {
	if err := t.raw().check(off, SizeFloat32); err != nil {
		return 0, err
	}
	return t.raw().Float32(off), nil
}

func (t *Table) GetFloat64(off UOffsetT) (float64, error) {
	if err := t.raw().check(off, SizeFloat64); err != nil {
		return 0, err
	}
	return t.raw().Float64(off), nil
}

func (t *Table) GetUOffsetT(off UOffsetT) (UOffsetT, error) {
	v, err := t.GetUint32(off)
	return UOffsetT(v), err
}

func (t *Table) GetSOffsetT(off UOffsetT) (SOffsetT, error) {
	v, err := t.GetUint32(off)
	return SOffsetT(v), err
}

func (t *Table) GetVOffsetT(off UOffsetT) (VOffsetT, error) {
	v, err := t.GetUint16(off)
	return VOffsetT(v), err
}

// GetBoolSlot retrieves the bool field whose vtable entry sits at slot, or
// the default d when the field is absent. The remaining Get*Slot readers
// follow the same contract for their types.
func (t *Table) GetBoolSlot(slot VOffsetT, d bool) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetBool(t.Pos + UOffsetT(off))
}

func (t *Table) GetByteSlot(slot VOffsetT, d byte) (byte, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetByte(t.Pos + UOffsetT(off))
}

func (t *Table) GetUint8Slot(slot VOffsetT, d uint8) (uint8, error) {
	return t.GetByteSlot(slot, d)
}

func (t *Table) GetUint16Slot(slot VOffsetT, d uint16) (uint16, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetUint16(t.Pos + UOffsetT(off))
}

func (t *Table) GetUint32Slot(slot VOffsetT, d uint32) (uint32, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetUint32(t.Pos + UOffsetT(off))
}

func (t *Table) GetUint64Slot(slot VOffsetT, d uint64) (uint64, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetUint64(t.Pos + UOffsetT(off))
}

func (t *Table) GetInt8Slot(slot VOffsetT, d int8) (int8, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetInt8(t.Pos + UOffsetT(off))
}

func (t *Table) GetInt16Slot(slot VOffsetT, d int16) (int16, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetInt16(t.Pos + UOffsetT(off))
}

func (t *Table) GetInt32Slot(slot VOffsetT, d int32) (int32, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetInt32(t.Pos + UOffsetT(off))
}

func (t *Table) GetInt64Slot(slot VOffsetT, d int64) (int64, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetInt64(t.Pos + UOffsetT(off))
}

func (t *Table) GetFloat32Slot(slot VOffsetT, d float32) (float32, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetFloat32(t.Pos + UOffsetT(off))
}

func (t *Table) GetFloat64Slot(slot VOffsetT, d float64) (float64, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return t.GetFloat64(t.Pos + UOffsetT(off))
}

func (t *Table) GetVOffsetTSlot(slot VOffsetT, d VOffsetT) (VOffsetT, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return d, err
	}
	return off, nil
}

// MutateBool updates the bool at the given absolute position in place. The
// remaining Mutate* writers do the same for their types. No layout
// changes, only value changes; the buffer stays valid.
func (t *Table) MutateBool(off UOffsetT, n bool) error {
	rb := t.raw()
	if err := rb.check(off, SizeBool); err != nil {
		return err
	}
	rb.PutBool(off, n)
	return nil
}

func (t *Table) MutateByte(off UOffsetT, n byte) error {
	rb := t.raw()
	if err := rb.check(off, SizeByte); err != nil {
		return err
	}
	rb.PutByte(off, n)
	return nil
}

func (t *Table) MutateUint8(off UOffsetT, n uint8) error { return t.MutateByte(off, n) }

func (t *Table) MutateUint16(off UOffsetT, n uint16) error {
	rb := t.raw()
	if err := rb.check(off, SizeUint16); err != nil {
		return err
	}
	rb.PutUint16(off, n)
	return nil
}

func (t *Table) MutateUint32(off UOffsetT, n uint32) error {
	rb := t.raw()
	if err := rb.check(off, SizeUint32); err != nil {
		return err
	}
	rb.PutUint32(off, n)
	return nil
}

func (t *Table) MutateUint64(off UOffsetT, n uint64) error {
	rb := t.raw()
	if err := rb.check(off, SizeUint64); err != nil {
		return err
	}
	rb.PutUint64(off, n)
	return nil
}

func (t *Table) MutateInt8(off UOffsetT, n int8) error { return t.MutateByte(off, byte(n)) }

func (t *Table) MutateInt16(off UOffsetT, n int16) error { return t.MutateUint16(off, uint16(n)) }

func (t *Table) MutateInt32(off UOffsetT, n int32) error { return t.MutateUint32(off, uint32(n)) }

func (t *Table) MutateInt64(off UOffsetT, n int64) error { return t.MutateUint64(off, uint64(n)) }

func (t *Table) MutateFloat32(off UOffsetT, n float32) error {
	rb := t.raw()
	if err := rb.check(off, SizeFloat32); err != nil {
		return err
	}
	rb.PutFloat32(off, n)
	return nil
}

func (t *Table) MutateFloat64(off UOffsetT, n float64) error {
	rb := t.raw()
	if err := rb.check(off, SizeFloat64); err != nil {
		return err
	}
	rb.PutFloat64(off, n)
	return nil
}

// MutateBoolSlot updates the bool field at the given vtable slot. It
// reports false, without writing, when the field is absent from the buffer
// (absent fields have no storage to update). The remaining Mutate*Slot
// writers follow the same contract.
func (t *Table) MutateBoolSlot(slot VOffsetT, n bool) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return false, err
	}
	return true, t.MutateBool(t.Pos+UOffsetT(off), n)
}

func (t *Table) MutateByteSlot(slot VOffsetT, n byte) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return false, err
	}
	return true, t.MutateByte(t.Pos+UOffsetT(off), n)
}

func (t *Table) MutateUint8Slot(slot VOffsetT, n uint8) (bool, error) {
	return t.MutateByteSlot(slot, n)
}

func (t *Table) MutateUint16Slot(slot VOffsetT, n uint16) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return false, err
	}
	return true, t.MutateUint16(t.Pos+UOffsetT(off), n)
}

func (t *Table) MutateUint32Slot(slot VOffsetT, n uint32) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return false, err
	}
	return true, t.MutateUint32(t.Pos+UOffsetT(off), n)
}

func (t *Table) MutateUint64Slot(slot VOffsetT, n uint64) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return false, err
	}
	return true, t.MutateUint64(t.Pos+UOffsetT(off), n)
}

func (t *Table) MutateInt8Slot(slot VOffsetT, n int8) (bool, error) {
	return t.MutateByteSlot(slot, byte(n))
}

func (t *Table) MutateInt16Slot(slot VOffsetT, n int16) (bool, error) {
	return t.MutateUint16Slot(slot, uint16(n))
}

func (t *Table) MutateInt32Slot(slot VOffsetT, n int32) (bool, error) {
	return t.MutateUint32Slot(slot, uint32(n))
}

func (t *Table) MutateInt64Slot(slot VOffsetT, n int64) (bool, error) {
	return t.MutateUint64Slot(slot, uint64(n))
}

func (t *Table) MutateFloat32Slot(slot VOffsetT, n float32) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return false, err
	}
	return true, t.MutateFloat32(t.Pos+UOffsetT(off), n)
}

func (t *Table) MutateFloat64Slot(slot VOffsetT, n float64) (bool, error) {
	off, err := t.Offset(slot)
	if err != nil || off == 0 {
		return false, err
	}
	return true, t.MutateFloat64(t.Pos+UOffsetT(off), n)
}
