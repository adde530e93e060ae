package flatbuffers

// UOffsetT is an unsigned offset, most commonly the distance from the end of
// the buffer to an object, or one hop of forward relative addressing.
type UOffsetT uint32

// SOffsetT is a signed offset; tables store the (possibly negative) distance
// to their vtable as one.
type SOffsetT int32

// VOffsetT is a vtable entry: the byte distance from the start of a table to
// one of its fields, or zero when the field is absent.
type VOffsetT uint16

// Byte sizes of the fixed-width scalar types.
const (
	SizeBool = 1
	SizeByte = 1

	SizeUint8  = 1
	SizeUint16 = 2
	SizeUint32 = 4
	SizeUint64 = 8

	SizeInt8  = 1
	SizeInt16 = 2
	SizeInt32 = 4
	SizeInt64 = 8

	SizeFloat32 = 4
	SizeFloat64 = 8

	SizeUOffsetT = 4
	SizeSOffsetT = 4
	SizeVOffsetT = 2
)

// VtableMetadataFields is the count of leading VOffsetT metadata fields in a
// vtable: its own byte size and the table's byte size.
const VtableMetadataFields = 2

const fileIdentifierLength = 4

// TableOffset locates a finished table. It is only meaningful to the Builder
// that returned it and is consumed by PrependTableOffset and friends;
// generated code must never do address arithmetic on it.
type TableOffset UOffsetT

// VectorOffset locates a finished vector.
type VectorOffset UOffsetT

// StringOffset locates a finished string.
type StringOffset UOffsetT

// FlatBuffer is implemented by every generated table type: given a buffer
// and a position, take on the table found there. It is the only polymorphism
// the engine needs over user-defined types.
type FlatBuffer interface {
	Table() Table
	Init(buf []byte, i UOffsetT)
}
