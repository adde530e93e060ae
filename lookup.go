package flatbuffers

import "bytes"

// KeyCompare reports the ordering of a candidate table's key field against
// the search key: negative when the candidate's key sorts before the search
// key, positive when after, zero on a match.
type KeyCompare func(Table) (int, error)

// LookupByKey binary-searches a vector of table offsets that was written
// sorted by a key field. vector is the absolute position of the vector's
// element-count field (Table.Indirect of the field's reference). It returns
// the first exact match, or ok=false when the key is absent, in O(log n)
// table dereferences.
func LookupByKey(buf []byte, vector UOffsetT, cmp KeyCompare) (Table, bool, error) {
	rb := NewRawBuffer(buf)
	if err := rb.check(vector, SizeUOffsetT); err != nil {
		return Table{}, false, err
	}
	span := int(rb.UOffsetT(vector))
	start := 0
	probe := Table{Bytes: buf}
	for span != 0 {
		middle := span / 2
		elem := vector + SizeUOffsetT + UOffsetT((start+middle)*SizeUOffsetT)
		pos, err := probe.Indirect(elem)
		if err != nil {
			return Table{}, false, err
		}
		probe.Pos = pos
		comp, err := cmp(probe)
		if err != nil {
			return Table{}, false, err
		}
		switch {
		case comp > 0:
			span = middle
		case comp < 0:
			middle++
			start += middle
			span -= middle
		default:
			return probe, true, nil
		}
	}
	return Table{}, false, nil
}

// CompareIntKeys orders two integer keys by numeric difference.
func CompareIntKeys(candidate, key int64) int {
	switch {
	case candidate < key:
		return -1
	case candidate > key:
		return 1
	default:
		return 0
	}
}

// Int32KeyCompare builds a KeyCompare over an int32 key field at keyField.
// An absent field compares as its default, 0.
func Int32KeyCompare(keyField VOffsetT, key int32) KeyCompare {
	return func(t Table) (int, error) {
		v, err := t.GetInt32Slot(keyField, 0)
		if err != nil {
			return 0, err
		}
		return CompareIntKeys(int64(v), int64(key)), nil
	}
}

// Int64KeyCompare builds a KeyCompare over an int64 key field at keyField.
func Int64KeyCompare(keyField VOffsetT, key int64) KeyCompare {
	return func(t Table) (int, error) {
		v, err := t.GetInt64Slot(keyField, 0)
		if err != nil {
			return 0, err
		}
		return CompareIntKeys(v, key), nil
	}
}

// StringKeyCompare builds a KeyCompare over a string key field at keyField.
// Ordering is bytewise: shared prefix first, then length, so a shorter
// string sorts before its extensions. An absent field compares as empty.
func StringKeyCompare(keyField VOffsetT, key []byte) KeyCompare {
	return func(t Table) (int, error) {
		off, err := t.Offset(keyField)
		if err != nil {
			return 0, err
		}
		if off == 0 {
			return bytes.Compare(nil, key), nil
		}
		b, err := t.ByteVector(t.Pos + UOffsetT(off))
		if err != nil {
			return 0, err
		}
		return bytes.Compare(b, key), nil
	}
}
