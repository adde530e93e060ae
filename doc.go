// Package flatbuffers provides facilities to read and write flatbuffers
// objects.
//
// A Builder assembles an encoded object graph back-to-front inside a single
// byte buffer: leaves (strings, vectors, nested tables) are created first,
// then the tables referencing them, and finally Finish writes the root
// offset. The finished byte range is position independent; every reference
// inside it is a relative offset.
//
// A Table is a read cursor over a finished buffer. Field access resolves
// through the table's vtable, so fields absent from the buffer (omitted
// defaults, or fields added to the schema after the buffer was written)
// decode to their defaults without any up-front parsing pass. Any number of
// Tables may read the same buffer concurrently.
package flatbuffers
