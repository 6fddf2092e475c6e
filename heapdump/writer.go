// Package heapdump writes a minimal binary hprof file describing every
// class the metaspace has loaded and every live instance reachable from a
// published GC root set. Grounded on
// _examples/randall77-hprof/dumptohprof.go's tag-stream assembly
// (addTag/append32/appendId, the HPROF_* record constants, the
// newId/newSerial counters) — adapted from that tool's Go-runtime-heap
// model to jacovm's own metaspace.Klass/object.Object types rather than
// ported byte-for-byte, and trimmed to the record subset a JVM heap
// actually needs: class dumps, instance dumps, and root records.
package heapdump

import (
	"encoding/binary"
	"math"

	"jacovm/metaspace"
	"jacovm/object"
)

// hprof record tags (see dumptohprof.go's HPROF_* block).
const (
	tagUTF8      = 1
	tagLoadClass = 2
	tagHeapDump  = 12

	subtagRootUnknown  = 0xff
	subtagClassDump    = 0x20
	subtagInstanceDump = 0x21
)

// Writer accumulates hprof records and renders them to a complete file.
// IDs are synthetic 8-byte sequence numbers, not real memory addresses —
// this core has no pointer-addressable heap (see SPEC_FULL.md's heap
// Non-goals), so object identity for dump purposes is assigned here.
type Writer struct {
	out []byte // finished top-level records (UTF8, LOAD_CLASS)
	seg []byte // in-progress HPROF_HEAP_DUMP segment body

	nextID    uint64
	classIDs  map[*metaspace.Klass]uint64
	stringIDs map[string]uint64
}

// New returns a Writer with the standard hprof file header already written.
func New() *Writer {
	w := &Writer{
		nextID:    1,
		classIDs:  make(map[*metaspace.Klass]uint64),
		stringIDs: make(map[string]uint64),
	}
	w.out = append(w.out, []byte("JAVA PROFILE 1.0.1\x00")...)
	w.out = append32(w.out, 8) // identifiers are 8 bytes
	w.out = append32(w.out, 0) // high word of base timestamp
	w.out = append32(w.out, 0) // low word of base timestamp
	return w
}

func (w *Writer) allocID() uint64 {
	id := w.nextID
	w.nextID++
	return id
}

func (w *Writer) addTag(tag byte, body []byte) {
	w.out = append(w.out, tag)
	w.out = append32(w.out, 0) // delta time, unused
	w.out = append32(w.out, uint32(len(body)))
	w.out = append(w.out, body...)
}

// internString returns s's id, writing a HPROF_UTF8 record the first time
// s is seen.
func (w *Writer) internString(s string) uint64 {
	if id, ok := w.stringIDs[s]; ok {
		return id
	}
	id := w.allocID()
	var body []byte
	body = append64(body, id)
	body = append(body, s...)
	w.addTag(tagUTF8, body)
	w.stringIDs[s] = id
	return id
}

// AddClass records k as a loaded class, emitting its name string and a
// HPROF_LOAD_CLASS record plus a HPROF_GC_CLASS_DUMP entry in the current
// heap-dump segment. Idempotent: calling it twice for the same Klass
// returns the same id without duplicating records.
func (w *Writer) AddClass(k *metaspace.Klass) uint64 {
	if id, ok := w.classIDs[k]; ok {
		return id
	}
	id := w.allocID()
	w.classIDs[k] = id

	nameID := w.internString(k.Name)
	var loadBody []byte
	loadBody = append32(loadBody, uint32(id)) // class serial number
	loadBody = append64(loadBody, id)         // class object id
	loadBody = append32(loadBody, 0)          // stack trace serial number
	loadBody = append64(loadBody, nameID)
	w.addTag(tagLoadClass, loadBody)

	var superID uint64
	if k.Superclass != nil {
		superID = w.AddClass(k.Superclass)
	}
	var dump []byte
	dump = append(dump, subtagClassDump)
	dump = append64(dump, id)
	dump = append32(dump, 0) // stack trace serial number
	dump = append64(dump, superID)
	dump = append64(dump, 0) // class loader object id
	dump = append64(dump, 0) // signers object id
	dump = append64(dump, 0) // protection domain object id
	dump = append64(dump, 0) // reserved
	dump = append64(dump, 0) // reserved
	dump = append32(dump, uint32(k.InstanceSize)) // instance size
	dump = append16(dump, 0)                      // constant pool size
	dump = append16(dump, uint16(len(k.Statics)))
	for name, v := range k.Statics {
		dump = append64(dump, w.internString(name))
		dump = append(dump, staticValueTypeTag(v))
		dump = appendStaticValue(dump, v)
	}
	dump = append16(dump, uint16(len(k.Layout))) // instance field count
	for name := range k.Layout {
		dump = append64(dump, w.internString(name))
		dump = append(dump, byte(T_OBJECT))
	}
	w.seg = append(w.seg, dump...)
	return id
}

// AddInstance records obj as an instance of klassID (already added via
// AddClass) in the current heap-dump segment, returning obj's synthetic id.
func (w *Writer) AddInstance(obj *object.Object, klassID uint64) uint64 {
	id := w.allocID()
	var dump []byte
	dump = append(dump, subtagInstanceDump)
	dump = append64(dump, id)
	dump = append32(dump, 0) // stack trace serial number
	dump = append64(dump, klassID)
	dump = append32(dump, uint32(4*len(obj.FieldTable))) // field bytes length (approx)
	for _, f := range obj.FieldTable {
		dump = appendStaticValue(dump, f.Fvalue)
	}
	w.seg = append(w.seg, dump...)
	return id
}

// AddRoot marks id as a GC root (e.g. a frame local or a static field),
// emitting a HPROF_GC_ROOT_UNKNOWN entry — this core doesn't distinguish
// root kinds (stack local vs. static vs. JNI handle) the way a production
// JVM's heap dump does.
func (w *Writer) AddRoot(id uint64) {
	var dump []byte
	dump = append(dump, subtagRootUnknown)
	dump = append64(dump, id)
	w.seg = append(w.seg, dump...)
}

// Bytes finalizes the writer: wraps the accumulated class/instance/root
// records into a single HPROF_HEAP_DUMP tag appended after every UTF8/
// LOAD_CLASS record, and returns the complete file.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.out))
	copy(out, w.out)
	if len(w.seg) > 0 {
		out = append(out, tagHeapDump)
		out = append32(out, 0)
		out = append32(out, uint32(len(w.seg)))
		out = append(out, w.seg...)
	}
	return out
}

// T_OBJECT is hprof's basic-type tag for a reference-typed field — jacovm
// doesn't model compressed oops or primitive-array unboxing in its dump,
// every instance field is dumped as an 8-byte id.
const T_OBJECT = 2

func staticValueTypeTag(v interface{}) byte {
	switch v.(type) {
	case int32:
		return 10 // T_INT
	case int64:
		return 11 // T_LONG
	case float32:
		return 6 // T_FLOAT
	case float64:
		return 7 // T_DOUBLE
	default:
		return T_OBJECT
	}
}

func appendStaticValue(b []byte, v interface{}) []byte {
	switch t := v.(type) {
	case int32:
		return append32(b, uint32(t))
	case int64:
		return append64(b, uint64(t))
	case float32:
		return append32(b, math.Float32bits(t))
	case float64:
		return append64(b, math.Float64bits(t))
	default:
		return append64(b, 0) // null reference
	}
}

func append16(b []byte, v uint16) []byte { return binary.BigEndian.AppendUint16(b, v) }
func append32(b []byte, v uint32) []byte { return binary.BigEndian.AppendUint32(b, v) }
func append64(b []byte, v uint64) []byte { return binary.BigEndian.AppendUint64(b, v) }
