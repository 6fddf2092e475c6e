package heapdump

import (
	"bytes"
	"testing"

	"jacovm/metaspace"
	"jacovm/object"
)

func TestBytesStartsWithHprofHeader(t *testing.T) {
	w := New()
	got := w.Bytes()
	want := []byte("JAVA PROFILE 1.0.1\x00")
	if !bytes.HasPrefix(got, want) {
		t.Fatalf("Bytes() does not start with the hprof magic header: %q", got[:len(want)])
	}
}

func TestAddClassIsIdempotent(t *testing.T) {
	w := New()
	k := &metaspace.Klass{Name: "java/lang/Object", Layout: map[string]metaspace.FieldLayout{}}
	id1 := w.AddClass(k)
	id2 := w.AddClass(k)
	if id1 != id2 {
		t.Fatalf("AddClass returned different ids for the same Klass: %d vs %d", id1, id2)
	}
}

func TestAddClassRecordsSuperclassChain(t *testing.T) {
	w := New()
	super := &metaspace.Klass{Name: "Base", Layout: map[string]metaspace.FieldLayout{}}
	sub := &metaspace.Klass{Name: "Derived", Superclass: super, Layout: map[string]metaspace.FieldLayout{}}
	subID := w.AddClass(sub)
	superID := w.AddClass(super)
	if subID == superID {
		t.Fatal("subclass and superclass must not share an id")
	}
}

func TestAddInstanceAndRootProduceNonEmptyDump(t *testing.T) {
	w := New()
	k := &metaspace.Klass{Name: "Counter", Layout: map[string]metaspace.FieldLayout{"count": {Offset: 0, Size: 4}}}
	classID := w.AddClass(k)

	obj := object.NewInstance("Counter")
	obj.FieldTable["count"] = &object.Field{Ftype: "I", Fvalue: int32(7)}
	instID := w.AddInstance(obj, classID)
	w.AddRoot(instID)

	out := w.Bytes()
	if len(out) <= len("JAVA PROFILE 1.0.1\x00")+12 {
		t.Fatal("expected a non-trivial heap dump segment after AddClass/AddInstance/AddRoot")
	}
}
