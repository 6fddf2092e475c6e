package metaspace

import (
	"encoding/binary"
	"fmt"
	"testing"
)

// fakeSource serves raw class bytes from an in-memory map, keyed by class
// name, so metaspace tests don't need a real classpath.
type fakeSource struct {
	classes map[string][]byte
}

func (f *fakeSource) LoadRawClass(name string) ([]byte, error) {
	data, ok := f.classes[name]
	if !ok {
		return nil, fmt.Errorf("no class named %s", name)
	}
	return data, nil
}

// cpBuilder is a tiny constant-pool-aware class-file byte builder, enough
// to synthesize classes with a superclass and zero members for metaspace
// linking tests.
type cpBuilder struct {
	buf []byte
}

func (b *cpBuilder) u1(v uint8)  { b.buf = append(b.buf, v) }
func (b *cpBuilder) u2(v uint16) { b.buf = binary.BigEndian.AppendUint16(b.buf, v) }
func (b *cpBuilder) u4(v uint32) { b.buf = binary.BigEndian.AppendUint32(b.buf, v) }
func (b *cpBuilder) utf8(s string) {
	b.u1(1) // TagUTF8
	b.u2(uint16(len(s)))
	b.buf = append(b.buf, s...)
}
func (b *cpBuilder) classRef(nameIdx uint16) {
	b.u1(7) // TagClass
	b.u2(nameIdx)
}

// classBytes builds a minimal class named thisName extending superName (or
// no superclass if superName == "").
func classBytes(thisName, superName string) []byte {
	b := &cpBuilder{}
	b.u4(0xCAFEBABE)
	b.u2(0)
	b.u2(61)

	if superName == "" {
		b.u2(3) // constant_pool_count: #1 utf8, #2 class
		b.utf8(thisName)
		b.classRef(1)
		b.u2(0x0021) // access_flags
		b.u2(2)      // this_class
		b.u2(0)      // super_class
	} else {
		b.u2(5) // #1 utf8(this) #2 class(this) #3 utf8(super) #4 class(super)
		b.utf8(thisName)
		b.classRef(1)
		b.utf8(superName)
		b.classRef(3)
		b.u2(0x0021)
		b.u2(2)
		b.u2(4)
	}
	b.u2(0) // interfaces_count
	b.u2(0) // fields_count
	b.u2(0) // methods_count
	b.u2(0) // attributes_count
	return b.buf
}

func TestDefineClassNoSuper(t *testing.T) {
	src := &fakeSource{classes: map[string][]byte{
		"java/lang/Object": classBytes("java/lang/Object", ""),
	}}
	m := New()
	k, err := m.DefineClass("java/lang/Object", "boot", src.classes["java/lang/Object"], src)
	if err != nil {
		t.Fatal(err)
	}
	if k.Superclass != nil {
		t.Error("Object should have no superclass")
	}
	if k.Status != StatusLoaded {
		t.Errorf("Status = %c, want L", k.Status)
	}
}

func TestDefineClassResolvesSuperclassChain(t *testing.T) {
	src := &fakeSource{classes: map[string][]byte{
		"java/lang/Object": classBytes("java/lang/Object", ""),
		"Base":             classBytes("Base", "java/lang/Object"),
		"Derived":          classBytes("Derived", "Base"),
	}}
	m := New()
	k, err := m.DefineClass("Derived", "app", src.classes["Derived"], src)
	if err != nil {
		t.Fatal(err)
	}
	if k.Superclass == nil || k.Superclass.Name != "Base" {
		t.Fatalf("expected superclass Base, got %+v", k.Superclass)
	}
	if k.Superclass.Superclass == nil || k.Superclass.Superclass.Name != "java/lang/Object" {
		t.Fatal("expected superclass chain to reach java/lang/Object")
	}
	if m.Count() != 11 { // 8 phantom primitive klasses + Object, Base, Derived
		t.Errorf("Count() = %d, want 11", m.Count())
	}
}

func TestDefineClassIsIdempotent(t *testing.T) {
	src := &fakeSource{classes: map[string][]byte{
		"java/lang/Object": classBytes("java/lang/Object", ""),
	}}
	m := New()
	raw := src.classes["java/lang/Object"]
	k1, err := m.DefineClass("java/lang/Object", "boot", raw, src)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := m.DefineClass("java/lang/Object", "boot", raw, src)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Error("DefineClass should return the cached Klass on redefine")
	}
}

func TestPhantomPrimitiveKlasses(t *testing.T) {
	m := New()
	k, ok := m.Find("I", "")
	if !ok {
		t.Fatal("expected phantom int klass")
	}
	if k.Class != nil {
		t.Error("phantom klass should have no backing Class")
	}
}

func TestTryLockInitOnlyOneWinner(t *testing.T) {
	k := newPhantomKlass("Test")
	if !k.TryLockInit() {
		t.Fatal("first TryLockInit should acquire")
	}
	if !k.IsInitialized() {
		t.Error("expected klass marked initialized immediately, before <clinit> would run")
	}
	if k.TryLockInit() {
		t.Error("TryLockInit should not re-acquire after initialization completes")
	}
}
