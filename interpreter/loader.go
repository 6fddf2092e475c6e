package interpreter

import (
	"fmt"

	"jacovm/classfile"
	"jacovm/descriptor"
	"jacovm/excnames"
	"jacovm/metaspace"
)

// Loader resolves a class name to its Klass, loading and linking it through
// the metaspace if it hasn't been already. Kept as an interface so
// interpreter tests can substitute an in-memory class set instead of a real
// classpath.
type Loader interface {
	LoadClass(name string) (*metaspace.Klass, error)
}

// classLoader adapts a metaspace.Metaspace plus a metaspace.ClassSource into
// a Loader, the production wiring cmd/jacovm assembles.
type classLoader struct {
	ms  *metaspace.Metaspace
	src metaspace.ClassSource
}

// NewLoader builds the standard Loader: metaspace-backed, sourcing raw
// bytes from src (typically a classpath.Classpath).
func NewLoader(ms *metaspace.Metaspace, src metaspace.ClassSource) Loader {
	return &classLoader{ms: ms, src: src}
}

func (l *classLoader) LoadClass(name string) (*metaspace.Klass, error) {
	if k, ok := l.ms.Find(name, "app"); ok {
		return k, nil
	}
	raw, err := l.src.LoadRawClass(name)
	if err != nil {
		return nil, excnames.New(excnames.ClassNotFoundException, name)
	}
	return l.ms.DefineClass(name, "app", raw, l.src)
}

// ensureInitialized implements class-initialization-on-demand (spec.md
// §4.9): the first caller to observe k uninitialized marks it initialized
// and then runs <clinit> (if present); later callers either see it already
// marked or are racing the first caller, in which case they skip running it
// themselves. Grounded on original_source/src/interpreter/mod.rs's
// load_class, which stores the initialized flag before calling <clinit> so
// that a <clinit> referencing its own class's statics doesn't re-enter.
func (in *Interpreter) ensureInitialized(k *metaspace.Klass) error {
	if !k.TryLockInit() {
		return nil // already initialized, or another goroutine just claimed it
	}

	if k.Class == nil {
		return nil // phantom klass, nothing to run
	}
	clinit := k.Class.FindMethod("<clinit>", "()V")
	if clinit == nil {
		return nil
	}
	_, err := in.invokeMethod(k, clinit, nil)
	if err != nil {
		return &excnames.JavaThrowable{
			ClassName: excnames.ExceptionInInitializerError,
			Message:   fmt.Sprintf("%s: %v", k.Name, err),
		}
	}
	return nil
}

// defaultValue returns the zero value for a field descriptor, mirroring
// jvm/instantiate.go's switch on the descriptor's leading character.
func defaultValue(desc string) (interface{}, error) {
	ft, err := descriptor.ParseField(desc)
	if err != nil {
		return nil, err
	}
	switch ft.Kind {
	case descriptor.KindClass, descriptor.KindArray:
		return nil, nil
	case descriptor.KindFloat:
		return float32(0), nil
	case descriptor.KindDouble:
		return float64(0), nil
	case descriptor.KindLong:
		return int64(0), nil
	default: // byte, char, int, short, boolean
		return int32(0), nil
	}
}

// staticValue returns k's current value for field name/desc, initializing
// it on first access to the field's ConstantValue attribute if present, or
// else to its descriptor's zero value.
func staticValue(k *metaspace.Klass, f *classfile.Field) (interface{}, error) {
	if k.Statics == nil {
		k.Statics = make(map[string]interface{})
	}
	if v, ok := k.Statics[f.Name]; ok {
		return v, nil
	}
	v, err := defaultValue(f.Descriptor)
	if err != nil {
		return nil, err
	}
	if f.ConstantValue != nil {
		v = constantValueOf(f.ConstantValue)
	}
	k.Statics[f.Name] = v
	return v, nil
}

// constantValueOf converts a decoded ConstantValue pool entry to the Go
// value it represents. String ConstantValues are left unresolved (nil):
// chasing a StringRef to its backing object requires the interned-string
// machinery this core's Non-goals exclude (see SPEC_FULL.md).
func constantValueOf(e *classfile.Entry) interface{} {
	switch e.Tag {
	case classfile.TagInteger:
		return e.IntVal
	case classfile.TagFloat:
		return e.FloatVal
	case classfile.TagLong:
		return e.LongVal
	case classfile.TagDouble:
		return e.DoubleVal
	default:
		return nil
	}
}

// findStaticField walks k's superclass chain looking for a static field
// named name, since a static field reference may resolve through an
// inherited declaration.
func findStaticField(k *metaspace.Klass, name string) (*metaspace.Klass, *classfile.Field) {
	for cur := k; cur != nil; cur = cur.Superclass {
		if cur.Class == nil {
			continue
		}
		if f := cur.Class.FindField(name); f != nil && f.IsStatic() {
			return cur, f
		}
	}
	return nil, nil
}
