package metaspace

import (
	"fmt"
	"sync"

	"jacovm/classfile"
	"jacovm/excnames"
)

// key is the (name, loader) pair the metaspace cache is addressed by,
// matching jacobin's per-Classloader MethArea map generalized to a single
// shared cache since this core's loader identities are plain strings.
type key struct {
	name   string
	loader string
}

// Metaspace is the process-wide cache of every linked Klass, keyed by
// (class name, loader name). Grounded on jacobin's classloader.go
// MethAreaInsert/MethAreaFetch and original_source's Metaspace/RefKey
// lookup table.
type Metaspace struct {
	mu      sync.RWMutex
	classes map[key]*Klass
}

// New returns an empty Metaspace pre-populated with the phantom primitive
// klasses (int, long, boolean, ...) every array-of-primitive type needs a
// Klass pointer for.
func New() *Metaspace {
	m := &Metaspace{classes: make(map[key]*Klass)}
	for _, name := range []string{"I", "J", "F", "D", "B", "C", "S", "Z"} {
		m.classes[key{name: name, loader: ""}] = newPhantomKlass(name)
	}
	return m
}

// newPhantomKlass builds a Klass with no backing class file, used for
// primitive types and array component types that never have bytecode to
// decode. Mirrors original_source/src/mem/klass.rs's new_phantom_klass.
func newPhantomKlass(name string) *Klass {
	return &Klass{
		Name:   name,
		Loader: "",
		Class:  nil,
		Vtable: map[string]MethodRef{},
		Itable: map[string]MethodRef{},
		Layout: map[string]FieldLayout{},
		Status: StatusLoaded,
	}
}

// ClassSource resolves a class name to its raw class-file bytes —
// decoupled from package classpath so metaspace can be tested without a
// real classpath.
type ClassSource interface {
	LoadRawClass(name string) ([]byte, error)
}

// Find returns the already-linked Klass for (name, loader), or ok=false if
// it hasn't been defined yet.
func (m *Metaspace) Find(name, loader string) (*Klass, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.classes[key{name: name, loader: loader}]
	return k, ok
}

// DefineClass decodes raw class bytes, recursively resolves and links its
// superclass and superinterfaces (loading them via src if not already
// cached), builds this class's own vtable/itable/layout, and publishes the
// result to the cache. Returns the cached Klass unchanged if name is
// already defined for loader (define is idempotent, matching
// classloader.go's exists-check in getJarFile/LoadClassFromNameOnly).
func (m *Metaspace) DefineClass(name, loader string, raw []byte, src ClassSource) (*Klass, error) {
	if k, ok := m.Find(name, loader); ok {
		return k, nil
	}

	cls, err := classfile.Decode(raw)
	if err != nil {
		return nil, err
	}
	if cls.ThisName != name {
		return nil, fmt.Errorf("class file for %q actually declares %q", name, cls.ThisName)
	}

	k := &Klass{Name: name, Loader: loader, Class: cls, Status: StatusLoading}

	m.mu.Lock()
	m.classes[key{name: name, loader: loader}] = k
	m.mu.Unlock()

	if cls.SuperName != "" {
		super, err := m.resolve(cls.SuperName, loader, src)
		if err != nil {
			return nil, err
		}
		k.Superclass = super
	}
	for _, ifaceName := range cls.Interfaces {
		iface, err := m.resolve(ifaceName, loader, src)
		if err != nil {
			return nil, err
		}
		k.Interfaces = append(k.Interfaces, iface)
	}

	if err := link(k); err != nil {
		return nil, err
	}
	return k, nil
}

// resolve returns the already-cached Klass for name, or loads and defines
// it via src if not yet present — the recursive step that lets DefineClass
// chase a superclass chain without the caller pre-loading every ancestor.
func (m *Metaspace) resolve(name, loader string, src ClassSource) (*Klass, error) {
	if k, ok := m.Find(name, loader); ok {
		return k, nil
	}
	raw, err := src.LoadRawClass(name)
	if err != nil {
		return nil, excnames.New(excnames.ClassNotFoundException, name)
	}
	return m.DefineClass(name, loader, raw, src)
}

// Count returns the number of classes currently defined, across all
// loaders, matching jacobin's GetCountOfLoadedClasses.
func (m *Metaspace) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.classes)
}

// All returns every currently defined Klass, across all loaders — the
// enumeration a heap-dump or diagnostic listing walks, matching jacobin's
// GetClassCollection.
func (m *Metaspace) All() []*Klass {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Klass, 0, len(m.classes))
	for _, k := range m.classes {
		out = append(out, k)
	}
	return out
}
