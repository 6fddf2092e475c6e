// Package metaspace holds every loaded class's linked representation (the
// vtable, itable, and instance-layout construction spec.md §4.4 mandates)
// and the name+loader-keyed cache that makes DefineClass/FindClass
// idempotent. Grounded on original_source/src/mem/klass.rs's Klass
// (vtable/itable/layout/initialized/mutex fields and their construction)
// and jacobin's classloader.go Classloader/Klass.Status state machine for
// the Go-side concurrency idiom.
package metaspace

import (
	"sync"

	"jacovm/classfile"
)

// Status mirrors jacobin's single-byte Klass.Status state machine:
// 'I' while a class is being loaded/linked, 'L' once it's loaded and
// linked, 'N' once it has been marked initialized.
type Status byte

const (
	StatusLoading     Status = 'I'
	StatusLoaded      Status = 'L'
	StatusInitialized Status = 'N' // set by TryLockInit, before <clinit> runs
)

// MethodRef names one resolved, concrete vtable/itable slot: the Klass that
// declares the method and the Method itself. A nil Method.Code means the
// method is abstract and invoking it is a linkage error.
type MethodRef struct {
	Owner  *Klass
	Method *classfile.Method
}

// FieldLayout records a single instance field's byte offset and width
// within an object's field storage, the Go analogue of the Rust source's
// `layout: HashMap<RefKey, (usize, usize)>`.
type FieldLayout struct {
	Offset int
	Size   int
}

// Klass is the metaspace's linked representation of a loaded class: its
// decoded bytecode, its superclass/superinterface chain, and the
// vtable/itable/layout built from them.
type Klass struct {
	Name       string
	Loader     string
	Class      *classfile.Class // nil for phantom primitive/array klasses
	Superclass *Klass
	Interfaces []*Klass

	// Vtable holds one entry per virtual method slot, keyed by
	// "name"+"descriptor", resolved to the most-derived override.
	Vtable map[string]MethodRef
	// Itable holds one entry per interface method slot this klass
	// implements, keyed the same way as Vtable.
	Itable map[string]MethodRef
	// Layout maps each instance field's name to its slot.
	Layout map[string]FieldLayout
	// InstanceSize is the total byte footprint of an instance's field
	// storage, the sum of every Layout entry's width.
	InstanceSize int

	Status Status

	mu          sync.Mutex
	initialized bool

	// Statics holds this klass's own static field values, each filled in on
	// the first getstatic or putstatic of that field. Access is not guarded
	// by mu.
	Statics map[string]interface{}
}

// IsInitialized reports whether <clinit> has run (or this klass needs none).
func (k *Klass) IsInitialized() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.initialized
}

// TryLockInit implements the class-initialization-on-demand discipline
// spec.md §4.9 mandates: the first caller to observe the class uninitialized
// marks it initialized *before* running <clinit> and becomes responsible for
// running it; later callers see it already initialized and do nothing.
// Returns acquired=true only for the caller that must run <clinit>.
//
// The flag is set, and k.mu released, before <clinit> runs — not after —
// so that a <clinit> which itself touches this class's statics (the
// canonical case: `putstatic` on the class being initialized) observes
// IsInitialized()==true and doesn't re-enter or deadlock on the non-reentrant
// mutex. Mirrors original_source/src/interpreter/mod.rs's
// `initialized.store(true)` before `call(clinit)`.
func (k *Klass) TryLockInit() (acquired bool) {
	k.mu.Lock()
	if k.initialized {
		k.mu.Unlock()
		return false
	}
	k.initialized = true
	k.Status = StatusInitialized
	k.mu.Unlock()
	return true
}

// IsInterface reports whether this klass describes an interface.
func (k *Klass) IsInterface() bool {
	return k.Class != nil && k.Class.IsInterface()
}

// FindVirtualMethod resolves a (name, descriptor) pair through the vtable,
// the result of single, most-derived-override dispatch.
func (k *Klass) FindVirtualMethod(name, descriptor string) (MethodRef, bool) {
	ref, ok := k.Vtable[name+descriptor]
	return ref, ok
}

// FindInterfaceMethod resolves a (name, descriptor) pair through the itable.
func (k *Klass) FindInterfaceMethod(name, descriptor string) (MethodRef, bool) {
	ref, ok := k.Itable[name+descriptor]
	return ref, ok
}

// FindStaticMethod walks this klass's own Class.Methods for a direct,
// non-inherited static method match — static dispatch never goes through
// the vtable.
func (k *Klass) FindStaticMethod(name, descriptor string) (*classfile.Method, bool) {
	if k.Class == nil {
		return nil, false
	}
	m := k.Class.FindMethod(name, descriptor)
	if m == nil || !m.IsStatic() {
		return nil, false
	}
	return m, true
}

// IsSubclassOf reports whether k is the same klass as, or a transitive
// subclass of, other.
func (k *Klass) IsSubclassOf(other *Klass) bool {
	for cur := k; cur != nil; cur = cur.Superclass {
		if cur == other {
			return true
		}
	}
	return false
}

// Implements reports whether k (or a superclass) declares iface among its
// superinterfaces, directly or transitively.
func (k *Klass) Implements(iface *Klass) bool {
	for cur := k; cur != nil; cur = cur.Superclass {
		for _, i := range cur.Interfaces {
			if i == iface || i.Implements(iface) {
				return true
			}
		}
	}
	return false
}
