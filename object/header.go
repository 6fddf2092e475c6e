// Package object implements the object header and instance/array payload
// model (spec.md §4.5). Grounded on original_source/src/mem/klass.rs's
// ObjHeader (the exact mark-word bit layout) and jacobin's
// object/javaByteArray.go for the Go-side Field/byte-array conversion
// helpers this core reuses for string and byte-array fields.
package object

const (
	lockStateMask uint32 = 0x07
	gcStateMask   uint32 = 0x03
	lockFreeFlag  uint32 = 0x01
	gcAgeMask     uint32 = 0x78
	gcAgeShift           = 3
	gcAgeMax             = gcAgeMask >> gcAgeShift
)

// Header is the object header every heap-allocated instance or array
// carries: a mark word (lock state, GC state, and GC age, all packed into
// the low bits) plus an optional array length and a pointer back to the
// Klass describing its layout. A nil Size means "this is a plain instance,
// not an array" (Klass.IsInstance in the Rust source).
type Header struct {
	Mark  uint32
	Size  *uint32 // nil for instances, set to the element count for arrays
	Klass interface{}
}

// NewInstanceHeader builds a header for a plain (non-array) instance, its
// mark word starting in the lock-free state.
func NewInstanceHeader(klass interface{}) Header {
	return Header{Mark: lockFreeFlag, Size: nil, Klass: klass}
}

// NewArrayHeader builds a header for an array of the given element count,
// its mark word starting in the lock-free state.
func NewArrayHeader(klass interface{}, size uint32) Header {
	return Header{Mark: lockFreeFlag, Size: &size, Klass: klass}
}

// IsInstance reports whether this header describes a plain instance (as
// opposed to an array).
func (h *Header) IsInstance() bool { return h.Size == nil }

// IsLockFree reports whether the object's monitor is currently unheld — the
// mark word's lock-state bits equal the lock-free flag exactly, not just any
// bit overlap.
func (h *Header) IsLockFree() bool {
	return h.Mark&lockStateMask == lockFreeFlag
}

// IsGCStatus reports whether the object is currently marked live by the
// collector — both GC-state bits set.
func (h *Header) IsGCStatus() bool {
	return h.Mark&gcStateMask == gcStateMask
}

// SetGC clears the mark word down to just its GC-state bits, discarding lock
// state and GC age. Mirrors the Rust source's set_gc, which despite the name
// is a reset rather than a set-to-live: `mark &= GC_STATE_MASK`.
func (h *Header) SetGC() {
	h.Mark &= gcStateMask
}

// GetGCAge returns the object's current GC age (0-15), the number of minor
// collections it has survived.
func (h *Header) GetGCAge() uint32 {
	return (h.Mark & gcAgeMask) >> gcAgeShift
}

// IncrGCAge bumps the GC age by one, saturating at the 4-bit field's max.
// Returns true if the age was already saturated (a signal to the collector
// that this object is a promotion candidate), matching the boolean
// "already-maxed" return of the Rust source's incr_gc_age.
func (h *Header) IncrGCAge() bool {
	if h.Mark&gcAgeMask == gcAgeMask {
		return true
	}
	h.Mark += 1 << gcAgeShift
	return false
}
