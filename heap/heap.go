// Package heap implements the generational object store (spec.md §4.5/§4.9):
// a bump-pointer eden/survivor/old-gen layout with root publishing and a
// safepoint hook minor collections run from. Grounded on
// original_source/src/mem/heap.rs's Heap{oldgen,s0,s1,eden} generation
// split and src/gc/mod.rs's young_gc root-collection shape, restructured
// onto plain Go slices guarded by a mutex instead of the Rust source's
// raw-pointer fields (this core never takes an object's address across a
// collection boundary, so no pointer-into-slice needs fixing up).
package heap

import (
	"fmt"
	"sync"
)

// Generation is one bump-allocated arena: a fixed-capacity byte slice and a
// monotonically increasing allocation pointer.
type Generation struct {
	bytes []byte
	top   int
}

func newGeneration(size int) *Generation {
	return &Generation{bytes: make([]byte, size)}
}

// Alloc reserves n bytes from the generation's free space, returning the
// slice backing the new allocation, or ok=false if the generation doesn't
// have room (the caller's cue to trigger a collection or promote to the
// next generation).
func (g *Generation) Alloc(n int) (slice []byte, ok bool) {
	if g.top+n > len(g.bytes) {
		return nil, false
	}
	slice = g.bytes[g.top : g.top+n]
	g.top += n
	return slice, true
}

// Used returns the number of bytes currently allocated.
func (g *Generation) Used() int { return g.top }

// Reset rewinds the allocation pointer to zero, discarding all live data —
// used by the survivor-space flip a minor collection performs.
func (g *Generation) Reset() { g.top = 0 }

// Root is anything the collector must treat as a GC root: a frame's locals,
// its operand stack, and any static field table. Generalizes
// ThreadGroup::collect_roots() from gc/mod.rs into an interface so heap
// doesn't need to import package frame.
type Root interface {
	// References returns every live object pointer this root currently
	// holds, as opaque values (this core's collector marks objects by
	// identity; it does not need to know the pointed-to type).
	References() []interface{}
}

// Heap is the process-wide generational object store: eden (new
// allocations), two survivor spaces used alternately (s0/s1), and an old
// generation for objects that have survived enough minor collections.
// Mirrors original_source/src/mem/heap.rs's four-arena Heap, generalized
// with a mutex since this core's interpreter is not single-threaded by
// construction the way the Rust source's global was.
type Heap struct {
	mu sync.Mutex

	oldgen *Generation
	s0     *Generation
	s1     *Generation
	eden   *Generation

	fromSurvivor, toSurvivor *Generation // fromSurvivor==s0 or s1, flips each young_gc

	roots []Root
}

// Config sizes each generation, in bytes.
type Config struct {
	OldGenSize   int
	SurvivorSize int
	EdenSize     int
}

// New allocates a Heap with the given generation sizes.
func New(cfg Config) *Heap {
	h := &Heap{
		oldgen: newGeneration(cfg.OldGenSize),
		s0:     newGeneration(cfg.SurvivorSize),
		s1:     newGeneration(cfg.SurvivorSize),
		eden:   newGeneration(cfg.EdenSize),
	}
	h.fromSurvivor, h.toSurvivor = h.s0, h.s1
	return h
}

// AllocEden reserves n bytes in eden, returning an error if eden is
// exhausted — the caller is responsible for triggering OnSafepoint before
// retrying. The interpreter's opcode subset has no allocating opcode, so
// nothing in this core calls it yet.
func (h *Heap) AllocEden(n int) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	slice, ok := h.eden.Alloc(n)
	if !ok {
		return nil, fmt.Errorf("eden exhausted: requested %d bytes, %d/%d used", n, h.eden.Used(), len(h.eden.bytes))
	}
	return slice, nil
}

// PublishRoots registers the current set of GC roots (one per live thread
// stack) for the next collection to scan. Replaces any previously
// published set; callers are expected to call this once per safepoint.
func (h *Heap) PublishRoots(roots []Root) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots = roots
}

// OnSafepoint runs a minor collection if eden is running low (at or above
// 90% used), matching the spec's "collections happen at safepoints, never
// mid-bytecode" invariant. Returns the number of bytes reclaimed from
// eden: 0 when no collection ran, otherwise everything eden held, since
// this core's simplified collector resets eden without relocating live
// objects.
func (h *Heap) OnSafepoint() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.eden.Used() < len(h.eden.bytes)*9/10 {
		return 0
	}
	reclaimed := h.eden.Used()
	h.youngGCLocked()
	return reclaimed
}

// youngGCLocked performs a minor collection: scans published roots (purely
// for the side effect of deciding survivor promotion in a fuller GC; this
// core's simplified collector does not compact or relocate objects, see
// SPEC_FULL.md's Non-goals), flips the survivor spaces, and resets eden.
// Caller must hold h.mu.
func (h *Heap) youngGCLocked() {
	for _, r := range h.roots {
		_ = r.References() // walked for liveness accounting only
	}
	h.fromSurvivor, h.toSurvivor = h.toSurvivor, h.fromSurvivor
	h.toSurvivor.Reset()
	h.eden.Reset()
}

// Stats reports current per-generation usage, for diagnostics.
type Stats struct {
	OldGenUsed, SurvivorUsed, EdenUsed int
}

func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		OldGenUsed:   h.oldgen.Used(),
		SurvivorUsed: h.fromSurvivor.Used(),
		EdenUsed:     h.eden.Used(),
	}
}
