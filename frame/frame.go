// Package frame implements the per-thread operand stack and local-variable
// array (spec.md §4.5's "frame" module): fixed-width 4-byte Slots, with
// long/double values split across two consecutive slots in "higher-order
// first" order. Grounded on original_source/src/mem/stack.rs's
// JvmStack/Frame and src/mem/mod.rs's Slot/Slot2/split_slot2, restructured
// from the Rust source's mostly-commented-out sketch into a working,
// capacity-checked Go type in the idiom jacobin's jvm/thread+frames
// packages use (referenced by name in jvm/errors_test.go).
package frame

import (
	"encoding/binary"
	"fmt"

	"jacovm/classfile"
	"jacovm/excnames"
	"jacovm/metaspace"
)

// Slot is one 32-bit local-variable or operand-stack cell.
type Slot uint32

// SplitWide splits an 8-byte value into its two constituent Slots, the
// higher-order bytes first, matching split_slot2's [0:4]=higher,
// [4:8]=lower convention.
func SplitWide(v uint64) (hi, lo Slot) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return Slot(binary.BigEndian.Uint32(buf[0:4])), Slot(binary.BigEndian.Uint32(buf[4:8]))
}

// JoinWide recombines a (hi, lo) Slot pair produced by SplitWide back into
// the original 8-byte value.
func JoinWide(hi, lo Slot) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}

// Frame is one method activation: its local variables, its operand stack,
// the owning Klass and Method, and the program counter into the method's
// bytecode. Exactly the fields original_source/src/mem/stack.rs's Frame
// sketches (locals/operands/klass/descriptor), plus the Method pointer and
// pc this core's interpreter actually needs to run.
type Frame struct {
	Klass  *metaspace.Klass
	Method *classfile.Method

	Locals   []Slot
	operands []Slot // accessed through Push/Pop/Peek; capacity-bound by MaxStack

	PC int
}

// New allocates a Frame for invoking method on klass: MaxLocals local slots
// (zeroed) and an empty operand stack with MaxStack capacity reserved.
func New(klass *metaspace.Klass, method *classfile.Method) (*Frame, error) {
	if method.Code == nil {
		return nil, fmt.Errorf("cannot create a frame for %s.%s: no Code attribute (abstract or native)", klass.Name, method.Name)
	}
	return &Frame{
		Klass:    klass,
		Method:   method,
		Locals:   make([]Slot, method.Code.MaxLocals),
		operands: make([]Slot, 0, method.Code.MaxStack),
	}, nil
}

// Push pushes a single-width value onto the operand stack, returning a
// StackOverflowError throwable if MaxStack is already exhausted.
func (f *Frame) Push(v Slot) error {
	if len(f.operands) >= cap(f.operands) {
		return excnames.New(excnames.StackOverflowError, "")
	}
	f.operands = append(f.operands, v)
	return nil
}

// Pop removes and returns the top operand-stack slot.
func (f *Frame) Pop() (Slot, error) {
	if len(f.operands) == 0 {
		return 0, fmt.Errorf("operand stack underflow in %s.%s", f.Klass.Name, f.Method.Name)
	}
	v := f.operands[len(f.operands)-1]
	f.operands = f.operands[:len(f.operands)-1]
	return v, nil
}

// PushWide pushes an 8-byte value as two slots, higher-order first, so
// PopWide's pop-lo-then-pop-hi order reconstructs it correctly.
func (f *Frame) PushWide(v uint64) error {
	hi, lo := SplitWide(v)
	if err := f.Push(hi); err != nil {
		return err
	}
	return f.Push(lo)
}

// PopWide pops two slots and reassembles the 8-byte value SplitWide/PushWide
// encoded, lo popping first since it was pushed last.
func (f *Frame) PopWide() (uint64, error) {
	lo, err := f.Pop()
	if err != nil {
		return 0, err
	}
	hi, err := f.Pop()
	if err != nil {
		return 0, err
	}
	return JoinWide(hi, lo), nil
}

// OperandDepth returns the current operand-stack size, for diagnostics and
// tests.
func (f *Frame) OperandDepth() int { return len(f.operands) }

// ClearOperands discards every slot currently on the operand stack, without
// touching its reserved capacity. Used when a matched exception handler is
// entered: spec.md §4.8 requires the operand stack be cleared before the
// caught exception's reference is pushed as the handler's sole operand.
func (f *Frame) ClearOperands() {
	f.operands = f.operands[:0]
}
