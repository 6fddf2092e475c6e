package interpreter

import (
	"fmt"
	"math"

	"jacovm/classfile"
	"jacovm/descriptor"
	"jacovm/excnames"
	"jacovm/frame"
	"jacovm/metaspace"
)

func i32ToSlot(v int32) frame.Slot   { return frame.Slot(uint32(v)) }
func slotToI32(s frame.Slot) int32   { return int32(uint32(s)) }
func f32ToSlot(v float32) frame.Slot { return frame.Slot(math.Float32bits(v)) }
func slotToF32(s frame.Slot) float32 { return math.Float32frombits(uint32(s)) }

// step executes the single instruction at f.PC, advancing f.PC by its own
// length (or setting it directly for control transfers). Returns
// (result, true, nil) on `return`, or (nil, false, err) on any failure —
// including a *excnames.JavaThrowable for a Java-level exception, which
// run() routes through the frame's exception table before giving up.
func (in *Interpreter) step(f *frame.Frame, code []byte) (*frame.Slot, bool, error) {
	op := code[f.PC]
	switch {
	case op == opNop:
		f.PC++

	case op == opAconstNull:
		if err := f.Push(0); err != nil {
			return nil, false, err
		}
		f.PC++

	case op >= opIconstM1 && op <= opIconst5:
		v := int32(op) - 3
		if err := f.Push(i32ToSlot(v)); err != nil {
			return nil, false, err
		}
		f.PC++

	case op == opLconst0 || op == opLconst1:
		v := int64(op) - opLconst0
		if err := f.PushWide(uint64(v)); err != nil {
			return nil, false, err
		}
		f.PC++

	case op >= opFconst0 && op <= opFconst2:
		v := float32(op) - opFconst0
		if err := f.Push(f32ToSlot(v)); err != nil {
			return nil, false, err
		}
		f.PC++

	case op == opDconst0 || op == opDconst1:
		v := float64(op) - opDconst0
		if err := f.PushWide(math.Float64bits(v)); err != nil {
			return nil, false, err
		}
		f.PC++

	case op == opBipush:
		v := int32(int8(code[f.PC+1]))
		if err := f.Push(i32ToSlot(v)); err != nil {
			return nil, false, err
		}
		f.PC += 2

	case op == opSipush:
		v := int32(s2(code, f.PC+1))
		if err := f.Push(i32ToSlot(v)); err != nil {
			return nil, false, err
		}
		f.PC += 3

	case op >= opIload0 && op <= opIload3:
		idx := int(op - opIload0)
		if err := f.Push(f.Locals[idx]); err != nil {
			return nil, false, err
		}
		f.PC++

	case op >= opIstore0 && op <= opIstore3:
		v, err := f.Pop()
		if err != nil {
			return nil, false, err
		}
		f.Locals[op-opIstore0] = v
		f.PC++

	case op == opIadd:
		right, err := f.Pop()
		if err != nil {
			return nil, false, err
		}
		left, err := f.Pop()
		if err != nil {
			return nil, false, err
		}
		if err := f.Push(i32ToSlot(slotToI32(left) + slotToI32(right))); err != nil {
			return nil, false, err
		}
		f.PC++

	case op == opIinc:
		idx := u1(code, f.PC+1)
		cst := int32(int8(code[f.PC+2]))
		f.Locals[idx] = i32ToSlot(slotToI32(f.Locals[idx]) + cst)
		f.PC += 3

	case op == opIfIcmpge:
		v2, err := f.Pop()
		if err != nil {
			return nil, false, err
		}
		v1, err := f.Pop()
		if err != nil {
			return nil, false, err
		}
		if slotToI32(v1) >= slotToI32(v2) {
			f.PC += int(s2(code, f.PC+1))
		} else {
			f.PC += 3
		}

	case op == opGoto:
		f.PC += int(s2(code, f.PC+1))

	case op == opReturn:
		return nil, true, nil

	case op == opGetstatic:
		return nil, false, in.execGetstatic(f, code)

	case op == opPutstatic:
		return nil, false, in.execPutstatic(f, code)

	case op == opInvokestatic:
		return in.execInvokestatic(f, code)

	default:
		return nil, false, fmt.Errorf("%s.%s: unsupported opcode 0x%02x at pc=%d", f.Klass.Name, f.Method.Name, op, f.PC)
	}
	return nil, false, nil
}

// fieldRef is a resolved getstatic/putstatic target: the Klass that
// actually declares the field (which may be a superclass of the klass
// named in the constant pool reference) and the Field itself.
type fieldRef struct {
	owner *metaspace.Klass
	field *classfile.Field
	desc  string
}

// resolveFieldRef resolves a getstatic/putstatic constant-pool index to its
// owning (loaded + initialized) Klass and declared Field.
func (in *Interpreter) resolveFieldRef(f *frame.Frame, idx uint16) (*fieldRef, error) {
	className, fieldName, desc, err := f.Klass.Class.ConstantPool.RefTriple(idx)
	if err != nil {
		return nil, err
	}
	target, err := in.Loader.LoadClass(className)
	if err != nil {
		return nil, err
	}
	if err := in.ensureInitialized(target); err != nil {
		return nil, err
	}
	owner, field := findStaticField(target, fieldName)
	if field == nil {
		return nil, &excnames.JavaThrowable{ClassName: excnames.NoSuchFieldError, Message: className + "." + fieldName}
	}
	return &fieldRef{owner: owner, field: field, desc: desc}, nil
}

func (in *Interpreter) execGetstatic(f *frame.Frame, code []byte) error {
	idx := u2(code, f.PC+1)
	ref, err := in.resolveFieldRef(f, idx)
	if err != nil {
		return err
	}
	v, err := staticValue(ref.owner, ref.field)
	if err != nil {
		return err
	}
	if err := pushValue(f, ref.desc, v); err != nil {
		return err
	}
	f.PC += 3
	return nil
}

func (in *Interpreter) execPutstatic(f *frame.Frame, code []byte) error {
	idx := u2(code, f.PC+1)
	ref, err := in.resolveFieldRef(f, idx)
	if err != nil {
		return err
	}
	v, err := popValue(f, ref.desc)
	if err != nil {
		return err
	}
	if ref.owner.Statics == nil {
		ref.owner.Statics = map[string]interface{}{}
	}
	ref.owner.Statics[ref.field.Name] = v
	f.PC += 3
	return nil
}

// pushValue pushes a static's Go-typed value onto f's operand stack,
// according to the wide-ness of desc.
func pushValue(f *frame.Frame, desc string, v interface{}) error {
	ft, err := descriptor.ParseField(desc)
	if err != nil {
		return err
	}
	switch ft.Kind {
	case descriptor.KindLong:
		lv, _ := v.(int64)
		return f.PushWide(uint64(lv))
	case descriptor.KindDouble:
		dv, _ := v.(float64)
		return f.PushWide(math.Float64bits(dv))
	case descriptor.KindFloat:
		fv, _ := v.(float32)
		return f.Push(f32ToSlot(fv))
	case descriptor.KindClass, descriptor.KindArray:
		return f.Push(0) // null handle; this core doesn't model heap references as slots
	default:
		iv, _ := v.(int32)
		return f.Push(i32ToSlot(iv))
	}
}

// popValue pops a value off f's operand stack according to desc's width
// and returns it as the Go type staticValue/defaultValue use for that kind.
func popValue(f *frame.Frame, desc string) (interface{}, error) {
	ft, err := descriptor.ParseField(desc)
	if err != nil {
		return nil, err
	}
	switch ft.Kind {
	case descriptor.KindLong:
		w, err := f.PopWide()
		return int64(w), err
	case descriptor.KindDouble:
		w, err := f.PopWide()
		return math.Float64frombits(w), err
	case descriptor.KindFloat:
		s, err := f.Pop()
		return slotToF32(s), err
	case descriptor.KindClass, descriptor.KindArray:
		_, err := f.Pop()
		return nil, err
	default:
		s, err := f.Pop()
		return slotToI32(s), err
	}
}
