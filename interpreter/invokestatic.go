package interpreter

import (
	"jacovm/descriptor"
	"jacovm/excnames"
	"jacovm/frame"
)

// execInvokestatic resolves and calls a static method, pushing its return
// value (if any) onto the caller's operand stack. Matches step's
// (result, done, err) shape though invokestatic never ends the current
// frame — done is always false here.
func (in *Interpreter) execInvokestatic(f *frame.Frame, code []byte) (*frame.Slot, bool, error) {
	idx := u2(code, f.PC+1)
	className, methodName, desc, err := f.Klass.Class.ConstantPool.RefTriple(idx)
	if err != nil {
		return nil, false, err
	}

	target, err := in.Loader.LoadClass(className)
	if err != nil {
		return nil, false, err
	}
	if err := in.ensureInitialized(target); err != nil {
		return nil, false, err
	}
	method, ok := target.FindStaticMethod(methodName, desc)
	if !ok {
		return nil, false, &excnames.JavaThrowable{ClassName: excnames.NoSuchMethodError, Message: className + "." + methodName + desc}
	}

	methodType, err := descriptor.ParseMethod(desc)
	if err != nil {
		return nil, false, err
	}

	args, err := popArgs(f, methodType.Params)
	if err != nil {
		return nil, false, err
	}

	result, err := in.invokeMethod(target, method, args)
	if err != nil {
		return nil, false, err
	}

	if methodType.Returns != nil {
		if err := pushResult(f, *methodType.Returns, result); err != nil {
			return nil, false, err
		}
	}

	f.PC += 3
	return nil, false, nil
}

// popArgs pops the operand stack slots for params (declared left-to-right)
// and returns them in left-to-right local-variable order, ready to copy
// into a callee frame's Locals.
func popArgs(f *frame.Frame, params []descriptor.FieldType) ([]frame.Slot, error) {
	totalSlots := 0
	for _, p := range params {
		totalSlots += p.Slots()
	}
	args := make([]frame.Slot, totalSlots)

	pos := totalSlots
	for i := len(params) - 1; i >= 0; i-- {
		p := params[i]
		if p.Slots() == 2 {
			v, err := f.PopWide()
			if err != nil {
				return nil, err
			}
			hi, lo := frame.SplitWide(v)
			pos -= 2
			args[pos], args[pos+1] = hi, lo
		} else {
			v, err := f.Pop()
			if err != nil {
				return nil, err
			}
			pos--
			args[pos] = v
		}
	}
	return args, nil
}

// pushResult pushes a callee's returned slot(s) onto the caller's operand
// stack. The mandated opcode subset has no ireturn/lreturn/freturn/dreturn/
// areturn — only the void `return` — so result is always nil here; this
// stays a no-op rather than faking a value for a descriptor that claims
// one, since nothing in the subset could have produced it.
func pushResult(f *frame.Frame, ret descriptor.FieldType, result *frame.Slot) error {
	if result == nil {
		return nil
	}
	return f.Push(*result)
}
