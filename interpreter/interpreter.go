// Package interpreter executes bytecode for the mandated opcode subset
// (spec.md §4.8): a straight-line dispatch loop plus class-initialization-
// on-demand and exception-handler-table propagation. Grounded on
// original_source/src/interpreter/mod.rs's invoke()/call() match-over-pc
// loop, restructured as a single Invoke entry point (the Rust source's
// invoke/call duplication collapses naturally once frame/stack state lives
// in *frame.Frame rather than being threaded through two near-identical
// functions), with if_icmpge's branch target fixed to a signed relative
// offset per spec.md's Open Question resolution — the Rust source's
// unsigned absolute-pc target is not followed (see SPEC_FULL.md §6).
package interpreter

import (
	"fmt"

	"jacovm/classfile"
	"jacovm/excnames"
	"jacovm/frame"
	"jacovm/metaspace"
)

// Interpreter is the shared execution context: the class loader and the
// call stack depth limit new frames are pushed against.
type Interpreter struct {
	Loader Loader
	Stack  *frame.Stack
}

// New builds an Interpreter over the given loader and call stack.
func New(loader Loader, stack *frame.Stack) *Interpreter {
	return &Interpreter{Loader: loader, Stack: stack}
}

// Invoke runs method on klass with the given already-popped argument slots
// (in left-to-right declaration order) and returns its result, or an error
// — either a Go error for a VM-level failure, or an *excnames.JavaThrowable
// for a Java-level exception that propagated past every frame.
func (in *Interpreter) Invoke(klass *metaspace.Klass, method *classfile.Method, args []frame.Slot) (*frame.Slot, error) {
	if err := in.ensureInitialized(klass); err != nil {
		return nil, err
	}
	return in.invokeMethod(klass, method, args)
}

func (in *Interpreter) invokeMethod(klass *metaspace.Klass, method *classfile.Method, args []frame.Slot) (*frame.Slot, error) {
	if method.IsAbstract() || method.IsNative() {
		return nil, &excnames.JavaThrowable{ClassName: excnames.AbstractMethodError, Message: klass.Name + "." + method.Name}
	}
	f, err := frame.New(klass, method)
	if err != nil {
		return nil, err
	}
	copy(f.Locals, args)

	if err := in.Stack.Push(f); err != nil {
		return nil, err
	}
	defer in.Stack.Pop()

	return in.run(f)
}

// run executes f's bytecode to completion, returning its result slot (nil
// for a void return) or propagating an error/throwable.
func (in *Interpreter) run(f *frame.Frame) (*frame.Slot, error) {
	code := f.Method.Code.Bytecode
	for {
		if f.PC >= len(code) {
			return nil, fmt.Errorf("%s.%s: fell off the end of the method body", f.Klass.Name, f.Method.Name)
		}
		result, done, err := in.step(f, code)
		if err != nil {
			if jt, ok := err.(*excnames.JavaThrowable); ok {
				if handlerPC, handled := findHandler(f, jt); handled {
					jt.StackTrace = append(jt.StackTrace, fmt.Sprintf("%s.%s", f.Klass.Name, f.Method.Name))
					f.ClearOperands()
					if err := f.Push(0); err != nil { // the exception reference; see pushValue's null-handle convention
						return nil, err
					}
					f.PC = handlerPC
					continue
				}
				jt.StackTrace = append(jt.StackTrace, fmt.Sprintf("%s.%s", f.Klass.Name, f.Method.Name))
			}
			return nil, err
		}
		if done {
			return result, nil
		}
	}
}

// findHandler searches f.Method.Code's exception table for a handler whose
// range covers the current pc and whose catch type matches jt's class
// (or is the empty catch-all).
func findHandler(f *frame.Frame, jt *excnames.JavaThrowable) (int, bool) {
	for _, h := range f.Method.Code.ExceptionTable {
		if f.PC < h.StartPC || f.PC >= h.EndPC {
			continue
		}
		if h.CatchType == "" || h.CatchType == jt.ClassName {
			return h.HandlerPC, true
		}
	}
	return 0, false
}

func u1(code []byte, pc int) int { return int(code[pc]) }
func s2(code []byte, pc int) int16 {
	return int16(uint16(code[pc])<<8 | uint16(code[pc+1]))
}
func u2(code []byte, pc int) uint16 {
	return uint16(code[pc])<<8 | uint16(code[pc+1])
}
