package interpreter

import (
	"testing"

	"jacovm/frame"
	"jacovm/metaspace"
)

const (
	accStatic = 0x0008
)

func newTestInterpreter(classes map[string][]byte) (*Interpreter, *metaspace.Metaspace, *memSource) {
	ms := metaspace.New()
	src := &memSource{classes: classes}
	loader := NewLoader(ms, src)
	stack := frame.NewStack(1 << 16)
	return New(loader, stack), ms, src
}

// buildLoopClass assembles a class with one static int field "sum" and one
// static method "run"()V that sums 0..4 into it using only iload/istore/
// iconst/iinc/iadd/if_icmpge/goto/putstatic/return — the full mandated
// branching subset in one method body.
func buildLoopClass() []byte {
	cp := newCPPool()
	thisNameIdx := cp.utf8("Loop")
	thisClassIdx := cp.class(thisNameIdx)
	sumNameIdx := cp.utf8("sum")
	sumDescIdx := cp.utf8("I")
	sumNatIdx := cp.nameAndType(sumNameIdx, sumDescIdx)
	sumFieldIdx := cp.fieldref(thisClassIdx, sumNatIdx)
	runNameIdx := cp.utf8("run")
	runDescIdx := cp.utf8("()V")
	codeAttrNameIdx := cp.utf8("Code")

	code := &byteWriter{}
	code.u1(0x03) // iconst_0      pc0
	code.u1(0x3b) // istore_0      pc1      i = 0
	code.u1(0x03) // iconst_0      pc2
	code.u1(0x3c) // istore_1      pc3      sum = 0
	// LOOP = pc4
	code.u1(0x1b) // iload_1       pc4
	code.u1(0x1a) // iload_0       pc5
	code.u1(0x60) // iadd          pc6
	code.u1(0x3c) // istore_1      pc7      sum += i
	code.u1(0x84) // iinc          pc8
	code.u1(0x00) //   index 0     pc9
	code.u1(0x01) //   const 1     pc10     i++
	code.u1(0x1a) // iload_0       pc11
	code.u1(0x10) // bipush        pc12
	code.u1(0x05) //   5           pc13
	code.u1(0xa2) // if_icmpge     pc14     -> END (pc20) if i >= 5
	code.u2(6)    //   offset = 20-14
	code.u1(0xa7) // goto          pc17     -> LOOP (pc4)
	gotoOffset := int16(4 - 17)
	code.u2(uint16(gotoOffset))
	// END = pc20
	code.u1(0x1b)        // iload_1       pc20
	code.u1(0xb3)        // putstatic     pc21
	code.u2(sumFieldIdx) //   sum
	code.u1(0xb1)        // return        pc24

	methods := []methodDef{{
		accessFlags: accStatic,
		nameIdx:     runNameIdx,
		descIdx:     runDescIdx,
		maxStack:    2,
		maxLocals:   2,
		code:        code.buf,
	}}
	fields := []fieldDef{{accessFlags: accStatic, nameIdx: sumNameIdx, descIdx: sumDescIdx}}
	return assembleClass(cp, codeAttrNameIdx, thisClassIdx, 0, fields, methods)
}

func TestLoopAccumulatesIntoStaticField(t *testing.T) {
	interp, _, _ := newTestInterpreter(map[string][]byte{"Loop": buildLoopClass()})

	klass, err := interp.Loader.LoadClass("Loop")
	if err != nil {
		t.Fatalf("LoadClass: %v", err)
	}
	method, ok := klass.FindStaticMethod("run", "()V")
	if !ok {
		t.Fatal("run()V not found")
	}
	if _, err := interp.Invoke(klass, method, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	got, ok := klass.Statics["sum"].(int32)
	if !ok {
		t.Fatalf("sum static not an int32: %#v", klass.Statics["sum"])
	}
	if got != 10 {
		t.Fatalf("sum = %d, want 10 (0+1+2+3+4)", got)
	}
}

// buildCounterClass assembles a class with a static int field "count", a
// <clinit> that zeroes it, and a static method "bump"(I)V that adds its
// argument into it — exercising class-initialization-on-demand plus
// getstatic/putstatic/iload_0/iadd together.
func buildCounterClass() []byte {
	cp := newCPPool()
	thisNameIdx := cp.utf8("Counter")
	thisClassIdx := cp.class(thisNameIdx)
	countNameIdx := cp.utf8("count")
	countDescIdx := cp.utf8("I")
	countNatIdx := cp.nameAndType(countNameIdx, countDescIdx)
	countFieldIdx := cp.fieldref(thisClassIdx, countNatIdx)
	clinitNameIdx := cp.utf8("<clinit>")
	clinitDescIdx := cp.utf8("()V")
	bumpNameIdx := cp.utf8("bump")
	bumpDescIdx := cp.utf8("(I)V")
	codeAttrNameIdx := cp.utf8("Code")

	clinitCode := &byteWriter{}
	clinitCode.u1(0x03) // iconst_0
	clinitCode.u1(0xb3) // putstatic
	clinitCode.u2(countFieldIdx)
	clinitCode.u1(0xb1) // return

	bumpCode := &byteWriter{}
	bumpCode.u1(0xb2) // getstatic
	bumpCode.u2(countFieldIdx)
	bumpCode.u1(0x1a) // iload_0
	bumpCode.u1(0x60) // iadd
	bumpCode.u1(0xb3) // putstatic
	bumpCode.u2(countFieldIdx)
	bumpCode.u1(0xb1) // return

	methods := []methodDef{
		{accessFlags: accStatic, nameIdx: clinitNameIdx, descIdx: clinitDescIdx, maxStack: 1, maxLocals: 0, code: clinitCode.buf},
		{accessFlags: accStatic, nameIdx: bumpNameIdx, descIdx: bumpDescIdx, maxStack: 2, maxLocals: 1, code: bumpCode.buf},
	}
	fields := []fieldDef{{accessFlags: accStatic, nameIdx: countNameIdx, descIdx: countDescIdx}}
	return assembleClass(cp, codeAttrNameIdx, thisClassIdx, 0, fields, methods)
}

// buildMainClass assembles a class whose "main"()V method invokes
// Counter.bump(I)V with the constant 5, exercising invokestatic end to end
// (argument popping, callee frame construction, class loading of a
// different class than the caller).
func buildMainClass() []byte {
	cp := newCPPool()
	thisNameIdx := cp.utf8("Main")
	thisClassIdx := cp.class(thisNameIdx)
	counterNameIdx := cp.utf8("Counter")
	counterClassIdx := cp.class(counterNameIdx)
	bumpNameIdx := cp.utf8("bump")
	bumpDescIdx := cp.utf8("(I)V")
	bumpNatIdx := cp.nameAndType(bumpNameIdx, bumpDescIdx)
	bumpMethodIdx := cp.methodref(counterClassIdx, bumpNatIdx)
	mainNameIdx := cp.utf8("main")
	mainDescIdx := cp.utf8("()V")
	codeAttrNameIdx := cp.utf8("Code")

	code := &byteWriter{}
	code.u1(0x10) // bipush
	code.u1(0x05) //   5
	code.u1(0xb8) // invokestatic
	code.u2(bumpMethodIdx)
	code.u1(0xb1) // return

	methods := []methodDef{{
		accessFlags: accStatic, nameIdx: mainNameIdx, descIdx: mainDescIdx,
		maxStack: 1, maxLocals: 0, code: code.buf,
	}}
	return assembleClass(cp, codeAttrNameIdx, thisClassIdx, 0, nil, methods)
}

func TestInvokestaticRunsClinitAndCallee(t *testing.T) {
	interp, ms, _ := newTestInterpreter(map[string][]byte{
		"Main":    buildMainClass(),
		"Counter": buildCounterClass(),
	})

	mainKlass, err := interp.Loader.LoadClass("Main")
	if err != nil {
		t.Fatalf("LoadClass(Main): %v", err)
	}
	mainMethod, ok := mainKlass.FindStaticMethod("main", "()V")
	if !ok {
		t.Fatal("main()V not found")
	}
	if _, err := interp.Invoke(mainKlass, mainMethod, nil); err != nil {
		t.Fatalf("Invoke(main): %v", err)
	}

	counterKlass, ok := ms.Find("Counter", "app")
	if !ok {
		t.Fatal("Counter was never defined")
	}
	if !counterKlass.IsInitialized() {
		t.Fatal("Counter.<clinit> never ran")
	}
	got, ok := counterKlass.Statics["count"].(int32)
	if !ok {
		t.Fatalf("count static not an int32: %#v", counterKlass.Statics["count"])
	}
	if got != 5 {
		t.Fatalf("count = %d, want 5", got)
	}
}

// buildThrowerClass assembles a class whose "run"()V method references a
// field that doesn't exist, triggering a NoSuchFieldError, and declares an
// exception-table entry that catches it and falls through to a normal
// return — exercising findHandler's range+catch-type match.
func buildThrowerClass() []byte {
	cp := newCPPool()
	thisNameIdx := cp.utf8("Thrower")
	thisClassIdx := cp.class(thisNameIdx)
	missingNameIdx := cp.utf8("missing")
	missingDescIdx := cp.utf8("I")
	missingNatIdx := cp.nameAndType(missingNameIdx, missingDescIdx)
	missingFieldIdx := cp.fieldref(thisClassIdx, missingNatIdx)
	runNameIdx := cp.utf8("run")
	runDescIdx := cp.utf8("()V")
	codeAttrNameIdx := cp.utf8("Code")

	code := &byteWriter{}
	code.u1(0xb2) // getstatic     pc0  -> throws NoSuchFieldError
	code.u2(missingFieldIdx)
	code.u1(0xb1) // return        pc3  (handler target)

	// Hand-assemble the Code attribute body ourselves so the test can add
	// an exception_table entry; assembleClass's methodDef has no such hook.
	body := &byteWriter{}
	body.u2(1) // max_stack
	body.u2(0) // max_locals
	body.u4(uint32(len(code.buf)))
	body.buf = append(body.buf, code.buf...)
	body.u2(1) // exception_table_length
	body.u2(0) // start_pc
	body.u2(3) // end_pc
	body.u2(3) // handler_pc
	body.u2(0) // catch_type: 0 = catch-all
	body.u2(0) // attributes_count

	w := &byteWriter{}
	w.u4(0xCAFEBABE)
	w.u2(0)
	w.u2(61)
	w.u2(cp.next)
	w.buf = append(w.buf, cp.entries.buf...)
	w.u2(0x0021)
	w.u2(thisClassIdx)
	w.u2(0) // super_class
	w.u2(0) // interfaces_count
	w.u2(0) // fields_count
	w.u2(1) // methods_count
	w.u2(accStatic)
	w.u2(runNameIdx)
	w.u2(runDescIdx)
	w.u2(1) // attributes_count
	w.u2(codeAttrNameIdx)
	w.u4(uint32(len(body.buf)))
	w.buf = append(w.buf, body.buf...)
	w.u2(0) // class attributes_count
	return w.buf
}

func TestExceptionTableCatchesAndResumes(t *testing.T) {
	interp, _, _ := newTestInterpreter(map[string][]byte{"Thrower": buildThrowerClass()})

	klass, err := interp.Loader.LoadClass("Thrower")
	if err != nil {
		t.Fatalf("LoadClass: %v", err)
	}
	method, ok := klass.FindStaticMethod("run", "()V")
	if !ok {
		t.Fatal("run()V not found")
	}
	if _, err := interp.Invoke(klass, method, nil); err != nil {
		t.Fatalf("Invoke: expected the handler to catch NoSuchFieldError, got %v", err)
	}
}

func TestExceptionPropagatesWhenUncaught(t *testing.T) {
	// Same missing-field throw, but call FindStaticMethod directly on a
	// class assembled without any exception table (buildCounterClass's
	// bump references a real field, so build a minimal one-off instead).
	cp := newCPPool()
	thisNameIdx := cp.utf8("Bare")
	thisClassIdx := cp.class(thisNameIdx)
	missingNatIdx := cp.nameAndType(cp.utf8("missing"), cp.utf8("I"))
	missingFieldIdx := cp.fieldref(thisClassIdx, missingNatIdx)
	runNameIdx := cp.utf8("run")
	runDescIdx := cp.utf8("()V")
	codeAttrNameIdx := cp.utf8("Code")

	code := &byteWriter{}
	code.u1(0xb2) // getstatic
	code.u2(missingFieldIdx)
	code.u1(0xb1) // return

	classBytes := assembleClass(cp, codeAttrNameIdx, thisClassIdx, 0, nil, []methodDef{{
		accessFlags: accStatic, nameIdx: runNameIdx, descIdx: runDescIdx,
		maxStack: 1, maxLocals: 0, code: code.buf,
	}})

	interp, _, _ := newTestInterpreter(map[string][]byte{"Bare": classBytes})
	klass, err := interp.Loader.LoadClass("Bare")
	if err != nil {
		t.Fatalf("LoadClass: %v", err)
	}
	method, _ := klass.FindStaticMethod("run", "()V")
	_, err = interp.Invoke(klass, method, nil)
	if err == nil {
		t.Fatal("expected NoSuchFieldError to propagate past an empty exception table")
	}
}
