package classfile

import "jacovm/binreader"

// rawAttribute is an attribute_info entry before it's interpreted: a name
// (already resolved through the constant pool) and its raw bytes. Only a
// handful of attribute kinds matter to this core (Code, ConstantValue,
// SourceFile); everything else is decoded just far enough to skip over its
// declared length, per spec.md §6's "attributes are skipped unless named".
type rawAttribute struct {
	Name string
	Data []byte
}

func readAttributes(r *binreader.Reader, cp *ConstantPool) ([]rawAttribute, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated attributes_count: " + err.Error())
	}
	attrs := make([]rawAttribute, 0, count)
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated attribute_name_index: " + err.Error())
		}
		name, err := cp.GetUTF8(nameIdx)
		if err != nil {
			return nil, ClassFormatError("attribute name: " + err.Error())
		}
		length, err := r.ReadU4()
		if err != nil {
			return nil, ClassFormatError("truncated attribute_length: " + err.Error())
		}
		data, err := r.ReadBytes(int(length))
		if err != nil {
			return nil, ClassFormatError("truncated attribute body for " + name + ": " + err.Error())
		}
		attrs = append(attrs, rawAttribute{Name: name, Data: data})
	}
	return attrs, nil
}

func findAttribute(attrs []rawAttribute, name string) (rawAttribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return rawAttribute{}, false
}

// parseCodeAttribute decodes a Code attribute's body (spec.md §4.6): it is
// itself a small binary format, so it gets its own binreader.Reader over the
// already-extracted bytes.
func parseCodeAttribute(data []byte, cp *ConstantPool) (*Code, error) {
	r := binreader.New(data)

	maxStack, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated Code.max_stack: " + err.Error())
	}
	maxLocals, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated Code.max_locals: " + err.Error())
	}
	codeLength, err := r.ReadU4()
	if err != nil {
		return nil, ClassFormatError("truncated Code.code_length: " + err.Error())
	}
	bytecode, err := r.ReadBytes(int(codeLength))
	if err != nil {
		return nil, ClassFormatError("truncated Code.code: " + err.Error())
	}

	excTableLen, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated Code.exception_table_length: " + err.Error())
	}
	handlers := make([]ExceptionHandler, 0, excTableLen)
	for i := 0; i < int(excTableLen); i++ {
		startPC, _ := r.ReadU2()
		endPC, _ := r.ReadU2()
		handlerPC, _ := r.ReadU2()
		catchTypeIdx, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated exception_table entry: " + err.Error())
		}
		catchType, err := cp.GetClassName(catchTypeIdx)
		if err != nil {
			return nil, ClassFormatError("exception handler catch type: " + err.Error())
		}
		handlers = append(handlers, ExceptionHandler{
			StartPC:   int(startPC),
			EndPC:     int(endPC),
			HandlerPC: int(handlerPC),
			CatchType: catchType,
		})
	}

	// Nested attributes (LineNumberTable, LocalVariableTable, StackMapTable,
	// ...) are parsed far enough to be skipped; none of them are needed by
	// the mandated opcode subset.
	if _, err := readAttributes(r, cp); err != nil {
		return nil, err
	}

	return &Code{
		MaxStack:       int(maxStack),
		MaxLocals:      int(maxLocals),
		Bytecode:       bytecode,
		ExceptionTable: handlers,
	}, nil
}
