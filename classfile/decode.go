package classfile

import (
	"jacovm/binreader"
	"jacovm/descriptor"
)

const classMagic = 0xCAFEBABE

// Decode parses a complete class file from raw bytes (spec.md §6). The
// sequence mirrors jacobin's parse(): magic, version, constant pool, access
// flags, this/super, interfaces, fields, methods, attributes — each step
// failing fast with a ClassFormatError.
func Decode(data []byte) (*Class, error) {
	r := binreader.New(data)

	magic, err := r.ReadU4()
	if err != nil {
		return nil, ClassFormatError("truncated magic number: " + err.Error())
	}
	if magic != classMagic {
		return nil, ClassFormatError("invalid magic number")
	}

	minor, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated minor_version: " + err.Error())
	}
	major, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated major_version: " + err.Error())
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated access_flags: " + err.Error())
	}

	thisIdx, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated this_class: " + err.Error())
	}
	thisName, err := cp.GetClassName(thisIdx)
	if err != nil {
		return nil, ClassFormatError("this_class: " + err.Error())
	}

	superIdx, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated super_class: " + err.Error())
	}
	superName, err := cp.GetClassName(superIdx)
	if err != nil {
		return nil, ClassFormatError("super_class: " + err.Error())
	}

	interfaces, err := readInterfaces(r, cp)
	if err != nil {
		return nil, err
	}

	fields, err := readFields(r, cp)
	if err != nil {
		return nil, err
	}

	methods, err := readMethods(r, cp)
	if err != nil {
		return nil, err
	}

	classAttrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}
	sourceFile := ""
	if sfAttr, ok := findAttribute(classAttrs, "SourceFile"); ok {
		sfReader := binreader.New(sfAttr.Data)
		idx, err := sfReader.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated SourceFile attribute: " + err.Error())
		}
		sourceFile, err = cp.GetUTF8(idx)
		if err != nil {
			return nil, ClassFormatError("SourceFile name: " + err.Error())
		}
	}

	if r.Remaining() != 0 {
		return nil, ClassFormatError("trailing bytes after class file body")
	}

	return &Class{
		MinorVersion: minor,
		MajorVersion: major,
		ConstantPool: cp,
		AccessFlags:  AccessFlags(accessFlags),
		ThisName:     thisName,
		SuperName:    superName,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		SourceFile:   sourceFile,
	}, nil
}

func readInterfaces(r *binreader.Reader, cp *ConstantPool) ([]string, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated interfaces_count: " + err.Error())
	}
	names := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		idx, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated interface index: " + err.Error())
		}
		name, err := cp.GetClassName(idx)
		if err != nil {
			return nil, ClassFormatError("interface entry: " + err.Error())
		}
		names = append(names, name)
	}
	return names, nil
}

func readFields(r *binreader.Reader, cp *ConstantPool) ([]*Field, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated fields_count: " + err.Error())
	}
	fields := make([]*Field, 0, count)
	for i := 0; i < int(count); i++ {
		accessFlags, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated field access_flags: " + err.Error())
		}
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated field name_index: " + err.Error())
		}
		name, err := cp.GetUTF8(nameIdx)
		if err != nil {
			return nil, ClassFormatError("field name: " + err.Error())
		}
		descIdx, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated field descriptor_index: " + err.Error())
		}
		desc, err := cp.GetUTF8(descIdx)
		if err != nil {
			return nil, ClassFormatError("field descriptor: " + err.Error())
		}
		if _, err := descriptor.ParseField(desc); err != nil {
			return nil, ClassFormatError("malformed field descriptor " + desc + ": " + err.Error())
		}

		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, err
		}
		f := &Field{AccessFlags: AccessFlags(accessFlags), Name: name, Descriptor: desc}
		if cvAttr, ok := findAttribute(attrs, "ConstantValue"); ok {
			cvReader := binreader.New(cvAttr.Data)
			idx, err := cvReader.ReadU2()
			if err != nil {
				return nil, ClassFormatError("truncated ConstantValue attribute: " + err.Error())
			}
			entry, err := cp.At(idx)
			if err != nil {
				return nil, ClassFormatError("ConstantValue index: " + err.Error())
			}
			f.ConstantValue = entry
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func readMethods(r *binreader.Reader, cp *ConstantPool) ([]*Method, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, ClassFormatError("truncated methods_count: " + err.Error())
	}
	methods := make([]*Method, 0, count)
	for i := 0; i < int(count); i++ {
		accessFlags, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated method access_flags: " + err.Error())
		}
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated method name_index: " + err.Error())
		}
		name, err := cp.GetUTF8(nameIdx)
		if err != nil {
			return nil, ClassFormatError("method name: " + err.Error())
		}
		descIdx, err := r.ReadU2()
		if err != nil {
			return nil, ClassFormatError("truncated method descriptor_index: " + err.Error())
		}
		desc, err := cp.GetUTF8(descIdx)
		if err != nil {
			return nil, ClassFormatError("method descriptor: " + err.Error())
		}
		parsed, err := descriptor.ParseMethod(desc)
		if err != nil {
			return nil, ClassFormatError("malformed method descriptor " + desc + ": " + err.Error())
		}

		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, err
		}

		m := &Method{
			AccessFlags:  AccessFlags(accessFlags),
			Name:         name,
			Descriptor:   desc,
			ParamSlots:   parsed.ParamSlots(),
			ReturnsValue: !parsed.ReturnsVoid(),
		}
		if codeAttr, ok := findAttribute(attrs, "Code"); ok {
			m.Code, err = parseCodeAttribute(codeAttr.Data, cp)
			if err != nil {
				return nil, err
			}
		}
		methods = append(methods, m)
	}
	return methods, nil
}
