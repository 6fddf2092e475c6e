package classfile

// AccessFlags are the access_flags bits shared by classes, fields, and
// methods (the subset spec.md §3/§4 cares about; bits outside this set are
// preserved but not individually named).
type AccessFlags uint16

const (
	AccPublic     AccessFlags = 0x0001
	AccPrivate    AccessFlags = 0x0002
	AccProtected  AccessFlags = 0x0004
	AccStatic     AccessFlags = 0x0008
	AccFinal      AccessFlags = 0x0010
	AccSuper      AccessFlags = 0x0020
	AccInterface  AccessFlags = 0x0200
	AccAbstract   AccessFlags = 0x0400
	AccSynthetic  AccessFlags = 0x1000
	AccAnnotation AccessFlags = 0x2000
	AccEnum       AccessFlags = 0x4000
)

func (f AccessFlags) Is(bit AccessFlags) bool { return f&bit != 0 }
func (f AccessFlags) IsStatic() bool          { return f.Is(AccStatic) }
func (f AccessFlags) IsPublic() bool          { return f.Is(AccPublic) }
func (f AccessFlags) IsAbstract() bool        { return f.Is(AccAbstract) }
func (f AccessFlags) IsInterface() bool       { return f.Is(AccInterface) }
func (f AccessFlags) IsFinal() bool           { return f.Is(AccFinal) }

// Class is the decoded form of a single class file, spec.md §3's "unit of
// decoding". It holds resolved names (not raw constant-pool indices) for
// everything the rest of the core needs, while keeping the ConstantPool
// around for late resolution (e.g. ldc of a String/Class constant at
// interpretation time).
type Class struct {
	MinorVersion uint16
	MajorVersion uint16

	ConstantPool *ConstantPool

	AccessFlags AccessFlags
	ThisName    string
	SuperName   string // empty for java/lang/Object
	Interfaces  []string

	Fields  []*Field
	Methods []*Method

	SourceFile string // from a SourceFile attribute, if present
}

// IsInterface reports whether this class file describes an interface.
func (c *Class) IsInterface() bool { return c.AccessFlags.IsInterface() }

// FindMethod returns the method declared directly on this class matching
// name and descriptor, or nil. Does not walk superclasses; that is
// metaspace's job (vtable/itable construction).
func (c *Class) FindMethod(name, descriptor string) *Method {
	for _, m := range c.Methods {
		if m.Name == name && m.Descriptor == descriptor {
			return m
		}
	}
	return nil
}

// FindField returns the field declared directly on this class matching
// name, or nil.
func (c *Class) FindField(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
