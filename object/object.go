package object

import "fmt"

// Field is one instance or static field slot: its descriptor character (or
// full descriptor string for reference types) and its current value.
// Grounded on jacobin's object/object_test.go Field{Ftype, Fvalue} shape.
type Field struct {
	Ftype  string
	Fvalue interface{}
}

// Object is a heap-allocated Java instance: a Header plus its field values
// keyed by name. Arrays use the same struct with Header.Size set and
// element values stored under the synthetic "value" field key, matching
// jacobin's convention for backing a String's byte array (see
// JavaByteArrayFromStringObject).
type Object struct {
	Header
	// Klass names the owning class. A string rather than a live
	// *metaspace.Klass pointer, so package object does not depend on
	// package metaspace.
	Klass      *string
	FieldTable map[string]*Field
}

// MakeEmptyObject returns an Object with no fields and no klass set yet,
// matching jacobin's MakeEmptyObject used to build up objects incrementally
// before the class name is known.
func MakeEmptyObject() *Object {
	return &Object{
		Header:     NewInstanceHeader(nil),
		FieldTable: make(map[string]*Field),
	}
}

// NewInstance allocates a plain instance of className with an empty field
// table; callers populate fields from the class's default-value table
// (descriptor.FieldType zero values) before returning it to Java code.
func NewInstance(className string) *Object {
	name := className
	return &Object{
		Header:     NewInstanceHeader(nil),
		Klass:      &name,
		FieldTable: make(map[string]*Field),
	}
}

// NewArray allocates an array object of the given element descriptor and
// length, with its backing storage under the "value" field key.
func NewArray(elemDescriptor string, length uint32, zeroValue interface{}) *Object {
	values := make([]interface{}, length)
	for i := range values {
		values[i] = zeroValue
	}
	return &Object{
		Header: NewArrayHeader(nil, length),
		FieldTable: map[string]*Field{
			"value": {Ftype: "[" + elemDescriptor, Fvalue: values},
		},
	}
}

// ClassName returns the owning class name, or "" if unset.
func (o *Object) ClassName() string {
	if o.Klass == nil {
		return ""
	}
	return *o.Klass
}

// ToString renders the object for diagnostics: class name followed by each
// field's type and value, in the style of jacobin's Object.ToString used
// throughout object_test.go.
func (o *Object) ToString() string {
	s := fmt.Sprintf("Object: class=%s", o.ClassName())
	for name, f := range o.FieldTable {
		s += fmt.Sprintf(", %s(%s)=%v", name, f.Ftype, f.Fvalue)
	}
	return s
}
