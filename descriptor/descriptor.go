// Package descriptor parses JVM field and method descriptors (spec.md §4.7)
// into a structured shape, and reports the slot counts the frame allocator
// and interpreter need (field byte widths for instance layout are computed
// by package metaspace). Grounded on the
// descriptor grammar in spec.md and the per-type memory_size() table in
// original_source/src/mem/field.rs.
package descriptor

import (
	"fmt"
	"strings"
)

// Kind is the base type a single field/parameter descriptor denotes.
type Kind int

const (
	KindByte Kind = iota
	KindChar
	KindDouble
	KindFloat
	KindInt
	KindLong
	KindShort
	KindBoolean
	KindClass
	KindArray
)

// FieldType is one parsed field descriptor: a base Kind, plus the class name
// if Kind is KindClass and the element type/dimensions if Kind is KindArray.
type FieldType struct {
	Kind Kind

	ClassName string // set when Kind == KindClass

	ArrayDims int    // set when Kind == KindArray; number of leading '['
	ElemKind  Kind   // set when Kind == KindArray; the component's base kind
	ElemClass string // set when Kind == KindArray and ElemKind == KindClass
}

// Slots returns the number of 32-bit local-variable/operand-stack slots this
// type occupies: 2 for long/double (the wide-slot convention), 1 otherwise.
func (t FieldType) Slots() int {
	if t.Kind == KindLong || t.Kind == KindDouble {
		return 2
	}
	return 1
}

// String renders the descriptor back to its wire form, mostly useful for
// error messages and tests.
func (t FieldType) String() string {
	switch t.Kind {
	case KindByte:
		return "B"
	case KindChar:
		return "C"
	case KindDouble:
		return "D"
	case KindFloat:
		return "F"
	case KindInt:
		return "I"
	case KindLong:
		return "J"
	case KindShort:
		return "S"
	case KindBoolean:
		return "Z"
	case KindClass:
		return "L" + t.ClassName + ";"
	case KindArray:
		return strings.Repeat("[", t.ArrayDims) + elemDescriptorSuffix(t)
	default:
		return "?"
	}
}

func elemDescriptorSuffix(t FieldType) string {
	if t.ElemKind == KindClass {
		return "L" + t.ElemClass + ";"
	}
	return FieldType{Kind: t.ElemKind}.String()
}

// ParseField parses a single field descriptor, consuming the whole string.
func ParseField(desc string) (FieldType, error) {
	ft, rest, err := parseOne(desc)
	if err != nil {
		return FieldType{}, err
	}
	if rest != "" {
		return FieldType{}, fmt.Errorf("trailing data after field descriptor %q: %q", desc, rest)
	}
	return ft, nil
}

func parseOne(desc string) (FieldType, string, error) {
	if desc == "" {
		return FieldType{}, "", fmt.Errorf("empty descriptor")
	}
	switch desc[0] {
	case 'B':
		return FieldType{Kind: KindByte}, desc[1:], nil
	case 'C':
		return FieldType{Kind: KindChar}, desc[1:], nil
	case 'D':
		return FieldType{Kind: KindDouble}, desc[1:], nil
	case 'F':
		return FieldType{Kind: KindFloat}, desc[1:], nil
	case 'I':
		return FieldType{Kind: KindInt}, desc[1:], nil
	case 'J':
		return FieldType{Kind: KindLong}, desc[1:], nil
	case 'S':
		return FieldType{Kind: KindShort}, desc[1:], nil
	case 'Z':
		return FieldType{Kind: KindBoolean}, desc[1:], nil
	case 'L':
		end := strings.IndexByte(desc, ';')
		if end < 0 {
			return FieldType{}, "", fmt.Errorf("unterminated class descriptor %q", desc)
		}
		return FieldType{Kind: KindClass, ClassName: desc[1:end]}, desc[end+1:], nil
	case '[':
		dims := 0
		rest := desc
		for len(rest) > 0 && rest[0] == '[' {
			dims++
			rest = rest[1:]
		}
		elem, rest, err := parseOne(rest)
		if err != nil {
			return FieldType{}, "", err
		}
		return FieldType{
			Kind:      KindArray,
			ArrayDims: dims,
			ElemKind:  elem.Kind,
			ElemClass: elem.ClassName,
		}, rest, nil
	default:
		return FieldType{}, "", fmt.Errorf("unrecognized descriptor character %q in %q", desc[0], desc)
	}
}

// MethodType is a parsed method descriptor: ordered parameter types and an
// optional return type (nil for void).
type MethodType struct {
	Params  []FieldType
	Returns *FieldType // nil means void
}

// ParamSlots returns the total local-variable slot count the parameters
// occupy, not counting an implicit receiver (the interpreter adds 1 for
// non-static methods separately).
func (m MethodType) ParamSlots() int {
	n := 0
	for _, p := range m.Params {
		n += p.Slots()
	}
	return n
}

// ReturnsVoid reports whether this method descriptor's return type is void.
func (m MethodType) ReturnsVoid() bool { return m.Returns == nil }

// ParseMethod parses a method descriptor of the form "(ParamTypes)ReturnType".
func ParseMethod(desc string) (MethodType, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return MethodType{}, fmt.Errorf("method descriptor %q missing leading '('", desc)
	}
	rest := desc[1:]
	var params []FieldType
	for len(rest) > 0 && rest[0] != ')' {
		var ft FieldType
		var err error
		ft, rest, err = parseOne(rest)
		if err != nil {
			return MethodType{}, fmt.Errorf("method descriptor %q: %w", desc, err)
		}
		params = append(params, ft)
	}
	if len(rest) == 0 {
		return MethodType{}, fmt.Errorf("method descriptor %q missing closing ')'", desc)
	}
	rest = rest[1:] // consume ')'

	if rest == "V" {
		return MethodType{Params: params, Returns: nil}, nil
	}
	ret, tail, err := parseOne(rest)
	if err != nil {
		return MethodType{}, fmt.Errorf("method descriptor %q return type: %w", desc, err)
	}
	if tail != "" {
		return MethodType{}, fmt.Errorf("trailing data after method descriptor %q: %q", desc, tail)
	}
	return MethodType{Params: params, Returns: &ret}, nil
}
