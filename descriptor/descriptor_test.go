package descriptor

import "testing"

func TestParseFieldPrimitives(t *testing.T) {
	cases := map[string]Kind{
		"B": KindByte, "C": KindChar, "D": KindDouble, "F": KindFloat,
		"I": KindInt, "J": KindLong, "S": KindShort, "Z": KindBoolean,
	}
	for desc, want := range cases {
		ft, err := ParseField(desc)
		if err != nil {
			t.Fatalf("ParseField(%q): %v", desc, err)
		}
		if ft.Kind != want {
			t.Errorf("ParseField(%q).Kind = %v, want %v", desc, ft.Kind, want)
		}
		if ft.String() != desc {
			t.Errorf("round-trip %q got %q", desc, ft.String())
		}
	}
}

func TestParseFieldClass(t *testing.T) {
	ft, err := ParseField("Ljava/lang/String;")
	if err != nil {
		t.Fatal(err)
	}
	if ft.Kind != KindClass || ft.ClassName != "java/lang/String" {
		t.Fatalf("got %+v", ft)
	}
}

func TestParseFieldArray(t *testing.T) {
	ft, err := ParseField("[[I")
	if err != nil {
		t.Fatal(err)
	}
	if ft.Kind != KindArray || ft.ArrayDims != 2 || ft.ElemKind != KindInt {
		t.Fatalf("got %+v", ft)
	}
	if ft.String() != "[[I" {
		t.Errorf("round-trip got %q", ft.String())
	}
}

func TestParseFieldArrayOfClass(t *testing.T) {
	ft, err := ParseField("[Ljava/lang/String;")
	if err != nil {
		t.Fatal(err)
	}
	if ft.ElemKind != KindClass || ft.ElemClass != "java/lang/String" {
		t.Fatalf("got %+v", ft)
	}
}

func TestParseFieldErrors(t *testing.T) {
	for _, bad := range []string{"", "Q", "Ljava/lang/String", "I "} {
		if _, err := ParseField(bad); err == nil {
			t.Errorf("ParseField(%q) should have failed", bad)
		}
	}
}

func TestParseMethodBasic(t *testing.T) {
	m, err := ParseMethod("(IJ)Ljava/lang/String;")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Params) != 2 {
		t.Fatalf("want 2 params, got %d", len(m.Params))
	}
	if m.Params[0].Kind != KindInt || m.Params[1].Kind != KindLong {
		t.Fatalf("got %+v", m.Params)
	}
	if m.ReturnsVoid() {
		t.Fatal("should not return void")
	}
	if m.ParamSlots() != 3 { // int=1 + long=2
		t.Errorf("ParamSlots() = %d, want 3", m.ParamSlots())
	}
}

func TestParseMethodVoidNoArgs(t *testing.T) {
	m, err := ParseMethod("()V")
	if err != nil {
		t.Fatal(err)
	}
	if !m.ReturnsVoid() {
		t.Fatal("should return void")
	}
	if m.ParamSlots() != 0 {
		t.Errorf("ParamSlots() = %d, want 0", m.ParamSlots())
	}
}

func TestParseMethodErrors(t *testing.T) {
	for _, bad := range []string{"IJ)V", "(IJ", "(IJ)", "(IJ)Vx"} {
		if _, err := ParseMethod(bad); err == nil {
			t.Errorf("ParseMethod(%q) should have failed", bad)
		}
	}
}
