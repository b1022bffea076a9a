package core

import "testing"

// TestRefSize tests the field-size table the walkers compare with
func TestRefSize(t *testing.T) {
	bar := classDecl("Bar", "a.h", 0)
	bar.Size = 12

	cases := []struct {
		ref  *TypeRef
		want int
	}{
		{Primitive(PrimChar), 1},
		{Primitive(PrimInt), 4},
		{Primitive(PrimDouble), 8},
		{PointerTo(Primitive(PrimChar)), 8},
		{ArrayOf(Primitive(PrimInt), 4), 16},
		{Qualified("const", Primitive(PrimShort)), 2},
		{DeclRef(bar), 12},
		{NamedRef("Unknown"), 8},
	}
	for i, c := range cases {
		if got := RefSize(c.ref); got != c.want {
			t.Errorf("case %d: RefSize = %d, want %d", i, got, c.want)
		}
	}
}

// TestFieldsSize tests aggregate sizing
func TestFieldsSize(t *testing.T) {
	fields := []*Field{
		field("a", Primitive(PrimInt)),
		field("b", PointerTo(Primitive(PrimChar))),
	}
	if got := FieldsSize(fields); got != 12 {
		t.Errorf("FieldsSize = %d, want 12", got)
	}
}

// TestEnumRefSize tests that enum references default to 4 bytes
func TestEnumRefSize(t *testing.T) {
	e := &Declaration{Name: "E", Kind: DeclEnum}
	if got := RefSize(DeclRef(e)); got != 4 {
		t.Errorf("enum ref size = %d, want 4", got)
	}
	sized := &Declaration{Name: "E8", Kind: DeclEnum, Size: 8}
	if got := RefSize(DeclRef(sized)); got != 8 {
		t.Errorf("sized enum ref size = %d, want 8", got)
	}
}
