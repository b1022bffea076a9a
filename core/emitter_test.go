package core

import (
	"strings"
	"testing"
)

func emitterEngine() *Engine { return NewEngine(testConfig()) }

// TestPrimitiveMapping tests the full primitive spelling table
func TestPrimitiveMapping(t *testing.T) {
	e := emitterEngine()

	cases := map[PrimKind]string{
		PrimVoid:      "void",
		PrimChar:      "int8_t",
		PrimShort:     "int16_t",
		PrimInt:       "int32_t",
		PrimLong:      "int64_t",
		PrimLongLong:  "int64_t",
		PrimUChar:     "uint8_t",
		PrimUShort:    "uint16_t",
		PrimUInt:      "uint32_t",
		PrimULong:     "uint64_t",
		PrimULongLong: "uint64_t",
		PrimFloat:     "float",
		PrimDouble:    "double",
		PrimBool:      "bool",
	}
	for kind, want := range cases {
		got, _ := e.spellType(Primitive(kind))
		if got != want {
			t.Errorf("spellType(%d) = %q, want %q", kind, got, want)
		}
	}
}

// TestEmissionBugPanics tests that an unknown primitive kind aborts
func TestEmissionBugPanics(t *testing.T) {
	e := emitterEngine()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown primitive kind")
		}
	}()
	e.spellType(&TypeRef{Kind: RefPrimitive, Prim: PrimKind(99)})
}

// TestPointerSpelling tests pointer depth and base prefixes
func TestPointerSpelling(t *testing.T) {
	e := emitterEngine()

	bar := classDecl("Bar", "a.h", 0)
	got, _ := e.spellType(PointerTo(PointerTo(DeclRef(bar))))
	if got != "Bar**" {
		t.Errorf("double pointer = %q, want Bar**", got)
	}

	fwd := classDecl("Fwd", "a.h", 0)
	fwd.Size = 0
	got, _ = e.spellType(PointerTo(DeclRef(fwd)))
	if got != "struct Fwd*" {
		t.Errorf("size-0 pointee = %q, want struct Fwd*", got)
	}

	got, _ = e.spellType(PointerTo(Qualified("const", NamedRef("Foo"))))
	if got != "const Foo*" {
		t.Errorf("qualified pointee = %q, want const Foo*", got)
	}
}

// TestArrayFieldSpelling tests the declarator suffix placement
func TestArrayFieldSpelling(t *testing.T) {
	e := emitterEngine()

	got := e.emitField(field("v", ArrayOf(Primitive(PrimInt), 32)))
	if got != "int32_t v[32]" {
		t.Errorf("array field = %q", got)
	}
}

// TestBitfieldSpelling tests bitfield width emission
func TestBitfieldSpelling(t *testing.T) {
	e := emitterEngine()

	f := field("flags", Primitive(PrimInt))
	f.Width = 3
	if got := e.emitField(f); got != "int32_t flags : 3" {
		t.Errorf("bitfield = %q", got)
	}
}

// TestAlignasAttribute tests the alignas normalization rule
func TestAlignasAttribute(t *testing.T) {
	e := emitterEngine()

	f := field("x", Primitive(PrimInt))
	f.Attrs = []string{"alignas(0x10)"}
	if got := e.emitField(f); got != "alignas(8) int32_t x" {
		t.Errorf("alignas field = %q", got)
	}
}

// TestUnresolvedFieldComment tests the Unresolved marker emission
func TestUnresolvedFieldComment(t *testing.T) {
	e := emitterEngine()

	f := field("x", NamedRef("Mystery"))
	f.Status = StatusUnresolved
	got := e.emitField(f)
	if got != "/* Unresolved */ Mystery x" {
		t.Errorf("unresolved field = %q", got)
	}
}

// TestBaseListReversed tests that bases emit last-first
func TestBaseListReversed(t *testing.T) {
	e := emitterEngine()

	c := classDecl("C", "a.h", 0)
	c.Bases = []BaseSpec{
		{Type: NamedRef("A"), Access: "public"},
		{Type: NamedRef("B"), Access: "public"},
	}
	c.Fields = []*Field{field("x", Primitive(PrimInt))}
	got := e.emitClassDef(c, false)
	if !strings.HasPrefix(got, "struct C : B, A {") {
		t.Errorf("base list = %q", got)
	}
}

// TestDeclarationOnlyClass tests the bare class head forms
func TestDeclarationOnlyClass(t *testing.T) {
	e := emitterEngine()

	fwd := classDecl("Fwd", "a.h", 0)
	fwd.Size = 0
	if got := e.emitClassDef(fwd, false); got != "struct Fwd" {
		t.Errorf("forward class = %q", got)
	}

	full := classDecl("Full", "a.h", 0)
	full.Fields = []*Field{field("x", Primitive(PrimInt))}
	if got := e.emitClassDef(full, true); got != "struct Full" {
		t.Errorf("declaration-only mode = %q", got)
	}
}

// TestEnumForms tests item-less and populated enum emission
func TestEnumForms(t *testing.T) {
	e := emitterEngine()

	bare := &Declaration{Name: "E", Kind: DeclEnum}
	if got := e.emitEnum(bare); got != "enum E" {
		t.Errorf("item-less enum = %q", got)
	}

	full := &Declaration{Name: "E", Kind: DeclEnum, Items: []EnumItem{
		{Name: "A", Value: "0"},
		{Name: "B", Value: "A + 1"},
	}}
	want := "enum E {\n    A = 0,\n    B = A + 1,\n}"
	if got := e.emitEnum(full); got != want {
		t.Errorf("enum = %q, want %q", got, want)
	}
}

// TestTypedefEmission tests typedef reconstruction
func TestTypedefEmission(t *testing.T) {
	e := emitterEngine()

	td := &Declaration{Name: "handle_t", Kind: DeclTypedef, Element: PointerTo(NamedRef("Foo"))}
	if got := e.emitTypedef(td); got != "typedef Foo* handle_t" {
		t.Errorf("typedef = %q", got)
	}

	arr := &Declaration{Name: "buf_t", Kind: DeclTypedef, Element: ArrayOf(Primitive(PrimUChar), 16)}
	if got := e.emitTypedef(arr); got != "typedef uint8_t buf_t[16]" {
		t.Errorf("array typedef = %q", got)
	}
}

// TestListMacroSkipsArrayName tests that the list marker on an
// array-named class is not emitted twice.
func TestListMacroSkipsArrayName(t *testing.T) {
	input := inputFixture()
	source := "DO_LIST_DEFINE(Foo)\n"
	arr := tgClass("Foo__Array", 0, 32, field("klass", PointerTo(NamedRef("Il2CppClass"))))
	list := tgClass("List_1_Foo", 0, 24, field("klass", PointerTo(NamedRef("Il2CppClass"))))
	target := targetFixture(source, nil, nil, []*Declaration{arr, list})

	_, out := reconcile(t, input, target)

	if n := strings.Count(out, "DO_LIST_DEFINE(Foo)\n"); n != 1 {
		t.Errorf("Expected exactly one DO_LIST_DEFINE(Foo), got %d:\n%s", n, out)
	}
	if strings.Contains(out, "DO_ARRAY_DEFINE(Foo)\n") {
		t.Errorf("Array side must be covered by the list macro:\n%s", out)
	}
}

// TestGlobalTypedefsSkipSizeT tests the size_t exclusion in globals
func TestGlobalTypedefsSkipSizeT(t *testing.T) {
	input := inputFixture()
	target := targetFixture("", nil, nil, nil)
	target.Typedefs = []*Declaration{
		{Name: "size_t", Kind: DeclTypedef, Span: SourceSpan{File: "target.h"}, Element: Primitive(PrimULong)},
		{Name: "uid_t", Kind: DeclTypedef, Span: SourceSpan{File: "target.h", Start: 5}, Element: Primitive(PrimUInt)},
	}

	_, out := reconcile(t, input, target)

	if strings.Contains(out, "typedef uint64_t size_t;") {
		t.Errorf("size_t must be skipped:\n%s", out)
	}
	if !strings.Contains(out, "typedef uint32_t uid_t;") {
		t.Errorf("uid_t must be emitted:\n%s", out)
	}
}
