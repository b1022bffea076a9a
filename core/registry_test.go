package core

import "testing"

func classDecl(name, file string, offset int) *Declaration {
	return &Declaration{
		Name:      name,
		Kind:      DeclClass,
		ClassKind: KindStruct,
		Span:      SourceSpan{File: file, Start: offset},
		Size:      1,
	}
}

// TestFindByNameLastToFirst tests that lookup returns the latest match
func TestFindByNameLastToFirst(t *testing.T) {
	m := newTestMatcher()
	first := classDecl("Foo", "a.h", 0)
	second := classDecl("Foo_3", "a.h", 100)
	r := NewRegistry(m, []*Declaration{first, second})

	if got := r.FindByName("Foo"); got != second {
		t.Errorf("FindByName(Foo) = %v, want the later declaration", got)
	}
}

// TestFindByNameRemap tests that the remap table applies on the query side
func TestFindByNameRemap(t *testing.T) {
	m := newTestMatcher()
	d := classDecl("NewName", "a.h", 0)
	r := NewRegistry(m, []*Declaration{d})

	if got := r.FindByName("OldName"); got != d {
		t.Error("Expected remapped query to find NewName")
	}
}

// TestAppendIdentity tests that a declaration appears at most once
func TestAppendIdentity(t *testing.T) {
	m := newTestMatcher()
	d := classDecl("Foo", "a.h", 0)
	r := NewRegistry(m, []*Declaration{d}, []*Declaration{d})

	if r.Len() != 1 {
		t.Errorf("Expected 1 declaration, got %d", r.Len())
	}
}

// TestSortBySpan tests ascending (file, offset) ordering
func TestSortBySpan(t *testing.T) {
	m := newTestMatcher()
	a := classDecl("A", "h.h", 300)
	b := classDecl("B", "h.h", 100)
	c := classDecl("C", "h.h", 200)
	r := NewRegistry(m, []*Declaration{a, b, c})

	if err := r.SortBySpan(false); err != nil {
		t.Fatalf("SortBySpan: %v", err)
	}
	for i := 1; i < r.Len(); i++ {
		if r.Decls[i].Span.Less(r.Decls[i-1].Span) {
			t.Errorf("Declarations out of order at %d", i)
		}
	}
	if r.Decls[0] != b || r.Decls[1] != c || r.Decls[2] != a {
		t.Error("Unexpected sort order")
	}
}

// TestSortBySpanStrict tests that mixed files are fatal in strict mode
func TestSortBySpanStrict(t *testing.T) {
	m := newTestMatcher()
	r := NewRegistry(m, []*Declaration{
		classDecl("A", "a.h", 0),
		classDecl("B", "b.h", 0),
	})

	if err := r.SortBySpan(true); err == nil {
		t.Error("Expected strict sort across files to fail")
	}
}

// TestFindByType tests reference-based lookup
func TestFindByType(t *testing.T) {
	m := newTestMatcher()
	d := classDecl("Foo", "a.h", 0)
	r := NewRegistry(m, []*Declaration{d})

	if got := r.FindByType(NamedRef("Player_Foo")); got != d {
		t.Error("Expected mangled reference to find Foo")
	}
	// Foo_3 is generic under the predicate; genericity must gate the match.
	if r.FindByType(NamedRef("Foo_3")) != nil {
		t.Error("Generic reference must not match a non-generic declaration")
	}
	if r.ContainsType(NamedRef("Bar")) {
		t.Error("Bar should not resolve")
	}
}
