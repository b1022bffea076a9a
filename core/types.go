package core

// DeclKind discriminates the three top-level declaration shapes.
type DeclKind int

const (
	DeclClass DeclKind = iota // struct, class or union with fields
	DeclEnum
	DeclTypedef
)

// ClassKind is the record keyword a class-like declaration was written with.
type ClassKind string

const (
	KindStruct ClassKind = "struct"
	KindClass  ClassKind = "class"
	KindUnion  ClassKind = "union"
)

// Status tracks resolution state for declarations and fields.
type Status int

const (
	StatusOK Status = iota
	StatusUnresolved
	StatusMacroArray // declaration originated from DO_ARRAY_DEFINE
	StatusMacroList  // declaration originated from DO_LIST_DEFINE
)

// SourceSpan locates a declaration in its header.
type SourceSpan struct {
	File  string
	Start int // byte offset
	End   int
}

// Less orders spans by (file, start offset).
func (s SourceSpan) Less(o SourceSpan) bool {
	if s.File != o.File {
		return s.File < o.File
	}
	return s.Start < o.Start
}

// EnumItem is one enumerator: a name and its value expression as written.
type EnumItem struct {
	Name  string
	Value string
}

// BaseSpec is one entry of a class-like declaration's base list.
type BaseSpec struct {
	Type   *TypeRef
	Access string // public, protected, private, or ""
}

// Declaration is a named top-level type from one of the two headers.
// Declarations are created once by the parser and shared by identity;
// their fields are rewritten in place during reconciliation.
type Declaration struct {
	Name      string
	Namespace string // immediate parent namespace, "" at global scope
	Kind      DeclKind
	ClassKind ClassKind
	Span      SourceSpan
	Comment   string
	Status    Status

	// class-like
	Fields []*Field
	Bases  []BaseSpec
	Nested []*Declaration
	Size   int // 0 means forward declaration only

	// enum
	Items []EnumItem

	// typedef
	Element *TypeRef
}

// IsClassLike reports whether the declaration carries fields and bases.
func (d *Declaration) IsClassLike() bool { return d.Kind == DeclClass }

// Field belongs to exactly one class-like declaration. During
// reconciliation the type reference is replaced, the name loses any
// _k__BackingField suffix, and the status may be set to Unresolved.
type Field struct {
	Name    string
	Type    *TypeRef
	Width   int // bitfield width, 0 when absent
	Attrs   []string
	Comment string
	Status  Status
}

// RefKind discriminates type references.
type RefKind int

const (
	RefPrimitive RefKind = iota
	RefTypedef
	RefDecl
	RefPointer
	RefArray
	RefQualified
)

// PrimKind enumerates the primitive kinds the emitter knows how to spell.
type PrimKind int

const (
	PrimVoid PrimKind = iota
	PrimBool
	PrimChar
	PrimShort
	PrimInt
	PrimLong
	PrimLongLong
	PrimUChar
	PrimUShort
	PrimUInt
	PrimULong
	PrimULongLong
	PrimFloat
	PrimDouble
)

// TypeRef is how a field or wrapper refers to a type. Reconciliation
// rewrites references in place: a wrapper's element is swapped, a bare
// reference is overwritten with another's value, and an unbound
// reference gets its declaration filled in once looked up.
type TypeRef struct {
	Kind RefKind

	Prim PrimKind     // RefPrimitive
	Name string       // RefTypedef / RefDecl: spelled name
	Decl *Declaration // RefTypedef / RefDecl: resolved declaration, may be nil

	Elem *TypeRef // RefPointer / RefArray / RefQualified
	Len  int      // RefArray
	Qual string   // RefQualified: const or volatile
}

// Primitive builds a primitive reference.
func Primitive(k PrimKind) *TypeRef { return &TypeRef{Kind: RefPrimitive, Prim: k} }

// DeclRef builds a reference to a class-like or enum declaration.
func DeclRef(d *Declaration) *TypeRef {
	return &TypeRef{Kind: RefDecl, Name: d.Name, Decl: d}
}

// NamedRef builds an unresolved reference carrying only a spelled name.
func NamedRef(name string) *TypeRef { return &TypeRef{Kind: RefDecl, Name: name} }

// TypedefRef builds a reference to a typedef declaration.
func TypedefRef(d *Declaration) *TypeRef {
	return &TypeRef{Kind: RefTypedef, Name: d.Name, Decl: d}
}

// PointerTo wraps a reference in one level of pointer.
func PointerTo(elem *TypeRef) *TypeRef { return &TypeRef{Kind: RefPointer, Elem: elem} }

// ArrayOf wraps a reference in a fixed-size array.
func ArrayOf(elem *TypeRef, n int) *TypeRef { return &TypeRef{Kind: RefArray, Elem: elem, Len: n} }

// Qualified wraps a reference with const or volatile.
func Qualified(qual string, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: RefQualified, Qual: qual, Elem: elem}
}

// RefName returns the spelled name of a reference, unwrapping pointer,
// array and qualifier layers down to the underlying named type.
func (r *TypeRef) RefName() string {
	switch r.Kind {
	case RefPointer, RefArray, RefQualified:
		return r.Elem.RefName()
	default:
		return r.Name
	}
}

// RefNamespace returns the namespace of the referenced declaration, if known.
func (r *TypeRef) RefNamespace() string {
	switch r.Kind {
	case RefPointer, RefArray, RefQualified:
		return r.Elem.RefNamespace()
	default:
		if r.Decl != nil {
			return r.Decl.Namespace
		}
		return ""
	}
}

// PointerBase unwraps pointer layers and returns the pointee plus the depth.
func (r *TypeRef) PointerBase() (*TypeRef, int) {
	depth := 0
	cur := r
	for cur.Kind == RefPointer {
		cur = cur.Elem
		depth++
	}
	return cur, depth
}

// Namespace is a named scope inside a compilation, with its own
// declaration lists in source order.
type Namespace struct {
	Name     string
	Typedefs []*Declaration
	Enums    []*Declaration
	Classes  []*Declaration
}

// Decls returns the namespace's enums and classes in one slice.
func (n *Namespace) Decls() []*Declaration {
	out := make([]*Declaration, 0, len(n.Enums)+len(n.Classes))
	out = append(out, n.Enums...)
	out = append(out, n.Classes...)
	return out
}

// Compilation is the parser contract output for one header: ordered
// top-level declaration lists, namespaces, diagnostics, and the raw
// source text (the macro index scans it).
type Compilation struct {
	File       string
	Source     string
	Typedefs   []*Declaration
	Enums      []*Declaration
	Classes    []*Declaration
	Namespaces []*Namespace
	Errors     []string
}

// FindNamespace returns the named namespace or nil.
func (c *Compilation) FindNamespace(name string) *Namespace {
	for _, ns := range c.Namespaces {
		if ns.Name == name {
			return ns
		}
	}
	return nil
}

// Globals returns all top-level declarations of the compilation in
// typedef, enum, class order.
func (c *Compilation) Globals() []*Declaration {
	out := make([]*Declaration, 0, len(c.Typedefs)+len(c.Enums)+len(c.Classes))
	out = append(out, c.Typedefs...)
	out = append(out, c.Enums...)
	out = append(out, c.Classes...)
	return out
}
