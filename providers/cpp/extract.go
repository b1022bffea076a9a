package cpp

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/termfx/typealign/core"
)

// extractor turns one parsed tree into the declaration model. It tracks
// namespace extents so macro-synthesized declarations can be placed in
// the scope their invocation appeared in.
type extractor struct {
	file    string
	source  []byte
	nsSpans []nsSpan
}

type nsSpan struct {
	ns         *core.Namespace
	start, end int
}

func (ex *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(ex.source[n.StartByte():n.EndByte()])
}

func (ex *extractor) span(n *sitter.Node) core.SourceSpan {
	return core.SourceSpan{File: ex.file, Start: int(n.StartByte()), End: int(n.EndByte())}
}

// namespaceAt returns the innermost namespace whose body contains the
// byte offset, or nil for global scope.
func (ex *extractor) namespaceAt(offset int) *core.Namespace {
	var found *core.Namespace
	for _, s := range ex.nsSpans {
		if offset >= s.start && offset < s.end {
			found = s.ns
		}
	}
	return found
}

func (ex *extractor) extract(root *sitter.Node) *core.Compilation {
	comp := &core.Compilation{}
	ex.collectErrors(root, comp)
	ex.scanScope(root, comp, nil)
	return comp
}

// collectErrors gathers tree-sitter ERROR nodes as error-severity
// diagnostics.
func (ex *extractor) collectErrors(node *sitter.Node, comp *core.Compilation) {
	if node.Type() == "ERROR" {
		comp.Errors = append(comp.Errors, fmt.Sprintf(
			"Syntax error at line %d, column %d",
			node.StartPoint().Row+1,
			node.StartPoint().Column+1,
		))
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		ex.collectErrors(node.Child(i), comp)
	}
}

// scanScope walks the direct children of a scope node, collecting
// top-level declarations in source order. Preprocessor conditionals are
// transparent: their children belong to the surrounding scope.
func (ex *extractor) scanScope(node *sitter.Node, comp *core.Compilation, ns *core.Namespace) {
	comment := ""
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "comment":
			comment = commentText(ex.text(child))
			continue

		case "namespace_definition":
			name := ex.text(child.ChildByFieldName("name"))
			body := child.ChildByFieldName("body")
			if body == nil {
				break
			}
			inner := comp.FindNamespace(name)
			if inner == nil {
				inner = &core.Namespace{Name: name}
				comp.Namespaces = append(comp.Namespaces, inner)
			}
			ex.nsSpans = append(ex.nsSpans, nsSpan{
				ns:    inner,
				start: int(body.StartByte()),
				end:   int(body.EndByte()),
			})
			ex.scanScope(body, comp, inner)

		case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif",
			"linkage_specification", "declaration_list":
			ex.scanScope(child, comp, ns)

		case "type_definition":
			if d := ex.extractTypedef(child, ns); d != nil {
				d.Comment = comment
				addTypedef(comp, ns, d)
			}

		case "alias_declaration":
			if d := ex.extractAlias(child, ns); d != nil {
				d.Comment = comment
				addTypedef(comp, ns, d)
			}

		case "struct_specifier", "class_specifier", "union_specifier":
			d := ex.extractClass(child, ns)
			d.Comment = comment
			addClass(comp, ns, d)

		case "enum_specifier":
			if d := ex.extractEnum(child, ns); d != nil {
				d.Comment = comment
				addEnum(comp, ns, d)
			}

		case "declaration", "expression_statement":
			// Specifiers sometimes arrive wrapped one level down.
			for j := 0; j < int(child.ChildCount()); j++ {
				inner := child.Child(j)
				switch inner.Type() {
				case "struct_specifier", "class_specifier", "union_specifier":
					d := ex.extractClass(inner, ns)
					d.Comment = comment
					addClass(comp, ns, d)
				case "enum_specifier":
					if d := ex.extractEnum(inner, ns); d != nil {
						d.Comment = comment
						addEnum(comp, ns, d)
					}
				}
			}
		}
		comment = ""
	}
}

func nsName(ns *core.Namespace) string {
	if ns == nil {
		return ""
	}
	return ns.Name
}

func addTypedef(comp *core.Compilation, ns *core.Namespace, d *core.Declaration) {
	if ns != nil {
		ns.Typedefs = append(ns.Typedefs, d)
		return
	}
	comp.Typedefs = append(comp.Typedefs, d)
}

func addEnum(comp *core.Compilation, ns *core.Namespace, d *core.Declaration) {
	if ns != nil {
		ns.Enums = append(ns.Enums, d)
		return
	}
	comp.Enums = append(comp.Enums, d)
}

// extractClass builds a class-like declaration; a specifier without a
// body is a forward declaration and keeps size 0.
func (ex *extractor) extractClass(node *sitter.Node, ns *core.Namespace) *core.Declaration {
	kind := core.KindStruct
	switch node.Type() {
	case "class_specifier":
		kind = core.KindClass
	case "union_specifier":
		kind = core.KindUnion
	}

	d := &core.Declaration{
		Name:      ex.text(node.ChildByFieldName("name")),
		Namespace: nsName(ns),
		Kind:      core.DeclClass,
		ClassKind: kind,
		Span:      ex.span(node),
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "base_class_clause" {
			d.Bases = ex.extractBases(node.Child(i))
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return d
	}
	d.Size = 1 // defined; the layout pass grows this from the fields

	comment := ""
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "comment":
			comment = commentText(ex.text(child))
			continue
		case "access_specifier":
			// visibility has no bearing on layout reconciliation
		case "field_declaration":
			fields, nested := ex.extractFieldDecl(child, ns)
			for _, f := range fields {
				f.Comment = comment
			}
			d.Fields = append(d.Fields, fields...)
			d.Nested = append(d.Nested, nested...)
		case "struct_specifier", "class_specifier", "union_specifier":
			d.Nested = append(d.Nested, ex.extractClass(child, ns))
		case "enum_specifier":
			if e := ex.extractEnum(child, ns); e != nil {
				d.Nested = append(d.Nested, e)
			}
		}
		comment = ""
	}
	return d
}

func (ex *extractor) extractBases(clause *sitter.Node) []core.BaseSpec {
	var bases []core.BaseSpec
	access := ""
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case "access_specifier":
			access = ex.text(child)
		case "type_identifier", "qualified_identifier", "template_type":
			bases = append(bases, core.BaseSpec{
				Type:   core.NamedRef(ex.text(child)),
				Access: access,
			})
		}
	}
	return bases
}

// extractFieldDecl turns one field_declaration into fields (one per
// declarator) plus any nested record definitions it carries.
func (ex *extractor) extractFieldDecl(node *sitter.Node, ns *core.Namespace) ([]*core.Field, []*core.Declaration) {
	var (
		base   *core.TypeRef
		quals  []string
		attrs  []string
		nested []*core.Declaration
		fields []*core.Field
		width  int
	)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_qualifier":
			quals = append(quals, ex.text(child))
		case "primitive_type", "sized_type_specifier":
			base = primitiveRef(ex.text(child))
		case "type_identifier":
			base = namedOrPrimitive(ex.text(child))
		case "qualified_identifier", "template_type":
			base = core.NamedRef(ex.text(child))
		case "struct_specifier", "class_specifier", "union_specifier":
			inner := ex.extractClass(child, ns)
			base = core.DeclRef(inner)
			if inner.Name != "" {
				nested = append(nested, inner)
			}
		case "enum_specifier":
			if inner := ex.extractEnum(child, ns); inner != nil {
				base = core.DeclRef(inner)
				nested = append(nested, inner)
			}
		case "attribute_specifier", "attribute_declaration", "alignas_qualifier",
			"alignas_specifier", "ms_declspec_modifier":
			attrs = append(attrs, ex.text(child))
		case "bitfield_clause":
			width = bitfieldWidth(ex.text(child))
		case "field_identifier":
			fields = append(fields, &core.Field{Name: ex.text(child)})
		case "pointer_declarator", "array_declarator", "parenthesized_declarator":
			name, wrap := ex.buildDeclarator(child, nil)
			if name != "" {
				fields = append(fields, &core.Field{Name: name, Type: wrap})
			}
		}
	}

	if base == nil {
		return nil, nested
	}
	for _, q := range quals {
		base = core.Qualified(q, base)
	}
	for _, f := range fields {
		f.Type = applyDeclarator(f.Type, cloneRef(base))
		f.Attrs = attrs
		f.Width = width
	}
	return fields, nested
}

// buildDeclarator recurses through pointer/array declarators. The
// returned reference is a chain of wrappers with a nil base; the caller
// grafts the real base type on with applyDeclarator.
func (ex *extractor) buildDeclarator(node *sitter.Node, wrap *core.TypeRef) (string, *core.TypeRef) {
	switch node.Type() {
	case "field_identifier", "identifier", "type_identifier":
		return ex.text(node), wrap

	case "pointer_declarator":
		inner := node.ChildByFieldName("declarator")
		if inner == nil {
			return "", wrap
		}
		// Pointer binds before any outer array wrapper.
		return ex.buildDeclarator(inner, core.PointerTo(wrap))

	case "array_declarator":
		inner := node.ChildByFieldName("declarator")
		size := 0
		if sz := node.ChildByFieldName("size"); sz != nil {
			size, _ = strconv.Atoi(ex.text(sz))
		}
		name, w := ex.buildDeclarator(inner, wrap)
		return name, core.ArrayOf(w, size)

	case "parenthesized_declarator":
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			if c.IsNamed() {
				return ex.buildDeclarator(c, wrap)
			}
		}
	}
	return "", wrap
}

// cloneRef deep-copies a reference chain so sibling declarators never
// share mutable wrappers.
func cloneRef(t *core.TypeRef) *core.TypeRef {
	if t == nil {
		return nil
	}
	c := *t
	c.Elem = cloneRef(t.Elem)
	return &c
}

// applyDeclarator replaces the nil base at the bottom of a declarator
// wrapper chain with the declared base type.
func applyDeclarator(wrap, base *core.TypeRef) *core.TypeRef {
	if wrap == nil {
		return base
	}
	cur := wrap
	for cur.Elem != nil {
		cur = cur.Elem
	}
	cur.Elem = base
	return wrap
}

func bitfieldWidth(s string) int {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ":"))
	n, _ := strconv.Atoi(s)
	return n
}

func (ex *extractor) extractEnum(node *sitter.Node, ns *core.Namespace) *core.Declaration {
	d := &core.Declaration{
		Name:      ex.text(node.ChildByFieldName("name")),
		Namespace: nsName(ns),
		Kind:      core.DeclEnum,
		Span:      ex.span(node),
	}
	if base := node.ChildByFieldName("base"); base != nil {
		d.Size = core.RefSize(primitiveRef(ex.text(base)))
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return d
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() != "enumerator" {
			continue
		}
		d.Items = append(d.Items, core.EnumItem{
			Name:  ex.text(child.ChildByFieldName("name")),
			Value: ex.text(child.ChildByFieldName("value")),
		})
	}
	return d
}

func (ex *extractor) extractTypedef(node *sitter.Node, ns *core.Namespace) *core.Declaration {
	var base *core.TypeRef
	var name string
	var wrap *core.TypeRef

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "primitive_type", "sized_type_specifier":
			// A known type name in declarator position is the typedef name.
			if base == nil {
				base = primitiveRef(ex.text(child))
			} else {
				name = ex.text(child)
			}
		case "struct_specifier", "class_specifier", "union_specifier":
			base = core.DeclRef(ex.extractClass(child, ns))
		case "enum_specifier":
			base = core.DeclRef(ex.extractEnum(child, ns))
		case "type_identifier":
			if base == nil {
				base = namedOrPrimitive(ex.text(child))
			} else {
				name = ex.text(child)
			}
		case "pointer_declarator", "array_declarator":
			name, wrap = ex.buildDeclarator(child, nil)
		}
	}
	if name == "" || base == nil {
		return nil
	}
	return &core.Declaration{
		Name:      name,
		Namespace: nsName(ns),
		Kind:      core.DeclTypedef,
		Span:      ex.span(node),
		Element:   applyDeclarator(wrap, base),
	}
}

// extractAlias handles `using Name = Type;`.
func (ex *extractor) extractAlias(node *sitter.Node, ns *core.Namespace) *core.Declaration {
	name := ex.text(node.ChildByFieldName("name"))
	typeNode := node.ChildByFieldName("type")
	if name == "" || typeNode == nil {
		return nil
	}
	return &core.Declaration{
		Name:      name,
		Namespace: nsName(ns),
		Kind:      core.DeclTypedef,
		Span:      ex.span(node),
		Element:   namedOrPrimitive(strings.TrimSpace(ex.text(typeNode))),
	}
}

func commentText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

// primitiveKinds maps C spellings and the stdint aliases IL2CPP dumps
// use onto primitive kinds.
var primitiveKinds = map[string]core.PrimKind{
	"void":               core.PrimVoid,
	"bool":               core.PrimBool,
	"char":               core.PrimChar,
	"signed char":        core.PrimChar,
	"short":              core.PrimShort,
	"short int":          core.PrimShort,
	"int":                core.PrimInt,
	"signed":             core.PrimInt,
	"long":               core.PrimLong,
	"long int":           core.PrimLong,
	"long long":          core.PrimLongLong,
	"unsigned char":      core.PrimUChar,
	"unsigned short":     core.PrimUShort,
	"unsigned":           core.PrimUInt,
	"unsigned int":       core.PrimUInt,
	"unsigned long":      core.PrimULong,
	"unsigned long long": core.PrimULongLong,
	"float":              core.PrimFloat,
	"double":             core.PrimDouble,
	"int8_t":             core.PrimChar,
	"uint8_t":            core.PrimUChar,
	"int16_t":            core.PrimShort,
	"uint16_t":           core.PrimUShort,
	"int32_t":            core.PrimInt,
	"uint32_t":           core.PrimUInt,
	"int64_t":            core.PrimLong,
	"uint64_t":           core.PrimULong,
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func primitiveRef(text string) *core.TypeRef {
	if k, ok := primitiveKinds[normalizeSpaces(text)]; ok {
		return core.Primitive(k)
	}
	return core.NamedRef(normalizeSpaces(text))
}

func namedOrPrimitive(text string) *core.TypeRef {
	if k, ok := primitiveKinds[text]; ok {
		return core.Primitive(k)
	}
	return core.NamedRef(text)
}

// resolveLocalRefs links named references to declarations of the same
// compilation by exact name; engine-level matching stays name-aware, this
// is only the cheap local binding that makes sizes computable.
func resolveLocalRefs(comp *core.Compilation) {
	idx := make(map[string]*core.Declaration)
	add := func(ds []*core.Declaration) {
		for _, d := range ds {
			if d.Name != "" {
				idx[d.Name] = d
			}
		}
	}
	add(comp.Typedefs)
	add(comp.Enums)
	add(comp.Classes)
	for _, ns := range comp.Namespaces {
		add(ns.Typedefs)
		add(ns.Enums)
		add(ns.Classes)
	}

	var fixRef func(t *core.TypeRef)
	fixRef = func(t *core.TypeRef) {
		if t == nil {
			return
		}
		switch t.Kind {
		case core.RefPointer, core.RefArray, core.RefQualified:
			fixRef(t.Elem)
		case core.RefDecl, core.RefTypedef:
			if t.Decl == nil && t.Name != "" {
				if d, ok := idx[t.Name]; ok {
					t.Decl = d
					if d.Kind == core.DeclTypedef {
						t.Kind = core.RefTypedef
					}
				}
			}
		}
	}

	var fixDecl func(d *core.Declaration)
	fixDecl = func(d *core.Declaration) {
		for _, f := range d.Fields {
			fixRef(f.Type)
		}
		for _, b := range d.Bases {
			fixRef(b.Type)
		}
		fixRef(d.Element)
		for _, n := range d.Nested {
			fixDecl(n)
		}
	}
	for _, d := range comp.Globals() {
		fixDecl(d)
	}
	for _, ns := range comp.Namespaces {
		for _, d := range ns.Typedefs {
			fixDecl(d)
		}
		for _, d := range ns.Enums {
			fixDecl(d)
		}
		for _, d := range ns.Classes {
			fixDecl(d)
		}
	}
}
