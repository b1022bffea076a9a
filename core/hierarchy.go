package core

import "strings"

// replaceRef overwrites a reference in place with another's value.
func replaceRef(dst, src *TypeRef) { *dst = *src }

// replaceBase swaps the ultimate non-wrapper base of a reference for a
// new one, preserving every pointer/array/qualifier layer above it.
func replaceBase(t *TypeRef, base *TypeRef) {
	cur := t
	for cur.Kind == RefPointer || cur.Kind == RefArray || cur.Kind == RefQualified {
		if cur.Elem.Kind != RefPointer && cur.Elem.Kind != RefArray && cur.Elem.Kind != RefQualified {
			cur.Elem = base
			return
		}
		cur = cur.Elem
	}
	replaceRef(t, base)
}

// refineFirstPass collapses a nominal single-field wrapper into its
// underlying numeric: a class-like with exactly one field of primitive
// type (or a typedef to one) stands in for that primitive. Type names
// containing "FP" are exempt.
func (e *Engine) refineFirstPass(t *TypeRef) *TypeRef {
	if t == nil || t.Kind != RefDecl {
		return t
	}
	d := t.Decl
	if d == nil {
		d = e.input.FindByName(t.Name)
	}
	if d == nil || !d.IsClassLike() || len(d.Fields) != 1 {
		return t
	}
	if strings.Contains(d.Name, "FP") {
		return t
	}
	inner := d.Fields[0].Type
	switch {
	case inner.Kind == RefPrimitive:
		return inner
	case inner.Kind == RefTypedef && inner.Decl != nil && inner.Decl.Element != nil &&
		inner.Decl.Element.Kind == RefPrimitive:
		return inner.Decl.Element
	}
	return t
}

// tryUpdateField resolves one field's type against the target universe:
// known types pass through, pointers rebind to target declarations or are
// remapped, and referenced types absent from the target are queued for
// insertion under base. Returns false only when nothing applies.
func (e *Engine) tryUpdateField(base *Declaration, f *Field) bool {
	t := f.Type
	if t == nil {
		return false
	}
	if e.isKnownRef(t) || t.Kind == RefPrimitive || t.Kind == RefTypedef {
		return true
	}

	if t.Kind == RefPointer {
		pb, _ := t.PointerBase()
		if pb.Kind == RefPrimitive || e.isKnownRef(pb) {
			return true
		}
		name := stripNamespace(pb.RefName(), pb.RefNamespace())
		if d := e.targetGlobal.FindByName(name); d != nil {
			replaceBase(t, refFor(d))
			return true
		}
		return e.walkTypeHierarchy(base, t, true)
	}

	name := stripNamespace(t.RefName(), t.RefNamespace())
	if d := e.targetGlobal.FindByName(name); d != nil {
		replaceBase(t, refFor(d))
		return true
	}
	if !e.walkTypeHierarchy(base, t, true) {
		return false
	}
	if !e.refResolvesWithoutInsertion(t) {
		e.prependInsertion(base, t)
	}
	return true
}

// refResolvesWithoutInsertion reports whether a reference, after the
// hierarchy walk possibly rewrote it, reaches the target universe on its
// own: known, primitive, or present in the target-global list.
func (e *Engine) refResolvesWithoutInsertion(t *TypeRef) bool {
	pb, _ := t.PointerBase()
	for pb.Kind == RefArray || pb.Kind == RefQualified {
		pb = pb.Elem
	}
	if pb.Kind == RefPrimitive || e.isKnownRef(pb) {
		return true
	}
	return e.targetGlobal.ContainsName(stripNamespace(pb.RefName(), pb.RefNamespace()))
}

// walkTypeHierarchy transitively resolves one referenced type. Recursion
// through a class whose name is already in the walked set succeeds
// immediately, which is what keeps cyclic type graphs terminating.
func (e *Engine) walkTypeHierarchy(base *Declaration, t *TypeRef, deep bool) bool {
	name := stripNamespace(t.RefName(), t.RefNamespace())
	if e.walked[name] {
		return true
	}

	if e.isKnownRef(t) || t.Kind == RefPrimitive || t.Kind == RefTypedef {
		return deep
	}

	switch t.Kind {
	case RefArray, RefQualified:
		return e.walkTypeHierarchy(base, t.Elem, deep)

	case RefPointer:
		e.refinePointer(t)
		return true

	case RefDecl:
		d := t.Decl
		if d == nil {
			d = e.input.FindByName(name)
			t.Decl = d // cache the resolution, the name is unchanged
		}
		if d == nil {
			return false
		}
		if d.IsClassLike() {
			return e.walkClassFieldsNew(base, d)
		}
		if d.Kind == DeclEnum {
			if e.target.FindByName(d.Name) == nil {
				if i32, ok := e.prebuilt["int32_t"]; ok {
					replaceRef(t, i32)
				}
			}
			return true
		}
	}
	return true
}

// walkClassFieldsNew resolves every field of a class pulled in through
// the hierarchy; insertions stay attached to the originating target
// declaration.
func (e *Engine) walkClassFieldsNew(base *Declaration, d *Declaration) bool {
	if e.walked[d.Name] {
		return true
	}
	e.walked[d.Name] = true
	for _, f := range d.Fields {
		if !e.tryUpdateField(base, f) {
			f.Status = StatusUnresolved
		}
	}
	return true
}

// refinePointer is the second-pass refiner for pointer element types:
// reserved suffixes remap to their configured target (enums stay
// intact), mangled Action/Func generics collapse to Action, and anything
// else becomes an opaque Il2CppObject. The outer pointer layers survive.
func (e *Engine) refinePointer(t *TypeRef) {
	pb, _ := t.PointerBase()
	for pb.Kind == RefArray || pb.Kind == RefQualified {
		pb = pb.Elem
	}
	if pb.Kind == RefPrimitive || e.isKnownRef(pb) {
		return
	}
	name := stripNamespace(pb.RefName(), pb.RefNamespace())

	// Enums lose their identity across the universes: absent from the
	// target list they degrade to their underlying int32_t.
	if d := pointeeDecl(pb, e.input); d != nil && d.Kind == DeclEnum {
		if e.target.FindByName(d.Name) == nil {
			replaceBase(t, e.prebuiltOrNamed("int32_t"))
		}
		return
	}

	if target, ok := e.matcher.SuffixTarget(name); ok {
		if d := e.input.FindByName(target); d != nil && d.Kind == DeclEnum {
			return
		}
		replaceBase(t, e.prebuiltOrNamed(target))
		return
	}
	if e.matcher.IsGeneric(name) &&
		(strings.HasPrefix(name, "Action_") || strings.HasPrefix(name, "Func_")) {
		replaceBase(t, e.prebuiltOrNamed("Action"))
		return
	}
	replaceBase(t, e.prebuiltOrNamed("Il2CppObject"))
}

// pointeeDecl resolves a bare reference to its declaration, consulting
// the registry when the parser left it unbound.
func pointeeDecl(pb *TypeRef, reg *Registry) *Declaration {
	if pb.Decl != nil {
		return pb.Decl
	}
	if pb.Name == "" {
		return nil
	}
	return reg.FindByName(pb.Name)
}

// prebuiltOrNamed prefers the cached prebuilt reference and degrades to a
// bare named reference when the prebuilt load missed.
func (e *Engine) prebuiltOrNamed(name string) *TypeRef {
	if r, ok := e.prebuilt[name]; ok {
		c := *r // fields own their references; never graft the cache entry
		return &c
	}
	return NamedRef(name)
}
