package core

import "strings"

const backingSuffix = "_k__BackingField"

func stripBacking(name string) string { return strings.TrimSuffix(name, backingSuffix) }

func findFieldByName(fields []*Field, name string) *Field {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// walkEnum copies the matching input enum's items onto the target enum.
// Absence of a counterpart fails, leaving the caller to mark Unresolved.
func (e *Engine) walkEnum(te *Declaration) bool {
	ie := e.input.FindByName(te.Name)
	if ie == nil || ie.Kind != DeclEnum {
		return false
	}
	te.Items = append([]EnumItem(nil), ie.Items...)
	if ie.Size > 0 {
		te.Size = ie.Size
	}
	return true
}

// walkClass rewrites a target class's fields against its input
// counterpart. Guarded by the walked-classes set; re-entry succeeds
// immediately so cyclic type graphs terminate.
func (e *Engine) walkClass(tc *Declaration) bool {
	if e.walked[tc.Name] {
		return true
	}
	e.walked[tc.Name] = true

	ic := e.input.FindByName(tc.Name)
	if ic == nil || !ic.IsClassLike() {
		return false
	}

	if len(ic.Fields) == len(tc.Fields) && FieldsSize(ic.Fields) == FieldsSize(tc.Fields) {
		// Fast path: layouts agree, compare pairwise.
		out := make([]*Field, len(tc.Fields))
		for i := range tc.Fields {
			ic.Fields[i].Name = stripBacking(ic.Fields[i].Name)
			out[i] = e.compareField(tc, ic.Fields[i], tc.Fields[i])
		}
		tc.Fields = out
		return true
	}

	// Slow path: reassemble from the input side, filtering fields the
	// target inherits from base classes.
	baseFields := e.gatherBaseFields(ic)

	fields := ic.Fields
	if len(tc.Fields) > 0 {
		// Input fields past the target's last field belong to derived
		// layout the target does not carry.
		lastName := tc.Fields[len(tc.Fields)-1].Name
		for i := len(fields) - 1; i >= 0; i-- {
			if stripBacking(fields[i].Name) == lastName {
				fields = fields[:i+1]
				break
			}
		}
	}

	rebuilt := make([]*Field, 0, len(fields))
	for i := len(fields) - 1; i >= 0; i-- {
		fi := fields[i]
		name := stripBacking(fi.Name)
		fi.Name = name
		if ft := findFieldByName(tc.Fields, name); ft != nil {
			rebuilt = append(rebuilt, e.compareField(tc, fi, ft))
			continue
		}
		if findFieldByName(baseFields, name) != nil {
			continue // inherited, not re-emitted
		}
		if !e.tryUpdateField(tc, fi) {
			fi.Status = StatusUnresolved
		}
		rebuilt = append(rebuilt, fi)
	}
	for l, r := 0, len(rebuilt)-1; l < r; l, r = l+1, r-1 {
		rebuilt[l], rebuilt[r] = rebuilt[r], rebuilt[l]
	}
	tc.Fields = rebuilt
	return true
}

// gatherBaseFields collects the fields of all transitive input base
// classes, walking each base's target counterpart first so inherited
// layout is reconciled before it is filtered.
func (e *Engine) gatherBaseFields(ic *Declaration) []*Field {
	var out []*Field
	for _, b := range ic.Bases {
		bd := b.Type.Decl
		if bd == nil {
			bd = e.input.FindByName(b.Type.RefName())
		}
		if bd == nil || !bd.IsClassLike() {
			continue
		}
		if td := e.target.FindByName(bd.Name); td != nil && td.IsClassLike() {
			e.walkClass(td)
		}
		out = append(out, e.gatherBaseFields(bd)...)
		out = append(out, bd.Fields...)
	}
	return out
}

// compareField refines both fields through the first-pass simplifier and
// picks the winning side. Failures are localized as Unresolved marks on
// the input field; they never propagate.
func (e *Engine) compareField(tc *Declaration, fi, ft *Field) *Field {
	fi.Type = e.refineFirstPass(fi.Type)
	ft.Type = e.refineFirstPass(ft.Type)

	switch {
	case e.isKnownRef(fi.Type) && e.isKnownRef(ft.Type):
		return fi

	case fi.Type.Kind == ft.Type.Kind && e.matcher.SameRef(fi.Type, ft.Type):
		return ft

	case fi.Type.Kind == RefPointer && stripBacking(fi.Name) == ft.Name && e.isKnownRef(ft.Type):
		// The target's narrower non-pointer type is authoritative.
		return ft

	case (fi.Type.Kind == RefPrimitive || fi.Type.Kind == RefTypedef) && e.isEnumOrPrimitive(ft.Type):
		// Enum specialization on the target side is preserved.
		return ft
	}

	if RefSize(fi.Type) == RefSize(ft.Type) && strings.HasPrefix(ft.Name, stripBacking(fi.Name)) {
		// A target padding field absorbing the input's typed field.
		if e.tryUpdateField(tc, fi) {
			return fi
		}
	}

	if !e.tryUpdateField(tc, fi) {
		fi.Status = StatusUnresolved
	}
	return fi
}

// isEnumOrPrimitive reports whether a reference is a primitive or
// resolves to an enum declaration.
func (e *Engine) isEnumOrPrimitive(t *TypeRef) bool {
	if t.Kind == RefPrimitive {
		return true
	}
	if t.Kind != RefDecl {
		return false
	}
	if t.Decl != nil {
		return t.Decl.Kind == DeclEnum
	}
	if d := e.targetGlobal.FindByName(t.Name); d != nil {
		return d.Kind == DeclEnum
	}
	return false
}
