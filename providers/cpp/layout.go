package cpp

import "github.com/termfx/typealign/core"

// layouter computes declaration sizes under ARM64 / LP64 rules: natural
// alignment, pointer size 8, structs padded to their widest member,
// unions sized by their widest member. Headers from other universes
// (il2cpp-class.h and friends) are not parsed, so unresolved named
// references count as pointer-sized opaque handles, matching the
// engine's own size table.
type layouter struct {
	memo   map[*core.Declaration]int
	active map[*core.Declaration]bool
}

// computeLayouts fills in Size for every declaration of a compilation.
func computeLayouts(comp *core.Compilation) {
	l := &layouter{
		memo:   make(map[*core.Declaration]int),
		active: make(map[*core.Declaration]bool),
	}
	var all []*core.Declaration
	all = append(all, comp.Globals()...)
	for _, ns := range comp.Namespaces {
		all = append(all, ns.Typedefs...)
		all = append(all, ns.Enums...)
		all = append(all, ns.Classes...)
	}
	for _, d := range all {
		l.declSize(d)
	}
}

func (l *layouter) declSize(d *core.Declaration) int {
	if v, ok := l.memo[d]; ok {
		return v
	}
	if l.active[d] {
		return 0 // by-value cycle; invalid C++, terminate anyway
	}
	l.active[d] = true
	defer delete(l.active, d)

	size := 0
	switch d.Kind {
	case core.DeclEnum:
		size = d.Size
		if size == 0 {
			size = 4
		}
	case core.DeclTypedef:
		size = l.refSize(d.Element)
	case core.DeclClass:
		size = l.classSize(d)
	}
	l.memo[d] = size
	d.Size = size
	return size
}

func (l *layouter) classSize(d *core.Declaration) int {
	if len(d.Fields) == 0 {
		// Size 1 when defined, 0 for a bare forward declaration; the
		// extractor recorded which one this is.
		return d.Size
	}
	for _, n := range d.Nested {
		l.declSize(n)
	}

	align := 1
	for _, f := range d.Fields {
		if a := l.refAlign(f.Type); a > align {
			align = a
		}
	}

	if d.ClassKind == core.KindUnion {
		size := 0
		for _, f := range d.Fields {
			if s := l.refSize(f.Type); s > size {
				size = s
			}
		}
		return pad(size, align)
	}

	offset := 0
	for _, b := range d.Bases {
		if b.Type.Decl != nil {
			offset += l.declSize(b.Type.Decl)
		}
	}

	bitsLeft := 0 // remaining bits in the open bitfield unit
	unitSize := 0
	for _, f := range d.Fields {
		fs := l.refSize(f.Type)
		if f.Width > 0 {
			if bitsLeft < f.Width || unitSize != fs {
				offset = pad(offset, l.refAlign(f.Type)) + fs
				bitsLeft = fs * 8
				unitSize = fs
			}
			bitsLeft -= f.Width
			continue
		}
		bitsLeft, unitSize = 0, 0
		offset = pad(offset, l.refAlign(f.Type)) + fs
	}
	return pad(offset, align)
}

func (l *layouter) refSize(t *core.TypeRef) int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case core.RefArray:
		return t.Len * l.refSize(t.Elem)
	case core.RefQualified:
		return l.refSize(t.Elem)
	case core.RefTypedef, core.RefDecl:
		if t.Decl != nil {
			return l.declSize(t.Decl)
		}
	}
	return core.RefSize(t)
}

func (l *layouter) refAlign(t *core.TypeRef) int {
	if t == nil {
		return 1
	}
	switch t.Kind {
	case core.RefPointer:
		return 8
	case core.RefArray, core.RefQualified:
		return l.refAlign(t.Elem)
	case core.RefTypedef:
		if t.Decl != nil {
			return l.refAlign(t.Decl.Element)
		}
		return 8
	case core.RefDecl:
		if t.Decl == nil {
			return 8
		}
		if t.Decl.Kind == core.DeclEnum {
			return clampAlign(l.declSize(t.Decl))
		}
		align := 1
		for _, f := range t.Decl.Fields {
			if a := l.refAlign(f.Type); a > align {
				align = a
			}
		}
		return align
	}
	return clampAlign(core.RefSize(t))
}

func clampAlign(n int) int {
	switch {
	case n >= 8:
		return 8
	case n >= 4:
		return 4
	case n >= 2:
		return 2
	default:
		return 1
	}
}

func pad(offset, align int) int {
	if align <= 1 {
		return offset
	}
	if r := offset % align; r != 0 {
		return offset + align - r
	}
	return offset
}
