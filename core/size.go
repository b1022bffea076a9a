package core

// ARM64 / LP64 primitive sizes. The layout rules here mirror the parser's
// layout calculator; both sides of a comparison go through the same tables.
var primSize = map[PrimKind]int{
	PrimVoid:      0,
	PrimBool:      1,
	PrimChar:      1,
	PrimShort:     2,
	PrimInt:       4,
	PrimLong:      8,
	PrimLongLong:  8,
	PrimUChar:     1,
	PrimUShort:    2,
	PrimUInt:      4,
	PrimULong:     8,
	PrimULongLong: 8,
	PrimFloat:     4,
	PrimDouble:    8,
}

const pointerSize = 8

// RefSize returns the byte size a type reference occupies as a field.
// Unresolvable named references count as pointer-sized opaque handles so
// aggregate comparisons stay stable across the two headers.
func RefSize(t *TypeRef) int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case RefPrimitive:
		return primSize[t.Prim]
	case RefPointer:
		return pointerSize
	case RefArray:
		return t.Len * RefSize(t.Elem)
	case RefQualified:
		return RefSize(t.Elem)
	case RefTypedef:
		if t.Decl != nil && t.Decl.Element != nil {
			return RefSize(t.Decl.Element)
		}
		return pointerSize
	case RefDecl:
		if t.Decl != nil {
			if t.Decl.Kind == DeclEnum {
				if t.Decl.Size > 0 {
					return t.Decl.Size
				}
				return 4
			}
			return t.Decl.Size
		}
		return pointerSize
	}
	return 0
}

// FieldsSize sums the field sizes of a class-like declaration.
func FieldsSize(fields []*Field) int {
	total := 0
	for _, f := range fields {
		total += RefSize(f.Type)
	}
	return total
}
