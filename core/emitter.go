package core

import (
	"errors"
	"fmt"
	"strings"
)

// Preamble is emitted verbatim at the top of every output header.
const Preamble = `#pragma once
#if defined(__i386__) || defined(__arm__)
#define IS_32BIT
#endif
#ifndef DO_ARRAY_DEFINE
#define DO_ARRAY_DEFINE(E_NAME) \
struct  E_NAME ## __Array { \
Il2CppClass *klass; \
MonitorData *monitor; \
Il2CppArrayBounds *bounds; \
il2cpp_array_size_t max_length; \
E_NAME vector[32]; \
};
#endif
#ifndef DO_LIST_DEFINE
#define DO_LIST_DEFINE(E_NAME) \
DO_ARRAY_DEFINE(E_NAME) \
struct List_1_ ## E_NAME { \
Il2CppClass *klass; \
MonitorData *monitor; \
struct E_NAME ## __Array *_items; \
int32_t _size; \
int32_t _version; \
};
#endif

#include <cstdint>
#include "il2cpp-class.h"
`

var primSpelling = map[PrimKind]string{
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

// Emit reconstructs the reconciled target header as one text buffer.
// Ordering is part of the contract: globals, then app enums, then
// inserted enums in discovery order, then classes with their insertion
// lists. Identical inputs and configuration produce identical bytes.
func (e *Engine) Emit() (string, error) {
	if !e.built {
		return "", errors.New("type model not built")
	}

	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteString("\n")

	for _, td := range e.targetComp.Typedefs {
		if td.Span.File != e.targetComp.File || td.Name == "size_t" {
			continue
		}
		b.WriteString(e.emitTypedef(td))
		b.WriteString(";\n")
	}
	for _, name := range e.builtinNames() {
		for _, c := range e.targetComp.Classes {
			if c.Name == name && c.IsClassLike() {
				b.WriteString(e.emitClassDef(c, false))
				b.WriteString(";\n")
			}
		}
	}

	b.WriteString("namespace app {\n")

	for _, d := range e.target.Decls {
		if d.Kind == DeclEnum && d.Status != StatusUnresolved {
			b.WriteString(e.emitEnum(d))
			b.WriteString(";\n")
		}
	}

	// Inserted enums surface before any class so every enum-typed field
	// below sees a definition.
	enumEmitted := make(map[*TypeRef]bool)
	for _, d := range e.target.Decls {
		for _, t := range e.insertions[d] {
			dd := e.insertionDecl(t)
			if dd != nil && dd.Kind == DeclEnum {
				b.WriteString(e.emitEnum(dd))
				b.WriteString(";\n")
				enumEmitted[t] = true
			}
		}
	}

	for _, d := range e.target.Decls {
		if !d.IsClassLike() || d.Status == StatusUnresolved {
			continue
		}
		switch d.Status {
		case StatusMacroArray:
			fmt.Fprintf(&b, "DO_ARRAY_DEFINE(%s)\n", strings.TrimSuffix(d.Name, "__Array"))
			continue
		case StatusMacroList:
			if strings.HasSuffix(d.Name, "__Array") {
				continue // the list macro already defines the array side
			}
			fmt.Fprintf(&b, "DO_LIST_DEFINE(%s)\n", strings.TrimPrefix(d.Name, "List_1_"))
			continue
		}
		for _, t := range e.insertions[d] {
			if enumEmitted[t] {
				continue
			}
			b.WriteString(e.emitInsertion(t))
			b.WriteString(";\n")
		}
		b.WriteString(e.emitClassDef(d, false))
		b.WriteString(";\n")
	}

	b.WriteString("}\n")
	return b.String(), nil
}

// builtinNames is the prefix of KnownNames up to and including the
// configured last built-in name; empty when the marker is absent.
func (e *Engine) builtinNames() []string {
	if e.cfg.LastBuiltInTypeName == "" {
		return nil
	}
	for i, n := range e.cfg.KnownNames {
		if n == e.cfg.LastBuiltInTypeName {
			return e.cfg.KnownNames[:i+1]
		}
	}
	return nil
}

// insertionDecl resolves an insertion-list reference to the declaration
// it would emit.
func (e *Engine) insertionDecl(t *TypeRef) *Declaration {
	pb, _ := t.PointerBase()
	for pb.Kind == RefArray || pb.Kind == RefQualified {
		pb = pb.Elem
	}
	if pb.Decl != nil {
		return pb.Decl
	}
	if pb.Name != "" {
		return e.input.FindByName(pb.Name)
	}
	return nil
}

func (e *Engine) emitInsertion(t *TypeRef) string {
	d := e.insertionDecl(t)
	if d == nil {
		// Nothing to define; a forward declaration keeps the field legal.
		return "struct " + t.RefName()
	}
	return e.emitDecl(d)
}

func (e *Engine) emitDecl(d *Declaration) string {
	switch d.Kind {
	case DeclClass:
		return e.emitClassDef(d, false)
	case DeclEnum:
		return e.emitEnum(d)
	case DeclTypedef:
		return e.emitTypedef(d)
	}
	panic(fmt.Sprintf("emitter: no rule for declaration kind %d (%s)", d.Kind, d.Name))
}

// emitClassDef writes a class-like definition. Size-0 declarations and
// declaration-only mode collapse to the bare class head.
func (e *Engine) emitClassDef(d *Declaration, declOnly bool) string {
	head := string(d.ClassKind)
	if head == "" {
		head = string(KindStruct)
	}
	if d.Name != "" {
		head += " " + d.Name
	}
	if d.Size == 0 || declOnly {
		return head
	}

	var b strings.Builder
	b.WriteString(head)
	if len(d.Bases) > 0 {
		names := make([]string, 0, len(d.Bases))
		for i := len(d.Bases) - 1; i >= 0; i-- {
			n, _ := e.spellType(d.Bases[i].Type)
			names = append(names, n)
		}
		b.WriteString(" : ")
		b.WriteString(strings.Join(names, ", "))
	}
	b.WriteString(" {\n")
	for _, n := range d.Nested {
		b.WriteString("    ")
		b.WriteString(e.emitDecl(n))
		b.WriteString(";\n")
	}
	for _, f := range d.Fields {
		b.WriteString("    ")
		b.WriteString(e.emitField(f))
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func (e *Engine) emitField(f *Field) string {
	var parts []string
	if f.Status == StatusUnresolved {
		parts = append(parts, "/* Unresolved */")
	} else if f.Comment != "" {
		parts = append(parts, "/* "+f.Comment+" */")
	}
	for _, a := range f.Attrs {
		if strings.HasPrefix(a, "alignas") {
			a = "alignas(8)"
		}
		parts = append(parts, a)
	}
	spelled, suffix := e.spellType(f.Type)
	name := f.Name + suffix
	if f.Width > 0 {
		name += fmt.Sprintf(" : %d", f.Width)
	}
	parts = append(parts, spelled, name)
	return strings.Join(parts, " ")
}

// spellType renders a reference as (type text, declarator suffix); the
// suffix carries array extents that follow the field name.
func (e *Engine) spellType(t *TypeRef) (string, string) {
	switch t.Kind {
	case RefPrimitive:
		s, ok := primSpelling[t.Prim]
		if !ok {
			panic(fmt.Sprintf("emitter: no rule for primitive kind %d", t.Prim))
		}
		return s, ""

	case RefTypedef, RefDecl:
		if t.Name == "" && t.Decl != nil {
			// Anonymous nested record spelled inline.
			return e.emitClassDef(t.Decl, false), ""
		}
		if t.Decl != nil {
			return t.Decl.Name, ""
		}
		return t.Name, ""

	case RefPointer:
		pb, depth := t.PointerBase()
		prefix := ""
		for pb.Kind == RefQualified {
			prefix += strings.ToLower(pb.Qual) + " "
			pb = pb.Elem
		}
		if pb.Kind == RefDecl && pb.Decl != nil && pb.Decl.IsClassLike() && pb.Decl.Size == 0 {
			prefix += strings.ToLower(string(pb.Decl.ClassKind)) + " "
		}
		inner, _ := e.spellType(pb)
		return prefix + inner + strings.Repeat("*", depth), ""

	case RefArray:
		inner, innerSuffix := e.spellType(t.Elem)
		return inner, fmt.Sprintf("[%d]", t.Len) + innerSuffix

	case RefQualified:
		inner, suffix := e.spellType(t.Elem)
		return strings.ToLower(t.Qual) + " " + inner, suffix
	}
	panic(fmt.Sprintf("emitter: no rule for reference kind %d", t.Kind))
}

func (e *Engine) emitEnum(d *Declaration) string {
	if len(d.Items) == 0 {
		return "enum " + d.Name
	}
	var b strings.Builder
	b.WriteString("enum ")
	b.WriteString(d.Name)
	b.WriteString(" {\n")
	for _, it := range d.Items {
		if it.Value != "" {
			fmt.Fprintf(&b, "    %s = %s,\n", it.Name, it.Value)
		} else {
			fmt.Fprintf(&b, "    %s,\n", it.Name)
		}
	}
	b.WriteString("}")
	return b.String()
}

func (e *Engine) emitTypedef(d *Declaration) string {
	inner, suffix := e.spellType(d.Element)
	return "typedef " + inner + " " + d.Name + suffix
}
