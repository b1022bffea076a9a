package cpp

import (
	"regexp"
	"strings"

	"github.com/termfx/typealign/core"
)

// macroHit is one DO_ARRAY_DEFINE / DO_LIST_DEFINE invocation found in
// the raw text before parsing.
type macroHit struct {
	offset int
	length int
	list   bool // DO_LIST_DEFINE
	arg    string
}

var macroInvocation = regexp.MustCompile(`(?m)^[ \t]*DO_(ARRAY|LIST)_DEFINE\(([A-Za-z_][A-Za-z0-9_]*)\)[ \t]*\r?$`)

// maskListMacros blanks macro invocation lines so tree-sitter sees no
// syntax errors, preserving every byte offset. The preamble's #define
// block keeps its backslash continuations and never matches line-anchored
// invocations.
func maskListMacros(source []byte) ([]byte, []macroHit) {
	var hits []macroHit
	masked := append([]byte(nil), source...)
	for _, loc := range macroInvocation.FindAllSubmatchIndex(source, -1) {
		start, end := loc[0], loc[1]
		if lineContinued(source, start) {
			continue
		}
		off := skipIndent(source, start)
		hits = append(hits, macroHit{
			offset: off,
			length: end - off,
			list:   string(source[loc[2]:loc[3]]) == "LIST",
			arg:    string(source[loc[4]:loc[5]]),
		})
		for i := start; i < end; i++ {
			if masked[i] != '\n' && masked[i] != '\r' {
				masked[i] = ' '
			}
		}
	}
	return masked, hits
}

// lineContinued reports whether the previous line ends in a backslash,
// which makes the match part of a macro body instead of an invocation.
func lineContinued(source []byte, lineStart int) bool {
	i := lineStart - 1
	for i >= 0 && (source[i] == '\n' || source[i] == '\r') {
		i--
	}
	return i >= 0 && source[i] == '\\'
}

func skipIndent(source []byte, i int) int {
	for i < len(source) && (source[i] == ' ' || source[i] == '\t') {
		i++
	}
	return i
}

// synthesizeMacroDecls materializes the declarations each macro
// invocation would have expanded to, with spans starting at the
// invocation offset so the engine's raw-text scan correlates them.
func synthesizeMacroDecls(comp *core.Compilation, ex *extractor, hits []macroHit) {
	for _, h := range hits {
		span := core.SourceSpan{File: comp.File, Start: h.offset, End: h.offset + h.length}
		ns := ex.namespaceAt(h.offset)

		arr := arrayDecl(h.arg, span)
		addClass(comp, ns, arr)
		if h.list {
			addClass(comp, ns, listDecl(h.arg, arr, span))
		}
	}
}

func addClass(comp *core.Compilation, ns *core.Namespace, d *core.Declaration) {
	if ns != nil {
		d.Namespace = ns.Name
		ns.Classes = append(ns.Classes, d)
		return
	}
	comp.Classes = append(comp.Classes, d)
}

// arrayDecl is the DO_ARRAY_DEFINE expansion for one element type.
func arrayDecl(elem string, span core.SourceSpan) *core.Declaration {
	return &core.Declaration{
		Name:      elem + "__Array",
		Kind:      core.DeclClass,
		ClassKind: core.KindStruct,
		Span:      span,
		Fields: []*core.Field{
			{Name: "klass", Type: core.PointerTo(core.NamedRef("Il2CppClass"))},
			{Name: "monitor", Type: core.PointerTo(core.NamedRef("MonitorData"))},
			{Name: "bounds", Type: core.PointerTo(core.NamedRef("Il2CppArrayBounds"))},
			{Name: "max_length", Type: core.NamedRef("il2cpp_array_size_t")},
			{Name: "vector", Type: core.ArrayOf(core.NamedRef(elem), 32)},
		},
	}
}

// listDecl is the List_1_ half of the DO_LIST_DEFINE expansion.
func listDecl(elem string, arr *core.Declaration, span core.SourceSpan) *core.Declaration {
	return &core.Declaration{
		Name:      "List_1_" + elem,
		Kind:      core.DeclClass,
		ClassKind: core.KindStruct,
		Span:      span,
		Fields: []*core.Field{
			{Name: "klass", Type: core.PointerTo(core.NamedRef("Il2CppClass"))},
			{Name: "monitor", Type: core.PointerTo(core.NamedRef("MonitorData"))},
			{Name: "_items", Type: core.PointerTo(core.DeclRef(arr))},
			{Name: "_size", Type: core.Primitive(core.PrimInt)},
			{Name: "_version", Type: core.Primitive(core.PrimInt)},
		},
	}
}

// injectSizeT inserts the documented workaround typedef after
// #pragma once, or at the start when the pragma is absent.
func injectSizeT(source []byte) []byte {
	const pragma = "#pragma once"
	const typedef = "typedef unsigned long size_t;\n"
	s := string(source)
	i := strings.Index(s, pragma)
	if i < 0 {
		return []byte(typedef + s)
	}
	for ; i < len(s); i++ {
		if s[i] == '\n' {
			i++
			break
		}
	}
	return []byte(s[:i] + typedef + s[i:])
}
