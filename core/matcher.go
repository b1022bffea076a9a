package core

import (
	"sort"
	"strings"
)

// Matcher decides whether two type-name strings denote the same logical
// type under the mangling, suffix and remapping rules of the configured
// type universe. All find-by-name and find-by-type operations go through it.
type Matcher struct {
	suffixes     []string          // reserved suffixes, sorted for determinism
	suffixTarget map[string]string // suffix -> remap target type name
	remaps       map[string]string // fully-qualified source name -> replacement
}

// NewMatcher builds a matcher from the configured reserved suffixes and
// remap table. Both maps may be nil.
func NewMatcher(reservedSuffixes map[string]string, remappedTypes map[string]string) *Matcher {
	m := &Matcher{
		suffixTarget: make(map[string]string, len(reservedSuffixes)),
		remaps:       make(map[string]string, len(remappedTypes)),
	}
	for s, target := range reservedSuffixes {
		m.suffixes = append(m.suffixes, s)
		m.suffixTarget[s] = target
	}
	sort.Strings(m.suffixes)
	for from, to := range remappedTypes {
		m.remaps[from] = to
	}
	return m
}

// Remap applies the configured remap table to a name, returning the name
// unchanged when no entry exists.
func (m *Matcher) Remap(name string) string {
	if to, ok := m.remaps[name]; ok {
		return to
	}
	return name
}

// SuffixTarget returns the remap target for the reserved suffix the name
// ends with, if any.
func (m *Matcher) SuffixTarget(name string) (target string, ok bool) {
	for _, s := range m.suffixes {
		if strings.HasSuffix(name, s) {
			return m.suffixTarget[s], true
		}
	}
	return "", false
}

// ReservedSuffix returns the reserved suffix the name ends with, if any.
func (m *Matcher) ReservedSuffix(name string) (suffix string, ok bool) {
	for _, s := range m.suffixes {
		if strings.HasSuffix(name, s) {
			return s, true
		}
	}
	return "", false
}

// stripNamespace removes a single leading "<ns>::" qualifier.
func stripNamespace(name, ns string) string {
	if ns == "" {
		return name
	}
	return strings.TrimPrefix(name, ns+"::")
}

// Match reports whether two (namespace-stripped) names denote the same
// logical type. The relation is symmetric.
func (m *Matcher) Match(a, b string) bool {
	// A reserved suffix carries semantic meaning that mangling never adds
	// or removes; disagreement on any suffix is a mismatch.
	for _, s := range m.suffixes {
		if strings.HasSuffix(a, s) != strings.HasSuffix(b, s) {
			return false
		}
	}

	a = strings.ReplaceAll(a, "__Enum", "")
	b = strings.ReplaceAll(b, "__Enum", "")

	aScored := strings.Contains(a, "_")
	bScored := strings.Contains(b, "_")
	if aScored != bScored {
		// Exactly one side is mangled. Mangling either appends a
		// discriminator (Foo_3) or prepends a qualifier (Player_Foo), so
		// the canonical name sits on one side of the last underscore.
		mangled, plain := a, b
		if bScored {
			mangled, plain = b, a
		}
		cut := strings.LastIndex(mangled, "_")
		return mangled[cut+1:] == plain || mangled[:cut] == plain
	}

	return a == b
}

// MatchQualified strips each side's immediate namespace before matching.
func (m *Matcher) MatchQualified(a, nsA, b, nsB string) bool {
	return m.Match(stripNamespace(a, nsA), stripNamespace(b, nsB))
}

// IsGeneric reports whether a name is a mangled generic: it contains an
// underscore, the substring after the first underscore is non-empty and
// starts with a digit, and the name does not end in a reserved suffix.
func (m *Matcher) IsGeneric(name string) bool {
	i := strings.Index(name, "_")
	if i < 0 {
		return false
	}
	tail := name[i+1:]
	if tail == "" || tail[0] < '0' || tail[0] > '9' {
		return false
	}
	if _, reserved := m.ReservedSuffix(name); reserved {
		return false
	}
	return true
}

// SameRef reports whether two type references denote the same type: same
// kind tag, same generic-ness, and matching names after stripping each
// side's parent namespace and remapping the right-hand side.
func (m *Matcher) SameRef(a, b *TypeRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	an := stripNamespace(a.RefName(), a.RefNamespace())
	bn := m.Remap(stripNamespace(b.RefName(), b.RefNamespace()))
	if a.Kind == RefPrimitive && b.Kind == RefPrimitive {
		return a.Prim == b.Prim
	}
	if m.IsGeneric(an) != m.IsGeneric(bn) {
		return false
	}
	return m.Match(an, bn)
}
