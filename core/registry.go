package core

import (
	"fmt"
	"sort"
)

// Registry is an append-only ordered declaration list with name-aware
// lookup. The engine keeps three: input, target, and target-global.
type Registry struct {
	Decls   []*Declaration
	matcher *Matcher
}

// NewRegistry builds a registry over the given declaration groups,
// appended in order. Duplicate identities are dropped.
func NewRegistry(m *Matcher, groups ...[]*Declaration) *Registry {
	r := &Registry{matcher: m}
	for _, g := range groups {
		for _, d := range g {
			r.Append(d)
		}
	}
	return r
}

// Append adds a declaration unless the identical declaration is already
// present.
func (r *Registry) Append(d *Declaration) {
	for _, have := range r.Decls {
		if have == d {
			return
		}
	}
	r.Decls = append(r.Decls, d)
}

// Len returns the number of declarations.
func (r *Registry) Len() int { return len(r.Decls) }

// FindByName iterates last-to-first and returns the first declaration
// whose name matches under the matcher, after applying the remap table to
// the query. Returns nil when nothing matches.
func (r *Registry) FindByName(name string) *Declaration {
	q := r.matcher.Remap(name)
	for i := len(r.Decls) - 1; i >= 0; i-- {
		d := r.Decls[i]
		if r.matcher.MatchQualified(d.Name, d.Namespace, q, "") {
			return d
		}
	}
	return nil
}

// FindByType linearly searches for a declaration whose own reference
// equals the given one.
func (r *Registry) FindByType(t *TypeRef) *Declaration {
	for _, d := range r.Decls {
		if r.matcher.SameRef(refFor(d), t) {
			return d
		}
	}
	return nil
}

// ContainsType reports whether a matching declaration exists.
func (r *Registry) ContainsType(t *TypeRef) bool { return r.FindByType(t) != nil }

// ContainsName reports whether FindByName succeeds.
func (r *Registry) ContainsName(name string) bool { return r.FindByName(name) != nil }

// SortBySpan stable-sorts the list ascending by (file, offset). In strict
// mode two entries from different source files are a fatal error.
func (r *Registry) SortBySpan(strict bool) error {
	if strict {
		for _, d := range r.Decls {
			if d.Span.File != r.Decls[0].Span.File {
				return fmt.Errorf("declarations span multiple files: %s vs %s",
					r.Decls[0].Span.File, d.Span.File)
			}
		}
	}
	sort.SliceStable(r.Decls, func(i, j int) bool {
		return r.Decls[i].Span.Less(r.Decls[j].Span)
	})
	return nil
}

// refFor builds the reference a declaration answers lookups with.
func refFor(d *Declaration) *TypeRef {
	if d.Kind == DeclTypedef {
		return TypedefRef(d)
	}
	return DeclRef(d)
}
