package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/termfx/typealign/models"
)

// Sentinel errors for structural failures; field- and type-level failures
// never surface here, they are localized as status marks.
var (
	ErrAlreadyBuilt        = errors.New("type model already built")
	ErrMissingAppNamespace = errors.New("target header has no app namespace")
)

// ParseFailureError reports error-severity diagnostics from a compilation.
type ParseFailureError struct {
	File        string
	Diagnostics []string
}

func (e *ParseFailureError) Error() string {
	return fmt.Sprintf("%s: compilation produced %d errors", e.File, len(e.Diagnostics))
}

// Engine owns all reconciliation state: the two registries, the prebuilt
// cache, the insertion map and the walked-classes guard. One engine
// instance serves one reconciliation run, single-threaded.
type Engine struct {
	cfg     models.RemapConfig
	matcher *Matcher
	Verbose bool

	input        *Registry
	target       *Registry
	targetGlobal *Registry

	prebuilt   map[string]*TypeRef
	knownSet   map[string]bool
	insertions map[*Declaration][]*TypeRef
	walked     map[string]bool

	inputComp  *Compilation
	targetComp *Compilation
	built      bool
}

// NewEngine creates an engine bound to a remapping configuration.
func NewEngine(cfg models.RemapConfig) *Engine {
	e := &Engine{
		cfg:        cfg,
		matcher:    NewMatcher(cfg.KnownReservedSuffixes, cfg.RemappedTypes),
		prebuilt:   make(map[string]*TypeRef),
		knownSet:   make(map[string]bool, len(cfg.KnownNames)),
		insertions: make(map[*Declaration][]*TypeRef),
		walked:     make(map[string]bool),
	}
	for _, n := range cfg.KnownNames {
		e.knownSet[n] = true
	}
	return e
}

// Matcher exposes the engine's name matcher.
func (e *Engine) Matcher() *Matcher { return e.matcher }

func (e *Engine) debugf(format string, args ...any) {
	if e.Verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

func (e *Engine) warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// BuildTypeModel ingests the two compilations and prepares the registries.
// It fails on parse diagnostics, a missing app namespace, or double
// invocation; prebuilt-type misses only warn.
func (e *Engine) BuildTypeModel(input, target *Compilation) error {
	if e.built {
		return ErrAlreadyBuilt
	}
	if len(input.Errors) > 0 {
		e.logDiagnostics(input)
		return &ParseFailureError{File: input.File, Diagnostics: input.Errors}
	}
	if len(target.Errors) > 0 {
		e.logDiagnostics(target)
		return &ParseFailureError{File: target.File, Diagnostics: target.Errors}
	}
	e.inputComp, e.targetComp = input, target

	// Recover macro origins: the parser sees expanded structs, the raw
	// text still holds the DO_*_DEFINE invocation at the same offset.
	e.applyMacroMarkers(target)

	app := target.FindNamespace("app")
	if app == nil {
		return ErrMissingAppNamespace
	}

	e.input = NewRegistry(e.matcher, input.Typedefs, input.Enums, input.Classes)
	e.target = NewRegistry(e.matcher, app.Enums, app.Classes)
	e.targetGlobal = NewRegistry(e.matcher, target.Typedefs, target.Enums, target.Classes, app.Decls())

	if err := e.input.SortBySpan(true); err != nil {
		return err
	}
	if err := e.target.SortBySpan(false); err != nil {
		return err
	}

	e.loadPrebuilt()
	e.dropForwardDeclarations()

	e.built = true
	return nil
}

func (e *Engine) logDiagnostics(c *Compilation) {
	fmt.Fprintf(os.Stderr, "Error: %s: %d parse errors\n", c.File, len(c.Errors))
	for _, d := range c.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", d)
	}
}

// applyMacroMarkers scans the target's raw text for macro invocations and
// marks any declaration whose span starts at a hit offset. Declarations
// sharing one offset take the same marker; the heuristic is deliberate.
func (e *Engine) applyMacroMarkers(target *Compilation) {
	all := target.Globals()
	for _, ns := range target.Namespaces {
		all = append(all, ns.Typedefs...)
		all = append(all, ns.Enums...)
		all = append(all, ns.Classes...)
	}
	mark := func(macro string, status Status) {
		from := 0
		for {
			i := strings.Index(target.Source[from:], macro)
			if i < 0 {
				return
			}
			off := from + i
			for _, d := range all {
				if d.Span.Start == off {
					d.Status = status
				}
			}
			from = off + len(macro)
		}
	}
	// DO_LIST_DEFINE first: DO_ARRAY_DEFINE is a substring-free sibling,
	// but scanning both keeps offsets independent anyway.
	mark("DO_LIST_DEFINE", StatusMacroList)
	mark("DO_ARRAY_DEFINE", StatusMacroArray)
}

// loadPrebuilt caches one input reference per configured known name and
// per reserved-suffix remap target. Misses warn and are omitted.
func (e *Engine) loadPrebuilt() {
	names := make([]string, 0, len(e.cfg.KnownNames)+len(e.cfg.KnownReservedSuffixes))
	names = append(names, e.cfg.KnownNames...)
	for _, s := range e.matcher.suffixes {
		names = append(names, e.matcher.suffixTarget[s])
	}
	for _, name := range names {
		if _, have := e.prebuilt[name]; have {
			continue
		}
		d := e.input.FindByName(name)
		if d == nil {
			e.warnf("prebuilt type %q not found in input header", name)
			continue
		}
		e.prebuilt[name] = refFor(d)
	}
}

// dropForwardDeclarations removes size-0 class-like target declarations;
// only forward declarations carry no layout. Enums are kept.
func (e *Engine) dropForwardDeclarations() {
	kept := e.target.Decls[:0]
	for _, d := range e.target.Decls {
		if d.IsClassLike() && d.Size == 0 {
			e.debugf("dropping forward declaration %s", d.Name)
			continue
		}
		kept = append(kept, d)
	}
	e.target.Decls = kept
}

// Resolve walks every target declaration last-to-first in source order,
// rewriting fields against the input counterparts, then deduplicates the
// insertion map. Requires a built model.
func (e *Engine) Resolve() error {
	if !e.built {
		return errors.New("type model not built")
	}
	for i := e.target.Len() - 1; i >= 0; i-- {
		d := e.target.Decls[i]
		if d.Status == StatusMacroArray || d.Status == StatusMacroList {
			// Re-emitted through the macro; the body is the macro's business.
			continue
		}
		switch {
		case d.IsClassLike():
			if !e.walkClass(d) {
				d.Status = StatusUnresolved
				e.debugf("unresolved target class %s", d.Name)
			}
		case d.Kind == DeclEnum:
			if !e.walkEnum(d) {
				d.Status = StatusUnresolved
				e.debugf("unresolved target enum %s", d.Name)
			}
		}
	}
	e.planInsertions()
	return nil
}

// Reconcile is the whole pipeline: build, resolve, emit.
func (e *Engine) Reconcile(input, target *Compilation) (string, error) {
	if err := e.BuildTypeModel(input, target); err != nil {
		return "", err
	}
	if err := e.Resolve(); err != nil {
		return "", err
	}
	return e.Emit()
}

// TargetDecls exposes the resolved target list in source order.
func (e *Engine) TargetDecls() []*Declaration {
	if e.target == nil {
		return nil
	}
	return e.target.Decls
}

// Insertions exposes the planned insertion list for one target declaration.
func (e *Engine) Insertions(d *Declaration) []*TypeRef { return e.insertions[d] }

// isKnownRef reports whether a bare reference is a known type: a
// primitive, or a name listed in configuration, or a cached prebuilt.
// Wrapped references are never known; the target's bare known types are
// what the comparison rules key on.
func (e *Engine) isKnownRef(t *TypeRef) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case RefPrimitive:
		return true
	case RefTypedef, RefDecl:
		name := stripNamespace(t.RefName(), t.RefNamespace())
		if e.knownSet[name] {
			return true
		}
		_, ok := e.prebuilt[name]
		return ok
	}
	return false
}
