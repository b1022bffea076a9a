// Package cpp parses C++ headers into the engine's declaration model
// using tree-sitter. It implements the parser contract the
// reconciliation engine is written against: ordered top-level typedefs,
// enums and classes, namespaces, source spans, comments, field lists
// with bitfield widths, base lists, and computed sizes.
package cpp

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/termfx/typealign/core"
)

// ParseOptions mirror the compiler invocation the headers were produced
// for. Both headers must be parsed with identical options.
type ParseOptions struct {
	Arch        string
	OS          string
	Defines     map[string]string
	IncludeDirs []string
}

// DefaultOptions is the fixed profile for IL2CPP dump headers:
// ARM64 / linux with the IDA-clang marker defined.
func DefaultOptions(includeDirs ...string) ParseOptions {
	return ParseOptions{
		Arch:        "arm64",
		OS:          "linux",
		Defines:     map[string]string{"_IDACLANG_": "1"},
		IncludeDirs: includeDirs,
	}
}

// Provider wraps a tree-sitter parser configured for C++.
type Provider struct {
	parser *sitter.Parser
	opts   ParseOptions
}

// New creates a provider with the given options.
func New(opts ParseOptions) *Provider {
	parser := sitter.NewParser()
	lang := cpp.GetLanguage()
	if lang == nil {
		panic("Failed to load cpp language for tree-sitter")
	}
	parser.SetLanguage(lang)
	return &Provider{parser: parser, opts: opts}
}

// ParseFile reads and parses one header.
func (p *Provider) ParseFile(path string) (*core.Compilation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(path, data)
}

// ParseTargetFile parses the target header with the size_t workaround:
// when the first attempt yields diagnostics, a size_t typedef is
// injected after #pragma once and the parse retried.
func (p *Provider) ParseTargetFile(path string) (*core.Compilation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	comp, err := p.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if len(comp.Errors) == 0 {
		return comp, nil
	}
	return p.Parse(path, injectSizeT(data))
}

// Parse parses raw header text. The returned compilation's Source is the
// exact text the spans refer to.
func (p *Provider) Parse(file string, source []byte) (*core.Compilation, error) {
	masked, macros := maskListMacros(source)

	tree, err := p.parser.ParseCtx(context.TODO(), nil, masked)
	if err != nil || tree == nil {
		return nil, fmt.Errorf("failed to parse %s: %v", file, err)
	}
	defer tree.Close()

	ex := &extractor{file: file, source: masked}
	comp := ex.extract(tree.RootNode())
	comp.File = file
	comp.Source = string(source)

	synthesizeMacroDecls(comp, ex, macros)
	resolveLocalRefs(comp)
	computeLayouts(comp)
	return comp, nil
}
