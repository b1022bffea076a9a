package core

import (
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// HeaderWalker discovers header files under a sysroot include directory.
// The driver uses it to validate the include environment before parsing
// and to report what the sysroot provides.
type HeaderWalker struct {
	// IncludeGlobs select files; defaults to C/C++ header extensions.
	IncludeGlobs []string
	// ExcludeGlobs filter matched files out.
	ExcludeGlobs []string
}

// NewHeaderWalker creates a walker with the default header patterns.
func NewHeaderWalker() *HeaderWalker {
	return &HeaderWalker{
		IncludeGlobs: []string{"**/*.h", "**/*.hpp", "**/*.hh"},
	}
}

// Walk returns every matching header under root, as paths joined onto
// root, in directory traversal order.
func (hw *HeaderWalker) Walk(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}
		if !hw.matches(rel) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindHeader locates one header by base name under root, or "" when the
// sysroot does not provide it.
func (hw *HeaderWalker) FindHeader(root, name string) (string, error) {
	headers, err := hw.Walk(root)
	if err != nil {
		return "", err
	}
	for _, h := range headers {
		if filepath.Base(h) == name {
			return h, nil
		}
	}
	return "", nil
}

func (hw *HeaderWalker) matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	included := false
	for _, g := range hw.IncludeGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, g := range hw.ExcludeGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return false
		}
	}
	return true
}
