package core

// prependInsertion queues a referenced type for emission immediately
// before the target declaration that needs it.
func (e *Engine) prependInsertion(base *Declaration, t *TypeRef) {
	e.insertions[base] = append([]*TypeRef{t}, e.insertions[base]...)
}

// planInsertions deduplicates the insertion map globally: iterating the
// target list in source order, a type reference survives only in the
// earliest dependent's list. Names compare under the matcher.
func (e *Engine) planInsertions() {
	var inserted []string
	for _, d := range e.target.Decls {
		list, ok := e.insertions[d]
		if !ok {
			continue
		}
		kept := list[:0]
		for _, t := range list {
			name := stripNamespace(t.RefName(), t.RefNamespace())
			dup := false
			for _, have := range inserted {
				if e.matcher.Match(name, have) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			inserted = append(inserted, name)
			kept = append(kept, t)
		}
		if len(kept) == 0 {
			delete(e.insertions, d)
			continue
		}
		e.insertions[d] = kept
	}
}
