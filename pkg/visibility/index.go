// Package visibility converts between a BCF visibility/selection/coloring
// payload and concrete per-element host state.
package visibility

// Index maps IFC GUIDs to host element references.
// The first reference added for a GUID wins.
type Index[R comparable] struct {
	refs map[string]R
}

// NewIndex creates an empty index
func NewIndex[R comparable]() *Index[R] {
	return &Index[R]{refs: make(map[string]R)}
}

// Add registers ref under guid. It reports false and keeps the existing entry
// when guid is already present.
func (ix *Index[R]) Add(guid string, ref R) bool {
	if _, exists := ix.refs[guid]; exists {
		return false
	}
	ix.refs[guid] = ref
	return true
}

// Lookup returns the element registered for guid
func (ix *Index[R]) Lookup(guid string) (R, bool) {
	ref, ok := ix.refs[guid]
	return ref, ok
}

// Len returns the number of registered GUIDs
func (ix *Index[R]) Len() int {
	return len(ix.refs)
}

// Resolve maps guids through the index, dropping unknown and repeated ones
func (ix *Index[R]) Resolve(guids []string) []R {
	seen := make(map[R]struct{}, len(guids))
	out := make([]R, 0, len(guids))
	for _, guid := range guids {
		ref, ok := ix.refs[guid]
		if !ok {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
