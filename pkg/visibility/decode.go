package visibility

import "github.com/philipparndt/gobcf/pkg/bcf"

// Result is the host work derived from a BCF payload. At most one of HideAll,
// Hide and Isolate is set.
type Result[R comparable] struct {
	// HideAll asks the host to hide every element its view enumerates,
	// including elements the index does not know
	HideAll bool
	Hide    []R
	Isolate []R
	Select  []R
	// Unresolved counts exception and selection GUIDs absent from the scene
	Unresolved int
}

// Decode resolves a visibility payload and selection against the scene index.
//
// With default visibility the exceptions are hidden; without it only the
// exceptions stay visible, and if none of them exist in the scene everything is
// hidden. Both cases without default visibility leave elements that have no GUID
// hidden. GUIDs missing from the scene are skipped. Selected elements
// that end up hidden are dropped from the selection.
func Decode[R comparable](vis bcf.Visibility, selection []bcf.Component, index *Index[R]) Result[R] {
	var res Result[R]

	exceptionGUIDs := bcf.GUIDs(vis.Exceptions)
	exceptions := index.Resolve(exceptionGUIDs)
	selectionGUIDs := bcf.GUIDs(selection)
	selected := index.Resolve(selectionGUIDs)
	res.Unresolved = countMissing(exceptionGUIDs, index) + countMissing(selectionGUIDs, index)

	exceptionSet := make(map[R]struct{}, len(exceptions))
	for _, ref := range exceptions {
		exceptionSet[ref] = struct{}{}
	}

	switch {
	case vis.DefaultVisibility:
		res.Hide = exceptions
	case len(exceptions) > 0:
		res.Isolate = exceptions
	default:
		res.HideAll = true
	}

	for _, ref := range selected {
		_, inExceptions := exceptionSet[ref]
		visible := inExceptions != vis.DefaultVisibility
		if visible {
			res.Select = append(res.Select, ref)
		}
	}
	return res
}

// DecodeComponents is Decode for a whole components block. A block without
// visibility leaves every element visible and only resolves the selection.
func DecodeComponents[R comparable](c *bcf.Components, index *Index[R]) Result[R] {
	if c == nil {
		return Result[R]{}
	}
	vis := bcf.Visibility{DefaultVisibility: true}
	if c.Visibility != nil {
		vis = *c.Visibility
	}
	return Decode(vis, c.Selection, index)
}

func countMissing[R comparable](guids []string, index *Index[R]) int {
	missing := 0
	for _, guid := range guids {
		if _, ok := index.Lookup(guid); !ok {
			missing++
		}
	}
	return missing
}
