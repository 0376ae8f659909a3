package visibility

import "github.com/philipparndt/gobcf/pkg/bcf"

// ElementState is the exported state of one scene element. An empty Color
// means the element has no color override.
type ElementState struct {
	Component bcf.Component
	Visible   bool
	Selected  bool
	Color     string
}

// Encode produces the compact BCF representation of a full scene state.
//
// The default visibility follows the majority (ties count as visible) and the
// minority becomes the exception list, so it never holds more than half the
// elements. Colored elements are grouped by exact color string in first-seen
// order and are never reported as selected.
func Encode(states []ElementState) bcf.Components {
	var visible, hidden []bcf.Component
	var selection []bcf.Component
	var coloring []bcf.Coloring
	groups := make(map[string]int)

	for _, s := range states {
		if s.Visible {
			visible = append(visible, s.Component)
		} else {
			hidden = append(hidden, s.Component)
		}

		switch {
		case s.Color != "":
			i, ok := groups[s.Color]
			if !ok {
				i = len(coloring)
				groups[s.Color] = i
				coloring = append(coloring, bcf.Coloring{Color: s.Color})
			}
			coloring[i].Components = append(coloring[i].Components, s.Component)
		case s.Selected:
			selection = append(selection, s.Component)
		}
	}

	vis := &bcf.Visibility{DefaultVisibility: len(visible) >= len(hidden)}
	if vis.DefaultVisibility {
		vis.Exceptions = hidden
	} else {
		vis.Exceptions = visible
	}

	return bcf.Components{
		Selection:  selection,
		Coloring:   coloring,
		Visibility: vis,
	}
}
