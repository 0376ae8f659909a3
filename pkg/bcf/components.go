package bcf

// Component identifies one model element across tools
type Component struct {
	IfcGUID           string `json:"ifc_guid,omitempty"`
	OriginatingSystem string `json:"originating_system,omitempty"`
	AuthoringToolID   string `json:"authoring_tool_id,omitempty"`
}

// ViewSetupHints carries the default visibility of element classes
type ViewSetupHints struct {
	SpacesVisible          bool `json:"spaces_visible"`
	SpaceBoundariesVisible bool `json:"space_boundaries_visible"`
	OpeningsVisible        bool `json:"openings_visible"`
}

// Visibility is the full-scene visibility stored as a default plus the
// components that differ from it
type Visibility struct {
	DefaultVisibility bool            `json:"default_visibility"`
	Exceptions        []Component     `json:"exceptions,omitempty"`
	ViewSetupHints    *ViewSetupHints `json:"view_setup_hints,omitempty"`
}

// Coloring assigns one color to a group of components
type Coloring struct {
	Color      string      `json:"color"`
	Components []Component `json:"components"`
}

// Components holds the element state of a viewpoint
type Components struct {
	Selection  []Component `json:"selection,omitempty"`
	Coloring   []Coloring  `json:"coloring,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty"`
}

// GUIDs returns the IFC GUIDs of the given components, skipping empty ones
func GUIDs(components []Component) []string {
	guids := make([]string, 0, len(components))
	for _, c := range components {
		if c.IfcGUID != "" {
			guids = append(guids, c.IfcGUID)
		}
	}
	return guids
}
