package viewpoint

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/philipparndt/gobcf/internal/host"
	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/clipping"
	"github.com/philipparndt/gobcf/pkg/geometry"
	"github.com/philipparndt/gobcf/pkg/visibility"
)

// OriginatingSystem is written into exported components
const OriginatingSystem = "gobcf"

// Exporter turns the active host view into a BCF viewpoint
type Exporter struct {
	doc    host.Document
	markup *Markup
	opts   Options
}

// NewExporter creates an exporter. Lines are taken from markup, which may be nil.
func NewExporter(doc host.Document, markup *Markup, opts Options) *Exporter {
	return &Exporter{doc: doc, markup: markup, opts: opts}
}

// Export captures camera, section box and element state of the active view
func (e *Exporter) Export() (*bcf.Viewpoint, error) {
	view := e.doc.ActiveView()
	frame := geometry.Frame{Position: e.doc.ProjectPosition(), Unit: e.opts.Unit}
	o := view.Orientation()
	if o.Forward.IsZero() {
		return nil, fmt.Errorf("view %q: %w", view.Name(), camera.ErrDegenerateDirection)
	}

	vp := &bcf.Viewpoint{
		GUID:           uuid.NewString(),
		Lines:          e.markup.Lines(view.ID()),
		ClippingPlanes: []bcf.ClippingPlane{},
	}

	if view.IsPerspective() {
		vp.SetCamera(camera.NewPerspective(o, frame, e.opts.InvertDirection, e.opts.FieldOfView))
	} else {
		_, height := view.ZoomCorners().Extent(o)
		vp.SetCamera(camera.NewOrthogonal(o, frame, e.opts.InvertDirection, height))
	}

	if box, active := view.SectionBox(); active && !box.IsInfinite() {
		vp.ClippingPlanes = clipping.ToBCF(clipping.ToWorld(clipping.FromBox(box), frame))
	}

	components := visibility.Encode(e.states(view))
	vp.Components = &components

	logging.Logger().Info("Exported viewpoint", "guid", vp.GUID, "view", view.Name())
	return vp, nil
}

func (e *Exporter) states(view host.View) []visibility.ElementState {
	selected := make(map[host.ElementID]bool)
	for _, id := range e.doc.Selection() {
		selected[id] = true
	}

	var states []visibility.ElementState
	for _, id := range view.Elements() {
		guid, err := e.doc.IfcGUID(id)
		if err != nil {
			logging.Logger().Debug("Skipping element without IFC GUID", "element", id, "error", err)
			continue
		}
		states = append(states, visibility.ElementState{
			Component: bcf.Component{
				IfcGUID:           guid,
				OriginatingSystem: OriginatingSystem,
				AuthoringToolID:   strconv.FormatInt(int64(id), 10),
			},
			Visible:  !view.IsHidden(id),
			Selected: selected[id],
			Color:    view.Color(id),
		})
	}
	return states
}
