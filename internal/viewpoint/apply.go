package viewpoint

import (
	"context"
	"fmt"

	"github.com/philipparndt/gobcf/internal/host"
	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/internal/zoom"
	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/clipping"
	"github.com/philipparndt/gobcf/pkg/geometry"
	"github.com/philipparndt/gobcf/pkg/visibility"
)

// FailureTitle is the title of the message shown when a viewpoint cannot be applied
const FailureTitle = "Viewpoint loading failed"

// Applier drives a host document through the viewpoint steps. It must only be
// used from the document's mutation context.
type Applier struct {
	doc      host.Document
	zoom     *zoom.Scheduler
	notifier host.Notifier
	markup   *Markup
	opts     Options
}

// NewApplier creates an applier. scheduler and notifier may be nil.
func NewApplier(doc host.Document, scheduler *zoom.Scheduler, notifier host.Notifier, opts Options) *Applier {
	return &Applier{doc: doc, zoom: scheduler, notifier: notifier, markup: NewMarkup(), opts: opts}
}

// Markup returns the lines of applied viewpoints, for an Exporter to write back
func (a *Applier) Markup() *Markup {
	return a.markup
}

// Frame returns the current BCF to host conversion
func (a *Applier) Frame() geometry.Frame {
	return geometry.Frame{Position: a.doc.ProjectPosition(), Unit: a.opts.Unit}
}

// Apply runs reset, orient, visibility, clipping and activate, each in its own
// transaction, then schedules the zoom correction for orthogonal cameras.
//
// A failing step is rolled back and stops the run; steps committed before it
// stay applied. A viewpoint without camera is not an error and changes nothing.
func (a *Applier) Apply(ctx context.Context, vp *bcf.Viewpoint) error {
	cam, ok := vp.Camera()
	if !ok {
		logging.Logger().Info("Viewpoint has no camera information, nothing to apply")
		return nil
	}

	if err := a.apply(ctx, vp, cam); err != nil {
		logging.Logger().Error("Applying viewpoint failed", "guid", vp.GUID, "error", err)
		if a.notifier != nil {
			a.notifier.Error(FailureTitle, "The viewpoint could not be applied. See the log for details.")
		}
		return err
	}
	return nil
}

func (a *Applier) apply(ctx context.Context, vp *bcf.Viewpoint, cam bcf.Camera) error {
	frame := a.Frame()

	// malformed cameras are rejected before the document is touched
	orientation, err := camera.ToHost(cam, frame, a.opts.InvertDirection)
	if err != nil {
		return &StepError{Step: StepOrient, Err: err}
	}

	view, err := a.doc.ViewpointView(cam.Kind())
	if err != nil {
		return &StepError{Step: StepReset, Err: err}
	}

	steps := []struct {
		step Step
		run  func() error
	}{
		{StepReset, func() error { return a.reset(view) }},
		{StepOrient, func() error { return a.orient(view, cam.Kind(), orientation) }},
		{StepVisibility, func() error { return a.visibility(view, vp.Components) }},
		{StepClipping, func() error { return a.clipping(view, vp.ClippingPlanes, frame) }},
		{StepActivate, func() error { return a.activate(view) }},
	}
	for _, s := range steps {
		if err := a.transact(ctx, s.step, s.run); err != nil {
			return err
		}
	}
	a.markup.Set(view.ID(), vp.Lines)

	if ortho, ok := cam.(bcf.OrthogonalCamera); ok && a.zoom != nil {
		logging.Logger().Info("Scheduling zoom correction", "view", view.ID(), "scale", ortho.ViewToWorldScale)
		a.zoom.Schedule(view.ID(), ortho.ViewToWorldScale)
	}
	return nil
}

// transact runs fn inside a transaction named after step
func (a *Applier) transact(ctx context.Context, step Step, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &StepError{Step: step, Err: err}
	}

	tx, err := a.doc.Begin(string(step))
	if err != nil {
		return &StepError{Step: step, Err: fmt.Errorf("failed to start transaction: %w", err)}
	}
	if err := fn(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Logger().Error("Rollback failed", "step", step, "error", rbErr)
		}
		return &StepError{Step: step, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StepError{Step: step, Err: fmt.Errorf("failed to commit: %w", err)}
	}
	logging.Logger().Debug("Committed", "step", step)
	return nil
}

func (a *Applier) reset(view host.View) error {
	logging.Logger().Info("Resetting view", "view", view.Name())
	if err := a.doc.SetSelection(nil); err != nil {
		return err
	}
	if err := view.DisableTemporaryMode(); err != nil {
		return err
	}
	if err := view.SetSectionBoxActive(false); err != nil {
		return err
	}

	var hidden []host.ElementID
	for _, id := range view.Elements() {
		if view.IsHidden(id) {
			hidden = append(hidden, id)
		}
	}
	if len(hidden) == 0 {
		return nil
	}
	return view.Unhide(hidden)
}

func (a *Applier) orient(view host.View, kind bcf.CameraKind, o camera.Orientation) error {
	logging.Logger().Info("Applying camera information", "kind", kind)
	if kind == bcf.Perspective {
		if err := view.SetFarClipActive(false); err != nil {
			return err
		}
	}
	if err := view.SetCropBoxActive(false); err != nil {
		return err
	}
	return view.SetOrientation(o)
}

func (a *Applier) visibility(view host.View, components *bcf.Components) error {
	if components == nil {
		return nil
	}
	logging.Logger().Info("Applying visibility information")

	index := visibility.NewIndex[host.ElementID]()
	for _, id := range view.Elements() {
		guid, err := a.doc.IfcGUID(id)
		if err != nil {
			logging.Logger().Debug("Element has no IFC GUID", "element", id, "error", err)
			continue
		}
		index.Add(guid, id)
	}

	logging.Logger().Debug("Indexed elements by IFC GUID", "count", index.Len())

	res := visibility.DecodeComponents(components, index)
	if res.Unresolved > 0 {
		logging.Logger().Debug("Skipped components missing from the model", "count", res.Unresolved)
	}

	hide := res.Hide
	if res.HideAll {
		hide = view.Elements()
	}
	if len(hide) > 0 {
		if err := view.HideTemporary(hide); err != nil {
			return err
		}
	}
	if len(res.Isolate) > 0 {
		if err := view.IsolateTemporary(res.Isolate); err != nil {
			return err
		}
	}
	if err := a.doc.SetSelection(res.Select); err != nil {
		return err
	}
	return view.ConvertTemporaryToPermanent()
}

func (a *Applier) clipping(view host.View, planes []bcf.ClippingPlane, frame geometry.Frame) error {
	logging.Logger().Info("Applying clipping plane information", "planes", len(planes))

	hostPlanes := clipping.ToHost(clipping.FromBCF(planes), frame)
	for _, p := range clipping.Dropped(hostPlanes, a.opts.AngleThreshold) {
		logging.Logger().Debug("Ignoring clipping plane that is not axis aligned",
			"location", p.Location, "direction", p.Direction)
	}

	box := clipping.Reduce(hostPlanes, a.opts.AngleThreshold)
	if box.IsInfinite() {
		return view.SetSectionBoxActive(false)
	}
	if err := view.SetSectionBox(box); err != nil {
		return err
	}
	return view.SetSectionBoxActive(true)
}

func (a *Applier) activate(view host.View) error {
	if a.doc.ActiveView().ID() != view.ID() {
		if err := a.doc.Activate(view.ID()); err != nil {
			return err
		}
		if a.zoom != nil {
			a.zoom.OnViewActivated(view.ID())
		}
	}
	view.Refresh()
	return nil
}
