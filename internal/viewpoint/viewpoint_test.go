package viewpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gobcf/internal/host"
	"github.com/philipparndt/gobcf/internal/host/memory"
	"github.com/philipparndt/gobcf/internal/zoom"
	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) Error(title, _ string) {
	n.titles = append(n.titles, title)
}

type fixture struct {
	doc      *memory.Document
	applier  *Applier
	exporter *Exporter
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := memory.New(&memory.Scene{
		Views: []memory.ViewFile{
			{ID: 1, Name: "{3D}", Eye: memory.Vec{Z: 10}, Forward: memory.Vec{Z: -1}, Up: memory.Vec{Y: 1}},
		},
		Elements: []memory.ElementFile{
			{ID: 1, GUID: "G1"},
			{ID: 2, GUID: "G2"},
			{ID: 3, GUID: "G3", Color: "00FF00"},
			{ID: 4},
		},
	})
	require.NoError(t, err)

	opts := DefaultOptions()
	f := &fixture{doc: doc, notifier: &recordingNotifier{}}
	f.applier = NewApplier(doc, nil, f.notifier, opts)
	f.applier.zoom = zoom.NewScheduler(doc, doc, f.applier.Frame)
	f.exporter = NewExporter(doc, f.applier.Markup(), opts)
	return f
}

func orthoViewpoint() *bcf.Viewpoint {
	return &bcf.Viewpoint{
		GUID: "vp-1",
		OrthogonalCamera: &bcf.OrthogonalCamera{
			ViewPoint:        bcf.Vector{X: 1, Y: 2, Z: 30},
			Direction:        bcf.Vector{Z: -1},
			UpVector:         bcf.Vector{Y: 1},
			ViewToWorldScale: 7,
		},
		ClippingPlanes: []bcf.ClippingPlane{
			{Location: bcf.Vector{X: 2}, Direction: bcf.Vector{X: 1}},
			{Location: bcf.Vector{X: 5}, Direction: bcf.Vector{X: -1}},
		},
		Components: &bcf.Components{
			Selection:  []bcf.Component{{IfcGUID: "G2"}, {IfcGUID: "G1"}},
			Visibility: &bcf.Visibility{DefaultVisibility: true, Exceptions: []bcf.Component{{IfcGUID: "G1"}}},
		},
	}
}

func perspectiveViewpoint() *bcf.Viewpoint {
	return &bcf.Viewpoint{
		PerspectiveCamera: &bcf.PerspectiveCamera{
			ViewPoint:   bcf.Vector{X: 5},
			Direction:   bcf.Vector{X: -1},
			UpVector:    bcf.Vector{Z: 1},
			FieldOfView: 45,
		},
	}
}

var allSteps = []string{"reset", "orient", "visibility", "clipping", "activate"}

func TestApplyOrthogonal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), orthoViewpoint()))

	assert.Equal(t, allSteps, f.doc.Committed())
	assert.Empty(t, f.notifier.titles)

	view := f.doc.ActiveView()
	assert.Equal(t, memory.OrthogonalViewName, view.Name())

	o := view.Orientation()
	assert.True(t, o.Eye.ApproxEqual(geometry.NewVector3(1, 2, 30), 1e-10))
	assert.True(t, o.Forward.ApproxEqual(geometry.NewVector3(0, 0, -1), 1e-10))

	assert.True(t, view.IsHidden(1))
	assert.False(t, view.IsHidden(2))
	assert.Equal(t, []host.ElementID{2}, f.doc.Selection())

	box, active := view.SectionBox()
	require.True(t, active)
	assert.InDelta(t, 2, box.Min.X, 1e-10)
	assert.InDelta(t, 5, box.Max.X, 1e-10)
	assert.False(t, box.HasMin(1))

	scale, ok := f.applier.zoom.Pending(view.ID())
	require.True(t, ok)
	assert.Equal(t, 7.0, scale)

	f.doc.Idle()
	_, height := view.ZoomCorners().Extent(view.Orientation())
	assert.InDelta(t, 7, height, 1e-10)
}

func TestApplyPerspectiveDisablesFarClip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), perspectiveViewpoint()))

	view := f.doc.ActiveView()
	assert.True(t, view.IsPerspective())

	info, err := f.doc.Inspect(view.ID())
	require.NoError(t, err)
	assert.False(t, info.FarClipActive)
	assert.False(t, info.CropBoxActive)

	_, ok := f.applier.zoom.Pending(view.ID())
	assert.False(t, ok)
}

func TestApplyWithoutCameraDoesNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), &bcf.Viewpoint{}))
	require.NoError(t, f.applier.Apply(context.Background(), nil))

	assert.Empty(t, f.doc.Committed())
	assert.Equal(t, host.ViewID(1), f.doc.ActiveView().ID())
}

func TestEmptyClippingDeactivatesSectionBox(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), orthoViewpoint()))

	vp := orthoViewpoint()
	vp.ClippingPlanes = nil
	require.NoError(t, f.applier.Apply(context.Background(), vp))

	_, active := f.doc.ActiveView().SectionBox()
	assert.False(t, active)
}

func TestObliquePlanesOnlyLeaveNoSectionBox(t *testing.T) {
	f := newFixture(t)
	vp := orthoViewpoint()
	vp.ClippingPlanes = []bcf.ClippingPlane{
		{Location: bcf.Vector{}, Direction: bcf.Vector{X: 1, Y: 1}},
	}
	require.NoError(t, f.applier.Apply(context.Background(), vp))

	_, active := f.doc.ActiveView().SectionBox()
	assert.False(t, active)
}

func TestFailingStepStopsAndNotifies(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.doc.FailCommit("visibility", boom)

	err := f.applier.Apply(context.Background(), orthoViewpoint())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	step, ok := FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, StepVisibility, step)

	// earlier steps stay committed, the failed one is rolled back
	assert.Equal(t, []string{"reset", "orient"}, f.doc.Committed())
	view, err := f.doc.ViewpointView(bcf.Orthogonal)
	require.NoError(t, err)
	assert.False(t, view.IsHidden(1))
	assert.True(t, view.Orientation().Eye.ApproxEqual(geometry.NewVector3(1, 2, 30), 1e-10))

	assert.Equal(t, []string{FailureTitle}, f.notifier.titles)
}

func TestDegenerateCameraIsRejected(t *testing.T) {
	f := newFixture(t)
	vp := orthoViewpoint()
	vp.OrthogonalCamera.UpVector = bcf.Vector{Z: 2}

	err := f.applier.Apply(context.Background(), vp)
	assert.ErrorIs(t, err, camera.ErrParallelUp)
	step, _ := FailedStep(err)
	assert.Equal(t, StepOrient, step)
	assert.Empty(t, f.doc.Committed())
	assert.Len(t, f.notifier.titles, 1)
}

func TestResetUnhidesPreviousState(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), orthoViewpoint()))
	require.True(t, f.doc.ActiveView().IsHidden(1))

	vp := orthoViewpoint()
	vp.Components = nil
	require.NoError(t, f.applier.Apply(context.Background(), vp))

	view := f.doc.ActiveView()
	for _, id := range view.Elements() {
		assert.False(t, view.IsHidden(id), "element %d", id)
	}
	assert.Empty(t, f.doc.Selection())
}

func TestIsolate(t *testing.T) {
	f := newFixture(t)
	vp := orthoViewpoint()
	vp.Components = &bcf.Components{
		Visibility: &bcf.Visibility{Exceptions: []bcf.Component{{IfcGUID: "G3"}, {IfcGUID: "missing"}}},
	}
	require.NoError(t, f.applier.Apply(context.Background(), vp))

	view := f.doc.ActiveView()
	assert.True(t, view.IsHidden(1))
	assert.True(t, view.IsHidden(2))
	assert.False(t, view.IsHidden(3))
}

func TestNothingVisibleHidesElementsWithoutGUID(t *testing.T) {
	cases := map[string][]bcf.Component{
		"no exception resolves": {{IfcGUID: "missing"}},
		"isolate":               {{IfcGUID: "G3"}},
	}
	for name, exceptions := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			vp := orthoViewpoint()
			vp.Components = &bcf.Components{
				Visibility: &bcf.Visibility{Exceptions: exceptions},
			}
			require.NoError(t, f.applier.Apply(context.Background(), vp))

			view := f.doc.ActiveView()
			assert.True(t, view.IsHidden(1))
			assert.True(t, view.IsHidden(4), "element without GUID")
		})
	}
}

func TestActivateRefreshesView(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), orthoViewpoint()))

	view, ok := f.doc.ActiveView().(interface{ Refreshes() int })
	require.True(t, ok)
	assert.Equal(t, 1, view.Refreshes())

	// Applying again to the already active view still refreshes it
	require.NoError(t, f.applier.Apply(context.Background(), orthoViewpoint()))
	assert.Equal(t, 2, view.Refreshes())
}

func TestCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.applier.Apply(ctx, orthoViewpoint())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.doc.Committed())
}

func TestExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	in := orthoViewpoint()
	require.NoError(t, f.applier.Apply(context.Background(), in))
	f.doc.Idle()

	out, err := f.exporter.Export()
	require.NoError(t, err)
	assert.NotEmpty(t, out.GUID)
	assert.NotEqual(t, in.GUID, out.GUID)
	assert.NotNil(t, out.Lines)
	assert.Empty(t, out.Lines)

	require.NotNil(t, out.OrthogonalCamera)
	assert.Nil(t, out.PerspectiveCamera)
	assert.InDelta(t, 7, out.OrthogonalCamera.ViewToWorldScale, 1e-10)
	eye, dir, _ := out.OrthogonalCamera.Pose()
	assert.True(t, eye.ApproxEqual(geometry.NewVector3(1, 2, 30), 1e-10))
	assert.True(t, dir.ApproxEqual(geometry.NewVector3(0, 0, -1), 1e-10))

	require.Len(t, out.ClippingPlanes, 2)

	require.NotNil(t, out.Components)
	require.NotNil(t, out.Components.Visibility)
	assert.True(t, out.Components.Visibility.DefaultVisibility)
	assert.Equal(t, []string{"G1"}, bcf.GUIDs(out.Components.Visibility.Exceptions))
	assert.Equal(t, []string{"G2"}, bcf.GUIDs(out.Components.Selection))
	require.Len(t, out.Components.Coloring, 1)
	assert.Equal(t, "00FF00", out.Components.Coloring[0].Color)

	// applying the export reproduces the same view state
	g := newFixture(t)
	require.NoError(t, g.applier.Apply(context.Background(), out))
	gv := g.doc.ActiveView()
	assert.True(t, gv.IsHidden(1))
	box, active := gv.SectionBox()
	require.True(t, active)
	assert.InDelta(t, 2, box.Min.X, 1e-10)
	assert.InDelta(t, 5, box.Max.X, 1e-10)
}

func TestExportCarriesLines(t *testing.T) {
	f := newFixture(t)
	lines := []bcf.Line{
		{StartPoint: bcf.Vector{X: 1}, EndPoint: bcf.Vector{X: 2, Y: 3}},
	}
	vp := orthoViewpoint()
	vp.Lines = lines
	require.NoError(t, f.applier.Apply(context.Background(), vp))

	out, err := f.exporter.Export()
	require.NoError(t, err)
	assert.Equal(t, lines, out.Lines)

	// lines belong to the view they were applied to
	require.NoError(t, f.applier.Apply(context.Background(), perspectiveViewpoint()))
	out, err = f.exporter.Export()
	require.NoError(t, err)
	assert.Empty(t, out.Lines)

	// a failed apply keeps the previous lines
	f.doc.FailCommit("clipping", errors.New("boom"))
	next := orthoViewpoint()
	next.Lines = []bcf.Line{{EndPoint: bcf.Vector{Z: 9}}}
	require.Error(t, f.applier.Apply(context.Background(), next))
	ortho, err := f.doc.ViewpointView(bcf.Orthogonal)
	require.NoError(t, err)
	assert.Equal(t, lines, f.applier.Markup().Lines(ortho.ID()))
}

func TestExportPerspective(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), perspectiveViewpoint()))

	out, err := f.exporter.Export()
	require.NoError(t, err)
	require.NotNil(t, out.PerspectiveCamera)
	assert.Equal(t, 60.0, out.PerspectiveCamera.FieldOfView)
	assert.Empty(t, out.ClippingPlanes)
}

func TestInvertDirection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.applier.Apply(context.Background(), orthoViewpoint()))
	// the memory host shares the BCF convention without inversion
	assert.True(t, f.doc.ActiveView().Orientation().Forward.ApproxEqual(geometry.NewVector3(0, 0, -1), 1e-10))

	opts := DefaultOptions()
	opts.InvertDirection = true
	applier := NewApplier(f.doc, nil, nil, opts)
	exporter := NewExporter(f.doc, applier.Markup(), opts)

	require.NoError(t, applier.Apply(context.Background(), orthoViewpoint()))
	assert.True(t, f.doc.ActiveView().Orientation().Forward.ApproxEqual(geometry.NewVector3(0, 0, 1), 1e-10))

	out, err := exporter.Export()
	require.NoError(t, err)
	_, dir, _ := out.OrthogonalCamera.Pose()
	assert.True(t, dir.ApproxEqual(geometry.NewVector3(0, 0, -1), 1e-10))
}

func TestApplyInFeetWithRotatedProject(t *testing.T) {
	doc, err := memory.New(&memory.Scene{
		Project: memory.ProjectFile{Origin: memory.Vec{X: 10}, AngleDeg: 90},
		Views: []memory.ViewFile{
			{ID: 1, Name: "{3D}", Eye: memory.Vec{Z: 10}, Forward: memory.Vec{Z: -1}, Up: memory.Vec{Y: 1}},
		},
	})
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Unit = geometry.Feet
	applier := NewApplier(doc, nil, nil, opts)
	exporter := NewExporter(doc, nil, opts)

	vp := orthoViewpoint()
	vp.Components = nil
	require.NoError(t, applier.Apply(context.Background(), vp))

	out, err := exporter.Export()
	require.NoError(t, err)
	eye, _, up := out.OrthogonalCamera.Pose()
	assert.True(t, eye.ApproxEqual(geometry.NewVector3(1, 2, 30), 1e-9))
	assert.True(t, up.ApproxEqual(geometry.NewVector3(0, 1, 0), 1e-9))

	box, active := doc.ActiveView().SectionBox()
	require.True(t, active)
	// the x planes become y bounds after the 90° rotation
	assert.False(t, box.HasMin(0))
	assert.True(t, box.HasMin(1))
	assert.True(t, box.HasMax(1))
}
