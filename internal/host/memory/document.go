// Package memory is an in-process host: a YAML-backed document with 3D views,
// temporary hide/isolate, section boxes and transactions. The CLI and the tests
// drive the viewpoint engine against it.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/philipparndt/gobcf/internal/host"
	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/geometry"
	"github.com/philipparndt/gobcf/pkg/ifcguid"
)

// Names of the views ViewpointView creates
const (
	OrthogonalViewName  = "gobcf orthogonal"
	PerspectiveViewName = "gobcf perspective"
)

type element struct {
	id       host.ElementID
	name     string
	guid     string
	exportID uuid.UUID
	color    string
	fixed    bool
}

// Document is an in-memory host document. It is safe for concurrent use.
type Document struct {
	mu        sync.Mutex
	position  geometry.ProjectPosition
	elements  map[host.ElementID]*element
	order     []host.ElementID
	views     map[host.ViewID]*viewState
	viewOrder []host.ViewID
	active    host.ViewID
	selection []host.ElementID

	tx        *transaction
	committed []string
	failures  map[string]error

	idle     map[int]func()
	nextIdle int
}

// New builds a document from a scene
func New(scene *Scene) (*Document, error) {
	d := &Document{
		position: geometry.ProjectPosition{
			Origin: scene.Project.Origin.vector(),
			Angle:  radians(scene.Project.AngleDeg),
		},
		elements: make(map[host.ElementID]*element),
		views:    make(map[host.ViewID]*viewState),
		failures: make(map[string]error),
		idle:     make(map[int]func()),
	}

	for _, ef := range scene.Elements {
		id := host.ElementID(ef.ID)
		if _, dup := d.elements[id]; dup {
			return nil, fmt.Errorf("duplicate element id %d", ef.ID)
		}
		el := &element{id: id, name: ef.Name, guid: ef.GUID, fixed: ef.Fixed}
		if ef.ExportID != "" {
			exportID, err := uuid.Parse(ef.ExportID)
			if err != nil {
				return nil, fmt.Errorf("element %d: invalid export id: %w", ef.ID, err)
			}
			el.exportID = exportID
		}
		if ef.Color != "" {
			color, err := bcf.NormalizeColor(ef.Color)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", ef.ID, err)
			}
			el.color = color
		}
		d.elements[id] = el
		d.order = append(d.order, id)
	}

	for _, vf := range scene.Views {
		id := host.ViewID(vf.ID)
		if _, dup := d.views[id]; dup {
			return nil, fmt.Errorf("duplicate view id %d", vf.ID)
		}
		d.views[id] = newViewState(vf)
		d.viewOrder = append(d.viewOrder, id)
	}

	if len(d.viewOrder) > 0 {
		d.active = d.viewOrder[0]
	}
	if scene.ActiveView != 0 {
		if _, ok := d.views[host.ViewID(scene.ActiveView)]; !ok {
			return nil, fmt.Errorf("active view %d: %w", scene.ActiveView, host.ErrUnknownView)
		}
		d.active = host.ViewID(scene.ActiveView)
	}

	for _, id := range scene.Selection {
		d.selection = append(d.selection, host.ElementID(id))
	}
	return d, nil
}

// Scene captures the current document state
func (d *Document) Scene() *Scene {
	d.mu.Lock()
	defer d.mu.Unlock()

	scene := &Scene{
		Project: ProjectFile{
			Origin:   vecOf(d.position.Origin),
			AngleDeg: degrees(d.position.Angle),
		},
		ActiveView: int64(d.active),
	}
	for _, id := range d.order {
		el := d.elements[id]
		ef := ElementFile{ID: int64(id), Name: el.name, GUID: el.guid, Color: el.color, Fixed: el.fixed}
		if el.exportID != uuid.Nil {
			ef.ExportID = el.exportID.String()
		}
		scene.Elements = append(scene.Elements, ef)
	}
	for _, id := range d.viewOrder {
		scene.Views = append(scene.Views, d.views[id].file())
	}
	for _, id := range d.selection {
		scene.Selection = append(scene.Selection, int64(id))
	}
	return scene
}

// ActiveView implements host.Document
func (d *Document) ActiveView() host.View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &view{doc: d, id: d.active}
}

// View returns a handle for the view with the given id
func (d *Document) View(id host.ViewID) (host.View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.views[id]; !ok {
		return nil, fmt.Errorf("view %d: %w", id, host.ErrUnknownView)
	}
	return &view{doc: d, id: id}, nil
}

// ViewpointView implements host.Document
func (d *Document) ViewpointView(kind bcf.CameraKind) (host.View, error) {
	name := OrthogonalViewName
	if kind == bcf.Perspective {
		name = PerspectiveViewName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.viewOrder {
		if d.views[id].name == name {
			return &view{doc: d, id: id}, nil
		}
	}

	var next host.ViewID = 1
	for _, id := range d.viewOrder {
		if id >= next {
			next = id + 1
		}
	}
	d.views[next] = newViewState(ViewFile{
		ID:            int64(next),
		Name:          name,
		Perspective:   kind == bcf.Perspective,
		Forward:       Vec{Z: -1},
		Up:            Vec{Y: 1},
		FarClipActive: true,
	})
	d.viewOrder = append(d.viewOrder, next)
	return &view{doc: d, id: next}, nil
}

// Activate implements host.Document
func (d *Document) Activate(id host.ViewID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.views[id]; !ok {
		return fmt.Errorf("view %d: %w", id, host.ErrUnknownView)
	}
	d.active = id
	return nil
}

// Selection implements host.Document
func (d *Document) Selection() []host.ElementID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.selection)
}

// SetSelection implements host.Document
func (d *Document) SetSelection(ids []host.ElementID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		if _, ok := d.elements[id]; !ok {
			return fmt.Errorf("select %d: %w", id, host.ErrUnknownElement)
		}
	}
	d.selection = slices.Clone(ids)
	return nil
}

// IfcGUID implements host.Document
func (d *Document) IfcGUID(id host.ElementID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[id]
	if !ok {
		return "", fmt.Errorf("element %d: %w", id, host.ErrUnknownElement)
	}
	if el.guid != "" {
		return el.guid, nil
	}
	if el.exportID == uuid.Nil {
		return "", fmt.Errorf("element %d has neither a GUID nor an export id", id)
	}
	return ifcguid.FromUUID(el.exportID), nil
}

// ProjectPosition implements host.Document
func (d *Document) ProjectPosition() geometry.ProjectPosition {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

// OnIdle implements host.IdleSource
func (d *Document) OnIdle(fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := d.nextIdle
	d.nextIdle++
	d.idle[key] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.idle, key)
	}
}

// Idle simulates the host finishing a render pass and notifies idle listeners
func (d *Document) Idle() {
	d.mu.Lock()
	keys := make([]int, 0, len(d.idle))
	for k := range d.idle {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	listeners := make([]func(), 0, len(keys))
	for _, k := range keys {
		listeners = append(listeners, d.idle[k])
	}
	d.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Committed returns the names of committed transactions in order
func (d *Document) Committed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.committed)
}

// FailCommit makes the next commit of the named transaction fail with err
func (d *Document) FailCommit(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[name] = err
}

func (d *Document) element(id host.ElementID) (*element, bool) {
	el, ok := d.elements[id]
	return el, ok
}

func (d *Document) requireTx() error {
	if d.tx == nil {
		return host.ErrNoTransaction
	}
	return nil
}

var _ host.Document = (*Document)(nil)
var _ host.IdleSource = (*Document)(nil)

// defaultZoom is the rectangle of a view that never had one
func defaultZoom(o camera.Orientation) camera.Rect {
	return camera.FitHeight(camera.Rect{BottomLeft: o.Eye, TopRight: o.Eye}, o, 10)
}

// Inspect returns a snapshot of a view's persistent state
func (d *Document) Inspect(id host.ViewID) (ViewFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	vs, ok := d.views[id]
	if !ok {
		return ViewFile{}, fmt.Errorf("view %d: %w", id, host.ErrUnknownView)
	}
	return vs.file(), nil
}
