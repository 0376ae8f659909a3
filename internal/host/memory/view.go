package memory

import (
	"fmt"
	"maps"
	"slices"

	"github.com/philipparndt/gobcf/internal/host"
	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

type viewState struct {
	id          host.ViewID
	name        string
	perspective bool
	orientation camera.Orientation
	zoom        camera.Rect
	box         geometry.BoundingBox
	boxActive   bool
	farClip     bool
	crop        bool
	hidden      map[host.ElementID]bool
	members     []host.ElementID

	// temporary state, cleared by DisableTemporaryMode
	tempHidden  map[host.ElementID]bool
	tempIsolate map[host.ElementID]bool

	refreshes int
}

func newViewState(vf ViewFile) *viewState {
	vs := &viewState{
		id:          host.ViewID(vf.ID),
		name:        vf.Name,
		perspective: vf.Perspective,
		orientation: camera.Orientation{
			Eye:     vf.Eye.vector(),
			Forward: vf.Forward.vector().Normalize(),
			Up:      vf.Up.vector().Normalize(),
		},
		box:        geometry.InfiniteBoundingBox(),
		boxActive:  vf.SectionBoxActive,
		farClip:    vf.FarClipActive,
		crop:       vf.CropBoxActive,
		hidden:     make(map[host.ElementID]bool),
		tempHidden: make(map[host.ElementID]bool),
	}
	if vf.Zoom != nil {
		vs.zoom = vf.Zoom.rect()
	} else {
		vs.zoom = defaultZoom(vs.orientation)
	}
	if vf.SectionBox != nil {
		vs.box = vf.SectionBox.box()
	}
	for _, id := range vf.Hidden {
		vs.hidden[host.ElementID(id)] = true
	}
	for _, id := range vf.Members {
		vs.members = append(vs.members, host.ElementID(id))
	}
	return vs
}

func (vs *viewState) clone() *viewState {
	c := *vs
	c.hidden = maps.Clone(vs.hidden)
	c.tempHidden = maps.Clone(vs.tempHidden)
	c.tempIsolate = maps.Clone(vs.tempIsolate)
	c.members = slices.Clone(vs.members)
	return &c
}

func (vs *viewState) file() ViewFile {
	o := vs.orientation
	vf := ViewFile{
		ID:               int64(vs.id),
		Name:             vs.name,
		Perspective:      vs.perspective,
		Eye:              vecOf(o.Eye),
		Forward:          vecOf(o.Forward),
		Up:               vecOf(o.Up),
		Zoom:             rectOf(vs.zoom),
		SectionBoxActive: vs.boxActive,
		FarClipActive:    vs.farClip,
		CropBoxActive:    vs.crop,
	}
	if !vs.box.IsInfinite() {
		vf.SectionBox = boxOf(vs.box)
	}
	hidden := slices.Sorted(maps.Keys(vs.hidden))
	for _, id := range hidden {
		vf.Hidden = append(vf.Hidden, int64(id))
	}
	for _, id := range vs.members {
		vf.Members = append(vf.Members, int64(id))
	}
	return vf
}

func (vs *viewState) isHidden(id host.ElementID) bool {
	if vs.hidden[id] || vs.tempHidden[id] {
		return true
	}
	return vs.tempIsolate != nil && !vs.tempIsolate[id]
}

// view is a handle to a view of a document. All state lives in the document.
type view struct {
	doc *Document
	id  host.ViewID
}

var _ host.View = (*view)(nil)

func (v *view) state() *viewState {
	return v.doc.views[v.id]
}

// mutate runs fn on the view state inside the open transaction
func (v *view) mutate(fn func(vs *viewState) error) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if err := v.doc.requireTx(); err != nil {
		return err
	}
	vs := v.state()
	if vs == nil {
		return fmt.Errorf("view %d: %w", v.id, host.ErrUnknownView)
	}
	return fn(vs)
}

func (v *view) read(fn func(vs *viewState)) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if vs := v.state(); vs != nil {
		fn(vs)
	}
}

func (v *view) checkElements(ids []host.ElementID) error {
	for _, id := range ids {
		el, ok := v.doc.element(id)
		if !ok {
			return fmt.Errorf("element %d: %w", id, host.ErrUnknownElement)
		}
		if el.fixed {
			return fmt.Errorf("element %d cannot be hidden", id)
		}
	}
	return nil
}

func (v *view) ID() host.ViewID { return v.id }

func (v *view) Name() string {
	var name string
	v.read(func(vs *viewState) { name = vs.name })
	return name
}

func (v *view) IsPerspective() bool {
	var p bool
	v.read(func(vs *viewState) { p = vs.perspective })
	return p
}

func (v *view) Elements() []host.ElementID {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	vs := v.state()
	if vs == nil {
		return nil
	}
	candidates := vs.members
	if candidates == nil {
		candidates = v.doc.order
	}
	ids := make([]host.ElementID, 0, len(candidates))
	for _, id := range candidates {
		if el, ok := v.doc.element(id); ok && !el.fixed {
			ids = append(ids, id)
		}
	}
	return ids
}

func (v *view) IsHidden(id host.ElementID) bool {
	var hidden bool
	v.read(func(vs *viewState) { hidden = vs.isHidden(id) })
	return hidden
}

func (v *view) Color(id host.ElementID) string {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if el, ok := v.doc.element(id); ok {
		return el.color
	}
	return ""
}

func (v *view) HideTemporary(ids []host.ElementID) error {
	return v.mutate(func(vs *viewState) error {
		if err := v.checkElements(ids); err != nil {
			return err
		}
		for _, id := range ids {
			vs.tempHidden[id] = true
		}
		return nil
	})
}

func (v *view) IsolateTemporary(ids []host.ElementID) error {
	return v.mutate(func(vs *viewState) error {
		for _, id := range ids {
			if _, ok := v.doc.element(id); !ok {
				return fmt.Errorf("element %d: %w", id, host.ErrUnknownElement)
			}
		}
		vs.tempIsolate = make(map[host.ElementID]bool, len(ids))
		for _, id := range ids {
			vs.tempIsolate[id] = true
		}
		// fixed elements stay visible in isolate mode
		for id, el := range v.doc.elements {
			if el.fixed {
				vs.tempIsolate[id] = true
			}
		}
		return nil
	})
}

func (v *view) DisableTemporaryMode() error {
	return v.mutate(func(vs *viewState) error {
		vs.tempHidden = make(map[host.ElementID]bool)
		vs.tempIsolate = nil
		return nil
	})
}

func (v *view) ConvertTemporaryToPermanent() error {
	return v.mutate(func(vs *viewState) error {
		for _, id := range v.doc.order {
			if vs.isHidden(id) {
				vs.hidden[id] = true
			}
		}
		vs.tempHidden = make(map[host.ElementID]bool)
		vs.tempIsolate = nil
		return nil
	})
}

func (v *view) Unhide(ids []host.ElementID) error {
	return v.mutate(func(vs *viewState) error {
		for _, id := range ids {
			delete(vs.hidden, id)
		}
		return nil
	})
}

func (v *view) Orientation() camera.Orientation {
	var o camera.Orientation
	v.read(func(vs *viewState) { o = vs.orientation })
	return o
}

func (v *view) SetOrientation(o camera.Orientation) error {
	return v.mutate(func(vs *viewState) error {
		// keep the visible rectangle centered on the line of sight
		width, height := vs.zoom.Extent(vs.orientation)
		vs.orientation = o
		if height <= 0 {
			height = 10
		}
		aspect := 1.0
		if height > 0 && width > 0 {
			aspect = width / height
		}
		halfUp := o.Up.Normalize().Mul(height / 2)
		halfRight := o.Right().Mul(height * aspect / 2)
		vs.zoom = camera.Rect{
			BottomLeft: o.Eye.Sub(halfUp).Sub(halfRight),
			TopRight:   o.Eye.Add(halfUp).Add(halfRight),
		}
		return nil
	})
}

func (v *view) SectionBox() (geometry.BoundingBox, bool) {
	var (
		box    geometry.BoundingBox
		active bool
	)
	v.read(func(vs *viewState) { box, active = vs.box, vs.boxActive })
	return box, active
}

func (v *view) SetSectionBox(box geometry.BoundingBox) error {
	return v.mutate(func(vs *viewState) error {
		vs.box = box
		return nil
	})
}

func (v *view) SetSectionBoxActive(active bool) error {
	return v.mutate(func(vs *viewState) error {
		vs.boxActive = active
		return nil
	})
}

func (v *view) SetFarClipActive(active bool) error {
	return v.mutate(func(vs *viewState) error {
		vs.farClip = active
		return nil
	})
}

func (v *view) SetCropBoxActive(active bool) error {
	return v.mutate(func(vs *viewState) error {
		vs.crop = active
		return nil
	})
}

func (v *view) ZoomCorners() camera.Rect {
	var r camera.Rect
	v.read(func(vs *viewState) { r = vs.zoom })
	return r
}

// ZoomAndCenterRectangle is a UI operation and does not need a transaction
func (v *view) ZoomAndCenterRectangle(r camera.Rect) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	vs := v.state()
	if vs == nil {
		return fmt.Errorf("view %d: %w", v.id, host.ErrUnknownView)
	}
	vs.zoom = r
	return nil
}

func (v *view) Refresh() {
	v.read(func(vs *viewState) { vs.refreshes++ })
}

// Refreshes counts Refresh calls
func (v *view) Refreshes() int {
	var n int
	v.read(func(vs *viewState) { n = vs.refreshes })
	return n
}
