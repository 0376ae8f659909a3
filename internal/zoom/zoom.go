// Package zoom corrects the zoom of orthogonal views after the host rendered them.
//
// The host cannot set the visible extent of an orthogonal view while the view
// is being reoriented, so the applier schedules the correction here and it runs
// on the next idle notification.
package zoom

import (
	"sync"

	"github.com/philipparndt/gobcf/internal/host"
	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

// Scheduler holds at most one pending zoom correction per view. It listens to
// the idle source only while a correction is pending.
type Scheduler struct {
	doc   host.Document
	idle  host.IdleSource
	frame func() geometry.Frame

	mu          sync.Mutex
	pending     map[host.ViewID]float64
	unsubscribe func()
}

// NewScheduler creates a scheduler for doc. frame returns the conversion used to
// turn the BCF view_to_world_scale into host units.
func NewScheduler(doc host.Document, idle host.IdleSource, frame func() geometry.Frame) *Scheduler {
	return &Scheduler{
		doc:     doc,
		idle:    idle,
		frame:   frame,
		pending: make(map[host.ViewID]float64),
	}
}

// Schedule registers a correction of view to scale (BCF units). A later call for
// the same view replaces the earlier one.
func (s *Scheduler) Schedule(view host.ViewID, scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[view]; ok {
		logging.Logger().Debug("replacing pending zoom", "view", view, "scale", scale)
	}
	s.pending[view] = scale
	if s.unsubscribe == nil {
		s.unsubscribe = s.idle.OnIdle(s.OnIdle)
	}
}

// Pending returns the scale waiting for view, if any
func (s *Scheduler) Pending(view host.ViewID) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scale, ok := s.pending[view]
	return scale, ok
}

// OnViewActivated drops corrections registered for every view except view, so a
// replaced view never receives a stale callback
func (s *Scheduler) OnViewActivated(view host.ViewID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		if id != view {
			logging.Logger().Debug("dropping zoom for inactive view", "view", id)
			delete(s.pending, id)
		}
	}
	s.release()
}

// OnIdle applies the pending correction of the active view. Corrections for
// other views are stale and are discarded.
func (s *Scheduler) OnIdle() {
	active := s.doc.ActiveView()

	s.mu.Lock()
	scale, ok := s.pending[active.ID()]
	for id := range s.pending {
		if id != active.ID() {
			logging.Logger().Warn("discarding zoom for view that is no longer active", "view", id)
		}
	}
	clear(s.pending)
	s.release()
	s.mu.Unlock()

	if !ok {
		return
	}

	height := s.frame().LengthToHost(scale)
	if height <= 0 {
		logging.Logger().Warn("ignoring non-positive zoom scale", "view", active.ID(), "scale", scale)
		return
	}

	rect := camera.FitHeight(active.ZoomCorners(), active.Orientation(), height)
	if err := active.ZoomAndCenterRectangle(rect); err != nil {
		logging.Logger().Error("failed to apply zoom", "view", active.ID(), "error", err)
		return
	}
	logging.Logger().Info("Applied zoom", "view", active.ID(), "height", height)
}

// release stops listening when nothing is pending. Callers hold s.mu.
func (s *Scheduler) release() {
	if len(s.pending) == 0 && s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
