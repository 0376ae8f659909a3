package viewpoint

import (
	"sync"

	"github.com/philipparndt/gobcf/internal/host"
	"github.com/philipparndt/gobcf/pkg/bcf"
)

// Markup remembers the lines of the viewpoint last applied to each view. Hosts
// have no place to draw them, so they are kept here and written on export.
type Markup struct {
	mu    sync.Mutex
	lines map[host.ViewID][]bcf.Line
}

// NewMarkup creates an empty markup store
func NewMarkup() *Markup {
	return &Markup{lines: make(map[host.ViewID][]bcf.Line)}
}

// Set replaces the lines of view
func (m *Markup) Set(view host.ViewID, lines []bcf.Line) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(lines) == 0 {
		delete(m.lines, view)
		return
	}
	m.lines[view] = append([]bcf.Line(nil), lines...)
}

// Lines returns a copy of the lines of view, never nil
func (m *Markup) Lines(view host.ViewID) []bcf.Line {
	if m == nil {
		return []bcf.Line{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bcf.Line{}, m.lines[view]...)
}
