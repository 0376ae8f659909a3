package memory

import (
	"fmt"
	"maps"
	"slices"

	"github.com/philipparndt/gobcf/internal/host"
)

type transaction struct {
	doc       *Document
	name      string
	views     map[host.ViewID]*viewState
	viewOrder []host.ViewID
	active    host.ViewID
	selection []host.ElementID
	done      bool
}

// Begin implements host.Document. The transaction snapshots views, the active
// view and the selection; Rollback restores all of them.
func (d *Document) Begin(name string) (host.Transaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tx != nil {
		return nil, fmt.Errorf("begin %q while %q is open: %w", name, d.tx.name, host.ErrTransactionOpen)
	}

	views := make(map[host.ViewID]*viewState, len(d.views))
	for id, vs := range d.views {
		views[id] = vs.clone()
	}
	d.tx = &transaction{
		doc:       d,
		name:      name,
		views:     views,
		viewOrder: slices.Clone(d.viewOrder),
		active:    d.active,
		selection: slices.Clone(d.selection),
	}
	return d.tx, nil
}

func (t *transaction) Commit() error {
	d := t.doc
	d.mu.Lock()
	if t.done {
		d.mu.Unlock()
		return nil
	}
	err, fail := d.failures[t.name]
	delete(d.failures, t.name)
	d.mu.Unlock()

	if fail {
		if rbErr := t.Rollback(); rbErr != nil {
			return rbErr
		}
		return fmt.Errorf("commit %q: %w", t.name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	t.done = true
	d.tx = nil
	d.committed = append(d.committed, t.name)
	return nil
}

func (t *transaction) Rollback() error {
	d := t.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	d.views = maps.Clone(t.views)
	d.viewOrder = t.viewOrder
	d.active = t.active
	d.selection = t.selection
	d.tx = nil
	return nil
}
