// Package host declares the capability the viewpoint engine needs from a CAD
// host: documents, 3D views, transactions and render notifications.
//
// Hosts serialize all document mutation through their own single writer, so
// implementations are only ever called from the dispatch loop.
package host

import (
	"errors"

	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

var (
	// ErrNoTransaction is returned by view mutations outside a transaction
	ErrNoTransaction = errors.New("document mutation outside of a transaction")
	// ErrTransactionOpen is returned when a second transaction is started
	ErrTransactionOpen = errors.New("a transaction is already open")
	// ErrUnknownElement is returned for element ids the document does not know
	ErrUnknownElement = errors.New("unknown element")
	// ErrUnknownView is returned for view ids the document does not know
	ErrUnknownView = errors.New("unknown view")
)

// ElementID is the host's own element identifier
type ElementID int64

// ViewID is the host's own view identifier
type ViewID int64

// Document is one open host model
type Document interface {
	// ActiveView returns the view currently shown to the user
	ActiveView() View
	// ViewpointView returns the dedicated 3D view used to show viewpoints with
	// the given camera kind, creating it on first use
	ViewpointView(kind bcf.CameraKind) (View, error)
	// Activate makes a view the active one
	Activate(id ViewID) error

	// Begin starts a named unit of mutation
	Begin(name string) (Transaction, error)

	Selection() []ElementID
	SetSelection(ids []ElementID) error

	// IfcGUID computes the cross-tool GUID of an element
	IfcGUID(id ElementID) (string, error)
	// ProjectPosition returns the base point and true-north rotation
	ProjectPosition() geometry.ProjectPosition
}

// Transaction is a unit of document mutation. Rollback after Commit is a no-op.
type Transaction interface {
	Commit() error
	Rollback() error
}

// View is a 3D view of a document
type View interface {
	ID() ViewID
	Name() string
	IsPerspective() bool

	// Elements lists the view-independent elements of the view that can be hidden
	Elements() []ElementID
	IsHidden(id ElementID) bool
	// Color returns the element's color override as a BCF hex color, or ""
	Color(id ElementID) string

	HideTemporary(ids []ElementID) error
	IsolateTemporary(ids []ElementID) error
	DisableTemporaryMode() error
	ConvertTemporaryToPermanent() error
	Unhide(ids []ElementID) error

	Orientation() camera.Orientation
	SetOrientation(o camera.Orientation) error

	SectionBox() (box geometry.BoundingBox, active bool)
	SetSectionBox(box geometry.BoundingBox) error
	SetSectionBoxActive(active bool) error
	SetFarClipActive(active bool) error
	SetCropBoxActive(active bool) error

	// ZoomCorners returns the visible rectangle in host space
	ZoomCorners() camera.Rect
	ZoomAndCenterRectangle(r camera.Rect) error

	Refresh()
}

// IdleSource reports that the host finished a render pass and is idle
type IdleSource interface {
	// OnIdle registers fn and returns a function that removes it again
	OnIdle(fn func()) (unsubscribe func())
}

// Notifier shows messages to the user
type Notifier interface {
	Error(title, message string)
}
