package bcf

import "github.com/philipparndt/gobcf/pkg/geometry"

// CameraKind distinguishes the two BCF camera variants
type CameraKind int

const (
	Orthogonal CameraKind = iota
	Perspective
)

func (k CameraKind) String() string {
	if k == Perspective {
		return "perspective"
	}
	return "orthogonal"
}

// Camera is either an OrthogonalCamera or a PerspectiveCamera
type Camera interface {
	Kind() CameraKind
	// Pose returns the eye point, view direction and up vector in BCF world space
	Pose() (viewPoint, direction, up geometry.Vector3)
}

// OrthogonalCamera is a parallel projection; ViewToWorldScale is the visible
// vertical extent of the view in meters
type OrthogonalCamera struct {
	ViewPoint        Vector  `json:"camera_view_point"`
	Direction        Vector  `json:"camera_direction"`
	UpVector         Vector  `json:"camera_up_vector"`
	ViewToWorldScale float64 `json:"view_to_world_scale"`
}

func (OrthogonalCamera) Kind() CameraKind { return Orthogonal }

func (c OrthogonalCamera) Pose() (geometry.Vector3, geometry.Vector3, geometry.Vector3) {
	return c.ViewPoint.Vec(), c.Direction.Vec(), c.UpVector.Vec()
}

// PerspectiveCamera is a pinhole projection; FieldOfView is in degrees
type PerspectiveCamera struct {
	ViewPoint   Vector  `json:"camera_view_point"`
	Direction   Vector  `json:"camera_direction"`
	UpVector    Vector  `json:"camera_up_vector"`
	FieldOfView float64 `json:"field_of_view"`
}

func (PerspectiveCamera) Kind() CameraKind { return Perspective }

func (c PerspectiveCamera) Pose() (geometry.Vector3, geometry.Vector3, geometry.Vector3) {
	return c.ViewPoint.Vec(), c.Direction.Vec(), c.UpVector.Vec()
}
