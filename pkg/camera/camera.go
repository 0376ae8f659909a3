// Package camera translates BCF cameras into host view orientations and back.
package camera

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

var (
	// ErrDegenerateDirection is returned for a camera whose direction is the zero vector
	ErrDegenerateDirection = errors.New("camera direction is the zero vector")
	// ErrParallelUp is returned when the up vector has no component perpendicular to the direction
	ErrParallelUp = errors.New("camera up vector is parallel to its direction")
)

// parallelTolerance is the smallest perpendicular remainder of a unit up vector
// that still defines a usable up direction
const parallelTolerance = 1e-9

// Orientation is a camera pose in host space
type Orientation struct {
	Eye     geometry.Vector3
	Forward geometry.Vector3
	Up      geometry.Vector3
}

// Right returns the unit vector pointing to the right of the view
func (o Orientation) Right() geometry.Vector3 {
	return o.Forward.Cross(o.Up).Normalize()
}

// Orthogonalize removes the component of up parallel to direction and
// renormalizes, so imprecise external input yields a valid camera basis
func Orthogonalize(direction, up geometry.Vector3) (geometry.Vector3, error) {
	if direction.IsZero() {
		return geometry.Vector3{}, ErrDegenerateDirection
	}
	d := direction.Normalize()
	u := up.Normalize()

	perp := u.Sub(d.Mul(u.Dot(d)))
	if perp.Length() < parallelTolerance {
		return geometry.Vector3{}, ErrParallelUp
	}
	return perp.Normalize(), nil
}

// ToHost converts a BCF camera to a host orientation: orthogonalize up, convert
// meters to host units, rotate and translate into the host frame, and negate the
// forward vector when the host camera faces opposite to BCF.
func ToHost(c bcf.Camera, frame geometry.Frame, invertDirection bool) (Orientation, error) {
	eye, direction, up := c.Pose()

	up, err := Orthogonalize(direction, up)
	if err != nil {
		return Orientation{}, fmt.Errorf("%s camera: %w", c.Kind(), err)
	}

	forward := frame.DirectionToHost(direction.Normalize())
	if invertDirection {
		forward = forward.Negate()
	}

	return Orientation{
		Eye:     frame.PointToHost(eye),
		Forward: forward,
		Up:      frame.DirectionToHost(up),
	}, nil
}

// FromHost is the inverse of ToHost for the pose: it returns eye point,
// direction and up vector in BCF world space
func FromHost(o Orientation, frame geometry.Frame, invertDirection bool) (eye, direction, up geometry.Vector3) {
	forward := o.Forward.Normalize()
	if invertDirection {
		forward = forward.Negate()
	}
	return frame.PointToWorld(o.Eye), frame.DirectionToWorld(forward), frame.DirectionToWorld(o.Up.Normalize())
}

// NewOrthogonal builds an orthogonal BCF camera from a host orientation and the
// visible view height in host units
func NewOrthogonal(o Orientation, frame geometry.Frame, invertDirection bool, viewHeight float64) bcf.OrthogonalCamera {
	eye, dir, up := FromHost(o, frame, invertDirection)
	return bcf.OrthogonalCamera{
		ViewPoint:        bcf.VectorOf(eye),
		Direction:        bcf.VectorOf(dir),
		UpVector:         bcf.VectorOf(up),
		ViewToWorldScale: frame.LengthToWorld(viewHeight),
	}
}

// NewPerspective builds a perspective BCF camera from a host orientation.
// fieldOfView is in degrees.
func NewPerspective(o Orientation, frame geometry.Frame, invertDirection bool, fieldOfView float64) bcf.PerspectiveCamera {
	eye, dir, up := FromHost(o, frame, invertDirection)
	return bcf.PerspectiveCamera{
		ViewPoint:   bcf.VectorOf(eye),
		Direction:   bcf.VectorOf(dir),
		UpVector:    bcf.VectorOf(up),
		FieldOfView: fieldOfView,
	}
}
