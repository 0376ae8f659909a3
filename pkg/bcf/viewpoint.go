package bcf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/philipparndt/gobcf/pkg/geometry"
)

// ErrNoCamera is returned by RequireCamera for a viewpoint without camera information
var ErrNoCamera = errors.New("viewpoint has no camera information")

// Vector is a BCF point or direction
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts to a geometry vector
func (v Vector) Vec() geometry.Vector3 {
	return geometry.NewVector3(v.X, v.Y, v.Z)
}

// VectorOf converts a geometry vector to its wire form
func VectorOf(v geometry.Vector3) Vector {
	return Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// ClippingPlane is a half-space boundary given by a point on the plane and its normal
type ClippingPlane struct {
	Location  Vector `json:"location"`
	Direction Vector `json:"direction"`
}

// Line is a markup line segment
type Line struct {
	StartPoint Vector `json:"start_point"`
	EndPoint   Vector `json:"end_point"`
}

// Viewpoint is a BCF viewpoint. At most one camera is set; none means the
// viewpoint carries no camera information.
type Viewpoint struct {
	GUID              string             `json:"guid,omitempty"`
	OrthogonalCamera  *OrthogonalCamera  `json:"orthogonal_camera,omitempty"`
	PerspectiveCamera *PerspectiveCamera `json:"perspective_camera,omitempty"`
	Lines             []Line             `json:"lines"`
	ClippingPlanes    []ClippingPlane    `json:"clipping_planes"`
	Components        *Components        `json:"components,omitempty"`
}

// Camera returns the viewpoint camera. The orthogonal camera wins if a
// malformed payload carries both.
func (v *Viewpoint) Camera() (Camera, bool) {
	switch {
	case v == nil:
		return nil, false
	case v.OrthogonalCamera != nil:
		return *v.OrthogonalCamera, true
	case v.PerspectiveCamera != nil:
		return *v.PerspectiveCamera, true
	}
	return nil, false
}

// RequireCamera is Camera for callers that treat a missing camera as an error
func (v *Viewpoint) RequireCamera() (Camera, error) {
	c, ok := v.Camera()
	if !ok {
		return nil, ErrNoCamera
	}
	return c, nil
}

// SetCamera stores c as the only camera of the viewpoint
func (v *Viewpoint) SetCamera(c Camera) {
	v.OrthogonalCamera = nil
	v.PerspectiveCamera = nil
	switch cam := c.(type) {
	case OrthogonalCamera:
		v.OrthogonalCamera = &cam
	case PerspectiveCamera:
		v.PerspectiveCamera = &cam
	}
}

// Validate rejects payloads whose numbers cannot describe geometry
func (v *Viewpoint) Validate() error {
	check := func(name string, vals ...float64) error {
		for _, f := range vals {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%s contains a non-finite value", name)
			}
		}
		return nil
	}
	if c, ok := v.Camera(); ok {
		p, d, u := c.Pose()
		if err := check("camera", p.X, p.Y, p.Z, d.X, d.Y, d.Z, u.X, u.Y, u.Z); err != nil {
			return err
		}
	}
	for i, cp := range v.ClippingPlanes {
		name := fmt.Sprintf("clipping plane %d", i)
		if err := check(name, cp.Location.X, cp.Location.Y, cp.Location.Z,
			cp.Direction.X, cp.Direction.Y, cp.Direction.Z); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes a JSON viewpoint
func Parse(data []byte) (*Viewpoint, error) {
	var vp Viewpoint
	if err := json.Unmarshal(data, &vp); err != nil {
		return nil, fmt.Errorf("failed to decode viewpoint: %w", err)
	}
	if err := vp.Validate(); err != nil {
		return nil, fmt.Errorf("invalid viewpoint: %w", err)
	}
	return &vp, nil
}

// Read decodes a JSON viewpoint from r
func Read(r io.Reader) (*Viewpoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read viewpoint: %w", err)
	}
	return Parse(data)
}

// Write encodes the viewpoint as indented JSON
func (v *Viewpoint) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode viewpoint: %w", err)
	}
	return nil
}
