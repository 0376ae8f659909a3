// Package clipping reduces sets of clipping planes to the single axis-aligned
// section box a host view can display, and expands a section box back into planes.
package clipping

import (
	"math"

	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

// DefaultAngleThreshold is the largest angle (5°) between a plane normal and a
// coordinate axis for the plane to still count as axis-aligned
const DefaultAngleThreshold = 0.087266462599716

// Plane is a clipping plane. Points on the side Direction points to stay visible.
type Plane struct {
	Location  geometry.Vector3
	Direction geometry.Vector3
}

// FromBCF converts wire clipping planes to planes
func FromBCF(planes []bcf.ClippingPlane) []Plane {
	out := make([]Plane, 0, len(planes))
	for _, p := range planes {
		out = append(out, Plane{Location: p.Location.Vec(), Direction: p.Direction.Vec()})
	}
	return out
}

// ToBCF converts planes to their wire form
func ToBCF(planes []Plane) []bcf.ClippingPlane {
	out := make([]bcf.ClippingPlane, 0, len(planes))
	for _, p := range planes {
		out = append(out, bcf.ClippingPlane{
			Location:  bcf.VectorOf(p.Location),
			Direction: bcf.VectorOf(p.Direction),
		})
	}
	return out
}

// AxisOf reports the coordinate axis (0=X, 1=Y, 2=Z) closest to direction and
// whether direction points along its positive side. ok is false when the angle
// to that axis is not below threshold or direction is the zero vector.
func AxisOf(direction geometry.Vector3, threshold float64) (axis int, positive bool, ok bool) {
	if direction.IsZero() {
		return 0, false, false
	}
	d := direction.Normalize()

	best := 0
	for a := 1; a < 3; a++ {
		if math.Abs(d.Component(a)) > math.Abs(d.Component(best)) {
			best = a
		}
	}

	c := d.Component(best)
	angle := math.Acos(math.Min(math.Abs(c), 1))
	if angle >= threshold {
		return 0, false, false
	}
	return best, c > 0, true
}

// HalfSpace returns the box bounded only on the side plane cuts away. ok is
// false when the plane is not axis-aligned within threshold.
func HalfSpace(plane Plane, threshold float64) (geometry.BoundingBox, bool) {
	axis, positive, ok := AxisOf(plane.Direction, threshold)
	if !ok {
		return geometry.InfiniteBoundingBox(), false
	}

	offset := plane.Location.Component(axis)
	if positive {
		return geometry.InfiniteBoundingBox().ClampMin(axis, offset), true
	}
	return geometry.InfiniteBoundingBox().ClampMax(axis, offset), true
}

// Constrain tightens box by the half-space of plane. It returns false and the
// box unchanged when the plane is not axis-aligned within threshold.
func Constrain(box geometry.BoundingBox, plane Plane, threshold float64) (geometry.BoundingBox, bool) {
	half, ok := HalfSpace(plane, threshold)
	if !ok {
		return box, false
	}
	return box.Intersect(half), true
}

// Reduce intersects the half-spaces of all axis-aligned planes, starting from
// the infinite box. Planes that are not axis-aligned within threshold cannot
// be expressed by a section box and are skipped. The result does not depend
// on the order of planes; an infinite result means nothing needs clipping.
func Reduce(planes []Plane, threshold float64) geometry.BoundingBox {
	box := geometry.InfiniteBoundingBox()
	for _, p := range planes {
		box, _ = Constrain(box, p, threshold)
	}
	return box
}

// Dropped returns the planes Reduce would skip
func Dropped(planes []Plane, threshold float64) []Plane {
	var dropped []Plane
	for _, p := range planes {
		if _, _, ok := AxisOf(p.Direction, threshold); !ok {
			dropped = append(dropped, p)
		}
	}
	return dropped
}

var axes = [3]geometry.Vector3{geometry.UnitX, geometry.UnitY, geometry.UnitZ}

// FromBox returns one plane per bounded side of box, so that Reduce(FromBox(b))
// reproduces b. The infinite box yields no planes.
func FromBox(box geometry.BoundingBox) []Plane {
	var planes []Plane
	for axis, dir := range axes {
		if box.HasMin(axis) {
			planes = append(planes, Plane{
				Location:  anchor(box).WithComponent(axis, box.Min.Component(axis)),
				Direction: dir,
			})
		}
		if box.HasMax(axis) {
			planes = append(planes, Plane{
				Location:  anchor(box).WithComponent(axis, box.Max.Component(axis)),
				Direction: dir.Negate(),
			})
		}
	}
	return planes
}

// anchor picks a representative in-box point for plane locations: the center on
// doubly bounded axes, the single bound on half-bounded axes and 0 elsewhere
func anchor(box geometry.BoundingBox) geometry.Vector3 {
	var p geometry.Vector3
	for axis := 0; axis < 3; axis++ {
		lo, hi := box.Min.Component(axis), box.Max.Component(axis)
		switch {
		case box.HasMin(axis) && box.HasMax(axis):
			p = p.WithComponent(axis, (lo+hi)/2)
		case box.HasMin(axis):
			p = p.WithComponent(axis, lo)
		case box.HasMax(axis):
			p = p.WithComponent(axis, hi)
		}
	}
	return p
}

// ToHost transforms BCF world planes into the host frame
func ToHost(planes []Plane, frame geometry.Frame) []Plane {
	out := make([]Plane, 0, len(planes))
	for _, p := range planes {
		out = append(out, Plane{
			Location:  frame.PointToHost(p.Location),
			Direction: frame.DirectionToHost(p.Direction),
		})
	}
	return out
}

// ToWorld transforms host planes into BCF world space
func ToWorld(planes []Plane, frame geometry.Frame) []Plane {
	out := make([]Plane, 0, len(planes))
	for _, p := range planes {
		out = append(out, Plane{
			Location:  frame.PointToWorld(p.Location),
			Direction: frame.DirectionToWorld(p.Direction),
		})
	}
	return out
}
