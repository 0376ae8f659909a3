package geometry

import "math"

// BoundingBox represents an axis-aligned bounding box.
// A bound equal to ±math.MaxFloat64 is unbounded on that side.
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// InfiniteBoundingBox returns the box that clips nothing.
// It is the identity element of Intersect.
func InfiniteBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
		Max: Vector3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
	}
}

// IsInfinite reports whether no side of the box is bounded
func (b BoundingBox) IsInfinite() bool {
	return b == InfiniteBoundingBox()
}

// HasMin reports whether the lower side on axis (0=X, 1=Y, 2=Z) is bounded
func (b BoundingBox) HasMin(axis int) bool {
	return b.Min.Component(axis) != -math.MaxFloat64
}

// HasMax reports whether the upper side on axis (0=X, 1=Y, 2=Z) is bounded
func (b BoundingBox) HasMax(axis int) bool {
	return b.Max.Component(axis) != math.MaxFloat64
}

// Intersect returns the region contained in both boxes.
// It is commutative, associative and idempotent.
func (b BoundingBox) Intersect(other BoundingBox) BoundingBox {
	return BoundingBox{
		Min: b.Min.Max(other.Min),
		Max: b.Max.Min(other.Max),
	}
}

// ClampMin raises the lower bound on axis to at least value
func (b BoundingBox) ClampMin(axis int, value float64) BoundingBox {
	b.Min = b.Min.WithComponent(axis, math.Max(b.Min.Component(axis), value))
	return b
}

// ClampMax lowers the upper bound on axis to at most value
func (b BoundingBox) ClampMax(axis int, value float64) BoundingBox {
	b.Max = b.Max.WithComponent(axis, math.Min(b.Max.Component(axis), value))
	return b
}

// MapBounded applies fn to every bounded coordinate and leaves unbounded sides untouched
func (b BoundingBox) MapBounded(fn func(float64) float64) BoundingBox {
	out := b
	for axis := 0; axis < 3; axis++ {
		if b.HasMin(axis) {
			out.Min = out.Min.WithComponent(axis, fn(b.Min.Component(axis)))
		}
		if b.HasMax(axis) {
			out.Max = out.Max.WithComponent(axis, fn(b.Max.Component(axis)))
		}
	}
	return out
}

// IsFinite reports whether every side of the box is bounded
func (b BoundingBox) IsFinite() bool {
	for axis := 0; axis < 3; axis++ {
		if !b.HasMin(axis) || !b.HasMax(axis) {
			return false
		}
	}
	return true
}

// Size returns the dimensions of the bounding box
func (b BoundingBox) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Vector3 {
	return Vector3{
		X: (b.Min.X + b.Max.X) / 2.0,
		Y: (b.Min.Y + b.Max.Y) / 2.0,
		Z: (b.Min.Z + b.Max.Z) / 2.0,
	}
}
