package camera

import (
	"math"

	"github.com/philipparndt/gobcf/pkg/geometry"
)

// Rect is the visible rectangle of a view given by two opposite corners in host space
type Rect struct {
	BottomLeft geometry.Vector3
	TopRight   geometry.Vector3
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() geometry.Vector3 {
	return r.BottomLeft.Add(r.TopRight).Mul(0.5)
}

// Extent returns the width and height of r measured along the view's right and up vectors
func (r Rect) Extent(o Orientation) (width, height float64) {
	diag := r.TopRight.Sub(r.BottomLeft)
	return math.Abs(diag.Dot(o.Right())), math.Abs(diag.Dot(o.Up.Normalize()))
}

// FitHeight returns a rectangle with the same center and aspect ratio as r whose
// height is height. A degenerate rectangle keeps a square aspect.
func FitHeight(r Rect, o Orientation, height float64) Rect {
	width, current := r.Extent(o)
	aspect := 1.0
	if current > 0 && width > 0 {
		aspect = width / current
	}

	halfUp := o.Up.Normalize().Mul(height / 2)
	halfRight := o.Right().Mul(height * aspect / 2)
	center := r.Center()

	return Rect{
		BottomLeft: center.Sub(halfUp).Sub(halfRight),
		TopRight:   center.Add(halfUp).Add(halfRight),
	}
}
