package geometry

import (
	"fmt"
	"strings"
)

// Unit is a host length unit, described by how many host units make one meter.
// BCF always expresses lengths in meters.
type Unit struct {
	Name     string
	PerMeter float64
}

// Supported host units
var (
	Meters      = Unit{Name: "meters", PerMeter: 1}
	Millimeters = Unit{Name: "millimeters", PerMeter: 1000}
	Feet        = Unit{Name: "feet", PerMeter: 1 / 0.3048}
)

// ParseUnit resolves a unit by name ("feet", "ft", "meters", "m", "millimeters", "mm")
func ParseUnit(name string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "feet", "foot", "ft":
		return Feet, nil
	case "meters", "meter", "metres", "m":
		return Meters, nil
	case "millimeters", "millimetres", "mm":
		return Millimeters, nil
	}
	return Unit{}, fmt.Errorf("unknown length unit %q", name)
}

// FromMeters converts a BCF length to host units
func (u Unit) FromMeters(value float64) float64 {
	return value * u.PerMeter
}

// ToMeters converts a host length to BCF meters
func (u Unit) ToMeters(value float64) float64 {
	return value / u.PerMeter
}

// PointFromMeters converts every coordinate of a BCF point to host units
func (u Unit) PointFromMeters(p Vector3) Vector3 {
	return p.Mul(u.PerMeter)
}

// PointToMeters converts every coordinate of a host point to BCF meters
func (u Unit) PointToMeters(p Vector3) Vector3 {
	return p.Mul(1 / u.PerMeter)
}

// BoxFromMeters converts the bounded sides of a BCF box to host units.
// Unbounded sides stay unbounded.
func (u Unit) BoxFromMeters(b BoundingBox) BoundingBox {
	return b.MapBounded(u.FromMeters)
}

func (u Unit) String() string {
	return u.Name
}
