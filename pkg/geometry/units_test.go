package geometry

import (
	"math"
	"testing"
)

func TestUnitFeet(t *testing.T) {
	got := Feet.FromMeters(0.3048)
	if math.Abs(got-1) > 1e-10 {
		t.Errorf("FromMeters failed: expected 1, got %v", got)
	}
	if back := Feet.ToMeters(got); math.Abs(back-0.3048) > 1e-10 {
		t.Errorf("ToMeters failed: expected 0.3048, got %v", back)
	}
}

func TestUnitPoint(t *testing.T) {
	p := Millimeters.PointFromMeters(NewVector3(1, 0.5, -2))
	expected := NewVector3(1000, 500, -2000)
	if !p.ApproxEqual(expected, 1e-9) {
		t.Errorf("PointFromMeters failed: expected %v, got %v", expected, p)
	}
	if back := Millimeters.PointToMeters(p); !back.ApproxEqual(NewVector3(1, 0.5, -2), 1e-12) {
		t.Errorf("PointToMeters failed: got %v", back)
	}
}

func TestUnitBox(t *testing.T) {
	box := InfiniteBoundingBox().ClampMin(0, 2).ClampMax(2, -0.5)
	got := Millimeters.BoxFromMeters(box)

	if got.Min.X != 2000 || got.Max.Z != -500 {
		t.Errorf("BoxFromMeters failed: got min.x=%v max.z=%v", got.Min.X, got.Max.Z)
	}
	if got.HasMax(0) || got.HasMin(1) || got.HasMax(1) || got.HasMin(2) {
		t.Errorf("BoxFromMeters bounded an open side: %v", got)
	}
}

func TestParseUnit(t *testing.T) {
	tests := map[string]Unit{
		"feet":   Feet,
		"FT":     Feet,
		"m":      Meters,
		" mm ":   Millimeters,
		"meters": Meters,
	}
	for name, expected := range tests {
		got, err := ParseUnit(name)
		if err != nil {
			t.Errorf("ParseUnit(%q) failed: %v", name, err)
			continue
		}
		if got != expected {
			t.Errorf("ParseUnit(%q): expected %v, got %v", name, expected, got)
		}
	}

	if _, err := ParseUnit("cubits"); err == nil {
		t.Error("ParseUnit accepted an unknown unit")
	}
}
