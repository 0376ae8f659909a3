package memory

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/philipparndt/gobcf/pkg/camera"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

// Vec is a YAML vector, written as {x: 1, y: 2, z: 3}
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec) vector() geometry.Vector3 { return geometry.NewVector3(v.X, v.Y, v.Z) }

func vecOf(v geometry.Vector3) Vec { return Vec{X: v.X, Y: v.Y, Z: v.Z} }

// Scene is the on-disk form of a document
type Scene struct {
	Project    ProjectFile   `yaml:"project"`
	ActiveView int64         `yaml:"active_view"`
	Views      []ViewFile    `yaml:"views"`
	Elements   []ElementFile `yaml:"elements"`
	Selection  []int64       `yaml:"selection,omitempty"`
}

// ProjectFile holds the project base point (host units) and true-north angle
type ProjectFile struct {
	Origin   Vec     `yaml:"origin"`
	AngleDeg float64 `yaml:"angle_deg"`
}

// ElementFile describes one model element. GUID wins over ExportID when both are set.
type ElementFile struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	GUID     string `yaml:"guid,omitempty"`
	ExportID string `yaml:"export_id,omitempty"`
	Color    string `yaml:"color,omitempty"`
	// Fixed elements cannot be hidden and are not enumerated by views
	Fixed bool `yaml:"fixed,omitempty"`
}

// ViewFile describes a 3D view
type ViewFile struct {
	ID               int64   `yaml:"id"`
	Name             string  `yaml:"name"`
	Perspective      bool    `yaml:"perspective,omitempty"`
	Eye              Vec     `yaml:"eye"`
	Forward          Vec     `yaml:"forward"`
	Up               Vec     `yaml:"up"`
	Zoom             *Rect   `yaml:"zoom,omitempty"`
	SectionBox       *Box    `yaml:"section_box,omitempty"`
	SectionBoxActive bool    `yaml:"section_box_active,omitempty"`
	FarClipActive    bool    `yaml:"far_clip_active,omitempty"`
	CropBoxActive    bool    `yaml:"crop_box_active,omitempty"`
	Hidden           []int64 `yaml:"hidden,omitempty"`
	Members          []int64 `yaml:"members,omitempty"`
}

// Rect is a zoom rectangle
type Rect struct {
	BottomLeft Vec `yaml:"bottom_left"`
	TopRight   Vec `yaml:"top_right"`
}

// Box is a section box; unbounded sides are stored as ±max float
type Box struct {
	Min Vec `yaml:"min"`
	Max Vec `yaml:"max"`
}

// LoadScene reads a YAML scene file
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("failed to parse scene %s: %w", path, err)
	}
	return &scene, nil
}

// Save writes the scene as YAML
func (s *Scene) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene: %w", err)
	}
	return nil
}

// Open loads a scene file into a new document
func Open(path string) (*Document, error) {
	scene, err := LoadScene(path)
	if err != nil {
		return nil, err
	}
	return New(scene)
}

func (r *Rect) rect() camera.Rect {
	return camera.Rect{BottomLeft: r.BottomLeft.vector(), TopRight: r.TopRight.vector()}
}

func rectOf(r camera.Rect) *Rect {
	return &Rect{BottomLeft: vecOf(r.BottomLeft), TopRight: vecOf(r.TopRight)}
}

func (b *Box) box() geometry.BoundingBox {
	return geometry.BoundingBox{Min: b.Min.vector(), Max: b.Max.vector()}
}

func boxOf(b geometry.BoundingBox) *Box {
	return &Box{Min: vecOf(b.Min), Max: vecOf(b.Max)}
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func radians(deg float64) float64 { return deg * math.Pi / 180 }
