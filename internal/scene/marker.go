// Package scene lays out the entries of the displayed directory as markers
// floating on the ocean plane and answers spatial queries against them.
package scene

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

// Shape is the visual kind of a marker.
type Shape int

const (
	ShapeBuoy Shape = iota
	ShapeLighthouse
)

func (s Shape) String() string {
	switch s {
	case ShapeBuoy:
		return "buoy"
	case ShapeLighthouse:
		return "lighthouse"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ShapeFor returns the marker shape for a node kind.
func ShapeFor(k models.Kind) Shape {
	switch k {
	case models.KindDirectory:
		return ShapeLighthouse
	case models.KindFile:
		return ShapeBuoy
	default:
		panic(fmt.Sprintf("scene: unknown node kind %v", k))
	}
}

// Label heights above the marker base.
const (
	lighthouseLabelHeight = 18
	buoyLabelHeight       = 4
)

// Local bounding boxes at unit scale, centered on the marker origin.
var (
	lighthouseBounds = math32.B3(-2.5, 0, -2.5, 2.5, 16, 2.5)
	buoyBounds       = math32.B3(-1.2, -1, -1.2, 1.2, 2.5, 1.2)
)

// HoverScale is applied to the hovered marker.
const HoverScale = 1.1

// Label is the persistent name tag floating above a marker.
type Label struct {
	Text   string
	Height float32
}

// PlacedMarker is one entry of the displayed directory positioned in the world.
type PlacedMarker struct {
	Node      models.TreeNode
	Index     int // position in the entry list the marker was built from
	X, Z      float32
	Y         float32 // vertical offset, animated for buoys
	RotationY float32
	Scale     float32
	Shape     Shape
	Label     Label
	Fallback  bool // placed on the fallback circle after sampling failed
}

func newMarker(node models.TreeNode, index int, x, z, rot float32, fallback bool) *PlacedMarker {
	shape := ShapeFor(node.Kind)
	height := float32(buoyLabelHeight)
	if shape == ShapeLighthouse {
		height = lighthouseLabelHeight
	}
	return &PlacedMarker{
		Node:      node,
		Index:     index,
		X:         x,
		Z:         z,
		RotationY: rot,
		Scale:     1,
		Shape:     shape,
		Label:     Label{Text: node.Name, Height: height},
		Fallback:  fallback,
	}
}

// Position returns the marker origin in world space.
func (m *PlacedMarker) Position() math32.Vector3 {
	return math32.Vec3(m.X, m.Y, m.Z)
}

// Bounds returns the world-space hit volume of the marker.
func (m *PlacedMarker) Bounds() math32.Box3 {
	local := buoyBounds
	if m.Shape == ShapeLighthouse {
		local = lighthouseBounds
	}
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	scaled := math32.Box3{Min: local.Min.MulScalar(scale), Max: local.Max.MulScalar(scale)}
	return scaled.Translate(m.Position())
}

// DistanceToOrigin returns the planar distance from the world center.
func (m *PlacedMarker) DistanceToOrigin() float32 {
	return PlanarDistance(m.X, m.Z, 0, 0)
}

// BobHeight returns the vertical offset of a buoy at x after t seconds.
func BobHeight(t, x float32) float32 {
	return math32.Sin(t*2+x) * 0.3
}
