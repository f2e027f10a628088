package explorer

import (
	"github.com/chewxy/math32"

	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/scene"
)

// MinimapScale is the minimap zoom in pixels per world unit.
const MinimapScale = 1.5

// Blip colors.
const (
	blipDirectory = 0xffff00
	blipFile      = 0xff6b35
)

// Blip is one marker drawn on the minimap.
type Blip struct {
	X, Y  float32
	Color uint32
	Node  models.TreeNode
}

// Minimap projects markers onto a width x height canvas centred on the
// boat, rotated so the boat always points up. Markers outside the canvas
// are dropped.
func Minimap(markers []*scene.PlacedMarker, b *Boat, width, height float32) []Blip {
	cx, cy := width/2, height/2
	sin, cos := math32.Sin(b.RotationY), math32.Cos(b.RotationY)

	var blips []Blip
	for _, m := range markers {
		relX := m.X - b.X
		relZ := m.Z - b.Z
		rotX := relX*cos - relZ*sin
		rotZ := relX*sin + relZ*cos

		// -Z is ahead of the boat and maps to the top of the canvas.
		x := cx + rotX*MinimapScale
		y := cy + rotZ*MinimapScale
		if x <= 0 || x >= width || y <= 0 || y >= height {
			continue
		}

		color := uint32(blipFile)
		if m.Node.IsDir() {
			color = blipDirectory
		}
		blips = append(blips, Blip{X: x, Y: y, Color: color, Node: m.Node})
	}
	return blips
}
