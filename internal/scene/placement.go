package scene

import (
	"github.com/chewxy/math32"
	"github.com/kilupskalvis/vimlantis/internal/models"
)

// Placement limits, in world units.
const (
	MinOriginDistance = 10
	MaxOriginDistance = 80
	MinSpacing        = 15

	sampleMinRadius = 20
	sampleMaxRadius = 80
	jitter          = 5
	maxTrials       = 100

	fallbackRadius     = 30
	fallbackRadiusStep = 15
)

// Random is the source of randomness used for placement. *rand.Rand from
// math/rand/v2 satisfies it.
type Random interface {
	Float32() float32
}

// Populate positions one marker per entry, in entry order. Each entry gets up
// to 100 random trials; an entry that finds no valid slot is put on a fixed
// circle instead, which may overlap an earlier marker.
func Populate(entries []models.TreeNode, rng Random) []*PlacedMarker {
	markers := make([]*PlacedMarker, 0, len(entries))
	n := float32(len(entries))

	for i, node := range entries {
		x, z, ok := sample(markers, rng)
		if !ok {
			angle := 2 * math32.Pi * float32(i) / n
			radius := float32(fallbackRadius + (i%3)*fallbackRadiusStep)
			x = math32.Cos(angle) * radius
			z = math32.Sin(angle) * radius
		}
		rot := rng.Float32() * 2 * math32.Pi
		markers = append(markers, newMarker(node, i, x, z, rot, !ok))
	}
	return markers
}

func sample(placed []*PlacedMarker, rng Random) (float32, float32, bool) {
	for trial := 0; trial < maxTrials; trial++ {
		angle := rng.Float32() * 2 * math32.Pi
		radius := sampleMinRadius + rng.Float32()*(sampleMaxRadius-sampleMinRadius)
		offset := rng.Float32()*2*jitter - jitter

		x := math32.Cos(angle)*radius + offset
		z := math32.Sin(angle)*radius + offset
		if validPosition(placed, x, z) {
			return x, z, true
		}
	}
	return 0, 0, false
}

func validPosition(placed []*PlacedMarker, x, z float32) bool {
	d := PlanarDistance(x, z, 0, 0)
	if d < MinOriginDistance || d > MaxOriginDistance {
		return false
	}
	for _, m := range placed {
		if PlanarDistance(x, z, m.X, m.Z) < MinSpacing {
			return false
		}
	}
	return true
}
