package scene

import (
	"cogentcore.org/core/math32"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

// World owns the markers of the displayed directory. Markers are never
// updated in place across directories: every Rebuild discards the previous
// set and lays out a new one.
type World struct {
	rng        Random
	markers    []*PlacedMarker
	generation int
}

// NewWorld returns an empty world using rng for placement.
func NewWorld(rng Random) *World {
	return &World{rng: rng}
}

// Rebuild replaces every marker with a fresh layout of entries.
func (w *World) Rebuild(entries []models.TreeNode) []*PlacedMarker {
	w.Clear()
	w.markers = Populate(entries, w.rng)
	w.generation++
	return w.markers
}

// Clear removes every marker.
func (w *World) Clear() {
	for i := range w.markers {
		w.markers[i] = nil
	}
	w.markers = nil
}

// Markers returns the current markers in entry order.
func (w *World) Markers() []*PlacedMarker {
	return w.markers
}

// Len returns the number of markers.
func (w *World) Len() int {
	return len(w.markers)
}

// Generation increases by one on every Rebuild, so a renderer can tell when
// its meshes are stale.
func (w *World) Generation() int {
	return w.generation
}

// Pick returns the marker whose hit volume r reaches first.
func (w *World) Pick(r math32.Ray) (*PlacedMarker, bool) {
	var (
		best  *PlacedMarker
		bestT = math32.Inf(1)
	)
	for _, m := range w.markers {
		t, ok := HitDistance(r, m.Bounds())
		if ok && t < bestT {
			best, bestT = m, t
		}
	}
	return best, best != nil
}

// Nearest returns the marker with the smallest planar distance to (x, z).
// When several are equally close the earliest entry wins.
func (w *World) Nearest(x, z float32) (*PlacedMarker, float32, bool) {
	var (
		best     *PlacedMarker
		bestDist = math32.Inf(1)
	)
	for _, m := range w.markers {
		d := PlanarDistance(x, z, m.X, m.Z)
		if d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, bestDist, best != nil
}
