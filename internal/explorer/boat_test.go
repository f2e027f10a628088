package explorer

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/scene"
)

func TestBoat_Steer(t *testing.T) {
	var b Boat
	b.Steer(KeySet(0).With(KeyForward), 1)
	assert.InDelta(t, 0, b.X, 1e-6)
	assert.InDelta(t, -0.2, b.Z, 1e-6)

	b.Steer(KeySet(0).With(KeyBackward), 2)
	assert.InDelta(t, 0.2, b.Z, 1e-6)

	b.Steer(KeySet(0).With(KeyTurnLeft), 1)
	assert.InDelta(t, 0.03, b.RotationY, 1e-6)
	b.Steer(KeySet(0).With(KeyTurnRight).With(KeyTurnLeft), 1)
	assert.InDelta(t, 0.03, b.RotationY, 1e-6)
}

func TestBoat_SteerFollowsHeading(t *testing.T) {
	b := Boat{RotationY: math32.Pi / 2}
	b.Steer(KeySet(0).With(KeyForward), 1)
	assert.InDelta(t, -0.2, b.X, 1e-5)
	assert.InDelta(t, 0, b.Z, 1e-5)
}

func TestBoat_Heading(t *testing.T) {
	b := Boat{RotationY: math32.Pi / 2}
	assert.InDelta(t, -90, b.Heading(), 1e-4)
}

func TestFollow_ApproachesOffset(t *testing.T) {
	cam := scene.DefaultCamera(1)
	b := Boat{X: 10, Z: -5}
	for i := 0; i < 200; i++ {
		follow(&cam, &b)
	}
	assert.InDelta(t, 10, cam.Position.X, 1e-3)
	assert.InDelta(t, 4, cam.Position.Y, 1e-3)
	assert.InDelta(t, 3, cam.Position.Z, 1e-3)
	assert.Equal(t, b.Position(), cam.Target)
}

func TestMinimap(t *testing.T) {
	markers := []*scene.PlacedMarker{
		{Node: models.TreeNode{Name: "ahead", Kind: models.KindDirectory}, X: 0, Z: -10},
		{Node: models.TreeNode{Name: "right", Kind: models.KindFile}, X: 10, Z: 0},
		{Node: models.TreeNode{Name: "far", Kind: models.KindFile}, X: 0, Z: 500},
	}

	blips := Minimap(markers, &Boat{}, 100, 100)
	require.Len(t, blips, 2)

	assert.Equal(t, "ahead", blips[0].Node.Name)
	assert.InDelta(t, 50, blips[0].X, 1e-4)
	assert.InDelta(t, 35, blips[0].Y, 1e-4)
	assert.Equal(t, uint32(blipDirectory), blips[0].Color)

	assert.InDelta(t, 65, blips[1].X, 1e-4)
	assert.InDelta(t, 50, blips[1].Y, 1e-4)
	assert.Equal(t, uint32(blipFile), blips[1].Color)
}

func TestMinimap_RotatesWithBoat(t *testing.T) {
	// Turned left a quarter: the marker to the west is now straight ahead.
	markers := []*scene.PlacedMarker{
		{Node: models.TreeNode{Name: "west", Kind: models.KindFile}, X: -10, Z: 0},
	}
	blips := Minimap(markers, &Boat{RotationY: math32.Pi / 2}, 100, 100)
	require.Len(t, blips, 1)
	assert.InDelta(t, 50, blips[0].X, 1e-3)
	assert.InDelta(t, 35, blips[0].Y, 1e-3)
}

func TestSettings(t *testing.T) {
	st := DefaultSettings()
	assert.True(t, st.ShowMinimap)
	assert.Equal(t, ThemeBlue, st.OceanTheme)
	assert.Equal(t, float32(1), st.BoatSpeed)

	assert.Equal(t, uint32(0x2a9d8f), ThemeTeal.Color())
	assert.Equal(t, uint32(0xe76f51), ThemeSunset.Color())
	assert.Equal(t, ThemeBlue.Color(), Theme("neon").Color())
}

func TestParseKey(t *testing.T) {
	cases := map[string]Key{
		"w": KeyForward, "ArrowUp": KeyForward,
		"S": KeyBackward, "arrowdown": KeyBackward,
		"a": KeyTurnLeft, "ArrowLeft": KeyTurnLeft,
		"d": KeyTurnRight, "ArrowRight": KeyTurnRight,
		" ": KeyActivate, "Escape": KeyBack,
	}
	for name, want := range cases {
		got, ok := ParseKey(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := ParseKey("q")
	assert.False(t, ok)
}
