package explorer

import (
	"cogentcore.org/core/math32"

	"github.com/kilupskalvis/vimlantis/internal/scene"
)

const (
	baseBoatSpeed = 0.2
	turnRate      = 0.03
	cameraLerp    = 0.1
)

var cameraOffset = math32.Vec3(0, 4, 8)

// Boat is the player vessel. It faces -Z at RotationY 0.
type Boat struct {
	X, Z      float32
	RotationY float32
}

// Position returns the boat position at sea level.
func (b *Boat) Position() math32.Vector3 {
	return math32.Vec3(b.X, 0, b.Z)
}

// Steer applies one tick of movement for the held keys.
func (b *Boat) Steer(held KeySet, speedFactor float32) {
	speed := baseBoatSpeed * speedFactor
	sin, cos := math32.Sin(b.RotationY), math32.Cos(b.RotationY)

	if held.Has(KeyForward) {
		b.X -= sin * speed
		b.Z -= cos * speed
	}
	if held.Has(KeyBackward) {
		b.X += sin * speed
		b.Z += cos * speed
	}
	if held.Has(KeyTurnLeft) {
		b.RotationY += turnRate
	}
	if held.Has(KeyTurnRight) {
		b.RotationY -= turnRate
	}
}

// Heading returns the compass needle rotation in degrees.
func (b *Boat) Heading() float32 {
	return -b.RotationY * 180 / math32.Pi
}

// follow moves the camera a step toward its spot behind the boat and aims
// it at the boat.
func follow(cam *scene.Camera, b *Boat) {
	want := scene.RotateY(cameraOffset, b.RotationY).Add(b.Position())
	cam.Position = cam.Position.Lerp(want, cameraLerp)
	cam.Target = b.Position()
}
