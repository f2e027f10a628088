package scene

import "cogentcore.org/core/math32"

// Clip planes of the pick camera. Only the ray direction is used, so any
// positive pair works.
const (
	cameraNear = 0.1
	cameraFar  = 1000
)

// RotateY rotates v around the Y axis by angle radians.
func RotateY(v math32.Vector3, angle float32) math32.Vector3 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return math32.Vec3(v.X*c+v.Z*s, v.Y, -v.X*s+v.Z*c)
}

// PlanarDistance returns the distance between two points projected onto the
// ocean plane.
func PlanarDistance(x1, z1, x2, z2 float32) float32 {
	return math32.Hypot(x1-x2, z1-z2)
}

// HitDistance returns how far along r the box is first reached.
func HitDistance(r math32.Ray, b math32.Box3) (float32, bool) {
	pt, ok := r.IntersectBox(b)
	if !ok {
		return 0, false
	}
	return pt.Sub(r.Origin).Length(), true
}

// Camera is a perspective camera used to turn pointer positions into rays.
type Camera struct {
	Position math32.Vector3
	Target   math32.Vector3
	Up       math32.Vector3
	FOV      float32 // vertical field of view in degrees
	Aspect   float32 // width / height
}

// DefaultCamera returns the camera the ocean starts with.
func DefaultCamera(aspect float32) Camera {
	return Camera{
		Position: math32.Vec3(0, 15, 25),
		Target:   math32.Vec3(0, 0, 0),
		Up:       math32.Vec3(0, 1, 0),
		FOV:      75,
		Aspect:   aspect,
	}
}

// Ray returns the ray from the camera through a pointer position given in
// normalized device coordinates (-1..1, +Y up). The point is unprojected
// through the inverse projection and the camera pose.
func (c Camera) Ray(ndcX, ndcY float32) math32.Ray {
	up := c.Up
	if up == (math32.Vector3{}) {
		up = math32.Vec3(0, 1, 0)
	}
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}

	var look math32.Quat
	look.SetFromRotationMatrix(math32.NewLookAt(c.Position, c.Target, up))
	var pose math32.Matrix4
	pose.SetTransform(c.Position, look, math32.Vec3(1, 1, 1))

	var proj math32.Matrix4
	proj.SetPerspective(c.FOV, aspect, cameraNear, cameraFar)
	unproj, err := proj.Inverse()
	if err != nil {
		return math32.Ray{Origin: c.Position, Dir: c.Target.Sub(c.Position).Normal()}
	}

	local := math32.Vec4(ndcX, ndcY, 0.5, 1).MulMatrix4(unproj).PerspDiv()
	world := math32.Vector4FromVector3(local, 1).MulMatrix4(&pose).PerspDiv()
	return math32.Ray{Origin: c.Position, Dir: world.Sub(c.Position).Normal()}
}
