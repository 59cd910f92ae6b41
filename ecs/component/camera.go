package component

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits the player at Distance, looking at it.
type Camera struct {
	Pitch    float32
	Yaw      float32
	Distance float32
}

// Offset is the camera position relative to its target.
func (c Camera) Offset() mgl32.Vec3 {
	cp := math32.Cos(c.Pitch)
	return mgl32.Vec3{
		cp * math32.Sin(c.Yaw),
		-math32.Sin(c.Pitch),
		cp * math32.Cos(c.Yaw),
	}.Mul(c.Distance)
}

// Looking is the horizontal unit vector the camera faces.
func (c Camera) Looking() mgl32.Vec3 {
	return mgl32.Vec3{-math32.Sin(c.Yaw), 0, -math32.Cos(c.Yaw)}
}

var CameraComponent = NewComponent[Camera]()
