package component

import "github.com/go-gl/mathgl/mgl32"

// Transform is an entity pose. For entities with a parent it is relative to
// the parent's pose.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// NewTransform returns a transform at pos with identity rotation. The zero
// mgl32.Quat is not a valid rotation, so always build transforms here.
func NewTransform(pos mgl32.Vec3) Transform {
	return Transform{Position: pos, Rotation: mgl32.QuatIdent()}
}

// Mul composes a child-local transform onto t.
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		Position: t.Position.Add(t.Rotation.Rotate(local.Position)),
		Rotation: t.Rotation.Mul(local.Rotation),
	}
}

var TransformComponent = NewComponent[Transform]()
