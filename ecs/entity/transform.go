package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/levels"
)

// Pose builds a transform at pos with the authored rotations applied in
// order.
func Pose(pos levels.Vec, rots []levels.Rotation) component.Transform {
	return component.Transform{
		Position: pos.Vec3(),
		Rotation: levels.ComposeRotations(rots),
	}
}

// WorldTransform resolves e's transform through its parents.
func WorldTransform(w *ecs.World, e ecs.Entity) (component.Transform, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return component.Transform{}, false
	}
	out := *t
	for p, ok := w.Parent(e); ok; p, ok = w.Parent(p) {
		pt, found := ecs.Get(w, p, component.TransformComponent.Kind())
		if !found {
			break
		}
		out = pt.Mul(out)
	}
	return out, true
}

// SetEntityTransform moves e to pos, keeping its rotation.
func SetEntityTransform(w *ecs.World, e ecs.Entity, pos mgl32.Vec3) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("entity: set transform of %v: no transform", e)
	}
	t.Position = pos
	return nil
}
