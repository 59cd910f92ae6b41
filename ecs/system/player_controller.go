package system

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
)

// PlayerControllerSystem turns movement input into torque on the player
// sphere, relative to the direction the camera faces.
type PlayerControllerSystem struct{}

func NewPlayerControllerSystem() *PlayerControllerSystem {
	return &PlayerControllerSystem{}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	looking := mgl32.Vec3{0, 0, -1}
	if camEnt, ok := w.First(component.CameraComponent.Kind()); ok {
		if cam, ok := ecs.Get(w, camEnt, component.CameraComponent.Kind()); ok {
			looking = cam.Looking()
		}
	}
	up := mgl32.Vec3{0, 1, 0}
	right := looking.Cross(up)

	ecs.ForEach3(w, component.PlayerComponent.Kind(), component.InputComponent.Kind(), component.ExternalForceComponent.Kind(),
		func(_ ecs.Entity, player *component.Player, input *component.Input, force *component.ExternalForce) {
			var movement mgl32.Vec3
			if input.Forward {
				movement = movement.Add(looking)
			}
			if input.Back {
				movement = movement.Sub(looking)
			}
			if input.Left {
				movement = movement.Sub(right)
			}
			if input.Right {
				movement = movement.Add(right)
			}
			if movement.Len() > 0 {
				movement = movement.Normalize()
			}
			force.Torque = up.Cross(movement).Mul(player.Torque)
		})
}
