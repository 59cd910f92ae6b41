package system

import (
	"github.com/chewxy/math32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
)

// MouseSpeed converts mouse motion in pixels to radians.
const MouseSpeed = 0.0025

const maxPitch = math32.Pi/2 - 0.05

// CameraSystem applies look input to the orbit camera and places it behind
// the player.
type CameraSystem struct {
	// Sensitivity converts look input to radians.
	Sensitivity float32
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{Sensitivity: MouseSpeed}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	camEnt, ok := w.First(component.CameraComponent.Kind(), component.TransformComponent.Kind())
	if !ok {
		return
	}
	playerEnt, ok := w.First(component.PlayerTagComponent.Kind(), component.TransformComponent.Kind())
	if !ok {
		return
	}
	cam, _ := ecs.Get(w, camEnt, component.CameraComponent.Kind())
	camTransform, _ := ecs.Get(w, camEnt, component.TransformComponent.Kind())
	playerTransform, _ := ecs.Get(w, playerEnt, component.TransformComponent.Kind())

	if input, ok := ecs.Get(w, playerEnt, component.InputComponent.Kind()); ok {
		cam.Yaw -= input.LookDX * cs.Sensitivity
		cam.Pitch -= input.LookDY * cs.Sensitivity
		cam.Pitch = max(-maxPitch, min(maxPitch, cam.Pitch))
		input.LookDX, input.LookDY = 0, 0
	}

	camTransform.Position = playerTransform.Position.Add(cam.Offset())
}
