package entity

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
)

const (
	PlayerRadius  = 0.5
	PlayerDamping = 0.25
	PlayerTorque  = 1
	playerMass    = 1
)

var playerColor = color.RGBA{R: 0, G: 212, B: 255, A: 255}

// NewPlayerAt creates the player sphere at pos.
func NewPlayerAt(w *ecs.World, pos mgl32.Vec3) (ecs.Entity, error) {
	e := w.CreateEntity()
	if err := addPlayerComponents(w, e, pos); err != nil {
		w.DestroyEntity(e)
		return 0, fmt.Errorf("player: %w", err)
	}
	return e, nil
}

func addPlayerComponents(w *ecs.World, e ecs.Entity, pos mgl32.Vec3) error {
	t := component.NewTransform(pos)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &t); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{Torque: PlayerTorque}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.MeshComponent.Kind(), &component.Mesh{
		Shape: component.MeshSphere,
		Size:  mgl32.Vec3{2 * PlayerRadius, 2 * PlayerRadius, 2 * PlayerRadius},
		Color: playerColor,
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Type:           component.BodyDynamic,
		Mass:           playerMass,
		LinearDamping:  PlayerDamping,
		AngularDamping: PlayerDamping,
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Shape:    component.ColliderBall,
		Radius:   PlayerRadius,
		Friction: surfaceFriction,
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.ExternalForceComponent.Kind(), &component.ExternalForce{})
}

// NewCameraAt creates the orbit camera looking at target.
func NewCameraAt(w *ecs.World, target mgl32.Vec3) (ecs.Entity, error) {
	e := w.CreateEntity()
	cam := component.Camera{Pitch: -math32.Pi / 4, Distance: 4}
	t := component.NewTransform(target.Add(cam.Offset()))
	if err := ecs.Add(w, e, component.CameraTagComponent.Kind(), &component.CameraTag{}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.CameraComponent.Kind(), &cam); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &t); err != nil {
		return 0, err
	}
	return e, nil
}
