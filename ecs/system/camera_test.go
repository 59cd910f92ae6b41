package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/entity"
)

func newPlayerAndCamera(t *testing.T) (*ecs.World, ecs.Entity, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	player, err := entity.NewPlayerAt(w, mgl32.Vec3{1, 0.5, 2})
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	cam, err := entity.NewCameraAt(w, mgl32.Vec3{1, 0.5, 2})
	if err != nil {
		t.Fatalf("camera: %v", err)
	}
	return w, player, cam
}

func TestPlayerControllerTorqueFollowsCamera(t *testing.T) {
	cases := []struct {
		name   string
		yaw    float32
		input  component.Input
		torque mgl32.Vec3
	}{
		{"idle", 0, component.Input{}, mgl32.Vec3{}},
		{"forward", 0, component.Input{Forward: true}, mgl32.Vec3{-1, 0, 0}},
		{"back", 0, component.Input{Back: true}, mgl32.Vec3{1, 0, 0}},
		{"right", 0, component.Input{Right: true}, mgl32.Vec3{0, 0, -1}},
		{"forward_turned", mgl32.DegToRad(90), component.Input{Forward: true}, mgl32.Vec3{0, 0, 1}},
		{"opposite_cancels", 0, component.Input{Forward: true, Back: true}, mgl32.Vec3{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, player, cam := newPlayerAndCamera(t)
			camera, _ := ecs.Get(w, cam, component.CameraComponent.Kind())
			camera.Yaw = c.yaw
			input, _ := ecs.Get(w, player, component.InputComponent.Kind())
			*input = c.input

			NewPlayerControllerSystem().Update(w)

			force, _ := ecs.Get(w, player, component.ExternalForceComponent.Kind())
			if !force.Torque.ApproxEqualThreshold(c.torque.Mul(entity.PlayerTorque), 1e-5) {
				t.Fatalf("torque = %v, want %v", force.Torque, c.torque)
			}
		})
	}
}

func TestCameraFollowsPlayer(t *testing.T) {
	w, player, cam := newPlayerAndCamera(t)
	input, _ := ecs.Get(w, player, component.InputComponent.Kind())
	input.LookDX = 100
	input.LookDY = 1e6

	NewCameraSystem().Update(w)

	camera, _ := ecs.Get(w, cam, component.CameraComponent.Kind())
	if !mgl32.FloatEqual(camera.Yaw, -100*MouseSpeed) {
		t.Fatalf("yaw = %v, want %v", camera.Yaw, -100*MouseSpeed)
	}
	if camera.Pitch != -maxPitch {
		t.Fatalf("pitch should clamp to %v, got %v", -maxPitch, camera.Pitch)
	}
	if input.LookDX != 0 || input.LookDY != 0 {
		t.Fatalf("look input not consumed: %+v", *input)
	}

	ct, _ := ecs.Get(w, cam, component.TransformComponent.Kind())
	want := mgl32.Vec3{1, 0.5, 2}.Add(camera.Offset())
	if !ct.Position.ApproxEqualThreshold(want, 1e-5) {
		t.Fatalf("camera at %v, want %v", ct.Position, want)
	}
	if ct.Position.Y() <= 0.5 {
		t.Fatalf("camera should sit above the player, got %v", ct.Position)
	}
}
