package system

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
)

type RespawnSystem struct{}

func NewRespawnSystem() *RespawnSystem { return &RespawnSystem{} }

// Update performs pending respawn requests for players. It runs after the
// PhysicsSystem so the teleport is what the next step starts from.
func (s *RespawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.RespawnRequestComponent.Kind(), func(e ecs.Entity, req *component.RespawnRequest) {
		// Only handle player entity
		if !ecs.Has(w, e, component.PlayerTagComponent.Kind()) {
			ecs.Remove(w, e, component.RespawnRequestComponent.Kind())
			return
		}

		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.Position = req.Position
		}
		if v, ok := ecs.Get(w, e, component.VelocityComponent.Kind()); ok {
			v.Linear = mgl32.Vec3{}
			v.Angular = mgl32.Vec3{}
		}
		if f, ok := ecs.Get(w, e, component.ExternalForceComponent.Kind()); ok {
			f.Force = mgl32.Vec3{}
			f.Torque = mgl32.Vec3{}
		}

		ecs.Remove(w, e, component.RespawnRequestComponent.Kind())
	})
}
