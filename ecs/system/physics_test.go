package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/entity"
	"github.com/milk9111/spherefall/levels"
)

func physicsWorld(t *testing.T, text string) (*ecs.World, *ecs.Scheduler, *PhysicsSystem, ecs.Entity, entity.Level) {
	t.Helper()
	desc, err := levels.Parse("physics.level.kdl", text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	w := ecs.NewWorld()
	lvl, err := entity.InstantiateLevel(w, desc, 1)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	player, err := entity.NewPlayerAt(w, entity.DefaultSpawnPosition)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	ps := NewPhysicsSystem()
	return w, ecs.NewScheduler(ps), ps, player, lvl
}

func TestPhysicsPlayerRestsOnPlane(t *testing.T) {
	w, sched, _, player, _ := physicsWorld(t, "spawn { pos 0 0.5 0 }\nplane 10 { pos 0 0 0 }")
	for i := 0; i < 120; i++ {
		sched.Update(w)
	}
	pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	if y := pt.Position.Y(); y < 0.49 || y > 0.51 {
		t.Fatalf("expected the player resting at y=0.5, got %v", pt.Position)
	}
}

func TestPhysicsRotatedPlaneSupportsPlayer(t *testing.T) {
	w, sched, _, player, _ := physicsWorld(t, "spawn { pos 0 0.5 0 }\nplane 10 { pos 0 0 0; rot Y 45 }")
	for i := 0; i < 60; i++ {
		sched.Update(w)
	}
	pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	if y := pt.Position.Y(); y < 0.49 || y > 0.51 {
		t.Fatalf("expected the player resting at y=0.5, got %v", pt.Position)
	}
}

func TestPhysicsTorqueRollsPlayer(t *testing.T) {
	w, sched, _, player, _ := physicsWorld(t, "spawn { pos 0 0.5 0 }\nplane 20 { pos 0 0 0 }")
	force, _ := ecs.Get(w, player, component.ExternalForceComponent.Kind())
	// torque about -X rolls the sphere toward -Z
	force.Torque = mgl32.Vec3{-entity.PlayerTorque, 0, 0}
	for i := 0; i < 60; i++ {
		sched.Update(w)
	}
	pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	if pt.Position.Z() > -0.1 {
		t.Fatalf("expected the player to roll toward -Z, got %v", pt.Position)
	}
}

func TestPhysicsNoGhostCollidersAfterTeardown(t *testing.T) {
	w, sched, ps, player, lvl := physicsWorld(t, "spawn { pos 0 0.5 0 }\nplane 10 { pos 0 0 0 }")
	stopped := ecs.NewEventReader(CollisionStoppedEvents)
	for i := 0; i < 10; i++ {
		sched.Update(w)
	}
	if ps.ContactCount() != 1 {
		t.Fatalf("expected the player touching the plane, got %d contacts", ps.ContactCount())
	}
	stopped.Clear(w)

	for _, root := range lvl.Roots {
		w.DestroyRecursive(root)
	}
	sched.Update(w)

	events := stopped.Read(w)
	if len(events) != 1 || !events[0].Removed {
		t.Fatalf("expected one CollisionStopped for the removed slab, got %+v", events)
	}
	if ps.BodyCount() != 1 {
		t.Fatalf("expected only the player body cached, got %d", ps.BodyCount())
	}
	for i := 0; i < 30; i++ {
		sched.Update(w)
	}
	pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	if pt.Position.Y() >= 0 {
		t.Fatalf("player should fall once the plane is gone, got %v", pt.Position)
	}
}

func TestPhysicsCandidatePairsFromSpatialIndex(t *testing.T) {
	w, sched, ps, player, lvl := physicsWorld(t, "spawn { pos 0 0.5 0 }\nplane 10 { pos 0 0 0 }\ncube 1 { pos 40 0.5 40 }")
	sched.Update(w)

	candidates := func() []contactPair {
		bodies := ps.syncEntities(w)
		byEntity := make(map[ecs.Entity]*body, len(bodies))
		for _, b := range bodies {
			byEntity[b.e] = b
		}
		return ps.candidates(bodies, byEntity)
	}

	pairs := candidates()
	if ps.BodyCount() != 3 {
		t.Fatalf("expected player, slab and cube bodies, got %d", ps.BodyCount())
	}
	if len(pairs) != 1 || !pairs[0].has(player) {
		t.Fatalf("expected only the player and the slab as candidates, got %+v", pairs)
	}

	for _, root := range lvl.Roots {
		w.DestroyRecursive(root)
	}
	sched.Update(w)
	if pairs := candidates(); len(pairs) != 0 {
		t.Fatalf("unexpected candidates after teardown: %+v", pairs)
	}
	indexed := 0
	ps.space.BBQuery(cp.NewBB(-1e6, -1e6, 1e6, 1e6), cp.SHAPE_FILTER_ALL, func(*cp.Shape, interface{}) {
		indexed++
	}, nil)
	if indexed != 1 {
		t.Fatalf("expected only the player in the spatial index, got %d shapes", indexed)
	}
}

func TestPhysicsSensorReportsWithoutPushing(t *testing.T) {
	w, sched, _, player, _ := physicsWorld(t, "spawn { pos 0 0.5 0 }\ndeath_plane 10 { pos 0 0 0 }")
	started := ecs.NewEventReader(CollisionStartedEvents)
	pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	pt.Position = mgl32.Vec3{0, -1, 0}

	sched.Update(w)
	events := started.Read(w)
	if len(events) != 1 || !events[0].Sensor {
		t.Fatalf("expected one sensor CollisionStarted, got %+v", events)
	}
	if _, ok := events[0].Involves(player); !ok {
		t.Fatalf("event does not involve the player: %+v", events[0])
	}
	if pt.Position.Y() >= -1 {
		t.Fatalf("sensor pushed the player: %v", pt.Position)
	}

	sched.Update(w)
	if events := started.Read(w); len(events) != 0 {
		t.Fatalf("overlap should be reported once, got %+v", events)
	}
}

func TestPhysicsInactiveDoesNotStep(t *testing.T) {
	w, sched, ps, player, _ := physicsWorld(t, "spawn { pos 0 0.5 0 }")
	ps.SetActive(false)
	for i := 0; i < 10; i++ {
		sched.Update(w)
	}
	pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	if pt.Position != entity.DefaultSpawnPosition {
		t.Fatalf("paused physics moved the player to %v", pt.Position)
	}

	ps.SetActive(true)
	sched.Update(w)
	if pt.Position.Y() >= entity.DefaultSpawnPosition.Y() {
		t.Fatalf("resumed physics should apply gravity, got %v", pt.Position)
	}
}

func TestBallBoxNormals(t *testing.T) {
	box := component.NewTransform(mgl32.Vec3{0, -0.1, 0})
	half := mgl32.Vec3{5, 0.1, 5}
	cases := []struct {
		name   string
		center mgl32.Vec3
		hit    bool
		normal mgl32.Vec3
	}{
		{"above_touching", mgl32.Vec3{0, 0.45, 0}, true, mgl32.Vec3{0, 1, 0}},
		{"above_clear", mgl32.Vec3{0, 0.6, 0}, false, mgl32.Vec3{}},
		{"side", mgl32.Vec3{5.3, -0.1, 0}, true, mgl32.Vec3{1, 0, 0}},
		{"centre_inside", mgl32.Vec3{0, -0.15, 0}, true, mgl32.Vec3{0, -1, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, depth, ok := ballBox(c.center, 0.5, box, half)
			if ok != c.hit {
				t.Fatalf("hit = %v, want %v", ok, c.hit)
			}
			if !ok {
				return
			}
			if depth <= 0 {
				t.Fatalf("expected positive depth, got %v", depth)
			}
			if !n.ApproxEqualThreshold(c.normal, 1e-5) {
				t.Fatalf("normal = %v, want %v", n, c.normal)
			}
		})
	}
}
