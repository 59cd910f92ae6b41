package entity

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/levels"
)

// DefaultSpawnPosition is used when a level offers no live spawn point.
var DefaultSpawnPosition = mgl32.Vec3{0, 0.5, 0}

// planeHalfThickness is the half height of the slab under every plane.
const planeHalfThickness = 0.1

const (
	cubeMass        = 1
	surfaceFriction = 0.7
)

var (
	cubeColor  = color.RGBA{R: 204, G: 178, B: 153, A: 255}
	planeColor = color.RGBA{R: 77, G: 77, B: 77, A: 255}
	deathColor = color.RGBA{R: 200, G: 40, B: 40, A: 80}
)

// LevelPertinentEntities are the level entities other systems need after a
// load.
type LevelPertinentEntities struct {
	SpawnPoint ecs.Entity
}

// Level is everything one instantiation created. Roots carry LevelObject;
// their descendants are reached through the world hierarchy.
type Level struct {
	Pertinent LevelPertinentEntities
	Roots     []ecs.Entity
}

// InstantiateLevel creates the entities described by desc, tagging every
// root with generation. On error nothing it created is left in the world.
func InstantiateLevel(w *ecs.World, desc *levels.Descriptor, generation uint64) (Level, error) {
	if w == nil {
		return Level{}, errors.New("entity: instantiate level: nil world")
	}
	if desc == nil {
		return Level{}, errors.New("entity: instantiate level: nil descriptor")
	}

	b := &levelBuilder{w: w, generation: generation}
	pertinent, err := b.build(desc)
	if err != nil {
		for _, e := range b.roots {
			w.DestroyRecursive(e)
		}
		return Level{}, fmt.Errorf("entity: instantiate level: %w", err)
	}
	return Level{Pertinent: pertinent, Roots: b.roots}, nil
}

type levelBuilder struct {
	w          *ecs.World
	generation uint64
	roots      []ecs.Entity
}

func (b *levelBuilder) build(desc *levels.Descriptor) (LevelPertinentEntities, error) {
	for i, c := range desc.Cubes {
		if err := b.cube(c); err != nil {
			return LevelPertinentEntities{}, fmt.Errorf("cube %d: %w", i, err)
		}
	}
	for i, p := range desc.Planes {
		if err := b.plane(p); err != nil {
			return LevelPertinentEntities{}, fmt.Errorf("plane %d: %w", i, err)
		}
	}
	for i, d := range desc.DeathPlanes {
		if err := b.deathPlane(d); err != nil {
			return LevelPertinentEntities{}, fmt.Errorf("death plane %d: %w", i, err)
		}
	}
	spawn, err := b.spawn(desc.Spawn)
	if err != nil {
		return LevelPertinentEntities{}, fmt.Errorf("spawn: %w", err)
	}
	return LevelPertinentEntities{SpawnPoint: spawn}, nil
}

// root creates a top-level level entity at t.
func (b *levelBuilder) root(t component.Transform) (ecs.Entity, error) {
	e := b.w.CreateEntity()
	b.roots = append(b.roots, e)
	if err := ecs.Add(b.w, e, component.TransformComponent.Kind(), &t); err != nil {
		return e, err
	}
	if err := ecs.Add(b.w, e, component.LevelObjectComponent.Kind(), &component.LevelObject{Generation: b.generation}); err != nil {
		return e, err
	}
	return e, nil
}

func (b *levelBuilder) cube(spec levels.CubeSpec) error {
	e, err := b.root(Pose(spec.Pos, spec.Rotations))
	if err != nil {
		return err
	}
	half := spec.Size / 2
	if err := ecs.Add(b.w, e, component.MeshComponent.Kind(), &component.Mesh{
		Shape: component.MeshCube,
		Size:  mgl32.Vec3{spec.Size, spec.Size, spec.Size},
		Color: cubeColor,
	}); err != nil {
		return err
	}
	if err := ecs.Add(b.w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Type: component.BodyDynamic,
		Mass: cubeMass,
	}); err != nil {
		return err
	}
	if err := ecs.Add(b.w, e, component.ColliderComponent.Kind(), &component.Collider{
		Shape:       component.ColliderBox,
		HalfExtents: mgl32.Vec3{half, half, half},
		Friction:    surfaceFriction,
	}); err != nil {
		return err
	}
	return ecs.Add(b.w, e, component.VelocityComponent.Kind(), &component.Velocity{})
}

// plane builds a visual quad with a thin fixed slab parented under it, so
// the walkable surface sits exactly at the quad.
func (b *levelBuilder) plane(spec levels.PlaneSpec) error {
	e, err := b.root(Pose(spec.Pos, spec.Rotations))
	if err != nil {
		return err
	}
	if err := ecs.Add(b.w, e, component.MeshComponent.Kind(), &component.Mesh{
		Shape: component.MeshQuad,
		Size:  mgl32.Vec3{spec.Width, 0, spec.Depth},
		Color: planeColor,
	}); err != nil {
		return err
	}

	slab := b.w.CreateEntity()
	if err := b.w.SetParent(slab, e); err != nil {
		b.w.DestroyEntity(slab)
		return err
	}
	local := component.NewTransform(mgl32.Vec3{0, -planeHalfThickness, 0})
	if err := ecs.Add(b.w, slab, component.TransformComponent.Kind(), &local); err != nil {
		return err
	}
	if err := ecs.Add(b.w, slab, component.RigidBodyComponent.Kind(), &component.RigidBody{Type: component.BodyFixed}); err != nil {
		return err
	}
	return ecs.Add(b.w, slab, component.ColliderComponent.Kind(), &component.Collider{
		Shape:       component.ColliderBox,
		HalfExtents: mgl32.Vec3{spec.Width / 2, planeHalfThickness, spec.Depth / 2},
		Friction:    surfaceFriction,
	})
}

// deathPlane builds a sensor cube whose top face is at the authored
// position.
func (b *levelBuilder) deathPlane(spec levels.DeathPlaneSpec) error {
	half := spec.Size / 2
	e, err := b.root(component.NewTransform(spec.Pos.Vec3().Sub(mgl32.Vec3{0, half, 0})))
	if err != nil {
		return err
	}
	if err := ecs.Add(b.w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{Type: component.BodyFixed}); err != nil {
		return err
	}
	if err := ecs.Add(b.w, e, component.ColliderComponent.Kind(), &component.Collider{
		Shape:       component.ColliderBox,
		HalfExtents: mgl32.Vec3{half, half, half},
		Sensor:      true,
	}); err != nil {
		return err
	}
	if err := ecs.Add(b.w, e, component.MeshComponent.Kind(), &component.Mesh{
		Shape: component.MeshCube,
		Size:  mgl32.Vec3{spec.Size, spec.Size, spec.Size},
		Color: deathColor,
	}); err != nil {
		return err
	}
	return ecs.Add(b.w, e, component.DeathObjectComponent.Kind(), &component.DeathObject{})
}

func (b *levelBuilder) spawn(spec levels.SpawnSpec) (ecs.Entity, error) {
	e, err := b.root(component.NewTransform(spec.Pos.Vec3()))
	if err != nil {
		return e, err
	}
	return e, ecs.Add(b.w, e, component.PlayerSpawnPointComponent.Kind(), &component.PlayerSpawnPoint{})
}
