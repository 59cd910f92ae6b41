package system

import (
	"errors"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/entity"
)

// ErrStaleSpawnPoint is returned when a spawn point reference no longer
// names a live spawn marker.
var ErrStaleSpawnPoint = errors.New("system: stale spawn point")

// SpawnPosition returns the world position of the spawn marker e.
func SpawnPosition(w *ecs.World, e ecs.Entity) (mgl32.Vec3, error) {
	if !w.IsAlive(e) || !ecs.Has(w, e, component.PlayerSpawnPointComponent.Kind()) {
		return mgl32.Vec3{}, ErrStaleSpawnPoint
	}
	t, ok := entity.WorldTransform(w, e)
	if !ok {
		return mgl32.Vec3{}, ErrStaleSpawnPoint
	}
	return t.Position, nil
}

// PlayerSystem keeps one player and one camera alive and moves the player
// to the spawn point of every newly loaded level.
type PlayerSystem struct {
	// Torque, when positive, replaces the default rolling torque of a newly
	// created player.
	Torque float32

	loaded  *ecs.EventReader[LevelLoaded]
	removed *ecs.EventReader[LevelRemoved]
	spawn   ecs.Entity
}

func NewPlayerSystem() *PlayerSystem {
	return &PlayerSystem{
		loaded:  ecs.NewEventReader(LevelLoadedEvents),
		removed: ecs.NewEventReader(LevelRemovedEvents),
	}
}

func (s *PlayerSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		var err error
		player, err = entity.NewPlayerAt(w, entity.DefaultSpawnPosition)
		if err != nil {
			log.Printf("Player: create player: %v", err)
			return
		}
		if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok && s.Torque > 0 {
			p.Torque = s.Torque
		}
	}
	if _, ok := w.First(component.CameraTagComponent.Kind()); !ok {
		if _, err := entity.NewCameraAt(w, entity.DefaultSpawnPosition); err != nil {
			log.Printf("Player: create camera: %v", err)
		}
	}

	if len(s.removed.Read(w)) > 0 {
		s.spawn = 0
	}

	events := s.loaded.Read(w)
	if len(events) == 0 {
		return
	}
	s.spawn = events[len(events)-1].Entities.SpawnPoint

	pos, err := SpawnPosition(w, s.spawn)
	if err != nil {
		log.Printf("Player: %v, using default spawn %v", err, entity.DefaultSpawnPosition)
		pos = entity.DefaultSpawnPosition
	}
	if err := ecs.Add(w, player, component.RespawnRequestComponent.Kind(), &component.RespawnRequest{Position: pos}); err != nil {
		log.Printf("Player: request respawn: %v", err)
	}
}

// Spawn returns the spawn point of the most recent level, if any.
func (s *PlayerSystem) Spawn() ecs.Entity {
	return s.spawn
}
