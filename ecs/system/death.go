package system

import (
	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/entity"
)

// DeathSystem sends the player back to the spawn point when it touches a
// death object. Only the first qualifying collision of a tick counts.
type DeathSystem struct {
	collisions *ecs.EventReader[CollisionStarted]
	// OnDeath, when set, is called with the death object that was hit.
	OnDeath func(player, killer ecs.Entity)
}

func NewDeathSystem() *DeathSystem {
	return &DeathSystem{collisions: ecs.NewEventReader(CollisionStartedEvents)}
}

func (s *DeathSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	events := s.collisions.Read(w)
	if len(events) == 0 {
		return
	}
	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}

	for _, ev := range events {
		other, ok := ev.Involves(player)
		if !ok || !ecs.Has(w, other, component.DeathObjectComponent.Kind()) {
			continue
		}
		spawn, ok := w.First(component.PlayerSpawnPointComponent.Kind())
		if !ok {
			debugf("Death: player hit %v but no spawn point exists", other)
			return
		}
		t, ok := entity.WorldTransform(w, spawn)
		if !ok {
			return
		}
		if err := ecs.Add(w, player, component.RespawnRequestComponent.Kind(), &component.RespawnRequest{Position: t.Position}); err != nil {
			panic("death system: add respawn request: " + err.Error())
		}
		debugf("Death: player hit %v, respawning at %v", other, t.Position)
		if s.OnDeath != nil {
			s.OnDeath(player, other)
		}
		return
	}
}
