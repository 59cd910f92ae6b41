package system

import (
	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
)

// Publisher receives lifecycle notifications for external tooling.
type Publisher interface {
	Publish(kind string, payload any)
}

type LevelStatus struct {
	Handle     string `json:"handle"`
	Generation uint64 `json:"generation"`
	Version    uint64 `json:"version,omitempty"`
	Objects    int    `json:"objects"`
	Entities   int    `json:"entities"`
	Tick       uint64 `json:"tick"`
}

// InspectorSystem forwards level lifecycle events to a Publisher.
type InspectorSystem struct {
	pub     Publisher
	loaded  *ecs.EventReader[LevelLoaded]
	removed *ecs.EventReader[LevelRemoved]
}

func NewInspectorSystem(pub Publisher) *InspectorSystem {
	return &InspectorSystem{
		pub:     pub,
		loaded:  ecs.NewEventReader(LevelLoadedEvents),
		removed: ecs.NewEventReader(LevelRemovedEvents),
	}
}

func (s *InspectorSystem) Update(w *ecs.World) {
	if s == nil || s.pub == nil || w == nil {
		return
	}
	objects := ecs.Count(w, component.LevelObjectComponent.Kind())
	for _, ev := range s.removed.Read(w) {
		s.pub.Publish("level_removed", LevelStatus{
			Handle:     ev.Handle.String(),
			Generation: ev.Generation,
			Objects:    objects,
			Entities:   w.Len(),
			Tick:       w.Tick(),
		})
	}
	for _, ev := range s.loaded.Read(w) {
		s.pub.Publish("level_loaded", LevelStatus{
			Handle:     ev.Handle.String(),
			Generation: ev.Generation,
			Version:    ev.Version,
			Objects:    objects,
			Entities:   w.Len(),
			Tick:       w.Tick(),
		})
	}
}
