package system

import (
	"github.com/milk9111/spherefall/assets"
	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/entity"
)

// LevelLoaded is sent once per instantiated level generation.
type LevelLoaded struct {
	Entities   entity.LevelPertinentEntities
	Generation uint64
	Handle     assets.Handle
	Version    uint64
}

// LevelRemoved is sent when the desired level changes to none while a
// level is loaded.
type LevelRemoved struct {
	Generation uint64
	Handle     assets.Handle
}

// CollisionStarted is sent the first step two colliders overlap.
type CollisionStarted struct {
	A, B   ecs.Entity
	Sensor bool
}

// CollisionStopped is sent when an overlap ends. Removed is set when one
// of the entities lost its collider or was destroyed.
type CollisionStopped struct {
	A, B    ecs.Entity
	Sensor  bool
	Removed bool
}

// Involves reports whether e is one side of the pair, and returns the
// other side.
func (c CollisionStarted) Involves(e ecs.Entity) (ecs.Entity, bool) {
	switch e {
	case c.A:
		return c.B, true
	case c.B:
		return c.A, true
	}
	return 0, false
}

var (
	AssetEvents            = ecs.NewEventKind[assets.Event](64)
	LevelLoadedEvents      = ecs.NewEventKind[LevelLoaded](16)
	LevelRemovedEvents     = ecs.NewEventKind[LevelRemoved](16)
	CollisionStartedEvents = ecs.NewEventKind[CollisionStarted](ecs.DefaultEventCapacity)
	CollisionStoppedEvents = ecs.NewEventKind[CollisionStopped](ecs.DefaultEventCapacity)
)
