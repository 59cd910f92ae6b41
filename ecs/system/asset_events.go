package system

import (
	"github.com/milk9111/spherefall/assets"
	"github.com/milk9111/spherefall/ecs"
)

// AssetDrainer is the non-blocking side of the asset server.
type AssetDrainer interface {
	Drain() []assets.Event
}

// AssetEventSystem moves completed asset loads into the world's event
// queue, so every reader sees them in tick order.
type AssetEventSystem struct {
	source AssetDrainer
}

func NewAssetEventSystem(source AssetDrainer) *AssetEventSystem {
	return &AssetEventSystem{source: source}
}

func (s *AssetEventSystem) Update(w *ecs.World) {
	if s == nil || s.source == nil || w == nil {
		return
	}
	for _, ev := range s.source.Drain() {
		ecs.Send(w, AssetEvents, ev)
	}
}
