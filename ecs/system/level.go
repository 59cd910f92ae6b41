package system

import (
	"fmt"
	"log"

	"github.com/milk9111/spherefall/assets"
	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/entity"
	"github.com/milk9111/spherefall/levels"
)

// LevelSource is the part of the asset server the level system reads.
type LevelSource interface {
	Level(h assets.Handle) (*levels.Descriptor, uint64, bool)
	Reload(h assets.Handle) error
}

// levelGeneration is one instantiation of one content version of a level.
type levelGeneration struct {
	id        uint64
	handle    assets.Handle
	version   uint64
	roots     []ecs.Entity
	pertinent entity.LevelPertinentEntities
}

// LevelSystem keeps the world's level entities in step with LevelState and
// with the asset server. At most one generation is alive at any time, and
// the previous one is torn down before the next is built.
type LevelSystem struct {
	source      LevelSource
	assetEvents *ecs.EventReader[assets.Event]

	prev           assets.Handle
	current        *levelGeneration
	nextGeneration uint64
}

func NewLevelSystem(source LevelSource) *LevelSystem {
	return &LevelSystem{
		source:      source,
		assetEvents: ecs.NewEventReader(AssetEvents),
	}
}

// Loaded returns the handle and generation of the live level.
func (s *LevelSystem) Loaded() (assets.Handle, uint64, bool) {
	if s == nil || s.current == nil {
		return assets.Handle{}, 0, false
	}
	return s.current.handle, s.current.id, true
}

func (s *LevelSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	desired := desiredLevel(w)
	s.handleReloadRequests(w, desired)

	if desired != s.prev {
		s.prev = desired
		if !desired.Valid() {
			s.unload(w)
		} else if desc, version, ok := s.available(desired); ok && s.stale(desired, version) {
			s.rebuild(w, desired, desc, version)
		}
	}

	built := false
	for _, ev := range s.assetEvents.Read(w) {
		if built {
			continue
		}
		if !desired.Valid() || ev.Handle != desired {
			debugf("Level: ignoring %s event for %s, want %s", ev.Kind, ev.Handle, desired)
			continue
		}
		if !ev.ContentAvailable() {
			log.Printf("Level: load of %s failed, keeping the current level: %v", ev.Handle, ev.Err)
			continue
		}
		desc, version, ok := s.available(ev.Handle)
		if !ok || !s.stale(ev.Handle, version) {
			debugf("Level: %s version %d already built", ev.Handle, ev.Version)
			continue
		}
		s.rebuild(w, ev.Handle, desc, version)
		built = true
	}
}

func desiredLevel(w *ecs.World) assets.Handle {
	e, ok := w.First(component.LevelStateComponent.Kind())
	if !ok {
		return assets.Handle{}
	}
	state, ok := ecs.Get(w, e, component.LevelStateComponent.Kind())
	if !ok {
		return assets.Handle{}
	}
	h, _ := state.Current()
	return h
}

func (s *LevelSystem) available(h assets.Handle) (*levels.Descriptor, uint64, bool) {
	if s.source == nil {
		return nil, 0, false
	}
	return s.source.Level(h)
}

// stale reports whether version of h differs from what is built.
func (s *LevelSystem) stale(h assets.Handle, version uint64) bool {
	return s.current == nil || s.current.handle != h || version > s.current.version
}

func (s *LevelSystem) handleReloadRequests(w *ecs.World, desired assets.Handle) {
	for _, e := range w.Query(component.ReloadRequestComponent.Kind()) {
		w.DestroyEntity(e)
		if !desired.Valid() || s.source == nil {
			continue
		}
		if err := s.source.Reload(desired); err != nil {
			log.Printf("Level: reload %s: %v", desired, err)
		}
	}
}

func (s *LevelSystem) unload(w *ecs.World) {
	if s.current == nil {
		return
	}
	gen, h := s.current.id, s.current.handle
	s.teardown(w)
	ecs.Send(w, LevelRemovedEvents, LevelRemoved{Generation: gen, Handle: h})
	log.Printf("Level: unloaded %s (generation %d)", h, gen)
}

// teardown destroys every entity of the current generation.
func (s *LevelSystem) teardown(w *ecs.World) {
	if s.current == nil {
		return
	}
	removed := 0
	for _, root := range s.current.roots {
		removed += w.DestroyRecursive(root)
	}
	id := s.current.id
	s.current = nil

	if n := ecs.Count(w, component.LevelObjectComponent.Kind()); n != 0 {
		panic(fmt.Sprintf("level system: %d level objects survived teardown of generation %d", n, id))
	}
	debugf("Level: tore down generation %d (%d entities)", id, removed)
}

func (s *LevelSystem) rebuild(w *ecs.World, h assets.Handle, desc *levels.Descriptor, version uint64) {
	prev := s.current
	s.teardown(w)

	s.nextGeneration++
	id := s.nextGeneration
	lvl, err := entity.InstantiateLevel(w, desc, id)
	if err != nil {
		log.Printf("Level: build %s version %d: %v", h, version, err)
		if prev != nil {
			ecs.Send(w, LevelRemovedEvents, LevelRemoved{Generation: prev.id, Handle: prev.handle})
		}
		return
	}
	s.current = &levelGeneration{
		id:        id,
		handle:    h,
		version:   version,
		roots:     lvl.Roots,
		pertinent: lvl.Pertinent,
	}
	ecs.Send(w, LevelLoadedEvents, LevelLoaded{
		Entities:   lvl.Pertinent,
		Generation: id,
		Handle:     h,
		Version:    version,
	})
	log.Printf("Level: loaded %s version %d as generation %d (%d objects)", h, version, id, len(lvl.Roots))
}
