package ecs

import "github.com/milk9111/spherefall/ecs/component"

// ComponentID identifies a component storage.
type ComponentID = component.ComponentID

// World owns entities, component storages, the entity hierarchy and the
// per-kind event queues.
type World struct {
	entities entityStore
	stores   map[ComponentID]*SparseSet

	parents  map[Entity]Entity
	children map[Entity][]Entity

	events map[uint32]eventStore
	tick   uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:   make(map[ComponentID]*SparseSet),
		parents:  make(map[Entity]Entity),
		children: make(map[Entity][]Entity),
		events:   make(map[uint32]eventStore),
	}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes e and all of its components. Children of e are
// detached and survive; use DestroyRecursive to remove a whole subtree.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(e.id())
	}
	w.detach(e)
	for _, c := range w.children[e] {
		delete(w.parents, c)
	}
	delete(w.children, e)
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// Len returns the number of live entities.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.count
}

// Tick returns the number of completed scheduler ticks.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// AddComponent attaches value under the given component id.
func (w *World) AddComponent(e Entity, id ComponentID, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	s := w.stores[id]
	if s == nil {
		s = &SparseSet{}
		w.stores[id] = s
	}
	s.Set(e.id(), value)
	return nil
}

// RemoveComponent detaches the component stored under id.
func (w *World) RemoveComponent(e Entity, id ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.stores[id].Remove(e.id())
}

// HasComponent reports whether e owns a component under id.
func (w *World) HasComponent(e Entity, id ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.stores[id].Has(e.id())
}

// GetComponent returns the raw component stored under id.
func (w *World) GetComponent(e Entity, id ComponentID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	v := w.stores[id].Get(e.id())
	return v, v != nil
}

func (w *World) store(id ComponentID) *SparseSet {
	if w == nil {
		return nil
	}
	return w.stores[id]
}

func (w *World) endTick() {
	for _, q := range w.events {
		q.advance()
	}
	w.tick++
}
