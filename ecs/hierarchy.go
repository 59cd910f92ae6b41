package ecs

import "fmt"

// SetParent attaches child under parent. A child has at most one parent.
func (w *World) SetParent(child, parent Entity) error {
	if w == nil || !w.IsAlive(child) || !w.IsAlive(parent) {
		return fmt.Errorf("ecs: set parent %v of %v: entity not alive", parent, child)
	}
	if child == parent {
		return fmt.Errorf("ecs: set parent: %v cannot parent itself", child)
	}
	for p, ok := parent, true; ok; p, ok = w.parents[p] {
		if p == child {
			return fmt.Errorf("ecs: set parent %v of %v: cycle", parent, child)
		}
	}
	w.detach(child)
	w.parents[child] = parent
	w.children[parent] = append(w.children[parent], child)
	return nil
}

// Parent returns the parent of e, if any.
func (w *World) Parent(e Entity) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	p, ok := w.parents[e]
	return p, ok
}

// Children returns a copy of the direct children of e.
func (w *World) Children(e Entity) []Entity {
	if w == nil || len(w.children[e]) == 0 {
		return nil
	}
	return append([]Entity(nil), w.children[e]...)
}

// DestroyRecursive destroys e and all of its descendants, children first.
// It returns the number of entities removed.
func (w *World) DestroyRecursive(e Entity) int {
	if w == nil || !w.IsAlive(e) {
		return 0
	}
	n := 0
	for _, c := range w.Children(e) {
		n += w.DestroyRecursive(c)
	}
	if w.DestroyEntity(e) {
		n++
	}
	return n
}

func (w *World) detach(child Entity) {
	parent, ok := w.parents[child]
	if !ok {
		return
	}
	delete(w.parents, child)
	siblings := w.children[parent]
	for i, c := range siblings {
		if c == child {
			siblings = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	if len(siblings) == 0 {
		delete(w.children, parent)
		return
	}
	w.children[parent] = siblings
}
