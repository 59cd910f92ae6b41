package ecs

import "testing"

func TestHierarchy(t *testing.T) {
	t.Run("destroy_recursive", func(t *testing.T) {
		w := NewWorld()
		root := w.CreateEntity()
		child := w.CreateEntity()
		grandchild := w.CreateEntity()
		other := w.CreateEntity()
		if err := w.SetParent(child, root); err != nil {
			t.Fatal(err)
		}
		if err := w.SetParent(grandchild, child); err != nil {
			t.Fatal(err)
		}

		if n := w.DestroyRecursive(root); n != 3 {
			t.Fatalf("expected 3 entities removed, got %d", n)
		}
		for _, e := range []Entity{root, child, grandchild} {
			if w.IsAlive(e) {
				t.Fatalf("%v survived DestroyRecursive", e)
			}
		}
		if !w.IsAlive(other) || w.Len() != 1 {
			t.Fatalf("unrelated entity affected, len=%d", w.Len())
		}
	})

	t.Run("destroy_detaches_children", func(t *testing.T) {
		w := NewWorld()
		parent := w.CreateEntity()
		child := w.CreateEntity()
		if err := w.SetParent(child, parent); err != nil {
			t.Fatal(err)
		}
		w.DestroyEntity(parent)
		if !w.IsAlive(child) {
			t.Fatalf("DestroyEntity should leave children alive")
		}
		if _, ok := w.Parent(child); ok {
			t.Fatalf("child still points at a destroyed parent")
		}
	})

	t.Run("reparent", func(t *testing.T) {
		w := NewWorld()
		a := w.CreateEntity()
		b := w.CreateEntity()
		c := w.CreateEntity()
		if err := w.SetParent(c, a); err != nil {
			t.Fatal(err)
		}
		if err := w.SetParent(c, b); err != nil {
			t.Fatal(err)
		}
		if len(w.Children(a)) != 0 {
			t.Fatalf("old parent still lists the child: %v", w.Children(a))
		}
		if p, ok := w.Parent(c); !ok || p != b {
			t.Fatalf("expected parent %v, got %v", b, p)
		}
	})

	t.Run("rejects_cycles", func(t *testing.T) {
		w := NewWorld()
		a := w.CreateEntity()
		b := w.CreateEntity()
		if err := w.SetParent(b, a); err != nil {
			t.Fatal(err)
		}
		if err := w.SetParent(a, b); err == nil {
			t.Fatalf("expected a cycle error")
		}
		if err := w.SetParent(a, a); err == nil {
			t.Fatalf("expected a self-parent error")
		}
	})
}
