package ecs

import "github.com/milk9111/fxrelay/ecs/component"

// World owns entities and their component stores. Entity ids are recycled
// with a bumped generation so stale handles stop resolving.
type World struct {
	gens   []generation
	alive  []bool
	free   []entityID
	stores map[component.ComponentID]*SparseSet
	events EventQueue
}

func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// Events returns the world's per-tick event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	if n := len(w.free); n > 0 {
		id := w.free[n-1]
		w.free = w.free[:n-1]
		w.alive[id-1] = true
		return makeEntity(id, w.gens[id-1])
	}
	w.gens = append(w.gens, 1)
	w.alive = append(w.alive, true)
	id := entityID(len(w.gens))
	return makeEntity(id, 1)
}

// DestroyEntity removes e and all of its components. It returns false when e
// is already dead or stale.
func DestroyEntity(w *World, e Entity) bool {
	if !IsAlive(w, e) {
		return false
	}
	id := e.id()
	for _, s := range w.stores {
		s.Remove(id)
	}
	w.alive[id-1] = false
	w.gens[id-1]++
	w.free = append(w.free, id)
	return true
}

func IsAlive(w *World, e Entity) bool {
	if w == nil || !e.Valid() {
		return false
	}
	id := e.id()
	if id == 0 || int(id) > len(w.gens) {
		return false
	}
	return w.alive[id-1] && w.gens[id-1] == e.generation()
}

// Entities returns every live entity in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, len(w.gens)-len(w.free))
	for i, ok := range w.alive {
		if ok {
			out = append(out, makeEntity(entityID(i+1), w.gens[i]))
		}
	}
	return out
}

func (w *World) entity(id entityID) (Entity, bool) {
	if w == nil || id == 0 || int(id) > len(w.gens) || !w.alive[id-1] {
		return 0, false
	}
	return makeEntity(id, w.gens[id-1]), true
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w == nil {
		return nil
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}
