package ecs

import "github.com/milk9111/fxrelay/ecs/component"

// Kind is any component kind, used where the value type does not matter.
type Kind interface {
	ID() component.ComponentID
}

// Query returns the live entities that have every kind, in the storage order
// of the first kind.
func (w *World) Query(kinds ...Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		s := w.store(k.ID(), false)
		if s == nil {
			return nil
		}
		sets = append(sets, s)
	}
	var out []Entity
	for _, id := range sets[0].ids() {
		ok := true
		for _, s := range sets[1:] {
			if !s.Has(id) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if e, alive := w.entity(id); alive {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first live entity with kind.
func (w *World) First(kind Kind) (Entity, bool) {
	s := w.store(kind.ID(), false)
	for _, id := range s.ids() {
		if e, alive := w.entity(id); alive {
			return e, true
		}
	}
	return 0, false
}
