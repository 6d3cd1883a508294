package system

import (
	"github.com/milk9111/fxrelay/animator"
	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
)

// ParticleSystem steps every emitter tree by a fixed timestep.
type ParticleSystem struct {
	DT float64
}

func NewParticleSystem() *ParticleSystem {
	return &ParticleSystem{DT: 1.0 / animator.TicksPerSecond}
}

func (p *ParticleSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.EffectsComponent.Kind(), func(e ecs.Entity, fx *component.Effects) {
		for _, em := range fx.Emitters {
			em.Update(p.DT)
		}
	})
}
