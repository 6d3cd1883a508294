package system

import (
	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
)

// AnimatorSystem advances every unpaused animator by one tick. Frame events
// fire synchronously inside the machine update.
type AnimatorSystem struct{}

func NewAnimatorSystem() *AnimatorSystem {
	return &AnimatorSystem{}
}

func (a *AnimatorSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.AnimatorComponent.Kind(), func(e ecs.Entity, anim *component.Animator) {
		if anim.Paused || anim.Machine == nil {
			return
		}
		anim.Tick++
		anim.Machine.Update()
	})
}
