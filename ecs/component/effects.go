package component

import (
	"github.com/milk9111/fxrelay/fx"
	"github.com/milk9111/fxrelay/particle"
)

// Effects holds an entity's particle emitters and the dispatcher that
// addresses them by name. Emitters lists root emitters only; children are
// updated through their parent.
type Effects struct {
	Dispatcher *fx.Dispatcher
	Emitters   []*particle.Emitter
}

// Alive counts live particles across every emitter tree.
func (e *Effects) Alive() int {
	n := 0
	for _, em := range e.Emitters {
		n += em.Alive()
	}
	return n
}

var EffectsComponent = NewComponent[Effects]()
