package component

import (
	"github.com/milk9111/fxrelay/animator"
	"github.com/milk9111/fxrelay/fx"
	"github.com/milk9111/fxrelay/script"
)

// Animator drives a state machine whose frame events are routed through
// Events. Scripts are the compiled callbacks subscribed to Events.
type Animator struct {
	Rig     string
	Machine *animator.Machine
	Events  *fx.AnimationEvents
	Scripts map[string]*script.Runtime
	Paused  bool
	Tick    uint64
}

var AnimatorComponent = NewComponent[Animator]()
