package component

// Control marks the entity driven by keyboard input and holds the values the
// input system last wrote to its animator.
type Control struct {
	Speed    float64
	Grounded bool
}

var ControlComponent = NewComponent[Control]()
