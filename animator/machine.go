package animator

import (
	"github.com/rs/zerolog"
)

// AnyState as a transition source matches whatever state is current.
const AnyState = "*"

// Op compares a parameter against a condition value.
type Op string

const (
	OpIf    Op = "if"
	OpIfNot Op = "if_not"
	OpEq    Op = "eq"
	OpNe    Op = "ne"
	OpGt    Op = "gt"
	OpLt    Op = "lt"
)

type Condition struct {
	Param string
	Op    Op
	Value float64
}

// Transition moves From to To once every condition holds and, with ExitTime,
// the current clip has played through.
type Transition struct {
	From       string
	To         string
	ExitTime   bool
	Conditions []Condition
}

// Machine is a parameterised animation state machine. Each state plays one
// clip; frame events are handed to OnEvent.
type Machine struct {
	Name          string
	Logger        *zerolog.Logger
	OnEvent       func(key string)
	OnStateChange func(from, to string)

	initial     string
	params      map[string]*Param
	paramOrder  []string
	clips       map[string]*Clip
	states      map[string]string
	transitions []Transition
	current     string
	player      player
}

func New(name string) *Machine {
	return &Machine{
		Name:   name,
		params: make(map[string]*Param),
		clips:  make(map[string]*Clip),
		states: make(map[string]string),
	}
}

// DefineParam declares a parameter with its initial value. Redefining a
// parameter replaces it.
func (m *Machine) DefineParam(name string, p Param) {
	if _, ok := m.params[name]; !ok {
		m.paramOrder = append(m.paramOrder, name)
	}
	v := p
	m.params[name] = &v
}

func (m *Machine) AddClip(c *Clip) {
	if c == nil {
		return
	}
	m.clips[c.Name] = c
}

// AddState registers a state playing clip.
func (m *Machine) AddState(name, clip string) {
	m.states[name] = clip
}

func (m *Machine) AddTransition(t Transition) {
	m.transitions = append(m.transitions, t)
}

func (m *Machine) SetInitial(state string) { m.initial = state }

func (m *Machine) Initial() string { return m.initial }

// Current returns the active state, empty before the first Update.
func (m *Machine) Current() string { return m.current }

// Frame returns the frame index of the active clip.
func (m *Machine) Frame() int { return m.player.frame }

// Param returns the current value of name.
func (m *Machine) Param(name string) (Param, bool) {
	p, ok := m.params[name]
	if !ok {
		return Param{}, false
	}
	return *p, true
}

// Params returns parameter names in declaration order.
func (m *Machine) Params() []string {
	return append([]string(nil), m.paramOrder...)
}

// States returns the number of states.
func (m *Machine) States() int { return len(m.states) }

// Clips returns every clip keyed by name.
func (m *Machine) Clips() map[string]*Clip { return m.clips }

// Play jumps straight to state, restarting its clip.
func (m *Machine) Play(state string) {
	if _, ok := m.states[state]; !ok {
		m.log().Warn().Str("animator", m.Name).Str("state", state).Msg("animator: unknown state")
		return
	}
	m.enter(state)
}

// Update runs one tick: enter the initial state if needed, take at most one
// transition, then advance the clip.
func (m *Machine) Update() {
	if m == nil {
		return
	}
	if m.current == "" {
		if m.initial == "" {
			return
		}
		m.enter(m.initial)
	}
	if t, ok := m.pick(); ok {
		m.consumeTriggers(t)
		m.enter(t.To)
	}
	m.player.advance(m.emit)
}

func (m *Machine) pick() (Transition, bool) {
	for _, t := range m.transitions {
		if t.From != m.current && t.From != AnyState {
			continue
		}
		if t.From == AnyState && t.To == m.current {
			continue
		}
		if t.ExitTime && !m.player.done() {
			continue
		}
		if m.holds(t.Conditions) {
			return t, true
		}
	}
	return Transition{}, false
}

func (m *Machine) holds(conds []Condition) bool {
	for _, c := range conds {
		p, ok := m.params[c.Param]
		if !ok {
			return false
		}
		var pass bool
		switch c.Op {
		case OpIf:
			pass = p.Number() != 0
		case OpIfNot:
			pass = p.Number() == 0
		case OpEq:
			pass = p.Number() == c.Value
		case OpNe:
			pass = p.Number() != c.Value
		case OpGt:
			pass = p.Number() > c.Value
		case OpLt:
			pass = p.Number() < c.Value
		}
		if !pass {
			return false
		}
	}
	return true
}

func (m *Machine) consumeTriggers(t Transition) {
	for _, c := range t.Conditions {
		if p, ok := m.params[c.Param]; ok && p.Kind == ParamTrigger {
			p.Bool = false
		}
	}
}

func (m *Machine) enter(state string) {
	prev := m.current
	m.current = state
	m.player.reset(m.clips[m.states[state]])
	m.log().Debug().Str("animator", m.Name).Str("from", prev).Str("to", state).Msg("animator: state change")
	if m.OnStateChange != nil {
		m.OnStateChange(prev, state)
	}
}

func (m *Machine) emit(key string) {
	if m.OnEvent != nil {
		m.OnEvent(key)
	}
}

func (m *Machine) param(name string, kind ParamKind) *Param {
	p, ok := m.params[name]
	if !ok {
		m.log().Warn().Str("animator", m.Name).Str("param", name).Msg("animator: parameter does not exist")
		return nil
	}
	if p.Kind != kind {
		m.log().Warn().Str("animator", m.Name).Str("param", name).
			Stringer("want", kind).Stringer("have", p.Kind).Msg("animator: parameter type mismatch")
		return nil
	}
	return p
}

func (m *Machine) SetTrigger(name string) {
	if p := m.param(name, ParamTrigger); p != nil {
		p.Bool = true
	}
}

func (m *Machine) ResetTrigger(name string) {
	if p := m.param(name, ParamTrigger); p != nil {
		p.Bool = false
	}
}

func (m *Machine) SetBool(name string, v bool) {
	if p := m.param(name, ParamBool); p != nil {
		p.Bool = v
	}
}

func (m *Machine) SetFloat(name string, v float64) {
	if p := m.param(name, ParamFloat); p != nil {
		p.Float = v
	}
}

func (m *Machine) SetInteger(name string, v int) {
	if p := m.param(name, ParamInt); p != nil {
		p.Int = v
	}
}

func (m *Machine) log() *zerolog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return &zlog
}
