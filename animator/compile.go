package animator

import (
	"fmt"
	"sort"

	"github.com/milk9111/fxrelay/prefabs"
)

// Compile builds a Machine from an animator prefab.
func Compile(name string, spec prefabs.AnimatorSpec) (*Machine, error) {
	if spec.Initial == "" {
		return nil, fmt.Errorf("animator: %s: missing initial state", name)
	}
	m := New(name)

	for _, ps := range spec.Parameters {
		if ps.Name == "" {
			return nil, fmt.Errorf("animator: %s: parameter without a name", name)
		}
		kind, err := ParseParamKind(ps.Type)
		if err != nil {
			return nil, fmt.Errorf("animator: %s: parameter %q: %w", name, ps.Name, err)
		}
		p := Param{Kind: kind}
		switch kind {
		case ParamBool, ParamTrigger:
			p.Bool = asBool(ps.Default)
		case ParamFloat:
			p.Float = asFloat(ps.Default)
		case ParamInt:
			p.Int = int(asFloat(ps.Default))
		}
		m.DefineParam(ps.Name, p)
	}

	clipNames := make([]string, 0, len(spec.Clips))
	for n := range spec.Clips {
		clipNames = append(clipNames, n)
	}
	sort.Strings(clipNames)
	for _, cn := range clipNames {
		cs := spec.Clips[cn]
		if cs.Frames <= 0 {
			return nil, fmt.Errorf("animator: %s: clip %q has no frames", name, cn)
		}
		clip := &Clip{Name: cn, Frames: cs.Frames, FPS: cs.FPS, Loop: cs.Loop}
		frames := make([]int, 0, len(cs.Events))
		for f := range cs.Events {
			frames = append(frames, f)
		}
		sort.Ints(frames)
		for _, f := range frames {
			if f < 0 || f >= cs.Frames {
				return nil, fmt.Errorf("animator: %s: clip %q event frame %d out of range", name, cn, f)
			}
			for _, key := range cs.Events[f] {
				clip.AddEvent(f, key)
			}
		}
		m.AddClip(clip)
	}

	for sn, ss := range spec.States {
		if _, ok := m.clips[ss.Clip]; !ok {
			return nil, fmt.Errorf("animator: %s: state %q plays unknown clip %q", name, sn, ss.Clip)
		}
		m.AddState(sn, ss.Clip)
	}
	if _, ok := m.states[spec.Initial]; !ok {
		return nil, fmt.Errorf("animator: %s: initial state %q not defined", name, spec.Initial)
	}
	m.SetInitial(spec.Initial)

	for i, ts := range spec.Transitions {
		if ts.From != AnyState {
			if _, ok := m.states[ts.From]; !ok {
				return nil, fmt.Errorf("animator: %s: transition %d from unknown state %q", name, i, ts.From)
			}
		}
		if _, ok := m.states[ts.To]; !ok {
			return nil, fmt.Errorf("animator: %s: transition %d to unknown state %q", name, i, ts.To)
		}
		t := Transition{From: ts.From, To: ts.To, ExitTime: ts.ExitTime}
		for _, cs := range ts.When {
			c, err := m.compileCondition(cs)
			if err != nil {
				return nil, fmt.Errorf("animator: %s: transition %s->%s: %w", name, ts.From, ts.To, err)
			}
			t.Conditions = append(t.Conditions, c)
		}
		m.AddTransition(t)
	}

	return m, nil
}

func (m *Machine) compileCondition(cs prefabs.ConditionSpec) (Condition, error) {
	p, ok := m.params[cs.Param]
	if !ok {
		return Condition{}, fmt.Errorf("unknown parameter %q", cs.Param)
	}
	op := Op(cs.Op)
	switch op {
	case OpIf, OpIfNot:
		if p.Kind != ParamBool && p.Kind != ParamTrigger {
			return Condition{}, fmt.Errorf("op %q needs a bool or trigger, %q is %v", op, cs.Param, p.Kind)
		}
	case OpGt, OpLt:
		if p.Kind != ParamFloat && p.Kind != ParamInt {
			return Condition{}, fmt.Errorf("op %q needs a number, %q is %v", op, cs.Param, p.Kind)
		}
	case OpEq, OpNe:
		if p.Kind == ParamTrigger {
			return Condition{}, fmt.Errorf("op %q cannot test trigger %q", op, cs.Param)
		}
	default:
		return Condition{}, fmt.Errorf("unknown op %q", cs.Op)
	}
	v := asFloat(cs.Value)
	if b, isBool := cs.Value.(bool); isBool && b {
		v = 1
	}
	return Condition{Param: cs.Param, Op: op, Value: v}, nil
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float64:
		return t
	case float32:
		return float64(t)
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}
