package prefabs

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/fxrelay/fx"
)

// RigSpec describes one animated entity: its particle emitters, its animator
// state machine and what each animation event does.
type RigSpec struct {
	Name      string                        `yaml:"name"`
	Transform TransformSpec                 `yaml:"transform"`
	Emitters  []EmitterSpec                 `yaml:"emitters"`
	Animator  AnimatorSpec                  `yaml:"animator"`
	Events    map[string][]EventBindingSpec `yaml:"events"`
}

type TransformSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// EmitterSpec angles are in degrees.
type EmitterSpec struct {
	Name         string        `yaml:"name"`
	Rate         float64       `yaml:"rate"`
	Burst        int           `yaml:"burst"`
	Lifetime     float64       `yaml:"lifetime"`
	SpeedMin     float64       `yaml:"speed_min"`
	SpeedMax     float64       `yaml:"speed_max"`
	Direction    float64       `yaml:"direction"`
	Spread       float64       `yaml:"spread"`
	GravityX     float64       `yaml:"gravity_x"`
	GravityY     float64       `yaml:"gravity_y"`
	OffsetX      float64       `yaml:"offset_x"`
	OffsetY      float64       `yaml:"offset_y"`
	Size         float64       `yaml:"size"`
	Color        string        `yaml:"color"`
	MaxParticles int           `yaml:"max_particles"`
	Loop         bool          `yaml:"loop"`
	Duration     float64       `yaml:"duration"`
	Children     []EmitterSpec `yaml:"children"`
}

type AnimatorSpec struct {
	Initial     string               `yaml:"initial"`
	Parameters  []ParameterSpec      `yaml:"parameters"`
	Clips       map[string]ClipSpec  `yaml:"clips"`
	States      map[string]StateSpec `yaml:"states"`
	Transitions []TransitionSpec     `yaml:"transitions"`
}

// ParameterSpec Type is one of trigger, bool, float, int.
type ParameterSpec struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
}

type ClipSpec struct {
	Frames int              `yaml:"frames"`
	FPS    float64          `yaml:"fps"`
	Loop   bool             `yaml:"loop"`
	Events map[int][]string `yaml:"events"`
}

type StateSpec struct {
	Clip string `yaml:"clip"`
}

// TransitionSpec From "*" matches any state.
type TransitionSpec struct {
	From     string          `yaml:"from"`
	To       string          `yaml:"to"`
	ExitTime bool            `yaml:"exit_time"`
	When     []ConditionSpec `yaml:"when"`
}

// ConditionSpec Op is one of if, if_not, eq, ne, gt, lt.
type ConditionSpec struct {
	Param string `yaml:"param"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
}

// EventBindingSpec is one reaction to an animation event. Exactly one of the
// reaction fields is set. An Action with an empty Effect targets every
// emitter.
type EventBindingSpec struct {
	Effect       string        `yaml:"effect"`
	Action       string        `yaml:"action"`
	Trigger      string        `yaml:"trigger"`
	ResetTrigger string        `yaml:"reset_trigger"`
	Set          *ParamSetSpec `yaml:"set"`
	Random       string        `yaml:"random"`
	Script       string        `yaml:"script"`
	Fire         string        `yaml:"fire"`
	Once         bool          `yaml:"once"`
}

// ParamSetSpec writes exactly one of Bool, Float or Int to Name.
type ParamSetSpec struct {
	Name  string   `yaml:"name"`
	Bool  *bool    `yaml:"bool"`
	Float *float64 `yaml:"float"`
	Int   *int     `yaml:"int"`
}

// BindingKind names the reaction an EventBindingSpec carries.
type BindingKind string

const (
	BindingEffect       BindingKind = "effect"
	BindingTrigger      BindingKind = "trigger"
	BindingResetTrigger BindingKind = "reset_trigger"
	BindingSet          BindingKind = "set"
	BindingRandom       BindingKind = "random"
	BindingScript       BindingKind = "script"
	BindingFire         BindingKind = "fire"
)

// Kind returns the single reaction set on b.
func (b EventBindingSpec) Kind() (BindingKind, error) {
	var kinds []BindingKind
	if b.Action != "" || b.Effect != "" {
		kinds = append(kinds, BindingEffect)
	}
	if b.Trigger != "" {
		kinds = append(kinds, BindingTrigger)
	}
	if b.ResetTrigger != "" {
		kinds = append(kinds, BindingResetTrigger)
	}
	if b.Set != nil {
		kinds = append(kinds, BindingSet)
	}
	if b.Random != "" {
		kinds = append(kinds, BindingRandom)
	}
	if b.Script != "" {
		kinds = append(kinds, BindingScript)
	}
	if b.Fire != "" {
		kinds = append(kinds, BindingFire)
	}
	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("binding has no reaction")
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("binding mixes reactions %v", kinds)
	}
}

// Validate reports structural problems that would stop a rig from building.
func (r *RigSpec) Validate() error {
	if r == nil {
		return errors.New("prefabs: nil rig")
	}
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, errors.New("rig has no name"))
	}
	var walk func(list []EmitterSpec, path string)
	walk = func(list []EmitterSpec, path string) {
		for i, e := range list {
			if strings.TrimSpace(e.Name) == "" {
				errs = append(errs, fmt.Errorf("emitter %s[%d] has no name", path, i))
			}
			if e.SpeedMax != 0 && e.SpeedMax < e.SpeedMin {
				errs = append(errs, fmt.Errorf("emitter %q speed_max < speed_min", e.Name))
			}
			walk(e.Children, path+"/"+e.Name)
		}
	}
	walk(r.Emitters, "")

	for key, bindings := range r.Events {
		for i, b := range bindings {
			kind, err := b.Kind()
			if err != nil {
				errs = append(errs, fmt.Errorf("event %q binding %d: %w", key, i, err))
				continue
			}
			switch kind {
			case BindingEffect:
				if _, err := fx.ParseAction(b.Action); err != nil {
					errs = append(errs, fmt.Errorf("event %q binding %d: %w", key, i, err))
				}
			case BindingSet:
				n := 0
				for _, set := range []bool{b.Set.Bool != nil, b.Set.Float != nil, b.Set.Int != nil} {
					if set {
						n++
					}
				}
				if b.Set.Name == "" || n != 1 {
					errs = append(errs, fmt.Errorf("event %q binding %d: set needs a name and exactly one value", key, i))
				}
			}
		}
	}
	if cycle := r.fireCycle(); cycle != nil {
		errs = append(errs, fmt.Errorf("fire bindings loop: %s", strings.Join(cycle, " -> ")))
	}
	if len(errs) > 0 {
		return fmt.Errorf("prefabs: rig %q: %w", r.Name, errors.Join(errs...))
	}
	return nil
}

// fireCycle returns the first loop of event keys reachable through repeating
// fire bindings, closed by repeating its first key, or nil. A once binding is
// dropped before it runs, so it cannot loop.
func (r *RigSpec) fireCycle() []string {
	const (
		active = iota + 1
		done
	)
	marks := make(map[string]int, len(r.Events))
	var path []string
	var visit func(key string) []string
	visit = func(key string) []string {
		switch marks[key] {
		case active:
			start := slices.Index(path, key)
			return append(slices.Clone(path[start:]), key)
		case done:
			return nil
		}
		marks[key] = active
		path = append(path, key)
		for _, b := range r.Events[key] {
			if b.Fire == "" || b.Once {
				continue
			}
			if cycle := visit(b.Fire); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		marks[key] = done
		return nil
	}
	keys := slices.Sorted(maps.Keys(r.Events))
	for _, key := range keys {
		if cycle := visit(key); cycle != nil {
			return cycle
		}
	}
	return nil
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadRig loads and validates a rig prefab.
func LoadRig(name string) (*RigSpec, error) {
	spec, err := LoadSpec[RigSpec](rigFile(name))
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func rigFile(name string) string {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return name
	}
	return name + ".yaml"
}
