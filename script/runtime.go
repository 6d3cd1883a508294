// Package script runs tengo snippets as animation event callbacks. Scripts
// drive effects and animator parameters through a fixed set of host
// functions.
package script

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/rs/zerolog"

	"github.com/milk9111/fxrelay/fx"
	"github.com/milk9111/fxrelay/internal/logging"
)

var zlog = logging.Default()

// SetLogger installs the package logger used by scripts without one.
func SetLogger(l zerolog.Logger) { zlog = l }

// Host is what a script can reach.
type Host struct {
	Dispatcher *fx.Dispatcher
	Events     *fx.AnimationEvents
	Logger     *zerolog.Logger
}

// Runtime is a compiled script. State persists between runs and is exposed to
// the script as the `state` map.
type Runtime struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	host     Host
	running  bool
}

// Compile compiles src with the host functions bound.
func Compile(name string, src []byte, host Host) (*Runtime, error) {
	rt := &Runtime{
		name:  name,
		state: &tengo.Map{Value: map[string]tengo.Object{}},
		host:  host,
	}

	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := s.Add("state", rt.state); err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	for fname, fn := range rt.functions() {
		if err := s.Add(fname, &tengo.UserFunction{Name: fname, Value: fn}); err != nil {
			return nil, fmt.Errorf("script: %s: %w", name, err)
		}
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	rt.compiled = compiled
	return rt, nil
}

// Run executes the script once. A run started from inside the same script,
// through fire or an event bound to it, is skipped.
func (rt *Runtime) Run() error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("script: nil runtime")
	}
	if rt.running {
		rt.log().Warn().Str("script", rt.name).Msg("script: already running, skipping nested run")
		return nil
	}
	rt.running = true
	defer func() { rt.running = false }()
	if err := rt.compiled.Set("state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Run(); err != nil {
		return fmt.Errorf("script: %s: %w", rt.name, err)
	}
	return nil
}

// Callback wraps Run for fx.AnimationEvents; errors are logged.
func (rt *Runtime) Callback() fx.Callback {
	return func() {
		if err := rt.Run(); err != nil {
			rt.log().Error().Err(err).Str("script", rt.name).Msg("script: run failed")
		}
	}
}

// State returns the persisted value of key, converted to a Go value.
func (rt *Runtime) State(key string) any {
	if rt == nil {
		return nil
	}
	obj, ok := rt.state.Value[key]
	if !ok {
		return nil
	}
	return objectToAny(obj)
}

func (rt *Runtime) log() *zerolog.Logger {
	if rt.host.Logger != nil {
		return rt.host.Logger
	}
	return &zlog
}

type callable = func(args ...tengo.Object) (tengo.Object, error)

func (rt *Runtime) functions() map[string]callable {
	effect := func(action fx.Action) callable {
		return func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) > 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			name := ""
			if len(args) == 1 {
				name = objectAsString(args[0])
			}
			if rt.host.Dispatcher == nil {
				return tengo.FalseValue, nil
			}
			if err := rt.host.Dispatcher.Command(name, action); err != nil {
				return tengo.FalseValue, nil
			}
			return tengo.TrueValue, nil
		}
	}
	named := func(f func(ev *fx.AnimationEvents, name string)) callable {
		return func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			if rt.host.Events != nil {
				f(rt.host.Events, objectAsString(args[0]))
			}
			return tengo.UndefinedValue, nil
		}
	}
	valued := func(f func(ev *fx.AnimationEvents, name string, v tengo.Object) error) callable {
		return func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			if rt.host.Events == nil {
				return tengo.UndefinedValue, nil
			}
			if err := f(rt.host.Events, objectAsString(args[0]), args[1]); err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, nil
		}
	}

	return map[string]callable{
		"play":  effect(fx.ActionPlay),
		"pause": effect(fx.ActionPause),
		"stop":  effect(fx.ActionStop),
		"clear": effect(fx.ActionClear),

		"trigger":          named((*fx.AnimationEvents).Trigger),
		"reset_trigger":    named((*fx.AnimationEvents).ResetTrigger),
		"set_random_float": named((*fx.AnimationEvents).SetRandomFloat),
		"fire":             named((*fx.AnimationEvents).Fire),

		"set_bool": valued(func(ev *fx.AnimationEvents, name string, v tengo.Object) error {
			ev.SetBool(name, !v.IsFalsy())
			return nil
		}),
		"set_float": valued(func(ev *fx.AnimationEvents, name string, v tengo.Object) error {
			f, ok := tengo.ToFloat64(v)
			if !ok {
				return tengo.ErrInvalidArgumentType{Name: "value", Expected: "float", Found: v.TypeName()}
			}
			ev.SetFloat(name, f)
			return nil
		}),
		"set_int": valued(func(ev *fx.AnimationEvents, name string, v tengo.Object) error {
			i, ok := tengo.ToInt(v)
			if !ok {
				return tengo.ErrInvalidArgumentType{Name: "value", Expected: "int", Found: v.TypeName()}
			}
			ev.SetInteger(name, i)
			return nil
		}),

		"log": func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, objectAsString(a))
			}
			rt.log().Info().Str("script", rt.name).Msg(strings.Join(parts, " "))
			return tengo.UndefinedValue, nil
		},
	}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
