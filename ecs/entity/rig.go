package entity

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"
	"golang.org/x/image/colornames"

	"github.com/milk9111/fxrelay/animator"
	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
	"github.com/milk9111/fxrelay/fx"
	"github.com/milk9111/fxrelay/particle"
	"github.com/milk9111/fxrelay/prefabs"
	"github.com/milk9111/fxrelay/script"
)

// Options tune how a rig is built. Zero values fall back to a fixed seed,
// the package loggers and prefabs.LoadScript.
type Options struct {
	Rand       *rand.Rand
	Logger     *zerolog.Logger
	LoadScript func(name string) ([]byte, error)
	Control    bool
}

type buildContext struct {
	anim     *component.Animator
	effects  *component.Effects
	logger   *zerolog.Logger
	loadText func(name string) ([]byte, error)
}

type bindingBuildFn func(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error)

var bindingRegistry = map[prefabs.BindingKind]bindingBuildFn{
	prefabs.BindingEffect:       bindEffect,
	prefabs.BindingTrigger:      bindTrigger,
	prefabs.BindingResetTrigger: bindResetTrigger,
	prefabs.BindingSet:          bindSet,
	prefabs.BindingRandom:       bindRandom,
	prefabs.BindingScript:       bindScript,
	prefabs.BindingFire:         bindFire,
}

// LoadRig loads a rig prefab by name and builds it.
func LoadRig(w *ecs.World, name string, opts Options) (ecs.Entity, error) {
	spec, err := prefabs.LoadRig(name)
	if err != nil {
		return 0, err
	}
	return BuildRig(w, spec, opts)
}

// BuildRig creates an entity with a transform, effects, animator and event
// log from spec. Every animation event the machine emits is logged and then
// routed through the rig's AnimationEvents.
func BuildRig(w *ecs.World, spec *prefabs.RigSpec, opts Options) (ecs.Entity, error) {
	if spec == nil {
		return 0, fmt.Errorf("rig: nil spec")
	}
	if err := spec.Validate(); err != nil {
		return 0, fmt.Errorf("rig %q: %w", spec.Name, err)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	loadText := opts.LoadScript
	if loadText == nil {
		loadText = prefabs.LoadScript
	}

	effects := &component.Effects{}
	var targets []fx.NamedTarget
	for _, es := range spec.Emitters {
		em, err := buildEmitter(es, rng, &targets)
		if err != nil {
			return 0, fmt.Errorf("rig %q: %w", spec.Name, err)
		}
		effects.Emitters = append(effects.Emitters, em)
	}
	effects.Dispatcher = fx.NewDispatcher(spec.Name, targets...)
	effects.Dispatcher.Logger = opts.Logger
	effects.Dispatcher.Initialize()

	machine, err := animator.Compile(spec.Name, spec.Animator)
	if err != nil {
		return 0, err
	}
	machine.Logger = opts.Logger
	events := fx.NewAnimationEvents(machine)
	events.Logger = opts.Logger
	events.SetRandomSource(rng.Float64)

	anim := &component.Animator{
		Rig:     spec.Name,
		Machine: machine,
		Events:  events,
		Scripts: make(map[string]*script.Runtime),
	}
	eventLog := &component.EventLog{}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{
		anim:     anim,
		effects:  effects,
		logger:   opts.Logger,
		loadText: loadText,
	}

	keys := make([]string, 0, len(spec.Events))
	for key := range spec.Events {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for i, b := range spec.Events[key] {
			kind, err := b.Kind()
			if err != nil {
				ecs.DestroyEntity(w, e)
				return 0, fmt.Errorf("rig %q: event %q binding %d: %w", spec.Name, key, i, err)
			}
			cb, err := bindingRegistry[kind](ctx, b)
			if err != nil {
				ecs.DestroyEntity(w, e)
				return 0, fmt.Errorf("rig %q: event %q binding %d: %w", spec.Name, key, i, err)
			}
			if b.Once {
				events.SubscribeOnce(key, cb)
			} else {
				events.Subscribe(key, cb)
			}
		}
	}

	machine.OnEvent = func(key string) {
		eventLog.Push(component.EventLogEntry{Tick: anim.Tick, Key: key, State: machine.Current()})
		w.Events().Push(ecs.Event{Type: ecs.EventAnimation, Entity: e, Data: key})
		events.Fire(key)
	}
	machine.OnStateChange = func(from, to string) {
		eventLog.Push(component.EventLogEntry{Tick: anim.Tick, Key: "-> " + to, State: from})
		w.Events().Push(ecs.Event{Type: ecs.EventStateChange, Entity: e, Data: to})
	}

	err = attach(w, e,
		func() error {
			return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: spec.Transform.X, Y: spec.Transform.Y})
		},
		func() error { return ecs.Add(w, e, component.EffectsComponent.Kind(), effects) },
		func() error { return ecs.Add(w, e, component.AnimatorComponent.Kind(), anim) },
		func() error { return ecs.Add(w, e, component.EventLogComponent.Kind(), eventLog) },
		func() error {
			if !opts.Control {
				return nil
			}
			ctrl := &component.Control{}
			if p, ok := machine.Param("grounded"); ok {
				ctrl.Grounded = p.Bool
			}
			return ecs.Add(w, e, component.ControlComponent.Kind(), ctrl)
		},
	)
	if err != nil {
		return 0, fmt.Errorf("rig %q: %w", spec.Name, err)
	}
	return e, nil
}

// attach runs each step in order and destroys e at the first failure.
func attach(w *ecs.World, e ecs.Entity, steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			ecs.DestroyEntity(w, e)
			return err
		}
	}
	return nil
}

// buildEmitter converts spec into an emitter tree and registers every node
// as a dispatcher target.
func buildEmitter(spec prefabs.EmitterSpec, rng *rand.Rand, targets *[]fx.NamedTarget) (*particle.Emitter, error) {
	col, err := parseColor(spec.Color)
	if err != nil {
		return nil, fmt.Errorf("emitter %q: %w", spec.Name, err)
	}
	cfg := particle.Config{
		Rate:         spec.Rate,
		Burst:        spec.Burst,
		Lifetime:     spec.Lifetime,
		SpeedMin:     spec.SpeedMin,
		SpeedMax:     spec.SpeedMax,
		Direction:    spec.Direction * math.Pi / 180,
		Spread:       spec.Spread * math.Pi / 180,
		Gravity:      cp.Vector{X: spec.GravityX, Y: spec.GravityY},
		Offset:       cp.Vector{X: spec.OffsetX, Y: spec.OffsetY},
		Size:         spec.Size,
		Color:        col,
		MaxParticles: spec.MaxParticles,
		Loop:         spec.Loop,
		Duration:     spec.Duration,
	}
	em := particle.NewEmitter(spec.Name, cfg, rng)
	*targets = append(*targets, fx.NamedTarget{Name: spec.Name, Effect: em})
	for _, cs := range spec.Children {
		child, err := buildEmitter(cs, rng, targets)
		if err != nil {
			return nil, err
		}
		em.AddChild(child)
	}
	return em, nil
}

func parseColor(name string) (color.RGBA, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return color.RGBA{}, nil
	}
	c, ok := colornames.Map[name]
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}

func bindEffect(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error) {
	action, err := fx.ParseAction(b.Action)
	if err != nil {
		return nil, err
	}
	d := ctx.effects.Dispatcher
	if b.Effect != "" {
		if _, ok := d.Lookup(b.Effect); !ok {
			return nil, fmt.Errorf("%w: %q", fx.ErrTargetNotFound, b.Effect)
		}
	}
	target := b.Effect
	return func() { _ = d.Command(target, action) }, nil
}

func bindTrigger(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error) {
	ev, name := ctx.anim.Events, b.Trigger
	return func() { ev.Trigger(name) }, nil
}

func bindResetTrigger(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error) {
	ev, name := ctx.anim.Events, b.ResetTrigger
	return func() { ev.ResetTrigger(name) }, nil
}

func bindSet(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error) {
	ev, set := ctx.anim.Events, *b.Set
	switch {
	case set.Bool != nil:
		v := *set.Bool
		return func() { ev.SetBool(set.Name, v) }, nil
	case set.Float != nil:
		v := *set.Float
		return func() { ev.SetFloat(set.Name, v) }, nil
	case set.Int != nil:
		v := *set.Int
		return func() { ev.SetInteger(set.Name, v) }, nil
	}
	return nil, fmt.Errorf("set %q has no value", set.Name)
}

func bindRandom(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error) {
	ev, name := ctx.anim.Events, b.Random
	return func() { ev.SetRandomFloat(name) }, nil
}

func bindFire(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error) {
	ev, key := ctx.anim.Events, b.Fire
	return func() { ev.Fire(key) }, nil
}

// bindScript compiles each script once per rig; bindings naming the same
// script share its state.
func bindScript(ctx *buildContext, b prefabs.EventBindingSpec) (fx.Callback, error) {
	if rt, ok := ctx.anim.Scripts[b.Script]; ok {
		return rt.Callback(), nil
	}
	src, err := ctx.loadText(b.Script)
	if err != nil {
		return nil, err
	}
	rt, err := script.Compile(b.Script, src, script.Host{
		Dispatcher: ctx.effects.Dispatcher,
		Events:     ctx.anim.Events,
		Logger:     ctx.logger,
	})
	if err != nil {
		return nil, err
	}
	ctx.anim.Scripts[b.Script] = rt
	return rt.Callback(), nil
}
