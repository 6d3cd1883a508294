// Package particle simulates simple 2D particle emitters with nested
// sub-emitters. Emitters satisfy fx.Effect.
package particle

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
)

// State is the playback state of an emitter.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Config describes how an emitter spawns and moves particles. Angles are in
// radians, times in seconds, distances in pixels.
type Config struct {
	Rate         float64
	Burst        int
	Lifetime     float64
	SpeedMin     float64
	SpeedMax     float64
	Direction    float64
	Spread       float64
	Gravity      cp.Vector
	Offset       cp.Vector
	Size         float64
	Color        color.RGBA
	MaxParticles int
	Loop         bool
	Duration     float64
}

const (
	defaultLifetime     = 1.0
	defaultMaxParticles = 256
	defaultSize         = 2.0
)

func (c Config) withDefaults() Config {
	if c.Lifetime <= 0 {
		c.Lifetime = defaultLifetime
	}
	if c.MaxParticles <= 0 {
		c.MaxParticles = defaultMaxParticles
	}
	if c.Size <= 0 {
		c.Size = defaultSize
	}
	if c.SpeedMax < c.SpeedMin {
		c.SpeedMax = c.SpeedMin
	}
	if c.Color == (color.RGBA{}) {
		c.Color = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return c
}

// Particle is one live particle, positioned relative to the emitter origin.
type Particle struct {
	Pos  cp.Vector
	Vel  cp.Vector
	Age  float64
	Life float64
}

// Alpha returns the remaining life fraction in [0,1].
func (p Particle) Alpha() float64 {
	if p.Life <= 0 {
		return 0
	}
	return math.Max(0, 1-p.Age/p.Life)
}

// Emitter spawns particles while playing. Stopping an emitter ends emission
// but lets live particles finish; pausing freezes them.
type Emitter struct {
	Name     string
	Config   Config
	Children []*Emitter

	state     State
	elapsed   float64
	accum     float64
	particles []Particle
	rng       *rand.Rand
}

// NewEmitter creates a stopped emitter. rng may be nil.
func NewEmitter(name string, cfg Config, rng *rand.Rand) *Emitter {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Emitter{
		Name:   name,
		Config: cfg.withDefaults(),
		rng:    rng,
	}
}

// AddChild nests child under e and returns child.
func (e *Emitter) AddChild(child *Emitter) *Emitter {
	if e == nil || child == nil {
		return child
	}
	e.Children = append(e.Children, child)
	return child
}

func (e *Emitter) State() State { return e.state }

// Particles returns the live particles. The slice is reused between updates.
func (e *Emitter) Particles() []Particle { return e.particles }

// Alive returns the live particle count including sub-emitters.
func (e *Emitter) Alive() int {
	if e == nil {
		return 0
	}
	n := len(e.particles)
	for _, c := range e.Children {
		n += c.Alive()
	}
	return n
}

// Play starts emission, or resumes a paused emitter. Playing an emitter that
// is already playing does nothing.
func (e *Emitter) Play(withChildren bool) {
	if e == nil {
		return
	}
	switch e.state {
	case Paused:
		e.state = Playing
	case Stopped:
		e.state = Playing
		e.elapsed = 0
		e.accum = 0
		e.spawn(e.Config.Burst)
	}
	e.cascade(withChildren, func(c *Emitter) { c.Play(true) })
}

// Pause freezes emission and particle motion.
func (e *Emitter) Pause(withChildren bool) {
	if e == nil {
		return
	}
	if e.state == Playing {
		e.state = Paused
	}
	e.cascade(withChildren, func(c *Emitter) { c.Pause(true) })
}

// Stop ends emission. Live particles keep simulating until they expire.
func (e *Emitter) Stop(withChildren bool) {
	if e == nil {
		return
	}
	e.state = Stopped
	e.cascade(withChildren, func(c *Emitter) { c.Stop(true) })
}

// Clear removes live particles without changing the playback state.
func (e *Emitter) Clear(withChildren bool) {
	if e == nil {
		return
	}
	e.particles = e.particles[:0]
	e.cascade(withChildren, func(c *Emitter) { c.Clear(true) })
}

func (e *Emitter) cascade(withChildren bool, f func(c *Emitter)) {
	if !withChildren {
		return
	}
	for _, c := range e.Children {
		if c != nil {
			f(c)
		}
	}
}

// Update advances the simulation by dt seconds, children included.
func (e *Emitter) Update(dt float64) {
	if e == nil || dt <= 0 {
		return
	}
	if e.state != Paused {
		e.emit(dt)
		e.integrate(dt)
	}
	for _, c := range e.Children {
		c.Update(dt)
	}
}

func (e *Emitter) emit(dt float64) {
	if e.state != Playing {
		return
	}
	e.elapsed += dt
	if e.Config.Duration > 0 && e.elapsed >= e.Config.Duration {
		if !e.Config.Loop {
			e.state = Stopped
			return
		}
		e.elapsed = math.Mod(e.elapsed, e.Config.Duration)
		e.spawn(e.Config.Burst)
	}
	e.accum += e.Config.Rate * dt
	n := int(e.accum)
	e.accum -= float64(n)
	e.spawn(n)
}

func (e *Emitter) integrate(dt float64) {
	live := e.particles[:0]
	for _, p := range e.particles {
		p.Age += dt
		if p.Age >= p.Life {
			continue
		}
		p.Vel = p.Vel.Add(e.Config.Gravity.Mult(dt))
		p.Pos = p.Pos.Add(p.Vel.Mult(dt))
		live = append(live, p)
	}
	e.particles = live
}

func (e *Emitter) spawn(n int) {
	cfg := e.Config
	for i := 0; i < n && len(e.particles) < cfg.MaxParticles; i++ {
		angle := cfg.Direction + (e.rng.Float64()-0.5)*cfg.Spread
		speed := cfg.SpeedMin + e.rng.Float64()*(cfg.SpeedMax-cfg.SpeedMin)
		e.particles = append(e.particles, Particle{
			Pos:  cfg.Offset,
			Vel:  cp.ForAngle(angle).Mult(speed),
			Life: cfg.Lifetime,
		})
	}
}

// Walk visits e and every nested emitter depth first.
func (e *Emitter) Walk(f func(em *Emitter, depth int)) {
	e.walk(f, 0)
}

func (e *Emitter) walk(f func(em *Emitter, depth int), depth int) {
	if e == nil {
		return
	}
	f(e, depth)
	for _, c := range e.Children {
		c.walk(f, depth+1)
	}
}
