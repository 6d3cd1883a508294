package fx

import (
	"fmt"

	"github.com/rs/zerolog"
)

// NamedTarget pairs an effect with the name commands address it by.
type NamedTarget struct {
	Name   string
	Effect Effect
}

// Dispatcher fans playback commands out to a fixed, ordered list of named
// effects. Targets must not change after Initialize.
type Dispatcher struct {
	Name    string
	Targets []NamedTarget
	Logger  *zerolog.Logger
	// OnCommand, when set, observes every command that was applied. Target is
	// empty for broadcasts.
	OnCommand func(target string, action Action)

	lookup map[string]Effect
}

// NewDispatcher creates a dispatcher over targets. It still has to be
// initialized before it accepts commands.
func NewDispatcher(name string, targets ...NamedTarget) *Dispatcher {
	return &Dispatcher{
		Name:    name,
		Targets: append([]NamedTarget(nil), targets...),
	}
}

// Initialize builds the name lookup. Calling it again is a no-op. Duplicate
// names resolve to the last target carrying that name.
func (d *Dispatcher) Initialize() {
	if d == nil || d.lookup != nil {
		return
	}
	d.lookup = make(map[string]Effect, len(d.Targets))
	for _, t := range d.Targets {
		d.lookup[t.Name] = t.Effect
	}
}

// Initialized reports whether Initialize has run.
func (d *Dispatcher) Initialized() bool {
	return d != nil && d.lookup != nil
}

// Lookup returns the effect registered under name.
func (d *Dispatcher) Lookup(name string) (Effect, bool) {
	if d == nil || d.lookup == nil {
		return nil, false
	}
	e, ok := d.lookup[name]
	return e, ok
}

// Names returns the configured target names in list order.
func (d *Dispatcher) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.Targets))
	for _, t := range d.Targets {
		out = append(out, t.Name)
	}
	return out
}

// Command applies action to the target called name, or to every target in
// list order when name is empty. Sub-emitters always receive the command too.
// Failures are logged and returned; they never abort the caller.
func (d *Dispatcher) Command(name string, action Action) error {
	if d == nil {
		return ErrNotInitialized
	}
	log := d.log()
	if d.lookup == nil {
		log.Warn().Str("dispatcher", d.Name).Str("target", name).Stringer("action", action).
			Msg("fx: command issued before Initialize, ignoring")
		return ErrNotInitialized
	}

	if name == "" {
		for _, t := range d.Targets {
			if err := apply(t.Effect, action); err != nil {
				log.Error().Err(err).Str("dispatcher", d.Name).Msg("fx: broadcast failed")
				return err
			}
		}
		log.Debug().Str("dispatcher", d.Name).Stringer("action", action).Int("targets", len(d.Targets)).Msg("fx: broadcast")
		d.observe(name, action)
		return nil
	}

	e, ok := d.lookup[name]
	if !ok {
		log.Error().Str("dispatcher", d.Name).Str("target", name).Stringer("action", action).
			Msg("fx: no target with that name")
		return fmt.Errorf("%w: %q in dispatcher %q", ErrTargetNotFound, name, d.Name)
	}
	if err := apply(e, action); err != nil {
		log.Error().Err(err).Str("dispatcher", d.Name).Str("target", name).Msg("fx: command failed")
		return err
	}
	log.Debug().Str("dispatcher", d.Name).Str("target", name).Stringer("action", action).Msg("fx: command")
	d.observe(name, action)
	return nil
}

func (d *Dispatcher) observe(target string, action Action) {
	if d.OnCommand != nil {
		d.OnCommand(target, action)
	}
}

func (d *Dispatcher) Play(name string) error  { return d.Command(name, ActionPlay) }
func (d *Dispatcher) Pause(name string) error { return d.Command(name, ActionPause) }
func (d *Dispatcher) Stop(name string) error  { return d.Command(name, ActionStop) }
func (d *Dispatcher) Clear(name string) error { return d.Command(name, ActionClear) }

func (d *Dispatcher) log() *zerolog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return &zlog
}
