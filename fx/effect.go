// Package fx holds the glue between animation and effect playback: a
// dispatcher that forwards named commands to particle effects, and an event
// router that turns animation frame events into callbacks while proxying
// parameter writes to an animator state machine.
//
// Everything in this package is driven from the game update goroutine and is
// not safe for concurrent use.
package fx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/milk9111/fxrelay/internal/logging"
)

var (
	ErrNotInitialized = errors.New("fx: dispatcher not initialized")
	ErrTargetNotFound = errors.New("fx: target not found")
	ErrUnknownAction  = errors.New("fx: unknown action")
)

var zlog = logging.Default()

// SetLogger installs the package logger used when a value has no logger of
// its own.
func SetLogger(l zerolog.Logger) { zlog = l }

// Effect is a playable particle effect. withChildren asks the effect to cascade
// the command to its nested sub-emitters.
type Effect interface {
	Play(withChildren bool)
	Pause(withChildren bool)
	Stop(withChildren bool)
	Clear(withChildren bool)
}

// Action is a playback command understood by Effect.
type Action int

const (
	ActionPlay Action = iota
	ActionPause
	ActionStop
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionPause:
		return "pause"
	case ActionStop:
		return "stop"
	case ActionClear:
		return "clear"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction accepts play|pause|stop|clear, case-insensitively. An empty
// string means play.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "play":
		return ActionPlay, nil
	case "pause":
		return ActionPause, nil
	case "stop":
		return ActionStop, nil
	case "clear":
		return ActionClear, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

func apply(e Effect, a Action) error {
	if e == nil {
		return nil
	}
	switch a {
	case ActionPlay:
		e.Play(true)
	case ActionPause:
		e.Pause(true)
	case ActionStop:
		e.Stop(true)
	case ActionClear:
		e.Clear(true)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownAction, a)
	}
	return nil
}
