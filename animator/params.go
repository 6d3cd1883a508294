// Package animator plays frame clips under a parameter-driven state machine.
// A Machine satisfies fx.Parameters so animation events can write back into
// it through fx.AnimationEvents.
package animator

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/milk9111/fxrelay/internal/logging"
)

var zlog = logging.Default()

// SetLogger installs the package logger used when a Machine has none.
func SetLogger(l zerolog.Logger) { zlog = l }

// ParamKind is the type of a state machine parameter.
type ParamKind int

const (
	ParamTrigger ParamKind = iota
	ParamBool
	ParamFloat
	ParamInt
)

func (k ParamKind) String() string {
	switch k {
	case ParamTrigger:
		return "trigger"
	case ParamBool:
		return "bool"
	case ParamFloat:
		return "float"
	case ParamInt:
		return "int"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseParamKind(s string) (ParamKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trigger":
		return ParamTrigger, nil
	case "bool":
		return ParamBool, nil
	case "float":
		return ParamFloat, nil
	case "int", "integer":
		return ParamInt, nil
	default:
		return 0, fmt.Errorf("animator: unknown parameter type %q", s)
	}
}

// Param holds one parameter value. Triggers and bools use Bool.
type Param struct {
	Kind  ParamKind
	Bool  bool
	Float float64
	Int   int
}

// Number returns the value as a float for comparisons.
func (p Param) Number() float64 {
	switch p.Kind {
	case ParamFloat:
		return p.Float
	case ParamInt:
		return float64(p.Int)
	default:
		if p.Bool {
			return 1
		}
		return 0
	}
}

func (p Param) String() string {
	switch p.Kind {
	case ParamFloat:
		return fmt.Sprintf("%.3f", p.Float)
	case ParamInt:
		return fmt.Sprintf("%d", p.Int)
	default:
		return fmt.Sprintf("%t", p.Bool)
	}
}
