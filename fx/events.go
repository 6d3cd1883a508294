package fx

import (
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog"
)

// Callback is invoked when an animation event fires.
type Callback func()

// Subscription identifies one registered callback. The zero value never
// identifies a live registration.
type Subscription uint64

// Parameters is the animator state machine the proxy setters forward to.
type Parameters interface {
	SetTrigger(name string)
	ResetTrigger(name string)
	SetBool(name string, v bool)
	SetFloat(name string, v float64)
	SetInteger(name string, v int)
}

type listener struct {
	id Subscription
	fn Callback
}

// AnimationEvents routes animation event keys to repeating and one-shot
// callbacks and forwards parameter writes to an animator.
type AnimationEvents struct {
	Logger *zerolog.Logger

	params    Parameters
	repeating map[string][]listener
	once      map[string][]listener
	nextID    Subscription
	random    func() float64
	depth     int
}

// MaxFireDepth bounds how deeply Fire may re-enter itself through callbacks
// that fire further keys.
const MaxFireDepth = 32

// NewAnimationEvents creates a router forwarding parameter writes to params.
// params may be nil when only event routing is needed.
func NewAnimationEvents(params Parameters) *AnimationEvents {
	return &AnimationEvents{
		params:    params,
		repeating: make(map[string][]listener),
		once:      make(map[string][]listener),
		random:    rand.Float64,
	}
}

// SetParameters swaps the animator writes are forwarded to.
func (e *AnimationEvents) SetParameters(params Parameters) {
	e.params = params
}

// SetRandomSource replaces the [0,1) source used by SetRandomFloat.
func (e *AnimationEvents) SetRandomSource(f func() float64) {
	if f == nil {
		f = rand.Float64
	}
	e.random = f
}

// Fire runs the one-shot callbacks for key, dropping them, and then the
// repeating callbacks for key. Callbacks registered while firing run on the
// next Fire.
func (e *AnimationEvents) Fire(key string) {
	if e == nil {
		return
	}
	if e.depth >= MaxFireDepth {
		e.log().Warn().Str("event", key).Int("depth", e.depth).Msg("fx: event chain too deep, dropping")
		return
	}
	e.depth++
	defer func() { e.depth-- }()
	if once, ok := e.once[key]; ok {
		delete(e.once, key)
		for _, l := range once {
			l.fn()
		}
	}
	if rep, ok := e.repeating[key]; ok {
		for _, l := range slices.Clone(rep) {
			l.fn()
		}
	}
	e.log().Debug().Str("event", key).Msg("fx: event fired")
}

// Subscribe appends cb to the repeating callbacks for key.
func (e *AnimationEvents) Subscribe(key string, cb Callback) Subscription {
	if e == nil {
		return 0
	}
	return e.add(&e.repeating, key, cb)
}

// SubscribeOnce appends cb to the callbacks for key that run a single time.
func (e *AnimationEvents) SubscribeOnce(key string, cb Callback) Subscription {
	if e == nil {
		return 0
	}
	return e.add(&e.once, key, cb)
}

// Unsubscribe removes the repeating registration sub from key.
func (e *AnimationEvents) Unsubscribe(key string, sub Subscription) bool {
	if e == nil {
		return false
	}
	return e.remove(e.repeating, key, sub)
}

// UnsubscribeOnce removes the one-shot registration sub from key.
func (e *AnimationEvents) UnsubscribeOnce(key string, sub Subscription) bool {
	if e == nil {
		return false
	}
	return e.remove(e.once, key, sub)
}

// ClearKey drops every callback registered for key.
func (e *AnimationEvents) ClearKey(key string) {
	if e == nil {
		return
	}
	delete(e.repeating, key)
	delete(e.once, key)
}

// ClearAll drops every callback.
func (e *AnimationEvents) ClearAll() {
	if e == nil {
		return
	}
	clear(e.repeating)
	clear(e.once)
}

// Has reports whether key has any callback.
func (e *AnimationEvents) Has(key string) bool {
	if e == nil {
		return false
	}
	return len(e.repeating[key]) > 0 || len(e.once[key]) > 0
}

// Count returns the number of repeating and one-shot callbacks for key.
func (e *AnimationEvents) Count(key string) (repeating, once int) {
	if e == nil {
		return 0, 0
	}
	return len(e.repeating[key]), len(e.once[key])
}

// Keys returns every key with at least one callback, sorted.
func (e *AnimationEvents) Keys() []string {
	if e == nil {
		return nil
	}
	set := make(map[string]struct{}, len(e.repeating)+len(e.once))
	for k := range e.repeating {
		set[k] = struct{}{}
	}
	for k := range e.once {
		set[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

func (e *AnimationEvents) add(m *map[string][]listener, key string, cb Callback) Subscription {
	if cb == nil {
		return 0
	}
	if *m == nil {
		*m = make(map[string][]listener)
	}
	e.nextID++
	(*m)[key] = append((*m)[key], listener{id: e.nextID, fn: cb})
	return e.nextID
}

func (e *AnimationEvents) remove(m map[string][]listener, key string, sub Subscription) bool {
	if sub == 0 {
		return false
	}
	list, ok := m[key]
	if !ok {
		return false
	}
	i := slices.IndexFunc(list, func(l listener) bool { return l.id == sub })
	if i < 0 {
		return false
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(m, key)
		return true
	}
	m[key] = list
	return true
}

// Trigger sets the trigger parameter name.
func (e *AnimationEvents) Trigger(name string) {
	if p := e.parameters(); p != nil {
		p.SetTrigger(name)
	}
}

// ResetTrigger clears the trigger parameter name.
func (e *AnimationEvents) ResetTrigger(name string) {
	if p := e.parameters(); p != nil {
		p.ResetTrigger(name)
	}
}

func (e *AnimationEvents) SetBool(name string, v bool) {
	if p := e.parameters(); p != nil {
		p.SetBool(name, v)
	}
}

func (e *AnimationEvents) SetFloat(name string, v float64) {
	if p := e.parameters(); p != nil {
		p.SetFloat(name, v)
	}
}

func (e *AnimationEvents) SetInteger(name string, v int) {
	if p := e.parameters(); p != nil {
		p.SetInteger(name, v)
	}
}

// SetRandomFloat writes a uniform value in [0,1) to the float parameter name.
func (e *AnimationEvents) SetRandomFloat(name string) {
	if e == nil {
		return
	}
	r := e.random
	if r == nil {
		r = rand.Float64
	}
	e.SetFloat(name, r())
}

func (e *AnimationEvents) parameters() Parameters {
	if e == nil {
		return nil
	}
	if e.params == nil {
		e.log().Debug().Msg("fx: parameter write with no animator attached")
	}
	return e.params
}

func (e *AnimationEvents) log() *zerolog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return &zlog
}
