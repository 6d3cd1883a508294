package animator

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/milk9111/fxrelay/prefabs"
)

func knight(t *testing.T) (*Machine, *[]string) {
	t.Helper()
	spec, err := prefabs.LoadRig("knight")
	if err != nil {
		t.Fatalf("LoadRig: %v", err)
	}
	m, err := Compile(spec.Name, spec.Animator)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	events := &[]string{}
	m.OnEvent = func(key string) { *events = append(*events, key) }
	return m, events
}

func run(m *Machine, ticks int) {
	for i := 0; i < ticks; i++ {
		m.Update()
	}
}

func TestInitialStateEmitsFrameZero(t *testing.T) {
	m, events := knight(t)
	if m.Current() != "" {
		t.Fatalf("machine should not enter a state before Update")
	}
	m.Update()
	if m.Current() != "idle" {
		t.Fatalf("current = %q, want idle", m.Current())
	}
	if !slices.Equal(*events, []string{"breathe"}) {
		t.Fatalf("events = %v", *events)
	}
}

func TestRunFootstepTiming(t *testing.T) {
	m, events := knight(t)
	m.SetFloat("speed", 1)
	run(m, 10)
	if m.Current() != "run" {
		t.Fatalf("current = %q, want run", m.Current())
	}
	if len(*events) != 0 {
		t.Fatalf("no footstep expected yet, got %v", *events)
	}
	m.Update()
	if !slices.Equal(*events, []string{"footstep"}) {
		t.Fatalf("events after frame 2 = %v", *events)
	}
	// one loop of 8 frames at 5 ticks each has two footsteps
	*events = nil
	run(m, 40)
	if len(*events) != 2 {
		t.Fatalf("expected 2 footsteps per loop, got %v", *events)
	}
}

func TestTriggerConsumedAndExitTime(t *testing.T) {
	m, events := knight(t)
	m.Update()
	m.SetTrigger("attack")
	m.Update()
	if m.Current() != "attack" {
		t.Fatalf("current = %q, want attack", m.Current())
	}
	if p, _ := m.Param("attack"); p.Bool {
		t.Fatalf("trigger should be consumed by the transition")
	}
	run(m, 40)
	if m.Current() != "idle" {
		t.Fatalf("attack should exit to idle after the clip, current = %q", m.Current())
	}
	want := []string{"breathe", "attack_start", "attack_hit", "attack_end", "breathe"}
	if !slices.Equal((*events)[:len(want)], want) {
		t.Fatalf("events = %v, want prefix %v", *events, want)
	}
}

func TestAnyStateDoesNotReenterSelf(t *testing.T) {
	m, _ := knight(t)
	changes := 0
	m.OnStateChange = func(from, to string) { changes++ }
	m.SetBool("grounded", false)
	run(m, 20)
	if m.Current() != "fall" {
		t.Fatalf("current = %q, want fall", m.Current())
	}
	if changes != 2 {
		t.Fatalf("expected idle then fall, got %d changes", changes)
	}
	m.SetBool("grounded", true)
	run(m, 30)
	if m.Current() != "idle" {
		t.Fatalf("expected land to exit to idle, current = %q", m.Current())
	}
}

func TestResetTrigger(t *testing.T) {
	m, _ := knight(t)
	m.Update()
	m.SetTrigger("attack")
	m.ResetTrigger("attack")
	m.Update()
	if m.Current() != "idle" {
		t.Fatalf("reset trigger should not fire a transition, current = %q", m.Current())
	}
}

func TestParameterWrites(t *testing.T) {
	m, _ := knight(t)
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	m.Logger = &l

	m.SetInteger("combo", 2)
	m.SetFloat("speed", 0.5)
	m.SetBool("grounded", false)
	if p, _ := m.Param("combo"); p.Int != 2 {
		t.Fatalf("combo = %v", p)
	}
	if p, _ := m.Param("speed"); p.Float != 0.5 {
		t.Fatalf("speed = %v", p)
	}

	m.SetFloat("combo", 9)
	if p, _ := m.Param("combo"); p.Int != 2 {
		t.Fatalf("type mismatch should be ignored, combo = %v", p)
	}
	m.SetBool("missing", true)
	if _, ok := m.Param("missing"); ok {
		t.Fatalf("unknown parameter should not be created")
	}
	out := buf.String()
	if !strings.Contains(out, "type mismatch") || !strings.Contains(out, "does not exist") {
		t.Fatalf("expected warnings, got %q", out)
	}
	if got := strings.Join(m.Params(), ","); got != "speed,grounded,attack,combo,variation" {
		t.Fatalf("Params() = %s", got)
	}
}

func TestPlayJumps(t *testing.T) {
	m, events := knight(t)
	m.Play("land")
	m.Update()
	if m.Current() != "land" || !slices.Contains(*events, "land") {
		t.Fatalf("current = %q events = %v", m.Current(), *events)
	}
	m.Play("nope")
	if m.Current() != "land" {
		t.Fatalf("unknown state should be ignored")
	}
}

func TestNonLoopingClipHoldsLastFrame(t *testing.T) {
	m := New("t")
	m.AddClip(&Clip{Name: "once", Frames: 3, FPS: 60})
	m.AddState("s", "once")
	m.SetInitial("s")
	run(m, 10)
	if m.Frame() != 2 {
		t.Fatalf("frame = %d, want 2", m.Frame())
	}
}

func TestCompileErrors(t *testing.T) {
	base := func() prefabs.AnimatorSpec {
		return prefabs.AnimatorSpec{
			Initial:    "a",
			Parameters: []prefabs.ParameterSpec{{Name: "f", Type: "float"}, {Name: "t", Type: "trigger"}},
			Clips:      map[string]prefabs.ClipSpec{"c": {Frames: 2}},
			States:     map[string]prefabs.StateSpec{"a": {Clip: "c"}, "b": {Clip: "c"}},
		}
	}
	cases := []struct {
		name   string
		mutate func(s *prefabs.AnimatorSpec)
		want   string
	}{
		{"no_initial", func(s *prefabs.AnimatorSpec) { s.Initial = "" }, "missing initial"},
		{"bad_initial", func(s *prefabs.AnimatorSpec) { s.Initial = "zzz" }, "not defined"},
		{"bad_param_type", func(s *prefabs.AnimatorSpec) { s.Parameters[0].Type = "vec3" }, "unknown parameter type"},
		{"empty_clip", func(s *prefabs.AnimatorSpec) { s.Clips["c"] = prefabs.ClipSpec{} }, "no frames"},
		{"event_out_of_range", func(s *prefabs.AnimatorSpec) {
			s.Clips["c"] = prefabs.ClipSpec{Frames: 2, Events: map[int][]string{5: {"x"}}}
		}, "out of range"},
		{"unknown_clip", func(s *prefabs.AnimatorSpec) { s.States["b"] = prefabs.StateSpec{Clip: "nope"} }, "unknown clip"},
		{"unknown_from", func(s *prefabs.AnimatorSpec) {
			s.Transitions = []prefabs.TransitionSpec{{From: "x", To: "a"}}
		}, "from unknown state"},
		{"unknown_to", func(s *prefabs.AnimatorSpec) {
			s.Transitions = []prefabs.TransitionSpec{{From: "*", To: "x"}}
		}, "to unknown state"},
		{"unknown_param", func(s *prefabs.AnimatorSpec) {
			s.Transitions = []prefabs.TransitionSpec{{From: "a", To: "b", When: []prefabs.ConditionSpec{{Param: "q", Op: "if"}}}}
		}, "unknown parameter"},
		{"op_kind", func(s *prefabs.AnimatorSpec) {
			s.Transitions = []prefabs.TransitionSpec{{From: "a", To: "b", When: []prefabs.ConditionSpec{{Param: "t", Op: "gt"}}}}
		}, "needs a number"},
		{"bad_op", func(s *prefabs.AnimatorSpec) {
			s.Transitions = []prefabs.TransitionSpec{{From: "a", To: "b", When: []prefabs.ConditionSpec{{Param: "f", Op: "between"}}}}
		}, "unknown op"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := base()
			c.mutate(&s)
			_, err := Compile("test", s)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("err = %v, want containing %q", err, c.want)
			}
		})
	}
	if _, err := Compile("test", base()); err != nil {
		t.Fatalf("base spec should compile: %v", err)
	}
}
