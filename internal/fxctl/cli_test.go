package fxctl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/milk9111/fxrelay/animator"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := MainWithArgs(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRigsListsEmbeddedPrefabs(t *testing.T) {
	code, out, _ := run(t, "rigs")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if out != "campfire\nknight\n" {
		t.Fatalf("rigs = %q", out)
	}
}

func TestValidate(t *testing.T) {
	code, out, _ := run(t, "validate", "knight", "campfire")
	if code != 0 {
		t.Fatalf("exit = %d, out = %s", code, out)
	}
	if !strings.Contains(out, "ok   knight: 4 emitters, 5 states, 5 params, 6 event keys, 1 scripts") {
		t.Fatalf("knight summary = %q", out)
	}
	if !strings.Contains(out, "ok   campfire:") {
		t.Fatalf("campfire summary = %q", out)
	}

	code, out, errOut := run(t, "validate", "knight", "nope")
	if code != 1 {
		t.Fatalf("missing rig should fail, exit = %d", code)
	}
	if !strings.Contains(out, "FAIL nope:") || !strings.Contains(errOut, errValidation.Error()) {
		t.Fatalf("out = %q err = %q", out, errOut)
	}
}

func TestSimulateAttack(t *testing.T) {
	code, out, errOut := run(t, "simulate", "knight", "--ticks", "40", "--trigger", "attack@2")
	if code != 0 {
		t.Fatalf("exit = %d, err = %s", code, errOut)
	}
	want := []string{
		"     1 state  - -> idle",
		"     1 event  breathe",
		"     1 fx     play aura",
		"     2 state  idle -> attack",
		"     2 event  attack_start",
		"     2 fx     pause aura",
		"    17 event  attack_hit",
		"    17 fx     play sparks",
		"    27 event  attack_end",
	}
	last := -1
	for _, line := range want {
		i := strings.Index(out, line)
		if i < 0 || i < last {
			t.Fatalf("missing or out of order %q in:\n%s", line, out)
		}
		last = i
	}
	if !strings.Contains(out, "final  state=") {
		t.Fatalf("no summary line:\n%s", out)
	}
}

func TestSimulateSetDrivesTransitions(t *testing.T) {
	code, out, _ := run(t, "simulate", "knight", "--ticks", "12", "--set", "speed=1")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "idle -> run") || !strings.Contains(out, "event  footstep") {
		t.Fatalf("expected run with a footstep:\n%s", out)
	}
}

func TestSimulateErrors(t *testing.T) {
	cases := [][]string{
		{"simulate", "knight", "--ticks", "0"},
		{"simulate", "knight", "--set", "speed"},
		{"simulate", "knight", "--set", "nope=1"},
		{"simulate", "knight", "--set", "grounded=maybe"},
		{"simulate", "knight", "--trigger", "attack@x"},
		{"simulate", "missing"},
		{"simulate"},
	}
	for _, args := range cases {
		t.Run(strings.Join(args[1:], "_"), func(t *testing.T) {
			if code, _, _ := run(t, args...); code != 1 {
				t.Fatalf("exit = %d, want 1", code)
			}
		})
	}
}

func TestApplySetByKind(t *testing.T) {
	m := animator.New("t")
	m.DefineParam("b", animator.Param{Kind: animator.ParamBool})
	m.DefineParam("f", animator.Param{Kind: animator.ParamFloat})
	m.DefineParam("i", animator.Param{Kind: animator.ParamInt})
	m.DefineParam("t", animator.Param{Kind: animator.ParamTrigger})
	for _, s := range []string{"b=true", "f=2.5", "i=-3", "t=1"} {
		if err := applySet(m, s); err != nil {
			t.Fatalf("applySet(%q): %v", s, err)
		}
	}
	if p, _ := m.Param("b"); !p.Bool {
		t.Fatalf("b = %v", p)
	}
	if p, _ := m.Param("f"); p.Float != 2.5 {
		t.Fatalf("f = %v", p)
	}
	if p, _ := m.Param("i"); p.Int != -3 {
		t.Fatalf("i = %v", p)
	}
	if p, _ := m.Param("t"); !p.Bool {
		t.Fatalf("t = %v", p)
	}
	if err := applySet(m, "i=1.5"); err == nil {
		t.Fatalf("int parameter should reject a float")
	}
}
