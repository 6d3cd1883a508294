package prefabs

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedRigsLoad(t *testing.T) {
	names := Rigs()
	if len(names) == 0 {
		t.Fatalf("no embedded rigs")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadRig(name)
			if err != nil {
				t.Fatalf("LoadRig: %v", err)
			}
			if spec.Name == "" || len(spec.Emitters) == 0 || spec.Animator.Initial == "" {
				t.Fatalf("incomplete rig: %+v", spec)
			}
		})
	}
}

func TestLoadRigWithoutExtension(t *testing.T) {
	spec, err := LoadRig("knight")
	if err != nil {
		t.Fatalf("LoadRig: %v", err)
	}
	if got := spec.Animator.Clips["run"].Events[2]; len(got) != 1 || got[0] != "footstep" {
		t.Fatalf("run frame 2 events = %v", got)
	}
	if len(spec.Emitters[1].Children) != 1 || spec.Emitters[1].Children[0].Name != "embers" {
		t.Fatalf("nested emitter not decoded: %+v", spec.Emitters[1])
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := LoadRig("does_not_exist"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadScript(t *testing.T) {
	for _, name := range []string{"slash.tengo", "scripts/slash.tengo", "prefabs/scripts/slash.tengo"} {
		data, err := LoadScript(name)
		if err != nil || len(data) == 0 {
			t.Fatalf("LoadScript(%q) = %d bytes, %v", name, len(data), err)
		}
	}
}

func TestBindingKind(t *testing.T) {
	f := 1.0
	cases := []struct {
		name    string
		yaml    string
		want    BindingKind
		wantErr bool
	}{
		{"effect", "{effect: dust, action: play}", BindingEffect, false},
		{"broadcast", "{action: stop}", BindingEffect, false},
		{"trigger", "{trigger: attack}", BindingTrigger, false},
		{"reset", "{reset_trigger: attack}", BindingResetTrigger, false},
		{"set", "{set: {name: speed, float: 1}}", BindingSet, false},
		{"random", "{random: variation}", BindingRandom, false},
		{"script", "{script: slash.tengo}", BindingScript, false},
		{"fire", "{fire: other}", BindingFire, false},
		{"empty", "{once: true}", "", true},
		{"mixed", "{trigger: a, script: b.tengo}", "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var b EventBindingSpec
			if err := yaml.Unmarshal([]byte(c.yaml), &b); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := b.Kind()
			if (err != nil) != c.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, c.wantErr)
			}
			if got != c.want {
				t.Fatalf("kind = %q, want %q", got, c.want)
			}
			if c.name == "set" && (b.Set.Float == nil || *b.Set.Float != f) {
				t.Fatalf("set value not decoded: %+v", b.Set)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	one := 1
	yes := true
	cases := []struct {
		name    string
		rig     RigSpec
		wantErr string
	}{
		{
			name: "ok",
			rig: RigSpec{
				Name:     "ok",
				Emitters: []EmitterSpec{{Name: "a", Children: []EmitterSpec{{Name: "b"}}}},
				Events:   map[string][]EventBindingSpec{"e": {{Effect: "a", Action: "play"}, {Set: &ParamSetSpec{Name: "n", Int: &one}}}},
			},
		},
		{name: "no_name", rig: RigSpec{}, wantErr: "no name"},
		{
			name:    "unnamed_child",
			rig:     RigSpec{Name: "r", Emitters: []EmitterSpec{{Name: "a", Children: []EmitterSpec{{}}}}},
			wantErr: "emitter /a[0] has no name",
		},
		{
			name:    "bad_action",
			rig:     RigSpec{Name: "r", Events: map[string][]EventBindingSpec{"e": {{Effect: "a", Action: "explode"}}}},
			wantErr: "unknown action",
		},
		{
			name:    "set_two_values",
			rig:     RigSpec{Name: "r", Events: map[string][]EventBindingSpec{"e": {{Set: &ParamSetSpec{Name: "n", Int: &one, Bool: &yes}}}}},
			wantErr: "exactly one value",
		},
		{
			name: "fire_cycle",
			rig: RigSpec{Name: "r", Events: map[string][]EventBindingSpec{
				"a": {{Fire: "b"}},
				"b": {{Effect: "x", Action: "play"}, {Fire: "a"}},
			}},
			wantErr: "fire bindings loop: a -> b -> a",
		},
		{
			name:    "fire_self",
			rig:     RigSpec{Name: "r", Events: map[string][]EventBindingSpec{"a": {{Fire: "a"}}}},
			wantErr: "fire bindings loop: a -> a",
		},
		{
			name: "fire_chain_and_once_loop",
			rig: RigSpec{Name: "r", Events: map[string][]EventBindingSpec{
				"a": {{Fire: "b"}, {Fire: "c"}},
				"b": {{Fire: "c"}},
				"c": {{Fire: "a", Once: true}},
			}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.rig.Validate()
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, c.wantErr)
			}
		})
	}
}
