package system

import (
	"testing"

	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
	"github.com/milk9111/fxrelay/ecs/entity"
)

func knightWorld(t *testing.T) (*ecs.World, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	e, err := entity.LoadRig(w, "knight", entity.Options{})
	if err != nil {
		t.Fatalf("LoadRig: %v", err)
	}
	return w, e
}

func TestAnimatorAndParticleSystems(t *testing.T) {
	w, e := knightWorld(t)
	s := ecs.NewScheduler(NewAnimatorSystem(), NewParticleSystem())
	for i := 0; i < 60; i++ {
		s.Update(w)
	}
	anim, _ := ecs.Get(w, e, component.AnimatorComponent.Kind())
	if anim.Tick != 60 {
		t.Fatalf("tick = %d, want 60", anim.Tick)
	}
	if anim.Machine.Current() != "idle" {
		t.Fatalf("state = %q", anim.Machine.Current())
	}
	fxs, _ := ecs.Get(w, e, component.EffectsComponent.Kind())
	if fxs.Alive() == 0 {
		t.Fatalf("aura should be emitting after a second of idle")
	}
}

func TestPausedAnimatorDoesNotAdvance(t *testing.T) {
	w, e := knightWorld(t)
	anim, _ := ecs.Get(w, e, component.AnimatorComponent.Kind())
	anim.Paused = true
	NewAnimatorSystem().Update(w)
	if anim.Tick != 0 || anim.Machine.Current() != "" {
		t.Fatalf("paused animator advanced: tick=%d state=%q", anim.Tick, anim.Machine.Current())
	}
}

func TestParticleSystemStepsStoppedTrees(t *testing.T) {
	w, e := knightWorld(t)
	fxs, _ := ecs.Get(w, e, component.EffectsComponent.Kind())
	if err := fxs.Dispatcher.Play("dust"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if fxs.Alive() == 0 {
		t.Fatalf("dust burst should spawn particles")
	}
	ps := NewParticleSystem()
	for i := 0; i < 120; i++ {
		ps.Update(w)
	}
	if fxs.Alive() != 0 {
		t.Fatalf("dust particles should expire, %d alive", fxs.Alive())
	}
}
