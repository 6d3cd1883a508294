package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
)

const (
	runSpeed      = 1.0
	stickDeadzone = 0.2
)

// Input maps keyboard and gamepad input onto the parameters of every
// controlled animator. Writes go through the rig's AnimationEvents so they
// follow the same path as event callbacks.
type Input struct{}

func NewInput() *Input {
	return &Input{}
}

func (i *Input) Update(w *ecs.World) {
	if w == nil {
		return
	}

	left := ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	right := ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	attack := inpututil.IsKeyJustPressed(ebiten.KeySpace)
	toggleGround := inpututil.IsKeyJustPressed(ebiten.KeyG)
	randomize := inpututil.IsKeyJustPressed(ebiten.KeyR)

	moveX := 0.0
	if left {
		moveX -= runSpeed
	}
	if right {
		moveX += runSpeed
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		leftX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if math.Abs(leftX) > stickDeadzone {
			moveX = leftX * runSpeed
		}
		attack = attack || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
		toggleGround = toggleGround || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
	}

	ecs.ForEach2(w, component.ControlComponent.Kind(), component.AnimatorComponent.Kind(), func(e ecs.Entity, ctrl *component.Control, anim *component.Animator) {
		ev := anim.Events
		if ev == nil {
			return
		}
		speed := math.Abs(moveX)
		if speed != ctrl.Speed {
			ctrl.Speed = speed
			ev.SetFloat("speed", speed)
		}
		if toggleGround {
			ctrl.Grounded = !ctrl.Grounded
			ev.SetBool("grounded", ctrl.Grounded)
		}
		if attack {
			ev.Trigger("attack")
		}
		if randomize {
			ev.SetRandomFloat("variation")
		}
	})
}
