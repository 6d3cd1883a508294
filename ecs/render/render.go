package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/fxrelay/common"
	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
	"github.com/milk9111/fxrelay/particle"
)

// RenderSystem draws every live particle as a filled square at its rig's
// transform, plus a small marker at the rig origin.
type RenderSystem struct {
	Zoom        float64
	ShowOrigins bool
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{Zoom: 1, ShowOrigins: true}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	zoom := r.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.EffectsComponent.Kind(), func(e ecs.Entity, t *component.Transform, fx *component.Effects) {
		for _, root := range fx.Emitters {
			root.Walk(func(em *particle.Emitter, depth int) {
				size := em.Config.Size * zoom
				base := em.Config.Color
				for _, p := range em.Particles() {
					c := fade(base, p.Alpha())
					x := float32((t.X+p.Pos.X)*zoom - size/2)
					y := float32((t.Y+p.Pos.Y)*zoom - size/2)
					vector.FillRect(screen, x, y, float32(size), float32(size), c, false)
				}
			})
		}
		if r.ShowOrigins {
			vector.StrokeRect(screen, float32(t.X*zoom-3), float32(t.Y*zoom-3), 6, 6, 1, color.RGBA{R: 255, G: 255, B: 255, A: 120}, false)
		}
	})
}

// fade scales a premultiplied colour towards transparent.
func fade(c color.RGBA, alpha float64) color.RGBA {
	alpha = common.Clamp01(alpha)
	ch := func(v uint8) uint8 { return uint8(common.Lerp(0, float64(v), alpha)) }
	return color.RGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: ch(c.A)}
}
