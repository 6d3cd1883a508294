package main

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
	"github.com/milk9111/fxrelay/ecs/entity"
	"github.com/milk9111/fxrelay/ecs/render"
	"github.com/milk9111/fxrelay/ecs/system"
	"github.com/milk9111/fxrelay/internal/config"
	"github.com/milk9111/fxrelay/prefabs"
)

const hudLines = 12

type Game struct {
	cfg    config.Config
	log    zerolog.Logger
	frames int

	world     *ecs.World
	scheduler *ecs.Scheduler
	render    *render.RenderSystem
	rig       ecs.Entity
	rng       *rand.Rand

	ui       *ebitenui.UI
	showUI   bool
	paused   bool
	face     ebtext.Face
	watcher  *prefabs.Watcher
	clipOK   bool
	status   string
	statusAt int
}

func NewGame(cfg config.Config, log zerolog.Logger) (*Game, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	g := &Game{
		cfg:    cfg,
		log:    log,
		render: render.NewRenderSystem(),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		showUI: true,
		face:   ebtext.NewGoXFace(basicfont.Face7x13),
	}
	g.scheduler = ecs.NewScheduler(
		NewInput(),
		system.NewAnimatorSystem(),
		system.NewParticleSystem(),
	)
	if err := g.loadRig(cfg.Rig); err != nil {
		return nil, err
	}

	if err := clipboard.Init(); err != nil {
		log.Warn().Err(err).Msg("clipboard unavailable")
	} else {
		g.clipOK = true
	}

	if cfg.HotReload {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			log.Warn().Err(err).Msg("hot reload disabled")
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// loadRig replaces the world with a fresh one holding only the named rig.
func (g *Game) loadRig(name string) error {
	spec, err := prefabs.LoadRig(name)
	if err != nil {
		return err
	}
	w := ecs.NewWorld()
	l := g.log.With().Str("rig", spec.Name).Logger()
	e, err := entity.BuildRig(w, spec, entity.Options{Rand: g.rng, Logger: &l, Control: true})
	if err != nil {
		return err
	}
	if tr, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok && tr.X == 0 && tr.Y == 0 {
		tr.X = float64(g.cfg.Window.Width) / 2
		tr.Y = float64(g.cfg.Window.Height) * 2 / 3
	}
	g.world = w
	g.rig = e
	g.ui = NewEffectsUI(g)
	g.log.Info().Str("rig", spec.Name).Msg("rig loaded")
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) effects() *component.Effects {
	fxs, _ := ecs.Get(g.world, g.rig, component.EffectsComponent.Kind())
	return fxs
}

func (g *Game) animator() *component.Animator {
	anim, _ := ecs.Get(g.world, g.rig, component.AnimatorComponent.Kind())
	return anim
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusAt = g.frames
}

func (g *Game) Update() error {
	g.frames++

	if changes := g.watcher.Poll(); len(changes) > 0 {
		what := "prefabs"
		if prefabs.OnlyScripts(changes) {
			what = "scripts"
		}
		g.log.Info().Int("changes", len(changes)).Str("path", changes[0].Path).Msg(what + " changed, reloading")
		if err := g.loadRig(g.cfg.Rig); err != nil {
			g.log.Error().Err(err).Msg("reload failed, keeping previous rig")
			g.setStatus("reload failed: " + err.Error())
		} else {
			g.setStatus("reloaded " + what)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showUI = !g.showUI
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
		if anim := g.animator(); anim != nil {
			anim.Paused = g.paused
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyLog()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.loadRig(g.cfg.Rig); err != nil {
			g.setStatus("reload failed: " + err.Error())
		}
	}

	g.scheduler.Update(g.world)

	if g.showUI && g.ui != nil {
		g.ui.Update()
	}
	return nil
}

func (g *Game) copyLog() {
	log, ok := ecs.Get(g.world, g.rig, component.EventLogComponent.Kind())
	if !ok {
		return
	}
	if !g.clipOK {
		g.setStatus("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(log.Text()))
	g.setStatus(fmt.Sprintf("copied %d events", len(log.Entries)))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x14, G: 0x16, B: 0x1c, A: 0xff})
	g.render.Draw(g.world, screen)
	g.drawHUD(screen)
	if g.showUI && g.ui != nil {
		g.ui.Draw(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var lines []string
	lines = append(lines, fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	if anim := g.animator(); anim != nil {
		m := anim.Machine
		lines = append(lines, fmt.Sprintf("%s  state: %s  frame: %d", anim.Rig, m.Current(), m.Frame()))
		var params []string
		for _, name := range m.Params() {
			p, _ := m.Param(name)
			params = append(params, name+"="+p.String())
		}
		lines = append(lines, strings.Join(params, "  "))
	}
	if fxs := g.effects(); fxs != nil {
		lines = append(lines, fmt.Sprintf("particles: %d", fxs.Alive()))
	}
	if g.paused {
		lines = append(lines, "PAUSED")
	}
	if g.status != "" && g.frames-g.statusAt < 180 {
		lines = append(lines, g.status)
	}
	lines = append(lines, "arrows: speed  space: attack  g: grounded  r: random  c: copy log  tab: panel  p: pause")

	if log, ok := ecs.Get(g.world, g.rig, component.EventLogComponent.Kind()); ok {
		lines = append(lines, "")
		entries := log.Entries
		if len(entries) > hudLines {
			entries = entries[len(entries)-hudLines:]
		}
		for _, e := range entries {
			lines = append(lines, e.String())
		}
	}

	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.LineSpacing = 15
	op.ColorScale.ScaleWithColor(color.White)
	ebtext.Draw(screen, strings.Join(lines, "\n"), g.face, op)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return float64(g.cfg.Window.Width), float64(g.cfg.Window.Height)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
