package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/fxrelay/animator"
	"github.com/milk9111/fxrelay/fx"
	"github.com/milk9111/fxrelay/internal/config"
	"github.com/milk9111/fxrelay/internal/logging"
	"github.com/milk9111/fxrelay/script"
)

func main() {
	configPath := flag.String("config", "", "config file (.toml, .yaml or .json)")
	rigName := flag.String("rig", "", "rig prefab in prefabs/ (basename, .yaml optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	watch := flag.Bool("watch", false, "reload the rig when prefabs change on disk")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	boot := logging.Default()
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if *rigName != "" {
		cfg.Rig = *rigName
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if *watch {
		cfg.HotReload = true
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)
	fx.SetLogger(logger)
	animator.SetLogger(logger)
	script.SetLogger(logger)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	game, err := NewGame(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("rig", cfg.Rig).Msg("start viewer")
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal().Err(err).Msg("run viewer")
	}
}
