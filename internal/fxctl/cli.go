// Package fxctl is the headless companion to the viewer: it validates rig
// prefabs and runs them tick by tick, printing what fires.
package fxctl

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/milk9111/fxrelay/animator"
	"github.com/milk9111/fxrelay/ecs"
	"github.com/milk9111/fxrelay/ecs/component"
	"github.com/milk9111/fxrelay/ecs/entity"
	"github.com/milk9111/fxrelay/ecs/system"
	"github.com/milk9111/fxrelay/fx"
	"github.com/milk9111/fxrelay/internal/logging"
	"github.com/milk9111/fxrelay/particle"
	"github.com/milk9111/fxrelay/prefabs"
	"github.com/milk9111/fxrelay/script"
)

// Config holds the persistent flags.
type Config struct {
	LogLevel string
}

var errValidation = errors.New("one or more rigs failed validation")

// MainWithArgs runs the CLI and returns a process exit code.
func MainWithArgs(args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd(&Config{LogLevel: "warn"}, stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "fxctl:", err)
		return 1
	}
	return 0
}

func buildRootCmd(cfg *Config, stdout, stderr io.Writer) *cobra.Command {
	var logger zerolog.Logger
	root := &cobra.Command{
		Use:           "fxctl",
		Short:         "Validate and simulate effect rigs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger = logging.New(cfg.LogLevel, stderr)
		fx.SetLogger(logger)
		animator.SetLogger(logger)
		script.SetLogger(logger)
	}

	rigsCmd := &cobra.Command{Use: "rigs", Short: "List the embedded rig prefabs", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range prefabs.Rigs() {
			fmt.Fprintln(stdout, strings.TrimSuffix(name, ".yaml"))
		}
		return nil
	}}

	validateCmd := &cobra.Command{Use: "validate <rig>...", Short: "Load and build rigs, reporting problems", Example: "  fxctl validate knight campfire", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		failed := false
		for _, name := range args {
			summary, err := validate(name, &logger)
			if err != nil {
				failed = true
				fmt.Fprintf(stdout, "FAIL %s: %v\n", name, err)
				continue
			}
			fmt.Fprintf(stdout, "ok   %s\n", summary)
		}
		if failed {
			return errValidation
		}
		return nil
	}}

	var opts simulateOptions
	simulateCmd := &cobra.Command{Use: "simulate <rig>", Short: "Run a rig headless and print events and effect commands", Example: "  fxctl simulate knight --ticks 60 --trigger attack\n  fxctl simulate knight --set speed=1 --trigger attack@30", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		opts.rig = args[0]
		return simulate(stdout, &logger, opts)
	}}
	simulateCmd.Flags().IntVar(&opts.ticks, "ticks", 120, "number of ticks to run (60 per second)")
	simulateCmd.Flags().StringArrayVar(&opts.sets, "set", nil, "parameter assignment name=value applied before the first tick")
	simulateCmd.Flags().StringArrayVar(&opts.triggers, "trigger", nil, "trigger name, optionally name@tick (default tick 1)")
	simulateCmd.Flags().Uint64Var(&opts.seed, "seed", 1, "particle random seed")

	root.AddCommand(rigsCmd, validateCmd, simulateCmd)
	return root
}

func validate(name string, logger *zerolog.Logger) (string, error) {
	spec, err := prefabs.LoadRig(name)
	if err != nil {
		return "", err
	}
	w := ecs.NewWorld()
	e, err := entity.BuildRig(w, spec, entity.Options{Logger: logger})
	if err != nil {
		return "", err
	}
	fxs, _ := ecs.Get(w, e, component.EffectsComponent.Kind())
	anim, _ := ecs.Get(w, e, component.AnimatorComponent.Kind())
	emitters := 0
	for _, root := range fxs.Emitters {
		root.Walk(func(*particle.Emitter, int) { emitters++ })
	}
	return fmt.Sprintf("%s: %d emitters, %d states, %d params, %d event keys, %d scripts",
		spec.Name, emitters, anim.Machine.States(), len(anim.Machine.Params()), len(spec.Events), len(anim.Scripts)), nil
}

type simulateOptions struct {
	rig      string
	ticks    int
	sets     []string
	triggers []string
	seed     uint64
}

type scheduledTrigger struct {
	name string
	tick uint64
}

func simulate(out io.Writer, logger *zerolog.Logger, opts simulateOptions) error {
	if opts.ticks <= 0 {
		return fmt.Errorf("--ticks must be positive, got %d", opts.ticks)
	}
	triggers, err := parseTriggers(opts.triggers)
	if err != nil {
		return err
	}

	w := ecs.NewWorld()
	e, err := entity.LoadRig(w, opts.rig, entity.Options{
		Rand:   rand.New(rand.NewPCG(opts.seed, opts.seed)),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	anim, _ := ecs.Get(w, e, component.AnimatorComponent.Kind())
	fxs, _ := ecs.Get(w, e, component.EffectsComponent.Kind())
	m := anim.Machine

	for _, s := range opts.sets {
		if err := applySet(m, s); err != nil {
			return err
		}
	}

	onEvent, onState := m.OnEvent, m.OnStateChange
	m.OnEvent = func(key string) {
		fmt.Fprintf(out, "%6d event  %s\n", anim.Tick, key)
		onEvent(key)
	}
	m.OnStateChange = func(from, to string) {
		shown := from
		if shown == "" {
			shown = "-"
		}
		fmt.Fprintf(out, "%6d state  %s -> %s\n", anim.Tick, shown, to)
		onState(from, to)
	}
	fxs.Dispatcher.OnCommand = func(target string, action fx.Action) {
		if target == "" {
			target = "*"
		}
		fmt.Fprintf(out, "%6d fx     %s %s\n", anim.Tick, action, target)
	}

	s := ecs.NewScheduler(system.NewAnimatorSystem(), system.NewParticleSystem())
	for i := 1; i <= opts.ticks; i++ {
		for _, t := range triggers {
			if t.tick == uint64(i) {
				anim.Events.Trigger(t.name)
			}
		}
		s.Update(w)
	}
	fmt.Fprintf(out, "final  state=%s frame=%d particles=%d\n", m.Current(), m.Frame(), fxs.Alive())
	return nil
}

func parseTriggers(raw []string) ([]scheduledTrigger, error) {
	out := make([]scheduledTrigger, 0, len(raw))
	for _, r := range raw {
		name, at, found := strings.Cut(r, "@")
		t := scheduledTrigger{name: strings.TrimSpace(name), tick: 1}
		if t.name == "" {
			return nil, fmt.Errorf("trigger %q has no name", r)
		}
		if found {
			n, err := strconv.ParseUint(at, 10, 64)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("trigger %q: tick must be a positive integer", r)
			}
			t.tick = n
		}
		out = append(out, t)
	}
	return out, nil
}

// applySet parses name=value against the parameter's declared kind.
func applySet(m *animator.Machine, assignment string) error {
	name, value, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("--set %q: want name=value", assignment)
	}
	p, exists := m.Param(name)
	if !exists {
		return fmt.Errorf("--set %q: unknown parameter %q", assignment, name)
	}
	value = strings.TrimSpace(value)
	switch p.Kind {
	case animator.ParamBool, animator.ParamTrigger:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("--set %q: %w", assignment, err)
		}
		if p.Kind == animator.ParamBool {
			m.SetBool(name, b)
		} else if b {
			m.SetTrigger(name)
		} else {
			m.ResetTrigger(name)
		}
	case animator.ParamFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("--set %q: %w", assignment, err)
		}
		m.SetFloat(name, f)
	case animator.ParamInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("--set %q: %w", assignment, err)
		}
		m.SetInteger(name, i)
	}
	return nil
}
