package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/nihilo/internal/config"
	"github.com/san-kum/nihilo/internal/sim"
)

var (
	configFile string
	logLevel   string
	logFile    string

	presetName string
	presetFile string
	integrator string
	motion     string
	timeStep   float64
	softening  float64
	workers    int
	theme      string
)

// main builds the command tree and exits with status 1 when a command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nihilo",
		Short: "multi-rate n-body simulator",
		Long: "nihilo integrates gravitating bodies on one goroutine while a terminal\n" +
			"view renders the latest state at its own rate.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runView,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "nihilo.log", "log file used by the interactive view")
	pf.StringVar(&presetName, "preset", config.DefaultPreset, "built-in preset")
	pf.StringVar(&presetFile, "preset-file", "", "preset yaml file, overrides --preset")
	pf.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4, verlet)")
	pf.StringVar(&motion, "motion", config.DefaultMotion, "motion model (classic, relativist)")
	pf.Float64Var(&timeStep, "dt", 0, "simulated seconds per step, 0 uses the preset's")
	pf.Float64Var(&softening, "softening", config.DefaultSoftening, "squared softening length in m²")
	pf.IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "goroutines per physics step")
	pf.StringVar(&theme, "theme", config.DefaultTheme, "color theme")

	viewCmd := &cobra.Command{
		Use:   "view [preset]",
		Short: "interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runView,
	}

	rootCmd.AddCommand(viewCmd, newRunCmd(), newDivergeCmd(), newBenchCmd(), newPresetsCmd(), newConfigCmd())
	return rootCmd
}

// loadConfig reads --config when given and applies the flags that were set
// explicitly on the command line. A positional preset argument wins over
// --preset.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("preset") {
		cfg.Preset = presetName
		cfg.PresetFile = ""
	}
	if flags.Changed("preset-file") {
		cfg.PresetFile = presetFile
	}
	if len(args) > 0 {
		cfg.Preset = args[0]
		cfg.PresetFile = ""
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("motion") {
		cfg.Motion = motion
	}
	if flags.Changed("dt") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("softening") {
		cfg.Softening = softening
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("theme") {
		cfg.View.Theme = theme
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "nihilo",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// newSimulator resolves the preset and the integrator/motion pair named by
// cfg and returns a simulator ready for its first Update.
func newSimulator(cfg *config.Config, logger *log.Logger) (*sim.Simulator, *config.Preset, error) {
	preset, err := cfg.ResolvePreset()
	if err != nil {
		return nil, nil, err
	}
	infos, states, err := preset.Particles()
	if err != nil {
		return nil, nil, err
	}

	opts, err := sim.NewRegistry().Options(cfg.Integrator, cfg.Motion)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts,
		sim.WithTimeStep(cfg.EffectiveTimeStep(preset)),
		sim.WithScale(cfg.EffectiveScale(preset)),
		sim.WithSoftening(cfg.Softening),
		sim.WithLogger(logger),
	)
	if cfg.Workers > 0 {
		opts = append(opts, sim.WithWorkers(cfg.Workers))
	}

	s, err := sim.New(infos, states, opts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("simulator ready",
		"preset", preset.Name,
		"bodies", len(infos),
		"integrator", cfg.Integrator,
		"motion", cfg.Motion,
		"dt", s.TimeStep())
	return s, preset, nil
}
