package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/sim"
)

var benchSteps int

func newBenchCmd() *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "compare every integrator and motion pair on one preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 1000, "physics steps per run")
	return benchCmd
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if benchSteps <= 0 {
		return fmt.Errorf("%w: steps %d", dynamo.ErrParameterBounds, benchSteps)
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)

	preset, err := cfg.ResolvePreset()
	if err != nil {
		return err
	}
	infos, states, err := preset.Particles()
	if err != nil {
		return err
	}

	registry := sim.NewRegistry()
	ensemble := sim.NewEnsemble(infos, states, benchSteps)
	for _, integName := range registry.ListIntegrators() {
		for _, motionName := range registry.ListMotions() {
			integ, _ := registry.GetIntegrator(integName)
			mot, _ := registry.GetMotion(motionName)
			if integ.RequiresVelocityIndependence() && mot.VelocityDependent() {
				logger.Debug("skipping incompatible pair", "integrator", integName, "motion", motionName)
				continue
			}
			ensemble.Add(integName+"/"+motionName,
				sim.WithIntegrator(integ),
				sim.WithMotion(mot),
				sim.WithTimeStep(cfg.EffectiveTimeStep(preset)),
				sim.WithSoftening(cfg.Softening),
				sim.WithLogger(logger),
			)
		}
	}

	logger.Info("benchmarking", "preset", preset.Name, "steps", benchSteps)
	results, err := ensemble.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s, %d steps\n\n", preset.Name, benchSteps)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tMOTION\tSTEPS\tENERGY DRIFT\tTIME\tSTEPS/SEC")
	for _, r := range results {
		rate := 0.0
		if r.Elapsed > 0 {
			rate = float64(r.Steps) / r.Elapsed.Seconds()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\t%v\t%.0f\n",
			r.Integrator, r.Motion, r.Steps, r.EnergyDrift, r.Elapsed.Round(time.Microsecond), rate)
	}
	return w.Flush()
}
