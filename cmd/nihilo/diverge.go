package main

import (
	"fmt"
	"math"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nihilo/internal/analysis"
	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/sim"
)

var (
	divergeBody  string
	perturbation float64
	divergeSteps int
)

func newDivergeCmd() *cobra.Command {
	divergeCmd := &cobra.Command{
		Use:   "diverge [preset]",
		Short: "measure how fast a small displacement of one body grows",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDiverge,
	}
	divergeCmd.Flags().StringVar(&divergeBody, "body", "", "body to displace, defaults to the lightest")
	divergeCmd.Flags().Float64Var(&perturbation, "perturbation", 1000, "displacement along x in meters")
	divergeCmd.Flags().IntVar(&divergeSteps, "steps", 3650, "number of physics steps")
	divergeCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	return divergeCmd
}

func runDiverge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
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

	body := lightest(infos)
	if divergeBody != "" {
		body = -1
		for i, info := range infos {
			if info.Name == divergeBody {
				body = i
			}
		}
		if body < 0 {
			return fmt.Errorf("%w: body %q in preset %s", dynamo.ErrUnknownComponent, divergeBody, preset.Name)
		}
	}

	opts, err := sim.NewRegistry().Options(cfg.Integrator, cfg.Motion)
	if err != nil {
		return err
	}
	opts = append(opts,
		sim.WithTimeStep(cfg.EffectiveTimeStep(preset)),
		sim.WithSoftening(cfg.Softening),
		sim.WithLogger(logger),
	)

	d, err := analysis.MeasureDivergence(cmd.Context(), infos, states, body, perturbation, divergeSteps, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s displaced by %g m\n", preset.Name, infos[body].Name, perturbation)
	if n := len(d.Separation); n > 0 {
		fmt.Fprintf(out, "final separation %.3e m after %.2f days\n",
			d.Separation[n-1], float64(n)*d.TimeStep/secondsPerDay)
	}
	fmt.Fprintf(out, "finite-time exponent %.3e 1/s\n\n", d.Exponent())

	logSep := make([]float64, 0, len(d.Separation))
	for _, sep := range d.Separation {
		if sep > 0 {
			logSep = append(logSep, math.Log10(sep))
		}
	}
	if len(logSep) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(logSep,
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("log10 separation (m)"),
		))
	}
	return nil
}

func lightest(infos []dynamo.ParticleInfo) int {
	best := 0
	for i, info := range infos {
		if info.Mass < infos[best].Mass {
			best = i
		}
	}
	return best
}
