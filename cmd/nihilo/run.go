package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nihilo/internal/analysis"
	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/export"
	"github.com/san-kum/nihilo/internal/metrics"
	"github.com/san-kum/nihilo/internal/physics"
)

const secondsPerDay = 86400.0

var (
	steps        int
	wallDuration time.Duration
	sampleStride int
	escapeRadius float64
	plotWidth    int
	svgPath      string
	jsonPath     string
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation headless and report conservation and periods",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&steps, "steps", 3650, "number of physics steps")
	runCmd.Flags().DurationVar(&wallDuration, "duration", 0, "stop after this much wall time, 0 for no limit")
	runCmd.Flags().IntVar(&sampleStride, "sample", 1, "record trajectories every n steps")
	runCmd.Flags().Float64Var(&escapeRadius, "escape-radius", 0, "distance from the center of mass counted as escaped, 0 for 10x the initial extent")
	runCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the orbits around the heaviest body to an svg file")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write a json report")
	return runCmd
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if steps <= 0 {
		return fmt.Errorf("%w: steps %d", dynamo.ErrParameterBounds, steps)
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)

	s, preset, err := newSimulator(cfg, logger)
	if err != nil {
		return err
	}
	infos, states, err := preset.Particles()
	if err != nil {
		return err
	}

	stride := max(sampleStride, 1)
	drift := metrics.NewEnergyDrift(s.Softening(), max(steps/plotWidth, 1))
	momentum := metrics.NewMomentum()
	radius := escapeRadius
	if radius <= 0 {
		radius = 10 * extent(infos, states)
	}
	stability := metrics.NewStability(radius)
	s.AddMetric(drift)
	s.AddMetric(momentum)
	s.AddMetric(stability)

	central := heaviest(infos)
	trajectories := make([]*metrics.Trajectory, len(infos))
	for i := range infos {
		if i == central {
			continue
		}
		trajectories[i] = metrics.NewTrajectory(i, central, stride)
		s.AddMetric(trajectories[i])
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if wallDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wallDuration)
		defer cancel()
	}

	start := time.Now()
	// the first update applies the initial state
	if err := s.Update(); err != nil {
		return err
	}
	done := 0
	for ; done < steps; done++ {
		if ctx.Err() != nil {
			logger.Warn("run interrupted", "steps", done, "reason", context.Cause(ctx))
			break
		}
		if err := s.Update(); err != nil {
			var stepErr *dynamo.StepError
			if errors.As(err, &stepErr) {
				logger.Error("simulation diverged", "age", stepErr.Age, "particle", stepErr.Particle)
			}
			return err
		}
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "preset\t%s\n", preset.Name)
	fmt.Fprintf(w, "integrator\t%s / %s\n", s.Integrator().Name(), s.Motion().Name())
	fmt.Fprintf(w, "steps\t%d\n", done)
	fmt.Fprintf(w, "simulated\t%.2f days\n", s.Elapsed()/secondsPerDay)
	fmt.Fprintf(w, "wall time\t%v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		fmt.Fprintf(w, "steps/sec\t%.0f\n", float64(done)/elapsed.Seconds())
	}
	fmt.Fprintf(w, "energy drift\t%.3e (max %.3e)\n", drift.Current(), drift.Value())
	fmt.Fprintf(w, "momentum drift\t%.3e\n", momentum.Value())
	fmt.Fprintf(w, "bound fraction\t%.3f\n", stability.Value())
	w.Flush()

	if history := drift.History(); len(history) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(history,
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("relative energy drift"),
		))
	}

	report := &export.Report{
		Preset:     preset.Name,
		Integrator: s.Integrator().Name(),
		Motion:     s.Motion().Name(),
		TimeStep:   s.TimeStep(),
		Steps:      done,
		Elapsed:    elapsed,
		Metrics:    make(map[string]float64),
	}
	for _, m := range []dynamo.Metric{drift, momentum, stability} {
		report.Metrics[m.Name()] = m.Value()
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BODY\tAROUND\tPERIOD (days)\tKEPLER (days)\n")
	series := make([]export.Series, 0, len(infos))
	for i, tr := range trajectories {
		final := s.State(i).Position
		body := export.BodyReport{Name: infos[i].Name, FinalX: final.X(), FinalY: final.Y(), FinalZ: final.Z()}
		if tr == nil {
			report.Bodies = append(report.Bodies, body)
			series = append(series, export.Series{
				Name:   infos[i].Name,
				Color:  infos[i].Color.Hex(),
				Points: []dynamo.Vec3{{}},
			})
			continue
		}
		body.Around = infos[central].Name
		body.KeplerDays = keplerDays(infos, states, i, central)
		series = append(series, export.Series{Name: infos[i].Name, Color: infos[i].Color.Hex(), Points: tr.Points()})

		period, err := analysis.DominantPeriod(tr.Axis(0), float64(stride)*s.TimeStep())
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\t-\t%.2f\n", infos[i].Name, infos[central].Name, body.KeplerDays)
		} else {
			body.PeriodDays = period / secondsPerDay
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\n", infos[i].Name, infos[central].Name, body.PeriodDays, body.KeplerDays)
		}
		report.Bodies = append(report.Bodies, body)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if svgPath != "" {
		if err := writeFile(svgPath, func(f io.Writer) error {
			return export.OrbitsSVG(f, series, 800, 800)
		}); err != nil {
			return err
		}
		logger.Info("wrote orbits", "path", svgPath)
	}
	if jsonPath != "" {
		if err := writeFile(jsonPath, func(f io.Writer) error {
			return export.WriteJSON(f, report)
		}); err != nil {
			return err
		}
		logger.Info("wrote report", "path", jsonPath)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func heaviest(infos []dynamo.ParticleInfo) int {
	best := 0
	for i, info := range infos {
		if info.Mass > infos[best].Mass {
			best = i
		}
	}
	return best
}

// extent is the largest initial distance from the center of mass.
func extent(infos []dynamo.ParticleInfo, states []dynamo.ParticleState) float64 {
	particles := make([]dynamo.Particle, len(infos))
	for i := range infos {
		particles[i] = dynamo.NewParticle(infos[i])
		*particles[i].Current(0) = states[i]
	}
	com, _ := physics.CenterOfMass(particles, 0)
	r := 0.0
	for i := range particles {
		r = max(r, particles[i].Current(0).Position.Sub(com).Len())
	}
	return r
}

// keplerDays is the two-body period of body i around central, taking the
// initial separation as the semi-major axis.
func keplerDays(infos []dynamo.ParticleInfo, states []dynamo.ParticleState, i, central int) float64 {
	a := states[i].Position.Sub(states[central].Position).Len()
	mu := physics.G * (infos[i].Mass + infos[central].Mass)
	return physics.KeplerPeriod(mu, a) / secondsPerDay
}
