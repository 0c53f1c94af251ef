package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nihilo/internal/control"
	"github.com/san-kum/nihilo/internal/manager"
	"github.com/san-kum/nihilo/internal/viz"
)

// runView starts the three loops behind a full screen terminal program.
// Logs go to --log-file so they do not corrupt the screen.
func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	logger := newLogger(f, cfg.LogLevel)

	simulator, _, err := newSimulator(cfg, logger)
	if err != nil {
		return err
	}

	ctrl := control.NewController(control.NewCamera(), control.WithResetHandler(simulator.Reset))
	program := viz.NewProgram(viz.NewApp(ctrl))
	renderer := viz.NewRenderer(viz.ProgramSink(program),
		viz.WithTheme(viz.GetTheme(cfg.View.Theme)),
		viz.WithRadiusScale(cfg.View.RadiusScale),
		viz.WithFadeDistance(cfg.View.FadeDistance),
		viz.WithRendererLogger(logger),
	)

	m, err := manager.New(ctrl, simulator, renderer,
		manager.WithControlFrequency(cfg.Loops.Control),
		manager.WithSimulationFrequency(cfg.Loops.Simulation),
		manager.WithRenderFrequency(cfg.Loops.Render),
		manager.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	ctrl.SetTimings(m.Timings)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		err := m.Run(ctx)
		// the controls asked to stop, or ctx was cancelled
		program.Quit()
		return err
	})

	_, runErr := program.Run()
	m.Stop()
	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("terminal program: %w", runErr)
	}
	logger.Info("view closed", "frames", renderer.Frames())
	return nil
}
