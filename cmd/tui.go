package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/csvlist/internal/metrics"
	"github.com/desertthunder/csvlist/internal/shared"
	"github.com/desertthunder/csvlist/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/csvlist-tui.log"

// TUI launches the interactive terminal UI for an import.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.useConfig(ctx, cmd); err != nil {
		return err
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	opts, err := r.importOptions(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()

	prev := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(prev)

	eopts := r.engineOptsFrom(cmd)
	metricsPath := r.metricsPath(cmd)
	var collector *metrics.Collector
	if metricsPath != "" {
		collector = metrics.New()
		eopts.recorder = collector
	}

	engine, err := r.newEngine(eopts)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	summary, runErr := model.Result()
	if summary != nil {
		r.writeMetrics(collector, metricsPath)
	}
	return runErr
}
