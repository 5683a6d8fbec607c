package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotsort/internal/shared"
	"github.com/desertthunder/spotsort/internal/tasks"
	"github.com/desertthunder/spotsort/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for library sorting.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join("tmp", "spotsort-tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	fileLogger := shared.NewLogger(logFile)
	r.SetLogger(fileLogger)
	r.engine.SetLogger(fileLogger)

	opts := tasks.MaterializeOpts{
		Prefix: r.config.Sort.Prefix,
	}

	model := ui.NewModel(ctx, r.engine, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
