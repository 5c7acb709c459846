package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/desertthunder/tripx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
//
// Logs go to a file for the duration so they do not tear the screen.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	fileLogger, f, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	fileLogger.SetLevel(r.logger.GetLevel())

	tui := NewRunner(RunnerOpts{
		Config:     r.config,
		ConfigPath: r.configPath,
		Storage:    r.storage,
		HTTPClient: r.httpClient,
		Logger:     fileLogger,
		Output:     io.Discard,
	})

	model := ui.NewModel(ctx, tui.sync, tui.weather, r.config.Display.Location())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
