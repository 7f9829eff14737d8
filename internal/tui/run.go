package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/climbr/internal/session"
)

var errNoSaver = errors.New("no export directory configured")

// Run opens the editor on cfg.Controller and blocks until the user quits.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	if cfg.Controller == nil {
		return fmt.Errorf("controller is required")
	}
	cfg.Context = ctx

	programOpts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(New(cfg), programOpts...)

	cfg.Controller.OnChange(func(s session.Snapshot) {
		p.Send(snapshotMsg{snapshot: s})
	})

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}
