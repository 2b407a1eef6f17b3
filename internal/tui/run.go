// Package tui provides an interactive terminal chat over the query
// pipeline.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"caregate/internal/pipeline"
)

// Run starts the local TUI chat against an in-process orchestrator.
func Run(orch *pipeline.Orchestrator, indexSize int) error {
	model := NewModel(ModelConfig{
		Orchestrator: orch,
		Styles:       DefaultStyles(),
		IndexSize:    indexSize,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
