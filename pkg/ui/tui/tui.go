package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"reelgrab/pkg/history"
	"reelgrab/pkg/orchestrator"
)

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
}

// NewTUI creates a new TUI instance driving the given orchestrator.
func NewTUI(orch *orchestrator.Orchestrator, hist *history.Store) *TUI {
	model := NewModel(orch, hist)
	program := tea.NewProgram(model, tea.WithAltScreen())

	return &TUI{program: program}
}

// Start runs the TUI until the user quits.
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}
