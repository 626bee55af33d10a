package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"reelgrab/pkg/history"
	"reelgrab/pkg/orchestrator"
)

// Model represents the TUI model. All flow state lives in the
// orchestrator; the model only holds the widgets and view toggles.
type Model struct {
	orch    *orchestrator.Orchestrator
	history *history.Store

	input   textinput.Model
	spinner spinner.Model

	width       int
	height      int
	showHistory bool
	flash       string
}

// NewModel creates a new TUI model bound to an orchestrator and the
// download history.
func NewModel(orch *orchestrator.Orchestrator, hist *history.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.instagram.com/reel/..."
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		orch:    orch,
		history: hist,
		input:   ti,
		spinner: s,
	}
}

// Init starts the spinner and the background server check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, checkServerCmd(m.orch))
}
