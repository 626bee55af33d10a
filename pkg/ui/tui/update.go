package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"reelgrab/pkg/orchestrator"
)

// serverCheckedMsg carries the result of the background health check.
type serverCheckedMsg struct {
	online bool
}

// fetchDoneMsg is sent when the metadata fetch resolves.
type fetchDoneMsg struct {
	err error
}

// downloadDoneMsg is sent when the download flow resolves.
type downloadDoneMsg struct {
	savedPath string
	err       error
}

func checkServerCmd(orch *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return serverCheckedMsg{online: orch.CheckServer(context.Background())}
	}
}

func fetchCmd(orch *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: orch.FetchInfo(context.Background())}
	}
}

func downloadCmd(orch *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		err := orch.Download(context.Background())
		return downloadDoneMsg{savedPath: orch.SavedPath(), err: err}
	}
}

func retryCmd(orch *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		err := orch.Retry(context.Background())
		return downloadDoneMsg{savedPath: orch.SavedPath(), err: err}
	}
}

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case serverCheckedMsg:
		return m, nil

	case fetchDoneMsg:
		m.flash = ""
		return m, nil

	case downloadDoneMsg:
		m.flash = ""
		if msg.err == nil {
			m.appendHistory()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncInput()
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		if m.orch.IsBusy() {
			return m, nil
		}
		m.flash = ""
		return m, fetchCmd(m.orch)

	case "ctrl+d":
		if m.orch.IsBusy() || m.orch.Status() != orchestrator.StatusPreview {
			return m, nil
		}
		return m, downloadCmd(m.orch)

	case "ctrl+r":
		if m.orch.IsBusy() || m.orch.Status() != orchestrator.StatusError {
			return m, nil
		}
		return m, retryCmd(m.orch)

	case "esc":
		m.orch.Reset()
		m.input.SetValue("")
		m.flash = ""
		m.showHistory = false
		return m, nil

	case "tab":
		m.showHistory = !m.showHistory
		return m, nil
	}

	// Everything else edits the URL input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncInput()
	return m, cmd
}

// syncInput mirrors the text field into the orchestrator, which silently
// invalidates a held preview or error when the value changed.
func (m *Model) syncInput() {
	m.orch.SetInput(m.input.Value())
}

// appendHistory records the finished download. A history write failure is
// surfaced as a flash message, never as a flow error.
func (m *Model) appendHistory() {
	rec, ok := m.orch.Record()
	if !ok {
		return
	}
	if _, err := m.history.Add(rec); err != nil {
		m.flash = "saved, but updating history failed"
	}
}
