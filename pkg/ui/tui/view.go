package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"reelgrab/pkg/orchestrator"
)

const logo = `
██████╗ ███████╗███████╗██╗      ██████╗ ██████╗  █████╗ ██████╗
██╔══██╗██╔════╝██╔════╝██║     ██╔════╝ ██╔══██╗██╔══██╗██╔══██╗
██████╔╝█████╗  █████╗  ██║     ██║  ███╗██████╔╝███████║██████╔╝
██╔══██╗██╔══╝  ██╔══╝  ██║     ██║   ██║██╔══██╗██╔══██║██╔══██╗
██║  ██║███████╗███████╗███████╗╚██████╔╝██║  ██║██║  ██║██████╔╝
╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`

// View renders the whole screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(logoStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(statusBadge(m.orch.ServerOnline()))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Reel URL"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(m.renderStatus())

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(m.flash))
	}

	if m.showHistory {
		b.WriteString("\n\n")
		b.WriteString(m.renderHistory())
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderStatus() string {
	switch m.orch.Status() {
	case orchestrator.StatusCheckingServer:
		return m.spinner.View() + " checking server..."

	case orchestrator.StatusFetchingInfo:
		return m.spinner.View() + " fetching reel info..."

	case orchestrator.StatusDownloading:
		return m.spinner.View() + " downloading..."

	case orchestrator.StatusSaving:
		return m.spinner.View() + " saving to gallery..."

	case orchestrator.StatusPreview:
		return m.renderPreview()

	case orchestrator.StatusSuccess:
		return successStyle.Render("saved: " + m.orch.SavedPath())

	case orchestrator.StatusError:
		return m.renderError()
	}

	if msg := m.orch.Message(); msg != "" {
		return warningStyle.Render(msg)
	}
	return ""
}

func (m Model) renderPreview() string {
	info := m.orch.Info()
	if info == nil {
		return ""
	}

	var rows []string
	rows = append(rows, titleStyle.Render(" PREVIEW "))
	rows = append(rows, fmt.Sprintf("%s %s", labelStyle.Render("Title:"), valueStyle.Render(info.Title)))
	if info.Uploader != "" {
		rows = append(rows, fmt.Sprintf("%s %s", labelStyle.Render("Uploader:"), valueStyle.Render(info.Uploader)))
	}
	if info.Duration > 0 {
		rows = append(rows, fmt.Sprintf("%s %s", labelStyle.Render("Duration:"), valueStyle.Render(formatDuration(info.Duration))))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderError() string {
	out := errorStyle.Render("error: " + m.orch.Message())
	if m.orch.LoginRequired() {
		out += "\n" + warningStyle.Render("this reel needs a logged-in session, import cookies with `reelgrab session login`")
	}
	return out
}

func (m Model) renderHistory() string {
	records := m.history.Records()
	if len(records) == 0 {
		return titleStyle.Render(" HISTORY ") + "\n" + historyItemStyle.Render("no downloads yet")
	}

	var rows []string
	rows = append(rows, titleStyle.Render(" HISTORY "))
	shown := records
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, r := range shown {
		label := r.Title
		if label == "" {
			label = r.URL
		}
		rows = append(rows, historyItemStyle.Render(label)+" "+historyTimeStyle.Render(r.DownloadedAt.Format("2006-01-02 15:04")))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderHelp() string {
	keys := []string{"enter: fetch"}
	switch m.orch.Status() {
	case orchestrator.StatusPreview:
		keys = append(keys, "ctrl+d: download")
	case orchestrator.StatusError:
		keys = append(keys, "ctrl+r: retry")
	}
	keys = append(keys, "tab: history", "esc: start over", "ctrl+c: quit")
	return "\n\n" + helpStyle.Render(strings.Join(keys, " • "))
}

// formatDuration renders seconds as m:ss.
func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
