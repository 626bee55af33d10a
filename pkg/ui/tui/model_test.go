package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgrab/internal/downloader"
	"reelgrab/pkg/history"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/models"
	"reelgrab/pkg/orchestrator"
)

type fakeBackend struct {
	info       *models.ReelInfo
	fetchCalls int
}

func (f *fakeBackend) CheckHealth(ctx context.Context) bool { return true }

func (f *fakeBackend) FetchInfo(ctx context.Context, reelURL, cookieHeader string) (*models.ReelInfo, error) {
	f.fetchCalls++
	return f.info, nil
}

type fakeFetcher struct{}

func (f *fakeFetcher) Fetch(ctx context.Context, info *models.ReelInfo, originalURL, cookieHeader string) (*downloader.Result, error) {
	return &downloader.Result{Path: "/tmp/reel.mp4", Filename: "reel.mp4", Source: "native"}, nil
}

type fakeGallery struct{}

func (f *fakeGallery) EnsureWritable() error { return nil }

func (f *fakeGallery) Save(tmpPath, filename string) (string, error) {
	return filepath.Join("gallery", filename), nil
}

func (f *fakeGallery) Discard(tmpPath string) {}

type fakeCookies struct{}

func (f *fakeCookies) ExportNetscape() (string, bool) { return "", false }

func newTestModel(t *testing.T) (Model, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{info: &models.ReelInfo{Title: "a reel"}}
	log := logger.NewTestLogger()
	orch := orchestrator.New(backend, &fakeFetcher{}, &fakeGallery{}, &fakeCookies{}, log)
	hist, err := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0, log)
	require.NoError(t, err)
	return NewModel(orch, hist), backend
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func runMsg(m Model, msg tea.Msg) (Model, tea.Msg) {
	next, cmd := m.Update(msg)
	if cmd == nil {
		return next.(Model), nil
	}
	return next.(Model), cmd()
}

func TestTypingMirrorsInputIntoOrchestrator(t *testing.T) {
	m, _ := newTestModel(t)

	m = typeString(m, "https://www.instagram.com/reel/ABC")

	assert.Equal(t, "https://www.instagram.com/reel/ABC", m.orch.Input())
}

func TestEnterWithInvalidInputShowsValidation(t *testing.T) {
	m, backend := newTestModel(t)
	m = typeString(m, "not a reel url")

	m, msg := runMsg(m, tea.KeyMsg{Type: tea.KeyEnter})
	done, ok := msg.(fetchDoneMsg)
	require.True(t, ok)
	require.Error(t, done.err)

	assert.Equal(t, orchestrator.StatusIdle, m.orch.Status())
	assert.Equal(t, 0, backend.fetchCalls)
	assert.Contains(t, m.View(), "valid Instagram Reel URL")
}

func TestFetchThenDownloadReachesSuccess(t *testing.T) {
	m, backend := newTestModel(t)
	m = typeString(m, "https://www.instagram.com/reel/ABC123")

	m, msg := runMsg(m, tea.KeyMsg{Type: tea.KeyEnter})
	done := msg.(fetchDoneMsg)
	require.NoError(t, done.err)
	m, _ = runMsg(m, done)
	require.Equal(t, orchestrator.StatusPreview, m.orch.Status())
	assert.Equal(t, 1, backend.fetchCalls)
	assert.Contains(t, m.View(), "a reel")

	m, msg = runMsg(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	dl := msg.(downloadDoneMsg)
	require.NoError(t, dl.err)
	m, _ = runMsg(m, dl)

	assert.Equal(t, orchestrator.StatusSuccess, m.orch.Status())
	assert.Contains(t, m.View(), "saved:")
	assert.Equal(t, 1, m.history.Len(), "a finished download lands in the history")
}

func TestEscResetsEverything(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeString(m, "https://www.instagram.com/reel/ABC123")
	m, msg := runMsg(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runMsg(m, msg)
	require.Equal(t, orchestrator.StatusPreview, m.orch.Status())

	m, _ = runMsg(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, orchestrator.StatusIdle, m.orch.Status())
	assert.Empty(t, m.input.Value())
	assert.Nil(t, m.orch.Info())
}

func TestTabTogglesHistoryPanel(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = runMsg(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "HISTORY")

	m, _ = runMsg(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.NotContains(t, m.View(), "HISTORY")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:09", formatDuration(9.2))
	assert.Equal(t, "1:05", formatDuration(65))
	assert.Equal(t, "2:00", formatDuration(119.6))
}
