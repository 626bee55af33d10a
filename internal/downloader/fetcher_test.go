package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/models"
)

// stubProxy is a ProxyDownloader returning canned bytes or an error.
type stubProxy struct {
	data     []byte
	filename string
	err      error
	calls    int
}

func (s *stubProxy) DownloadBinary(ctx context.Context, reelURL, cookieHeader string) ([]byte, string, error) {
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, s.filename, nil
}

// tempDirFiler creates temp files inside a test directory.
type tempDirFiler struct {
	dir string
}

func (t *tempDirFiler) TempFile(pattern string) (*os.File, error) {
	return os.CreateTemp(t.dir, pattern)
}

func newTestFetcher(t *testing.T, proxy ProxyDownloader) *Fetcher {
	t.Helper()
	return New(proxy, &tempDirFiler{dir: t.TempDir()}, 5*time.Second, logger.NewTestLogger())
}

func TestFetchNativeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native-bytes"))
	}))
	defer server.Close()

	proxy := &stubProxy{}
	fetcher := newTestFetcher(t, proxy)

	info := &models.ReelInfo{VideoURL: server.URL + "/v/clip.mp4"}
	res, err := fetcher.Fetch(context.Background(), info, "https://www.instagram.com/reel/A", "")
	require.NoError(t, err)
	defer os.Remove(res.Path)

	assert.Equal(t, "native", res.Source)
	assert.Equal(t, "clip.mp4", res.Filename)
	assert.Equal(t, 0, proxy.calls, "proxy must not be called when native succeeds")

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "native-bytes", string(data))
}

func TestFetchFallsBackToProxy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	proxy := &stubProxy{data: []byte("proxy-bytes"), filename: "fromproxy.mp4"}
	fetcher := newTestFetcher(t, proxy)

	info := &models.ReelInfo{VideoURL: server.URL + "/v/clip.mp4"}
	res, err := fetcher.Fetch(context.Background(), info, "https://www.instagram.com/reel/A", "cookies")
	require.NoError(t, err)
	defer os.Remove(res.Path)

	assert.Equal(t, "proxy", res.Source)
	assert.Equal(t, "fromproxy.mp4", res.Filename)
	assert.Equal(t, 1, proxy.calls)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "proxy-bytes", string(data))
}

func TestFetchEmptyVideoURLUsesProxy(t *testing.T) {
	proxy := &stubProxy{data: []byte("proxy-bytes"), filename: "fromproxy.mp4"}
	fetcher := newTestFetcher(t, proxy)

	res, err := fetcher.Fetch(context.Background(), &models.ReelInfo{}, "https://www.instagram.com/reel/A", "")
	require.NoError(t, err)
	defer os.Remove(res.Path)
	assert.Equal(t, "proxy", res.Source)
}

func TestFetchBothStrategiesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	proxy := &stubProxy{err: errors.FromStatusCode(403, "login required")}
	fetcher := newTestFetcher(t, proxy)

	info := &models.ReelInfo{VideoURL: server.URL + "/v/clip.mp4"}
	_, err := fetcher.Fetch(context.Background(), info, "https://www.instagram.com/reel/A", "")
	require.Error(t, err)

	// The proxy's typed error must stay reachable for 403 handling.
	assert.True(t, errors.IsAuthError(err))
	assert.Contains(t, err.Error(), "native download failed")
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "clip.mp4", filenameFromURL("https://cdn.test/v/clip.mp4?token=x"))
	assert.True(t, strings.HasPrefix(filenameFromURL("https://cdn.test/"), "reel_"))
	assert.True(t, strings.HasPrefix(filenameFromURL("://bad"), "reel_"))
}
