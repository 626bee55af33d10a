package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/fallback"
	"github.com/failsafe-go/failsafe-go/timeout"

	"reelgrab/pkg/logger"
	"reelgrab/pkg/models"
)

// ProxyDownloader fetches the media bytes through the extraction backend.
type ProxyDownloader interface {
	DownloadBinary(ctx context.Context, reelURL, cookieHeader string) ([]byte, string, error)
}

// TempFiler provides temporary files for in-flight downloads.
type TempFiler interface {
	TempFile(pattern string) (*os.File, error)
}

// Result is a finished transfer: a temporary file waiting to be saved.
type Result struct {
	Path     string
	Filename string
	Source   string // "native" or "proxy"
}

// Fetcher downloads a reel with two ordered strategies: a direct GET of
// the CDN video URL, then the backend proxy when the direct transfer
// fails for any reason. The first success wins.
type Fetcher struct {
	httpClient *http.Client
	proxy      ProxyDownloader
	files      TempFiler
	timeout    time.Duration
	log        logger.Logger
}

// New creates a fetcher. timeout bounds the native attempt; the proxy
// enforces its own deadline.
func New(proxy ProxyDownloader, files TempFiler, nativeTimeout time.Duration, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		httpClient: &http.Client{},
		proxy:      proxy,
		files:      files,
		timeout:    nativeTimeout,
		log:        log,
	}
}

// Fetch runs the strategy chain. originalURL is the reel page URL the
// proxy expects; info.VideoURL feeds the native attempt. When both
// strategies fail, the proxy's error is returned wrapped with the native
// failure so the caller still sees the typed backend error.
func (f *Fetcher) Fetch(ctx context.Context, info *models.ReelInfo, originalURL, cookieHeader string) (*Result, error) {
	var nativeErr error

	fb := fallback.NewBuilderWithFunc[*Result](func(exec failsafe.Execution[*Result]) (*Result, error) {
		nativeErr = exec.LastError()
		f.log.WarnWithFields("native download failed, falling back to proxy", map[string]interface{}{
			"url":   info.VideoURL,
			"error": fmt.Sprintf("%v", nativeErr),
		})

		res, err := f.viaProxy(ctx, originalURL, cookieHeader)
		if err != nil {
			return nil, fmt.Errorf("native download failed (%v); proxy download failed: %w", nativeErr, err)
		}
		return res, nil
	}).Build()

	to := timeout.New[*Result](f.timeout)

	return failsafe.With[*Result](fb, to).WithContext(ctx).Get(func() (*Result, error) {
		return f.native(ctx, info.VideoURL)
	})
}

// native downloads the CDN URL straight into a temporary file.
func (f *Fetcher) native(ctx context.Context, videoURL string) (*Result, error) {
	if videoURL == "" {
		return nil, fmt.Errorf("no video URL in reel info")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("direct download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("direct download returned status %d", resp.StatusCode)
	}

	file, err := f.files.TempFile("reel-*.mp4")
	if err != nil {
		return nil, err
	}

	written, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to write video data: %w", err)
	}
	if closeErr != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to close temporary file: %w", closeErr)
	}

	f.log.DebugWithFields("native download complete", map[string]interface{}{
		"url":  videoURL,
		"size": written,
	})
	return &Result{
		Path:     file.Name(),
		Filename: filenameFromURL(videoURL),
		Source:   "native",
	}, nil
}

// viaProxy requests the bytes from the backend and spools them to a
// temporary file.
func (f *Fetcher) viaProxy(ctx context.Context, originalURL, cookieHeader string) (*Result, error) {
	data, filename, err := f.proxy.DownloadBinary(ctx, originalURL, cookieHeader)
	if err != nil {
		return nil, err
	}

	file, err := f.files.TempFile("reel-*.mp4")
	if err != nil {
		return nil, err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to write video data: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	return &Result{
		Path:     file.Name(),
		Filename: filename,
		Source:   "proxy",
	}, nil
}

// filenameFromURL derives a local name from the CDN URL path.
func filenameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		name := path.Base(u.Path)
		if name != "" && name != "/" && name != "." && strings.Contains(name, ".") {
			return name
		}
	}
	return fmt.Sprintf("reel_%d.mp4", time.Now().Unix())
}
