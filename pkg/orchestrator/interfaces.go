package orchestrator

import (
	"context"

	"reelgrab/internal/downloader"
	"reelgrab/pkg/models"
)

// BackendClient defines the backend operations the orchestrator drives
type BackendClient interface {
	CheckHealth(ctx context.Context) bool
	FetchInfo(ctx context.Context, reelURL, cookieHeader string) (*models.ReelInfo, error)
}

// MediaFetcher retrieves the video to a temporary file, trying the CDN
// first and the backend proxy second
type MediaFetcher interface {
	Fetch(ctx context.Context, info *models.ReelInfo, originalURL, cookieHeader string) (*downloader.Result, error)
}

// Gallery is the permanent media destination
type Gallery interface {
	EnsureWritable() error
	Save(tmpPath, filename string) (string, error)
	Discard(tmpPath string)
}

// CookieExporter supplies the session cookie payload for backend requests
type CookieExporter interface {
	ExportNetscape() (string, bool)
}
