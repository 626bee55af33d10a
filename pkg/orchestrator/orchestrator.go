package orchestrator

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/models"
)

// Status is the current phase of the fetch/download flow
type Status string

const (
	StatusIdle           Status = "idle"
	StatusCheckingServer Status = "checking_server"
	StatusFetchingInfo   Status = "fetching_info"
	StatusPreview        Status = "preview"
	StatusDownloading    Status = "downloading"
	StatusSaving         Status = "saving"
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
)

// reelURLPattern accepts reel, reels and post URLs with an optional www
// prefix. Anything else never reaches the network.
var reelURLPattern = regexp.MustCompile(`^https?://(www\.)?instagram\.com/(reels?|p)/[A-Za-z0-9_-]+`)

const invalidURLMessage = "enter a valid Instagram Reel URL"

// Orchestrator drives the reel download flow as a small state machine.
// One fetch/download sequence runs at a time; callers gate their triggers
// on IsBusy. The health check is the only concurrent operation and it
// only touches the display-level connectivity flag.
type Orchestrator struct {
	client  BackendClient
	fetcher MediaFetcher
	gallery Gallery
	cookies CookieExporter
	log     logger.Logger

	mu            sync.Mutex
	status        Status
	input         string
	info          *models.ReelInfo
	message       string
	loginRequired bool
	serverOnline  bool
	savedPath     string
	savedSource   string
	savedURL      string
}

// New creates an Orchestrator in the idle state.
func New(client BackendClient, fetcher MediaFetcher, gallery Gallery, cookies CookieExporter, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		client:  client,
		fetcher: fetcher,
		gallery: gallery,
		cookies: cookies,
		log:     log,
		status:  StatusIdle,
	}
}

// Status returns the current phase.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Input returns the current URL input.
func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// Info returns the reel metadata held for the current input, nil before a
// successful fetch.
func (o *Orchestrator) Info() *models.ReelInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.info
}

// Message returns the user-facing message from the last validation or
// terminal failure.
func (o *Orchestrator) Message() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.message
}

// LoginRequired reports whether the last failure was a 403, the case that
// should point the user at the session flow.
func (o *Orchestrator) LoginRequired() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loginRequired
}

// ServerOnline returns the display-only connectivity flag set by CheckServer.
func (o *Orchestrator) ServerOnline() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.serverOnline
}

// SavedPath returns the gallery path of the last successful download.
func (o *Orchestrator) SavedPath() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.savedPath
}

// IsLoading reports whether any asynchronous phase is in flight,
// including the background health check. Meant for display; trigger
// gating uses IsBusy so the health check never blocks an action.
func (o *Orchestrator) IsLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isLoadingLocked()
}

func (o *Orchestrator) isLoadingLocked() bool {
	switch o.status {
	case StatusCheckingServer, StatusFetchingInfo, StatusDownloading, StatusSaving:
		return true
	}
	return false
}

// IsBusy reports whether a fetch/download sequence is in flight. Unlike
// IsLoading it ignores the background health check.
func (o *Orchestrator) IsBusy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isBusyLocked()
}

// isBusyLocked reports whether a fetch/download sequence is in flight.
// The background health check is deliberately excluded here: it only
// updates the display flag and must never gate the main flow.
func (o *Orchestrator) isBusyLocked() bool {
	switch o.status {
	case StatusFetchingInfo, StatusDownloading, StatusSaving:
		return true
	}
	return false
}

// SetInput updates the URL input. Editing the input while a preview,
// success, or error is showing silently returns to idle and drops the
// held metadata so a stale preview can never be downloaded.
func (o *Orchestrator) SetInput(input string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if input == o.input {
		return
	}
	o.input = input
	switch o.status {
	case StatusPreview, StatusSuccess, StatusError:
		o.resetLocked()
	}
}

// Reset returns to idle and clears the input, metadata, message, and the
// login-required flag. Safe from any state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.input = ""
	o.resetLocked()
}

func (o *Orchestrator) resetLocked() {
	o.status = StatusIdle
	o.info = nil
	o.message = ""
	o.loginRequired = false
	o.savedPath = ""
	o.savedSource = ""
	o.savedURL = ""
}

// CheckServer probes the backend and records the result. It never fails;
// an unreachable backend just leaves the flag false. Intended to run in
// the background at startup.
func (o *Orchestrator) CheckServer(ctx context.Context) bool {
	o.mu.Lock()
	fromIdle := o.status == StatusIdle
	if fromIdle {
		o.status = StatusCheckingServer
	}
	o.mu.Unlock()

	online := o.client.CheckHealth(ctx)

	o.mu.Lock()
	o.serverOnline = online
	if fromIdle && o.status == StatusCheckingServer {
		o.status = StatusIdle
	}
	o.mu.Unlock()

	o.log.DebugWithFields("server health check finished", map[string]interface{}{
		"online": online,
	})
	return online
}

// FetchInfo validates the current input and fetches the reel metadata.
// Invalid input surfaces a validation message without any network call
// and leaves the state unchanged. Success moves to preview; failure moves
// to error, flagging login-required on 403. A result that arrives after
// the input was edited or the flow was reset is silently discarded.
func (o *Orchestrator) FetchInfo(ctx context.Context) error {
	o.mu.Lock()
	if o.isBusyLocked() {
		o.mu.Unlock()
		return errors.New(errors.ErrorTypeValidation, "another operation is in progress")
	}
	url := strings.TrimSpace(o.input)
	if url == "" || !reelURLPattern.MatchString(url) {
		o.message = invalidURLMessage
		o.mu.Unlock()
		return errors.New(errors.ErrorTypeValidation, invalidURLMessage)
	}
	o.status = StatusFetchingInfo
	o.message = ""
	o.loginRequired = false
	o.info = nil
	o.mu.Unlock()

	header, _ := o.cookies.ExportNetscape()
	info, err := o.client.FetchInfo(ctx, url, header)

	o.mu.Lock()
	defer o.mu.Unlock()
	if strings.TrimSpace(o.input) != url || o.status != StatusFetchingInfo {
		// The input was edited or the flow was reset while the fetch was
		// in flight. The result belongs to the old input, drop it.
		if o.status == StatusFetchingInfo {
			o.status = StatusIdle
		}
		o.log.DebugWithFields("discarding stale fetch result", map[string]interface{}{
			"url": url,
		})
		return nil
	}
	if err != nil {
		o.status = StatusError
		o.message = errors.UserMessage(err)
		o.loginRequired = errors.IsAuthError(err)
		o.log.WithError(err).Warn("metadata fetch failed")
		return err
	}
	o.info = info
	o.status = StatusPreview
	o.log.InfoWithFields("metadata fetched", map[string]interface{}{
		"url":      url,
		"uploader": info.Uploader,
	})
	return nil
}

// Download runs the transfer for the previewed reel. Only valid from the
// preview state.
func (o *Orchestrator) Download(ctx context.Context) error {
	o.mu.Lock()
	if o.isBusyLocked() {
		o.mu.Unlock()
		return errors.New(errors.ErrorTypeValidation, "another operation is in progress")
	}
	if o.status != StatusPreview || o.info == nil {
		o.mu.Unlock()
		return errors.New(errors.ErrorTypeValidation, "fetch a reel before downloading")
	}
	return o.download(ctx)
}

// Retry replays the failed step. When no metadata was obtained for the
// current input the fetch is replayed; otherwise the download is replayed
// directly without re-fetching metadata.
func (o *Orchestrator) Retry(ctx context.Context) error {
	o.mu.Lock()
	if o.status != StatusError {
		o.mu.Unlock()
		return errors.New(errors.ErrorTypeValidation, "nothing to retry")
	}
	if o.info != nil {
		return o.download(ctx)
	}
	o.mu.Unlock()
	return o.FetchInfo(ctx)
}

// download assumes o.mu is held on entry and releases it around the slow
// work. The permission probe always precedes any transfer, the native
// attempt precedes the proxy fallback, and cleanup never fails the flow
// once the gallery save succeeded.
func (o *Orchestrator) download(ctx context.Context) error {
	url := strings.TrimSpace(o.input)
	info := o.info
	o.status = StatusDownloading
	o.message = ""
	o.loginRequired = false
	o.mu.Unlock()

	fail := func(err error) error {
		o.mu.Lock()
		o.status = StatusError
		o.message = errors.UserMessage(err)
		o.loginRequired = errors.IsAuthError(err)
		o.mu.Unlock()
		o.log.WithError(err).Warn("download failed")
		return err
	}

	if err := o.gallery.EnsureWritable(); err != nil {
		return fail(err)
	}

	header, _ := o.cookies.ExportNetscape()
	res, err := o.fetcher.Fetch(ctx, info, url, header)
	if err != nil {
		return fail(err)
	}

	o.mu.Lock()
	o.status = StatusSaving
	o.mu.Unlock()

	saved, err := o.gallery.Save(res.Path, res.Filename)
	if err != nil {
		o.gallery.Discard(res.Path)
		return fail(err)
	}
	o.gallery.Discard(res.Path)

	o.mu.Lock()
	o.status = StatusSuccess
	o.savedPath = saved
	o.savedSource = res.Source
	o.savedURL = url
	o.mu.Unlock()

	o.log.InfoWithFields("reel saved", map[string]interface{}{
		"path":   saved,
		"source": res.Source,
	})
	return nil
}

// Record builds the history entry for the last successful download. The
// second return is false unless the flow is in the success state. The URL
// is the one captured when the download started, so an input edit after
// the transfer cannot skew the record.
func (o *Orchestrator) Record() (models.DownloadRecord, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusSuccess || o.info == nil {
		return models.DownloadRecord{}, false
	}
	return models.DownloadRecord{
		URL:       o.savedURL,
		Title:     o.info.Title,
		Uploader:  o.info.Uploader,
		Thumbnail: o.info.Thumbnail,
		Duration:  o.info.Duration,
	}, true
}
