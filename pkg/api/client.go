package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"reelgrab/pkg/config"
	"reelgrab/pkg/errors"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/models"
)

// cookieHeaderName carries the exported cookie payload to the backend.
const cookieHeaderName = "X-Cookies"

// Client talks to the extraction backend. Every operation is bounded by
// its own deadline; a timeout surfaces exactly like a connection failure.
type Client struct {
	httpClient *http.Client
	baseURL    string

	healthTimeout   time.Duration
	infoTimeout     time.Duration
	downloadTimeout time.Duration

	logger logger.Logger
}

// NewClient creates a backend client from the backend configuration.
func NewClient(cfg *config.BackendConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		// Deadlines are per-operation contexts, not a client-wide timeout.
		httpClient:      &http.Client{},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		healthTimeout:   cfg.HealthTimeout,
		infoTimeout:     cfg.InfoTimeout,
		downloadTimeout: cfg.DownloadTimeout,
		logger:          log,
	}
}

// CheckHealth reports whether the backend is reachable and healthy: a 2xx
// response whose body is {"status":"ok"}. It never returns an error.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}
	return health.Status == "ok"
}

// FetchInfo asks the backend for a reel's metadata. cookieHeader is the
// exported session payload, empty for anonymous scraping.
func (c *Client) FetchInfo(ctx context.Context, reelURL, cookieHeader string) (*models.ReelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.infoTimeout)
	defer cancel()

	req, err := c.newPostRequest(ctx, "/info", reelURL, cookieHeader)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.classify(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transport(fmt.Sprintf("failed to read response body: %v", err))
	}

	var info models.ReelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		c.logger.ErrorWithFields("failed to parse info response", map[string]interface{}{
			"url":    reelURL,
			"status": resp.StatusCode,
			"error":  err.Error(),
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParse,
			Message: fmt.Sprintf("failed to parse reel info: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("reel info fetched", map[string]interface{}{
		"url":      reelURL,
		"title":    info.Title,
		"uploader": info.Uploader,
	})
	return &info, nil
}

// DownloadBinary fetches the media bytes through the backend proxy. The
// filename comes from the Content-Disposition header, falling back to a
// timestamp-based default when absent or unparsable.
func (c *Client) DownloadBinary(ctx context.Context, reelURL, cookieHeader string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := c.newPostRequest(ctx, "/download", reelURL, cookieHeader)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if err := c.classify(resp); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Transport(fmt.Sprintf("failed to read media body: %v", err))
	}

	filename := filenameFromDisposition(resp.Header.Get("Content-Disposition"))

	c.logger.InfoWithFields("media downloaded via proxy", map[string]interface{}{
		"url":      reelURL,
		"filename": filename,
		"size":     len(data),
	})
	return data, filename, nil
}

// newPostRequest builds a JSON POST with the {url} body and the optional
// cookie payload. Header values cannot carry raw newlines, so the
// multi-line Netscape payload is escaped for transport.
func (c *Client) newPostRequest(ctx context.Context, path, reelURL, cookieHeader string) (*http.Request, error) {
	body, err := json.Marshal(map[string]string{"url": reelURL})
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to encode request body: %v", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if cookieHeader != "" {
		req.Header.Set(cookieHeaderName, strings.ReplaceAll(cookieHeader, "\n", "\\n"))
	}
	return req, nil
}

// do executes the request and maps network-level failures to transport
// errors with status code 0.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Transport("server unreachable")
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})
	return resp, nil
}

// classify maps a non-2xx response to a typed error, extracting the
// server's detail message when the body is parsable JSON.
func (c *Client) classify(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var detail string
	if body, err := io.ReadAll(resp.Body); err == nil {
		var errResp models.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil {
			detail = errResp.Detail
		}
	}

	c.logger.WarnWithFields("backend returned error", map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.String(),
		"detail": detail,
	})
	return errors.FromStatusCode(resp.StatusCode, detail)
}

// filenameFromDisposition extracts the attachment filename, or a
// timestamp default when the header is absent or unparsable.
func filenameFromDisposition(header string) string {
	if header != "" {
		if _, params, err := mime.ParseMediaType(header); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return fmt.Sprintf("reel_%d.mp4", time.Now().Unix())
}
