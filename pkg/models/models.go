package models

import "time"

// ReelInfo is the metadata the backend returns for a reel. It lives only
// for the current lookup and is discarded when the input changes.
type ReelInfo struct {
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
	VideoURL  string  `json:"video_url"`
	Uploader  string  `json:"uploader"`
}

// DownloadRecord is one completed download in the local history. Records
// are immutable after creation.
type DownloadRecord struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Uploader     string    `json:"uploader"`
	Thumbnail    string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// HealthResponse is the body of the backend root endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the backend's non-2xx body shape.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
