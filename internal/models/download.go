// internal/models/download.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DownloadStatus string

const (
	DownloadStatusPending   DownloadStatus = "pending"
	DownloadStatusStreaming DownloadStatus = "streaming"
	DownloadStatusSucceeded DownloadStatus = "succeeded"
	DownloadStatusFailed    DownloadStatus = "failed"
)

// ErrorCode classifies why a download request failed. Codes are used in
// server logs and published events, never in client-facing bodies.
type ErrorCode string

const (
	ErrorCodeInvalidRequestBody  ErrorCode = "InvalidRequestBody"
	ErrorCodeMissingURL          ErrorCode = "MissingURL"
	ErrorCodeResolutionFailed    ErrorCode = "ResolutionFailed"
	ErrorCodeUpstreamTimeout     ErrorCode = "UpstreamTimeout"
	ErrorCodeUpstreamStreamError ErrorCode = "UpstreamStreamError"
	ErrorCodeClientDisconnected  ErrorCode = "ClientDisconnected"
	ErrorCodeMethodNotAllowed    ErrorCode = "MethodNotAllowed"
)

type DownloadRequest struct {
	URL string `json:"url"`
}

// DownloadSession tracks one in-flight proxied transfer. Exactly one session
// exists per request; it is never shared or reused.
type DownloadSession struct {
	ID            string         `json:"id"`
	SourceURL     string         `json:"source_url"`
	DirectURL     string         `json:"direct_url,omitempty"`
	Filename      string         `json:"filename"`
	ContentLength int64          `json:"content_length"` // -1 when upstream does not declare one
	BytesSent     int64          `json:"bytes_sent"`
	Status        DownloadStatus `json:"status"`
	ErrorCode     ErrorCode      `json:"error_code,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

func NewDownloadSession(sourceURL string) *DownloadSession {
	now := time.Now()
	return &DownloadSession{
		ID:            uuid.NewString(),
		SourceURL:     sourceURL,
		Filename:      fmt.Sprintf("tiktok-video-%d.mp4", now.UnixMilli()),
		ContentLength: -1,
		Status:        DownloadStatusPending,
		StartedAt:     now,
	}
}

func (s *DownloadSession) Complete() {
	now := time.Now()
	s.Status = DownloadStatusSucceeded
	s.CompletedAt = &now
}

func (s *DownloadSession) Fail(code ErrorCode) {
	now := time.Now()
	s.Status = DownloadStatusFailed
	s.ErrorCode = code
	s.CompletedAt = &now
}
