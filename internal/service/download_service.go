// internal/service/download_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tikfetch/tiktok-download-service/internal/config"
	"github.com/tikfetch/tiktok-download-service/internal/models"
)

// EventPublisher is the slice of the Kinesis client the service needs.
type EventPublisher interface {
	PutRecord(data string) error
}

// VideoArchiver is the slice of the S3 client the service needs.
type VideoArchiver interface {
	UploadVideo(key string, body io.Reader) (string, error)
}

type DownloadService struct {
	config   *config.Config
	resolver LinkResolver
	events   EventPublisher
	archive  VideoArchiver
	client   *http.Client
}

func NewDownloadService(cfg *config.Config, resolver LinkResolver, events EventPublisher, archive VideoArchiver) *DownloadService {
	// The connect/first-byte timeout is bounded; total transfer time is not.
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.UpstreamConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.UpstreamConnectTimeout,
		ResponseHeaderTimeout: cfg.UpstreamConnectTimeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       30 * time.Second,
	}

	return &DownloadService{
		config:   cfg,
		resolver: resolver,
		events:   events,
		archive:  archive,
		client:   &http.Client{Transport: transport},
	}
}

func (s *DownloadService) ResolveDirectLink(ctx context.Context, sourceURL string) (string, error) {
	directURL, err := s.resolver.Resolve(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("resolution failed for %s: %w", sourceURL, err)
	}
	return directURL, nil
}

// StreamVideo proxies the resolved media URL to the client. Headers go out
// before any body bytes; after that, a failure can only tear the connection
// down, so it is logged rather than reported to the caller.
func (s *DownloadService) StreamVideo(c *gin.Context, session *models.DownloadSession) {
	ctx := c.Request.Context()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, session.DirectURL, nil)
	if err != nil {
		s.failBeforeHeaders(c, session, models.ErrorCodeUpstreamStreamError, err)
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.failBeforeHeaders(c, session, classifyStreamError(err), err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.failBeforeHeaders(c, session, models.ErrorCodeUpstreamStreamError,
			fmt.Errorf("upstream returned status %d", resp.StatusCode))
		return
	}

	c.Header("Content-Type", "video/mp4")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", session.Filename))
	if resp.ContentLength >= 0 {
		session.ContentLength = resp.ContentLength
		c.Header("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	c.Status(http.StatusOK)
	session.Status = models.DownloadStatusStreaming

	upstream := io.Reader(resp.Body)

	// Optionally tee the stream into the S3 archive while it flows to the
	// client. The uploader consumes the pipe end, so nothing is buffered
	// beyond the copy chunks.
	var archiveDone chan error
	var archiveWriter *io.PipeWriter
	if s.config.ArchiveEnabled && s.archive != nil {
		var archiveReader *io.PipeReader
		archiveReader, archiveWriter = io.Pipe()
		upstream = io.TeeReader(resp.Body, archiveWriter)
		archiveDone = make(chan error, 1)
		go func() {
			_, uploadErr := s.archive.UploadVideo(session.Filename, archiveReader)
			if uploadErr != nil {
				// The tee blocks on the pipe once the uploader stops
				// reading; drain it so the client copy keeps flowing and
				// only the archive is lost.
				io.Copy(io.Discard, archiveReader)
			}
			archiveDone <- uploadErr
		}()
	}

	written, err := io.Copy(c.Writer, upstream)
	session.BytesSent = written

	if archiveWriter != nil {
		archiveWriter.CloseWithError(err)
		if uploadErr := <-archiveDone; uploadErr != nil {
			log.Printf("⚠️ Warning: Could not archive %s: %v", session.Filename, uploadErr)
		}
	}

	if err != nil {
		if ctx.Err() != nil {
			// The client went away; the deferred Close releases the
			// upstream connection.
			session.Fail(models.ErrorCodeClientDisconnected)
			log.Printf("🔌 Client disconnected mid-stream - Source: %s, Sent: %d bytes", session.SourceURL, written)
		} else {
			session.Fail(models.ErrorCodeUpstreamStreamError)
			log.Printf("❌ Upstream stream error after headers - Source: %s, Direct: %s, Sent: %d bytes, Error: %v",
				session.SourceURL, session.DirectURL, written, err)
		}
		s.PublishEvent("download_failed", session)
		return
	}

	session.Complete()
	log.Printf("✅ Download complete - File: %s, Sent: %d bytes", session.Filename, written)
	s.PublishEvent("download_completed", session)
}

func (s *DownloadService) failBeforeHeaders(c *gin.Context, session *models.DownloadSession, code models.ErrorCode, cause error) {
	session.Fail(code)
	log.Printf("❌ Streaming failed before headers (%s) - Source: %s, Direct: %s, Error: %v",
		code, session.SourceURL, session.DirectURL, cause)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stream video file."})
	s.PublishEvent("download_failed", session)
}

// PublishEvent reports a session outcome to the event stream, best-effort.
func (s *DownloadService) PublishEvent(eventType string, session *models.DownloadSession) {
	if s.events == nil {
		return
	}

	event := map[string]interface{}{
		"event_type": eventType,
		"session_id": session.ID,
		"source_url": session.SourceURL,
		"filename":   session.Filename,
		"bytes_sent": session.BytesSent,
		"error_code": string(session.ErrorCode),
		"timestamp":  time.Now().Unix(),
	}

	eventJSON, _ := json.Marshal(event)
	if err := s.events.PutRecord(string(eventJSON)); err != nil {
		log.Printf("⚠️ Warning: Could not publish %s event: %v", eventType, err)
	}
}

func classifyStreamError(err error) models.ErrorCode {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrorCodeUpstreamTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorCodeUpstreamTimeout
	}
	return models.ErrorCodeUpstreamStreamError
}
