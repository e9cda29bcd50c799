// internal/service/download_service_test.go
package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tikfetch/tiktok-download-service/internal/config"
	"github.com/tikfetch/tiktok-download-service/internal/models"
)

// stallingArchiver consumes a little of the stream, then fails the upload
// without reading the rest.
type stallingArchiver struct {
	readLimit int64
}

func (a *stallingArchiver) UploadVideo(key string, body io.Reader) (string, error) {
	io.CopyN(io.Discard, body, a.readLimit)
	return "", errors.New("bucket unreachable")
}

type capturingArchiver struct {
	mu   sync.Mutex
	data bytes.Buffer
}

func (a *capturingArchiver) UploadVideo(key string, body io.Reader) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := io.Copy(&a.data, body); err != nil {
		return "", err
	}
	return "s3://test-archive/" + key, nil
}

func streamTestConfig() *config.Config {
	return &config.Config{
		Environment:            "test",
		UpstreamConnectTimeout: 2 * time.Second,
	}
}

func streamTestContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestStreamVideoArchiveFailureDoesNotStallClient(t *testing.T) {
	payload := bytes.Repeat([]byte("v"), 256*1024)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer upstream.Close()

	cfg := streamTestConfig()
	cfg.ArchiveEnabled = true
	svc := NewDownloadService(cfg, &fakeResolver{}, nil, &stallingArchiver{readLimit: 8 * 1024})

	session := models.NewDownloadSession("https://www.tiktok.com/@user/video/1")
	session.DirectURL = upstream.URL

	c, w := streamTestContext(httptest.NewRequest(http.MethodPost, "/api/download", nil))

	done := make(chan struct{})
	go func() {
		svc.StreamVideo(c, session)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("StreamVideo did not finish after the archive upload failed")
	}

	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Errorf("client body differs from upstream payload (%d vs %d bytes)", w.Body.Len(), len(payload))
	}
	if session.Status != models.DownloadStatusSucceeded {
		t.Errorf("expected the download to succeed despite the archive failure, got %q", session.Status)
	}
}

func TestStreamVideoArchivesFullCopy(t *testing.T) {
	payload := bytes.Repeat([]byte("archive-me-"), 4096)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer upstream.Close()

	cfg := streamTestConfig()
	cfg.ArchiveEnabled = true
	archive := &capturingArchiver{}
	svc := NewDownloadService(cfg, &fakeResolver{}, nil, archive)

	session := models.NewDownloadSession("https://www.tiktok.com/@user/video/1")
	session.DirectURL = upstream.URL

	c, w := streamTestContext(httptest.NewRequest(http.MethodPost, "/api/download", nil))
	svc.StreamVideo(c, session)

	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Errorf("client body differs from upstream payload")
	}
	if !bytes.Equal(archive.data.Bytes(), payload) {
		t.Errorf("archived copy differs from upstream payload (%d vs %d bytes)", archive.data.Len(), len(payload))
	}
	if session.Status != models.DownloadStatusSucceeded {
		t.Errorf("expected succeeded status, got %q", session.Status)
	}
}

func TestStreamVideoClientDisconnect(t *testing.T) {
	var sentOnce sync.Once
	sent := make(chan struct{})

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		w.Write([]byte("partial payload"))
		w.(http.Flusher).Flush()
		sentOnce.Do(func() { close(sent) })
		<-r.Context().Done()
	}))
	defer upstream.Close()

	svc := NewDownloadService(streamTestConfig(), &fakeResolver{}, nil, nil)

	session := models.NewDownloadSession("https://www.tiktok.com/@user/video/1")
	session.DirectURL = upstream.URL

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/download", nil).WithContext(ctx)
	c, _ := streamTestContext(req)

	done := make(chan struct{})
	go func() {
		svc.StreamVideo(c, session)
		close(done)
	}()

	<-sent
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("StreamVideo did not return after the client went away")
	}

	if session.Status != models.DownloadStatusFailed {
		t.Errorf("expected failed status, got %q", session.Status)
	}
	if session.ErrorCode != models.ErrorCodeClientDisconnected {
		t.Errorf("expected %q, got %q", models.ErrorCodeClientDisconnected, session.ErrorCode)
	}
}
