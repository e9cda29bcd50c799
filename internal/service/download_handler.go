// internal/service/download_handler.go
package service

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tikfetch/tiktok-download-service/internal/config"
	"github.com/tikfetch/tiktok-download-service/internal/models"
)

type DownloadHandler struct {
	config    *config.Config
	downloads *DownloadService
}

func NewDownloadHandler(cfg *config.Config, downloads *DownloadService) *DownloadHandler {
	return &DownloadHandler{
		config:    cfg,
		downloads: downloads,
	}
}

// DownloadVideo accepts {"url": "..."}, resolves it to a direct media URL and
// streams the file back as an attachment.
func (h *DownloadHandler) DownloadVideo(c *gin.Context) {
	// The body is accumulated raw and decoded in one step so a truncated or
	// non-JSON payload surfaces as a single decode failure.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("❌ Error reading request body (%s): %v", models.ErrorCodeInvalidRequestBody, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body or missing URL."})
		return
	}

	var req models.DownloadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Printf("❌ Error parsing download request (%s): %v", models.ErrorCodeInvalidRequestBody, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body or missing URL."})
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		log.Printf("❌ Download request without a URL (%s)", models.ErrorCodeMissingURL)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing TikTok video URL."})
		return
	}

	session := models.NewDownloadSession(req.URL)
	log.Printf("📥 Download request - Session: %s, URL: %s", session.ID, session.SourceURL)

	directURL, err := h.downloads.ResolveDirectLink(c.Request.Context(), session.SourceURL)
	if err != nil {
		session.Fail(models.ErrorCodeResolutionFailed)
		log.Printf("❌ Resolution failed (%s) - Source: %s, Error: %v", session.ErrorCode, session.SourceURL, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not extract direct video link. Service might be down."})
		h.downloads.PublishEvent("download_failed", session)
		return
	}

	session.DirectURL = directURL
	log.Printf("🔗 Resolved direct link - Session: %s", session.ID)

	h.downloads.StreamVideo(c, session)
}
