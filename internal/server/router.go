// internal/server/router.go
package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tikfetch/tiktok-download-service/internal/config"
	"github.com/tikfetch/tiktok-download-service/internal/models"
	"github.com/tikfetch/tiktok-download-service/internal/service"
)

func NewRouter(cfg *config.Config, downloadHandler *service.DownloadHandler) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware())

	// Wrong-method requests get a plain 405 naming the permitted method.
	router.HandleMethodNotAllowed = true
	router.NoMethod(MethodNotAllowed)

	// Download routes
	apiRoutes := router.Group("/api")
	{
		apiRoutes.POST("/download", downloadHandler.DownloadVideo)
	}

	// Management routes
	mgmtRoutes := router.Group("/api/v1")
	{
		mgmtRoutes.GET("/health", HealthCheck)
	}

	return router
}

func MethodNotAllowed(c *gin.Context) {
	allow := "POST"
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1") {
		allow = "GET"
	}

	log.Printf("❌ Method not allowed (%s) - %s %s", models.ErrorCodeMethodNotAllowed, c.Request.Method, c.Request.URL.Path)

	c.Header("Allow", allow)
	c.String(http.StatusMethodNotAllowed, "Method %s Not Allowed", c.Request.Method)
}
