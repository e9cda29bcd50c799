// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tikfetch/tiktok-download-service/internal/config"
	"github.com/tikfetch/tiktok-download-service/internal/repository"
	"github.com/tikfetch/tiktok-download-service/internal/server"
	"github.com/tikfetch/tiktok-download-service/internal/service"
	"github.com/tikfetch/tiktok-download-service/pkg/aws"
	"github.com/tikfetch/tiktok-download-service/pkg/grpc"
)

func main() {
	log.Println("🚀 Starting TikTok Download Service...")

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded: %+v", cfg)

	// Initialize the extractor client (the external link resolver)
	extractorClient, err := grpc.NewExtractorClient(cfg.ExtractorGRPCAddr, cfg.GRPCTimeout)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Extractor Service: %v", err)
	}
	defer extractorClient.Close()

	// Wrap resolution with the Redis cache unless caching is disabled
	var resolver service.LinkResolver = extractorClient
	if cfg.ResolveCacheTTL > 0 {
		redisRepo := repository.NewRedisRepository(cfg)
		resolver = service.NewCachingResolver(extractorClient, redisRepo, cfg.ResolveCacheTTL)
	}

	// Initialize services
	events := aws.NewKinesisClient(cfg.AWSRegion, cfg.KinesisStreamName)
	archive := aws.NewS3Client(cfg.AWSRegion, cfg.S3BucketName)
	downloadService := service.NewDownloadService(cfg, resolver, events, archive)
	downloadHandler := service.NewDownloadHandler(cfg, downloadService)

	// Setup HTTP server
	router := server.NewRouter(cfg, downloadHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("✅ TikTok Download Service started on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited")
}
