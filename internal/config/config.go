// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// External Services
	ExtractorGRPCAddr string

	// AWS
	AWSRegion         string
	KinesisStreamName string
	S3BucketName      string
	ArchiveEnabled    bool

	// Redis
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ResolveCacheTTL time.Duration

	// Timeouts
	UpstreamConnectTimeout time.Duration
	GRPCTimeout            time.Duration
}

func Load() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8085"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// External Services
		ExtractorGRPCAddr: getEnv("EXTRACTOR_SERVICE_GRPC_ADDR", "extractor-service:9090"),

		// AWS
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		KinesisStreamName: getEnv("KINESIS_STREAM_NAME", "download-events"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "tiktok-video-archive"),
		ArchiveEnabled:    getEnvAsBool("ARCHIVE_ENABLED", false),

		// Redis
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		ResolveCacheTTL: getEnvAsDuration("RESOLVE_CACHE_TTL", 15*time.Minute),

		// Timeouts
		UpstreamConnectTimeout: getEnvAsDuration("UPSTREAM_CONNECT_TIMEOUT", 15*time.Second),
		GRPCTimeout:            getEnvAsDuration("GRPC_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
