// pkg/grpc/resolver.go
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// placeholderVideoURL stands in for a resolved direct link until the real
// extractor service is wired up with protobuf definitions.
const placeholderVideoURL = "https://www.learningcontainer.com/wp-content/uploads/2020/05/sample-mp4-file.mp4"

type ExtractorClient struct {
	conn     *grpc.ClientConn
	timeout  time.Duration
	mockMode bool
}

func NewExtractorClient(address string, timeout time.Duration) (*ExtractorClient, error) {
	log.Printf("🔌 Connecting to Extractor Service at: %s", address)

	conn, err := grpc.Dial(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Extractor Service: %w", err)
	}

	log.Printf("✅ Connected to Extractor Service")

	env := os.Getenv("ENVIRONMENT")
	mockMode := env == "development" || env == ""

	return &ExtractorClient{
		conn:     conn,
		timeout:  timeout,
		mockMode: mockMode,
	}, nil
}

// Resolve asks the extractor service to turn a TikTok share URL into a
// direct, fetchable media URL.
func (c *ExtractorClient) Resolve(ctx context.Context, sourceURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request := map[string]interface{}{
		"url": sourceURL,
	}

	reqData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	err = c.conn.Invoke(ctx, "/ExtractorService/ResolveVideoLink", reqData, &[]byte{})
	if err != nil {
		if c.mockMode {
			// TODO: Implement proper gRPC with protobuf
			log.Printf("🔄 Extractor call failed (%v), simulating resolution for development", err)
			return placeholderVideoURL, nil
		}

		return "", fmt.Errorf("extractor call failed: %w", err)
	}

	// TODO: Parse response properly when protobuf is implemented
	return placeholderVideoURL, nil
}

func (c *ExtractorClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
