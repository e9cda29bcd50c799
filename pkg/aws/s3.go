// pkg/aws/s3.go
package aws

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Client struct {
	uploader   *s3manager.Uploader
	bucketName string
	mockMode   bool
}

func NewS3Client(region, bucketName string) *S3Client {
	env := os.Getenv("ENVIRONMENT")
	mockMode := env == "development" || env == ""

	if mockMode {
		log.Printf("🔧 S3 client running in mock mode (development)")
		return &S3Client{
			uploader:   nil,
			bucketName: bucketName,
			mockMode:   true,
		}
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
	}))

	return &S3Client{
		uploader:   s3manager.NewUploader(sess),
		bucketName: bucketName,
		mockMode:   false,
	}
}

// UploadVideo streams body into the archive bucket under key. The uploader
// reads body incrementally, so the payload is never held in memory whole.
func (s *S3Client) UploadVideo(key string, body io.Reader) (string, error) {
	if s.mockMode {
		n, err := io.Copy(io.Discard, body)
		if err != nil {
			return "", fmt.Errorf("mock archive drain failed: %w", err)
		}
		mockURL := fmt.Sprintf("s3://%s/%s", s.bucketName, key)
		log.Printf("📁 [MOCK] S3 archive: %s (%d bytes)", mockURL, n)
		return mockURL, nil
	}

	result, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return result.Location, nil
}
