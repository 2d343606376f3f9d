package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/treatyourshelf/backend/config"
)

// ScanImageService archives uploaded pantry photos to S3 so scan history can
// link back to the original image.
type ScanImageService struct {
	s3Config *config.S3Config
}

// NewScanImageService creates a new ScanImageService instance
func NewScanImageService(s3Config *config.S3Config) *ScanImageService {
	return &ScanImageService{s3Config: s3Config}
}

// UploadScanImage stores the raw image under pantry-scans/<scan id> and
// returns a presigned URL valid for a week. Objects stay private.
func (s *ScanImageService) UploadScanImage(ctx context.Context, image []byte, mimeType, scanID string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	key := fmt.Sprintf("pantry-scans/%s", scanID)
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url, err := s.s3Config.GeneratePresignedURL(ctx, key, 7*24*time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to presign scan image: %w", err)
	}

	log.Printf("[ScanImageService] archived scan image %s", key)
	return url, nil
}
