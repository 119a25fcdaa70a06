package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/plateful/backend/config"
)

// ErrUnsupportedImageType is returned when an avatar upload uses a content
// type outside the small allow-list below.
var ErrUnsupportedImageType = errors.New("unsupported image type")

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// StorageService stores profile pictures in the public-read S3 bucket.
type StorageService struct {
	s3Config *config.S3Config
}

var _ IStorageService = (*StorageService)(nil)

// NewStorageService creates a new StorageService instance
func NewStorageService(s3Config *config.S3Config) *StorageService {
	return &StorageService{s3Config: s3Config}
}

// UploadAvatar stores the image under avatars/<userID>.<ext> and returns the
// public URL. Uploading again for the same user overwrites the previous
// object, so stale avatars never accumulate.
func (s *StorageService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedImageType
	}

	key := fmt.Sprintf("avatars/%s.%s", userID, ext)
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

// DeleteAvatar removes a previously uploaded avatar. URLs that do not point
// at this bucket are left alone so externally hosted pictures survive.
func (s *StorageService) DeleteAvatar(ctx context.Context, avatarURL string) error {
	prefix := fmt.Sprintf("https://%s.s3.amazonaws.com/", s.s3Config.BucketName)
	if !strings.HasPrefix(avatarURL, prefix) {
		return nil
	}

	key := strings.TrimPrefix(avatarURL, prefix)
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
