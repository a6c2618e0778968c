package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/artvoid/artvoid-api/utils"
)

// ImageService handles all image-related operations including upload, retrieval, and deletion
type ImageService interface {
	// UploadImage validates and uploads an image or video, returns the storage key
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for accessing an uploaded image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService creates an image service with an S3 backend
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// UploadImage validates and uploads a file to S3
func (s *S3ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateMediaFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(ctx, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s3Key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" || isExternalURL(imageKey) {
		return imageKey, nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" || isExternalURL(imageKey) {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// LocalImageService stores uploads on disk and serves them from /api/v1/uploads
type LocalImageService struct {
	dir string
}

// NewLocalImageService creates an image service writing under dir
func NewLocalImageService(dir string) *LocalImageService {
	return &LocalImageService{dir: dir}
}

// Dir is the directory uploads are written to
func (s *LocalImageService) Dir() string {
	return s.dir
}

func (s *LocalImageService) UploadImage(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateMediaFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return filename, nil
}

func (s *LocalImageService) GetImageURL(_ context.Context, imageKey string) (string, error) {
	if isExternalURL(imageKey) {
		return imageKey, nil
	}
	return utils.GetImageURL(imageKey), nil
}

func (s *LocalImageService) DeleteImage(_ context.Context, imageKey string) error {
	if imageKey == "" || isExternalURL(imageKey) {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(imageKey)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// ResolveImageURL turns a stored key into a URL, leaving nil keys alone
func ResolveImageURL(ctx context.Context, images ImageService, key *string) *string {
	if images == nil || key == nil || *key == "" {
		return nil
	}
	url, err := images.GetImageURL(ctx, *key)
	if err != nil || url == "" {
		return nil
	}
	return &url
}

// Images attached before uploads existed are stored as absolute URLs
func isExternalURL(key string) bool {
	return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://")
}
