package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/artvoid/artvoid-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	uploadedImages map[string][]byte // map of image key to file content
	mu             sync.RWMutex
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		uploadedImages: make(map[string][]byte),
	}
}

// UploadImage simulates uploading an image
func (m *MockImageService) UploadImage(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateMediaFile(fileHeader); err != nil {
		return "", err
	}

	content, err := readAll(fileHeader)
	if err != nil {
		return "", err
	}

	imageKey := fmt.Sprintf("uploads/mock_%s", fileHeader.Filename)

	m.mu.Lock()
	m.uploadedImages[imageKey] = content
	m.mu.Unlock()

	return imageKey, nil
}

// GetImageURL returns a fake URL for any key, uploaded or not
func (m *MockImageService) GetImageURL(_ context.Context, imageKey string) (string, error) {
	if imageKey == "" || isExternalURL(imageKey) {
		return imageKey, nil
	}
	return fmt.Sprintf("https://test-bucket.s3.ap-south-1.amazonaws.com/%s?mock=true", imageKey), nil
}

// DeleteImage simulates deleting an image
func (m *MockImageService) DeleteImage(_ context.Context, imageKey string) error {
	m.mu.Lock()
	delete(m.uploadedImages, imageKey)
	m.mu.Unlock()
	return nil
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageService) ImageExists(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedImages[imageKey]
	return exists
}

// Count returns the number of stored images
func (m *MockImageService) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.uploadedImages)
}
