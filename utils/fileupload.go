package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
	// MaxVideoSize is 50MB in bytes
	MaxVideoSize = 50 * 1024 * 1024
)

var imageFormats = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

var videoFormats = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile accepts still images up to MaxFileSize
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	return validate(fileHeader, false)
}

// ValidateMediaFile accepts still images, and videos up to MaxVideoSize
func ValidateMediaFile(fileHeader *multipart.FileHeader) error {
	return validate(fileHeader, true)
}

func validate(fileHeader *multipart.FileHeader, allowVideo bool) error {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))

	_, isImage := imageFormats[ext]
	_, isVideo := videoFormats[ext]
	if !isImage && !(allowVideo && isVideo) {
		allowed := extensions(imageFormats)
		if allowVideo {
			allowed = append(allowed, extensions(videoFormats)...)
		}
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", strings.Join(allowed, ", ")),
		}
	}

	limit := int64(MaxFileSize)
	if isVideo {
		limit = MaxVideoSize
	}
	if fileHeader.Size > limit {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", limit/(1024*1024)),
		}
	}

	return nil
}

func extensions(formats map[string]string) []string {
	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ContentType returns the MIME type for a filename's extension
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := imageFormats[ext]; ok {
		return ct
	}
	if ct, ok := videoFormats[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsVideo reports whether the filename has a video extension
func IsVideo(filename string) bool {
	_, ok := videoFormats[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// NewObjectName returns a collision-free name that keeps the original extension
func NewObjectName(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// SaveUploadedFile saves the uploaded file to the local filesystem
// Returns the generated filename, relative to uploadDir
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir string) (filename string, err error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename = NewObjectName(fileHeader.Filename)
	fullPath := filepath.Join(uploadDir, filename)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filename, nil
}

// GetImageURL returns the URL path for accessing a locally stored upload
func GetImageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filename)
}
