package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadEnv(t *testing.T, images services.ImageService, dir string) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	uc := NewUploadController(images, dir, nil)

	env.router.POST("/uploads", middleware.RequireActor(), uc.UploadImage)
	env.router.GET("/uploads/:filename", uc.GetUploadedFile)
	return env
}

func TestUploadImage(t *testing.T) {
	dir := t.TempDir()
	env := newUploadEnv(t, services.NewLocalImageService(dir), dir)

	w, response := env.upload(t, http.MethodPost, "/uploads", customerSub, nil, "image", "Reference.PNG", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataMap(t, response)
	key := data["key"].(string)
	assert.Equal(t, ".png", filepath.Ext(key))
	assert.Equal(t, "/api/v1/uploads/"+key, data["url"])
	assert.FileExists(t, filepath.Join(dir, key))

	tests := []struct {
		name           string
		subject        string
		fileField      string
		filename       string
		expectedStatus int
		expectedError  string
	}{
		{"Guest cannot upload", "", "image", "ref.png", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"Missing file part", customerSub, "", "", http.StatusBadRequest, "MISSING_FILE"},
		{"Wrong field name", customerSub, "file", "ref.png", http.StatusBadRequest, "MISSING_FILE"},
		{"Unsupported format", customerSub, "image", "ref.pdf", http.StatusBadRequest, "INVALID_FILE_FORMAT"},
		{"Videos are not reference images", customerSub, "image", "ref.mp4", http.StatusBadRequest, "INVALID_FILE_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.upload(t, http.MethodPost, "/uploads", tt.subject, nil, tt.fileField, tt.filename, pngBytes)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedError, errorCode(response))
		})
	}
}

func TestUploadImageToS3(t *testing.T) {
	mock := services.NewMockS3Service()
	env := newUploadEnv(t, services.NewS3ImageService(mock), "")

	w, response := env.upload(t, http.MethodPost, "/uploads", artistSub, nil, "image", "sketch.jpg", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataMap(t, response)
	assert.True(t, mock.FileExists(data["key"].(string)))
	assert.NotEmpty(t, data["url"])

	// nothing is served from disk when uploads live in S3
	w, _ = env.do(t, http.MethodGet, "/uploads/sketch.jpg", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUploadedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "piece.png"), pngBytes, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reel.mp4"), []byte("video"), 0644))
	env := newUploadEnv(t, services.NewLocalImageService(dir), dir)

	tests := []struct {
		name                string
		path                string
		expectedStatus      int
		expectedContentType string
		expectedError       string
	}{
		{"Serves an image", "/uploads/piece.png", http.StatusOK, "image/png", ""},
		{"Serves a video", "/uploads/reel.mp4", http.StatusOK, "video/mp4", ""},
		{"Missing file", "/uploads/missing.png", http.StatusNotFound, "", "FILE_NOT_FOUND"},
		{"Unsupported type", "/uploads/notes.txt", http.StatusBadRequest, "", "INVALID_FILE_TYPE"},
		{"Directory traversal", "/uploads/..secret.png", http.StatusBadRequest, "", "INVALID_FILENAME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedContentType != "" {
				assert.Equal(t, tt.expectedContentType, w.Header().Get("Content-Type"))
				assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
				return
			}
			assert.Equal(t, tt.expectedError, errorCode(response))
		})
	}
}
