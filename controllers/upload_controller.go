package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/artvoid/artvoid-api/services"
	"github.com/artvoid/artvoid-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadController stores reference images and serves locally stored files
type UploadController struct {
	images services.ImageService
	dir    string
	logger *zap.Logger
}

// NewUploadController creates an upload controller. dir is where the local
// image service writes; it may be empty when uploads go to S3.
func NewUploadController(images services.ImageService, dir string, logger *zap.Logger) *UploadController {
	return &UploadController{images: images, dir: dir, logger: orNop(logger)}
}

// UploadImage handles POST /api/v1/uploads - multipart "image" file
func (uc *UploadController) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required")
		return
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		respondError(c, uc.logger, err)
		return
	}

	key, err := uc.images.UploadImage(c.Request.Context(), fileHeader)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"key": key,
		"url": services.ResolveImageURL(c.Request.Context(), uc.images, &key),
	})
}

// GetUploadedFile handles GET /api/v1/uploads/:filename - serves locally stored images and videos
func (uc *UploadController) GetUploadedFile(c *gin.Context) {
	filename := c.Param("filename")

	// Validate filename is not empty
	if filename == "" {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	contentType := utils.ContentType(filename)
	if contentType == "application/octet-stream" {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Unsupported file type")
		return
	}

	if uc.dir == "" {
		respondFailure(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	filePath := filepath.Join(uc.dir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondFailure(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
