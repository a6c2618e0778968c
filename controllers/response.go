package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/artvoid/artvoid-api/lifecycle"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/artvoid/artvoid-api/services"
	"github.com/artvoid/artvoid-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var lifecycleStatus = map[lifecycle.Code]int{
	lifecycle.CodeValidation:        http.StatusBadRequest,
	lifecycle.CodeForbidden:         http.StatusForbidden,
	lifecycle.CodeNotFound:          http.StatusNotFound,
	lifecycle.CodeNotOpenTask:       http.StatusConflict,
	lifecycle.CodeAlreadyClaimed:    http.StatusConflict,
	lifecycle.CodePriceLocked:       http.StatusConflict,
	lifecycle.CodeInvalidTransition: http.StatusConflict,
	lifecycle.CodeConflict:          http.StatusConflict,
}

var serviceStatus = map[string]int{
	"VALIDATION_ERROR":    http.StatusBadRequest,
	"MISSING_EMAIL":       http.StatusBadRequest,
	"MISSING_NAME":        http.StatusBadRequest,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"INVALID_PASSWORD":    http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,
	"USER_NOT_FOUND":      http.StatusNotFound,
	"USER_EXISTS":         http.StatusConflict,
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondError maps a domain error onto the response envelope. Anything it
// does not recognise is logged and reported as a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var lerr *lifecycle.Error
	if errors.As(err, &lerr) {
		status, ok := lifecycleStatus[lerr.Code]
		if !ok {
			status = http.StatusConflict
		}
		respondFailure(c, status, string(lerr.Code), lerr.Message)
		return
	}

	var serr *services.ServiceError
	if errors.As(err, &serr) {
		status, ok := serviceStatus[serr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		respondFailure(c, status, serr.Code, serr.Message)
		return
	}

	var ferr *utils.FileUploadError
	if errors.As(err, &ferr) {
		respondFailure(c, http.StatusBadRequest, ferr.Code, ferr.Message)
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondFailure(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	case errors.Is(err, repository.ErrDuplicate):
		respondFailure(c, http.StatusConflict, "DUPLICATE", "Resource already exists")
		return
	}

	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	respondFailure(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong, please try again")
}

// parseID reads a positive numeric path parameter, writing a 400 if it isn't one
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondFailure(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
