package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srgjo27/driveezzy/internal/core/domain"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON body. Storage and unexpected failures
// are logged and reported without their cause.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)

	switch status {
	case http.StatusServiceUnavailable:
		logger.Error("Storage unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "service temporarily unavailable"})
	case http.StatusInternalServerError:
		logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}
