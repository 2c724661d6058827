package handlers

import (
	"errors"
	"net/http"

	"dealership/internal/finance"
	"dealership/internal/lifecycle"
	"dealership/internal/logger"
	"dealership/internal/services"
	"dealership/internal/validation"
	"dealership/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var badRequestErrors = []error{
	lifecycle.ErrUnknownStatus,
	lifecycle.ErrShippingDetailsRequired,
	lifecycle.ErrTrackingRequired,
	lifecycle.ErrVINSuffixRequired,
	services.ErrConfirmationRequired,
	services.ErrNoShippingDraft,
	services.ErrUnknownDocument,
}

var conflictErrors = []error{
	services.ErrCarNotAvailable,
	services.ErrOrderHasCar,
	services.ErrNoCarAssigned,
	gorm.ErrDuplicatedKey,
}

var unauthorizedErrors = []error{
	services.ErrInvalidCredentials,
	services.ErrInactiveProfile,
	services.ErrInvalidToken,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps a service error to its HTTP status.
func respondError(c *gin.Context, err error) {
	var verr *validation.Error
	var ferr *finance.FieldError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": []validation.FieldError{{Field: ferr.Field, Message: ferr.Err.Error()}},
		})
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isAny(err, unauthorizedErrors):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, whatsapp.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log := logger.WithComponent("http")
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func invalidRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}
