package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

var badRequestErrors = []error{
	domain.ErrHabitTitleEmpty,
	domain.ErrHabitTitleTooLong,
	domain.ErrHabitDescTooLong,
	domain.ErrHabitInvalidUserID,
	domain.ErrInvalidColor,
	domain.ErrInvalidFrequency,
	domain.ErrInvalidRange,
	domain.ErrFrequencyOverRange,
	domain.ErrInvalidCreatedDate,
	domain.ErrInvalidTracker,
	domain.ErrInvalidDate,
	domain.ErrTrackerConflictingStatus,
	domain.ErrTrackerNoteTooLong,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
}

// handleError maps domain errors to status codes. Anything unknown is a 500
// and is attached to the context for the request logger.
func handleError(c *gin.Context, err error) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrTrackerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tracker not found"})
	case errors.Is(err, domain.ErrHabitConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "Data has been modified elsewhere. Please sync.",
		})
	case errors.Is(err, domain.ErrHabitArchived):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
