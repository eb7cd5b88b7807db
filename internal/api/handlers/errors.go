package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
)

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInput), errors.Is(err, apperrors.ErrModelUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, logger.WithContext(c))
	}
	c.JSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
