package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"golfcam/internal/reconcile"
	"golfcam/internal/service"
	"golfcam/internal/store"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case store.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserInactive):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. A partial reset also
// carries its step report.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	var pe *reconcile.PartialBatchError
	if errors.As(err, &pe) {
		c.JSON(status, gin.H{
			"error":     err.Error(),
			"completed": pe.Completed,
			"failed":    pe.Failed,
		})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
