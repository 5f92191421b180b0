package middlewares

import (
	"PulmoScan/models"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs an error with detail and writes a generic HTTP error
// response; internal exception text never reaches the client.
func HttpError(c *gin.Context, message string, status int, err error) {
	log.Printf("HTTP %d - %s: %v", status, message, err)
	c.JSON(status, gin.H{"error": message})
}

// RespondError maps a service error onto the HTTP taxonomy and writes it.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		HttpError(c, "Validation failed", http.StatusBadRequest, err)
	case errors.Is(err, models.ErrUnauthenticated):
		HttpError(c, "Authentication required", http.StatusUnauthorized, err)
	case errors.Is(err, models.ErrForbidden):
		HttpError(c, "You don't have permission to access this resource", http.StatusForbidden, err)
	case errors.Is(err, models.ErrConflict):
		// Covers both email and license number conflicts; the wrapped
		// error says which, the client message stays neutral.
		HttpError(c, "Email or license number already registered", http.StatusBadRequest, err)
	case errors.Is(err, models.ErrNotFound):
		HttpError(c, "Resource not found", http.StatusNotFound, err)
	case errors.Is(err, models.ErrRateLimited):
		HttpError(c, "Too many login attempts. Please try again later.", http.StatusTooManyRequests, err)
	case errors.Is(err, models.ErrStorage), errors.Is(err, models.ErrAnalysisFailed):
		HttpError(c, "Analysis failed", http.StatusInternalServerError, err)
	default:
		HttpError(c, "Internal server error", http.StatusInternalServerError, err)
	}
}

// LoggingMiddleware logs method, path, status, and duration per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Printf("Request: %s %s | Status: %d | Duration: %v",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
