package middlewares

import (
	"PulmoScan/utils"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextKey is a custom context key type for values stored per request.
type contextKey string

const doctorIDKey contextKey = "doctorID"

// TokenAuthMiddleware validates the Authorization bearer token and adds the
// authenticated doctor ID to the request context. Authentication failures
// stop here; orchestration logic never sees an unauthenticated request.
func TokenAuthMiddleware(tokens *utils.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			c.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		doctorID, err := tokens.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), doctorIDKey, doctorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ExtractDoctorIDFromContext retrieves the authenticated doctor ID.
func ExtractDoctorIDFromContext(ctx context.Context) (int64, error) {
	doctorID, ok := ctx.Value(doctorIDKey).(int64)
	if !ok {
		return 0, errors.New("doctor ID not found in context")
	}
	return doctorID, nil
}
