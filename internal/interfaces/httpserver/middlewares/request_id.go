package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/janhq/relay-api/internal/utils/platformerrors"
)

const (
	RequestIDHeader = "X-Request-ID"
	// CorrelationIDHeader is accepted from proxies that do not set X-Request-ID.
	CorrelationIDHeader = "X-Correlation-ID"

	requestIDKey       = "request_id"
	maxRequestIDLength = 64
)

// RequestID tags each request with an id. Incoming ids are kept when they are
// short printable tokens; anything else is replaced with a uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := incomingRequestID(c)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(platformerrors.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func incomingRequestID(c *gin.Context) string {
	for _, header := range []string{RequestIDHeader, CorrelationIDHeader} {
		value := c.GetHeader(header)
		if value == "" || len(value) > maxRequestIDLength {
			continue
		}
		if printableToken(value) {
			return value
		}
	}
	return ""
}

func printableToken(value string) bool {
	for _, r := range value {
		if r <= ' ' || r > '~' {
			return false
		}
	}
	return true
}
