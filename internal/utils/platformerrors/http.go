package platformerrors

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse is the error body of the non-chat routes.
type HTTPErrorResponse struct {
	Error *HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail describes one error.
type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError logs err and aborts with its status. The text of internal
// errors is replaced so upstream details are not leaked.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	platformErr := AsError(c.Request.Context(), LayerHandler, err, "request failed")
	if platformErr == nil {
		platformErr = NewError(c.Request.Context(), LayerHandler, ErrorTypeInternal, "unknown error", nil)
	}
	LogError(log, platformErr)

	info := lookup(platformErr.Type)
	message := platformErr.Message
	if !info.quiet {
		message = "internal error"
		if platformErr.Type == ErrorTypeUnavailable {
			message = "service unavailable"
		}
	}
	c.AbortWithStatusJSON(info.status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   message,
			Type:      info.wire,
			Code:      platformErr.ID,
			RequestID: platformErr.RequestID,
		},
	})
}

// WriteNotFound aborts with a bare 404.
func WriteNotFound(c *gin.Context, message string) {
	info := lookup(ErrorTypeNotFound)
	c.AbortWithStatusJSON(info.status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   message,
			Type:      info.wire,
			RequestID: RequestIDFromContext(c.Request.Context()),
		},
	})
}
