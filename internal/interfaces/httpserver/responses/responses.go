// Package responses contains HTTP response DTOs and error helpers for the
// relay-api.
package responses

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/janhq/relay-api/internal/infrastructure/audiostore"
	"github.com/janhq/relay-api/internal/utils/platformerrors"
)

// ChatResponse is the uniform reply for every chat turn.
type ChatResponse struct {
	Response string `json:"response"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// UploadErrorResponse is returned by the upload route on failure.
type UploadErrorResponse struct {
	Error string `json:"error"`
}

// Fixed upload error texts.
const (
	UploadNoFile        = "No file provided"
	UploadNotConfigured = "N8N_UPLOAD_WEBHOOK_URL is not configured"
	UploadFailed        = "Failed to process upload"
)

// HandleError maps store and platform errors to HTTP responses.
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().Str("path", c.Request.URL.Path).Logger()

	if errors.Is(err, audiostore.ErrClipNotFound) {
		platformerrors.WriteNotFound(c, message)
		return
	}
	platformerrors.WriteError(c, err, logger)
}
