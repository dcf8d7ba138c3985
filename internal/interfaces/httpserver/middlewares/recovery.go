package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/responses"
)

// Recovery turns a panic into the error body of the route that panicked:
// the upload error on upload routes and the generic chat reply elsewhere, so
// the UI can still render a bot turn.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("request_id", GetRequestID(c)).
			Msg("recovered from panic")

		if isUploadRoute(c) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, responses.UploadErrorResponse{
				Error: responses.UploadFailed,
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, responses.ChatResponse{
			Response: relay.MsgServerError.Text(),
		})
	})
}

func isUploadRoute(c *gin.Context) bool {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return strings.HasSuffix(route, "/upload")
}
