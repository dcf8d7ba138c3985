package v1

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/relay-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/responses"
)

// RegisterAudioRoutes registers the clip playback route.
func RegisterAudioRoutes(router gin.IRoutes, handler *handlers.AudioHandler) {
	router.GET("/audio/:id", getAudio(handler))
	router.HEAD("/audio/:id", getAudio(handler))
}

// getAudio godoc
// @Summary      Play a stored audio reply
// @Description  Serves a binary audio reply captured from the workflow. Clips expire after AUDIO_CLIP_TTL.
// @Tags         Audio API
// @Produce      audio/mpeg
// @Param        id path string true "Clip ID"
// @Success      200 {file} binary
// @Failure      404 {object} platformerrors.HTTPErrorResponse
// @Router       /audio/{id} [get]
func getAudio(handler *handlers.AudioHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		clip, err := handler.GetClip(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "audio clip not found")
			return
		}

		c.Header("Content-Type", clip.ContentType)
		c.Header("Cache-Control", "private, max-age=3600")
		http.ServeContent(c.Writer, c.Request, clip.ID, clip.CreatedAt, bytes.NewReader(clip.Data))
	}
}
