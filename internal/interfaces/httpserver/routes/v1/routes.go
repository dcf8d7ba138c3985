package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/relay-api/internal/interfaces/httpserver/handlers"
)

// Routes holds the v1 route configuration.
type Routes struct {
	handlers       *handlers.Provider
	maxUploadBytes int64
}

// NewRoutes creates a new v1 routes instance.
func NewRoutes(handlerProvider *handlers.Provider, maxUploadBytes int64) *Routes {
	return &Routes{
		handlers:       handlerProvider,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register registers all v1 routes on the engine. The chat routes are also
// mounted under /api for UIs built against the original paths.
func (r *Routes) Register(engine *gin.Engine, sessionMiddleware gin.HandlerFunc) {
	v1 := engine.Group("/v1")
	api := engine.Group("/api")
	if sessionMiddleware != nil {
		v1.Use(sessionMiddleware)
		api.Use(sessionMiddleware)
	}

	RegisterChatRoutes(v1, r.handlers, r.maxUploadBytes)
	RegisterChatRoutes(api, r.handlers, r.maxUploadBytes)
	RegisterAudioRoutes(v1, r.handlers.Audio)
}
