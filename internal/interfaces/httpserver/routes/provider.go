package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/janhq/relay-api/internal/config"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/middlewares"
	v1 "github.com/janhq/relay-api/internal/interfaces/httpserver/routes/v1"
)

// Provider holds all route providers.
type Provider struct {
	V1      *v1.Routes
	session gin.HandlerFunc
}

// NewProvider creates a new route provider.
func NewProvider(handlerProvider *handlers.Provider, cfg *config.Config) *Provider {
	return &Provider{
		V1:      v1.NewRoutes(handlerProvider, cfg.MaxUploadBytes),
		session: middlewares.Session(cfg.SessionCookieName, cfg.SessionCookieMaxAge),
	}
}

// Register registers all routes on the engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.V1.Register(engine, p.session)
}

// RouteProvider provides routes for wire.
var RouteProvider = wire.NewSet(NewProvider)
