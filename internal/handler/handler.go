package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/movedex/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Ready      Pinger
	Moves      service.MoveService
	Cache      service.CacheService
	RateLimit  int
	RateWindow time.Duration
}

// Register mounts all public routes on the given engine.
// Health probes and docs stay outside the rate limited API group.
func Register(r *gin.Engine, d Deps) {
	h := NewHealthHandler(d.Ready)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		limited := api.Group("", RateLimit(d.RateLimit, d.RateWindow))
		NewMoveHandler(d.Moves).Register(limited)
		NewCacheHandler(d.Cache, d.Moves).Register(limited)
	}
}
