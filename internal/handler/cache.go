package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/service"
	"github.com/maxviazov/movedex/pkg/response"
)

// CacheHandler exposes cache inspection and maintenance under /cache.
// DELETE /cache drops expired documents only.
type CacheHandler struct {
	cache service.CacheService
	moves service.MoveService
}

func NewCacheHandler(cache service.CacheService, moves service.MoveService) *CacheHandler {
	return &CacheHandler{cache: cache, moves: moves}
}

func (h *CacheHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/cache")
	{
		g.GET("/:kind", h.list)
		g.POST("/:kind/warm", h.warm)
		g.DELETE("/:kind/:id", h.evict)
		g.DELETE("", h.purge)
	}
}

func (h *CacheHandler) list(c *gin.Context) {
	res, err := h.cache.ListCached(c.Request.Context(), model.Kind(c.Param("kind")), pageFromQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

type warmRequest struct {
	Keys []string `json:"keys"`
}

type warmResponse struct {
	Kind    model.Kind `json:"kind"`
	Written int        `json:"written"`
}

func (h *CacheHandler) warm(c *gin.Context) {
	var req warmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// parse details stay internal
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	kind := model.Kind(c.Param("kind"))
	n, err := h.moves.Warm(c.Request.Context(), kind, req.Keys)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, warmResponse{Kind: kind, Written: n})
}

func (h *CacheHandler) evict(c *gin.Context) {
	if err := h.cache.Evict(c.Request.Context(), model.Kind(c.Param("kind")), c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type purgeResponse struct {
	Purged int64 `json:"purged"`
}

func (h *CacheHandler) purge(c *gin.Context) {
	n, err := h.cache.Purge(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, purgeResponse{Purged: n})
}
