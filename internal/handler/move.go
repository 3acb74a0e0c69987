package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
	"github.com/maxviazov/movedex/internal/service"
	"github.com/maxviazov/movedex/pkg/response"
)

type getFunc func(ctx context.Context, id string) (any, error)

// MoveHandler serves GET /{kind}/:id and GET /{kind} for every move-family kind.
type MoveHandler struct {
	svc     service.MoveService
	getters map[model.Kind]getFunc
}

func NewMoveHandler(svc service.MoveService) *MoveHandler {
	return &MoveHandler{svc: svc, getters: gettersFor(svc)}
}

func gettersFor(svc service.MoveService) map[model.Kind]getFunc {
	return map[model.Kind]getFunc{
		model.KindMove:            adapt(svc.GetMove),
		model.KindMoveAilment:     adapt(svc.GetMoveAilment),
		model.KindMoveBattleStyle: adapt(svc.GetMoveBattleStyle),
		model.KindMoveCategory:    adapt(svc.GetMoveCategory),
		model.KindMoveDamageClass: adapt(svc.GetMoveDamageClass),
		model.KindMoveLearnMethod: adapt(svc.GetMoveLearnMethod),
		model.KindMoveTarget:      adapt(svc.GetMoveTarget),
	}
}

func adapt[T any](fn func(context.Context, string) (T, error)) getFunc {
	return func(ctx context.Context, id string) (any, error) {
		v, err := fn(ctx, id)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (h *MoveHandler) Register(r *gin.RouterGroup) {
	for _, kind := range model.Kinds() {
		g := r.Group(kindPath(kind))
		{
			g.GET("/:id", h.get(kind))
			g.GET("", h.list(kind))
		}
	}
}

func (h *MoveHandler) get(kind model.Kind) gin.HandlerFunc {
	fn := h.getters[kind]
	return func(c *gin.Context) {
		v, err := fn(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.WriteError(c, err)
			return
		}
		response.WriteData(c, http.StatusOK, v)
	}
}

func (h *MoveHandler) list(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := h.svc.List(c.Request.Context(), kind, pageFromQuery(c))
		if err != nil {
			response.WriteError(c, err)
			return
		}
		response.WriteData(c, http.StatusOK, res)
	}
}

// pageFromQuery reads limit/offset; missing or malformed values become 0 and
// the service applies its defaults.
func pageFromQuery(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return repository.Page{Limit: limit, Offset: offset}
}
