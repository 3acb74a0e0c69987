// Package service holds the read-through use cases sitting between the HTTP
// handlers, the document cache and the upstream API.
// Kept intentionally lean: orchestration, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// Upstream is the slice of the PokeAPI client the services need.
type Upstream interface {
	Get(ctx context.Context, kind model.Kind, key string) ([]byte, error)
	GetList(ctx context.Context, kind model.Kind, limit, offset int) ([]byte, error)
	GetMany(ctx context.Context, kind model.Kind, keys []string) ([][]byte, error)
}

// MoveService serves move-family resources, reading through the cache.
// Every id argument accepts either a numeric id or a resource name.
type MoveService interface {
	GetMove(ctx context.Context, id string) (model.Move, error)
	GetMoveAilment(ctx context.Context, id string) (model.MoveAilment, error)
	GetMoveBattleStyle(ctx context.Context, id string) (model.MoveBattleStyle, error)
	GetMoveCategory(ctx context.Context, id string) (model.MoveCategory, error)
	GetMoveDamageClass(ctx context.Context, id string) (model.MoveDamageClass, error)
	GetMoveLearnMethod(ctx context.Context, id string) (model.MoveLearnMethod, error)
	GetMoveTarget(ctx context.Context, id string) (model.MoveTarget, error)
	// List returns one page of the upstream list endpoint for kind.
	List(ctx context.Context, kind model.Kind, page repository.Page) (model.NamedAPIResourceList, error)
	// Warm fetches keys in parallel and stores them in one transaction.
	// It returns the number of documents written.
	Warm(ctx context.Context, kind model.Kind, keys []string) (int, error)
}

// CacheService exposes cache maintenance.
type CacheService interface {
	ListCached(ctx context.Context, kind model.Kind, page repository.Page) (repository.PageResult[repository.Document], error)
	Evict(ctx context.Context, kind model.Kind, id string) error
	// Purge drops expired documents and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
}
