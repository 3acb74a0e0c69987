package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/maxviazov/movedex/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Document is one upstream response body cached under (Kind, Key).
type Document struct {
	Kind      model.Kind      `json:"kind"`
	Key       string          `json:"key"`
	Body      json.RawMessage `json:"body,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the document is stale at now.
func (d Document) Expired(now time.Time) bool { return !now.Before(d.ExpiresAt) }

// ResourceCache stores upstream documents with an expiry.
// Every backend returns ErrNotFound for missing and expired entries alike.
type ResourceCache interface {
	Get(ctx context.Context, kind model.Kind, key string) (Document, error)
	// Put inserts or replaces the document stored under (d.Kind, d.Key).
	Put(ctx context.Context, d Document) error
	Delete(ctx context.Context, kind model.Kind, key string) error
	// List returns live documents of one kind ordered by key, without bodies.
	List(ctx context.Context, kind model.Kind, p Page) (PageResult[Document], error)
	// Purge drops every document that expired at or before the given instant.
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type noopTx struct{}

// NoopTxManager runs fn directly. Backends without transactions use it.
func NoopTxManager() TxManager { return noopTx{} }

func (noopTx) WithinTx(ctx context.Context, fn TxFunc) error { return fn(ctx) }
