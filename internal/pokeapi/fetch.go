package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/movedex/internal/model"
)

// Fetch retrieves one resource and decodes it into T.
func Fetch[T any](ctx context.Context, c *Client, kind model.Kind, key string) (T, error) {
	var out T
	body, err := c.Get(ctx, kind, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s/%s: %v", ErrUpstream, kind, key, err)
	}
	return out, nil
}

// FetchList retrieves one page of a list endpoint.
func FetchList(ctx context.Context, c *Client, kind model.Kind, limit, offset int) (model.NamedAPIResourceList, error) {
	var out model.NamedAPIResourceList
	body, err := c.GetList(ctx, kind, limit, offset)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s list: %v", ErrUpstream, kind, err)
	}
	return out, nil
}

// GetMany retrieves the raw bodies of keys in parallel. Results keep the
// order of keys; the first failure cancels the remaining requests and is
// returned.
func (c *Client) GetMany(ctx context.Context, kind model.Kind, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			body, err := c.Get(gctx, kind, key)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", kind, key, err)
			}
			out[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchMany is GetMany followed by decoding every body into T.
func FetchMany[T any](ctx context.Context, c *Client, kind model.Kind, keys []string) ([]T, error) {
	bodies, err := c.GetMany(ctx, kind, keys)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(bodies))
	for i, body := range bodies {
		if err := json.Unmarshal(body, &out[i]); err != nil {
			return nil, fmt.Errorf("%w: decode %s/%s: %v", ErrUpstream, kind, keys[i], err)
		}
	}
	return out, nil
}
