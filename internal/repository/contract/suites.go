// Package contract holds behavior suites every cache backend must pass.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
)

type CacheFactory func(t *testing.T) (repository.ResourceCache, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, cache repository.ResourceCache, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func doc(kind model.Kind, key string, body string, ttl time.Duration) repository.Document {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return repository.Document{
		Kind:      kind,
		Key:       key,
		Body:      json.RawMessage(body),
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func RunResourceCacheContract(t *testing.T, makeCache CacheFactory) {
	t.Helper()

	t.Run("put_and_get", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		in := doc(model.KindMove, "pound", `{"id": 1, "name": "pound"}`, time.Hour)
		require.NoError(t, cache.Put(ctx, in))

		got, err := cache.Get(ctx, model.KindMove, "pound")
		require.NoError(t, err)
		assert.Equal(t, model.KindMove, got.Kind)
		assert.Equal(t, "pound", got.Key)
		assert.JSONEq(t, string(in.Body), string(got.Body))
		assert.WithinDuration(t, in.FetchedAt, got.FetchedAt, time.Millisecond)
		assert.WithinDuration(t, in.ExpiresAt, got.ExpiresAt, time.Millisecond)
	})

	t.Run("get_not_found", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		_, err := cache.Get(context.Background(), model.KindMove, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("kinds_are_isolated", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		require.NoError(t, cache.Put(ctx, doc(model.KindMove, "1", `{"id":1}`, time.Hour)))
		_, err := cache.Get(ctx, model.KindMoveTarget, "1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("expired_is_not_found", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		require.NoError(t, cache.Put(ctx, doc(model.KindMoveAilment, "paralysis", `{"id":1}`, -time.Minute)))
		_, err := cache.Get(ctx, model.KindMoveAilment, "paralysis")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("put_overwrites", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		require.NoError(t, cache.Put(ctx, doc(model.KindMove, "pound", `{"power":40}`, time.Hour)))
		require.NoError(t, cache.Put(ctx, doc(model.KindMove, "pound", `{"power":50}`, 2*time.Hour)))
		got, err := cache.Get(ctx, model.KindMove, "pound")
		require.NoError(t, err)
		assert.JSONEq(t, `{"power":50}`, string(got.Body))
	})

	t.Run("delete", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		require.NoError(t, cache.Put(ctx, doc(model.KindMove, "pound", `{}`, time.Hour)))
		require.NoError(t, cache.Delete(ctx, model.KindMove, "pound"))
		_, err := cache.Get(ctx, model.KindMove, "pound")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, cache.Delete(ctx, model.KindMove, "pound"), repository.ErrNotFound)
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			key := fmt.Sprintf("move-%c", 'a'+i)
			require.NoError(t, cache.Put(ctx, doc(model.KindMove, key, `{}`, time.Hour)))
		}
		require.NoError(t, cache.Put(ctx, doc(model.KindMove, "stale", `{}`, -time.Hour)))
		require.NoError(t, cache.Put(ctx, doc(model.KindMoveTarget, "user", `{}`, time.Hour)))

		res, err := cache.List(ctx, model.KindMove, repository.Page{Limit: 3, Offset: 0})
		require.NoError(t, err)
		require.Len(t, res.Items, 3)
		assert.Equal(t, 7, res.Total)
		assert.Equal(t, "move-a", res.Items[0].Key)
		assert.Empty(t, res.Items[0].Body)

		res2, err := cache.List(ctx, model.KindMove, repository.Page{Limit: 3, Offset: 6})
		require.NoError(t, err)
		require.Len(t, res2.Items, 1)
		assert.Equal(t, "move-g", res2.Items[0].Key)
		assert.Equal(t, 7, res2.Total)

		res3, err := cache.List(ctx, model.KindMove, repository.Page{Limit: 3, Offset: 30})
		require.NoError(t, err)
		assert.Empty(t, res3.Items)
		assert.Equal(t, 7, res3.Total)
	})

	t.Run("purge", func(t *testing.T) {
		cache, cleanup := makeCache(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		require.NoError(t, cache.Put(ctx, doc(model.KindMove, "old-1", `{}`, -time.Hour)))
		require.NoError(t, cache.Put(ctx, doc(model.KindMoveTarget, "old-2", `{}`, -time.Minute)))
		require.NoError(t, cache.Put(ctx, doc(model.KindMove, "fresh", `{}`, time.Hour)))

		n, err := cache.Purge(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = cache.Get(ctx, model.KindMove, "fresh")
		assert.NoError(t, err)
	})
}

func RunTxContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit", func(t *testing.T) {
		tx, cache, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := cache.Put(ctx, doc(model.KindMove, "1", `{}`, time.Hour)); err != nil {
				return err
			}
			return cache.Put(ctx, doc(model.KindMove, "2", `{}`, time.Hour))
		})
		require.NoError(t, err)
		res, err := cache.List(ctx, model.KindMove, repository.Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("rollback", func(t *testing.T) {
		tx, cache, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		boom := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := cache.Put(ctx, doc(model.KindMove, "1", `{}`, time.Hour)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		_, err = cache.Get(ctx, model.KindMove, "1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, p.Ping(ctx))
	})
}
