package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/pokeapi"
	"github.com/maxviazov/movedex/internal/repository"
)

// moveService reads move-family documents through the cache: validation and
// orchestration only, decoding happens into the model types.
type moveService struct {
	cache    repository.ResourceCache
	tx       repository.TxManager
	upstream Upstream
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewMoveService(cache repository.ResourceCache, tx repository.TxManager, upstream Upstream, ttl time.Duration, logger zerolog.Logger) MoveService {
	if tx == nil {
		tx = repository.NoopTxManager()
	}
	l := logger.With().Str("module", "service").Str("component", "move").Logger()
	return &moveService{cache: cache, tx: tx, upstream: upstream, ttl: ttl, now: time.Now, log: l}
}

func (s *moveService) GetMove(ctx context.Context, id string) (model.Move, error) {
	return getResource[model.Move](ctx, s, model.KindMove, id)
}

func (s *moveService) GetMoveAilment(ctx context.Context, id string) (model.MoveAilment, error) {
	return getResource[model.MoveAilment](ctx, s, model.KindMoveAilment, id)
}

func (s *moveService) GetMoveBattleStyle(ctx context.Context, id string) (model.MoveBattleStyle, error) {
	return getResource[model.MoveBattleStyle](ctx, s, model.KindMoveBattleStyle, id)
}

func (s *moveService) GetMoveCategory(ctx context.Context, id string) (model.MoveCategory, error) {
	return getResource[model.MoveCategory](ctx, s, model.KindMoveCategory, id)
}

func (s *moveService) GetMoveDamageClass(ctx context.Context, id string) (model.MoveDamageClass, error) {
	return getResource[model.MoveDamageClass](ctx, s, model.KindMoveDamageClass, id)
}

func (s *moveService) GetMoveLearnMethod(ctx context.Context, id string) (model.MoveLearnMethod, error) {
	return getResource[model.MoveLearnMethod](ctx, s, model.KindMoveLearnMethod, id)
}

func (s *moveService) GetMoveTarget(ctx context.Context, id string) (model.MoveTarget, error) {
	return getResource[model.MoveTarget](ctx, s, model.KindMoveTarget, id)
}

func (s *moveService) List(ctx context.Context, kind model.Kind, page repository.Page) (model.NamedAPIResourceList, error) {
	if fe := validateKind(kind); fe != nil {
		return model.NamedAPIResourceList{}, newInvalidInput([]FieldError{*fe})
	}
	p := normalizePage(page)
	key := fmt.Sprintf("list:%d:%d", p.Limit, p.Offset)
	fetch := func(ctx context.Context) ([]byte, error) {
		return s.upstream.GetList(ctx, kind, p.Limit, p.Offset)
	}
	return readThrough[model.NamedAPIResourceList](ctx, s, kind, key, fetch)
}

func (s *moveService) Warm(ctx context.Context, kind model.Kind, keys []string) (int, error) {
	start := time.Now()
	var ferrs []FieldError
	if fe := validateKind(kind); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	switch {
	case len(keys) == 0:
		ferrs = append(ferrs, FieldError{Field: "keys", Message: "must not be empty"})
	case len(keys) > maxWarmKeys:
		ferrs = append(ferrs, FieldError{Field: "keys", Message: "at most 100 keys per request"})
		keys = nil
	}
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for i, raw := range keys {
		key, fe := normalizeIdentifier(fmt.Sprintf("keys[%d]", i), raw)
		if fe != nil {
			ferrs = append(ferrs, *fe)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, key)
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Str("kind", string(kind)).Interface("field_errors", ferrs).Msg("warm validation failed")
		return 0, err
	}

	bodies, err := s.upstream.GetMany(ctx, kind, uniq)
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(kind)).Int("keys", len(uniq)).Msg("warm fetch failed")
		return 0, err
	}

	written := 0
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		written = 0
		for i, body := range bodies {
			for _, key := range cacheKeys(uniq[i], body) {
				if err := s.cache.Put(ctx, s.newDocument(kind, key, body)); err != nil {
					return fmt.Errorf("store %s/%s: %w", kind, key, err)
				}
				written++
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(kind)).Msg("warm store failed")
		return 0, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("kind", string(kind)).Int("documents", written).Msg("cache warmed")
	return written, nil
}

func getResource[T any](ctx context.Context, s *moveService, kind model.Kind, raw string) (T, error) {
	var zero T
	key, fe := normalizeIdentifier("id", raw)
	if fe != nil {
		s.log.Debug().Str("kind", string(kind)).Str("id_raw", raw).Msg("identifier validation failed")
		return zero, newInvalidInput([]FieldError{*fe})
	}
	fetch := func(ctx context.Context) ([]byte, error) {
		return s.upstream.Get(ctx, kind, key)
	}
	return readThrough[T](ctx, s, kind, key, fetch)
}

// readThrough serves (kind, key) from the cache, falling back to fetch on a
// miss. A cached body that no longer decodes into T is evicted and fetched
// again exactly once.
func readThrough[T any](ctx context.Context, s *moveService, kind model.Kind, key string, fetch func(context.Context) ([]byte, error)) (T, error) {
	var out T
	doc, err := s.cache.Get(ctx, kind, key)
	switch {
	case err == nil:
		derr := json.Unmarshal(doc.Body, &out)
		if derr == nil {
			return out, nil
		}
		s.log.Warn().Err(derr).Str("kind", string(kind)).Str("key", key).Msg("corrupt cached document, refetching")
		if err := s.cache.Delete(ctx, kind, key); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Err(err).Str("kind", string(kind)).Str("key", key).Msg("evict corrupt document failed")
		}
		out = *new(T)
	case errors.Is(err, repository.ErrNotFound):
	default:
		s.log.Warn().Err(err).Str("kind", string(kind)).Str("key", key).Msg("cache read failed, falling back to upstream")
	}

	body, err := fetch(ctx)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		s.log.Error().Err(err).Str("kind", string(kind)).Str("key", key).Msg("upstream document does not decode")
		return *new(T), fmt.Errorf("%w: decode %s/%s: %v", pokeapi.ErrUpstream, kind, key, err)
	}
	s.store(ctx, kind, key, body)
	return out, nil
}

// store writes body under key and its alias keys. Failures are logged only:
// the caller already holds a good document.
func (s *moveService) store(ctx context.Context, kind model.Kind, key string, body []byte) {
	for _, k := range cacheKeys(key, body) {
		if err := s.cache.Put(ctx, s.newDocument(kind, k, body)); err != nil {
			s.log.Warn().Err(err).Str("kind", string(kind)).Str("key", k).Msg("cache write failed")
		}
	}
}

func (s *moveService) newDocument(kind model.Kind, key string, body []byte) repository.Document {
	now := s.now().UTC()
	return repository.Document{
		Kind:      kind,
		Key:       key,
		Body:      body,
		FetchedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
}

// cacheKeys returns key followed by the document's canonical id and name when
// they differ from it. Id 0 is a real upstream id, so presence of the field
// decides. List envelopes carry neither and yield key alone.
func cacheKeys(key string, body []byte) []string {
	var ident struct {
		ID   *int   `json:"id"`
		Name string `json:"name"`
	}
	keys := []string{key}
	if err := json.Unmarshal(body, &ident); err != nil {
		return keys
	}
	if ident.ID != nil {
		if id := strconv.Itoa(*ident.ID); id != key {
			keys = append(keys, id)
		}
	}
	if ident.Name != "" && ident.Name != key {
		keys = append(keys, ident.Name)
	}
	return keys
}
