package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
)

type cacheService struct {
	cache repository.ResourceCache
	now   func() time.Time
	log   zerolog.Logger
}

func NewCacheService(cache repository.ResourceCache, logger zerolog.Logger) CacheService {
	l := logger.With().Str("module", "service").Str("component", "cache").Logger()
	return &cacheService{cache: cache, now: time.Now, log: l}
}

func (s *cacheService) ListCached(ctx context.Context, kind model.Kind, page repository.Page) (repository.PageResult[repository.Document], error) {
	if fe := validateKind(kind); fe != nil {
		return repository.PageResult[repository.Document]{}, newInvalidInput([]FieldError{*fe})
	}
	p := normalizePage(page)
	res, err := s.cache.List(ctx, kind, p)
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(kind)).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list cached documents failed")
		return repository.PageResult[repository.Document]{}, err
	}
	return res, nil
}

// Evict removes a cached document together with the alias entries stored
// for it (its id and its name), so the next read by any identifier refetches.
func (s *cacheService) Evict(ctx context.Context, kind model.Kind, id string) error {
	var ferrs []FieldError
	if fe := validateKind(kind); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	key, fe := normalizeIdentifier("id", id)
	if fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if err := newInvalidInput(ferrs); err != nil {
		return err
	}

	keys := []string{key}
	doc, err := s.cache.Get(ctx, kind, key)
	switch {
	case err == nil:
		keys = cacheKeys(key, doc.Body)
	case !errors.Is(err, repository.ErrNotFound):
		// aliases unknown; the requested key is still dropped
		s.log.Warn().Err(err).Str("kind", string(kind)).Str("key", key).Msg("read before evict failed")
	}

	if err := s.cache.Delete(ctx, kind, key); err != nil {
		return err
	}
	for _, alias := range keys[1:] {
		if err := s.cache.Delete(ctx, kind, alias); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("kind", string(kind)).Str("key", alias).Msg("evict alias failed")
			return err
		}
	}
	s.log.Info().Str("kind", string(kind)).Strs("keys", keys).Msg("cached document evicted")
	return nil
}

func (s *cacheService) Purge(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.cache.Purge(ctx, s.now())
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired documents failed")
		return 0, err
	}
	s.log.Debug().Dur("took", time.Since(start)).Int64("purged", n).Msg("expired documents purged")
	return n, nil
}

// RunJanitor purges expired documents every interval until ctx is done.
// A non-positive interval disables it.
func RunJanitor(ctx context.Context, svc CacheService, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		return
	}
	l := logger.With().Str("module", "service").Str("component", "janitor").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	l.Info().Dur("interval", interval).Msg("cache janitor started")
	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("cache janitor stopped")
			return
		case <-ticker.C:
			// errors are logged by the service; the next tick retries
			_, _ = svc.Purge(ctx)
		}
	}
}

// StartJanitor runs RunJanitor in its own goroutine. The returned stop
// cancels it and blocks until the janitor has returned, so the store can be
// closed safely afterwards.
func StartJanitor(ctx context.Context, svc CacheService, interval time.Duration, logger zerolog.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunJanitor(ctx, svc, interval, logger)
	}()
	return func() {
		cancel()
		<-done
	}
}
