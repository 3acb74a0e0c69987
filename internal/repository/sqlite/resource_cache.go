package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
)

// Timestamps are stored as unix milliseconds.
type resourceCache struct{ db *sql.DB }

func NewResourceCache(db *sql.DB) repository.ResourceCache {
	return &resourceCache{db: db}
}

func (r *resourceCache) Get(ctx context.Context, kind model.Kind, key string) (repository.Document, error) {
	row := getQ(ctx, r.db).QueryRowContext(ctx,
		`SELECT body, fetched_at, expires_at
		 FROM resource_cache
		 WHERE kind = ? AND key = ? AND expires_at > ?`,
		string(kind), key, time.Now().UnixMilli(),
	)
	var (
		body             []byte
		fetched, expires int64
	)
	if err := row.Scan(&body, &fetched, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.Document{}, repository.ErrNotFound
		}
		return repository.Document{}, err
	}
	return repository.Document{
		Kind:      kind,
		Key:       key,
		Body:      body,
		FetchedAt: time.UnixMilli(fetched).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}, nil
}

func (r *resourceCache) Put(ctx context.Context, d repository.Document) error {
	_, err := getQ(ctx, r.db).ExecContext(ctx,
		`INSERT INTO resource_cache (kind, key, body, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (kind, key) DO UPDATE
		 SET body = excluded.body,
		     fetched_at = excluded.fetched_at,
		     expires_at = excluded.expires_at`,
		string(d.Kind), d.Key, []byte(d.Body), d.FetchedAt.UnixMilli(), d.ExpiresAt.UnixMilli(),
	)
	return err
}

func (r *resourceCache) Delete(ctx context.Context, kind model.Kind, key string) error {
	res, err := getQ(ctx, r.db).ExecContext(ctx,
		`DELETE FROM resource_cache WHERE kind = ? AND key = ?`, string(kind), key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *resourceCache) List(ctx context.Context, kind model.Kind, p repository.Page) (repository.PageResult[repository.Document], error) {
	p = repository.SanitizePage(p)
	q := getQ(ctx, r.db)
	now := time.Now().UnixMilli()

	res := repository.PageResult[repository.Document]{Items: make([]repository.Document, 0, p.Limit)}
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resource_cache WHERE kind = ? AND expires_at > ?`,
		string(kind), now,
	).Scan(&res.Total); err != nil {
		return repository.PageResult[repository.Document]{}, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT key, fetched_at, expires_at
		 FROM resource_cache
		 WHERE kind = ? AND expires_at > ?
		 ORDER BY key
		 LIMIT ? OFFSET ?`,
		string(kind), now, p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[repository.Document]{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key              string
			fetched, expires int64
		)
		if err := rows.Scan(&key, &fetched, &expires); err != nil {
			return repository.PageResult[repository.Document]{}, err
		}
		res.Items = append(res.Items, repository.Document{
			Kind:      kind,
			Key:       key,
			FetchedAt: time.UnixMilli(fetched).UTC(),
			ExpiresAt: time.UnixMilli(expires).UTC(),
		})
	}
	return res, rows.Err()
}

func (r *resourceCache) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := getQ(ctx, r.db).ExecContext(ctx,
		`DELETE FROM resource_cache WHERE expires_at <= ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ repository.ResourceCache = (*resourceCache)(nil)
