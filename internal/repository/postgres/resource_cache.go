package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
)

type resourceCache struct{ pool *pgxpool.Pool }

func NewResourceCache(pool *pgxpool.Pool) repository.ResourceCache {
	return &resourceCache{pool: pool}
}

func (r *resourceCache) Get(ctx context.Context, kind model.Kind, key string) (repository.Document, error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Document{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT kind, key, body, fetched_at, expires_at
		 FROM resource_cache
		 WHERE kind = $1 AND key = $2 AND expires_at > now()`,
		string(kind), key,
	)
	var (
		out   repository.Document
		kindS string
		body  []byte
	)
	if err := row.Scan(&kindS, &out.Key, &body, &out.FetchedAt, &out.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Document{}, repository.ErrNotFound
		}
		return repository.Document{}, repository.MapPgError(err)
	}
	out.Kind = model.Kind(kindS)
	out.Body = body
	return out, nil
}

func (r *resourceCache) Put(ctx context.Context, d repository.Document) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`INSERT INTO resource_cache (kind, key, body, fetched_at, expires_at)
		 VALUES ($1, $2, $3::jsonb, $4, $5)
		 ON CONFLICT (kind, key) DO UPDATE
		 SET body = EXCLUDED.body,
		     fetched_at = EXCLUDED.fetched_at,
		     expires_at = EXCLUDED.expires_at`,
		string(d.Kind), d.Key, string(d.Body), d.FetchedAt.UTC(), d.ExpiresAt.UTC(),
	)
	return repository.MapPgError(err)
}

func (r *resourceCache) Delete(ctx context.Context, kind model.Kind, key string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM resource_cache WHERE kind = $1 AND key = $2`, string(kind), key)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *resourceCache) List(ctx context.Context, kind model.Kind, p repository.Page) (repository.PageResult[repository.Document], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[repository.Document]{}, err
	}
	p = repository.SanitizePage(p)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT key, fetched_at, expires_at, COUNT(*) OVER() AS total
		 FROM resource_cache
		 WHERE kind = $1 AND expires_at > now()
		 ORDER BY key
		 LIMIT $2 OFFSET $3`,
		string(kind), p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[repository.Document]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[repository.Document]{Items: make([]repository.Document, 0, p.Limit)}
	for rows.Next() {
		d := repository.Document{Kind: kind}
		var total int
		if err := rows.Scan(&d.Key, &d.FetchedAt, &d.ExpiresAt, &total); err != nil {
			return repository.PageResult[repository.Document]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, d)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[repository.Document]{}, repository.MapPgError(err)
	}
	// an offset past the end yields no rows and therefore no window total
	if len(res.Items) == 0 && p.Offset > 0 {
		if err := exec.QueryRow(ctx,
			`SELECT COUNT(*) FROM resource_cache WHERE kind = $1 AND expires_at > now()`,
			string(kind),
		).Scan(&res.Total); err != nil {
			return repository.PageResult[repository.Document]{}, repository.MapPgError(err)
		}
	}
	return res, nil
}

func (r *resourceCache) Purge(ctx context.Context, before time.Time) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM resource_cache WHERE expires_at <= $1`, before.UTC())
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

var _ repository.ResourceCache = (*resourceCache)(nil)
