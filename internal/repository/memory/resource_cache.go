// Package memory keeps cached documents in process memory. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
)

type entryKey struct {
	kind model.Kind
	key  string
}

type resourceCache struct {
	mu   sync.RWMutex
	docs map[entryKey]repository.Document
}

func NewResourceCache() repository.ResourceCache {
	return &resourceCache{docs: make(map[entryKey]repository.Document)}
}

func (c *resourceCache) Get(_ context.Context, kind model.Kind, key string) (repository.Document, error) {
	c.mu.RLock()
	d, ok := c.docs[entryKey{kind, key}]
	c.mu.RUnlock()
	if !ok || d.Expired(time.Now()) {
		return repository.Document{}, repository.ErrNotFound
	}
	d.Body = append([]byte(nil), d.Body...)
	return d, nil
}

func (c *resourceCache) Put(_ context.Context, d repository.Document) error {
	d.Body = append([]byte(nil), d.Body...)
	c.mu.Lock()
	c.docs[entryKey{d.Kind, d.Key}] = d
	c.mu.Unlock()
	return nil
}

func (c *resourceCache) Delete(_ context.Context, kind model.Kind, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := entryKey{kind, key}
	if _, ok := c.docs[k]; !ok {
		return repository.ErrNotFound
	}
	delete(c.docs, k)
	return nil
}

func (c *resourceCache) List(_ context.Context, kind model.Kind, p repository.Page) (repository.PageResult[repository.Document], error) {
	p = repository.SanitizePage(p)
	now := time.Now()

	c.mu.RLock()
	live := make([]repository.Document, 0, len(c.docs))
	for k, d := range c.docs {
		if k.kind == kind && !d.Expired(now) {
			d.Body = nil
			live = append(live, d)
		}
	}
	c.mu.RUnlock()

	sort.Slice(live, func(i, j int) bool { return live[i].Key < live[j].Key })
	res := repository.PageResult[repository.Document]{Items: []repository.Document{}, Total: len(live)}
	if p.Offset >= len(live) {
		return res, nil
	}
	end := min(p.Offset+p.Limit, len(live))
	res.Items = live[p.Offset:end]
	return res, nil
}

func (c *resourceCache) Purge(_ context.Context, before time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for k, d := range c.docs {
		if !before.Before(d.ExpiresAt) {
			delete(c.docs, k)
			n++
		}
	}
	return n, nil
}

type pinger struct{}

// NewPinger always reports ready.
func NewPinger() repository.Pinger { return pinger{} }

func (pinger) Ping(context.Context) error { return nil }

var _ repository.ResourceCache = (*resourceCache)(nil)
