// Package hierarchy caches upstream workspace/space/folder/list listings with
// a TTL, scoped per (level, parent) pair. Mutating use-cases invalidate the
// narrowest scope they touched; over-invalidation is always safe.
package hierarchy

import (
	"context"
	"sync"
	"time"

	"github.com/taskbridge/clickup-mcp/internal/upstream"
)

// Level names one tier of the upstream hierarchy.
type Level string

const (
	LevelWorkspace Level = "workspace"
	LevelSpace     Level = "space"
	LevelFolder    Level = "folder"
	LevelList      Level = "list"
)

// FetchFunc loads a listing from the upstream gateway on a cache miss.
type FetchFunc func(ctx context.Context) ([]upstream.Record, error)

// Options tweaks a single Ensure call.
type Options struct {
	ForceRefresh bool
}

// Meta describes the staleness of a served listing. It is surfaced to
// callers for observability only.
type Meta struct {
	ScopeID     string `json:"scopeId"`
	LastFetched string `json:"lastFetched"`
	AgeMS       int64  `json:"ageMs"`
	ExpiresAt   string `json:"expiresAt"`
	TTLMS       int64  `json:"ttlMs"`
	Stale       bool   `json:"stale"`
	TotalItems  int    `json:"totalItems"`
}

type scopeKey struct {
	level     Level
	parentKey string
}

func (k scopeKey) id() string {
	if k.parentKey == "" {
		return string(k.level)
	}
	return string(k.level) + ":" + k.parentKey
}

type entry struct {
	items     []upstream.Record
	fetchedAt time.Time
	expiresAt time.Time
}

// Directory is a TTL cache of hierarchical listings. One Directory is owned
// by one session; the bulk engine may read it concurrently, so all map
// access is mutex-guarded.
type Directory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[scopeKey]*entry
	now     func() time.Time
}

// New creates a Directory. A zero ttl disables caching entirely: every read
// is a miss and nothing is stored.
func New(ttl time.Duration) *Directory {
	return &Directory{
		ttl:     ttl,
		entries: make(map[scopeKey]*entry),
		now:     time.Now,
	}
}

// Ensure returns the cached listing for (level, parentKey) when present and
// unexpired, otherwise calls fetch and caches the result. A fetch failure
// caches nothing and propagates.
func (d *Directory) Ensure(ctx context.Context, level Level, parentKey string, fetch FetchFunc, opts Options) ([]upstream.Record, Meta, error) {
	key := scopeKey{level: level, parentKey: parentKey}

	if d.ttl > 0 && !opts.ForceRefresh {
		d.mu.RLock()
		cached, ok := d.entries[key]
		d.mu.RUnlock()
		if ok && !d.now().After(cached.expiresAt) {
			return cached.items, d.meta(key, cached), nil
		}
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, Meta{}, err
	}

	fetched := &entry{
		items:     items,
		fetchedAt: d.now(),
		expiresAt: d.now().Add(d.ttl),
	}
	if d.ttl > 0 {
		d.mu.Lock()
		d.entries[key] = fetched
		d.mu.Unlock()
	}
	return items, d.meta(key, fetched), nil
}

// InvalidateParent drops the listing cached for one (level, parentKey) pair.
// Missing entries are a no-op.
func (d *Directory) InvalidateParent(level Level, parentKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, scopeKey{level: level, parentKey: parentKey})
}

// InvalidateLevel drops every listing cached at one level.
func (d *Directory) InvalidateLevel(level Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.entries {
		if key.level == level {
			delete(d.entries, key)
		}
	}
}

// InvalidateAll drops everything.
func (d *Directory) InvalidateAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[scopeKey]*entry)
}

func (d *Directory) meta(key scopeKey, e *entry) Meta {
	age := d.now().Sub(e.fetchedAt)
	return Meta{
		ScopeID:     key.id(),
		LastFetched: e.fetchedAt.UTC().Format(time.RFC3339),
		AgeMS:       age.Milliseconds(),
		ExpiresAt:   e.expiresAt.UTC().Format(time.RFC3339),
		TTLMS:       d.ttl.Milliseconds(),
		Stale:       age > d.ttl,
		TotalItems:  len(e.items),
	}
}
