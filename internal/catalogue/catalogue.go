// Package catalogue caches individual task records, list pages, and search
// result sets, each table with its own TTL. List pages carry a lazily built
// fuzzy index so repeated name lookups within one list do not rebuild it.
package catalogue

import (
	"context"
	"sync"
	"time"

	"github.com/taskbridge/clickup-mcp/internal/resolve"
	"github.com/taskbridge/clickup-mcp/models"
)

// Config sets the per-table TTLs. A zero TTL disables that table: every read
// misses and nothing is stored.
type Config struct {
	TaskTTL     time.Duration
	ListPageTTL time.Duration
	SearchTTL   time.Duration
}

type taskEntry struct {
	record    models.TaskRecord
	expiresAt time.Time
}

type pageKey struct {
	listID  string
	filters string
	page    int
}

type pageEntry struct {
	tasks     []models.TaskRecord
	expiresAt time.Time
	index     *resolve.Index // built on first name lookup
}

type searchKey struct {
	scopeID string
	query   string
}

type searchEntry struct {
	tasks     []models.TaskRecord
	expiresAt time.Time
}

// Catalogue is the per-session record cache. All tables are mutex-guarded
// because the bulk engine may hit them from concurrent workers.
type Catalogue struct {
	mu       sync.RWMutex
	cfg      Config
	tasks    map[string]*taskEntry
	pages    map[pageKey]*pageEntry
	searches map[searchKey]*searchEntry
	caps     map[capabilityKey]CapabilityRecord
	now      func() time.Time
}

// New creates an empty Catalogue.
func New(cfg Config) *Catalogue {
	return &Catalogue{
		cfg:      cfg,
		tasks:    make(map[string]*taskEntry),
		pages:    make(map[pageKey]*pageEntry),
		searches: make(map[searchKey]*searchEntry),
		caps:     make(map[capabilityKey]CapabilityRecord),
		now:      time.Now,
	}
}

// TaskFetch loads a single task on a cache miss.
type TaskFetch func(ctx context.Context) (models.TaskRecord, error)

// TasksFetch loads a task set (list page or search result) on a cache miss.
type TasksFetch func(ctx context.Context) ([]models.TaskRecord, error)

// EnsureTask returns the cached task or fetches and caches it. Fetch errors
// cache nothing.
func (c *Catalogue) EnsureTask(ctx context.Context, taskID string, fetch TaskFetch) (models.TaskRecord, error) {
	if c.cfg.TaskTTL > 0 {
		c.mu.RLock()
		cached, ok := c.tasks[taskID]
		c.mu.RUnlock()
		if ok && !c.now().After(cached.expiresAt) {
			return cached.record, nil
		}
	}

	record, err := fetch(ctx)
	if err != nil {
		return models.TaskRecord{}, err
	}
	c.StoreTask(record)
	return record, nil
}

// StoreTask caches a freshly fetched or freshly mutated task record.
func (c *Catalogue) StoreTask(record models.TaskRecord) {
	if c.cfg.TaskTTL <= 0 || record.ID == "" {
		return
	}
	c.mu.Lock()
	c.tasks[record.ID] = &taskEntry{record: record, expiresAt: c.now().Add(c.cfg.TaskTTL)}
	c.mu.Unlock()
}

// EnsureListPage returns the cached page of tasks for (listID, filters, page)
// or fetches and caches it.
func (c *Catalogue) EnsureListPage(ctx context.Context, listID, filters string, page int, fetch TasksFetch) ([]models.TaskRecord, error) {
	key := pageKey{listID: listID, filters: filters, page: page}

	if c.cfg.ListPageTTL > 0 {
		c.mu.RLock()
		cached, ok := c.pages[key]
		c.mu.RUnlock()
		if ok && !c.now().After(cached.expiresAt) {
			return cached.tasks, nil
		}
	}

	tasks, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if c.cfg.ListPageTTL > 0 {
		c.mu.Lock()
		c.pages[key] = &pageEntry{tasks: tasks, expiresAt: c.now().Add(c.cfg.ListPageTTL)}
		c.mu.Unlock()
	}
	return tasks, nil
}

// RankListPage ranks query against the cached page's task set using the
// page's lazily built index. ok=false when the page is not cached (or the
// page table is disabled); callers should EnsureListPage first.
func (c *Catalogue) RankListPage(listID, filters string, page int, query string, limit int) ([]resolve.Candidate, bool) {
	key := pageKey{listID: listID, filters: filters, page: page}

	c.mu.Lock()
	cached, ok := c.pages[key]
	if !ok || c.now().After(cached.expiresAt) {
		c.mu.Unlock()
		return nil, false
	}
	if cached.index == nil {
		entries := make([]resolve.Entry, 0, len(cached.tasks))
		for _, t := range cached.tasks {
			entries = append(entries, t.Entry())
		}
		cached.index = resolve.NewIndex(entries)
	}
	index := cached.index
	c.mu.Unlock()

	return index.Rank(query, limit), true
}

// EnsureSearch returns the cached result set for (scopeID, query) or fetches
// and caches it.
func (c *Catalogue) EnsureSearch(ctx context.Context, scopeID, query string, fetch TasksFetch) ([]models.TaskRecord, error) {
	key := searchKey{scopeID: scopeID, query: query}

	if c.cfg.SearchTTL > 0 {
		c.mu.RLock()
		cached, ok := c.searches[key]
		c.mu.RUnlock()
		if ok && !c.now().After(cached.expiresAt) {
			return cached.tasks, nil
		}
	}

	tasks, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if c.cfg.SearchTTL > 0 {
		c.mu.Lock()
		c.searches[key] = &searchEntry{tasks: tasks, expiresAt: c.now().Add(c.cfg.SearchTTL)}
		c.mu.Unlock()
	}
	return tasks, nil
}

// InvalidateTask drops one cached task. Missing entries are a no-op.
func (c *Catalogue) InvalidateTask(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tasks, taskID)
}

// InvalidateList drops every cached page belonging to listID.
func (c *Catalogue) InvalidateList(listID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.pages {
		if key.listID == listID {
			delete(c.pages, key)
		}
	}
}

// InvalidateSearch drops all cached search result sets.
func (c *Catalogue) InvalidateSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches = make(map[searchKey]*searchEntry)
}
