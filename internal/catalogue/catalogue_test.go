package catalogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskbridge/clickup-mcp/models"
)

func newTestCatalogue(cfg Config) (*Catalogue, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(cfg)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestEnsureTaskCachesWithinTTL(t *testing.T) {
	c, now := newTestCatalogue(Config{TaskTTL: time.Second})
	calls := 0
	fetch := func(ctx context.Context) (models.TaskRecord, error) {
		calls++
		return models.TaskRecord{ID: "abc1234", Name: "Ship it"}, nil
	}

	for i := 0; i < 2; i++ {
		task, err := c.EnsureTask(context.Background(), "abc1234", fetch)
		if err != nil || task.Name != "Ship it" {
			t.Fatalf("EnsureTask: task=%+v err=%v", task, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}

	*now = now.Add(2 * time.Second)
	if _, err := c.EnsureTask(context.Background(), "abc1234", fetch); err != nil {
		t.Fatalf("EnsureTask after expiry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after expiry, got %d fetches", calls)
	}
}

func TestEnsureTaskErrorCachesNothing(t *testing.T) {
	c, _ := newTestCatalogue(Config{TaskTTL: time.Minute})
	boom := errors.New("upstream down")
	calls := 0
	fetch := func(ctx context.Context) (models.TaskRecord, error) {
		calls++
		if calls == 1 {
			return models.TaskRecord{}, boom
		}
		return models.TaskRecord{ID: "abc1234"}, nil
	}

	if _, err := c.EnsureTask(context.Background(), "abc1234", fetch); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, err := c.EnsureTask(context.Background(), "abc1234", fetch); err != nil {
		t.Fatalf("second EnsureTask: %v", err)
	}
	if calls != 2 {
		t.Fatalf("error must not be cached, got %d fetches", calls)
	}
}

func TestZeroTTLDisablesTable(t *testing.T) {
	c, _ := newTestCatalogue(Config{})
	calls := 0
	fetch := func(ctx context.Context) ([]models.TaskRecord, error) {
		calls++
		return []models.TaskRecord{{ID: "abc1234", Name: "A"}}, nil
	}

	for i := 0; i < 2; i++ {
		if _, err := c.EnsureListPage(context.Background(), "list1", "", 0, fetch); err != nil {
			t.Fatalf("EnsureListPage: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("TTL=0 must refetch every time, got %d", calls)
	}
	if _, ok := c.RankListPage("list1", "", 0, "a", 5); ok {
		t.Fatal("disabled page table must not rank")
	}
}

func TestListPageKeyedByFiltersAndPage(t *testing.T) {
	c, _ := newTestCatalogue(Config{ListPageTTL: time.Minute})
	calls := 0
	fetch := func(ctx context.Context) ([]models.TaskRecord, error) {
		calls++
		return nil, nil
	}

	variants := []struct {
		filters string
		page    int
	}{
		{"", 0}, {"", 1}, {"status=open", 0},
	}
	for _, v := range variants {
		for i := 0; i < 2; i++ {
			if _, err := c.EnsureListPage(context.Background(), "list1", v.filters, v.page, fetch); err != nil {
				t.Fatalf("EnsureListPage(%+v): %v", v, err)
			}
		}
	}
	if calls != 3 {
		t.Fatalf("each (filters, page) pair caches separately, got %d fetches", calls)
	}
}

func TestRankListPageBuildsIndexLazily(t *testing.T) {
	c, _ := newTestCatalogue(Config{ListPageTTL: time.Minute})
	fetch := func(ctx context.Context) ([]models.TaskRecord, error) {
		return []models.TaskRecord{
			{ID: "abc1234", Name: "Fix login bug"},
			{ID: "def5678", Name: "Write release notes"},
		}, nil
	}
	if _, err := c.EnsureListPage(context.Background(), "list1", "", 0, fetch); err != nil {
		t.Fatalf("EnsureListPage: %v", err)
	}

	candidates, ok := c.RankListPage("list1", "", 0, "fix login bug", 5)
	if !ok || len(candidates) == 0 {
		t.Fatalf("expected ranked candidates, ok=%v", ok)
	}
	if candidates[0].ID != "abc1234" {
		t.Fatalf("expected exact name match first, got %+v", candidates[0])
	}

	// The index is built once and reused.
	first := c.pages[pageKey{listID: "list1", page: 0}].index
	if first == nil {
		t.Fatal("index should be built after first rank")
	}
	c.RankListPage("list1", "", 0, "release", 5)
	if c.pages[pageKey{listID: "list1", page: 0}].index != first {
		t.Fatal("index must not be rebuilt per query")
	}
}

func TestInvalidateListDropsAllPages(t *testing.T) {
	c, _ := newTestCatalogue(Config{ListPageTTL: time.Minute})
	calls := 0
	fetch := func(ctx context.Context) ([]models.TaskRecord, error) {
		calls++
		return nil, nil
	}

	seed := func() {
		for page := 0; page < 2; page++ {
			if _, err := c.EnsureListPage(context.Background(), "list1", "", page, fetch); err != nil {
				t.Fatalf("EnsureListPage: %v", err)
			}
		}
		if _, err := c.EnsureListPage(context.Background(), "list2", "", 0, fetch); err != nil {
			t.Fatalf("EnsureListPage: %v", err)
		}
	}
	seed()
	if calls != 3 {
		t.Fatalf("expected 3 seed fetches, got %d", calls)
	}

	c.InvalidateList("list1")
	seed()
	if calls != 5 {
		t.Fatalf("InvalidateList must drop only list1 pages, got %d fetches", calls)
	}
}

func TestEnsureSearchAndInvalidate(t *testing.T) {
	c, _ := newTestCatalogue(Config{SearchTTL: time.Minute})
	calls := 0
	fetch := func(ctx context.Context) ([]models.TaskRecord, error) {
		calls++
		return []models.TaskRecord{{ID: "abc1234"}}, nil
	}

	for i := 0; i < 2; i++ {
		if _, err := c.EnsureSearch(context.Background(), "ws1", "login", fetch); err != nil {
			t.Fatalf("EnsureSearch: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}

	c.InvalidateSearch()
	if _, err := c.EnsureSearch(context.Background(), "ws1", "login", fetch); err != nil {
		t.Fatalf("EnsureSearch after invalidate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("InvalidateSearch must force a refetch, got %d", calls)
	}
}

func TestStoreTaskIgnoresEmptyID(t *testing.T) {
	c, _ := newTestCatalogue(Config{TaskTTL: time.Minute})
	c.StoreTask(models.TaskRecord{Name: "nameless"})
	if len(c.tasks) != 0 {
		t.Fatal("tasks without ids must not be stored")
	}
}

func TestCapabilityRecords(t *testing.T) {
	c, now := newTestCatalogue(Config{})

	if _, ok := c.Capability("docs-search", "ws1"); ok {
		t.Fatal("unknown capability must miss")
	}

	c.RecordCapability("docs-search", "ws1", false, "404 from docs endpoint")
	rec, ok := c.Capability("docs-search", "ws1")
	if !ok || rec.Available || rec.Diagnostics == "" {
		t.Fatalf("unexpected capability record: %+v ok=%v", rec, ok)
	}
	if !rec.LastChecked.Equal(*now) {
		t.Fatalf("LastChecked should use the catalogue clock, got %v", rec.LastChecked)
	}

	// Probes overwrite.
	c.RecordCapability("docs-search", "ws1", true, "")
	rec, _ = c.Capability("docs-search", "ws1")
	if !rec.Available {
		t.Fatal("re-probe must overwrite the record")
	}
}
