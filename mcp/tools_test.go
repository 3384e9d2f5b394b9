package mcp

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskbridge/clickup-mcp/internal/session"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/types"
)

// fakeGateway is a canned upstream for handler tests. Bulk handlers drive it
// from several goroutines, so mutation capture is locked.
type fakeGateway struct {
	mu      sync.Mutex
	tasks   map[string]upstream.Record
	lists   map[string]upstream.Record
	search  []upstream.Record
	members []upstream.Record

	created    []upstream.Record
	updated    map[string]upstream.Record
	updateResp upstream.Record
	deleted    []string
	moved      map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		tasks:   map[string]upstream.Record{},
		lists:   map[string]upstream.Record{},
		updated: map[string]upstream.Record{},
		moved:   map[string]string{},
	}
}

func (g *fakeGateway) ListWorkspaces(ctx context.Context) ([]upstream.Record, error) {
	return []upstream.Record{{"id": "ws1"}}, nil
}

func (g *fakeGateway) ListSpaces(ctx context.Context, workspaceID string) ([]upstream.Record, error) {
	return []upstream.Record{{"id": "space-1", "name": "Engineering"}}, nil
}

func (g *fakeGateway) ListFolders(ctx context.Context, spaceID string) ([]upstream.Record, error) {
	return nil, nil
}

func (g *fakeGateway) ListLists(ctx context.Context, folderID string) ([]upstream.Record, error) {
	return nil, nil
}

func (g *fakeGateway) ListFolderlessLists(ctx context.Context, spaceID string) ([]upstream.Record, error) {
	return []upstream.Record{{"id": "list-1", "name": "Sprint 12"}}, nil
}

func (g *fakeGateway) GetList(ctx context.Context, listID string) (upstream.Record, error) {
	if rec, ok := g.lists[listID]; ok {
		return rec, nil
	}
	return nil, upstream.ErrorFromStatus(404, "list not found")
}

func (g *fakeGateway) GetFolder(ctx context.Context, folderID string) (upstream.Record, error) {
	return nil, upstream.ErrorFromStatus(404, "folder not found")
}

func (g *fakeGateway) GetTask(ctx context.Context, taskID string, query url.Values) (upstream.Record, error) {
	if rec, ok := g.tasks[taskID]; ok {
		return rec, nil
	}
	return nil, upstream.ErrorFromStatus(404, "task not found")
}

func (g *fakeGateway) ListListTasks(ctx context.Context, listID string, page int, query url.Values) ([]upstream.Record, error) {
	return nil, nil
}

func (g *fakeGateway) SearchTasks(ctx context.Context, workspaceID string, query url.Values) ([]upstream.Record, error) {
	return g.search, nil
}

func (g *fakeGateway) CreateTask(ctx context.Context, listID string, payload upstream.Record) (upstream.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, payload)
	return upstream.Record{"id": "new1234", "name": payload.Str("name"),
		"list": map[string]interface{}{"id": listID}}, nil
}

func (g *fakeGateway) UpdateTask(ctx context.Context, taskID string, payload upstream.Record, query url.Values) (upstream.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updated[taskID] = payload
	if g.updateResp != nil {
		return g.updateResp, nil
	}
	return upstream.Record{"id": taskID}, nil
}

func (g *fakeGateway) MoveTask(ctx context.Context, taskID, targetListID string, query url.Values) (upstream.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moved[taskID] = targetListID
	return upstream.Record{"id": taskID, "list": map[string]interface{}{"id": targetListID}}, nil
}

func (g *fakeGateway) DeleteTask(ctx context.Context, taskID string, query url.Values) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, taskID)
	return nil
}

func (g *fakeGateway) AddTag(ctx context.Context, taskID, tagName string, query url.Values) error {
	return nil
}

func (g *fakeGateway) RemoveTag(ctx context.Context, taskID, tagName string, query url.Values) error {
	return nil
}

func (g *fakeGateway) ListMembers(ctx context.Context, workspaceID string) ([]upstream.Record, error) {
	return g.members, nil
}

func (g *fakeGateway) SearchDocuments(ctx context.Context, workspaceID string, query url.Values) ([]upstream.Record, error) {
	return nil, nil
}

func (g *fakeGateway) ListDocumentPages(ctx context.Context, workspaceID, documentID string) ([]upstream.Record, error) {
	return nil, nil
}

func (g *fakeGateway) CreateTimeEntry(ctx context.Context, workspaceID string, payload upstream.Record) (upstream.Record, error) {
	return upstream.Record{"id": "time-1"}, nil
}

var _ upstream.Gateway = (*fakeGateway)(nil)

func newTestSession(g *fakeGateway, mutate ...func(*types.AppConfig)) *session.Session {
	cfg := types.AppConfig{
		Upstream: types.UpstreamConfig{APIToken: "t", DefaultTeamID: "ws1"},
		Cache: types.CacheConfig{
			HierarchyTTLMS: 300000,
			TaskTTLMS:      60000,
			ListPageTTLMS:  60000,
			SearchTTLMS:    30000,
		},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return session.New(cfg, g)
}

func callParams[P any](args P) *mcpsdk.CallToolParamsFor[P] {
	return &mcpsdk.CallToolParamsFor[P]{Arguments: args}
}

func mcpErrorCode(t *testing.T, err error) string {
	t.Helper()
	var me *types.MCPError
	if !errors.As(err, &me) {
		t.Fatalf("expected *types.MCPError, got %T: %v", err, err)
	}
	return me.Code
}

func TestGetTaskHandler(t *testing.T) {
	g := newFakeGateway()
	g.tasks["abc1234"] = upstream.Record{
		"id":     "abc1234",
		"name":   "Fix login bug",
		"status": map[string]interface{}{"status": "open"},
	}
	handler := getTaskHandler(newTestSession(g))

	res, err := handler(context.Background(), nil, callParams(types.GetTaskParams{TaskID: "abc1234"}))
	if err != nil {
		t.Fatalf("get-task: %v", err)
	}
	if res.StructuredContent.ID != "abc1234" || res.StructuredContent.Status != "open" {
		t.Fatalf("unexpected response: %+v", res.StructuredContent)
	}

	_, err = handler(context.Background(), nil, callParams(types.GetTaskParams{TaskID: "zzz9999"}))
	if mcpErrorCode(t, err) != upstream.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateTaskRequiresName(t *testing.T) {
	handler := createTaskHandler(newTestSession(newFakeGateway()))
	_, err := handler(context.Background(), nil, callParams(types.CreateTaskParams{ListID: "list-1"}))
	if mcpErrorCode(t, err) != upstream.CodeInvalidParameter {
		t.Fatalf("missing name must be INVALID_PARAMETER, got %v", err)
	}
}

func TestCreateTaskForwardsPayload(t *testing.T) {
	g := newFakeGateway()
	handler := createTaskHandler(newTestSession(g))

	res, err := handler(context.Background(), nil, callParams(types.CreateTaskParams{
		ListID:   "list-1",
		Name:     "  Ship release  ",
		Status:   "open",
		Priority: 2,
		Tags:     []string{"release"},
	}))
	if err != nil {
		t.Fatalf("create-task: %v", err)
	}
	if len(g.created) != 1 {
		t.Fatalf("expected one create, got %d", len(g.created))
	}
	payload := g.created[0]
	if payload.Str("name") != "Ship release" {
		t.Fatalf("name must be trimmed, got %q", payload.Str("name"))
	}
	if payload["status"] != "open" || payload["priority"] != 2 {
		t.Fatalf("payload fields dropped: %v", payload)
	}
	if res.StructuredContent.ID != "new1234" || res.StructuredContent.ListID != "list-1" {
		t.Fatalf("unexpected response: %+v", res.StructuredContent)
	}
	if !strings.Contains(res.Content[0].(*mcpsdk.TextContent).Text, "new1234") {
		t.Fatal("text rendering must name the new task id")
	}
}

func TestCreateTaskResolvesListByName(t *testing.T) {
	g := newFakeGateway()
	handler := createTaskHandler(newTestSession(g))

	_, err := handler(context.Background(), nil, callParams(types.CreateTaskParams{
		ListName: "sprint 12",
		Name:     "Fix login bug",
	}))
	if err != nil {
		t.Fatalf("create-task by list name: %v", err)
	}
	if len(g.created) != 1 {
		t.Fatalf("expected one create, got %d", len(g.created))
	}
}

func TestCreateTaskDeniedBySelectiveGate(t *testing.T) {
	g := newFakeGateway()
	g.lists["list-2"] = upstream.Record{"id": "list-2", "space": map[string]interface{}{"id": "space-2"}}
	sess := newTestSession(g, func(cfg *types.AppConfig) {
		cfg.WriteAccess = types.WriteAccessConfig{Mode: "selective", AllowedSpaces: []string{"space-1"}}
	})
	handler := createTaskHandler(sess)

	_, err := handler(context.Background(), nil, callParams(types.CreateTaskParams{
		ListID: "list-2",
		Name:   "Forbidden",
	}))
	if mcpErrorCode(t, err) != "WRITE_ACCESS_DENIED" {
		t.Fatalf("expected denial, got %v", err)
	}
	if len(g.created) != 0 {
		t.Fatal("denied mutation must never reach upstream")
	}
}

func TestUpdateTaskRequiresFields(t *testing.T) {
	g := newFakeGateway()
	g.tasks["abc1234"] = upstream.Record{"id": "abc1234", "name": "x"}
	handler := updateTaskHandler(newTestSession(g))

	_, err := handler(context.Background(), nil, callParams(types.UpdateTaskParams{TaskID: "abc1234"}))
	if mcpErrorCode(t, err) != upstream.CodeInvalidParameter {
		t.Fatalf("empty update must be INVALID_PARAMETER, got %v", err)
	}

	if _, err := handler(context.Background(), nil, callParams(types.UpdateTaskParams{
		TaskID: "abc1234",
		Status: "done",
	})); err != nil {
		t.Fatalf("update-task: %v", err)
	}
	if g.updated["abc1234"]["status"] != "done" {
		t.Fatalf("status not forwarded: %v", g.updated)
	}
}

func TestUpdateTaskUnparsableResponseNotCached(t *testing.T) {
	g := newFakeGateway()
	g.tasks["abc1234"] = upstream.Record{
		"id":     "abc1234",
		"name":   "Fix login bug",
		"status": map[string]interface{}{"status": "open"},
	}
	g.updateResp = upstream.Record{"ok": true} // no id, will not normalize
	sess := newTestSession(g)

	if _, err := updateTaskHandler(sess)(context.Background(), nil, callParams(types.UpdateTaskParams{
		TaskID: "abc1234",
		Status: "done",
	})); err != nil {
		t.Fatalf("update-task: %v", err)
	}

	// The skeleton record must not be cached: the next read refetches the
	// real task instead of serving a blank one.
	res, err := getTaskHandler(sess)(context.Background(), nil, callParams(types.GetTaskParams{TaskID: "abc1234"}))
	if err != nil {
		t.Fatalf("get-task: %v", err)
	}
	if res.StructuredContent.Name != "Fix login bug" {
		t.Fatalf("blank record was cached: %+v", res.StructuredContent)
	}
}

func TestMoveTaskInvalidatesSourceList(t *testing.T) {
	g := newFakeGateway()
	g.tasks["abc1234"] = upstream.Record{
		"id":   "abc1234",
		"name": "Fix login bug",
		"list": map[string]interface{}{"id": "list-1"},
	}
	handler := moveTaskHandler(newTestSession(g))

	res, err := handler(context.Background(), nil, callParams(types.MoveTaskParams{
		TaskID:       "abc1234",
		TargetListID: "list-2",
	}))
	if err != nil {
		t.Fatalf("move-task: %v", err)
	}
	if g.moved["abc1234"] != "list-2" {
		t.Fatalf("move not forwarded: %v", g.moved)
	}
	if res.StructuredContent.ListID != "list-2" {
		t.Fatalf("response must carry the target list: %+v", res.StructuredContent)
	}
}

func TestSearchTasksRanksQueryClientSide(t *testing.T) {
	g := newFakeGateway()
	g.search = []upstream.Record{
		{"id": "aaa1111", "name": "Quarterly report"},
		{"id": "bbb2222", "name": "Fix login bug"},
	}
	handler := searchTasksHandler(newTestSession(g))

	res, err := handler(context.Background(), nil, callParams(types.SearchTasksParams{Query: "login"}))
	if err != nil {
		t.Fatalf("search-tasks: %v", err)
	}
	resp := res.StructuredContent
	if resp.Count != 1 || resp.Tasks[0].ID != "bbb2222" {
		t.Fatalf("query must filter client side: %+v", resp)
	}

	// Without a query every structural match comes back.
	res, err = handler(context.Background(), nil, callParams(types.SearchTasksParams{}))
	if err != nil || res.StructuredContent.Count != 2 {
		t.Fatalf("unfiltered search: %+v (%v)", res.StructuredContent, err)
	}
}

func TestFindMemberHandler(t *testing.T) {
	g := newFakeGateway()
	g.members = []upstream.Record{
		{"user": map[string]interface{}{"id": float64(1), "username": "jdoe", "email": "jane@example.com", "name": "Jane Doe"}},
		{"user": map[string]interface{}{"id": float64(2), "username": "asmith", "email": "alex@example.com", "name": "Alex Smith"}},
	}
	handler := findMemberHandler(newTestSession(g))

	_, err := handler(context.Background(), nil, callParams(types.FindMemberParams{}))
	if mcpErrorCode(t, err) != upstream.CodeInvalidParameter {
		t.Fatalf("empty query must be INVALID_PARAMETER, got %v", err)
	}

	res, err := handler(context.Background(), nil, callParams(types.FindMemberParams{Query: "jane doe"}))
	if err != nil {
		t.Fatalf("find-member: %v", err)
	}
	resp := res.StructuredContent
	if resp.Count == 0 || resp.Members[0].ID != "1" {
		t.Fatalf("unexpected candidates: %+v", resp)
	}
	if !strings.Contains(res.Content[0].(*mcpsdk.TextContent).Text, "Jane Doe") {
		t.Fatal("text rendering must name the best match")
	}
}

func TestBulkCreateTasksSummary(t *testing.T) {
	g := newFakeGateway()
	handler := bulkCreateTasksHandler(newTestSession(g))

	res, err := handler(context.Background(), nil, callParams(types.BulkTasksParams{
		DefaultListID: "list-1",
		Entries: []types.BulkEntry{
			{"name": "First"},
			{"description": "missing a name"},
			{"name": "Third", "status": "open"},
		},
	}))
	if err != nil {
		t.Fatalf("bulk-create-tasks: %v", err)
	}
	resp := res.StructuredContent
	if resp.Total != 3 || resp.Succeeded != 2 || resp.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
	if len(resp.FailedIndices) != 1 || resp.FailedIndices[0] != 1 {
		t.Fatalf("failed index not reported: %v", resp.FailedIndices)
	}
	if len(resp.Preview) != 3 || resp.Preview[0].Index != 0 || resp.Preview[2].Index != 2 {
		t.Fatalf("preview must preserve input order: %+v", resp.Preview)
	}
	if resp.BatchID == "" || resp.Guidance == "" {
		t.Fatalf("partial failure needs a batch id and guidance: %+v", resp)
	}
	text := res.Content[0].(*mcpsdk.TextContent).Text
	if !strings.HasPrefix(text, "Created 2/3") {
		t.Fatalf("text = %q", text)
	}
	if len(g.created) != 2 {
		t.Fatalf("expected two upstream creates, got %d", len(g.created))
	}
}

func TestBulkTasksRejectEmptyEntries(t *testing.T) {
	handler := bulkUpdateTasksHandler(newTestSession(newFakeGateway()))
	_, err := handler(context.Background(), nil, callParams(types.BulkTasksParams{}))
	if mcpErrorCode(t, err) != upstream.CodeInvalidParameter {
		t.Fatalf("empty batch must be INVALID_PARAMETER, got %v", err)
	}
}

func TestBulkDeleteTasks(t *testing.T) {
	g := newFakeGateway()
	g.tasks["aaa1111"] = upstream.Record{"id": "aaa1111", "name": "a", "list": map[string]interface{}{"id": "list-1"}}
	g.tasks["bbb2222"] = upstream.Record{"id": "bbb2222", "name": "b", "list": map[string]interface{}{"id": "list-1"}}
	handler := bulkDeleteTasksHandler(newTestSession(g))

	res, err := handler(context.Background(), nil, callParams(types.BulkTasksParams{
		Entries: []types.BulkEntry{
			{"taskId": "aaa1111"},
			{"task_id": "bbb2222"}, // snake_case spelling is accepted
		},
	}))
	if err != nil {
		t.Fatalf("bulk-delete-tasks: %v", err)
	}
	if res.StructuredContent.Succeeded != 2 {
		t.Fatalf("unexpected summary: %+v", res.StructuredContent)
	}
	if len(g.deleted) != 2 {
		t.Fatalf("expected two deletes, got %v", g.deleted)
	}
}

func TestBulkCreateDeniedBeforeAnyWork(t *testing.T) {
	g := newFakeGateway()
	sess := newTestSession(g, func(cfg *types.AppConfig) {
		cfg.WriteAccess = types.WriteAccessConfig{Mode: "closed"}
	})
	handler := bulkCreateTasksHandler(sess)

	_, err := handler(context.Background(), nil, callParams(types.BulkTasksParams{
		DefaultListID: "list-1",
		Entries:       []types.BulkEntry{{"name": "First"}},
	}))
	if mcpErrorCode(t, err) != "WRITE_ACCESS_DENIED" {
		t.Fatalf("expected denial, got %v", err)
	}
	if len(g.created) != 0 {
		t.Fatal("denied batch must never reach upstream")
	}
}

func TestWorkspaceHierarchyHandler(t *testing.T) {
	handler := workspaceHierarchyHandler(newTestSession(newFakeGateway()))

	res, err := handler(context.Background(), nil, callParams(types.HierarchyParams{}))
	if err != nil {
		t.Fatalf("get-workspace-hierarchy: %v", err)
	}
	resp := res.StructuredContent
	if len(resp.Workspaces) != 1 || resp.Workspaces[0].ID != "ws1" {
		t.Fatalf("unexpected tree root: %+v", resp.Workspaces)
	}
	spaces := resp.Workspaces[0].Children
	if len(spaces) != 1 || len(spaces[0].Children) != 1 || spaces[0].Children[0].ID != "list-1" {
		t.Fatalf("unexpected tree: %+v", spaces)
	}
	if len(resp.Meta) == 0 {
		t.Fatal("response must carry cache metadata")
	}
}
