package mcp

import (
	"context"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskbridge/clickup-mcp/internal/gate"
	"github.com/taskbridge/clickup-mcp/internal/session"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/models"
	"github.com/taskbridge/clickup-mcp/types"
)

// result wraps a structured payload together with its text rendering, the
// shape every tool in this server returns.
func result[R any](text string, payload R) *mcpsdk.CallToolResultFor[R] {
	return &mcpsdk.CallToolResultFor[R]{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		StructuredContent: payload,
	}
}

// toolError converts engine failures into structured MCP errors so clients
// can branch on codes instead of parsing messages.
func toolError(err error) *types.MCPError {
	var ue *upstream.Error
	if errors.As(err, &ue) {
		return types.NewMCPError(ue.Code, ue.Message, ue.Context)
	}
	var denied *gate.DeniedError
	if errors.As(err, &denied) {
		return types.NewMCPError("WRITE_ACCESS_DENIED", denied.Error(), map[string]interface{}{
			"scopes": denied.Scopes,
		})
	}
	if errors.Is(err, gate.ErrScopeUndetermined) {
		return types.NewMCPError("SCOPE_UNDETERMINED", err.Error(), nil)
	}
	var me *types.MCPError
	if errors.As(err, &me) {
		return me
	}
	return types.NewMCPError(upstream.CodeUnknown, err.Error(), nil)
}

// requireWrite runs the gate ahead of any mutation. The raw input map feeds
// scope harvesting; extraScopes carry ids the handler already resolved.
func requireWrite(ctx context.Context, sess *session.Session, input map[string]interface{}, extraScopes ...string) error {
	if err := sess.Gate().EnsureWriteAllowed(ctx, input, extraScopes...); err != nil {
		logError(err)
		return toolError(err)
	}
	return nil
}

func taskToResponse(task models.TaskRecord) types.TaskResponse {
	return types.TaskResponse{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		ListID:      task.ListID,
		ListName:    task.ListName,
		URL:         task.URL,
	}
}

func tasksToResponse(tasks []models.TaskRecord) types.TaskListResponse {
	out := make([]types.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return types.TaskListResponse{Tasks: out, Count: len(out)}
}

// invalidateTaskMutation drops every cache a task mutation can stale. The
// list id may be empty when unknown; over-invalidation of searches is safe.
func invalidateTaskMutation(sess *session.Session, taskID string, listIDs ...string) {
	cat := sess.Catalogue()
	if taskID != "" {
		cat.InvalidateTask(taskID)
	}
	for _, listID := range listIDs {
		if listID != "" {
			cat.InvalidateList(listID)
		}
	}
	cat.InvalidateSearch()
}

func describeOutcomes(verb string, summary types.BulkSummaryResponse) string {
	text := fmt.Sprintf("%s %d/%d tasks (batch %s)", verb, summary.Succeeded, summary.Total, summary.BatchID)
	if summary.Failed > 0 {
		text += ". " + summary.Guidance
	}
	return text
}
