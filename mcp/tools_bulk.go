package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskbridge/clickup-mcp/internal/bulk"
	"github.com/taskbridge/clickup-mcp/internal/session"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/models"
	"github.com/taskbridge/clickup-mcp/types"
)

// routingKeys identify the entry fields that reference tasks and lists rather
// than carrying mutation payload. Both key spellings are accepted everywhere.
var routingKeys = map[string]struct{}{
	"taskId": {}, "task_id": {}, "id": {},
	"taskName": {}, "task_name": {},
	"listId": {}, "list_id": {},
	"listName": {}, "list_name": {},
	"targetListId": {}, "target_list_id": {},
	"targetListName": {}, "target_list_name": {},
}

func entryPayload(entry types.BulkEntry) upstream.Record {
	payload := make(upstream.Record, len(entry))
	for k, v := range entry {
		if _, routing := routingKeys[k]; routing {
			continue
		}
		payload[k] = v
	}
	return payload
}

func entryListRef(entry upstream.Record, defaultID, defaultName string) (string, string) {
	listID := entry.Str("listId", "list_id")
	listName := entry.Str("listName", "list_name")
	if listID == "" && listName == "" {
		return defaultID, defaultName
	}
	return listID, listName
}

func resolveEntryTask(ctx context.Context, sess *session.Session, entry upstream.Record, defaultListID, defaultListName string) (string, error) {
	taskID := entry.Str("taskId", "task_id", "id")
	taskName := entry.Str("taskName", "task_name")
	listID, listName := entryListRef(entry, defaultListID, defaultListName)
	return sess.ResolveTask(ctx, "", taskID, taskName, listID, listName)
}

func batchConcurrency(override int) int {
	if override > 0 {
		return override
	}
	if c := currentConfig().Bulk.Concurrency; c > 0 {
		return c
	}
	return bulk.DefaultConcurrency
}

// gateBatch runs one write-access check over the whole batch: the raw
// entries feed scope harvesting, the batch defaults are extra scopes.
func gateBatch(ctx context.Context, sess *session.Session, args types.BulkTasksParams) error {
	rawEntries := make([]interface{}, len(args.Entries))
	for i, e := range args.Entries {
		rawEntries[i] = map[string]interface{}(e)
	}
	input := map[string]interface{}{"entries": rawEntries}
	if args.DefaultListID != "" {
		input["listId"] = args.DefaultListID
	}
	return requireWrite(ctx, sess, input)
}

func summaryToResponse(s bulk.Summary) types.BulkSummaryResponse {
	preview := make([]types.BulkOutcome, 0, len(s.Preview))
	for _, out := range s.Preview {
		preview = append(preview, types.BulkOutcome{
			Index:   out.Index,
			Status:  out.Status,
			Payload: out.Payload,
			Error:   out.Error,
		})
	}
	return types.BulkSummaryResponse{
		BatchID:       s.BatchID,
		Total:         s.Total,
		Succeeded:     s.Succeeded,
		Failed:        s.Failed,
		FirstError:    s.FirstError,
		FailedIndices: s.FailedIndices,
		Preview:       preview,
		Truncated:     s.Truncated,
		Guidance:      s.Guidance,
	}
}

func runBatch(ctx context.Context, args types.BulkTasksParams, worker bulk.Worker) types.BulkSummaryResponse {
	outcomes := bulk.Run(ctx, len(args.Entries), worker, batchConcurrency(args.Concurrency))
	summary := bulk.Summarize(outcomes)
	logInfo(fmt.Sprintf("batch %s: %d/%d succeeded", summary.BatchID, summary.Succeeded, summary.Total))
	return summaryToResponse(summary)
}

func bulkCreateTasksHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.BulkTasksParams, types.BulkSummaryResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.BulkTasksParams]) (*mcpsdk.CallToolResultFor[types.BulkSummaryResponse], error) {
		args := params.Arguments
		logToolCall("bulk-create-tasks", args)
		if len(args.Entries) == 0 {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "entries must not be empty", nil)
		}
		if err := gateBatch(ctx, sess, args); err != nil {
			return nil, err
		}

		resp := runBatch(ctx, args, func(ctx context.Context, i int) (interface{}, error) {
			entry := upstream.Record(args.Entries[i])
			name := entry.Str("name", "title")
			if name == "" {
				return nil, upstream.NewError(upstream.CodeInvalidParameter, "entry needs a name", nil)
			}
			listID, listName := entryListRef(entry, args.DefaultListID, args.DefaultListName)
			resolvedListID, err := sess.ResolveList(ctx, "", listID, listName)
			if err != nil {
				return nil, err
			}

			payload := entryPayload(args.Entries[i])
			payload["name"] = name
			raw, err := sess.Gateway().CreateTask(ctx, resolvedListID, payload)
			if err != nil {
				return nil, err
			}
			invalidateTaskMutation(sess, "", resolvedListID)
			task, ok := models.NormalizeTask(raw)
			if !ok {
				return raw, nil
			}
			sess.Catalogue().StoreTask(task)
			return taskToResponse(task), nil
		})
		return result(describeOutcomes("Created", resp), resp), nil
	}
}

func bulkUpdateTasksHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.BulkTasksParams, types.BulkSummaryResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.BulkTasksParams]) (*mcpsdk.CallToolResultFor[types.BulkSummaryResponse], error) {
		args := params.Arguments
		logToolCall("bulk-update-tasks", args)
		if len(args.Entries) == 0 {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "entries must not be empty", nil)
		}
		if err := gateBatch(ctx, sess, args); err != nil {
			return nil, err
		}

		resp := runBatch(ctx, args, func(ctx context.Context, i int) (interface{}, error) {
			entry := upstream.Record(args.Entries[i])
			taskID, err := resolveEntryTask(ctx, sess, entry, args.DefaultListID, args.DefaultListName)
			if err != nil {
				return nil, err
			}
			payload := entryPayload(args.Entries[i])
			if len(payload) == 0 {
				return nil, upstream.NewError(upstream.CodeInvalidParameter, "entry has no fields to update", nil)
			}
			raw, err := sess.Gateway().UpdateTask(ctx, taskID, payload, nil)
			if err != nil {
				return nil, err
			}
			task, ok := models.NormalizeTask(raw)
			if !ok {
				task = models.TaskRecord{ID: taskID}
			}
			invalidateTaskMutation(sess, taskID, task.ListID)
			if ok {
				sess.Catalogue().StoreTask(task)
			}
			return taskToResponse(task), nil
		})
		return result(describeOutcomes("Updated", resp), resp), nil
	}
}

func bulkMoveTasksHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.BulkTasksParams, types.BulkSummaryResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.BulkTasksParams]) (*mcpsdk.CallToolResultFor[types.BulkSummaryResponse], error) {
		args := params.Arguments
		logToolCall("bulk-move-tasks", args)
		if len(args.Entries) == 0 {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "entries must not be empty", nil)
		}
		if err := gateBatch(ctx, sess, args); err != nil {
			return nil, err
		}

		resp := runBatch(ctx, args, func(ctx context.Context, i int) (interface{}, error) {
			entry := upstream.Record(args.Entries[i])
			taskID, err := resolveEntryTask(ctx, sess, entry, "", "")
			if err != nil {
				return nil, err
			}
			targetID := entry.Str("targetListId", "target_list_id", "listId", "list_id")
			targetName := entry.Str("targetListName", "target_list_name", "listName", "list_name")
			if targetID == "" && targetName == "" {
				targetID, targetName = args.DefaultListID, args.DefaultListName
			}
			resolvedTargetID, err := sess.ResolveList(ctx, "", targetID, targetName)
			if err != nil {
				return nil, err
			}

			var sourceListID string
			if current, err := sess.GetTask(ctx, taskID); err == nil {
				sourceListID = current.ListID
			}
			raw, err := sess.Gateway().MoveTask(ctx, taskID, resolvedTargetID, nil)
			if err != nil {
				return nil, err
			}
			invalidateTaskMutation(sess, taskID, sourceListID, resolvedTargetID)
			task, ok := models.NormalizeTask(raw)
			if !ok {
				task = models.TaskRecord{ID: taskID, ListID: resolvedTargetID}
			}
			if ok {
				sess.Catalogue().StoreTask(task)
			}
			return taskToResponse(task), nil
		})
		return result(describeOutcomes("Moved", resp), resp), nil
	}
}

func bulkDeleteTasksHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.BulkTasksParams, types.BulkSummaryResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.BulkTasksParams]) (*mcpsdk.CallToolResultFor[types.BulkSummaryResponse], error) {
		args := params.Arguments
		logToolCall("bulk-delete-tasks", args)
		if len(args.Entries) == 0 {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "entries must not be empty", nil)
		}
		if err := gateBatch(ctx, sess, args); err != nil {
			return nil, err
		}

		resp := runBatch(ctx, args, func(ctx context.Context, i int) (interface{}, error) {
			entry := upstream.Record(args.Entries[i])
			taskID, err := resolveEntryTask(ctx, sess, entry, args.DefaultListID, args.DefaultListName)
			if err != nil {
				return nil, err
			}
			var listID string
			if current, err := sess.GetTask(ctx, taskID); err == nil {
				listID = current.ListID
			}
			if err := sess.Gateway().DeleteTask(ctx, taskID, nil); err != nil {
				return nil, err
			}
			invalidateTaskMutation(sess, taskID, listID)
			return types.OKResponse{Success: true, Message: "deleted " + taskID}, nil
		})
		return result(describeOutcomes("Deleted", resp), resp), nil
	}
}
