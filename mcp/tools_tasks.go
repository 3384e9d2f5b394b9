package mcp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskbridge/clickup-mcp/internal/resolve"
	"github.com/taskbridge/clickup-mcp/internal/session"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/models"
	"github.com/taskbridge/clickup-mcp/types"
)

func getTaskHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.GetTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.GetTaskParams]) (*mcpsdk.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("get-task", args)

		taskID, err := sess.ResolveTask(ctx, "", args.TaskID, args.TaskName, args.ListID, args.ListName)
		if err != nil {
			return nil, toolError(err)
		}
		task, err := sess.GetTask(ctx, taskID)
		if err != nil {
			return nil, toolError(err)
		}
		return result(fmt.Sprintf("Task %s: %s [%s]", task.ID, task.Name, task.Status), taskToResponse(task)), nil
	}
}

func createTaskHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.CreateTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.CreateTaskParams]) (*mcpsdk.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("create-task", args)

		if strings.TrimSpace(args.Name) == "" {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "Task name is required", map[string]interface{}{
				"field": "name",
			})
		}

		listID, err := sess.ResolveList(ctx, "", args.ListID, args.ListName)
		if err != nil {
			return nil, toolError(err)
		}
		if err := requireWrite(ctx, sess, map[string]interface{}{"listId": listID}); err != nil {
			return nil, err
		}

		payload := upstream.Record{"name": strings.TrimSpace(args.Name)}
		if args.Description != "" {
			payload["description"] = args.Description
		}
		if args.MarkdownDescription != "" {
			payload["markdown_description"] = args.MarkdownDescription
		}
		if args.Status != "" {
			payload["status"] = args.Status
		}
		if args.Priority > 0 {
			payload["priority"] = args.Priority
		}
		if args.ParentID != "" {
			payload["parent"] = args.ParentID
		}
		if len(args.Tags) > 0 {
			payload["tags"] = args.Tags
		}
		if args.DueDate != "" {
			payload["due_date"] = args.DueDate
		}
		if args.StartDate != "" {
			payload["start_date"] = args.StartDate
		}
		if len(args.Assignees) > 0 {
			assignees, err := resolveAssignees(ctx, sess, args.Assignees)
			if err != nil {
				return nil, toolError(err)
			}
			payload["assignees"] = assignees
		}

		raw, err := sess.Gateway().CreateTask(ctx, listID, payload)
		if err != nil {
			logError(err)
			return nil, toolError(err)
		}
		invalidateTaskMutation(sess, "", listID)

		task, ok := models.NormalizeTask(raw)
		if !ok {
			return nil, types.NewMCPError(upstream.CodeUnknown, "upstream returned a task without an id", nil)
		}
		sess.Catalogue().StoreTask(task)
		logInfo(fmt.Sprintf("Created task %s in list %s", task.ID, listID))
		return result(fmt.Sprintf("Created task '%s' with ID: %s", task.Name, task.ID), taskToResponse(task)), nil
	}
}

func updateTaskHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.UpdateTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.UpdateTaskParams]) (*mcpsdk.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("update-task", args)

		taskID, err := sess.ResolveTask(ctx, "", args.TaskID, args.TaskName, args.ListID, args.ListName)
		if err != nil {
			return nil, toolError(err)
		}
		if err := requireWrite(ctx, sess, map[string]interface{}{"taskId": taskID}); err != nil {
			return nil, err
		}

		payload := upstream.Record{}
		if args.Name != "" {
			payload["name"] = args.Name
		}
		if args.Description != "" {
			payload["description"] = args.Description
		}
		if args.Status != "" {
			payload["status"] = args.Status
		}
		if args.Priority > 0 {
			payload["priority"] = args.Priority
		}
		if len(args.Assignees) > 0 {
			assignees, err := resolveAssignees(ctx, sess, args.Assignees)
			if err != nil {
				return nil, toolError(err)
			}
			payload["assignees"] = upstream.Record{"add": assignees}
		}
		if len(payload) == 0 {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "no fields to update were provided", nil)
		}

		raw, err := sess.Gateway().UpdateTask(ctx, taskID, payload, nil)
		if err != nil {
			logError(err)
			return nil, toolError(err)
		}

		task, ok := models.NormalizeTask(raw)
		if !ok {
			task = models.TaskRecord{ID: taskID}
		}
		invalidateTaskMutation(sess, taskID, task.ListID)
		// A response that would not normalize must not be cached; the next
		// read refetches instead of serving a skeleton record.
		if ok {
			sess.Catalogue().StoreTask(task)
		}
		logInfo(fmt.Sprintf("Updated task %s", taskID))
		return result(fmt.Sprintf("Updated task %s", taskID), taskToResponse(task)), nil
	}
}

func moveTaskHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.MoveTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.MoveTaskParams]) (*mcpsdk.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("move-task", args)

		taskID, err := sess.ResolveTask(ctx, "", args.TaskID, args.TaskName, args.SourceListID, args.SourceListName)
		if err != nil {
			return nil, toolError(err)
		}
		targetListID, err := sess.ResolveList(ctx, "", args.TargetListID, args.TargetListName)
		if err != nil {
			return nil, toolError(err)
		}
		if err := requireWrite(ctx, sess, map[string]interface{}{"taskId": taskID, "listId": targetListID}); err != nil {
			return nil, err
		}

		// Remember the source list so its cached pages get dropped too.
		sourceListID := args.SourceListID
		if sourceListID == "" {
			if current, err := sess.GetTask(ctx, taskID); err == nil {
				sourceListID = current.ListID
			}
		}

		raw, err := sess.Gateway().MoveTask(ctx, taskID, targetListID, nil)
		if err != nil {
			logError(err)
			return nil, toolError(err)
		}
		invalidateTaskMutation(sess, taskID, sourceListID, targetListID)

		task, ok := models.NormalizeTask(raw)
		if !ok {
			task = models.TaskRecord{ID: taskID, ListID: targetListID}
		}
		if ok {
			sess.Catalogue().StoreTask(task)
		}
		logInfo(fmt.Sprintf("Moved task %s to list %s", taskID, targetListID))
		return result(fmt.Sprintf("Moved task %s to list %s", taskID, targetListID), taskToResponse(task)), nil
	}
}

func deleteTaskHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.DeleteTaskParams, types.OKResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.DeleteTaskParams]) (*mcpsdk.CallToolResultFor[types.OKResponse], error) {
		args := params.Arguments
		logToolCall("delete-task", args)

		taskID, err := sess.ResolveTask(ctx, "", args.TaskID, args.TaskName, args.ListID, args.ListName)
		if err != nil {
			return nil, toolError(err)
		}
		if err := requireWrite(ctx, sess, map[string]interface{}{"taskId": taskID}); err != nil {
			return nil, err
		}

		listID := args.ListID
		if listID == "" {
			if current, err := sess.GetTask(ctx, taskID); err == nil {
				listID = current.ListID
			}
		}

		if err := sess.Gateway().DeleteTask(ctx, taskID, nil); err != nil {
			logError(err)
			return nil, toolError(err)
		}
		invalidateTaskMutation(sess, taskID, listID)

		logInfo(fmt.Sprintf("Deleted task %s", taskID))
		msg := fmt.Sprintf("Deleted task %s", taskID)
		return result(msg, types.OKResponse{Success: true, Message: msg}), nil
	}
}

func searchTasksHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.SearchTasksParams, types.TaskListResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.SearchTasksParams]) (*mcpsdk.CallToolResultFor[types.TaskListResponse], error) {
		args := params.Arguments
		logToolCall("search-tasks", args)

		workspaceID, err := sess.WorkspaceID(ctx, args.WorkspaceID)
		if err != nil {
			return nil, toolError(err)
		}
		if args.ForceRefresh {
			sess.Catalogue().InvalidateSearch()
		}

		filters := url.Values{}
		for _, status := range args.Statuses {
			filters.Add("statuses[]", status)
		}
		for _, listID := range args.ListIDs {
			filters.Add("list_ids[]", listID)
		}

		tasks, err := sess.SearchTasks(ctx, workspaceID, args.Query, filters)
		if err != nil {
			return nil, toolError(err)
		}

		// The upstream search endpoint filters on structure, not on names;
		// the free-text query ranks client side.
		if args.Query != "" {
			entries := make([]resolve.Entry, 0, len(tasks))
			byID := make(map[string]models.TaskRecord, len(tasks))
			for _, t := range tasks {
				entries = append(entries, t.Entry())
				byID[t.ID] = t
			}
			ranked := resolve.NewIndex(entries).Rank(args.Query, 0)
			matched := make([]models.TaskRecord, 0, len(ranked))
			for _, c := range ranked {
				matched = append(matched, byID[c.ID])
			}
			tasks = matched
		}

		return result(fmt.Sprintf("%d tasks matched", len(tasks)), tasksToResponse(tasks)), nil
	}
}

// resolveAssignees turns member references (ids, emails, names) into numeric
// member ids the upstream API accepts.
func resolveAssignees(ctx context.Context, sess *session.Session, refs []string) ([]int64, error) {
	out := make([]int64, 0, len(refs))
	for _, ref := range refs {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			out = append(out, id)
			continue
		}
		candidates, err := sess.FindMembers(ctx, "", ref, 1)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, upstream.NewError(upstream.CodeNotFound, "no member matched the assignee reference",
				map[string]interface{}{"assignee": ref})
		}
		id, err := strconv.ParseInt(candidates[0].ID, 10, 64)
		if err != nil {
			return nil, upstream.NewError(upstream.CodeUnknown, "member id is not numeric",
				map[string]interface{}{"assignee": ref, "memberId": candidates[0].ID})
		}
		out = append(out, id)
	}
	return out, nil
}
