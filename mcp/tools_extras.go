package mcp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskbridge/clickup-mcp/internal/session"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/types"
)

func addTagHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.TagParams, types.OKResponse] {
	return tagHandler(sess, "add-tag", func(ctx context.Context, taskID, tagName string) error {
		return sess.Gateway().AddTag(ctx, taskID, tagName, nil)
	})
}

func removeTagHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.TagParams, types.OKResponse] {
	return tagHandler(sess, "remove-tag", func(ctx context.Context, taskID, tagName string) error {
		return sess.Gateway().RemoveTag(ctx, taskID, tagName, nil)
	})
}

// tagHandler is the shared body of add-tag and remove-tag; the two differ
// only in the gateway call.
func tagHandler(sess *session.Session, name string, apply func(ctx context.Context, taskID, tagName string) error) mcpsdk.ToolHandlerFor[types.TagParams, types.OKResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.TagParams]) (*mcpsdk.CallToolResultFor[types.OKResponse], error) {
		args := params.Arguments
		logToolCall(name, args)

		if args.TagName == "" {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "tagName is required", nil)
		}
		taskID, err := sess.ResolveTask(ctx, "", args.TaskID, args.TaskName, args.ListID, args.ListName)
		if err != nil {
			return nil, toolError(err)
		}
		if err := requireWrite(ctx, sess, map[string]interface{}{"taskId": taskID}); err != nil {
			return nil, err
		}

		if err := apply(ctx, taskID, args.TagName); err != nil {
			logError(err)
			return nil, toolError(err)
		}
		sess.Catalogue().InvalidateTask(taskID)

		msg := fmt.Sprintf("%s %q on task %s", name, args.TagName, taskID)
		logInfo(msg)
		return result(msg, types.OKResponse{Success: true, Message: msg}), nil
	}
}

func createTimeEntryHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.TimeEntryParams, types.OKResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.TimeEntryParams]) (*mcpsdk.CallToolResultFor[types.OKResponse], error) {
		args := params.Arguments
		logToolCall("create-time-entry", args)

		if args.DurationMS <= 0 {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "durationMs must be positive", nil)
		}
		workspaceID, err := sess.WorkspaceID(ctx, args.WorkspaceID)
		if err != nil {
			return nil, toolError(err)
		}
		taskID, err := sess.ResolveTask(ctx, workspaceID, args.TaskID, args.TaskName, args.ListID, args.ListName)
		if err != nil {
			return nil, toolError(err)
		}
		if err := requireWrite(ctx, sess, map[string]interface{}{"taskId": taskID}); err != nil {
			return nil, err
		}

		start := time.Now().UnixMilli() - args.DurationMS
		if args.Start != "" {
			parsed, err := strconv.ParseInt(args.Start, 10, 64)
			if err != nil {
				return nil, types.NewMCPError(upstream.CodeInvalidParameter, "start must be epoch milliseconds",
					map[string]interface{}{"start": args.Start})
			}
			start = parsed
		}

		payload := upstream.Record{
			"tid":      taskID,
			"start":    start,
			"duration": args.DurationMS,
			"billable": args.Billable,
		}
		if args.Description != "" {
			payload["description"] = args.Description
		}

		if _, err := sess.Gateway().CreateTimeEntry(ctx, workspaceID, payload); err != nil {
			logError(err)
			return nil, toolError(err)
		}
		sess.Catalogue().InvalidateTask(taskID)

		msg := fmt.Sprintf("Logged %dms on task %s", args.DurationMS, taskID)
		logInfo(msg)
		return result(msg, types.OKResponse{Success: true, Message: msg}), nil
	}
}

func searchDocumentsHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.SearchDocumentsParams, types.DocumentListResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.SearchDocumentsParams]) (*mcpsdk.CallToolResultFor[types.DocumentListResponse], error) {
		args := params.Arguments
		logToolCall("search-documents", args)

		if args.Query == "" {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "query is required", nil)
		}

		docs, fallback, err := sess.FindDocuments(ctx, args.WorkspaceID, args.Query)
		if err != nil {
			return nil, toolError(err)
		}

		resp := types.DocumentListResponse{Count: len(docs), Fallback: fallback}
		for _, doc := range docs {
			resp.Documents = append(resp.Documents, types.DocumentResponse{
				ID:   doc.ID(),
				Name: doc.Str("name", "title"),
				URL:  doc.Str("url"),
			})
		}

		text := fmt.Sprintf("%d documents matched %q", len(docs), args.Query)
		if fallback {
			text += " (client-side filtering; this workspace does not support document search)"
		}
		return result(text, resp), nil
	}
}
