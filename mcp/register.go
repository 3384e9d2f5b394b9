package mcp

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskbridge/clickup-mcp/internal/session"
)

// RegisterTools registers every tool this server exposes. Handlers close
// over the session; nothing else is global.
func RegisterTools(server *mcpsdk.Server, sess *session.Session) error {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-workspace-hierarchy",
		Description: "Get the workspace tree (spaces, folders, lists) with cache staleness metadata. Call before referencing lists by name. Args: workspaceId, forceRefresh.",
	}, workspaceHierarchyHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list-members",
		Description: "List all workspace members with their searchable identifiers. Args: workspaceId (defaults to configured team).",
	}, listMembersHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "find-member",
		Description: "Resolve a free-text member reference (name, email, username, id) to ranked candidates. Lower score is better; 0 is exact. Args: query, workspaceId, limit.",
	}, findMemberHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-task",
		Description: "Get one task by taskId or by taskName (optionally scoped with listId/listName). Names are fuzzy-resolved against the list's tasks.",
	}, getTaskHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create-task",
		Description: "Create a task in a list. Args: listId or listName, name (required), description, markdownDescription, status, priority [1-4], parentId, tags[], dueDate, startDate.",
	}, createTaskHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "update-task",
		Description: "Update a task by taskId or taskName. Updatable: name, description, status, priority, assignees. Only provided fields change.",
	}, updateTaskHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "move-task",
		Description: "Move a task to another list. Args: taskId or taskName (+ sourceListId/sourceListName), targetListId or targetListName.",
	}, moveTaskHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete-task",
		Description: "Delete a task by taskId or taskName. Deletion is permanent upstream; prefer status changes when in doubt.",
	}, deleteTaskHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search-tasks",
		Description: "Search tasks across the workspace. Args: query (matched against names), statuses[], listIds[], forceRefresh. Results are cached per (workspace, query).",
	}, searchTasksHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "add-tag",
		Description: "Add a tag to a task. Args: taskId or taskName (+ list scope), tagName.",
	}, addTagHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "remove-tag",
		Description: "Remove a tag from a task. Args: taskId or taskName (+ list scope), tagName.",
	}, removeTagHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create-time-entry",
		Description: "Create a time entry on a task. Args: taskId or taskName, durationMs (required), start (epoch millis, defaults to now minus duration), description, billable.",
	}, createTimeEntryHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search-documents",
		Description: "Search workspace documents by name. Falls back to client-side filtering when the workspace does not support server-side document search.",
	}, searchDocumentsHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "bulk-create-tasks",
		Description: "Create many tasks concurrently. Each entry carries its own fields (name required) and optional listId/listName; defaultListId/defaultListName fill the gaps. Per-item outcomes, input order.",
	}, bulkCreateTasksHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "bulk-update-tasks",
		Description: "Update many tasks concurrently. Each entry references a task (taskId/id or taskName + list scope) plus the fields to change. Per-item outcomes, input order.",
	}, bulkUpdateTasksHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "bulk-move-tasks",
		Description: "Move many tasks concurrently. Each entry references a task and a target list (targetListId/targetListName or the batch defaults). Per-item outcomes, input order.",
	}, bulkMoveTasksHandler(sess))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "bulk-delete-tasks",
		Description: "Delete many tasks concurrently. Each entry references a task by taskId/id or taskName + list scope. Per-item outcomes, input order.",
	}, bulkDeleteTasksHandler(sess))

	return nil
}
