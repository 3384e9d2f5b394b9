package upstream

import (
	"context"
	"net/url"
)

// Gateway is the capability set the engine consumes from the upstream API.
// Implementations return raw records; normalization happens in the models
// package. Every call may suspend on network I/O and returns a normalized
// *Error on failure.
type Gateway interface {
	// Hierarchy listings.
	ListWorkspaces(ctx context.Context) ([]Record, error)
	ListSpaces(ctx context.Context, workspaceID string) ([]Record, error)
	ListFolders(ctx context.Context, spaceID string) ([]Record, error)
	ListLists(ctx context.Context, folderID string) ([]Record, error)
	ListFolderlessLists(ctx context.Context, spaceID string) ([]Record, error)
	GetList(ctx context.Context, listID string) (Record, error)
	GetFolder(ctx context.Context, folderID string) (Record, error)

	// Tasks.
	GetTask(ctx context.Context, taskID string, query url.Values) (Record, error)
	ListListTasks(ctx context.Context, listID string, page int, query url.Values) ([]Record, error)
	SearchTasks(ctx context.Context, workspaceID string, query url.Values) ([]Record, error)
	CreateTask(ctx context.Context, listID string, payload Record) (Record, error)
	UpdateTask(ctx context.Context, taskID string, payload Record, query url.Values) (Record, error)
	MoveTask(ctx context.Context, taskID, targetListID string, query url.Values) (Record, error)
	DeleteTask(ctx context.Context, taskID string, query url.Values) error

	// Tags.
	AddTag(ctx context.Context, taskID, tagName string, query url.Values) error
	RemoveTag(ctx context.Context, taskID, tagName string, query url.Values) error

	// Members.
	ListMembers(ctx context.Context, workspaceID string) ([]Record, error)

	// Documents. SearchDocuments is optional upstream; callers are expected
	// to capability-gate it.
	SearchDocuments(ctx context.Context, workspaceID string, query url.Values) ([]Record, error)
	ListDocumentPages(ctx context.Context, workspaceID, documentID string) ([]Record, error)

	// Time tracking.
	CreateTimeEntry(ctx context.Context, workspaceID string, payload Record) (Record, error)
}
