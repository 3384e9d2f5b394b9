package session

import (
	"context"
	"net/url"

	"github.com/taskbridge/clickup-mcp/internal/upstream"
)

// The session is the gate's upward scope resolver: it answers "which space
// and list does this entity live in" using the gateway directly, since scope
// checks must not trust stale cached containment after moves.

// TaskScope resolves a task to its containing space and list ids.
func (s *Session) TaskScope(ctx context.Context, taskID string) (string, string, error) {
	raw, err := s.gateway.GetTask(ctx, taskID, nil)
	if err != nil {
		return "", "", err
	}
	var spaceID, listID string
	if list := raw.Sub("list"); list != nil {
		listID = list.Str("id")
	}
	if space := raw.Sub("space"); space != nil {
		spaceID = space.Str("id")
	}
	return spaceID, listID, nil
}

// ListScope resolves a list to its containing space id.
func (s *Session) ListScope(ctx context.Context, listID string) (string, error) {
	raw, err := s.gateway.GetList(ctx, listID)
	if err != nil {
		return "", err
	}
	if space := raw.Sub("space"); space != nil {
		return space.Str("id"), nil
	}
	return "", nil
}

// DocumentScope resolves a document to its parent space or list. Upstream
// tags the parent with a numeric type: 4 is a space, 5 a folder, 6 a list.
// A folder parent degrades to the folder's containing space.
func (s *Session) DocumentScope(ctx context.Context, documentID string) (string, string, error) {
	ws, err := s.WorkspaceID(ctx, "")
	if err != nil {
		return "", "", err
	}
	values := url.Values{}
	values.Set("id", documentID)
	docs, err := s.gateway.SearchDocuments(ctx, ws, values)
	if err != nil {
		return "", "", err
	}
	for _, doc := range docs {
		if doc.ID() != documentID {
			continue
		}
		parent := doc.Sub("parent")
		if parent == nil {
			return "", "", nil
		}
		switch parent.Str("type") {
		case "6":
			return "", parent.Str("id"), nil
		case "4":
			return parent.Str("id"), "", nil
		case "5":
			folder, err := s.gateway.GetFolder(ctx, parent.Str("id"))
			if err != nil {
				return "", "", err
			}
			if space := folder.Sub("space"); space != nil {
				return space.Str("id"), "", nil
			}
		}
		return "", "", nil
	}
	return "", "", upstream.NewError(upstream.CodeNotFound, "document not found",
		map[string]interface{}{"documentId": documentID})
}
