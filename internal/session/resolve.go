package session

import (
	"context"
	"net/url"

	"github.com/taskbridge/clickup-mcp/internal/hierarchy"
	"github.com/taskbridge/clickup-mcp/internal/resolve"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/models"
)

// defaultResultLimit bounds ranked candidate sets when no limit is configured.
const defaultResultLimit = 5

func (s *Session) resultLimit() int {
	if s.cfg.Fuzzy.ResultLimit > 0 {
		return s.cfg.Fuzzy.ResultLimit
	}
	return defaultResultLimit
}

// ResolveList turns a list reference into a list id. An explicit id wins; a
// name is ranked against every list reachable from the workspace hierarchy.
func (s *Session) ResolveList(ctx context.Context, workspaceID, listID, listName string) (string, error) {
	if listID != "" {
		return listID, nil
	}
	if listName == "" {
		return "", upstream.NewError(upstream.CodeInvalidParameter, "a listId or listName is required", nil)
	}

	ws, err := s.WorkspaceID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	entries, err := s.listEntries(ctx, ws)
	if err != nil {
		return "", err
	}

	candidates := resolve.NewIndex(entries).Rank(listName, s.resultLimit())
	if len(candidates) == 0 {
		return "", upstream.NewError(upstream.CodeNotFound, "no list matched the given name",
			map[string]interface{}{"listName": listName})
	}
	return candidates[0].ID, nil
}

// listEntries walks spaces, folders, and folderless lists and converts every
// list into a resolver entry.
func (s *Session) listEntries(ctx context.Context, workspaceID string) ([]resolve.Entry, error) {
	spaces, _, err := s.Spaces(ctx, workspaceID, hierarchy.Options{})
	if err != nil {
		return nil, err
	}

	var entries []resolve.Entry
	add := func(list upstream.Record, spaceName string) {
		id := list.ID()
		if id == "" {
			return
		}
		name := list.Str("name")
		entries = append(entries, resolve.Entry{
			ID:          id,
			DisplayName: name,
			Identifiers: resolve.DedupeIdentifiers([]resolve.Identifier{
				resolve.NewIdentifier(id, "id"),
				resolve.NewIdentifier(name, "name"),
			}),
			Fuzzy: []resolve.WeightedField{
				{Name: "name", Value: name, Weight: 1.0},
				{Name: "space", Value: spaceName, Weight: 0.6},
			},
		})
	}

	for _, space := range spaces {
		spaceID := space.ID()
		spaceName := space.Str("name")

		folders, _, err := s.Folders(ctx, spaceID, hierarchy.Options{})
		if err != nil {
			return nil, err
		}
		for _, folder := range folders {
			// Folder listings usually embed their lists; fall back to a
			// per-folder fetch when they do not.
			lists := folder.List("lists")
			if lists == nil {
				lists, _, err = s.FolderLists(ctx, folder.ID(), hierarchy.Options{})
				if err != nil {
					return nil, err
				}
			}
			for _, list := range lists {
				add(list, spaceName)
			}
		}

		folderless, _, err := s.FolderlessLists(ctx, spaceID, hierarchy.Options{})
		if err != nil {
			return nil, err
		}
		for _, list := range folderless {
			add(list, spaceName)
		}
	}
	return entries, nil
}

// ResolveTask turns a task reference into a task id. A native-looking id
// passes through untouched; custom ids and names are ranked against the
// containing list's tasks when a list reference is given, otherwise against a
// workspace-wide search.
func (s *Session) ResolveTask(ctx context.Context, workspaceID, taskID, taskName, listID, listName string) (string, error) {
	if models.IsStandardTaskID(taskID) {
		return taskID, nil
	}
	query := taskName
	if query == "" {
		query = taskID
	}
	if query == "" {
		return "", upstream.NewError(upstream.CodeInvalidParameter, "a taskId or taskName is required", nil)
	}

	if listID != "" || listName != "" {
		resolvedListID, err := s.ResolveList(ctx, workspaceID, listID, listName)
		if err != nil {
			return "", err
		}
		if _, err := s.ListTasks(ctx, resolvedListID, 0, nil); err != nil {
			return "", err
		}
		if candidates, ok := s.catalogue.RankListPage(resolvedListID, "", 0, query, s.resultLimit()); ok && len(candidates) > 0 {
			return candidates[0].ID, nil
		}
		return "", upstream.NewError(upstream.CodeNotFound, "no task matched the given reference in the list",
			map[string]interface{}{"query": query, "listId": resolvedListID})
	}

	ws, err := s.WorkspaceID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	tasks, err := s.SearchTasks(ctx, ws, query, nil)
	if err != nil {
		return "", err
	}
	entries := make([]resolve.Entry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, t.Entry())
	}
	candidates := resolve.NewIndex(entries).Rank(query, s.resultLimit())
	if len(candidates) == 0 {
		return "", upstream.NewError(upstream.CodeNotFound, "no task matched the given reference",
			map[string]interface{}{"query": query})
	}
	return candidates[0].ID, nil
}

// ListTasks returns the normalized tasks of one list page through the
// catalogue's page table.
func (s *Session) ListTasks(ctx context.Context, listID string, page int, query url.Values) ([]models.TaskRecord, error) {
	return s.catalogue.EnsureListPage(ctx, listID, query.Encode(), page, func(ctx context.Context) ([]models.TaskRecord, error) {
		raw, err := s.gateway.ListListTasks(ctx, listID, page, query)
		if err != nil {
			return nil, err
		}
		return normalizeTasks(raw), nil
	})
}

// SearchTasks runs a workspace-scoped task search through the catalogue's
// search table. The free-text query is matched client side; extra filters are
// forwarded upstream.
func (s *Session) SearchTasks(ctx context.Context, workspaceID, query string, filters url.Values) ([]models.TaskRecord, error) {
	key := query + "|" + filters.Encode()
	return s.catalogue.EnsureSearch(ctx, workspaceID, key, func(ctx context.Context) ([]models.TaskRecord, error) {
		raw, err := s.gateway.SearchTasks(ctx, workspaceID, filters)
		if err != nil {
			return nil, err
		}
		return normalizeTasks(raw), nil
	})
}

// GetTask fetches one task through the catalogue's task table.
func (s *Session) GetTask(ctx context.Context, taskID string) (models.TaskRecord, error) {
	return s.catalogue.EnsureTask(ctx, taskID, func(ctx context.Context) (models.TaskRecord, error) {
		raw, err := s.gateway.GetTask(ctx, taskID, nil)
		if err != nil {
			return models.TaskRecord{}, err
		}
		rec, ok := models.NormalizeTask(raw)
		if !ok {
			return models.TaskRecord{}, upstream.NewError(upstream.CodeUnknown, "upstream returned a task without an id", nil)
		}
		return rec, nil
	})
}

// Members returns the workspace's members, fetched once per session.
func (s *Session) Members(ctx context.Context, workspaceID string) ([]models.MemberRecord, error) {
	ws, err := s.WorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	cached, ok := s.memberSets[ws]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	raw, err := s.gateway.ListMembers(ctx, ws)
	if err != nil {
		return nil, err
	}
	members := make([]models.MemberRecord, 0, len(raw))
	for _, r := range raw {
		if member, ok := models.NormalizeMember(r); ok {
			members = append(members, member)
		}
	}

	s.mu.Lock()
	s.memberSets[ws] = members
	delete(s.memberIndexes, ws)
	s.mu.Unlock()
	return members, nil
}

// FindMembers ranks a free-text reference against the workspace's members.
func (s *Session) FindMembers(ctx context.Context, workspaceID, query string, limit int) ([]resolve.Candidate, error) {
	ws, err := s.WorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	members, err := s.Members(ctx, ws)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	index, ok := s.memberIndexes[ws]
	if !ok {
		entries := make([]resolve.Entry, 0, len(members))
		for _, m := range members {
			entries = append(entries, m.Entry())
		}
		index = resolve.NewIndex(entries)
		s.memberIndexes[ws] = index
	}
	s.mu.Unlock()

	if limit <= 0 {
		limit = s.resultLimit()
	}
	return index.Rank(query, limit), nil
}

func normalizeTasks(raw []upstream.Record) []models.TaskRecord {
	tasks := make([]models.TaskRecord, 0, len(raw))
	for _, r := range raw {
		if task, ok := models.NormalizeTask(r); ok {
			tasks = append(tasks, task)
		}
	}
	return tasks
}
