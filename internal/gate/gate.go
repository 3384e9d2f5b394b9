// Package gate authorizes mutations against a configured allow-list of
// space/list scopes. When an input names no scope directly, the gate resolves
// upward (task -> list/space, list -> space, document -> space/list) through
// the upstream gateway before deciding.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Mode selects the gate behavior.
type Mode string

const (
	ModeOpen      Mode = "open"
	ModeClosed    Mode = "closed"
	ModeSelective Mode = "selective"
)

// DefaultMaxResolutions caps upward scope resolutions per check so bulk
// inputs cannot fan out into unbounded upstream calls.
const DefaultMaxResolutions = 5

// ErrScopeUndetermined means no scope signal could be found or resolved. The
// remediation is for the caller to supply a spaceId or listId explicitly.
var ErrScopeUndetermined = errors.New("write access: no space or list scope could be determined; supply a spaceId or listId")

// DeniedError means a scope was determined but is not on the allow-list.
type DeniedError struct {
	Scopes []string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("write access denied: scope(s) %s not on the allow-list", strings.Join(e.Scopes, ", "))
}

// ScopeResolver resolves an entity identifier upward to its containing
// scopes. Implementations typically consult the hierarchy directory and the
// record catalogue before falling back to the gateway.
type ScopeResolver interface {
	TaskScope(ctx context.Context, taskID string) (spaceID, listID string, err error)
	ListScope(ctx context.Context, listID string) (spaceID string, err error)
	DocumentScope(ctx context.Context, documentID string) (spaceID, listID string, err error)
}

// Config is the gate's static configuration.
type Config struct {
	Mode           Mode
	AllowedSpaces  []string
	AllowedLists   []string
	MaxResolutions int
}

// Gate is the write-access gate. Construct one per session.
type Gate struct {
	mode          Mode
	allowedSpaces map[string]struct{}
	allowedLists  map[string]struct{}
	maxResolve    int
	resolver      ScopeResolver
}

// New builds a Gate. resolver may be nil only in open/closed modes.
func New(cfg Config, resolver ScopeResolver) *Gate {
	g := &Gate{
		mode:          cfg.Mode,
		allowedSpaces: make(map[string]struct{}, len(cfg.AllowedSpaces)),
		allowedLists:  make(map[string]struct{}, len(cfg.AllowedLists)),
		maxResolve:    cfg.MaxResolutions,
		resolver:      resolver,
	}
	if g.mode == "" {
		g.mode = ModeOpen
	}
	if g.maxResolve <= 0 {
		g.maxResolve = DefaultMaxResolutions
	}
	for _, id := range cfg.AllowedSpaces {
		g.allowedSpaces[id] = struct{}{}
	}
	for _, id := range cfg.AllowedLists {
		g.allowedLists[id] = struct{}{}
	}
	return g
}

// EnsureWriteAllowed accepts or rejects a mutation given its raw input.
// extraScopes are scope ids the caller already resolved (space or list ids).
// Individual upward-resolution failures are skipped, never fatal; the check
// only fails when no scope can be determined at all or every determined
// scope is disallowed.
func (g *Gate) EnsureWriteAllowed(ctx context.Context, input map[string]interface{}, extraScopes ...string) error {
	switch g.mode {
	case ModeOpen:
		return nil
	case ModeClosed:
		return &DeniedError{Scopes: []string{"(all: write access is disabled)"}}
	}

	spaces := collectStrings(input, "spaceId", "space_id", "spaceIds", "space_ids")
	lists := collectStrings(input, "listId", "list_id", "listIds", "list_ids")
	for _, s := range extraScopes {
		if s == "" {
			continue
		}
		// Callers pass bare ids; try both sets.
		spaces = append(spaces, s)
		lists = append(lists, s)
	}

	determined := make([]string, 0, len(spaces)+len(lists))
	budget := g.maxResolve

	for _, id := range spaces {
		determined = append(determined, id)
		if _, ok := g.allowedSpaces[id]; ok {
			return nil
		}
	}
	for _, id := range lists {
		determined = append(determined, id)
		if _, ok := g.allowedLists[id]; ok {
			return nil
		}
		// A list that is not itself allow-listed may live in an allowed
		// space; resolve upward even though a scope id was already present.
		if g.resolver == nil || budget <= 0 {
			continue
		}
		budget--
		spaceID, err := g.resolver.ListScope(ctx, id)
		if err != nil || spaceID == "" {
			continue
		}
		determined = append(determined, spaceID)
		if _, ok := g.allowedSpaces[spaceID]; ok {
			return nil
		}
	}

	// No direct scope signal: resolve upward from task/document references.
	if g.resolver != nil {
		for _, taskID := range collectStrings(input, "taskId", "task_id", "parentTaskId", "parent_task_id", "parent") {
			if budget <= 0 {
				break
			}
			budget--
			spaceID, listID, err := g.resolver.TaskScope(ctx, taskID)
			if err != nil {
				continue
			}
			if allowed, scopes := g.check(spaceID, listID); allowed {
				return nil
			} else {
				determined = append(determined, scopes...)
			}
		}
		for _, docID := range collectStrings(input, "documentId", "document_id", "docId", "doc_id") {
			if budget <= 0 {
				break
			}
			budget--
			spaceID, listID, err := g.resolver.DocumentScope(ctx, docID)
			if err != nil {
				continue
			}
			if allowed, scopes := g.check(spaceID, listID); allowed {
				return nil
			} else {
				determined = append(determined, scopes...)
			}
		}
	}

	if len(determined) == 0 {
		return ErrScopeUndetermined
	}
	return &DeniedError{Scopes: dedupe(determined)}
}

func (g *Gate) check(spaceID, listID string) (bool, []string) {
	var scopes []string
	if spaceID != "" {
		scopes = append(scopes, spaceID)
		if _, ok := g.allowedSpaces[spaceID]; ok {
			return true, scopes
		}
	}
	if listID != "" {
		scopes = append(scopes, listID)
		if _, ok := g.allowedLists[listID]; ok {
			return true, scopes
		}
	}
	return false, scopes
}

// collectStrings gathers string values under keys from the top level of
// input and from one level of nested entry arrays (bulk payloads carry their
// scope signals per entry).
func collectStrings(input map[string]interface{}, keys ...string) []string {
	var out []string
	gather := func(m map[string]interface{}) {
		for _, k := range keys {
			switch v := m[k].(type) {
			case string:
				if v != "" {
					out = append(out, v)
				}
			case float64:
				out = append(out, fmt.Sprintf("%d", int64(v)))
			case []interface{}:
				for _, item := range v {
					if s, ok := item.(string); ok && s != "" {
						out = append(out, s)
					}
				}
			}
		}
	}
	if input == nil {
		return nil
	}
	gather(input)
	for _, entryKey := range []string{"tasks", "items", "entries"} {
		entries, ok := input[entryKey].([]interface{})
		if !ok {
			continue
		}
		for _, raw := range entries {
			if m, ok := raw.(map[string]interface{}); ok {
				gather(m)
			}
		}
	}
	return dedupe(out)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
