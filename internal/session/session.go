// Package session wires the engine together for one server session: the
// upstream gateway, the hierarchy directory, the record catalogue, the
// write-access gate, and a lazily built member index. Handlers talk to a
// Session; nothing below this package knows about MCP.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/taskbridge/clickup-mcp/internal/catalogue"
	"github.com/taskbridge/clickup-mcp/internal/gate"
	"github.com/taskbridge/clickup-mcp/internal/hierarchy"
	"github.com/taskbridge/clickup-mcp/internal/resolve"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/models"
	"github.com/taskbridge/clickup-mcp/types"
)

// Session is the per-connection engine state. Safe for concurrent use; the
// bulk engine drives it from multiple workers.
type Session struct {
	cfg       types.AppConfig
	gateway   upstream.Gateway
	directory *hierarchy.Directory
	catalogue *catalogue.Catalogue
	gate      *gate.Gate

	mu            sync.Mutex
	memberSets    map[string][]models.MemberRecord
	memberIndexes map[string]*resolve.Index
}

// New builds a Session from validated configuration and a gateway. The
// session itself serves as the gate's upward scope resolver.
func New(cfg types.AppConfig, gw upstream.Gateway) *Session {
	s := &Session{
		cfg:       cfg,
		gateway:   gw,
		directory: hierarchy.New(time.Duration(cfg.Cache.HierarchyTTLMS) * time.Millisecond),
		catalogue: catalogue.New(catalogue.Config{
			TaskTTL:     time.Duration(cfg.Cache.TaskTTLMS) * time.Millisecond,
			ListPageTTL: time.Duration(cfg.Cache.ListPageTTLMS) * time.Millisecond,
			SearchTTL:   time.Duration(cfg.Cache.SearchTTLMS) * time.Millisecond,
		}),
		memberSets:    make(map[string][]models.MemberRecord),
		memberIndexes: make(map[string]*resolve.Index),
	}
	s.gate = gate.New(gate.Config{
		Mode:           gate.Mode(cfg.WriteAccess.Mode),
		AllowedSpaces:  cfg.WriteAccess.AllowedSpaces,
		AllowedLists:   cfg.WriteAccess.AllowedLists,
		MaxResolutions: cfg.WriteAccess.MaxResolutions,
	}, s)
	return s
}

// Config returns the session's configuration.
func (s *Session) Config() types.AppConfig { return s.cfg }

// Gateway returns the upstream gateway.
func (s *Session) Gateway() upstream.Gateway { return s.gateway }

// Directory returns the hierarchy cache.
func (s *Session) Directory() *hierarchy.Directory { return s.directory }

// Catalogue returns the record cache.
func (s *Session) Catalogue() *catalogue.Catalogue { return s.catalogue }

// Gate returns the write-access gate.
func (s *Session) Gate() *gate.Gate { return s.gate }

// WorkspaceID resolves the effective workspace id: an explicit override, the
// configured default team, or the first workspace visible to the token.
func (s *Session) WorkspaceID(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if s.cfg.Upstream.DefaultTeamID != "" {
		return s.cfg.Upstream.DefaultTeamID, nil
	}
	workspaces, _, err := s.Workspaces(ctx, hierarchy.Options{})
	if err != nil {
		return "", err
	}
	if len(workspaces) == 0 {
		return "", upstream.NewError(upstream.CodeNotFound, "no workspaces are visible to this token", nil)
	}
	return workspaces[0].ID(), nil
}

// Workspaces lists workspaces through the hierarchy cache.
func (s *Session) Workspaces(ctx context.Context, opts hierarchy.Options) ([]upstream.Record, hierarchy.Meta, error) {
	return s.directory.Ensure(ctx, hierarchy.LevelWorkspace, "", func(ctx context.Context) ([]upstream.Record, error) {
		return s.gateway.ListWorkspaces(ctx)
	}, opts)
}

// Spaces lists a workspace's spaces through the hierarchy cache.
func (s *Session) Spaces(ctx context.Context, workspaceID string, opts hierarchy.Options) ([]upstream.Record, hierarchy.Meta, error) {
	return s.directory.Ensure(ctx, hierarchy.LevelSpace, workspaceID, func(ctx context.Context) ([]upstream.Record, error) {
		return s.gateway.ListSpaces(ctx, workspaceID)
	}, opts)
}

// Folders lists a space's folders through the hierarchy cache.
func (s *Session) Folders(ctx context.Context, spaceID string, opts hierarchy.Options) ([]upstream.Record, hierarchy.Meta, error) {
	return s.directory.Ensure(ctx, hierarchy.LevelFolder, spaceID, func(ctx context.Context) ([]upstream.Record, error) {
		return s.gateway.ListFolders(ctx, spaceID)
	}, opts)
}

// FolderLists lists a folder's lists through the hierarchy cache. The parent
// key is prefixed so folder and space parents cannot collide at the list
// level.
func (s *Session) FolderLists(ctx context.Context, folderID string, opts hierarchy.Options) ([]upstream.Record, hierarchy.Meta, error) {
	return s.directory.Ensure(ctx, hierarchy.LevelList, "folder:"+folderID, func(ctx context.Context) ([]upstream.Record, error) {
		return s.gateway.ListLists(ctx, folderID)
	}, opts)
}

// FolderlessLists lists a space's lists that live outside any folder.
func (s *Session) FolderlessLists(ctx context.Context, spaceID string, opts hierarchy.Options) ([]upstream.Record, hierarchy.Meta, error) {
	return s.directory.Ensure(ctx, hierarchy.LevelList, "space:"+spaceID, func(ctx context.Context) ([]upstream.Record, error) {
		return s.gateway.ListFolderlessLists(ctx, spaceID)
	}, opts)
}
