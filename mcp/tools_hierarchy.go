package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskbridge/clickup-mcp/internal/hierarchy"
	"github.com/taskbridge/clickup-mcp/internal/session"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/types"
)

// workspaceHierarchyHandler renders the workspace tree. Every level is served
// through the hierarchy cache; the response carries the staleness metadata of
// each listing that contributed.
func workspaceHierarchyHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.HierarchyParams, types.HierarchyResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.HierarchyParams]) (*mcpsdk.CallToolResultFor[types.HierarchyResponse], error) {
		args := params.Arguments
		logToolCall("get-workspace-hierarchy", args)
		opts := hierarchy.Options{ForceRefresh: args.ForceRefresh}

		workspaceID, err := sess.WorkspaceID(ctx, args.WorkspaceID)
		if err != nil {
			return nil, toolError(err)
		}

		var metas []types.CacheMeta
		collect := func(meta hierarchy.Meta) {
			metas = append(metas, types.CacheMeta(meta))
		}

		spaces, meta, err := sess.Spaces(ctx, workspaceID, opts)
		if err != nil {
			return nil, toolError(err)
		}
		collect(meta)

		listCount := 0
		listNode := func(list upstream.Record) types.HierarchyNode {
			listCount++
			return types.HierarchyNode{ID: list.ID(), Name: list.Str("name"), Level: "list"}
		}

		spaceNodes := make([]types.HierarchyNode, 0, len(spaces))
		for _, space := range spaces {
			spaceNode := types.HierarchyNode{ID: space.ID(), Name: space.Str("name"), Level: "space"}

			folders, meta, err := sess.Folders(ctx, space.ID(), opts)
			if err != nil {
				return nil, toolError(err)
			}
			collect(meta)
			for _, folder := range folders {
				folderNode := types.HierarchyNode{ID: folder.ID(), Name: folder.Str("name"), Level: "folder"}
				lists := folder.List("lists")
				if lists == nil {
					lists, meta, err = sess.FolderLists(ctx, folder.ID(), opts)
					if err != nil {
						return nil, toolError(err)
					}
					collect(meta)
				}
				for _, list := range lists {
					folderNode.Children = append(folderNode.Children, listNode(list))
				}
				spaceNode.Children = append(spaceNode.Children, folderNode)
			}

			folderless, meta, err := sess.FolderlessLists(ctx, space.ID(), opts)
			if err != nil {
				return nil, toolError(err)
			}
			collect(meta)
			for _, list := range folderless {
				spaceNode.Children = append(spaceNode.Children, listNode(list))
			}

			spaceNodes = append(spaceNodes, spaceNode)
		}

		resp := types.HierarchyResponse{
			Workspaces: []types.HierarchyNode{{
				ID:       workspaceID,
				Name:     "workspace " + workspaceID,
				Level:    "workspace",
				Children: spaceNodes,
			}},
			Meta: metas,
		}
		text := fmt.Sprintf("Workspace %s: %d spaces, %d lists", workspaceID, len(spaces), listCount)
		logInfo(text)
		return result(text, resp), nil
	}
}

func listMembersHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.ListMembersParams, types.MemberListResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ListMembersParams]) (*mcpsdk.CallToolResultFor[types.MemberListResponse], error) {
		args := params.Arguments
		logToolCall("list-members", args)

		members, err := sess.Members(ctx, args.WorkspaceID)
		if err != nil {
			return nil, toolError(err)
		}

		resp := types.MemberListResponse{Count: len(members)}
		for _, m := range members {
			resp.Members = append(resp.Members, types.MemberCandidate{
				ID:          m.ID,
				DisplayName: m.DisplayName,
				Method:      "direct",
			})
		}
		return result(fmt.Sprintf("%d members", len(members)), resp), nil
	}
}

func findMemberHandler(sess *session.Session) mcpsdk.ToolHandlerFor[types.FindMemberParams, types.MemberListResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.FindMemberParams]) (*mcpsdk.CallToolResultFor[types.MemberListResponse], error) {
		args := params.Arguments
		logToolCall("find-member", args)

		if args.Query == "" {
			return nil, types.NewMCPError(upstream.CodeInvalidParameter, "query is required", nil)
		}

		candidates, err := sess.FindMembers(ctx, args.WorkspaceID, args.Query, args.Limit)
		if err != nil {
			return nil, toolError(err)
		}

		resp := types.MemberListResponse{Count: len(candidates)}
		for _, c := range candidates {
			resp.Members = append(resp.Members, types.MemberCandidate{
				ID:          c.ID,
				DisplayName: c.DisplayName,
				Score:       c.Score,
				Method:      c.Method,
				Matched:     c.Matched,
				Reasons:     c.Reasons,
			})
		}

		text := fmt.Sprintf("No member matched %q", args.Query)
		if len(candidates) > 0 {
			text = fmt.Sprintf("Best match for %q: %s (%s, score %.2f)",
				args.Query, candidates[0].DisplayName, candidates[0].Method, candidates[0].Score)
		}
		return result(text, resp), nil
	}
}
