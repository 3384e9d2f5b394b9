package session

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/taskbridge/clickup-mcp/internal/resolve"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
)

// docSearchEndpoint keys the capability record for server-side document
// search, which not every workspace plan exposes.
const docSearchEndpoint = "docs-search"

// FindDocuments searches the workspace's documents. The first choice is the
// upstream search parameter; when a workspace rejects it, the failure is
// remembered and later calls go straight to the fallback: an unfiltered
// listing matched client side against the normalized query, scanning a
// document's pages when its own name does not match. The returned bool
// reports whether the fallback served the result.
func (s *Session) FindDocuments(ctx context.Context, workspaceID, query string) ([]upstream.Record, bool, error) {
	ws, err := s.WorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, false, err
	}

	capability, probed := s.catalogue.Capability(docSearchEndpoint, ws)
	if !probed || capability.Available {
		values := url.Values{}
		values.Set("search", query)
		docs, err := s.gateway.SearchDocuments(ctx, ws, values)
		if err == nil {
			s.catalogue.RecordCapability(docSearchEndpoint, ws, true, "")
			return docs, false, nil
		}
		var ue *upstream.Error
		if !errors.As(err, &ue) || ue.Code == upstream.CodeRateLimit || ue.Code == upstream.CodeUnauthorized {
			// Transient and auth failures say nothing about the endpoint.
			return nil, false, err
		}
		s.catalogue.RecordCapability(docSearchEndpoint, ws, false, ue.Message)
	}

	docs, err := s.gateway.SearchDocuments(ctx, ws, nil)
	if err != nil {
		return nil, true, err
	}
	normalized := resolve.Normalize(query)
	matched := make([]upstream.Record, 0, len(docs))
	for _, doc := range docs {
		if normalized == "" || strings.Contains(resolve.Normalize(doc.Str("name", "title")), normalized) {
			matched = append(matched, doc)
			continue
		}
		if s.documentPagesMatch(ctx, ws, doc.ID(), normalized) {
			matched = append(matched, doc)
		}
	}
	return matched, true, nil
}

// documentPagesMatch scans a document page by page for the query. Page
// fetch failures drop the document from the result rather than failing the
// whole search.
func (s *Session) documentPagesMatch(ctx context.Context, workspaceID, documentID, normalized string) bool {
	pages, err := s.gateway.ListDocumentPages(ctx, workspaceID, documentID)
	if err != nil {
		return false
	}
	for _, page := range pages {
		if strings.Contains(resolve.Normalize(page.Str("name", "title")), normalized) {
			return true
		}
		if strings.Contains(resolve.Normalize(page.Str("content")), normalized) {
			return true
		}
	}
	return false
}
