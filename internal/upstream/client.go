package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the root of the upstream REST API.
const DefaultBaseURL = "https://api.clickup.com/api/v2"

// ClientConfig holds the transport settings for the HTTP gateway.
type ClientConfig struct {
	APIToken      string
	BaseURL       string
	DefaultTeamID string
	Timeout       time.Duration
}

// Client is the net/http implementation of Gateway.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient builds an HTTP gateway. A zero Timeout defaults to 30s, matching
// the upstream service defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (Record, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, NewError(CodeInvalidParameter, fmt.Sprintf("encode request body: %v", err), nil)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, NewError(CodeInvalidParameter, err.Error(), nil)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, NewError(CodeUnknown, err.Error(), map[string]interface{}{"path": path})
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(CodeUnknown, err.Error(), map[string]interface{}{"path": path})
	}

	if resp.StatusCode >= 400 {
		return nil, ErrorFromStatus(resp.StatusCode, upstreamMessage(raw))
	}

	if len(raw) == 0 {
		return Record{}, nil
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, NewError(CodeUnknown, fmt.Sprintf("decode response: %v", err), map[string]interface{}{"path": path})
	}
	return Record(decoded), nil
}

// upstreamMessage extracts the human-readable error field the API uses
// ("err" or "error"), falling back to the raw body.
func upstreamMessage(raw []byte) string {
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if msg := Record(decoded).Str("err", "error", "message"); msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = "upstream request failed"
	}
	return msg
}

func (c *Client) teamID(workspaceID string) string {
	if workspaceID != "" {
		return workspaceID
	}
	return c.cfg.DefaultTeamID
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/team", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("teams"), nil
}

func (c *Client) ListSpaces(ctx context.Context, workspaceID string) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/team/"+c.teamID(workspaceID)+"/space", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("spaces"), nil
}

func (c *Client) ListFolders(ctx context.Context, spaceID string) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/space/"+spaceID+"/folder", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("folders"), nil
}

func (c *Client) ListLists(ctx context.Context, folderID string) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/folder/"+folderID+"/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("lists"), nil
}

func (c *Client) ListFolderlessLists(ctx context.Context, spaceID string) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/space/"+spaceID+"/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("lists"), nil
}

func (c *Client) GetList(ctx context.Context, listID string) (Record, error) {
	return c.do(ctx, http.MethodGet, "/list/"+listID, nil, nil)
}

func (c *Client) GetFolder(ctx context.Context, folderID string) (Record, error) {
	return c.do(ctx, http.MethodGet, "/folder/"+folderID, nil, nil)
}

func (c *Client) GetTask(ctx context.Context, taskID string, query url.Values) (Record, error) {
	return c.do(ctx, http.MethodGet, "/task/"+taskID, query, nil)
}

func (c *Client) ListListTasks(ctx context.Context, listID string, page int, query url.Values) ([]Record, error) {
	q := cloneValues(query)
	q.Set("page", fmt.Sprintf("%d", page))
	resp, err := c.do(ctx, http.MethodGet, "/list/"+listID+"/task", q, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("tasks"), nil
}

func (c *Client) SearchTasks(ctx context.Context, workspaceID string, query url.Values) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/team/"+c.teamID(workspaceID)+"/task", query, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("tasks"), nil
}

func (c *Client) CreateTask(ctx context.Context, listID string, payload Record) (Record, error) {
	return c.do(ctx, http.MethodPost, "/list/"+listID+"/task", nil, payload)
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, payload Record, query url.Values) (Record, error) {
	return c.do(ctx, http.MethodPut, "/task/"+taskID, query, payload)
}

func (c *Client) MoveTask(ctx context.Context, taskID, targetListID string, query url.Values) (Record, error) {
	payload := Record{"list_id": targetListID}
	return c.do(ctx, http.MethodPost, "/task/"+taskID+"/move", query, payload)
}

func (c *Client) DeleteTask(ctx context.Context, taskID string, query url.Values) error {
	_, err := c.do(ctx, http.MethodDelete, "/task/"+taskID, query, nil)
	return err
}

func (c *Client) AddTag(ctx context.Context, taskID, tagName string, query url.Values) error {
	_, err := c.do(ctx, http.MethodPost, "/task/"+taskID+"/tag/"+url.PathEscape(tagName), query, nil)
	return err
}

func (c *Client) RemoveTag(ctx context.Context, taskID, tagName string, query url.Values) error {
	_, err := c.do(ctx, http.MethodDelete, "/task/"+taskID+"/tag/"+url.PathEscape(tagName), query, nil)
	return err
}

func (c *Client) ListMembers(ctx context.Context, workspaceID string) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/team/"+c.teamID(workspaceID), nil, nil)
	if err != nil {
		return nil, err
	}
	team := resp.Sub("team")
	if team == nil {
		team = resp
	}
	return team.List("members"), nil
}

func (c *Client) SearchDocuments(ctx context.Context, workspaceID string, query url.Values) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/team/"+c.teamID(workspaceID)+"/docs", query, nil)
	if err != nil {
		return nil, err
	}
	if docs := resp.List("docs", "documents"); docs != nil {
		return docs, nil
	}
	return nil, nil
}

func (c *Client) ListDocumentPages(ctx context.Context, workspaceID, documentID string) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/team/"+c.teamID(workspaceID)+"/docs/"+documentID+"/pages", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.List("pages"), nil
}

func (c *Client) CreateTimeEntry(ctx context.Context, workspaceID string, payload Record) (Record, error) {
	return c.do(ctx, http.MethodPost, "/team/"+c.teamID(workspaceID)+"/time_entries", nil, payload)
}

func cloneValues(query url.Values) url.Values {
	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return q
}

var _ Gateway = (*Client)(nil)
