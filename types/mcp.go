package types

// MCP tool parameter and response types.

// HierarchyParams for browsing the workspace hierarchy.
type HierarchyParams struct {
	WorkspaceID  string `json:"workspaceId,omitempty" mcp:"Workspace (team) ID; defaults to the configured team"`
	ForceRefresh bool   `json:"forceRefresh,omitempty" mcp:"Bypass the hierarchy cache and refetch listings"`
}

// GetTaskParams for retrieving a task by id or name.
type GetTaskParams struct {
	TaskID   string `json:"taskId,omitempty" mcp:"Task ID (native or custom)"`
	TaskName string `json:"taskName,omitempty" mcp:"Task name to resolve when no ID is available"`
	ListID   string `json:"listId,omitempty" mcp:"List ID to scope name resolution"`
	ListName string `json:"listName,omitempty" mcp:"List name to scope name resolution"`
}

// CreateTaskParams for creating a single task.
type CreateTaskParams struct {
	ListID              string   `json:"listId,omitempty" mcp:"Destination list ID"`
	ListName            string   `json:"listName,omitempty" mcp:"Destination list name (resolved when no ID is given)"`
	Name                string   `json:"name" mcp:"Task name (required)"`
	Description         string   `json:"description,omitempty" mcp:"Plain-text description"`
	MarkdownDescription string   `json:"markdownDescription,omitempty" mcp:"Markdown description; overrides description"`
	Status              string   `json:"status,omitempty" mcp:"Status name as configured in the list"`
	Priority            int      `json:"priority,omitempty" mcp:"Priority 1 (urgent) to 4 (low)"`
	ParentID            string   `json:"parentId,omitempty" mcp:"Parent task ID for subtask creation"`
	Tags                []string `json:"tags,omitempty" mcp:"Tag names to attach"`
	Assignees           []string `json:"assignees,omitempty" mcp:"Member IDs, emails, or names to assign"`
	DueDate             string   `json:"dueDate,omitempty" mcp:"Due date (upstream epoch millis)"`
	StartDate           string   `json:"startDate,omitempty" mcp:"Start date (upstream epoch millis)"`
}

// UpdateTaskParams for updating an existing task.
type UpdateTaskParams struct {
	TaskID      string   `json:"taskId,omitempty" mcp:"Task ID to update"`
	TaskName    string   `json:"taskName,omitempty" mcp:"Task name to resolve when no ID is available"`
	ListID      string   `json:"listId,omitempty" mcp:"List ID to scope name resolution"`
	ListName    string   `json:"listName,omitempty" mcp:"List name to scope name resolution"`
	Name        string   `json:"name,omitempty" mcp:"New task name"`
	Description string   `json:"description,omitempty" mcp:"New description"`
	Status      string   `json:"status,omitempty" mcp:"New status"`
	Priority    int      `json:"priority,omitempty" mcp:"New priority 1-4"`
	Assignees   []string `json:"assignees,omitempty" mcp:"Replacement assignee references"`
}

// MoveTaskParams for moving a task to another list.
type MoveTaskParams struct {
	TaskID         string `json:"taskId,omitempty" mcp:"Task ID to move"`
	TaskName       string `json:"taskName,omitempty" mcp:"Task name to resolve when no ID is available"`
	SourceListID   string `json:"sourceListId,omitempty" mcp:"List ID to scope name resolution"`
	SourceListName string `json:"sourceListName,omitempty" mcp:"List name to scope name resolution"`
	TargetListID   string `json:"targetListId,omitempty" mcp:"Destination list ID"`
	TargetListName string `json:"targetListName,omitempty" mcp:"Destination list name"`
}

// DeleteTaskParams for deleting a task.
type DeleteTaskParams struct {
	TaskID   string `json:"taskId,omitempty" mcp:"Task ID to delete"`
	TaskName string `json:"taskName,omitempty" mcp:"Task name to resolve when no ID is available"`
	ListID   string `json:"listId,omitempty" mcp:"List ID to scope name resolution"`
	ListName string `json:"listName,omitempty" mcp:"List name to scope name resolution"`
}

// SearchTasksParams for workspace-wide task search.
type SearchTasksParams struct {
	WorkspaceID  string   `json:"workspaceId,omitempty" mcp:"Workspace ID; defaults to the configured team"`
	Query        string   `json:"query,omitempty" mcp:"Free-text query matched against task names"`
	Statuses     []string `json:"statuses,omitempty" mcp:"Status names to filter on"`
	ListIDs      []string `json:"listIds,omitempty" mcp:"Restrict to these lists"`
	ForceRefresh bool     `json:"forceRefresh,omitempty" mcp:"Bypass the search cache"`
}

// ListMembersParams for listing workspace members.
type ListMembersParams struct {
	WorkspaceID string `json:"workspaceId,omitempty" mcp:"Workspace ID; defaults to the configured team"`
}

// FindMemberParams for fuzzy member resolution.
type FindMemberParams struct {
	Query       string `json:"query" mcp:"Name, email, username, or ID to resolve (required)"`
	WorkspaceID string `json:"workspaceId,omitempty" mcp:"Workspace ID; defaults to the configured team"`
	Limit       int    `json:"limit,omitempty" mcp:"Maximum candidates to return"`
}

// TagParams for adding or removing a task tag.
type TagParams struct {
	TaskID   string `json:"taskId,omitempty" mcp:"Task ID"`
	TaskName string `json:"taskName,omitempty" mcp:"Task name to resolve when no ID is available"`
	ListID   string `json:"listId,omitempty" mcp:"List ID to scope name resolution"`
	ListName string `json:"listName,omitempty" mcp:"List name to scope name resolution"`
	TagName  string `json:"tagName" mcp:"Tag name (required)"`
}

// TimeEntryParams for creating a time entry on a task.
type TimeEntryParams struct {
	WorkspaceID string `json:"workspaceId,omitempty" mcp:"Workspace ID; defaults to the configured team"`
	TaskID      string `json:"taskId,omitempty" mcp:"Task ID the entry belongs to"`
	TaskName    string `json:"taskName,omitempty" mcp:"Task name to resolve when no ID is available"`
	ListID      string `json:"listId,omitempty" mcp:"List ID to scope name resolution"`
	ListName    string `json:"listName,omitempty" mcp:"List name to scope name resolution"`
	Description string `json:"description,omitempty" mcp:"Entry description"`
	Start       string `json:"start,omitempty" mcp:"Start time (epoch millis); defaults to now minus duration"`
	DurationMS  int64  `json:"durationMs" mcp:"Entry duration in milliseconds (required)"`
	Billable    bool   `json:"billable,omitempty" mcp:"Mark the entry billable"`
}

// SearchDocumentsParams for the capability-gated document search.
type SearchDocumentsParams struct {
	WorkspaceID string `json:"workspaceId,omitempty" mcp:"Workspace ID; defaults to the configured team"`
	Query       string `json:"query" mcp:"Free-text query matched against document names (required)"`
}

// BulkEntry is one heterogeneous item in a bulk operation. Keys follow the
// upstream conventions; snake_case and camelCase are both accepted.
type BulkEntry map[string]interface{}

// BulkTasksParams for the bulk-* task tools.
type BulkTasksParams struct {
	Entries         []BulkEntry `json:"entries" mcp:"Task entries; each carries its own identifiers/fields (required)"`
	DefaultListID   string      `json:"defaultListId,omitempty" mcp:"List applied to entries without one (create/move)"`
	DefaultListName string      `json:"defaultListName,omitempty" mcp:"List name applied to entries without one"`
	Concurrency     int         `json:"concurrency,omitempty" mcp:"Worker cap for this batch; defaults to the configured limit"`
}

// Response shapes.

// CacheMeta mirrors the directory's staleness metadata for callers.
type CacheMeta struct {
	ScopeID     string `json:"scopeId"`
	LastFetched string `json:"lastFetched"`
	AgeMS       int64  `json:"ageMs"`
	ExpiresAt   string `json:"expiresAt"`
	TTLMS       int64  `json:"ttlMs"`
	Stale       bool   `json:"stale"`
	TotalItems  int    `json:"totalItems"`
}

// HierarchyNode is one node in the rendered workspace tree.
type HierarchyNode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Level    string          `json:"level"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// HierarchyResponse is the workspace tree plus cache metadata per level.
type HierarchyResponse struct {
	Workspaces []HierarchyNode `json:"workspaces"`
	Meta       []CacheMeta     `json:"meta,omitempty"`
}

// TaskResponse wraps one normalized task.
type TaskResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	ListID      string `json:"listId,omitempty"`
	ListName    string `json:"listName,omitempty"`
	URL         string `json:"url,omitempty"`
}

// TaskListResponse wraps a task set.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// MemberCandidate is one ranked member resolution candidate.
type MemberCandidate struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Score       float64  `json:"score"`
	Method      string   `json:"method"`
	Matched     []string `json:"matched,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
}

// MemberListResponse wraps workspace members.
type MemberListResponse struct {
	Members []MemberCandidate `json:"members"`
	Count   int               `json:"count"`
}

// BulkSummaryResponse is the aggregate outcome of a bulk tool call.
type BulkSummaryResponse struct {
	BatchID       string        `json:"batchId"`
	Total         int           `json:"total"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	FirstError    string        `json:"firstError,omitempty"`
	FailedIndices []int         `json:"failedIndices,omitempty"`
	Preview       []BulkOutcome `json:"preview"`
	Truncated     bool          `json:"truncated"`
	Guidance      string        `json:"guidance,omitempty"`
}

// BulkOutcome is one item's result inside a BulkSummaryResponse.
type BulkOutcome struct {
	Index   int         `json:"index"`
	Status  string      `json:"status"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DocumentResponse is one matched document.
type DocumentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// DocumentListResponse wraps matched documents.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
	Fallback  bool               `json:"fallback,omitempty"`
}

// OKResponse is a minimal acknowledgement for mutations without a payload.
type OKResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
