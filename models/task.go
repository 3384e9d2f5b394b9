package models

import (
	"regexp"

	"github.com/taskbridge/clickup-mcp/internal/resolve"
	"github.com/taskbridge/clickup-mcp/internal/upstream"
)

// TaskRecord is the normalized shape produced from heterogeneous upstream
// task payloads (snake_case keys, nested list objects, status wrappers).
type TaskRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
	ListID      string `json:"listId,omitempty"`
	ListName    string `json:"listName,omitempty"`
	ListURL     string `json:"listUrl,omitempty"`
	URL         string `json:"url,omitempty"`
}

// standardTaskIDPattern matches native upstream task ids. Anything else
// (custom ids, names) must go through resolution.
var standardTaskIDPattern = regexp.MustCompile(`^[0-9a-z]{7,12}$`)

// IsStandardTaskID reports whether s looks like a native upstream task id.
func IsStandardTaskID(s string) bool {
	return standardTaskIDPattern.MatchString(s)
}

// NormalizeTask converts a raw task payload into a TaskRecord. It never
// panics; a payload without an identifier yields ok=false.
func NormalizeTask(raw upstream.Record) (TaskRecord, bool) {
	if raw == nil {
		return TaskRecord{}, false
	}
	id := raw.Str("id", "task_id", "taskId")
	if id == "" {
		return TaskRecord{}, false
	}

	rec := TaskRecord{
		ID:          id,
		Name:        raw.Str("name", "title"),
		Description: raw.Str("description", "text_content", "textContent"),
		UpdatedAt:   raw.Str("date_updated", "dateUpdated", "updated_at", "updatedAt"),
		URL:         raw.Str("url"),
	}

	// Status arrives either as a bare string or wrapped: {"status": {"status": "open"}}.
	if status := raw.Str("status"); status != "" {
		rec.Status = status
	} else if wrapped := raw.Sub("status"); wrapped != nil {
		rec.Status = wrapped.Str("status", "name")
	}

	if list := raw.Sub("list"); list != nil {
		rec.ListID = list.Str("id", "list_id", "listId")
		rec.ListName = list.Str("name")
		rec.ListURL = list.Str("url")
	} else {
		rec.ListID = raw.Str("list_id", "listId")
		rec.ListName = raw.Str("list_name", "listName")
	}

	return rec, true
}

// Entry converts the record into a resolver entry. The task id and name are
// exact-match identifiers; name, description, and list name participate in
// the fuzzy tier with descending weights.
func (t TaskRecord) Entry() resolve.Entry {
	identifiers := resolve.DedupeIdentifiers([]resolve.Identifier{
		resolve.NewIdentifier(t.ID, "id"),
		resolve.NewIdentifier(t.Name, "name"),
	})
	return resolve.Entry{
		ID:          t.ID,
		DisplayName: t.Name,
		Identifiers: identifiers,
		Fuzzy: []resolve.WeightedField{
			{Name: "name", Value: t.Name, Weight: 1.0},
			{Name: "description", Value: t.Description, Weight: 0.8},
			{Name: "list", Value: t.ListName, Weight: 0.6},
		},
	}
}
