package models

import (
	"testing"

	"github.com/taskbridge/clickup-mcp/internal/upstream"
)

func TestIsStandardTaskID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"abc1234", true},
		{"86czkq8xp", true},
		{"123456789012", true},
		{"ABC1234", false},   // uppercase is not native
		{"abc123", false},    // too short
		{"CUSTOM-123", false},
		{"", false},
		{"1234567890123", false}, // too long
	}
	for _, tt := range tests {
		if got := IsStandardTaskID(tt.id); got != tt.want {
			t.Errorf("IsStandardTaskID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNormalizeTask(t *testing.T) {
	raw := upstream.Record{
		"id":          "abc1234",
		"name":        "Fix login bug",
		"description": "Session cookie expires early",
		"status":      map[string]interface{}{"status": "in progress"},
		"list": map[string]interface{}{
			"id":   "list-1",
			"name": "Sprint 12",
		},
		"url": "https://app.example.com/t/abc1234",
	}

	task, ok := NormalizeTask(raw)
	if !ok {
		t.Fatal("expected ok")
	}
	if task.ID != "abc1234" || task.Name != "Fix login bug" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Status != "in progress" {
		t.Fatalf("wrapped status not unwrapped: %q", task.Status)
	}
	if task.ListID != "list-1" || task.ListName != "Sprint 12" {
		t.Fatalf("nested list not read: %+v", task)
	}
}

func TestNormalizeTaskSnakeCaseAndFlatStatus(t *testing.T) {
	raw := upstream.Record{
		"task_id":   "def5678",
		"name":      "Ship release",
		"status":    "open",
		"list_id":   "list-2",
		"list_name": "Backlog",
	}

	task, ok := NormalizeTask(raw)
	if !ok {
		t.Fatal("expected ok")
	}
	if task.ID != "def5678" || task.Status != "open" || task.ListID != "list-2" || task.ListName != "Backlog" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestNormalizeTaskWithoutID(t *testing.T) {
	if _, ok := NormalizeTask(upstream.Record{"name": "nameless"}); ok {
		t.Fatal("payload without id must yield ok=false")
	}
	if _, ok := NormalizeTask(nil); ok {
		t.Fatal("nil payload must yield ok=false")
	}
}

func TestTaskEntry(t *testing.T) {
	task := TaskRecord{ID: "abc1234", Name: "Fix login bug", Description: "cookies", ListName: "Sprint 12"}
	entry := task.Entry()
	if entry.ID != task.ID || entry.DisplayName != task.Name {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(entry.Identifiers) != 2 {
		t.Fatalf("expected id+name identifiers, got %+v", entry.Identifiers)
	}
	if len(entry.Fuzzy) != 3 || entry.Fuzzy[0].Weight != 1.0 {
		t.Fatalf("unexpected fuzzy fields: %+v", entry.Fuzzy)
	}
}
