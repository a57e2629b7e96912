package storage_test

import (
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/erauner/Software-planning-mcp/internal/storage"
)

func Test_NowISO_Format(t *testing.T) {
	t.Parallel()

	got := storage.NowISO()

	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)
	if !pattern.MatchString(got) {
		t.Errorf("NowISO() = %q, want millisecond ISO 8601 with Z suffix", got)
	}

	parsed, err := time.Parse("2006-01-02T15:04:05.000Z", got)
	if err != nil {
		t.Fatalf("NowISO() output does not parse: %v", err)
	}
	if d := time.Since(parsed); d < 0 || d > time.Minute {
		t.Errorf("NowISO() is %v away from now", d)
	}
}

func Test_NowISO_Sortable(t *testing.T) {
	t.Parallel()

	// Lexicographic order must agree with chronological order, since goal
	// ordering compares the strings directly.
	earlier := storage.NowISO()
	time.Sleep(2 * time.Millisecond)
	later := storage.NowISO()
	if earlier > later {
		t.Errorf("timestamps not lexicographically sortable: %q > %q", earlier, later)
	}
}

func Test_Goal_JSONShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(storage.Goal{
		ID:          "g1",
		Description: "desc",
		CreatedAt:   "2026-01-01T00:00:00.000Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"id", "description", "createdAt"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("serialized goal missing %q", key)
		}
	}
	// Identity tags are omitted when empty (file mode).
	for _, key := range []string{"repository", "branch"} {
		if _, ok := fields[key]; ok {
			t.Errorf("empty %q serialized, want omitted", key)
		}
	}
}

func Test_Todo_JSONShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(storage.Todo{
		ID:        "t1",
		Title:     "title",
		CreatedAt: "2026-01-01T00:00:00.000Z",
		UpdatedAt: "2026-01-01T00:00:00.000Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}

	// isComplete must serialize even when false.
	if _, ok := fields["isComplete"]; !ok {
		t.Error("serialized todo missing isComplete")
	}
	// An empty code example is omitted.
	if _, ok := fields["codeExample"]; ok {
		t.Error("empty codeExample serialized, want omitted")
	}
}

func Test_IsNotFound_WrappedError(t *testing.T) {
	t.Parallel()

	inner := &storage.NotFoundError{Kind: "todo", ID: "t1"}
	wrapped := fmt.Errorf("while updating: %w", inner)
	if !storage.IsNotFound(wrapped) {
		t.Error("IsNotFound = false for wrapped NotFoundError")
	}
}
