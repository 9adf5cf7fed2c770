package assistant

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryAppendAndRecent(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	questions := []string{"first?", "second?", "third?"}
	for _, q := range questions {
		if err := h.Append(ctx, "/docs/a.txt", q, "answer to "+q); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := h.Recent(ctx, "/docs/a.txt", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d exchanges, want 3", len(got))
	}
	// Newest first.
	if got[0].Question != "third?" || got[2].Question != "first?" {
		t.Errorf("ordering wrong: got %q .. %q", got[0].Question, got[2].Question)
	}
	if got[0].Answer != "answer to third?" {
		t.Errorf("Answer = %q", got[0].Answer)
	}
	if got[0].AskedAt.IsZero() {
		t.Error("AskedAt should be recorded")
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := h.Append(ctx, "/f", "q", "a"); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := h.Recent(ctx, "/f", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Recent() returned %d exchanges, want 2", len(got))
	}
}

func TestHistoryIsolatesPaths(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	if err := h.Append(ctx, "/a", "about a", "x"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := h.Append(ctx, "/b", "about b", "y"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := h.Recent(ctx, "/a", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].Question != "about a" {
		t.Errorf("Recent(/a) = %+v, want only /a's exchange", got)
	}
}

func TestHistoryRecentEmpty(t *testing.T) {
	h := openTestHistory(t)

	got, err := h.Recent(context.Background(), "/nothing", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() returned %d exchanges, want none", len(got))
	}
}
