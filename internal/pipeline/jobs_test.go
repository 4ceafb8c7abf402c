package pipeline

import (
	"testing"
	"time"
)

func TestJobSnapshot(t *testing.T) {
	job := &Job{
		ID:       "j1",
		Filename: "page.html",
		Status:   StatusQueued,
		Phase:    "queued",
	}
	job.AddError("first problem")

	snap := job.Snapshot()
	if snap.ID != "j1" || snap.Filename != "page.html" {
		t.Errorf("snapshot identity wrong: %+v", snap)
	}
	if snap.Status != StatusQueued || snap.Phase != "queued" {
		t.Errorf("snapshot state wrong: %+v", snap)
	}
	if len(snap.Errors) != 1 || snap.Errors[0] != "first problem" {
		t.Errorf("snapshot errors wrong: %+v", snap.Errors)
	}
}

func TestJobSnapshot_ErrorsNeverNil(t *testing.T) {
	job := &Job{ID: "j2"}
	if snap := job.Snapshot(); snap.Errors == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestJob_SetStatusUpdatesTimestamp(t *testing.T) {
	job := &Job{ID: "j3"}
	before := job.UpdatedAt
	job.SetStatus(StatusParsing, "parsing")
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance")
	}
	if job.Status != StatusParsing || job.Phase != "parsing" {
		t.Errorf("unexpected state: %s / %s", job.Status, job.Phase)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "abc", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("abc"); got != job {
		t.Error("expected stored job back")
	}
	if got := store.Get("missing"); got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

func TestJobStore_CleanupEvictsExpired(t *testing.T) {
	store := NewJobStore(time.Minute)
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now()}
	stale := &Job{ID: "stale", UpdatedAt: time.Now().Add(-2 * time.Minute)}
	store.Put(fresh)
	store.Put(stale)

	store.Cleanup()

	if store.Get("fresh") == nil {
		t.Error("fresh job was evicted")
	}
	if store.Get("stale") != nil {
		t.Error("stale job survived cleanup")
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26-char ULID, got %d: %q", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate id: %q", id)
		}
		seen[id] = true
	}
}
