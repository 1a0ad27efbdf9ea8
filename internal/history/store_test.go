package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"clipforge/internal/engine"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if store.Path() != path {
		t.Fatalf("path = %s", store.Path())
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen after migrations: %v", err)
	}
	_ = second.Close()
}

func TestRunRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := Run{
		ID:          "run-1",
		Mode:        "merge",
		OutputDir:   "/out",
		Total:       3,
		Concurrency: 2,
		StartedAt:   time.Now(),
	}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordJob(ctx, JobRecord{RunID: "run-1", Index: 0, Status: JobCompleted, OutputPath: "/out/a.mp4"}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordJob(ctx, JobRecord{RunID: "run-1", Index: 1, Status: JobFailed, Error: "transcoder exited with status 1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, "run-1", 2, 1, 4.25); err != nil {
		t.Fatal(err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.Mode != "merge" || got.Total != 3 || got.Done != 2 || got.Failed != 1 {
		t.Fatalf("run = %+v", got)
	}
	if !got.Finished() {
		t.Fatal("run not marked finished")
	}
	if got.ElapsedSeconds != 4.25 {
		t.Fatalf("elapsed = %v", got.ElapsedSeconds)
	}

	jobs, err := store.RunJobs(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	if jobs[0].Status != JobCompleted || jobs[0].OutputPath != "/out/a.mp4" {
		t.Fatalf("job 0 = %+v", jobs[0])
	}
	if jobs[1].Status != JobFailed || jobs[1].Error == "" {
		t.Fatalf("job 1 = %+v", jobs[1])
	}
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := Run{
			ID:        string(rune('a' + i)),
			Mode:      "stitch",
			OutputDir: "/out",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.BeginRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.RecentRuns(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	if runs[0].ID != "e" || runs[2].ID != "c" {
		t.Fatalf("order = %s..%s, want newest first", runs[0].ID, runs[2].ID)
	}
}

func TestRecorderMirrorsEventStream(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	recorder := NewRecorder(store, nil, "resize", "/out")

	stream := []engine.Event{
		{Type: engine.EventStart, Total: 2, Concurrency: 2},
		{Type: engine.EventTaskStart, Index: 0},
		{Type: engine.EventLog, Index: 0, Message: "frame 1"},
		{Type: engine.EventProgress, Index: 0, Done: 1, OutputPath: "/out/a.mp4"},
		{Type: engine.EventTaskStart, Index: 1},
		{Type: engine.EventFailed, Index: 1, Done: 1, Failed: 1, Err: errors.New("transcoder exited with status 1")},
		{Type: engine.EventFinish, Done: 1, Failed: 1, Total: 2, ElapsedSeconds: 2.5},
	}
	for _, ev := range stream {
		recorder.Observe(ctx, ev)
	}

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != recorder.RunID() {
		t.Fatalf("run id = %s, want %s", run.ID, recorder.RunID())
	}
	if run.Done != 1 || run.Failed != 1 || run.Total != 2 {
		t.Fatalf("counters = %+v", run)
	}

	jobs, err := store.RunJobs(ctx, recorder.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2 (log events must not persist)", len(jobs))
	}
}
