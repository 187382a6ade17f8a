package history

import (
	"context"
	"testing"
	"time"

	"github.com/videocraft/videocraft-core/internal/db"
	"github.com/videocraft/videocraft-core/internal/export"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	database, err := db.NewMemory(nil)
	if err != nil {
		t.Fatalf("db.NewMemory() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func TestRepository_StartFinishGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	started := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	req := export.Request{ID: "exp-1", Kind: export.KindVideo, Options: export.Options{Quality: export.Quality1080p}}
	entry := NewEntry(req, "clip.mp4", started)
	if err := repo.Start(ctx, entry); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	running, err := repo.Get(ctx, "exp-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if running.Status != StatusRunning || running.FinishedAt != nil || running.Quality != "1080p" {
		t.Fatalf("running entry = %+v", running)
	}

	entry.Apply(export.Result{
		OK:             true,
		FileName:       "unedited_clip.mp4",
		Path:           "/tmp/unedited_clip.mp4",
		Degraded:       true,
		AppliedEditing: false,
		Strategy:       export.StrategyUneditedSource,
	}, started.Add(2*time.Second))
	if err := repo.Finish(ctx, entry); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	got, err := repo.Get(ctx, "exp-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusSucceeded || !got.Degraded || got.AppliedEditing {
		t.Fatalf("finished entry = %+v", got)
	}
	if got.Strategy != export.StrategyUneditedSource || got.FileName != "unedited_clip.mp4" {
		t.Fatalf("finished entry = %+v", got)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(started.Add(2*time.Second)) {
		t.Fatalf("finished_at = %v", got.FinishedAt)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("started_at = %v", got.StartedAt)
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo := setupTestRepo(t)

	got, err := repo.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %+v, %v", got, err)
	}
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		e := NewEntry(export.Request{ID: id, Kind: export.KindData}, "clip.mp4", base.Add(time.Duration(i)*time.Minute))
		if err := repo.Start(ctx, e); err != nil {
			t.Fatalf("Start(%s) error = %v", id, err)
		}
	}

	entries, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "c" || entries[1].ID != "b" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestEntry_ApplyFailure(t *testing.T) {
	e := NewEntry(export.Request{ID: "x", Kind: export.KindData}, "clip.mp4", time.Now())
	e.Apply(export.Result{OK: false, Reason: "server down"}, time.Now())

	if e.Status != StatusFailed || e.Reason != "server down" || e.FinishedAt == nil {
		t.Fatalf("entry = %+v", e)
	}
}
