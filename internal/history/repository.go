package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	Start(ctx context.Context, e *Entry) error
	Finish(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, limit int) ([]*Entry, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectEntry = `
	SELECT id, kind, video_filename, quality, use_processing_api, status, strategy,
	       file_name, path, degraded, applied_editing, reason, started_at, finished_at
	FROM exports`

func (r *SQLiteRepository) Start(ctx context.Context, e *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exports (id, kind, video_filename, quality, use_processing_api, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Kind, e.VideoFilename, nullString(e.Quality), boolToInt(e.UseProcessingAPI),
		e.Status, e.StartedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) Finish(ctx context.Context, e *Entry) error {
	var finishedAt sql.NullString
	if e.FinishedAt != nil {
		finishedAt = nullString(e.FinishedAt.UTC().Format(time.RFC3339Nano))
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE exports
		SET status = ?, strategy = ?, file_name = ?, path = ?, degraded = ?,
		    applied_editing = ?, reason = ?, finished_at = ?
		WHERE id = ?
	`, e.Status, nullString(e.Strategy), nullString(e.FileName), nullString(e.Path),
		boolToInt(e.Degraded), boolToInt(e.AppliedEditing), nullString(e.Reason), finishedAt, e.ID)
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Entry, error) {
	rows, err := r.db.QueryContext(ctx, selectEntry+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

// List returns the most recent entries first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, selectEntry+" ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var e Entry
		var quality, strategy, fileName, path, reason, finishedAt sql.NullString
		var useProcessing, degraded, applied int
		var startedAt string

		if err := rows.Scan(&e.ID, &e.Kind, &e.VideoFilename, &quality, &useProcessing, &e.Status, &strategy,
			&fileName, &path, &degraded, &applied, &reason, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		e.Quality = quality.String
		e.UseProcessingAPI = useProcessing == 1
		e.Strategy = strategy.String
		e.FileName = fileName.String
		e.Path = path.String
		e.Degraded = degraded == 1
		e.AppliedEditing = applied == 1
		e.Reason = reason.String
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
			if err == nil {
				e.FinishedAt = &t
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
