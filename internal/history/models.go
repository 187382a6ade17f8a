// Package history records every export attempt of the session so the UI can
// list what was produced, what degraded and what failed.
package history

import (
	"time"

	"github.com/videocraft/videocraft-core/internal/export"
)

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Entry is one export attempt.
type Entry struct {
	ID               string     `json:"id"`
	Kind             string     `json:"kind"`
	VideoFilename    string     `json:"video_filename"`
	Quality          string     `json:"quality,omitempty"`
	UseProcessingAPI bool       `json:"use_processing_api"`
	Status           string     `json:"status"`
	Strategy         string     `json:"strategy,omitempty"`
	FileName         string     `json:"file_name,omitempty"`
	Path             string     `json:"path,omitempty"`
	Degraded         bool       `json:"degraded"`
	AppliedEditing   bool       `json:"applied_editing"`
	Reason           string     `json:"reason,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// NewEntry describes an export that is about to start.
func NewEntry(req export.Request, videoFilename string, at time.Time) *Entry {
	return &Entry{
		ID:               req.ID,
		Kind:             string(req.Kind),
		VideoFilename:    videoFilename,
		Quality:          string(req.Options.Quality),
		UseProcessingAPI: req.Options.UseProcessingAPI,
		Status:           StatusRunning,
		StartedAt:        at,
	}
}

// Apply copies the outcome of res onto e.
func (e *Entry) Apply(res export.Result, at time.Time) {
	e.Status = StatusFailed
	if res.OK {
		e.Status = StatusSucceeded
	}
	e.Strategy = res.Strategy
	e.FileName = res.FileName
	e.Path = res.Path
	e.Degraded = res.Degraded
	e.AppliedEditing = res.AppliedEditing
	e.Reason = res.Reason
	e.FinishedAt = &at
}
