// Package session hosts the single editing session of the console: the
// loaded video, its editing state, and the exports run against it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/history"
	"github.com/videocraft/videocraft-core/internal/logging"
	"github.com/videocraft/videocraft-core/internal/videoref"
)

// ErrNoVideo is returned by edits and exports before a video is loaded.
var ErrNoVideo = errors.New("no video loaded")

// ErrNoArtifact is returned for exports that did not save a file.
var ErrNoArtifact = errors.New("export has no saved file")

// Exporter runs one export to completion.
type Exporter interface {
	Export(ctx context.Context, req export.Request, obs export.Observer) export.Result
}

// Video is the loaded video: its immutable metadata and how to reach it.
type Video struct {
	Metadata editing.VideoMetadata `json:"metadata"`
	Ref      videoref.Ref          `json:"-"`
}

// Filename is the name backend calls use for the video.
func (v Video) Filename() string {
	return videoref.Resolve(v.Ref)
}

// Session owns the video and editing state. All methods are safe for
// concurrent use; exports receive a copy of the state taken when they start.
type Session struct {
	mu    sync.RWMutex
	video *Video
	state editing.State

	exporter Exporter
	history  history.Repository
	logger   *slog.Logger
	now      func() time.Time
}

func New(exporter Exporter, repo history.Repository, logger *slog.Logger) *Session {
	return &Session{
		exporter: exporter,
		history:  repo,
		logger:   logging.WithComponent(logger, "session"),
		now:      time.Now,
	}
}

// Load replaces the current video and resets the editing state.
func (s *Session) Load(meta editing.VideoMetadata, ref videoref.Ref) error {
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("invalid video metadata: %w", err)
	}

	s.mu.Lock()
	s.video = &Video{Metadata: meta, Ref: ref}
	s.state = editing.NewState(meta.DurationSeconds)
	s.mu.Unlock()

	s.logger.Info("video loaded",
		"name", meta.OriginalFilename,
		"duration", meta.DurationSeconds,
		"ref_kind", ref.Kind().String(),
	)
	return nil
}

// Clear unloads the video.
func (s *Session) Clear() {
	s.mu.Lock()
	s.video = nil
	s.state = editing.State{}
	s.mu.Unlock()
}

// Video returns the loaded video, if any.
func (s *Session) Video() (Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.video == nil {
		return Video{}, false
	}
	return *s.video, true
}

// State returns the current editing state.
func (s *Session) State() (editing.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.video == nil {
		return editing.State{}, ErrNoVideo
	}
	return s.state, nil
}

// Update applies fn to the current state and stores the result.
func (s *Session) Update(fn func(editing.State) editing.State) (editing.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.video == nil {
		return editing.State{}, ErrNoVideo
	}
	s.state = fn(s.state)
	return s.state, nil
}

// Request captures an export of the current video and state. Later edits do
// not affect the returned request.
func (s *Session) Request(kind export.Kind, opts export.Options) (export.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.video == nil {
		return export.Request{}, ErrNoVideo
	}
	return export.Request{
		ID:      uuid.NewString(),
		Kind:    kind,
		Ref:     s.video.Ref,
		State:   s.state,
		Options: opts,
	}, nil
}

// Run executes req and records it in the history. History failures are
// logged and never change the result.
func (s *Session) Run(ctx context.Context, req export.Request, obs export.Observer) export.Result {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Options.Quality == "" {
		req.Options.Quality = export.DefaultQuality
	}
	logger := logging.WithExportID(s.logger, req.ID)

	var entry *history.Entry
	if s.history != nil {
		entry = history.NewEntry(req, videoref.Resolve(req.Ref), s.now())
		if err := s.history.Start(ctx, entry); err != nil {
			logger.Warn("failed to record export start", "error", err)
			entry = nil
		}
	}

	var inner export.Observer
	if obs != nil {
		inner = heldDone{obs}
	}
	res := s.exporter.Export(ctx, req, inner)

	if entry != nil {
		entry.Apply(res, s.now())
		// The export context may already be done; the row still needs closing.
		if err := s.history.Finish(context.WithoutCancel(ctx), entry); err != nil {
			logger.Warn("failed to record export result", "error", err)
		}
	}
	if obs != nil {
		obs.Done(res)
	}
	return res
}

// heldDone forwards progress and drops Done, so Run can deliver the result
// once the history row is final.
type heldDone struct {
	next export.Observer
}

func (h heldDone) Progress(p export.Progress) { h.next.Progress(p) }
func (heldDone) Done(export.Result)           {}

// Export snapshots the session and runs the export.
func (s *Session) Export(ctx context.Context, kind export.Kind, opts export.Options, obs export.Observer) (export.Result, error) {
	req, err := s.Request(kind, opts)
	if err != nil {
		return export.Result{}, err
	}
	return s.Run(ctx, req, obs), nil
}

// History lists recent exports, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]*history.Entry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}

// Artifact returns the history entry of a successful export by ID.
func (s *Session) Artifact(ctx context.Context, id string) (*history.Entry, error) {
	if s.history == nil {
		return nil, ErrNoArtifact
	}
	e, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.Status != history.StatusSucceeded || e.Path == "" {
		return nil, ErrNoArtifact
	}
	return e, nil
}
