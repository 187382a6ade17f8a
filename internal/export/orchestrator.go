// Package export turns an editing state into a downloadable artifact. Each
// kind is an ordered list of strategies: a primary backend call and, where
// one exists, a single documented fallback. Every export ends in exactly one
// Result; errors never escape as anything else.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/logging"
	"github.com/videocraft/videocraft-core/internal/videoref"
)

// Orchestrator runs exports. It keeps no per-export state and is safe for
// concurrent use.
type Orchestrator struct {
	client backend.Client
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for document dates and names.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(client backend.Client, sink Sink, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		sink:   sink,
		logger: logging.WithComponent(logger, "export"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// job is the per-export context handed to strategies.
type job struct {
	req      Request
	filename string
	now      time.Time
	progress func(percent int, stage string)
}

// Export runs req to completion and returns its result. obs, if not nil,
// sees non-decreasing progress followed by the same result via Done.
func (o *Orchestrator) Export(ctx context.Context, req Request, obs Observer) Result {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Options.Quality == "" {
		req.Options.Quality = DefaultQuality
	}

	logger := logging.WithExportID(o.logger, req.ID).With("kind", string(req.Kind))
	progress := newMonotonic(obs, req.ID, req.Kind)
	progress.report(StageStarted, "started")

	result := o.run(ctx, req, progress, logger)
	result.ID = req.ID
	result.Kind = req.Kind
	if result.OK {
		progress.report(StageDone, "done")
	}
	progress.finish(result)
	return result
}

func (o *Orchestrator) run(ctx context.Context, req Request, progress *monotonic, logger *slog.Logger) Result {
	strategies, err := o.Strategies(req.Kind, req.Options)
	if err != nil {
		return o.failure(logger, req.Kind, err, "")
	}

	filename := videoref.Resolve(req.Ref)
	if req.Kind.usesBackend() && videoref.IsPlaceholder(filename) {
		err := fmt.Errorf("%w: %s reference resolved to %s", ErrReferenceUnresolvable, req.Ref.Kind(), filename)
		return o.failure(logger, req.Kind, err, "")
	}
	logger = logger.With("video_filename", filename)
	progress.report(StageResolved, "resolved "+filename)

	j := &job{
		req:      req,
		filename: filename,
		now:      o.now(),
		progress: progress.report,
	}

	var lastErr error
	var last Strategy
	for i, s := range strategies {
		res, err := s.Run(ctx, j)
		if err == nil {
			res.OK = true
			res.Strategy = s.Name
			res.Degraded = res.Degraded || s.Degraded
			logger.Info("export completed",
				"strategy", s.Name,
				"file", res.FileName,
				"degraded", res.Degraded,
				"applied_editing", res.AppliedEditing,
			)
			return res
		}

		lastErr, last = err, s
		if i+1 < len(strategies) && fallsBack(err) {
			logger.Warn("export strategy failed, falling back",
				"strategy", s.Name,
				"next", strategies[i+1].Name,
				"error", err,
			)
			continue
		}
		break
	}

	return o.failure(logger.With("strategy", last.Name), req.Kind, lastErr, last.Hint)
}

func (o *Orchestrator) failure(logger *slog.Logger, kind Kind, err error, hint string) Result {
	msg := reason(kind, err)
	if hint != "" {
		msg += " " + hint
	}
	logger.Error("export failed", "error", err)
	return Result{OK: false, Reason: msg, Err: err}
}
