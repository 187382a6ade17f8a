package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const defaultProbeTTL = 30 * time.Second

// Backend reachability as reported by Probe.
const (
	StatusHealthy     = "healthy"
	StatusUnreachable = "unreachable"
	StatusOffline     = "offline"
)

// Health is the answer of GET /health on the backend.
type Health struct {
	Status   string    `json:"status"`
	Service  string    `json:"service,omitempty"`
	Message  string    `json:"message,omitempty"`
	Error    string    `json:"error,omitempty"`
	ProbedAt time.Time `json:"probed_at"`
}

// Healthy reports whether the backend answered and called itself healthy.
func (h *Health) Healthy() bool {
	return h != nil && h.Status == StatusHealthy
}

// HealthChecker is implemented by clients that can ask the backend how it is.
type HealthChecker interface {
	Health(ctx context.Context) (*Health, error)
}

func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	dl, err := c.get(ctx, c.baseURL+"/health")
	if err != nil {
		return nil, err
	}
	defer dl.Close()

	var h Health
	if err := json.NewDecoder(io.LimitReader(dl.Body, maxErrorBody)).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode /health response: %w", err)
	}
	return &h, nil
}

func (c *OfflineClient) Health(ctx context.Context) (*Health, error) {
	return nil, c.offline("health")
}

// Probe caches backend health for a short TTL so /health on the local API
// does not hit the backend on every poll.
type Probe struct {
	checker HealthChecker
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	cached *Health
}

// NewProbe wraps checker. A zero ttl uses the default.
func NewProbe(checker HealthChecker, ttl time.Duration, logger *slog.Logger) *Probe {
	if ttl <= 0 {
		ttl = defaultProbeTTL
	}
	return &Probe{
		checker: checker,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the cached health if fresh, otherwise probes again.
func (p *Probe) Get(ctx context.Context) *Health {
	p.mu.RLock()
	if p.cached != nil && p.now().Sub(p.cached.ProbedAt) < p.ttl {
		h := p.cached
		p.mu.RUnlock()
		return h
	}
	p.mu.RUnlock()

	return p.Refresh(ctx)
}

// Peek returns the last probe result without probing, or nil.
func (p *Probe) Peek() *Health {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cached
}

// Refresh probes the backend regardless of cache freshness. Failures are
// cached too, as an unreachable or offline status.
func (p *Probe) Refresh(ctx context.Context) *Health {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.checker.Health(ctx)
	switch {
	case errors.Is(err, ErrOffline):
		h = &Health{Status: StatusOffline}
	case err != nil:
		p.logger.Warn("backend health probe failed", "error", err)
		h = &Health{Status: StatusUnreachable, Error: err.Error()}
	case h.Status == "":
		h.Status = StatusHealthy
	}
	h.ProbedAt = p.now()

	p.cached = h
	return h
}

// Invalidate drops the cached result.
func (p *Probe) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}
