package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "healthy", "service": "VideoCraft Simple Backend"}`))
	}))
	defer server.Close()

	h, err := NewHTTPClient(server.URL, testLogger()).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Healthy() || h.Service != "VideoCraft Simple Backend" {
		t.Errorf("health = %+v", h)
	}
}

type countingChecker struct {
	calls atomic.Int32
	err   error
}

func (c *countingChecker) Health(ctx context.Context) (*Health, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &Health{}, nil
}

func TestProbe_CachesWithinTTL(t *testing.T) {
	checker := &countingChecker{}
	probe := NewProbe(checker, time.Minute, testLogger())
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	probe.now = func() time.Time { return now }

	if h := probe.Get(context.Background()); h.Status != StatusHealthy {
		t.Fatalf("status = %q, want healthy for an empty status", h.Status)
	}
	probe.Get(context.Background())
	if got := checker.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}

	now = now.Add(2 * time.Minute)
	probe.Get(context.Background())
	if got := checker.calls.Load(); got != 2 {
		t.Fatalf("calls after TTL = %d, want 2", got)
	}
}

func TestProbe_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"offline", ErrOffline, StatusOffline},
		{"unreachable", errors.New("connection refused"), StatusUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := NewProbe(&countingChecker{err: tt.err}, 0, testLogger())
			h := probe.Get(context.Background())
			if h.Status != tt.want || h.Healthy() {
				t.Errorf("health = %+v, want status %q", h, tt.want)
			}
			if probe.Peek() != h {
				t.Error("failure result was not cached")
			}
		})
	}
}

func TestProbe_Invalidate(t *testing.T) {
	checker := &countingChecker{}
	probe := NewProbe(checker, time.Hour, testLogger())

	probe.Get(context.Background())
	probe.Invalidate()
	if probe.Peek() != nil {
		t.Fatal("Peek after Invalidate should be nil")
	}
	probe.Get(context.Background())
	if got := checker.calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestOfflineClient_Health(t *testing.T) {
	_, err := NewOfflineClient(testLogger()).Health(context.Background())
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("err = %v, want ErrOffline", err)
	}
}
