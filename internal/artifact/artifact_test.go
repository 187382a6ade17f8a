package artifact

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseSpan(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantFirst int64
		wantLast  int64
		wantNil   bool
		wantErr   error
	}{
		{"empty header", "", 1000, 0, 0, true, nil},
		{"whole file", "bytes=0-999", 1000, 0, 999, false, nil},
		{"open ended", "bytes=500-", 1000, 500, 999, false, nil},
		{"suffix", "bytes=-500", 1000, 500, 999, false, nil},
		{"one byte", "bytes=0-0", 1000, 0, 0, false, nil},
		{"end clamped", "bytes=0-2000", 1000, 0, 999, false, nil},
		{"suffix longer than file", "bytes=-2000", 500, 0, 499, false, nil},
		{"first of several", "bytes=0-99, 200-299", 1000, 0, 99, false, nil},

		{"start at size", "bytes=1000-", 1000, 0, 0, false, ErrRangeNotSatisfiable},
		{"inverted", "bytes=200-100", 1000, 0, 0, false, ErrRangeNotSatisfiable},
		{"no unit", "0-100", 1000, 0, 0, false, ErrMalformedRange},
		{"wrong unit", "items=0-100", 1000, 0, 0, false, ErrMalformedRange},
		{"no dash", "bytes=100", 1000, 0, 0, false, ErrMalformedRange},
		{"bad end", "bytes=0-x", 1000, 0, 0, false, ErrMalformedRange},
		{"zero suffix", "bytes=-0", 1000, 0, 0, false, ErrMalformedRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpan(tt.header, tt.size)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseSpan() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpan() unexpected error: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseSpan() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.First != tt.wantFirst || got.Last != tt.wantLast {
				t.Errorf("ParseSpan() = %+v, want {%d %d}", got, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestSpan_Header(t *testing.T) {
	s := Span{First: 500, Last: 999}
	if s.Len() != 500 {
		t.Errorf("Len() = %d, want 500", s.Len())
	}
	if got := s.Header(1000); got != "bytes 500-999/1000" {
		t.Errorf("Header() = %q", got)
	}
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "exported_clip.mp4"), []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}
	return NewServer(dir, slog.New(slog.NewTextHandler(io.Discard, nil))), dir
}

func TestServe_WholeFile(t *testing.T) {
	srv, dir := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	if err := srv.Serve(rr, req, filepath.Join(dir, "exported_clip.mp4")); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if rr.Code != http.StatusOK || rr.Body.String() != "0123456789" {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != "attachment; filename=exported_clip.mp4" {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestServe_Range(t *testing.T) {
	srv, dir := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Range", "bytes=2-5")
	rr := httptest.NewRecorder()

	if err := srv.Serve(rr, req, filepath.Join(dir, "exported_clip.mp4")); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if rr.Code != http.StatusPartialContent || rr.Body.String() != "2345" {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", got)
	}
}

func TestServe_Unsatisfiable(t *testing.T) {
	srv, dir := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Range", "bytes=50-")
	rr := httptest.NewRecorder()

	if err := srv.Serve(rr, req, filepath.Join(dir, "exported_clip.mp4")); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if rr.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Range"); got != "bytes */10" {
		t.Errorf("Content-Range = %q", got)
	}
}

func TestServe_MissingFile(t *testing.T) {
	srv, dir := newTestServer(t)
	rr := httptest.NewRecorder()

	if err := srv.Serve(rr, httptest.NewRequest(http.MethodGet, "/", nil), filepath.Join(dir, "gone.pdf")); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestResolve_RejectsOutsideRoot(t *testing.T) {
	srv, dir := newTestServer(t)

	for _, p := range []string{
		dir,
		filepath.Dir(dir),
		filepath.Join(dir, "..", "other", "x.pdf"),
		"/etc/passwd",
	} {
		if _, err := srv.Resolve(p); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Resolve(%q) error = %v, want ErrOutsideRoot", p, err)
		}
	}
	if _, err := srv.Resolve(filepath.Join(dir, "exported_clip.mp4")); err != nil {
		t.Errorf("Resolve(inside) error = %v", err)
	}
}
