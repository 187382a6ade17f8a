// Package artifact serves saved exports back to the editing UI, with byte
// ranges so exported videos can be previewed and resumed.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the export directory.
var ErrOutsideRoot = errors.New("artifact is outside the export directory")

var contentTypes = map[string]string{
	".edl":  "text/plain; charset=utf-8",
	".json": "application/json",
	".pdf":  "application/pdf",
	".mp4":  "video/mp4",
}

// Server streams artifacts that live under one root directory.
type Server struct {
	root   string
	logger *slog.Logger
}

func NewServer(root string, logger *slog.Logger) *Server {
	return &Server{root: filepath.Clean(root), logger: logger}
}

// Resolve checks that path is a file under the root and returns it cleaned.
func (s *Server) Resolve(path string) (string, error) {
	path = filepath.Clean(path)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return path, nil
}

// Serve writes the artifact at path as an attachment, honoring Range.
// A missing file answers 404; other failures are returned.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, path string) error {
	path, err := s.Resolve(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "artifact not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}
	size := info.Size()

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentType(path))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(path)}))

	span, err := ParseSpan(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrRangeNotSatisfiable):
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case err != nil:
		// A malformed header is ignored and the whole file is sent.
		span = nil
	}

	if span == nil {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			s.copy(w, f, size)
		}
		return nil
	}

	if _, err := f.Seek(span.First, io.SeekStart); err != nil {
		return fmt.Errorf("seek artifact: %w", err)
	}
	h.Set("Content-Length", strconv.FormatInt(span.Len(), 10))
	h.Set("Content-Range", span.Header(size))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method != http.MethodHead {
		s.copy(w, f, span.Len())
	}
	return nil
}

func (s *Server) copy(w io.Writer, f *os.File, n int64) {
	if _, err := io.CopyN(w, f, n); err != nil {
		s.logger.Debug("artifact transfer interrupted", "file", filepath.Base(f.Name()), "error", err)
	}
}

func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
