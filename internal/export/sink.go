package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sink receives finished artifacts.
type Sink interface {
	// Save stores the contents of r under name and returns where it went.
	// Nothing is visible under name unless the whole stream was stored, and
	// an existing artifact is never replaced.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// DirSink saves artifacts as files in one directory.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed and validates it.
func NewDirSink(dir string) (*DirSink, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := ValidateOutputDir(abs); err != nil {
		return nil, err
	}
	return &DirSink{dir: abs}, nil
}

// Dir is the absolute output directory.
func (s *DirSink) Dir() string {
	return s.dir
}

func (s *DirSink) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	name = SafeFileName(name)

	tmp, err := os.CreateTemp(s.dir, ".videocraft-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	final, err := s.place(tmpPath, name)
	if err != nil {
		return "", err
	}
	os.Remove(tmpPath)
	committed = true
	return final, nil
}

const maxNameAttempts = 1000

// place links tmpPath under name, or under "stem (n).ext" when name is
// already taken. Existing artifacts are never replaced.
func (s *DirSink) place(tmpPath, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		final := filepath.Join(s.dir, candidate)
		err := os.Link(tmpPath, final)
		if err == nil {
			return final, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("move %s into place: %w", name, err)
		}
	}
	return "", fmt.Errorf("move %s into place: no free name after %d attempts", name, maxNameAttempts)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
