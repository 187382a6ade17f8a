package artifact

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedRange      = errors.New("malformed Range header")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

// Span is an inclusive byte span of an artifact.
type Span struct {
	First int64
	Last  int64
}

// Len is the number of bytes in the span.
func (s Span) Len() int64 {
	return s.Last - s.First + 1
}

// Header renders the Content-Range value for an artifact of size bytes.
func (s Span) Header(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", s.First, s.Last, size)
}

// ParseSpan reads a single-range "bytes=" header against an artifact of size
// bytes. An empty header yields nil. Only the first of several ranges is
// honored; players resuming a download never ask for more.
func ParseSpan(header string, size int64) (*Span, error) {
	if header == "" {
		return nil, nil
	}
	ranges, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, ErrMalformedRange
	}
	if first, _, found := strings.Cut(ranges, ","); found {
		ranges = first
	}
	from, to, ok := strings.Cut(strings.TrimSpace(ranges), "-")
	if !ok {
		return nil, ErrMalformedRange
	}

	var s Span
	if from == "" {
		// Suffix form: the last n bytes.
		n, err := strconv.ParseInt(to, 10, 64)
		if err != nil || n <= 0 {
			return nil, ErrMalformedRange
		}
		s = Span{First: max(size-n, 0), Last: size - 1}
	} else {
		first, err := strconv.ParseInt(from, 10, 64)
		if err != nil || first < 0 {
			return nil, ErrMalformedRange
		}
		last := size - 1
		if to != "" {
			if last, err = strconv.ParseInt(to, 10, 64); err != nil {
				return nil, ErrMalformedRange
			}
		}
		s = Span{First: first, Last: last}
	}

	if s.First > s.Last || s.First >= size {
		return nil, ErrRangeNotSatisfiable
	}
	s.Last = min(s.Last, size-1)
	return &s, nil
}
