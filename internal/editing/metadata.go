package editing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// VideoMetadata is captured once when a video is loaded and never changes;
// loading another video replaces it wholesale.
type VideoMetadata struct {
	DurationSeconds  float64   `json:"duration"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	SizeBytes        int64     `json:"size"`
	MimeType         string    `json:"type"`
	OriginalFilename string    `json:"name"`
	LastModified     time.Time `json:"last_modified"`
}

// Validate checks the fields an edit session relies on.
func (m VideoMetadata) Validate() error {
	if math.IsNaN(m.DurationSeconds) || math.IsInf(m.DurationSeconds, 0) || m.DurationSeconds < 0 {
		return errors.New("duration must be a finite, non-negative number of seconds")
	}
	if m.Width < 0 || m.Height < 0 {
		return errors.New("dimensions must not be negative")
	}
	if m.SizeBytes < 0 {
		return errors.New("size must not be negative")
	}
	return nil
}

// Resolution renders WIDTHxHEIGHT, or empty when unknown.
func (m VideoMetadata) Resolution() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}
