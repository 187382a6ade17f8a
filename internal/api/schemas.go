package api

import (
	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/history"
	"github.com/videocraft/videocraft-core/internal/session"
	"github.com/videocraft/videocraft-core/internal/timecode"
	"github.com/videocraft/videocraft-core/internal/videoref"
)

type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	UptimeS     int64  `json:"uptime_s"`
	VideoLoaded bool   `json:"video_loaded"`
	// Backend is the cached backend probe, absent when none is configured.
	Backend *backend.Health `json:"backend,omitempty"`
}

// LoadVideoRequest loads a video into the session. Ref is a server filename,
// a blob: handle or a URL; Names carry the filename fields the UI knows.
type LoadVideoRequest struct {
	Ref      string                `json:"ref"`
	Names    videoref.Names        `json:"names"`
	Metadata editing.VideoMetadata `json:"metadata"`
}

type VideoResponse struct {
	Filename    string                `json:"filename"`
	RefKind     string                `json:"ref_kind"`
	Placeholder bool                  `json:"placeholder"`
	Resolution  string                `json:"resolution,omitempty"`
	Duration    string                `json:"duration_display"`
	Metadata    editing.VideoMetadata `json:"metadata"`
}

type EditingResponse struct {
	editing.Data
	TrimEndDisplay string            `json:"trimEndDisplay"`
	Segments       []editing.Segment `json:"segments"`
	Stats          editing.Stats     `json:"stats"`
}

// TrimRequest sets the trim window. Times are seconds.
type TrimRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// CutRequest adds a cut at Time seconds, or at Timecode ("M:SS") when set.
type CutRequest struct {
	Time     float64 `json:"time"`
	Timecode string  `json:"timecode,omitempty"`
}

type FiltersRequest struct {
	Filters []editing.Filter `json:"filters"`
}

type ExportOptionsRequest struct {
	Quality          string  `json:"quality,omitempty"`
	UseProcessingAPI bool    `json:"use_processing_api,omitempty"`
	FrameRate        float64 `json:"frame_rate,omitempty"`
}

type ExportsResponse struct {
	Exports []*history.Entry `json:"exports"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func VideoToResponse(v session.Video) VideoResponse {
	name := v.Filename()
	return VideoResponse{
		Filename:    name,
		RefKind:     v.Ref.Kind().String(),
		Placeholder: videoref.IsPlaceholder(name),
		Resolution:  v.Metadata.Resolution(),
		Duration:    timecode.FormatTime(v.Metadata.DurationSeconds),
		Metadata:    v.Metadata,
	}
}

func StateToResponse(s editing.State) EditingResponse {
	segments := s.Segments()
	if segments == nil {
		segments = []editing.Segment{}
	}
	return EditingResponse{
		Data:           s.Data(),
		TrimEndDisplay: timecode.FormatTime(s.EffectiveTrimEnd()),
		Segments:       segments,
		Stats:          s.Stats(),
	}
}

func (r ExportOptionsRequest) options() (export.Options, error) {
	quality, err := export.ParseQuality(r.Quality)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Quality:          quality,
		UseProcessingAPI: r.UseProcessingAPI,
		FrameRate:        r.FrameRate,
	}, nil
}
