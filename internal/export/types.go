package export

import (
	"fmt"
	"strings"

	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/videoref"
)

// Kind selects the artifact an export produces.
type Kind string

const (
	KindVideo    Kind = "video"
	KindReport   Kind = "report"
	KindData     Kind = "data"
	KindAnalysis Kind = "analysis"
	KindEDL      Kind = "edl"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindVideo, KindReport, KindData, KindAnalysis, KindEDL}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown export kind %q", s)
}

// usesBackend reports whether the kind needs a durable server-side file.
func (k Kind) usesBackend() bool {
	return k != KindEDL
}

// Quality is the requested output resolution for video exports.
type Quality string

const (
	Quality480p     Quality = "480p"
	Quality720p     Quality = "720p"
	Quality1080p    Quality = "1080p"
	QualityOriginal Quality = "original"

	DefaultQuality = Quality720p
)

func ParseQuality(s string) (Quality, error) {
	switch q := Quality(strings.ToLower(strings.TrimSpace(s))); q {
	case "":
		return DefaultQuality, nil
	case Quality480p, Quality720p, Quality1080p, QualityOriginal:
		return q, nil
	default:
		return "", fmt.Errorf("unknown quality %q (want 480p, 720p, 1080p or original)", s)
	}
}

// Options tune a single export.
type Options struct {
	Quality Quality `json:"quality,omitempty"`
	// UseProcessingAPI routes video exports through the editing pipeline
	// endpoints instead of /export/video.
	UseProcessingAPI bool `json:"use_processing_api,omitempty"`
	// FrameRate is used for EDL timecodes. Zero means 30.
	FrameRate float64 `json:"frame_rate,omitempty"`
}

// Request is one export action. State is a value, so later edits in the
// session never reach an export already in flight.
type Request struct {
	ID      string
	Kind    Kind
	Ref     videoref.Ref
	State   editing.State
	Options Options
}

// Result is the single terminal outcome of an export, tagged by OK.
type Result struct {
	ID             string `json:"id"`
	Kind           Kind   `json:"kind"`
	OK             bool   `json:"ok"`
	FileName       string `json:"file_name,omitempty"`
	Path           string `json:"path,omitempty"`
	Message        string `json:"message,omitempty"`
	AppliedEditing bool   `json:"applied_editing"`
	Degraded       bool   `json:"degraded"`
	Strategy       string `json:"strategy,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Err            error  `json:"-"`
}
