package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/timecode"
)

// Export types accepted by the /export/* endpoints.
const (
	ExportTypeVideo    = "video"
	ExportTypeReport   = "report"
	ExportTypeAnalysis = "analysis"
	ExportTypeData     = "data"
)

// ExportRequest is the body of POST /export/{report,analysis,data}.
type ExportRequest struct {
	VideoFilename string       `json:"video_filename"`
	ExportType    string       `json:"export_type"`
	EditingData   editing.Data `json:"editing_data"`
}

// VideoExportRequest is the body of POST /export/video.
type VideoExportRequest struct {
	VideoFilename string       `json:"video_filename"`
	ExportType    string       `json:"export_type"`
	EditingData   editing.Data `json:"editing_data"`
	Quality       string       `json:"quality"`
}

// VideoExportResponse is returned by POST /export/video.
type VideoExportResponse struct {
	Success        bool   `json:"success"`
	DownloadURL    string `json:"download_url"`
	Filename       string `json:"filename"`
	Message        string `json:"message"`
	EditingApplied bool   `json:"editing_applied"`
}

func (r *VideoExportResponse) outcome() (bool, string) { return r.Success, r.Message }

// ProcessRequest is the body of POST /api/video-editing/process.
type ProcessRequest struct {
	VideoFilename  string       `json:"video_filename"`
	EditingData    editing.Data `json:"editing_data"`
	OutputFilename string       `json:"output_filename,omitempty"`
}

// ProcessResponse is returned by POST /api/video-editing/process.
type ProcessResponse struct {
	Success           bool                   `json:"success"`
	OutputFilename    string                 `json:"output_filename"`
	VideoInfo         map[string]interface{} `json:"video_info,omitempty"`
	AppliedOperations map[string]interface{} `json:"applied_operations,omitempty"`
	Error             string                 `json:"error,omitempty"`
}

func (r *ProcessResponse) outcome() (bool, string) { return r.Success, r.Error }

// Recommendation is one AI-derived suggestion in a report payload.
type Recommendation struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ReportData is the structured report payload from POST /export/report.
type ReportData struct {
	VideoName       string           `json:"video_name"`
	ExportDate      string           `json:"export_date"`
	EditingSummary  Summary          `json:"editing_summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// SummaryEntry is one key of the editing summary with its raw JSON value.
type SummaryEntry struct {
	Key   string
	Value json.RawMessage
}

// Summary is the editing_summary object in the order the backend sent it.
type Summary []SummaryEntry

func (s *Summary) UnmarshalJSON(data []byte) error {
	*s = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("editing_summary must be an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("editing_summary %q: %w", key, err)
		}
		*s = append(*s, SummaryEntry{Key: key, Value: value})
	}
	_, err = dec.Token()
	return err
}

func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(e.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(e.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReportExportResponse is returned by POST /export/report.
type ReportExportResponse struct {
	Success    bool        `json:"success"`
	ReportData *ReportData `json:"report_data"`
	Message    string      `json:"message"`
}

func (r *ReportExportResponse) outcome() (bool, string) { return r.Success, r.Message }

// AnalysisVideoInfo is the metrics block of an analysis payload.
type AnalysisVideoInfo struct {
	Duration   json.RawMessage `json:"duration,omitempty"`
	Resolution string          `json:"resolution,omitempty"`
	Format     string          `json:"format,omitempty"`
	FPS        float64         `json:"fps,omitempty"`
}

// DetectedEmotion is one emotion hit in an analysis payload.
type DetectedEmotion struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Timestamp  Seconds `json:"timestamp"`
}

// SceneChange is one scene boundary in an analysis payload.
type SceneChange struct {
	SceneType   string  `json:"scene_type"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
	Timestamp   Seconds `json:"timestamp"`
}

// EmotionAnalysis is the emotion section of an analysis payload.
type EmotionAnalysis struct {
	DetectedEmotions []DetectedEmotion `json:"detected_emotions"`
}

// SceneAnalysis is the scene section of an analysis payload. Some backends
// send the bare list of changes instead of the wrapping object.
type SceneAnalysis struct {
	SceneChanges []SceneChange `json:"scene_changes"`
}

func (a *SceneAnalysis) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &a.SceneChanges)
	}
	type plain SceneAnalysis
	return json.Unmarshal(data, (*plain)(a))
}

// Seconds decodes a timestamp sent either as a number of seconds or as
// "M:SS" text.
type Seconds float64

func (s *Seconds) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = Seconds(timecode.ParseTime(text))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("timestamp must be a number or M:SS text: %w", err)
	}
	*s = Seconds(n)
	return nil
}

// AnalysisResults groups the analysis sections; any of them may be absent.
type AnalysisResults struct {
	VideoInfo       *AnalysisVideoInfo `json:"video_info,omitempty"`
	EmotionAnalysis *EmotionAnalysis   `json:"emotion_analysis,omitempty"`
	SceneAnalysis   *SceneAnalysis     `json:"scene_analysis,omitempty"`
}

// AnalysisData wraps the results as the backend nests them.
type AnalysisData struct {
	AnalysisResults AnalysisResults `json:"analysis_results"`
}

// AnalysisExportResponse is returned by POST /export/analysis.
type AnalysisExportResponse struct {
	Success      bool          `json:"success"`
	AnalysisData *AnalysisData `json:"analysis_data"`
	Message      string        `json:"message"`
}

func (r *AnalysisExportResponse) outcome() (bool, string) { return r.Success, r.Message }

// DataExportResponse is returned by POST /export/data. ProjectData is kept
// raw: its shape belongs to the backend.
type DataExportResponse struct {
	Success     bool            `json:"success"`
	ProjectData json.RawMessage `json:"project_data"`
	Filename    string          `json:"filename"`
	Message     string          `json:"message"`
}

func (r *DataExportResponse) outcome() (bool, string) { return r.Success, r.Message }
