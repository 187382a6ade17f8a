package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/timecode"
)

const (
	ProjectReportTitle  = "VideoCraft Project Report"
	LocalReportTitle    = "Local Project Report"
	AnalysisReportTitle = "Video Analysis Report"

	dateLayout = "2006-01-02"
)

// ProjectDocument lays out a backend report payload. Empty summary and
// recommendation sections are left out entirely.
func ProjectDocument(data backend.ReportData) Document {
	l := newLayout(ProjectReportTitle)
	l.header("Video Information",
		"Video: "+data.VideoName,
		"Export Date: "+displayDate(data.ExportDate),
	)

	if len(data.EditingSummary) > 0 {
		l.heading("Editing Summary")
		for _, e := range data.EditingSummary {
			l.line(e.Key+": "+compactJSON(e.Value), LineStep)
		}
		l.gap(LineStep)
	}

	if len(data.Recommendations) > 0 {
		l.heading("AI Recommendations")
		for i, rec := range limit(data.Recommendations) {
			l.line(fmt.Sprintf("%d. %s: %s", i+1, rec.Type, rec.Reason), ListStep)
		}
	}

	return l.document()
}

// LocalProjectDocument lays out a reduced report from the editing state
// alone. It never has a recommendations section.
func LocalProjectDocument(videoName string, state editing.State, at time.Time) Document {
	l := newLayout(LocalReportTitle)
	l.header("Video Information",
		"Video: "+videoName,
		"Export Date: "+at.Format(dateLayout),
		"Duration: "+timecode.FormatTime(state.Duration()),
	)

	l.heading("Editing Summary")
	for _, text := range localSummary(state) {
		l.line(text, LineStep)
	}
	l.gap(LineStep)
	l.line("Generated locally: AI recommendations were not available.", LineStep)

	return l.document()
}

func localSummary(state editing.State) []string {
	lines := []string{"Original duration: " + timecode.FormatTime(state.Duration())}

	if end, set := state.TrimEnd(); set || state.TrimStart() > 0 {
		lines = append(lines, fmt.Sprintf("Trim: %s - %s",
			timecode.FormatTime(state.TrimStart()), timecode.FormatTime(end)))
	}

	if cuts := state.Cuts(); len(cuts) > 0 {
		marks := make([]string, len(cuts))
		for i, c := range cuts {
			marks[i] = timecode.FormatTime(c)
		}
		lines = append(lines, "Cuts: "+strings.Join(marks, ", "))
	}

	if filters := state.Filters(); len(filters) > 0 {
		names := make([]string, len(filters))
		for i, f := range filters {
			names[i] = f.String()
		}
		lines = append(lines, "Filters: "+strings.Join(names, ", "))
	}

	lines = append(lines,
		fmt.Sprintf("Segments: %d", state.SegmentCount()),
		"Estimated final duration: "+timecode.FormatTime(state.EstimatedFinalDuration()),
	)
	return lines
}

// AnalysisDocument lays out the analysis payload: video metrics, detected
// emotions and scene changes. Absent sections are left out.
func AnalysisDocument(videoName string, results backend.AnalysisResults, at time.Time) Document {
	l := newLayout(AnalysisReportTitle)
	l.header("Video Information",
		"Video: "+videoName,
		"Analysis Date: "+at.Format(dateLayout),
	)

	if info := results.VideoInfo; info != nil {
		l.heading("Video Metrics")
		l.line("Duration: "+orNA(rawText(info.Duration)), LineStep)
		l.line("Resolution: "+orNA(info.Resolution), LineStep)
		l.line("Format: "+orNA(info.Format), LineStep)
		l.gap(LineStep)
	}

	if ea := results.EmotionAnalysis; ea != nil && ea.DetectedEmotions != nil {
		l.heading("Emotion Analysis")
		for _, e := range limit(ea.DetectedEmotions) {
			l.line(fmt.Sprintf("• %s (%.1f%% confidence) at %gs", e.Emotion, e.Confidence*100, float64(e.Timestamp)), LineStep)
		}
		l.gap(LineStep)
	}

	if sa := results.SceneAnalysis; sa != nil && sa.SceneChanges != nil {
		l.breakPast(200)
		l.heading("Scene Detection")
		for _, s := range limit(sa.SceneChanges) {
			l.line(fmt.Sprintf("• %s at %gs (%.1f%% confidence)", s.SceneType, float64(s.Timestamp), s.Confidence*100), LineStep)
		}
	}

	return l.document()
}

func limit[T any](items []T) []T {
	if len(items) > MaxListItems {
		return items[:MaxListItems]
	}
	return items
}

func displayDate(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	return raw
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// rawText shows a JSON string without quotes and anything else as compact JSON.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return compactJSON(raw)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
