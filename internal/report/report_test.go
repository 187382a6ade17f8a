package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/editing"
)

var testTime = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func contains(texts []string, want string) bool {
	for _, s := range texts {
		if s == want {
			return true
		}
	}
	return false
}

func summary(t *testing.T, raw string) backend.Summary {
	t.Helper()
	var s backend.Summary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("summary: %v", err)
	}
	return s
}

func TestProjectDocument_EmptySummaryOmitted(t *testing.T) {
	doc := ProjectDocument(backend.ReportData{
		VideoName:      "clip.mp4",
		ExportDate:     "2026-10-18T09:00:00",
		EditingSummary: summary(t, `{}`),
		Recommendations: []backend.Recommendation{
			{Type: "pacing", Reason: "Tighten the intro"},
		},
	})

	texts := doc.Texts()
	if contains(texts, "Editing Summary") {
		t.Fatalf("empty editing summary rendered a header: %v", texts)
	}
	if !contains(texts, "AI Recommendations") {
		t.Fatalf("recommendations missing: %v", texts)
	}
	if !contains(texts, "Export Date: 2026-10-18") {
		t.Fatalf("export date not normalized: %v", texts)
	}

	// With no summary the recommendations start at the first section line.
	for _, it := range doc.Pages[0].Items {
		if it.Text == "AI Recommendations" && it.Y != SectionStartY {
			t.Fatalf("recommendations header at y=%v, want %v", it.Y, SectionStartY)
		}
	}
}

func TestProjectDocument_NoRecommendations(t *testing.T) {
	doc := ProjectDocument(backend.ReportData{
		VideoName:      "clip.mp4",
		EditingSummary: summary(t, `{"trim": "0:05 - 1:05", "cuts": 2}`),
	})

	texts := doc.Texts()
	if contains(texts, "AI Recommendations") {
		t.Fatalf("empty recommendations rendered a header: %v", texts)
	}
	if !contains(texts, `trim: "0:05 - 1:05"`) || !contains(texts, "cuts: 2") {
		t.Fatalf("summary lines = %v", texts)
	}
}

func TestProjectDocument_Layout(t *testing.T) {
	doc := ProjectDocument(backend.ReportData{
		VideoName:      "clip.mp4",
		EditingSummary: summary(t, `{"a": 1, "b": 2}`),
		Recommendations: []backend.Recommendation{
			{Type: "one", Reason: "r"}, {Type: "two", Reason: "r"},
		},
	})

	want := []Item{
		{Text: ProjectReportTitle, X: MarginX, Y: 30, Size: TitleSize},
		{Text: "Video Information", X: MarginX, Y: 50, Size: HeadingSize},
		{Text: "Video: clip.mp4", X: MarginX, Y: 60, Size: BodySize},
		{Text: "Export Date: ", X: MarginX, Y: 70, Size: BodySize},
		{Text: "Editing Summary", X: MarginX, Y: 90, Size: HeadingSize},
		{Text: "a: 1", X: MarginX, Y: 100, Size: BodySize},
		{Text: "b: 2", X: MarginX, Y: 110, Size: BodySize},
		{Text: "AI Recommendations", X: MarginX, Y: 130, Size: HeadingSize},
		{Text: "1. one: r", X: MarginX, Y: 140, Size: BodySize},
		{Text: "2. two: r", X: MarginX, Y: 148, Size: BodySize},
	}

	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	if !reflect.DeepEqual(doc.Pages[0].Items, want) {
		t.Fatalf("items =\n%+v\nwant\n%+v", doc.Pages[0].Items, want)
	}
}

func TestProjectDocument_RecommendationsCapped(t *testing.T) {
	var recs []backend.Recommendation
	for i := 0; i < 8; i++ {
		recs = append(recs, backend.Recommendation{Type: fmt.Sprintf("t%d", i), Reason: "r"})
	}
	doc := ProjectDocument(backend.ReportData{VideoName: "clip.mp4", Recommendations: recs})

	texts := doc.Texts()
	if !contains(texts, "5. t4: r") {
		t.Fatalf("fifth recommendation missing: %v", texts)
	}
	if contains(texts, "6. t5: r") {
		t.Fatalf("more than %d recommendations rendered: %v", MaxListItems, texts)
	}
}

func TestProjectDocument_Paginates(t *testing.T) {
	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < 30; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `"k%02d": %d`, i, i)
	}
	b.WriteString("}")

	doc := ProjectDocument(backend.ReportData{VideoName: "clip.mp4", EditingSummary: summary(t, b.String())})

	if len(doc.Pages) < 2 {
		t.Fatalf("pages = %d, want a page break", len(doc.Pages))
	}
	for i, p := range doc.Pages {
		for _, it := range p.Items {
			if it.Y > PageBreakY+LineStep {
				t.Fatalf("page %d item %q placed at y=%v past the break threshold", i, it.Text, it.Y)
			}
		}
	}
	if first := doc.Pages[1].Items[0]; first.Y != TitleY {
		t.Fatalf("continuation page starts at y=%v, want %v", first.Y, TitleY)
	}
	if !contains(doc.Texts(), "k29: 29") {
		t.Fatal("last summary entry lost across pages")
	}
}

func TestLocalProjectDocument(t *testing.T) {
	state := editing.NewState(165).
		SetTrim(5, 65).
		AddCut(10).
		AddCut(20).
		AddFilter(editing.Filter{ID: "f1", Name: "blur", Value: 4})

	doc := LocalProjectDocument("clip.mp4", state, testTime)
	texts := doc.Texts()

	if doc.Title != LocalReportTitle || texts[0] != LocalReportTitle {
		t.Fatalf("title = %q", doc.Title)
	}
	for _, want := range []string{
		"Export Date: 2026-10-18",
		"Trim: 0:05 - 1:05",
		"Cuts: 0:10, 0:20",
		"Filters: blur 4px",
		"Segments: 3",
		"Estimated final duration: 0:59",
	} {
		if !contains(texts, want) {
			t.Errorf("missing %q in %v", want, texts)
		}
	}
	if contains(texts, "AI Recommendations") {
		t.Fatal("local report must not carry recommendations")
	}
}

func TestLocalProjectDocument_UntrimmedOmitsTrim(t *testing.T) {
	doc := LocalProjectDocument("clip.mp4", editing.NewState(30), testTime)
	for _, s := range doc.Texts() {
		if strings.HasPrefix(s, "Trim:") || strings.HasPrefix(s, "Cuts:") || strings.HasPrefix(s, "Filters:") {
			t.Fatalf("absent edit rendered: %q", s)
		}
	}
}

func TestAnalysisDocument(t *testing.T) {
	results := backend.AnalysisResults{
		VideoInfo: &backend.AnalysisVideoInfo{Duration: json.RawMessage(`"2:45"`), Resolution: "1920x1080"},
		EmotionAnalysis: &backend.EmotionAnalysis{DetectedEmotions: []backend.DetectedEmotion{
			{Emotion: "joy", Confidence: 0.853, Timestamp: 12},
		}},
	}

	doc := AnalysisDocument("clip.mp4", results, testTime)
	texts := doc.Texts()

	for _, want := range []string{
		AnalysisReportTitle,
		"Analysis Date: 2026-10-18",
		"Duration: 2:45",
		"Resolution: 1920x1080",
		"Format: N/A",
		"• joy (85.3% confidence) at 12s",
	} {
		if !contains(texts, want) {
			t.Errorf("missing %q in %v", want, texts)
		}
	}
	if contains(texts, "Scene Detection") {
		t.Fatal("absent scene section rendered")
	}
}

func TestAnalysisDocument_ScenesBreakEarly(t *testing.T) {
	var emotions []backend.DetectedEmotion
	for i := 0; i < 5; i++ {
		emotions = append(emotions, backend.DetectedEmotion{Emotion: "calm", Confidence: 0.5, Timestamp: backend.Seconds(i)})
	}
	results := backend.AnalysisResults{
		VideoInfo:       &backend.AnalysisVideoInfo{},
		EmotionAnalysis: &backend.EmotionAnalysis{DetectedEmotions: emotions},
		SceneAnalysis: &backend.SceneAnalysis{SceneChanges: []backend.SceneChange{
			{SceneType: "cut", Confidence: 1, Timestamp: 65},
		}},
	}

	// Metrics end at y=140 and emotions at y=210, past the scene threshold.
	doc := AnalysisDocument("clip.mp4", results, testTime)
	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}
	if got := doc.Pages[1].Items[0]; got.Text != "Scene Detection" || got.Y != TitleY {
		t.Fatalf("second page starts with %+v", got)
	}
}

func TestRenderPDF(t *testing.T) {
	doc := LocalProjectDocument("clip.mp4", editing.NewState(12).AddCut(4), testTime)

	out, err := RenderPDF(doc)
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestRenderPDF_EmptyDocument(t *testing.T) {
	if _, err := RenderPDF(Document{Title: "empty"}); err == nil {
		t.Fatal("expected error for document without pages")
	}
}

func TestDataDocument_RoundTrip(t *testing.T) {
	state := editing.NewState(165).
		SetTrim(5, 65).
		AddCut(10).
		AddCut(20).
		AddFilter(editing.Filter{ID: "f1", Name: "brightness", Value: 80})

	doc := NewDataDocument("clip.mp4", json.RawMessage(`{"id":"p1"}`), state, testTime)
	raw, err := RenderDataDocument(doc)
	if err != nil {
		t.Fatalf("RenderDataDocument() error = %v", err)
	}

	parsed, err := ParseDataDocument(raw)
	if err != nil {
		t.Fatalf("ParseDataDocument() error = %v", err)
	}

	if !reflect.DeepEqual(parsed.Editing, state.Data()) {
		t.Fatalf("editing = %+v, want %+v", parsed.Editing, state.Data())
	}
	if parsed.Stats.FinalDuration != state.EstimatedFinalDuration() {
		t.Fatalf("finalDuration = %v, want %v", parsed.Stats.FinalDuration, state.EstimatedFinalDuration())
	}
	if parsed.ExportInfo.ExportedAt != "2026-10-18T09:30:00Z" {
		t.Fatalf("exportedAt = %q", parsed.ExportInfo.ExportedAt)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"exportInfo", "project", "editing", "stats"} {
		if _, ok := top[key]; !ok {
			t.Errorf("document missing %q", key)
		}
	}
}

func TestDataDocument_NilProject(t *testing.T) {
	raw, err := RenderDataDocument(NewDataDocument("clip.mp4", nil, editing.NewState(10), testTime))
	if err != nil {
		t.Fatalf("RenderDataDocument() error = %v", err)
	}
	if !strings.Contains(string(raw), `"project": null`) {
		t.Fatalf("document = %s", raw)
	}
}
