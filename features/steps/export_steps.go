//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/history"

	"github.com/cucumber/godog"
)

// fakeBackend serves the media API endpoints an export touches and records
// the last video export request.
type fakeBackend struct {
	mu           sync.Mutex
	rejectVideo  bool
	lastVideoReq *backend.VideoExportRequest
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/export/video", func(w http.ResponseWriter, r *http.Request) {
		var req backend.VideoExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.lastVideoReq = &req
		reject := b.rejectVideo
		b.mu.Unlock()

		if reject {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "video file not uploaded",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"download_url":    "/download/exported_" + req.VideoFilename,
			"filename":        "exported_" + req.VideoFilename,
			"editing_applied": true,
		})
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("edited video bytes"))
	})
	mux.HandleFunc("/video/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("original video bytes"))
	})
	mux.HandleFunc("/export/report", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "report_data": {
			"video_name": "clip.mp4",
			"export_date": "2026-10-18",
			"editing_summary": {"trim": "0:00 - 1:30", "cuts": 0},
			"recommendations": [{"type": "pacing", "reason": "Opening is slow."}]
		}}`))
	})
	return mux
}

func (b *fakeBackend) lastVideoRequest() *backend.VideoExportRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastVideoReq
}

// progressRecorder collects every update of one export.
type progressRecorder struct {
	mu      sync.Mutex
	percent []int
	done    int
}

func (r *progressRecorder) Progress(p export.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percent = append(r.percent, p.Percent)
}

func (r *progressRecorder) Done(export.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
}

func InitializeExportScenario(ctx *godog.ScenarioContext) {
	ctx.Step(`^the backend is offline$`, theBackendIsOffline)
	ctx.Step(`^the backend is available$`, theBackendIsAvailable)
	ctx.Step(`^the backend rejects video exports$`, theBackendRejectsVideoExports)
	ctx.Step(`^I export "([^"]*)"$`, iExport)
	ctx.Step(`^I request an "([^"]*)" export$`, iRequestAnExport)
	ctx.Step(`^I run the requested export$`, iRunTheRequestedExport)
	ctx.Step(`^the export should succeed with strategy "([^"]*)"$`, theExportShouldSucceedWithStrategy)
	ctx.Step(`^the export should fail with a reason mentioning "([^"]*)"$`, theExportShouldFailMentioning)
	ctx.Step(`^the export should be marked degraded$`, theExportShouldBeDegraded)
	ctx.Step(`^the editing should have been applied$`, theEditingShouldHaveBeenApplied)
	ctx.Step(`^the editing should not have been applied$`, theEditingShouldNotHaveBeenApplied)
	ctx.Step(`^the backend should have received a trim from (\d+(?:\.\d+)?) to (\d+(?:\.\d+)?) seconds$`, theBackendShouldHaveReceivedATrim)
	ctx.Step(`^the saved file should contain "([^"]*)"$`, theSavedFileShouldContain)
	ctx.Step(`^the saved file should not contain "([^"]*)"$`, theSavedFileShouldNotContain)
	ctx.Step(`^the saved file should start with "([^"]*)"$`, theSavedFileShouldStartWith)
	ctx.Step(`^progress should never decrease and end at 100$`, progressShouldEndAt100)
	ctx.Step(`^progress should never decrease$`, progressShouldNeverDecrease)
	ctx.Step(`^the export history should list (\d+) exports$`, theExportHistoryShouldList)
	ctx.Step(`^the latest export in history should have status "([^"]*)"$`, theLatestExportShouldHaveStatus)
}

func theBackendIsOffline() error {
	s := getSessionContext()
	s.client = backend.NewOfflineClient(s.logger)
	return nil
}

func startBackend(reject bool) error {
	s := getSessionContext()
	s.backend = &fakeBackend{rejectVideo: reject}
	s.server = httptest.NewServer(s.backend.handler())
	s.client = backend.NewHTTPClient(s.server.URL, s.logger)
	return nil
}

func theBackendIsAvailable() error {
	return startBackend(false)
}

func theBackendRejectsVideoExports() error {
	return startBackend(true)
}

func iExport(kind string) error {
	if err := iRequestAnExport(kind); err != nil {
		return err
	}
	return iRunTheRequestedExport()
}

func iRequestAnExport(kind string) error {
	s := getSessionContext()
	k, err := export.ParseKind(kind)
	if err != nil {
		return err
	}
	req, err := s.sess.Request(k, export.Options{})
	if err != nil {
		return err
	}
	s.pending = &req
	return nil
}

func iRunTheRequestedExport() error {
	s := getSessionContext()
	if s.pending == nil {
		return fmt.Errorf("no export was requested")
	}
	s.recorder = &progressRecorder{}
	s.result = s.sess.Run(context.Background(), *s.pending, s.recorder)
	s.pending = nil
	return nil
}

func theExportShouldSucceedWithStrategy(strategy string) error {
	res := getSessionContext().result
	if !res.OK {
		return fmt.Errorf("expected success, export failed: %s", res.Reason)
	}
	if res.Strategy != strategy {
		return fmt.Errorf("expected strategy %q, got %q", strategy, res.Strategy)
	}
	return nil
}

func theExportShouldFailMentioning(text string) error {
	res := getSessionContext().result
	if res.OK {
		return fmt.Errorf("expected failure, export succeeded with %s", res.Strategy)
	}
	if !strings.Contains(res.Reason, text) {
		return fmt.Errorf("expected reason to mention %q, got %q", text, res.Reason)
	}
	return nil
}

func theExportShouldBeDegraded() error {
	if !getSessionContext().result.Degraded {
		return fmt.Errorf("expected a degraded result")
	}
	return nil
}

func theEditingShouldHaveBeenApplied() error {
	if !getSessionContext().result.AppliedEditing {
		return fmt.Errorf("expected editing to be applied")
	}
	return nil
}

func theEditingShouldNotHaveBeenApplied() error {
	if getSessionContext().result.AppliedEditing {
		return fmt.Errorf("expected editing not to be applied")
	}
	return nil
}

func theBackendShouldHaveReceivedATrim(start, end float64) error {
	s := getSessionContext()
	if s.backend == nil {
		return fmt.Errorf("no fake backend is running")
	}
	req := s.backend.lastVideoRequest()
	if req == nil {
		return fmt.Errorf("backend received no video export")
	}
	got := req.EditingData
	if !near(got.TrimStart, start) || got.TrimEnd == nil || !near(*got.TrimEnd, end) {
		return fmt.Errorf("expected trim %g..%g, got %+v", start, end, got)
	}
	return nil
}

func savedFile() (string, error) {
	res := getSessionContext().result
	if res.Path == "" {
		return "", fmt.Errorf("export saved no file: %s", res.Reason)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func theSavedFileShouldContain(text string) error {
	data, err := savedFile()
	if err != nil {
		return err
	}
	if !strings.Contains(data, text) {
		return fmt.Errorf("expected saved file to contain %q:\n%s", text, data)
	}
	return nil
}

func theSavedFileShouldNotContain(text string) error {
	data, err := savedFile()
	if err != nil {
		return err
	}
	if strings.Contains(data, text) {
		return fmt.Errorf("saved file unexpectedly contains %q:\n%s", text, data)
	}
	return nil
}

func theSavedFileShouldStartWith(prefix string) error {
	data, err := savedFile()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(data, prefix) {
		return fmt.Errorf("expected saved file to start with %q", prefix)
	}
	return nil
}

func progressShouldNeverDecrease() error {
	r := getSessionContext().recorder
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != 1 {
		return fmt.Errorf("expected exactly one result, got %d", r.done)
	}
	for i := 1; i < len(r.percent); i++ {
		if r.percent[i] < r.percent[i-1] {
			return fmt.Errorf("progress went backwards: %v", r.percent)
		}
	}
	return nil
}

func progressShouldEndAt100() error {
	if err := progressShouldNeverDecrease(); err != nil {
		return err
	}
	r := getSessionContext().recorder
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.percent) == 0 || r.percent[len(r.percent)-1] != export.StageDone {
		return fmt.Errorf("expected progress to end at 100, got %v", r.percent)
	}
	return nil
}

func recentExports() ([]*history.Entry, error) {
	return getSessionContext().sess.History(context.Background(), 10)
}

func theExportHistoryShouldList(n int) error {
	entries, err := recentExports()
	if err != nil {
		return err
	}
	if len(entries) != n {
		return fmt.Errorf("expected %d history entries, got %d", n, len(entries))
	}
	return nil
}

func theLatestExportShouldHaveStatus(status string) error {
	entries, err := recentExports()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("history is empty")
	}
	if entries[0].Status != status {
		return fmt.Errorf("expected latest status %q, got %q (%s)", status, entries[0].Status, entries[0].Kind)
	}
	return nil
}
