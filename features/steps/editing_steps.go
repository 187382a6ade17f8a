//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http/httptest"
	"os"
	"strconv"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/db"
	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/history"
	"github.com/videocraft/videocraft-core/internal/session"
	"github.com/videocraft/videocraft-core/internal/timecode"
	"github.com/videocraft/videocraft-core/internal/videoref"

	"github.com/cucumber/godog"
)

// sessionContext holds one editing session and whatever backend it talks to.
// Editing and export scenarios share it.
type sessionContext struct {
	outputDir string
	logger    *slog.Logger
	client    backend.Client
	server    *httptest.Server
	backend   *fakeBackend
	database  *db.DB
	sess      *session.Session
	editErr   error

	pending  *export.Request
	result   export.Result
	recorder *progressRecorder
}

// SharedSessionContext is reset before each scenario via Before hook
var SharedSessionContext *sessionContext

func getSessionContext() *sessionContext {
	return SharedSessionContext
}

func InitializeEditingScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		outputDir, err := os.MkdirTemp("", "videocraft-export-*")
		if err != nil {
			return c, err
		}
		SharedSessionContext = &sessionContext{
			outputDir: outputDir,
			logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		s := getSessionContext()
		if s == nil {
			return c, nil
		}
		if s.server != nil {
			s.server.Close()
		}
		if s.database != nil {
			s.database.Close()
		}
		os.RemoveAll(s.outputDir)
		SharedSessionContext = nil
		return c, nil
	})

	ctx.Step(`^a loaded video "([^"]*)" of (\d+) seconds$`, aLoadedVideoOfSeconds)
	ctx.Step(`^I load the video "([^"]*)" of (\d+) seconds$`, aLoadedVideoOfSeconds)
	ctx.Step(`^a loaded browser-only video of (\d+) seconds$`, aLoadedBrowserOnlyVideo)
	ctx.Step(`^no video is loaded$`, noVideoIsLoaded)
	ctx.Step(`^I set the trim from "([^"]*)" to "([^"]*)"$`, iSetTheTrim)
	ctx.Step(`^I add cuts at:$`, iAddCutsAt)
	ctx.Step(`^I apply the filter "([^"]*)" at (-?\d+(?:\.\d+)?)$`, iApplyTheFilter)
	ctx.Step(`^I try to add a cut at "([^"]*)"$`, iTryToAddACut)
	ctx.Step(`^the trim should run from (\d+(?:\.\d+)?) to (\d+(?:\.\d+)?) seconds$`, theTrimShouldRun)
	ctx.Step(`^there should be (\d+) cuts$`, thereShouldBeCuts)
	ctx.Step(`^the timeline should have (\d+) segments$`, theTimelineShouldHaveSegments)
	ctx.Step(`^the estimated final duration should be (\d+(?:\.\d+)?) seconds$`, theEstimatedFinalDuration)
	ctx.Step(`^the filter "([^"]*)" should be (\d+) px$`, theFilterShouldBePx)
	ctx.Step(`^the edit should be refused because no video is loaded$`, theEditShouldBeRefused)
}

// ensureSession builds the session on first use, with an offline backend
// unless a scenario picked another one.
func (s *sessionContext) ensureSession() error {
	if s.sess != nil {
		return nil
	}
	if s.client == nil {
		s.client = backend.NewOfflineClient(s.logger)
	}

	sink, err := export.NewDirSink(s.outputDir)
	if err != nil {
		return err
	}
	database, err := db.NewMemory(s.logger)
	if err != nil {
		return err
	}
	s.database = database

	orch := export.NewOrchestrator(s.client, sink, s.logger)
	s.sess = session.New(orch, history.NewRepository(database.Conn()), s.logger)
	return nil
}

func aLoadedVideoOfSeconds(name string, seconds int) error {
	s := getSessionContext()
	if err := s.ensureSession(); err != nil {
		return err
	}
	meta := editing.VideoMetadata{DurationSeconds: float64(seconds), OriginalFilename: name}
	return s.sess.Load(meta, videoref.Filename(name))
}

func aLoadedBrowserOnlyVideo(seconds int) error {
	s := getSessionContext()
	if err := s.ensureSession(); err != nil {
		return err
	}
	meta := editing.VideoMetadata{DurationSeconds: float64(seconds)}
	return s.sess.Load(meta, videoref.LocalHandle("blob:http://localhost/7f3a", videoref.Names{}))
}

func noVideoIsLoaded() error {
	return getSessionContext().ensureSession()
}

func iSetTheTrim(start, end string) error {
	s := getSessionContext()
	_, err := s.sess.Update(func(st editing.State) editing.State {
		return st.SetTrim(timecode.ParseTime(start), timecode.ParseTime(end))
	})
	return err
}

func iAddCutsAt(table *godog.Table) error {
	s := getSessionContext()
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		at := timecode.ParseTime(row.Cells[0].Value)
		if _, err := s.sess.Update(func(st editing.State) editing.State { return st.AddCut(at) }); err != nil {
			return err
		}
	}
	return nil
}

func iApplyTheFilter(name, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	_, err = getSessionContext().sess.Update(func(st editing.State) editing.State {
		return st.AddFilter(editing.Filter{Name: name, Value: v})
	})
	return err
}

func iTryToAddACut(at string) error {
	s := getSessionContext()
	_, s.editErr = s.sess.Update(func(st editing.State) editing.State {
		return st.AddCut(timecode.ParseTime(at))
	})
	return nil
}

func currentState() (editing.State, error) {
	return getSessionContext().sess.State()
}

func theTrimShouldRun(start, end float64) error {
	st, err := currentState()
	if err != nil {
		return err
	}
	if !near(st.TrimStart(), start) || !near(st.EffectiveTrimEnd(), end) {
		return fmt.Errorf("expected trim %g..%g, got %g..%g", start, end, st.TrimStart(), st.EffectiveTrimEnd())
	}
	return nil
}

func thereShouldBeCuts(n int) error {
	st, err := currentState()
	if err != nil {
		return err
	}
	if got := len(st.Cuts()); got != n {
		return fmt.Errorf("expected %d cuts, got %d: %v", n, got, st.Cuts())
	}
	return nil
}

func theTimelineShouldHaveSegments(n int) error {
	st, err := currentState()
	if err != nil {
		return err
	}
	if got := len(st.Segments()); got != n {
		return fmt.Errorf("expected %d segments, got %d: %v", n, got, st.Segments())
	}
	return nil
}

func theEstimatedFinalDuration(want float64) error {
	st, err := currentState()
	if err != nil {
		return err
	}
	if got := st.EstimatedFinalDuration(); !near(got, want) {
		return fmt.Errorf("expected final duration %g, got %g", want, got)
	}
	return nil
}

func theFilterShouldBePx(name string, want int) error {
	st, err := currentState()
	if err != nil {
		return err
	}
	for _, f := range st.Filters() {
		if f.Name == name {
			if f.Unit() != "px" || !near(f.Value, float64(want)) {
				return fmt.Errorf("expected %s %dpx, got %s", name, want, f)
			}
			return nil
		}
	}
	return fmt.Errorf("filter %q not found in %v", name, st.Filters())
}

func theEditShouldBeRefused() error {
	if !errors.Is(getSessionContext().editErr, session.ErrNoVideo) {
		return fmt.Errorf("expected ErrNoVideo, got %v", getSessionContext().editErr)
	}
	return nil
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
