package export

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/report"
)

// Strategy is one way of producing an artifact. The strategies of a kind run
// in order until one succeeds or one fails in a way that rules out the next.
type Strategy struct {
	Name string
	// Degraded marks artifacts that are not equivalent to the primary one.
	Degraded bool
	// Hint is appended to the failure reason when this strategy fails last.
	Hint string
	Run  func(ctx context.Context, j *job) (Result, error)
}

// Strategy names, as they appear in results, logs and history.
const (
	StrategyExportEndpoint = "export_endpoint"
	StrategyProcessingAPI  = "processing_api"
	StrategyUneditedSource = "unedited_source"
	StrategyBackendReport  = "backend_report"
	StrategyLocalReport    = "local_report"
	StrategyBackendData    = "backend_data"
	StrategyAnalysis       = "backend_analysis"
	StrategyLocalEDL       = "local_edl"
)

// Strategies returns the ordered strategies for kind.
func (o *Orchestrator) Strategies(kind Kind, opts Options) ([]Strategy, error) {
	switch kind {
	case KindVideo:
		primary := Strategy{Name: StrategyExportEndpoint, Run: o.videoViaExport}
		if opts.UseProcessingAPI {
			primary = Strategy{Name: StrategyProcessingAPI, Run: o.videoViaProcessing}
		}
		return []Strategy{
			primary,
			{
				Name:     StrategyUneditedSource,
				Degraded: true,
				Hint:     "Please upload the video file and try again.",
				Run:      o.videoUnedited,
			},
		}, nil
	case KindReport:
		return []Strategy{
			{Name: StrategyBackendReport, Run: o.reportFromBackend},
			{Name: StrategyLocalReport, Degraded: true, Run: o.reportLocal},
		}, nil
	case KindData:
		return []Strategy{{Name: StrategyBackendData, Run: o.dataFromBackend}}, nil
	case KindAnalysis:
		return []Strategy{{Name: StrategyAnalysis, Run: o.analysisFromBackend}}, nil
	case KindEDL:
		return []Strategy{{Name: StrategyLocalEDL, Run: o.edlLocal}}, nil
	default:
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}
}

func (o *Orchestrator) videoViaExport(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "requesting video export")
	resp, err := o.client.ExportVideo(ctx, backend.VideoExportRequest{
		VideoFilename: j.filename,
		EditingData:   j.req.State.Data(),
		Quality:       string(j.req.Options.Quality),
	})
	if err != nil {
		return Result{}, backendError("export video", err, false)
	}
	j.progress(StageResponded, "video processed")

	if resp.DownloadURL == "" {
		return Result{}, fmt.Errorf("export video: %w: response carried no download_url", ErrBackendRejected)
	}
	name := resp.Filename
	if name == "" {
		name = exportedVideoName(j.filename)
	}

	dl, err := o.client.Download(ctx, resp.DownloadURL)
	if err != nil {
		return Result{}, backendError("download exported video", err, false)
	}
	path, err := o.saveDownload(ctx, j, name, dl)
	if err != nil {
		return Result{}, err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Video exported successfully!"
	}
	return Result{FileName: filepath.Base(path), Path: path, Message: msg, AppliedEditing: resp.EditingApplied}, nil
}

func (o *Orchestrator) videoViaProcessing(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "requesting video processing")
	out := exportedVideoName(j.filename)
	resp, err := o.client.ProcessVideo(ctx, backend.ProcessRequest{
		VideoFilename:  j.filename,
		EditingData:    j.req.State.Data(),
		OutputFilename: out,
	})
	if err != nil {
		return Result{}, backendError("process video", err, false)
	}
	j.progress(StageResponded, "video processed")
	if resp.OutputFilename != "" {
		out = resp.OutputFilename
	}

	dl, err := o.client.ProcessedVideo(ctx, out)
	if err != nil {
		return Result{}, backendError("download processed video", err, false)
	}
	path, err := o.saveDownload(ctx, j, out, dl)
	if err != nil {
		return Result{}, err
	}

	return Result{
		FileName:       filepath.Base(path),
		Path:           path,
		Message:        fmt.Sprintf("Video processed with %d operation(s) applied.", len(resp.AppliedOperations)),
		AppliedEditing: true,
	}, nil
}

func (o *Orchestrator) videoUnedited(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "fetching original video")
	dl, err := o.client.SourceVideo(ctx, j.filename)
	if err != nil {
		return Result{}, backendError("fetch original video", err, true)
	}
	j.progress(StageResponded, "original video found")

	path, err := o.saveDownload(ctx, j, uneditedVideoName(j.filename), dl)
	if err != nil {
		return Result{}, err
	}
	return Result{
		FileName:       filepath.Base(path),
		Path:           path,
		Message:        "The server could not apply your edits, so the original video was downloaded without them.",
		AppliedEditing: false,
	}, nil
}

func (o *Orchestrator) reportFromBackend(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "requesting report")
	resp, err := o.client.ExportReport(ctx, backend.ExportRequest{
		VideoFilename: j.filename,
		EditingData:   j.req.State.Data(),
	})
	if err != nil {
		return Result{}, backendError("export report", err, false)
	}
	if resp.ReportData == nil {
		return Result{}, fmt.Errorf("export report: %w: response carried no report_data", ErrBackendRejected)
	}
	j.progress(StageResponded, "report data received")

	data := *resp.ReportData
	if data.VideoName == "" {
		data.VideoName = j.filename
	}
	return o.savePDF(ctx, j, report.ProjectDocument(data), projectReportName(j.filename, j.now),
		"Project report exported successfully!")
}

func (o *Orchestrator) reportLocal(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "rendering local report")
	doc := report.LocalProjectDocument(j.filename, j.req.State, j.now)
	return o.savePDF(ctx, j, doc, projectReportName(j.filename, j.now),
		"The server was unavailable, so a local project report was generated without AI recommendations.")
}

func (o *Orchestrator) analysisFromBackend(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "requesting analysis")
	resp, err := o.client.ExportAnalysis(ctx, backend.ExportRequest{VideoFilename: j.filename})
	if err != nil {
		return Result{}, backendError("export analysis", err, false)
	}
	if resp.AnalysisData == nil {
		return Result{}, fmt.Errorf("export analysis: %w: response carried no analysis_data", ErrBackendRejected)
	}
	j.progress(StageResponded, "analysis received")

	doc := report.AnalysisDocument(j.filename, resp.AnalysisData.AnalysisResults, j.now)
	return o.savePDF(ctx, j, doc, analysisReportName(j.filename, j.now), "Analysis report exported successfully!")
}

func (o *Orchestrator) dataFromBackend(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "requesting project data")
	resp, err := o.client.ExportData(ctx, backend.ExportRequest{
		VideoFilename: j.filename,
		EditingData:   j.req.State.Data(),
	})
	if err != nil {
		return Result{}, backendError("export data", err, false)
	}
	j.progress(StageResponded, "project data received")

	doc := report.NewDataDocument(j.filename, resp.ProjectData, j.req.State, j.now)
	raw, err := report.RenderDataDocument(doc)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRenderingFailure, err)
	}

	msg := resp.Message
	if msg == "" {
		msg = "Project data exported successfully!"
	}
	return o.saveBytes(ctx, j, dataDocumentName(j.now), raw, msg)
}

func (o *Orchestrator) edlLocal(ctx context.Context, j *job) (Result, error) {
	j.progress(StageRequested, "building edit decision list")
	events := EventsFromSegments(j.filename, j.req.State.Segments())
	if len(events) == 0 {
		return Result{}, fmt.Errorf("%w: the edit retains no material", ErrRenderingFailure)
	}
	text := GenerateEDL(events, fileStem(j.filename), j.req.Options.FrameRate)
	return o.saveBytes(ctx, j, edlName(j.filename, j.now), []byte(text),
		fmt.Sprintf("Edit decision list exported with %d event(s).", len(events)))
}

// savePDF renders doc fully before anything reaches the sink.
func (o *Orchestrator) savePDF(ctx context.Context, j *job, doc report.Document, name, msg string) (Result, error) {
	raw, err := report.RenderPDF(doc)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRenderingFailure, err)
	}
	return o.saveBytes(ctx, j, name, raw, msg)
}

func (o *Orchestrator) saveBytes(ctx context.Context, j *job, name string, raw []byte, msg string) (Result, error) {
	j.progress(StageSaving, "saving")
	path, err := o.sink.Save(ctx, name, bytes.NewReader(raw))
	if err != nil {
		return Result{}, saveError(ctx, name, err)
	}
	return Result{FileName: filepath.Base(path), Path: path, Message: msg}, nil
}

func (o *Orchestrator) saveDownload(ctx context.Context, j *job, name string, dl *backend.Download) (string, error) {
	defer dl.Close()
	j.progress(StageSaving, "downloading")
	path, err := o.sink.Save(ctx, name, dl.Body)
	if err != nil {
		return "", saveError(ctx, name, err)
	}
	return path, nil
}

// saveError keeps a cancelled context classified as a backend failure.
func saveError(ctx context.Context, name string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("save %s: %w: %w", name, ErrBackendUnreachable, err)
	}
	return fmt.Errorf("save %s: %w: %w", name, ErrSaveFailure, err)
}
