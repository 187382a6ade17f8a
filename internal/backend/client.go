// Package backend talks to the media-processing service that performs the
// actual encoding, report assembly and project canonicalization.
package backend

import (
	"context"
	"io"
	"log/slog"
)

// Client is the set of backend calls the exporters rely on.
type Client interface {
	ExportVideo(ctx context.Context, req VideoExportRequest) (*VideoExportResponse, error)
	ProcessVideo(ctx context.Context, req ProcessRequest) (*ProcessResponse, error)
	ExportReport(ctx context.Context, req ExportRequest) (*ReportExportResponse, error)
	ExportAnalysis(ctx context.Context, req ExportRequest) (*AnalysisExportResponse, error)
	ExportData(ctx context.Context, req ExportRequest) (*DataExportResponse, error)

	// Download fetches a URL returned by the backend, absolute or relative
	// to the base URL.
	Download(ctx context.Context, url string) (*Download, error)
	// SourceVideo fetches the unedited upload, GET /video/{filename}.
	SourceVideo(ctx context.Context, filename string) (*Download, error)
	// ProcessedVideo fetches a processing result by output filename.
	ProcessedVideo(ctx context.Context, outputFilename string) (*Download, error)
}

// Download is an open byte stream. The caller must Close it.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

func (d *Download) Close() error {
	if d == nil || d.Body == nil {
		return nil
	}
	return d.Body.Close()
}

// OfflineClient answers every call with ErrOffline so exports take their
// documented fallbacks without touching the network.
type OfflineClient struct {
	logger *slog.Logger
}

func NewOfflineClient(logger *slog.Logger) *OfflineClient {
	return &OfflineClient{logger: logger}
}

func (c *OfflineClient) offline(call string) error {
	c.logger.Debug("backend offline: call skipped", "call", call)
	return ErrOffline
}

func (c *OfflineClient) ExportVideo(ctx context.Context, req VideoExportRequest) (*VideoExportResponse, error) {
	return nil, c.offline("export_video")
}

func (c *OfflineClient) ProcessVideo(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	return nil, c.offline("process_video")
}

func (c *OfflineClient) ExportReport(ctx context.Context, req ExportRequest) (*ReportExportResponse, error) {
	return nil, c.offline("export_report")
}

func (c *OfflineClient) ExportAnalysis(ctx context.Context, req ExportRequest) (*AnalysisExportResponse, error) {
	return nil, c.offline("export_analysis")
}

func (c *OfflineClient) ExportData(ctx context.Context, req ExportRequest) (*DataExportResponse, error) {
	return nil, c.offline("export_data")
}

func (c *OfflineClient) Download(ctx context.Context, url string) (*Download, error) {
	return nil, c.offline("download")
}

func (c *OfflineClient) SourceVideo(ctx context.Context, filename string) (*Download, error) {
	return nil, c.offline("source_video")
}

func (c *OfflineClient) ProcessedVideo(ctx context.Context, outputFilename string) (*Download, error) {
	return nil, c.offline("processed_video")
}
