package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds one backend round trip, downloads included.
	DefaultTimeout = 120 * time.Second

	maxJSONBody  = 8 << 20
	maxErrorBody = 4096
)

// HTTPClient is the real backend client.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func NewHTTPClient(baseURL string, logger *slog.Logger, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) ExportVideo(ctx context.Context, req VideoExportRequest) (*VideoExportResponse, error) {
	req.ExportType = ExportTypeVideo
	var resp VideoExportResponse
	if err := c.postJSON(ctx, "/export/video", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ProcessVideo(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	var resp ProcessResponse
	if err := c.postJSON(ctx, "/api/video-editing/process", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ExportReport(ctx context.Context, req ExportRequest) (*ReportExportResponse, error) {
	req.ExportType = ExportTypeReport
	var resp ReportExportResponse
	if err := c.postJSON(ctx, "/export/report", req, &resp); err != nil {
		return nil, err
	}
	if resp.ReportData == nil {
		return nil, &RejectedError{Endpoint: "/export/report", Message: "response carried no report_data"}
	}
	return &resp, nil
}

func (c *HTTPClient) ExportAnalysis(ctx context.Context, req ExportRequest) (*AnalysisExportResponse, error) {
	req.ExportType = ExportTypeAnalysis
	var resp AnalysisExportResponse
	if err := c.postJSON(ctx, "/export/analysis", req, &resp); err != nil {
		return nil, err
	}
	if resp.AnalysisData == nil {
		return nil, &RejectedError{Endpoint: "/export/analysis", Message: "response carried no analysis_data"}
	}
	return &resp, nil
}

func (c *HTTPClient) ExportData(ctx context.Context, req ExportRequest) (*DataExportResponse, error) {
	req.ExportType = ExportTypeData
	var resp DataExportResponse
	if err := c.postJSON(ctx, "/export/data", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Download(ctx context.Context, rawURL string) (*Download, error) {
	return c.get(ctx, c.resolve(rawURL))
}

func (c *HTTPClient) SourceVideo(ctx context.Context, filename string) (*Download, error) {
	return c.get(ctx, c.baseURL+"/video/"+url.PathEscape(filename))
}

func (c *HTTPClient) ProcessedVideo(ctx context.Context, outputFilename string) (*Download, error) {
	return c.get(ctx, c.baseURL+"/api/video-editing/download/"+url.PathEscape(outputFilename))
}

// outcomer is implemented by every JSON response that carries a success flag.
type outcomer interface {
	outcome() (ok bool, message string)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload interface{}, out outcomer) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	c.logger.Debug("backend request", "method", http.MethodPost, "url", endpoint, "body_bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Endpoint: path, StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", path, err)
	}

	if ok, msg := out.outcome(); !ok {
		return &RejectedError{Endpoint: path, Message: msg}
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	c.logger.Debug("backend download", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{Endpoint: req.URL.Path, StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	return &Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// resolve joins a backend-relative download URL onto the base URL.
func (c *HTTPClient) resolve(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return c.baseURL + raw
}
