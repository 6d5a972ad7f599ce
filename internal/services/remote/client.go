package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/services"
	"condish/internal/services/wire"
)

const (
	defaultTimeout   = 90 * time.Second
	defaultRetryWait = time.Second
	maxRetryWait     = 5 * time.Second
)

// Config describes the remote inspection API.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	// ProjectID is sent with every request that carries one.
	ProjectID string
}

// Client implements the collaborators against the remote inspection API.
type Client struct {
	http      *resty.Client
	projectID string
	logger    *slog.Logger
}

// New constructs a Client. BaseURL is required.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, services.Wrap(services.ErrConfiguration, "remote", "init", "base url is required", nil)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	wait := cfg.RetryWait
	if wait <= 0 {
		wait = defaultRetryWait
	}
	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetRetryCount(max(cfg.RetryCount, 0)).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(max(wait, maxRetryWait)).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err == nil && resp != nil && resp.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{
		http:      httpClient,
		projectID: strings.TrimSpace(cfg.ProjectID),
		logger:    logging.NewComponentLogger(logger, "remote"),
	}, nil
}

// ParseFloorPlan posts a floor-plan image to /floor-plan/parse.
func (c *Client) ParseFloorPlan(ctx context.Context, img inspection.Image) (floorplan.RawPlan, error) {
	req := wire.FloorPlanRequest{ProjectID: c.projectID, FloorPlanImage: wire.EncodeImage(img), MimeType: img.MimeType}
	var resp wire.FloorPlanResponse
	if err := c.post(ctx, "parse floor plan", "/floor-plan/parse", req, &resp); err != nil {
		return floorplan.RawPlan{}, err
	}
	if err := statusError("parse floor plan", resp.Status, resp.Message); err != nil {
		return floorplan.RawPlan{}, err
	}
	return resp.Plan(), nil
}

// Analyze posts a scan to /analyze, or to /analyze/standalone when the room
// has no references.
func (c *Client) Analyze(ctx context.Context, t inspection.ScanTicket) (inspection.AnalysisResult, error) {
	var resp wire.AnalyzeResponse
	if t.Standalone() {
		req := wire.StandaloneRequest{Image: wire.EncodeImage(t.Image)}
		if err := c.post(ctx, "analyze", "/analyze/standalone", req, &resp); err != nil {
			return inspection.AnalysisResult{}, err
		}
		return resp.StandaloneResult(), nil
	}
	req := wire.AnalyzeRequest{CurrentImage: wire.EncodeImage(t.Image)}
	for _, ref := range t.References {
		req.ReferenceImages = append(req.ReferenceImages, wire.EncodeImage(ref))
	}
	if err := c.post(ctx, "analyze", "/analyze", req, &resp); err != nil {
		return inspection.AnalysisResult{}, err
	}
	return resp.ToResult(), nil
}

// Quote posts findings to /quote.
func (c *Client) Quote(ctx context.Context, t inspection.QuoteTicket) (inspection.RepairQuote, error) {
	req := wire.QuoteRequest{Damages: wire.FromFindings(t.Findings), Country: t.Region, Currency: t.Currency}
	var resp wire.QuoteResponse
	if err := c.post(ctx, "quote", "/quote", req, &resp); err != nil {
		return inspection.RepairQuote{}, err
	}
	if err := statusError("quote", resp.Status, resp.Notes); err != nil {
		return inspection.RepairQuote{}, err
	}
	quote := resp.ToQuote()
	if quote.Currency == "" {
		quote.Currency = t.Currency
	}
	return quote, nil
}

// ComputeDeductions posts the settlement inputs to /deposit/calculate. The
// reply's status is passed through for the settlement calculator to judge.
func (c *Client) ComputeDeductions(ctx context.Context, t inspection.SettlementTicket) (*inspection.EstimatorResult, error) {
	var resp wire.DepositResponse
	if err := c.post(ctx, "compute deductions", "/deposit/calculate", wire.NewDepositRequest(c.projectID, t), &resp); err != nil {
		return nil, err
	}
	return resp.ToEstimatorResult(), nil
}

// ExtractLease posts a lease document to /lease/extract-info.
func (c *Client) ExtractLease(ctx context.Context, doc inspection.Image) (inspection.LeaseInfo, error) {
	mime := doc.MimeType
	if mime == "" {
		mime = "application/pdf"
	}
	req := wire.LeaseRequest{ProjectID: c.projectID, Document: wire.EncodeImage(doc), MimeType: mime}
	var resp wire.LeaseResponse
	if err := c.post(ctx, "extract lease", "/lease/extract-info", req, &resp); err != nil {
		return inspection.LeaseInfo{}, err
	}
	if err := statusError("extract lease", resp.Status, resp.Message); err != nil {
		return inspection.LeaseInfo{}, err
	}
	return resp.ToLeaseInfo(), nil
}

// HealthCheck calls /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "remote", "health", "request failed", err)
	}
	if resp.IsError() {
		return services.Wrap(services.ErrUnavailable, "remote", "health", fmt.Sprintf("status %d", resp.StatusCode()), nil)
	}
	return nil
}

func (c *Client) post(ctx context.Context, operation, path string, body, result any) error {
	started := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post(path)
	if err != nil {
		marker := services.ErrUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "remote", operation, "request failed", err)
	}
	c.logger.Debug("remote call finished",
		logging.String("path", path),
		logging.Int("status", resp.StatusCode()),
		logging.Duration("elapsed", time.Since(started)),
	)
	if resp.IsError() {
		return services.Wrap(services.ErrUnavailable, "remote", operation,
			fmt.Sprintf("status %d: %s", resp.StatusCode(), snippet(resp.String())), nil)
	}
	return nil
}

func statusError(operation, status, message string) error {
	if !strings.EqualFold(strings.TrimSpace(status), "error") {
		return nil
	}
	if message = strings.TrimSpace(message); message == "" {
		message = "remote reported an error"
	}
	return services.Wrap(services.ErrUnavailable, "remote", operation, message, nil)
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}
