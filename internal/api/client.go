package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"condish/internal/inspection"
	"condish/internal/services"
)

// ErrAPIUnavailable reports that the daemon could not be reached.
var ErrAPIUnavailable = errors.New("daemon API unavailable")

// Error is a non-2xx reply from the daemon.
type Error struct {
	Status   int
	Message  string
	Category string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned status %d", e.Status)
	}
	return e.Message
}

// Unwrap maps the HTTP status back onto the service error taxonomy.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return services.ErrNotFound
	case e.Status == http.StatusConflict:
		return services.ErrConflict
	case e.Status == http.StatusBadRequest:
		return services.ErrValidation
	case e.Status == http.StatusBadGateway, e.Status == http.StatusGatewayTimeout:
		return services.ErrUnavailable
	case e.Category == string(services.CategoryIntegrity):
		return services.ErrIntegrity
	default:
		return nil
	}
}

// Client calls the daemon's HTTP API.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the daemon listening on bind (host:port or
// URL). token is sent as a bearer token when non-empty.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, ErrAPIUnavailable
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	// Collaborator calls run synchronously behind some endpoints, so the
	// timeout is generous.
	httpClient := resty.New().
		SetBaseURL(base.String()).
		SetTimeout(5*time.Minute).
		SetHeader("Accept", "application/json")
	if token = strings.TrimSpace(token); token != "" {
		httpClient.SetAuthToken(token)
	}
	return &Client{http: httpClient}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetError(&ErrorResponse{})
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return responseError(resp)
	}
	return nil
}

func responseError(resp *resty.Response) error {
	apiErr := &Error{Status: resp.StatusCode()}
	if payload, ok := resp.Error().(*ErrorResponse); ok && payload != nil {
		apiErr.Message = payload.Error
		apiErr.Category = payload.Category
	}
	return apiErr
}

// Status fetches daemon and session diagnostics.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var out DaemonStatus
	return out, c.do(ctx, http.MethodGet, "/api/status", nil, &out)
}

// RefreshStatus reruns the daemon's preflight checks before reporting.
func (c *Client) RefreshStatus(ctx context.Context) (DaemonStatus, error) {
	var out DaemonStatus
	return out, c.do(ctx, http.MethodGet, "/api/status?refresh=1", nil, &out)
}

// Session fetches the full session view.
func (c *Client) Session(ctx context.Context) (SessionView, error) {
	var out SessionView
	return out, c.do(ctx, http.MethodGet, "/api/session", nil, &out)
}

// Reset resets the inspection or, with scope "full", the whole session.
func (c *Client) Reset(ctx context.Context, scope string) (ResetResponse, error) {
	var out ResetResponse
	return out, c.do(ctx, http.MethodPost, "/api/session/reset", ResetRequest{Scope: scope}, &out)
}

// SetMode switches between check-in and check-out.
func (c *Client) SetMode(ctx context.Context, mode string) (SessionView, error) {
	var out SessionView
	return out, c.do(ctx, http.MethodPut, "/api/session/mode", ModeRequest{Mode: mode}, &out)
}

// LoadRooms replaces the room registry.
func (c *Client) LoadRooms(ctx context.Context, req RoomsRequest) (RoomsResponse, error) {
	var out RoomsResponse
	return out, c.do(ctx, http.MethodPost, "/api/rooms", req, &out)
}

// ParseFloorPlan sends a floor-plan image to the analyzer and loads the rooms.
func (c *Client) ParseFloorPlan(ctx context.Context, img inspection.Image) (RoomsResponse, error) {
	var out RoomsResponse
	return out, c.do(ctx, http.MethodPost, "/api/floor-plan", ImageRequest{Image: img.Data, MimeType: img.MimeType}, &out)
}

// Room fetches one room with its checklist.
func (c *Client) Room(ctx context.Context, id string) (RoomDetail, error) {
	var out RoomDetail
	return out, c.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(id), nil, &out)
}

// Layout fetches the 3D floor-plan boxes.
func (c *Client) Layout(ctx context.Context) (LayoutResponse, error) {
	var out LayoutResponse
	return out, c.do(ctx, http.MethodGet, "/api/layout", nil, &out)
}

// AddReference appends a check-in reference image.
func (c *Client) AddReference(ctx context.Context, roomID string, img inspection.Image) (ReferenceResponse, error) {
	var out ReferenceResponse
	path := "/api/rooms/" + url.PathEscape(roomID) + "/references"
	return out, c.do(ctx, http.MethodPost, path, ImageRequest{Image: img.Data, MimeType: img.MimeType}, &out)
}

// Start begins the traversal.
func (c *Client) Start(ctx context.Context) (RoomResponse, error) {
	var out RoomResponse
	return out, c.do(ctx, http.MethodPost, "/api/inspection/start", nil, &out)
}

// GoTo moves the cursor.
func (c *Client) GoTo(ctx context.Context, roomID string) (RoomResponse, error) {
	var out RoomResponse
	return out, c.do(ctx, http.MethodPost, "/api/inspection/goto", GoToRequest{RoomID: roomID}, &out)
}

// Scan analyzes a frame of the current room.
func (c *Client) Scan(ctx context.Context, img inspection.Image) (ScanResponse, error) {
	var out ScanResponse
	return out, c.do(ctx, http.MethodPost, "/api/inspection/scan", ImageRequest{Image: img.Data, MimeType: img.MimeType}, &out)
}

// Dismiss drops a buffered candidate.
func (c *Client) Dismiss(ctx context.Context, index int) error {
	return c.do(ctx, http.MethodDelete, "/api/inspection/candidates/"+strconv.Itoa(index), nil, nil)
}

// Complete finalizes the current room.
func (c *Client) Complete(ctx context.Context, req CompleteRequest) (RoomResponse, error) {
	var out RoomResponse
	return out, c.do(ctx, http.MethodPost, "/api/inspection/complete", req, &out)
}

// Skip advances without recording findings.
func (c *Client) Skip(ctx context.Context) (RoomResponse, error) {
	var out RoomResponse
	return out, c.do(ctx, http.MethodPost, "/api/inspection/skip", nil, &out)
}

// Ignore moves a finding to the ignored list.
func (c *Client) Ignore(ctx context.Context, req IgnoreRequest) (IgnoredFinding, error) {
	var out IgnoredFinding
	return out, c.do(ctx, http.MethodPost, "/api/findings/ignore", req, &out)
}

// Restore moves an ignored finding back.
func (c *Client) Restore(ctx context.Context, index int) (Finding, error) {
	var out Finding
	return out, c.do(ctx, http.MethodPost, "/api/findings/ignored/"+strconv.Itoa(index)+"/restore", nil, &out)
}

// Remove deletes an active finding.
func (c *Client) Remove(ctx context.Context, index int) (Finding, error) {
	var out Finding
	return out, c.do(ctx, http.MethodDelete, "/api/findings/"+strconv.Itoa(index), nil, &out)
}

// SetDeposit records a manual deposit.
func (c *Client) SetDeposit(ctx context.Context, amount float64, currency string) (inspection.Deposit, error) {
	var out inspection.Deposit
	return out, c.do(ctx, http.MethodPut, "/api/deposit", DepositRequest{Amount: amount, Currency: currency}, &out)
}

// ExtractLease sends a lease document to the extractor.
func (c *Client) ExtractLease(ctx context.Context, doc inspection.Image) (LeaseResponse, error) {
	var out LeaseResponse
	return out, c.do(ctx, http.MethodPost, "/api/lease", LeaseRequest{Document: doc.Data, MimeType: doc.MimeType}, &out)
}

// Quote requests a repair estimate.
func (c *Client) Quote(ctx context.Context) (inspection.RepairQuote, error) {
	var out inspection.RepairQuote
	return out, c.do(ctx, http.MethodPost, "/api/quote", nil, &out)
}

// Settlement fetches the settlement, computing it when needed.
func (c *Client) Settlement(ctx context.Context) (Settlement, error) {
	var out Settlement
	return out, c.do(ctx, http.MethodGet, "/api/settlement", nil, &out)
}

// Recalculate forces a settlement recomputation.
func (c *Client) Recalculate(ctx context.Context) (Settlement, error) {
	var out Settlement
	return out, c.do(ctx, http.MethodPost, "/api/settlement/recalculate", nil, &out)
}

// Report downloads the XLSX report.
func (c *Client) Report(ctx context.Context) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		SetError(&ErrorResponse{}).
		Get("/api/report.xlsx")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}
	return resp.Body(), nil
}

// ReportText fetches the plain-text session summary.
func (c *Client) ReportText(ctx context.Context) (string, error) {
	resp, err := c.http.R().SetContext(ctx).SetError(&ErrorResponse{}).Get("/api/report.txt")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", responseError(resp)
	}
	return resp.String(), nil
}

// IsUnavailable reports whether err means the daemon is not running.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.As(err, &opErr)
}
