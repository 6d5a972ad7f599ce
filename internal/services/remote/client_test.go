package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/services"
	"condish/internal/services/wire"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, ProjectID: "proj-1", RetryWait: time.Millisecond}, logging.NewNop())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

var frame = inspection.Image{Data: []byte("frame"), MimeType: "image/jpeg"}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, nil)
	require.ErrorIs(t, err, services.ErrConfiguration)
}

func TestAnalyzeRoutesByReferences(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/analyze" {
			var req wire.AnalyzeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Len(t, req.ReferenceImages, 2)
			writeJSON(w, map[string]any{
				"status":    "new_damage_found",
				"same_room": true,
				"damages":   []map[string]any{{"type": "hole", "location": "door", "severity": "major", "is_new": true}},
			})
			return
		}
		writeJSON(w, map[string]any{"status": "damage_found", "same_room": false, "damages": []map[string]any{{"type": "stain", "location": "rug"}}})
	})

	res, err := c.Analyze(context.Background(), inspection.ScanTicket{RoomID: "a", Image: frame, References: []inspection.Image{frame, frame}})
	require.NoError(t, err)
	assert.Equal(t, inspection.AnalysisOK, res.Status)
	require.Len(t, res.Damages, 1)
	assert.Equal(t, inspection.SeverityMajor, res.Damages[0].Severity)

	res, err = c.Analyze(context.Background(), inspection.ScanTicket{RoomID: "a", Image: frame})
	require.NoError(t, err)
	assert.Equal(t, inspection.AnalysisOK, res.Status)
	assert.Len(t, res.Damages, 1)

	assert.Equal(t, []string{"/analyze", "/analyze/standalone"}, paths)
}

func TestAnalyzeWrongRoom(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"status": "wrong_room", "message": "this is the kitchen"})
	})
	res, err := c.Analyze(context.Background(), inspection.ScanTicket{Image: frame, References: []inspection.Image{frame}})
	require.NoError(t, err)
	assert.Equal(t, inspection.AnalysisWrongRoom, res.Status)
	assert.Equal(t, "this is the kitchen", res.Message)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, RetryCount: 1, RetryWait: time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = c.Quote(context.Background(), inspection.QuoteTicket{Currency: "USD"})
	require.ErrorIs(t, err, services.ErrUnavailable)
	assert.Equal(t, services.CategoryUnavailable, services.Classify(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuoteAndDeductions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			var req wire.QuoteRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Canada", req.Country)
			writeJSON(w, map[string]any{"summary": map[string]any{"grand_total": 240.5}})
		case "/deposit/calculate":
			var req wire.DepositRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "proj-1", req.ProjectID)
			assert.Equal(t, 1200.0, req.DepositAmount)
			writeJSON(w, map[string]any{
				"status": "success", "original_deposit": 1200, "total_deductions": 240.5,
				"deposit_return": 959.5, "deductions": []map[string]any{{"item": "hole", "deduction_amount": 240.5}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	q, err := c.Quote(context.Background(), inspection.QuoteTicket{
		Findings: []inspection.Finding{{Type: "hole", Location: "door", RoomName: "Hall"}},
		Region:   "Canada",
		Currency: "CAD",
	})
	require.NoError(t, err)
	assert.Equal(t, 240.5, q.GrandTotal)
	assert.Equal(t, "CAD", q.Currency)

	res, err := c.ComputeDeductions(context.Background(), inspection.SettlementTicket{Inputs: inspection.SettlementInputs{
		Deposit: &inspection.Deposit{Amount: 1200, Currency: "CAD"},
		Quote:   &q,
	}})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 959.5, res.DepositReturn)
}

func TestLeaseAndFloorPlanStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lease/extract-info":
			writeJSON(w, map[string]any{"status": "success", "lease_info": map[string]any{
				"tenant_name":      "Sam",
				"security_deposit": map[string]any{"amount": 750, "currency": "gbp"},
			}})
		case "/floor-plan/parse":
			writeJSON(w, map[string]any{"status": "error", "message": "unreadable plan"})
		}
	})

	info, err := c.ExtractLease(context.Background(), inspection.Image{Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, 750.0, info.DepositAmount)
	assert.Equal(t, "GBP", info.DepositCurrency)
	assert.Equal(t, "Sam", info.TenantName)

	_, err = c.ParseFloorPlan(context.Background(), frame)
	require.ErrorIs(t, err, services.ErrUnavailable)
	assert.Contains(t, err.Error(), "unreadable plan")
}

func TestHealthCheck(t *testing.T) {
	healthy := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]string{"status": "healthy"})
	})
	require.NoError(t, c.HealthCheck(context.Background()))
	healthy = false
	require.ErrorIs(t, c.HealthCheck(context.Background()), services.ErrUnavailable)
}
