package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"condish/internal/api"
	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/services"
	"condish/internal/testsupport"
	"condish/internal/workflow"
)

type stubBackend struct {
	damages  []inspection.DamageCandidate
	quote    float64
	estimate error
}

func (b *stubBackend) ParseFloorPlan(context.Context, inspection.Image) (floorplan.RawPlan, error) {
	return floorplan.RawPlan{Rooms: []floorplan.RawRoom{{ID: "lounge", Type: "living"}}}, nil
}

func (b *stubBackend) Analyze(context.Context, inspection.ScanTicket) (inspection.AnalysisResult, error) {
	return inspection.AnalysisResult{Status: inspection.AnalysisOK, Damages: b.damages}, nil
}

func (b *stubBackend) Quote(_ context.Context, t inspection.QuoteTicket) (inspection.RepairQuote, error) {
	return inspection.RepairQuote{GrandTotal: b.quote, Currency: t.Currency}, nil
}

func (b *stubBackend) ComputeDeductions(context.Context, inspection.SettlementTicket) (*inspection.EstimatorResult, error) {
	return nil, b.estimate
}

func (b *stubBackend) ExtractLease(context.Context, inspection.Image) (inspection.LeaseInfo, error) {
	return inspection.LeaseInfo{DepositAmount: 1000, DepositCurrency: "USD"}, nil
}

func newTestServer(t *testing.T, collab workflow.Collaborators, opts ...testsupport.ConfigOption) http.Handler {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	manager := workflow.NewManager(cfg, collab, logging.NewNop())
	t.Cleanup(manager.Close)
	d, err := New(cfg, manager, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d.Handler()
}

func call(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func TestInspectionFlowOverHTTP(t *testing.T) {
	backend := &stubBackend{
		damages:  []inspection.DamageCandidate{{Type: "crack", Location: "wall", Severity: inspection.SeverityMajor}},
		quote:    300,
		estimate: errors.New("estimator offline"),
	}
	h := newTestServer(t, workflow.FromBackend(backend))

	w := call(t, h, http.MethodPost, "/api/rooms", api.RoomsRequest{Rooms: []api.RoomInput{
		{ID: "hall", Name: "Hall", Type: "hallway"},
		{ID: "bath", Name: "Bath", Type: "bathroom"},
	}})
	expectStatus(t, w, http.StatusOK)
	if rooms := decode[api.RoomsResponse](t, w); len(rooms.Rooms) != 2 {
		t.Fatalf("unexpected rooms %+v", rooms)
	}

	w = call(t, h, http.MethodGet, "/api/rooms/bath", nil)
	expectStatus(t, w, http.StatusOK)
	detail := decode[api.RoomDetail](t, w)
	if len(detail.Checklist) != 6 || detail.Checklist[3] != "Toilet" {
		t.Fatalf("unexpected checklist %v", detail.Checklist)
	}

	expectStatus(t, call(t, h, http.MethodPut, "/api/deposit", api.DepositRequest{Amount: 1000, Currency: "USD"}), http.StatusOK)
	expectStatus(t, call(t, h, http.MethodPost, "/api/inspection/start", nil), http.StatusOK)

	w = call(t, h, http.MethodPost, "/api/inspection/scan", api.ImageRequest{Image: testsupport.PNGHeader})
	expectStatus(t, w, http.StatusOK)
	if scan := decode[api.ScanResponse](t, w); scan.Status != "ok" || scan.Buffered != 1 {
		t.Fatalf("unexpected scan %+v", scan)
	}

	w = call(t, h, http.MethodPost, "/api/inspection/complete", "{}")
	expectStatus(t, w, http.StatusOK)
	if room := decode[api.RoomResponse](t, w); room.Room.ID != "hall" {
		t.Fatalf("completed wrong room %+v", room)
	}
	expectStatus(t, call(t, h, http.MethodPost, "/api/inspection/skip", nil), http.StatusOK)

	w = call(t, h, http.MethodGet, "/api/session", nil)
	expectStatus(t, w, http.StatusOK)
	view := decode[api.SessionView](t, w)
	if view.State != "complete" || len(view.Findings) != 1 || view.Findings[0].RoomName != "Hall" {
		t.Fatalf("unexpected session %+v", view)
	}

	w = call(t, h, http.MethodPost, "/api/quote", nil)
	expectStatus(t, w, http.StatusOK)

	w = call(t, h, http.MethodGet, "/api/settlement", nil)
	expectStatus(t, w, http.StatusOK)
	settlement := decode[api.Settlement](t, w)
	if settlement.Kind != "approximate" || settlement.DepositReturn != 700 {
		t.Fatalf("unexpected settlement %+v", settlement)
	}

	w = call(t, h, http.MethodGet, "/api/report.xlsx", nil)
	expectStatus(t, w, http.StatusOK)
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatal("report is not a zip container")
	}

	w = call(t, h, http.MethodGet, "/api/report.txt", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Settlement: approximate") {
		t.Fatalf("unexpected text report:\n%s", w.Body.String())
	}

	w = call(t, h, http.MethodGet, "/api/layout", nil)
	expectStatus(t, w, http.StatusOK)
	if layout := decode[api.LayoutResponse](t, w); len(layout.Rooms) != 2 || layout.Rooms[1].Color != "#00BCD4" {
		t.Fatalf("unexpected layout %+v", layout)
	}
}

func TestErrorMapping(t *testing.T) {
	h := newTestServer(t, workflow.Collaborators{})

	cases := []struct {
		name     string
		method   string
		path     string
		body     any
		status   int
		category string
	}{
		{"unknown room", http.MethodGet, "/api/rooms/attic", nil, http.StatusNotFound, "input"},
		{"not started", http.MethodPost, "/api/inspection/skip", nil, http.StatusConflict, "input"},
		{"malformed body", http.MethodPut, "/api/session/mode", `{"mode":`, http.StatusBadRequest, "input"},
		{"bad index", http.MethodDelete, "/api/findings/abc", nil, http.StatusBadRequest, "input"},
		{"index out of range", http.MethodDelete, "/api/findings/3", nil, http.StatusBadRequest, "input"},
		{"no analyzer", http.MethodPost, "/api/floor-plan", api.ImageRequest{Image: testsupport.PNGHeader}, http.StatusBadGateway, "unavailable"},
		{"no rooms", http.MethodPost, "/api/inspection/start", nil, http.StatusConflict, "input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := call(t, h, tc.method, tc.path, tc.body)
			expectStatus(t, w, tc.status)
			body := decode[api.ErrorResponse](t, w)
			if body.Category != tc.category || body.Error == "" {
				t.Fatalf("unexpected error body %+v", body)
			}
		})
	}
}

func TestReferencesRequireCheckIn(t *testing.T) {
	h := newTestServer(t, workflow.FromBackend(&stubBackend{}))
	expectStatus(t, call(t, h, http.MethodPost, "/api/floor-plan", api.ImageRequest{Image: testsupport.PNGHeader}), http.StatusOK)

	w := call(t, h, http.MethodPost, "/api/rooms/lounge/references", api.ImageRequest{Image: testsupport.PNGHeader})
	expectStatus(t, w, http.StatusCreated)
	if ref := decode[api.ReferenceResponse](t, w); ref.References != 1 {
		t.Fatalf("unexpected reference count %+v", ref)
	}

	expectStatus(t, call(t, h, http.MethodPut, "/api/session/mode", api.ModeRequest{Mode: "checkout"}), http.StatusOK)
	expectStatus(t, call(t, h, http.MethodPost, "/api/rooms/lounge/references", api.ImageRequest{Image: testsupport.PNGHeader}), http.StatusConflict)
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestServer(t, workflow.Collaborators{}, testsupport.WithAPIToken("secret"))

	w := call(t, h, http.MethodGet, "/api/session", nil)
	expectStatus(t, w, http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		inspection.ErrRoomNotFound:                                     http.StatusNotFound,
		inspection.ErrStaleTicket:                                      http.StatusConflict,
		inspection.ErrInvalidDeposit:                                   http.StatusBadRequest,
		services.Wrap(services.ErrUnavailable, "x", "y", "", nil):      http.StatusBadGateway,
		services.Wrap(services.ErrTimeout, "x", "y", "", nil):          http.StatusGatewayTimeout,
		services.Wrap(services.ErrIntegrity, "store", "load", "", nil): http.StatusInternalServerError,
		errors.New("boom"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := statusFor(err); got != want {
			t.Errorf("statusFor(%v) = %d, want %d", err, got, want)
		}
	}
}
