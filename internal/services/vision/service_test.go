package vision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/services"
	"condish/internal/services/llm"
)

type fakeModel struct {
	reply       string
	err         error
	system      string
	user        string
	attachments []llm.Attachment
}

func (f *fakeModel) CompleteWithAttachments(_ context.Context, system, user string, attachments []llm.Attachment) (string, error) {
	f.system, f.user, f.attachments = system, user, attachments
	return f.reply, f.err
}

var jpeg = inspection.Image{Data: []byte{0xff, 0xd8, 0xff, 0xe0}, MimeType: "image/jpeg"}

func TestAnalyzeComparesAgainstReferences(t *testing.T) {
	model := &fakeModel{reply: "```json\n{\"status\":\"new_damage_found\",\"same_room\":true,\"damage_found\":true,\"damages\":[{\"type\":\"hole\",\"location\":\"north wall\",\"severity\":\"major\",\"is_new\":true}]}\n```"}
	svc := New(model, logging.NewNop())
	ticket := inspection.ScanTicket{RoomID: "a", RoomName: "Kitchen", Image: jpeg, References: []inspection.Image{jpeg, jpeg}}

	res, err := svc.Analyze(context.Background(), ticket)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if model.system != comparePrompt {
		t.Fatal("expected comparison prompt")
	}
	if len(model.attachments) != 3 {
		t.Fatalf("expected references plus frame, got %d attachments", len(model.attachments))
	}
	if res.Status != inspection.AnalysisOK || len(res.Damages) != 1 || res.Damages[0].Severity != inspection.SeverityMajor {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAnalyzeStandaloneForcesOK(t *testing.T) {
	model := &fakeModel{reply: `{"status":"damage_found","same_room":false,"damages":[{"type":"stain","location":"carpet","severity":"minor"}]}`}
	svc := New(model, nil)
	res, err := svc.Analyze(context.Background(), inspection.ScanTicket{RoomID: "a", Image: jpeg})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if model.system != standalonePrompt || len(model.attachments) != 1 {
		t.Fatal("expected standalone prompt with a single attachment")
	}
	if res.Status != inspection.AnalysisOK || len(res.Damages) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAnalyzeHeuristicOnProse(t *testing.T) {
	svc := New(&fakeModel{reply: "The ceiling shows a water stain near the vent."}, nil)
	res, err := svc.Analyze(context.Background(), inspection.ScanTicket{RoomID: "a", Image: jpeg})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.DamageFound || res.Status != inspection.AnalysisOK {
		t.Fatalf("expected heuristic damage, got %+v", res)
	}
}

func TestAnalyzeTransportError(t *testing.T) {
	boom := services.Wrap(services.ErrUnavailable, "llm", "complete", "", errors.New("503"))
	svc := New(&fakeModel{err: boom}, nil)
	_, err := svc.Analyze(context.Background(), inspection.ScanTicket{RoomID: "a", Image: jpeg})
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestQuoteFillsCurrency(t *testing.T) {
	model := &fakeModel{reply: `{"materials":[{"name":"paint","total":40}],"labor":[{"task":"repaint","total":60}],"summary":{}}`}
	svc := New(model, nil)
	q, err := svc.Quote(context.Background(), inspection.QuoteTicket{
		Findings: []inspection.Finding{{Type: "scuff", Location: "wall", RoomName: "Hall"}},
		Region:   "France",
		Currency: "EUR",
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.GrandTotal != 100 || q.Currency != "EUR" {
		t.Fatalf("unexpected quote %+v", q)
	}
	if !strings.Contains(model.user, `"country": "France"`) {
		t.Fatalf("expected region in prompt, got %s", model.user)
	}
}

func TestComputeDeductionsUndecodable(t *testing.T) {
	svc := New(&fakeModel{reply: "cannot help"}, nil)
	_, err := svc.ComputeDeductions(context.Background(), inspection.SettlementTicket{})
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestComputeDeductionsMarksSuccess(t *testing.T) {
	svc := New(&fakeModel{reply: `{"original_deposit":1000,"total_deductions":150,"deposit_return":850,"deductions":[{"item":"hole","deduction_amount":150}]}`}, nil)
	res, err := svc.ComputeDeductions(context.Background(), inspection.SettlementTicket{})
	if err != nil {
		t.Fatalf("ComputeDeductions: %v", err)
	}
	if res.Status != "success" || res.DepositReturn != 850 || len(res.Deductions) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExtractLeaseAndFloorPlan(t *testing.T) {
	svc := New(&fakeModel{reply: `{"tenant_name":"Ana","security_deposit":{"amount":900,"currency":"usd"}}`}, nil)
	info, err := svc.ExtractLease(context.Background(), inspection.Image{Data: []byte("%PDF-1.4")})
	if err != nil {
		t.Fatalf("ExtractLease: %v", err)
	}
	if info.DepositAmount != 900 || info.DepositCurrency != "USD" {
		t.Fatalf("unexpected lease %+v", info)
	}

	model := &fakeModel{reply: `{"rooms":[{"id":"room_1","name":"Living Room","type":"living"}],"inspection_route":["room_1"]}`}
	plan, err := New(model, nil).ParseFloorPlan(context.Background(), inspection.Image{Data: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}})
	if err != nil {
		t.Fatalf("ParseFloorPlan: %v", err)
	}
	if len(plan.Rooms) != 1 || model.attachments[0].MimeType != "image/png" {
		t.Fatalf("unexpected plan %+v / mime %q", plan, model.attachments[0].MimeType)
	}
}
