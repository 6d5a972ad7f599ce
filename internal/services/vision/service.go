package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/services"
	"condish/internal/services/llm"
	"condish/internal/services/wire"
)

// Completer is the model transport. *llm.Client satisfies it.
type Completer interface {
	CompleteWithAttachments(ctx context.Context, systemPrompt, userPrompt string, attachments []llm.Attachment) (string, error)
}

// Service implements every collaborator against one model.
type Service struct {
	model  Completer
	logger *slog.Logger
}

// New constructs a Service.
func New(model Completer, logger *slog.Logger) *Service {
	return &Service{model: model, logger: logging.NewComponentLogger(logger, "vision")}
}

// ParseFloorPlan extracts rooms from a floor-plan image or document.
func (s *Service) ParseFloorPlan(ctx context.Context, img inspection.Image) (floorplan.RawPlan, error) {
	content, err := s.model.CompleteWithAttachments(ctx, floorPlanPrompt, "Extract the rooms of this floor plan.", []llm.Attachment{attachment(img)})
	if err != nil {
		return floorplan.RawPlan{}, err
	}
	var resp wire.FloorPlanResponse
	if err := llm.DecodeReply(content, &resp); err != nil {
		return floorplan.RawPlan{}, services.Wrap(services.ErrUnavailable, "vision", "parse floor plan", "undecodable reply", err)
	}
	plan := resp.Plan()
	s.logger.Debug("floor plan parsed", logging.Int("rooms", len(plan.Rooms)))
	return plan, nil
}

// Analyze compares the ticket's frame with its references, or inspects it on
// its own when the room has no references.
func (s *Service) Analyze(ctx context.Context, t inspection.ScanTicket) (inspection.AnalysisResult, error) {
	system := comparePrompt
	var user strings.Builder
	attachments := make([]llm.Attachment, 0, len(t.References)+1)
	if t.Standalone() {
		system = standalonePrompt
		fmt.Fprintf(&user, "Inspect this photo of the %s (%s).", t.RoomName, t.RoomType)
	} else {
		fmt.Fprintf(&user, "Room: %s (%s). The first %d image(s) are the move-in references; the last image is the current move-out photo.",
			t.RoomName, t.RoomType, len(t.References))
		for _, ref := range t.References {
			attachments = append(attachments, attachment(ref))
		}
	}
	attachments = append(attachments, attachment(t.Image))

	content, err := s.model.CompleteWithAttachments(ctx, system, user.String(), attachments)
	if err != nil {
		return inspection.AnalysisResult{}, err
	}
	var resp wire.AnalyzeResponse
	if err := llm.DecodeReply(content, &resp); err != nil {
		logging.WarnWithContext(s.logger, "analyzer reply not json; using keyword heuristic", "analysis_heuristic",
			logging.RoomID(t.RoomID),
			logging.Impact("no damage candidates extracted from this frame"),
			logging.Hint("re-scan the room if damage is visible"),
			logging.Error(err),
		)
		return wire.HeuristicResult(content), nil
	}
	if t.Standalone() {
		return resp.StandaloneResult(), nil
	}
	return resp.ToResult(), nil
}

// Quote estimates repair costs for the ticket's findings.
func (s *Service) Quote(ctx context.Context, t inspection.QuoteTicket) (inspection.RepairQuote, error) {
	req := wire.QuoteRequest{Damages: wire.FromFindings(t.Findings), Country: t.Region, Currency: t.Currency}
	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return inspection.RepairQuote{}, fmt.Errorf("encode quote request: %w", err)
	}
	content, err := s.model.CompleteWithAttachments(ctx, quotePrompt, "Estimate repairs for:\n"+string(body), nil)
	if err != nil {
		return inspection.RepairQuote{}, err
	}
	var resp wire.QuoteResponse
	if err := llm.DecodeReply(content, &resp); err != nil {
		return inspection.RepairQuote{}, services.Wrap(services.ErrUnavailable, "vision", "quote", "undecodable reply", err)
	}
	quote := resp.ToQuote()
	if quote.Currency == "" {
		quote.Currency = t.Currency
	}
	return quote, nil
}

// ComputeDeductions asks the model for a deposit deduction breakdown. The
// model is never told the status field; a decoded reply is marked success.
func (s *Service) ComputeDeductions(ctx context.Context, t inspection.SettlementTicket) (*inspection.EstimatorResult, error) {
	body, err := json.MarshalIndent(wire.NewDepositRequest("", t), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode deposit request: %w", err)
	}
	content, err := s.model.CompleteWithAttachments(ctx, depositPrompt, "Inspection results:\n"+string(body), nil)
	if err != nil {
		return nil, err
	}
	var resp wire.DepositResponse
	if err := llm.DecodeReply(content, &resp); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "vision", "compute deductions", "undecodable reply", err)
	}
	resp.Status = "success"
	return resp.ToEstimatorResult(), nil
}

// ExtractLease reads deposit and party details from a lease document.
func (s *Service) ExtractLease(ctx context.Context, doc inspection.Image) (inspection.LeaseInfo, error) {
	content, err := s.model.CompleteWithAttachments(ctx, leasePrompt, "Extract the lease details.", []llm.Attachment{attachment(doc)})
	if err != nil {
		return inspection.LeaseInfo{}, err
	}
	var resp wire.LeaseResponse
	if err := llm.DecodeReply(content, &resp); err != nil {
		return inspection.LeaseInfo{}, services.Wrap(services.ErrUnavailable, "vision", "extract lease", "undecodable reply", err)
	}
	return resp.ToLeaseInfo(), nil
}

func attachment(img inspection.Image) llm.Attachment {
	mime := strings.TrimSpace(img.MimeType)
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	return llm.Attachment{Data: img.Data, MimeType: mime}
}
