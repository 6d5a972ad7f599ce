package wire

import (
	"strings"

	"condish/internal/inspection"
)

// QuoteRequest is the repair estimator input.
type QuoteRequest struct {
	Damages       []Damage `json:"damages"`
	Country       string   `json:"country"`
	Currency      string   `json:"currency"`
	DepositAmount *float64 `json:"deposit_amount,omitempty"`
}

// Material is one material line of a repair quote.
type Material struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	ForDamage string  `json:"for_damage"`
}

// Labor is one labor line of a repair quote.
type Labor struct {
	Task       string  `json:"task"`
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
	Total      float64 `json:"total"`
	WorkerType string  `json:"worker_type"`
}

// QuoteSummary carries the quote totals.
type QuoteSummary struct {
	MaterialsTotal float64 `json:"materials_total"`
	LaborTotal     float64 `json:"labor_total"`
	Subtotal       float64 `json:"subtotal"`
	GrandTotal     float64 `json:"grand_total"`
}

// QuoteResponse is the repair estimator reply.
type QuoteResponse struct {
	Status    string       `json:"status,omitempty"`
	Currency  string       `json:"currency"`
	Materials []Material   `json:"materials"`
	Labor     []Labor      `json:"labor"`
	Summary   QuoteSummary `json:"summary"`
	Notes     string       `json:"notes,omitempty"`
}

// ToQuote converts the reply. When the summary has no grand total it is
// rebuilt from the line totals.
func (r QuoteResponse) ToQuote() inspection.RepairQuote {
	q := inspection.RepairQuote{
		MaterialsTotal: r.Summary.MaterialsTotal,
		LaborTotal:     r.Summary.LaborTotal,
		GrandTotal:     r.Summary.GrandTotal,
		Currency:       strings.ToUpper(strings.TrimSpace(r.Currency)),
		Notes:          strings.TrimSpace(r.Notes),
	}
	var materials, labor float64
	for _, m := range r.Materials {
		materials += m.Total
		q.LineItems = append(q.LineItems, inspection.QuoteLine{
			Kind: "material", Description: m.Name, Quantity: m.Quantity, Unit: m.Unit,
			UnitPrice: m.UnitPrice, Total: m.Total, ForDamage: m.ForDamage,
		})
	}
	for _, l := range r.Labor {
		labor += l.Total
		q.LineItems = append(q.LineItems, inspection.QuoteLine{
			Kind: "labor", Description: l.Task, Quantity: l.Hours, Unit: "hour",
			UnitPrice: l.HourlyRate, Total: l.Total, ForDamage: l.WorkerType,
		})
	}
	if q.MaterialsTotal == 0 {
		q.MaterialsTotal = materials
	}
	if q.LaborTotal == 0 {
		q.LaborTotal = labor
	}
	if q.GrandTotal == 0 {
		q.GrandTotal = q.MaterialsTotal + q.LaborTotal
	}
	return q
}

// DepositRequest is the settlement estimator input.
type DepositRequest struct {
	ProjectID     string         `json:"project_id"`
	Damages       []Damage       `json:"damages"`
	DepositAmount float64        `json:"deposit_amount"`
	Currency      string         `json:"currency"`
	RepairQuote   *QuoteResponse `json:"repair_quote,omitempty"`
}

// DeductionItem is one line of a settlement estimator reply.
type DeductionItem struct {
	Item               string  `json:"item"`
	DamageSeverity     string  `json:"damage_severity"`
	DeductionAmount    float64 `json:"deduction_amount"`
	Justification      string  `json:"justification"`
	IsBeyondNormalWear bool    `json:"is_beyond_normal_wear"`
}

// DepositResponse is the settlement estimator reply.
type DepositResponse struct {
	Status          string          `json:"status"`
	Message         string          `json:"message,omitempty"`
	OriginalDeposit float64         `json:"original_deposit"`
	Currency        string          `json:"currency"`
	Deductions      []DeductionItem `json:"deductions"`
	TotalDeductions float64         `json:"total_deductions"`
	DepositReturn   float64         `json:"deposit_return"`
	Summary         string          `json:"summary"`
	LandlordNotes   string          `json:"landlord_notes,omitempty"`
	DisputedItems   []string        `json:"disputed_items,omitempty"`
}

// ToEstimatorResult converts the reply. Well-formedness is judged by the
// settlement calculator, not here.
func (r DepositResponse) ToEstimatorResult() *inspection.EstimatorResult {
	out := &inspection.EstimatorResult{
		Status:          strings.TrimSpace(r.Status),
		OriginalDeposit: r.OriginalDeposit,
		Currency:        r.Currency,
		TotalDeductions: r.TotalDeductions,
		DepositReturn:   r.DepositReturn,
		Summary:         strings.TrimSpace(r.Summary),
		LandlordNotes:   strings.TrimSpace(r.LandlordNotes),
	}
	for _, d := range r.Deductions {
		out.Deductions = append(out.Deductions, inspection.Deduction{
			Item:             strings.TrimSpace(d.Item),
			Severity:         inspection.ParseSeverity(d.DamageSeverity),
			Amount:           d.DeductionAmount,
			Justification:    strings.TrimSpace(d.Justification),
			BeyondNormalWear: d.IsBeyondNormalWear,
		})
	}
	return out
}

// NewDepositRequest builds the settlement estimator input from a ticket.
func NewDepositRequest(projectID string, t inspection.SettlementTicket) DepositRequest {
	req := DepositRequest{
		ProjectID: projectID,
		Damages:   FromFindings(t.Inputs.Findings),
	}
	if t.Inputs.Deposit != nil {
		req.DepositAmount = t.Inputs.Deposit.Amount
		req.Currency = t.Inputs.Deposit.Currency
	}
	if q := t.Inputs.Quote; q != nil {
		req.RepairQuote = &QuoteResponse{
			Currency: q.Currency,
			Notes:    q.Notes,
			Summary: QuoteSummary{
				MaterialsTotal: q.MaterialsTotal,
				LaborTotal:     q.LaborTotal,
				Subtotal:       q.MaterialsTotal + q.LaborTotal,
				GrandTotal:     q.GrandTotal,
			},
		}
	}
	return req
}
