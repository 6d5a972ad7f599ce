package inspection

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SettlementKind tells how a settlement was obtained.
type SettlementKind string

const (
	// SettlementPending means inputs are missing; no numbers were produced.
	SettlementPending SettlementKind = "pending"
	// SettlementTrivial means no active findings: the whole deposit is returned.
	SettlementTrivial SettlementKind = "trivial"
	// SettlementPrecise is the settlement estimator's answer, adopted verbatim.
	SettlementPrecise SettlementKind = "precise"
	// SettlementApproximate is the local fallback computation.
	SettlementApproximate SettlementKind = "approximate"
)

// FallbackJustification labels fallback line items.
const FallbackJustification = "Based on repair estimate"

// Deduction is one settlement line item.
type Deduction struct {
	Item             string   `json:"item"`
	Severity         Severity `json:"severity"`
	Amount           float64  `json:"amount"`
	Justification    string   `json:"justification"`
	BeyondNormalWear bool     `json:"beyondNormalWear"`
}

// Settlement is a derived deposit breakdown.
type Settlement struct {
	Kind            SettlementKind
	OriginalDeposit float64
	Currency        string
	TotalDeductions float64
	DepositReturn   float64
	LineItems       []Deduction
	Summary         string
	LandlordNotes   string
	PendingReason   string
	// Stale is set when the inputs changed after this result was computed and
	// a recomputation is outstanding.
	Stale      bool
	ComputedAt time.Time
}

// HasNumbers reports whether the settlement carries monetary figures.
func (s Settlement) HasNumbers() bool {
	return s.Kind != SettlementPending && s.Kind != ""
}

// SettlementInputs are the ledger, deposit and repair estimate a settlement is
// derived from.
type SettlementInputs struct {
	Findings []Finding
	Deposit  *Deposit
	Quote    *RepairQuote
}

// EstimatorResult is the settlement estimator's answer.
type EstimatorResult struct {
	Status          string
	OriginalDeposit float64
	Currency        string
	TotalDeductions float64
	DepositReturn   float64
	Deductions      []Deduction
	Summary         string
	LandlordNotes   string
}

// Plan decides what the settlement for inputs is without the estimator. When
// needsEstimator is true the returned settlement is empty and the caller must
// consult the estimator and then Resolve.
func Plan(inputs SettlementInputs, now time.Time) (settlement Settlement, needsEstimator bool) {
	if inputs.Deposit == nil {
		return pending(now, "awaiting deposit amount"), false
	}
	dep := *inputs.Deposit
	if len(inputs.Findings) == 0 {
		return Settlement{
			Kind:            SettlementTrivial,
			OriginalDeposit: dep.Amount,
			Currency:        dep.Currency,
			TotalDeductions: 0,
			DepositReturn:   dep.Amount,
			Summary:         "No damages recorded; full deposit returned.",
			ComputedAt:      now,
		}, false
	}
	if inputs.Quote == nil {
		return pending(now, "awaiting repair estimate"), false
	}
	if qc := strings.TrimSpace(inputs.Quote.Currency); qc != "" && !strings.EqualFold(qc, dep.Currency) {
		return pending(now, fmt.Sprintf("repair estimate currency %s does not match deposit currency %s", strings.ToUpper(qc), dep.Currency)), false
	}
	return Settlement{}, true
}

// Resolve adopts a well-formed estimator result verbatim and falls back to the
// local computation otherwise. estErr is the estimator call's error, if any.
func Resolve(inputs SettlementInputs, result *EstimatorResult, estErr error, now time.Time) Settlement {
	if estErr == nil && wellFormed(result) {
		currency := strings.ToUpper(strings.TrimSpace(result.Currency))
		if currency == "" {
			currency = inputs.Deposit.Currency
		}
		return Settlement{
			Kind:            SettlementPrecise,
			OriginalDeposit: result.OriginalDeposit,
			Currency:        currency,
			TotalDeductions: result.TotalDeductions,
			DepositReturn:   result.DepositReturn,
			LineItems:       append([]Deduction(nil), result.Deductions...),
			Summary:         result.Summary,
			LandlordNotes:   result.LandlordNotes,
			ComputedAt:      now,
		}
	}
	return Fallback(inputs, now)
}

// Fallback is the local deterministic computation: the deduction is the
// repair estimate capped at the deposit, and each finding gets an even share
// of the estimate.
func Fallback(inputs SettlementInputs, now time.Time) Settlement {
	dep := *inputs.Deposit
	grand := inputs.Quote.GrandTotal
	if grand < 0 || math.IsNaN(grand) || math.IsInf(grand, 0) {
		grand = 0
	}
	total := math.Min(grand, dep.Amount)
	n := len(inputs.Findings)
	share := 0.0
	if n > 0 {
		share = round2(grand / float64(n))
	}
	lines := make([]Deduction, 0, n)
	for _, f := range inputs.Findings {
		lines = append(lines, Deduction{
			Item:             fmt.Sprintf("%s - %s (%s)", f.Type, f.Location, f.RoomName),
			Severity:         f.Severity,
			Amount:           share,
			Justification:    FallbackJustification,
			BeyondNormalWear: true,
		})
	}
	return Settlement{
		Kind:            SettlementApproximate,
		OriginalDeposit: dep.Amount,
		Currency:        dep.Currency,
		TotalDeductions: round2(total),
		DepositReturn:   round2(dep.Amount - total),
		LineItems:       lines,
		Summary:         fmt.Sprintf("Approximate settlement from repair estimate across %d finding(s).", n),
		ComputedAt:      now,
	}
}

func wellFormed(r *EstimatorResult) bool {
	if r == nil || !strings.EqualFold(strings.TrimSpace(r.Status), "success") {
		return false
	}
	for _, v := range []float64{r.OriginalDeposit, r.TotalDeductions, r.DepositReturn} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	for _, d := range r.Deductions {
		if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) || d.Amount < 0 {
			return false
		}
	}
	return true
}

func pending(now time.Time, reason string) Settlement {
	return Settlement{Kind: SettlementPending, PendingReason: reason, Summary: "Calculation pending: " + reason + ".", ComputedAt: now}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
