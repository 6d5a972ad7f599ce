package inspection

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeFindings() []Finding {
	return []Finding{
		{Type: "crack", Location: "wall", RoomID: "a", RoomName: "A", Severity: SeverityMajor},
		{Type: "stain", Location: "carpet", RoomID: "a", RoomName: "A", Severity: SeverityMinor},
		{Type: "dent", Location: "door", RoomID: "b", RoomName: "B", Severity: SeverityModerate},
	}
}

func TestPlanPendingWithoutInputs(t *testing.T) {
	s, needs := Plan(SettlementInputs{Findings: threeFindings()}, fixedNow)
	assert.False(t, needs)
	assert.Equal(t, SettlementPending, s.Kind)
	assert.False(t, s.HasNumbers())

	s, needs = Plan(SettlementInputs{
		Findings: threeFindings(),
		Deposit:  &Deposit{Amount: 1000, Currency: "USD"},
	}, fixedNow)
	assert.False(t, needs)
	assert.Equal(t, SettlementPending, s.Kind)
	assert.Contains(t, s.PendingReason, "repair estimate")
}

func TestPlanTrivialIgnoresQuote(t *testing.T) {
	s, needs := Plan(SettlementInputs{
		Deposit: &Deposit{Amount: 1000, Currency: "USD"},
		Quote:   &RepairQuote{GrandTotal: 500},
	}, fixedNow)
	require.False(t, needs)
	assert.Equal(t, SettlementTrivial, s.Kind)
	assert.Zero(t, s.TotalDeductions)
	assert.Equal(t, 1000.0, s.DepositReturn)
}

func TestPlanCurrencyMismatchIsPending(t *testing.T) {
	s, needs := Plan(SettlementInputs{
		Findings: threeFindings(),
		Deposit:  &Deposit{Amount: 1000, Currency: "USD"},
		Quote:    &RepairQuote{GrandTotal: 300, Currency: "eur"},
	}, fixedNow)
	assert.False(t, needs)
	assert.Equal(t, SettlementPending, s.Kind)
	assert.Contains(t, s.PendingReason, "EUR")
}

func TestFallbackWhenEstimatorUnavailable(t *testing.T) {
	inputs := SettlementInputs{
		Findings: threeFindings(),
		Deposit:  &Deposit{Amount: 1000, Currency: "USD"},
		Quote:    &RepairQuote{GrandTotal: 300, Currency: "USD"},
	}
	_, needs := Plan(inputs, fixedNow)
	require.True(t, needs)

	s := Resolve(inputs, nil, errors.New("estimator down"), fixedNow)
	assert.Equal(t, SettlementApproximate, s.Kind)
	assert.Equal(t, 300.0, s.TotalDeductions)
	assert.Equal(t, 700.0, s.DepositReturn)
	require.Len(t, s.LineItems, 3)
	for _, line := range s.LineItems {
		assert.InDelta(t, 100, line.Amount, 0.01)
		assert.Equal(t, FallbackJustification, line.Justification)
	}
}

func TestFallbackCapsAtDeposit(t *testing.T) {
	inputs := SettlementInputs{
		Findings: threeFindings()[:2],
		Deposit:  &Deposit{Amount: 500, Currency: "USD"},
		Quote:    &RepairQuote{GrandTotal: 800},
	}
	s := Fallback(inputs, fixedNow)
	assert.Equal(t, 500.0, s.TotalDeductions)
	assert.Zero(t, s.DepositReturn)
	assert.Equal(t, 400.0, s.LineItems[0].Amount)
}

func TestResolveAdoptsWellFormedResult(t *testing.T) {
	inputs := SettlementInputs{
		Findings: threeFindings(),
		Deposit:  &Deposit{Amount: 1000, Currency: "USD"},
		Quote:    &RepairQuote{GrandTotal: 300},
	}
	result := &EstimatorResult{
		Status:          "success",
		OriginalDeposit: 1000,
		TotalDeductions: 180,
		DepositReturn:   820,
		Deductions:      []Deduction{{Item: "crack", Amount: 180, Justification: "beyond wear"}},
		Summary:         "one chargeable item",
	}
	s := Resolve(inputs, result, nil, fixedNow)
	assert.Equal(t, SettlementPrecise, s.Kind)
	assert.Equal(t, 180.0, s.TotalDeductions)
	assert.Equal(t, "USD", s.Currency)
	assert.Len(t, s.LineItems, 1)
}

func TestResolveFallsBackOnMalformedResult(t *testing.T) {
	inputs := SettlementInputs{
		Findings: threeFindings(),
		Deposit:  &Deposit{Amount: 1000, Currency: "USD"},
		Quote:    &RepairQuote{GrandTotal: 300},
	}
	for name, result := range map[string]*EstimatorResult{
		"error status":  {Status: "error"},
		"nan total":     {Status: "success", TotalDeductions: math.NaN()},
		"negative line": {Status: "success", Deductions: []Deduction{{Amount: -4}}},
	} {
		t.Run(name, func(t *testing.T) {
			s := Resolve(inputs, result, nil, fixedNow)
			assert.Equal(t, SettlementApproximate, s.Kind)
			assert.Equal(t, 700.0, s.DepositReturn)
		})
	}
}
