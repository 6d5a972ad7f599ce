package report

import (
	"fmt"
	"strings"

	"condish/internal/inspection"
	"condish/internal/textutil"
)

// KindLabel describes how a settlement was obtained.
func KindLabel(s *inspection.Settlement) string {
	if s == nil {
		return "not computed"
	}
	var label string
	switch s.Kind {
	case inspection.SettlementPrecise:
		label = "precise (settlement estimator)"
	case inspection.SettlementApproximate:
		label = "approximate (estimator unavailable; based on the repair estimate)"
	case inspection.SettlementTrivial:
		label = "no deductions (no active findings)"
	default:
		label = "pending"
		if s.PendingReason != "" {
			label += ": " + s.PendingReason
		}
	}
	if s.Stale {
		label += " [stale, inputs changed]"
	}
	return label
}

// Text renders a plain-text summary of the session for terminals and logs.
func Text(v inspection.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%s)\n", v.SessionID, v.Mode)
	fmt.Fprintf(&b, "Rooms: %d, inspected %d (%.0f%%), state %s\n", len(v.Rooms), len(v.Inspected), v.Progress, v.State)
	fmt.Fprintf(&b, "Findings: %d active, %d ignored\n", len(v.Findings), len(v.Ignored))
	for _, f := range v.Findings {
		fmt.Fprintf(&b, "  - [%s] %s at %s (%s)\n", f.Severity, f.Type, f.Location, f.RoomName)
	}

	currency := ""
	if v.Deposit != nil {
		currency = v.Deposit.Currency
		fmt.Fprintf(&b, "Deposit: %s (%s)\n", FormatMoney(v.Deposit.Amount, currency), v.Deposit.Source)
	} else {
		b.WriteString("Deposit: not set\n")
	}
	if v.Quote != nil {
		fmt.Fprintf(&b, "Repair estimate: %s\n", FormatMoney(v.Quote.GrandTotal, v.Quote.Currency))
	} else {
		b.WriteString("Repair estimate: not requested\n")
	}

	s := v.Settlement
	fmt.Fprintf(&b, "Settlement: %s\n", KindLabel(s))
	if s == nil || !s.HasNumbers() {
		return b.String()
	}
	if s.Currency != "" {
		currency = s.Currency
	}
	fmt.Fprintf(&b, "  Total deductions: %s\n", FormatMoney(s.TotalDeductions, currency))
	fmt.Fprintf(&b, "  Deposit return:   %s\n", FormatMoney(s.DepositReturn, currency))
	for _, line := range s.LineItems {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", textutil.TitleCase(line.Item), FormatMoney(line.Amount, currency), line.Justification)
	}
	if s.Summary != "" {
		fmt.Fprintf(&b, "  %s\n", s.Summary)
	}
	return b.String()
}
