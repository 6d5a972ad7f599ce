package inspection

import (
	"fmt"
	"strings"
)

// ScanTicket captures the context a damage analysis was issued in.
type ScanTicket struct {
	Generation uint64
	navEpoch   uint64
	RoomID     string
	RoomName   string
	RoomType   RoomType
	Image      Image
	// References is empty for standalone analysis.
	References []Image
}

// Standalone reports whether the scan has no baseline to compare against.
func (t ScanTicket) Standalone() bool {
	return len(t.References) == 0
}

// ScanOutcome describes how an analysis result was applied.
type ScanOutcome struct {
	Status   AnalysisStatus
	Accepted int
	Buffered int
	Message  string
	Advisory string
}

// BeginScan captures a ticket for analyzing img against the current room.
// References are attached only in check-out mode.
func (s *Session) BeginScan(img Image) (ScanTicket, error) {
	if len(img.Data) == 0 {
		return ScanTicket{}, fmt.Errorf("%w: empty frame", ErrInvalidImage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.currentRoom()
	if !ok {
		return ScanTicket{}, ErrNotInProgress
	}
	t := ScanTicket{
		Generation: s.generation,
		navEpoch:   s.navEpoch,
		RoomID:     room.ID,
		RoomName:   room.Name,
		RoomType:   room.Type,
		Image:      img,
	}
	if s.mode == ModeCheckOut {
		t.References = s.refs.Images(room.ID)
	}
	s.scanOp = OpState{Status: OpPending, UpdatedAt: s.now()}
	return t, nil
}

func (s *Session) scanCurrent(t ScanTicket) bool {
	if t.Generation != s.generation || t.navEpoch != s.navEpoch {
		return false
	}
	room, ok := s.currentRoom()
	return ok && room.ID == t.RoomID
}

// CommitScan applies an analysis result if the ticket is still current.
// ok results feed the candidate buffer, scene mismatches are kept with an
// advisory, wrong-room results are dropped and error results fail the scan.
func (s *Session) CommitScan(t ScanTicket, result AnalysisResult) (ScanOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scanCurrent(t) {
		return ScanOutcome{}, fmt.Errorf("%w: scan for room %q", ErrStaleTicket, t.RoomID)
	}
	out := ScanOutcome{Status: result.Status, Message: result.Message}
	now := s.now()
	switch result.Status {
	case AnalysisOK, AnalysisSceneMismatch:
		before := len(s.buffer)
		merged := append(append([]DamageCandidate(nil), s.buffer...), result.Damages...)
		s.buffer = DedupeCandidates(t.RoomID, merged)
		out.Accepted = len(s.buffer) - before
		if result.Status == AnalysisSceneMismatch {
			out.Advisory = firstNonEmpty(result.Suggestion, result.Message, "frame does not match the reference angle; consider re-capturing")
		}
		s.advisory = out.Advisory
		s.scanOp = OpState{Status: OpSettled, UpdatedAt: now}
	case AnalysisWrongRoom:
		out.Advisory = firstNonEmpty(result.Suggestion, result.Message, "frame appears to show a different room")
		s.advisory = out.Advisory
		s.scanOp = OpState{Status: OpSettled, UpdatedAt: now}
	default:
		out.Status = AnalysisError
		s.scanOp = OpState{Status: OpFailed, Error: firstNonEmpty(result.Message, "analysis failed"), UpdatedAt: now}
	}
	out.Buffered = len(s.buffer)
	return out, nil
}

// FailScan records a collaborator failure for a still-current scan.
func (s *Session) FailScan(t ScanTicket, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scanCurrent(t) {
		return
	}
	s.scanOp = OpState{Status: OpFailed, Error: errString(err), UpdatedAt: s.now()}
}

// QuoteTicket captures the findings a repair estimate was requested for.
type QuoteTicket struct {
	Generation    uint64
	ledgerVersion uint64
	Findings      []Finding
	Region        string
	Currency      string
}

// BeginQuote prepares a repair estimate request. With no active findings a
// zero quote is stored directly and needsEstimator is false.
func (s *Session) BeginQuote(region, defaultCurrency string) (ticket QuoteTicket, needsEstimator bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	currency := strings.ToUpper(strings.TrimSpace(defaultCurrency))
	if s.deposit != nil {
		currency = s.deposit.Currency
	}
	if s.ledger.Len() == 0 {
		s.quote = &RepairQuote{Currency: currency, Notes: "No damages recorded."}
		s.quoteOp = OpState{Status: OpSettled, UpdatedAt: s.now()}
		s.invalidate()
		return QuoteTicket{}, false
	}
	s.quoteOp = OpState{Status: OpPending, UpdatedAt: s.now()}
	return QuoteTicket{
		Generation:    s.generation,
		ledgerVersion: s.ledgerVersion,
		Findings:      s.ledger.Active(),
		Region:        region,
		Currency:      currency,
	}, true
}

func (s *Session) quoteCurrent(t QuoteTicket) bool {
	return t.Generation == s.generation && t.ledgerVersion == s.ledgerVersion
}

// CommitQuote stores the repair estimate if the ledger has not changed since
// the ticket was issued.
func (s *Session) CommitQuote(t QuoteTicket, quote RepairQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.quoteCurrent(t) {
		return fmt.Errorf("%w: repair estimate", ErrStaleTicket)
	}
	quote.Currency = strings.ToUpper(strings.TrimSpace(quote.Currency))
	if quote.Currency == "" {
		quote.Currency = t.Currency
	}
	quote.LineItems = append([]QuoteLine(nil), quote.LineItems...)
	s.quote = &quote
	s.quoteOp = OpState{Status: OpSettled, UpdatedAt: s.now()}
	s.invalidate()
	return nil
}

// FailQuote records a repair estimator failure for a still-current ticket.
func (s *Session) FailQuote(t QuoteTicket, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.quoteCurrent(t) {
		return
	}
	s.quoteOp = OpState{Status: OpFailed, Error: errString(err), UpdatedAt: s.now()}
}

// SettlementTicket captures the inputs a settlement estimation was issued
// for.
type SettlementTicket struct {
	Generation    uint64
	InputsVersion uint64
	Inputs        SettlementInputs
}

// PrepareSettlement returns the cached settlement when it is valid and force
// is false. Otherwise it recomputes: trivial and pending results are stored
// and returned directly, and when the estimator is needed a ticket is
// returned together with the previous (stale) result, if any.
func (s *Session) PrepareSettlement(force bool) (Settlement, *SettlementTicket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if force {
		s.invalidate()
	}
	if s.settlementValid && s.settlement != nil {
		return cloneSettlement(*s.settlement), nil
	}
	inputs := s.settlementInputs()
	result, needsEstimator := Plan(inputs, s.now())
	if !needsEstimator {
		s.storeSettlement(result)
		return cloneSettlement(result), nil
	}
	s.settlementOp = OpState{Status: OpPending, UpdatedAt: s.now()}
	ticket := &SettlementTicket{
		Generation:    s.generation,
		InputsVersion: s.inputsVersion,
		Inputs:        inputs,
	}
	if s.settlement != nil {
		return cloneSettlement(*s.settlement), ticket
	}
	return pending(s.now(), "settlement estimation in progress"), ticket
}

// CommitSettlement resolves the estimator answer (or falls back locally) and
// stores it if neither the session nor the inputs changed since the ticket
// was issued.
func (s *Session) CommitSettlement(t SettlementTicket, result *EstimatorResult, estErr error) (Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Generation != s.generation || t.InputsVersion != s.inputsVersion {
		return Settlement{}, fmt.Errorf("%w: settlement", ErrStaleTicket)
	}
	settlement := Resolve(t.Inputs, result, estErr, s.now())
	s.storeSettlement(settlement)
	if estErr != nil {
		s.settlementOp.Error = errString(estErr)
	}
	return cloneSettlement(settlement), nil
}

func (s *Session) storeSettlement(result Settlement) {
	result.Stale = false
	s.settlement = &result
	s.settlementValid = true
	s.settlementOp = OpState{Status: OpSettled, UpdatedAt: s.now()}
}

// LeaseTicket captures the session a lease extraction was issued for.
type LeaseTicket struct {
	Generation uint64
}

// BeginLease marks a lease extraction as pending.
func (s *Session) BeginLease() LeaseTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaseOp = OpState{Status: OpPending, UpdatedAt: s.now()}
	return LeaseTicket{Generation: s.generation}
}

// CommitLease stores the extraction and sets the deposit from it unless a
// manual deposit exists. applied reports whether the deposit changed.
func (s *Session) CommitLease(t LeaseTicket, info LeaseInfo) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Generation != s.generation {
		return false, fmt.Errorf("%w: lease extraction", ErrStaleTicket)
	}
	stored := info
	stored.Conditions = append([]string(nil), info.Conditions...)
	s.lease = &stored
	s.leaseOp = OpState{Status: OpSettled, UpdatedAt: s.now()}
	if s.deposit != nil && s.deposit.Source == DepositManual {
		return false, nil
	}
	if info.DepositAmount <= 0 {
		return false, nil
	}
	dep, err := newDeposit(info.DepositAmount, info.DepositCurrency, DepositLease)
	if err != nil {
		s.leaseOp.Error = err.Error()
		return false, nil
	}
	s.deposit = &dep
	s.invalidate()
	return true, nil
}

// FailLease records a lease extraction failure for a still-current ticket.
func (s *Session) FailLease(t LeaseTicket, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Generation != s.generation {
		return
	}
	s.leaseOp = OpState{Status: OpFailed, Error: errString(err), UpdatedAt: s.now()}
}

func cloneSettlement(in Settlement) Settlement {
	in.LineItems = append([]Deduction(nil), in.LineItems...)
	return in
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
