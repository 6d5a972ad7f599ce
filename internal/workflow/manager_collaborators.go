package workflow

import (
	"context"
	"errors"
	"time"

	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/services"
)

// Scan analyzes a frame of the current room and merges the result into the
// candidate buffer. A result that arrives after the cursor moved or the
// session was reset is discarded with ErrStaleTicket.
func (m *Manager) Scan(ctx context.Context, img inspection.Image) (inspection.ScanOutcome, error) {
	ticket, err := m.session.BeginScan(img)
	if err != nil {
		return inspection.ScanOutcome{}, err
	}
	return m.runScan(ctx, ticket)
}

// ScanAsync issues the scan and returns immediately; progress is visible in
// the view's operation states.
func (m *Manager) ScanAsync(img inspection.Image) error {
	ticket, err := m.session.BeginScan(img)
	if err != nil {
		return err
	}
	m.async(func(ctx context.Context) {
		_, _ = m.runScan(ctx, ticket)
	})
	return nil
}

func (m *Manager) runScan(ctx context.Context, ticket inspection.ScanTicket) (inspection.ScanOutcome, error) {
	ctx = services.WithRoomID(ctx, ticket.RoomID)
	if m.collab.Damage == nil {
		err := services.Wrap(services.ErrUnavailable, "workflow", "scan", "no damage analyzer configured", nil)
		m.session.FailScan(ticket, err)
		return inspection.ScanOutcome{}, err
	}
	started := time.Now()
	callCtx, cancel := m.callContext(ctx, m.analyzeTimeout)
	result, err := m.collab.Damage.Analyze(callCtx, ticket)
	cancel()
	logger := m.sessionLogger(ctx).With(logging.RoomName(ticket.RoomName))
	if err != nil {
		m.session.FailScan(ticket, err)
		m.collaboratorFailed(ctx, "damage analysis", err)
		return inspection.ScanOutcome{}, err
	}
	outcome, err := m.session.CommitScan(ticket, result)
	if err != nil {
		logger.Info("scan result discarded", logging.Error(err))
		return inspection.ScanOutcome{}, err
	}
	logger.Info("scan analyzed",
		logging.String("status", string(outcome.Status)),
		logging.Bool("standalone", ticket.Standalone()),
		logging.Int("accepted", outcome.Accepted),
		logging.Int("buffered", outcome.Buffered),
		logging.Duration("elapsed", time.Since(started)),
	)
	return outcome, nil
}

// RequestQuote asks the repair estimator to price the active findings.
func (m *Manager) RequestQuote(ctx context.Context) (inspection.RepairQuote, error) {
	ticket, needs := m.session.BeginQuote(m.region, m.defaultCurrency)
	if !needs {
		quote, _ := m.session.Quote()
		return quote, nil
	}
	return m.runQuote(ctx, ticket)
}

// RequestQuoteAsync issues the repair estimate in the background.
func (m *Manager) RequestQuoteAsync() {
	ticket, needs := m.session.BeginQuote(m.region, m.defaultCurrency)
	if !needs {
		return
	}
	m.async(func(ctx context.Context) {
		_, _ = m.runQuote(ctx, ticket)
	})
}

func (m *Manager) runQuote(ctx context.Context, ticket inspection.QuoteTicket) (inspection.RepairQuote, error) {
	if m.collab.Repairs == nil {
		err := services.Wrap(services.ErrUnavailable, "workflow", "quote", "no repair estimator configured", nil)
		m.session.FailQuote(ticket, err)
		return inspection.RepairQuote{}, err
	}
	callCtx, cancel := m.callContext(ctx, m.settlementTimeout)
	quote, err := m.collab.Repairs.Quote(callCtx, ticket)
	cancel()
	if err != nil {
		m.session.FailQuote(ticket, err)
		m.collaboratorFailed(ctx, "repair estimate", err)
		return inspection.RepairQuote{}, err
	}
	if err := m.session.CommitQuote(ticket, quote); err != nil {
		m.sessionLogger(ctx).Info("repair estimate discarded", logging.Error(err))
		return inspection.RepairQuote{}, err
	}
	stored, _ := m.session.Quote()
	m.sessionLogger(ctx).Info("repair estimate stored",
		logging.Float64("grand_total", stored.GrandTotal),
		logging.String("currency", stored.Currency),
		logging.Int("findings", len(ticket.Findings)),
	)
	return stored, nil
}

// Settlement returns the deposit settlement, computing it when the cache is
// invalid or force is set. Estimator failures fall back to the local
// computation and never surface as errors.
func (m *Manager) Settlement(ctx context.Context, force bool) (inspection.Settlement, error) {
	current, ticket := m.session.PrepareSettlement(force)
	if ticket == nil {
		return current, nil
	}
	return m.runSettlement(ctx, *ticket)
}

// SettlementAsync starts a recomputation when one is needed and returns the
// result known right now, which may be stale or pending.
func (m *Manager) SettlementAsync(force bool) inspection.Settlement {
	current, ticket := m.session.PrepareSettlement(force)
	if ticket == nil {
		return current
	}
	t := *ticket
	m.async(func(ctx context.Context) {
		_, _ = m.runSettlement(ctx, t)
	})
	return current
}

func (m *Manager) runSettlement(ctx context.Context, ticket inspection.SettlementTicket) (inspection.Settlement, error) {
	var (
		result *inspection.EstimatorResult
		estErr error
	)
	if m.collab.Settlements == nil {
		estErr = services.Wrap(services.ErrUnavailable, "workflow", "settlement", "no settlement estimator configured", nil)
	} else {
		callCtx, cancel := m.callContext(ctx, m.settlementTimeout)
		result, estErr = m.collab.Settlements.ComputeDeductions(callCtx, ticket)
		cancel()
	}
	logger := m.sessionLogger(ctx)
	if estErr != nil {
		logging.WarnWithContext(logger, "settlement estimator failed; using local estimate", "settlement_fallback",
			logging.Error(estErr),
			logging.Impact("deductions are split evenly from the repair estimate"),
			logging.Hint("check the settlement estimator and retry with force"),
		)
	}
	settlement, err := m.session.CommitSettlement(ticket, result, estErr)
	if err != nil {
		logger.Info("settlement discarded", logging.Error(err))
		return inspection.Settlement{}, err
	}
	logger.Info("settlement computed",
		logging.String("kind", string(settlement.Kind)),
		logging.Float64("deductions", settlement.TotalDeductions),
		logging.Float64("return", settlement.DepositReturn),
	)
	m.notifySettlementReady(ctx, settlement)
	return settlement, nil
}

// ExtractLease reads a lease document. Its deposit becomes the session
// deposit unless one was entered manually. applied reports whether the
// deposit changed.
func (m *Manager) ExtractLease(ctx context.Context, doc inspection.Image) (info inspection.LeaseInfo, applied bool, err error) {
	if len(doc.Data) == 0 {
		return inspection.LeaseInfo{}, false, inspection.ErrInvalidImage
	}
	return m.runLease(ctx, m.session.BeginLease(), doc)
}

// ExtractLeaseAsync runs the lease extraction in the background.
func (m *Manager) ExtractLeaseAsync(doc inspection.Image) error {
	if len(doc.Data) == 0 {
		return inspection.ErrInvalidImage
	}
	ticket := m.session.BeginLease()
	m.async(func(ctx context.Context) {
		_, _, _ = m.runLease(ctx, ticket, doc)
	})
	return nil
}

func (m *Manager) runLease(ctx context.Context, ticket inspection.LeaseTicket, doc inspection.Image) (inspection.LeaseInfo, bool, error) {
	if m.collab.Leases == nil {
		err := services.Wrap(services.ErrUnavailable, "workflow", "lease", "no lease extractor configured", nil)
		m.session.FailLease(ticket, err)
		return inspection.LeaseInfo{}, false, err
	}
	callCtx, cancel := m.callContext(ctx, m.analyzeTimeout)
	info, err := m.collab.Leases.ExtractLease(callCtx, doc)
	cancel()
	if err != nil {
		m.session.FailLease(ticket, err)
		m.collaboratorFailed(ctx, "lease extraction", err)
		return inspection.LeaseInfo{}, false, err
	}
	if info.DepositAmount > 0 && info.DepositCurrency == "" {
		info.DepositCurrency = m.defaultCurrency
	}
	applied, err := m.session.CommitLease(ticket, info)
	if err != nil {
		m.sessionLogger(ctx).Info("lease extraction discarded", logging.Error(err))
		return inspection.LeaseInfo{}, false, err
	}
	m.sessionLogger(ctx).Info("lease extracted",
		logging.Bool("deposit_applied", applied),
		logging.Float64("deposit", info.DepositAmount),
	)
	if applied {
		m.persist(ctx)
		if dep, ok := m.session.Deposit(); ok {
			m.notifyDepositFromLease(ctx, dep)
		}
	}
	return info, applied, nil
}

// callContext bounds a collaborator call. It also ends when the manager is
// closed.
func (m *Manager) callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = services.WithSessionID(ctx, m.session.ID())
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	stop := context.AfterFunc(m.bg, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (m *Manager) collaboratorFailed(ctx context.Context, label string, err error) {
	m.setLastError(err)
	attrs := []logging.Attr{
		logging.Error(err),
		logging.String("operation", label),
		logging.Impact(label+" did not complete"),
	}
	if errors.Is(err, services.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		attrs = append(attrs, logging.Hint("increase the inspection timeouts or retry"))
	} else {
		attrs = append(attrs, logging.Hint("check collaborator connectivity and retry"))
	}
	logging.WarnWithContext(m.sessionLogger(ctx), "collaborator call failed", "collaborator_failed", attrs...)
	m.notifyError(ctx, label, err)
}
