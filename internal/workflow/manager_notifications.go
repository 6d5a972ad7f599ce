package workflow

import (
	"context"
	"errors"

	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/notifications"
	"condish/internal/report"
)

func (m *Manager) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("shutting down, notification not sent", logging.String("event", string(event)))
			return
		}
		m.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func (m *Manager) notifyInspectionCompleted(ctx context.Context, view inspection.View) {
	m.publish(ctx, notifications.EventInspectionCompleted, notifications.Payload{
		"rooms":    len(view.Rooms),
		"findings": len(view.Findings),
	})
}

func (m *Manager) notifySettlementReady(ctx context.Context, s inspection.Settlement) {
	if s.Kind != inspection.SettlementPrecise && s.Kind != inspection.SettlementApproximate {
		return
	}
	m.publish(ctx, notifications.EventSettlementReady, notifications.Payload{
		"kind":       string(s.Kind),
		"deposit":    report.FormatMoney(s.OriginalDeposit, s.Currency),
		"deductions": report.FormatMoney(s.TotalDeductions, s.Currency),
		"return":     report.FormatMoney(s.DepositReturn, s.Currency),
	})
}

func (m *Manager) notifyDepositFromLease(ctx context.Context, dep inspection.Deposit) {
	m.publish(ctx, notifications.EventDepositFromLease, notifications.Payload{
		"deposit": report.FormatMoney(dep.Amount, dep.Currency),
	})
}

func (m *Manager) notifyError(ctx context.Context, label string, err error) {
	if err == nil {
		return
	}
	m.publish(ctx, notifications.EventError, notifications.Payload{
		"error":   err,
		"context": label,
	})
}
