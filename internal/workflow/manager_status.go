package workflow

import (
	"context"

	"condish/internal/inspection"
)

// StatusSummary represents lightweight manager diagnostics.
type StatusSummary struct {
	SessionID    string
	Generation   uint64
	Mode         inspection.Mode
	State        inspection.TraversalState
	Rooms        int
	Findings     int
	Persistence  bool
	LastError    string
	PersistError string
	Ops          inspection.OpStates
}

// Status returns the latest manager information.
func (m *Manager) Status(_ context.Context) StatusSummary {
	view := m.session.View()
	m.mu.RLock()
	lastErr := m.lastErr
	persistErr := m.persistErr
	m.mu.RUnlock()

	summary := StatusSummary{
		SessionID:   view.SessionID,
		Generation:  view.Generation,
		Mode:        view.Mode,
		State:       view.State,
		Rooms:       len(view.Rooms),
		Findings:    len(view.Findings),
		Persistence: m.snapshots != nil,
		Ops:         view.Ops,
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if persistErr != nil {
		summary.PersistError = persistErr.Error()
	}
	return summary
}
