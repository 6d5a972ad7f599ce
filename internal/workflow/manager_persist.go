package workflow

import (
	"context"
	"errors"

	"condish/internal/logging"
	"condish/internal/store"
)

// persist writes the scalar session state. Failures never fail the calling
// operation; they are logged and reported through Status.
func (m *Manager) persist(ctx context.Context) {
	if m.snapshots == nil {
		return
	}
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	err := m.snapshots.Save(ctx, m.session.Persisted())
	m.mu.Lock()
	m.persistErr = err
	m.mu.Unlock()
	if err == nil {
		return
	}
	impact := "session changes will not survive a restart"
	if errors.Is(err, store.ErrTooLarge) {
		impact = "previous snapshot removed; a restart begins a fresh session"
	}
	logging.WarnWithContext(m.logger, "session snapshot not saved", "session_persist_failed",
		logging.Error(err),
		logging.Impact(impact),
		logging.Hint("check the store backend and store.max_bytes"),
	)
}
