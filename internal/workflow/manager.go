package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"condish/internal/config"
	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/notifications"
	"condish/internal/services"
	"condish/internal/store"
)

// Manager owns the inspection session. It issues collaborator calls under
// generation tickets, commits or discards their results, persists the scalar
// session state and emits notifications.
type Manager struct {
	cfg       *config.Config
	session   *inspection.Session
	collab    Collaborators
	snapshots *store.Snapshots
	notifier  notifications.Service
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time

	region            string
	defaultCurrency   string
	analyzeTimeout    time.Duration
	settlementTimeout time.Duration

	bg     context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	persistMu  sync.Mutex
	mu         sync.RWMutex
	lastErr    error
	persistErr error
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithSnapshots enables persistence of the scalar session state.
func WithSnapshots(s *store.Snapshots) ManagerOption {
	return func(m *Manager) { m.snapshots = s }
}

// WithNotifier overrides the notifier built from config.
func WithNotifier(n notifications.Service) ManagerOption {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithClock overrides the time source of the manager and its session.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides session ID generation.
func WithIDGenerator(gen func() string) ManagerOption {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// NewManager constructs a manager with a fresh session. Call Open to restore
// a persisted session.
func NewManager(cfg *config.Config, collab Collaborators, logger *slog.Logger, opts ...ManagerOption) *Manager {
	bg, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:               cfg,
		collab:            collab,
		logger:            logging.NewComponentLogger(logger, "workflow-manager"),
		notifier:          notifications.NewService(cfg),
		newID:             uuid.NewString,
		now:               time.Now,
		region:            cfg.Inspection.Region,
		defaultCurrency:   cfg.Inspection.DefaultCurrency,
		analyzeTimeout:    cfg.AnalyzeTimeout(),
		settlementTimeout: cfg.SettlementTimeout(),
		bg:                bg,
		cancel:            cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.session = inspection.NewSession(m.newID(), inspection.WithClock(m.now))
	return m
}

// Open restores the persisted session, if any. Oversize or corrupt snapshots
// are discarded and the session starts fresh; that is logged, not returned.
func (m *Manager) Open(ctx context.Context) error {
	if m.snapshots == nil {
		return nil
	}
	st, found, err := m.snapshots.Load(ctx)
	switch {
	case errors.Is(err, services.ErrIntegrity):
		logging.WarnWithContext(m.logger, "persisted session discarded", "session_restore_discarded",
			logging.Error(err),
			logging.Impact("starting a fresh session; rooms and deposit must be entered again"),
			logging.Hint("reload the floor plan"),
		)
		m.persist(ctx)
		return nil
	case err != nil:
		return err
	case !found:
		m.logger.Info("no persisted session; starting fresh", logging.String(logging.FieldSessionID, m.session.ID()))
		m.persist(ctx)
		return nil
	}
	if strings.TrimSpace(st.SessionID) == "" {
		st.SessionID = m.newID()
	}
	if err := m.session.RestorePersisted(st); err != nil {
		logging.WarnWithContext(m.logger, "persisted session rejected", "session_restore_invalid",
			logging.Error(err),
			logging.Impact("starting a fresh session"),
		)
		_ = m.snapshots.Clear(ctx)
		m.persist(ctx)
		return nil
	}
	m.logger.Info("session restored",
		logging.String(logging.FieldSessionID, st.SessionID),
		logging.Int("rooms", len(st.Rooms)),
		logging.Bool("deposit", st.Deposit != nil),
	)
	return nil
}

// Close cancels background collaborator calls and waits for them to finish.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// Wait blocks until background collaborator calls have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// View returns a consistent snapshot of the session.
func (m *Manager) View() inspection.View {
	return m.session.View()
}

// Session exposes the underlying session for read-only helpers.
func (m *Manager) Session() *inspection.Session {
	return m.session
}

func (m *Manager) sessionLogger(ctx context.Context) *slog.Logger {
	ctx = services.WithSessionID(ctx, m.session.ID())
	return logging.WithContext(ctx, m.logger).With(logging.Generation(m.session.Generation()))
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// async runs fn on the manager's background context.
func (m *Manager) async(fn func(ctx context.Context)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn(m.bg)
	}()
}
