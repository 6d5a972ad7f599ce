package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"condish/internal/config"
	"condish/internal/logging"
	"condish/internal/preflight"
	"condish/internal/store"
	"condish/internal/workflow"
)

// Daemon owns the workflow manager and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *workflow.Manager
	kv      store.KV
	remote  preflight.HealthChecker

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.RWMutex
	preflight []preflight.Result
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	LockFilePath  string
	StoreBackend  string
	Collaborators string
	Session       workflow.StatusSummary
	Preflight     []preflight.Result
}

// Option configures optional daemon dependencies.
type Option func(*Daemon)

// WithStore hands the daemon the session store so it can be pinged by
// preflight and closed on shutdown.
func WithStore(kv store.KV) Option {
	return func(d *Daemon) { d.kv = kv }
}

// WithRemote registers the remote inspection API for health checks.
func WithRemote(hc preflight.HealthChecker) Option {
	return func(d *Daemon) { d.remote = hc }
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, manager *workflow.Manager, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || manager == nil {
		return nil, errors.New("daemon requires config and workflow manager")
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		manager:  manager,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, restores the session, runs preflight and
// starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another condish daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.manager.Open(d.ctx); err != nil {
		d.abortStart()
		return fmt.Errorf("open session: %w", err)
	}
	d.RefreshPreflight(d.ctx)
	if err := d.api.start(d.ctx); err != nil {
		d.abortStart()
		return err
	}

	d.running.Store(true)
	d.logger.Info("condish daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) abortStart() {
	_ = d.lock.Unlock()
	d.cancel()
	d.ctx = nil
	d.cancel = nil
}

// Stop stops the API server, cancels outstanding collaborator calls and
// releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.manager.Close()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.Hint("remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("condish daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.kv != nil {
		return d.kv.Close()
	}
	return nil
}

// Addr returns the API listen address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Handler exposes the API routes, mainly for tests.
func (d *Daemon) Handler() http.Handler {
	return d.api.server.Handler
}

// RefreshPreflight reruns the preflight checks and caches the results.
func (d *Daemon) RefreshPreflight(ctx context.Context) []preflight.Result {
	targets := preflight.Targets{Remote: d.remote}
	if d.kv != nil {
		targets.Store = d.kv
	}
	results := preflight.RunAll(ctx, d.cfg, targets)
	for _, failed := range preflight.Failed(results) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.Impact("operations depending on "+failed.Name+" may fail"),
		)
	}
	d.mu.Lock()
	d.preflight = results
	d.mu.Unlock()
	return results
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	d.mu.RLock()
	results := append([]preflight.Result(nil), d.preflight...)
	d.mu.RUnlock()
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		LockFilePath:  d.lockPath,
		StoreBackend:  d.cfg.Store.Backend,
		Collaborators: d.cfg.Inspection.Collaborators,
		Session:       d.manager.Status(ctx),
		Preflight:     results,
	}
}
