package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"condish/internal/inspection"
	"condish/internal/services"
)

// SnapshotVersion is written into every snapshot. Snapshots with another
// version are treated as corrupt.
const SnapshotVersion = 1

// DefaultMaxBytes bounds a single snapshot when no limit is configured.
const DefaultMaxBytes = 4 << 20

var (
	// ErrTooLarge reports a snapshot above the configured size bound.
	ErrTooLarge = fmt.Errorf("%w: snapshot exceeds size bound", services.ErrIntegrity)
	// ErrCorrupt reports a snapshot that cannot be decoded.
	ErrCorrupt = fmt.Errorf("%w: snapshot is corrupt", services.ErrIntegrity)
)

type snapshot struct {
	Version   int                 `json:"version"`
	SessionID string              `json:"sessionId"`
	Mode      inspection.Mode     `json:"mode"`
	Rooms     []inspection.Room   `json:"rooms"`
	Deposit   *inspection.Deposit `json:"deposit,omitempty"`
	SavedAt   time.Time           `json:"savedAt"`
}

// Snapshots persists the scalar session state under a single key.
type Snapshots struct {
	kv       KV
	key      string
	maxBytes int
	now      func() time.Time
}

// NewSnapshots binds a snapshot codec to kv. A non-positive maxBytes uses
// DefaultMaxBytes.
func NewSnapshots(kv KV, prefix string, maxBytes int) *Snapshots {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Snapshots{kv: kv, key: prefix + "session", maxBytes: maxBytes, now: time.Now}
}

// Key returns the storage key.
func (s *Snapshots) Key() string { return s.key }

// Save writes st. An oversize snapshot is not written and the previous one
// is deleted, so a later Load never returns state older than this attempt.
func (s *Snapshots) Save(ctx context.Context, st inspection.PersistedState) error {
	payload, err := json.Marshal(snapshot{
		Version:   SnapshotVersion,
		SessionID: st.SessionID,
		Mode:      st.Mode,
		Rooms:     st.Rooms,
		Deposit:   st.Deposit,
		SavedAt:   s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if len(payload) > s.maxBytes {
		if delErr := s.kv.Delete(ctx, s.key); delErr != nil {
			return errors.Join(fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(payload), s.maxBytes), delErr)
		}
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(payload), s.maxBytes)
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		return services.Wrap(services.ErrUnavailable, "store", "save snapshot", "", err)
	}
	return nil
}

// Load reads the snapshot. found is false when none exists. Oversize and
// corrupt snapshots are deleted and reported with ErrTooLarge or ErrCorrupt.
func (s *Snapshots) Load(ctx context.Context) (st inspection.PersistedState, found bool, err error) {
	payload, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrMiss) {
		return inspection.PersistedState{}, false, nil
	}
	if err != nil {
		return inspection.PersistedState{}, false, services.Wrap(services.ErrUnavailable, "store", "load snapshot", "", err)
	}
	if len(payload) > s.maxBytes {
		return inspection.PersistedState{}, false, s.discard(ctx, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(payload), s.maxBytes))
	}
	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return inspection.PersistedState{}, false, s.discard(ctx, fmt.Errorf("%w: %w", ErrCorrupt, err))
	}
	if snap.Version != SnapshotVersion {
		return inspection.PersistedState{}, false, s.discard(ctx, fmt.Errorf("%w: unknown version %d", ErrCorrupt, snap.Version))
	}
	return inspection.PersistedState{
		SessionID: snap.SessionID,
		Mode:      snap.Mode,
		Rooms:     snap.Rooms,
		Deposit:   snap.Deposit,
	}, true, nil
}

// Clear deletes the snapshot.
func (s *Snapshots) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}

func (s *Snapshots) discard(ctx context.Context, cause error) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
