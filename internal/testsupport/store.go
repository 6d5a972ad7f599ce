package testsupport

import (
	"context"
	"testing"

	"condish/internal/config"
	"condish/internal/store"
)

// MustOpenKV opens the configured store backend for tests and registers
// cleanup.
func MustOpenKV(t testing.TB, cfg *config.Config) store.KV {
	t.Helper()

	kv, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = kv.Close()
	})
	return kv
}

// MustSnapshots wraps the configured store in a snapshot codec.
func MustSnapshots(t testing.TB, cfg *config.Config) *store.Snapshots {
	t.Helper()

	return store.NewSnapshots(MustOpenKV(t, cfg), cfg.Store.KeyPrefix, cfg.Store.MaxBytes)
}
