package store

import (
	"context"
	"fmt"

	"condish/internal/config"
	"condish/internal/services"
)

// Open returns the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (KV, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return NewMemoryKV(), nil
	case config.StoreBackendRedis:
		kv, err := OpenRedis(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "store", "open redis", cfg.Store.RedisAddr, err)
		}
		return kv, nil
	case config.StoreBackendSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(cfg.StorePath())
	default:
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", fmt.Sprintf("unknown backend %q", cfg.Store.Backend), nil)
	}
}
