package main

import (
	"context"
	"fmt"
	"log/slog"

	"condish/internal/config"
	"condish/internal/daemon"
	"condish/internal/store"
	"condish/internal/workflow"
)

// build wires the session store, collaborators, workflow manager and daemon.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	kv, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	collab, remoteClient, err := workflow.NewCollaborators(cfg, logger)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("build collaborators: %w", err)
	}

	snapshots := store.NewSnapshots(kv, cfg.Store.KeyPrefix, cfg.Store.MaxBytes)
	manager := workflow.NewManager(cfg, collab, logger, workflow.WithSnapshots(snapshots))

	opts := []daemon.Option{daemon.WithStore(kv)}
	if remoteClient != nil {
		opts = append(opts, daemon.WithRemote(remoteClient))
	}
	d, err := daemon.New(cfg, manager, logger, opts...)
	if err != nil {
		manager.Close()
		_ = kv.Close()
		return nil, err
	}
	return d, nil
}
