package main

import (
	"context"
	"testing"

	"condish/internal/config"
	"condish/internal/logging"
	"condish/internal/testsupport"
)

func TestBuildWiresDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	d, err := build(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	status := d.Status(context.Background())
	if status.StoreBackend != config.StoreBackendMemory {
		t.Fatalf("expected memory backend, got %q", status.StoreBackend)
	}
	if status.Session.SessionID == "" {
		t.Fatal("expected a session id")
	}
}

func TestBuildWithRemoteCollaborators(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRemote("http://127.0.0.1:1"))

	d, err := build(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if got := d.Status(context.Background()).Collaborators; got != config.CollaboratorsRemote {
		t.Fatalf("expected remote collaborators, got %q", got)
	}
}
