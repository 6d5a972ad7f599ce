// Package daemon coordinates the long-running condish process.
//
// It wires configuration, the session store, the workflow manager and the
// HTTP API into a single lifecycle with flock-based locking so only one
// daemon (and therefore one session) runs per data directory. The daemon
// restores the persisted session on start, runs preflight checks, and serves
// the JSON API the CLI talks to.
//
// Keep orchestration logic here: session semantics live in inspection and
// workflow, while the daemon focuses on startup, shutdown and transport.
package daemon
