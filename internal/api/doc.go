// Package api defines the wire-format types and converters for the daemon's
// HTTP API, plus a small client the CLI uses to call it.
//
// # Key Types
//
// SessionView: the whole session (rooms with their status, traversal
// progress, findings, ignored findings, candidate buffer, deposit, repair
// estimate, lease, settlement and per-operation states).
//
// DaemonStatus: daemon runtime information, a session summary and preflight
// results.
//
// Request types (RoomsRequest, ImageRequest, CompleteRequest, ...) carry
// validator tags; Decode rejects unknown fields and invalid payloads with
// services.ErrValidation so handlers can map them to 400.
//
// # Converters
//
// FromView: inspection.View -> SessionView.
//
// FromSettlement, FromFinding, FromStatusSummary convert the individual
// pieces.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Image and document payloads are []byte fields, so they travel as standard
// base64 strings.
package api
