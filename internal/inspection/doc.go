// Package inspection implements the inspection session manager: the room
// registry, reference image store, damage ledger, traversal cursor, settlement
// calculator and the session lifecycle that ties them together.
//
// The package performs no I/O. Operations that depend on an external
// collaborator are split into a Begin step that captures a ticket and a Commit
// step that applies the collaborator's answer only if the session generation
// (and, for settlements, the input version) still matches the ticket.
// Collaborator calls happen between the two steps, outside the session lock,
// so the ledger and the last settlement stay readable while a request is in
// flight.
package inspection
