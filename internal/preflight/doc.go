// Package preflight provides readiness checks for the services and paths
// condish depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs each failure; the session is
//     still served because collaborator failures degrade gracefully.
//   - The status endpoint reruns them so `condish status` can show health.
package preflight
