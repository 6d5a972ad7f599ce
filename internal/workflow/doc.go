// Package workflow coordinates an inspection session with its external
// collaborators.
//
// The Manager owns the inspection.Session. Every collaborator call (floor-plan
// parsing, damage analysis, repair estimates, settlement estimation, lease
// extraction) captures a ticket from the session, runs outside the session
// lock, and commits only if the ticket is still current. Results that arrive
// after a reset or a cursor move are discarded. Calls run synchronously or in
// the background; background progress is reported through the view's
// operation states.
//
// The manager also persists the scalar session state (ID, mode, rooms,
// deposit) after it changes, and emits notifications when an inspection
// completes, a settlement is ready, a lease sets the deposit, or a
// collaborator fails.
package workflow
