// Package store persists the small scalar part of the inspection session.
//
// A KV holds opaque byte values; SQLiteKV is the default backend, RedisKV
// serves shared deployments and MemoryKV keeps nothing across restarts.
// Snapshots layers the versioned JSON session snapshot on top and enforces
// the size bound. Oversize or undecodable snapshots surface as integrity
// errors and are removed so the next start is clean.
package store
