// Package logs reads the daemon log file for `condish logs`: the last N
// lines, follow mode that survives truncation, and a filter that understands
// both the console and JSON log formats.
package logs
