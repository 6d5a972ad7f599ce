// Package services defines shared utilities consumed by the session workflow and
// the external collaborator integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, room IDs, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper, and Classify, which maps
//     any failure onto the input / unavailable / integrity taxonomy the API
//     layer reports.
//
// Collaborator clients live in subpackages: llm (model transport), vision
// (model-backed analyzers and estimators) and remote (HTTP inspection API).
package services
