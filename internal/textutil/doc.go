// Package textutil provides the small text helpers shared by the inspection
// core and its collaborators.
//
// The primary use cases are:
//   - Normalizing identity fields (damage type, location) so that cosmetic
//     differences in whitespace or case do not defeat deduplication
//   - Tokenizing free-form model output for keyword heuristics
//   - Sanitizing filenames for report export
package textutil
