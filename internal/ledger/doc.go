// Package ledger holds the lending log model and the pure functions that
// derive state from it.
//
// The persisted log is append-only. Corrections never rewrite history; an
// Edit or Remove is appended as an overlay that refers to an earlier
// operation by sequence number. Everything the tool shows is derived by
// replaying the log:
//
//   - Organize resolves overlays into the canonical log (Lend/Return only)
//   - Project replays the canonical log into the currently open loans
//   - Validate replays the canonical log and reports inconsistencies
//   - NextSeq allocates the sequence number for the next append
//
// All functions are synchronous and side-effect free. Callers load the log,
// compute over the snapshot, and hand any new operations back to a store.
package ledger
