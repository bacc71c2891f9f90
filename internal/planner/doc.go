// Package planner turns a command into a batch of operations to append.
//
// Planning is pure: it reads the full log, reconciles it, simulates each new
// operation against the projected state and records what it finds. A batch
// with any Conflict must not be appended at all; Warnings are reported but
// never block.
//
// Key responsibilities:
//   - Allocate consecutive sequence numbers for a batch
//   - Check every item of a multi-item batch, including against earlier
//     items of the same batch
//   - Validate the target of Edit and Remove corrections
//   - Decide which diagnostics block, depending on strict mode
package planner
