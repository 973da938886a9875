// Package pacing implements the frame scheduler: it decides how long the
// event loop may block, whether a redraw is due, and advances the frame
// deadline with a drift-correcting skip rule so that a stall never
// produces a burst of catch-up frames.
//
// All times are monotonic offsets supplied by a [Clock], so the
// scheduler is deterministic under a fake clock.
package pacing
