// Package repository defines the data access layer over the
// transactional store plus the sentinel errors shared across it.
// Handlers translate these sentinels into HTTP responses, so the
// taxonomy here is the error contract of the whole write path:
// validation and phase failures are rejected synchronously and never
// partially applied, while ErrUnknownOutcome explicitly marks the one
// case where the caller must re-read the snapshot before deciding
// whether to repeat an action.
package repository

import "errors"

// ErrValidation is returned for malformed input: unknown stat type,
// player not on the roster or not on court, out-of-range clock value.
// Handlers should translate this into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrPhase is returned when a write is attempted while the game's
// status forbids it, such as recording a stat on a completed game.
// Handlers should translate this into an HTTP 409 response.
var ErrPhase = errors.New("game phase forbids this operation")

// ErrNothingToUndo is returned when a reversal is requested but no
// eligible unreversed event matches the filter.  Handlers should
// translate this into an HTTP 404 response.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrGameNotFound is returned when the referenced game does not exist.
var ErrGameNotFound = errors.New("game not found")

// ErrUnknownOutcome wraps store failures where it is unknown whether
// the write was applied.  Callers must never auto-retry on it: a blind
// retry of recordEvent would double-count a stat.  Re-read the
// snapshot first.
var ErrUnknownOutcome = errors.New("store failure with unknown outcome")
