package analysis

import "errors"

// ErrNoContent is returned when the transcript is empty or whitespace-only.
// It is raised before any oracle call is attempted.
var ErrNoContent = errors.New("transcript has no analyzable content")

// ErrEmptyResult is returned when aggregation produced zero topic records.
// It is a user-visible "no data produced" condition, not a crash.
var ErrEmptyResult = errors.New("analysis produced no topic records")
