package model

import "time"

// MapEntry is one row of a Map_* index file: a single recorded step of a
// trace. DurationMs is cumulative from the start of the trace; the 11-field
// row variant additionally carries a precomputed relative duration.
type MapEntry struct {
	Timestamp          time.Time
	StepNumber         int // positive, increasing within a trace
	ControllerAction   string
	MethodKey          string
	Type               EntryType // Request or Response
	StatusCode         *int      // Response rows only
	Direction          string
	Source             string
	DurationMs         int64
	RelativeDurationMs *int64
	RelativePath       string
}
