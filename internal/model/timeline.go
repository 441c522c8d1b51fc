package model

import "time"

// TraceTimeline is the ordered reconstruction of one external call: every
// entry recovered for a trace id, sorted by (Timestamp, StepNumber), plus
// derived metrics. Timelines are recomputed on every query and never
// persisted.
type TraceTimeline struct {
	TraceId           string     `json:"traceId"`
	Entries           []LogEntry `json:"entries"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           time.Time  `json:"endTime"`
	TotalDurationMs   int64      `json:"totalDurationMs"`
	TotalSteps        int        `json:"totalSteps"`
	AvgStepDurationMs int64      `json:"avgStepDurationMs"`
	HasErrors         bool       `json:"hasErrors"`
	BoType            string     `json:"boType,omitempty"`
	BoId              string     `json:"boId,omitempty"`
	Operation         string     `json:"operation,omitempty"`
}

// FilterOptions lists the distinct values observed in the current corpus,
// for populating selection controls.
type FilterOptions struct {
	BoTypes    []string `json:"boTypes"`
	Operations []string `json:"operations"`
	Directions []string `json:"directions"`
}
