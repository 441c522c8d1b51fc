package model

import "time"

// EntryType classifies what a log entry observed.
type EntryType string

const (
	TypeRequest        EntryType = "Request"
	TypeResponse       EntryType = "Response"
	TypeError          EntryType = "Error"
	TypeRawLog         EntryType = "RawLog"
	TypeAuthentication EntryType = "Authentication"
	TypeGeneral        EntryType = "General"
)

// Direction values as recorded in map rows and raw dump paths.
const (
	DirectionInbound  = "Inbound"
	DirectionOutbound = "Outbound"
)

// Well-known operation names recovered from log text and filenames.
const (
	OpMasterData        = "MasterData"
	OpClassification    = "Classification"
	OpBusinessWorkspace = "BusinessWorkspace"
	OpNode              = "Node"
	OpAuthentication    = "Authentication"
	OpSearch            = "Search"
)

// LogEntry is one observed event reconstructed from any of the log artifact
// sources. File-reference fields may be filled in later during merging;
// everything else is fixed at construction.
type LogEntry struct {
	Timestamp          time.Time `json:"timestamp"`
	Level              string    `json:"level,omitempty"`
	Message            string    `json:"message"`
	TraceId            string    `json:"traceId,omitempty"`
	BoType             string    `json:"boType,omitempty"`
	BoId               string    `json:"boId,omitempty"`
	Operation          string    `json:"operation,omitempty"`
	Type               EntryType `json:"type"`
	Direction          string    `json:"direction,omitempty"`
	Source             string    `json:"source,omitempty"`
	ControllerAction   string    `json:"controllerAction,omitempty"`
	StepNumber         int       `json:"stepNumber"` // 0 = unordered/unknown
	DurationMs         *int64    `json:"durationMs,omitempty"`
	RelativeDurationMs *int64    `json:"relativeDurationMs,omitempty"`
	StatusCode         *int      `json:"statusCode,omitempty"`
	RequestFile        string    `json:"requestFile,omitempty"`
	ResponseFile       string    `json:"responseFile,omitempty"`
	MapFile            string    `json:"mapFile,omitempty"`
}

// HasFileReference reports whether the entry points at a raw dump file.
func (e *LogEntry) HasFileReference() bool {
	return e.RequestFile != "" || e.ResponseFile != ""
}
