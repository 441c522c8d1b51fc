package model

import "time"

// SearchFilters holds the query parameters for a trace listing. A nil
// pointer means the dimension is unconstrained.
type SearchFilters struct {
	From          *time.Time
	To            *time.Time
	Search        string
	BoType        string
	BoId          string
	Operation     string
	Direction     string
	HasErrors     *bool
	MinDurationMs *int64
	MaxDurationMs *int64
}
