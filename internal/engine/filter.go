package engine

import (
	"regexp"
	"strings"

	"github.com/ecmbridge/tracelog/internal/model"
)

var (
	longTokenTerm = regexp.MustCompile(`^[a-z0-9_-]{15,}$`)
	boTypeTerm    = regexp.MustCompile(`^bus\d+$`)
	boIdTerm      = regexp.MustCompile(`^\d+$`)
)

// matchesFilters applies the structured filters and the free-text search to
// one timeline.
func matchesFilters(tl model.TraceTimeline, f model.SearchFilters) bool {
	if f.BoType != "" && !strings.EqualFold(tl.BoType, f.BoType) {
		return false
	}
	if f.BoId != "" && tl.BoId != f.BoId {
		return false
	}
	if f.Operation != "" && !strings.EqualFold(tl.Operation, f.Operation) {
		return false
	}
	if f.HasErrors != nil && tl.HasErrors != *f.HasErrors {
		return false
	}
	if f.MinDurationMs != nil && tl.TotalDurationMs < *f.MinDurationMs {
		return false
	}
	if f.MaxDurationMs != nil && tl.TotalDurationMs > *f.MaxDurationMs {
		return false
	}
	if f.Direction != "" && !hasDirection(tl, f.Direction) {
		return false
	}
	if f.Search != "" && !matchesSearch(tl, f.Search) {
		return false
	}
	return true
}

func hasDirection(tl model.TraceTimeline, direction string) bool {
	for _, e := range tl.Entries {
		if strings.EqualFold(e.Direction, direction) {
			return true
		}
	}
	return false
}

// matchesSearch dispatches a free-text term to exactly one field family; the
// first matching shape rule wins. A long opaque token can only be a trace id,
// a bus-prefixed term a BO type, an all-digit term a BO id; everything else
// is a broad case-insensitive substring search.
func matchesSearch(tl model.TraceTimeline, term string) bool {
	lower := strings.ToLower(strings.TrimSpace(term))
	switch {
	case longTokenTerm.MatchString(lower):
		return strings.Contains(tl.TraceId, strings.ReplaceAll(lower, "_", "-")) ||
			strings.Contains(strings.ToLower(tl.TraceId), lower)
	case boTypeTerm.MatchString(lower):
		return strings.Contains(strings.ToLower(tl.BoType), lower)
	case boIdTerm.MatchString(lower):
		return strings.Contains(tl.BoId, lower)
	default:
		if strings.Contains(strings.ToLower(tl.TraceId), lower) ||
			strings.Contains(strings.ToLower(tl.BoType), lower) ||
			strings.Contains(strings.ToLower(tl.BoId), lower) ||
			strings.Contains(strings.ToLower(tl.Operation), lower) {
			return true
		}
		for _, e := range tl.Entries {
			if strings.Contains(strings.ToLower(e.Message), lower) {
				return true
			}
		}
		return false
	}
}
