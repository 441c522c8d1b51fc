package trace

import (
	"sort"

	"github.com/ecmbridge/tracelog/internal/model"
	"github.com/ecmbridge/tracelog/internal/naming"
)

// AssembleMapEntries turns the step records of one Map_* file into log
// entries. The trace id comes from the map file's own name; steps are ordered
// by step number and relative durations are derived from the cumulative ones.
func AssembleMapEntries(mapFile string, entries []model.MapEntry) []model.LogEntry {
	if len(entries) == 0 {
		return nil
	}
	traceId := naming.TraceIdFrom(mapFile)

	ordered := make([]model.MapEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StepNumber < ordered[j].StepNumber
	})

	result := make([]model.LogEntry, 0, len(ordered))
	var prevCumulative int64
	for i, me := range ordered {
		cum := me.DurationMs
		entry := model.LogEntry{
			Timestamp:        me.Timestamp,
			Level:            "INFO",
			Message:          me.MethodKey,
			TraceId:          traceId,
			Type:             me.Type,
			Direction:        me.Direction,
			Source:           me.Source,
			ControllerAction: me.ControllerAction,
			StepNumber:       me.StepNumber,
			StatusCode:       me.StatusCode,
			MapFile:          mapFile,
		}
		dur := cum
		entry.DurationMs = &dur

		// Relative duration for step i is the delta against the previous
		// cumulative duration. A zero previous cumulative means this is the
		// trace's first timed step, so the absolute value is used directly.
		rel := cum
		if i > 0 && prevCumulative != 0 {
			rel = cum - prevCumulative
		}
		if me.RelativeDurationMs != nil {
			rel = *me.RelativeDurationMs
		}
		entry.RelativeDurationMs = &rel
		prevCumulative = cum

		switch me.Type {
		case model.TypeResponse:
			entry.ResponseFile = me.RelativePath
		default:
			entry.RequestFile = me.RelativePath
		}

		result = append(result, entry)
	}
	return result
}
