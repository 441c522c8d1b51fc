package trace

import (
	"sort"
	"strings"

	"github.com/ecmbridge/tracelog/internal/model"
)

// Aggregate groups entries into one ordered timeline per distinct non-empty
// trace id, in order of first appearance. Entries without a recoverable trace
// id are excluded. Timelines whose every entry is self-noise are dropped
// entirely; the line parser already filters noise, this is the second
// defensive filter. All metrics are computed fresh from the snapshot.
func Aggregate(entries []model.LogEntry, noiseMarkers []string) []model.TraceTimeline {
	groups := make(map[string][]model.LogEntry)
	var order []string
	for _, e := range entries {
		if e.TraceId == "" {
			continue
		}
		if _, seen := groups[e.TraceId]; !seen {
			order = append(order, e.TraceId)
		}
		groups[e.TraceId] = append(groups[e.TraceId], e)
	}

	timelines := make([]model.TraceTimeline, 0, len(order))
	for _, id := range order {
		tl := buildTimeline(id, groups[id], noiseMarkers)
		if tl == nil {
			continue
		}
		timelines = append(timelines, *tl)
	}
	return timelines
}

func buildTimeline(id string, entries []model.LogEntry, noiseMarkers []string) *model.TraceTimeline {
	allNoise := true
	for _, e := range entries {
		if !isNoise(e.Message, noiseMarkers) {
			allNoise = false
			break
		}
	}
	if allNoise {
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].StepNumber < entries[j].StepNumber
	})

	tl := &model.TraceTimeline{
		TraceId:   id,
		Entries:   entries,
		StartTime: entries[0].Timestamp,
		EndTime:   entries[0].Timestamp,
	}

	var stepDurTotal int64
	var stepDurCount int64
	for _, e := range entries {
		if e.Timestamp.Before(tl.StartTime) {
			tl.StartTime = e.Timestamp
		}
		if e.Timestamp.After(tl.EndTime) {
			tl.EndTime = e.Timestamp
		}
		if e.StepNumber > 0 {
			tl.TotalSteps++
		}
		if e.RelativeDurationMs != nil {
			stepDurTotal += *e.RelativeDurationMs
			stepDurCount++
		}
		if e.Type == model.TypeError || e.Level == "ERROR" {
			tl.HasErrors = true
		}
		if tl.BoType == "" && e.BoType != "" {
			tl.BoType = e.BoType
		}
		if tl.BoId == "" && e.BoId != "" {
			tl.BoId = e.BoId
		}
		if tl.Operation == "" && e.Operation != "" {
			tl.Operation = e.Operation
		}
	}

	tl.TotalDurationMs = tl.EndTime.Sub(tl.StartTime).Milliseconds()
	if stepDurCount > 0 {
		tl.AvgStepDurationMs = stepDurTotal / stepDurCount
	}
	return tl
}

func isNoise(message string, markers []string) bool {
	lower := strings.ToLower(message)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
