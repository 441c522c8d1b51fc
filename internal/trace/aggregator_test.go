package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmbridge/tracelog/internal/model"
)

func entryAt(traceId string, ts time.Time, step int) model.LogEntry {
	return model.LogEntry{
		Timestamp:  ts,
		Level:      "INFO",
		Message:    "step",
		TraceId:    traceId,
		Type:       model.TypeRequest,
		StepNumber: step,
	}
}

func TestAggregateGroupsByTraceId(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	timelines := Aggregate([]model.LogEntry{
		entryAt("trace-a", base, 1),
		entryAt("trace-b", base, 1),
		entryAt("trace-a", base.Add(time.Second), 2),
	}, nil)

	require.Len(t, timelines, 2)
	assert.Equal(t, "trace-a", timelines[0].TraceId)
	assert.Len(t, timelines[0].Entries, 2)
	assert.Equal(t, "trace-b", timelines[1].TraceId)
}

func TestAggregateExcludesEntriesWithoutTraceId(t *testing.T) {
	timelines := Aggregate([]model.LogEntry{
		{Timestamp: time.Now(), Message: "stray", Type: model.TypeGeneral},
	}, nil)
	assert.Empty(t, timelines)
}

func TestAggregateOrdering(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	timelines := Aggregate([]model.LogEntry{
		entryAt("trace-a", base.Add(2*time.Second), 3),
		entryAt("trace-a", base, 2),
		entryAt("trace-a", base, 1),
	}, nil)
	require.Len(t, timelines, 1)

	entries := timelines[0].Entries
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		notAfter := prev.Timestamp.Before(cur.Timestamp) ||
			(prev.Timestamp.Equal(cur.Timestamp) && prev.StepNumber <= cur.StepNumber)
		assert.True(t, notAfter, "entries must be non-decreasing in (Timestamp, StepNumber)")
	}
}

func TestAggregateMetrics(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	rel1, rel2 := int64(100), int64(300)

	first := entryAt("trace-a", base, 1)
	first.RelativeDurationMs = &rel1
	second := entryAt("trace-a", base.Add(2*time.Second), 2)
	second.RelativeDurationMs = &rel2
	general := entryAt("trace-a", base.Add(time.Second), 0)
	general.Type = model.TypeGeneral

	timelines := Aggregate([]model.LogEntry{first, second, general}, nil)
	require.Len(t, timelines, 1)

	tl := timelines[0]
	assert.Equal(t, base, tl.StartTime)
	assert.Equal(t, base.Add(2*time.Second), tl.EndTime)
	assert.Equal(t, int64(2000), tl.TotalDurationMs)
	assert.Equal(t, 2, tl.TotalSteps, "only entries with StepNumber > 0 count as steps")
	assert.Equal(t, int64(200), tl.AvgStepDurationMs)
	assert.False(t, tl.HasErrors)
}

func TestAggregateHasErrors(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)

	byType := entryAt("trace-a", base, 1)
	byType.Type = model.TypeError
	timelines := Aggregate([]model.LogEntry{byType}, nil)
	require.Len(t, timelines, 1)
	assert.True(t, timelines[0].HasErrors)

	byLevel := entryAt("trace-b", base, 1)
	byLevel.Level = "ERROR"
	timelines = Aggregate([]model.LogEntry{byLevel}, nil)
	require.Len(t, timelines, 1)
	assert.True(t, timelines[0].HasErrors)
}

func TestAggregateFirstNonEmptyBusinessObject(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)

	second := entryAt("trace-a", base.Add(time.Second), 2)
	second.BoType, second.BoId, second.Operation = "BUS1006", "000123", model.OpSearch
	third := entryAt("trace-a", base.Add(2*time.Second), 3)
	third.BoType, third.BoId = "BUS9999", "999999"

	timelines := Aggregate([]model.LogEntry{entryAt("trace-a", base, 1), second, third}, nil)
	require.Len(t, timelines, 1)

	tl := timelines[0]
	assert.Equal(t, "BUS1006", tl.BoType)
	assert.Equal(t, "000123", tl.BoId)
	assert.Equal(t, model.OpSearch, tl.Operation)
}

func TestAggregateDropsAllNoiseTimelines(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	noisy := entryAt("trace-a", base, 1)
	noisy.Message = "GET /api/traces"

	timelines := Aggregate([]model.LogEntry{noisy}, []string{"/api/traces"})
	assert.Empty(t, timelines, "a timeline made only of self-noise is dropped")

	mixed := entryAt("trace-b", base, 1)
	timelines = Aggregate([]model.LogEntry{noisy, mixed}, []string{"/api/traces"})
	require.Len(t, timelines, 1)
	assert.Equal(t, "trace-b", timelines[0].TraceId)
}
