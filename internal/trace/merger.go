package trace

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ecmbridge/tracelog/internal/model"
	"github.com/ecmbridge/tracelog/internal/naming"
	"github.com/ecmbridge/tracelog/internal/parser"
)

// MergeRawReferences reconciles duplicate evidence for the same step. A call
// can be observed twice: as a "raw file saved" rolling-log line and as a
// map-derived step. For each rolling entry carrying a file reference, the
// nearest map-derived entry with the same trace id and type inside the window
// absorbs the file reference and the rolling duplicate is dropped. Unmatched
// rolling entries are kept as-is (a step with no index row).
//
// Nearest-timestamp matching is best effort: two distinct calls inside the
// window could in principle be mismatched.
func MergeRawReferences(rolling, mapDerived []model.LogEntry, window time.Duration) []model.LogEntry {
	merged := make([]model.LogEntry, len(mapDerived))
	copy(merged, mapDerived)

	var kept []model.LogEntry
	for _, entry := range rolling {
		if !entry.HasFileReference() || entry.TraceId == "" {
			kept = append(kept, entry)
			continue
		}

		best := -1
		var bestDelta time.Duration
		for i := range merged {
			c := &merged[i]
			if c.TraceId != entry.TraceId || c.Type != entry.Type {
				continue
			}
			delta := c.Timestamp.Sub(entry.Timestamp)
			if delta < 0 {
				delta = -delta
			}
			if delta > window {
				continue
			}
			if best == -1 || delta < bestDelta {
				best = i
				bestDelta = delta
			}
		}

		if best == -1 {
			kept = append(kept, entry)
			continue
		}
		if entry.RequestFile != "" && merged[best].RequestFile == "" {
			merged[best].RequestFile = entry.RequestFile
		}
		if entry.ResponseFile != "" && merged[best].ResponseFile == "" {
			merged[best].ResponseFile = entry.ResponseFile
		}
	}

	return append(merged, kept...)
}

// RecoverOrphans surfaces raw dump files whose trace id has no map entry at
// all by synthesizing a minimal entry from the filename: timestamp from the
// 14-digit name prefix (file modify time as fallback), type and direction
// from the naming convention, operation guessed from filename keywords.
func RecoverOrphans(rawFiles []string, indexed map[string]bool, root string) []model.LogEntry {
	var orphans []model.LogEntry
	for _, path := range rawFiles {
		info := naming.Parse(path)
		if info.TraceId == "" || indexed[info.TraceId] {
			continue
		}

		ts := info.Timestamp
		if ts.IsZero() {
			stat, err := os.Stat(path)
			if err != nil {
				continue
			}
			ts = stat.ModTime()
		}

		rel := path
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
		name := filepath.Base(path)
		entry := model.LogEntry{
			Timestamp: ts,
			Message:   "Recovered raw file " + name,
			TraceId:   info.TraceId,
			Type:      info.Type,
			Direction: info.Direction,
			Source:    "raw",
			Operation: parser.GuessOperation(name),
		}
		switch info.Type {
		case model.TypeResponse:
			entry.ResponseFile = rel
		case model.TypeRequest:
			entry.RequestFile = rel
		}
		orphans = append(orphans, entry)
	}
	return orphans
}
