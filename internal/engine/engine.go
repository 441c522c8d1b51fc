package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecmbridge/tracelog/internal/config"
	"github.com/ecmbridge/tracelog/internal/model"
	"github.com/ecmbridge/tracelog/internal/naming"
	"github.com/ecmbridge/tracelog/internal/parser"
	"github.com/ecmbridge/tracelog/internal/scanner"
	"github.com/ecmbridge/tracelog/internal/trace"
)

var (
	// ErrTraceNotFound is returned by GetTrace for an unknown trace id.
	ErrTraceNotFound = errors.New("trace not found")
	// ErrPathOutsideRoot is returned by ReadFile when the requested path
	// would escape the configured log root.
	ErrPathOutsideRoot = errors.New("path outside log root")
)

// Engine is the query facade over the log corpus. It is read-only and
// stateless: every query re-reads and re-parses the files on disk, so
// concurrent queries are independent and results always reflect the current
// snapshot.
type Engine struct {
	cfg   config.Engine
	scan  *scanner.Scanner
	lines *parser.LineParser
	maps  *parser.MapParser
	log   zerolog.Logger
}

// New builds an Engine over the configured log root.
func New(cfg config.Engine, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:   cfg,
		scan:  scanner.New(cfg.LogRoot, cfg.Retention(), cfg.MaxLogFiles, cfg.LogGlob, log),
		lines: parser.NewLineParser(cfg.TraceHeader, cfg.NoiseMarkers, log),
		maps:  parser.NewMapParser(log),
		log:   log.With().Str("component", "engine").Logger(),
	}
}

// collect runs the full pipeline over the current corpus snapshot: parse,
// assemble, merge, aggregate. Timelines come back in discovery order.
func (e *Engine) collect() []model.TraceTimeline {
	corpus := e.scan.Scan()

	var rolling []model.LogEntry
	for _, f := range corpus.LogFiles {
		entries, err := e.lines.ParseFile(f)
		if err != nil {
			e.log.Warn().Err(err).Str("file", f).Msg("log file skipped")
			continue
		}
		rolling = append(rolling, entries...)
	}

	var mapDerived []model.LogEntry
	indexed := make(map[string]bool)
	for _, f := range corpus.MapFiles {
		rows, err := e.maps.ParseFile(f)
		if err != nil {
			e.log.Warn().Err(err).Str("file", f).Msg("map file skipped")
			continue
		}
		entries := trace.AssembleMapEntries(e.relativize(f), rows)
		for _, en := range entries {
			if en.TraceId != "" {
				indexed[en.TraceId] = true
			}
		}
		mapDerived = append(mapDerived, entries...)
	}

	merged := trace.MergeRawReferences(rolling, mapDerived, e.cfg.MergeWindow())
	orphans := trace.RecoverOrphans(corpus.RawFiles, indexed, e.cfg.LogRoot)

	return trace.Aggregate(append(merged, orphans...), e.cfg.NoiseMarkers)
}

// GetTraces returns the timelines matching filters, newest first. The group
// cap is applied to the first MaxTraces trace groups discovered, before the
// relevance filters run; a filtered query can therefore return fewer results
// than the true number of matches. That approximation is intentional and
// observable, not a defect.
func (e *Engine) GetTraces(filters model.SearchFilters) []model.TraceTimeline {
	timelines := e.collect()

	dated := timelines[:0:0]
	for _, tl := range timelines {
		if filters.From != nil && tl.EndTime.Before(*filters.From) {
			continue
		}
		if filters.To != nil && tl.StartTime.After(*filters.To) {
			continue
		}
		dated = append(dated, tl)
	}

	if len(dated) > e.cfg.MaxTraces {
		dated = dated[:e.cfg.MaxTraces]
	}

	matched := dated[:0:0]
	for _, tl := range dated {
		if matchesFilters(tl, filters) {
			matched = append(matched, tl)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartTime.After(matched[j].StartTime)
	})
	return matched
}

// GetTrace returns the timeline for one trace id, accepting either spelling
// of the id. Unknown ids yield ErrTraceNotFound.
func (e *Engine) GetTrace(id string) (model.TraceTimeline, error) {
	want := naming.NormalizeTraceId(id)
	for _, tl := range e.collect() {
		if tl.TraceId == want {
			return tl, nil
		}
	}
	return model.TraceTimeline{}, fmt.Errorf("%w: %s", ErrTraceNotFound, id)
}

// FilterOptions returns the distinct observed values for selection controls.
func (e *Engine) FilterOptions() model.FilterOptions {
	boTypes := make(map[string]bool)
	operations := make(map[string]bool)
	directions := make(map[string]bool)
	for _, tl := range e.collect() {
		if tl.BoType != "" {
			boTypes[tl.BoType] = true
		}
		if tl.Operation != "" {
			operations[tl.Operation] = true
		}
		for _, en := range tl.Entries {
			if en.Direction != "" {
				directions[en.Direction] = true
			}
		}
	}
	return model.FilterOptions{
		BoTypes:    sortedKeys(boTypes),
		Operations: sortedKeys(operations),
		Directions: sortedKeys(directions),
	}
}

// ReadFile returns the content of one artifact. The resolved path must stay
// inside the log root; anything escaping it is rejected.
func (e *Engine) ReadFile(rel string) ([]byte, error) {
	root, err := filepath.Abs(e.cfg.LogRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve log root: %w", err)
	}
	target, err := filepath.Abs(filepath.Join(root, filepath.Clean(rel)))
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (e *Engine) relativize(path string) string {
	if rel, err := filepath.Rel(e.cfg.LogRoot, path); err == nil {
		return rel
	}
	return path
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
