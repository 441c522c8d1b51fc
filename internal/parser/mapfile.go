package parser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecmbridge/tracelog/internal/model"
)

// Map_* index rows come in two widths. The last field is always the relative
// path of the raw dump the row describes; the 11-field variant inserts a
// precomputed relative duration before it.
const (
	mapFieldsShort = 10
	mapFieldsLong  = 11
)

// MapParser turns CSV-style Map_* index files into step records.
type MapParser struct {
	log zerolog.Logger
}

// NewMapParser builds a MapParser.
func NewMapParser(log zerolog.Logger) *MapParser {
	return &MapParser{log: log.With().Str("component", "mapfile-parser").Logger()}
}

// ParseFile reads one Map_* file. Rows with fewer than 10 fields are dropped;
// a read error means this file contributes nothing, siblings are unaffected.
func (p *MapParser) ParseFile(path string) ([]model.MapEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}
	defer file.Close()

	var entries []model.MapEntry
	sc := bufio.NewScanner(file)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		entry, ok := p.parseRow(sc.Text())
		if !ok {
			p.log.Debug().Str("file", path).Int("line", lineNo).Msg("dropping short map row")
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan map file: %w", err)
	}
	return entries, nil
}

// parseRow parses one comma-separated row. Numeric fields that fail to parse
// degrade to absent values rather than failing the row.
func (p *MapParser) parseRow(line string) (model.MapEntry, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < mapFieldsShort {
		return model.MapEntry{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	entry := model.MapEntry{
		ControllerAction: fields[2],
		MethodKey:        fields[3],
		Direction:        fields[6],
		Source:           fields[7],
		RelativePath:     fields[len(fields)-1],
	}

	if ts, err := time.ParseInLocation(lineLayout, fields[0], time.Local); err == nil {
		entry.Timestamp = ts
	}
	if step, err := strconv.Atoi(fields[1]); err == nil {
		entry.StepNumber = step
	}

	switch strings.ToLower(fields[4]) {
	case "response":
		entry.Type = model.TypeResponse
	default:
		entry.Type = model.TypeRequest
	}
	if entry.Type == model.TypeResponse {
		if code, err := strconv.Atoi(fields[5]); err == nil {
			entry.StatusCode = &code
		}
	}

	if dur, err := strconv.ParseInt(fields[8], 10, 64); err == nil {
		entry.DurationMs = dur
	}
	if len(fields) >= mapFieldsLong {
		if rel, err := strconv.ParseInt(fields[9], 10, 64); err == nil {
			entry.RelativeDurationMs = &rel
		}
	}

	return entry, true
}
