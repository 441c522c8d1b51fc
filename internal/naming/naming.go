package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecmbridge/tracelog/internal/model"
)

// Kind classifies a file by the naming convention the logging subsystem uses.
type Kind int

const (
	KindUnknown Kind = iota
	KindMap          // Map_*.txt index file
	KindRaw          // raw request/response dump under Raw/Inbound or Raw/Outbound
)

// Info is the typed result of parsing a file path. Everything the rest of
// the engine needs from a filename goes through here so that string
// conventions stay in one place.
type Info struct {
	Kind      Kind
	TraceId   string    // normalized; empty if the name carries none
	Timestamp time.Time // from the 14-digit name prefix; zero if absent
	Type      model.EntryType
	Direction string
}

const timestampLayout = "20060102150405"

var (
	// UUID-shaped token with either hyphen or underscore separators.
	uuidToken = regexp.MustCompile(`[0-9a-fA-F]{8}[-_][0-9a-fA-F]{4}[-_][0-9a-fA-F]{4}[-_][0-9a-fA-F]{4}[-_][0-9a-fA-F]{12}`)
	noTrace   = regexp.MustCompile(`(?i)NoTrace_(\d{14})`)
	tsPrefix  = regexp.MustCompile(`^(\d{14})_`)
)

// NormalizeTraceId collapses the hyphen and underscore spellings of a trace
// id into one canonical identity: lowercase, hyphen-separated. The synthetic
// NoTrace_<timestamp> sentinel is preserved verbatim apart from the prefix
// casing. Returns "" for an empty input.
func NormalizeTraceId(id string) string {
	if id == "" {
		return ""
	}
	if m := noTrace.FindStringSubmatch(id); m != nil {
		return "NoTrace_" + m[1]
	}
	return strings.ToLower(strings.ReplaceAll(id, "_", "-"))
}

// IsCanonicalTraceId reports whether id is a canonical lowercase hyphenated
// UUID token.
func IsCanonicalTraceId(id string) bool {
	if id != strings.ToLower(id) || strings.Contains(id, "_") {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// TraceIdFrom extracts and normalizes the trace id embedded in a file name
// (the trailing token of Map_* and raw dump names). Returns "" when the name
// carries neither a UUID-shaped token nor the NoTrace sentinel.
func TraceIdFrom(path string) string {
	name := filepath.Base(path)
	if m := noTrace.FindString(name); m != "" {
		return NormalizeTraceId(m)
	}
	tokens := uuidToken.FindAllString(name, -1)
	if len(tokens) == 0 {
		return ""
	}
	return NormalizeTraceId(tokens[len(tokens)-1])
}

// Parse classifies path and extracts the typed metadata encoded in it.
func Parse(path string) Info {
	name := filepath.Base(path)
	info := Info{Kind: KindUnknown, TraceId: TraceIdFrom(path), Type: model.TypeRawLog}

	if m := tsPrefix.FindStringSubmatch(name); m != nil {
		if ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local); err == nil {
			info.Timestamp = ts
		}
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "_request_") || strings.HasSuffix(strings.TrimSuffix(lower, filepath.Ext(lower)), "_request"):
		info.Type = model.TypeRequest
	case strings.Contains(lower, "_response_") || strings.HasSuffix(strings.TrimSuffix(lower, filepath.Ext(lower)), "_response"):
		info.Type = model.TypeResponse
	}

	slash := filepath.ToSlash(strings.ToLower(path))
	switch {
	case strings.Contains(slash, "raw/inbound/"):
		info.Kind = KindRaw
		info.Direction = model.DirectionInbound
	case strings.Contains(slash, "raw/outbound/"):
		info.Kind = KindRaw
		info.Direction = model.DirectionOutbound
	case strings.HasPrefix(name, "Map_"):
		info.Kind = KindMap
	}
	return info
}

// IsMapFile reports whether the file name follows the Map_* convention.
func IsMapFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "Map_")
}
