package parser

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecmbridge/tracelog/internal/model"
	"github.com/ecmbridge/tracelog/internal/naming"
)

// lineLayout is the timestamp format of rolling log lines:
// yyyy-MM-dd HH:mm:ss.fff [LEVEL] message
const lineLayout = "2006-01-02 15:04:05.000"

var (
	lineFormat = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}) \[([A-Za-z]+)\] (.+)$`)
	uuidToken  = regexp.MustCompile(`[0-9a-fA-F]{8}[-_][0-9a-fA-F]{4}[-_][0-9a-fA-F]{4}[-_][0-9a-fA-F]{4}[-_][0-9a-fA-F]{12}`)
	boPattern  = regexp.MustCompile(`(?i)\b(BUS\d{1,7})_(\d{6})\b`)
	rawSaved   = regexp.MustCompile(`(?i)raw file saved:?\s*(\S+)`)
	statusHint = regexp.MustCompile(`(?i)status(?: code)?[:= ]+(\d{3})\b`)
)

// classifyRule is one step of the ordered classification list. Rules are
// evaluated top to bottom against the lowercased message; the first match
// decides the entry type.
type classifyRule struct {
	name  string
	match func(msg, level string) bool
	apply func(e *model.LogEntry, raw string)
}

// operationRule maps message keywords to an operation name. Evaluated in
// order, independently of type classification.
type operationRule struct {
	keywords  []string
	operation string
}

var operationRules = []operationRule{
	{[]string{"masterdata", "master data"}, model.OpMasterData},
	{[]string{"classification"}, model.OpClassification},
	{[]string{"businessworkspace", "business workspace", "workspace"}, model.OpBusinessWorkspace},
	{[]string{"node"}, model.OpNode},
	{[]string{"authenticat", "otds", "ticket"}, model.OpAuthentication},
	{[]string{"search"}, model.OpSearch},
}

// GuessOperation derives an operation name from free text (a log message or
// a raw dump filename). Returns "" when no keyword matches.
func GuessOperation(text string) string {
	lower := strings.ToLower(text)
	for _, r := range operationRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.operation
			}
		}
	}
	return ""
}

func containsAny(msg string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// LineParser turns rolling log file text into classified entries.
type LineParser struct {
	headerPattern *regexp.Regexp
	noiseMarkers  []string
	rules         []classifyRule
	log           zerolog.Logger
}

// NewLineParser builds a parser. traceHeader is the request-header name whose
// value carries a trace id (matched as a fallback when no UUID-shaped token
// appears in the message). noiseMarkers are lowercased substrings that mark a
// line as the analyzer's own traffic; such lines are discarded outright so the
// tool never observes itself recursively.
func NewLineParser(traceHeader string, noiseMarkers []string, log zerolog.Logger) *LineParser {
	markers := make([]string, 0, len(noiseMarkers))
	for _, m := range noiseMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	p := &LineParser{
		headerPattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(traceHeader) + `[:=]\s*([0-9a-zA-Z_-]{8,})`),
		noiseMarkers:  markers,
		log:           log.With().Str("component", "logline-parser").Logger(),
	}
	p.rules = []classifyRule{
		{
			name:  "raw-file-saved",
			match: func(msg, _ string) bool { return strings.Contains(msg, "raw file saved") },
			apply: func(e *model.LogEntry, raw string) {
				e.Type = model.TypeRawLog
				m := rawSaved.FindStringSubmatch(raw)
				if m == nil {
					return
				}
				path := strings.Trim(m[1], `"'.,;`)
				info := naming.Parse(path)
				switch info.Type {
				case model.TypeRequest:
					e.Type = model.TypeRequest
					e.RequestFile = path
				case model.TypeResponse:
					e.Type = model.TypeResponse
					e.ResponseFile = path
				}
				if info.Direction != "" {
					e.Direction = info.Direction
				}
			},
		},
		{
			name: "request",
			match: func(msg, _ string) bool {
				return containsAny(msg, "calling", "sending request", "request to", "request sent")
			},
			apply: func(e *model.LogEntry, raw string) { e.Type = model.TypeRequest },
		},
		{
			name: "response",
			match: func(msg, _ string) bool {
				return containsAny(msg, "received", "response from", "response for")
			},
			apply: func(e *model.LogEntry, raw string) { e.Type = model.TypeResponse },
		},
		{
			name: "error",
			match: func(msg, level string) bool {
				return level == "ERROR" || containsAny(msg, "error", "exception", "failed", "failure")
			},
			apply: func(e *model.LogEntry, raw string) { e.Type = model.TypeError },
		},
		{
			name: "authentication",
			match: func(msg, _ string) bool {
				return containsAny(msg, "authentication ticket", "otds", "auth ticket", "ticket")
			},
			apply: func(e *model.LogEntry, raw string) { e.Type = model.TypeAuthentication },
		},
	}
	return p
}

// ParseFile reads one rolling log file and returns its classified entries.
// A read failure is fatal only to this file's contribution.
func (p *LineParser) ParseFile(path string) ([]model.LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var entries []model.LogEntry
	source := file.Name()
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if entry, ok := p.ParseLine(sc.Text(), source); ok {
			entries = append(entries, entry)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}
	p.log.Debug().Str("file", path).Int("entries", len(entries)).Msg("log file parsed")
	return entries, nil
}

// ParseLine parses a single rolling log line. The second return is false for
// lines that do not match the format (expected noise such as stack traces)
// and for the analyzer's own traffic.
func (p *LineParser) ParseLine(line, source string) (model.LogEntry, bool) {
	m := lineFormat.FindStringSubmatch(line)
	if m == nil {
		return model.LogEntry{}, false
	}
	if p.isSelfNoise(line) {
		return model.LogEntry{}, false
	}

	ts, err := time.ParseInLocation(lineLayout, m[1], time.Local)
	if err != nil {
		return model.LogEntry{}, false
	}

	msg := m[3]
	entry := model.LogEntry{
		Timestamp: ts,
		Level:     strings.ToUpper(m[2]),
		Message:   msg,
		Type:      model.TypeGeneral,
		Source:    source,
	}

	entry.TraceId = p.extractTraceId(msg)
	if bo := boPattern.FindStringSubmatch(msg); bo != nil {
		entry.BoType = strings.ToUpper(bo[1])
		entry.BoId = bo[2]
	}
	if sc := statusHint.FindStringSubmatch(msg); sc != nil {
		if code, err := strconv.Atoi(sc[1]); err == nil {
			entry.StatusCode = &code
		}
	}

	lower := strings.ToLower(msg)
	for _, rule := range p.rules {
		if rule.match(lower, entry.Level) {
			rule.apply(&entry, msg)
			break
		}
	}

	// Operation detection is a separate pass, deliberately decoupled from
	// the type decision.
	entry.Operation = GuessOperation(msg)

	return entry, true
}

// IsSelfNoise reports whether a message references the analyzer itself.
func (p *LineParser) IsSelfNoise(text string) bool {
	return p.isSelfNoise(text)
}

func (p *LineParser) isSelfNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range p.noiseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (p *LineParser) extractTraceId(msg string) string {
	if token := uuidToken.FindString(msg); token != "" {
		return naming.NormalizeTraceId(token)
	}
	if m := p.headerPattern.FindStringSubmatch(msg); m != nil {
		return naming.NormalizeTraceId(m[1])
	}
	return ""
}
