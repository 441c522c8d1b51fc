package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmbridge/tracelog/internal/model"
)

func newTestParser() *LineParser {
	return NewLineParser("X-Trace-Id", []string{"/api/traces", "tracelog", "favicon"}, zerolog.Nop())
}

func TestParseLineBasicFormat(t *testing.T) {
	p := newTestParser()

	entry, ok := p.ParseLine("2025-01-01 10:00:00.000 [INFO] Calling master data lookup", "app.log")
	require.True(t, ok)

	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "Calling master data lookup", entry.Message)
	assert.Equal(t, model.TypeRequest, entry.Type)
	assert.Equal(t, model.OpMasterData, entry.Operation)
	assert.Equal(t, "app.log", entry.Source)
	assert.Equal(t, 2025, entry.Timestamp.Year())
}

func TestParseLineDropsNonMatching(t *testing.T) {
	p := newTestParser()

	_, ok := p.ParseLine("   at Some.Stack.Frame(line 42)", "app.log")
	assert.False(t, ok)

	_, ok = p.ParseLine("", "app.log")
	assert.False(t, ok)
}

func TestParseLineDropsSelfNoise(t *testing.T) {
	p := newTestParser()

	_, ok := p.ParseLine("2025-01-01 10:00:00.000 [INFO] GET /api/traces?search=x", "app.log")
	assert.False(t, ok, "a line referencing the analyzer's own route must never produce an entry")

	_, ok = p.ParseLine("2025-01-01 10:00:00.000 [INFO] GET /favicon.ico", "app.log")
	assert.False(t, ok)
}

func TestParseLineTraceIdHyphensAndUnderscores(t *testing.T) {
	p := newTestParser()

	hyphen, ok := p.ParseLine("2025-01-01 10:00:00.000 [INFO] trace FA6E0000-0000-0000-0000-000000000000 started", "app.log")
	require.True(t, ok)
	underscore, ok := p.ParseLine("2025-01-01 10:00:01.000 [INFO] trace fa6e0000_0000_0000_0000_000000000000 continued", "app.log")
	require.True(t, ok)

	assert.Equal(t, "fa6e0000-0000-0000-0000-000000000000", hyphen.TraceId)
	assert.Equal(t, hyphen.TraceId, underscore.TraceId)
}

func TestParseLineTraceIdHeaderFallback(t *testing.T) {
	p := newTestParser()

	entry, ok := p.ParseLine("2025-01-01 10:00:00.000 [INFO] forwarding X-Trace-Id: abc123token9999", "app.log")
	require.True(t, ok)
	assert.Equal(t, "abc123token9999", entry.TraceId)
}

func TestParseLineBusinessObjectExtraction(t *testing.T) {
	p := newTestParser()

	entry, ok := p.ParseLine("2025-01-01 10:00:00.000 [INFO] Calling lookup for BUS1006_000123", "app.log")
	require.True(t, ok)
	assert.Equal(t, "BUS1006", entry.BoType)
	assert.Equal(t, "000123", entry.BoId)
}

func TestParseLineClassificationOrder(t *testing.T) {
	p := newTestParser()

	cases := []struct {
		line string
		want model.EntryType
	}{
		{"2025-01-01 10:00:00.000 [INFO] Raw file saved: Raw/Outbound/20250101100000_request_fa6e0000-0000-0000-0000-000000000000.txt", model.TypeRequest},
		{"2025-01-01 10:00:00.000 [INFO] Calling node service", model.TypeRequest},
		{"2025-01-01 10:00:00.000 [INFO] Response received from node service", model.TypeResponse},
		{"2025-01-01 10:00:00.000 [WARN] Classification call failed", model.TypeError},
		{"2025-01-01 10:00:00.000 [ERROR] Something odd happened", model.TypeError},
		{"2025-01-01 10:00:00.000 [INFO] OTDS ticket refreshed", model.TypeAuthentication},
		{"2025-01-01 10:00:00.000 [INFO] Startup complete", model.TypeGeneral},
	}
	for _, tc := range cases {
		entry, ok := p.ParseLine(tc.line, "app.log")
		require.True(t, ok, tc.line)
		assert.Equal(t, tc.want, entry.Type, tc.line)
	}
}

func TestParseLineRawSavedPopulatesFileField(t *testing.T) {
	p := newTestParser()

	req, ok := p.ParseLine("2025-01-01 10:00:00.000 [INFO] Raw file saved: Raw/Outbound/20250101100000_request_fa6e0000-0000-0000-0000-000000000000.txt", "app.log")
	require.True(t, ok)
	assert.Equal(t, model.TypeRequest, req.Type)
	assert.Equal(t, "Raw/Outbound/20250101100000_request_fa6e0000-0000-0000-0000-000000000000.txt", req.RequestFile)
	assert.Empty(t, req.ResponseFile)

	resp, ok := p.ParseLine("2025-01-01 10:00:01.000 [INFO] Raw file saved: Raw/Inbound/20250101100001_response_fa6e0000-0000-0000-0000-000000000000.txt", "app.log")
	require.True(t, ok)
	assert.Equal(t, model.TypeResponse, resp.Type)
	assert.Equal(t, "Raw/Inbound/20250101100001_response_fa6e0000-0000-0000-0000-000000000000.txt", resp.ResponseFile)
}

func TestParseLineOperationIndependentOfType(t *testing.T) {
	p := newTestParser()

	entry, ok := p.ParseLine("2025-01-01 10:00:00.000 [ERROR] Business workspace call exception", "app.log")
	require.True(t, ok)

	assert.Equal(t, model.TypeError, entry.Type)
	assert.Equal(t, model.OpBusinessWorkspace, entry.Operation)
}

func TestParseLineStatusCodeHint(t *testing.T) {
	p := newTestParser()

	entry, ok := p.ParseLine("2025-01-01 10:00:00.000 [INFO] Response received, status 200", "app.log")
	require.True(t, ok)
	require.NotNil(t, entry.StatusCode)
	assert.Equal(t, 200, *entry.StatusCode)
}

func TestGuessOperationOrder(t *testing.T) {
	assert.Equal(t, model.OpMasterData, GuessOperation("MasterData classification run"))
	assert.Equal(t, model.OpBusinessWorkspace, GuessOperation("business workspace search"))
	assert.Equal(t, model.OpSearch, GuessOperation("generic search call"))
	assert.Empty(t, GuessOperation("nothing interesting"))
}

func TestParseFileSkipsNoiseAndGarbage(t *testing.T) {
	p := newTestParser()
	dir := t.TempDir()

	content := `2025-01-01 10:00:00.000 [INFO] Calling node service for fa6e0000-0000-0000-0000-000000000000
stack trace garbage line
2025-01-01 10:00:01.000 [INFO] GET /api/traces
2025-01-01 10:00:02.000 [ERROR] Node call failed
`
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.TypeRequest, entries[0].Type)
	assert.Equal(t, model.TypeError, entries[1].Type)
}

func TestParseFileMissing(t *testing.T) {
	p := newTestParser()
	_, err := p.ParseFile(filepath.Join(t.TempDir(), "absent.log"))
	assert.Error(t, err)
}
