package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ecmbridge/tracelog/internal/engine"
	"github.com/ecmbridge/tracelog/internal/model"
	"github.com/ecmbridge/tracelog/internal/response"
)

// TraceHandler serves the trace query facade.
type TraceHandler struct {
	Engine   *engine.Engine
	Validate *validator.Validate
}

// traceQuery is the wire form of a trace listing request.
type traceQuery struct {
	From          string `query:"from"`
	To            string `query:"to"`
	Search        string `query:"search"`
	BoType        string `query:"boType"`
	BoId          string `query:"boId"`
	Operation     string `query:"operation"`
	Direction     string `query:"direction" validate:"omitempty,oneof=Inbound Outbound inbound outbound"`
	HasErrors     string `query:"hasErrors" validate:"omitempty,oneof=true false"`
	MinDurationMs *int64 `query:"minDurationMs" validate:"omitempty,min=0"`
	MaxDurationMs *int64 `query:"maxDurationMs" validate:"omitempty,min=0"`
}

// timeLayouts accepted for the from/to query parameters.
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseQueryTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unrecognized time format: " + value)
}

func (q traceQuery) toFilters() (model.SearchFilters, error) {
	filters := model.SearchFilters{
		Search:        strings.TrimSpace(q.Search),
		BoType:        q.BoType,
		BoId:          q.BoId,
		Operation:     q.Operation,
		Direction:     q.Direction,
		MinDurationMs: q.MinDurationMs,
		MaxDurationMs: q.MaxDurationMs,
	}
	var err error
	if filters.From, err = parseQueryTime(q.From); err != nil {
		return filters, err
	}
	if filters.To, err = parseQueryTime(q.To); err != nil {
		return filters, err
	}
	if q.HasErrors != "" {
		v, err := strconv.ParseBool(q.HasErrors)
		if err != nil {
			return filters, err
		}
		filters.HasErrors = &v
	}
	return filters, nil
}

// ListTraces handles GET /api/traces.
func (h *TraceHandler) ListTraces(c echo.Context) error {
	var q traceQuery
	if err := c.Bind(&q); err != nil {
		return response.BadRequest(c, "invalid query parameters", err.Error())
	}
	if err := h.Validate.Struct(q); err != nil {
		return response.BadRequest(c, "invalid query parameters", err.Error())
	}
	filters, err := q.toFilters()
	if err != nil {
		return response.BadRequest(c, "invalid query parameters", err.Error())
	}
	timelines := h.Engine.GetTraces(filters)
	return response.OK(c, map[string]any{"traces": timelines, "count": len(timelines)})
}

// GetTrace handles GET /api/traces/:id.
func (h *TraceHandler) GetTrace(c echo.Context) error {
	id := c.Param("id")
	timeline, err := h.Engine.GetTrace(id)
	if err != nil {
		if errors.Is(err, engine.ErrTraceNotFound) {
			return response.NotFound(c, "trace not found", err.Error())
		}
		return response.InternalError(c, "trace lookup failed", err.Error())
	}
	return response.OK(c, timeline)
}

// FilterOptions handles GET /api/traces/options.
func (h *TraceHandler) FilterOptions(c echo.Context) error {
	return response.OK(c, h.Engine.FilterOptions())
}

// GetFile handles GET /api/files?path=... and serves one raw artifact.
func (h *TraceHandler) GetFile(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return response.BadRequest(c, "missing path", "query param path is required")
	}
	content, err := h.Engine.ReadFile(path)
	if err != nil {
		if errors.Is(err, engine.ErrPathOutsideRoot) {
			return response.BadRequest(c, "invalid path", err.Error())
		}
		return response.NotFound(c, "file not found", err.Error())
	}
	return response.Text(c, content)
}
