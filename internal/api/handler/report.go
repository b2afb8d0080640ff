package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/internal/tracker"
	"github.com/reportdeck/reportdeck/pkg/errors"
	"github.com/reportdeck/reportdeck/pkg/logger"
	"github.com/reportdeck/reportdeck/pkg/telemetry"
)

// ReportHandler serves report content and section tracking
type ReportHandler struct {
	source      Source
	fixedOffset float64
	navOffset   float64
}

// NewReportHandler creates a new report handler
func NewReportHandler(source Source, fixedOffset, navOffset float64) *ReportHandler {
	return &ReportHandler{source: source, fixedOffset: fixedOffset, navOffset: navOffset}
}

// GetReport handles GET /api/v1/report
func (h *ReportHandler) GetReport(c *gin.Context) {
	r, err := h.source()
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// SectionsResponse lists the navigation sections with the tracker offsets
type SectionsResponse struct {
	Sections    []tracker.Section `json:"sections"`
	FixedOffset float64           `json:"fixed_offset"`
	NavOffset   float64           `json:"nav_offset"`
}

// ListSections handles GET /api/v1/sections
func (h *ReportHandler) ListSections(c *gin.Context) {
	r, err := h.source()
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SectionsResponse{
		Sections:    r.Descriptors(),
		FixedOffset: h.fixedOffset,
		NavOffset:   h.navOffset,
	})
}

// PositionPayload is a measured section band
type PositionPayload struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// ResolveRequest is the body of POST /api/v1/sections/resolve
type ResolveRequest struct {
	ScrollOffset *float64                   `json:"scroll_offset" binding:"required"`
	Previous     string                     `json:"previous"`
	Positions    map[string]PositionPayload `json:"positions"`
}

// ResolveResponse reports the active section for a scroll offset
type ResolveResponse struct {
	Active  string  `json:"active"`
	Probe   float64 `json:"probe"`
	Matched bool    `json:"matched"`
}

// ResolveSection handles POST /api/v1/sections/resolve.
// Sections missing from positions are treated as unavailable. When no band
// contains the probe the previous section stays active.
func (h *ReportHandler) ResolveSection(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ErrValidation("Invalid request body: " + err.Error()))
		return
	}

	r, err := h.source()
	if err != nil {
		_ = c.Error(err)
		return
	}

	layout := make(tracker.Positions, len(req.Positions))
	for id, p := range req.Positions {
		layout[id] = tracker.Position{Top: p.Top, Height: p.Height}
	}

	t, err := tracker.New(r.Descriptors(), layout, nil,
		tracker.WithFixedOffset(h.fixedOffset),
		tracker.WithNavOffset(h.navOffset),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if unknown := unknownIDs(t, req.Positions); len(unknown) > 0 {
		_ = c.Error(errors.ErrValidation("positions reference unknown sections").WithDetails(unknown))
		return
	}
	if req.Previous != "" && !t.Has(req.Previous) {
		_ = c.Error(errors.ErrValidation("unknown previous section: " + req.Previous))
		return
	}

	offset := *req.ScrollOffset
	matched := t.Recompute(offset)
	active := t.Active()
	if !matched && req.Previous != "" {
		active = req.Previous
	}

	telemetry.GetMetrics().RecordSectionResolution(c.Request.Context(), matched)
	logger.Debug("Resolved active section",
		zap.String(logger.FieldSectionID, active),
		zap.Float64("scroll_offset", offset),
		zap.Bool("matched", matched),
	)

	c.JSON(http.StatusOK, ResolveResponse{
		Active:  active,
		Probe:   t.Probe(offset),
		Matched: matched,
	})
}

func unknownIDs(t *tracker.Tracker, positions map[string]PositionPayload) []string {
	var unknown []string
	for id := range positions {
		if !t.Has(id) {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown
}
