package handler

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/reportdeck/internal/api/middleware"
	"github.com/reportdeck/reportdeck/internal/browser"
	"github.com/reportdeck/reportdeck/internal/export"
	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/web"
	"github.com/reportdeck/reportdeck/pkg/errors"
)

func setupRouter(t *testing.T, source Source) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(false))

	renderer, err := web.New(web.DefaultOptions())
	require.NoError(t, err)

	pages := NewPageHandler(renderer, source)
	reports := NewReportHandler(source, 100, 80)
	exports := NewExportHandler(export.NewDefaultManager(renderer, browser.Options{}), source)

	r.GET("/", pages.Index)
	r.GET("/print", pages.Print)
	r.GET("/health", Health)
	r.GET("/api/v1/report", reports.GetReport)
	r.GET("/api/v1/sections", reports.ListSections)
	r.POST("/api/v1/sections/resolve", reports.ResolveSection)
	r.GET("/api/v1/export", exports.ListFormats)
	r.GET("/api/v1/export/:format", exports.Export)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, StaticSource(report.Builtin()))
	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestPages(t *testing.T) {
	r := setupRouter(t, StaticSource(report.Builtin()))

	w := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "reportdeckConfig")

	w = do(r, http.MethodGet, "/print", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "reportdeckConfig")
}

func TestPages_SourceError(t *testing.T) {
	failing := func() (*report.Report, error) {
		return nil, errors.Wrap(errors.ErrCodeInvalidContent, "bad content", stderrors.New("yaml"))
	}
	r := setupRouter(t, failing)

	w := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ErrCodeInvalidContent), errorCode(t, w))
}

func TestGetReport(t *testing.T) {
	r := setupRouter(t, StaticSource(report.Builtin()))

	w := do(r, http.MethodGet, "/api/v1/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, report.Builtin().Title, got.Title)
	assert.Len(t, got.Sections, len(report.Builtin().Sections))
}

func TestListSections(t *testing.T) {
	r := setupRouter(t, StaticSource(report.Builtin()))

	w := do(r, http.MethodGet, "/api/v1/sections", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got SectionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, report.Builtin().Descriptors(), got.Sections)
	assert.Equal(t, 100.0, got.FixedOffset)
	assert.Equal(t, 80.0, got.NavOffset)
}

func TestResolveSection(t *testing.T) {
	positions := map[string]PositionPayload{
		report.SectionOverview:    {Top: 0, Height: 500},
		report.SectionPerformance: {Top: 500, Height: 300},
	}
	offset := func(v float64) *float64 { return &v }

	tests := []struct {
		name        string
		req         ResolveRequest
		wantActive  string
		wantProbe   float64
		wantMatched bool
	}{
		{
			name:        "offset inside second band",
			req:         ResolveRequest{ScrollOffset: offset(450), Positions: positions},
			wantActive:  report.SectionPerformance,
			wantProbe:   550,
			wantMatched: true,
		},
		{
			name:        "offset zero resolves first band",
			req:         ResolveRequest{ScrollOffset: offset(0), Previous: report.SectionPerformance, Positions: positions},
			wantActive:  report.SectionOverview,
			wantProbe:   100,
			wantMatched: true,
		},
		{
			name:        "past the end keeps previous",
			req:         ResolveRequest{ScrollOffset: offset(5000), Previous: report.SectionPerformance, Positions: positions},
			wantActive:  report.SectionPerformance,
			wantProbe:   5100,
			wantMatched: false,
		},
		{
			name:        "no positions without previous falls back to first section",
			req:         ResolveRequest{ScrollOffset: offset(300)},
			wantActive:  report.SectionOverview,
			wantProbe:   400,
			wantMatched: false,
		},
	}

	r := setupRouter(t, StaticSource(report.Builtin()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/sections/resolve", tt.req)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var got ResolveResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantActive, got.Active)
			assert.Equal(t, tt.wantProbe, got.Probe)
			assert.Equal(t, tt.wantMatched, got.Matched)
		})
	}
}

func TestResolveSection_Invalid(t *testing.T) {
	r := setupRouter(t, StaticSource(report.Builtin()))
	offset := 10.0

	tests := []struct {
		name string
		body any
	}{
		{"missing offset", map[string]any{"previous": report.SectionOverview}},
		{"unknown previous", ResolveRequest{ScrollOffset: &offset, Previous: "appendix"}},
		{"unknown position id", ResolveRequest{
			ScrollOffset: &offset,
			Positions:    map[string]PositionPayload{"appendix": {Top: 0, Height: 10}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/sections/resolve", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, string(errors.ErrCodeValidation), errorCode(t, w))
		})
	}
}

func TestExport(t *testing.T) {
	r := setupRouter(t, StaticSource(report.Builtin()))

	w := do(r, http.MethodGet, "/api/v1/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"markdown"`)

	tests := []struct {
		format      string
		contentType string
		ext         string
	}{
		{"html", "text/html; charset=utf-8", ".html"},
		{"markdown", "text/markdown; charset=utf-8", ".md"},
		{"json", "application/json", ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/v1/export/"+tt.format, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))

			disposition := w.Header().Get("Content-Disposition")
			assert.True(t, strings.HasPrefix(disposition, "attachment; filename*=UTF-8''"))
			assert.True(t, strings.HasSuffix(disposition, tt.ext))
			assert.NotEmpty(t, w.Body.Bytes())
		})
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	r := setupRouter(t, StaticSource(report.Builtin()))

	w := do(r, http.MethodGet, "/api/v1/export/docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ErrCodeUnsupportedFormat), errorCode(t, w))
}
