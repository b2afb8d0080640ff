package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/reportdeck/internal/api/handler"
	"github.com/reportdeck/reportdeck/internal/browser"
	"github.com/reportdeck/reportdeck/internal/config"
	"github.com/reportdeck/reportdeck/internal/export"
	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/web"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	return setupWith(t, cfg)
}

func setupWith(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := web.New(web.Options{FixedOffset: cfg.Report.FixedOffset, NavOffset: cfg.Report.NavOffset})
	require.NoError(t, err)

	r := gin.New()
	Setup(r, Deps{
		Config:   cfg,
		Renderer: renderer,
		Exports:  export.NewDefaultManager(renderer, browser.Options{}),
		Source:   handler.StaticSource(report.Builtin()),
	})
	return r
}

func TestSetup_Routes(t *testing.T) {
	r := setup(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/print", "", http.StatusOK},
		{http.MethodGet, "/api/v1/report", "", http.StatusOK},
		{http.MethodGet, "/api/v1/sections", "", http.StatusOK},
		{http.MethodPost, "/api/v1/sections/resolve", `{"scroll_offset": 0}`, http.StatusOK},
		{http.MethodGet, "/api/v1/export", "", http.StatusOK},
		{http.MethodGet, "/api/v1/export/markdown", "", http.StatusOK},
		{http.MethodGet, "/api/v1/export/docx", "", http.StatusBadRequest},
		{http.MethodGet, "/missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestSetup_CORS(t *testing.T) {
	r := setup(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sections", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetup_PageAndAPIShareOffsets(t *testing.T) {
	tests := []struct {
		name  string
		fixed float64
		nav   float64
	}{
		{"defaults", 100, 80},
		{"zero", 0, 0},
		{"custom", 64, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Report.FixedOffset = tt.fixed
			cfg.Report.NavOffset = tt.nav
			require.NoError(t, cfg.Validate())
			r := setupWith(t, cfg)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sections", nil))
			require.Equal(t, http.StatusOK, w.Code)
			var api handler.SectionsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &api))
			assert.Equal(t, tt.fixed, api.FixedOffset)
			assert.Equal(t, tt.nav, api.NavOffset)

			w = httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, w.Code)
			page := w.Body.String()
			assert.Contains(t, page, fmt.Sprintf(`"fixedOffset":%v`, tt.fixed))
			assert.Contains(t, page, fmt.Sprintf(`"navOffset":%v`, tt.nav))
		})
	}
}
