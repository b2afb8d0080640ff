package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reportdeck/reportdeck/internal/web"
	"github.com/reportdeck/reportdeck/pkg/telemetry"
)

// PageHandler serves the rendered report page
type PageHandler struct {
	renderer *web.Renderer
	source   Source
}

// NewPageHandler creates a new page handler
func NewPageHandler(renderer *web.Renderer, source Source) *PageHandler {
	return &PageHandler{renderer: renderer, source: source}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, web.VariantInteractive)
}

// Print handles GET /print
func (h *PageHandler) Print(c *gin.Context) {
	h.render(c, web.VariantPrint)
}

func (h *PageHandler) render(c *gin.Context, variant web.Variant) {
	r, err := h.source()
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, r, variant); err != nil {
		_ = c.Error(err)
		return
	}

	telemetry.GetMetrics().RecordPageRender(c.Request.Context(), string(variant))
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
