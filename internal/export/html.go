package export

import (
	"context"

	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/web"
)

// HTMLExporter writes the interactive page as a self-contained file
type HTMLExporter struct {
	renderer *web.Renderer
}

// NewHTMLExporter creates an HTML exporter
func NewHTMLExporter(renderer *web.Renderer) *HTMLExporter {
	return &HTMLExporter{renderer: renderer}
}

// Export renders the interactive page
func (e *HTMLExporter) Export(_ context.Context, r *report.Report) ([]byte, error) {
	return e.renderer.HTML(r, web.VariantInteractive)
}

// Name returns the exporter name
func (e *HTMLExporter) Name() string { return "HTML" }

// FileExtension returns the file extension
func (e *HTMLExporter) FileExtension() string { return ".html" }

// ContentType returns the MIME type
func (e *HTMLExporter) ContentType() string { return "text/html; charset=utf-8" }
