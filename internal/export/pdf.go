package export

import (
	"context"

	"github.com/reportdeck/reportdeck/internal/browser"
	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/web"
)

// PDFExporter prints the print variant of the page with headless Chrome
type PDFExporter struct {
	renderer *web.Renderer
	browser  browser.Options
	pdf      browser.PDFOptions
}

// NewPDFExporter creates a PDF exporter with A4 defaults
func NewPDFExporter(renderer *web.Renderer, opts browser.Options) *PDFExporter {
	return NewPDFExporterWithOptions(renderer, opts, browser.DefaultPDFOptions())
}

// NewPDFExporterWithOptions creates a PDF exporter with custom page settings
func NewPDFExporterWithOptions(renderer *web.Renderer, opts browser.Options, pdf browser.PDFOptions) *PDFExporter {
	return &PDFExporter{renderer: renderer, browser: opts, pdf: pdf}
}

// Export renders the print page and converts it to PDF
func (e *PDFExporter) Export(ctx context.Context, r *report.Report) ([]byte, error) {
	page, err := e.renderer.HTML(r, web.VariantPrint)
	if err != nil {
		return nil, err
	}
	return browser.PrintPDF(ctx, page, e.browser, e.pdf)
}

// Name returns the exporter name
func (e *PDFExporter) Name() string { return "PDF" }

// FileExtension returns the file extension
func (e *PDFExporter) FileExtension() string { return ".pdf" }

// ContentType returns the MIME type
func (e *PDFExporter) ContentType() string { return "application/pdf" }
