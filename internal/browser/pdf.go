package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions contains page settings for PrintToPDF
type PDFOptions struct {
	// Paper dimensions in inches (A4: 8.27 x 11.69)
	PaperWidth  float64
	PaperHeight float64

	// Margins in inches
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	DisplayHeaderFooter bool
	HeaderTemplate      string
	FooterTemplate      string
	PrintBackground     bool
	Scale               float64
}

// DefaultPDFOptions returns A4 settings with page numbers in the footer
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:          8.27,
		PaperHeight:         11.69,
		MarginTop:           0.59,
		MarginBottom:        0.59,
		MarginLeft:          0.59,
		MarginRight:         0.59,
		DisplayHeaderFooter: true,
		HeaderTemplate:      `<span></span>`,
		FooterTemplate:      PageNumberFooter,
		PrintBackground:     true,
		Scale:               1.0,
	}
}

// PageNumberFooter renders "current / total" centered at the page bottom
const PageNumberFooter = `<div style="width:100%;text-align:center;font-size:9px;color:#6b7280;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// PrintPDF renders an HTML page to PDF bytes
func PrintPDF(ctx context.Context, html []byte, opts Options, pdf PDFOptions) ([]byte, error) {
	var data []byte
	err := withPage(ctx, html, opts,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, _, err = page.PrintToPDF().
				WithPaperWidth(pdf.PaperWidth).
				WithPaperHeight(pdf.PaperHeight).
				WithMarginTop(pdf.MarginTop).
				WithMarginBottom(pdf.MarginBottom).
				WithMarginLeft(pdf.MarginLeft).
				WithMarginRight(pdf.MarginRight).
				WithDisplayHeaderFooter(pdf.DisplayHeaderFooter).
				WithHeaderTemplate(pdf.HeaderTemplate).
				WithFooterTemplate(pdf.FooterTemplate).
				WithPrintBackground(pdf.PrintBackground).
				WithScale(pdf.Scale).
				WithPreferCSSPageSize(false).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to PDF: %w", err)
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}
