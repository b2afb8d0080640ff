package export

import (
	"github.com/reportdeck/reportdeck/internal/browser"
	"github.com/reportdeck/reportdeck/internal/web"
)

// NewDefaultManager registers the HTML, Markdown, JSON and PDF exporters
func NewDefaultManager(renderer *web.Renderer, chrome browser.Options) *Manager {
	m := NewManager()
	m.Register(FormatHTML, NewHTMLExporter(renderer))
	m.Register(FormatMarkdown, NewMarkdownExporter())
	m.Register(FormatJSON, NewJSONExporter())
	m.Register(FormatPDF, NewPDFExporter(renderer, chrome))
	return m
}
