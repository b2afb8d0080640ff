package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/reportdeck/reportdeck/internal/report"
)

// MarkdownExporter writes a plain-text rendition with a table of contents.
// Charts become tables.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a Markdown exporter
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export renders the report as Markdown
func (e *MarkdownExporter) Export(_ context.Context, r *report.Report) ([]byte, error) {
	tag := r.Tag()
	w := &mdWriter{
		format: report.NewNumberFormatter(tag),
		labels: report.LabelsFor(tag),
	}
	w.report(r)
	return []byte(w.sb.String()), nil
}

// Name returns the exporter name
func (e *MarkdownExporter) Name() string { return "Markdown" }

// FileExtension returns the file extension
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// ContentType returns the MIME type
func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }

type mdWriter struct {
	sb     strings.Builder
	format *report.NumberFormatter
	labels report.Labels
}

func (w *mdWriter) line(format string, args ...any) {
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *mdWriter) blank() { w.sb.WriteByte('\n') }

func (w *mdWriter) report(r *report.Report) {
	w.line("# %s", r.FullTitle())
	w.blank()
	if r.Period != "" {
		w.line("> %s: %s  ", w.labels.Period, r.Period)
	}
	if r.ReportDate != "" {
		w.line("> %s: %s", w.labels.ReportDate, r.ReportDate)
	}
	w.blank()

	w.line("## %s", w.labels.Contents)
	w.blank()
	for _, s := range r.Sections {
		w.line("- [%s](#%s)", s.Label, s.ID)
	}
	w.blank()

	for _, s := range r.Sections {
		w.section(s)
	}

	if r.Footer != "" {
		w.line("---")
		w.blank()
		w.line("%s", r.Footer)
	}
}

func (w *mdWriter) section(s report.Section) {
	w.line(`<a id="%s"></a>`, s.ID)
	w.blank()
	w.line("## %s", s.Heading())
	w.blank()

	for _, p := range s.Paragraphs {
		w.line("%s", p)
		w.blank()
	}

	for _, c := range s.Charts {
		w.chart(c)
	}

	if len(s.KPIs) > 0 {
		w.line("| %s | %s | %s |", w.labels.Item, w.labels.Value, w.labels.Change)
		w.line("|---|---:|---|")
		for _, k := range s.KPIs {
			w.line("| %s | %s | %s |", cell(k.Label), cell(k.Value), cell(k.Change))
		}
		w.blank()
	}

	for _, c := range s.Cards {
		if c.Badge != "" {
			w.line("- **%s** (%s): %s", c.Title, c.Badge, c.Description)
		} else {
			w.line("- **%s**: %s", c.Title, c.Description)
		}
	}
	if len(s.Cards) > 0 {
		w.blank()
	}

	if len(s.Indicators) > 0 {
		w.line("| %s | %s |", w.labels.Item, w.labels.Value)
		w.line("|---|---:|")
		for _, ind := range s.Indicators {
			w.line("| %s | %s |", cell(ind.Label), cell(ind.Value))
		}
		w.blank()
	}

	group := ""
	for _, l := range s.Lists {
		if l.Group != "" && l.Group != group {
			w.line("### %s", l.Group)
			w.blank()
		}
		group = l.Group

		level := "###"
		if l.Group != "" {
			level = "####"
		}
		if l.Title != "" {
			w.line("%s %s", level, l.Title)
			w.blank()
		}
		for i, item := range l.Items {
			if l.Style == report.ListNumbered {
				w.line("%d. %s", i+1, item)
			} else {
				w.line("- %s", item)
			}
		}
		w.blank()
	}

	if c := s.Callout; c != nil {
		w.line("> **%s**", c.Title)
		w.line(">")
		w.line("> %s", c.Body)
		w.blank()
	}
}

func (w *mdWriter) chart(c report.Chart) {
	w.line("### %s", c.Title)
	w.blank()

	if c.Kind == report.ChartPie {
		total := c.Total()
		w.line("| %s | %s | %s |", w.labels.Item, w.labels.Value, w.labels.Share)
		w.line("|---|---:|---:|")
		for _, s := range c.Slices {
			w.line("| %s | %s | %s |", cell(s.Label), w.format.Format(s.Value), w.format.Percent(s.Value, total))
		}
		w.blank()
		return
	}

	header := "| " + w.labels.Item + " |"
	align := "|---|"
	for _, cat := range c.Categories {
		header += " " + cell(cat) + " |"
		align += "---:|"
	}
	w.line("%s", header)
	w.line("%s", align)
	for _, s := range c.Series {
		row := "| " + cell(s.Name) + " |"
		for _, v := range s.Values {
			row += " " + w.format.Format(v) + " |"
		}
		w.line("%s", row)
	}
	w.blank()
}

// cell escapes pipes inside a table cell
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
