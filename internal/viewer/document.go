package viewer

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/tracker"
)

const minWidth = 40

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	groupStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	upStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	calloutStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
)

// Document is the report laid out as terminal lines. Bands records the line
// range of every section and serves as the tracker's layout.
type Document struct {
	Lines []string
	Bands tracker.Positions
	Width int
}

// Position implements tracker.Layout
func (d *Document) Position(id string) (tracker.Position, bool) {
	if d == nil {
		return tracker.Position{}, false
	}
	return d.Bands.Position(id)
}

// Content joins the lines for the viewport
func (d *Document) Content() string {
	return strings.Join(d.Lines, "\n")
}

// Render lays out r for a terminal of the given width. Sections follow
// declaration order, so bands are contiguous and ordered like the navigation.
func Render(r *report.Report, width int) *Document {
	if width < minWidth {
		width = minWidth
	}
	tag := r.Tag()
	w := &textWriter{
		width:  width,
		format: report.NewNumberFormatter(tag),
		labels: report.LabelsFor(tag),
	}

	bands := make(tracker.Positions, len(r.Sections))
	for _, s := range r.Sections {
		top := len(w.lines)
		w.section(s)
		bands[s.ID] = tracker.Position{Top: float64(top), Height: float64(len(w.lines) - top)}
	}
	if r.Footer != "" {
		w.text(mutedStyle.Render(r.Footer), 0)
	}

	return &Document{Lines: w.lines, Bands: bands, Width: width}
}

type textWriter struct {
	width  int
	format *report.NumberFormatter
	labels report.Labels
	lines  []string
}

func (w *textWriter) add(s string) {
	w.lines = append(w.lines, strings.Split(s, "\n")...)
}

func (w *textWriter) blank() { w.lines = append(w.lines, "") }

// text word-wraps s and hard-wraps what has no spaces, e.g. CJK runs
func (w *textWriter) text(s string, pad uint) {
	limit := w.width - int(pad)
	wrapped := wrap.String(wordwrap.String(s, limit), limit)
	if pad > 0 {
		wrapped = indent.String(wrapped, pad)
	}
	w.add(wrapped)
}

func (w *textWriter) section(s report.Section) {
	w.add(sectionStyle.Render("■ " + s.Heading()))
	w.add(mutedStyle.Render(strings.Repeat("─", w.width)))

	for _, p := range s.Paragraphs {
		w.text(plain(p), 0)
		w.blank()
	}
	if len(s.KPIs) > 0 {
		w.kpis(s.KPIs)
	}
	for _, c := range s.Charts {
		w.chart(c)
	}
	for _, c := range s.Cards {
		title := c.Title
		if c.Badge != "" {
			title += " [" + c.Badge + "]"
		}
		w.add(groupStyle.Render("◆ " + title))
		w.text(c.Description, 2)
	}
	if len(s.Cards) > 0 {
		w.blank()
	}
	for _, ind := range s.Indicators {
		w.add(fmt.Sprintf("%s  %s  %s", ind.Label, ind.Value, bar(ind.Percent/100, w.barWidth())))
	}
	if len(s.Indicators) > 0 {
		w.blank()
	}
	w.lists(s.Lists)
	if s.Callout != nil {
		box := calloutStyle.Width(w.width - 2).Render(groupStyle.Render(s.Callout.Title) + "\n" + s.Callout.Body)
		w.add(box)
		w.blank()
	}
	w.blank()
}

func (w *textWriter) kpis(kpis []report.KPI) {
	for _, k := range kpis {
		line := fmt.Sprintf("%s: %s", k.Label, groupStyle.Render(k.Value))
		if k.Change != "" {
			line += "  " + upStyle.Render(k.Change)
		}
		w.add("  " + line)
	}
	w.blank()
}

func (w *textWriter) chart(c report.Chart) {
	w.add(chartStyle.Render(c.Title))

	if c.Kind == report.ChartPie {
		total := c.Total()
		for _, s := range c.Slices {
			w.add(fmt.Sprintf("  %s  %s  %s  %s", s.Label, w.format.Format(s.Value),
				w.format.Percent(s.Value, total), bar(safeRatio(s.Value, total), w.barWidth())))
		}
		w.blank()
		return
	}

	peak := make(map[string]float64, 2)
	for _, s := range c.Series {
		for _, v := range s.Values {
			peak[s.Axis] = math.Max(peak[s.Axis], v)
		}
	}
	for i, cat := range c.Categories {
		w.add("  " + groupStyle.Render(cat))
		for _, s := range c.Series {
			if i >= len(s.Values) {
				continue
			}
			v := s.Values[i]
			w.add(fmt.Sprintf("    %s  %s  %s", s.Name, w.format.Format(v), bar(safeRatio(v, peak[s.Axis]), w.barWidth())))
		}
	}
	w.blank()
}

func (w *textWriter) lists(lists []report.List) {
	group := ""
	for _, l := range lists {
		if l.Group != "" && l.Group != group {
			w.add(sectionStyle.Render(l.Group))
		}
		group = l.Group
		if l.Title != "" {
			w.add(groupStyle.Render(l.Title))
		}
		for i, item := range l.Items {
			w.text(marker(l.Style, i)+" "+item, 2)
		}
		w.blank()
	}
}

func (w *textWriter) barWidth() int {
	return w.width / 3
}

func marker(style report.ListStyle, i int) string {
	switch style {
	case report.ListCheck:
		return "✓"
	case report.ListNumbered:
		return fmt.Sprintf("%d.", i+1)
	case report.ListPlus:
		return "+"
	case report.ListMinus:
		return "-"
	default:
		return "•"
	}
}

// bar draws ratio (0..1) as a block bar of the given width
func bar(ratio float64, width int) string {
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))
	return strings.Repeat("█", filled) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func safeRatio(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}

// plain drops inline Markdown emphasis markers
func plain(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}
