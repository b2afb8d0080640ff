// Package web renders the report as a standalone HTML page.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/report/chart"
	"github.com/reportdeck/reportdeck/pkg/errors"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

//go:embed templates/*.tmpl static/*
var assets embed.FS

// Variant selects the page flavor
type Variant string

const (
	// VariantInteractive has the sticky header, nav bar and tracking script
	VariantInteractive Variant = "interactive"
	// VariantPrint is a static page for PDF output
	VariantPrint Variant = "print"
)

// Options configures a Renderer
type Options struct {
	FixedOffset float64
	NavOffset   float64
	// Language overrides the report's own language tag
	Language string
	Chart    chart.Options
}

// Renderer turns a report into HTML. It is safe for concurrent use.
type Renderer struct {
	opts     Options
	tmpl     *template.Template
	style    template.CSS
	script   template.JS
	markdown goldmark.Markdown
}

// DefaultOptions uses the default tracking offsets
func DefaultOptions() Options {
	return Options{
		FixedOffset: consts.DefaultFixedOffset,
		NavOffset:   consts.DefaultNavOffset,
	}
}

// New parses the embedded templates. Offsets are used as given; zero is a
// valid offset.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.ParseFS(assets, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	style, err := assets.ReadFile("static/style.css")
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}
	script, err := assets.ReadFile("static/tracker.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker script: %w", err)
	}

	return &Renderer{
		opts:     opts,
		tmpl:     tmpl,
		style:    template.CSS(style),
		script:   template.JS(script),
		markdown: goldmark.New(),
	}, nil
}

// Render writes the page for r to w
func (rd *Renderer) Render(w io.Writer, r *report.Report, variant Variant) error {
	data, err := rd.pageData(r, variant)
	if err != nil {
		return err
	}
	if err := rd.tmpl.ExecuteTemplate(w, "page.html.tmpl", data); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, "failed to execute page template", err)
	}
	return nil
}

// HTML renders the page into memory
func (rd *Renderer) HTML(r *report.Report, variant Variant) ([]byte, error) {
	var buf bytes.Buffer
	if err := rd.Render(&buf, r, variant); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TrackerConfig is the configuration handed to the page script
type TrackerConfig struct {
	FixedOffset float64      `json:"fixedOffset"`
	NavOffset   float64      `json:"navOffset"`
	Sections    []navSection `json:"sections"`
}

type navSection struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type pageData struct {
	Lang        string
	Generator   string
	FullTitle   string
	Period      string
	ReportDate  string
	Footer      string
	Labels      report.Labels
	Interactive bool
	Nav         []navItem
	Main        []sectionView
	Sidebar     []sectionView
	Tracker     TrackerConfig
	Style       template.CSS
	Script      template.JS
}

type navItem struct {
	ID     string
	Label  string
	Active bool
}

type sectionView struct {
	ID         string
	Heading    string
	Paragraphs []template.HTML
	Charts     []chartView
	KPIs       []report.KPI
	Cards      []report.Card
	Indicators []indicatorView
	Groups     []listGroup
	Callout    *report.Callout
}

type chartView struct {
	ID    string
	Title string
	SVG   template.HTML
	Table chartTable
}

type chartTable struct {
	Columns []string
	Rows    []chartRow
}

type chartRow struct {
	Label string
	Cells []string
}

type indicatorView struct {
	Label string
	Value string
	Width template.CSS
}

type listGroup struct {
	Heading string
	Lists   []report.List
}

func (rd *Renderer) pageData(r *report.Report, variant Variant) (*pageData, error) {
	tag := r.Tag()
	if rd.opts.Language != "" {
		if t, err := language.Parse(rd.opts.Language); err == nil {
			tag = t
		}
	}
	format := report.NewNumberFormatter(tag)
	chartOpts := rd.opts.Chart
	if chartOpts.Format == nil {
		chartOpts.Format = format.Format
	}

	data := &pageData{
		Lang:        tag.String(),
		Generator:   consts.ProjectName + " " + consts.Version,
		FullTitle:   r.FullTitle(),
		Period:      r.Period,
		ReportDate:  r.ReportDate,
		Footer:      r.Footer,
		Labels:      report.LabelsFor(tag),
		Interactive: variant != VariantPrint,
		Style:       rd.style,
		Script:      rd.script,
		Tracker: TrackerConfig{
			FixedOffset: rd.opts.FixedOffset,
			NavOffset:   rd.opts.NavOffset,
		},
	}

	for i, s := range r.Sections {
		data.Nav = append(data.Nav, navItem{ID: s.ID, Label: s.Label, Active: i == 0})
		data.Tracker.Sections = append(data.Tracker.Sections, navSection{ID: s.ID, Label: s.Label})

		view, err := rd.sectionView(s, chartOpts, format, data.Labels)
		if err != nil {
			return nil, err
		}
		if s.InSidebar() {
			data.Sidebar = append(data.Sidebar, view)
		} else {
			data.Main = append(data.Main, view)
		}
	}
	return data, nil
}

func (rd *Renderer) sectionView(s report.Section, chartOpts chart.Options, format *report.NumberFormatter, labels report.Labels) (sectionView, error) {
	view := sectionView{
		ID:      s.ID,
		Heading: s.Heading(),
		KPIs:    s.KPIs,
		Cards:   s.Cards,
		Groups:  groupLists(s.Lists),
		Callout: s.Callout,
	}

	for _, p := range s.Paragraphs {
		var buf bytes.Buffer
		if err := rd.markdown.Convert([]byte(p), &buf); err != nil {
			return view, errors.Wrap(errors.ErrCodeRenderFailed, fmt.Sprintf("failed to render paragraph in %s", s.ID), err)
		}
		view.Paragraphs = append(view.Paragraphs, template.HTML(buf.String()))
	}

	for _, c := range s.Charts {
		cv := chartView{ID: c.ID, Title: c.Title}
		svg, err := chart.SVG(c, chartOpts)
		if err != nil {
			logger.Warn("Chart rendering failed, falling back to a table",
				zap.String("chart", c.ID), zap.Error(err))
			cv.Table = tableFor(c, format, labels)
		} else {
			cv.SVG = template.HTML(svg)
		}
		view.Charts = append(view.Charts, cv)
	}

	for _, ind := range s.Indicators {
		view.Indicators = append(view.Indicators, indicatorView{
			Label: ind.Label,
			Value: ind.Value,
			Width: template.CSS(strconv.FormatFloat(ind.Percent, 'f', -1, 64) + "%"),
		})
	}
	return view, nil
}

// groupLists merges consecutive lists that share a non-empty Group
func groupLists(lists []report.List) []listGroup {
	var groups []listGroup
	for _, l := range lists {
		n := len(groups)
		if l.Group != "" && n > 0 && groups[n-1].Heading == l.Group {
			groups[n-1].Lists = append(groups[n-1].Lists, l)
			continue
		}
		groups = append(groups, listGroup{Heading: l.Group, Lists: []report.List{l}})
	}
	return groups
}

// tableFor lays a chart's data out as a table
func tableFor(c report.Chart, format *report.NumberFormatter, labels report.Labels) chartTable {
	var t chartTable
	if c.Kind == report.ChartPie {
		t.Columns = []string{labels.Value, labels.Share}
		total := c.Total()
		for _, s := range c.Slices {
			t.Rows = append(t.Rows, chartRow{
				Label: s.Label,
				Cells: []string{format.Format(s.Value), format.Percent(s.Value, total)},
			})
		}
		return t
	}

	t.Columns = c.Categories
	for _, s := range c.Series {
		row := chartRow{Label: s.Name}
		for _, v := range s.Values {
			row.Cells = append(row.Cells, format.Format(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
