// Package report defines the business report model, the built-in half-year
// report, and loading of report content from YAML.
package report

// Placement says which page column a section is rendered in
type Placement string

const (
	PlacementMain    Placement = "main"
	PlacementSidebar Placement = "sidebar"
)

// ChartKind is the visual form of a chart
type ChartKind string

const (
	ChartArea ChartKind = "area"
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

// ListStyle selects the bullet used for a list
type ListStyle string

const (
	ListBullet   ListStyle = "bullet"
	ListCheck    ListStyle = "check"
	ListNumbered ListStyle = "numbered"
	ListPlus     ListStyle = "plus"
	ListMinus    ListStyle = "minus"
)

// Axis names for series with two value scales
const (
	AxisLeft  = "left"
	AxisRight = "right"
)

// Report is the full content of one report page
type Report struct {
	Title      string    `json:"title" yaml:"title"`
	Company    string    `json:"company" yaml:"company"`
	Period     string    `json:"period" yaml:"period"`
	ReportDate string    `json:"report_date" yaml:"report_date"`
	Language   string    `json:"language,omitempty" yaml:"language"`
	Sections   []Section `json:"sections" yaml:"sections"`
	Footer     string    `json:"footer" yaml:"footer"`
}

// Section is one navigable part of the report. Label is the navigation text,
// Title the heading shown on the page.
type Section struct {
	ID         string      `json:"id" yaml:"id"`
	Label      string      `json:"label" yaml:"label"`
	Title      string      `json:"title,omitempty" yaml:"title"`
	Placement  Placement   `json:"placement,omitempty" yaml:"placement"`
	Paragraphs []string    `json:"paragraphs,omitempty" yaml:"paragraphs"`
	Charts     []Chart     `json:"charts,omitempty" yaml:"charts"`
	KPIs       []KPI       `json:"kpis,omitempty" yaml:"kpis"`
	Cards      []Card      `json:"cards,omitempty" yaml:"cards"`
	Indicators []Indicator `json:"indicators,omitempty" yaml:"indicators"`
	Lists      []List      `json:"lists,omitempty" yaml:"lists"`
	Callout    *Callout    `json:"callout,omitempty" yaml:"callout"`
}

// Heading returns Title, falling back to Label
func (s Section) Heading() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Label
}

// InSidebar reports whether the section renders in the side column
func (s Section) InSidebar() bool {
	return s.Placement == PlacementSidebar
}

// Chart is a small data chart. Category charts use Categories and Series;
// pie charts use Slices.
type Chart struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Kind       ChartKind `json:"kind" yaml:"kind"`
	Categories []string  `json:"categories,omitempty" yaml:"categories"`
	Series     []Series  `json:"series,omitempty" yaml:"series"`
	Slices     []Slice   `json:"slices,omitempty" yaml:"slices"`
}

// Series is one named row of values, aligned with the chart categories
type Series struct {
	Name   string    `json:"name" yaml:"name"`
	Color  string    `json:"color,omitempty" yaml:"color"`
	Axis   string    `json:"axis,omitempty" yaml:"axis"`
	Values []float64 `json:"values" yaml:"values"`
}

// Slice is one pie segment
type Slice struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color,omitempty" yaml:"color"`
}

// Total sums the pie slices of a chart
func (c Chart) Total() float64 {
	var sum float64
	for _, s := range c.Slices {
		sum += s.Value
	}
	return sum
}

// KPI is a headline figure with its change against the prior period
type KPI struct {
	Label  string `json:"label" yaml:"label"`
	Value  string `json:"value" yaml:"value"`
	Change string `json:"change,omitempty" yaml:"change"`
}

// Card is a short titled description, e.g. one business line
type Card struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Badge       string `json:"badge,omitempty" yaml:"badge"`
}

// Indicator is a labeled value drawn with a progress bar
type Indicator struct {
	Label   string  `json:"label" yaml:"label"`
	Value   string  `json:"value" yaml:"value"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// List is a titled list of short items. Lists sharing a Group are rendered
// under one group heading.
type List struct {
	Group string    `json:"group,omitempty" yaml:"group"`
	Title string    `json:"title" yaml:"title"`
	Style ListStyle `json:"style,omitempty" yaml:"style"`
	Items []string  `json:"items" yaml:"items"`
}

// Callout is a highlighted summary box
type Callout struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}
