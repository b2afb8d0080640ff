package report

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reportdeck/reportdeck/internal/tracker"
	"github.com/reportdeck/reportdeck/pkg/errors"
)

// Load reads report content from a YAML file. An empty path yields the
// built-in report.
func Load(path string) (*Report, error) {
	if path == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFound(fmt.Sprintf("report content file %s", path))
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidContent, "failed to read report content", err)
	}
	return Parse(data)
}

// Parse decodes YAML report content, fills defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*Report, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Report
	if err := dec.Decode(&r); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.ErrCodeInvalidContent, "failed to parse report content", err)
	}

	r.applyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// applyDefaults fills placement, list style and colors left empty
func (r *Report) applyDefaults() {
	for i := range r.Sections {
		s := &r.Sections[i]
		if s.Placement == "" {
			s.Placement = PlacementMain
		}
		for j := range s.Lists {
			if s.Lists[j].Style == "" {
				s.Lists[j].Style = ListBullet
			}
		}
		for j := range s.Charts {
			c := &s.Charts[j]
			for k := range c.Series {
				if c.Series[k].Color == "" {
					c.Series[k].Color = Color(k)
				}
				if c.Series[k].Axis == "" {
					c.Series[k].Axis = AxisLeft
				}
			}
			for k := range c.Slices {
				if c.Slices[k].Color == "" {
					c.Slices[k].Color = Color(k)
				}
			}
		}
	}
}

// Color returns the palette color for index i, cycling
func Color(i int) string {
	return Palette[i%len(Palette)]
}

// Validate checks the report structure
func (r *Report) Validate() error {
	if r.Title == "" {
		return invalid("report title is required")
	}
	if err := tracker.Validate(r.Descriptors()); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidContent, "invalid report sections", err)
	}

	chartIDs := make(map[string]bool)
	for _, s := range r.Sections {
		if s.Label == "" {
			return invalid(fmt.Sprintf("section %q has no label", s.ID))
		}
		if s.Placement != PlacementMain && s.Placement != PlacementSidebar {
			return invalid(fmt.Sprintf("section %q has unknown placement %q", s.ID, s.Placement))
		}
		for _, c := range s.Charts {
			if c.ID == "" {
				return invalid(fmt.Sprintf("section %q has a chart without id", s.ID))
			}
			if chartIDs[c.ID] {
				return invalid(fmt.Sprintf("duplicate chart id %q", c.ID))
			}
			chartIDs[c.ID] = true
			if err := c.validate(); err != nil {
				return err
			}
		}
		for _, ind := range s.Indicators {
			if ind.Percent < 0 || ind.Percent > 100 {
				return invalid(fmt.Sprintf("indicator %q percent %v out of range [0,100]", ind.Label, ind.Percent))
			}
		}
		for _, l := range s.Lists {
			switch l.Style {
			case ListBullet, ListCheck, ListNumbered, ListPlus, ListMinus:
			default:
				return invalid(fmt.Sprintf("list %q has unknown style %q", l.Title, l.Style))
			}
		}
	}
	return nil
}

func (c Chart) validate() error {
	switch c.Kind {
	case ChartPie:
		if len(c.Slices) == 0 {
			return invalid(fmt.Sprintf("pie chart %q has no slices", c.ID))
		}
		for _, s := range c.Slices {
			if s.Value < 0 {
				return invalid(fmt.Sprintf("pie chart %q has a negative slice %q", c.ID, s.Label))
			}
		}
		if c.Total() == 0 {
			return invalid(fmt.Sprintf("pie chart %q slices sum to zero", c.ID))
		}
	case ChartArea, ChartBar, ChartLine:
		if len(c.Categories) == 0 || len(c.Series) == 0 {
			return invalid(fmt.Sprintf("chart %q needs categories and series", c.ID))
		}
		for _, s := range c.Series {
			if len(s.Values) != len(c.Categories) {
				return invalid(fmt.Sprintf("chart %q series %q has %d values for %d categories",
					c.ID, s.Name, len(s.Values), len(c.Categories)))
			}
			if s.Axis != AxisLeft && s.Axis != AxisRight {
				return invalid(fmt.Sprintf("chart %q series %q has unknown axis %q", c.ID, s.Name, s.Axis))
			}
		}
	default:
		return invalid(fmt.Sprintf("chart %q has unknown kind %q", c.ID, c.Kind))
	}
	return nil
}

func invalid(msg string) error {
	return errors.New(errors.ErrCodeInvalidContent, msg)
}

// Descriptors returns the navigation list in section order
func (r *Report) Descriptors() []tracker.Section {
	out := make([]tracker.Section, 0, len(r.Sections))
	for _, s := range r.Sections {
		out = append(out, tracker.Section{ID: s.ID, Label: s.Label})
	}
	return out
}

// Section returns the section with the given id
func (r *Report) Section(id string) (*Section, bool) {
	for i := range r.Sections {
		if r.Sections[i].ID == id {
			return &r.Sections[i], true
		}
	}
	return nil, false
}

// MainSections returns the sections of the main column
func (r *Report) MainSections() []Section {
	return r.byPlacement(PlacementMain)
}

// SidebarSections returns the sections of the side column
func (r *Report) SidebarSections() []Section {
	return r.byPlacement(PlacementSidebar)
}

func (r *Report) byPlacement(p Placement) []Section {
	var out []Section
	for _, s := range r.Sections {
		if s.Placement == p {
			out = append(out, s)
		}
	}
	return out
}

// FullTitle joins company and title the way the page header shows them
func (r *Report) FullTitle() string {
	if r.Company == "" {
		return r.Title
	}
	return r.Company + " " + r.Title
}
