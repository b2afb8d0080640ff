// Package tracker keeps a report's active section in step with the viewport
// scroll position and performs jump-to-section navigation.
//
// A Tracker is owned by a single event loop and is not safe for concurrent use.
package tracker

import (
	"fmt"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/pkg/errors"
)

// Section is one navigable region of the report
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Position is a section's place in the rendered document
type Position struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Contains reports whether probe falls in [Top, Top+Height)
func (p Position) Contains(probe float64) bool {
	return p.Top <= probe && probe < p.Top+p.Height
}

// Layout reports live section positions. ok is false while a section has not
// been laid out yet.
type Layout interface {
	Position(id string) (pos Position, ok bool)
}

// Positions is a fixed Layout snapshot
type Positions map[string]Position

// Position implements Layout
func (p Positions) Position(id string) (Position, bool) {
	pos, ok := p[id]
	return pos, ok
}

// Viewport is the scrollable surface the tracker observes and drives
type Viewport interface {
	// ScrollOffset returns the current vertical scroll offset
	ScrollOffset() float64
	// SmoothScrollTo starts an animated scroll towards offset
	SmoothScrollTo(offset float64)
	// OnScroll registers fn to run after every scroll and returns its remover
	OnScroll(fn func()) (remove func())
}

// Option configures a Tracker
type Option func(*Tracker)

// WithFixedOffset sets the header compensation added to the scroll offset
func WithFixedOffset(v float64) Option {
	return func(t *Tracker) { t.fixedOffset = v }
}

// WithNavOffset sets the gap left above a section after navigation
func WithNavOffset(v float64) Option {
	return func(t *Tracker) { t.navOffset = v }
}

// Tracker owns the active section for one rendered report
type Tracker struct {
	sections    []Section
	index       map[string]int
	layout      Layout
	viewport    Viewport
	fixedOffset float64
	navOffset   float64

	active      string
	unsubscribe func()

	observers map[int]func(prev, next string)
	nextObs   int
}

// New creates a tracker whose active section is the first descriptor.
func New(sections []Section, layout Layout, viewport Viewport, opts ...Option) (*Tracker, error) {
	index, err := indexSections(sections)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		sections:    append([]Section(nil), sections...),
		index:       index,
		layout:      layout,
		viewport:    viewport,
		fixedOffset: consts.DefaultFixedOffset,
		navOffset:   consts.DefaultNavOffset,
		active:      sections[0].ID,
		observers:   make(map[int]func(prev, next string)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Validate checks a descriptor list the way New does
func Validate(sections []Section) error {
	_, err := indexSections(sections)
	return err
}

func indexSections(sections []Section) (map[string]int, error) {
	if len(sections) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSections, "section list is empty")
	}
	index := make(map[string]int, len(sections))
	for i, s := range sections {
		if s.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidSections,
				fmt.Sprintf("section %d has an empty id", i))
		}
		if _, dup := index[s.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidSections,
				fmt.Sprintf("duplicate section id %q", s.ID))
		}
		index[s.ID] = i
	}
	return index, nil
}

// Resolve returns the first section, in declaration order, whose band
// contains probe. ok is false when nothing matches.
func Resolve(sections []Section, layout Layout, probe float64) (id string, ok bool) {
	if layout == nil {
		return "", false
	}
	for _, s := range sections {
		pos, available := layout.Position(s.ID)
		if !available {
			continue
		}
		if pos.Contains(probe) {
			return s.ID, true
		}
	}
	return "", false
}

// Sections returns a copy of the descriptor list
func (t *Tracker) Sections() []Section {
	return append([]Section(nil), t.sections...)
}

// Active returns the active section id
func (t *Tracker) Active() string {
	return t.active
}

// ActiveIndex returns the position of the active section in the descriptor list
func (t *Tracker) ActiveIndex() int {
	return t.index[t.active]
}

// Has reports whether id is a declared section
func (t *Tracker) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

// FixedOffset returns the configured probe offset
func (t *Tracker) FixedOffset() float64 { return t.fixedOffset }

// NavOffset returns the configured navigation offset
func (t *Tracker) NavOffset() float64 { return t.navOffset }

// Probe converts a scroll offset into the point tested against section bands
func (t *Tracker) Probe(scrollOffset float64) float64 {
	return scrollOffset + t.fixedOffset
}

// HandleScroll recomputes the active section from the viewport's offset.
// It is the callback Mount registers.
func (t *Tracker) HandleScroll() {
	if t.viewport == nil {
		return
	}
	t.Recompute(t.viewport.ScrollOffset())
}

// Recompute resolves the active section for scrollOffset. A miss keeps the
// previous section. It reports whether a band matched.
func (t *Tracker) Recompute(scrollOffset float64) bool {
	id, ok := Resolve(t.sections, t.layout, t.Probe(scrollOffset))
	if !ok {
		return false
	}
	t.setActive(id)
	return true
}

// ScrollToSection starts an animated scroll to the section and marks it
// active at once. Unknown ids and sections without a position are ignored.
// Scroll events fired by the animation may reassign the active section
// before it settles.
func (t *Tracker) ScrollToSection(id string) bool {
	if !t.Has(id) || t.layout == nil {
		return false
	}
	pos, ok := t.layout.Position(id)
	if !ok {
		return false
	}
	if t.viewport != nil {
		t.viewport.SmoothScrollTo(pos.Top - t.navOffset)
	}
	t.setActive(id)
	return true
}

// Mount subscribes to the viewport's scroll signal. Calling it again while
// mounted does nothing.
func (t *Tracker) Mount() {
	if t.unsubscribe != nil || t.viewport == nil {
		return
	}
	t.unsubscribe = t.viewport.OnScroll(t.HandleScroll)
}

// Unmount removes the scroll subscription
func (t *Tracker) Unmount() {
	if t.unsubscribe == nil {
		return
	}
	t.unsubscribe()
	t.unsubscribe = nil
}

// Mounted reports whether the scroll subscription is live
func (t *Tracker) Mounted() bool {
	return t.unsubscribe != nil
}

// OnChange registers fn to run whenever the active id changes
func (t *Tracker) OnChange(fn func(prev, next string)) (cancel func()) {
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	return func() { delete(t.observers, id) }
}

func (t *Tracker) setActive(id string) {
	if id == t.active {
		return
	}
	prev := t.active
	t.active = id
	for _, fn := range t.observers {
		fn(prev, id)
	}
}
