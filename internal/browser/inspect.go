package browser

import (
	"context"

	"github.com/reportdeck/reportdeck/internal/tracker"
)

// Step is the tracker state after scrolling to one offset
type Step struct {
	Offset  float64 `json:"offset"`
	Probe   float64 `json:"probe"`
	Active  string  `json:"active"`
	Matched bool    `json:"matched"`
}

// Inspection is a measured layout and the active section at each offset
type Inspection struct {
	Width     int64             `json:"width"`
	Positions tracker.Positions `json:"positions"`
	Steps     []Step            `json:"steps"`
}

// Inspect measures page at opts.Width and replays offsets through a tracker
func Inspect(ctx context.Context, page []byte, sections []tracker.Section, offsets []float64, opts Options, trackerOpts ...tracker.Option) (*Inspection, error) {
	opts = opts.withDefaults()
	positions, err := MeasureSections(ctx, page, sections, opts)
	if err != nil {
		return nil, err
	}

	steps, err := Replay(sections, positions, offsets, trackerOpts...)
	if err != nil {
		return nil, err
	}
	return &Inspection{Width: opts.Width, Positions: positions, Steps: steps}, nil
}

// Replay scrolls a fresh tracker through offsets in order. Misses keep the
// previous section, as they would while scrolling.
func Replay(sections []tracker.Section, layout tracker.Layout, offsets []float64, opts ...tracker.Option) ([]Step, error) {
	t, err := tracker.New(sections, layout, nil, opts...)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(offsets))
	for _, off := range offsets {
		matched := t.Recompute(off)
		steps = append(steps, Step{
			Offset:  off,
			Probe:   t.Probe(off),
			Active:  t.Active(),
			Matched: matched,
		})
	}
	return steps, nil
}
