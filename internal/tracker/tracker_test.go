package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/reportdeck/pkg/errors"
)

// fakeViewport records scroll requests and lets tests fire scroll events.
type fakeViewport struct {
	offset    float64
	requested []float64
	listeners map[int]func()
	next      int
}

func newFakeViewport() *fakeViewport {
	return &fakeViewport{listeners: make(map[int]func())}
}

func (v *fakeViewport) ScrollOffset() float64 { return v.offset }

func (v *fakeViewport) SmoothScrollTo(offset float64) {
	v.requested = append(v.requested, offset)
}

func (v *fakeViewport) OnScroll(fn func()) func() {
	id := v.next
	v.next++
	v.listeners[id] = fn
	return func() { delete(v.listeners, id) }
}

func (v *fakeViewport) scrollTo(offset float64) {
	v.offset = offset
	for _, fn := range v.listeners {
		fn()
	}
}

var abSections = []Section{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}

var abLayout = Positions{
	"a": {Top: 0, Height: 500},
	"b": {Top: 500, Height: 300},
}

func newAB(t *testing.T) (*Tracker, *fakeViewport) {
	t.Helper()
	vp := newFakeViewport()
	tr, err := New(abSections, abLayout, vp, WithFixedOffset(100), WithNavOffset(80))
	require.NoError(t, err)
	return tr, vp
}

func TestNew_InitialActiveIsFirst(t *testing.T) {
	tr, _ := newAB(t)
	assert.Equal(t, "a", tr.Active())
	assert.Equal(t, 0, tr.ActiveIndex())
}

func TestNew_Defaults(t *testing.T) {
	tr, err := New(abSections, abLayout, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tr.FixedOffset())
	assert.Equal(t, 80.0, tr.NavOffset())
}

func TestNew_InvalidSections(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
	}{
		{"empty", nil},
		{"empty id", []Section{{ID: "a"}, {ID: ""}}},
		{"duplicate id", []Section{{ID: "a"}, {ID: "b"}, {ID: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sections, abLayout, nil)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidSections))
			assert.Error(t, Validate(tt.sections))
		})
	}
}

func TestNew_CopiesSections(t *testing.T) {
	sections := []Section{{ID: "a"}, {ID: "b"}}
	tr, err := New(sections, abLayout, nil)
	require.NoError(t, err)

	sections[0].ID = "mutated"
	assert.Equal(t, "a", tr.Sections()[0].ID)
	assert.Equal(t, "a", tr.Active())
}

func TestRecompute_Example(t *testing.T) {
	tr, _ := newAB(t)

	assert.True(t, tr.Recompute(450))
	assert.Equal(t, "b", tr.Active())

	assert.True(t, tr.Recompute(0))
	assert.Equal(t, "a", tr.Active())
}

func TestRecompute_BandBoundaries(t *testing.T) {
	tests := []struct {
		offset float64
		want   string
	}{
		{-100, "a"}, // probe 0 is a's top
		{399, "a"},  // probe 499
		{400, "b"},  // probe 500 leaves a
		{699, "b"},  // probe 799
	}

	for _, tt := range tests {
		tr, _ := newAB(t)
		tr.Recompute(tt.offset)
		assert.Equal(t, tt.want, tr.Active(), "offset %v", tt.offset)
	}
}

func TestRecompute_InsideExactlyOneBand(t *testing.T) {
	sections := []Section{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}, {ID: "s4"}}
	layout := Positions{
		"s1": {Top: 120, Height: 400},
		"s2": {Top: 520, Height: 260},
		"s3": {Top: 900, Height: 600}, // gap [780,900)
		"s4": {Top: 1500, Height: 100},
	}

	for offset := 20.0; offset < 1500; offset += 7 {
		probe := offset + 100
		var want string
		for _, s := range sections {
			if layout[s.ID].Contains(probe) {
				want = s.ID
				break
			}
		}
		if want == "" {
			continue
		}
		tr, err := New(sections, layout, nil)
		require.NoError(t, err)
		tr.Recompute(offset)
		assert.Equal(t, want, tr.Active(), "offset %v", offset)
	}
}

func TestRecompute_MissKeepsPrevious(t *testing.T) {
	sections := []Section{{ID: "a"}, {ID: "b"}}
	layout := Positions{
		"a": {Top: 300, Height: 200},
		"b": {Top: 600, Height: 200}, // gap [500,600)
	}
	tr, err := New(sections, layout, nil)
	require.NoError(t, err)

	// before the first section
	assert.False(t, tr.Recompute(0))
	assert.Equal(t, "a", tr.Active())

	require.True(t, tr.Recompute(550))
	assert.Equal(t, "b", tr.Active())

	// in the gap
	assert.False(t, tr.Recompute(450))
	assert.Equal(t, "b", tr.Active())

	// past the end
	assert.False(t, tr.Recompute(10000))
	assert.Equal(t, "b", tr.Active())
}

func TestRecompute_NoPositionsAvailable(t *testing.T) {
	tr, err := New(abSections, Positions{}, nil)
	require.NoError(t, err)
	assert.False(t, tr.Recompute(450))
	assert.Equal(t, "a", tr.Active())

	tr, err = New(abSections, nil, nil)
	require.NoError(t, err)
	assert.False(t, tr.Recompute(450))
	assert.Equal(t, "a", tr.Active())
}

func TestResolve_OverlapFirstMatchWins(t *testing.T) {
	sections := []Section{{ID: "first"}, {ID: "second"}}
	layout := Positions{
		"first":  {Top: 0, Height: 600},
		"second": {Top: 400, Height: 600},
	}

	id, ok := Resolve(sections, layout, 500)
	assert.True(t, ok)
	assert.Equal(t, "first", id)

	// declaration order, not position order, decides
	id, _ = Resolve([]Section{{ID: "second"}, {ID: "first"}}, layout, 500)
	assert.Equal(t, "second", id)
}

func TestResolve_SkipsUnavailable(t *testing.T) {
	layout := Positions{"b": {Top: 500, Height: 300}}
	id, ok := Resolve(abSections, layout, 550)
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	_, ok = Resolve(abSections, layout, 100)
	assert.False(t, ok)
}

func TestScrollToSection_Known(t *testing.T) {
	tr, vp := newAB(t)

	assert.True(t, tr.ScrollToSection("b"))
	// active before any scroll event is delivered
	assert.Equal(t, "b", tr.Active())
	assert.Equal(t, []float64{420}, vp.requested)
	assert.Equal(t, 0.0, vp.offset)
}

func TestScrollToSection_UnknownIsNoop(t *testing.T) {
	tr, vp := newAB(t)
	vp.offset = 450
	tr.Recompute(vp.offset)
	require.Equal(t, "b", tr.Active())

	assert.False(t, tr.ScrollToSection("missing"))
	assert.Equal(t, "b", tr.Active())
	assert.Empty(t, vp.requested)
	assert.Equal(t, 450.0, vp.offset)
}

func TestScrollToSection_PositionUnavailableIsNoop(t *testing.T) {
	vp := newFakeViewport()
	tr, err := New(abSections, Positions{"a": {Top: 0, Height: 500}}, vp)
	require.NoError(t, err)

	assert.False(t, tr.ScrollToSection("b"))
	assert.Equal(t, "a", tr.Active())
	assert.Empty(t, vp.requested)
}

func TestScrollToSection_Idempotent(t *testing.T) {
	once, _ := newAB(t)
	once.ScrollToSection("b")

	twice, _ := newAB(t)
	twice.ScrollToSection("b")
	twice.ScrollToSection("b")

	assert.Equal(t, once.Active(), twice.Active())
}

func TestScrollToSection_MidAnimationFlicker(t *testing.T) {
	tr, vp := newAB(t)
	tr.Mount()
	defer tr.Unmount()

	var seen []string
	cancel := tr.OnChange(func(_, next string) { seen = append(seen, next) })
	defer cancel()

	require.True(t, tr.ScrollToSection("b"))
	assert.Equal(t, "b", tr.Active())

	// an intermediate animation frame lands in a's band
	vp.scrollTo(100)
	assert.Equal(t, "a", tr.Active())

	// the final frame settles on the destination
	vp.scrollTo(420)
	assert.Equal(t, "b", tr.Active())

	assert.Equal(t, []string{"b", "a", "b"}, seen)
}

func TestMountUnmount(t *testing.T) {
	tr, vp := newAB(t)

	tr.Mount()
	tr.Mount()
	assert.True(t, tr.Mounted())
	assert.Len(t, vp.listeners, 1)

	vp.scrollTo(450)
	assert.Equal(t, "b", tr.Active())

	tr.Unmount()
	tr.Unmount()
	assert.False(t, tr.Mounted())
	assert.Empty(t, vp.listeners)

	vp.scrollTo(0)
	assert.Equal(t, "b", tr.Active(), "unmounted tracker must not react to scrolls")
}

func TestMount_WithoutViewport(t *testing.T) {
	tr, err := New(abSections, abLayout, nil)
	require.NoError(t, err)

	tr.Mount()
	assert.False(t, tr.Mounted())
	tr.HandleScroll()
	assert.Equal(t, "a", tr.Active())
}

func TestOnChange(t *testing.T) {
	tr, _ := newAB(t)

	calls := 0
	var prev, next string
	cancel := tr.OnChange(func(p, n string) {
		calls++
		prev, next = p, n
	})

	tr.Recompute(0) // still a
	assert.Equal(t, 0, calls)

	tr.Recompute(450)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "a", prev)
	assert.Equal(t, "b", next)

	cancel()
	tr.Recompute(0)
	assert.Equal(t, 1, calls)
}
