package viewer

import (
	"math"

	"github.com/charmbracelet/bubbles/viewport"
)

// scroller adapts a bubbles viewport to tracker.Viewport. Every change of
// the y offset, whether from a key, the mouse wheel or an animation frame,
// fires the scroll signal.
type scroller struct {
	vp        *viewport.Model
	frames    int
	path      []int
	listeners map[int]func()
	nextID    int
}

func newScroller(vp *viewport.Model, frames int) *scroller {
	if frames < 1 {
		frames = 1
	}
	return &scroller{vp: vp, frames: frames, listeners: make(map[int]func())}
}

// ScrollOffset returns the first visible line
func (s *scroller) ScrollOffset() float64 {
	return float64(s.vp.YOffset)
}

// SmoothScrollTo plans an eased animation to target. Frames are applied by
// step; an earlier animation is replaced.
func (s *scroller) SmoothScrollTo(target float64) {
	from := s.vp.YOffset
	to := s.clamp(int(math.Round(target)))
	s.path = s.path[:0]
	if from == to {
		return
	}
	for i := 1; i <= s.frames; i++ {
		t := float64(i) / float64(s.frames)
		eased := 1 - math.Pow(1-t, 3)
		s.path = append(s.path, from+int(math.Round(float64(to-from)*eased)))
	}
}

// OnScroll registers fn for the scroll signal
func (s *scroller) OnScroll(fn func()) (remove func()) {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// animating reports whether frames are pending
func (s *scroller) animating() bool {
	return len(s.path) > 0
}

// step applies the next animation frame and reports whether more remain
func (s *scroller) step() bool {
	if len(s.path) == 0 {
		return false
	}
	next := s.path[0]
	s.path = s.path[1:]
	s.set(next)
	return len(s.path) > 0
}

// scrollBy moves by delta lines and cancels a running animation
func (s *scroller) scrollBy(delta int) {
	s.scrollTo(s.vp.YOffset + delta)
}

// scrollTo jumps to offset and cancels a running animation
func (s *scroller) scrollTo(offset int) {
	s.path = s.path[:0]
	s.set(offset)
}

func (s *scroller) set(offset int) {
	prev := s.vp.YOffset
	s.vp.SetYOffset(s.clamp(offset))
	if s.vp.YOffset != prev {
		s.emit()
	}
}

func (s *scroller) emit() {
	for _, fn := range s.listeners {
		fn()
	}
}

func (s *scroller) maxOffset() int {
	return max(0, s.vp.TotalLineCount()-s.vp.Height)
}

func (s *scroller) clamp(offset int) int {
	return max(0, min(offset, s.maxOffset()))
}
