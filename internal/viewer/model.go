// Package viewer is a terminal rendition of the report page. A navigation
// bar follows the section in view while the report scrolls, and jumping to a
// section animates the scroll.
package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/tracker"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

// Options tunes scrolling. Offsets are in lines.
type Options struct {
	ScrollStep      int
	AnimationFrames int
	FrameInterval   time.Duration
	ProbeLines      float64
	NavLines        float64
}

func (o Options) withDefaults() Options {
	if o.ScrollStep <= 0 {
		o.ScrollStep = 3
	}
	if o.AnimationFrames <= 0 {
		o.AnimationFrames = 6
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = 16 * time.Millisecond
	}
	return o
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", " ", "f")),
		Top:      key.NewBinding(key.WithKeys("home", "g")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G")),
		Next:     key.NewBinding(key.WithKeys("tab")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
	}
}

// frameMsg advances a navigation animation by one frame
type frameMsg struct{}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	navStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("7"))
	navActiveStyle = navStyle.Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12"))
)

// Model is the bubbletea model of the viewer
type Model struct {
	report  *report.Report
	opts    Options
	keys    keyMap
	doc     *Document
	vp      viewport.Model
	scroll  *scroller
	tracker *tracker.Tracker

	cancelChange func()
	width        int
	height       int
	ready        bool
	animating    bool
	quitting     bool
}

// New builds a viewer for r. The layout is measured on the first window
// size message.
func New(r *report.Report, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	m := &Model{
		report: r,
		opts:   opts,
		keys:   defaultKeys(),
		doc:    &Document{Bands: tracker.Positions{}},
		vp:     viewport.New(0, 0),
	}
	m.scroll = newScroller(&m.vp, opts.AnimationFrames)

	t, err := tracker.New(r.Descriptors(), m.doc, m.scroll,
		tracker.WithFixedOffset(opts.ProbeLines),
		tracker.WithNavOffset(opts.NavLines),
	)
	if err != nil {
		return nil, err
	}
	m.tracker = t
	m.cancelChange = t.OnChange(func(prev, next string) {
		logger.Debug("Active section changed",
			zap.String("from", prev),
			zap.String(logger.FieldSectionID, next),
		)
	})
	return m, nil
}

// Active returns the id highlighted in the navigation bar
func (m *Model) Active() string {
	return m.tracker.Active()
}

// Init mounts the tracker on the viewport's scroll signal
func (m *Model) Init() tea.Cmd {
	m.tracker.Mount()
	return nil
}

// Update handles input, resizes and animation frames
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case frameMsg:
		if m.scroll.step() {
			return m, m.tick()
		}
		m.animating = false
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll.scrollBy(-m.opts.ScrollStep)
		case tea.MouseButtonWheelDown:
			m.scroll.scrollBy(m.opts.ScrollStep)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.scroll.scrollBy(-m.opts.ScrollStep)
	case key.Matches(msg, m.keys.Down):
		m.scroll.scrollBy(m.opts.ScrollStep)
	case key.Matches(msg, m.keys.PageUp):
		m.scroll.scrollBy(-max(1, m.vp.Height))
	case key.Matches(msg, m.keys.PageDown):
		m.scroll.scrollBy(max(1, m.vp.Height))
	case key.Matches(msg, m.keys.Top):
		m.scroll.scrollTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.scroll.scrollTo(m.scroll.maxOffset())
	case key.Matches(msg, m.keys.Next):
		return m, m.navigate(m.relative(1))
	case key.Matches(msg, m.keys.Prev):
		return m, m.navigate(m.relative(-1))
	default:
		if idx, ok := digit(msg.String()); ok {
			sections := m.tracker.Sections()
			if idx < len(sections) {
				return m, m.navigate(sections[idx].ID)
			}
		}
	}
	return m, nil
}

// navigate jumps to id and starts the frame ticker when the jump animates
func (m *Model) navigate(id string) tea.Cmd {
	if !m.tracker.ScrollToSection(id) {
		return nil
	}
	if !m.scroll.animating() || m.animating {
		return nil
	}
	m.animating = true
	return m.tick()
}

func (m *Model) relative(delta int) string {
	sections := m.tracker.Sections()
	idx := (m.tracker.ActiveIndex() + delta + len(sections)) % len(sections)
	return sections[idx].ID
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) quit() {
	m.quitting = true
	m.tracker.Unmount()
	if m.cancelChange != nil {
		m.cancelChange()
		m.cancelChange = nil
	}
}

// resize re-lays the report for the new width and re-probes the active
// section, since the bands moved
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	*m.doc = *Render(m.report, width)

	m.vp.Width = width
	m.vp.Height = max(1, height-lipgloss.Height(m.headerView())-lipgloss.Height(m.footerView()))
	m.vp.SetContent(m.doc.Content())
	m.scroll.scrollTo(m.vp.YOffset)
	m.ready = true

	m.tracker.HandleScroll()
}

// View renders the header, navigation bar, report and help line
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading report..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.vp.View(), m.footerView())
}

func (m *Model) headerView() string {
	title := titleStyle.Render(m.report.FullTitle())
	if m.report.Period != "" {
		title += mutedStyle.Render("  " + m.report.Period)
	}

	active := m.tracker.Active()
	items := make([]string, 0, len(m.report.Sections))
	for i, s := range m.tracker.Sections() {
		label := fmt.Sprintf("%d %s", i+1, s.Label)
		if s.ID == active {
			items = append(items, navActiveStyle.Render(label))
		} else {
			items = append(items, navStyle.Render(label))
		}
	}
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func (m *Model) footerView() string {
	help := "↑/↓ scroll  1-9/tab jump  q quit"
	pos := fmt.Sprintf("%3.f%%", m.vp.ScrollPercent()*100)
	gap := max(1, m.width-lipgloss.Width(help)-lipgloss.Width(pos))
	return mutedStyle.Render(help + strings.Repeat(" ", gap) + pos)
}

func digit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

// Run starts the full-screen viewer and blocks until the user quits
func Run(ctx context.Context, r *report.Report, opts Options) error {
	m, err := New(r, opts)
	if err != nil {
		return err
	}
	defer m.quit()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer stopped: %w", err)
	}
	return nil
}
