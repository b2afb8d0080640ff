package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/tracker"
	"github.com/reportdeck/reportdeck/internal/web"
)

var sections = []tracker.Section{{ID: "a"}, {ID: "b"}, {ID: "c"}}

func TestReplay(t *testing.T) {
	layout := tracker.Positions{
		"a": {Top: 0, Height: 500},
		"b": {Top: 500, Height: 300},
		"c": {Top: 1000, Height: 400}, // gap [800,1000)
	}

	steps, err := Replay(sections, layout, []float64{0, 450, 750, 950, 5000}, tracker.WithFixedOffset(100))
	require.NoError(t, err)
	require.Len(t, steps, 5)

	assert.Equal(t, Step{Offset: 0, Probe: 100, Active: "a", Matched: true}, steps[0])
	assert.Equal(t, Step{Offset: 450, Probe: 550, Active: "b", Matched: true}, steps[1])
	assert.Equal(t, Step{Offset: 750, Probe: 850, Active: "b", Matched: false}, steps[2], "gap keeps b")
	assert.Equal(t, "c", steps[3].Active)
	assert.False(t, steps[4].Matched)
	assert.Equal(t, "c", steps[4].Active)
}

func TestReplay_InvalidSections(t *testing.T) {
	_, err := Replay(nil, tracker.Positions{}, []float64{0})
	assert.Error(t, err)
}

func TestOptionsDefaults(t *testing.T) {
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")

	opts := Options{}.withDefaults()
	assert.Equal(t, "/usr/bin/chromium", opts.ChromePath)
	assert.Equal(t, defaultTimeout, opts.Timeout)
	assert.Equal(t, int64(defaultViewportWidth), opts.Width)

	opts = Options{ChromePath: "/opt/chrome", Timeout: time.Second, Width: 375}.withDefaults()
	assert.Equal(t, "/opt/chrome", opts.ChromePath)
	assert.Equal(t, time.Second, opts.Timeout)
	assert.Equal(t, int64(375), opts.Width)
}

func TestAllocatorOptions(t *testing.T) {
	base := len(allocatorOptions(Options{}))
	assert.Equal(t, base+1, len(allocatorOptions(Options{ChromePath: "/opt/chrome"})))
}

func TestDefaultPDFOptions(t *testing.T) {
	opts := DefaultPDFOptions()
	assert.Equal(t, 8.27, opts.PaperWidth)
	assert.Equal(t, 11.69, opts.PaperHeight)
	assert.True(t, opts.PrintBackground)
	assert.Contains(t, opts.FooterTemplate, "pageNumber")
}

const testPage = `<!DOCTYPE html><html><body style="margin:0">
<section id="a" style="height:500px">A</section>
<section id="b" style="height:300px">B</section>
<section id="c" style="height:400px">C</section>
</body></html>`

// Requires a local Chrome; set CHROME_PATH to run.
func TestMeasureSections_Chrome(t *testing.T) {
	if os.Getenv("CHROME_PATH") == "" {
		t.Skip("CHROME_PATH not set")
	}

	positions, err := MeasureSections(context.Background(), []byte(testPage), sections, Options{Timeout: 30 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, tracker.Position{Top: 500, Height: 300}, positions["b"])

	pdf, err := PrintPDF(context.Background(), []byte(testPage), Options{}, DefaultPDFOptions())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

const navigationScript = `(function () {
  var rd = window.reportdeck;
  var out = { initial: rd.active() };
  out.missing = rd.scrollToSection("missing");
  out.afterMissing = rd.active();
  out.notSection = rd.scrollToSection("report-nav");
  out.afterNotSection = rd.active();
  out.business = rd.scrollToSection("business");
  out.afterBusiness = rd.active();
  out.again = rd.scrollToSection("business");
  out.afterAgain = rd.active();
  var on = document.querySelector("[data-nav].active");
  out.highlighted = on ? on.getAttribute("data-nav") : "";
  return out;
})()`

type navigationResult struct {
	Initial         string `json:"initial"`
	Missing         bool   `json:"missing"`
	AfterMissing    string `json:"afterMissing"`
	NotSection      bool   `json:"notSection"`
	AfterNotSection string `json:"afterNotSection"`
	Business        bool   `json:"business"`
	AfterBusiness   string `json:"afterBusiness"`
	Again           bool   `json:"again"`
	AfterAgain      string `json:"afterAgain"`
	Highlighted     string `json:"highlighted"`
}

// Requires a local Chrome; set CHROME_PATH to run.
func TestPageScriptNavigation_Chrome(t *testing.T) {
	if os.Getenv("CHROME_PATH") == "" {
		t.Skip("CHROME_PATH not set")
	}

	rd, err := web.New(web.DefaultOptions())
	require.NoError(t, err)
	page, err := rd.HTML(report.Builtin(), web.VariantInteractive)
	require.NoError(t, err)

	var got navigationResult
	err = withPage(context.Background(), page, Options{Timeout: 30 * time.Second},
		chromedp.Evaluate(navigationScript, &got),
	)
	require.NoError(t, err)

	assert.Equal(t, "overview", got.Initial)
	assert.False(t, got.Missing)
	assert.Equal(t, "overview", got.AfterMissing, "unknown id is a no-op")
	assert.False(t, got.NotSection)
	assert.Equal(t, "overview", got.AfterNotSection, "an element that is not a section is a no-op")
	assert.True(t, got.Business)
	assert.Equal(t, "business", got.AfterBusiness, "active is set before the smooth scroll ends")
	assert.True(t, got.Again)
	assert.Equal(t, "business", got.AfterAgain)
	assert.Equal(t, "business", got.Highlighted)
}

// Requires a local Chrome; set CHROME_PATH to run.
func TestPageScriptResolveMatchesTracker_Chrome(t *testing.T) {
	if os.Getenv("CHROME_PATH") == "" {
		t.Skip("CHROME_PATH not set")
	}

	r := report.Builtin()
	rd, err := web.New(web.DefaultOptions())
	require.NoError(t, err)
	page, err := rd.HTML(r, web.VariantInteractive)
	require.NoError(t, err)

	positions, err := MeasureSections(context.Background(), page, r.Descriptors(), Options{Timeout: 30 * time.Second})
	require.NoError(t, err)

	probes := []float64{0, 100}
	for _, s := range r.Descriptors() {
		if p, ok := positions[s.ID]; ok {
			probes = append(probes, p.Top, p.Top+p.Height/2, p.Top+p.Height)
		}
	}
	arg, err := json.Marshal(probes)
	require.NoError(t, err)

	var fromPage []*string
	err = withPage(context.Background(), page, Options{Timeout: 30 * time.Second},
		chromedp.Evaluate(fmt.Sprintf(`%s.map(function (p) { return window.reportdeck.resolve(p); })`, arg), &fromPage),
	)
	require.NoError(t, err)
	require.Len(t, fromPage, len(probes))

	for i, probe := range probes {
		want, ok := tracker.Resolve(r.Descriptors(), positions, probe)
		if !ok {
			assert.Nil(t, fromPage[i], "probe %v", probe)
			continue
		}
		if assert.NotNil(t, fromPage[i], "probe %v", probe) {
			assert.Equal(t, want, *fromPage[i], "probe %v", probe)
		}
	}
}
