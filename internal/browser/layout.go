package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/reportdeck/reportdeck/internal/tracker"
)

// measureScript returns {id: {top, height}} in document coordinates for every
// element id it is given. Missing elements are left out.
const measureScript = `(function (ids) {
  var out = {};
  for (var i = 0; i < ids.length; i++) {
    var el = document.getElementById(ids[i]);
    if (!el) { continue; }
    var r = el.getBoundingClientRect();
    out[ids[i]] = { top: r.top + window.scrollY, height: r.height };
  }
  return out;
})(%s)`

// MeasureSections loads page and reads each section's position from the live
// layout.
func MeasureSections(ctx context.Context, page []byte, sections []tracker.Section, opts Options) (tracker.Positions, error) {
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	arg, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	positions := make(tracker.Positions)
	err = withPage(ctx, page, opts,
		chromedp.Evaluate(fmt.Sprintf(measureScript, arg), &positions),
	)
	if err != nil {
		return nil, err
	}
	return positions, nil
}
