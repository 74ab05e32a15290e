package pages

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/kpiprobe/internal/browser/browsertest"
	"github.com/xkilldash9x/kpiprobe/internal/timeline"
)

const timelineView = `<div class="timeline"><div class="vis-timeline">
  <div class="vis-left">
    <div class="vis-label"><div class="vis-inner" data-testid="101|TP"></div></div>
    <div class="vis-label"><div class="vis-inner" data-testid="101|FN"></div></div>
  </div>
  <div class="vis-center"><div class="vis-foreground">
    <div class="vis-group"><div class="vis-item"></div><div class="vis-item"></div></div>
    <div class="vis-group">
      <div class="vis-item"></div>
      <div class="vis-item timeline-item-with-content"><div class="vis-item-content">4</div></div>
    </div>
  </div></div>
</div></div>`

const previewView = `<button data-testid="viewportMenu-3"><svg data-testid="PreviewIcon"></svg></button>`

func detailsHTML(third string) string {
	return fmt.Sprintf(`<html><body>
<div class="dp-container"><div class="MuiGrid-container">
  <div>front camera</div>
  <div>map</div>
  <div>%s</div>
</div></div>
<ul><li data-testid="viewportMenuItem-Timeline-3">Timeline</li></ul>
</body></html>`, third)
}

func newDetailsPage(t *testing.T, third string) (*Details, *browsertest.Driver) {
	tab := browsertest.New(detailsHTML(third))
	tab.URL = "https://qa-ottoviz.ominf.net/VI1/kpi-details/zone1/101"
	return NewDetails(tab, zaptest.NewLogger(t), testTiming()), tab
}

func TestDetails_VerifyOpened(t *testing.T) {
	p, tab := newDetailsPage(t, timelineView)
	ctx := testContext(t)
	require.NoError(t, p.VerifyOpened(ctx, "zone1"))

	tab.URL = "https://qa-ottoviz.ominf.net/VI1/kpi-system/zone1"
	assert.Error(t, p.VerifyOpened(ctx, ""))
}

func TestDetails_CountEventsFromTimeline(t *testing.T) {
	p, tab := newDetailsPage(t, timelineView)
	ctx := testContext(t)

	fn, err := p.CountEventsFromTimeline(ctx, "FN")
	require.NoError(t, err)
	assert.Equal(t, 5, fn)

	tp, err := p.CountEventsFromTimeline(ctx, "TP")
	require.NoError(t, err)
	assert.Equal(t, 2, tp)

	_, err = p.CountEventsFromTimeline(ctx, "FP")
	var notFound *timeline.NotFoundError
	require.ErrorAs(t, err, &notFound)

	assert.Empty(t, tab.Clicks, "the viewport is left alone when the timeline is shown")
}

func TestDetails_SwitchesViewportToTimeline(t *testing.T) {
	p, tab := newDetailsPage(t, previewView)
	tab.OnClick(viewportTimelineItem, func(d *browsertest.Driver) error {
		d.SetHTML(detailsHTML(timelineView))
		return nil
	})

	fn, err := p.CountEventsFromTimeline(testContext(t), "FN")
	require.NoError(t, err)
	assert.Equal(t, 5, fn)
	assert.Equal(t, []string{viewportPreviewIcon.String(), viewportTimelineItem.String()}, tab.Clicks)
}
