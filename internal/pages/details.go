package pages

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
	"github.com/xkilldash9x/kpiprobe/internal/timeline"
)

// KPIDetailsPath is the URL segment of the details page.
const KPIDetailsPath = "/kpi-details"

var (
	timelineFrame        = browser.Locate(".dp-container > div.MuiGrid-container > div").Nth(2)
	timelineWidget       = timelineFrame.Find(".timeline")
	viewportPreviewIcon  = timelineFrame.Find(`button[data-testid="viewportMenu-3"] svg[data-testid="PreviewIcon"]`)
	viewportTimelineItem = browser.Locate(`li[data-testid="viewportMenuItem-Timeline-3"]`)
)

// Details is the drive trial details page. It lives in its own tab, which
// Close releases.
type Details struct {
	base
	tab browser.Tab
}

func NewDetails(tab browser.Tab, logger *zap.Logger, timing Timing) *Details {
	return &Details{base: newBase(tab, logger, "details", timing), tab: tab}
}

func (p *Details) VerifyOpened(ctx context.Context, title string) error {
	p.step("Verifying that the details page is opened.", zap.String("title", title))
	if err := p.urlContains(ctx, KPIDetailsPath); err != nil {
		return err
	}
	if title == "" {
		return nil
	}
	return p.urlContains(ctx, "/"+title)
}

// CountEventsFromTimeline sums the events drawn on the timeline track of
// eventName. The third viewport is switched to the timeline first when it
// shows something else.
func (p *Details) CountEventsFromTimeline(ctx context.Context, eventName string) (int, error) {
	p.step("Counting timeline events.", zap.String("event", eventName))
	if err := p.waitVisible(ctx, timelineFrame); err != nil {
		return 0, err
	}

	shown, err := p.drv.Count(ctx, timelineWidget)
	if err != nil {
		return 0, err
	}
	if shown == 0 {
		p.logger.Debug("Timeline not shown, switching viewport.")
		if err := p.click(ctx, viewportPreviewIcon); err != nil {
			return 0, err
		}
		if err := p.click(ctx, viewportTimelineItem); err != nil {
			return 0, err
		}
		if err := p.waitVisible(ctx, timelineWidget); err != nil {
			return 0, err
		}
	}

	html, err := p.drv.OuterHTML(ctx, timelineFrame)
	if err != nil {
		return 0, fmt.Errorf("failed to read timeline: %w", err)
	}
	snap, err := timeline.ParseSnapshot(html)
	if err != nil {
		return 0, err
	}
	count, err := snap.CountEventsFor(eventName)
	if err != nil {
		return 0, err
	}
	p.logger.Info("Counted timeline events.", zap.String("event", eventName), zap.Int("count", count))
	return count, nil
}

// Close closes the details tab.
func (p *Details) Close(ctx context.Context) error {
	return p.tab.Close(ctx)
}
