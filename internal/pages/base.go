// Package pages holds the page objects of the Ottoviz dashboard. Each page
// wraps a browser.Driver and exposes the steps a scenario performs on it.
package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
	"github.com/xkilldash9x/kpiprobe/internal/config"
	"github.com/xkilldash9x/kpiprobe/internal/table"
)

const classPollInterval = 200 * time.Millisecond

// Timing bounds the waits page objects perform on top of the driver's own.
type Timing struct {
	// ActionTimeout bounds URL and class checks.
	ActionTimeout time.Duration
	// WaitTimeout bounds text checks.
	WaitTimeout time.Duration
	// LoadWait is the fixed pause after opening the site.
	LoadWait time.Duration
	// StepWait is the fixed pause after re-sorting a table.
	StepWait time.Duration
}

// TimingFrom builds the page timing from the network configuration.
func TimingFrom(cfg config.NetworkConfig) Timing {
	return Timing{
		ActionTimeout: cfg.ActionTimeout,
		WaitTimeout:   cfg.WaitTimeout,
		LoadWait:      cfg.LoadWait,
		StepWait:      cfg.StepWait,
	}
}

// base carries the helpers shared by every page.
type base struct {
	drv    browser.Driver
	logger *zap.Logger
	timing Timing
}

func newBase(drv browser.Driver, logger *zap.Logger, name string, timing Timing) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{drv: drv, logger: logger.Named(name), timing: timing}
}

func (b *base) step(msg string, fields ...zap.Field) {
	b.logger.Info(msg, fields...)
}

// OpenSite prepares a clean tab and loads url: cookies are cleared, the page
// is loaded until the network is idle, then LoadWait passes.
func (b *base) OpenSite(ctx context.Context, url string) error {
	b.step("Opening browser.", zap.String("url", url))
	if err := b.drv.ClearCookies(ctx); err != nil {
		return err
	}
	if err := b.drv.Navigate(ctx, url); err != nil {
		return err
	}
	return browser.Sleep(ctx, b.timing.LoadWait)
}

func (b *base) waitVisible(ctx context.Context, loc browser.Locator) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	return b.drv.WaitVisible(ctx, loc)
}

func (b *base) click(ctx context.Context, loc browser.Locator) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	return b.drv.Click(ctx, loc)
}

func (b *base) fill(ctx context.Context, loc browser.Locator, text string) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	return b.drv.Fill(ctx, loc, text)
}

func (b *base) clearInput(ctx context.Context, loc browser.Locator) error {
	if err := b.click(ctx, loc); err != nil {
		return err
	}
	return b.drv.Fill(ctx, loc, "")
}

// poll runs check until it succeeds or timeout passes, returning the last
// check error on timeout.
func poll(ctx context.Context, timeout, interval time.Duration, check func(context.Context) error) error {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		err := check(pollCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if sleepErr := browser.Sleep(pollCtx, interval); sleepErr != nil {
			return err
		}
	}
}

// containsText checks that the text of loc contains text, ignoring case.
func (b *base) containsText(ctx context.Context, loc browser.Locator, text string) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	return poll(ctx, b.timing.WaitTimeout, classPollInterval, func(ctx context.Context) error {
		actual, err := b.drv.Text(ctx, loc)
		if err != nil {
			return err
		}
		if !strings.Contains(strings.ToLower(actual), strings.ToLower(text)) {
			return &CheckError{Check: "text of " + loc.String(), Expected: text, Actual: actual}
		}
		return nil
	})
}

// urlContains checks that the current URL contains fragment.
func (b *base) urlContains(ctx context.Context, fragment string) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	return poll(ctx, b.timing.ActionTimeout, classPollInterval, func(ctx context.Context) error {
		u, err := b.drv.Location(ctx)
		if err != nil {
			return err
		}
		if !strings.Contains(u, fragment) {
			return &CheckError{Check: "url", Expected: fragment, Actual: u}
		}
		return nil
	})
}

func (b *base) verifyTitle(ctx context.Context, title string) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	actual, err := b.drv.Title(ctx)
	if err != nil {
		return err
	}
	if actual != title {
		return &CheckError{Check: "page title", Expected: title, Actual: actual}
	}
	return nil
}

// verifyTextColor compares the computed text color of loc with color, which
// may be a color name, a hex value or an rgb() string.
func (b *base) verifyTextColor(ctx context.Context, loc browser.Locator, color string) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	actual, err := b.drv.ComputedStyle(ctx, loc, "color")
	if err != nil {
		return err
	}
	if expected := browser.ResolveColor(color); actual != expected {
		return &CheckError{Check: "text color of " + loc.String(), Expected: expected, Actual: actual}
	}
	return nil
}

// waitClassDoesntContain waits until no element matched by loc has className
// in its class list.
func (b *base) waitClassDoesntContain(ctx context.Context, loc browser.Locator, className string) error {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return err
	}
	deadline := time.Now().Add(b.timing.ActionTimeout)
	for time.Now().Before(deadline) {
		n, err := b.drv.Count(ctx, loc)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("element not found for class check: %s", loc)
		}
		stillHasClass := false
		for i := 0; i < n && !stillHasClass; i++ {
			class, _, err := b.drv.Attribute(ctx, loc.Nth(i), "class")
			if err != nil {
				return err
			}
			for _, c := range strings.Fields(class) {
				if c == className {
					stillHasClass = true
					break
				}
			}
		}
		if !stillHasClass {
			return nil
		}
		if err := browser.Sleep(ctx, classPollInterval); err != nil {
			return err
		}
	}
	return fmt.Errorf("element(s) %s still contain class %q after %v", loc, className, b.timing.ActionTimeout)
}

// firstVisible narrows loc to its first visible match.
func (b *base) firstVisible(ctx context.Context, loc browser.Locator) (browser.Locator, error) {
	if err := b.drv.WaitIdle(ctx); err != nil {
		return browser.Locator{}, err
	}
	n, err := b.drv.Count(ctx, loc)
	if err != nil {
		return browser.Locator{}, err
	}
	for i := 0; i < n; i++ {
		current := loc.Nth(i)
		visible, err := b.drv.Visible(ctx, current)
		if err != nil {
			return browser.Locator{}, err
		}
		if visible {
			return current, nil
		}
	}
	return browser.Locator{}, fmt.Errorf("%w: %s", browser.ErrNoVisibleElement, loc)
}

// tableSnapshot reads and parses the table at pos. Only the first table matching
// the position selector is read: the dashboards render one table per position,
// and rows of any further matching table are not included.
func (b *base) tableSnapshot(ctx context.Context, pos table.Position) (*table.Snapshot, error) {
	html, err := b.drv.OuterHTML(ctx, browser.Locate(pos.Selector()).First())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s table: %w", pos, err)
	}
	return table.ParseSnapshot(html)
}
