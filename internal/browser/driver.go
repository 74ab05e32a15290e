// internal/browser/driver.go
package browser

import "context"

// Driver is everything the page objects need from a browser tab. Every call
// may block on the page and honors ctx cancellation.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	ClearCookies(ctx context.Context) error

	Click(ctx context.Context, loc Locator) error
	Fill(ctx context.Context, loc Locator, text string) error
	Hover(ctx context.Context, loc Locator) error
	// ClickForNewTab clicks loc and returns the tab the click opened.
	ClickForNewTab(ctx context.Context, loc Locator) (Tab, error)

	Text(ctx context.Context, loc Locator) (string, error)
	Texts(ctx context.Context, loc Locator) ([]string, error)
	OuterHTML(ctx context.Context, loc Locator) (string, error)
	Attribute(ctx context.Context, loc Locator, name string) (string, bool, error)
	ComputedStyle(ctx context.Context, loc Locator, property string) (string, error)
	Count(ctx context.Context, loc Locator) (int, error)
	Visible(ctx context.Context, loc Locator) (bool, error)

	WaitVisible(ctx context.Context, loc Locator) error
	WaitHidden(ctx context.Context, loc Locator) error
	// WaitIdle blocks until the page has loaded, loaders are gone and the
	// settle delay has passed.
	WaitIdle(ctx context.Context) error
}

// Tab is a secondary tab that must be closed by whoever opened it.
type Tab interface {
	Driver
	Close(ctx context.Context) error
}
