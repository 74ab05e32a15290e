// Package browsertest provides an in-memory browser.Driver for exercising page
// objects without Chrome. The page is a goquery document; clicks can be
// scripted to mutate it, navigate, or open a secondary tab.
package browsertest

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
)

// ClickHandler runs after a successful click on the locator it is registered for.
type ClickHandler func(d *Driver) error

// Driver is a fake browser.Driver. It is not safe for concurrent use.
type Driver struct {
	doc *goquery.Document

	// URL and PageTitle are returned by Location and Title. A document with a
	// <title> element overrides PageTitle.
	URL       string
	PageTitle string

	// Pages maps a URL to the HTML loaded when Navigate visits it.
	Pages map[string]string

	Navigations    []string
	Clicks         []string
	Hovers         []string
	Filled         map[string]string
	CookiesCleared int
	IdleWaits      int
	Closed         bool
	// CloseErr is returned by Close.
	CloseErr error

	onClick map[string]ClickHandler
	tabs    map[string]*Driver
}

var _ browser.Tab = (*Driver)(nil)

// New returns a fake driver showing html.
func New(html string) *Driver {
	d := &Driver{
		Pages:   make(map[string]string),
		Filled:  make(map[string]string),
		onClick: make(map[string]ClickHandler),
		tabs:    make(map[string]*Driver),
	}
	d.SetHTML(html)
	return d
}

// SetHTML replaces the current document.
func (d *Driver) SetHTML(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// goquery only fails on reader errors, which strings.Reader never returns.
		panic(err)
	}
	d.doc = doc
}

// HTML returns the current document.
func (d *Driver) HTML() string {
	html, _ := d.doc.Html()
	return html
}

// OnClick registers fn to run after clicks on loc.
func (d *Driver) OnClick(loc browser.Locator, fn ClickHandler) {
	d.onClick[loc.String()] = fn
}

// OnClickNewTab makes ClickForNewTab on loc return tab.
func (d *Driver) OnClickNewTab(loc browser.Locator, tab *Driver) {
	d.tabs[loc.String()] = tab
}

// ClickCount returns how often loc was clicked.
func (d *Driver) ClickCount(loc browser.Locator) int {
	n := 0
	for _, c := range d.Clicks {
		if c == loc.String() {
			n++
		}
	}
	return n
}

// resolve mirrors the in-page locator resolution of browser.Session.
func (d *Driver) resolve(loc browser.Locator) *goquery.Selection {
	sel := d.doc.Selection
	for _, step := range loc.Steps() {
		sel = sel.Find(step.CSS)
		if step.HasText != "" {
			needle := strings.ToLower(step.HasText)
			sel = sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return strings.Contains(strings.ToLower(s.Text()), needle)
			})
		}
		if step.Nth >= 0 {
			sel = sel.Eq(step.Nth)
		}
	}
	return sel
}

// isVisible treats an element as visible unless it or an ancestor is hidden by
// the hidden attribute or an inline display:none / visibility:hidden.
func isVisible(s *goquery.Selection) bool {
	for n := s; n.Length() > 0; n = n.Parent() {
		if _, hidden := n.Attr("hidden"); hidden {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(n.AttrOr("style", "")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func (d *Driver) firstVisible(loc browser.Locator) (*goquery.Selection, error) {
	sel := d.resolve(loc)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	var match *goquery.Selection
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if isVisible(s) {
			match = s
			return false
		}
		return true
	})
	if match == nil {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoVisibleElement, loc)
	}
	return match, nil
}

func (d *Driver) attached(loc browser.Locator) (*goquery.Selection, error) {
	sel := d.resolve(loc)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	return sel.First(), nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.Navigations = append(d.Navigations, url)
	d.URL = url
	if html, ok := d.Pages[url]; ok {
		d.SetHTML(html)
	}
	return nil
}

func (d *Driver) Location(ctx context.Context) (string, error) {
	return d.URL, ctx.Err()
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	if t := d.doc.Find("title").First(); t.Length() > 0 {
		return strings.TrimSpace(t.Text()), ctx.Err()
	}
	return d.PageTitle, ctx.Err()
}

func (d *Driver) ClearCookies(ctx context.Context) error {
	d.CookiesCleared++
	return ctx.Err()
}

func (d *Driver) Click(ctx context.Context, loc browser.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.firstVisible(loc); err != nil {
		return &browser.ActionTimeoutError{Action: "click", Locator: loc.String(), Attempts: 1, Err: err}
	}
	d.Clicks = append(d.Clicks, loc.String())
	if fn, ok := d.onClick[loc.String()]; ok {
		return fn(d)
	}
	return nil
}

func (d *Driver) Fill(ctx context.Context, loc browser.Locator, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el, err := d.firstVisible(loc)
	if err != nil {
		return &browser.ActionTimeoutError{Action: "fill", Locator: loc.String(), Attempts: 1, Err: err}
	}
	el.SetAttr("value", text)
	d.Filled[loc.String()] = text
	return nil
}

func (d *Driver) Hover(ctx context.Context, loc browser.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.firstVisible(loc); err != nil {
		return &browser.ActionTimeoutError{Action: "hover", Locator: loc.String(), Attempts: 1, Err: err}
	}
	d.Hovers = append(d.Hovers, loc.String())
	return nil
}

func (d *Driver) ClickForNewTab(ctx context.Context, loc browser.Locator) (browser.Tab, error) {
	if err := d.Click(ctx, loc); err != nil {
		return nil, err
	}
	tab, ok := d.tabs[loc.String()]
	if !ok {
		return nil, fmt.Errorf("no tab opened after clicking %s", loc)
	}
	return tab, nil
}

func (d *Driver) Text(ctx context.Context, loc browser.Locator) (string, error) {
	el, err := d.attached(loc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(el.Text()), ctx.Err()
}

func (d *Driver) Texts(ctx context.Context, loc browser.Locator) ([]string, error) {
	sel := d.resolve(loc)
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(s.Text()))
	})
	return texts, ctx.Err()
}

func (d *Driver) OuterHTML(ctx context.Context, loc browser.Locator) (string, error) {
	el, err := d.attached(loc)
	if err != nil {
		return "", err
	}
	html, err := goquery.OuterHtml(el)
	if err != nil {
		return "", err
	}
	return html, ctx.Err()
}

func (d *Driver) Attribute(ctx context.Context, loc browser.Locator, name string) (string, bool, error) {
	el, err := d.attached(loc)
	if err != nil {
		return "", false, err
	}
	v, ok := el.Attr(name)
	return v, ok, ctx.Err()
}

// ComputedStyle reads property from the inline style attribute of the first
// match. Properties that are not set inline are reported as empty.
func (d *Driver) ComputedStyle(ctx context.Context, loc browser.Locator, property string) (string, error) {
	el, err := d.attached(loc)
	if err != nil {
		return "", err
	}
	for _, decl := range strings.Split(el.AttrOr("style", ""), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), property) {
			return strings.TrimSpace(value), ctx.Err()
		}
	}
	return "", ctx.Err()
}

func (d *Driver) Count(ctx context.Context, loc browser.Locator) (int, error) {
	return d.resolve(loc).Length(), ctx.Err()
}

func (d *Driver) Visible(ctx context.Context, loc browser.Locator) (bool, error) {
	sel := d.resolve(loc)
	return sel.Length() > 0 && isVisible(sel.First()), ctx.Err()
}

func (d *Driver) WaitVisible(ctx context.Context, loc browser.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.firstVisible(loc); err != nil {
		return fmt.Errorf("waiting for %s to be visible: %w", loc, err)
	}
	return nil
}

func (d *Driver) WaitHidden(ctx context.Context, loc browser.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.firstVisible(loc); err == nil {
		return fmt.Errorf("waiting for %s to be hidden: still visible", loc)
	}
	return nil
}

// WaitIdle fails while a loader or spinner is in the document.
func (d *Driver) WaitIdle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.IdleWaits++
	if d.doc.Find(".loader, .spinner").Length() > 0 {
		return fmt.Errorf("page did not become idle: loader still attached")
	}
	return nil
}

func (d *Driver) Close(ctx context.Context) error {
	d.Closed = true
	return d.CloseErr
}
