package browsertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
)

const page = `<html><head><title>Ottoviz</title></head><body>
<div class="MuiStack-root">
  <div class="MuiFormControl-root"><input id="a"></div>
  <div class="MuiFormControl-root"><input id="email"><p style="color: rgb(222, 55, 48)">Email is required</p></div>
  <div class="MuiFormControl-root" hidden><p>Password is required</p></div>
</div>
<button>KPI Sensor</button><button>KPI Feature</button>
</body></html>`

func TestResolveMirrorsLocatorSemantics(t *testing.T) {
	d := New(page)
	ctx := context.Background()

	n, err := d.Count(ctx, browser.Locate(".MuiStack-root").Find(".MuiFormControl-root"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	text, err := d.Text(ctx, browser.Locate(".MuiStack-root").Find(".MuiFormControl-root").Nth(1).Find("p"))
	require.NoError(t, err)
	assert.Equal(t, "Email is required", text)

	n, err = d.Count(ctx, browser.Locate("button").HasText("kpi feature"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = d.Count(ctx, browser.Locate("button").Nth(5))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVisibilityAndStyle(t *testing.T) {
	d := New(page)
	ctx := context.Background()
	hiddenP := browser.Locate(".MuiFormControl-root").Nth(2).Find("p")

	visible, err := d.Visible(ctx, hiddenP)
	require.NoError(t, err)
	assert.False(t, visible)
	assert.NoError(t, d.WaitHidden(ctx, hiddenP))
	assert.ErrorIs(t, d.WaitVisible(ctx, hiddenP), browser.ErrNoVisibleElement)

	color, err := d.ComputedStyle(ctx, browser.Locate("p").HasText("email"), "color")
	require.NoError(t, err)
	assert.Equal(t, "rgb(222, 55, 48)", color)
}

func TestClickHandlersAndTabs(t *testing.T) {
	d := New(page)
	ctx := context.Background()
	sensor := browser.Locate("button").HasText("KPI Sensor")

	d.OnClick(sensor, func(d *Driver) error {
		d.URL = "https://qa-ottoviz.ominf.net/kpi-sensor/lanes"
		return nil
	})
	require.NoError(t, d.Click(ctx, sensor))
	assert.Equal(t, 1, d.ClickCount(sensor))
	u, _ := d.Location(ctx)
	assert.Contains(t, u, "/kpi-sensor")

	tab := New(`<h6>details</h6>`)
	d.OnClickNewTab(sensor, tab)
	got, err := d.ClickForNewTab(ctx, sensor)
	require.NoError(t, err)
	assert.Same(t, tab, got)

	err = d.Click(ctx, browser.Locate("#missing"))
	var timeoutErr *browser.ActionTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
}

func TestFillAndNavigate(t *testing.T) {
	d := New(page)
	ctx := context.Background()
	d.Pages["https://example.test/"] = `<html><head><title>Other</title></head><body></body></html>`

	require.NoError(t, d.Fill(ctx, browser.Locate("#email"), "user@example.com"))
	v, ok, err := d.Attribute(ctx, browser.Locate("#email"), "value")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user@example.com", v)
	assert.Equal(t, "user@example.com", d.Filled["#email"])

	require.NoError(t, d.Navigate(ctx, "https://example.test/"))
	title, err := d.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Other", title)
}
