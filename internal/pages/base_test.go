package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
	"github.com/xkilldash9x/kpiprobe/internal/browser/browsertest"
)

func TestOpenSite(t *testing.T) {
	drv := browsertest.New(`<html></html>`)
	b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())

	require.NoError(t, b.OpenSite(testContext(t), "https://qa-ottoviz.ominf.net"))
	assert.Equal(t, 1, drv.CookiesCleared)
	assert.Equal(t, []string{"https://qa-ottoviz.ominf.net"}, drv.Navigations)
}

func TestFirstVisible(t *testing.T) {
	drv := browsertest.New(`<ul>
		<li class="item" style="display: none">hidden</li>
		<li class="item">shown</li>
	</ul>`)
	b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())
	ctx := testContext(t)

	loc, err := b.firstVisible(ctx, browser.Locate(".item"))
	require.NoError(t, err)
	text, err := drv.Text(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "shown", text)

	_, err = b.firstVisible(ctx, browser.Locate(".item").HasText("hidden"))
	assert.ErrorIs(t, err, browser.ErrNoVisibleElement)
}

func TestWaitClassDoesntContain(t *testing.T) {
	ctx := testContext(t)

	t.Run("Clear", func(t *testing.T) {
		drv := browsertest.New(`<button class="MuiButton-root">sort</button>`)
		b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())
		assert.NoError(t, b.waitClassDoesntContain(ctx, browser.Locate("button"), "Mui-disabled"))
	})

	t.Run("SubstringIsNotAClass", func(t *testing.T) {
		drv := browsertest.New(`<button class="Mui-disabled-not">sort</button>`)
		b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())
		assert.NoError(t, b.waitClassDoesntContain(ctx, browser.Locate("button"), "Mui-disabled"))
	})

	t.Run("StillContains", func(t *testing.T) {
		drv := browsertest.New(`<button class="MuiButton-root Mui-disabled">sort</button>`)
		b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())
		err := b.waitClassDoesntContain(ctx, browser.Locate("button"), "Mui-disabled")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `still contain class "Mui-disabled"`)
	})

	t.Run("NotFound", func(t *testing.T) {
		drv := browsertest.New(`<div></div>`)
		b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())
		err := b.waitClassDoesntContain(ctx, browser.Locate("button"), "Mui-disabled")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "element not found for class check")
	})
}

func TestVerifyTextColor(t *testing.T) {
	drv := browsertest.New(`<p style="color: rgb(222, 55, 48)">err</p><span style="color: rgb(0, 0, 0)">ok</span>`)
	b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())
	ctx := testContext(t)

	assert.NoError(t, b.verifyTextColor(ctx, browser.Locate("p"), "red"))
	assert.NoError(t, b.verifyTextColor(ctx, browser.Locate("p"), "#de3730"))

	err := b.verifyTextColor(ctx, browser.Locate("span"), "red")
	var checkErr *CheckError
	require.ErrorAs(t, err, &checkErr)
	assert.Equal(t, "rgb(222, 55, 48)", checkErr.Expected)
	assert.Equal(t, "rgb(0, 0, 0)", checkErr.Actual)
}

func TestWaitIdleFailsWhileLoading(t *testing.T) {
	drv := browsertest.New(`<div class="spinner"></div><button>go</button>`)
	b := newBase(drv, zaptest.NewLogger(t), "base", testTiming())
	assert.Error(t, b.click(testContext(t), browser.Locate("button")))
	assert.Empty(t, drv.Clicks)
}
