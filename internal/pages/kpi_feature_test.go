package pages

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/kpiprobe/internal/browser/browsertest"
	"github.com/xkilldash9x/kpiprobe/internal/table"
)

// featureFixture renders a KPI Feature report. The drive trial in expanded,
// if any, shows events event rows below it.
type featureFixture struct {
	dtids    []string
	events   map[string]int
	zone1    []string
	expanded string
}

func (f *featureFixture) html() string {
	var left, center strings.Builder
	for i, id := range f.dtids {
		fmt.Fprintf(&left, `<tr class="row-%s"><td><button type="button">+</button></td><td><a href="/kpi-details/%s">%s</a></td></tr>`, id, id, id)
		fmt.Fprintf(&center, `<tr><td>%s</td><td>1</td></tr>`, f.zone1[i])
		if id == f.expanded {
			for e := 0; e < f.events[id]; e++ {
				fmt.Fprintf(&left, `<tr class="row-%s.%d"><td></td><td>event</td></tr>`, id, e)
				center.WriteString(`<tr><td>0</td><td>0</td></tr>`)
			}
		}
	}
	return fmt.Sprintf(`<html><body>
<h6>ISA Zone1</h6>
<table position="left">
  <thead><tr><th colspan="1"></th><th colspan="1">Drive Trial Identification</th></tr><tr><th></th><th>DTID</th></tr></thead>
  <tbody>%s</tbody>
</table>
<table position="center">
  <thead>
    <tr><th colspan="2">Zone1</th></tr>
    <tr>
      <th><span><input type="radio"></span>FALSE<span><button class="MuiButton-root"></button></span></th>
      <th><span><input type="radio"></span>TRUE<span><button class="MuiButton-root"></button></span></th>
    </tr>
  </thead>
  <tbody>%s</tbody>
</table>
</body></html>`, left.String(), center.String())
}

func newFeaturePage(t *testing.T, f *featureFixture) (*KPIFeature, *browsertest.Driver) {
	drv := browsertest.New(f.html())
	drv.URL = "https://qa-ottoviz.ominf.net/VI1/kpi-system/isa/zone1"
	for i, id := range f.dtids {
		id := id
		toggle := leftBodyRows.Nth(i).Find("td").First().Find(`button[type="button"]`)
		drv.OnClick(toggle, func(d *browsertest.Driver) error {
			if f.expanded == id {
				f.expanded = ""
			} else {
				f.expanded = id
			}
			d.SetHTML(f.html())
			return nil
		})
	}
	return NewKPIFeature(drv, zaptest.NewLogger(t), testTiming()), drv
}

func TestKPIFeature_VerifyOpened(t *testing.T) {
	p, _ := newFeaturePage(t, &featureFixture{dtids: []string{"101"}, zone1: []string{"1"}})
	require.NoError(t, p.VerifyOpened(testContext(t), "zone1"))
	assert.Error(t, p.VerifyOpened(testContext(t), "lanes"))
}

func TestKPIFeature_SortAndVerify(t *testing.T) {
	f := &featureFixture{dtids: []string{"101", "102", "103"}, zone1: []string{"30%", "20%", "10%"}}
	p, drv := newFeaturePage(t, f)
	ctx := testContext(t)

	require.NoError(t, p.SortTableValuesBy(ctx, "Zone1", "FALSE"))
	subHeader := centerHeadRows.Nth(1).Find("th").Nth(0)
	assert.Equal(t, 1, drv.ClickCount(subHeader.Find(`span input[type="radio"]`)))
	assert.Equal(t, 1, drv.ClickCount(subHeader.Find("span button")))

	require.NoError(t, p.VerifyTableIsSorted(ctx, "Zone1", "FALSE"))

	require.NoError(t, p.VerifyTableIsSorted(ctx, "Zone1", "TRUE"), "a constant column is sorted both ways")
}

func TestKPIFeature_VerifyTableIsSortedWrongOrder(t *testing.T) {
	p, _ := newFeaturePage(t, &featureFixture{dtids: []string{"101", "102"}, zone1: []string{"10%", "20%"}})

	var checkErr *CheckError
	require.ErrorAs(t, p.VerifyTableIsSorted(testContext(t), "Zone1", "FALSE"), &checkErr)
	assert.Equal(t, "descending", checkErr.Expected)
}

func TestKPIFeature_VerifyTableIsSortedErrors(t *testing.T) {
	p, _ := newFeaturePage(t, &featureFixture{dtids: []string{"101", "102"}, zone1: []string{"1", "x"}})
	ctx := testContext(t)

	var malformed *table.MalformedCellError
	require.ErrorAs(t, p.VerifyTableIsSorted(ctx, "Zone1", "FALSE"), &malformed)

	var notFound *table.NotFoundError
	require.ErrorAs(t, p.VerifyTableIsSorted(ctx, "Zone2", "FALSE"), &notFound)
}

func TestKPIFeature_CollectEventsFromFirstDTIDs(t *testing.T) {
	f := &featureFixture{
		dtids:  []string{"101", "102", "103"},
		zone1:  []string{"3", "2", "1"},
		events: map[string]int{"101": 2, "102": 0, "103": 4},
	}

	t.Run("FirstTwo", func(t *testing.T) {
		p, drv := newFeaturePage(t, f)
		total, err := p.CollectEventsFromFirstDTIDs(testContext(t), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, drv.Clicks, 4, "every drive trial is expanded and collapsed")
		assert.Empty(t, f.expanded)
	})

	t.Run("ClampedToRowCount", func(t *testing.T) {
		p, _ := newFeaturePage(t, f)
		total, err := p.CollectEventsFromFirstDTIDs(testContext(t), 7)
		require.NoError(t, err)
		assert.Equal(t, 6, total)
	})

	t.Run("Zero", func(t *testing.T) {
		p, drv := newFeaturePage(t, f)
		total, err := p.CollectEventsFromFirstDTIDs(testContext(t), 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, drv.Clicks)
	})
}

func TestKPIFeature_OpenDetails(t *testing.T) {
	p, drv := newFeaturePage(t, &featureFixture{dtids: []string{"101"}, zone1: []string{"1"}})
	tab := browsertest.New(`<html><body></body></html>`)
	tab.URL = "https://qa-ottoviz.ominf.net/VI1/kpi-details/zone1/101"
	drv.OnClickNewTab(leftBodyRows.First().Find("td a").First(), tab)

	ctx := testContext(t)
	details, err := p.OpenDetails(ctx)
	require.NoError(t, err)
	require.NoError(t, details.VerifyOpened(ctx, "zone1"))
	require.NoError(t, details.Close(ctx))
	assert.True(t, tab.Closed)
}
