package pages

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
	"github.com/xkilldash9x/kpiprobe/internal/table"
)

// KPIFeaturePath is the URL segment of KPI Feature reports.
const KPIFeaturePath = "/kpi-system"

// DTID column of the left table.
const (
	dtidHeader    = "Drive Trial Identification"
	dtidSubHeader = "DTID"
)

var (
	centerHeadRows = browser.Locate(table.Center.RowSelector(table.Head))
	leftBodyRows   = browser.Locate(table.Left.RowSelector(table.Body))
)

// KPIFeature is a KPI Feature report.
type KPIFeature struct {
	base
}

func NewKPIFeature(drv browser.Driver, logger *zap.Logger, timing Timing) *KPIFeature {
	return &KPIFeature{base: newBase(drv, logger, "kpi_feature", timing)}
}

func (p *KPIFeature) VerifyOpened(ctx context.Context, title string) error {
	p.step("Verifying that the KPI Feature page is opened.", zap.String("title", title))
	return verifyReportOpened(ctx, &p.base, KPIFeaturePath, title)
}

// SortTableValuesBy selects the subheader column column >> option and sorts by it.
func (p *KPIFeature) SortTableValuesBy(ctx context.Context, column, option string) error {
	p.step("Sorting values.", zap.String("column", table.Label(column, option)))

	snap, err := p.tableSnapshot(ctx, table.Center)
	if err != nil {
		return err
	}
	idx, err := snap.ResolveColumnIndex(column, option)
	if err != nil {
		return err
	}

	subHeader := centerHeadRows.Nth(1).Find("th").Nth(idx)
	if err := p.click(ctx, subHeader.Find(`span input[type="radio"]`)); err != nil {
		return err
	}
	sortButton := subHeader.Find("span button")
	if err := p.click(ctx, sortButton); err != nil {
		return err
	}
	if err := p.waitClassDoesntContain(ctx, sortButton, "Mui-disabled"); err != nil {
		return err
	}
	return browser.Sleep(ctx, p.timing.StepWait)
}

// VerifyTableIsSorted checks the center table is ordered by column >> option,
// descending for the FALSE option and ascending otherwise.
func (p *KPIFeature) VerifyTableIsSorted(ctx context.Context, column, option string) error {
	label := table.Label(column, option)
	p.step("Verifying table is sorted.", zap.String("column", label))

	snap, err := p.tableSnapshot(ctx, table.Center)
	if err != nil {
		return err
	}
	idx, err := snap.ResolveColumnIndex(column, option)
	if err != nil {
		return err
	}
	descending := table.DescendingFor(option)
	sorted, err := table.IsSorted(idx, snap.Rows, descending)
	if err != nil {
		return fmt.Errorf("column %s: %w", label, err)
	}
	if !sorted {
		order := "ascending"
		if descending {
			order = "descending"
		}
		return &CheckError{Check: "sort order of " + label, Expected: order, Actual: "unsorted"}
	}
	return nil
}

// CollectEventsFromFirstDTIDs expands each of the first n drive trials of the
// left table, counts the event rows it reveals and collapses it again. n is
// clamped to the number of rows.
func (p *KPIFeature) CollectEventsFromFirstDTIDs(ctx context.Context, n int) (int, error) {
	p.step("Collecting events from first DTIDs.", zap.Int("amount", n))
	if err := p.drv.WaitIdle(ctx); err != nil {
		return 0, err
	}

	snap, err := p.tableSnapshot(ctx, table.Left)
	if err != nil {
		return 0, err
	}
	idx, err := snap.ResolveColumnIndex(dtidHeader, dtidSubHeader)
	if err != nil {
		return 0, err
	}
	if n > len(snap.Rows) {
		n = len(snap.Rows)
	}

	total := 0
	for i := 0; i < n; i++ {
		row := snap.Rows[i]
		if idx >= len(row.Cells) {
			return total, &table.MalformedCellError{Row: i, Column: idx, Err: fmt.Errorf("row has %d cells", len(row.Cells))}
		}
		rowID := row.Cells[idx]
		toggle := leftBodyRows.Nth(i).Find("td").First().Find(`button[type="button"]`)

		if err := p.click(ctx, toggle); err != nil {
			return total, err
		}
		if err := p.drv.WaitIdle(ctx); err != nil {
			return total, err
		}
		expanded, err := p.tableSnapshot(ctx, table.Left)
		if err != nil {
			return total, err
		}
		count := len(expanded.RowsWithClass(fmt.Sprintf("row-%s.", rowID)))
		total += count

		if err := p.click(ctx, toggle); err != nil {
			return total, err
		}
		if err := p.drv.WaitIdle(ctx); err != nil {
			return total, err
		}
		p.logger.Info("Counted events for DTID.", zap.String("dtid", rowID), zap.Int("events", count))
	}
	return total, nil
}

// OpenDetails opens the details of the first drive trial in a new tab.
func (p *KPIFeature) OpenDetails(ctx context.Context) (*Details, error) {
	p.step("Opening details of the first DTID.")
	link := leftBodyRows.First().Find("td a").First()
	if err := p.waitVisible(ctx, link); err != nil {
		return nil, err
	}
	tab, err := p.drv.ClickForNewTab(ctx, link)
	if err != nil {
		return nil, err
	}
	return NewDetails(tab, p.logger, p.timing), nil
}
