package pages

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
	"github.com/xkilldash9x/kpiprobe/internal/softassert"
	"github.com/xkilldash9x/kpiprobe/internal/table"
)

// KPISensorPath is the URL segment of KPI Sensor reports.
const KPISensorPath = "/kpi-sensor"

var pageTitle = browser.Locate("h6")

// KPISensor is a KPI Sensor report. Column total mismatches are collected in
// the ledger and surfaced by FinalAssert.
type KPISensor struct {
	base
	ledger     *softassert.Ledger
	aggregator *table.Aggregator
}

func NewKPISensor(drv browser.Driver, logger *zap.Logger, timing Timing, ledger *softassert.Ledger, tolerance float64) *KPISensor {
	p := &KPISensor{base: newBase(drv, logger, "kpi_sensor", timing), ledger: ledger}
	p.aggregator = table.NewAggregator(ledger, tolerance, p.logger)
	return p
}

// VerifyOpened checks the report is shown and, when title is set, that it is
// the report named title.
func (p *KPISensor) VerifyOpened(ctx context.Context, title string) error {
	p.step("Verifying that the KPI Sensor page is opened.", zap.String("title", title))
	return verifyReportOpened(ctx, &p.base, KPISensorPath, title)
}

func verifyReportOpened(ctx context.Context, b *base, path, title string) error {
	if err := b.waitVisible(ctx, pageTitle); err != nil {
		return err
	}
	if err := b.urlContains(ctx, path); err != nil {
		return err
	}
	if title == "" {
		return nil
	}
	if err := b.containsText(ctx, pageTitle, title); err != nil {
		return err
	}
	return b.urlContains(ctx, "/"+title)
}

// VerifyTotalSumOfColumn checks that the average of the column under
// column >> option matches the footer of the center table.
func (p *KPISensor) VerifyTotalSumOfColumn(ctx context.Context, column, option string) (table.AggregateComparison, error) {
	label := table.Label(column, option)
	p.step("Verifying column total.", zap.String("column", label))

	snap, err := p.tableSnapshot(ctx, table.Center)
	if err != nil {
		return table.AggregateComparison{ColumnLabel: label}, err
	}
	idx, err := snap.ResolveColumnIndex(column, option)
	if err != nil {
		return table.AggregateComparison{ColumnLabel: label}, err
	}
	footer, err := snap.FooterCell(idx)
	if err != nil {
		return table.AggregateComparison{ColumnLabel: label}, err
	}
	return p.aggregator.VerifyColumnTotal(label, idx, snap.Rows, footer)
}

// FinalAssert fails with every mismatch recorded since the last call.
func (p *KPISensor) FinalAssert() error {
	p.step("Final assertion.", zap.Int("failures", p.ledger.Len()))
	return p.ledger.Finalize()
}
