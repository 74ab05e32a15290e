// internal/table/aggregate.go
package table

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/softassert"
)

// AggregateComparison is the outcome of checking one column against its footer.
type AggregateComparison struct {
	ColumnLabel     string
	Sum             float64
	RowCount        int
	ExpectedAverage float64 // footer value
	ActualAverage   float64 // computed from the body rows, rounded to 1 dp
	Matched         bool
}

// Aggregator checks column averages against the footer summary row. Mismatches
// are deferred to the ledger; parse and shape problems are returned immediately.
type Aggregator struct {
	ledger    *softassert.Ledger
	tolerance float64
	logger    *zap.Logger
}

// NewAggregator creates an Aggregator. A tolerance of 0 requires exact equality
// after rounding.
func NewAggregator(ledger *softassert.Ledger, tolerance float64, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{ledger: ledger, tolerance: math.Abs(tolerance), logger: logger.Named("aggregator")}
}

// VerifyColumnTotal sums the cell at idx of every row, averages it, rounds the
// average to one decimal place and compares it with footer. A mismatch beyond
// the tolerance is recorded in the ledger and reported through Matched.
func (a *Aggregator) VerifyColumnTotal(label string, idx int, rows []Row, footer string) (AggregateComparison, error) {
	cmp := AggregateComparison{ColumnLabel: label, RowCount: len(rows)}
	if len(rows) == 0 {
		return cmp, fmt.Errorf("column %s: %w", label, ErrEmptyResultSet)
	}

	values, err := ColumnValues(idx, rows)
	if err != nil {
		return cmp, fmt.Errorf("column %s: %w", label, err)
	}
	expected, err := ParseNumeric(footer)
	if err != nil {
		return cmp, fmt.Errorf("column %s: %w", label, &MalformedCellError{Row: FooterRow, Column: idx, Text: footer, Err: err})
	}

	for _, v := range values {
		cmp.Sum += v
	}
	cmp.ExpectedAverage = expected
	cmp.ActualAverage = RoundHalfAwayFromZero(cmp.Sum/float64(len(values)), 1)
	cmp.Matched = a.ledger.ExpectEqual(cmp.ExpectedAverage, cmp.ActualAverage, label, a.tolerance)

	a.logger.Debug("Verified column total.",
		zap.String("column", label),
		zap.Int("rows", cmp.RowCount),
		zap.Float64("sum", cmp.Sum),
		zap.Float64("expected", cmp.ExpectedAverage),
		zap.Float64("actual", cmp.ActualAverage),
		zap.Bool("matched", cmp.Matched),
	)
	return cmp, nil
}
