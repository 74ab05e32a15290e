// internal/table/aggregate_test.go
package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/kpiprobe/internal/softassert"
)

func rowsOf(values ...string) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{Cells: []string{"id", v}}
	}
	return rows
}

func TestAggregator_VerifyColumnTotal(t *testing.T) {
	t.Run("matching footer records nothing", func(t *testing.T) {
		ledger := softassert.New(nil)
		agg := NewAggregator(ledger, 0, zaptest.NewLogger(t))

		res, err := agg.VerifyColumnTotal("Lane Present >> EGO Left", 1, rowsOf("87%", "88%"), "87.5%")
		require.NoError(t, err)
		assert.True(t, res.Matched)
		assert.Equal(t, 175.0, res.Sum)
		assert.Equal(t, 2, res.RowCount)
		assert.Equal(t, 87.5, res.ActualAverage)
		assert.Equal(t, 87.5, res.ExpectedAverage)
		assert.Equal(t, 0, ledger.Len())
	})

	t.Run("mismatch is deferred to the ledger", func(t *testing.T) {
		ledger := softassert.New(nil)
		agg := NewAggregator(ledger, 0, zaptest.NewLogger(t))

		res, err := agg.VerifyColumnTotal("X", 1, rowsOf("80", "95", "87"), "88")
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Equal(t, 87.3, res.ActualAverage)
		assert.Equal(t, []string{"X: Expected average: 88, but got 87.3"}, ledger.Messages())
	})

	t.Run("tolerance absorbs rounding drift", func(t *testing.T) {
		ledger := softassert.New(nil)
		agg := NewAggregator(ledger, 0.15, zaptest.NewLogger(t))

		res, err := agg.VerifyColumnTotal("X", 1, rowsOf("82.4", "82.4"), "82.3")
		require.NoError(t, err)
		assert.True(t, res.Matched)
		assert.Equal(t, 0, ledger.Len())
	})

	t.Run("tolerance is inclusive at one decimal step", func(t *testing.T) {
		for _, tc := range []struct{ cell, footer string }{
			{"82.4", "82.3"},
			{"93.1", "93.2"},
		} {
			ledger := softassert.New(nil)
			agg := NewAggregator(ledger, 0.1, zaptest.NewLogger(t))

			res, err := agg.VerifyColumnTotal("X", 1, rowsOf(tc.cell), tc.footer)
			require.NoError(t, err)
			assert.True(t, res.Matched, "%s vs %s", tc.cell, tc.footer)
			assert.Empty(t, ledger.Messages())
		}

		ledger := softassert.New(nil)
		res, err := NewAggregator(ledger, 0.1, nil).VerifyColumnTotal("X", 1, rowsOf("82.5"), "82.3")
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Equal(t, []string{"X: Expected average: 82.3, but got 82.5"}, ledger.Messages())
	})

	t.Run("empty rows", func(t *testing.T) {
		ledger := softassert.New(nil)
		agg := NewAggregator(ledger, 0, nil)

		_, err := agg.VerifyColumnTotal("X", 1, nil, "88")
		assert.True(t, errors.Is(err, ErrEmptyResultSet))
		assert.Equal(t, 0, ledger.Len())
	})

	t.Run("malformed body cell", func(t *testing.T) {
		agg := NewAggregator(softassert.New(nil), 0, nil)

		_, err := agg.VerifyColumnTotal("X", 1, rowsOf("80", "n/a"), "80")
		var mc *MalformedCellError
		require.True(t, errors.As(err, &mc))
		assert.Equal(t, 1, mc.Row)
		assert.Equal(t, 1, mc.Column)
		assert.Equal(t, "n/a", mc.Text)
	})

	t.Run("malformed footer", func(t *testing.T) {
		agg := NewAggregator(softassert.New(nil), 0, nil)

		_, err := agg.VerifyColumnTotal("X", 1, rowsOf("80"), "-")
		var mc *MalformedCellError
		require.True(t, errors.As(err, &mc))
		assert.Equal(t, FooterRow, mc.Row)
		assert.Contains(t, err.Error(), "footer")
	})

	t.Run("column outside the row", func(t *testing.T) {
		agg := NewAggregator(softassert.New(nil), 0, nil)

		_, err := agg.VerifyColumnTotal("X", 5, rowsOf("80"), "80")
		var mc *MalformedCellError
		assert.True(t, errors.As(err, &mc))
	})
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 87.3, RoundHalfAwayFromZero(87.25, 1))
	assert.Equal(t, -87.3, RoundHalfAwayFromZero(-87.25, 1))
	assert.Equal(t, 87.3, RoundHalfAwayFromZero(87.3333, 1))
	assert.Equal(t, 100.0, RoundHalfAwayFromZero(99.96, 1))
}

func TestParseNumeric(t *testing.T) {
	valid := map[string]float64{
		"87.5%": 87.5,
		" 12 ":  12,
		"100 %": 100,
		"-3.25": -3.25,
		"0":     0,
		"88% ":  88,
	}
	for in, want := range valid {
		got, err := ParseNumeric(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "%", "abc", "12abc", "NaN", "Inf", "5%0", "%50", "50%%"} {
		_, err := ParseNumeric(in)
		assert.Error(t, err, in)
	}
}

func TestAggregator_WholeNumberAverages(t *testing.T) {
	ledger := softassert.New(nil)
	agg := NewAggregator(ledger, 0, zaptest.NewLogger(t))

	res, err := agg.VerifyColumnTotal("A", 1, rowsOf("10.0", "20.0", "30.0"), "20.0")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 20.0, res.ActualAverage)
	assert.Zero(t, ledger.Len())

	res, err = agg.VerifyColumnTotal("B", 1, rowsOf("87.0", "88.0"), "88")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	require.Equal(t, 1, ledger.Len())
	assert.Contains(t, ledger.Messages()[0], "87.5")
	assert.Contains(t, ledger.Messages()[0], "88")
}
