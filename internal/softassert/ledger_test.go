// internal/softassert/ledger_test.go
package softassert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLedger_FinalizeEmptyIsNoop(t *testing.T) {
	l := New(nil)
	assert.NoError(t, l.Finalize())
	assert.NoError(t, l.Finalize())
	assert.Equal(t, 0, l.Len())
}

func TestLedger_FinalizeAggregatesInOrder(t *testing.T) {
	l := New(nil)
	l.Record("A: Expected average: 87.5, but got 88")
	l.Record("B: Expected average: 82.4, but got 82.3")
	require.Equal(t, 2, l.Len())

	err := l.Finalize()
	require.Error(t, err)

	var agg *AggregateAssertionFailure
	require.True(t, errors.As(err, &agg))
	assert.Equal(t, []string{
		"A: Expected average: 87.5, but got 88",
		"B: Expected average: 82.4, but got 82.3",
	}, agg.Messages)
	assert.Equal(t,
		"\nSoft Assertion Failures:\nA: Expected average: 87.5, but got 88\nB: Expected average: 82.4, but got 82.3",
		err.Error())

	// The ledger is cleared, so the next finalize passes.
	assert.Equal(t, 0, l.Len())
	assert.NoError(t, l.Finalize())
}

func TestLedger_ExpectEqual(t *testing.T) {
	l := New(nil)

	assert.True(t, l.ExpectEqual(87.5, 87.5, "exact", 0))
	assert.False(t, l.ExpectEqual(87.5, 88, "Lane Present >> EGO Left", 0))
	assert.True(t, l.ExpectEqual(82.3, 82.4, "within tolerance", 0.1))
	assert.True(t, l.ExpectEqual(93.2, 93.1, "within tolerance", 0.1))

	require.Equal(t, []string{"Lane Present >> EGO Left: Expected average: 87.5, but got 88"}, l.Messages())
}

func TestLedger_MessagesReturnsCopy(t *testing.T) {
	l := New(nil)
	l.Record("first")
	msgs := l.Messages()
	msgs[0] = "mutated"
	assert.Equal(t, []string{"first"}, l.Messages())
}

func TestLedger_FinalizeLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	l := New(zap.New(core))
	l.Recordf("%s: broken", "col")

	require.Error(t, l.Finalize())
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Soft Assertion Failures:", entries[0].Message)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "88", FormatNumber(88))
	assert.Equal(t, "87.5", FormatNumber(87.5))
	assert.Equal(t, "-0.3", FormatNumber(-0.3))
}
