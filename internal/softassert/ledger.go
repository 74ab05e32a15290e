// internal/softassert/ledger.go
//
// Package softassert collects non-fatal assertion failures during a scenario
// and surfaces them together once the scenario finishes. A Ledger is owned by
// exactly one scenario and is not safe for concurrent use.
package softassert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// failureHeader prefixes the aggregated failure message.
const failureHeader = "Soft Assertion Failures:"

// AggregateAssertionFailure is returned by Finalize when at least one soft
// assertion was recorded. Messages keeps insertion order.
type AggregateAssertionFailure struct {
	Messages []string
}

func (e *AggregateAssertionFailure) Error() string {
	return "\n" + failureHeader + "\n" + strings.Join(e.Messages, "\n")
}

// Ledger is an ordered list of soft assertion failure messages.
type Ledger struct {
	messages []string
	logger   *zap.Logger
}

// New returns an empty ledger. A nil logger disables failure logging during Finalize.
func New(logger *zap.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// Record appends a failure message. It never fails.
func (l *Ledger) Record(msg string) {
	l.messages = append(l.messages, msg)
}

// Recordf is Record with fmt formatting.
func (l *Ledger) Recordf(format string, args ...interface{}) {
	l.Record(fmt.Sprintf(format, args...))
}

// toleranceEpsilon absorbs binary representation error in decimal differences,
// so 82.4-82.3 is within a tolerance of 0.1.
const toleranceEpsilon = 1e-9

// ExpectEqual records a mismatch between expected and actual when they differ by
// more than tolerance. It reports whether the values matched.
func (l *Ledger) ExpectEqual(expected, actual float64, label string, tolerance float64) bool {
	if math.Abs(actual-expected) <= tolerance+toleranceEpsilon {
		return true
	}
	l.Record(MismatchMessage(label, expected, actual))
	return false
}

// MismatchMessage renders the canonical average mismatch line.
func MismatchMessage(label string, expected, actual float64) string {
	return fmt.Sprintf("%s: Expected average: %s, but got %s", label, FormatNumber(expected), FormatNumber(actual))
}

// FormatNumber renders f in its shortest decimal form (87.5, 88, -0.3).
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Len returns the number of recorded failures.
func (l *Ledger) Len() int { return len(l.messages) }

// Messages returns a copy of the recorded failures in insertion order.
func (l *Ledger) Messages() []string {
	out := make([]string, len(l.messages))
	copy(out, l.messages)
	return out
}

// Finalize returns an *AggregateAssertionFailure describing every recorded
// failure and clears the ledger. With nothing recorded it returns nil, so
// repeated calls after the first are no-ops.
func (l *Ledger) Finalize() error {
	if len(l.messages) == 0 {
		return nil
	}
	msgs := l.messages
	l.messages = nil

	if l.logger != nil {
		l.logger.Error(failureHeader, zap.Strings("failures", msgs))
	}
	return &AggregateAssertionFailure{Messages: msgs}
}
