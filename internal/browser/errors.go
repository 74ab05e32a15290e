// internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
)

// ErrNoVisibleElement is returned when a locator matches nothing visible.
var ErrNoVisibleElement = errors.New("no visible element found for the provided locator")

// ErrElementNotFound is returned when a locator matches no element at all.
var ErrElementNotFound = errors.New("element not found")

// ActionTimeoutError is returned once a page action has failed on every attempt.
type ActionTimeoutError struct {
	Action   string
	Locator  string
	Attempts int
	Err      error
}

func (e *ActionTimeoutError) Error() string {
	return fmt.Sprintf("%s on '%s' failed after %d attempt(s): %v", e.Action, e.Locator, e.Attempts, e.Err)
}

func (e *ActionTimeoutError) Unwrap() error { return e.Err }
