package pages

import "fmt"

// CheckError is a failed hard check on the page.
type CheckError struct {
	Check    string
	Expected string
	Actual   string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", e.Check, e.Expected, e.Actual)
}
