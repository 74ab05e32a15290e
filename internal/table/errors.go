// internal/table/errors.go
package table

import (
	"errors"
	"fmt"
)

// ErrEmptyResultSet is returned when an aggregate is requested over zero rows.
var ErrEmptyResultSet = errors.New("empty result set")

// FooterRow is the Row value of a MalformedCellError raised for the footer cell.
const FooterRow = -1

// NotFoundError reports that no subheader column matched the requested
// (main header, subheader) pair.
type NotFoundError struct {
	Main string
	Sub  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("column %q >> %q not found in table header", e.Main, e.Sub)
}

// MalformedCellError reports a cell whose text does not parse as a number.
type MalformedCellError struct {
	Row    int
	Column int
	Text   string
	Err    error
}

func (e *MalformedCellError) Error() string {
	where := fmt.Sprintf("row %d", e.Row)
	if e.Row == FooterRow {
		where = "footer"
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed cell at %s, column %d (%q): %v", where, e.Column, e.Text, e.Err)
	}
	return fmt.Sprintf("malformed cell at %s, column %d (%q)", where, e.Column, e.Text)
}

func (e *MalformedCellError) Unwrap() error { return e.Err }

// GeometryError reports a header whose colspans do not line up with its subheader row.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "invalid table header geometry: " + e.Reason
}
