// internal/table/cells.go
package table

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotFinite = errors.New("value is not a finite number")

// Row is one body row of a rendered table.
type Row struct {
	Cells []string
	Class string
}

// ParseNumeric reads a display value such as "87.5%" or " 12 " as a float.
// A trailing percent sign is stripped; anything else that is not a decimal number is rejected.
func ParseNumeric(text string) (float64, error) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%"))
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// ColumnValues parses the cell at idx of every row, in row order.
func ColumnValues(idx int, rows []Row) ([]float64, error) {
	out := make([]float64, 0, len(rows))
	for i, r := range rows {
		if idx < 0 || idx >= len(r.Cells) {
			return nil, &MalformedCellError{Row: i, Column: idx, Err: errors.New("row has no cell at this column")}
		}
		v, err := ParseNumeric(r.Cells[idx])
		if err != nil {
			return nil, &MalformedCellError{Row: i, Column: idx, Text: r.Cells[idx], Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// RoundHalfAwayFromZero rounds f to the given number of decimal places.
func RoundHalfAwayFromZero(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
