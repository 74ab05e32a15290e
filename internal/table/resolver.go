// internal/table/resolver.go
package table

import "fmt"

// HeaderCell is one cell of the top header row.
type HeaderCell struct {
	Name string
	Span int
}

// SubColumn is a subheader cell with its logical column index.
type SubColumn struct {
	Name         string
	LogicalIndex int
}

// ColumnGroup is a main header together with the subheader columns it spans.
type ColumnGroup struct {
	Header HeaderCell
	Subs   []SubColumn
}

// ColumnCoordinate addresses a single logical column.
type ColumnCoordinate struct {
	MainHeader   string
	SubHeader    string
	LogicalIndex int
}

// ColumnIndexMap is the header geometry of one table, rebuilt on every lookup.
// Logical indices are contiguous from 0 in left-to-right order.
type ColumnIndexMap []ColumnGroup

// BuildColumnIndexMap walks the main header cells in order, assigning each one
// the next Span subheader cells. The colspans must add up to exactly the
// number of subheader cells.
func BuildColumnIndexMap(mainTexts []string, mainSpans []int, subTexts []string) (ColumnIndexMap, error) {
	if len(mainTexts) != len(mainSpans) {
		return nil, &GeometryError{Reason: fmt.Sprintf("%d main headers but %d colspans", len(mainTexts), len(mainSpans))}
	}

	m := make(ColumnIndexMap, 0, len(mainTexts))
	cursor := 0
	for i, name := range mainTexts {
		span := mainSpans[i]
		if span < 1 {
			return nil, &GeometryError{Reason: fmt.Sprintf("main header %q has colspan %d", name, span)}
		}
		if cursor+span > len(subTexts) {
			return nil, &GeometryError{Reason: fmt.Sprintf("main header %q spans past the %d subheader cells", name, len(subTexts))}
		}

		group := ColumnGroup{Header: HeaderCell{Name: name, Span: span}, Subs: make([]SubColumn, 0, span)}
		for j := 0; j < span; j++ {
			group.Subs = append(group.Subs, SubColumn{Name: subTexts[cursor], LogicalIndex: cursor})
			cursor++
		}
		m = append(m, group)
	}

	if cursor != len(subTexts) {
		return nil, &GeometryError{Reason: fmt.Sprintf("colspans cover %d of %d subheader cells", cursor, len(subTexts))}
	}
	return m, nil
}

// Lookup returns the first column whose main header and subheader match
// exactly. Main headers are searched in order, then their subheaders.
func (m ColumnIndexMap) Lookup(main, sub string) (ColumnCoordinate, bool) {
	for _, g := range m {
		if g.Header.Name != main {
			continue
		}
		for _, s := range g.Subs {
			if s.Name == sub {
				return ColumnCoordinate{MainHeader: main, SubHeader: sub, LogicalIndex: s.LogicalIndex}, true
			}
		}
	}
	return ColumnCoordinate{}, false
}

// Coordinates flattens the map in logical index order.
func (m ColumnIndexMap) Coordinates() []ColumnCoordinate {
	var out []ColumnCoordinate
	for _, g := range m {
		for _, s := range g.Subs {
			out = append(out, ColumnCoordinate{MainHeader: g.Header.Name, SubHeader: s.Name, LogicalIndex: s.LogicalIndex})
		}
	}
	return out
}

// ResolveColumnIndex maps a (main header, subheader) pair to its logical
// column index. A pair that matches nothing yields a *NotFoundError.
func ResolveColumnIndex(mainTexts []string, mainSpans []int, subTexts []string, targetMain, targetSub string) (int, error) {
	m, err := BuildColumnIndexMap(mainTexts, mainSpans, subTexts)
	if err != nil {
		return 0, err
	}
	coord, ok := m.Lookup(targetMain, targetSub)
	if !ok {
		return 0, &NotFoundError{Main: targetMain, Sub: targetSub}
	}
	return coord.LogicalIndex, nil
}

// Label renders the column label used in assertion messages.
func Label(main, sub string) string {
	return main + " >> " + sub
}

