// internal/table/snapshot.go
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Position identifies one of the three synchronized tables on a KPI page.
type Position string

const (
	Left   Position = "left"
	Center Position = "center"
	Right  Position = "right"
)

// Section is a table section element.
type Section string

const (
	Head Section = "thead"
	Body Section = "tbody"
	Foot Section = "tfoot"
)

// Selector returns the CSS selector of the table at position.
func (p Position) Selector() string {
	return fmt.Sprintf(`table[position="%s"]`, strings.ToLower(string(p)))
}

// RowSelector returns the CSS selector of the rows of one section of the table at position.
func (p Position) RowSelector(s Section) string {
	return fmt.Sprintf("%s %s tr", p.Selector(), strings.ToLower(string(s)))
}

// Snapshot is a parsed, point-in-time copy of one rendered table.
type Snapshot struct {
	MainHeaders []HeaderCell
	SubHeaders  []string
	Rows        []Row
	Footer      []string
}

// ParseSnapshot reads the outer HTML of a table element. The first header row
// holds the main headers, the second the subheaders. A missing colspan counts as 1.
// When the markup holds several tables only the first is read.
func ParseSnapshot(outerHTML string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(outerHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse table markup: %w", err)
	}
	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, fmt.Errorf("no table element in markup")
	}

	snap := &Snapshot{}
	headRows := tbl.Find("thead tr")

	var spanErr error
	headRows.Eq(0).Find("th").Each(func(_ int, th *goquery.Selection) {
		span := 1
		if raw, ok := th.Attr("colspan"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil && spanErr == nil {
				spanErr = fmt.Errorf("invalid colspan %q: %w", raw, err)
			}
			span = n
		}
		snap.MainHeaders = append(snap.MainHeaders, HeaderCell{Name: cellText(th), Span: span})
	})
	if spanErr != nil {
		return nil, &GeometryError{Reason: spanErr.Error()}
	}
	headRows.Eq(1).Find("th").Each(func(_ int, th *goquery.Selection) {
		snap.SubHeaders = append(snap.SubHeaders, cellText(th))
	})

	tbl.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		class, _ := tr.Attr("class")
		row := Row{Class: class}
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			row.Cells = append(row.Cells, cellText(td))
		})
		snap.Rows = append(snap.Rows, row)
	})

	tbl.Find("tfoot tr").First().Find("td").Each(func(_ int, td *goquery.Selection) {
		snap.Footer = append(snap.Footer, cellText(td))
	})
	return snap, nil
}

// ColumnIndexMap builds the header geometry of the snapshot.
func (s *Snapshot) ColumnIndexMap() (ColumnIndexMap, error) {
	names := make([]string, len(s.MainHeaders))
	spans := make([]int, len(s.MainHeaders))
	for i, h := range s.MainHeaders {
		names[i] = h.Name
		spans[i] = h.Span
	}
	return BuildColumnIndexMap(names, spans, s.SubHeaders)
}

// ResolveColumnIndex resolves a (main header, subheader) pair against the snapshot header.
func (s *Snapshot) ResolveColumnIndex(main, sub string) (int, error) {
	m, err := s.ColumnIndexMap()
	if err != nil {
		return 0, err
	}
	coord, ok := m.Lookup(main, sub)
	if !ok {
		return 0, &NotFoundError{Main: main, Sub: sub}
	}
	return coord.LogicalIndex, nil
}

// FooterCell returns the footer text at idx.
func (s *Snapshot) FooterCell(idx int) (string, error) {
	if idx < 0 || idx >= len(s.Footer) {
		return "", &MalformedCellError{Row: FooterRow, Column: idx, Err: fmt.Errorf("footer has %d cells", len(s.Footer))}
	}
	return s.Footer[idx], nil
}

// RowsWithClass returns the rows whose class attribute contains fragment.
func (s *Snapshot) RowsWithClass(fragment string) []Row {
	var out []Row
	for _, r := range s.Rows {
		if strings.Contains(r.Class, fragment) {
			out = append(out, r)
		}
	}
	return out
}

func cellText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
