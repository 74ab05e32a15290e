// internal/timeline/counter.go
package timeline

import (
	"errors"
	"strconv"
	"strings"
)

var errNonPositiveCount = errors.New("aggregate count must be at least 1")

// aggregatedMarker is the class carried by items that stand for several
// collapsed events and show their count as the item label.
const aggregatedMarker = "timeline-item-with-content"

// ItemKind discriminates plain items from aggregated ones.
type ItemKind int

const (
	SimpleItem ItemKind = iota
	AggregatedItem
)

// Item is one rendered .vis-item element.
type Item struct {
	Class   string
	Content string
}

// Classify reports the kind of it. A class string mentioning the aggregate
// marker makes an aggregated item.
func Classify(it Item) ItemKind {
	if strings.Contains(it.Class, aggregatedMarker) {
		return AggregatedItem
	}
	return SimpleItem
}

// Weight is the number of events an item stands for. An aggregated item
// stands for at least one.
func (it Item) Weight() (int, error) {
	if Classify(it) == SimpleItem {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(it.Content))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errNonPositiveCount
	}
	return n, nil
}

// CountEvents sums the weights of the items in the group at position.
// Only that group is read, so events of other tracks never leak in.
func CountEvents(position int, groups [][]Item) (int, error) {
	if position < 0 || position >= len(groups) {
		return 0, &NotFoundError{Position: position}
	}
	total := 0
	for i, it := range groups[position] {
		w, err := it.Weight()
		if err != nil {
			return 0, &MalformedItemError{Index: i, Content: it.Content, Err: err}
		}
		total += w
	}
	return total, nil
}
