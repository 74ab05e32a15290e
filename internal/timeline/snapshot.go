// internal/timeline/snapshot.go
package timeline

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	labelSelector = ".vis-timeline .vis-left .vis-label"
	groupSelector = ".vis-timeline .vis-center .vis-foreground .vis-group"
)

// Snapshot is a parsed copy of a rendered timeline. Labels[i] is the
// identifier of track i and Groups[i] holds the items drawn on it.
type Snapshot struct {
	Labels []string
	Groups [][]Item
}

// ParseSnapshot reads the outer HTML of the element that hosts the timeline.
func ParseSnapshot(outerHTML string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(outerHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse timeline markup: %w", err)
	}
	if doc.Find(".vis-timeline").Length() == 0 {
		return nil, ErrEmptyTimeline
	}

	snap := &Snapshot{}
	doc.Find(labelSelector).Each(func(_ int, label *goquery.Selection) {
		id, _ := label.Find(".vis-inner").First().Attr("data-testid")
		snap.Labels = append(snap.Labels, id)
	})
	doc.Find(groupSelector).Each(func(_ int, group *goquery.Selection) {
		items := []Item{}
		group.Find(".vis-item").Each(func(_ int, el *goquery.Selection) {
			class, _ := el.Attr("class")
			items = append(items, Item{
				Class:   class,
				Content: strings.TrimSpace(el.Find(".vis-item-content").First().Text()),
			})
		})
		snap.Groups = append(snap.Groups, items)
	})
	return snap, nil
}

// CountEventsFor locates the track of eventName and counts its events.
func (s *Snapshot) CountEventsFor(eventName string) (int, error) {
	pos, err := FindTrackPosition(s.Labels, eventName)
	if err != nil {
		return 0, err
	}
	return CountEvents(pos, s.Groups)
}
