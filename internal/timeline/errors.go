// internal/timeline/errors.go
package timeline

import (
	"errors"
	"fmt"
)

// ErrEmptyTimeline is returned when the markup holds no rendered timeline.
var ErrEmptyTimeline = errors.New("no timeline rendered")

// NotFoundError reports that no track matched an event name, or that a
// resolved position has no item group.
type NotFoundError struct {
	Event    string
	Position int
}

func (e *NotFoundError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("no timeline track found for event %q", e.Event)
	}
	return fmt.Sprintf("no timeline track at position %d", e.Position)
}

// MalformedItemError reports an aggregated item whose label is not a positive integer count.
type MalformedItemError struct {
	Index   int
	Content string
	Err     error
}

func (e *MalformedItemError) Error() string {
	return fmt.Sprintf("timeline item %d has invalid aggregate label %q: %v", e.Index, e.Content, e.Err)
}

func (e *MalformedItemError) Unwrap() error { return e.Err }
