// internal/timeline/locator.go
//
// Package timeline reads the vis-timeline widget of the details page: it
// finds the track that belongs to an event type and counts the events drawn
// on it.
package timeline

import "strings"

// FindTrackPosition returns the index of the first track label whose
// identifier contains "|"+eventName. Identifiers have the shape
// "<prefix>|<eventName>[...]".
func FindTrackPosition(labels []string, eventName string) (int, error) {
	needle := "|" + eventName
	for i, id := range labels {
		if strings.Contains(id, needle) {
			return i, nil
		}
	}
	return 0, &NotFoundError{Event: eventName}
}
