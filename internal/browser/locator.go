// internal/browser/locator.go
package browser

import (
	"fmt"
	"strings"
)

// Step is one hop of a Locator: a CSS query run against every element
// matched so far, optionally filtered by visible text and narrowed to one match.
type Step struct {
	CSS     string `json:"css"`
	HasText string `json:"text,omitempty"`
	// Nth picks a single match by index. -1 keeps all matches.
	Nth int `json:"nth"`
}

// Locator is an immutable, chainable element query. It mirrors the way the
// dashboard's pages are addressed: a CSS selector, then nth or text filters,
// then nested selectors inside the result.
type Locator struct {
	steps []Step
}

// Locate starts a locator at the document root.
func Locate(css string) Locator {
	return Locator{steps: []Step{{CSS: css, Nth: -1}}}
}

// Find queries css inside every element matched so far.
func (l Locator) Find(css string) Locator {
	return l.with(Step{CSS: css, Nth: -1})
}

// Nth narrows the last step to its i-th match.
func (l Locator) Nth(i int) Locator {
	return l.modifyLast(func(s *Step) { s.Nth = i })
}

// First is Nth(0).
func (l Locator) First() Locator { return l.Nth(0) }

// HasText keeps only matches of the last step whose text contains text,
// ignoring case.
func (l Locator) HasText(text string) Locator {
	return l.modifyLast(func(s *Step) { s.HasText = text })
}

// Steps returns a copy of the locator steps.
func (l Locator) Steps() []Step {
	out := make([]Step, len(l.steps))
	copy(out, l.steps)
	return out
}

// IsZero reports whether the locator has no steps.
func (l Locator) IsZero() bool { return len(l.steps) == 0 }

// String renders the locator for logs, e.g. `.MuiFormControl-root >> nth=1 >> p`.
func (l Locator) String() string {
	parts := make([]string, 0, len(l.steps))
	for _, s := range l.steps {
		p := s.CSS
		if s.HasText != "" {
			p += fmt.Sprintf(":has-text(%q)", s.HasText)
		}
		if s.Nth >= 0 {
			p += fmt.Sprintf(" >> nth=%d", s.Nth)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " >> ")
}

func (l Locator) with(s Step) Locator {
	steps := make([]Step, len(l.steps), len(l.steps)+1)
	copy(steps, l.steps)
	return Locator{steps: append(steps, s)}
}

func (l Locator) modifyLast(fn func(*Step)) Locator {
	if len(l.steps) == 0 {
		return l
	}
	steps := l.Steps()
	fn(&steps[len(steps)-1])
	return Locator{steps: steps}
}
