// internal/browser/scripts.go
package browser

import (
	"fmt"

	json "github.com/json-iterator/go"
)

// resolveJS evaluates a locator's steps in the page and returns the matched
// elements. Matches are de-duplicated and kept in document order per root.
const resolveJS = `(function(steps) {
	let nodes = [document];
	for (const s of steps) {
		const seen = new Set();
		let next = [];
		for (const root of nodes) {
			for (const el of root.querySelectorAll(s.css)) {
				if (!seen.has(el)) { seen.add(el); next.push(el); }
			}
		}
		if (s.text) {
			const needle = s.text.toLowerCase();
			next = next.filter(el => (el.textContent || '').toLowerCase().includes(needle));
		}
		if (s.nth >= 0) {
			next = s.nth < next.length ? [next[s.nth]] : [];
		}
		nodes = next;
	}
	return nodes;
})`

// visibleJS mirrors the visibility rule used for waits: a non-empty box that
// is not hidden by style.
const visibleJS = `function isVisible(el) {
	const rect = el.getBoundingClientRect();
	const style = window.getComputedStyle(el);
	return rect.width > 0 && rect.height > 0 && style.visibility !== 'hidden' && style.display !== 'none';
}`

// geometryJS returns the viewport center of the first visible match after
// scrolling it into view.
const geometryJS = `{
	const el = nodes.find(isVisible);
	if (!el) return {found: nodes.length > 0, visible: false};
	el.scrollIntoView({block: 'center', inline: 'center'});
	const r = el.getBoundingClientRect();
	return {found: true, visible: true, x: r.left + r.width / 2, y: r.top + r.height / 2};
}`

// idleJS reports whether the page finished loading, the footer (when the page
// has one) is visible and no loader or spinner is attached.
const idleJS = `(function() {
	` + visibleJS + `
	if (document.readyState !== 'complete') return false;
	const footer = document.querySelector('footer');
	if (footer && !isVisible(footer)) return false;
	return document.querySelector('.loader, .spinner') === null;
})()`

// locatorScript wraps body so it runs with `nodes` bound to the matches of loc.
func locatorScript(loc Locator, body string) (string, error) {
	steps, err := json.Marshal(loc.Steps())
	if err != nil {
		return "", fmt.Errorf("failed to encode locator %s: %w", loc, err)
	}
	return fmt.Sprintf(`(function() {
	%s
	const nodes = %s(%s);
	%s
})()`, visibleJS, resolveJS, steps, body), nil
}

// jsString encodes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
