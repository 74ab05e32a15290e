// internal/browser/colors.go
package browser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ColorMap maps the color names used in checks to the computed-style value the
// dashboard renders them with.
var ColorMap = map[string]string{
	"red":    "rgb(222, 55, 48)",
	"green":  "rgb(70, 211, 103)",
	"blue":   "rgb(0, 0, 255)",
	"black":  "rgb(0, 0, 0)",
	"white":  "rgb(255, 255, 255)",
	"gray":   "rgb(128, 128, 128)",
	"yellow": "rgb(255, 255, 0)",
	"purple": "rgb(232, 0, 231)",
}

var hexColor = regexp.MustCompile(`(?i)^#?([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})$`)

// HexToRGB converts "#rrggbb" to "rgb(r, g, b)". Input that is not a six digit
// hex color is returned unchanged.
func HexToRGB(hex string) string {
	m := hexColor.FindStringSubmatch(hex)
	if m == nil {
		return hex
	}
	var c [3]uint64
	for i := range c {
		c[i], _ = strconv.ParseUint(m[i+1], 16, 8)
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", c[0], c[1], c[2])
}

// ResolveColor turns a color name, hex value or rgb() string into the
// rgb() form returned by getComputedStyle.
func ResolveColor(color string) string {
	expected, ok := ColorMap[strings.ToLower(color)]
	if !ok {
		expected = color
	}
	if strings.HasPrefix(expected, "#") {
		expected = HexToRGB(expected)
	}
	return expected
}
