// internal/browser/colors_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexToRGB(t *testing.T) {
	tests := map[string]string{
		"#de3730": "rgb(222, 55, 48)",
		"DE3730":  "rgb(222, 55, 48)",
		"#000000": "rgb(0, 0, 0)",
		"#fff":    "#fff",
		"red":     "red",
	}
	for in, want := range tests {
		assert.Equal(t, want, HexToRGB(in), in)
	}
}

func TestResolveColor(t *testing.T) {
	assert.Equal(t, "rgb(222, 55, 48)", ResolveColor("red"))
	assert.Equal(t, "rgb(222, 55, 48)", ResolveColor("Red"))
	assert.Equal(t, "rgb(18, 52, 86)", ResolveColor("#123456"))
	assert.Equal(t, "rgb(1, 2, 3)", ResolveColor("rgb(1, 2, 3)"))
}
