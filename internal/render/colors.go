package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// parseHexColor parses "#RRGGBB" into an opaque NRGBA color.
func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}, nil
}

// parseHexColorOr returns the fallback when the configured value does not
// parse.
func parseHexColorOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := parseHexColor(s)
	if err != nil {
		return fallback
	}
	return c
}
