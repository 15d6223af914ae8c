package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHex converts "#RRGGBB" or "#RRGGBBAA" into an opaque color. Any alpha
// component is dropped because frames are always opaque.
func ParseHex(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: must be 6 or 8 digits", hex)
	}
	v, err := strconv.ParseUint(s[:6], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	if len(s) == 8 {
		if _, err := strconv.ParseUint(s[6:], 16, 8); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
