package bcf

import (
	"fmt"
	"strconv"
	"strings"
)

// HexColor formats an RGB color the way BCF coloring groups key it: six
// upper-case hex digits without a leading '#'
func HexColor(r, g, b uint8) string {
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}

// NormalizeColor parses "#rrggbb", "rrggbb" or "aarrggbb" and returns the
// canonical HexColor form. The alpha channel is dropped.
func NormalizeColor(s string) (string, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
	case 8:
		hex = hex[2:]
	default:
		return "", fmt.Errorf("invalid color %q: expected 6 or 8 hex digits", s)
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", s, err)
	}
	return HexColor(uint8(value>>16), uint8(value>>8), uint8(value)), nil
}
