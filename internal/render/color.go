package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// x11Overrides holds names whose X11 rgb.txt value differs from the SVG
// value in colornames.
var x11Overrides = map[string]color.RGBA{
	"green":  {0x00, 0xff, 0x00, 0xff},
	"grey":   {0xbe, 0xbe, 0xbe, 0xff},
	"gray":   {0xbe, 0xbe, 0xbe, 0xff},
	"maroon": {0xb0, 0x30, 0x60, 0xff},
	"purple": {0xa0, 0x20, 0xf0, 0xff},
}

// ParseColor resolves "#rgb", "#rrggbb" or a color name. Names follow
// X11 where it disagrees with SVG, so "green" is #00ff00.
func ParseColor(name string) (color.RGBA, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	key := strings.ReplaceAll(s, " ", "")
	if c, ok := x11Overrides[key]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[key]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", name)
}

func parseHex(hex string) (color.RGBA, error) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", "#"+hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", "#"+hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
