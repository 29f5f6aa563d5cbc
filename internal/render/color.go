package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

var namedColors = map[string]drawing.Color{
	"black":   {R: 0, G: 0, B: 0, A: 255},
	"white":   {R: 255, G: 255, B: 255, A: 255},
	"red":     {R: 255, G: 0, B: 0, A: 255},
	"green":   {R: 0, G: 128, B: 0, A: 255},
	"lime":    {R: 0, G: 255, B: 0, A: 255},
	"blue":    {R: 0, G: 0, B: 255, A: 255},
	"yellow":  {R: 255, G: 255, B: 0, A: 255},
	"orange":  {R: 255, G: 165, B: 0, A: 255},
	"purple":  {R: 128, G: 0, B: 128, A: 255},
	"cyan":    {R: 0, G: 255, B: 255, A: 255},
	"magenta": {R: 255, G: 0, B: 255, A: 255},
	"gray":    {R: 128, G: 128, B: 128, A: 255},
	"grey":    {R: 128, G: 128, B: 128, A: 255},
	"brown":   {R: 165, G: 42, B: 42, A: 255},
	"pink":    {R: 255, G: 192, B: 203, A: 255},
}

// ParseColor understands #rgb, #rrggbb, #rrggbbaa, rgb(r,g,b),
// rgba(r,g,b,a) with a in [0,1], and a few CSS colour names.
func ParseColor(s string) (drawing.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba(") : len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb(") : len(s)-1], false)
	}
	return drawing.Color{}, fmt.Errorf("unsupported colour %q", s)
}

func parseHex(h string) (drawing.Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return drawing.Color{}, fmt.Errorf("unsupported colour %q", "#"+h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("unsupported colour %q: %w", "#"+h, err)
	}
	return drawing.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(args string, alpha bool) (drawing.Color, error) {
	parts := strings.Split(args, ",")
	want := 3
	if alpha {
		want = 4
	}
	if len(parts) != want {
		return drawing.Color{}, fmt.Errorf("expected %d colour components, got %d", want, len(parts))
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return drawing.Color{}, fmt.Errorf("invalid colour component %q", parts[i])
		}
		rgb[i] = uint8(n)
	}
	c := drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
	if alpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return drawing.Color{}, fmt.Errorf("invalid alpha %q", parts[3])
		}
		c.A = uint8(a*255 + 0.5)
	}
	return c, nil
}
