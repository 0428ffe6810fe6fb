package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB holds the three channels of a colour.
type RGB struct {
	R, G, B uint8
}

// Hex renders the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Average returns the mean channel intensity.
func (c RGB) Average() float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// ParseRGB decomposes a colour value into channels. It accepts a packed hex
// string ("#rrggbb" or "rrggbb"), "rgb(r,g,b)" and numeric sequences of at least three
// components. Any other shape reports false.
func ParseRGB(v any) (RGB, bool) {
	switch c := v.(type) {
	case string:
		return parseHex(c)
	case RGB:
		return c, true
	case []int:
		if len(c) < 3 {
			return RGB{}, false
		}
		return RGB{clampChannel(float64(c[0])), clampChannel(float64(c[1])), clampChannel(float64(c[2]))}, true
	case []float64:
		if len(c) < 3 {
			return RGB{}, false
		}
		return RGB{clampChannel(c[0]), clampChannel(c[1]), clampChannel(c[2])}, true
	case []any:
		if len(c) < 3 {
			return RGB{}, false
		}
		var ch [3]float64
		for i := 0; i < 3; i++ {
			f, ok := toFloat(c[i])
			if !ok {
				return RGB{}, false
			}
			ch[i] = f
		}
		return RGB{clampChannel(ch[0]), clampChannel(ch[1]), clampChannel(ch[2])}, true
	default:
		return RGB{}, false
	}
}

// NormalizeColor turns a stored colour value into the string form kept on items.
// Numeric sequences become hex; empty or unusable values fall back to DefaultColor.
func NormalizeColor(v any) string {
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return DefaultColor
	}
	if c, ok := ParseRGB(v); ok {
		return c.Hex()
	}
	return DefaultColor
}

func parseHex(s string) (RGB, bool) {
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(strings.ToLower(s), "rgb("); ok {
		return parseFunctional(strings.TrimSuffix(inner, ")"))
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) < 6 {
		return RGB{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGB{}, false
		}
		ch[i] = uint8(n)
	}
	return RGB{ch[0], ch[1], ch[2]}, true
}

// parseFunctional reads the "r,g,b" body of an rgb() colour.
func parseFunctional(body string) (RGB, bool) {
	parts := strings.Split(body, ",")
	if len(parts) < 3 {
		return RGB{}, false
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return RGB{}, false
		}
		ch[i] = f
	}
	return RGB{clampChannel(ch[0]), clampChannel(ch[1]), clampChannel(ch[2])}, true
}

func clampChannel(f float64) uint8 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
