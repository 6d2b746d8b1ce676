package scene

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errColorFormat = errors.New("unsupported color format")

// PlainColor is a uniform paint.
type PlainColor color.NRGBA

// NewPlainColor returns the non premultiplied color (r, g, b, a).
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{R: r, G: g, B: b, A: a}
}

// RGBA implements color.Color.
func (c PlainColor) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

func (c PlainColor) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor parses a CSS color: hexadecimal (#rgb, #rgba, #rrggbb,
// #rrggbbaa), rgb(), rgba(), hsl(), hsla(), a named color or "transparent".
func ParseColor(s string) (PlainColor, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "transparent":
		return PlainColor{}, nil
	case strings.HasPrefix(v, "#"):
		c, err := parseHexColor(v[1:])
		if err != nil {
			return c, fmt.Errorf("color %q: %w", s, err)
		}
		return c, nil
	case strings.HasPrefix(v, "rgb"):
		args, err := colorArgs(v, "rgb")
		if err != nil {
			return PlainColor{}, fmt.Errorf("color %q: %w", s, err)
		}
		c, err := rgbFromArgs(args)
		if err != nil {
			return c, fmt.Errorf("color %q: %w", s, err)
		}
		return c, nil
	case strings.HasPrefix(v, "hsl"):
		args, err := colorArgs(v, "hsl")
		if err != nil {
			return PlainColor{}, fmt.Errorf("color %q: %w", s, err)
		}
		c, err := hslFromArgs(args)
		if err != nil {
			return c, fmt.Errorf("color %q: %w", s, err)
		}
		return c, nil
	}
	if named, ok := colornames.Map[v]; ok {
		return PlainColor{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}
	return PlainColor{}, fmt.Errorf("color %q: %w", s, errColorFormat)
}

func parseHexColor(h string) (PlainColor, error) {
	// expand the short forms
	switch len(h) {
	case 3, 4:
		long := make([]byte, 0, 2*len(h))
		for i := 0; i < len(h); i++ {
			long = append(long, h[i], h[i])
		}
		h = string(long)
	case 6, 8:
	default:
		return PlainColor{}, errColorFormat
	}
	if len(h) == 6 {
		h += "ff"
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return PlainColor{}, errColorFormat
	}
	return PlainColor{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// colorArgs splits "fn(a, b, c)", "fna(a, b, c, d)" or "fn(a b c / d)".
func colorArgs(v, fn string) ([]string, error) {
	rest := strings.TrimPrefix(v, fn)
	rest = strings.TrimPrefix(rest, "a")
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return nil, errColorFormat
	}
	rest = rest[1 : len(rest)-1]
	args := strings.FieldsFunc(rest, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
	if len(args) != 3 && len(args) != 4 {
		return nil, errColorFormat
	}
	return args, nil
}

// parseComponent reads a number, or a percentage of `max`.
func parseComponent(s string, max float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		return f / 100 * max, err
	}
	return strconv.ParseFloat(s, 64)
}

func clamp(f, min, max float64) float64 {
	return math.Max(min, math.Min(max, f))
}

func parseAlpha(args []string) (uint8, error) {
	if len(args) < 4 {
		return 0xff, nil
	}
	a, err := parseComponent(args[3], 1)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(clamp(a, 0, 1) * 255)), nil
}

func rgbFromArgs(args []string) (PlainColor, error) {
	var c [3]uint8
	for i := range c {
		f, err := parseComponent(args[i], 255)
		if err != nil {
			return PlainColor{}, err
		}
		c[i] = uint8(math.Round(clamp(f, 0, 255)))
	}
	a, err := parseAlpha(args)
	if err != nil {
		return PlainColor{}, err
	}
	return PlainColor{R: c[0], G: c[1], B: c[2], A: a}, nil
}

func hslFromArgs(args []string) (PlainColor, error) {
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return PlainColor{}, err
	}
	s, err := parseComponent(args[1], 1)
	if err != nil {
		return PlainColor{}, err
	}
	l, err := parseComponent(args[2], 1)
	if err != nil {
		return PlainColor{}, err
	}
	a, err := parseAlpha(args)
	if err != nil {
		return PlainColor{}, err
	}
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	s, l = clamp(s, 0, 1), clamp(l, 0, 1)

	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		q := l * (1 + s)
		if l >= 0.5 {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1./3)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1./3)
	}
	return PlainColor{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: a,
	}, nil
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1./6:
		return p + (q-p)*6*t
	case t < 1./2:
		return q
	case t < 2./3:
		return p + (q-p)*(2./3-t)*6
	}
	return p
}
