// Package svgpaint defines the value types describing how
// geometry is painted: colors, blend modes, paint descriptors,
// gradients and patterns, color and image filters.
//
// All the types are pure data, built by constructors and not
// mutated afterwards, so that they may be shared between nodes and backends.
package svgpaint

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errParamMismatch = errors.New("svg: param mismatch")

// Color is a non alpha-premultiplied 8-bit color.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 0xff}
	White       = Color{0xff, 0xff, 0xff, 0xff}
	Transparent = Color{}
)

// RGBA implements color.Color
func (c Color) RGBA() (r, g, b, a uint32) { return c.NRGBA().RGBA() }

// NRGBA returns the standard library equivalent of c.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA(c) }

// IsOpaque returns true if the alpha channel is maximal.
func (c Color) IsOpaque() bool { return c.A == 0xff }

// WithOpacity returns c with its alpha multiplied by `opacity`,
// clamped to [0, 1].
func (c Color) WithOpacity(opacity float64) Color {
	opacity = clamp01(opacity)
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}

// Opaque returns c with a maximal alpha channel.
func (c Color) Opaque() Color {
	c.A = 0xff
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// FromColor converts any color.Color.
func FromColor(c color.Color) Color {
	return Color(color.NRGBAModel.Convert(c).(color.NRGBA))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	} else if v > 1 {
		return 1
	}
	return v
}

// parseHex reads the #RGB, #RGBA, #RRGGBB and #RRGGBBAA forms
func parseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4:
		// duplicate characters in case of a short hex number
		long := make([]byte, 0, 8)
		for i := 0; i < len(s); i++ {
			long = append(long, s[i], s[i])
		}
		s = string(long)
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	out := Color{A: 0xff}
	for i, c := range []*uint8{&out.R, &out.G, &out.B, &out.A} {
		if 2*i >= len(s) {
			break
		}
		t, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, err
		}
		*c = uint8(t)
	}
	return out, nil
}

// parseColorValue reads a component given as an integer
// in [0, 255] or as a percentage
func parseColorValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		n, err := strconv.ParseFloat(strings.TrimSpace(v[:len(v)-1]), 64)
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(clamp01(n/100) * 0xFF)), nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(math.Max(0, math.Min(n, 255)))), nil
}

// parseAlphaValue reads an alpha component in [0, 1] or a percentage
func parseAlphaValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	d := 1.
	if strings.HasSuffix(v, "%") {
		v, d = v[:len(v)-1], 100
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(clamp01(n/d) * 0xFF)), nil
}

// parseFunctional reads rgb(...) and rgba(...)
func parseFunctional(args string) (Color, error) {
	vals := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(vals) != 3 && len(vals) != 4 {
		return Color{}, errParamMismatch
	}
	out := Color{A: 0xff}
	var err error
	for i, c := range []*uint8{&out.R, &out.G, &out.B} {
		*c, err = parseColorValue(vals[i])
		if err != nil {
			return Color{}, err
		}
	}
	if len(vals) == 4 {
		out.A, err = parseAlphaValue(vals[3])
		if err != nil {
			return Color{}, err
		}
	}
	return out, nil
}

// ParseColor parses an SVG color string in all forms
// including all SVG1.1 names, obtained from the colornames package.
// Keywords which are not colors (none, currentColor, inherit) are
// rejected, and must be handled by the caller.
func ParseColor(colorStr string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	if v == "" {
		return Color{}, errors.New("empty color")
	}
	if v == "transparent" {
		return Transparent, nil
	}
	if cn, ok := colornames.Map[v]; ok {
		return FromColor(cn), nil
	}
	if v[0] == '#' {
		return parseHex(v)
	}
	for _, prefix := range [...]string{"rgba(", "rgb("} {
		if strings.HasPrefix(v, prefix) && strings.HasSuffix(v, ")") {
			return parseFunctional(v[len(prefix) : len(v)-1])
		}
	}
	return Color{}, fmt.Errorf("invalid color %q", colorStr)
}
