package svgpaint

import (
	"sort"

	"github.com/benoitkugler/svgtree/svgpath"
)

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// ParseSpreadMethod reads a `spreadMethod` value.
func ParseSpreadMethod(v string) (SpreadMethod, bool) {
	switch v {
	case "pad":
		return PadSpread, true
	case "reflect":
		return ReflectSpread, true
	case "repeat":
		return RepeatSpread, true
	}
	return PadSpread, false
}

// GradientStop represents a stop in the SVG 2.0 gradient specification.
// The stop opacity is stored in Color.A.
type GradientStop struct {
	Offset float64
	Color  Color
}

// LinearGradient is a resolved linear gradient:
// coordinates are expressed in gradient space, which
// is mapped to the user space of the painted element by Transform.
type LinearGradient struct {
	X1, Y1, X2, Y2 float64
	Stops          []GradientStop
	Spread         SpreadMethod
	Transform      svgpath.Matrix2D
}

// RadialGradient is the radial counterpart of LinearGradient.
// (FX, FY, FR) is the focal circle.
type RadialGradient struct {
	CX, CY, R  float64
	FX, FY, FR float64
	Stops      []GradientStop
	Spread     SpreadMethod
	Transform  svgpath.Matrix2D
}

// NormalizeStops clamps the offsets to [0, 1], makes them
// monotonic as required by SVG, and returns a sorted copy.
func NormalizeStops(stops []GradientStop) []GradientStop {
	out := make([]GradientStop, len(stops))
	last := 0.
	for i, s := range stops {
		s.Offset = clamp01(s.Offset)
		if s.Offset < last {
			s.Offset = last
		}
		last = s.Offset
		out[i] = s
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// SingleColor returns the color a degenerate gradient must be painted
// with (less than two stops, or zero length vector), and true if
// the gradient is degenerate.
func (g *LinearGradient) SingleColor() (Color, bool) {
	if len(g.Stops) == 0 {
		return Transparent, true
	}
	if len(g.Stops) == 1 || (g.X1 == g.X2 && g.Y1 == g.Y2) {
		return g.Stops[len(g.Stops)-1].Color, true
	}
	return Color{}, false
}

// SingleColor is the same as for linear gradients, the zero
// radius being the degenerate case.
func (g *RadialGradient) SingleColor() (Color, bool) {
	if len(g.Stops) == 0 {
		return Transparent, true
	}
	if len(g.Stops) == 1 || g.R <= 0 {
		return g.Stops[len(g.Stops)-1].Color, true
	}
	return Color{}, false
}
