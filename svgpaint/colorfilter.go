package svgpaint

import (
	"image/color"
	"math"
)

// ColorFilter transforms each color independently.
// The concrete types are *ColorMatrix, *TableFilter, *BlendFilter
// and LumaColor; use the New... factories to build them.
type ColorFilter interface {
	isColorFilter()
}

// ColorMatrix is a 4x5 row-major matrix applied on non premultiplied
// (R, G, B, A, 1) vectors with components in [0, 1].
type ColorMatrix [20]float32

// TableFilter maps each channel through a lookup table.
// A nil table leaves the channel unchanged.
type TableFilter struct {
	A, R, G, B *[256]byte
}

// BlendFilter composites a constant color over the input color.
type BlendFilter struct {
	Color Color
	Mode  BlendMode
}

// LumaColor outputs the luminance of the (premultiplied) input color
// in the alpha channel, with black color channels.
type LumaColor struct{}

func (*ColorMatrix) isColorFilter() {}
func (*TableFilter) isColorFilter() {}
func (*BlendFilter) isColorFilter() {}
func (LumaColor) isColorFilter()    {}

// NewColorMatrix returns a matrix filter; the matrix is copied.
func NewColorMatrix(matrix [20]float32) ColorFilter {
	m := ColorMatrix(matrix)
	return &m
}

// NewTable returns a table filter, copying the given tables.
func NewTable(tableA, tableR, tableG, tableB *[256]byte) ColorFilter {
	cp := func(t *[256]byte) *[256]byte {
		if t == nil {
			return nil
		}
		out := *t
		return &out
	}
	return &TableFilter{A: cp(tableA), R: cp(tableR), G: cp(tableG), B: cp(tableB)}
}

// NewBlendMode returns a filter blending `c` with `mode`.
func NewBlendMode(c Color, mode BlendMode) ColorFilter {
	return &BlendFilter{Color: c, Mode: mode}
}

// NewLumaColor returns the luminance-to-alpha filter used by masks.
func NewLumaColor() ColorFilter { return LumaColor{} }

// IdentityMatrix does not modify colors.
var IdentityMatrix = ColorMatrix{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// SaturateMatrix returns the feColorMatrix `saturate` matrix.
func SaturateMatrix(s float64) ColorMatrix {
	f := func(v float64) float32 { return float32(v) }
	return ColorMatrix{
		f(0.213 + 0.787*s), f(0.715 - 0.715*s), f(0.072 - 0.072*s), 0, 0,
		f(0.213 - 0.213*s), f(0.715 + 0.285*s), f(0.072 - 0.072*s), 0, 0,
		f(0.213 - 0.213*s), f(0.715 - 0.715*s), f(0.072 + 0.928*s), 0, 0,
		0, 0, 0, 1, 0,
	}
}

// HueRotateMatrix returns the feColorMatrix `hueRotate` matrix,
// for an angle in degrees.
func HueRotateMatrix(degrees float64) ColorMatrix {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	f := func(v float64) float32 { return float32(v) }
	return ColorMatrix{
		f(0.213 + cos*0.787 - sin*0.213), f(0.715 - cos*0.715 - sin*0.715), f(0.072 - cos*0.072 + sin*0.928), 0, 0,
		f(0.213 - cos*0.213 + sin*0.143), f(0.715 + cos*0.285 + sin*0.140), f(0.072 - cos*0.072 - sin*0.283), 0, 0,
		f(0.213 - cos*0.213 - sin*0.787), f(0.715 - cos*0.715 + sin*0.715), f(0.072 + cos*0.928 + sin*0.072), 0, 0,
		0, 0, 0, 1, 0,
	}
}

// LuminanceToAlphaMatrix is the feColorMatrix `luminanceToAlpha` matrix.
var LuminanceToAlphaMatrix = ColorMatrix{
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
	0.2125, 0.7154, 0.0721, 0, 0,
}

// SourceAlphaMatrix keeps only the alpha channel (SourceAlpha input).
var SourceAlphaMatrix = ColorMatrix{
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
	0, 0, 0, 1, 0,
}

func to8(v float64) uint8 { return uint8(math.Round(clamp01(v) * 0xff)) }

// Apply evaluates the filter `f` on `c`.
// A nil filter returns `c` unchanged.
func Apply(f ColorFilter, c color.NRGBA) color.NRGBA {
	switch f := f.(type) {
	case *ColorMatrix:
		in := [5]float64{float64(c.R) / 0xff, float64(c.G) / 0xff, float64(c.B) / 0xff, float64(c.A) / 0xff, 1}
		var out [4]float64
		for row := range out {
			for col, v := range in {
				out[row] += float64(f[5*row+col]) * v
			}
		}
		return color.NRGBA{to8(out[0]), to8(out[1]), to8(out[2]), to8(out[3])}
	case *TableFilter:
		if f.R != nil {
			c.R = f.R[c.R]
		}
		if f.G != nil {
			c.G = f.G[c.G]
		}
		if f.B != nil {
			c.B = f.B[c.B]
		}
		if f.A != nil {
			c.A = f.A[c.A]
		}
		return c
	case *BlendFilter:
		return Blend(f.Mode, f.Color.NRGBA(), c)
	case LumaColor:
		pm := toPM(c)
		luma := 0.2126*pm[0] + 0.7152*pm[1] + 0.0722*pm[2]
		return color.NRGBA{A: to8(luma)}
	default:
		return c
	}
}
