package svgpaint

import (
	"image/color"
	"math"
)

// BlendMode selects how a source color is composited over
// a destination. The zero value is SrcOver, the usual
// "painter" mode.
type BlendMode uint8

const (
	SrcOver BlendMode = iota
	Clear
	Src
	Dst
	DstOver
	SrcIn
	DstIn
	SrcOut
	DstOut
	SrcATop
	DstATop
	Xor
	Plus
	Modulate
	// separable modes
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Multiply
	// non separable modes
	Hue
	Saturation
	ColorMode
	Luminosity
)

var blendNames = [...]string{
	SrcOver:    "normal",
	Clear:      "clear",
	Src:        "src",
	Dst:        "dst",
	DstOver:    "dst-over",
	SrcIn:      "src-in",
	DstIn:      "dst-in",
	SrcOut:     "src-out",
	DstOut:     "dst-out",
	SrcATop:    "src-atop",
	DstATop:    "dst-atop",
	Xor:        "xor",
	Plus:       "plus",
	Modulate:   "modulate",
	Screen:     "screen",
	Overlay:    "overlay",
	Darken:     "darken",
	Lighten:    "lighten",
	ColorDodge: "color-dodge",
	ColorBurn:  "color-burn",
	HardLight:  "hard-light",
	SoftLight:  "soft-light",
	Difference: "difference",
	Exclusion:  "exclusion",
	Multiply:   "multiply",
	Hue:        "hue",
	Saturation: "saturation",
	ColorMode:  "color",
	Luminosity: "luminosity",
}

func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return "<unknown BlendMode>"
}

// ParseBlendMode reads a CSS `mix-blend-mode` or feBlend `mode` keyword.
func ParseBlendMode(s string) (BlendMode, bool) {
	for i, name := range blendNames {
		if name == s {
			return BlendMode(i), true
		}
	}
	return SrcOver, false
}

// premultiplied color with components in [0, 1]
type pmColor [4]float64

func toPM(c color.NRGBA) pmColor {
	a := float64(c.A) / 0xff
	return pmColor{float64(c.R) / 0xff * a, float64(c.G) / 0xff * a, float64(c.B) / 0xff * a, a}
}

func (c pmColor) toNRGBA() color.NRGBA {
	a := clamp01(c[3])
	if a == 0 {
		return color.NRGBA{}
	}
	conv := func(v float64) uint8 { return uint8(math.Round(clamp01(v/a) * 0xff)) }
	return color.NRGBA{conv(c[0]), conv(c[1]), conv(c[2]), uint8(math.Round(a * 0xff))}
}

// Blend composites `src` over `dst` using `mode`.
func Blend(mode BlendMode, src, dst color.NRGBA) color.NRGBA {
	return blendPM(mode, toPM(src), toPM(dst)).toNRGBA()
}

// BlendPremul is the premultiplied version of Blend, used by
// backends on whole images
func BlendPremul(mode BlendMode, src, dst color.RGBA) color.RGBA {
	s := pmColor{float64(src.R) / 0xff, float64(src.G) / 0xff, float64(src.B) / 0xff, float64(src.A) / 0xff}
	d := pmColor{float64(dst.R) / 0xff, float64(dst.G) / 0xff, float64(dst.B) / 0xff, float64(dst.A) / 0xff}
	o := blendPM(mode, s, d)
	conv := func(v float64) uint8 { return uint8(math.Round(clamp01(v) * 0xff)) }
	out := color.RGBA{conv(o[0]), conv(o[1]), conv(o[2]), conv(o[3])}
	// keep the premultiplied invariant under rounding
	out.R, out.G, out.B = min(out.R, out.A), min(out.G, out.A), min(out.B, out.A)
	return out
}

func blendPM(mode BlendMode, s, d pmColor) pmColor {
	sa, da := s[3], d[3]
	// Porter-Duff operators, given as the factors of s and d
	porterDuff := func(fs, fd float64) pmColor {
		var o pmColor
		for i := range o {
			o[i] = s[i]*fs + d[i]*fd
		}
		return o
	}
	switch mode {
	case Clear:
		return pmColor{}
	case Src:
		return s
	case Dst:
		return d
	case SrcOver:
		return porterDuff(1, 1-sa)
	case DstOver:
		return porterDuff(1-da, 1)
	case SrcIn:
		return porterDuff(da, 0)
	case DstIn:
		return porterDuff(0, sa)
	case SrcOut:
		return porterDuff(1-da, 0)
	case DstOut:
		return porterDuff(0, 1-sa)
	case SrcATop:
		return porterDuff(da, 1-sa)
	case DstATop:
		return porterDuff(1-da, sa)
	case Xor:
		return porterDuff(1-da, 1-sa)
	case Plus:
		return pmColor{math.Min(s[0]+d[0], 1), math.Min(s[1]+d[1], 1), math.Min(s[2]+d[2], 1), math.Min(sa+da, 1)}
	case Modulate:
		return pmColor{s[0] * d[0], s[1] * d[1], s[2] * d[2], sa * da}
	}

	// general formula for the blending modes:
	// co = cs * (1 - ab) + cb * (1 - as) + as * ab * B(Cb, Cs)
	var cs, cb [3]float64 // non premultiplied
	for i := range cs {
		if sa != 0 {
			cs[i] = s[i] / sa
		}
		if da != 0 {
			cb[i] = d[i] / da
		}
	}
	var mixed [3]float64
	switch mode {
	case Hue:
		mixed = setLum(setSat(cs, sat(cb)), lum(cb))
	case Saturation:
		mixed = setLum(setSat(cb, sat(cs)), lum(cb))
	case ColorMode:
		mixed = setLum(cs, lum(cb))
	case Luminosity:
		mixed = setLum(cb, lum(cs))
	default:
		for i := range mixed {
			mixed[i] = separable(mode, cb[i], cs[i])
		}
	}
	var o pmColor
	for i := 0; i < 3; i++ {
		o[i] = s[i]*(1-da) + d[i]*(1-sa) + sa*da*mixed[i]
	}
	o[3] = sa + da - sa*da
	return o
}

func separable(mode BlendMode, cb, cs float64) float64 {
	switch mode {
	case Multiply:
		return cb * cs
	case Screen:
		return cb + cs - cb*cs
	case Overlay:
		return separable(HardLight, cs, cb)
	case Darken:
		return math.Min(cb, cs)
	case Lighten:
		return math.Max(cb, cs)
	case ColorDodge:
		if cb == 0 {
			return 0
		} else if cs == 1 {
			return 1
		}
		return math.Min(1, cb/(1-cs))
	case ColorBurn:
		if cb == 1 {
			return 1
		} else if cs == 0 {
			return 0
		}
		return 1 - math.Min(1, (1-cb)/cs)
	case HardLight:
		if cs <= 0.5 {
			return cb * 2 * cs
		}
		return separable(Screen, cb, 2*cs-1)
	case SoftLight:
		if cs <= 0.5 {
			return cb - (1-2*cs)*cb*(1-cb)
		}
		var d float64
		if cb <= 0.25 {
			d = ((16*cb-12)*cb + 4) * cb
		} else {
			d = math.Sqrt(cb)
		}
		return cb + (2*cs-1)*(d-cb)
	case Difference:
		return math.Abs(cb - cs)
	case Exclusion:
		return cb + cs - 2*cb*cs
	default:
		return cs
	}
}

func lum(c [3]float64) float64 { return 0.3*c[0] + 0.59*c[1] + 0.11*c[2] }

func clipColor(c [3]float64) [3]float64 {
	l := lum(c)
	n := math.Min(c[0], math.Min(c[1], c[2]))
	x := math.Max(c[0], math.Max(c[1], c[2]))
	for i := range c {
		if n < 0 {
			c[i] = l + (c[i]-l)*l/(l-n)
		}
		if x > 1 {
			c[i] = l + (c[i]-l)*(1-l)/(x-l)
		}
	}
	return c
}

func setLum(c [3]float64, l float64) [3]float64 {
	d := l - lum(c)
	return clipColor([3]float64{c[0] + d, c[1] + d, c[2] + d})
}

func sat(c [3]float64) float64 {
	return math.Max(c[0], math.Max(c[1], c[2])) - math.Min(c[0], math.Min(c[1], c[2]))
}

func setSat(c [3]float64, s float64) [3]float64 {
	// indices of the max, mid and min components
	iMax, iMid, iMin := 0, 1, 2
	if c[iMax] < c[iMid] {
		iMax, iMid = iMid, iMax
	}
	if c[iMid] < c[iMin] {
		iMid, iMin = iMin, iMid
	}
	if c[iMax] < c[iMid] {
		iMax, iMid = iMid, iMax
	}
	var out [3]float64
	if c[iMax] > c[iMin] {
		out[iMid] = (c[iMid] - c[iMin]) * s / (c[iMax] - c[iMin])
		out[iMax] = s
	}
	return out
}
