package svgraster

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svgtree/svgdraw"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// maxTileSize bounds the resolution of rendered pattern tiles
const maxTileSize = 2048

// source returns the color or the rasterx.ColorFunc painting
// the device pixels with `p`.
func (c *Canvas) source(p *svgpaint.Paint, ctm svgpath.Matrix2D) interface{} {
	switch s := p.Shader.(type) {
	case *svgpaint.LinearGradient:
		g := toRasterxGradient(s.Stops, s.Spread, ctm.Mult(s.Transform))
		g.Points = [5]float64{s.X1, s.Y1, s.X2, s.Y2}
		return g.GetColorFunction(p.Alpha())
	case *svgpaint.RadialGradient:
		g := toRasterxGradient(s.Stops, s.Spread, ctm.Mult(s.Transform))
		g.Points = [5]float64{s.CX, s.CY, s.FX, s.FY, s.R} // in rasterx fr is ignored
		g.IsRadial = true
		return g.GetColorFunction(p.Alpha())
	case *svgpaint.Pattern:
		return patternColor(s, ctm, p.Alpha())
	default:
		return p.Color.NRGBA()
	}
}

// toRasterxGradient expresses the gradient in bounding box units
// on the unit square, so that its matrix maps gradient space to the device.
func toRasterxGradient(stops []svgpaint.GradientStop, spread svgpaint.SpreadMethod, m svgpath.Matrix2D) rasterx.Gradient {
	out := make([]rasterx.GradStop, len(stops))
	for i, s := range stops {
		out[i] = rasterx.GradStop{
			StopColor: s.Color.Opaque().NRGBA(),
			Offset:    s.Offset,
			Opacity:   float64(s.Color.A) / 0xff,
		}
	}
	g := rasterx.Gradient{
		Stops:  out,
		Matrix: rasterx.Matrix2D(m),
		Spread: rasterx.SpreadMethod(spread),
		Units:  rasterx.ObjectBoundingBox,
	}
	g.Bounds.W, g.Bounds.H = 1, 1
	return g
}

// patternColor renders one tile of the pattern at device resolution
// and returns a function sampling it periodically.
func patternColor(pat *svgpaint.Pattern, ctm svgpath.Matrix2D, opacity float64) interface{} {
	pic, ok := pat.Content.(*svgdraw.Picture)
	if !ok || pat.Tile.IsEmpty() {
		return color.Transparent
	}
	m := ctm.Mult(pat.Transform)
	scale := m.ScaleFactor()
	if scale == 0 {
		return color.Transparent
	}
	size := func(v float64) int {
		return max(1, min(maxTileSize, int(math.Ceil(v*scale))))
	}
	tw, th := size(pat.Tile.W), size(pat.Tile.H)
	sx, sy := float64(tw)/pat.Tile.W, float64(th)/pat.Tile.H

	tile := image.NewRGBA(image.Rect(0, 0, tw, th))
	tc := NewCanvas(tile)
	tc.Concat(svgpath.Identity.Scale(sx, sy))
	tc.ClipRect(pic.CullRect(), true)
	pic.Play(tc)

	inv := m.Invert()
	tile0 := pat.Tile
	return rasterx.ColorFunc(func(x, y int) color.Color {
		px, py := inv.Transform(float64(x)+0.5, float64(y)+0.5)
		u := math.Mod(px-tile0.X, tile0.W)
		if u < 0 {
			u += tile0.W
		}
		v := math.Mod(py-tile0.Y, tile0.H)
		if v < 0 {
			v += tile0.H
		}
		i, j := min(int(u*sx), tw-1), min(int(v*sy), th-1)
		col := tile.RGBAAt(i, j)
		if opacity < 1 {
			col = scaleRGBA(col, opacity)
		}
		return col
	})
}
