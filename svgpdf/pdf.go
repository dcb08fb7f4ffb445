// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
//
// Transforms, clips, fills, strokes, gradients and patterns are
// written as vector PDF operators. PDF transparency groups are not
// available through gofpdf: layer opacity is distributed on the
// drawing operations of the layer, and masks and filter effects are
// ignored (the content is drawn without them).
package svgpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgdraw"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// assert interface conformance
var (
	_ svgdraw.Backend = Backend{}
	_ svgdraw.Canvas  = (*Canvas)(nil)
)

// maxPatternCells bounds the number of tiles written for one pattern fill
const maxPatternCells = 4096

// Backend allocates the natives used by a PDF Canvas.
type Backend struct{}

type pathNative struct {
	path     svgpath.Path
	rule     svgpath.FillRule
	released bool
}

func (n *pathNative) Release() { n.released, n.path = true, nil }

type paintNative struct {
	paint    *svgpaint.Paint
	released bool
}

func (n *paintNative) Release() { n.released, n.paint = true, nil }

type imageNative struct {
	img      image.Image
	name     string // registered in the document on first use
	released bool
}

func (n *imageNative) Release() { n.released, n.img = true, nil }

func (Backend) NewPath(p svgpath.Path, rule svgpath.FillRule) (svgdraw.Native, error) {
	return &pathNative{path: p, rule: rule}, nil
}

func (Backend) NewPaint(p *svgpaint.Paint) (svgdraw.Native, error) {
	if p == nil {
		return nil, fmt.Errorf("svgpdf: nil paint")
	}
	return &paintNative{paint: p}, nil
}

func (Backend) NewImage(img image.Image) (svgdraw.Native, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("svgpdf: empty image")
	}
	return &imageNative{img: img}, nil
}

type state struct {
	alpha float64 // opacity of the enclosing layers
	blend string
	// content of masks is not drawn
	hidden bool
}

// Canvas writes the drawing operations on the current page of a
// gofpdf document, using its units, with the y axis pointing down.
// Close must be called before the document is written.
type Canvas struct {
	pdf    *gofpdf.Fpdf
	states []state
	images int
}

// NewCanvas returns a canvas drawing on the current page of `pdf`.
func NewCanvas(pdf *gofpdf.Fpdf) *Canvas {
	pdf.TransformBegin()
	return &Canvas{pdf: pdf, states: []state{{alpha: 1, blend: "Normal"}}}
}

// Close ends the graphic contexts opened by the canvas.
func (c *Canvas) Close() {
	for range c.states {
		c.pdf.TransformEnd()
	}
	c.states = nil
}

func (c *Canvas) top() *state { return &c.states[len(c.states)-1] }

func (c *Canvas) Save() {
	c.pdf.TransformBegin()
	c.states = append(c.states, *c.top())
}

var blendModes = map[svgpaint.BlendMode]string{
	svgpaint.SrcOver: "Normal", svgpaint.Multiply: "Multiply", svgpaint.Screen: "Screen",
	svgpaint.Overlay: "Overlay", svgpaint.Darken: "Darken", svgpaint.Lighten: "Lighten",
	svgpaint.ColorDodge: "ColorDodge", svgpaint.ColorBurn: "ColorBurn", svgpaint.HardLight: "HardLight",
	svgpaint.SoftLight: "SoftLight", svgpaint.Difference: "Difference", svgpaint.Exclusion: "Exclusion",
	svgpaint.Hue: "Hue", svgpaint.Saturation: "Saturation", svgpaint.ColorMode: "Color",
	svgpaint.Luminosity: "Luminosity",
}

func (c *Canvas) SaveLayer(paint svgdraw.Native) {
	c.Save()
	pn, ok := paint.(*paintNative)
	if !ok || pn.released {
		return
	}
	p, st := pn.paint, c.top()
	switch {
	case p.ColorFilter != nil: // mask
		logx.L().Debug("svgpdf: masks are not supported")
		st.hidden = true
		return
	case p.ImageFilter != nil:
		logx.L().Debug("svgpdf: filter effects are not supported")
	}
	st.alpha *= p.Alpha()
	if name, ok := blendModes[p.BlendMode]; ok {
		st.blend = name
	} else {
		logx.L().Debug("svgpdf: unsupported blend mode", "mode", p.BlendMode.String())
	}
}

func (c *Canvas) Restore() {
	if len(c.states) <= 1 {
		logx.L().Debug("svgpdf: unbalanced Restore")
		return
	}
	c.states = c.states[:len(c.states)-1]
	c.pdf.TransformEnd()
}

// toPDF expresses `m`, acting on y-down page units, in
// the PDF user space (points, y up).
func (c *Canvas) toPDF(m svgpath.Matrix2D) gofpdf.TransformMatrix {
	k := c.pdf.GetConversionRatio()
	_, h := c.pdf.GetPageSize()
	flip := svgpath.Matrix2D{A: k, D: -k, F: h * k}
	unflip := svgpath.Matrix2D{A: 1 / k, D: -1 / k, F: h}
	t := flip.Mult(m).Mult(unflip)
	return gofpdf.TransformMatrix{A: t.A, B: t.B, C: t.C, D: t.D, E: t.E, F: t.F}
}

func (c *Canvas) Concat(m svgpath.Matrix2D) {
	c.pdf.Transform(c.toPDF(m))
}

func (c *Canvas) ClipRect(r svgpath.Rect, antialias bool) {
	if r.IsEmpty() {
		r = svgpath.Rect{}
	}
	c.pdf.Rect(r.X, r.Y, r.W, r.H, "W n")
}

func clipOp(rule svgpath.FillRule) string {
	if rule == svgpath.EvenOdd {
		return "W* n"
	}
	return "W n"
}

func (c *Canvas) ClipPath(path svgdraw.Native, antialias bool) {
	pn, ok := path.(*pathNative)
	if !ok || pn.released {
		return
	}
	c.writePath(pn.path)
	c.pdf.DrawPath(clipOp(pn.rule))
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// writePath outputs the path construction operators;
// quadratic curves are raised to cubic ones.
func (c *Canvas) writePath(p svgpath.Path) {
	var cx, cy float64 // current point
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			cx, cy = fixedTof(fixed.Point26_6(op))
			c.pdf.MoveTo(cx, cy)
		case svgpath.LineTo:
			cx, cy = fixedTof(fixed.Point26_6(op))
			c.pdf.LineTo(cx, cy)
		case svgpath.QuadTo:
			qx, qy := fixedTof(op[0])
			x, y := fixedTof(op[1])
			c.pdf.CurveBezierCubicTo(cx+2./3*(qx-cx), cy+2./3*(qy-cy), x+2./3*(qx-x), y+2./3*(qy-y), x, y)
			cx, cy = x, y
		case svgpath.CubicTo:
			x0, y0 := fixedTof(op[0])
			x1, y1 := fixedTof(op[1])
			cx, cy = fixedTof(op[2])
			c.pdf.CurveBezierCubicTo(x0, y0, x1, y1, cx, cy)
		case svgpath.Close:
			c.pdf.ClosePath()
		}
	}
}

func (c *Canvas) setAlpha(alpha float64) {
	st := c.top()
	c.pdf.SetAlpha(math.Max(0, math.Min(1, alpha*st.alpha)), st.blend)
}

var (
	capStyles  = [...]string{svgpaint.ButtCap: "butt", svgpaint.SquareCap: "square", svgpaint.RoundCap: "round"}
	joinStyles = [...]string{
		svgpaint.Miter: "miter", svgpaint.Round: "round", svgpaint.Bevel: "bevel",
		svgpaint.MiterClip: "miter", svgpaint.Arc: "round", svgpaint.ArcClip: "miter",
	}
)

func (c *Canvas) setStroke(opts svgpaint.StrokeOptions) {
	c.pdf.SetLineWidth(opts.Width)
	c.pdf.SetLineCapStyle(capStyles[opts.Cap])
	c.pdf.SetLineJoinStyle(joinStyles[opts.Join])
	c.pdf.RawWriteStr(fmt.Sprintf("%.2f M", opts.MiterLimit))
	dash := opts.Dash
	if dash == nil {
		dash = []float64{}
	}
	c.pdf.SetDashPattern(dash, opts.DashOffset)
}

// firstStop returns the color used when a gradient can't be drawn as a shading.
func firstStop(stops []svgpaint.GradientStop) svgpaint.Color {
	if len(stops) == 0 {
		return svgpaint.Transparent
	}
	return stops[0].Color
}

func lastStop(stops []svgpaint.GradientStop) svgpaint.Color {
	if len(stops) == 0 {
		return svgpaint.Transparent
	}
	return stops[len(stops)-1].Color
}

func (c *Canvas) DrawPath(path svgdraw.Native, paint svgdraw.Native) {
	pn, ok1 := path.(*pathNative)
	pt, ok2 := paint.(*paintNative)
	if !ok1 || !ok2 || pn.released || pt.released || c.top().hidden {
		return
	}
	p := pt.paint
	col := p.Color
	switch s := p.Shader.(type) {
	case *svgpaint.LinearGradient:
		if p.Style == svgpaint.FillStyle {
			c.fillLinear(pn, s, p.Alpha())
			return
		}
		col = firstStop(s.Stops).WithOpacity(p.Alpha())
	case *svgpaint.RadialGradient:
		if p.Style == svgpaint.FillStyle {
			c.fillRadial(pn, s, p.Alpha())
			return
		}
		col = firstStop(s.Stops).WithOpacity(p.Alpha())
	case *svgpaint.Pattern:
		if p.Style == svgpaint.FillStyle {
			c.fillPattern(pn, s, p.Alpha())
		} else {
			logx.L().Debug("svgpdf: pattern strokes are not supported")
		}
		return
	}

	c.setAlpha(float64(col.A) / 0xff)
	c.writePath(pn.path)
	if p.Style == svgpaint.StrokeStyle {
		c.pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
		c.setStroke(p.Stroke)
		c.pdf.DrawPath("D")
		return
	}
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	if pn.rule == svgpath.EvenOdd {
		c.pdf.DrawPath("F*")
	} else {
		c.pdf.DrawPath("F")
	}
}

// beginShading clips to the path and moves to the gradient space,
// returning the path bounds in that space.
func (c *Canvas) beginShading(pn *pathNative, m svgpath.Matrix2D) svgpath.Rect {
	c.pdf.TransformBegin()
	c.writePath(pn.path)
	c.pdf.DrawPath(clipOp(pn.rule))
	c.Concat(m)
	return m.Invert().MapRect(pn.path.Bounds())
}

func (c *Canvas) fillLinear(pn *pathNative, g *svgpaint.LinearGradient, alpha float64) {
	r := c.beginShading(pn, g.Transform)
	defer c.pdf.TransformEnd()
	if r.IsEmpty() {
		return
	}
	c1, c2 := firstStop(g.Stops), lastStop(g.Stops)
	c.setAlpha(alpha * float64(c1.A) / 0xff)
	// the normalized coordinates have their origin at the bottom left corner
	nx := func(x float64) float64 { return (x - r.X) / r.W }
	ny := func(y float64) float64 { return (r.Bottom() - y) / r.H }
	c.pdf.LinearGradient(r.X, r.Y, r.W, r.H,
		int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B),
		nx(g.X1), ny(g.Y1), nx(g.X2), ny(g.Y2))
}

func (c *Canvas) fillRadial(pn *pathNative, g *svgpaint.RadialGradient, alpha float64) {
	r := c.beginShading(pn, g.Transform)
	defer c.pdf.TransformEnd()
	if r.IsEmpty() {
		return
	}
	// use a square centered on the circle, so that it stays a circle
	half := g.R
	for _, x := range [2]float64{r.X, r.Right()} {
		half = math.Max(half, math.Abs(x-g.CX))
	}
	for _, y := range [2]float64{r.Y, r.Bottom()} {
		half = math.Max(half, math.Abs(y-g.CY))
	}
	side := 2 * half
	c1, c2 := firstStop(g.Stops), lastStop(g.Stops)
	c.setAlpha(alpha * float64(c1.A) / 0xff)
	c.pdf.RadialGradient(g.CX-half, g.CY-half, side, side,
		int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B),
		0.5+(g.FX-g.CX)/side, 0.5-(g.FY-g.CY)/side, 0.5, 0.5, g.R/side)
}

// fillPattern replays the pattern content on every tile
// intersecting the path.
func (c *Canvas) fillPattern(pn *pathNative, pat *svgpaint.Pattern, alpha float64) {
	pic, ok := pat.Content.(*svgdraw.Picture)
	if !ok || pat.Tile.IsEmpty() {
		return
	}
	r := c.beginShading(pn, pat.Transform)
	defer c.pdf.TransformEnd()
	if r.IsEmpty() {
		return
	}
	tile := pat.Tile
	i0, i1 := math.Floor((r.X-tile.X)/tile.W), math.Ceil((r.Right()-tile.X)/tile.W)
	j0, j1 := math.Floor((r.Y-tile.Y)/tile.H), math.Ceil((r.Bottom()-tile.Y)/tile.H)
	if (i1-i0)*(j1-j0) > maxPatternCells {
		logx.L().Debug("svgpdf: too many pattern tiles", "count", (i1-i0)*(j1-j0))
		return
	}

	top := len(c.states) - 1
	saved := c.states[top].alpha
	c.states[top].alpha *= alpha
	defer func() { c.states[top].alpha = saved }()
	for j := j0; j < j1; j++ {
		for i := i0; i < i1; i++ {
			c.Save()
			c.Concat(svgpath.Identity.Translate(tile.X+i*tile.W, tile.Y+j*tile.H))
			c.ClipRect(pic.CullRect(), true)
			pic.Play(c)
			c.Restore()
		}
	}
}

func (c *Canvas) DrawImage(img svgdraw.Native, src, dst svgpath.Rect, paint svgdraw.Native) {
	in, ok := img.(*imageNative)
	if !ok || in.released || src.IsEmpty() || dst.IsEmpty() || c.top().hidden {
		return
	}
	if in.name == "" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, in.img); err != nil {
			logx.L().Warn("svgpdf: encoding image", "err", err)
			return
		}
		c.images++
		in.name = fmt.Sprintf("svgpdf-image-%d-%p", c.images, in)
		c.pdf.RegisterImageOptionsReader(in.name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	}
	alpha := 1.
	if pt, ok := paint.(*paintNative); ok && !pt.released {
		alpha = pt.paint.Alpha()
	}

	// place the whole image so that `src`, relative to the
	// image origin, covers `dst`
	b := in.img.Bounds()
	sx, sy := dst.W/src.W, dst.H/src.H
	c.Save()
	defer c.Restore()
	c.ClipRect(dst, true)
	c.setAlpha(alpha)
	c.pdf.ImageOptions(in.name, dst.X-src.X*sx, dst.Y-src.Y*sy,
		float64(b.Dx())*sx, float64(b.Dy())*sy, false,
		gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}, 0, "")
}

// DrawSVG draws the SVG document read from `r` on the current page
// of `pdf`, scaling its intrinsic size to the (x, y, w, h) rectangle,
// expressed in the document units.
func DrawSVG(pdf *gofpdf.Fpdf, r io.Reader, x, y, w, h float64) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("svgpdf: invalid size %gx%g", w, h)
	}
	doc, err := svgdom.ReadDocument(r, svgdom.IgnoreErrorMode)
	if err != nil {
		return err
	}
	iw, ih := w, h
	if l, err := svgdom.ParseLength(doc.Root.Attrs["width"]); err == nil && l.Unit != svgdom.UnitPercent && l.Value > 0 {
		iw = l.Resolve(w, 16)
	}
	if l, err := svgdom.ParseLength(doc.Root.Attrs["height"]); err == nil && l.Unit != svgdom.UnitPercent && l.Value > 0 {
		ih = l.Resolve(h, 16)
	}

	tree, err := svgdraw.Build(Backend{}, doc.Root, svgpath.Rect{W: iw, H: ih}, svgdraw.IgnoreNone)
	if err != nil {
		return err
	}
	defer tree.Dispose()

	c := NewCanvas(pdf)
	c.Concat(svgpath.Identity.Translate(x, y).Scale(w/iw, h/ih))
	tree.Paint(c, iw, ih)
	c.Close()
	return pdf.Error()
}
