package svgraster

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdraw"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

type state struct {
	ctm  svgpath.Matrix2D
	clip *image.Alpha // nil means no clipping
	// not nil if the state was pushed by SaveLayer
	layer *layer
}

// layer is an offscreen image composited back
// on the parent target when its state is restored.
type layer struct {
	img   *image.RGBA
	paint *svgpaint.Paint // may be nil
	ctm   svgpath.Matrix2D
	clip  *image.Alpha
}

// Canvas implements svgdraw.Canvas on an *image.RGBA.
// Device pixel (0, 0) is the top left corner of the destination bounds.
type Canvas struct {
	dst    *image.RGBA
	bounds image.Rectangle
	states []state

	// shapes are rasterized in scratch, then composited
	scratch *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher
}

// NewCanvas returns a canvas drawing on `dst`.
func NewCanvas(dst *image.RGBA) *Canvas {
	b := dst.Bounds()
	c := &Canvas{dst: dst, bounds: b}
	c.scratch = image.NewRGBA(b)
	c.scanner = rasterx.NewScannerGV(b.Dx(), b.Dy(), c.scratch, b)
	c.filler = rasterx.NewFiller(b.Dx(), b.Dy(), c.scanner)
	c.dasher = rasterx.NewDasher(b.Dx(), b.Dy(), c.scanner)
	c.states = []state{{ctm: svgpath.Identity}}
	return c
}

func (c *Canvas) top() *state { return &c.states[len(c.states)-1] }

// target returns the image currently drawn on.
func (c *Canvas) target() *image.RGBA {
	for i := len(c.states) - 1; i >= 0; i-- {
		if l := c.states[i].layer; l != nil {
			return l.img
		}
	}
	return c.dst
}

func (c *Canvas) Save() {
	st := *c.top()
	st.layer = nil
	c.states = append(c.states, st)
}

// SaveLayer starts an unclipped transparent layer; the current
// clip is applied when compositing it back.
func (c *Canvas) SaveLayer(paint svgdraw.Native) {
	st := *c.top()
	l := &layer{img: image.NewRGBA(c.bounds), ctm: st.ctm, clip: st.clip}
	if pn, ok := paint.(*paintNative); ok && !pn.released {
		l.paint = pn.paint
	}
	st.clip = nil
	st.layer = l
	c.states = append(c.states, st)
}

func (c *Canvas) Restore() {
	if len(c.states) <= 1 {
		logx.L().Debug("svgraster: unbalanced Restore")
		return
	}
	st := c.states[len(c.states)-1]
	c.states = c.states[:len(c.states)-1]
	if l := st.layer; l != nil {
		c.composite(c.target(), l.img, layerEffects(l.paint), l.clip, l.ctm)
	}
}

func (c *Canvas) Concat(m svgpath.Matrix2D) {
	st := c.top()
	st.ctm = st.ctm.Mult(m)
}

func (c *Canvas) ClipRect(r svgpath.Rect, antialias bool) {
	if r.IsEmpty() {
		c.top().clip = image.NewAlpha(c.bounds)
		return
	}
	c.clipWith(c.coverage(r.ToPath(), c.top().ctm, antialias))
}

func (c *Canvas) ClipPath(path svgdraw.Native, antialias bool) {
	pn, ok := path.(*pathNative)
	if !ok || pn.released {
		return
	}
	ctm := c.top().ctm
	if contours := subpaths(pn.path); pn.rule == svgpath.EvenOdd && len(contours) > 1 {
		c.clipWith(c.evenOddCoverage(contours, ctm, antialias))
		return
	}
	c.clipWith(c.coverage(pn.path, ctm, antialias))
}

// clipWith intersects the current clip with `mask`.
func (c *Canvas) clipWith(mask *image.Alpha) {
	st := c.top()
	if st.clip != nil {
		for i, a := range st.clip.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(a) / 0xff)
		}
	}
	st.clip = mask
}

// coverage rasterizes the interior of `p`, transformed by `m`.
func (c *Canvas) coverage(p svgpath.Path, m svgpath.Matrix2D, antialias bool) *image.Alpha {
	mask := image.NewAlpha(c.bounds)
	scanner := rasterx.NewScannerGV(c.bounds.Dx(), c.bounds.Dy(), mask, c.bounds)
	scanner.SetColor(color.Alpha{A: 0xff})
	filler := rasterx.NewFiller(c.bounds.Dx(), c.bounds.Dy(), scanner)
	p.AddTo(filler, m)
	filler.Draw()
	if !antialias {
		for i, a := range mask.Pix {
			if a >= 0x80 {
				mask.Pix[i] = 0xff
			} else {
				mask.Pix[i] = 0
			}
		}
	}
	return mask
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgpaint.Round:     rasterx.Round,
		svgpaint.Bevel:     rasterx.Bevel,
		svgpaint.Miter:     rasterx.Miter,
		svgpaint.MiterClip: rasterx.MiterClip,
		svgpaint.Arc:       rasterx.Arc,
		svgpaint.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgpaint.ButtCap:   rasterx.ButtCap,
		svgpaint.SquareCap: rasterx.SquareCap,
		svgpaint.RoundCap:  rasterx.RoundCap,
	}
)

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

// rasterize draws the path with the paint on the (cleared) scratch image.
func (c *Canvas) rasterize(path svgpath.Path, p *svgpaint.Paint, ctm svgpath.Matrix2D) {
	clear(c.scratch.Pix)
	c.filler.Clear()
	c.dasher.Clear()
	c.scanner.SetColor(c.source(p, ctm))

	if p.Style == svgpaint.StrokeStyle {
		opts := p.Stroke
		scale := ctm.ScaleFactor()
		var dashes []float64
		for _, d := range opts.Dash {
			dashes = append(dashes, d*scale)
		}
		gap := rasterx.FlatGap
		if opts.Join == svgpaint.Round || opts.Join == svgpaint.Arc {
			gap = rasterx.RoundGap
		}
		c.dasher.SetStroke(toFixed(opts.Width*scale), toFixed(opts.MiterLimit),
			capToFunc[opts.Cap], capToFunc[opts.Cap], gap, joinToJoin[opts.Join],
			dashes, opts.DashOffset*scale)
		path.AddTo(c.dasher, ctm)
		c.dasher.Draw()
		return
	}
	path.AddTo(c.filler, ctm)
	c.filler.Draw()
}

func (c *Canvas) DrawPath(path svgdraw.Native, paint svgdraw.Native) {
	pn, ok1 := path.(*pathNative)
	pt, ok2 := paint.(*paintNative)
	if !ok1 || !ok2 || pn.released || pt.released {
		return
	}
	st := c.top()
	if contours := subpaths(pn.path); pn.rule == svgpath.EvenOdd && pt.paint.Style != svgpaint.StrokeStyle && len(contours) > 1 {
		c.fillEvenOdd(contours, pt.paint, st.ctm)
	} else {
		c.rasterize(pn.path, pt.paint, st.ctm)
	}
	c.composite(c.target(), c.scratch, shapeEffects(pt.paint), st.clip, st.ctm)
}

// subpaths splits `p` at each MoveTo.
func subpaths(p svgpath.Path) []svgpath.Path {
	var out []svgpath.Path
	for _, op := range p {
		if _, ok := op.(svgpath.MoveTo); ok || len(out) == 0 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], op)
	}
	return out
}

// evenOddCoverage returns the exclusive union of the contours coverages.
// A single self-intersecting contour is still filled with the nonzero rule.
func (c *Canvas) evenOddCoverage(contours []svgpath.Path, ctm svgpath.Matrix2D, antialias bool) *image.Alpha {
	var mask *image.Alpha
	for _, contour := range contours {
		cov := c.coverage(contour, ctm, antialias)
		if mask == nil {
			mask = cov
			continue
		}
		for i, b := range cov.Pix {
			a := uint32(mask.Pix[i])
			mask.Pix[i] = uint8(a + uint32(b) - 2*a*uint32(b)/0xff)
		}
	}
	return mask
}

// fillEvenOdd paints the whole scratch image with the source of `p`,
// masked by the even-odd coverage of the contours.
func (c *Canvas) fillEvenOdd(contours []svgpath.Path, p *svgpaint.Paint, ctm svgpath.Matrix2D) {
	mask := c.evenOddCoverage(contours, ctm, true)

	clear(c.scratch.Pix)
	c.filler.Clear()
	c.scanner.SetColor(c.source(p, ctm))
	svgpath.RectPath(0, 0, float64(c.bounds.Dx()), float64(c.bounds.Dy())).AddTo(c.filler, svgpath.Identity)
	c.filler.Draw()

	pix := c.scratch.Pix
	for i, a := range mask.Pix {
		if a == 0xff {
			continue
		}
		for j := 4 * i; j < 4*i+4; j++ {
			pix[j] = uint8(uint32(pix[j]) * uint32(a) / 0xff)
		}
	}
}

func (c *Canvas) DrawImage(img svgdraw.Native, src, dst svgpath.Rect, paint svgdraw.Native) {
	in, ok := img.(*imageNative)
	if !ok || in.released || src.IsEmpty() || dst.IsEmpty() {
		return
	}
	st := c.top()
	m := st.ctm.Mult(svgpath.Identity.Translate(dst.X, dst.Y).
		Scale(dst.W/src.W, dst.H/src.H).Translate(-src.X, -src.Y))
	o := c.bounds.Min
	aff := f64.Aff3{m.A, m.C, m.E + float64(o.X), m.B, m.D, m.F + float64(o.Y)}
	sr := image.Rect(int(math.Floor(src.X)), int(math.Floor(src.Y)),
		int(math.Ceil(src.Right())), int(math.Ceil(src.Bottom()))).Intersect(in.img.Bounds())

	clear(c.scratch.Pix)
	draw.BiLinear.Transform(c.scratch, aff, in.img, sr, draw.Over, nil)

	fx := effects{opacity: 1}
	if pt, ok := paint.(*paintNative); ok && !pt.released {
		fx = layerEffects(pt.paint)
	}
	c.composite(c.target(), c.scratch, fx, st.clip, st.ctm)
}

// effects are the compositing parameters of a paint.
type effects struct {
	opacity     float64
	mode        svgpaint.BlendMode
	colorFilter svgpaint.ColorFilter
	imageFilter svgpaint.ImageFilter
}

// layerEffects uses the paint alpha as global opacity.
func layerEffects(p *svgpaint.Paint) effects {
	if p == nil {
		return effects{opacity: 1}
	}
	return effects{opacity: p.Alpha(), mode: p.BlendMode, colorFilter: p.ColorFilter, imageFilter: p.ImageFilter}
}

// shapeEffects ignores the paint alpha, already applied by the rasterizer.
func shapeEffects(p *svgpaint.Paint) effects {
	fx := layerEffects(p)
	fx.opacity = 1
	return fx
}

func scaleRGBA(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		uint8(float64(c.R)*f + 0.5), uint8(float64(c.G)*f + 0.5),
		uint8(float64(c.B)*f + 0.5), uint8(float64(c.A)*f + 0.5),
	}
}

func lerpRGBA(from, to color.RGBA, t float64) color.RGBA {
	l := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5) }
	return color.RGBA{l(from.R, to.R), l(from.G, to.G), l(from.B, to.B), l(from.A, to.A)}
}

func applyColorFilter(f svgpaint.ColorFilter, c color.RGBA) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBAModel.Convert(svgpaint.Apply(f, n)).(color.RGBA)
}

// composite draws `src` onto `dst`, through the effects and the clip.
func (c *Canvas) composite(dst, src *image.RGBA, fx effects, clip *image.Alpha, ctm svgpath.Matrix2D) {
	if fx.imageFilter != nil {
		src = applyImageFilter(fx.imageFilter, src, ctm)
	}
	if fx.colorFilter == nil && fx.mode == svgpaint.SrcOver && fx.opacity >= 1 {
		b := dst.Bounds()
		if clip == nil {
			draw.Draw(dst, b, src, b.Min, draw.Over)
		} else {
			draw.DrawMask(dst, b, src, b.Min, clip, b.Min, draw.Over)
		}
		return
	}

	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cov := 1.
			if clip != nil {
				a := clip.AlphaAt(x, y).A
				if a == 0 {
					continue
				}
				cov = float64(a) / 0xff
			}
			s := src.RGBAAt(x, y)
			if fx.colorFilter != nil {
				s = applyColorFilter(fx.colorFilter, s)
			}
			if fx.opacity < 1 {
				s = scaleRGBA(s, fx.opacity)
			}
			d := dst.RGBAAt(x, y)
			out := svgpaint.BlendPremul(fx.mode, s, d)
			if cov < 1 {
				out = lerpRGBA(d, out, cov)
			}
			dst.SetRGBA(x, y, out)
		}
	}
}
