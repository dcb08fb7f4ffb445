package svgdraw

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpath"
)

// isSVGContent sniffs XML content.
func isSVGContent(mediaType string, data []byte) bool {
	if mediaType == "image/svg+xml" {
		return true
	}
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	return bytes.HasPrefix(data, []byte("<"))
}

// buildImage builds an `image` element: raster images are stored
// as image data, SVG images are built as a nested fragment.
func buildImage(s *buildState, d *Drawable, ctx buildContext) {
	if !s.hasFeatures(d, ctx) || ctx.clip {
		return
	}
	m, ok := s.transform(d)
	if !ok {
		return
	}
	d.setTransform(m)
	d.IsAntialias = s.isAntialias(d)

	href := d.Element.Attrs["href"]
	mediaType, data, err := s.loadHref(href)
	if err != nil {
		logx.L().Debug("svgdraw: image not loaded", "element", d.Element.String(), "err", err)
		return
	}
	x, y := s.length(d, ctx, "x", axisX, 0), s.length(d, ctx, "y", axisY, 0)
	w, hasW := s.optLength(d, ctx, "width", axisX)
	h, hasH := s.optLength(d, ctx, "height", axisY)

	if isSVGContent(mediaType, data) {
		s.buildSVGImage(d, ctx, href, data, x, y, w, h, hasW, hasH)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logx.L().Debug("svgdraw: image not decoded", "element", d.Element.String(), "err", err)
		return
	}
	size := img.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return
	}
	src := svgpath.Rect{W: float64(size.X), H: float64(size.Y)}
	if !hasW {
		w = src.W
	}
	if !hasH {
		h = src.H
	}
	vp := svgpath.Rect{X: x, Y: y, W: w, H: h}
	if vp.IsEmpty() {
		return
	}
	fit := svgpath.Identity.Translate(x, y).Mult(aspectRatio(d.Element).viewBoxTransform(src, w, h))
	d.Image = &ImageData{Width: size.X, Height: size.Y, Src: src, Dst: fit.MapRect(src)}
	d.img = img
	d.Clip = &vp
	d.setGeometry(vp)
	s.resolveEffects(d, ctx)
	d.IsDrawable = true
}

// buildSVGImage parses and builds an SVG image as the only child of `d`.
// The image document is isolated: it inherits no property from `d`.
func (s *buildState) buildSVGImage(d *Drawable, ctx buildContext, href string, data []byte, x, y, w, h float64, hasW, hasH bool) {
	doc, err := svgdom.ReadDocument(bytes.NewReader(data), svgdom.IgnoreErrorMode)
	if err != nil {
		logx.L().Debug("svgdraw: svg image not parsed", "element", d.Element.String(), "err", err)
		return
	}
	root := doc.Root
	ref := new(refState)
	guard, ok := ctx.guard.enter("image:"+href, ref)
	if !ok {
		logx.L().Debug("svgdraw: image ignored", "element", d.Element.String(), "err", ErrCyclicReference)
		return
	}
	rd := detached(root)
	if !hasW {
		w = s.length(rd, ctx, "width", axisX, 100)
	}
	if !hasH {
		h = s.length(rd, ctx, "height", axisY, 100)
	}
	vp := svgpath.Rect{X: x, Y: y, W: w, H: h}

	node := s.tree.newNode(KindFragment, root, NoNode)
	cctx := ctx
	cctx.guard = guard
	cctx.parent = NoNode
	s.safeBuild(func(s *buildState, node *Drawable, ctx buildContext) {
		s.buildViewport(node, ctx, vp)
	}, node, cctx)
	if ref.cyclic {
		logx.L().Debug("svgdraw: image ignored", "element", d.Element.String(), "err", ErrCyclicReference)
		return
	}
	d.Children = append(d.Children, node.ID)
	if !node.IsDrawable {
		return
	}
	d.Clip = &vp
	d.setGeometry(vp)
	s.resolveEffects(d, ctx)
	d.IsDrawable = true
}
