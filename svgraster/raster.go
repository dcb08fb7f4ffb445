// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"fmt"
	"image"
	"io"

	"github.com/anthonynsimon/bild/clone"

	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgdraw"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

var (
	_ svgdraw.Backend = Backend{} // assert interface conformance
	_ svgdraw.Canvas  = (*Canvas)(nil)
)

// Backend allocates the natives used by a raster Canvas.
// It holds no state and may be shared by several trees.
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
	img      *image.RGBA
	released bool
}

func (n *imageNative) Release() { n.released, n.img = true, nil }

// NewPath keeps a reference to `p`.
func (Backend) NewPath(p svgpath.Path, rule svgpath.FillRule) (svgdraw.Native, error) {
	return &pathNative{path: p, rule: rule}, nil
}

func (Backend) NewPaint(p *svgpaint.Paint) (svgdraw.Native, error) {
	if p == nil {
		return nil, fmt.Errorf("svgraster: nil paint")
	}
	return &paintNative{paint: p}, nil
}

// NewImage stores a premultiplied copy of img, with its origin at (0, 0).
func (Backend) NewImage(img image.Image) (svgdraw.Native, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("svgraster: empty image")
	}
	rgba := clone.AsRGBA(img)
	rgba.Rect = rgba.Rect.Sub(rgba.Rect.Min)
	return &imageNative{img: rgba}, nil
}

// intrinsicSize returns the size declared by the root `width` and `height`,
// defaulting to (w, h) when they are missing or relative.
func intrinsicSize(root *svgdom.Element, w, h float64) (float64, float64) {
	read := func(name string, def float64) float64 {
		v, ok := root.Attr(name)
		if !ok {
			return def
		}
		l, err := svgdom.ParseLength(v)
		if err != nil || l.Unit == svgdom.UnitPercent || l.Value <= 0 {
			return def
		}
		return l.Resolve(def, 16)
	}
	return read("width", w), read("height", h)
}

// RasterSVG renders the SVG document read from `r` into a new
// w x h image, scaling the document's intrinsic size to fill it.
func RasterSVG(r io.Reader, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svgraster: invalid image size %dx%d", w, h)
	}
	doc, err := svgdom.ReadDocument(r, svgdom.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}
	iw, ih := intrinsicSize(doc.Root, float64(w), float64(h))

	tree, err := svgdraw.Build(Backend{}, doc.Root, svgpath.Rect{W: iw, H: ih}, svgdraw.IgnoreNone)
	if err != nil {
		return nil, err
	}
	defer tree.Dispose()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := NewCanvas(img)
	c.Concat(svgpath.Identity.Scale(float64(w)/iw, float64(h)/ih))
	tree.Paint(c, iw, ih)
	return img, nil
}
