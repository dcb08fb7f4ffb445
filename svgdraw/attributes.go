package svgdraw

import (
	"math"
	"strings"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// axis selects the reference of percentages
type axis uint8

const (
	axisX axis = iota
	axisY
	axisDiag
)

const defaultFontSize = 16

func (a axis) reference(viewport svgpath.Rect) float64 {
	switch a {
	case axisX:
		return viewport.W
	case axisY:
		return viewport.H
	default:
		return math.Hypot(viewport.W, viewport.H) / math.Sqrt2
	}
}

// fontSize returns the resolved (inherited) font size of the node.
func (s *buildState) fontSize(d *Drawable) float64 {
	v, ok := s.tree.lookup(d, "font-size", true)
	if !ok {
		return defaultFontSize
	}
	l, err := svgdom.ParseLength(v)
	if err != nil {
		return defaultFontSize
	}
	// relative units refer to the default size
	size := l.Resolve(defaultFontSize, defaultFontSize)
	if size <= 0 {
		return defaultFontSize
	}
	return size
}

// lengthValue resolves a length value in user units.
func (s *buildState) lengthValue(d *Drawable, ctx buildContext, v string, a axis) (float64, bool) {
	l, err := svgdom.ParseLength(v)
	if err != nil {
		return 0, false
	}
	fs := float64(defaultFontSize)
	if l.Unit == svgdom.UnitEm || l.Unit == svgdom.UnitEx {
		fs = s.fontSize(d)
	}
	return l.Resolve(a.reference(ctx.viewport), fs), true
}

// length resolves the (non inherited) attribute `name`, returning `def` when
// it is missing or invalid.
func (s *buildState) length(d *Drawable, ctx buildContext, name string, a axis, def float64) float64 {
	v, ok := d.Element.Attrs[name]
	if !ok {
		return def
	}
	f, ok := s.lengthValue(d, ctx, v, a)
	if !ok {
		logx.L().Debug("svgdraw: invalid length", "element", d.Element.String(), "attribute", name, "value", v)
		return def
	}
	return f
}

// transform parses the `transform` attribute. The boolean is false
// for malformed values, which make the element not drawable.
func (s *buildState) transform(d *Drawable) (svgpath.Matrix2D, bool) {
	return s.transformAttr(d.Element, "transform")
}

func (s *buildState) transformAttr(el *svgdom.Element, name string) (svgpath.Matrix2D, bool) {
	v, ok := el.Attrs[name]
	if !ok || s.ignore.Has(IgnoreTransform) {
		return svgpath.Identity, true
	}
	m, err := svgpath.ParseTransform(v)
	if err != nil {
		logx.L().Debug("svgdraw: invalid transform", "element", el.String(), "err", err)
		return svgpath.Identity, false
	}
	return m, true
}

func clamp01(f float64) float64 { return math.Max(0, math.Min(1, f)) }

// fraction reads a number or percentage clamped to [0, 1], with default `def`.
func fraction(v string, ok bool, def float64) float64 {
	if !ok {
		return def
	}
	f, err := svgdom.ParseFraction(v)
	if err != nil {
		return def
	}
	return clamp01(f)
}

// opacityValue returns the group opacity of the element.
func (s *buildState) opacityValue(d *Drawable) (float64, bool) {
	v, ok := s.tree.lookup(d, "opacity", false)
	if !ok {
		return 1, false
	}
	return fraction(v, true, 1), true
}

// resolveOpacity returns the layer paint needed for the opacity
// and blend mode of the node, or nil.
func (s *buildState) resolveOpacity(d *Drawable) *svgpaint.Paint {
	if s.ignore.Has(IgnoreOpacity) {
		return nil
	}
	opacity, _ := s.opacityValue(d)
	mode := svgpaint.SrcOver
	if v, ok := d.Element.Attrs["mix-blend-mode"]; ok {
		if m, ok := svgpaint.ParseBlendMode(strings.TrimSpace(v)); ok {
			mode = m
		}
	}
	if opacity >= 1 && mode == svgpaint.SrcOver {
		return nil
	}
	return svgpaint.NewLayerPaint(opacity, mode)
}

// isAntialias reads `shape-rendering`.
func (s *buildState) isAntialias(d *Drawable) bool {
	v, _ := s.tree.lookup(d, "shape-rendering", true)
	switch strings.TrimSpace(v) {
	case "crispEdges", "optimizeSpeed":
		return false
	default:
		return s.antialias
	}
}

// resolveEffects resolves the compositing attributes of the node,
// once its geometry bounds are known.
func (s *buildState) resolveEffects(d *Drawable, ctx buildContext) {
	d.Opacity = s.resolveOpacity(d)
	if !s.ignore.Has(IgnoreClip) {
		d.ClipPath = s.resolveClipPath(d.Element, d.geometryBounds, ctx)
	}
	if !s.ignore.Has(IgnoreMask) {
		d.Mask = s.resolveMask(d.Element, d.geometryBounds, ctx)
	}
	if !s.ignore.Has(IgnoreFilter) {
		d.Filter, d.FilterRegion = s.resolveFilter(d, ctx)
	}
}

// parseViewBox reads a `viewBox` attribute, returning false
// when missing, malformed or empty.
func parseViewBox(el *svgdom.Element) (svgpath.Rect, bool) {
	v, ok := el.Attrs["viewBox"]
	if !ok {
		return svgpath.Rect{}, false
	}
	fs, err := svgpath.ParseNumbers(v)
	if err != nil || len(fs) != 4 || fs[2] <= 0 || fs[3] <= 0 {
		return svgpath.Rect{}, false
	}
	return svgpath.Rect{X: fs[0], Y: fs[1], W: fs[2], H: fs[3]}, true
}

// bboxMatrix maps the unit square to `bounds`.
func bboxMatrix(bounds svgpath.Rect) svgpath.Matrix2D {
	return svgpath.Identity.Translate(bounds.X, bounds.Y).Scale(bounds.W, bounds.H)
}

// isObjectBoundingBox reads a `xxxUnits` attribute.
func isObjectBoundingBox(el *svgdom.Element, name string, def bool) bool {
	switch strings.TrimSpace(el.Attrs[name]) {
	case "objectBoundingBox":
		return true
	case "userSpaceOnUse":
		return false
	default:
		return def
	}
}

// unitRect resolves the x, y, width, height attributes of clip, mask,
// filter and pattern regions, either as fractions of `bounds`
// or as user lengths.
func (s *buildState) unitRect(d *Drawable, ctx buildContext, bbox bool, bounds svgpath.Rect, defaults [4]string) svgpath.Rect {
	el := d.Element
	names := [4]string{"x", "y", "width", "height"}
	var vals [4]float64
	for i, name := range names {
		v, ok := el.Attrs[name]
		if !ok {
			v = defaults[i]
		}
		if bbox {
			f, err := svgdom.ParseFraction(v)
			if err != nil {
				f, _ = svgdom.ParseFraction(defaults[i])
			}
			vals[i] = f
		} else {
			a := axisX
			if i%2 == 1 {
				a = axisY
			}
			f, ok := s.lengthValue(d, ctx, v, a)
			if !ok {
				f, _ = s.lengthValue(d, ctx, defaults[i], a)
			}
			vals[i] = f
		}
	}
	r := svgpath.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}
	if bbox {
		r = bboxMatrix(bounds).MapRect(r)
	}
	return r
}
