package svgdraw

import (
	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgpath"
)

// shapeGeometry returns the path of a basic shape or path element,
// in local coordinates. An empty path means no geometry.
func (s *buildState) shapeGeometry(d *Drawable, ctx buildContext) svgpath.Path {
	l := func(name string, a axis) float64 { return s.length(d, ctx, name, a, 0) }
	el := d.Element
	switch d.Kind {
	case KindRect:
		x, y, w, h := l("x", axisX), l("y", axisY), l("width", axisX), l("height", axisY)
		rx, okX := s.optLength(d, ctx, "rx", axisX)
		ry, okY := s.optLength(d, ctx, "ry", axisY)
		// a missing radius takes the value of the other one
		if !okX {
			rx = ry
		}
		if !okY {
			ry = rx
		}
		if rx <= 0 || ry <= 0 {
			return svgpath.RectPath(x, y, w, h)
		}
		return svgpath.RoundRectPath(x, y, w, h, rx, ry)
	case KindCircle:
		r := l("r", axisDiag)
		return svgpath.EllipsePath(l("cx", axisX), l("cy", axisY), r, r)
	case KindEllipse:
		rx, okX := s.optLength(d, ctx, "rx", axisX)
		ry, okY := s.optLength(d, ctx, "ry", axisY)
		if !okX {
			rx = ry
		}
		if !okY {
			ry = rx
		}
		return svgpath.EllipsePath(l("cx", axisX), l("cy", axisY), rx, ry)
	case KindLine:
		return svgpath.LinePath(l("x1", axisX), l("y1", axisY), l("x2", axisX), l("y2", axisY))
	case KindPolyline, KindPolygon:
		points, err := svgpath.ParseNumbers(el.Attrs["points"])
		if err != nil {
			logx.L().Debug("svgdraw: invalid points", "element", el.String(), "err", err)
			return nil
		}
		// an odd number of coordinates: the last one is ignored
		points = points[:len(points)&^1]
		return svgpath.PolyPath(points, d.Kind == KindPolygon)
	case KindPath:
		p, err := svgpath.ParsePathData(el.Attrs["d"])
		if err != nil {
			logx.L().Debug("svgdraw: invalid path data", "element", el.String(), "err", err)
			return nil
		}
		return p
	}
	return nil
}

// optLength is like length, but reports whether the attribute is present and valid.
func (s *buildState) optLength(d *Drawable, ctx buildContext, name string, a axis) (float64, bool) {
	v, ok := d.Element.Attrs[name]
	if !ok {
		return 0, false
	}
	f, ok := s.lengthValue(d, ctx, v, a)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}

func hasMarkers(k Kind) bool {
	switch k {
	case KindPath, KindLine, KindPolyline, KindPolygon:
		return true
	}
	return false
}

// buildShape implements the construction protocol for paths and
// basic shapes.
func buildShape(s *buildState, d *Drawable, ctx buildContext) {
	if !s.hasFeatures(d, ctx) {
		return
	}
	path := s.shapeGeometry(d, ctx)
	if path.IsEmpty() {
		return
	}
	m, ok := s.transform(d)
	if !ok {
		return
	}
	d.Path = path
	ruleName := "fill-rule"
	if ctx.clip {
		ruleName = "clip-rule"
	}
	rule, _ := s.tree.lookup(d, ruleName, true)
	d.FillRule = svgpath.ParseFillRule(rule)
	d.IsAntialias = s.isAntialias(d)
	d.setTransform(m)
	d.setGeometry(path.Bounds())

	if ctx.clip { // only the geometry is used
		d.IsDrawable = true
		return
	}

	bounds := d.geometryBounds
	if !s.ignore.Has(IgnoreFill) {
		d.Fill = s.resolveFill(d, ctx, bounds)
	}
	if !s.ignore.Has(IgnoreStroke) {
		d.Stroke = s.resolveStroke(d, ctx, bounds)
	}
	if hasMarkers(d.Kind) && !s.ignore.Has(IgnoreMarker) {
		s.buildMarkers(d, ctx)
	}
	// a fill failing to resolve is only recovered by a valid stroke
	if d.Fill == nil && d.Stroke == nil && len(d.Markers) == 0 {
		return
	}
	if v, ok := s.tree.lookup(d, "paint-order", true); ok {
		d.PaintOrder = ParsePaintOrder(v)
	}
	s.resolveEffects(d, ctx)
	d.IsDrawable = true
}
