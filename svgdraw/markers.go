package svgdraw

import (
	"math"
	"strings"

	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpath"
)

// markerRef returns the marker referenced by `prop`, falling
// back on the `marker` shorthand.
func (s *buildState) markerRef(d *Drawable, prop string) *svgdom.Element {
	v, ok := s.tree.lookup(d, prop, true)
	if !ok {
		if v, ok = s.tree.lookup(d, "marker", true); !ok {
			return nil
		}
	}
	if v = strings.TrimSpace(v); v == "none" {
		return nil
	}
	target := s.reference(d.Element, v)
	if target == nil || target.Name != "marker" {
		return nil
	}
	return target
}

// buildMarkers instantiates the markers at the vertices of d.Path.
func (s *buildState) buildMarkers(d *Drawable, ctx buildContext) {
	start, mid, end := s.markerRef(d, "marker-start"), s.markerRef(d, "marker-mid"), s.markerRef(d, "marker-end")
	if start == nil && mid == nil && end == nil {
		return
	}
	vertices := d.Path.Vertices()
	if len(vertices) == 0 {
		return
	}
	strokeWidth := s.strokeWidth(d, ctx)
	add := func(target *svgdom.Element, v svgpath.Vertex, isStart bool) {
		if target == nil {
			return
		}
		if id := s.buildMarker(d, ctx, target, v, isStart, strokeWidth); id != NoNode {
			d.Markers = append(d.Markers, id)
		}
	}
	last := len(vertices) - 1
	add(start, vertices[0], true)
	for _, v := range vertices[1:max(last, 1)] {
		add(mid, v, false)
	}
	add(end, vertices[last], false)
}

// markerAngle returns the rotation in radians given by `orient`.
func markerAngle(orient string, v svgpath.Vertex, isStart bool) float64 {
	switch orient = strings.TrimSpace(orient); orient {
	case "auto":
		return v.Angle
	case "auto-start-reverse":
		if isStart {
			return v.Angle + math.Pi
		}
		return v.Angle
	}
	deg, err := svgpath.ParseNumber(strings.TrimSuffix(orient, "deg"))
	if err != nil {
		return 0
	}
	return deg * math.Pi / 180
}

func (s *buildState) buildMarker(d *Drawable, ctx buildContext, target *svgdom.Element, v svgpath.Vertex, isStart bool, strokeWidth float64) NodeID {
	md := detached(target)
	mw := s.length(md, ctx, "markerWidth", axisX, 3)
	mh := s.length(md, ctx, "markerHeight", axisY, 3)
	if mw <= 0 || mh <= 0 {
		return NoNode
	}
	vbm := svgpath.Identity
	if vb, ok := parseViewBox(target); ok {
		vbm = aspectRatio(target).viewBoxTransform(vb, mw, mh)
	}
	scale := 1.
	if strings.TrimSpace(target.Attrs["markerUnits"]) != "userSpaceOnUse" {
		scale = strokeWidth
	}
	refX, refY := vbm.Transform(attrNumber(target, "refX", 0), attrNumber(target, "refY", 0))
	m := svgpath.Identity.Translate(v.X, v.Y).
		Rotate(markerAngle(target.Attrs["orient"], v, isStart)).
		Scale(scale, scale).
		Translate(-refX, -refY).
		Mult(vbm)

	return s.withReference(ctx, d.Element, target, func(ctx buildContext) NodeID {
		node := s.tree.newNode(KindMarker, target, NoNode)
		cctx := ctx.child(node.ID)
		for _, child := range target.Children {
			if id := s.build(child, cctx); id != NoNode {
				node.Children = append(node.Children, id)
			}
		}
		if !s.finishContainer(node) {
			return NoNode
		}
		node.setTransform(m)
		switch strings.TrimSpace(target.Attrs["overflow"]) {
		case "visible", "auto":
		default:
			clip := vbm.Invert().MapRect(svgpath.Rect{W: mw, H: mh})
			node.Clip = &clip
		}
		return node.ID
	})
}
