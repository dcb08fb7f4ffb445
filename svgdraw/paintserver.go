package svgdraw

import (
	"strings"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// detached returns a node outside of the tree, used to resolve
// the attributes of referenced elements (gradients, filters...).
// Inherited properties are looked up in the DOM ancestors.
func detached(el *svgdom.Element) *Drawable {
	return &Drawable{Element: el, Parent: NoNode, ClipPath: NoNode, Mask: NoNode, transform: svgpath.Identity}
}

// colorValue resolves a color, handling `currentColor`.
func (s *buildState) colorValue(d *Drawable, v string) (svgpaint.Color, bool) {
	v = strings.TrimSpace(v)
	if v == "currentColor" {
		v, _ = s.tree.lookup(d, "color", true)
		if v = strings.TrimSpace(v); v == "" || v == "currentColor" {
			return svgpaint.Black, true
		}
	}
	c, err := svgpaint.ParseColor(v)
	if err != nil {
		logx.L().Debug("svgdraw: invalid color", "element", d.Element.String(), "err", err)
		return svgpaint.Color{}, false
	}
	return c, true
}

// resolvePaint resolves the `fill` or `stroke` property, returning nil
// for `none` and for paints which fail to resolve.
func (s *buildState) resolvePaint(d *Drawable, ctx buildContext, prop string, bounds svgpath.Rect) *svgpaint.Paint {
	v, ok := s.tree.lookup(d, prop, true)
	if !ok {
		if prop != "fill" { // stroke defaults to none
			return nil
		}
		v = "black"
	}
	v = strings.TrimSpace(v)
	if v == "none" {
		return nil
	}
	opVal, opOk := s.tree.lookup(d, prop+"-opacity", true)
	opacity := fraction(opVal, opOk, 1)

	if strings.HasPrefix(v, "url(") {
		if target := s.reference(d.Element, v); target != nil {
			if p, resolved := s.paintServer(d, ctx, target, bounds, opacity); resolved {
				return p
			}
		}
		_, fallback, _ := svgdom.ParseFuncIRI(v)
		if fallback == "" {
			logx.L().Debug("svgdraw: paint server not resolved", "element", d.Element.String(), "property", prop, "value", v)
			return nil
		}
		if fallback == "none" {
			return nil
		}
		v = fallback
	}

	c, ok := s.colorValue(d, v)
	if !ok {
		return nil
	}
	return svgpaint.NewColorPaint(c.WithOpacity(opacity), d.IsAntialias)
}

// paintServer resolves a gradient or pattern reference. The boolean
// is false if the reference could not be resolved, in which case
// the fallback applies. A nil paint with true means `none`.
func (s *buildState) paintServer(d *Drawable, ctx buildContext, target *svgdom.Element, bounds svgpath.Rect, opacity float64) (*svgpaint.Paint, bool) {
	switch target.Name {
	case "linearGradient", "radialGradient":
		return s.resolveGradient(d, ctx, target, bounds, opacity)
	case "pattern":
		p := s.resolvePattern(d, ctx, target, bounds, opacity)
		return p, p != nil
	}
	return nil, false
}

// hrefChain follows the `href` attributes from `el`, as long as
// they point to an element accepted by `keep`.
func (s *buildState) hrefChain(el *svgdom.Element, keep func(*svgdom.Element) bool) []*svgdom.Element {
	chain := []*svgdom.Element{el}
	visited := map[*svgdom.Element]bool{el: true}
	for {
		href, ok := el.Attrs["href"]
		if !ok {
			return chain
		}
		next := s.reference(el, href)
		if next == nil || !keep(next) {
			return chain
		}
		if visited[next] {
			logx.L().Debug("svgdraw: href chain stopped", "element", el.String(), "err", ErrCyclicReference)
			return chain
		}
		visited[next] = true
		chain = append(chain, next)
		el = next
	}
}

// mergeChain returns an element carrying the attributes of the chain,
// the first element defining an attribute winning.
func mergeChain(chain []*svgdom.Element) *svgdom.Element {
	attrs := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Attrs {
			attrs[k] = v
		}
	}
	return &svgdom.Element{Name: chain[0].Name, Attrs: attrs, Parent: chain[0].Parent}
}

// firstWithChildren returns the first element of the chain with
// element children named `name` (or any element if `name` is empty).
func firstWithChildren(chain []*svgdom.Element, name string) *svgdom.Element {
	for _, el := range chain {
		for _, c := range el.Children {
			if c.IsText() {
				continue
			}
			if name == "" || c.Name == name {
				return el
			}
		}
	}
	return nil
}

func isGradient(el *svgdom.Element) bool {
	return el.Name == "linearGradient" || el.Name == "radialGradient"
}

func (s *buildState) gradientStops(chain []*svgdom.Element) []svgpaint.GradientStop {
	holder := firstWithChildren(chain, "stop")
	if holder == nil {
		return nil
	}
	var stops []svgpaint.GradientStop
	for _, stop := range holder.Children {
		if stop.Name != "stop" {
			continue
		}
		sd := detached(stop)
		offset, _ := svgdom.ParseFraction(stop.Attrs["offset"])
		c := svgpaint.Black
		if v, ok := stop.Attrs["stop-color"]; ok {
			if c, ok = s.colorValue(sd, v); !ok {
				c = svgpaint.Black
			}
		}
		v, ok := stop.Attrs["stop-opacity"]
		c = c.WithOpacity(fraction(v, ok, 1))
		stops = append(stops, svgpaint.GradientStop{Offset: offset, Color: c})
	}
	return svgpaint.NormalizeStops(stops)
}

// resolveGradient builds a linear or radial gradient paint.
func (s *buildState) resolveGradient(d *Drawable, ctx buildContext, target *svgdom.Element, bounds svgpath.Rect, opacity float64) (*svgpaint.Paint, bool) {
	chain := s.hrefChain(target, isGradient)
	stops := s.gradientStops(chain)
	if len(stops) == 0 {
		return nil, true
	}
	merged := mergeChain(chain)
	gd := detached(merged)

	bbox := isObjectBoundingBox(merged, "gradientUnits", true)
	if bbox && bounds.IsEmpty() {
		logx.L().Debug("svgdraw: gradient on empty bounds", "element", d.Element.String(), "gradient", target.String())
		return nil, false
	}
	gt, ok := s.transformAttr(merged, "gradientTransform")
	if !ok {
		gt = svgpath.Identity
	}
	transform := gt
	if bbox {
		transform = bboxMatrix(bounds).Mult(gt)
	}
	coord := func(name, def string, a axis) float64 {
		v, ok := merged.Attrs[name]
		if !ok {
			v = def
		}
		if bbox {
			f, err := svgdom.ParseFraction(v)
			if err != nil {
				f, _ = svgdom.ParseFraction(def)
			}
			return f
		}
		f, ok := s.lengthValue(gd, ctx, v, a)
		if !ok {
			f, _ = s.lengthValue(gd, ctx, def, a)
		}
		return f
	}
	spread, _ := svgpaint.ParseSpreadMethod(strings.TrimSpace(merged.Attrs["spreadMethod"]))

	var (
		shader svgpaint.Shader
		single svgpaint.Color
		isOne  bool
	)
	if target.Name == "linearGradient" {
		g := &svgpaint.LinearGradient{
			X1: coord("x1", "0%", axisX), Y1: coord("y1", "0%", axisY),
			X2: coord("x2", "100%", axisX), Y2: coord("y2", "0%", axisY),
			Stops: stops, Spread: spread, Transform: transform,
		}
		single, isOne = g.SingleColor()
		shader = g
	} else {
		g := &svgpaint.RadialGradient{
			CX: coord("cx", "50%", axisX), CY: coord("cy", "50%", axisY), R: coord("r", "50%", axisDiag),
			Stops: stops, Spread: spread, Transform: transform,
		}
		g.FX, g.FY = g.CX, g.CY
		if _, ok := merged.Attrs["fx"]; ok {
			g.FX = coord("fx", "50%", axisX)
		}
		if _, ok := merged.Attrs["fy"]; ok {
			g.FY = coord("fy", "50%", axisY)
		}
		g.FR = coord("fr", "0%", axisDiag)
		single, isOne = g.SingleColor()
		shader = g
	}
	if isOne {
		return svgpaint.NewColorPaint(single.WithOpacity(opacity), d.IsAntialias), true
	}
	return svgpaint.NewShaderPaint(shader, opacity, d.IsAntialias), true
}

// resolvePattern builds the content of a pattern as an auxiliary
// sub-tree, returning nil if the pattern is empty or cyclic.
func (s *buildState) resolvePattern(d *Drawable, ctx buildContext, target *svgdom.Element, bounds svgpath.Rect, opacity float64) *svgpaint.Paint {
	chain := s.hrefChain(target, func(el *svgdom.Element) bool { return el.Name == "pattern" })
	merged := mergeChain(chain)
	pd := detached(merged)

	bbox := isObjectBoundingBox(merged, "patternUnits", true)
	if bbox && bounds.IsEmpty() {
		return nil
	}
	tile := s.unitRect(pd, ctx, bbox, bounds, [4]string{"0", "0", "0", "0"})
	if tile.IsEmpty() {
		return nil
	}
	content := firstWithChildren(chain, "")
	if content == nil {
		return nil
	}
	pt, ok := s.transformAttr(merged, "patternTransform")
	if !ok {
		return nil
	}

	contentTransform := svgpath.Identity
	if vb, ok := parseViewBox(merged); ok {
		contentTransform = aspectRatio(merged).viewBoxTransform(vb, tile.W, tile.H)
	} else if isObjectBoundingBox(merged, "patternContentUnits", false) {
		contentTransform = svgpath.Identity.Scale(bounds.W, bounds.H)
	}

	node := s.tree.newNode(KindPattern, content, NoNode)
	d.patterns = append(d.patterns, node.ID)
	id := s.withReference(ctx, d.Element, target, func(ctx buildContext) NodeID {
		cctx := ctx.child(node.ID)
		cctx.clip = false
		for _, child := range content.Children {
			if c := s.build(child, cctx); c != NoNode {
				node.Children = append(node.Children, c)
			}
		}
		return node.ID
	})
	if id == NoNode || !s.finishContainer(node) {
		node.IsDrawable = false
		return nil
	}
	node.setTransform(contentTransform)
	cell := svgpath.Rect{W: tile.W, H: tile.H}
	local := contentTransform.Invert().MapRect(cell)
	node.Clip = &local

	pattern := &svgpaint.Pattern{
		Tile:      tile,
		Transform: pt,
		Content:   &Picture{tree: s.tree, root: node.ID, cull: cell},
	}
	return svgpaint.NewShaderPaint(pattern, opacity, d.IsAntialias)
}

// resolveFill resolves the fill paint against the geometry bounds.
func (s *buildState) resolveFill(d *Drawable, ctx buildContext, bounds svgpath.Rect) *svgpaint.Paint {
	return s.resolvePaint(d, ctx, "fill", bounds)
}

// resolveStroke resolves the stroke paint and its options. A stroke
// is only valid with a positive width.
func (s *buildState) resolveStroke(d *Drawable, ctx buildContext, bounds svgpath.Rect) *svgpaint.Paint {
	p := s.resolvePaint(d, ctx, "stroke", bounds)
	if p == nil {
		return nil
	}
	opts := svgpaint.DefaultStrokeOptions
	opts.Width = s.strokeWidth(d, ctx)
	if opts.Width <= 0 {
		return nil
	}
	if v, ok := s.tree.lookup(d, "stroke-linecap", true); ok {
		if c, ok := svgpaint.ParseCapMode(strings.TrimSpace(v)); ok {
			opts.Cap = c
		}
	}
	if v, ok := s.tree.lookup(d, "stroke-linejoin", true); ok {
		if j, ok := svgpaint.ParseJoinMode(strings.TrimSpace(v)); ok {
			opts.Join = j
		}
	}
	if v, ok := s.tree.lookup(d, "stroke-miterlimit", true); ok {
		if f, err := svgpath.ParseNumber(v); err == nil && f >= 1 {
			opts.MiterLimit = f
		}
	}
	if v, ok := s.tree.lookup(d, "stroke-dasharray", true); ok && strings.TrimSpace(v) != "none" {
		for _, field := range svgdom.SplitList(v) {
			f, ok := s.lengthValue(d, ctx, field, axisDiag)
			if !ok {
				opts.Dash = nil
				break
			}
			opts.Dash = append(opts.Dash, f)
		}
	}
	if v, ok := s.tree.lookup(d, "stroke-dashoffset", true); ok {
		if f, ok := s.lengthValue(d, ctx, v, axisDiag); ok {
			opts.DashOffset = f
		}
	}
	return p.AsStroke(opts)
}

// strokeWidth returns the resolved `stroke-width`, 1 by default.
func (s *buildState) strokeWidth(d *Drawable, ctx buildContext) float64 {
	v, ok := s.tree.lookup(d, "stroke-width", true)
	if !ok {
		return 1
	}
	f, ok := s.lengthValue(d, ctx, v, axisDiag)
	if !ok {
		return 1
	}
	return f
}
