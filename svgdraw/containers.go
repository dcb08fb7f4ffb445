package svgdraw

import (
	"strings"

	"github.com/benoitkugler/svgtree/svgpath"
)

// buildChildren builds and links the children of `d`.
func (s *buildState) buildChildren(d *Drawable, ctx buildContext) {
	cctx := ctx.child(d.ID)
	for _, child := range d.Element.Children {
		if id := s.build(child, cctx); id != NoNode {
			d.Children = append(d.Children, id)
		}
	}
}

// finishContainer sets the bounds of a container from its drawable
// children. A container without drawable child is not drawable.
func (s *buildState) finishContainer(d *Drawable) bool {
	var (
		bounds svgpath.Rect
		found  bool
	)
	for _, id := range d.Children {
		c := s.tree.nodes[id]
		if !c.IsDrawable {
			continue
		}
		if !found {
			bounds = c.TransformedBounds()
		} else {
			bounds = bounds.Union(c.TransformedBounds())
		}
		found = true
	}
	d.setGeometry(bounds)
	d.IsDrawable = found
	return found
}

// finishGroup completes the construction of groups, uses and fragments.
func (s *buildState) finishGroup(d *Drawable, ctx buildContext) {
	if !s.finishContainer(d) {
		return
	}
	if !ctx.clip {
		s.resolveEffects(d, ctx)
	}
}

func buildGroup(s *buildState, d *Drawable, ctx buildContext) {
	if !s.hasFeatures(d, ctx) {
		return
	}
	m, ok := s.transform(d)
	if !ok {
		return
	}
	d.setTransform(m)
	d.IsAntialias = s.isAntialias(d)
	s.buildChildren(d, ctx)
	s.finishGroup(d, ctx)
}

// buildSwitch builds the first direct child whose conditions are
// satisfied. The other children are linked as non drawable nodes.
func buildSwitch(s *buildState, d *Drawable, ctx buildContext) {
	if !s.hasFeatures(d, ctx) {
		return
	}
	m, ok := s.transform(d)
	if !ok {
		return
	}
	d.setTransform(m)
	d.IsAntialias = s.isAntialias(d)
	cctx := ctx.child(d.ID)
	chosen := false
	for _, child := range d.Element.Children {
		eb, ok := elementBuilders[child.Name]
		if !ok {
			continue
		}
		if !chosen && s.conditionsPass(child) {
			chosen = true
			if id := s.build(child, cctx); id != NoNode {
				d.Children = append(d.Children, id)
			}
			continue
		}
		d.Children = append(d.Children, s.tree.newNode(eb.kind, child, d.ID).ID)
	}
	s.finishGroup(d, ctx)
}

// buildFragment builds a nested or root `svg` element.
func buildFragment(s *buildState, d *Drawable, ctx buildContext) {
	if !s.hasFeatures(d, ctx) {
		return
	}
	var vp svgpath.Rect
	if ctx.parent != NoNode { // the position of the root is ignored
		vp.X, vp.Y = s.length(d, ctx, "x", axisX, 0), s.length(d, ctx, "y", axisY, 0)
	}
	vp.W = s.length(d, ctx, "width", axisX, ctx.viewport.W)
	vp.H = s.length(d, ctx, "height", axisY, ctx.viewport.H)
	s.buildViewport(d, ctx, vp)
}

// buildViewport builds the content of an element establishing a new
// viewport `vp`, expressed in the coordinates of its parent.
func (s *buildState) buildViewport(d *Drawable, ctx buildContext, vp svgpath.Rect) {
	if vp.IsEmpty() {
		return
	}
	m, ok := s.transform(d)
	if !ok {
		return
	}
	el := d.Element
	content := svgpath.Identity.Translate(vp.X, vp.Y)
	childViewport := svgpath.Rect{W: vp.W, H: vp.H}
	if vb, ok := parseViewBox(el); ok {
		content = content.Mult(aspectRatio(el).viewBoxTransform(vb, vp.W, vp.H))
		childViewport = vb
	}
	d.setTransform(m.Mult(content))
	d.IsAntialias = s.isAntialias(d)
	switch strings.TrimSpace(el.Attrs["overflow"]) {
	case "visible", "auto":
	default:
		clip := content.Invert().MapRect(vp)
		d.Clip = &clip
	}

	cctx := ctx
	cctx.viewport = childViewport
	s.buildChildren(d, cctx)
	s.finishGroup(d, ctx)
}

// buildUse instantiates the referenced element as the only child
// of the use node.
func buildUse(s *buildState, d *Drawable, ctx buildContext) {
	if !s.hasFeatures(d, ctx) {
		return
	}
	m, ok := s.transform(d)
	if !ok {
		return
	}
	x, y := s.length(d, ctx, "x", axisX, 0), s.length(d, ctx, "y", axisY, 0)
	d.setTransform(m.Translate(x, y))
	d.IsAntialias = s.isAntialias(d)

	target := s.reference(d.Element, d.Element.Attrs["href"])
	if target == nil {
		return
	}
	id := s.withReference(ctx, d.Element, target, func(ctx buildContext) NodeID {
		cctx := ctx.child(d.ID)
		switch target.Name {
		case "symbol", "svg":
			node := s.tree.newNode(KindFragment, target, d.ID)
			// the size of the use element overrides the one of the target
			size := func(name string, a axis, def float64) float64 {
				if _, ok := d.Element.Attrs[name]; ok {
					return s.length(d, ctx, name, a, def)
				}
				return s.length(node, ctx, name, a, def)
			}
			vp := svgpath.Rect{W: size("width", axisX, ctx.viewport.W), H: size("height", axisY, ctx.viewport.H)}
			s.safeBuild(func(s *buildState, node *Drawable, ctx buildContext) {
				if target.Name == "symbol" || s.hasFeatures(node, ctx) {
					s.buildViewport(node, ctx, vp)
				}
			}, node, cctx)
			return node.ID
		default:
			return s.instantiate(target, cctx)
		}
	})
	if id == NoNode {
		return
	}
	d.Children = append(d.Children, id)
	s.finishGroup(d, ctx)
}
