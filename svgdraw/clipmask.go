package svgdraw

import (
	"strings"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpath"
)

// referencedElement resolves the reference stored in the attribute
// `attr` of `el`, which must point to an element named `name`.
func (s *buildState) referencedElement(el *svgdom.Element, attr, name string) *svgdom.Element {
	v, ok := el.Attrs[attr]
	if !ok {
		return nil
	}
	if v = strings.TrimSpace(v); v == "none" || v == "" {
		return nil
	}
	target := s.reference(el, v)
	if target == nil || target.Name != name {
		logx.L().Debug("svgdraw: invalid reference", "element", el.String(), "attribute", attr, "value", v)
		return nil
	}
	return target
}

// clipChildren are the elements allowed in a clipPath
var clipChildren = map[string]bool{
	"path": true, "rect": true, "circle": true, "ellipse": true, "line": true,
	"polyline": true, "polygon": true, "text": true, "use": true,
}

// resolveClipPath builds the clip path referenced by `el`, for an element
// with geometry `bounds`. It returns NoNode if there is no
// valid clip-path reference.
func (s *buildState) resolveClipPath(el *svgdom.Element, bounds svgpath.Rect, ctx buildContext) NodeID {
	target := s.referencedElement(el, "clip-path", "clipPath")
	if target == nil {
		return NoNode
	}
	m, ok := s.transformAttr(target, "transform")
	if !ok {
		return NoNode
	}
	return s.withReference(ctx, el, target, func(ctx buildContext) NodeID {
		node := s.tree.newNode(KindClipPath, target, NoNode)
		node.IsDrawable = true
		node.IsAntialias = s.antialias

		if isObjectBoundingBox(target, "clipPathUnits", false) {
			if bounds.IsEmpty() { // nothing is visible
				return node.ID
			}
			m = m.Mult(bboxMatrix(bounds))
		}

		cctx := ctx.child(node.ID)
		cctx.clip = true
		first := true
		for _, child := range target.Children {
			if !clipChildren[child.Name] {
				continue
			}
			id := s.build(child, cctx)
			if id == NoNode {
				continue
			}
			node.Children = append(node.Children, id)
			if c := s.tree.nodes[id]; c.IsDrawable && first {
				first = false
				node.FillRule = c.FillRule
				node.IsAntialias = c.IsAntialias
			}
			s.collectClip(id, m, &node.Path)
		}
		node.setGeometry(node.Path.Bounds())
		node.ClipPath = s.resolveClipPath(target, bounds, ctx)
		return node.ID
	})
}

// collectClip appends the geometry of the sub-tree `id` to `out`,
// in the coordinates given by `m`.
func (s *buildState) collectClip(id NodeID, m svgpath.Matrix2D, out *svgpath.Path) {
	d := s.tree.nodes[id]
	if !d.IsDrawable {
		return
	}
	m = m.Mult(d.transform)
	if !d.Path.IsEmpty() {
		out.Append(d.Path.Transform(m))
	}
	for _, c := range d.Children {
		s.collectClip(c, m, out)
	}
}

// resolveMask builds the mask referenced by `el`, or returns NoNode.
func (s *buildState) resolveMask(el *svgdom.Element, bounds svgpath.Rect, ctx buildContext) NodeID {
	target := s.referencedElement(el, "mask", "mask")
	if target == nil {
		return NoNode
	}
	bbox := isObjectBoundingBox(target, "maskUnits", true)
	contentBBox := isObjectBoundingBox(target, "maskContentUnits", false)
	if (bbox || contentBBox) && bounds.IsEmpty() {
		return NoNode
	}
	region := s.unitRect(detached(target), ctx, bbox, bounds, [4]string{"-10%", "-10%", "120%", "120%"})
	if region.IsEmpty() {
		return NoNode
	}
	return s.withReference(ctx, el, target, func(ctx buildContext) NodeID {
		node := s.tree.newNode(KindMask, target, NoNode)
		if contentBBox {
			node.setTransform(bboxMatrix(bounds))
		}
		cctx := ctx.child(node.ID)
		cctx.clip = false
		for _, child := range target.Children {
			if id := s.build(child, cctx); id != NoNode {
				node.Children = append(node.Children, id)
			}
		}
		s.finishContainer(node)
		// an empty mask hides its host
		node.IsDrawable = true
		local := node.transform.Invert().MapRect(region)
		node.Clip = &local
		node.setGeometry(local)
		node.Mask = s.resolveMask(target, bounds, ctx)
		return node.ID
	})
}
