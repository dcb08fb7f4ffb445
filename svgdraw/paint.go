package svgdraw

import (
	"github.com/benoitkugler/svgtree/svgpath"
)

// Paint draws the tree on the canvas, clipped to (0, 0, width, height).
// It has no side effect on the tree and may be called many times.
func (t *Tree) Paint(c Canvas, width, height float64) {
	if t.disposed {
		return
	}
	c.Save()
	defer c.Restore()
	c.ClipRect(svgpath.Rect{W: width, H: height}, true)
	t.paintNode(c, t.root)
}

func (t *Tree) paintNode(c Canvas, id NodeID) {
	d := t.nodes[id]
	if !d.IsDrawable {
		return
	}

	c.Save()
	defer c.Restore()

	if !d.transform.IsIdentity() {
		c.Concat(d.transform)
	}
	if d.Clip != nil {
		c.ClipRect(*d.Clip, d.IsAntialias)
	}
	if d.ClipPath != NoNode {
		t.applyClip(c, d.ClipPath)
	}
	if d.nMask != nil {
		c.SaveLayer(nil)
		defer func() {
			c.SaveLayer(d.nMask)
			t.paintNode(c, d.Mask)
			c.Restore()
			c.Restore()
		}()
	}
	if d.nOpacity != nil {
		c.SaveLayer(d.nOpacity)
		defer c.Restore()
	}
	if d.nFilter != nil {
		c.ClipRect(d.FilterRegion, true)
		c.SaveLayer(d.nFilter)
		defer c.Restore()
	}

	if d.nImage != nil {
		c.DrawImage(d.nImage, d.Image.Src, d.Image.Dst, nil)
	}
	if d.nPath != nil || len(d.Markers) != 0 {
		for _, part := range d.PaintOrder {
			switch part {
			case PartFill:
				if d.nPath != nil && d.nFill != nil {
					c.DrawPath(d.nPath, d.nFill)
				}
			case PartStroke:
				if d.nPath != nil && d.nStroke != nil {
					c.DrawPath(d.nPath, d.nStroke)
				}
			case PartMarkers:
				for _, m := range d.Markers {
					t.paintNode(c, m)
				}
			}
		}
	}
	for _, child := range d.Children {
		t.paintNode(c, child)
	}
}

// applyClip intersects the current clip with the clip path `id`
// and the clip paths it refers to.
func (t *Tree) applyClip(c Canvas, id NodeID) {
	d := t.nodes[id]
	if d.ClipPath != NoNode {
		t.applyClip(c, d.ClipPath)
	}
	if d.nPath == nil { // an empty clip path clips everything
		c.ClipRect(svgpath.Rect{}, false)
		return
	}
	c.ClipPath(d.nPath, d.IsAntialias)
}

// Picture is the content of a pattern tile, replayed
// by backends supporting patterns.
type Picture struct {
	tree *Tree
	root NodeID
	cull svgpath.Rect
}

// CullRect returns the tile area, in content coordinates.
func (p *Picture) CullRect() svgpath.Rect { return p.cull }

// Play paints the picture on `c`.
func (p *Picture) Play(c Canvas) {
	if p.tree.disposed {
		return
	}
	p.tree.paintNode(c, p.root)
}
