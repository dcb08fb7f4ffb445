package svgdraw

import (
	"image"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// The natives of a node are allocated in a single pass, once the
// whole tree is built: a node which turned out non drawable
// owns nothing.

func (t *Tree) track(id NodeID, n Native) Native {
	t.natives[id] = append(t.natives[id], n)
	return n
}

func (t *Tree) newPath(id NodeID, p svgpath.Path, rule svgpath.FillRule) (Native, error) {
	n, err := t.backend.NewPath(p, rule)
	if err != nil {
		return nil, &BackendError{Op: "path", Err: err}
	}
	return t.track(id, n), nil
}

func (t *Tree) newPaint(id NodeID, p *svgpaint.Paint) (Native, error) {
	if p == nil {
		return nil, nil
	}
	n, err := t.backend.NewPaint(p)
	if err != nil {
		return nil, &BackendError{Op: "paint", Err: err}
	}
	return t.track(id, n), nil
}

func (t *Tree) newImage(id NodeID, img image.Image) (Native, error) {
	n, err := t.backend.NewImage(img)
	if err != nil {
		return nil, &BackendError{Op: "image", Err: err}
	}
	return t.track(id, n), nil
}

// commit allocates the natives of the drawable nodes reachable from `id`.
// Auxiliary sub-trees are committed before their host, so that
// paints may refer to them.
func (t *Tree) commit(id NodeID) (err error) {
	if id == NoNode {
		return nil
	}
	d := t.nodes[id]
	if !d.IsDrawable {
		return nil
	}
	for _, aux := range d.patterns {
		if err = t.commit(aux); err != nil {
			return err
		}
	}
	if err = t.commit(d.ClipPath); err != nil {
		return err
	}
	if err = t.commit(d.Mask); err != nil {
		return err
	}
	for _, m := range d.Markers {
		if err = t.commit(m); err != nil {
			return err
		}
	}

	if d.Kind == KindClipPath { // only the combined path is used
		if !d.Path.IsEmpty() {
			d.nPath, err = t.newPath(id, d.Path, d.FillRule)
		}
		return err
	}

	if !d.Path.IsEmpty() && (d.Fill != nil || d.Stroke != nil) {
		if d.nPath, err = t.newPath(id, d.Path, d.FillRule); err != nil {
			return err
		}
	}
	if d.nFill, err = t.newPaint(id, d.Fill); err != nil {
		return err
	}
	if d.nStroke, err = t.newPaint(id, d.Stroke); err != nil {
		return err
	}
	if d.nOpacity, err = t.newPaint(id, d.Opacity); err != nil {
		return err
	}
	if d.nFilter, err = t.newPaint(id, d.Filter); err != nil {
		return err
	}
	if d.Mask != NoNode && t.nodes[d.Mask].IsDrawable {
		if d.nMask, err = t.newPaint(id, svgpaint.NewMaskPaint()); err != nil {
			return err
		}
	}
	if d.img != nil {
		if d.nImage, err = t.newImage(id, d.img); err != nil {
			return err
		}
	}
	for _, c := range d.Children {
		if err = t.commit(c); err != nil {
			return err
		}
	}
	return nil
}

// Dispose releases all the native resources of the tree.
// Nodes are released post-order (children, markers and auxiliary
// sub-trees first), each node releasing its natives in reverse
// allocation order. Calling Dispose again is a no-op.
func (t *Tree) Dispose() {
	if t == nil || t.disposed {
		return
	}
	t.disposed = true
	t.release(t.root)
	for id, ns := range t.natives {
		if len(ns) != 0 { // not reachable from the root: should not happen
			logx.L().Warn("svgdraw: releasing orphan natives", "node", t.nodes[id].String())
			t.release(NodeID(id))
		}
	}
}

func (t *Tree) release(id NodeID) {
	if id == NoNode {
		return
	}
	d := t.nodes[id]
	for _, c := range d.Children {
		t.release(c)
	}
	for _, m := range d.Markers {
		t.release(m)
	}
	t.release(d.ClipPath)
	t.release(d.Mask)
	for _, aux := range d.patterns {
		t.release(aux)
	}

	ns := t.natives[id]
	for i := len(ns) - 1; i >= 0; i-- {
		ns[i].Release()
	}
	t.natives[id] = nil
	d.nPath, d.nFill, d.nStroke, d.nOpacity, d.nFilter, d.nMask, d.nImage = nil, nil, nil, nil, nil, nil, nil
}
