package svgdraw

import (
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpath"
)

// Tree is the result of Build: an arena of Drawable nodes,
// owning the native resources allocated for them.
//
// A Tree must be painted and disposed from one goroutine at a time.
type Tree struct {
	nodes   []*Drawable
	natives [][]Native // per node, in allocation order
	root    NodeID

	backend  Backend
	disposed bool
}

func (t *Tree) newNode(kind Kind, el *svgdom.Element, parent NodeID) *Drawable {
	d := &Drawable{
		ID:         NodeID(len(t.nodes)),
		Kind:       kind,
		Element:    el,
		Parent:     parent,
		ClipPath:   NoNode,
		Mask:       NoNode,
		transform:  svgpath.Identity,
		PaintOrder: DefaultPaintOrder,
	}
	t.nodes = append(t.nodes, d)
	t.natives = append(t.natives, nil)
	return d
}

// Root returns the root node. It is never nil, but may be not drawable.
func (t *Tree) Root() *Drawable { return t.nodes[t.root] }

// Node returns the node `id`, or nil for NoNode.
func (t *Tree) Node(id NodeID) *Drawable {
	if id == NoNode {
		return nil
	}
	return t.nodes[id]
}

// Len returns the number of nodes, including non drawable
// and auxiliary ones.
func (t *Tree) Len() int { return len(t.nodes) }

// Walk calls fn for `id` and its children, in document order.
// Markers and auxiliary sub-trees are not visited.
func (t *Tree) Walk(id NodeID, fn func(d *Drawable)) {
	if id == NoNode {
		return
	}
	d := t.nodes[id]
	fn(d)
	for _, c := range d.Children {
		t.Walk(c, fn)
	}
}

// IsDrawable returns true if the root of the tree is drawable.
func (t *Tree) IsDrawable() bool { return t.Root().IsDrawable }

// Bounds returns the bounds of the root, in the coordinates
// given to Build.
func (t *Tree) Bounds() svgpath.Rect { return t.Root().TransformedBounds() }

// parentOf returns the next element on the inheritance chain:
// the element of the parent node, or the DOM parent at the root of a sub-tree.
func (t *Tree) parentOf(el *svgdom.Element, node *Drawable) (*svgdom.Element, *Drawable) {
	if node != nil && node.Parent != NoNode {
		p := t.nodes[node.Parent]
		return p.Element, p
	}
	return el.Parent, nil
}

// lookup returns the value of the property `name` for `d`,
// walking up the parents for inherited properties and for
// explicit `inherit` values.
func (t *Tree) lookup(d *Drawable, name string, inherited bool) (string, bool) {
	el, node := d.Element, d
	for el != nil {
		v, ok := el.Attrs[name]
		if ok && v != "inherit" {
			return v, true
		}
		if !ok && !inherited {
			return "", false
		}
		el, node = t.parentOf(el, node)
	}
	return "", false
}
