// Given a parsed SVG document, implements how to
// draw it on screen.
//
// The document is first converted into a Tree of Drawable nodes
// (see Builder), with every attribute resolved. The tree is then painted
// onto a Canvas, as many times as needed, and finally disposed.
//
// This requires a backend implementing the actual draw operations,
// such as a rasterizer to output .png images or a pdf writer.
package svgdraw

import (
	"image"

	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// Native is an object allocated by a Backend.
// Release is called exactly once, when the tree owning it is disposed.
type Native interface {
	Release()
}

// Backend allocates the native objects used by a Canvas.
// Allocations only happen during Build, for drawable nodes.
type Backend interface {
	// NewPath converts a path, expressed in the local coordinates
	// of the node.
	NewPath(p svgpath.Path, rule svgpath.FillRule) (Native, error)

	// NewPaint converts a paint descriptor. The descriptor
	// must not be modified afterwards.
	NewPaint(p *svgpaint.Paint) (Native, error)

	// NewImage converts a decoded raster image.
	NewImage(img image.Image) (Native, error)
}

// Canvas knows how to do the actual draw operations
// but doesn't need any SVG knowledge.
// It is only given natives allocated by the Backend it is used with.
//
// The canvas maintains a stack of states (transform and clip),
// pushed by Save and SaveLayer and popped by Restore.
type Canvas interface {
	Save()
	// SaveLayer pushes the state and redirects drawing
	// to a new transparent layer, composited back with `paint` (if not nil)
	// on the matching Restore.
	SaveLayer(paint Native)
	Restore()

	// Concat multiplies the current transform by `m`, so that `m`
	// is applied first.
	Concat(m svgpath.Matrix2D)

	// ClipRect and ClipPath intersect the current clip with the given
	// area, expressed in current coordinates.
	ClipRect(r svgpath.Rect, antialias bool)
	ClipPath(path Native, antialias bool)

	DrawPath(path Native, paint Native)
	// DrawImage draws the `src` part of the image in the `dst` rectangle.
	// `paint` may be nil.
	DrawImage(img Native, src, dst svgpath.Rect, paint Native)
}
