package svgpaint

import "github.com/benoitkugler/svgtree/svgpath"

// Picture is a recorded drawing, used as pattern content.
// Backends which support patterns type-assert the concrete
// picture type they know how to replay.
type Picture interface {
	// CullRect returns the area the picture draws in,
	// in its own coordinates.
	CullRect() svgpath.Rect
}

// Pattern is a resolved pattern paint server: the Content
// is repeated on a grid of Tile cells, the whole
// being mapped to user space by Transform.
type Pattern struct {
	Tile      svgpath.Rect
	Transform svgpath.Matrix2D
	Content   Picture
}
