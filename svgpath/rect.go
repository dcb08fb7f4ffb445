package svgpath

import "math"

// Rect defines an axis aligned bounding box, such as a viewport
// or a path extent.
type Rect struct{ X, Y, W, H float64 }

// RectFromPoints returns the rectangle spanned by the two corners.
func RectFromPoints(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X: math.Min(x0, x1), Y: math.Min(y0, y1),
		W: math.Abs(x1 - x0), H: math.Abs(y1 - y0),
	}
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool { return !(r.W > 0 && r.H > 0) }

// IsZero returns true for the zero value.
func (r Rect) IsZero() bool { return r == Rect{} }

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Union returns the smallest rectangle containing r and o.
// Zero rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsZero() {
		return o
	}
	if o.IsZero() {
		return r
	}
	minX, minY := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	maxX, maxY := math.Max(r.Right(), o.Right()), math.Max(r.Bottom(), o.Bottom())
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Intersect returns the common part of r and o,
// or the zero Rect if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	minX, minY := math.Max(r.X, o.X), math.Max(r.Y, o.Y)
	maxX, maxY := math.Min(r.Right(), o.Right()), math.Min(r.Bottom(), o.Bottom())
	if maxX <= minX || maxY <= minY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Contains returns true if the point is inside r (borders included).
func (r Rect) Contains(x, y float64) bool {
	return r.X <= x && x <= r.Right() && r.Y <= y && y <= r.Bottom()
}

// ToPath returns the closed rectangle path.
func (r Rect) ToPath() Path {
	return RectPath(r.X, r.Y, r.W, r.H)
}
