package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D represents an SVG style matrix
// mapping (x, y) to (A*x + C*y + E, B*x + D*y + F)
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity matrix
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Transform multiples the input vector by matrix m and outputs the results vector
// components.
func (m Matrix2D) Transform(x1, y1 float64) (x2, y2 float64) {
	x2 = x1*m.A + y1*m.C + m.E
	y2 = x1*m.B + y1*m.D + m.F
	return
}

// TransformVector is a modidifed version of Transform that ignores the
// translation components.
func (m Matrix2D) TransformVector(x1, y1 float64) (x2, y2 float64) {
	x2 = x1*m.A + y1*m.C
	y2 = x1*m.B + y1*m.D
	return
}

// TFixed transforms a fixed.Point26_6 by the matrix
func (m Matrix2D) TFixed(a fixed.Point26_6) fixed.Point26_6 {
	x, y := m.Transform(fixedTof(a))
	return toFixedP(x, y)
}

// Mult returns a * b : applying the result is
// the same as applying b, then a.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F}
}

// Determinant returns the determinant of the linear part of m.
func (m Matrix2D) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse matrix, or Identity if m is not invertible.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity
	}
	return Matrix2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}
}

// IsIdentity returns true if m is exactly the identity matrix.
func (m Matrix2D) IsIdentity() bool { return m == Identity }

// Scale matrix in x and y dimensions
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{
		A: x,
		B: 0,
		C: 0,
		D: y,
		E: 0,
		F: 0})
}

// SkewY skews the matrix in the Y dimension
func (m Matrix2D) SkewY(theta float64) Matrix2D {
	return m.Mult(Matrix2D{
		A: 1,
		B: math.Tan(theta),
		C: 0,
		D: 1,
		E: 0,
		F: 0})
}

// SkewX skews the matrix in the X dimension
func (m Matrix2D) SkewX(theta float64) Matrix2D {
	return m.Mult(Matrix2D{
		A: 1,
		B: 0,
		C: math.Tan(theta),
		D: 1,
		E: 0,
		F: 0})
}

// Translate translates the matrix to the x , y point
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{
		A: 1,
		B: 0,
		C: 0,
		D: 1,
		E: x,
		F: y})
}

// Rotate rotate the matrix by theta (in radians)
func (m Matrix2D) Rotate(theta float64) Matrix2D {
	sin, cos := math.Sincos(theta)
	return m.Mult(Matrix2D{
		A: cos,
		B: sin,
		C: -sin,
		D: cos,
		E: 0,
		F: 0})
}

// MapRect returns the axis aligned bounding box of
// the rectangle `r` transformed by `m`.
func (m Matrix2D) MapRect(r Rect) Rect {
	if m.IsIdentity() {
		return r
	}
	x0, y0 := m.Transform(r.X, r.Y)
	x1, y1 := m.Transform(r.X+r.W, r.Y)
	x2, y2 := m.Transform(r.X+r.W, r.Y+r.H)
	x3, y3 := m.Transform(r.X, r.Y+r.H)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// ScaleFactor returns the mean scaling applied by m, used to
// convert lengths such as stroke widths to device space.
func (m Matrix2D) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Determinant()))
}
