package svgpath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func fp(x, y float64) fixed.Point26_6 { return toFixedP(x, y) }

func TestParsePathData(t *testing.T) {
	for _, test := range []struct {
		d        string
		expected Path
	}{
		{"M10 10 L20 10 Z", Path{MoveTo(fp(10, 10)), LineTo(fp(20, 10)), Close{}}},
		{"m10 10 l10 0 z", Path{MoveTo(fp(10, 10)), LineTo(fp(20, 10)), Close{}}},
		{"M0 0 H10 V10 h-10 z", Path{
			MoveTo(fp(0, 0)), LineTo(fp(10, 0)), LineTo(fp(10, 10)), LineTo(fp(0, 10)), Close{},
		}},
		// implicit lineto
		{"M0 0 10 0 10 10", Path{MoveTo(fp(0, 0)), LineTo(fp(10, 0)), LineTo(fp(10, 10))}},
		{"m1 1 2 2", Path{MoveTo(fp(1, 1)), LineTo(fp(3, 3))}},
		// compact numbers
		{"M0,0L.5.5", Path{MoveTo(fp(0, 0)), LineTo(fp(0.5, 0.5))}},
		{"M0 0Q5 5 10 0T20 0", Path{
			MoveTo(fp(0, 0)), QuadTo{fp(5, 5), fp(10, 0)}, QuadTo{fp(15, -5), fp(20, 0)},
		}},
		{"M0 0 C0 10 10 10 10 0 S20 -10 20 0", Path{
			MoveTo(fp(0, 0)),
			CubicTo{fp(0, 10), fp(10, 10), fp(10, 0)},
			CubicTo{fp(10, -10), fp(20, -10), fp(20, 0)},
		}},
		// a zero radius arc is a line
		{"M0 0 A0 10 0 0 1 20 0", Path{MoveTo(fp(0, 0)), LineTo(fp(20, 0))}},
		// lineto after closepath restarts at the subpath start
		{"M5 5 L10 5 Z L5 10", Path{
			MoveTo(fp(5, 5)), LineTo(fp(10, 5)), Close{}, MoveTo(fp(5, 5)), LineTo(fp(5, 10)),
		}},
		{"", nil},
	} {
		got, err := ParsePathData(test.d)
		assert.NoError(t, err, test.d)
		assert.Equal(t, test.expected, got, test.d)
	}
}

func TestParsePathDataErrors(t *testing.T) {
	for _, d := range []string{
		"L10 10",
		"M0 0 L10",
		"M0 0 X10",
		"M0 0 A10 10 0 2 1 10 10",
	} {
		_, err := ParsePathData(d)
		assert.Error(t, err, d)
	}

	// the valid prefix is kept
	p, err := ParsePathData("M0 0 L10 0 L10")
	assert.Error(t, err)
	assert.Equal(t, Path{MoveTo(fp(0, 0)), LineTo(fp(10, 0))}, p)
}

func TestArc(t *testing.T) {
	p, err := ParsePathData("M0 0 A10 10 0 0 1 20 0")
	require.NoError(t, err)
	require.True(t, len(p) > 2)
	last, ok := p[len(p)-1].(CubicTo)
	require.True(t, ok)
	assert.Equal(t, fp(20, 0), last[2])

	// half circle of radius 10 with sweep = 1 goes through y = -10
	// (positive angle direction)
	b := p.Bounds()
	assert.InDelta(t, 0, b.X, 0.1)
	assert.InDelta(t, 20, b.W, 0.1)
	assert.InDelta(t, 10, b.H, 0.2)

	// radii too small are scaled up
	p, err = ParsePathData("M0 0 A1 1 0 0 1 20 0")
	require.NoError(t, err)
	assert.InDelta(t, 10, p.Bounds().H, 0.2)
}

func TestParseNumbers(t *testing.T) {
	fs, err := ParseNumbers(" 1,2 3-4 .5e1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, -4, 5}, fs)

	_, err = ParseNumbers("1 a")
	assert.Error(t, err)

	f, err := ParseNumber(" 4.5 ")
	assert.NoError(t, err)
	assert.Equal(t, 4.5, f)
	_, err = ParseNumber("4 5")
	assert.Error(t, err)
}

func TestParseTransform(t *testing.T) {
	for _, test := range []struct {
		transform  string
		x, y       float64
		xExp, yExp float64
	}{
		{"", 1, 1, 1, 1},
		{"translate(10,20) scale(2)", 1, 1, 12, 22},
		{"scale(2)", 1, 1, 2, 2},
		{"scale(2, 3)", 1, 1, 2, 3},
		{"translate(5)", 1, 1, 6, 1},
		{"rotate(90)", 1, 0, 0, 1},
		{"rotate(90 10 10)", 10, 10, 10, 10},
		{"rotate(90 10 10)", 11, 10, 10, 11},
		{"matrix(1 0 0 1 3 4)", 0, 0, 3, 4},
		{"skewX(45)", 0, 1, 1, 1},
		{" translate(1 2),scale(2) ", 0, 0, 1, 2},
	} {
		m, err := ParseTransform(test.transform)
		require.NoError(t, err, test.transform)
		x, y := m.Transform(test.x, test.y)
		assert.InDelta(t, test.xExp, x, 1e-9, test.transform)
		assert.InDelta(t, test.yExp, y, 1e-9, test.transform)
	}

	for _, bad := range []string{
		"foo(1)", "scale(1 2 3)", "translate()",
		"scale(2", "translate(10", "matrix(1 0 0 1 0 0", "scale(2) x", "scale(2) translate",
		"scale 2)", "(2)",
	} {
		_, err := ParseTransform(bad)
		assert.Error(t, err, bad)
	}
}

func TestMatrix(t *testing.T) {
	m := Identity.Translate(4, 5).Rotate(0.3).Scale(2, 3)
	inv := m.Invert()
	id := m.Mult(inv)
	for _, v := range [...][2]float64{{id.A, 1}, {id.B, 0}, {id.C, 0}, {id.D, 1}, {id.E, 0}, {id.F, 0}} {
		assert.InDelta(t, v[1], v[0], 1e-9)
	}

	assert.Equal(t, Identity, Matrix2D{}.Invert())
	assert.InDelta(t, math.Sqrt(6), m.ScaleFactor(), 1e-9)

	r := Identity.Translate(10, 0).Scale(2, 2).MapRect(Rect{0, 0, 5, 5})
	assert.Equal(t, Rect{10, 0, 10, 10}, r)
}

func TestRect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{5, 5, 10, 10}
	assert.Equal(t, Rect{0, 0, 15, 15}, a.Union(b))
	assert.Equal(t, a, a.Union(Rect{}))
	assert.Equal(t, Rect{5, 5, 5, 5}, a.Intersect(b))
	assert.True(t, a.Intersect(Rect{20, 20, 1, 1}).IsZero())
	assert.True(t, Rect{0, 0, 10, 0}.IsEmpty())
	assert.True(t, a.Contains(10, 0))
	assert.Equal(t, Rect{1, 2, 3, 4}, RectFromPoints(4, 6, 1, 2))
}

func TestBounds(t *testing.T) {
	p, err := ParsePathData("M0 0 C0 10 10 10 10 0")
	require.NoError(t, err)
	b := p.Bounds()
	assert.InDelta(t, 0, b.X, 1e-9)
	assert.InDelta(t, 0, b.Y, 1e-9)
	assert.InDelta(t, 10, b.W, 1e-9)
	assert.InDelta(t, 7.5, b.H, 1e-9)

	p, _ = ParsePathData("M0 0 Q10 10 20 0")
	assert.InDelta(t, 5, p.Bounds().H, 1e-9)

	assert.True(t, Path{MoveTo(fp(3, 3))}.Bounds().IsZero())
	assert.True(t, Path(nil).Bounds().IsZero())
}

func TestShapes(t *testing.T) {
	assert.Nil(t, RectPath(0, 0, 0, 10))
	assert.Nil(t, RoundRectPath(0, 0, 10, -1, 2, 2))
	assert.Nil(t, EllipsePath(5, 5, 0, 5))
	assert.Nil(t, LinePath(1, 1, 1, 1))
	assert.Nil(t, PolyPath([]float64{1, 2, 3}, false))

	const eps = 1. / 64
	for _, test := range []struct {
		path Path
		box  Rect
	}{
		{RectPath(1, 2, 3, 4), Rect{1, 2, 3, 4}},
		{RoundRectPath(0, 0, 10, 20, 2, 50), Rect{0, 0, 10, 20}},
		{EllipsePath(10, 10, 5, 3), Rect{5, 7, 10, 6}},
		{LinePath(0, 0, 4, 2), Rect{0, 0, 4, 2}},
		{PolyPath([]float64{0, 0, 5, 5, 10, 0, 99}, true), Rect{0, 0, 10, 5}},
	} {
		b := test.path.Bounds()
		assert.InDelta(t, test.box.X, b.X, eps)
		assert.InDelta(t, test.box.Y, b.Y, eps)
		assert.InDelta(t, test.box.W, b.W, eps)
		assert.InDelta(t, test.box.H, b.H, eps)
	}

	// a zero radius gives sharp corners
	assert.Equal(t, RectPath(0, 0, 10, 10), RoundRectPath(0, 0, 10, 10, 0, 3))
}

func TestIsEmpty(t *testing.T) {
	p, _ := ParsePathData("M10 10 L10 10")
	assert.True(t, p.IsEmpty())
	p, _ = ParsePathData("M10 10")
	assert.True(t, p.IsEmpty())
	p, _ = ParsePathData("M10 10 L10 11")
	assert.False(t, p.IsEmpty())
	assert.True(t, Path(nil).IsEmpty())
}

type recordAdder struct{ ops []string }

func (r *recordAdder) Start(a fixed.Point26_6)            { r.ops = append(r.ops, "M") }
func (r *recordAdder) Line(b fixed.Point26_6)             { r.ops = append(r.ops, "L") }
func (r *recordAdder) QuadBezier(b, c fixed.Point26_6)    { r.ops = append(r.ops, "Q") }
func (r *recordAdder) CubeBezier(b, c, d fixed.Point26_6) { r.ops = append(r.ops, "C") }
func (r *recordAdder) Stop(closeLoop bool) {
	if closeLoop {
		r.ops = append(r.ops, "Z")
	} else {
		r.ops = append(r.ops, "-")
	}
}

func TestAddTo(t *testing.T) {
	p, _ := ParsePathData("M0 0 L1 1 Z M2 2 Q3 3 4 4")
	var r recordAdder
	p.AddTo(&r, Identity)
	assert.Equal(t, []string{"-", "M", "L", "Z", "-", "M", "Q", "-"}, r.ops)

	tr := p.Transform(Identity.Translate(1, 0))
	assert.Equal(t, MoveTo(fp(1, 0)), tr[0])
	assert.Equal(t, MoveTo(fp(0, 0)), p[0]) // not modified
}

func TestVertices(t *testing.T) {
	p, _ := ParsePathData("M0 0 L10 0 L10 10")
	vs := p.Vertices()
	require.Len(t, vs, 3)
	assert.InDelta(t, 0, vs[0].Angle, 1e-9)
	assert.InDelta(t, math.Pi/4, vs[1].Angle, 1e-9)
	assert.InDelta(t, math.Pi/2, vs[2].Angle, 1e-9)
	assert.Equal(t, Vertex{X: 10, Y: 10, Angle: vs[2].Angle}, vs[2])

	// closed triangle: the closing vertex is reported
	p, _ = ParsePathData("M0 0 L10 0 L10 10 Z")
	vs = p.Vertices()
	require.Len(t, vs, 4)
	assert.Equal(t, 0., vs[3].X)
	assert.Equal(t, 0., vs[3].Y)
}

func TestFlatten(t *testing.T) {
	polys := RectPath(0, 0, 10, 10).Flatten(4)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0], 4)

	p, _ := ParsePathData("M0 0 Q5 5 10 0 M20 20")
	polys = p.Flatten(8)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0], 9)
	assert.Equal(t, Point{10, 0}, polys[0][8])
}

func TestFillRule(t *testing.T) {
	assert.Equal(t, EvenOdd, ParseFillRule(" evenodd"))
	assert.Equal(t, NonZero, ParseFillRule("inherit"))
	assert.Equal(t, "evenodd", EvenOdd.String())
}
