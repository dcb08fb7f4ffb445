package svgpath

import "golang.org/x/image/math/fixed"

// Point is a point in user space
type Point struct{ X, Y float64 }

// Flatten approximates the path by polygons, one per subpath,
// curves being split in `steps` linear pieces.
// Subpaths with less than 2 points are dropped.
func (p Path) Flatten(steps int) [][]Point {
	if steps < 1 {
		steps = 1
	}
	var (
		out     [][]Point
		poly    []Point
		current fixed.Point26_6
	)
	flush := func() {
		if len(poly) >= 2 {
			out = append(out, poly)
		}
		poly = nil
	}
	addCurve := func(curve bezier) {
		for i := 1; i <= steps; i++ {
			x, y := curve.evaluateCurve(float64(i) / float64(steps))
			poly = append(poly, Point{x, y})
		}
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			flush()
			current = fixed.Point26_6(op)
			x, y := fixedTof(current)
			poly = append(poly, Point{x, y})
		case LineTo:
			current = fixed.Point26_6(op)
			x, y := fixedTof(current)
			poly = append(poly, Point{x, y})
		case QuadTo:
			addCurve(quadBezier{current, op[0], op[1]})
			current = op[1]
		case CubicTo:
			addCurve(cubicBezier{current, op[0], op[1], op[2]})
			current = op[2]
		case Close:
			if len(poly) != 0 {
				current = toFixedP(poly[0].X, poly[0].Y)
			}
			flush()
		}
	}
	flush()
	return out
}
