package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Vertex is a point where a marker may be placed.
type Vertex struct {
	X, Y float64
	// Angle is the direction (in radians) a marker with
	// orient="auto" must follow at this point.
	Angle float64
}

type vertexBuilder struct {
	x, y          float64
	inAngle       float64
	outAngle      float64
	hasIn, hasOut bool
}

func (v vertexBuilder) angle() float64 {
	switch {
	case v.hasIn && v.hasOut:
		return bisector(v.inAngle, v.outAngle)
	case v.hasIn:
		return v.inAngle
	case v.hasOut:
		return v.outAngle
	default:
		return 0
	}
}

// bisector returns the mean direction of the two angles
func bisector(in, out float64) float64 {
	a := (in + out) / 2
	if math.Abs(out-in) > math.Pi {
		a += math.Pi
	}
	return a
}

func direction(from, to fixed.Point26_6) (float64, bool) {
	if from == to {
		return 0, false
	}
	x0, y0 := fixedTof(from)
	x1, y1 := fixedTof(to)
	return math.Atan2(y1-y0, x1-x0), true
}

// firstDirection returns the direction of the first non degenerate
// leg of the polygon pts
func firstDirection(pts ...fixed.Point26_6) (float64, bool) {
	for i := 1; i < len(pts); i++ {
		if a, ok := direction(pts[0], pts[i]); ok {
			return a, true
		}
	}
	return 0, false
}

// lastDirection is the counterpart of firstDirection, at the end of pts
func lastDirection(pts ...fixed.Point26_6) (float64, bool) {
	end := pts[len(pts)-1]
	for i := len(pts) - 2; i >= 0; i-- {
		if a, ok := direction(pts[i], end); ok {
			return a, true
		}
	}
	return 0, false
}

// Vertices returns the marker positions of the path: the start
// of each subpath and the end of each segment, with
// their orientation.
func (p Path) Vertices() []Vertex {
	var (
		vs         []vertexBuilder
		current    fixed.Point26_6
		startIndex int
	)
	addSegment := func(pts ...fixed.Point26_6) {
		if len(vs) != 0 {
			last := &vs[len(vs)-1]
			if !last.hasOut {
				last.outAngle, last.hasOut = firstDirection(pts...)
			}
		}
		in, hasIn := lastDirection(pts...)
		end := pts[len(pts)-1]
		x, y := fixedTof(end)
		vs = append(vs, vertexBuilder{x: x, y: y, inAngle: in, hasIn: hasIn})
		current = end
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			current = fixed.Point26_6(op)
			x, y := fixedTof(current)
			startIndex = len(vs)
			vs = append(vs, vertexBuilder{x: x, y: y})
		case LineTo:
			addSegment(current, fixed.Point26_6(op))
		case QuadTo:
			addSegment(current, op[0], op[1])
		case CubicTo:
			addSegment(current, op[0], op[1], op[2])
		case Close:
			if startIndex >= len(vs) {
				continue
			}
			start := vs[startIndex]
			startP := toFixedP(start.x, start.y)
			if current != startP {
				addSegment(current, startP)
			}
			// the closing vertex joins the last segment and the first one
			last := &vs[len(vs)-1]
			last.outAngle, last.hasOut = start.outAngle, start.hasOut
			first := &vs[startIndex]
			first.inAngle, first.hasIn = last.inAngle, last.hasIn
		}
	}

	out := make([]Vertex, len(vs))
	for i, v := range vs {
		out[i] = Vertex{X: v.x, Y: v.y, Angle: v.angle()}
	}
	return out
}
