package svgpath

import (
	"math"
	"strings"
)

func readTransformAttr(m1 Matrix2D, k string, points []float64) (Matrix2D, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			m1 = m1.Rotate(points[0] * math.Pi / 180)
		} else if ln == 3 {
			m1 = m1.Translate(points[1], points[2]).
				Rotate(points[0]*math.Pi/180).
				Translate(-points[1], -points[2])
		} else {
			return m1, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m1 = m1.Translate(points[0], 0)
		} else if ln == 2 {
			m1 = m1.Translate(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m1 = m1.SkewX(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m1 = m1.SkewY(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m1 = m1.Scale(points[0], points[0])
		} else if ln == 2 {
			m1 = m1.Scale(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m1 = m1.Mult(Matrix2D{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5]})
		} else {
			return m1, errParamMismatch
		}
	default:
		return m1, errParamMismatch
	}
	return m1, nil
}

// ParseTransform composes the transform list `v` (as found in
// `transform`, `gradientTransform` or `patternTransform` attributes),
// from left to right, into one matrix.
// An empty list gives the Identity.
func ParseTransform(v string) (Matrix2D, error) {
	m1 := Identity
	rest := v
	for {
		rest = strings.TrimLeft(rest, ", \t\n\r")
		if rest == "" {
			return m1, nil
		}
		name, tail, ok := strings.Cut(rest, "(")
		if !ok {
			return m1, errParamMismatch // text after the last transformation
		}
		args, after, ok := strings.Cut(tail, ")")
		if !ok || strings.TrimSpace(args) == "" {
			return m1, errParamMismatch // unclosed or empty transformation
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, ",() \t\n\r") {
			return m1, errParamMismatch
		}
		points, err := ParseNumbers(args)
		if err != nil {
			return m1, err
		}
		m1, err = readTransformAttr(m1, strings.ToLower(name), points)
		if err != nil {
			return m1, err
		}
		rest = after
	}
}
