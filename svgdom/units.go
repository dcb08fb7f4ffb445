package svgdom

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// Unit is the unit of a length.
type Unit uint8

const (
	UnitNone Unit = iota // user units
	UnitPx
	UnitPt
	UnitPc
	UnitMm
	UnitCm
	UnitIn
	UnitEm
	UnitEx
	UnitPercent
)

var unitSuffixes = [...]string{
	UnitPx: "px", UnitPt: "pt", UnitPc: "pc", UnitMm: "mm",
	UnitCm: "cm", UnitIn: "in", UnitEm: "em", UnitEx: "ex", UnitPercent: "%",
}

// absolute units, in user units (96 dpi)
var unitFactors = [...]float64{
	UnitNone: 1, UnitPx: 1, UnitPt: 96. / 72, UnitPc: 16,
	UnitMm: 96 / 25.4, UnitCm: 96 / 2.54, UnitIn: 96,
}

// Length is a number with a unit.
type Length struct {
	Value float64
	Unit  Unit
}

// ParseLength reads a length like `12`, `1.5em` or `50%`.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	b := []byte(s)
	f, n := strconv.ParseFloat(b)
	if n == 0 {
		return Length{}, fmt.Errorf("invalid length %q", s)
	}
	suffix := strings.ToLower(s[n:])
	if suffix == "" {
		return Length{Value: f}, nil
	}
	for u, su := range unitSuffixes {
		if su != "" && su == suffix {
			return Length{Value: f, Unit: Unit(u)}, nil
		}
	}
	return Length{}, fmt.Errorf("invalid unit in length %q", s)
}

// Resolve returns the length in user units. Percentages are
// relative to `reference`, font relative units to `fontSize`.
func (l Length) Resolve(reference, fontSize float64) float64 {
	switch l.Unit {
	case UnitPercent:
		return l.Value * reference / 100
	case UnitEm:
		return l.Value * fontSize
	case UnitEx:
		return l.Value * fontSize / 2
	default:
		return l.Value * unitFactors[l.Unit]
	}
}

// ParseLengthList reads a list of lengths separated by
// commas and/or spaces, as used by `stroke-dasharray` or text positions.
func ParseLengthList(s string) ([]Length, error) {
	fields := SplitList(s)
	out := make([]Length, len(fields))
	for i, f := range fields {
		l, err := ParseLength(f)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

// ParseFraction reads a number, or a percentage which is
// divided by 100. The value is not clamped.
func ParseFraction(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, n := strconv.ParseFloat([]byte(v))
	if n == 0 || n != len(v) {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return f / d, nil
}

// SplitList returns a list of strings after splitting the
// input on comma and space delimiters.
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
