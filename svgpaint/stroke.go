package svgpaint

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Miter JoinMode = iota // SVG initial value
	Round
	Bevel
	MiterClip // New in SVG2
	Arc       // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// ParseJoinMode reads a `stroke-linejoin` value.
func ParseJoinMode(v string) (JoinMode, bool) {
	switch v {
	case "miter":
		return Miter, true
	case "miter-clip":
		return MiterClip, true
	case "arc-clip":
		return ArcClip, true
	case "round":
		return Round, true
	case "arc":
		return Arc, true
	case "bevel":
		return Bevel, true
	}
	return Miter, false
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota // SVG initial value
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

// ParseCapMode reads a `stroke-linecap` value.
func ParseCapMode(v string) (CapMode, bool) {
	switch v {
	case "butt":
		return ButtCap, true
	case "round":
		return RoundCap, true
	case "square":
		return SquareCap, true
	}
	return ButtCap, false
}

// StrokeOptions parametrize the stroking style of a path.
// Lengths are expressed in the user space of the path.
type StrokeOptions struct {
	Width      float64
	MiterLimit float64
	Join       JoinMode
	Cap        CapMode

	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// DefaultStrokeOptions are the SVG initial values.
var DefaultStrokeOptions = StrokeOptions{Width: 1, MiterLimit: 4}

// NormalizeDash applies the SVG rules on dash arrays:
// an odd list is repeated, and a list with a negative
// value or summing to zero means a solid line (nil).
func NormalizeDash(dash []float64) []float64 {
	if len(dash) == 0 {
		return nil
	}
	var sum float64
	for _, d := range dash {
		if d < 0 {
			return nil
		}
		sum += d
	}
	if sum == 0 {
		return nil
	}
	out := append([]float64(nil), dash...)
	if len(out)%2 != 0 {
		out = append(out, dash...)
	}
	return out
}
