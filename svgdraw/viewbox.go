package svgdraw

import (
	"math"
	"strings"

	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpath"
)

// AspectRatio is a parsed `preserveAspectRatio` value.
type AspectRatio struct {
	None bool
	// AlignX and AlignY are 0 for min, 0.5 for mid and 1 for max.
	AlignX, AlignY float64
	Slice          bool
}

// DefaultAspectRatio is `xMidYMid meet`.
var DefaultAspectRatio = AspectRatio{AlignX: 0.5, AlignY: 0.5}

// ParseAspectRatio reads a `preserveAspectRatio` value, returning
// the default for invalid input.
func ParseAspectRatio(v string) AspectRatio {
	fields := strings.Fields(v)
	if len(fields) != 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return DefaultAspectRatio
	}
	out := DefaultAspectRatio
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.Slice = true
		default:
			return DefaultAspectRatio
		}
	}
	align := fields[0]
	if align == "none" {
		out.None = true
		return out
	}
	if len(align) != 8 || align[0] != 'x' || align[4] != 'Y' {
		return DefaultAspectRatio
	}
	pos := func(s string) (float64, bool) {
		switch s {
		case "Min":
			return 0, true
		case "Mid":
			return 0.5, true
		case "Max":
			return 1, true
		}
		return 0, false
	}
	var okX, okY bool
	out.AlignX, okX = pos(align[1:4])
	out.AlignY, okY = pos(align[5:8])
	if !okX || !okY {
		return DefaultAspectRatio
	}
	return out
}

func aspectRatio(el *svgdom.Element) AspectRatio {
	return ParseAspectRatio(el.Attrs["preserveAspectRatio"])
}

// viewBoxTransform maps `viewBox` onto the (0, 0, width, height) viewport.
func (ar AspectRatio) viewBoxTransform(viewBox svgpath.Rect, width, height float64) svgpath.Matrix2D {
	sx, sy := width/viewBox.W, height/viewBox.H
	if !ar.None {
		s := math.Min(sx, sy)
		if ar.Slice {
			s = math.Max(sx, sy)
		}
		sx, sy = s, s
	}
	tx := (width - viewBox.W*sx) * ar.AlignX
	ty := (height - viewBox.H*sy) * ar.AlignY
	if ar.None {
		tx, ty = 0, 0
	}
	return svgpath.Identity.Translate(tx, ty).Scale(sx, sy).Translate(-viewBox.X, -viewBox.Y)
}
