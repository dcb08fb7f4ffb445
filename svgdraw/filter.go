package svgdraw

import (
	"math"
	"strings"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// filterBuilder resolves the primitives of one filter element.
type filterBuilder struct {
	s       *buildState
	bounds  svgpath.Rect
	bboxPrm bool // primitiveUnits="objectBoundingBox"

	results map[string]svgpaint.ImageFilter
	last    svgpaint.ImageFilter
}

// resolveFilter builds the effect chain referenced by `filter`.
// Invalid references and empty filters are ignored.
func (s *buildState) resolveFilter(d *Drawable, ctx buildContext) (*svgpaint.Paint, svgpath.Rect) {
	target := s.referencedElement(d.Element, "filter", "filter")
	if target == nil {
		return nil, svgpath.Rect{}
	}
	bounds := d.geometryBounds
	bbox := isObjectBoundingBox(target, "filterUnits", true)
	if bbox && bounds.IsEmpty() {
		return nil, svgpath.Rect{}
	}
	region := s.unitRect(detached(target), ctx, bbox, bounds, [4]string{"-10%", "-10%", "120%", "120%"})
	if region.IsEmpty() {
		return nil, svgpath.Rect{}
	}

	fb := filterBuilder{
		s:       s,
		bounds:  bounds,
		bboxPrm: isObjectBoundingBox(target, "primitiveUnits", false),
		results: make(map[string]svgpaint.ImageFilter),
	}
	for _, prim := range target.Children {
		if prim.IsText() {
			continue
		}
		out := fb.primitive(prim)
		if name := strings.TrimSpace(prim.Attrs["result"]); name != "" {
			fb.results[name] = out
		}
		fb.last = out
	}
	if fb.last == nil { // nothing to apply
		return nil, svgpath.Rect{}
	}
	return svgpaint.NewFilterPaint(fb.last), region
}

// input resolves the `in` or `in2` attribute. The result of the previous
// primitive is used by default and for dangling names.
func (fb *filterBuilder) input(prim *svgdom.Element, attr string) svgpaint.ImageFilter {
	switch name := strings.TrimSpace(prim.Attrs[attr]); name {
	case "":
		return fb.last
	case "SourceGraphic":
		return nil
	case "SourceAlpha":
		return &svgpaint.ColorFilterImage{Filter: svgpaint.NewColorMatrix(svgpaint.SourceAlphaMatrix)}
	default:
		if r, ok := fb.results[name]; ok {
			return r
		}
		logx.L().Debug("svgdraw: unknown filter input", "element", prim.String(), "input", name)
		return fb.last
	}
}

// numbers parses a list of one or two numbers, the second defaulting
// to the first.
func numbers(v string, def float64) (float64, float64, bool) {
	if strings.TrimSpace(v) == "" {
		return def, def, true
	}
	fs, err := svgpath.ParseNumbers(v)
	if err != nil || len(fs) == 0 || len(fs) > 2 {
		return 0, 0, false
	}
	if len(fs) == 1 {
		return fs[0], fs[0], true
	}
	return fs[0], fs[1], true
}

// scale converts primitive lengths to user units.
func (fb *filterBuilder) scale(x, y float64) (float64, float64) {
	if fb.bboxPrm {
		return x * fb.bounds.W, y * fb.bounds.H
	}
	return x, y
}

func (fb *filterBuilder) primitive(prim *svgdom.Element) svgpaint.ImageFilter {
	in := fb.input(prim, "in")
	switch prim.Name {
	case "feGaussianBlur":
		sx, sy, ok := numbers(prim.Attrs["stdDeviation"], 0)
		if !ok || sx < 0 || sy < 0 {
			return in
		}
		if sx == 0 && sy == 0 {
			return in
		}
		sx, sy = fb.scale(sx, sy)
		return &svgpaint.BlurFilter{SigmaX: sx, SigmaY: sy, Input: in}
	case "feOffset":
		dx, _ := svgpath.ParseNumber(orDefault(prim.Attrs["dx"], "0"))
		dy, _ := svgpath.ParseNumber(orDefault(prim.Attrs["dy"], "0"))
		dx, dy = fb.scale(dx, dy)
		return &svgpaint.OffsetFilter{DX: dx, DY: dy, Input: in}
	case "feFlood":
		pd := detached(prim)
		c := svgpaint.Black
		if v, ok := prim.Attrs["flood-color"]; ok {
			if c, ok = fb.s.colorValue(pd, v); !ok {
				c = svgpaint.Black
			}
		}
		v, ok := prim.Attrs["flood-opacity"]
		return &svgpaint.FloodFilter{Color: c.WithOpacity(fraction(v, ok, 1))}
	case "feColorMatrix":
		m, ok := colorMatrix(prim)
		if !ok {
			return in
		}
		return &svgpaint.ColorFilterImage{Filter: svgpaint.NewColorMatrix(m), Input: in}
	case "feComponentTransfer":
		return &svgpaint.ColorFilterImage{Filter: componentTransfer(prim), Input: in}
	case "feMerge":
		var inputs []svgpaint.ImageFilter
		for _, node := range prim.Children {
			if node.Name == "feMergeNode" {
				inputs = append(inputs, fb.input(node, "in"))
			}
		}
		return &svgpaint.MergeFilter{Inputs: inputs}
	case "feBlend":
		mode, _ := svgpaint.ParseBlendMode(strings.TrimSpace(orDefault(prim.Attrs["mode"], "normal")))
		return &svgpaint.BlendImageFilter{Mode: mode, Background: fb.input(prim, "in2"), Foreground: in}
	default:
		logx.L().Debug("svgdraw: filter primitive not supported", "element", prim.String())
		return in
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func colorMatrix(prim *svgdom.Element) ([20]float32, bool) {
	values, hasValues := prim.Attrs["values"]
	switch strings.TrimSpace(orDefault(prim.Attrs["type"], "matrix")) {
	case "matrix":
		if !hasValues {
			return [20]float32(svgpaint.IdentityMatrix), true
		}
		fs, err := svgpath.ParseNumbers(values)
		if err != nil || len(fs) != 20 {
			return [20]float32{}, false
		}
		var m [20]float32
		for i, f := range fs {
			m[i] = float32(f)
		}
		return m, true
	case "saturate":
		s := 1.
		if hasValues {
			f, err := svgpath.ParseNumber(values)
			if err != nil {
				return [20]float32{}, false
			}
			s = f
		}
		return [20]float32(svgpaint.SaturateMatrix(s)), true
	case "hueRotate":
		a := 0.
		if hasValues {
			f, err := svgpath.ParseNumber(values)
			if err != nil {
				return [20]float32{}, false
			}
			a = f
		}
		return [20]float32(svgpaint.HueRotateMatrix(a)), true
	case "luminanceToAlpha":
		return [20]float32(svgpaint.LuminanceToAlphaMatrix), true
	}
	return [20]float32{}, false
}

// componentTransfer builds the lookup tables of the feFuncX children.
func componentTransfer(prim *svgdom.Element) svgpaint.ColorFilter {
	var tables [4]*[256]byte // A, R, G, B
	for _, fn := range prim.Children {
		var index int
		switch fn.Name {
		case "feFuncA":
			index = 0
		case "feFuncR":
			index = 1
		case "feFuncG":
			index = 2
		case "feFuncB":
			index = 3
		default:
			continue
		}
		tables[index] = transferTable(fn)
	}
	return svgpaint.NewTable(tables[0], tables[1], tables[2], tables[3])
}

func attrNumber(el *svgdom.Element, name string, def float64) float64 {
	v, ok := el.Attrs[name]
	if !ok {
		return def
	}
	f, err := svgpath.ParseNumber(v)
	if err != nil {
		return def
	}
	return f
}

// transferTable samples a transfer function, returning nil
// for the identity.
func transferTable(fn *svgdom.Element) *[256]byte {
	var f func(c float64) float64
	switch typ := strings.TrimSpace(fn.Attrs["type"]); typ {
	case "table", "discrete":
		values, err := svgpath.ParseNumbers(fn.Attrs["tableValues"])
		if err != nil || len(values) == 0 {
			return nil
		}
		if typ == "table" {
			n := float64(len(values) - 1)
			f = func(c float64) float64 {
				k := math.Floor(c * n)
				if int(k) >= len(values)-1 {
					return values[len(values)-1]
				}
				v0, v1 := values[int(k)], values[int(k)+1]
				return v0 + (c*n-k)*(v1-v0)
			}
		} else {
			n := float64(len(values))
			f = func(c float64) float64 {
				k := int(math.Floor(c * n))
				if k >= len(values) {
					k = len(values) - 1
				}
				return values[k]
			}
		}
	case "linear":
		slope, intercept := attrNumber(fn, "slope", 1), attrNumber(fn, "intercept", 0)
		f = func(c float64) float64 { return slope*c + intercept }
	case "gamma":
		amplitude, exponent, offset := attrNumber(fn, "amplitude", 1), attrNumber(fn, "exponent", 1), attrNumber(fn, "offset", 0)
		f = func(c float64) float64 { return amplitude*math.Pow(c, exponent) + offset }
	default: // identity
		return nil
	}
	var table [256]byte
	for i := range table {
		v := clamp01(f(float64(i) / 255))
		table[i] = byte(math.Round(v * 255))
	}
	return &table
}
