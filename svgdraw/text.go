package svgdraw

import (
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpath"
)

// fontCache loads and parses the fonts used by text elements.
// Fonts are looked up with the asset loader, as <family>.ttf,
// falling back on the Go fonts.
type fontCache struct {
	loader AssetLoader
	loaded map[string]*sfnt.Font // nil for missing families
	buf    sfnt.Buffer
}

func newFontCache(loader AssetLoader) *fontCache {
	return &fontCache{loader: loader, loaded: make(map[string]*sfnt.Font)}
}

type fontStyle struct {
	families      string
	bold, italic  bool
	size          float64
	anchor        string
	preserveSpace bool
}

func (fc *fontCache) parse(key string, data []byte) *sfnt.Font {
	if f, ok := fc.loaded[key]; ok {
		return f
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		logx.L().Warn("svgdraw: invalid font", "font", key, "err", err)
	}
	fc.loaded[key] = f
	return f
}

func (fc *fontCache) goFont(monospace, bold, italic bool) *sfnt.Font {
	switch {
	case monospace:
		return fc.parse("#gomono", gomono.TTF)
	case bold && italic:
		return fc.parse("#gobolditalic", gobolditalic.TTF)
	case bold:
		return fc.parse("#gobold", gobold.TTF)
	case italic:
		return fc.parse("#goitalic", goitalic.TTF)
	default:
		return fc.parse("#goregular", goregular.TTF)
	}
}

// font selects the first available font of the family list.
func (fc *fontCache) font(style fontStyle) *sfnt.Font {
	for _, family := range strings.Split(style.families, ",") {
		family = strings.Trim(strings.TrimSpace(family), `"'`)
		switch family {
		case "":
			continue
		case "monospace":
			return fc.goFont(true, style.bold, style.italic)
		case "serif", "sans-serif", "cursive", "fantasy", "system-ui":
			return fc.goFont(false, style.bold, style.italic)
		}
		if f, ok := fc.loaded[family]; ok {
			if f != nil {
				return f
			}
			continue
		}
		if fc.loader == nil {
			continue
		}
		data, err := fc.loader.LoadAsset(family + ".ttf")
		if err != nil {
			logx.L().Debug("svgdraw: font not found", "family", family, "err", err)
			fc.loaded[family] = nil
			continue
		}
		if f := fc.parse(family, data); f != nil {
			return f
		}
	}
	return fc.goFont(false, style.bold, style.italic)
}

// glyph appends the outlines of `r` at (x, y) to `out`, and returns
// the advance.
func (fc *fontCache) glyph(f *sfnt.Font, prev sfnt.GlyphIndex, r rune, size, x, y float64, out *svgpath.Path) (sfnt.GlyphIndex, float64) {
	ppem := fixed.Int26_6(size * 64)
	index, err := f.GlyphIndex(&fc.buf, r)
	if err != nil {
		return 0, 0
	}
	var kern fixed.Int26_6
	if prev != 0 {
		kern, _ = f.Kern(&fc.buf, prev, index, ppem, font.HintingNone)
		x += float64(kern) / 64
	}
	origin := fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
	segments, err := f.LoadGlyph(&fc.buf, index, ppem, nil)
	if err == nil {
		started := false
		for _, seg := range segments {
			a := seg.Args
			for i := range a {
				a[i] = a[i].Add(origin)
			}
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if started {
					out.Stop(true)
				}
				out.Start(a[0])
				started = true
			case sfnt.SegmentOpLineTo:
				out.Line(a[0])
			case sfnt.SegmentOpQuadTo:
				out.QuadBezier(a[0], a[1])
			case sfnt.SegmentOpCubeTo:
				out.CubeBezier(a[0], a[1], a[2])
			}
		}
		if started {
			out.Stop(true)
		}
	}
	advance, err := f.GlyphAdvance(&fc.buf, index, ppem, font.HintingNone)
	if err != nil {
		return index, float64(kern) / 64
	}
	return index, float64(advance+kern) / 64
}

// positions are the per character x, y, dx and dy lists
// of a text or tspan element
type positions struct {
	x, y, dx, dy []float64
	index        int
}

// pending is a node resolved once the layout is done
type pending struct {
	node *Drawable
	ctx  buildContext
}

// textLayout places the characters of one text element.
type textLayout struct {
	s *buildState

	x, y      float64
	lastSpace bool

	stack []*positions

	chunk        []pending
	chunkStarted bool
	chunkStart   float64
	chunkAnchor  string

	spans []pending // post-order
}

func buildText(s *buildState, d *Drawable, ctx buildContext) {
	if !s.hasFeatures(d, ctx) {
		return
	}
	m, ok := s.transform(d)
	if !ok {
		return
	}
	d.setTransform(m)
	d.IsAntialias = s.isAntialias(d)

	l := textLayout{s: s, lastSpace: true}
	l.layoutElement(d, ctx)
	l.flushChunk()
	for _, span := range l.spans {
		s.finishGroup(span.node, span.ctx)
	}
	s.finishGroup(d, ctx)
}

func (l *textLayout) lengthList(d *Drawable, ctx buildContext, name string, a axis) []float64 {
	v, ok := d.Element.Attrs[name]
	if !ok {
		return nil
	}
	var out []float64
	for _, field := range svgdom.SplitList(v) {
		f, ok := l.s.lengthValue(d, ctx, field, a)
		if !ok {
			return out
		}
		out = append(out, f)
	}
	return out
}

// next consumes the positions of one character. The innermost
// element defining a value wins.
func (l *textLayout) next() (x, y, dx, dy float64, hasX, hasY bool) {
	var hasDX, hasDY bool
	for i := len(l.stack) - 1; i >= 0; i-- {
		p := l.stack[i]
		if !hasX && p.index < len(p.x) {
			x, hasX = p.x[p.index], true
		}
		if !hasY && p.index < len(p.y) {
			y, hasY = p.y[p.index], true
		}
		if !hasDX && p.index < len(p.dx) {
			dx, hasDX = p.dx[p.index], true
		}
		if !hasDY && p.index < len(p.dy) {
			dy, hasDY = p.dy[p.index], true
		}
	}
	for _, p := range l.stack {
		p.index++
	}
	return
}

var textChildren = map[string]bool{"tspan": true, "textPath": true, "a": true}

func (l *textLayout) layoutElement(d *Drawable, ctx buildContext) {
	l.stack = append(l.stack, &positions{
		x:  l.lengthList(d, ctx, "x", axisX),
		y:  l.lengthList(d, ctx, "y", axisY),
		dx: l.lengthList(d, ctx, "dx", axisX),
		dy: l.lengthList(d, ctx, "dy", axisY),
	})
	cctx := ctx.child(d.ID)
	for _, child := range d.Element.Children {
		if child.IsText() {
			l.layoutRun(d, cctx, child)
			continue
		}
		if !textChildren[child.Name] {
			continue
		}
		span := l.s.tree.newNode(KindText, child, d.ID)
		d.Children = append(d.Children, span.ID)
		if !l.s.hasFeatures(span, cctx) {
			continue
		}
		span.IsAntialias = l.s.isAntialias(span)
		l.layoutElement(span, cctx)
		l.spans = append(l.spans, pending{span, cctx})
	}
	l.stack = l.stack[:len(l.stack)-1]
}

func (l *textLayout) style(d *Drawable) fontStyle {
	t := l.s.tree
	st := fontStyle{families: "sans-serif", size: l.s.fontSize(d)}
	if v, ok := t.lookup(d, "font-family", true); ok {
		st.families = v
	}
	if v, ok := t.lookup(d, "font-weight", true); ok {
		switch v = strings.TrimSpace(v); v {
		case "bold", "bolder":
			st.bold = true
		default:
			w, err := strconv.Atoi(v)
			st.bold = err == nil && w >= 600
		}
	}
	if v, ok := t.lookup(d, "font-style", true); ok {
		v = strings.TrimSpace(v)
		st.italic = v == "italic" || v == "oblique"
	}
	st.anchor, _ = t.lookup(d, "text-anchor", true)
	st.anchor = strings.TrimSpace(st.anchor)
	space, _ := t.lookup(d, "space", true) // xml:space
	st.preserveSpace = space == "preserve"
	return st
}

// collapse applies the default white space handling.
func (l *textLayout) collapse(text string, preserve bool) []rune {
	var out []rune
	for _, r := range text {
		switch r {
		case '\n', '\r':
			if preserve {
				r = ' '
			} else {
				continue
			}
		case '\t':
			r = ' '
		}
		if r == ' ' && !preserve {
			if l.lastSpace {
				continue
			}
			l.lastSpace = true
		} else {
			l.lastSpace = false
		}
		out = append(out, r)
	}
	return out
}

// layoutRun adds the glyphs of a text node, as one or more run nodes
// children of `parent`. A new run is started for each absolute position.
func (l *textLayout) layoutRun(parent *Drawable, ctx buildContext, text *svgdom.Element) {
	st := l.style(parent)
	runes := l.collapse(text.Text, st.preserveSpace)
	if len(runes) == 0 {
		return
	}
	fc := l.s.fonts
	f := fc.font(st)
	if f == nil {
		return
	}
	var (
		path svgpath.Path
		prev sfnt.GlyphIndex
	)
	flushRun := func() {
		if path.IsEmpty() {
			return
		}
		node := l.s.tree.newNode(KindText, text, parent.ID)
		node.Path = path
		parent.Children = append(parent.Children, node.ID)
		l.chunk = append(l.chunk, pending{node, ctx})
		path = nil
	}
	for _, r := range runes {
		x, y, dx, dy, hasX, hasY := l.next()
		if hasX || hasY {
			flushRun()
			l.flushChunk()
			if hasX {
				l.x = x
			}
			if hasY {
				l.y = y
			}
			l.chunkStart = l.x
			prev = 0
		}
		l.x += dx
		l.y += dy
		if !l.chunkStarted {
			l.chunkStarted = true
			l.chunkAnchor = st.anchor
		}
		var advance float64
		prev, advance = fc.glyph(f, prev, r, st.size, l.x, l.y, &path)
		l.x += advance
	}
	flushRun()
}

// flushChunk applies the text anchor to the current chunk, and
// resolves the paints of its runs.
func (l *textLayout) flushChunk() {
	var shift float64
	width := l.x - l.chunkStart
	switch l.chunkAnchor {
	case "middle":
		shift = -width / 2
	case "end":
		shift = -width
	}
	for _, run := range l.chunk {
		d := run.node
		if shift != 0 {
			d.Path = d.Path.Transform(svgpath.Identity.Translate(shift, 0))
		}
		l.s.finishRun(d, run.ctx)
	}
	l.chunk = l.chunk[:0]
	l.chunkStarted = false
	l.chunkStart = l.x
}

// finishRun resolves the paints of a glyph run.
func (s *buildState) finishRun(d *Drawable, ctx buildContext) {
	ruleName := "fill-rule"
	if ctx.clip {
		ruleName = "clip-rule"
	}
	rule, _ := s.tree.lookup(d, ruleName, true)
	d.FillRule = svgpath.ParseFillRule(rule)
	d.IsAntialias = s.isAntialias(d)
	d.setGeometry(d.Path.Bounds())
	if ctx.clip {
		d.IsDrawable = true
		return
	}
	if !s.ignore.Has(IgnoreFill) {
		d.Fill = s.resolveFill(d, ctx, d.geometryBounds)
	}
	if !s.ignore.Has(IgnoreStroke) {
		d.Stroke = s.resolveStroke(d, ctx, d.geometryBounds)
	}
	if v, ok := s.tree.lookup(d, "paint-order", true); ok {
		d.PaintOrder = ParsePaintOrder(v)
	}
	d.IsDrawable = d.Fill != nil || d.Stroke != nil
}
