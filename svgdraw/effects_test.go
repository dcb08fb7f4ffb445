package svgdraw

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"testing/fstest"

	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRectInDelta(t *testing.T, expected, got svgpath.Rect, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, expected.X, got.X, 0.05, msgAndArgs...)
	assert.InDelta(t, expected.Y, got.Y, 0.05, msgAndArgs...)
	assert.InDelta(t, expected.W, got.W, 0.05, msgAndArgs...)
	assert.InDelta(t, expected.H, got.H, 0.05, msgAndArgs...)
}

func TestClipPath(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><clipPath id="c"><rect width="5" height="5" fill="none"/>
		<rect width="5" height="5" transform="translate(10 0)"/><rect width="50" height="50" display="none"/></clipPath></defs>
		<rect id="r" width="20" height="20" clip-path="url(#c)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.True(t, r.IsDrawable)
	require.NotEqual(t, NoNode, r.ClipPath)
	clip := tree.Node(r.ClipPath)
	assert.Equal(t, KindClipPath, clip.Kind)
	assert.Equal(t, svgpath.Rect{W: 15, H: 5}, clip.GeometryBounds())

	tree.Paint(rec, 100, 100)
	assert.Equal(t, 1, rec.Count("clipPath path#0"))
	assert.Equal(t, "drawPath path#1 paint#2", rec.Calls[len(rec.Calls)-4])
}

func TestClipPathUnits(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs><clipPath id="c" clipPathUnits="objectBoundingBox"><circle cx="0.5" cy="0.5" r="0.5"/></clipPath></defs>
		<rect id="r" x="10" y="10" width="20" height="20" clip-path="url(#c)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotEqual(t, NoNode, r.ClipPath)
	assertRectInDelta(t, svgpath.Rect{X: 10, Y: 10, W: 20, H: 20}, tree.Node(r.ClipPath).GeometryBounds())
}

func TestEmptyClipPath(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><clipPath id="c"/></defs><rect id="r" width="20" height="20" clip-path="url(#c)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotEqual(t, NoNode, r.ClipPath)
	tree.Paint(rec, 100, 100)
	assert.Equal(t, 1, rec.Count("clipRect 0 0 0 0"))
	assert.Zero(t, rec.Count("clipPath"))
}

func TestNestedClipPath(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><clipPath id="a" clip-path="url(#b)"><rect width="5" height="5"/></clipPath>
		<clipPath id="b"><rect width="3" height="3"/></clipPath></defs>
		<rect id="r" width="20" height="20" clip-path="url(#a)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotEqual(t, NoNode, r.ClipPath)
	assert.NotEqual(t, NoNode, tree.Node(r.ClipPath).ClipPath)
	tree.Paint(rec, 100, 100)
	assert.Equal(t, 2, rec.Count("clipPath"))
}

func TestReferenceCycles(t *testing.T) {
	for _, src := range []string{
		`<defs><clipPath id="c" clip-path="url(#c)"><rect width="5" height="5"/></clipPath></defs>
		<rect id="r" width="10" height="10" clip-path="url(#c)"/>`,
		`<defs><clipPath id="a" clip-path="url(#b)"><rect width="5" height="5"/></clipPath>
		<clipPath id="b" clip-path="url(#a)"><rect width="5" height="5"/></clipPath></defs>
		<rect id="r" width="10" height="10" clip-path="url(#a)"/>`,
		`<defs><clipPath id="c"><rect width="5" height="5" clip-path="url(#c)"/><use href="#r"/></clipPath></defs>
		<rect id="r" width="10" height="10" clip-path="url(#c)"/>`,
		`<defs><mask id="m"><rect width="10" height="10" fill="white" mask="url(#m)"/></mask></defs>
		<rect id="r" width="10" height="10" mask="url(#m)"/>`,
		`<defs><mask id="m1"><rect width="10" height="10" fill="white" mask="url(#m2)"/></mask>
		<mask id="m2"><rect width="10" height="10" fill="white" mask="url(#m1)"/></mask></defs>
		<rect id="r" width="10" height="10" mask="url(#m1)"/>`,
	} {
		tree, rec := buildSrc(t, svgDoc(src), IgnoreNone)
		r := nodeByID(t, tree, "r")
		assert.True(t, r.IsDrawable, src)
		assert.Equal(t, NoNode, r.ClipPath, src)
		assert.Equal(t, NoNode, r.Mask, src)

		tree.Paint(rec, 100, 100)
		assert.Equal(t, 1, rec.Count("drawPath"), src)
		tree.Dispose()
		assert.Zero(t, rec.Live(), src)
	}
}

func TestCycleInsideReference(t *testing.T) {
	const cyclic = `<clipPath id="c" clip-path="url(#c)"><rect width="5" height="5"/></clipPath>`

	// use
	tree, rec := buildSrc(t, svgDoc(`<defs>`+cyclic+`<g id="g"><rect id="r" width="10" height="10" clip-path="url(#c)"/></g></defs>
		<use id="u" href="#g"/>`), IgnoreNone)
	u := nodeByID(t, tree, "u")
	assert.True(t, u.IsDrawable)
	assert.Len(t, u.Children, 1)
	assert.Equal(t, NoNode, nodeByID(t, tree, "r").ClipPath)
	tree.Paint(rec, 100, 100)
	assert.Equal(t, 1, rec.Count("drawPath"))
	assert.Zero(t, rec.Count("clipPath"))

	// mask
	tree, rec = buildSrc(t, svgDoc(`<defs>`+cyclic+`<mask id="m"><rect width="10" height="10" fill="white" clip-path="url(#c)"/></mask></defs>
		<rect id="r" width="10" height="10" mask="url(#m)"/>`), IgnoreNone)
	require.NotEqual(t, NoNode, nodeByID(t, tree, "r").Mask)
	tree.Paint(rec, 100, 100)
	assert.Equal(t, 2, rec.Count("saveLayer"))
	assert.Equal(t, 2, rec.Count("drawPath"))

	// pattern
	tree, _ = buildSrc(t, svgDoc(`<defs>`+cyclic+`<pattern id="p" width="5" height="5" patternUnits="userSpaceOnUse">
		<rect width="2" height="2" fill="red" clip-path="url(#c)"/></pattern></defs>
		<rect id="r" width="10" height="10" fill="url(#p)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotNil(t, r.Fill)
	assert.IsType(t, &svgpaint.Pattern{}, r.Fill.Shader)

	// marker
	tree, _ = buildSrc(t, svgDoc(`<defs>`+cyclic+`<marker id="mk"><rect width="2" height="2" clip-path="url(#c)"/></marker></defs>
		<path id="r" d="M0 0 L 10 10" stroke="red" marker-end="url(#mk)"/>`), IgnoreNone)
	assert.Len(t, nodeByID(t, tree, "r").Markers, 1)

	// a cycle closing on the outer reference still removes it
	tree, _ = buildSrc(t, svgDoc(`<defs><g id="g"><rect width="10" height="10"/><use href="#h"/></g>
		<g id="h"><use href="#g"/></g></defs><use id="u" href="#g"/>`), IgnoreNone)
	assert.False(t, nodeByID(t, tree, "u").IsDrawable)
}

func TestMask(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><mask id="m"><rect width="10" height="10" fill="white"/></mask></defs>
		<rect id="r" width="10" height="10" mask="url(#m)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotEqual(t, NoNode, r.Mask)
	mask := tree.Node(r.Mask)
	assert.Equal(t, KindMask, mask.Kind)
	require.NotNil(t, mask.Clip)
	assertRectInDelta(t, svgpath.Rect{X: -1, Y: -1, W: 12, H: 12}, *mask.Clip)

	tree.Paint(rec, 100, 100)
	assert.Equal(t, 1, rec.Count("saveLayer nil"))
	assert.Equal(t, 2, rec.Count("saveLayer"))
	assert.Equal(t, 2, rec.Count("drawPath"))
	assert.Equal(t, rec.Count("save"), rec.Count("restore")) // including saveLayer
	require.NotNil(t, r.nMask)
	assert.Equal(t, svgpaint.DstIn, r.nMask.(*recordedNative).Paint.BlendMode)
}

func TestEmptyMask(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><mask id="m"/></defs><rect id="r" width="10" height="10" mask="url(#m)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotEqual(t, NoNode, r.Mask)
	assert.True(t, tree.Node(r.Mask).IsDrawable)
	tree.Paint(rec, 100, 100)
	assert.Equal(t, 2, rec.Count("saveLayer"))

	// bounding box units on empty bounds
	tree, _ = buildSrc(t, svgDoc(`<defs><mask id="m"><rect width="1" height="1"/></mask></defs>
		<line id="r" x2="10" stroke="black" mask="url(#m)"/>`), IgnoreNone)
	assert.Equal(t, NoNode, nodeByID(t, tree, "r").Mask)
}

func TestMaskContentUnits(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs><mask id="m" maskContentUnits="objectBoundingBox"><rect width="0.5" height="1" fill="white"/></mask></defs>
		<rect id="r" x="10" width="20" height="10" mask="url(#m)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotEqual(t, NoNode, r.Mask)
	mask := tree.Node(r.Mask)
	assert.Equal(t, svgpath.Matrix2D{A: 20, D: 10, E: 10}, mask.Transform())
	require.Len(t, mask.Children, 1)
	assert.Equal(t, svgpath.Rect{X: 10, W: 10, H: 10}, mask.Transform().MapRect(tree.Node(mask.Children[0]).TransformedBounds()))
}

func TestFilter(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><filter id="f"><feGaussianBlur stdDeviation="2"/></filter></defs>
		<rect id="r" width="10" height="10" filter="url(#f)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotNil(t, r.Filter)
	assert.Equal(t, &svgpaint.BlurFilter{SigmaX: 2, SigmaY: 2}, r.Filter.ImageFilter)
	assertRectInDelta(t, svgpath.Rect{X: -1, Y: -1, W: 12, H: 12}, r.FilterRegion)

	tree.Paint(rec, 100, 100)
	// root clip, viewport clip, filter region
	assert.Equal(t, 3, rec.Count("clipRect"))
	assert.Equal(t, 1, rec.Count("saveLayer paint#"))
}

func TestFilterChain(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs><filter id="f">
		<feOffset dx="2" result="o"/>
		<feFlood flood-color="red" flood-opacity="0.5"/>
		<feMerge><feMergeNode in="o"/><feMergeNode in="SourceGraphic"/><feMergeNode/></feMerge>
	</filter></defs><rect id="r" width="10" height="10" filter="url(#f)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotNil(t, r.Filter)
	merge, ok := r.Filter.ImageFilter.(*svgpaint.MergeFilter)
	require.True(t, ok)
	require.Len(t, merge.Inputs, 3)
	assert.Equal(t, &svgpaint.OffsetFilter{DX: 2}, merge.Inputs[0])
	assert.Nil(t, merge.Inputs[1])
	assert.Equal(t, &svgpaint.FloodFilter{Color: svgpaint.Color{R: 0xff, G: 0, B: 0, A: 128}}, merge.Inputs[2])
}

func TestFilterPassThrough(t *testing.T) {
	for _, filter := range []string{
		`<filter id="f"/>`,
		`<filter id="f"><feGaussianBlur stdDeviation="0"/></filter>`,
		`<filter id="f"><feGaussianBlur stdDeviation="-1"/></filter>`,
		`<filter id="f"><feTurbulence/></filter>`,
	} {
		tree, _ := buildSrc(t, svgDoc(`<defs>`+filter+`</defs><rect id="r" width="10" height="10" filter="url(#f)"/>`), IgnoreNone)
		r := nodeByID(t, tree, "r")
		assert.True(t, r.IsDrawable, filter)
		assert.Nil(t, r.Filter, filter)
	}
}

func TestFilterPrimitiveUnits(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs><filter id="f" primitiveUnits="objectBoundingBox" filterUnits="userSpaceOnUse" x="0" y="0" width="50" height="50">
		<feGaussianBlur stdDeviation="0.1 0.2"/></filter></defs>
		<rect id="r" width="10" height="20" filter="url(#f)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotNil(t, r.Filter)
	blur := r.Filter.ImageFilter.(*svgpaint.BlurFilter)
	assert.InDelta(t, 1, blur.SigmaX, 1e-9)
	assert.InDelta(t, 4, blur.SigmaY, 1e-9)
	assert.Equal(t, svgpath.Rect{W: 50, H: 50}, r.FilterRegion)
}

func TestColorMatrix(t *testing.T) {
	m, ok := colorMatrix(svgdom.NewElement("feColorMatrix", map[string]string{"type": "saturate", "values": "1"}))
	require.True(t, ok)
	assert.Equal(t, [20]float32(svgpaint.SaturateMatrix(1)), m)

	_, ok = colorMatrix(svgdom.NewElement("feColorMatrix", map[string]string{"values": "1 2 3"}))
	assert.False(t, ok)

	m, ok = colorMatrix(svgdom.NewElement("feColorMatrix", nil))
	require.True(t, ok)
	assert.Equal(t, [20]float32(svgpaint.IdentityMatrix), m)
}

func TestTransferTable(t *testing.T) {
	fn := func(attrs map[string]string) *[256]byte {
		return transferTable(svgdom.NewElement("feFuncA", attrs))
	}
	assert.Nil(t, fn(nil))
	assert.Nil(t, fn(map[string]string{"type": "table"}))

	table := fn(map[string]string{"type": "table", "tableValues": "0 1"})
	require.NotNil(t, table)
	for i, v := range table {
		assert.Equal(t, byte(i), v)
	}

	table = fn(map[string]string{"type": "discrete", "tableValues": "0 1"})
	assert.Equal(t, byte(0), table[127])
	assert.Equal(t, byte(255), table[128])

	table = fn(map[string]string{"type": "linear", "slope": "0.5"})
	assert.Equal(t, byte(128), table[255])
	assert.Equal(t, byte(0), table[0])

	table = fn(map[string]string{"type": "gamma", "amplitude": "1", "exponent": "2"})
	assert.Equal(t, byte(64), table[128])
}

func TestMarkers(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><marker id="m" markerWidth="4" markerHeight="4"><circle cx="2" cy="2" r="2"/></marker>
		<marker id="a" orient="auto"><rect width="1" height="1"/></marker></defs>
		<path id="p" d="M0 0 L10 0 L10 10" fill="none" stroke="black" stroke-width="2"
			marker-start="url(#m)" marker-mid="url(#m)" marker-end="url(#a)"/>`), IgnoreNone)
	p := nodeByID(t, tree, "p")
	require.Len(t, p.Markers, 3)
	mid := tree.Node(p.Markers[1])
	assert.Equal(t, KindMarker, mid.Kind)
	assert.Equal(t, svgpath.Matrix2D{A: 2, D: 2, E: 10}, mid.Transform())
	require.NotNil(t, mid.Clip)
	assert.Equal(t, svgpath.Rect{W: 4, H: 4}, *mid.Clip)

	end := tree.Node(p.Markers[2]).Transform() // rotated by a quarter turn
	assert.InDelta(t, 0, end.A, 1e-9)
	assert.InDelta(t, 2, end.B, 1e-9)
	assert.InDelta(t, 10, end.E, 1e-9)
	assert.InDelta(t, 10, end.F, 1e-9)

	tree.Paint(rec, 100, 100)
	assert.Equal(t, 4, rec.Count("drawPath"))
}

func TestMarkerShorthand(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs><marker id="m" markerUnits="userSpaceOnUse"><rect width="1" height="1"/></marker></defs>
		<g style="marker: url(#m)"><polyline id="p" points="0 0 10 0 20 5 30 5" stroke="black" stroke-width="3" marker-mid="none"/></g>`), IgnoreNone)
	p := nodeByID(t, tree, "p")
	require.Len(t, p.Markers, 2)
	assert.Equal(t, svgpath.Identity.Translate(30, 5), tree.Node(p.Markers[1]).Transform())
}

func TestMarkersOnly(t *testing.T) {
	// markers make an unpainted shape drawable
	tree, rec := buildSrc(t, svgDoc(`<defs><marker id="m"><rect width="1" height="1"/></marker></defs>
		<line id="l" x2="10" fill="none" marker-end="url(#m)"/>`), IgnoreNone)
	l := nodeByID(t, tree, "l")
	assert.True(t, l.IsDrawable)
	require.Len(t, l.Markers, 1)
	tree.Paint(rec, 100, 100)
	assert.Equal(t, 2, rec.Allocated) // the marker content only
	assert.Equal(t, 1, rec.Count("drawPath"))
}

func TestMarkerAngle(t *testing.T) {
	v := svgpath.Vertex{Angle: 1}
	assert.Equal(t, 1., markerAngle("auto", v, true))
	assert.Equal(t, 1+math.Pi, markerAngle("auto-start-reverse", v, true))
	assert.Equal(t, 1., markerAngle("auto-start-reverse", v, false))
	assert.InDelta(t, math.Pi/2, markerAngle("90", v, false), 1e-12)
	assert.InDelta(t, math.Pi/2, markerAngle("90deg", v, false), 1e-12)
	assert.Equal(t, 0., markerAngle("", v, false))
}

func TestGradient(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs>
		<linearGradient id="a" href="#b"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<linearGradient id="b" href="#a" x1="0.2"/>
		<radialGradient id="c" href="#a" fx="0.3"/>
		<linearGradient id="d" gradientUnits="userSpaceOnUse" href="#a"/>
		<linearGradient id="one"><stop stop-color="#00ff00"/></linearGradient>
	</defs>
	<rect id="ra" width="10" height="10" fill="url(#b)"/>
	<rect id="rc" width="10" height="10" fill="url(#c)"/>
	<rect id="rd" width="10" height="10" fill="url(#d)"/>
	<rect id="ro" width="10" height="10" fill="url(#one)"/>
	<line id="l" x2="10" stroke="url(#a)"/>`), IgnoreNone)

	ra := nodeByID(t, tree, "ra")
	require.NotNil(t, ra.Fill)
	lg, ok := ra.Fill.Shader.(*svgpaint.LinearGradient)
	require.True(t, ok)
	assert.Len(t, lg.Stops, 2) // stops found through the cyclic href chain
	assert.Equal(t, 0.2, lg.X1)
	assert.Equal(t, 1., lg.X2)
	assert.Equal(t, svgpath.Matrix2D{A: 10, D: 10}, lg.Transform)

	rc := nodeByID(t, tree, "rc")
	rg, ok := rc.Fill.Shader.(*svgpaint.RadialGradient)
	require.True(t, ok)
	assert.Equal(t, 0.5, rg.CX)
	assert.Equal(t, 0.5, rg.R)
	assert.Equal(t, 0.3, rg.FX)
	assert.Equal(t, 0.5, rg.FY)

	rd := nodeByID(t, tree, "rd")
	lg = rd.Fill.Shader.(*svgpaint.LinearGradient)
	assert.Equal(t, 100., lg.X2) // percentage of the viewport
	assert.True(t, lg.Transform.IsIdentity())

	ro := nodeByID(t, tree, "ro")
	assert.Nil(t, ro.Fill.Shader)
	assert.Equal(t, svgpaint.Color{R: 0, G: 0xff, B: 0, A: 0xff}, ro.Fill.Color)

	// a bounding box gradient needs a non empty box
	l := nodeByID(t, tree, "l")
	assert.Nil(t, l.Stroke)
}

func TestPattern(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><pattern id="p" width="5" height="5" patternUnits="userSpaceOnUse" patternTransform="translate(1 2)">
		<rect width="2" height="2"/></pattern></defs>
		<rect id="r" width="10" height="10" fill="url(#p)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotNil(t, r.Fill)
	pattern, ok := r.Fill.Shader.(*svgpaint.Pattern)
	require.True(t, ok)
	assert.Equal(t, svgpath.Rect{W: 5, H: 5}, pattern.Tile)
	assert.Equal(t, svgpath.Identity.Translate(1, 2), pattern.Transform)
	assert.Equal(t, svgpath.Rect{W: 5, H: 5}, pattern.Content.CullRect())
	require.Len(t, r.patterns, 1)

	pic := pattern.Content.(*Picture)
	var content Recorder
	pic.Play(&content)
	assert.Equal(t, 1, content.Count("drawPath"))
	assert.Equal(t, content.Count("save"), content.Count("restore"))

	tree.Dispose()
	assert.Zero(t, rec.Live())
	content.Reset()
	pic.Play(&content)
	assert.Empty(t, content.Calls)
}

func TestPatternBoundingBox(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs><pattern id="p" width="0.5" height="0.25" patternContentUnits="objectBoundingBox">
		<rect width="0.5" height="0.25"/></pattern></defs>
		<rect id="r" x="10" width="20" height="40" fill="url(#p)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotNil(t, r.Fill)
	pattern := r.Fill.Shader.(*svgpaint.Pattern)
	assert.Equal(t, svgpath.Rect{X: 10, W: 10, H: 10}, pattern.Tile)
	content := tree.Node(r.patterns[0])
	assert.Equal(t, svgpath.Rect{W: 10, H: 10}, content.TransformedBounds())
}

func TestPatternCycle(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<defs><pattern id="p" width="5" height="5" patternUnits="userSpaceOnUse">
		<rect width="2" height="2" fill="url(#p)"/></pattern></defs>
		<rect id="r" width="10" height="10" fill="url(#p)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	assert.Nil(t, r.Fill)
	assert.False(t, r.IsDrawable)
	assert.Zero(t, rec.Allocated)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.NRGBA{0xff, 0, 0, 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRasterImage(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t, 2, 2))
	tree, rec := buildSrc(t, svgDoc(`<image id="i" href="`+uri+`" width="20" height="10"/>
		<image id="j" href="`+uri+`" x="1" y="2"/>
		<image id="k" href="`+uri+`" width="20" height="10" preserveAspectRatio="none"/>`), IgnoreNone)
	i := nodeByID(t, tree, "i")
	require.True(t, i.IsDrawable)
	require.NotNil(t, i.Image)
	assert.Equal(t, 2, i.Image.Width)
	assert.Equal(t, svgpath.Rect{X: 5, W: 10, H: 10}, i.Image.Dst)
	assert.Equal(t, svgpath.Rect{W: 20, H: 10}, i.TransformedBounds())

	j := nodeByID(t, tree, "j") // intrinsic size
	assert.Equal(t, svgpath.Rect{X: 1, Y: 2, W: 2, H: 2}, j.Image.Dst)

	k := nodeByID(t, tree, "k")
	assert.Equal(t, svgpath.Rect{W: 20, H: 10}, k.Image.Dst)

	tree.Paint(rec, 100, 100)
	assert.Equal(t, 3, rec.Count("drawImage"))
	assert.Contains(t, rec.Calls, "drawImage image#0 5 0 10 10")
}

func TestInvalidImages(t *testing.T) {
	for _, href := range []string{
		"data:image/png;base64,AAAA",
		"data:image/png;base64",
		"missing.png",
		"",
	} {
		tree, _ := buildSrc(t, svgDoc(`<image id="i" href="`+href+`" width="20" height="10"/>`), IgnoreNone)
		assert.False(t, nodeByID(t, tree, "i").IsDrawable, href)
	}
}

func TestSVGImage(t *testing.T) {
	assets := fstest.MapFS{
		"icon.svg": {Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`)},
		"loop.svg": {Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><image href="loop.svg" width="10" height="10"/><rect width="5" height="5"/></svg>`)},
		"img/a.png": {Data: testPNG(t, 4, 4)},
	}
	loader := WithAssetLoader(FSLoader{FS: assets})
	tree, rec := buildSrc(t, svgDoc(`<g fill="red">
		<image id="i" href="icon.svg" width="50" height="50"/>
		<image id="l" href="loop.svg"/>
		<image id="p" href="./img/../img/a.png"/>
	</g>`), IgnoreNone, loader)

	i := nodeByID(t, tree, "i")
	require.True(t, i.IsDrawable)
	require.Len(t, i.Children, 1)
	frag := tree.Node(i.Children[0])
	assert.Equal(t, KindFragment, frag.Kind)
	assert.Equal(t, NoNode, frag.Parent)
	assert.Equal(t, 5., frag.Transform().A)
	// the image content doesn't inherit from the host document
	rect := tree.Node(frag.Children[0])
	require.NotNil(t, rect.Fill)
	assert.Equal(t, svgpaint.Black, rect.Fill.Color)

	assert.False(t, nodeByID(t, tree, "l").IsDrawable)
	assert.True(t, nodeByID(t, tree, "p").IsDrawable)

	tree.Paint(rec, 100, 100)
	tree.Dispose()
	assert.Zero(t, rec.Live())
	assert.Zero(t, rec.DoubleReleases)
}

func TestText(t *testing.T) {
	tree, rec := buildSrc(t, svgDoc(`<text id="t" x="10" y="20" font-size="10">Hi</text>
		<text id="e" x="10" y="40" font-size="10" text-anchor="end">Hi</text>
		<text id="m" x="50" y="60" font-size="10" text-anchor="middle">Hi</text>
		<text id="n" x="10" y="80" fill="none">Hi</text>
		<text id="w" x="10" y="80">   </text>`), IgnoreNone)

	tt := nodeByID(t, tree, "t")
	require.True(t, tt.IsDrawable)
	require.Len(t, tt.Children, 1)
	run := tree.Node(tt.Children[0])
	assert.Equal(t, KindText, run.Kind)
	assert.False(t, run.Path.IsEmpty())
	b := tt.TransformedBounds()
	assert.GreaterOrEqual(t, b.X, 10.)
	assert.Less(t, b.Y, 20.)
	assert.InDelta(t, 20, b.Bottom(), 1) // no descender

	e := nodeByID(t, tree, "e").TransformedBounds()
	assert.LessOrEqual(t, e.Right(), 10.)
	assert.InDelta(t, b.W, e.W, 0.05)

	m := nodeByID(t, tree, "m").TransformedBounds()
	assert.Less(t, m.X, 50.)
	assert.Greater(t, m.Right(), 50.)

	assert.False(t, nodeByID(t, tree, "n").IsDrawable)
	assert.False(t, nodeByID(t, tree, "w").IsDrawable)

	tree.Paint(rec, 100, 100)
	assert.Equal(t, 3, rec.Count("drawPath"))
}

func TestTextSpans(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<text id="t" x="10" y="20" font-size="10">A<tspan id="s" fill="red" dy="5">B</tspan><tspan id="h" display="none">C</tspan>D</text>`), IgnoreNone)
	tt := nodeByID(t, tree, "t")
	require.True(t, tt.IsDrawable)
	s := nodeByID(t, tree, "s")
	require.True(t, s.IsDrawable)
	require.Len(t, s.Children, 1)
	run := tree.Node(s.Children[0])
	require.NotNil(t, run.Fill)
	assert.Equal(t, svgpaint.Color{R: 0xff, G: 0, B: 0, A: 0xff}, run.Fill.Color)
	assert.Greater(t, run.TransformedBounds().Bottom(), 22.)
	assert.False(t, nodeByID(t, tree, "h").IsDrawable)

	// the last run is after B
	last := tree.Node(tt.Children[len(tt.Children)-1])
	assert.Greater(t, last.TransformedBounds().X, run.TransformedBounds().X)
}

func TestTextPositions(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<text id="t" x="10 30 50" y="20" font-size="10">abc</text>`), IgnoreNone)
	tt := nodeByID(t, tree, "t")
	require.Len(t, tt.Children, 3) // one run per absolute position
	for i, x := range []float64{10, 30, 50} {
		b := tree.Node(tt.Children[i]).TransformedBounds()
		assert.GreaterOrEqual(t, b.X, x)
		assert.Less(t, b.X, x+10)
	}
}

func TestTextClip(t *testing.T) {
	tree, _ := buildSrc(t, svgDoc(`<defs><clipPath id="c"><text x="0" y="20" font-size="20" fill="none">Clip</text></clipPath></defs>
		<rect id="r" width="100" height="100" clip-path="url(#c)"/>`), IgnoreNone)
	r := nodeByID(t, tree, "r")
	require.NotEqual(t, NoNode, r.ClipPath)
	assert.False(t, tree.Node(r.ClipPath).Path.IsEmpty())
}
