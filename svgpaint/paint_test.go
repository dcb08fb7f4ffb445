package svgpaint

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected Color
	}{
		{"#f00", Color{0xff, 0, 0, 0xff}},
		{"#F00A", Color{0xff, 0, 0, 0xaa}},
		{"#102030", Color{0x10, 0x20, 0x30, 0xff}},
		{"#ff000080", Color{0xff, 0, 0, 0x80}},
		{"rgb(255, 0, 0)", Color{0xff, 0, 0, 0xff}},
		{"rgb(100%, 0%, 50%)", Color{0xff, 0, 128, 0xff}},
		{"rgba(0,0,255,0.5)", Color{0, 0, 0xff, 128}},
		{"rgb(300, -2, 0)", Color{0xff, 0, 0, 0xff}},
		{"red", Color{0xff, 0, 0, 0xff}},
		{" Blue ", Color{0, 0, 0xff, 0xff}},
		{"transparent", Transparent},
	} {
		got, err := ParseColor(test.input)
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, got, test.input)
	}

	for _, bad := range []string{"", "#12", "foo", "rgb(1,2)", "rgb(a, b, c)", "none", "currentColor"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, Color{0, 0, 0, 128}, Black.WithOpacity(0.5))
	assert.Equal(t, Black, Black.WithOpacity(2))
	assert.Equal(t, Transparent, Black.WithOpacity(-1))
	assert.True(t, White.IsOpaque())
	assert.Equal(t, Color{1, 2, 3, 0xff}, Color{1, 2, 3, 4}.Opaque())
	assert.Equal(t, Color{1, 2, 3, 4}, FromColor(color.NRGBA{1, 2, 3, 4}))
	assert.Equal(t, "#01020304", Color{1, 2, 3, 4}.String())
}

func TestBlend(t *testing.T) {
	white := color.NRGBA{0xff, 0xff, 0xff, 0xff}
	halfRed := color.NRGBA{0xff, 0, 0, 0x80}

	assert.Equal(t, color.NRGBA{0xff, 127, 127, 0xff}, Blend(SrcOver, halfRed, white))
	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0x80}, Blend(DstIn, halfRed, white))
	assert.Equal(t, color.NRGBA{}, Blend(Clear, halfRed, white))
	assert.Equal(t, halfRed, Blend(Src, halfRed, white))
	assert.Equal(t, white, Blend(Dst, halfRed, white))

	grey := color.NRGBA{128, 128, 128, 0xff}
	magenta := color.NRGBA{0xff, 0, 0xff, 0xff}
	assert.Equal(t, color.NRGBA{128, 0, 128, 0xff}, Blend(Multiply, grey, magenta))
	assert.Equal(t, color.NRGBA{0xff, 128, 0xff, 0xff}, Blend(Screen, grey, magenta))
	assert.Equal(t, color.NRGBA{127, 128, 127, 0xff}, Blend(Difference, grey, magenta))

	// blending over a transparent backdrop is the source
	assert.Equal(t, grey, Blend(Multiply, grey, color.NRGBA{}))
	assert.Equal(t, grey, Blend(Luminosity, grey, color.NRGBA{}))

	pm := BlendPremul(SrcOver, color.RGBA{0x80, 0, 0, 0x80}, color.RGBA{0, 0, 0xff, 0xff})
	assert.Equal(t, uint8(0xff), pm.A)
	assert.Equal(t, uint8(0x80), pm.R)
	assert.Equal(t, uint8(0x7f), pm.B)
}

func TestParseBlendMode(t *testing.T) {
	m, ok := ParseBlendMode("multiply")
	assert.True(t, ok)
	assert.Equal(t, Multiply, m)

	m, ok = ParseBlendMode("normal")
	assert.True(t, ok)
	assert.Equal(t, SrcOver, m)

	_, ok = ParseBlendMode("foo")
	assert.False(t, ok)

	assert.Equal(t, "color-dodge", ColorDodge.String())
}

func TestColorFilters(t *testing.T) {
	c := color.NRGBA{10, 20, 30, 40}
	assert.Equal(t, c, Apply(nil, c))
	assert.Equal(t, c, Apply(NewColorMatrix(IdentityMatrix), c))
	sat := SaturateMatrix(1)
	assert.Equal(t, c, Apply(&sat, c))

	white := color.NRGBA{0xff, 0xff, 0xff, 0xff}
	assert.Equal(t, color.NRGBA{A: 0xff}, Apply(NewLumaColor(), white))
	assert.Equal(t, color.NRGBA{}, Apply(NewLumaColor(), color.NRGBA{A: 0xff}))
	assert.Equal(t, color.NRGBA{A: 0xff}, Apply(NewColorMatrix(LuminanceToAlphaMatrix), white))

	var invert [256]byte
	for i := range invert {
		invert[i] = 255 - byte(i)
	}
	f := NewTable(nil, &invert, nil, nil)
	invert[0] = 0 // the table has been copied
	assert.Equal(t, color.NRGBA{245, 20, 30, 40}, Apply(f, c))

	// opaque blue over c with SrcOver
	assert.Equal(t, color.NRGBA{0, 0, 0xff, 0xff}, Apply(NewBlendMode(Color{0, 0, 0xff, 0xff}, SrcOver), c))
}

func TestStroke(t *testing.T) {
	assert.Equal(t, []float64{5, 5}, NormalizeDash([]float64{5}))
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3}, NormalizeDash([]float64{1, 2, 3}))
	assert.Equal(t, []float64{1, 2}, NormalizeDash([]float64{1, 2}))
	assert.Nil(t, NormalizeDash([]float64{1, -1}))
	assert.Nil(t, NormalizeDash([]float64{0, 0}))
	assert.Nil(t, NormalizeDash(nil))

	j, ok := ParseJoinMode("bevel")
	assert.True(t, ok)
	assert.Equal(t, Bevel, j)
	_, ok = ParseJoinMode("bad")
	assert.False(t, ok)

	c, ok := ParseCapMode("round")
	assert.True(t, ok)
	assert.Equal(t, RoundCap, c)
}

func TestPaint(t *testing.T) {
	p := NewColorPaint(Color{1, 2, 3, 0xff}, true)
	s := p.AsStroke(StrokeOptions{Width: 2, Dash: []float64{3}})
	assert.Equal(t, FillStyle, p.Style) // p is not modified
	assert.Equal(t, StrokeStyle, s.Style)
	assert.Equal(t, []float64{3, 3}, s.Stroke.Dash)

	g := &LinearGradient{X2: 1}
	sh := NewShaderPaint(g, 0.5, false)
	assert.Equal(t, g, sh.Shader)
	assert.InDelta(t, 0.5, sh.Alpha(), 0.01)

	mask := NewMaskPaint()
	assert.Equal(t, DstIn, mask.BlendMode)
	assert.Equal(t, NewLumaColor(), mask.ColorFilter)

	layer := NewLayerPaint(0.25, Multiply)
	assert.Equal(t, Multiply, layer.BlendMode)
	assert.InDelta(t, 0.25, layer.Alpha(), 0.01)
}

func TestGradients(t *testing.T) {
	stops := NormalizeStops([]GradientStop{{Offset: 0.5}, {Offset: 0.2}, {Offset: 1.5}})
	assert.Equal(t, []float64{0.5, 0.5, 1}, []float64{stops[0].Offset, stops[1].Offset, stops[2].Offset})

	red := Color{0xff, 0, 0, 0xff}
	lin := &LinearGradient{X1: 0, X2: 0, Stops: []GradientStop{{0, Black}, {1, red}}}
	c, ok := lin.SingleColor()
	assert.True(t, ok)
	assert.Equal(t, red, c)

	lin.X2 = 1
	_, ok = lin.SingleColor()
	assert.False(t, ok)

	rad := &RadialGradient{R: 1}
	c, ok = rad.SingleColor()
	assert.True(t, ok)
	assert.Equal(t, Transparent, c)

	sp, ok := ParseSpreadMethod("reflect")
	assert.True(t, ok)
	assert.Equal(t, ReflectSpread, sp)
}
