package svgdom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ReadDocument(strings.NewReader(src), IgnoreErrorMode)
	require.NoError(t, err)
	return doc
}

func TestReadDocument(t *testing.T) {
	doc := read(t, `<?xml version="1.0" encoding="ISO-8859-1"?>
	<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="10" height="20">
		<title>An icon</title>
		<g id="g1" fill="red">
			<rect id="r" x="1" width="2" height="3"/>
			<use xlink:href="#r"/>
		</g>
		<text>Hello <tspan>world</tspan></text>
	</svg>`)

	root := doc.Root
	assert.Equal(t, "svg", root.Name)
	assert.Equal(t, "10", root.Attrs["width"])
	_, hasNS := root.Attr("xmlns")
	assert.False(t, hasNS)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "An icon", root.Children[0].TextContent())

	g := doc.ElementByID("g1")
	require.NotNil(t, g)
	assert.Same(t, root, g.Parent)
	assert.Same(t, doc, g.Document())
	use := g.Children[1]
	assert.Equal(t, "#r", use.Attrs["href"])
	assert.Same(t, doc.ElementByID("r"), doc.Resolve(use.Attrs["href"]))

	text := root.Children[2]
	require.Len(t, text.Children, 2)
	assert.True(t, text.Children[0].IsText())
	assert.Equal(t, "Hello world", text.TextContent())
}

func TestReadDocumentErrors(t *testing.T) {
	_, err := ReadDocument(strings.NewReader(""), IgnoreErrorMode)
	assert.Error(t, err)

	_, err = ReadDocument(strings.NewReader("<html></html>"), IgnoreErrorMode)
	assert.Error(t, err)

	_, err = ReadDocument(strings.NewReader("<svg><rect></svg>"), IgnoreErrorMode)
	assert.Error(t, err)

	src := `<svg><foo/></svg>`
	doc, err := ReadDocument(strings.NewReader(src), WarnErrorMode)
	require.NoError(t, err)
	assert.Equal(t, "foo", doc.Root.Children[0].Name)
	_, err = ReadDocument(strings.NewReader(src), StrictErrorMode)
	assert.Error(t, err)
}

func TestReferences(t *testing.T) {
	for _, test := range []struct {
		input, id, rest string
		ok              bool
	}{
		{"url(#a)", "a", "", true},
		{" url( '#grad' ) red", "grad", "red", true},
		{`url("#b") none`, "b", "none", true},
		{"url(file.svg#a)", "", "", false},
		{"#a", "", "", false},
		{"url(#a", "", "", false},
	} {
		id, rest, ok := ParseFuncIRI(test.input)
		assert.Equal(t, test.ok, ok, test.input)
		if ok {
			assert.Equal(t, test.id, id)
			assert.Equal(t, test.rest, rest)
		}
	}

	id, ok := ParseHref("#x")
	assert.True(t, ok)
	assert.Equal(t, "x", id)
	_, ok = ParseHref("#")
	assert.False(t, ok)

	doc := NewDocument(NewElement("svg", nil, NewElement("g", map[string]string{"id": "a"})))
	assert.NotNil(t, doc.Resolve("url(#a)"))
	assert.Nil(t, doc.Resolve("url(#missing)"))
	assert.Nil(t, doc.Resolve("red"))
}

func TestDuplicateIDs(t *testing.T) {
	first := NewElement("rect", map[string]string{"id": "a"})
	doc := NewDocument(NewElement("svg", nil, first, NewElement("circle", map[string]string{"id": "a"})))
	assert.Same(t, first, doc.ElementByID("a"))
}

func TestCascade(t *testing.T) {
	doc := read(t, `<svg>
		<style>
			rect { fill: blue; stroke: green }
			.warn { fill: orange }
			#special { fill: purple }
			g > rect.child { stroke-width: 3 }
			svg rect { opacity: 0.5 }
			rect:hover { fill: black }
			circle { fill: gray !important }
		</style>
		<rect id="plain" fill="red"/>
		<rect id="classed" class="warn other" fill="red"/>
		<rect id="special" class="warn"/>
		<rect id="inline" class="warn" style="fill: yellow; stroke-width:2"/>
		<g><rect id="nested" class="child"/></g>
		<circle id="c" style="fill: white"/>
	</svg>`)

	get := func(id, attr string) string { return doc.ElementByID(id).Attrs[attr] }

	assert.Equal(t, "blue", get("plain", "fill"))
	assert.Equal(t, "green", get("plain", "stroke"))
	assert.Equal(t, "0.5", get("plain", "opacity"))
	assert.Equal(t, "orange", get("classed", "fill"))
	assert.Equal(t, "purple", get("special", "fill"))
	assert.Equal(t, "yellow", get("inline", "fill"))
	assert.Equal(t, "2", get("inline", "stroke-width"))
	_, hasStyle := doc.ElementByID("inline").Attr("style")
	assert.False(t, hasStyle)
	assert.Equal(t, "3", get("nested", "stroke-width"))
	assert.Equal(t, "", get("plain", "stroke-width"))
	assert.Equal(t, "gray", get("c", "fill"))
}

func TestStyleAttribute(t *testing.T) {
	el := NewElement("rect", map[string]string{"style": "fill:url(#a) ; stroke : red", "fill": "blue"})
	NewDocument(el)
	assert.Equal(t, "url(#a)", el.Attrs["fill"])
	assert.Equal(t, "red", el.Attrs["stroke"])
}

func TestSelectors(t *testing.T) {
	for _, test := range []struct {
		input       string
		ok          bool
		specificity int
	}{
		{"rect", true, 1},
		{"*", true, 0},
		{".a.b", true, 20},
		{"g#x rect.a", true, 112},
		{"g > rect", true, 2},
		{"g>rect", true, 2},
		{"> rect", false, 0},
		{"rect >", false, 0},
		{"a[href]", false, 0},
		{"a:hover", false, 0},
		{"a + b", false, 0},
		{"rect.", false, 0},
	} {
		sel, ok := parseSelector(test.input)
		assert.Equal(t, test.ok, ok, test.input)
		if ok {
			assert.Equal(t, test.specificity, sel.specificity, test.input)
		}
	}
}

func TestLengths(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected float64
	}{
		{"12", 12},
		{"-1.5", -1.5},
		{"10px", 10},
		{"1in", 96},
		{"72pt", 96},
		{"2.54cm", 96},
		{"25.4mm", 96},
		{"1pc", 16},
		{"2em", 20},
		{"2ex", 10},
		{"50%", 100},
		{" 1e1 ", 10},
	} {
		l, err := ParseLength(test.input)
		require.NoError(t, err, test.input)
		assert.InDelta(t, test.expected, l.Resolve(200, 10), 1e-9, test.input)
	}

	for _, bad := range []string{"", "px", "12km", "abc"} {
		_, err := ParseLength(bad)
		assert.Error(t, err, bad)
	}

	ls, err := ParseLengthList("1, 2px 3%")
	require.NoError(t, err)
	assert.Equal(t, []Length{{1, UnitNone}, {2, UnitPx}, {3, UnitPercent}}, ls)
	_, err = ParseLengthList("1 a")
	assert.Error(t, err)

	f, err := ParseFraction("50%")
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)
	f, err = ParseFraction(" 0.25 ")
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)
	_, err = ParseFraction("0.5x")
	assert.Error(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, SplitList(" 1,2  3 "))
}
