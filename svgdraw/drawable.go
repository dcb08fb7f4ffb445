package svgdraw

import (
	"image"
	"strings"

	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// NodeID indexes the nodes of a Tree.
type NodeID int32

// NoNode is the null NodeID.
const NoNode NodeID = -1

// Kind identifies the element a Drawable was built from.
type Kind uint8

const (
	KindPath Kind = iota
	KindCircle
	KindEllipse
	KindRect
	KindLine
	KindPolyline
	KindPolygon
	KindGroup
	KindSwitch
	KindUse
	KindAnchor
	KindFragment
	KindImage
	KindText
	KindMarker
	KindMask
	KindPattern
	KindClipPath
)

var kindNames = [...]string{
	KindPath: "path", KindCircle: "circle", KindEllipse: "ellipse", KindRect: "rect",
	KindLine: "line", KindPolyline: "polyline", KindPolygon: "polygon",
	KindGroup: "group", KindSwitch: "switch", KindUse: "use", KindAnchor: "anchor",
	KindFragment: "fragment", KindImage: "image", KindText: "text",
	KindMarker: "marker", KindMask: "mask", KindPattern: "pattern", KindClipPath: "clip-path",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<unknown Kind>"
}

// Variant groups the kinds sharing the same structure.
type Variant uint8

const (
	VariantPath Variant = iota
	VariantShape
	VariantContainer
	VariantImage
	VariantText
	VariantFragment
)

// Variant returns the structural category of the kind.
func (k Kind) Variant() Variant {
	switch k {
	case KindPath:
		return VariantPath
	case KindCircle, KindEllipse, KindRect, KindLine, KindPolyline, KindPolygon:
		return VariantShape
	case KindImage:
		return VariantImage
	case KindText:
		return VariantText
	case KindFragment:
		return VariantFragment
	default:
		return VariantContainer
	}
}

// PaintPart is one of the three painted parts of a shape.
type PaintPart uint8

const (
	PartFill PaintPart = iota
	PartStroke
	PartMarkers
)

// PaintOrder is the order in which fill, stroke and markers are painted.
type PaintOrder [3]PaintPart

// DefaultPaintOrder paints the fill, then the stroke, then the markers.
var DefaultPaintOrder = PaintOrder{PartFill, PartStroke, PartMarkers}

// ParsePaintOrder reads a `paint-order` value. Omitted parts
// are painted after the given ones, in default order.
func ParsePaintOrder(v string) PaintOrder {
	v = strings.TrimSpace(v)
	if v == "" || v == "normal" {
		return DefaultPaintOrder
	}
	var (
		out  PaintOrder
		n    int
		seen [3]bool
	)
	add := func(p PaintPart) {
		if n < 3 && !seen[p] {
			seen[p] = true
			out[n] = p
			n++
		}
	}
	for _, field := range strings.Fields(v) {
		switch field {
		case "fill":
			add(PartFill)
		case "stroke":
			add(PartStroke)
		case "markers":
			add(PartMarkers)
		default:
			return DefaultPaintOrder
		}
	}
	for _, p := range DefaultPaintOrder {
		add(p)
	}
	return out
}

// ImageData is the content of an image node: a raster
// image drawn in a destination rectangle.
// SVG images are built as a child fragment instead.
type ImageData struct {
	Width, Height int
	Src, Dst      svgpath.Rect
}

// Drawable is the resolved, render-ready representation of one element.
// Geometry and paints are expressed in the local coordinate space of the
// node, that is before applying Transform().
type Drawable struct {
	ID      NodeID
	Kind    Kind
	Element *svgdom.Element // not owned
	// Parent is used for property inheritance only.
	// It is NoNode for the root of the tree and of auxiliary sub-trees.
	Parent NodeID

	// IsDrawable false means the node (and its sub-tree) is skipped at paint time.
	IsDrawable bool

	geometryBounds    svgpath.Rect
	transform         svgpath.Matrix2D
	transformedBounds svgpath.Rect

	Path     svgpath.Path
	FillRule svgpath.FillRule

	Fill, Stroke *svgpaint.Paint
	// Opacity is the layer paint used for group opacity and blend modes,
	// nil when no layer is needed.
	Opacity *svgpaint.Paint

	// ClipPath and Mask are auxiliary sub-trees, or NoNode.
	ClipPath NodeID
	Mask     NodeID
	// Filter is the layer paint carrying the effect chain,
	// applied inside FilterRegion.
	Filter       *svgpaint.Paint
	FilterRegion svgpath.Rect

	// Clip is an optional rectangle, in local coordinates,
	// used by viewports (nested svg, markers, symbols, images).
	Clip *svgpath.Rect

	IsAntialias bool
	PaintOrder  PaintOrder

	Children []NodeID
	Markers  []NodeID

	Image *ImageData

	// auxiliary sub-trees referenced by paint servers
	patterns []NodeID

	img image.Image // decoded raster, converted at commit time

	// natives, allocated at commit time
	nPath, nFill, nStroke, nOpacity, nFilter, nMask, nImage Native
}

// GeometryBounds returns the bounding box of the node in local coordinates.
func (d *Drawable) GeometryBounds() svgpath.Rect { return d.geometryBounds }

// Transform returns the local to parent matrix.
func (d *Drawable) Transform() svgpath.Matrix2D { return d.transform }

// TransformedBounds returns Transform().MapRect(GeometryBounds()).
func (d *Drawable) TransformedBounds() svgpath.Rect { return d.transformedBounds }

func (d *Drawable) setGeometry(bounds svgpath.Rect) {
	d.geometryBounds = bounds
	d.transformedBounds = d.transform.MapRect(bounds)
}

func (d *Drawable) setTransform(m svgpath.Matrix2D) {
	d.transform = m
	d.transformedBounds = m.MapRect(d.geometryBounds)
}

func (d *Drawable) String() string {
	if d.Element != nil {
		return d.Kind.String() + " " + d.Element.String()
	}
	return d.Kind.String()
}
