package svgpaint

// ImageFilter is an effect applied to a whole layer, built as
// a graph of primitives. A nil input refers to the layer
// content (SourceGraphic).
//
// Lengths (blur deviations, offsets) are expressed in the
// user space of the filtered element: backends scale them with the
// current transform.
type ImageFilter interface {
	isImageFilter()
}

// BlurFilter is a gaussian blur with standard deviations
// SigmaX and SigmaY.
type BlurFilter struct {
	SigmaX, SigmaY float64
	Input          ImageFilter
}

// ColorFilterImage applies a ColorFilter to each pixel.
type ColorFilterImage struct {
	Filter ColorFilter
	Input  ImageFilter
}

// OffsetFilter translates its input.
type OffsetFilter struct {
	DX, DY float64
	Input  ImageFilter
}

// FloodFilter fills the filter region with a color.
type FloodFilter struct {
	Color Color
}

// MergeFilter composites its inputs, in order, with SrcOver.
type MergeFilter struct {
	Inputs []ImageFilter
}

// BlendImageFilter composites Foreground over Background using Mode.
type BlendImageFilter struct {
	Mode                   BlendMode
	Background, Foreground ImageFilter
}

func (*BlurFilter) isImageFilter()       {}
func (*ColorFilterImage) isImageFilter() {}
func (*OffsetFilter) isImageFilter()     {}
func (*FloodFilter) isImageFilter()      {}
func (*MergeFilter) isImageFilter()      {}
func (*BlendImageFilter) isImageFilter() {}
