package svgpaint

// Style selects the painting mode of a Paint.
type Style uint8

const (
	FillStyle Style = iota
	StrokeStyle
)

func (s Style) String() string {
	if s == StrokeStyle {
		return "stroke"
	}
	return "fill"
}

// Shader is a paint server replacing the plain color:
// *LinearGradient, *RadialGradient or *Pattern.
type Shader interface {
	isShader()
}

func (*LinearGradient) isShader() {}
func (*RadialGradient) isShader() {}
func (*Pattern) isShader()        {}

// Paint describes how to paint geometry or, when
// used as a layer paint, how to composite a layer back.
//
// When Shader is not nil, only the alpha channel of Color is
// used, as a global opacity.
type Paint struct {
	Style     Style
	Color     Color
	Shader    Shader
	BlendMode BlendMode
	Antialias bool

	// Stroke is only used with StrokeStyle
	Stroke StrokeOptions

	// optional effects, applied when compositing a layer,
	// or to each drawn shape
	ColorFilter ColorFilter
	ImageFilter ImageFilter
}

// NewColorPaint returns a paint filling with the plain color `c`.
func NewColorPaint(c Color, antialias bool) *Paint {
	return &Paint{Style: FillStyle, Color: c, Antialias: antialias}
}

// NewShaderPaint returns a paint filling with the given paint server,
// with a global `opacity`.
func NewShaderPaint(s Shader, opacity float64, antialias bool) *Paint {
	return &Paint{Style: FillStyle, Color: Black.WithOpacity(opacity), Shader: s, Antialias: antialias}
}

// AsStroke returns a copy of p, using the stroke style with the given options.
func (p Paint) AsStroke(opts StrokeOptions) *Paint {
	p.Style = StrokeStyle
	opts.Dash = NormalizeDash(opts.Dash)
	p.Stroke = opts
	return &p
}

// NewLayerPaint returns a paint used to composite a layer with
// a global opacity and a blend mode.
func NewLayerPaint(opacity float64, mode BlendMode) *Paint {
	return &Paint{Color: Black.WithOpacity(opacity), BlendMode: mode, Antialias: true}
}

// NewMaskPaint returns the paint compositing a mask layer
// onto its content: the luminance of the mask is used as alpha.
func NewMaskPaint() *Paint {
	return &Paint{Color: Black, BlendMode: DstIn, ColorFilter: NewLumaColor(), Antialias: true}
}

// NewFilterPaint returns the paint compositing a layer through the
// given effect chain.
func NewFilterPaint(filter ImageFilter) *Paint {
	return &Paint{Color: Black, ImageFilter: filter, Antialias: true}
}

// Alpha returns the global opacity of the paint, in [0, 1].
func (p *Paint) Alpha() float64 { return float64(p.Color.A) / 0xff }
