package state

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrUnknownKind is returned when decoding a layer with an unrecognized kind tag.
var ErrUnknownKind = errors.New("unknown layer kind")

// Kind tags the variant carried by a Layer.
type Kind int

const (
	KindImage Kind = iota
	KindText
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindShape:
		return "shape"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "image":
		return KindImage, nil
	case "text":
		return KindText, nil
	case "shape":
		return KindShape, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Geometry is the unrotated bounding box of a layer plus its rotation.
// X, Y is the top-left corner; rotation is applied around the box center.
type Geometry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Center returns the rotation pivot of the box.
func (g Geometry) Center() (float64, float64) {
	return g.X + g.Width/2, g.Y + g.Height/2
}

// Contains reports whether (px, py) lies inside the unrotated box, edges included.
func (g Geometry) Contains(px, py float64) bool {
	return px >= g.X && px <= g.X+g.Width &&
		py >= g.Y && py <= g.Y+g.Height
}

// Shadow is the drop shadow applied to a layer when rendering.
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Opacity float64 `json:"opacity"` // percent, 0-100
}

// DefaultShadow is used for image and shape layers.
func DefaultShadow() Shadow {
	return Shadow{Enabled: true, Blur: 20, OffsetX: 5, OffsetY: 10, Opacity: 15}
}

// DefaultTextShadow is lighter than DefaultShadow so small type stays legible.
func DefaultTextShadow() Shadow {
	return Shadow{Enabled: true, Blur: 4, OffsetX: 2, OffsetY: 2, Opacity: 25}
}

// Content is the kind-specific payload of a Layer. The set of
// implementations is closed: ImageContent, TextContent and ShapeContent.
type Content interface {
	Kind() Kind
	clone() Content
}

// ImageContent holds a decoded bitmap and the data URL it was decoded from.
// Bitmap is treated as immutable and may be shared between layers.
type ImageContent struct {
	Source string      `json:"source"`
	Bitmap image.Image `json:"-"`
}

func (c *ImageContent) Kind() Kind { return KindImage }

func (c *ImageContent) clone() Content {
	cp := *c
	return &cp
}

type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

// DefaultFontFamily is the family used when a text layer names none.
const DefaultFontFamily = "Go"

// LineHeightFactor relates a text layer's height to its font size.
const LineHeightFactor = 1.2

type TextContent struct {
	Text       string     `json:"text"`
	FontFamily string     `json:"font_family"`
	FontSize   float64    `json:"font_size"`
	FontWeight FontWeight `json:"font_weight"`
	Color      string     `json:"color"`
}

func (c *TextContent) Kind() Kind { return KindText }

func (c *TextContent) clone() Content {
	cp := *c
	return &cp
}

// Font returns the CSS-style font string "weight sizepx family".
func (c *TextContent) Font() string {
	return fmt.Sprintf("%s %gpx %s", c.FontWeight, c.FontSize, c.FontFamily)
}

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeStar      ShapeType = "star"
	ShapeTriangle  ShapeType = "triangle"
	ShapeLine      ShapeType = "line"
	ShapeArrow     ShapeType = "arrow"
)

// ShapeTypes lists every shape in toolbar order.
var ShapeTypes = []ShapeType{ShapeRectangle, ShapeCircle, ShapeStar, ShapeTriangle, ShapeLine, ShapeArrow}

const DefaultStarPoints = 5

type ShapeContent struct {
	Shape       ShapeType `json:"shape"`
	Fill        string    `json:"fill"`
	Stroke      string    `json:"stroke"`
	StrokeWidth float64   `json:"stroke_width"`
	StarPoints  int       `json:"star_points"`
}

func (c *ShapeContent) Kind() Kind { return KindShape }

func (c *ShapeContent) clone() Content {
	cp := *c
	return &cp
}

// Layer is one positioned, transformable element of a Scene.
type Layer struct {
	ID       int
	Name     string
	Geometry Geometry
	Visible  bool
	Locked   bool
	Shadow   Shadow
	Content  Content
}

func (l *Layer) Kind() Kind { return l.Content.Kind() }

// Clone returns a deep copy. Image bitmaps are shared, not copied.
func (l Layer) Clone() Layer {
	if l.Content != nil {
		l.Content = l.Content.clone()
	}
	return l
}

// Image returns the image payload, or nil for other kinds.
func (l *Layer) Image() *ImageContent {
	c, _ := l.Content.(*ImageContent)
	return c
}

// Text returns the text payload, or nil for other kinds.
func (l *Layer) Text() *TextContent {
	c, _ := l.Content.(*TextContent)
	return c
}

// Shape returns the shape payload, or nil for other kinds.
func (l *Layer) Shape() *ShapeContent {
	c, _ := l.Content.(*ShapeContent)
	return c
}

// stripped returns a clone whose image bitmap is dropped, keeping only the
// reloadable source. History entries hold layers in this form.
func (l Layer) stripped() Layer {
	cp := l.Clone()
	if img := cp.Image(); img != nil {
		img.Bitmap = nil
	}
	return cp
}

// NewImageLayer builds an image layer sized to fit the bitmap into maxSide.
func NewImageLayer(source string, bitmap image.Image, maxSide float64) Layer {
	w, h := 100.0, 100.0
	if bitmap != nil {
		b := bitmap.Bounds()
		w, h = float64(b.Dx()), float64(b.Dy())
		if w > maxSide || h > maxSide {
			scale := maxSide / max(w, h)
			w, h = w*scale, h*scale
		}
	}
	return Layer{
		Geometry: Geometry{Width: w, Height: h},
		Visible:  true,
		Shadow:   DefaultShadow(),
		Content:  &ImageContent{Source: source, Bitmap: bitmap},
	}
}

// NewTextLayer builds a text layer. Width is a rough estimate until the
// first render measures the glyphs.
func NewTextLayer(text string, style TextContent) Layer {
	style.Text = text
	if style.FontSize <= 0 {
		style.FontSize = 48
	}
	if style.FontFamily == "" {
		style.FontFamily = DefaultFontFamily
	}
	if style.FontWeight == "" {
		style.FontWeight = WeightNormal
	}
	if style.Color == "" {
		style.Color = "#222222"
	}
	return Layer{
		Geometry: Geometry{
			Width:  float64(len([]rune(text))) * style.FontSize * 0.6,
			Height: style.FontSize * LineHeightFactor,
		},
		Visible: true,
		Shadow:  DefaultTextShadow(),
		Content: &style,
	}
}

// NewShapeLayer builds a shape layer with the toolbar defaults.
func NewShapeLayer(shape ShapeType, fill string) Layer {
	if fill == "" {
		fill = "#3b82f6"
	}
	g := Geometry{Width: 100, Height: 100}
	if shape == ShapeLine || shape == ShapeArrow {
		g.Width, g.Height = 150, 30
	}
	return Layer{
		Geometry: g,
		Visible:  true,
		Shadow:   DefaultShadow(),
		Content: &ShapeContent{
			Shape:       shape,
			Fill:        fill,
			Stroke:      "#1e3a8a",
			StrokeWidth: 0,
			StarPoints:  DefaultStarPoints,
		},
	}
}

func defaultName(l *Layer, id int) string {
	switch c := l.Content.(type) {
	case *ImageContent:
		return fmt.Sprintf("Image %d", id)
	case *TextContent:
		return fmt.Sprintf("Text %d", id)
	case *ShapeContent:
		return fmt.Sprintf("%s %d", shapeLabel(c.Shape), id)
	}
	return fmt.Sprintf("Layer %d", id)
}

func shapeLabel(s ShapeType) string {
	if s == "" {
		return "Shape"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
