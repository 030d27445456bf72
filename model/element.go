package model

// ElementKind identifies the variant of a page element
type ElementKind int

const (
	KindText ElementKind = iota + 1
	KindImage
	KindShape
	KindContainer
)

func (k ElementKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindImage:
		return "Image"
	case KindShape:
		return "Shape"
	case KindContainer:
		return "Container"
	default:
		return "Unknown"
	}
}

// Element is the interface for all page content. The set of variants is
// closed: only Text, Image, Shape and Container implement it.
type Element interface {
	Kind() ElementKind
	Box() Layout
	// Accept dispatches to the Visitor method for the concrete variant.
	Accept(v Visitor) error

	element()
}

// Visitor handles each element variant. Code that walks a page tree
// implements Visitor so that a new variant cannot be silently ignored.
type Visitor interface {
	VisitText(t *Text) error
	VisitImage(i *Image) error
	VisitShape(s *Shape) error
	VisitContainer(c *Container) error
}

// HorizontalAlignment positions an element inside its slot horizontally.
type HorizontalAlignment int

const (
	HAlignStretch HorizontalAlignment = iota
	HAlignLeft
	HAlignCenter
	HAlignRight
)

// VerticalAlignment positions an element inside its slot vertically.
type VerticalAlignment int

const (
	VAlignStretch VerticalAlignment = iota
	VAlignTop
	VAlignCenter
	VAlignBottom
)

// Layout holds the placement directives shared by every element.
type Layout struct {
	Margin Thickness
	HAlign HorizontalAlignment
	VAlign VerticalAlignment

	// Explicit size; zero means size to content (or stretch).
	Width  float64
	Height float64

	// Grid placement, used when the parent arranges as a grid.
	Row, Column         int
	RowSpan, ColumnSpan int // 0 is treated as 1

	// Canvas placement, used when the parent arranges as a canvas.
	Left, Top float64
}

// Text is a single run of text in one font.
type Text struct {
	Layout
	Text     string
	FontSize float64 // 0 means DefaultFontSize
	Font     string  // font resource reference; empty means the built-in font
	Color    Color   // zero means Black
}

// DefaultFontSize is used when Text.FontSize is zero.
const DefaultFontSize = 12

func (t *Text) Kind() ElementKind      { return KindText }
func (t *Text) Box() Layout            { return t.Layout }
func (t *Text) Accept(v Visitor) error { return v.VisitText(t) }
func (t *Text) element()               {}

// EffectiveFontSize returns FontSize, or DefaultFontSize when unset.
func (t *Text) EffectiveFontSize() float64 {
	if t.FontSize > 0 {
		return t.FontSize
	}
	return DefaultFontSize
}

// Image references an external raster resource by name or URI. The
// resource is resolved when the document is serialized.
type Image struct {
	Layout
	Source  string
	AltText string
}

func (i *Image) Kind() ElementKind      { return KindImage }
func (i *Image) Box() Layout            { return i.Layout }
func (i *Image) Accept(v Visitor) error { return v.VisitImage(i) }
func (i *Image) element()               {}

// ShapeKind selects the geometry of a Shape.
type ShapeKind int

const (
	ShapeRectangle ShapeKind = iota
	ShapeLine
	ShapeEllipse
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRectangle:
		return "Rectangle"
	case ShapeLine:
		return "Line"
	case ShapeEllipse:
		return "Ellipse"
	default:
		return "Unknown"
	}
}

// Shape is a stroked and optionally filled vector shape. A line runs from
// the top-left to the bottom-right corner of its box.
type Shape struct {
	Layout
	Shape           ShapeKind
	Stroke          Color
	StrokeThickness float64
	Fill            *Color
}

func (s *Shape) Kind() ElementKind      { return KindShape }
func (s *Shape) Box() Layout            { return s.Layout }
func (s *Shape) Accept(v Visitor) error { return v.VisitShape(s) }
func (s *Shape) element()               {}

// Arrangement controls how a Container places its children.
type Arrangement int

const (
	// ArrangeStack stacks children top to bottom.
	ArrangeStack Arrangement = iota
	// ArrangeRow places children left to right.
	ArrangeRow
	// ArrangeGrid places children in Rows x Columns cells.
	ArrangeGrid
	// ArrangeCanvas places children at their Left/Top offsets.
	ArrangeCanvas
)

func (a Arrangement) String() string {
	switch a {
	case ArrangeStack:
		return "stack"
	case ArrangeRow:
		return "row"
	case ArrangeGrid:
		return "grid"
	case ArrangeCanvas:
		return "canvas"
	default:
		return "unknown"
	}
}

// GridLength sizes one grid row or column. Star lengths share the space
// left after absolute lengths, in proportion to their weight.
type GridLength struct {
	Value float64
	Star  bool
}

// Star returns a proportional grid length.
func Star(weight float64) GridLength { return GridLength{Value: weight, Star: true} }

// Absolute returns a fixed grid length.
func Absolute(v float64) GridLength { return GridLength{Value: v} }

// Container groups child elements and arranges them.
type Container struct {
	Layout
	Children    []Element
	Arrange     Arrangement
	Rows        []GridLength // ArrangeGrid only; empty means one star row
	Columns     []GridLength // ArrangeGrid only; empty means one star column
	Border      Thickness
	BorderColor Color
	Background  *Color
}

func (c *Container) Kind() ElementKind      { return KindContainer }
func (c *Container) Box() Layout            { return c.Layout }
func (c *Container) Accept(v Visitor) error { return v.VisitContainer(c) }
func (c *Container) element()               {}

// Add appends children and returns the container for chaining.
func (c *Container) Add(children ...Element) *Container {
	c.Children = append(c.Children, children...)
	return c
}

// Depth returns the nesting depth of the container: 1 for a container with
// no nested containers.
func (c *Container) Depth() int {
	m := &depthMeter{}
	_ = c.Accept(m)
	return m.deepest
}
