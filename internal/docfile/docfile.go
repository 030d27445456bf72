// Package docfile reads document descriptions written in TOML and builds
// model documents from them.
//
// A description lists pages and their element trees:
//
//	unit = "pt"
//
//	[metadata]
//	title = "Invoice"
//
//	[[pages]]
//	width = 595
//	height = 842
//
//	  [[pages.elements]]
//	  type = "text"
//	  text = "Hello"
//	  font_size = 18
//	  margin = [72]
//
// Image and font references are resolved relative to the description's
// directory unless resource_root says otherwise.
package docfile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tsawler/fixedprint/model"
)

//go:embed sample.toml
var sample []byte

// Sample returns a description of a two-page sample document. Its first
// page shows an image named fish.png above a bordered 3x3 grid.
func Sample() []byte {
	return append([]byte(nil), sample...)
}

// File is a loaded description.
type File struct {
	Document *model.Document
	// ResourceRoot is the directory that image and font references are
	// relative to.
	ResourceRoot string
}

// Load reads and builds the description at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse builds a description. Relative resource roots are taken relative
// to baseDir.
func Parse(data []byte, baseDir string) (*File, error) {
	var d description
	md, err := toml.Decode(string(data), &d)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	doc, err := d.build()
	if err != nil {
		return nil, err
	}

	root := d.ResourceRoot
	if root == "" {
		root = baseDir
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(baseDir, root)
	}
	return &File{Document: doc, ResourceRoot: root}, nil
}

type description struct {
	Unit         string          `toml:"unit"`
	ResourceRoot string          `toml:"resource_root"`
	Metadata     metadataSection `toml:"metadata"`
	Pages        []pageSection   `toml:"pages"`
}

type metadataSection struct {
	Title    string    `toml:"title"`
	Author   string    `toml:"author"`
	Subject  string    `toml:"subject"`
	Keywords []string  `toml:"keywords"`
	Creator  string    `toml:"creator"`
	Created  time.Time `toml:"created"`
}

type pageSection struct {
	Width    float64          `toml:"width"`
	Height   float64          `toml:"height"`
	Elements []elementSection `toml:"elements"`
}

// elementSection holds the keys of every element type; which ones apply
// depends on Type.
type elementSection struct {
	Type string `toml:"type"`

	// Layout
	Margin     []float64 `toml:"margin"`
	HAlign     string    `toml:"halign"`
	VAlign     string    `toml:"valign"`
	Width      float64   `toml:"width"`
	Height     float64   `toml:"height"`
	Row        int       `toml:"row"`
	Column     int       `toml:"column"`
	RowSpan    int       `toml:"row_span"`
	ColumnSpan int       `toml:"column_span"`
	Left       float64   `toml:"left"`
	Top        float64   `toml:"top"`

	// Text
	Text     string  `toml:"text"`
	FontSize float64 `toml:"font_size"`
	Font     string  `toml:"font"`
	Color    string  `toml:"color"`

	// Image
	Source string `toml:"source"`
	Alt    string `toml:"alt"`

	// Shape
	Shape           string  `toml:"shape"`
	Stroke          string  `toml:"stroke"`
	StrokeThickness float64 `toml:"stroke_thickness"`
	Fill            string  `toml:"fill"`

	// Container
	Arrange     string           `toml:"arrange"`
	Rows        []string         `toml:"rows"`
	Columns     []string         `toml:"columns"`
	Border      []float64        `toml:"border"`
	BorderColor string           `toml:"border_color"`
	Background  string           `toml:"background"`
	Children    []elementSection `toml:"children"`
}

func (d *description) build() (*model.Document, error) {
	unit, err := parseUnit(d.Unit)
	if err != nil {
		return nil, err
	}

	pages := make([]*model.Page, 0, len(d.Pages))
	for i, ps := range d.Pages {
		elems := make([]model.Element, 0, len(ps.Elements))
		for j, es := range ps.Elements {
			e, err := es.build()
			if err != nil {
				return nil, fmt.Errorf("pages[%d].elements[%d]: %w", i, j, err)
			}
			elems = append(elems, e)
		}
		page, err := model.NewPage(ps.Width, ps.Height, elems...)
		if err != nil {
			return nil, fmt.Errorf("pages[%d]: %w", i, err)
		}
		pages = append(pages, page)
	}

	m := d.Metadata
	return model.NewDocument(model.Metadata{
		Title:        m.Title,
		Author:       m.Author,
		Subject:      m.Subject,
		Keywords:     m.Keywords,
		Creator:      m.Creator,
		CreationDate: m.Created,
	}, unit, pages...)
}

func (es *elementSection) build() (model.Element, error) {
	box, err := es.layout()
	if err != nil {
		return nil, err
	}

	switch es.Type {
	case "text":
		color, err := parseColor(es.Color)
		if err != nil {
			return nil, err
		}
		return &model.Text{Layout: box, Text: es.Text, FontSize: es.FontSize, Font: es.Font, Color: color}, nil

	case "image":
		if es.Source == "" {
			return nil, fmt.Errorf("image has no source")
		}
		return &model.Image{Layout: box, Source: es.Source, AltText: es.Alt}, nil

	case "shape":
		return es.shape(box)

	case "container":
		return es.container(box)

	case "":
		return nil, fmt.Errorf("missing element type")
	default:
		return nil, fmt.Errorf("unknown element type %q", es.Type)
	}
}

func (es *elementSection) layout() (model.Layout, error) {
	margin, err := parseThickness(es.Margin)
	if err != nil {
		return model.Layout{}, fmt.Errorf("margin: %w", err)
	}
	h, err := parseHAlign(es.HAlign)
	if err != nil {
		return model.Layout{}, err
	}
	v, err := parseVAlign(es.VAlign)
	if err != nil {
		return model.Layout{}, err
	}
	return model.Layout{
		Margin:     margin,
		HAlign:     h,
		VAlign:     v,
		Width:      es.Width,
		Height:     es.Height,
		Row:        es.Row,
		Column:     es.Column,
		RowSpan:    es.RowSpan,
		ColumnSpan: es.ColumnSpan,
		Left:       es.Left,
		Top:        es.Top,
	}, nil
}

func (es *elementSection) shape(box model.Layout) (model.Element, error) {
	s := &model.Shape{Layout: box, StrokeThickness: es.StrokeThickness}

	switch es.Shape {
	case "", "rectangle":
		s.Shape = model.ShapeRectangle
	case "line":
		s.Shape = model.ShapeLine
	case "ellipse":
		s.Shape = model.ShapeEllipse
	default:
		return nil, fmt.Errorf("unknown shape %q", es.Shape)
	}

	var err error
	if s.Stroke, err = parseColor(es.Stroke); err != nil {
		return nil, fmt.Errorf("stroke: %w", err)
	}
	if s.Fill, err = optionalColor(es.Fill); err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	return s, nil
}

func (es *elementSection) container(box model.Layout) (model.Element, error) {
	c := &model.Container{Layout: box}

	switch es.Arrange {
	case "", "stack":
		c.Arrange = model.ArrangeStack
	case "row":
		c.Arrange = model.ArrangeRow
	case "grid":
		c.Arrange = model.ArrangeGrid
	case "canvas":
		c.Arrange = model.ArrangeCanvas
	default:
		return nil, fmt.Errorf("unknown arrangement %q", es.Arrange)
	}

	var err error
	if c.Rows, err = parseGridLengths(es.Rows); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if c.Columns, err = parseGridLengths(es.Columns); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if c.Border, err = parseThickness(es.Border); err != nil {
		return nil, fmt.Errorf("border: %w", err)
	}
	if c.BorderColor, err = parseColor(es.BorderColor); err != nil {
		return nil, fmt.Errorf("border_color: %w", err)
	}
	if c.Background, err = optionalColor(es.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}

	for i := range es.Children {
		child, err := es.Children[i].build()
		if err != nil {
			return nil, fmt.Errorf("children[%d]: %w", i, err)
		}
		c.Add(child)
	}
	return c, nil
}

func parseUnit(s string) (model.Unit, error) {
	switch strings.ToLower(s) {
	case "", "dip", "px":
		return model.UnitDIP, nil
	case "pt":
		return model.UnitPoint, nil
	}
	return 0, fmt.Errorf("unknown unit %q", s)
}

// parseThickness accepts one value for all sides, two for horizontal and
// vertical, or four in left, top, right, bottom order.
func parseThickness(v []float64) (model.Thickness, error) {
	switch len(v) {
	case 0:
		return model.Thickness{}, nil
	case 1:
		return model.Uniform(v[0]), nil
	case 2:
		return model.Thickness{Left: v[0], Top: v[1], Right: v[0], Bottom: v[1]}, nil
	case 4:
		return model.Thickness{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, nil
	}
	return model.Thickness{}, fmt.Errorf("want 1, 2 or 4 values, got %d", len(v))
}

func parseHAlign(s string) (model.HorizontalAlignment, error) {
	switch s {
	case "", "stretch":
		return model.HAlignStretch, nil
	case "left":
		return model.HAlignLeft, nil
	case "center":
		return model.HAlignCenter, nil
	case "right":
		return model.HAlignRight, nil
	}
	return 0, fmt.Errorf("unknown halign %q", s)
}

func parseVAlign(s string) (model.VerticalAlignment, error) {
	switch s {
	case "", "stretch":
		return model.VAlignStretch, nil
	case "top":
		return model.VAlignTop, nil
	case "center":
		return model.VAlignCenter, nil
	case "bottom":
		return model.VAlignBottom, nil
	}
	return 0, fmt.Errorf("unknown valign %q", s)
}

// parseGridLengths reads "*" and "N*" as star lengths and plain numbers
// as absolute lengths.
func parseGridLengths(defs []string) ([]model.GridLength, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]model.GridLength, 0, len(defs))
	for _, d := range defs {
		d = strings.TrimSpace(d)
		if weight, ok := strings.CutSuffix(d, "*"); ok {
			w := 1.0
			if weight != "" {
				var err error
				if w, err = strconv.ParseFloat(weight, 64); err != nil {
					return nil, fmt.Errorf("invalid star length %q", d)
				}
			}
			out = append(out, model.Star(w))
			continue
		}
		v, err := strconv.ParseFloat(d, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid length %q", d)
		}
		out = append(out, model.Absolute(v))
	}
	return out, nil
}

var namedColors = map[string]model.Color{
	"black":       model.Black,
	"white":       model.White,
	"red":         model.RGB(0xFF, 0, 0),
	"green":       model.RGB(0, 0x80, 0),
	"blue":        model.RGB(0, 0, 0xFF),
	"gray":        model.RGB(0x80, 0x80, 0x80),
	"transparent": {},
}

// parseColor reads a color name, #RRGGBB or #AARRGGBB. An empty string is
// the zero color, which elements treat as their default.
func parseColor(s string) (model.Color, error) {
	if s == "" {
		return model.Color{}, nil
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return model.Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return model.Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		v |= 0xFF000000
	}
	return model.Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func optionalColor(s string) (*model.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := parseColor(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
