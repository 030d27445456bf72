package docfile

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/fixedprint/model"
	"github.com/tsawler/fixedprint/resource"
	"github.com/tsawler/fixedprint/xps"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSample(t *testing.T) {
	f, err := Parse(Sample(), "/base")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.ResourceRoot != "/base" {
		t.Errorf("ResourceRoot = %q, want /base", f.ResourceRoot)
	}

	doc := f.Document
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", doc.PageCount())
	}
	if got := doc.Metadata().Title; got != "Fixed document sample" {
		t.Errorf("title = %q", got)
	}

	p1 := doc.Page(1)
	if p1.Width() != 793.7 || p1.Height() != 1122.5 {
		t.Errorf("page size = %vx%v", p1.Width(), p1.Height())
	}

	panel := p1.Elements()[0].(*model.Container)
	if panel.Arrange != model.ArrangeStack || len(panel.Children) != 2 {
		t.Fatalf("panel = %+v", panel)
	}

	logo := panel.Children[0].(*model.Image)
	if logo.Height != 150 || logo.HAlign != model.HAlignLeft {
		t.Errorf("logo layout = %+v", logo.Layout)
	}
	if want := (model.Thickness{Left: 50, Top: 25, Right: 50, Bottom: 25}); logo.Margin != want {
		t.Errorf("logo margin = %+v, want %+v", logo.Margin, want)
	}

	grid := panel.Children[1].(*model.Container)
	if grid.Arrange != model.ArrangeGrid || len(grid.Children) != 9 {
		t.Fatalf("grid = %+v", grid)
	}
	wantCols := []model.GridLength{model.Star(1), model.Star(0.5), model.Star(1)}
	for i, c := range wantCols {
		if grid.Columns[i] != c {
			t.Errorf("column %d = %+v, want %+v", i, grid.Columns[i], c)
		}
	}
	if grid.Border != model.Uniform(2) || grid.BorderColor != model.Black {
		t.Errorf("grid border = %+v %+v", grid.Border, grid.BorderColor)
	}

	last := grid.Children[8].(*model.Container)
	if last.Row != 2 || last.Column != 2 || last.Border != model.Uniform(1) {
		t.Errorf("last cell = %+v", last.Layout)
	}
	txt := last.Children[0].(*model.Text)
	if txt.Text != "2,2" || txt.HAlign != model.HAlignCenter || txt.Margin != model.Uniform(5) {
		t.Errorf("cell text = %+v", txt)
	}

	p2 := doc.Page(2).Elements()[0].(*model.Text)
	if p2.FontSize != 40 || p2.Margin != model.Uniform(96) {
		t.Errorf("page 2 text = %+v", p2)
	}
}

func TestSample_Serializes(t *testing.T) {
	f, err := Parse(Sample(), "")
	if err != nil {
		t.Fatal(err)
	}

	resolver := resource.NewMapResolver(map[string][]byte{"fish.png": pngBytes(t, 300, 200)})
	pkg, err := xps.Build(f.Document, xps.WithResolver(resolver))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := len(xps.PageParts(pkg)); got != 2 {
		t.Errorf("pages = %d, want 2", got)
	}
	if err := pkg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParse_Elements(t *testing.T) {
	src := `
unit = "pt"

[metadata]
title = "Shapes"
created = 2024-05-01T10:00:00Z

[[pages]]
width = 595
height = 842

  [[pages.elements]]
  type = "shape"
  shape = "ellipse"
  stroke = "#336699"
  stroke_thickness = 2
  fill = "#80FF0000"
  width = 100
  height = 50

  [[pages.elements]]
  type = "container"
  arrange = "canvas"
  background = "white"
  border = [1, 2]
  children = [
    { type = "text", text = "x", left = 10, top = 20, color = "red", font = "serif.ttf" },
    { type = "shape", shape = "line", width = 30, height = 0 },
  ]
`
	f, err := Parse([]byte(src), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	doc := f.Document
	if doc.Unit() != model.UnitPoint {
		t.Errorf("Unit() = %v, want pt", doc.Unit())
	}
	if doc.Metadata().CreationDate.Year() != 2024 {
		t.Errorf("CreationDate = %v", doc.Metadata().CreationDate)
	}

	elems := doc.Page(1).Elements()
	s := elems[0].(*model.Shape)
	if s.Shape != model.ShapeEllipse || s.StrokeThickness != 2 {
		t.Errorf("shape = %+v", s)
	}
	if s.Stroke != model.RGB(0x33, 0x66, 0x99) {
		t.Errorf("stroke = %+v", s.Stroke)
	}
	if s.Fill == nil || *s.Fill != (model.Color{A: 0x80, R: 0xFF}) {
		t.Errorf("fill = %v", s.Fill)
	}

	c := elems[1].(*model.Container)
	if c.Arrange != model.ArrangeCanvas || c.Background == nil || *c.Background != model.White {
		t.Errorf("container = %+v", c)
	}
	if want := (model.Thickness{Left: 1, Top: 2, Right: 1, Bottom: 2}); c.Border != want {
		t.Errorf("border = %+v, want %+v", c.Border, want)
	}
	txt := c.Children[0].(*model.Text)
	if txt.Left != 10 || txt.Top != 20 || txt.Color != model.RGB(0xFF, 0, 0) || txt.Font != "serif.ttf" {
		t.Errorf("text = %+v", txt)
	}
	if line := c.Children[1].(*model.Shape); line.Shape != model.ShapeLine {
		t.Errorf("line = %+v", line)
	}
}

func TestParse_Errors(t *testing.T) {
	page := "[[pages]]\nwidth = 100\nheight = 100\n"

	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax", "unit = ", ""},
		{"unknown unit", `unit = "mm"` + "\n" + page, "unknown unit"},
		{"unknown key", page + "colour = \"red\"\n", "unknown keys: pages.colour"},
		{"no pages", `unit = "dip"`, model.ErrEmptyDocument.Error()},
		{"zero size", "[[pages]]\nwidth = 0\nheight = 100\n", "pages[0]"},
		{"missing type", page + "[[pages.elements]]\ntext = \"x\"\n", "missing element type"},
		{"unknown type", page + "[[pages.elements]]\ntype = \"button\"\n", `unknown element type "button"`},
		{"image without source", page + "[[pages.elements]]\ntype = \"image\"\n", "no source"},
		{"bad color", page + "[[pages.elements]]\ntype = \"text\"\ncolor = \"#12\"\n", "invalid color"},
		{"bad margin", page + "[[pages.elements]]\ntype = \"text\"\nmargin = [1, 2, 3]\n", "margin"},
		{"bad halign", page + "[[pages.elements]]\ntype = \"text\"\nhalign = \"middle\"\n", "unknown halign"},
		{"bad shape", page + "[[pages.elements]]\ntype = \"shape\"\nshape = \"star\"\n", "unknown shape"},
		{"bad arrange", page + "[[pages.elements]]\ntype = \"container\"\narrange = \"flow\"\n", "unknown arrangement"},
		{"bad grid", page + "[[pages.elements]]\ntype = \"container\"\nrows = [\"x*\"]\n", "rows"},
		{"nested", page + "[[pages.elements]]\ntype = \"container\"\nchildren = [{ type = \"nope\" }]\n", "pages[0].elements[0]: children[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "")
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_EmptyDocumentSentinel(t *testing.T) {
	_, err := Parse([]byte(`unit = "dip"`), "")
	if !errors.Is(err, model.ErrEmptyDocument) {
		t.Errorf("error = %v, want ErrEmptyDocument", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Color
		wantErr bool
	}{
		{"", model.Color{}, false},
		{"black", model.Black, false},
		{"White", model.White, false},
		{"transparent", model.Color{}, false},
		{"#102030", model.RGB(0x10, 0x20, 0x30), false},
		{"#00102030", model.Color{R: 0x10, G: 0x20, B: 0x30}, false},
		{"102030", model.Color{}, true},
		{"#1020", model.Color{}, true},
		{"#GG0000", model.Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseGridLengths(t *testing.T) {
	got, err := parseGridLengths([]string{"*", "0.5*", " 120 ", "2*"})
	if err != nil {
		t.Fatalf("parseGridLengths() error = %v", err)
	}
	want := []model.GridLength{model.Star(1), model.Star(0.5), model.Absolute(120), model.Star(2)}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("length %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	for _, bad := range []string{"", "-1", "abc", "a*"} {
		if _, err := parseGridLengths([]string{bad}); err == nil {
			t.Errorf("parseGridLengths(%q) should fail", bad)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	src := "resource_root = \"assets\"\n[[pages]]\nwidth = 10\nheight = 10\n"
	path := filepath.Join(dir, "doc.toml")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(dir, "assets"); f.ResourceRoot != want {
		t.Errorf("ResourceRoot = %q, want %q", f.ResourceRoot, want)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
