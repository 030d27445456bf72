package xps

import (
	"fmt"

	"github.com/tsawler/fixedprint/model"
)

// painter emits the markup of one element placed at rect.
type painter struct {
	r    *pageRenderer
	rect model.Rect
	out  []any
}

func (p *painter) VisitText(t *model.Text) error {
	if t.Text == "" {
		return nil
	}
	f, err := p.r.font(t.Font)
	if err != nil {
		return err
	}
	size := t.EffectiveFontSize() * p.r.scale

	p.out = append(p.out, glyphsXML{
		Fill:                colorOr(t.Color, model.Black).Hex(),
		FontURI:             f.part,
		FontRenderingEmSize: num(size),
		OriginX:             num(p.rect.X),
		OriginY:             num(p.rect.Y + f.font.Ascent(size)),
		UnicodeString:       escapeUnicodeString(t.Text),
	})
	return nil
}

func (p *painter) VisitImage(i *model.Image) error {
	e, err := p.r.image(i.Source)
	if err != nil {
		return err
	}

	p.out = append(p.out, pathXML{
		Data: rectData(p.rect),
		Name: i.AltText,
		FillBrush: &pathFillXML{Brush: imageBrushXML{
			ImageSource:   e.part,
			Viewbox:       fmt.Sprintf("0,0,%d,%d", e.info.Width, e.info.Height),
			ViewboxUnits:  "Absolute",
			Viewport:      rectString(p.rect),
			ViewportUnits: "Absolute",
		}},
	})
	return nil
}

func (p *painter) VisitShape(s *model.Shape) error {
	path := pathXML{}
	switch s.Shape {
	case model.ShapeLine:
		path.Data = "M " + pair(p.rect.Left(), p.rect.Top()) + " L " + pair(p.rect.Right(), p.rect.Bottom())
	case model.ShapeEllipse:
		path.Data = ellipseData(p.rect)
	default:
		path.Data = rectData(p.rect)
	}

	if s.StrokeThickness > 0 {
		path.Stroke = colorOr(s.Stroke, model.Black).Hex()
		path.StrokeThickness = num(s.StrokeThickness * p.r.scale)
	}
	if s.Fill != nil {
		path.Fill = s.Fill.Hex()
	}
	if path.Stroke == "" && path.Fill == "" {
		return nil
	}

	p.out = append(p.out, path)
	return nil
}

// VisitContainer paints the background, then the border as an even-odd
// frame, then the children inside a Canvas.
func (p *painter) VisitContainer(c *model.Container) error {
	if c.Background != nil {
		p.out = append(p.out, pathXML{Data: rectData(p.rect), Fill: c.Background.Hex()})
	}

	border := c.Border.Scale(p.r.scale)
	content := p.rect.Deflate(border)
	if !border.IsZero() {
		p.out = append(p.out, pathXML{
			Data: "F 0 " + rectData(p.rect) + " " + rectData(content),
			Fill: colorOr(c.BorderColor, model.Black).Hex(),
		})
	}

	slots, err := p.r.slots(c, content)
	if err != nil {
		return err
	}

	canvas := canvasXML{}
	for i, child := range c.Children {
		kids, err := p.r.arrange(child, slots[i])
		if err != nil {
			return err
		}
		canvas.Children = append(canvas.Children, kids...)
	}
	if len(canvas.Children) > 0 {
		p.out = append(p.out, canvas)
	}
	return nil
}

func colorOr(c, fallback model.Color) model.Color {
	if c.IsZero() {
		return fallback
	}
	return c
}

func rectData(r model.Rect) string {
	return fmt.Sprintf("M %s L %s L %s L %s Z",
		pair(r.Left(), r.Top()), pair(r.Right(), r.Top()),
		pair(r.Right(), r.Bottom()), pair(r.Left(), r.Bottom()))
}

func rectString(r model.Rect) string {
	return pair(r.X, r.Y) + "," + pair(r.Width, r.Height)
}

// ellipseData draws the ellipse inscribed in r as two half arcs.
func ellipseData(r model.Rect) string {
	rx, ry := r.Width/2, r.Height/2
	c := r.Center()
	radii := pair(rx, ry)
	return fmt.Sprintf("M %s A %s 0 1 1 %s A %s 0 1 1 %s Z",
		pair(c.X-rx, c.Y), radii, pair(c.X+rx, c.Y), radii, pair(c.X-rx, c.Y))
}
