package xps

import (
	"fmt"
	"math"

	"github.com/tsawler/fixedprint/model"
)

// pageRenderer lays out one page and produces its markup. All lengths it
// computes are in device-independent pixels.
type pageRenderer struct {
	res   *resources
	page  *model.Page
	scale float64 // document unit to DIP

	uses []string // resource parts referenced by the page
	used map[string]bool
}

func newPageRenderer(res *resources, page *model.Page, scale float64) *pageRenderer {
	return &pageRenderer{
		res:   res,
		page:  page,
		scale: scale,
		used:  make(map[string]bool),
	}
}

// render stacks the top-level elements from the top of the page.
func (r *pageRenderer) render() (*fixedPageXML, error) {
	w := r.page.Width() * r.scale
	h := r.page.Height() * r.scale

	out := &fixedPageXML{Xmlns: nsXPS, Width: num(w), Height: num(h), Lang: "und"}

	y := 0.0
	for _, e := range r.page.Elements() {
		size, err := r.measure(e)
		if err != nil {
			return nil, pageError(r.page.Number(), "layout", err)
		}
		kids, err := r.arrange(e, model.NewRect(0, y, w, size.Height))
		if err != nil {
			return nil, pageError(r.page.Number(), "layout", err)
		}
		out.Children = append(out.Children, kids...)
		y += size.Height
	}

	return out, nil
}

func (r *pageRenderer) use(part string) {
	if !r.used[part] {
		r.used[part] = true
		r.uses = append(r.uses, part)
	}
}

func (r *pageRenderer) image(ref string) (*imageEntry, error) {
	e, err := r.res.image(ref)
	if err != nil {
		return nil, err
	}
	r.use(e.part)
	return e, nil
}

func (r *pageRenderer) font(ref string) (*fontEntry, error) {
	e, err := r.res.font(ref)
	if err != nil {
		return nil, err
	}
	r.use(e.part)
	return e, nil
}

// measure returns the size e wants, margin included.
func (r *pageRenderer) measure(e model.Element) (model.Size, error) {
	m := &measurer{r: r}
	if err := e.Accept(m); err != nil {
		return model.Size{}, err
	}

	box := e.Box()
	size := m.size
	if box.Width > 0 {
		size.Width = box.Width * r.scale
	}
	if box.Height > 0 {
		size.Height = box.Height * r.scale
	}

	margin := box.Margin.Scale(r.scale)
	size.Width += margin.Horizontal()
	size.Height += margin.Vertical()
	return size, nil
}

// arrange positions e inside slot and returns its markup.
func (r *pageRenderer) arrange(e model.Element, slot model.Rect) ([]any, error) {
	desired, err := r.measure(e)
	if err != nil {
		return nil, err
	}

	box := e.Box()
	margin := box.Margin.Scale(r.scale)
	inner := slot.Deflate(margin)

	w := desired.Width - margin.Horizontal()
	h := desired.Height - margin.Vertical()
	fixedW, fixedH := box.Width > 0, box.Height > 0

	isImage := e.Kind() == model.KindImage
	if isImage && !fixedW && !fixedH {
		w, h = fitInside(w, h, inner)
	}

	x, w := alignH(inner, w, box.HAlign, !fixedW && !isImage)
	y, h := alignV(inner, h, box.VAlign, !fixedH && !isImage)

	p := &painter{r: r, rect: model.NewRect(x, y, w, h)}
	if err := e.Accept(p); err != nil {
		return nil, err
	}
	return p.out, nil
}

// fitInside scales w x h down, keeping its aspect ratio, until it fits
// the slot. It never scales up.
func fitInside(w, h float64, slot model.Rect) (float64, float64) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	f := 1.0
	if slot.Width > 0 && w > slot.Width {
		f = slot.Width / w
	}
	if slot.Height > 0 && h*f > slot.Height {
		f = slot.Height / h
	}
	return w * f, h * f
}

func alignH(inner model.Rect, w float64, a model.HorizontalAlignment, stretch bool) (float64, float64) {
	switch a {
	case model.HAlignLeft:
		return inner.X, w
	case model.HAlignRight:
		return inner.Right() - w, w
	case model.HAlignCenter:
		return inner.X + (inner.Width-w)/2, w
	default:
		if stretch {
			return inner.X, inner.Width
		}
		return inner.X + (inner.Width-w)/2, w
	}
}

func alignV(inner model.Rect, h float64, a model.VerticalAlignment, stretch bool) (float64, float64) {
	switch a {
	case model.VAlignTop:
		return inner.Y, h
	case model.VAlignBottom:
		return inner.Bottom() - h, h
	case model.VAlignCenter:
		return inner.Y + (inner.Height-h)/2, h
	default:
		if stretch {
			return inner.Y, inner.Height
		}
		return inner.Y + (inner.Height-h)/2, h
	}
}

// measurer computes the content size of one element, margins excluded.
type measurer struct {
	r    *pageRenderer
	size model.Size
}

func (m *measurer) VisitText(t *model.Text) error {
	f, err := m.r.font(t.Font)
	if err != nil {
		return err
	}
	size := t.EffectiveFontSize() * m.r.scale
	m.size = model.Size{
		Width:  f.font.Measure(t.Text, size),
		Height: f.font.LineHeight(size),
	}
	return nil
}

// VisitImage sizes an image at its pixel size (96 DPI). A single explicit
// dimension scales the other one proportionally.
func (m *measurer) VisitImage(i *model.Image) error {
	e, err := m.r.image(i.Source)
	if err != nil {
		return err
	}
	w, h := float64(e.info.Width), float64(e.info.Height)
	bw, bh := i.Width*m.r.scale, i.Height*m.r.scale

	switch {
	case bw > 0 && bh > 0:
		w, h = bw, bh
	case bw > 0:
		w, h = bw, h*bw/w
	case bh > 0:
		w, h = w*bh/h, bh
	}
	m.size = model.Size{Width: w, Height: h}
	return nil
}

func (m *measurer) VisitShape(s *model.Shape) error {
	m.size = model.Size{Width: s.Width * m.r.scale, Height: s.Height * m.r.scale}
	return nil
}

func (m *measurer) VisitContainer(c *model.Container) error {
	sizes := make([]model.Size, len(c.Children))
	for i, child := range c.Children {
		s, err := m.r.measure(child)
		if err != nil {
			return err
		}
		sizes[i] = s
	}

	var w, h float64
	switch c.Arrange {
	case model.ArrangeStack:
		for _, s := range sizes {
			w = math.Max(w, s.Width)
			h += s.Height
		}
	case model.ArrangeRow:
		for _, s := range sizes {
			w += s.Width
			h = math.Max(h, s.Height)
		}
	case model.ArrangeCanvas:
		for i, s := range sizes {
			box := c.Children[i].Box()
			w = math.Max(w, box.Left*m.r.scale+s.Width)
			h = math.Max(h, box.Top*m.r.scale+s.Height)
		}
	case model.ArrangeGrid:
		cols, rows := tracks(c.Columns), tracks(c.Rows)
		colNeed := make([]float64, len(cols))
		rowNeed := make([]float64, len(rows))
		for i, s := range sizes {
			box := c.Children[i].Box()
			if col, span := cell(box.Column, box.ColumnSpan, len(cols)); span == 1 {
				colNeed[col] = math.Max(colNeed[col], s.Width)
			}
			if row, span := cell(box.Row, box.RowSpan, len(rows)); span == 1 {
				rowNeed[row] = math.Max(rowNeed[row], s.Height)
			}
		}
		w = gridDesired(cols, m.r.scale, colNeed)
		h = gridDesired(rows, m.r.scale, rowNeed)
	default:
		return fmt.Errorf("container: unknown arrangement %d", c.Arrange)
	}

	border := c.Border.Scale(m.r.scale)
	m.size = model.Size{Width: w + border.Horizontal(), Height: h + border.Vertical()}
	return nil
}

// slots returns the slot of every child of c inside content.
func (r *pageRenderer) slots(c *model.Container, content model.Rect) ([]model.Rect, error) {
	out := make([]model.Rect, len(c.Children))

	switch c.Arrange {
	case model.ArrangeStack:
		y := content.Y
		for i, child := range c.Children {
			s, err := r.measure(child)
			if err != nil {
				return nil, err
			}
			out[i] = model.NewRect(content.X, y, content.Width, s.Height)
			y += s.Height
		}
	case model.ArrangeRow:
		x := content.X
		for i, child := range c.Children {
			s, err := r.measure(child)
			if err != nil {
				return nil, err
			}
			out[i] = model.NewRect(x, content.Y, s.Width, content.Height)
			x += s.Width
		}
	case model.ArrangeCanvas:
		for i, child := range c.Children {
			s, err := r.measure(child)
			if err != nil {
				return nil, err
			}
			box := child.Box()
			out[i] = model.NewRect(content.X+box.Left*r.scale, content.Y+box.Top*r.scale, s.Width, s.Height)
		}
	case model.ArrangeGrid:
		cols, rows := tracks(c.Columns), tracks(c.Rows)
		colX := offsets(content.X, distribute(cols, content.Width, r.scale))
		rowY := offsets(content.Y, distribute(rows, content.Height, r.scale))
		for i, child := range c.Children {
			box := child.Box()
			col, cspan := cell(box.Column, box.ColumnSpan, len(cols))
			row, rspan := cell(box.Row, box.RowSpan, len(rows))
			out[i] = model.NewRect(
				colX[col], rowY[row],
				colX[col+cspan]-colX[col], rowY[row+rspan]-rowY[row],
			)
		}
	default:
		return nil, fmt.Errorf("container: unknown arrangement %d", c.Arrange)
	}

	return out, nil
}

// tracks returns the grid definitions, defaulting to a single star track.
func tracks(defs []model.GridLength) []model.GridLength {
	if len(defs) == 0 {
		return []model.GridLength{model.Star(1)}
	}
	return defs
}

func starWeight(d model.GridLength) float64 {
	if d.Value <= 0 {
		return 1
	}
	return d.Value
}

// cell clamps a grid index and span to n tracks.
func cell(index, span, n int) (int, int) {
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	if span < 1 {
		span = 1
	}
	if index+span > n {
		span = n - index
	}
	return index, span
}

// gridDesired returns the total length the tracks need. Star tracks share
// a common unit large enough for every star track's content.
func gridDesired(defs []model.GridLength, scale float64, need []float64) float64 {
	var abs, unit, weights float64
	for i, d := range defs {
		if !d.Star {
			abs += d.Value * scale
			continue
		}
		w := starWeight(d)
		weights += w
		unit = math.Max(unit, need[i]/w)
	}
	return abs + unit*weights
}

// distribute splits avail across the tracks: absolute tracks first, star
// tracks share the rest by weight.
func distribute(defs []model.GridLength, avail, scale float64) []float64 {
	out := make([]float64, len(defs))
	var abs, weights float64
	for i, d := range defs {
		if d.Star {
			weights += starWeight(d)
			continue
		}
		out[i] = d.Value * scale
		abs += out[i]
	}
	rest := math.Max(0, avail-abs)
	for i, d := range defs {
		if d.Star && weights > 0 {
			out[i] = rest * starWeight(d) / weights
		}
	}
	return out
}

// offsets turns track lengths into len+1 boundary positions.
func offsets(start float64, lengths []float64) []float64 {
	out := make([]float64, len(lengths)+1)
	out[0] = start
	for i, l := range lengths {
		out[i+1] = out[i] + l
	}
	return out
}
