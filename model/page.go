package model

import (
	"fmt"
	"sync/atomic"
)

// Page is a single fixed-size page. Its dimensions and element tree are
// set at construction and never change.
type Page struct {
	number   atomic.Int64
	width    float64
	height   float64
	elements []Element
}

// NewPage creates a page with given dimensions, in the document's unit.
// The element tree is copied, so later changes to the passed elements do
// not affect the page.
func NewPage(width, height float64, elements ...Element) (*Page, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %gx%g must be positive", ErrInvalidPage, width, height)
	}
	copied := make([]Element, 0, len(elements))
	for i, elem := range elements {
		if elem == nil {
			return nil, fmt.Errorf("%w: element %d is nil", ErrInvalidPage, i)
		}
		c, err := cloneElement(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidPage, i, err)
		}
		copied = append(copied, c)
	}
	return &Page{width: width, height: height, elements: copied}, nil
}

// MustPage is like NewPage but panics on error. It is intended for tests
// and static document definitions.
func MustPage(width, height float64, elements ...Element) *Page {
	p, err := NewPage(width, height, elements...)
	if err != nil {
		panic(err)
	}
	return p
}

// Number returns the 1-indexed page number, or 0 if the page has not been
// added to a document.
func (p *Page) Number() int { return int(p.number.Load()) }

// Width returns the page width in document units.
func (p *Page) Width() float64 { return p.width }

// Height returns the page height in document units.
func (p *Page) Height() float64 { return p.height }

// Size returns the page dimensions.
func (p *Page) Size() Size { return Size{Width: p.width, Height: p.height} }

// Elements returns the top-level elements in order. The returned slice is
// a copy; the elements themselves must be treated as read-only.
func (p *Page) Elements() []Element {
	out := make([]Element, len(p.elements))
	copy(out, p.elements)
	return out
}

// Depth returns the deepest container nesting on the page, 0 if the page
// holds no containers.
func (p *Page) Depth() int {
	m := &depthMeter{}
	for _, elem := range p.elements {
		_ = elem.Accept(m)
	}
	return m.deepest
}

// depthMeter records the deepest container nesting it visits.
type depthMeter struct {
	depth, deepest int
}

func (m *depthMeter) VisitText(*Text) error   { return nil }
func (m *depthMeter) VisitImage(*Image) error { return nil }
func (m *depthMeter) VisitShape(*Shape) error { return nil }
func (m *depthMeter) VisitContainer(c *Container) error {
	m.depth++
	m.deepest = max(m.deepest, m.depth)
	for _, child := range c.Children {
		if err := child.Accept(m); err != nil {
			return err
		}
	}
	m.depth--
	return nil
}

// ImageSources returns every image source referenced on the page, in tree
// order, including duplicates.
func (p *Page) ImageSources() []string {
	w := &imageCollector{}
	for _, elem := range p.elements {
		_ = elem.Accept(w)
	}
	return w.sources
}

type imageCollector struct {
	sources []string
}

func (w *imageCollector) VisitText(*Text) error   { return nil }
func (w *imageCollector) VisitShape(*Shape) error { return nil }
func (w *imageCollector) VisitImage(i *Image) error {
	w.sources = append(w.sources, i.Source)
	return nil
}
func (w *imageCollector) VisitContainer(c *Container) error {
	for _, child := range c.Children {
		if err := child.Accept(w); err != nil {
			return err
		}
	}
	return nil
}

// cloner deep-copies an element tree.
type cloner struct {
	out Element
}

func cloneElement(elem Element) (Element, error) {
	c := &cloner{}
	if err := elem.Accept(c); err != nil {
		return nil, err
	}
	return c.out, nil
}

func (c *cloner) VisitText(t *Text) error {
	cp := *t
	c.out = &cp
	return nil
}

func (c *cloner) VisitImage(i *Image) error {
	cp := *i
	c.out = &cp
	return nil
}

func (c *cloner) VisitShape(s *Shape) error {
	cp := *s
	if s.Fill != nil {
		fill := *s.Fill
		cp.Fill = &fill
	}
	c.out = &cp
	return nil
}

func (c *cloner) VisitContainer(ct *Container) error {
	cp := *ct
	if ct.Background != nil {
		bg := *ct.Background
		cp.Background = &bg
	}
	cp.Rows = append([]GridLength(nil), ct.Rows...)
	cp.Columns = append([]GridLength(nil), ct.Columns...)
	cp.Children = make([]Element, 0, len(ct.Children))
	for i, child := range ct.Children {
		if child == nil {
			return fmt.Errorf("container child %d is nil", i)
		}
		sub, err := cloneElement(child)
		if err != nil {
			return err
		}
		cp.Children = append(cp.Children, sub)
	}
	c.out = &cp
	return nil
}
