package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyDocument is returned when a document has no pages.
	ErrEmptyDocument = errors.New("document has no pages")
	// ErrInvalidPage is returned for pages with non-positive dimensions or
	// nil content.
	ErrInvalidPage = errors.New("invalid page")
)

// Document is an immutable, ordered sequence of fixed pages.
type Document struct {
	metadata Metadata
	unit     Unit
	pages    []*Page
}

// Metadata contains document-level information
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Keywords     []string
	Creator      string
	CreationDate time.Time
}

// IsZero reports whether no metadata field is set.
func (m Metadata) IsZero() bool {
	return m.Title == "" && m.Author == "" && m.Subject == "" &&
		len(m.Keywords) == 0 && m.Creator == "" && m.CreationDate.IsZero()
}

// NewDocument creates a document from pages. Pages are numbered in the
// order given. A page can belong to only one document.
func NewDocument(meta Metadata, unit Unit, pages ...*Page) (*Document, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}
	if unit != UnitDIP && unit != UnitPoint {
		return nil, fmt.Errorf("unknown unit %d", unit)
	}

	d := &Document{
		metadata: meta,
		unit:     unit,
		pages:    make([]*Page, 0, len(pages)),
	}
	d.metadata.Keywords = append([]string(nil), meta.Keywords...)

	seen := make(map[*Page]int, len(pages))
	for i, page := range pages {
		if page == nil {
			return nil, fmt.Errorf("%w: page %d is nil", ErrInvalidPage, i+1)
		}
		if page.number.Load() != 0 {
			return nil, fmt.Errorf("%w: page %d already belongs to a document", ErrInvalidPage, i+1)
		}
		if first, dup := seen[page]; dup {
			return nil, fmt.Errorf("%w: page %d is the same page as page %d", ErrInvalidPage, i+1, first)
		}
		if page.width <= 0 || page.height <= 0 {
			return nil, fmt.Errorf("%w: page %d has dimensions %gx%g", ErrInvalidPage, i+1, page.width, page.height)
		}
		seen[page] = i + 1
	}

	// Pages are claimed only once the whole list is accepted. A concurrent
	// caller may still win a page; everything claimed so far is released.
	for i, page := range pages {
		if !page.number.CompareAndSwap(0, int64(i+1)) {
			for _, claimed := range pages[:i] {
				claimed.number.Store(0)
			}
			return nil, fmt.Errorf("%w: page %d already belongs to a document", ErrInvalidPage, i+1)
		}
		d.pages = append(d.pages, page)
	}

	return d, nil
}

// Metadata returns the document metadata.
func (d *Document) Metadata() Metadata {
	m := d.metadata
	m.Keywords = append([]string(nil), d.metadata.Keywords...)
	return m
}

// Unit returns the logical unit shared by all pages.
func (d *Document) Unit() Unit { return d.unit }

// Pages returns the pages in order. The slice is a copy.
func (d *Document) Pages() []*Page {
	out := make([]*Page, len(d.pages))
	copy(out, d.pages)
	return out
}

// Page returns a page by number (1-indexed)
func (d *Document) Page(number int) *Page {
	if number < 1 || number > len(d.pages) {
		return nil
	}
	return d.pages[number-1]
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Depth returns the deepest container nesting across all pages.
func (d *Document) Depth() int {
	deepest := 0
	for _, page := range d.pages {
		if depth := page.Depth(); depth > deepest {
			deepest = depth
		}
	}
	return deepest
}
