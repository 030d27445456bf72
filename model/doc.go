// Package model provides the in-memory representation of a fixed-layout,
// paginated document.
//
// A [Document] is an ordered, non-empty list of [Page] values that share
// one logical [Unit]. Documents and pages are immutable once constructed:
//
//	page, err := model.NewPage(793.7, 1122.5, &model.Text{Text: "Hello"})
//	if err != nil {
//	    // handle error
//	}
//	doc, err := model.NewDocument(model.Metadata{Title: "Report"}, model.UnitDIP, page)
//
// # Elements
//
// Page content is a tree of [Element] values. The variants are closed:
//
//   - [Text] - a run of text in one font
//   - [Image] - a raster image referenced by name or URI
//   - [Shape] - a rectangle, line or ellipse
//   - [Container] - children arranged as a stack, row, grid or canvas
//
// Code that walks the tree implements [Visitor], which has one method per
// variant, rather than switching on concrete types.
//
// # Layout
//
// Every element carries a [Layout] with margin, alignment, explicit size
// and grid or canvas placement. Positions are resolved when the document
// is serialized.
package model
