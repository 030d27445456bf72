// Package xps serializes a fixed-page document into an XPS package.
//
// The package produced by Build is an OPC container with one fixed
// document sequence, one fixed document and one fixed page per document
// page. Images and fonts become shared resource parts, deduplicated by
// content. Core properties are added when the document carries metadata.
//
// # Usage
//
//	data, err := xps.Serialize(doc, xps.WithResolver(resource.NewFileResolver(
//	    resource.WithRoot("assets"),
//	)))
//	if err != nil {
//	    var serr *xps.SerializationError
//	    if errors.As(err, &serr) {
//	        log.Printf("page %d: %s failed", serr.Page, serr.Op)
//	    }
//	}
//
// # Layout
//
// Page content is positioned by a small arrange pass. Top-level elements
// stack from the top of the page. Containers stack, row, grid or canvas
// their children. Margins and alignment follow the usual box rules: a
// stretched element fills its slot unless it has an explicit size, and
// images keep their aspect ratio and shrink to fit their slot.
//
// Output is deterministic. The same document and resources always give
// the same part names, relationships and bytes.
package xps
