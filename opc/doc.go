// Package opc implements the Open Packaging Conventions container used by
// XPS documents: a zip archive of named parts, a content-type manifest
// ([Content_Types].xml) and relationship parts (_rels/*.rels).
//
// # Building a Package
//
//	pkg := opc.New(startType)
//	pkg.AddPart("/FixedDocumentSequence.fdseq", seqType, seqXML)
//	pkg.Relate(opc.RootSource, "/FixedDocumentSequence.fdseq", startType)
//	if err := pkg.Validate(); err != nil {
//	    // dangling relationship, missing content type, unreachable part...
//	}
//	data, err := pkg.Bytes()
//
// Relationships come in two flavors. Explicit relationships are written to
// the source part's .rels file. Implicit references are carried by the
// source part's own markup (for example a document listing its pages);
// they are tracked so the package graph can be validated, but they are not
// written to any .rels file.
//
// # Determinism
//
// Serializing the same package twice yields identical bytes: parts are
// written in insertion order with a fixed timestamp, and the manifest and
// relationship parts are sorted.
//
// # Reading
//
// [Open] and [Read] parse an existing package. Only explicit relationships
// can be recovered from the archive; format-specific code adds implicit
// references by reading part markup.
package opc
