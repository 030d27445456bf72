package xps

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/fixedprint/opc"
)

// Open reads the XPS package stored at filename.
func Open(filename string) (*opc.Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading XPS: %w", err)
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read parses an XPS package and restores the markup references that
// .rels parts do not carry: sequence to document through
// DocumentReference and document to page through PageContent.
func Read(r io.ReaderAt, size int64) (*opc.Package, error) {
	pkg, err := opc.Read(r, size, RelTypeFixedRepresentation)
	if err != nil {
		return nil, err
	}

	seq, err := pkg.StartPart()
	if err != nil {
		return nil, err
	}

	var sx sequenceXML
	if err := xml.Unmarshal(seq.Data, &sx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", seq.Name, err)
	}

	for _, ref := range sx.References {
		docName := opc.ResolveTarget(seq.Name, ref.Source)
		pkg.Reference(seq.Name, docName, RelTypeDocumentReference)

		doc := pkg.Part(docName)
		if doc == nil {
			continue // reported by Validate as a dangling target
		}
		var dx documentXML
		if err := xml.Unmarshal(doc.Data, &dx); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", doc.Name, err)
		}
		for _, pc := range dx.Pages {
			pkg.Reference(doc.Name, opc.ResolveTarget(doc.Name, pc.Source), RelTypePageContent)
		}
	}

	return pkg, nil
}

// PageParts returns the page part names of pkg in document order.
func PageParts(pkg *opc.Package) []string {
	var out []string
	for _, r := range pkg.Relationships() {
		if r.Type == RelTypePageContent {
			out = append(out, r.Target)
		}
	}
	return out
}
