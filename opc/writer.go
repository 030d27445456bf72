package opc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// modTime is the timestamp stamped on every zip entry, the earliest
// DOS date.
var modTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Bytes serializes the package into a zip archive.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the package as a zip archive: the manifest first, then
// parts in insertion order, then relationship parts sorted by source.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	manifest, err := p.manifestXML()
	if err != nil {
		return cw.n, err
	}
	if err := writeEntry(zw, contentTypesName, manifest); err != nil {
		return cw.n, err
	}

	for _, part := range p.parts {
		if err := writeEntry(zw, part.Name, part.Data); err != nil {
			return cw.n, err
		}
	}

	for _, source := range p.sortedSources() {
		data, err := p.relsXML(source)
		if err != nil {
			return cw.n, err
		}
		if err := writeEntry(zw, relsPartName(source), data); err != nil {
			return cw.n, err
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("closing zip: %w", err)
	}
	return cw.n, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fh := &zip.FileHeader{
		Name:     strings.TrimPrefix(name, "/"),
		Method:   zip.Deflate,
		Modified: modTime,
	}
	w, err := zw.CreateHeader(fh)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// manifestXML renders [Content_Types].xml.
func (p *Package) manifestXML() ([]byte, error) {
	defaults, overrides := p.ContentTypes()

	doc := typesXML{Xmlns: nsContentTypes}

	exts := make([]string, 0, len(defaults))
	for ext := range defaults {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		doc.Defaults = append(doc.Defaults, defaultXML{Extension: ext, ContentType: defaults[ext]})
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Overrides = append(doc.Overrides, overrideXML{PartName: name, ContentType: overrides[name]})
	}

	return marshalXML(doc)
}

// relsXML renders the .rels part for source.
func (p *Package) relsXML(source string) ([]byte, error) {
	doc := relationshipsXML{Xmlns: nsRelationships}
	for _, r := range p.rels {
		if r.Implicit || r.Source != source {
			continue
		}
		rx := relationshipXML{ID: r.ID, Type: r.Type, Target: r.Target}
		if r.External {
			rx.TargetMode = "External"
		}
		doc.Relationships = append(doc.Relationships, rx)
	}
	return marshalXML(doc)
}

func marshalXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding XML: %w", err)
	}
	return buf.Bytes(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
