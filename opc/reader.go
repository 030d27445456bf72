package opc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Open reads the package stored at filename.
func Open(filename string, startType string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading package: %w", err)
	}
	return Read(bytes.NewReader(data), int64(len(data)), startType)
}

// Read parses a package from a zip archive. Parts get their content type
// from the manifest; relationship parts become explicit relationships.
func Read(r io.ReaderAt, size int64, startType string) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files["/"+f.Name] = f
	}

	ctFile := files[contentTypesName]
	if ctFile == nil {
		return nil, fmt.Errorf("missing required file: %s", strings.TrimPrefix(contentTypesName, "/"))
	}
	var types typesXML
	if err := decodeFile(ctFile, &types); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}

	defaults := make(map[string]string, len(types.Defaults))
	for _, d := range types.Defaults {
		defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	overrides := make(map[string]string, len(types.Overrides))
	for _, o := range types.Overrides {
		overrides[strings.ToLower(o.PartName)] = o.ContentType
	}

	pkg := New(startType)
	var relsFiles []*zip.File

	for _, f := range zr.File {
		name := "/" + f.Name
		if name == contentTypesName || strings.HasSuffix(name, "/") {
			continue
		}
		if _, ok := sourceOfRels(name); ok {
			relsFiles = append(relsFiles, f)
			continue
		}

		ct, ok := overrides[strings.ToLower(name)]
		if !ok {
			ct, ok = defaults[extension(name)]
		}
		if !ok {
			return nil, fmt.Errorf("part %s has no content type", name)
		}

		data, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		if _, err := pkg.AddPart(name, ct, data); err != nil {
			return nil, err
		}
	}

	for _, f := range relsFiles {
		source, _ := sourceOfRels("/" + f.Name)
		var rels relationshipsXML
		if err := decodeFile(f, &rels); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		for _, rel := range rels.Relationships {
			r := Relationship{ID: rel.ID, Source: source, Type: rel.Type}
			if rel.TargetMode == "External" {
				r.Target = rel.Target
				r.External = true
			} else {
				r.Target = ResolveTarget(source, rel.Target)
			}
			pkg.addRel(r)
		}
	}

	return pkg, nil
}

// ResolveTarget turns a relationship or markup reference into an absolute
// part name, relative to the directory of source.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(target)
	}
	base := "/"
	if source != RootSource {
		base = path.Dir(source)
	}
	return path.Join(base, target)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func decodeFile(f *zip.File, v any) error {
	data, err := readFile(f)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}
