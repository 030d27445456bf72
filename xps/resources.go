package xps

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tsawler/fixedprint/format"
	"github.com/tsawler/fixedprint/opc"
	"github.com/tsawler/fixedprint/resource"
)

type imageEntry struct {
	part string
	info resource.ImageInfo
}

type fontEntry struct {
	part string
	font *resource.Font
}

// resources resolves image and font references once per Build and keeps
// one part per distinct content.
type resources struct {
	resolver resource.Resolver

	images map[string]*imageEntry // by reference
	fonts  map[string]*fontEntry

	byPart map[string]bool
	parts  []opc.Part // in first-use order
}

func newResources(r resource.Resolver) *resources {
	return &resources{
		resolver: r,
		images:   make(map[string]*imageEntry),
		fonts:    make(map[string]*fontEntry),
		byPart:   make(map[string]bool),
	}
}

// image resolves ref to a PNG, JPEG or TIFF image part.
func (rs *resources) image(ref string) (*imageEntry, error) {
	if e, ok := rs.images[ref]; ok {
		return e, nil
	}

	res, err := rs.resolver.Resolve(ref)
	if err != nil {
		return nil, &SerializationError{Op: "resolve image", Err: fmt.Errorf("%q: %w", ref, err)}
	}
	if !res.Format.IsImage() {
		return nil, &SerializationError{Op: "decode image", Err: fmt.Errorf("%q: %s is not an image", ref, res.Format)}
	}
	norm, err := resource.Normalize(res)
	if err != nil {
		return nil, &SerializationError{Op: "decode image", Err: err}
	}
	info, err := resource.ProbeImage(norm)
	if err != nil {
		return nil, &SerializationError{Op: "decode image", Err: err}
	}

	name := fmt.Sprintf("%s/%s%s", imagesDir, contentHash(norm.Data), norm.Format.Extension())
	rs.addPart(name, norm.Format.ContentType(), norm.Data)

	e := &imageEntry{part: name, info: info}
	rs.images[ref] = e
	return e, nil
}

// font resolves ref to a font part. An empty ref selects the built-in font.
func (rs *resources) font(ref string) (*fontEntry, error) {
	if e, ok := rs.fonts[ref]; ok {
		return e, nil
	}

	var res *resource.Resource
	if ref == "" {
		res = resource.DefaultFont()
	} else {
		var err error
		res, err = rs.resolver.Resolve(ref)
		if err != nil {
			return nil, &SerializationError{Op: "resolve font", Err: fmt.Errorf("%q: %w", ref, err)}
		}
	}

	f, err := resource.LoadFont(res)
	if err != nil {
		return nil, &SerializationError{Op: "load font", Err: err}
	}

	name := fmt.Sprintf("%s/%s%s", fontsDir, contentHash(res.Data), format.TrueType.Extension())
	rs.addPart(name, format.TrueType.ContentType(), res.Data)

	e := &fontEntry{part: name, font: f}
	rs.fonts[ref] = e
	return e, nil
}

func (rs *resources) addPart(name, contentType string, data []byte) {
	if rs.byPart[name] {
		return
	}
	rs.byPart[name] = true
	rs.parts = append(rs.parts, opc.Part{Name: name, ContentType: contentType, Data: data})
}

// contentHash returns the first 16 hex characters of the SHA-256 of data.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
