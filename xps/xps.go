package xps

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/fixedprint/model"
	"github.com/tsawler/fixedprint/opc"
)

// Serialize builds the package for doc and returns its bytes.
func Serialize(doc *model.Document, opts ...Option) ([]byte, error) {
	pkg, err := Build(doc, opts...)
	if err != nil {
		return nil, err
	}
	data, err := pkg.Bytes()
	if err != nil {
		return nil, &SerializationError{Op: "write package", Err: err}
	}
	return data, nil
}

// Build lays out every page of doc and assembles the package. The
// returned package has passed Validate.
func Build(doc *model.Document, opts ...Option) (*opc.Package, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if doc == nil {
		return nil, &SerializationError{Op: "validate document", Err: model.ErrEmptyDocument}
	}

	b := newBuilder(doc, o)
	return b.build()
}

// builder holds the state of one Build call.
type builder struct {
	opts options
	doc  *model.Document

	res   *resources
	pages []builtPage
}

type builtPage struct {
	number int
	width  float64 // DIP
	height float64
	data   []byte
	uses   []string // resource part names, first use order
}

func newBuilder(doc *model.Document, o options) *builder {
	return &builder{
		opts: o,
		doc:  doc,
		res:  newResources(o.resolver),
	}
}

func (b *builder) build() (*opc.Package, error) {
	log := b.opts.logger
	scale := b.doc.Unit().ToDIP()

	if err := b.checkDepth(); err != nil {
		return nil, err
	}

	for _, page := range b.doc.Pages() {
		r := newPageRenderer(b.res, page, scale)
		markup, err := r.render()
		if err != nil {
			return nil, err
		}
		data, err := marshalPart(markup)
		if err != nil {
			return nil, &SerializationError{Page: page.Number(), Op: "encode page", Err: err}
		}

		b.pages = append(b.pages, builtPage{
			number: page.Number(),
			width:  page.Width() * scale,
			height: page.Height() * scale,
			data:   data,
			uses:   r.uses,
		})
		log.Debug("serialized page", "page", page.Number(), "bytes", len(data), "resources", len(r.uses))
	}

	pkg, err := b.assemble()
	if err != nil {
		return nil, err
	}
	if err := pkg.Validate(); err != nil {
		return nil, &SerializationError{Op: "validate package", Err: err}
	}

	log.Debug("built package", "pages", len(b.pages), "parts", len(pkg.Parts()))
	return pkg, nil
}

// checkDepth rejects the document before any resource is resolved when a
// page nests containers deeper than the limit.
func (b *builder) checkDepth() error {
	if b.doc.Depth() <= b.opts.maxDepth {
		return nil
	}
	for _, page := range b.doc.Pages() {
		if d := page.Depth(); d > b.opts.maxDepth {
			return &SerializationError{
				Page: page.Number(),
				Op:   "check depth",
				Err:  fmt.Errorf("container nesting %d exceeds limit %d", d, b.opts.maxDepth),
			}
		}
	}
	return nil
}

// assemble adds every part and relationship to a new package: sequence,
// document, pages, resources, then core properties.
func (b *builder) assemble() (*opc.Package, error) {
	pkg := opc.New(RelTypeFixedRepresentation)

	seq, err := marshalPart(sequenceXML{
		Xmlns:      nsXPS,
		References: []documentReferenceXML{{Source: DocumentPart}},
	})
	if err != nil {
		return nil, &SerializationError{Op: "encode sequence", Err: err}
	}

	fdoc := documentXML{Xmlns: nsXPS}
	for _, p := range b.pages {
		fdoc.Pages = append(fdoc.Pages, pageContentXML{
			Source: PagePart(p.number),
			Width:  num(p.width),
			Height: num(p.height),
		})
	}
	docData, err := marshalPart(fdoc)
	if err != nil {
		return nil, &SerializationError{Op: "encode document", Err: err}
	}

	add := func(name, contentType string, data []byte) error {
		if _, err := pkg.AddPart(name, contentType, data); err != nil {
			return &SerializationError{Op: "add part", Err: err}
		}
		return nil
	}

	if err := add(SequencePart, ContentTypeSequence, seq); err != nil {
		return nil, err
	}
	if err := add(DocumentPart, ContentTypeDocument, docData); err != nil {
		return nil, err
	}
	pkg.Relate(opc.RootSource, SequencePart, RelTypeFixedRepresentation)
	pkg.Reference(SequencePart, DocumentPart, RelTypeDocumentReference)

	for _, p := range b.pages {
		name := PagePart(p.number)
		if err := add(name, ContentTypePage, p.data); err != nil {
			return nil, err
		}
		pkg.Reference(DocumentPart, name, RelTypePageContent)
		for _, target := range p.uses {
			pkg.Relate(name, target, RelTypeRequiredResource)
		}
	}

	for _, part := range b.res.parts {
		if err := add(part.Name, part.ContentType, part.Data); err != nil {
			return nil, err
		}
	}

	meta := b.doc.Metadata()
	if !meta.IsZero() {
		data, err := marshalPart(coreProperties(meta, b.contentID()))
		if err != nil {
			return nil, &SerializationError{Op: "encode core properties", Err: err}
		}
		if err := add(CorePropertiesPart, ContentTypeCoreProperties, data); err != nil {
			return nil, err
		}
		pkg.Relate(opc.RootSource, CorePropertiesPart, opc.RelTypeCoreProperties)
	}

	return pkg, nil
}

// contentID derives a stable identifier from the page markup and
// resource bytes, so identical documents share an identifier.
func (b *builder) contentID() uuid.UUID {
	h := sha256.New()
	write := func(h hash.Hash, name string, data []byte) {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write(data)
	}
	for _, p := range b.pages {
		write(h, PagePart(p.number), p.data)
	}
	for _, part := range b.res.parts {
		write(h, part.Name, part.Data)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, h.Sum(nil))
}

func coreProperties(meta model.Metadata, id uuid.UUID) corePropertiesXML {
	cp := corePropertiesXML{
		XmlnsCP:    "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XmlnsDC:    "http://purl.org/dc/elements/1.1/",
		XmlnsTerms: "http://purl.org/dc/terms/",
		XmlnsXSI:   "http://www.w3.org/2001/XMLSchema-instance",
		Title:      meta.Title,
		Creator:    meta.Author,
		Subject:    meta.Subject,
		Keywords:   strings.Join(meta.Keywords, ", "),
		Identifier: "urn:uuid:" + id.String(),
	}
	if cp.Creator == "" {
		cp.Creator = meta.Creator
	}
	if !meta.CreationDate.IsZero() {
		cp.Created = &w3cDateXML{
			Type:  "dcterms:W3CDTF",
			Value: meta.CreationDate.UTC().Format(time.RFC3339),
		}
	}
	return cp
}

// pageError wraps err for page n unless it already is a SerializationError.
func pageError(n int, op string, err error) error {
	var serr *SerializationError
	if errors.As(err, &serr) {
		if serr.Page == 0 {
			serr.Page = n
		}
		return serr
	}
	return &SerializationError{Page: n, Op: op, Err: err}
}
