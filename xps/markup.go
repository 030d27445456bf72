package xps

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const nsXPS = "http://schemas.microsoft.com/xps/2005/06"

// Relationship types.
const (
	// RelTypeFixedRepresentation links the package root to the fixed
	// document sequence.
	RelTypeFixedRepresentation = "http://schemas.microsoft.com/xps/2005/06/fixedrepresentation"
	// RelTypeRequiredResource links a fixed page to an image or font.
	RelTypeRequiredResource = "http://schemas.microsoft.com/xps/2005/06/required-resource"

	// Markup references. These edges are implied by DocumentReference and
	// PageContent elements and are never written to a .rels part.
	RelTypeDocumentReference = nsXPS + "#DocumentReference"
	RelTypePageContent       = nsXPS + "#PageContent"
)

// Content types.
const (
	ContentTypeSequence       = "application/vnd.ms-package.xps-fixeddocumentsequence+xml"
	ContentTypeDocument       = "application/vnd.ms-package.xps-fixeddocument+xml"
	ContentTypePage           = "application/vnd.ms-package.xps-fixedpage+xml"
	ContentTypeCoreProperties = "application/vnd.openxmlformats-package.core-properties+xml"
)

// Part names.
const (
	SequencePart       = "/FixedDocumentSequence.fdseq"
	DocumentPart       = "/Documents/1/FixedDocument.fdoc"
	CorePropertiesPart = "/docProps/core.xml"

	pagesDir  = "/Documents/1/Pages"
	imagesDir = "/Documents/1/Resources/Images"
	fontsDir  = "/Documents/1/Resources/Fonts"
)

// PagePart returns the part name of page n.
func PagePart(n int) string {
	return fmt.Sprintf("%s/%d.fpage", pagesDir, n)
}

// sequenceXML represents a FixedDocumentSequence part
type sequenceXML struct {
	XMLName    xml.Name               `xml:"FixedDocumentSequence"`
	Xmlns      string                 `xml:"xmlns,attr,omitempty"`
	References []documentReferenceXML `xml:"DocumentReference"`
}

type documentReferenceXML struct {
	Source string `xml:"Source,attr"`
}

// documentXML represents a FixedDocument part
type documentXML struct {
	XMLName xml.Name         `xml:"FixedDocument"`
	Xmlns   string           `xml:"xmlns,attr,omitempty"`
	Pages   []pageContentXML `xml:"PageContent"`
}

type pageContentXML struct {
	Source string `xml:"Source,attr"`
	Width  string `xml:"Width,attr,omitempty"`
	Height string `xml:"Height,attr,omitempty"`
}

// fixedPageXML represents a FixedPage part. Children holds canvasXML,
// pathXML and glyphsXML values in paint order.
type fixedPageXML struct {
	XMLName  xml.Name `xml:"FixedPage"`
	Xmlns    string   `xml:"xmlns,attr"`
	Width    string   `xml:"Width,attr"`
	Height   string   `xml:"Height,attr"`
	Lang     string   `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Children []any
}

type canvasXML struct {
	XMLName  xml.Name `xml:"Canvas"`
	Children []any
}

type pathXML struct {
	XMLName         xml.Name     `xml:"Path"`
	Data            string       `xml:"Data,attr"`
	Fill            string       `xml:"Fill,attr,omitempty"`
	Stroke          string       `xml:"Stroke,attr,omitempty"`
	StrokeThickness string       `xml:"StrokeThickness,attr,omitempty"`
	Name            string       `xml:"AutomationProperties.Name,attr,omitempty"`
	FillBrush       *pathFillXML `xml:"Path.Fill,omitempty"`
}

type pathFillXML struct {
	Brush imageBrushXML `xml:"ImageBrush"`
}

type imageBrushXML struct {
	ImageSource   string `xml:"ImageSource,attr"`
	Viewbox       string `xml:"Viewbox,attr"`
	ViewboxUnits  string `xml:"ViewboxUnits,attr"`
	Viewport      string `xml:"Viewport,attr"`
	ViewportUnits string `xml:"ViewportUnits,attr"`
}

type glyphsXML struct {
	XMLName             xml.Name `xml:"Glyphs"`
	Fill                string   `xml:"Fill,attr"`
	FontURI             string   `xml:"FontUri,attr"`
	FontRenderingEmSize string   `xml:"FontRenderingEmSize,attr"`
	OriginX             string   `xml:"OriginX,attr"`
	OriginY             string   `xml:"OriginY,attr"`
	UnicodeString       string   `xml:"UnicodeString,attr"`
}

// corePropertiesXML represents /docProps/core.xml. Prefixed names are
// written literally.
type corePropertiesXML struct {
	XMLName    xml.Name    `xml:"cp:coreProperties"`
	XmlnsCP    string      `xml:"xmlns:cp,attr"`
	XmlnsDC    string      `xml:"xmlns:dc,attr"`
	XmlnsTerms string      `xml:"xmlns:dcterms,attr"`
	XmlnsXSI   string      `xml:"xmlns:xsi,attr"`
	Title      string      `xml:"dc:title,omitempty"`
	Creator    string      `xml:"dc:creator,omitempty"`
	Subject    string      `xml:"dc:subject,omitempty"`
	Keywords   string      `xml:"cp:keywords,omitempty"`
	Identifier string      `xml:"dc:identifier"`
	Created    *w3cDateXML `xml:"dcterms:created,omitempty"`
}

type w3cDateXML struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

// num formats a length with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// pair formats "x,y".
func pair(x, y float64) string {
	return num(x) + "," + num(y)
}

// escapeUnicodeString prefixes a string that starts with '{' with the
// "{}" escape sequence.
func escapeUnicodeString(s string) string {
	if strings.HasPrefix(s, "{") {
		return "{}" + s
	}
	return s
}

func marshalPart(v any) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	enc := xml.NewEncoder(&sb)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
