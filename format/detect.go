// Package format provides file format detection for fixed-page packages,
// their image resources, and the PDF files the print queue produces.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a recognized file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// XPS indicates an XML Paper Specification package.
	XPS
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// TIFF indicates a TIFF image.
	TIFF
	// BMP indicates a Windows bitmap.
	BMP
	// WebP indicates a WebP image.
	WebP
	// GIF indicates a GIF image.
	GIF
	// TrueType indicates a TrueType or OpenType font.
	TrueType
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case XPS:
		return "XPS"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case WebP:
		return "WebP"
	case GIF:
		return "GIF"
	case TrueType:
		return "TrueType"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case XPS:
		return ".xps"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tif"
	case BMP:
		return ".bmp"
	case WebP:
		return ".webp"
	case GIF:
		return ".gif"
	case TrueType:
		return ".ttf"
	default:
		return ""
	}
}

// ContentType returns the media type used for the format inside a package.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case XPS:
		return "application/vnd.ms-xpsdocument"
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case TIFF:
		return "image/tiff"
	case BMP:
		return "image/bmp"
	case WebP:
		return "image/webp"
	case GIF:
		return "image/gif"
	case TrueType:
		return "application/vnd.ms-opentype"
	default:
		return "application/octet-stream"
	}
}

// IsImage reports whether f is a raster image format.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, TIFF, BMP, WebP, GIF:
		return true
	default:
		return false
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return PDF
	case ".xps", ".oxps":
		return XPS
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".tif", ".tiff":
		return TIFF
	case ".bmp":
		return BMP
	case ".webp":
		return WebP
	case ".gif":
		return GIF
	case ".ttf", ".otf":
		return TrueType
	default:
		return Unknown
	}
}

// DetectFromMagic checks file magic bytes to determine format.
// This provides more reliable detection than extension-based detection.
// ZIP archives return Unknown; use DetectFromReader to tell an XPS
// package from other archives.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return PDF
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14:
		return BMP
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WebP
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case bytes.HasPrefix(data, []byte{0x00, 0x01, 0x00, 0x00}), bytes.HasPrefix(data, []byte("OTTO")), bytes.HasPrefix(data, []byte("true")):
		return TrueType
	}
	return Unknown
}

// DetectFromReader inspects the content to determine format.
// This is more reliable than extension-based detection and can
// recognize XPS packages by their fixed-representation parts.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 16)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	// ZIP magic: PK\x03\x04
	if bytes.HasPrefix(magic, []byte{0x50, 0x4B, 0x03, 0x04}) {
		return detectZIPFormat(r, size)
	}

	return DetectFromMagic(magic), nil
}

// detectZIPFormat inspects a ZIP archive for XPS markers.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	hasContentTypes := false
	hasSequence := false
	for _, f := range zr.File {
		switch {
		case f.Name == "[Content_Types].xml":
			hasContentTypes = true
		case strings.HasSuffix(strings.ToLower(f.Name), ".fdseq"):
			hasSequence = true
		}
	}

	if hasContentTypes && hasSequence {
		return XPS, nil
	}
	return Unknown, nil
}

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return DetectFromMagic(data) == PDF
}
