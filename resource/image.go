package resource

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/tsawler/fixedprint/format"
)

// ImageInfo describes a decoded image header.
type ImageInfo struct {
	Width  int // pixels
	Height int // pixels
	Format format.Format
}

// ProbeImage decodes the image header of res without decoding pixels.
func ProbeImage(res *Resource) (ImageInfo, error) {
	r := bytes.NewReader(res.Data)

	var (
		cfg image.Config
		err error
	)
	switch res.Format {
	case format.PNG:
		cfg, err = png.DecodeConfig(r)
	case format.JPEG:
		cfg, err = jpeg.DecodeConfig(r)
	case format.GIF:
		cfg, err = gif.DecodeConfig(r)
	case format.TIFF:
		cfg, err = tiff.DecodeConfig(r)
	case format.BMP:
		cfg, err = bmp.DecodeConfig(r)
	case format.WebP:
		cfg, err = webp.DecodeConfig(r)
	default:
		return ImageInfo{}, fmt.Errorf("%s: unsupported image format %s", res.Name, res.Format)
	}
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%s: decoding %s header: %w", res.Name, res.Format, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, fmt.Errorf("%s: empty image %dx%d", res.Name, cfg.Width, cfg.Height)
	}

	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: res.Format}, nil
}

// Normalize returns a resource a fixed page can reference directly. PNG,
// JPEG and TIFF are returned unchanged; BMP, WebP and GIF are decoded and
// re-encoded as PNG.
func Normalize(res *Resource) (*Resource, error) {
	var (
		img image.Image
		err error
	)
	r := bytes.NewReader(res.Data)

	switch res.Format {
	case format.PNG, format.JPEG, format.TIFF:
		return res, nil
	case format.BMP:
		img, err = bmp.Decode(r)
	case format.WebP:
		img, err = webp.Decode(r)
	case format.GIF:
		img, err = gif.Decode(r)
	default:
		return nil, fmt.Errorf("%s: unsupported image format %s", res.Name, res.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: decoding %s: %w", res.Name, res.Format, err)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%s: encoding PNG: %w", res.Name, err)
	}

	return &Resource{Name: res.Name, Data: buf.Bytes(), Format: format.PNG}, nil
}
