package resource

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/tsawler/fixedprint/format"
)

// DefaultFontName is the reference under which the built-in font is
// reported.
const DefaultFontName = "builtin:go-regular"

// DefaultFont returns the built-in Go Regular TrueType font.
func DefaultFont() *Resource {
	return &Resource{Name: DefaultFontName, Data: goregular.TTF, Format: format.TrueType}
}

// Font is a parsed TrueType font used to measure text. A Font is not safe
// for concurrent use.
type Font struct {
	f    *sfnt.Font
	buf  sfnt.Buffer
	upem fixed.Int26_6

	ascent  float64 // fraction of the em size
	descent float64
}

// LoadFont parses res as a TrueType or OpenType font.
func LoadFont(res *Resource) (*Font, error) {
	f, err := sfnt.Parse(res.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing font: %w", res.Name, err)
	}

	out := &Font{f: f, upem: fixed.I(int(f.UnitsPerEm()))}

	m, err := f.Metrics(&out.buf, out.upem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("%s: reading font metrics: %w", res.Name, err)
	}
	out.ascent = float64(m.Ascent) / float64(out.upem)
	out.descent = float64(m.Descent) / float64(out.upem)

	return out, nil
}

// Measure returns the advance width of s set at size.
func (f *Font) Measure(s string, size float64) float64 {
	var total fixed.Int26_6
	for _, r := range s {
		idx, err := f.f.GlyphIndex(&f.buf, r)
		if err != nil || idx == 0 {
			// Missing glyphs render as .notdef, measure as a space.
			idx, _ = f.f.GlyphIndex(&f.buf, ' ')
		}
		adv, err := f.f.GlyphAdvance(&f.buf, idx, f.upem, font.HintingNone)
		if err != nil {
			continue
		}
		total += adv
	}
	return float64(total) / float64(f.upem) * size
}

// Ascent returns the distance from the top of a line to its baseline at size.
func (f *Font) Ascent(size float64) float64 {
	return f.ascent * size
}

// LineHeight returns the height of one line of text at size.
func (f *Font) LineHeight(size float64) float64 {
	return (f.ascent + f.descent) * size
}
