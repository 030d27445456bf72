package resource

import (
	"testing"

	"github.com/tsawler/fixedprint/format"
)

func TestDefaultFont(t *testing.T) {
	res := DefaultFont()
	if res.Format != format.TrueType {
		t.Errorf("Format = %v, want TrueType", res.Format)
	}
	if got := format.DetectFromMagic(res.Data); got != format.TrueType {
		t.Errorf("DetectFromMagic() = %v, want TrueType", got)
	}
}

func TestFontMeasure(t *testing.T) {
	f, err := LoadFont(DefaultFont())
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	if w := f.Measure("", 12); w != 0 {
		t.Errorf("Measure(\"\") = %v, want 0", w)
	}

	narrow := f.Measure("iiii", 12)
	wide := f.Measure("WWWW", 12)
	if narrow <= 0 || wide <= narrow {
		t.Errorf("Measure() narrow = %v, wide = %v", narrow, wide)
	}

	if double := f.Measure("WWWW", 24); double < wide*1.99 || double > wide*2.01 {
		t.Errorf("Measure() should scale linearly: 12pt = %v, 24pt = %v", wide, double)
	}

	if f.Ascent(10) <= 0 || f.LineHeight(10) <= f.Ascent(10) {
		t.Errorf("Ascent() = %v, LineHeight() = %v", f.Ascent(10), f.LineHeight(10))
	}
}

func TestLoadFont_Invalid(t *testing.T) {
	if _, err := LoadFont(&Resource{Name: "bad.ttf", Data: []byte("not a font")}); err == nil {
		t.Error("LoadFont() should fail for invalid data")
	}
}
