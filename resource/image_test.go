package resource

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/tsawler/fixedprint/format"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func encodeBMP(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("bmp.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestProbeImage(t *testing.T) {
	tests := []struct {
		name  string
		res   *Resource
		w, h  int
		wantF format.Format
	}{
		{"png", &Resource{Name: "a.png", Data: encodePNG(t, 4, 3), Format: format.PNG}, 4, 3, format.PNG},
		{"bmp", &Resource{Name: "a.bmp", Data: encodeBMP(t, 5, 6), Format: format.BMP}, 5, 6, format.BMP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ProbeImage(tt.res)
			if err != nil {
				t.Fatalf("ProbeImage() error = %v", err)
			}
			if info.Width != tt.w || info.Height != tt.h || info.Format != tt.wantF {
				t.Errorf("ProbeImage() = %+v, want %dx%d %v", info, tt.w, tt.h, tt.wantF)
			}
		})
	}
}

func TestProbeImage_Errors(t *testing.T) {
	tests := []struct {
		name string
		res  *Resource
	}{
		{"unsupported", &Resource{Name: "a.txt", Data: []byte("hello"), Format: format.Unknown}},
		{"corrupt png", &Resource{Name: "a.png", Data: []byte("\x89PNG\r\n\x1a\nxx"), Format: format.PNG}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ProbeImage(tt.res); err == nil {
				t.Error("ProbeImage() should fail")
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	pngRes := &Resource{Name: "a.png", Data: encodePNG(t, 2, 2), Format: format.PNG}
	out, err := Normalize(pngRes)
	if err != nil {
		t.Fatalf("Normalize(png) error = %v", err)
	}
	if out != pngRes {
		t.Error("Normalize(png) should return the resource unchanged")
	}

	bmpRes := &Resource{Name: "a.bmp", Data: encodeBMP(t, 7, 2), Format: format.BMP}
	out, err = Normalize(bmpRes)
	if err != nil {
		t.Fatalf("Normalize(bmp) error = %v", err)
	}
	if out.Format != format.PNG || !bytes.HasPrefix(out.Data, []byte("\x89PNG")) {
		t.Errorf("Normalize(bmp) format = %v, want PNG data", out.Format)
	}
	info, err := ProbeImage(out)
	if err != nil {
		t.Fatalf("ProbeImage() error = %v", err)
	}
	if info.Width != 7 || info.Height != 2 {
		t.Errorf("transcoded size = %dx%d, want 7x2", info.Width, info.Height)
	}

	if _, err := Normalize(&Resource{Name: "x", Format: format.TrueType}); err == nil {
		t.Error("Normalize(font) should fail")
	}
}
