package resource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/fixedprint/format"
)

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return p
}

func TestFileResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	pngData := encodePNG(t, 2, 2)
	abs := writeFile(t, dir, "images/fish.png", pngData)

	r := NewFileResolver(WithRoot(dir))

	tests := []struct {
		name string
		ref  string
	}{
		{"relative path", "images/fish.png"},
		{"bare name", "images/fish"},
		{"absolute path", abs},
		{"file uri", "file://" + filepath.ToSlash(abs)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.ref, err)
			}
			if res.Format != format.PNG {
				t.Errorf("Format = %v, want PNG", res.Format)
			}
			if res.Name != tt.ref {
				t.Errorf("Name = %q, want %q", res.Name, tt.ref)
			}
			if len(res.Data) != len(pngData) {
				t.Errorf("len(Data) = %d, want %d", len(res.Data), len(pngData))
			}
		})
	}
}

func TestFileResolver_NotFound(t *testing.T) {
	r := NewFileResolver(WithRoot(t.TempDir()))

	for _, ref := range []string{"missing.png", "missing", "", "https://example.com/a.png"} {
		_, err := r.Resolve(ref)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", ref, err)
		}
	}
}

func TestFileResolver_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "logo.png"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileResolver(WithRoot(dir)).Resolve("logo.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() on directory error = %v, want ErrNotFound", err)
	}
}

func TestFileResolver_MaxSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.png", make([]byte, 128))

	_, err := NewFileResolver(WithRoot(dir), WithMaxSize(64)).Resolve("big.png")
	if err == nil || !strings.Contains(err.Error(), "exceeds limit") {
		t.Errorf("Resolve() error = %v, want size limit error", err)
	}
}

func TestFileResolver_Extensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0})

	r := NewFileResolver(WithRoot(dir), WithExtensions(".png"))
	if _, err := r.Resolve("photo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound with restricted extensions", err)
	}

	r = NewFileResolver(WithRoot(dir))
	res, err := r.Resolve("photo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Format != format.JPEG {
		t.Errorf("Format = %v, want JPEG", res.Format)
	}
}

func TestMapResolver(t *testing.T) {
	entries := map[string][]byte{"logo": encodePNG(t, 1, 1)}
	m := NewMapResolver(entries)
	delete(entries, "logo")

	res, err := m.Resolve("logo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Format != format.PNG {
		t.Errorf("Format = %v, want PNG", res.Format)
	}

	if _, err := m.Resolve("other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(other) error = %v, want ErrNotFound", err)
	}
}

func TestChain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "disk.png", encodePNG(t, 1, 1))

	mem := NewMapResolver(map[string][]byte{"mem": encodePNG(t, 3, 3)})
	r := Chain(mem, NewFileResolver(WithRoot(dir)))

	if _, err := r.Resolve("mem"); err != nil {
		t.Errorf("Resolve(mem) error = %v", err)
	}
	if _, err := r.Resolve("disk.png"); err != nil {
		t.Errorf("Resolve(disk.png) error = %v", err)
	}
	if _, err := r.Resolve("nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(nowhere) error = %v, want ErrNotFound", err)
	}

	boom := errors.New("boom")
	failing := ResolverFunc(func(string) (*Resource, error) { return nil, boom })
	if _, err := Chain(failing, mem).Resolve("mem"); !errors.Is(err, boom) {
		t.Errorf("Chain() error = %v, want boom", err)
	}
}
