package resource

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/fixedprint/format"
)

// ErrNotFound is returned when no resource matches a reference.
var ErrNotFound = errors.New("resource not found")

// Resource is a resolved resource.
type Resource struct {
	Name   string // reference it was resolved from
	Data   []byte
	Format format.Format
}

// Resolver maps a reference to resource bytes.
type Resolver interface {
	Resolve(ref string) (*Resource, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ref string) (*Resource, error)

// Resolve calls f(ref).
func (f ResolverFunc) Resolve(ref string) (*Resource, error) { return f(ref) }

// FileResolver resolves references against the local file system.
type FileResolver struct {
	root       string
	extensions []string
	maxSize    int64
}

// Option configures a FileResolver
type Option func(*FileResolver)

// WithRoot sets the directory relative references are resolved against
// (default: the working directory).
func WithRoot(dir string) Option {
	return func(r *FileResolver) {
		r.root = dir
	}
}

// WithMaxSize limits the size of a single resource (default: 64 MiB).
func WithMaxSize(n int64) Option {
	return func(r *FileResolver) {
		r.maxSize = n
	}
}

// WithExtensions sets the extensions tried for references without one
// (default: .png, .jpg, .jpeg, .tif, .tiff, .bmp).
func WithExtensions(exts ...string) Option {
	return func(r *FileResolver) {
		r.extensions = exts
	}
}

// NewFileResolver creates a new file system resolver
func NewFileResolver(opts ...Option) *FileResolver {
	r := &FileResolver{
		root:       ".",
		extensions: []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"},
		maxSize:    64 << 20,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve reads the file named by ref.
func (r *FileResolver) Resolve(ref string) (*Resource, error) {
	p, err := r.localPath(ref)
	if err != nil {
		return nil, err
	}

	candidates := []string{p}
	if filepath.Ext(p) == "" {
		for _, ext := range r.extensions {
			candidates = append(candidates, p+ext)
		}
	}

	for _, candidate := range candidates {
		data, err := r.read(candidate)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", candidate, err)
		}
		return &Resource{Name: ref, Data: data, Format: detect(candidate, data)}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// localPath turns a reference into a file system path.
func (r *FileResolver) localPath(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parsing reference %q: %w", ref, err)
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("%w: unsupported scheme %q in %s", ErrNotFound, u.Scheme, ref)
		}
		p := u.Path
		// file:///C:/dir/x.png has the path /C:/dir/x.png
		if len(p) > 2 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		return filepath.FromSlash(p), nil
	}

	p := filepath.FromSlash(ref)
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Join(r.root, p), nil
}

func (r *FileResolver) read(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, os.ErrNotExist
	}
	if info.Size() > r.maxSize {
		return nil, fmt.Errorf("size %d exceeds limit %d", info.Size(), r.maxSize)
	}

	return io.ReadAll(io.LimitReader(f, r.maxSize+1))
}

// MapResolver resolves references from an in-memory map.
type MapResolver struct {
	entries map[string][]byte
}

// NewMapResolver creates a resolver over name to bytes entries. The map
// is copied.
func NewMapResolver(entries map[string][]byte) *MapResolver {
	m := &MapResolver{entries: make(map[string][]byte, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

// Resolve returns the entry stored under ref.
func (m *MapResolver) Resolve(ref string) (*Resource, error) {
	data, ok := m.entries[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return &Resource{Name: ref, Data: data, Format: detect(ref, data)}, nil
}

// Chain returns a resolver that tries each resolver in order. A resolver
// that fails with ErrNotFound passes the reference on; any other error
// stops the chain.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(ref string) (*Resource, error) {
		for _, r := range resolvers {
			res, err := r.Resolve(ref)
			if err == nil {
				return res, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	})
}

// detect prefers magic bytes and falls back to the name's extension.
func detect(name string, data []byte) format.Format {
	if f := format.DetectFromMagic(data); f != format.Unknown {
		return f
	}
	return format.Detect(name)
}
