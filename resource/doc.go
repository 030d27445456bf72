// Package resource resolves the external resources a document refers to,
// images and fonts, into bytes that can be embedded in a package.
//
// # Basic Usage
//
// Create a resolver rooted at a directory and resolve a reference:
//
//	r := resource.NewFileResolver(resource.WithRoot("assets"))
//	res, err := r.Resolve("images/fish.png")
//
// References may be bare names, relative paths or file:// URIs. A bare
// name without an extension is tried with each supported image extension,
// so "fish" finds "fish.png".
//
// # Combining Resolvers
//
// In-memory resources take precedence when chained in front of the file
// system:
//
//	r := resource.Chain(resource.NewMapResolver(embedded), resource.NewFileResolver())
//
// # Images and Fonts
//
// [ProbeImage] reports the pixel size of an image and [Normalize]
// transcodes formats a fixed page cannot reference (BMP, WebP, GIF) to
// PNG. [LoadFont] parses a TrueType font for text measurement, and
// [DefaultFont] returns the built-in Go Regular face.
package resource
