package model

import (
	"fmt"
	"math"
)

// Unit is the logical unit system shared by every page of a document.
type Unit int

const (
	// UnitDIP is a device-independent pixel, 1/96 inch. This is the
	// native unit of fixed-page markup.
	UnitDIP Unit = iota
	// UnitPoint is a typographic point, 1/72 inch.
	UnitPoint
)

func (u Unit) String() string {
	switch u {
	case UnitDIP:
		return "dip"
	case UnitPoint:
		return "pt"
	default:
		return "unknown"
	}
}

// ToDIP returns the factor that converts a length in u to device-independent pixels.
func (u Unit) ToDIP() float64 {
	switch u {
	case UnitPoint:
		return 96.0 / 72.0
	default:
		return 1
	}
}

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Rect represents a rectangle with a top-left origin, Y growing downward
// (fixed-page coordinate system).
type Rect struct {
	X      float64 // Left
	Y      float64 // Top
	Width  float64
	Height float64
}

// NewRect creates a rectangle from coordinates
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (r Rect) Left() float64 {
	return r.X
}

// Right returns the right edge X coordinate
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Top returns the top edge Y coordinate
func (r Rect) Top() float64 {
	return r.Y
}

// Bottom returns the bottom edge Y coordinate
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Center returns the center point
func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Contains checks if a point is inside the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() &&
		p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Deflate shrinks the rectangle by t on every side. Width and height never
// go below zero.
func (r Rect) Deflate(t Thickness) Rect {
	out := Rect{
		X:      r.X + t.Left,
		Y:      r.Y + t.Top,
		Width:  r.Width - t.Left - t.Right,
		Height: r.Height - t.Top - t.Bottom,
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Scale multiplies every coordinate by f.
func (r Rect) Scale(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, Width: r.Width * f, Height: r.Height * f}
}

// Thickness describes the four edges of a margin or border.
type Thickness struct {
	Left, Top, Right, Bottom float64
}

// Uniform returns a Thickness with the same value on every side.
func Uniform(v float64) Thickness {
	return Thickness{Left: v, Top: v, Right: v, Bottom: v}
}

// Horizontal returns Left + Right.
func (t Thickness) Horizontal() float64 { return t.Left + t.Right }

// Vertical returns Top + Bottom.
func (t Thickness) Vertical() float64 { return t.Top + t.Bottom }

// IsZero reports whether every edge is zero.
func (t Thickness) IsZero() bool {
	return t.Left == 0 && t.Top == 0 && t.Right == 0 && t.Bottom == 0
}

// Scale multiplies every edge by f.
func (t Thickness) Scale(f float64) Thickness {
	return Thickness{Left: t.Left * f, Top: t.Top * f, Right: t.Right * f, Bottom: t.Bottom * f}
}

// Color represents an ARGB color
type Color struct {
	A, R, G, B uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{A: 0xFF, R: r, G: g, B: b}
}

// Common colors
var (
	Black = RGB(0, 0, 0)
	White = RGB(0xFF, 0xFF, 0xFF)
)

// Hex formats the color as #AARRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// IsZero reports whether c is the zero (fully transparent black) value.
func (c Color) IsZero() bool {
	return c == Color{}
}
