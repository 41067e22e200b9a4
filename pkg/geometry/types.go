// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
//
// Slice panes only ever use the diagonal (A, D) as per-axis scale and
// (TX, TY) as per-axis offset: pixel = v*scale + offset.
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// ScaleTranslate returns the per-axis transform pixel = v*s + t.
func ScaleTranslate(sx, sy, tx, ty float64) AffineTransform {
	return AffineTransform{A: sx, D: sy, TX: tx, TY: ty}
}

// Degenerate reports whether either per-axis scale is zero or not finite,
// in which case pixel positions cannot be mapped back to volume space.
func (t AffineTransform) Degenerate() bool {
	return t.A == 0 || t.D == 0 ||
		math.IsNaN(t.A) || math.IsNaN(t.D) ||
		math.IsInf(t.A, 0) || math.IsInf(t.D, 0)
}
