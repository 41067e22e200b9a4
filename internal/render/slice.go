// Package render rasterizes volume slices and their overlays into RGBA frames.
package render

import (
	"image"
	"image/color"
	"math"

	"slice-viewer/internal/plane"
	"slice-viewer/internal/sliceview"
	"slice-viewer/internal/volume"
	"slice-viewer/pkg/colorutil"
	"slice-viewer/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Params describes one pane frame.
type Params struct {
	Volume    *volume.Volume
	Plane     plane.Descriptor
	Coord     geometry.Coord
	Frame     int
	Transform geometry.AffineTransform

	Crosshairs     bool
	CrosshairColor color.RGBA
	Background     color.RGBA
}

// Slice draws the plane through Coord onto dst. A nil volume yields a
// background-only frame.
func Slice(dst *image.RGBA, p Params) error {
	bg := p.Background
	if bg.A == 0 {
		bg = colorutil.Black
	}
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	if p.Volume == nil {
		return nil
	}
	if p.Transform.Degenerate() {
		return sliceview.ErrDegenerateTransform
	}

	index := p.Volume.SliceIndex(p.Plane.Constant, p.Coord.Get(p.Plane.Constant))
	src, err := p.Volume.Slice(p.Plane, index, p.Frame)
	if err != nil {
		return err
	}

	xf := p.Transform
	s2d := f64.Aff3{
		xf.A, xf.B, xf.TX,
		xf.C, xf.D, xf.TY,
	}
	xdraw.NearestNeighbor.Transform(dst, s2d, src, src.Bounds(), xdraw.Over, nil)

	drawAxisLabels(dst, p)

	if p.Crosshairs {
		col := p.CrosshairColor
		if col.A == 0 {
			col = colorutil.Gold
		}
		if err := drawCrosshairs(dst, p, col); err != nil {
			return err
		}
	}

	return nil
}

// drawCrosshairs draws a full-width and a full-height line through the
// surface position of the cursor.
func drawCrosshairs(dst *image.RGBA, p Params, col color.RGBA) error {
	pt, err := sliceview.ProjectToSurface(p.Transform, p.Plane, p.Coord)
	if err != nil {
		return err
	}
	b := dst.Bounds()
	x := int(math.Floor(pt.X))
	y := int(math.Floor(pt.Y))
	if x >= b.Min.X && x < b.Max.X {
		drawLine(dst, x, b.Min.Y, x, b.Max.Y-1, col, 1)
	}
	if y >= b.Min.Y && y < b.Max.Y {
		drawLine(dst, b.Min.X, y, b.Max.X-1, y, col, 1)
	}
	return nil
}

// drawAxisLabels writes each surface axis label next to the edge where that
// axis has its highest voxel index.
func drawAxisLabels(dst *image.RGBA, p Params) {
	const scale, margin = 2, 4
	b := dst.Bounds()

	if s, ok := p.Volume.Axes[p.Plane.X]; ok && s.Label != "" {
		w, h := labelSize(s.Label, scale)
		end := edge(p.Transform.A, p.Transform.TX, p.Volume.Dim(p.Plane.X))
		x := end - w - margin
		if p.Transform.A < 0 {
			x = end + margin
		}
		drawLabel(dst, s.Label, clamp(x, b.Min.X, b.Max.X-w), b.Min.Y+(b.Dy()-h)/2, colorutil.White, scale)
	}
	if s, ok := p.Volume.Axes[p.Plane.Y]; ok && s.Label != "" {
		w, h := labelSize(s.Label, scale)
		end := edge(p.Transform.D, p.Transform.TY, p.Volume.Dim(p.Plane.Y))
		y := end - h - margin
		if p.Transform.D < 0 {
			y = end + margin
		}
		drawLabel(dst, s.Label, b.Min.X+(b.Dx()-w)/2, clamp(y, b.Min.Y, b.Max.Y-h), colorutil.White, scale)
	}
}

// edge returns the pixel at the outer boundary of the last voxel.
func edge(scale, offset float64, n int) int {
	return int(math.Round(float64(n)*scale + offset))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
