package viewer

import (
	"fmt"
	"math"

	"slice-viewer/internal/sliceview"
	"slice-viewer/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// SliceTransform returns the volume-to-surface transform of view. The slice
// is fitted to the surface preserving physical aspect ratio and centered,
// then zoomed about the zoom location, then shifted by the pane's pan.
func (v *Viewer) SliceTransform(view *sliceview.SliceView) (geometry.AffineTransform, error) {
	vol := view.Volume()
	if vol == nil {
		return geometry.AffineTransform{}, fmt.Errorf("%v: %w", view.Plane(), ErrNoVolume)
	}
	p := view.Plane()
	w, h := view.Surface().Size()

	v.mu.RLock()
	zoom := v.zoomFactor
	loc := v.zoomLocation
	pan := v.pan[view]
	v.mu.RUnlock()

	nu, nv := float64(vol.Dim(p.X)), float64(vol.Dim(p.Y))
	su, sv := vol.Spacing(p.X), vol.Spacing(p.Y)
	if nu == 0 || nv == 0 {
		return geometry.AffineTransform{}, fmt.Errorf("%w: %v pane of empty volume", sliceview.ErrDegenerateTransform, p)
	}

	// pixels per mm so the whole physical extent fits
	fit := math.Min(float64(w)/(nu*su), float64(h)/(nv*sv))
	scaleU, scaleV := fit*su, fit*sv
	offU := (float64(w) - nu*scaleU) / 2
	offV := (float64(h) - nv*scaleV) / 2

	if s, ok := vol.Axes[p.X]; ok && s.Flip {
		offU += nu * scaleU
		scaleU = -scaleU
	}
	if s, ok := vol.Axes[p.Y]; ok && s.Flip {
		offV += nv * scaleV
		scaleV = -scaleV
	}

	base := affine(scaleU, scaleV, offU, offV)

	// Keep the zoom location at the same screen position while scaling.
	lu, lv := p.Project(loc)
	cu := (lu+0.5)*scaleU + offU
	cv := (lv+0.5)*scaleV + offV

	var centered, zoomed, m mat.Dense
	centered.Mul(affine(1, 1, -cu, -cv), base)
	zoomed.Mul(affine(zoom, zoom, 0, 0), &centered)
	m.Mul(affine(1, 1, cu+pan.X, cv+pan.Y), &zoomed)

	xf := geometry.ScaleTranslate(m.At(0, 0), m.At(1, 1), m.At(0, 2), m.At(1, 2))
	if xf.Degenerate() {
		return xf, fmt.Errorf("%w: %v pane on %dx%d surface", sliceview.ErrDegenerateTransform, p, w, h)
	}
	return xf, nil
}

// affine returns the homogeneous 3x3 matrix of pixel = v*s + t per axis.
func affine(sx, sy, tx, ty float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		sx, 0, tx,
		0, sy, ty,
		0, 0, 1,
	})
}
