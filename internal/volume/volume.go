// Package volume holds 3D and 4D voxel data and extracts 2D plane images from it.
package volume

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"slice-viewer/internal/plane"
	"slice-viewer/pkg/geometry"
)

// ErrOutOfRange is returned when a slice index or frame lies outside the volume.
var ErrOutOfRange = errors.New("out of range")

// AxisSettings holds per-axis display state that panes may mutate in place.
type AxisSettings struct {
	// Label is drawn at the positive end of the axis when set (e.g. "A", "S").
	Label string
	// Flip mirrors the axis on screen.
	Flip bool
}

// Volume represents voxel data addressed by (x, y, z) and an optional time frame.
type Volume struct {
	// Data is the volume as a 1D array: frame, then z, then y, then x.
	// Values are normalized to 0..1.
	Data []float64

	Width  int
	Height int
	Depth  int
	Frames int

	// VoxelSize is the physical size of each voxel in mm.
	VoxelSize [3]float64

	// Axes holds per-axis display settings, created on demand.
	Axes map[geometry.Axis]*AxisSettings
}

// New allocates an empty volume of the given size with unit voxels.
func New(width, height, depth, frames int) (*Volume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("volume dimensions must be positive, got %dx%dx%d", width, height, depth)
	}
	if frames <= 0 {
		frames = 1
	}
	return &Volume{
		Data:      make([]float64, width*height*depth*frames),
		Width:     width,
		Height:    height,
		Depth:     depth,
		Frames:    frames,
		VoxelSize: [3]float64{1, 1, 1},
		Axes:      make(map[geometry.Axis]*AxisSettings),
	}, nil
}

// Dim returns the number of voxels along axis a.
func (v *Volume) Dim(a geometry.Axis) int {
	switch a {
	case geometry.AxisX:
		return v.Width
	case geometry.AxisY:
		return v.Height
	case geometry.AxisZ:
		return v.Depth
	}
	return 0
}

// Spacing returns the voxel size along axis a, defaulting to 1mm.
func (v *Volume) Spacing(a geometry.Axis) float64 {
	if !a.Valid() || v.VoxelSize[a] <= 0 {
		return 1
	}
	return v.VoxelSize[a]
}

func (v *Volume) index(x, y, z, t int) int {
	return ((t*v.Depth+z)*v.Height+y)*v.Width + x
}

// At returns the voxel value, or 0 outside the volume.
func (v *Volume) At(x, y, z, t int) float64 {
	if x < 0 || y < 0 || z < 0 || t < 0 ||
		x >= v.Width || y >= v.Height || z >= v.Depth || t >= v.frames() {
		return 0
	}
	idx := v.index(x, y, z, t)
	if idx >= len(v.Data) {
		return 0
	}
	return v.Data[idx]
}

// Set stores a voxel value. Positions outside the volume are ignored.
func (v *Volume) Set(x, y, z, t int, value float64) {
	if x < 0 || y < 0 || z < 0 || t < 0 ||
		x >= v.Width || y >= v.Height || z >= v.Depth || t >= v.frames() {
		return
	}
	if idx := v.index(x, y, z, t); idx < len(v.Data) {
		v.Data[idx] = value
	}
}

func (v *Volume) frames() int {
	if v.Frames <= 0 {
		return 1
	}
	return v.Frames
}

// Axis returns the settings for axis a, creating an empty entry if absent.
func (v *Volume) Axis(a geometry.Axis) *AxisSettings {
	if v.Axes == nil {
		v.Axes = make(map[geometry.Axis]*AxisSettings)
	}
	s, ok := v.Axes[a]
	if !ok {
		s = &AxisSettings{}
		v.Axes[a] = s
	}
	return s
}

// Slice extracts the plane image at the given index along the plane's
// constant axis. The image is Dim(p.X) wide and Dim(p.Y) tall.
func (v *Volume) Slice(p plane.Descriptor, index, frame int) (*image.Gray16, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if index < 0 || index >= v.Dim(p.Constant) {
		return nil, fmt.Errorf("slice %d along %v: %w (size %d)", index, p.Constant, ErrOutOfRange, v.Dim(p.Constant))
	}
	if frame < 0 || frame >= v.frames() {
		return nil, fmt.Errorf("frame %d: %w (%d frames)", frame, ErrOutOfRange, v.frames())
	}

	w, h := v.Dim(p.X), v.Dim(p.Y)
	img := image.NewGray16(image.Rect(0, 0, w, h))

	var pos [3]int
	pos[p.Constant] = index
	for row := 0; row < h; row++ {
		pos[p.Y] = row
		for col := 0; col < w; col++ {
			pos[p.X] = col
			value := v.At(pos[geometry.AxisX], pos[geometry.AxisY], pos[geometry.AxisZ], frame)
			gray := uint16(math.Max(0, math.Min(65535, value*65535)))
			img.SetGray16(col, row, color.Gray16{Y: gray})
		}
	}

	return img, nil
}

// SliceIndex rounds a fractional coordinate on axis a to a voxel index
// clamped to the volume.
func (v *Volume) SliceIndex(a geometry.Axis, value float64) int {
	idx := int(math.Round(value))
	if idx < 0 {
		idx = 0
	}
	if n := v.Dim(a); idx >= n {
		idx = n - 1
	}
	return idx
}

// Center returns the coordinate of the middle voxel.
func (v *Volume) Center() geometry.Coord {
	return geometry.NewCoord(
		float64(v.Width/2),
		float64(v.Height/2),
		float64(v.Depth/2),
	)
}
