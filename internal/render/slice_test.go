package render

import (
	"image"
	"image/color"
	"testing"

	"slice-viewer/internal/plane"
	"slice-viewer/internal/sliceview"
	"slice-viewer/internal/volume"
	"slice-viewer/pkg/colorutil"
	"slice-viewer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledVolume(t *testing.T, n int, value float64) *volume.Volume {
	t.Helper()
	v, err := volume.New(n, n, n, 1)
	require.NoError(t, err)
	for i := range v.Data {
		v.Data[i] = value
	}
	return v
}

func TestSliceWithoutVolumeIsBackground(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	require.NoError(t, Slice(dst, Params{Background: colorutil.Cyan}))
	assert.Equal(t, colorutil.Cyan, dst.RGBAAt(10, 10))
}

func TestSliceScalesVoxels(t *testing.T) {
	vol := filledVolume(t, 10, 1)
	dst := image.NewRGBA(image.Rect(0, 0, 120, 100))

	err := Slice(dst, Params{
		Volume:    vol,
		Plane:     plane.Axial,
		Transform: geometry.ScaleTranslate(10, 10, 10, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, colorutil.Black, dst.RGBAAt(5, 50), "left of the slice")
	assert.Equal(t, colorutil.White, dst.RGBAAt(15, 50))
	assert.Equal(t, colorutil.White, dst.RGBAAt(109, 99))
	assert.Equal(t, colorutil.Black, dst.RGBAAt(115, 50), "right of the slice")
}

func TestSliceDrawsCrosshairsThroughCursor(t *testing.T) {
	vol := filledVolume(t, 10, 0)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	red := color.RGBA{R: 255, A: 255}

	err := Slice(dst, Params{
		Volume:         vol,
		Plane:          plane.Axial,
		Coord:          geometry.NewCoord(2, 3, 4),
		Transform:      geometry.ScaleTranslate(10, 10, 0, 0),
		Crosshairs:     true,
		CrosshairColor: red,
	})
	require.NoError(t, err)

	assert.Equal(t, red, dst.RGBAAt(25, 0))
	assert.Equal(t, red, dst.RGBAAt(25, 99))
	assert.Equal(t, red, dst.RGBAAt(0, 35))
	assert.Equal(t, red, dst.RGBAAt(99, 35))
	assert.NotEqual(t, red, dst.RGBAAt(50, 50))
}

func TestSliceWithoutCrosshairs(t *testing.T) {
	vol := filledVolume(t, 10, 0)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))

	require.NoError(t, Slice(dst, Params{
		Volume:    vol,
		Plane:     plane.Axial,
		Coord:     geometry.NewCoord(2, 3, 4),
		Transform: geometry.ScaleTranslate(10, 10, 0, 0),
	}))
	assert.Equal(t, colorutil.Black, dst.RGBAAt(25, 0))
}

func TestSliceRejectsDegenerateTransform(t *testing.T) {
	vol := filledVolume(t, 4, 1)
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	err := Slice(dst, Params{Volume: vol, Plane: plane.Axial, Transform: geometry.ScaleTranslate(0, 1, 0, 0)})
	assert.ErrorIs(t, err, sliceview.ErrDegenerateTransform)
}

func TestSliceDrawsAxisLabel(t *testing.T) {
	vol := filledVolume(t, 10, 0)
	vol.Axis(geometry.AxisX).Label = "L"
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))

	require.NoError(t, Slice(dst, Params{
		Volume:    vol,
		Plane:     plane.Axial,
		Transform: geometry.ScaleTranslate(10, 10, 0, 0),
	}))

	white := 0
	for y := 0; y < 100; y++ {
		for x := 80; x < 100; x++ {
			if dst.RGBAAt(x, y) == colorutil.White {
				white++
			}
		}
	}
	assert.Positive(t, white, "label drawn near the right edge")
}

func TestOffscreenProvider(t *testing.T) {
	p := NewOffscreenProvider()
	s, err := p.Create(64, 32)
	require.NoError(t, err)

	found, err := p.Lookup(s.ID())
	require.NoError(t, err)
	assert.Equal(t, s, found)

	w, h := found.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)

	_, err = p.Lookup("nope")
	assert.Error(t, err)
}
