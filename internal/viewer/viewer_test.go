package viewer

import (
	"testing"

	"slice-viewer/internal/config"
	"slice-viewer/internal/plane"
	"slice-viewer/internal/render"
	"slice-viewer/internal/sliceview"
	"slice-viewer/internal/volume"
	"slice-viewer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	viewer  *Viewer
	view    *sliceview.SliceView
	surface *render.Offscreen
	volume  *volume.Volume
}

func newFixture(t *testing.T, p plane.Descriptor, w, h, d, surfaceSize int) *fixture {
	t.Helper()
	vol, err := volume.New(w, h, d, 1)
	require.NoError(t, err)

	v := New(config.DefaultViewer())
	provider := render.NewOffscreenProvider()
	surface := render.NewOffscreen("pane", surfaceSize, surfaceSize)
	provider.Register(surface)

	view, err := sliceview.New(sliceview.Config{
		Surface:  sliceview.ExistingSurface("pane"),
		Surfaces: provider,
		Plane:    &p,
		Volume:   vol,
		Viewer:   v,
	})
	require.NoError(t, err)
	t.Cleanup(view.Close)

	return &fixture{viewer: v, view: view, surface: surface, volume: vol}
}

func pointer(x, y float64) sliceview.Event {
	return sliceview.Event{ClientX: x, ClientY: y, Button: sliceview.ButtonPrimary}
}

func TestSliceTransformFitsSquareVolume(t *testing.T) {
	f := newFixture(t, plane.Axial, 10, 10, 10, 300)

	xf, err := f.viewer.SliceTransform(f.view)
	require.NoError(t, err)
	assert.InDelta(t, 30, xf.A, 1e-9)
	assert.InDelta(t, 30, xf.D, 1e-9)
	assert.InDelta(t, 0, xf.TX, 1e-9)
	assert.InDelta(t, 0, xf.TY, 1e-9)
}

func TestSliceTransformCentersNarrowSlice(t *testing.T) {
	f := newFixture(t, plane.Axial, 10, 20, 4, 300)

	xf, err := f.viewer.SliceTransform(f.view)
	require.NoError(t, err)
	assert.InDelta(t, 15, xf.A, 1e-9)
	assert.InDelta(t, 15, xf.D, 1e-9)
	assert.InDelta(t, 75, xf.TX, 1e-9)
	assert.InDelta(t, 0, xf.TY, 1e-9)
}

func TestSliceTransformHonorsVoxelSize(t *testing.T) {
	f := newFixture(t, plane.Coronal, 10, 10, 5, 300)
	f.volume.VoxelSize = [3]float64{1, 1, 2}

	xf, err := f.viewer.SliceTransform(f.view)
	require.NoError(t, err)
	assert.InDelta(t, 30, xf.A, 1e-9)
	assert.InDelta(t, 60, xf.D, 1e-9, "Z voxels are twice as tall")
}

func TestSliceTransformWithoutVolume(t *testing.T) {
	f := newFixture(t, plane.Axial, 4, 4, 4, 100)
	require.NoError(t, f.view.ReplaceVolume(nil))

	_, err := f.viewer.SliceTransform(f.view)
	assert.ErrorIs(t, err, ErrNoVolume)
}

func TestSliceTransformZeroSurfaceIsDegenerate(t *testing.T) {
	f := newFixture(t, plane.Axial, 4, 4, 4, 0)

	_, err := f.viewer.SliceTransform(f.view)
	assert.ErrorIs(t, err, sliceview.ErrDegenerateTransform)
}

func TestZoomKeepsLocationFixed(t *testing.T) {
	f := newFixture(t, plane.Axial, 10, 10, 10, 300)
	loc := geometry.NewCoord(2, 7, 5)

	before, err := f.view.VolumeToSurface(loc)
	require.NoError(t, err)

	f.viewer.SetZoomLocation(loc)
	f.viewer.SetZoomFactor(3)

	after, err := f.view.VolumeToSurface(loc)
	require.NoError(t, err)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	xf, err := f.viewer.SliceTransform(f.view)
	require.NoError(t, err)
	assert.InDelta(t, 90, xf.A, 1e-9)
}

func TestZoomFactorIsClamped(t *testing.T) {
	v := New(config.DefaultViewer())
	v.SetZoomFactor(0.2)
	assert.Equal(t, 1.0, v.ZoomFactor())
	v.SetZoomFactor(50)
	assert.Equal(t, 10.0, v.ZoomFactor())
}

func TestZoomInOutThroughView(t *testing.T) {
	f := newFixture(t, plane.Axial, 10, 10, 10, 300)
	f.viewer.SetZoomFactor(2)
	f.viewer.SetCurrentCoord(geometry.NewCoord(3, 4, 5))

	f.view.ZoomIn()
	assert.InDelta(t, 2.1, f.viewer.ZoomFactor(), 1e-9)
	assert.Equal(t, geometry.NewCoord(3, 4, 5), f.viewer.ZoomLocation())

	f.view.ZoomOut()
	assert.InDelta(t, 2.0, f.viewer.ZoomFactor(), 1e-9)
}

func TestClickScenario(t *testing.T) {
	f := newFixture(t, plane.Axial, 300, 300, 10, 300)
	f.viewer.SetCurrentCoord(geometry.NewCoord(0, 0, 7))

	c, err := f.view.SurfaceToVolume(pointer(100, 50))
	require.NoError(t, err)
	assert.Equal(t, geometry.NewCoord(99.5, 49.5, 7), c)
}

func TestDragThroughSurface(t *testing.T) {
	f := newFixture(t, plane.Coronal, 300, 300, 300, 300)
	f.surface.MoveTo(40, 60)
	f.viewer.SetCurrentCoord(geometry.NewCoord(1, 150, 1))

	var changed []geometry.Coord
	committed := 0
	f.viewer.On(EventCoordChanged, func(data interface{}) {
		changed = append(changed, data.(geometry.Coord))
	})
	f.viewer.On(EventCoordCommitted, func(interface{}) { committed++ })

	h := f.surface.Handler()
	require.NotNil(t, h)
	require.NoError(t, h.MouseDown(pointer(50, 70)))
	require.NoError(t, h.MouseMove(pointer(140, 110)))
	assert.Equal(t, 0, committed)
	require.NoError(t, h.MouseUp(pointer(240, 260)))

	require.Len(t, changed, 2)
	assert.Equal(t, geometry.NewCoord(99.5, 150, 49.5), changed[0])
	assert.Equal(t, geometry.NewCoord(199.5, 150, 199.5), changed[1])
	assert.Equal(t, 1, committed)
	assert.NotNil(t, f.surface.Frame(), "views redrawn")
}

func TestListenersSeeUpdatedCoord(t *testing.T) {
	v := New(config.DefaultViewer())
	var seen geometry.Coord
	v.On(EventCoordChanged, func(interface{}) { seen = v.CurrentCoord() })

	v.ProposeCoord(geometry.NewCoord(4, 5, 99), []geometry.Axis{geometry.AxisX, geometry.AxisY}, false)
	assert.Equal(t, geometry.NewCoord(4, 5, 0), seen)
}

func TestDragWithoutVolumeLeavesCoord(t *testing.T) {
	f := newFixture(t, plane.Axial, 10, 10, 10, 100)
	f.viewer.SetCurrentCoord(geometry.NewCoord(1, 2, 3))
	require.NoError(t, f.view.ReplaceVolume(nil))

	require.NoError(t, f.view.MouseDown(pointer(5, 5)))
	err := f.view.MouseUp(pointer(50, 50))
	assert.ErrorIs(t, err, ErrNoVolume)
	assert.Equal(t, geometry.NewCoord(1, 2, 3), f.viewer.CurrentCoord())
}

func TestDrawHooksCleanup(t *testing.T) {
	v := New(config.DefaultViewer())
	calls := 0
	cleanup := v.OnDraw(func() { calls++ })
	other := v.OnDraw(func() { calls += 10 })

	v.RequestDraw()
	assert.Equal(t, 11, calls)

	cleanup()
	cleanup()
	assert.Equal(t, 1, v.DrawHooks())

	v.RequestDraw()
	assert.Equal(t, 21, calls)
	other()
	assert.Zero(t, v.DrawHooks())
}

func TestRequestDrawDuringCycleRepeatsOnce(t *testing.T) {
	v := New(config.DefaultViewer())
	calls := 0
	v.OnDraw(func() {
		calls++
		if calls == 1 {
			v.RequestDraw()
			v.RequestDraw()
		}
	})

	v.RequestDraw()
	assert.Equal(t, 2, calls, "requests made mid-cycle coalesce into one more cycle")

	v.RequestDraw()
	assert.Equal(t, 3, calls)
}

func TestCloseReleasesDrawHook(t *testing.T) {
	f := newFixture(t, plane.Axial, 4, 4, 4, 50)
	assert.Equal(t, 1, f.viewer.DrawHooks())

	f.view.Close()
	assert.Zero(t, f.viewer.DrawHooks())
	assert.Nil(t, f.surface.Handler())
}

func TestFlippedAxisRoundTrip(t *testing.T) {
	f := newFixture(t, plane.Axial, 10, 10, 10, 100)
	f.volume.Axis(geometry.AxisX).Flip = true

	xf, err := f.viewer.SliceTransform(f.view)
	require.NoError(t, err)
	assert.InDelta(t, -10, xf.A, 1e-9)
	assert.InDelta(t, 100, xf.TX, 1e-9)

	c, err := f.view.SurfaceToVolume(pointer(5, 5))
	require.NoError(t, err)
	assert.InDelta(t, 9, c.Get(geometry.AxisX), 1e-9, "left edge shows the last column")

	back, err := f.view.VolumeToSurface(c)
	require.NoError(t, err)
	assert.InDelta(t, 5, back.X, 1e-9)
}

func TestPanShiftsOnePane(t *testing.T) {
	f := newFixture(t, plane.Axial, 10, 10, 10, 100)
	f.viewer.Pan(f.view, 7, -3)

	xf, err := f.viewer.SliceTransform(f.view)
	require.NoError(t, err)
	assert.InDelta(t, 7, xf.TX, 1e-9)
	assert.InDelta(t, -3, xf.TY, 1e-9)

	f.viewer.ResetView()
	xf, err = f.viewer.SliceTransform(f.view)
	require.NoError(t, err)
	assert.InDelta(t, 0, xf.TX, 1e-9)
}

func TestSetFrameClampsAndRedraws(t *testing.T) {
	f := newFixture(t, plane.Axial, 4, 4, 4, 20)
	f.viewer.SetFrame(-3)
	assert.Equal(t, 0, f.viewer.Frame())

	f.viewer.SetFrame(5)
	assert.Equal(t, 5, f.viewer.Frame())
	assert.NotNil(t, f.surface.Frame(), "frame beyond the volume draws the last one")
}
