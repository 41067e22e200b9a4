package mainwindow

import (
	"path/filepath"
	"strings"
	"testing"

	"slice-viewer/internal/app"
	"slice-viewer/internal/volume"
	"slice-viewer/pkg/geometry"
	"slice-viewer/ui/prefs"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWindow(t *testing.T) (*MainWindow, *app.State, string) {
	t.Helper()
	a := test.NewApp()
	state := app.NewState(nil)
	path := filepath.Join(t.TempDir(), "preferences.json")

	mw, err := New(a, state, prefs.LoadFrom(path))
	require.NoError(t, err)
	t.Cleanup(mw.Shutdown)
	return mw, state, path
}

func TestWindowOpensConfiguredPanes(t *testing.T) {
	mw, state, _ := newWindow(t)

	require.Len(t, mw.Canvases(), 3)
	assert.Len(t, state.Panes(), 3)
	for i, view := range state.Panes() {
		assert.Equal(t, mw.Canvases()[i].ID(), view.Surface().ID())
	}
}

func TestStatusFollowsCursor(t *testing.T) {
	mw, state, _ := newWindow(t)
	vol, err := volume.New(8, 8, 8, 1)
	require.NoError(t, err)
	require.NoError(t, state.SetVolume(vol, "/data/head"))

	state.Viewer.SetCurrentCoord(geometry.NewCoord(1, 2, 3))
	assert.True(t, strings.HasPrefix(mw.StatusText(), "Cursor "), mw.StatusText())
	assert.Contains(t, mw.Title(), "head")
}

func TestToggleCrosshairs(t *testing.T) {
	mw, state, _ := newWindow(t)
	require.True(t, state.Crosshairs())

	mw.onToggleCrosshairs()
	assert.False(t, state.Crosshairs())
	assert.False(t, mw.crosshairsItem.Checked)
	for _, view := range state.Panes() {
		assert.False(t, view.Crosshairs())
	}
}

func TestZoomButtons(t *testing.T) {
	mw, state, _ := newWindow(t)
	state.Viewer.SetZoomFactor(2)

	mw.onZoomIn()
	assert.InDelta(t, 2.1, state.Viewer.ZoomFactor(), 1e-9)
	mw.onResetView()
	assert.Equal(t, 1.0, state.Viewer.ZoomFactor())
}

func TestFrameSliderShownFor4D(t *testing.T) {
	mw, state, _ := newWindow(t)
	assert.False(t, mw.frameRow.Visible())

	vol, err := volume.New(4, 4, 4, 5)
	require.NoError(t, err)
	require.NoError(t, state.SetVolume(vol, "/data/fmri"))
	assert.True(t, mw.frameRow.Visible())
	assert.Equal(t, 4.0, mw.frameSlider.Max)

	mw.frameSlider.SetValue(3)
	assert.Equal(t, 3, state.Viewer.Frame())
}

func TestPreferencesRoundTrip(t *testing.T) {
	mw, state, path := newWindow(t)
	mw.onToggleCrosshairs()
	state.Viewer.SetZoomFactor(3)
	mw.SavePreferences()

	saved := prefs.LoadFrom(path)
	assert.False(t, saved.Bool(prefs.KeyCrosshairs, true))
	assert.Equal(t, 3.0, saved.FloatWithFallback(prefs.KeyZoomFactor, 0))

	next, err := New(test.NewApp(), app.NewState(nil), saved)
	require.NoError(t, err)
	t.Cleanup(next.Shutdown)
	assert.False(t, next.state.Crosshairs())
	assert.Equal(t, 3.0, next.state.Viewer.ZoomFactor())
}
