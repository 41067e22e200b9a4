package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	data := []byte(`
viewer:
  zoomMax: 4
panes:
  width: 256
  crosshairs: false
  planes: [axial]
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Viewer.ZoomMax)
	assert.Equal(t, 1.0, cfg.Viewer.ZoomMin, "unset keys keep defaults")
	assert.Equal(t, 256, cfg.Panes.Width)
	assert.False(t, cfg.Panes.Crosshairs)
	assert.Equal(t, []string{"axial"}, cfg.Panes.Planes)
}

func TestLoadVolumeLabels(t *testing.T) {
	assert.Equal(t, [3]string{"R", "A", "S"}, Default().Volume.Labels)

	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("volume:\n  labels: [L, P, \"\"]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, [3]string{"L", "P", ""}, cfg.Volume.Labels)
}

func TestLoadRejectsBadZoomRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewer:\n  zoomMin: 5\n  zoomMax: 2\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "viewer.yaml")
	cfg := Default()
	cfg.Panes.Height = 200
	cfg.Volume.VoxelSize = [3]float64{0.5, 0.5, 2}

	require.NoError(t, Save(cfg, path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
