package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileGivesFallbacks(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "none.json"))

	assert.Equal(t, "", p.String(KeyLastVolumeDir))
	assert.True(t, p.Bool(KeyCrosshairs, true))
	assert.Equal(t, 1.5, p.FloatWithFallback(KeyZoomFactor, 1.5))
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	p := LoadFrom(path)
	p.SetString(KeyLastVolumeDir, "/data/brain")
	p.SetBool(KeyCrosshairs, false)
	p.SetFloat(KeyZoomFactor, 2.5)
	require.NoError(t, p.Save())

	again := LoadFrom(path)
	assert.Equal(t, "/data/brain", again.String(KeyLastVolumeDir))
	assert.False(t, again.Bool(KeyCrosshairs, true))
	assert.Equal(t, 2.5, again.FloatWithFallback(KeyZoomFactor, 1))
}

func TestMalformedFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFrom(path)
	assert.True(t, p.Bool(KeyCrosshairs, true))
}

func TestWrongTypeFallsBack(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "p.json"))
	p.SetString(KeyZoomFactor, "big")
	assert.Equal(t, 3.0, p.FloatWithFallback(KeyZoomFactor, 3))
	assert.True(t, p.Bool(KeyZoomFactor, true))
}
