package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FFD500")
	require.NoError(t, err)
	assert.Equal(t, Gold, c)

	c, err = ParseHex("10203080")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}, c)
}

func TestParseHexRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "#FFF", "#GGGGGG"} {
		_, err := ParseHex(s)
		assert.Error(t, err, s)
	}
	assert.Equal(t, Cyan, ParseHexOr("nope", Cyan))
}
