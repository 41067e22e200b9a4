package main

import (
	"testing"

	"slice-viewer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoord(t *testing.T) {
	c, err := parseCoord("1.5, 2,3")
	require.NoError(t, err)
	assert.Equal(t, geometry.NewCoord(1.5, 2, 3), c)

	_, err = parseCoord("1,2")
	assert.Error(t, err)
	_, err = parseCoord("1,b,3")
	assert.Error(t, err)
}
