package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portstow/az/env/grid"
)

func TestBoard_ProducesDecodablePNG(t *testing.T) {
	s := grid.New(2, 3, []byte{0, 1, 2, 0})

	var buf bytes.Buffer
	require.NoError(t, Board(s, &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 2*cellPx, img.Bounds().Dx())
	require.Equal(t, 2*cellPx, img.Bounds().Dy())
}
