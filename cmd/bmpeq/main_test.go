package main

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/mdouchement/bmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"
)

func TestPrintBarsAfterTransform(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range m.Pix {
		m.Pix[i] = 0xff
	}
	m.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 0xff})

	var data bytes.Buffer
	require.NoError(t, xbmp.Encode(&data, m))
	b, err := bmp.Decode(&data)
	require.NoError(t, err)

	verbose = new(bool)
	require.NoError(t, apply(b, "fill", "red", 0, 1))

	var out bytes.Buffer
	require.NoError(t, printBars(&out, b, 4))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 256*4)
	assert.Equal(t, "000:RRRR", lines[0], "every red value is filled with 0")
	assert.Equal(t, "255:", lines[255*4])
	assert.Equal(t, "255:GGG", lines[255*4+1])
}

func TestApplyRejectsUnknownTransform(t *testing.T) {
	verbose = new(bool)
	assert.Error(t, apply(&bmp.Bitmap{}, "sharpen", "red", 0, 1))
}
