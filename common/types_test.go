package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImageConvertsToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{B: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(1), img.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, img.Pixels)
}

func TestDecodeImageMalformed(t *testing.T) {
	_, err := DecodeImage(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeImageFileMissing(t *testing.T) {
	_, err := DecodeImageFile("does/not/exist.png")
	assert.Error(t, err)
}

func TestSolidImage(t *testing.T) {
	img := SolidImage([4]byte{1, 2, 3, 4})
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Pixels)
	assert.Equal(t, uint32(1), img.Width)
}
