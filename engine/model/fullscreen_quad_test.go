package model_test

import (
	"testing"

	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleFor(t *testing.T) {
	tests := []struct {
		name           string
		cw, ch, vw, vh uint32
		wantX, wantY   float32
	}{
		{"square content wide viewport", 1, 1, 1920, 1080, 0.5625, 1},
		{"square content tall viewport", 1, 1, 1080, 1920, 1, 0.5625},
		{"matching aspect", 16, 9, 1920, 1080, 1, 1},
		{"wide content square viewport", 2, 1, 500, 500, 1, 0.5},
		{"zero viewport", 1, 1, 0, 1080, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := model.ScaleFor(tt.cw, tt.ch, tt.vw, tt.vh)
			assert.InDelta(t, tt.wantX, x, 1e-5)
			assert.InDelta(t, tt.wantY, y, 1e-5)
			assert.LessOrEqual(t, x, float32(1))
			assert.LessOrEqual(t, y, float32(1))
		})
	}
}

func TestFullscreenQuadResizeIsStable(t *testing.T) {
	dev := gputest.NewDevice()
	q, err := model.NewFullscreenQuad(dev, "Fullscreen Quad")
	require.NoError(t, err)
	vb := q.Model().VertexBuffer()
	assert.False(t, q.Model().Indexed())

	require.NoError(t, q.ResizeToViewport(1920, 1080))
	first := dev.BufferData(vb)
	require.NoError(t, q.ResizeToViewport(1920, 1080))
	second := dev.BufferData(vb)

	assert.Equal(t, first, second)
	// one vertex buffer plus one staging buffer per resize
	assert.Equal(t, 3, dev.Count(gputest.OpCreateBufferInit))
	assert.Equal(t, vb, q.Model().VertexBuffer())
	assert.InDelta(t, 0.5625, q.Scale()[0], 1e-5)
	assert.Equal(t, float32(1), q.Scale()[1])
}

func TestFullscreenQuadScalesOnlyXY(t *testing.T) {
	dev := gputest.NewDevice()
	q, err := model.NewFullscreenQuad(dev, "Fullscreen Quad", model.WithContentSize(2, 1))
	require.NoError(t, err)
	src := model.QuadMeshes()[0].Vertices

	require.NoError(t, q.ResizeToViewport(400, 400))
	got := q.Vertices()
	require.Len(t, got, len(src))
	for i := range src {
		assert.Equal(t, src[i].Position[0], got[i].Position[0])
		assert.InDelta(t, src[i].Position[1]*0.5, got[i].Position[1], 1e-6)
		assert.Equal(t, src[i].Position[2], got[i].Position[2])
		assert.Equal(t, src[i].TexCoord, got[i].TexCoord)
	}
	assert.Equal(t, model.MarshalVertices(got), dev.BufferData(q.Model().VertexBuffer()))
}

func TestFullscreenQuadIgnoresZeroViewport(t *testing.T) {
	dev := gputest.NewDevice()
	q, err := model.NewFullscreenQuad(dev, "Fullscreen Quad")
	require.NoError(t, err)
	dev.Reset()

	require.NoError(t, q.ResizeToViewport(0, 600))
	assert.Empty(t, dev.Ops())
	assert.Equal(t, [2]float32{1, 1}, q.Scale())
}
