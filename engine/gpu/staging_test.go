package gpu_test

import (
	"errors"
	"testing"

	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStagedCopiesThroughStagingBuffer(t *testing.T) {
	dev := gputest.NewDevice()
	dst, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	require.NoError(t, err)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, gpu.UploadStaged(dev, dst, 4, data, "Uniform"))

	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0}, dev.BufferData(dst))
	assert.Equal(t, 1, dev.Buffer(dst).Uploads)

	assert.Equal(t, []string{
		gputest.OpCreateBuffer,
		gputest.OpCreateBufferInit,
		gputest.OpCreateCommandEncoder,
		gputest.OpCopyBufferToBuffer,
		gputest.OpFinish,
		gputest.OpSubmit,
		gputest.OpReleaseEncoder,
		gputest.OpRelease,
	}, dev.Ops())

	staging := dev.CallsOf(gputest.OpCreateBufferInit)[0].Target
	assert.Equal(t, 1, dev.Released(staging))
}

func TestUploadStagedRejectsMisalignedData(t *testing.T) {
	dev := gputest.NewDevice()
	dst, err := dev.CreateBuffer(&wgpu.BufferDescriptor{Label: "Uniform", Size: 16})
	require.NoError(t, err)

	assert.Error(t, gpu.UploadStaged(dev, dst, 0, []byte{1, 2, 3}, "Uniform"))
	assert.Equal(t, 0, dev.Count(gputest.OpSubmit))
}

func TestUploadStagedReleasesOnEncoderFailure(t *testing.T) {
	dev := gputest.NewDevice()
	dst, err := dev.CreateBuffer(&wgpu.BufferDescriptor{Label: "Uniform", Size: 4})
	require.NoError(t, err)

	boom := errors.New("device lost")
	dev.FailNext(gputest.OpCreateCommandEncoder, boom)

	err = gpu.UploadStaged(dev, dst, 0, []byte{1, 2, 3, 4}, "Uniform")
	require.ErrorIs(t, err, boom)

	staging := dev.CallsOf(gputest.OpCreateBufferInit)[0].Target
	assert.Equal(t, 1, dev.Released(staging))
	assert.Equal(t, 0, dev.Buffer(dst).Uploads)
}

func TestUploadStagedEmptyIsNoop(t *testing.T) {
	dev := gputest.NewDevice()
	require.NoError(t, gpu.UploadStaged(dev, nil, 0, nil, "Empty"))
	assert.Empty(t, dev.Ops())
}
