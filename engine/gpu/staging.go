package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// UploadStaged copies data into dst through a transient staging buffer: the bytes are placed in a
// COPY_SRC buffer, a GPU-side copy into dst is recorded and submitted, and the staging buffer is released.
// dst must have COPY_DST usage and hold at least dstOffset+len(data) bytes.
//
// Parameters:
//   - d: the device to record on
//   - dst: the destination buffer
//   - dstOffset: destination byte offset (multiple of 4)
//   - data: bytes to upload (length multiple of 4)
//   - label: debug label prefix for the transient objects
//
// Returns:
//   - error: error if any transient object could not be created or the data is misaligned
func UploadStaged(d Device, dst *wgpu.Buffer, dstOffset uint64, data []byte, label string) error {
	if len(data) == 0 {
		return nil
	}
	if len(data)%4 != 0 || dstOffset%4 != 0 {
		return fmt.Errorf("staged upload %q: size %d and offset %d must be multiples of 4", label, len(data), dstOffset)
	}

	staging, err := d.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Staging Buffer",
		Contents: data,
		Usage:    wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("failed to create staging buffer for %q: %w", label, err)
	}
	defer d.Release(staging)

	encoder, err := d.CreateCommandEncoder(label + " Staging Encoder")
	if err != nil {
		return err
	}
	defer encoder.Release()

	encoder.CopyBufferToBuffer(staging, 0, dst, dstOffset, uint64(len(data)))

	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("failed to finish staging copy for %q: %w", label, err)
	}
	if cmd == nil {
		return errors.New("staging encoder returned no command buffer")
	}
	d.Submit(cmd)
	return nil
}
