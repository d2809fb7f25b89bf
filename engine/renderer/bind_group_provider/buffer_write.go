package bind_group_provider

import (
	"fmt"

	"github.com/Kuowrk/fragma/engine/gpu"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Stage uploads the write through a staging buffer copy.
//
// Parameters:
//   - device: the device to record the copy on
//
// Returns:
//   - error: error if the binding has no buffer or the upload fails
func (w BufferWrite) Stage(device gpu.Device) error {
	buf := w.Provider.Buffer(w.Binding)
	if buf == nil {
		return fmt.Errorf("bind group provider %q has no buffer at binding %d", w.Provider.Label(), w.Binding)
	}
	return gpu.UploadStaged(device, buf, w.Offset, w.Data, w.Provider.Label())
}
