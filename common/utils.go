package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// PutFloat32s writes values into dst as little-endian IEEE-754 floats starting at byte offset off.
// It returns the offset just past the last written value.
//
// Parameters:
//   - dst: destination byte slice (must hold off + 4*len(values) bytes)
//   - off: starting byte offset
//   - values: the floats to write
//
// Returns:
//   - int: the byte offset after the written values
func PutFloat32s(dst []byte, off int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
		off += 4
	}
	return off
}

// Uint32sToBytes packs values as little-endian uint32s, the layout of a Uint32 index buffer.
func Uint32sToBytes(values []uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}
