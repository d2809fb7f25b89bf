// Package shader loads WGSL and SPIR-V shader sources and turns them into module descriptors.
package shader

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kuowrk/fragma/common"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/*.wgsl
var assets embed.FS

// Kind identifies the language of a shader source.
type Kind int

const (
	// KindWGSL is WebGPU Shading Language text.
	KindWGSL Kind = iota
	// KindSPIRV is a SPIR-V binary.
	KindSPIRV
)

func (k Kind) String() string {
	switch k {
	case KindWGSL:
		return "wgsl"
	case KindSPIRV:
		return "spirv"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source is a shader program in one of the supported languages.
type Source struct {
	// Label is the debug label, usually the file name without extension.
	Label string
	// Kind selects which of WGSL or SPIRV is set.
	Kind Kind
	// WGSL is the shader text for KindWGSL.
	WGSL string
	// SPIRV is the shader binary for KindSPIRV. Its length is a multiple of 4.
	SPIRV []byte
}

// FromWGSL wraps WGSL text in a Source.
//
// Parameters:
//   - label: the debug label
//   - code: the WGSL text
//
// Returns:
//   - Source: the source
func FromWGSL(label, code string) Source {
	return Source{Label: label, Kind: KindWGSL, WGSL: code}
}

// FromSPIRV wraps a SPIR-V binary in a Source.
//
// Parameters:
//   - label: the debug label
//   - code: the SPIR-V words as little-endian bytes
//
// Returns:
//   - Source: the source
//   - error: common.ErrMalformed if the length is not a multiple of 4
func FromSPIRV(label string, code []byte) (Source, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return Source{}, fmt.Errorf("%w: SPIR-V %q has %d bytes, not a whole number of words", common.ErrMalformed, label, len(code))
	}
	return Source{Label: label, Kind: KindSPIRV, SPIRV: code}, nil
}

// LoadFile reads a shader from disk, choosing the language by extension: .wgsl or .spv.
//
// Parameters:
//   - path: the shader file path
//
// Returns:
//   - Source: the loaded source labelled with the file's base name without extension
//   - error: common.ErrUnsupportedFormat for other extensions, common.ErrMalformed for truncated SPIR-V,
//     or the read error
func LoadFile(path string) (Source, error) {
	label := Name(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wgsl" && ext != ".spv" {
		return Source{}, fmt.Errorf("%w: shader %s has extension %q", common.ErrUnsupportedFormat, path, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	if ext == ".spv" {
		return FromSPIRV(label, data)
	}
	return FromWGSL(label, string(data)), nil
}

// Embedded returns a shader bundled with the binary under assets/.
//
// Parameters:
//   - name: the asset file name, e.g. "basic.wgsl"
//
// Returns:
//   - Source: the embedded source
//   - error: a NotFoundError if no such asset exists
func Embedded(name string) (Source, error) {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		return Source{}, common.NewNotFound("Shader", name)
	}
	return FromWGSL(Name(name), string(data)), nil
}

// Name returns the material name a shader file maps to: its base name without extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Descriptor builds the shader module descriptor for device.CreateShaderModule.
//
// Returns:
//   - *wgpu.ShaderModuleDescriptor: the descriptor
func (s Source) Descriptor() *wgpu.ShaderModuleDescriptor {
	if s.Kind == KindSPIRV {
		return &wgpu.ShaderModuleDescriptor{
			Label: s.Label,
			SPIRVDescriptor: &wgpu.ShaderModuleSPIRVDescriptor{
				Code: s.SPIRV,
			},
		}
	}
	return &wgpu.ShaderModuleDescriptor{
		Label: s.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.WGSL,
		},
	}
}
