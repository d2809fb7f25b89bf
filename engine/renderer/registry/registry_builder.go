package registry

// RegistryBuilderOption is a functional option applied to a Registry during construction via New.
type RegistryBuilderOption func(*registry)

// WithTextureFiles registers additional textures decoded from image files during construction.
// Files are decoded in parallel and uploaded in name order.
//
// Parameters:
//   - files: registry names mapped to image file paths
//
// Returns:
//   - RegistryBuilderOption: a function that applies the texture files option to a registry
func WithTextureFiles(files map[string]string) RegistryBuilderOption {
	return func(r *registry) {
		for name, path := range files {
			r.textureFiles[name] = path
		}
	}
}

// WithDecodeWorkers sets the number of workers used to decode texture files. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of decode workers (minimum 1)
//
// Returns:
//   - RegistryBuilderOption: a function that applies the decode workers option to a registry
func WithDecodeWorkers(n int) RegistryBuilderOption {
	return func(r *registry) {
		r.decodeWorkers = max(n, 1)
	}
}
