// Command shaderc compiles WGSL shaders to SPIR-V so materials can be loaded from .spv files.
//
// Usage:
//
//	shaderc -o outdir file.wgsl...
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/gogpu/naga"
)

func main() {
	outDir := flag.String("o", ".", "output directory")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: shaderc -o outdir file.wgsl...")
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		out, err := compileFile(path, *outDir)
		if err != nil {
			logger.Errorf("%v", err)
			failed = true
			continue
		}
		logger.Infof("%s -> %s", path, out)
	}
	if failed {
		os.Exit(1)
	}
}

// compileFile compiles one .wgsl file into outDir/<name>.spv and returns the output path.
func compileFile(path, outDir string) (string, error) {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".wgsl") {
		return "", fmt.Errorf("%w: %s is not a .wgsl file", common.ErrUnsupportedFormat, path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	spirv, err := naga.Compile(string(src))
	if err != nil {
		return "", fmt.Errorf("failed to compile %s: %w", path, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	out := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), ext)+".spv")
	if err := os.WriteFile(out, spirv, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}
