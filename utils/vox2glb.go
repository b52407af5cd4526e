package utils

import (
	"log/slog"
	"os"

	"github.com/voxelsplace/voxsprite/mesh"
)

// RunVOX2GLB converts a .vox file into a .glb. A negative model exports
// every model of the file, one node each; otherwise only that model.
func RunVOX2GLB(logger *slog.Logger, inPath, outPath string, model int) error {
	f, err := LoadFile(logger, inPath)
	if err != nil {
		return err
	}
	var glb []byte
	if model < 0 {
		glb, err = mesh.EncodeFileGLB(f)
	} else {
		glb, err = mesh.EncodeGLB(f, model)
	}
	if err != nil {
		return err
	}
	logger.Debug("meshed", "input", inPath, "models", len(f.Models), "bytes", len(glb))
	return os.WriteFile(outPath, glb, 0o644)
}
