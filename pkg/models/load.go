package models

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Load reads a mesh from an .obj, .glb or .gltf file.
func Load(path string) (*Mesh, error) {
	mesh, _, err := LoadWithTexture(path)
	return mesh, err
}

// LoadWithTexture reads a mesh and, for glTF files, its first embedded or
// referenced base color image. The image is nil when the file carries none.
func LoadWithTexture(path string) (*Mesh, image.Image, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err := LoadOBJ(path)
		return mesh, nil, err
	case ".glb", ".gltf":
		return LoadGLBWithTexture(path)
	default:
		return nil, nil, fmt.Errorf("%w: %q (use .obj or .glb)", ErrUnsupportedFormat, ext)
	}
}
