package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/scanline/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into Mesh format.
type GLTFLoader struct {
	// FlipV converts glTF texture coordinates (v = 0 at the top of the image)
	// to the bottom-left origin used by render.Texture.
	FlipV bool
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{FlipV: true}
}

// LoadGLB loads a binary glTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns all of its triangle primitives
// merged into one Mesh. Winding is kept as stored: counter-clockwise faces
// are front faces.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.fromDocument(doc, filepath.Base(path))
}

func (l *GLTFLoader) fromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrNoTriangles
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		baseVertex := len(mesh.Vertices)
		baseUV := len(mesh.UVs)
		mesh.Vertices = append(mesh.Vertices, positions...)
		for _, uv := range uvs {
			if l.FlipV {
				uv.Y = 1 - uv.Y
			}
			mesh.UVs = append(mesh.UVs, uv)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var f Face
			for k := range 3 {
				idx := indices[i+k]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
				}
				f.V[k] = baseVertex + idx
				f.UV[k] = -1
				if idx < len(uvs) {
					f.UV[k] = baseUV + idx
				}
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// readVec3Accessor reads float VEC3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec2Accessor reads float VEC2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(f[0], f[1])
	}
	return result, nil
}

func readFloatAccessor(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([][3]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, 4*n)
	if err != nil {
		return nil, err
	}

	result := make([][3]float64, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+4*n > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", accessorIdx)
		}
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			result[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

// readIndices reads unsigned scalar index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+size > len(data) {
			return nil, fmt.Errorf("index accessor %d overruns its buffer", accessorIdx)
		}
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}

// accessorBytes returns the buffer backing accessor along with the byte
// offset of its first element and the element stride.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) (data []byte, start, stride int, err error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	stride = bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buffer.Data, bufferView.ByteOffset + accessor.ByteOffset, stride, nil
}

// LoadGLBWithTexture loads a glTF file and returns the mesh plus the first
// image in the document that decodes. The image is nil if there is none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().fromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	for _, data := range imageData(doc, filepath.Dir(path)) {
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return mesh, img, nil
		}
	}
	return mesh, nil, nil
}

// imageData returns the encoded bytes of each image in document order.
// Images that cannot be read are skipped.
func imageData(doc *gltf.Document, dir string) [][]byte {
	var out [][]byte
	for _, img := range doc.Images {
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data != nil && bv.ByteOffset+bv.ByteLength <= len(buf.Data) {
				out = append(out, buf.Data[bv.ByteOffset:bv.ByteOffset+bv.ByteLength])
			}
		case img.URI != "":
			if data, err := os.ReadFile(filepath.Join(dir, img.URI)); err == nil {
				out = append(out, data)
			}
		}
	}
	return out
}
