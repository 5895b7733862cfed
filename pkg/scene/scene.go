// Package scene loads renderable objects from scene descriptions and
// animates them between frames.
package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
)

// ErrEmptyScene is returned when a scene description lists no objects.
var ErrEmptyScene = errors.New("scene has no objects")

// palette colors objects in the untextured fill modes.
var palette = []render.Color{
	render.RGB(200, 200, 200),
	render.RGB(230, 120, 80),
	render.RGB(90, 170, 230),
	render.RGB(120, 200, 110),
	render.RGB(220, 200, 90),
}

// Object is one mesh placed in the scene.
type Object struct {
	Name    string
	Mesh    *models.Mesh
	Texture *render.Texture // nil renders with the fallback texture
	Color   render.Color    // Base color for the untextured modes

	// Placement from the scene file. Animation offsets are applied on top.
	BaseTranslation math3d.Vec3
	BaseRotation    math3d.Vec3
	BaseScale       math3d.Vec3
}

// ResetTransform restores the mesh transform to the loaded placement.
func (o *Object) ResetTransform() {
	o.Mesh.Translation = o.BaseTranslation
	o.Mesh.Rotation = o.BaseRotation
	o.Mesh.Scale = o.BaseScale
}

// Scene is an ordered list of objects. Objects are drawn in order.
type Scene struct {
	Path    string
	Objects []*Object
}

// TriangleCount returns the number of faces across all objects.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, o := range s.Objects {
		n += o.Mesh.TriangleCount()
	}
	return n
}

// Options controls how scenes are resolved and loaded.
type Options struct {
	// AssetsDir is the base for relative mesh and texture paths. It defaults
	// to the directory of the scene file.
	AssetsDir string
	// Placeholder textures objects that have neither a texture_path nor an
	// embedded image. Nil leaves them to the magenta fallback.
	Placeholder *render.Texture
	Logger      *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ObjectDesc is one entry of a scene file.
type ObjectDesc struct {
	MeshPath     string  `yaml:"mesh_path" json:"mesh_path"`
	TexturePath  string  `yaml:"texture_path" json:"texture_path"`
	TranslationX float64 `yaml:"translation_x" json:"translation_x"`
	TranslationY float64 `yaml:"translation_y" json:"translation_y"`
	TranslationZ float64 `yaml:"translation_z" json:"translation_z"`
	RotationX    float64 `yaml:"rotation_x" json:"rotation_x"`
	RotationY    float64 `yaml:"rotation_y" json:"rotation_y"`
	RotationZ    float64 `yaml:"rotation_z" json:"rotation_z"`
	ScaleX       float64 `yaml:"scale_x" json:"scale_x"`
	ScaleY       float64 `yaml:"scale_y" json:"scale_y"`
	ScaleZ       float64 `yaml:"scale_z" json:"scale_z"`
}

// plainDesc has no custom decoding, which keeps the unmarshalers below from
// recursing.
type plainDesc ObjectDesc

func defaultDesc() plainDesc {
	return plainDesc{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
}

// UnmarshalYAML fills omitted scale components with 1.
func (d *ObjectDesc) UnmarshalYAML(node *yaml.Node) error {
	p := defaultDesc()
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = ObjectDesc(p)
	return nil
}

// UnmarshalJSON fills omitted scale components with 1.
func (d *ObjectDesc) UnmarshalJSON(data []byte) error {
	p := defaultDesc()
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = ObjectDesc(p)
	return nil
}

// Translation returns the translation as a vector.
func (d ObjectDesc) Translation() math3d.Vec3 {
	return math3d.V3(d.TranslationX, d.TranslationY, d.TranslationZ)
}

// Rotation returns the Euler rotation in radians.
func (d ObjectDesc) Rotation() math3d.Vec3 {
	return math3d.V3(d.RotationX, d.RotationY, d.RotationZ)
}

// Scale returns the per-axis scale.
func (d ObjectDesc) Scale() math3d.Vec3 {
	return math3d.V3(d.ScaleX, d.ScaleY, d.ScaleZ)
}

// Parse decodes a scene description: a JSON array or a YAML sequence of
// objects.
func Parse(data []byte) ([]ObjectDesc, error) {
	var descs []ObjectDesc
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, ErrEmptyScene
	case trimmed[0] == '[' && json.Valid(trimmed):
		if err := json.Unmarshal(trimmed, &descs); err != nil {
			return nil, fmt.Errorf("decode scene: %w", err)
		}
	default:
		if err := yaml.Unmarshal(trimmed, &descs); err != nil {
			return nil, fmt.Errorf("decode scene: %w", err)
		}
	}
	if len(descs) == 0 {
		return nil, ErrEmptyScene
	}
	for i, d := range descs {
		if d.MeshPath == "" {
			return nil, fmt.Errorf("object %d: mesh_path is required", i)
		}
	}
	return descs, nil
}

// IsModelPath reports whether path names a model file rather than a scene.
func IsModelPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".glb", ".gltf":
		return true
	}
	return false
}

// Load reads a scene file, or wraps a single model file in a one-object scene.
func Load(path string, opts Options) (*Scene, error) {
	if opts.AssetsDir == "" {
		opts.AssetsDir = filepath.Dir(path)
	}

	if IsModelPath(path) {
		return loadModel(path, opts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	descs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc, err := Build(descs, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Path = path
	return sc, nil
}

// Build loads every object in descs. Mesh errors are fatal; texture errors
// are logged and the object falls back to the magenta texture. Objects that
// share a mesh file load it once and each get their own copy.
func Build(descs []ObjectDesc, opts Options) (*Scene, error) {
	if len(descs) == 0 {
		return nil, ErrEmptyScene
	}
	log := opts.logger()

	type meshKey struct {
		path      string
		withImage bool // embedded image requested
	}
	type loaded struct {
		mesh     *models.Mesh
		embedded image.Image
	}
	cache := make(map[meshKey]loaded)

	sc := &Scene{}
	for i, d := range descs {
		meshPath := resolve(opts.AssetsDir, d.MeshPath)
		key := meshKey{meshPath, d.TexturePath == ""}
		l, shared := cache[key]
		if !shared {
			var err error
			if key.withImage {
				l.mesh, l.embedded, err = models.LoadWithTexture(meshPath)
			} else {
				l.mesh, err = models.Load(meshPath)
			}
			if err != nil {
				return nil, fmt.Errorf("object %d: load mesh: %w", i, err)
			}
			if err := l.mesh.Validate(); err != nil {
				return nil, fmt.Errorf("object %d: %s: %w", i, meshPath, err)
			}
			cache[key] = l
		}
		mesh := l.mesh
		if shared {
			mesh = l.mesh.Clone()
		}

		var tex *render.Texture
		switch {
		case d.TexturePath != "":
			tex = loadTexture(resolve(opts.AssetsDir, d.TexturePath), log)
		case l.embedded != nil:
			tex = render.TextureFromImage(l.embedded)
		default:
			tex = opts.Placeholder
		}

		obj := newObject(mesh, tex, i)
		obj.BaseTranslation = d.Translation()
		obj.BaseRotation = d.Rotation()
		obj.BaseScale = d.Scale()
		obj.ResetTransform()
		sc.Objects = append(sc.Objects, obj)

		log.Debug("loaded object",
			zap.String("mesh", meshPath),
			zap.Bool("shared", shared),
			zap.Int("vertices", mesh.VertexCount()),
			zap.Int("triangles", mesh.TriangleCount()),
			zap.Bool("textured", tex != nil),
		)
	}
	return sc, nil
}

// loadModel builds a scene from one model file, normalized to fit a
// 2-unit cube at the origin. A sibling .png with the same base name is used
// as its texture when the model has none of its own.
func loadModel(path string, opts Options) (*Scene, error) {
	log := opts.logger()

	mesh, embedded, err := models.LoadWithTexture(path)
	if err != nil {
		return nil, err
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mesh.Normalize(2)

	tex := opts.Placeholder
	sibling := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	if embedded != nil {
		tex = render.TextureFromImage(embedded)
	} else if _, statErr := os.Stat(sibling); statErr == nil {
		tex = loadTexture(sibling, log)
	}

	obj := newObject(mesh, tex, 0)
	obj.ResetTransform()
	log.Debug("loaded model",
		zap.String("path", path),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
	)
	return &Scene{Path: path, Objects: []*Object{obj}}, nil
}

func newObject(mesh *models.Mesh, tex *render.Texture, i int) *Object {
	return &Object{
		Name:      mesh.Name,
		Mesh:      mesh,
		Texture:   tex,
		Color:     palette[i%len(palette)],
		BaseScale: math3d.V3(1, 1, 1),
	}
}

func loadTexture(path string, log *zap.Logger) *render.Texture {
	tex, err := render.LoadTexture(path)
	if err != nil {
		log.Warn("texture unavailable, using fallback", zap.String("path", path), zap.Error(err))
		return render.FallbackTexture()
	}
	return tex
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
