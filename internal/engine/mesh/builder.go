package mesh

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/engine/texture"
	"github.com/Faultbox/objmesh/internal/logger"
	"github.com/Faultbox/objmesh/pkg/formats"
)

// Corner fallbacks for attributes a face does not reference.
var (
	fallbackPosition = mgl32.Vec3{0, 0, 0}
	fallbackNormal   = mgl32.Vec3{0, 0, 1}
	fallbackTexCoord = mgl32.Vec2{0, 0}
)

// Options configures a Builder.
type Options struct {
	// FlipTextures stores decoded images bottom row first.
	FlipTextures bool
	// SearchPaths are tried after the material library directory and the
	// build base directory when resolving texture names.
	SearchPaths []string
}

// DefaultOptions returns the options used by the tools.
func DefaultOptions() Options {
	return Options{FlipTextures: true}
}

// Builder turns parse results into meshes. Apart from the fallback textures
// it shares between meshes, it keeps no state between builds.
type Builder struct {
	opts     Options
	decoder  texture.Decoder
	defaults *texture.Defaults
}

// NewBuilder creates a builder and its fallback textures.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:     opts,
		decoder:  texture.Decoder{FlipVertical: opts.FlipTextures},
		defaults: texture.NewDefaults(),
	}
}

// Defaults returns the fallback textures shared by every mesh of b.
func (b *Builder) Defaults() *texture.Defaults {
	return b.defaults
}

// Close releases the device handles of the fallback textures. Meshes built by
// b must be released first.
func (b *Builder) Close(dev Device) {
	b.defaults.Release(dev)
}

// Load parses the OBJ file at path and builds it. Material libraries and
// textures are resolved relative to the file's directory.
func (b *Builder) Load(path string) (*Mesh, []formats.ParseWarning, error) {
	obj, err := formats.ParseOBJFile(path, "")
	if err != nil {
		return nil, nil, err
	}
	for _, w := range obj.Warnings {
		logger.Warn("parse warning", zap.String("file", w.Path), zap.Int("line", w.Line), zap.String("msg", w.Msg))
	}

	m, err := b.Build(obj, filepath.Dir(path))
	if err != nil {
		return nil, obj.Warnings, err
	}

	logger.Info(fmt.Sprintf("Model loaded: %s (%d vertices, %d submeshes, %d materials)",
		path, len(m.Vertices), len(m.Submeshes), len(m.Materials)))
	return m, obj.Warnings, nil
}

// Build consolidates obj into a mesh. Every face corner becomes its own
// vertex; vertices are grouped so that faces without a material come first,
// followed by each material in index order. Relative texture names are
// resolved against their material library directory, then baseDir, then the
// configured search paths.
func (b *Builder) Build(obj *formats.OBJ, baseDir string) (*Mesh, error) {
	if obj == nil {
		return nil, &BuildError{Msg: "no input", Err: ErrNilParseResult}
	}
	if err := validate(obj); err != nil {
		return nil, err
	}

	m := &Mesh{Name: obj.Name, fallbacks: b.defaults}
	m.Vertices, m.Submeshes = consolidate(obj)
	m.Bounds = computeBounds(m.Vertices)

	res := newResolver(b.decoder, b.defaults, baseDir, b.opts.SearchPaths)
	defer res.close()

	m.Materials = make([]Material, len(obj.Materials))
	for i := range obj.Materials {
		m.Materials[i] = res.material(&obj.Materials[i])
	}
	m.Diagnostics = res.diagnostics

	return m, nil
}

// validate rejects parse results whose indices cannot be resolved.
func validate(obj *formats.OBJ) error {
	fail := func(msg string, err error) error {
		return &BuildError{Name: obj.Name, Msg: msg, Err: err}
	}

	positions, normals, texCoords := obj.PositionCount(), obj.NormalCount(), obj.TexCoordCount()
	if len(obj.Faces) > 0 && positions == 0 {
		return fail(fmt.Sprintf("%d faces", len(obj.Faces)), ErrEmptyVertexPool)
	}

	for fi, face := range obj.Faces {
		if face.MaterialID < NoMaterial || face.MaterialID >= len(obj.Materials) {
			return fail(fmt.Sprintf("face %d material %d of %d", fi, face.MaterialID, len(obj.Materials)), ErrUnknownMaterial)
		}
		for _, c := range face.Corners {
			if !inPool(c.Position, positions) || !inPool(c.Normal, normals) || !inPool(c.TexCoord, texCoords) {
				return fail(fmt.Sprintf("face %d corner %+v", fi, c), ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

func inPool(idx, count int) bool {
	return idx == formats.NoIndex || (idx >= 0 && idx < count)
}

// consolidate emits one vertex per corner, bucketed by material.
func consolidate(obj *formats.OBJ) ([]Vertex, []Submesh) {
	// buckets[0] holds faces without a material, buckets[i+1] faces of material i.
	buckets := make([][]int, len(obj.Materials)+1)
	for fi, face := range obj.Faces {
		key := face.MaterialID + 1
		buckets[key] = append(buckets[key], fi)
	}

	vertices := make([]Vertex, 0, len(obj.Faces)*3)
	var submeshes []Submesh
	for key, faces := range buckets {
		if len(faces) == 0 {
			continue
		}
		first := len(vertices)
		for _, fi := range faces {
			for _, c := range obj.Faces[fi].Corners {
				vertices = append(vertices, cornerVertex(obj, c))
			}
		}
		submeshes = append(submeshes, Submesh{
			MaterialID: key - 1,
			First:      first,
			Count:      len(vertices) - first,
		})
	}

	return vertices, submeshes
}

func cornerVertex(obj *formats.OBJ, c formats.OBJIndex) Vertex {
	v := Vertex{
		Position: fallbackPosition,
		Normal:   fallbackNormal,
		TexCoord: fallbackTexCoord,
	}
	if c.Position != formats.NoIndex {
		o := c.Position * 3
		v.Position = mgl32.Vec3{obj.Positions[o], obj.Positions[o+1], obj.Positions[o+2]}
	}
	if c.Normal != formats.NoIndex {
		o := c.Normal * 3
		v.Normal = mgl32.Vec3{obj.Normals[o], obj.Normals[o+1], obj.Normals[o+2]}
	}
	if c.TexCoord != formats.NoIndex {
		o := c.TexCoord * 2
		v.TexCoord = mgl32.Vec2{obj.TexCoords[o], obj.TexCoords[o+1]}
	}
	return v
}

func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}

	bounds := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < bounds.Min[i] {
				bounds.Min[i] = v.Position[i]
			}
			if v.Position[i] > bounds.Max[i] {
				bounds.Max[i] = v.Position[i]
			}
		}
	}
	return bounds
}
