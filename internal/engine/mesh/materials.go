package mesh

import (
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/assets"
	"github.com/Faultbox/objmesh/internal/engine/texture"
	"github.com/Faultbox/objmesh/internal/logger"
	"github.com/Faultbox/objmesh/pkg/formats"
)

// resolver resolves material texture names for a single build. A file
// referenced more than once is decoded once and its texture shared.
type resolver struct {
	files    *assets.Manager
	decoder  texture.Decoder
	defaults *texture.Defaults

	loaded map[string]*texture.Texture // by resolved path
	failed map[string]error

	diagnostics []Diagnostic
}

func newResolver(dec texture.Decoder, defaults *texture.Defaults, baseDir string, searchPaths []string) *resolver {
	// Search paths have the lowest priority and baseDir the highest.
	files := assets.NewManager()
	for _, dir := range append(append([]string(nil), searchPaths...), baseDir) {
		if err := files.AddRoot(dir); err != nil {
			logger.Warn("skipping texture search path", zap.String("dir", dir), zap.Error(err))
		}
	}
	logger.Debug("texture search roots", zap.Strings("roots", files.Roots()))

	return &resolver{
		files:    files,
		decoder:  dec,
		defaults: defaults,
		loaded:   make(map[string]*texture.Texture),
		failed:   make(map[string]error),
	}
}

func (r *resolver) close() {
	hits, misses := r.files.Stats()
	logger.Debug("texture files read", zap.Int("cache_hits", hits), zap.Int("cache_misses", misses))
	r.files.Close()
}

// material converts a raw MTL record, resolving each channel independently.
func (r *resolver) material(src *formats.MTLMaterial) Material {
	m := Material{
		Name:            src.Name,
		BaseColorFactor: mgl32.Vec3{src.Diffuse[0], src.Diffuse[1], src.Diffuse[2]},
		MetallicFactor:  src.Metallic,
		RoughnessFactor: src.Roughness,
		AOFactor:        1,
	}

	names := [...]string{
		texture.BaseColor:        src.DiffuseTex,
		texture.Metallic:         src.MetallicTex,
		texture.Roughness:        src.RoughnessTex,
		texture.AmbientOcclusion: src.AmbientTex,
		texture.Normal:           src.NormalTex,
	}
	for _, ch := range texture.Channels {
		m.setTexture(ch, r.texture(src.Name, ch, names[ch], src.Dir))
	}

	// Factors scale their maps. A map whose factor was left unset at zero
	// is used as is rather than blanked out.
	if !m.BaseColorTexture.IsFallback() && m.BaseColorFactor == (mgl32.Vec3{}) {
		m.BaseColorFactor = mgl32.Vec3{1, 1, 1}
	}
	if !m.MetallicTexture.IsFallback() && m.MetallicFactor == 0 {
		m.MetallicFactor = 1
	}
	if !m.RoughnessTexture.IsFallback() && m.RoughnessFactor == 0 {
		m.RoughnessFactor = 1
	}
	return m
}

// texture returns the texture for name, or the channel fallback when name is
// empty or cannot be read or decoded.
func (r *resolver) texture(material string, ch texture.Channel, name, dir string) *texture.Texture {
	if name == "" {
		return r.defaults.For(ch)
	}

	data, path, err := r.read(name, dir)
	if err != nil {
		return r.fallback(material, ch, name, err)
	}
	if t, ok := r.loaded[path]; ok {
		return t
	}
	if err, ok := r.failed[path]; ok {
		return r.fallback(material, ch, path, err)
	}

	img, err := r.decoder.Decode(data)
	if err != nil {
		r.failed[path] = err
		return r.fallback(material, ch, path, err)
	}

	logger.Debug("found texture",
		zap.String("material", material),
		zap.Stringer("channel", ch),
		zap.String("path", path),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))

	t := texture.New(path, img)
	r.loaded[path] = t
	return t
}

// read looks name up in the material library directory first, then in the
// build roots. Absolute names are read as-is.
func (r *resolver) read(name, dir string) ([]byte, string, error) {
	if dir != "" && !filepath.IsAbs(name) {
		if abs, err := filepath.Abs(filepath.Join(dir, name)); err == nil {
			if data, path, err := r.files.Load(abs); err == nil {
				return data, path, nil
			}
		}
	}
	return r.files.Load(name)
}

func (r *resolver) fallback(material string, ch texture.Channel, path string, err error) *texture.Texture {
	logger.Warn("texture unavailable, using fallback",
		zap.String("material", material),
		zap.Stringer("channel", ch),
		zap.String("path", path),
		zap.Error(err))

	r.diagnostics = append(r.diagnostics, Diagnostic{
		Material: material,
		Channel:  ch,
		Path:     path,
		Err:      err,
	})
	return r.defaults.For(ch)
}
