package mesh

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/objmesh/internal/engine/texture"
	"github.com/Faultbox/objmesh/pkg/formats"
)

func TestMaterial_ScalarsCopied(t *testing.T) {
	src := formats.MTLMaterial{
		Name:      "steel",
		Diffuse:   [3]float32{0.5, 0.25, 1},
		Metallic:  0.9,
		Roughness: 0.3,
	}

	m := build(t, &formats.OBJ{Materials: []formats.MTLMaterial{src}})
	mat := m.Materials[0]
	assert.Equal(t, "steel", mat.Name)
	assert.Equal(t, mgl32.Vec3{0.5, 0.25, 1}, mat.BaseColorFactor)
	assert.Equal(t, float32(0.9), mat.MetallicFactor)
	assert.Equal(t, float32(0.3), mat.RoughnessFactor)
	assert.Equal(t, float32(1), mat.AOFactor)
}

func TestMaterial_EmptyNamesUseFallbacks(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	m, err := b.Build(&formats.OBJ{Materials: materials("a", "b")}, "")
	require.NoError(t, err)

	for i := range m.Materials {
		mat := &m.Materials[i]
		for _, ch := range texture.Channels {
			assert.Same(t, b.Defaults().For(ch), mat.Texture(ch), "%s %s", mat.Name, ch)
		}
		assert.True(t, mat.IsDiffuseOnly())
	}
	assert.Empty(t, m.Diagnostics)
}

func TestMaterial_MissingTextureFallsBack(t *testing.T) {
	dir := t.TempDir()
	src := formats.MTLMaterial{Name: "ghost", DiffuseTex: "missing.png", NormalTex: "also_missing.png", Dir: dir}

	b := NewBuilder(DefaultOptions())
	m, err := b.Build(&formats.OBJ{Materials: []formats.MTLMaterial{src}}, dir)
	require.NoError(t, err)

	mat := m.Materials[0]
	assert.Same(t, b.Defaults().For(texture.BaseColor), mat.BaseColorTexture)
	assert.Same(t, b.Defaults().For(texture.Normal), mat.NormalTexture)
	assert.Equal(t, mgl32.Vec3{}, mat.BaseColorFactor, "a missing map does not raise its factor")

	require.Len(t, m.Diagnostics, 2)
	assert.Equal(t, "ghost", m.Diagnostics[0].Material)
	assert.Equal(t, texture.BaseColor, m.Diagnostics[0].Channel)
	assert.Error(t, m.Diagnostics[0].Err)
	assert.Equal(t, texture.Normal, m.Diagnostics[1].Channel)
	assert.Contains(t, m.Diagnostics[1].String(), "normal texture")
}

func TestMaterial_CorruptTextureFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("\x89PNG\r\n\x1a\ngarbage"), 0o644))
	src := formats.MTLMaterial{Name: "broken", DiffuseTex: "broken.png", AmbientTex: "broken.png", Dir: dir}

	b := NewBuilder(DefaultOptions())
	m, err := b.Build(&formats.OBJ{Materials: []formats.MTLMaterial{src}}, dir)
	require.NoError(t, err)

	assert.Same(t, b.Defaults().For(texture.BaseColor), m.Materials[0].BaseColorTexture)
	assert.Same(t, b.Defaults().For(texture.AmbientOcclusion), m.Materials[0].AOTexture)
	require.Len(t, m.Diagnostics, 2, "each affected channel is reported")
	assert.Equal(t, filepath.Join(dir, "broken.png"), m.Diagnostics[0].Path)
}

func TestMaterial_OversizedTextureFallsBack(t *testing.T) {
	// A TGA header claiming 60958x31255 pixels followed by a few stray bytes.
	data := []byte{
		0x0f, 0xac, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x1e, 0xee, 0x17, 0x7a, 0x20, 0x28,
	}
	data = append(data, make([]byte, 41)...)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wood.tga"), data, 0o644))
	src := formats.MTLMaterial{Name: "wood", DiffuseTex: "wood.tga", Dir: dir}

	b := NewBuilder(DefaultOptions())
	m, err := b.Build(&formats.OBJ{Materials: []formats.MTLMaterial{src}}, dir)
	require.NoError(t, err)

	assert.Same(t, b.Defaults().For(texture.BaseColor), m.Materials[0].BaseColorTexture)
	require.Len(t, m.Diagnostics, 1)
	assert.ErrorIs(t, m.Diagnostics[0].Err, texture.ErrImageTooLarge)
}

func TestMaterial_ResolvesAllChannels(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"albedo.png", "metal.png", "rough.png", "ao.png", "normal.png"} {
		writePNG(t, filepath.Join(dir, "tex", name), color.NRGBA{10, 20, 30, 255})
	}
	src := formats.MTLMaterial{
		Name:         "pbr",
		DiffuseTex:   filepath.Join("tex", "albedo.png"),
		MetallicTex:  filepath.Join("tex", "metal.png"),
		RoughnessTex: filepath.Join("tex", "rough.png"),
		AmbientTex:   filepath.Join("tex", "ao.png"),
		NormalTex:    filepath.Join("tex", "normal.png"),
		Dir:          dir,
	}

	m := build(t, &formats.OBJ{Materials: []formats.MTLMaterial{src}})
	mat := m.Materials[0]
	for _, ch := range texture.Channels {
		tex := mat.Texture(ch)
		require.NotNil(t, tex)
		assert.False(t, tex.IsFallback(), ch.String())
		require.NotNil(t, tex.Image)
		assert.Equal(t, 2, tex.Image.Width)
		assert.Equal(t, 4, tex.Image.Channels)
		assert.Equal(t, []byte{10, 20, 30, 255}, tex.Image.Pix[:4])
	}
	assert.Equal(t, filepath.Join(dir, "tex", "albedo.png"), mat.BaseColorTexture.Path)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, mat.BaseColorFactor, "unset factors leave maps unscaled")
	assert.Equal(t, float32(1), mat.MetallicFactor)
	assert.Equal(t, float32(1), mat.RoughnessFactor)
	assert.False(t, mat.IsDiffuseOnly())
	assert.Empty(t, m.Diagnostics)
}

func TestMaterial_SharedFileDecodedOnce(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "shared.png"), color.NRGBA{255, 0, 0, 255})
	mats := []formats.MTLMaterial{
		{Name: "a", DiffuseTex: "shared.png", Dir: dir},
		{Name: "b", DiffuseTex: "shared.png", RoughnessTex: "shared.png", Dir: dir},
	}

	m := build(t, &formats.OBJ{Materials: mats})
	a, b := m.Materials[0], m.Materials[1]
	assert.Same(t, a.BaseColorTexture, b.BaseColorTexture)
	assert.Same(t, b.BaseColorTexture, b.RoughnessTexture)
	assert.True(t, a.IsDiffuseOnly())
	assert.False(t, b.IsDiffuseOnly())
	assert.Len(t, m.Textures(), 1+4, "shared texture plus fallbacks of the unused channels")
}

func TestMaterial_AbsoluteTexturePath(t *testing.T) {
	elsewhere := t.TempDir()
	abs := filepath.Join(elsewhere, "abs.png")
	writePNG(t, abs, color.NRGBA{0, 255, 0, 255})

	src := formats.MTLMaterial{Name: "abs", DiffuseTex: abs, Dir: t.TempDir()}
	m := build(t, &formats.OBJ{Materials: []formats.MTLMaterial{src}})
	assert.Equal(t, abs, m.Materials[0].BaseColorTexture.Path)
}

func TestMaterial_BaseDirAndSearchPaths(t *testing.T) {
	libDir := t.TempDir()
	baseDir := t.TempDir()
	searchDir := t.TempDir()
	writePNG(t, filepath.Join(baseDir, "base.png"), color.NRGBA{1, 1, 1, 255})
	writePNG(t, filepath.Join(searchDir, "search.png"), color.NRGBA{2, 2, 2, 255})
	writePNG(t, filepath.Join(libDir, "dup.png"), color.NRGBA{3, 3, 3, 255})
	writePNG(t, filepath.Join(baseDir, "dup.png"), color.NRGBA{4, 4, 4, 255})

	src := formats.MTLMaterial{
		Name:        "multi",
		DiffuseTex:  "base.png",
		MetallicTex: "search.png",
		NormalTex:   "dup.png",
		Dir:         libDir,
	}

	opts := DefaultOptions()
	opts.SearchPaths = []string{searchDir}
	m, err := NewBuilder(opts).Build(&formats.OBJ{Materials: []formats.MTLMaterial{src}}, baseDir)
	require.NoError(t, err)

	mat := m.Materials[0]
	assert.Equal(t, filepath.Join(baseDir, "base.png"), mat.BaseColorTexture.Path)
	assert.Equal(t, filepath.Join(searchDir, "search.png"), mat.MetallicTexture.Path)
	assert.Equal(t, filepath.Join(libDir, "dup.png"), mat.NormalTexture.Path, "library directory wins")
	assert.Empty(t, m.Diagnostics)
}

func TestMaterial_MissingSearchPathIsSkipped(t *testing.T) {
	baseDir := t.TempDir()
	writePNG(t, filepath.Join(baseDir, "base.png"), color.NRGBA{1, 1, 1, 255})

	opts := DefaultOptions()
	opts.SearchPaths = []string{filepath.Join(baseDir, "does-not-exist")}
	src := formats.MTLMaterial{Name: "m", DiffuseTex: "base.png"}
	m, err := NewBuilder(opts).Build(&formats.OBJ{Materials: []formats.MTLMaterial{src}}, baseDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(baseDir, "base.png"), m.Materials[0].BaseColorTexture.Path)
	assert.Empty(t, m.Diagnostics)
}

func TestMaterial_TextureAccessor(t *testing.T) {
	var mat Material
	tex := texture.New("x.png", nil)
	for _, ch := range texture.Channels {
		mat.setTexture(ch, tex)
		assert.Same(t, tex, mat.Texture(ch))
	}
	assert.Nil(t, mat.Texture(texture.Channel(99)))
}
