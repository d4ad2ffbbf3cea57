package formats

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pbrMTL = `# exported PBR material
newmtl Metal
Ka 0.1 0.1 0.1
Kd 0.8 0.6 0.4
Ks 0.5
Ns 250
Ni 1.45
d 0.9
illum 2
Pr 0.35
Pm 1.0
map_Kd -s 1 1 1 textures/metal_albedo.png
map_Pm metal_metallic.png
map_Pr metal_roughness.png
map_Ka metal_ao.png
norm -bm 0.5 metal_normal.png
map_Bump metal_bump.png

newmtl Plain
Kd 1 1 1
Tr 0.25
`

func TestParseMTL_Fields(t *testing.T) {
	materials, warnings, err := ParseMTL(strings.NewReader(pbrMTL), "pbr.mtl", "/assets")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, materials, 2)

	m := materials[0]
	assert.Equal(t, "Metal", m.Name)
	assert.Equal(t, [3]float32{0.8, 0.6, 0.4}, m.Diffuse)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, m.Specular, "single-value Ks fills all channels")
	assert.Equal(t, float32(250), m.Shininess)
	assert.Equal(t, float32(1.45), m.IOR)
	assert.Equal(t, float32(0.9), m.Dissolve)
	assert.Equal(t, 2, m.Illum)
	assert.Equal(t, float32(0.35), m.Roughness)
	assert.Equal(t, float32(1), m.Metallic)

	texTests := []struct {
		name string
		got  string
		want string
	}{
		{"diffuse", m.DiffuseTex, filepath.FromSlash("textures/metal_albedo.png")},
		{"metallic", m.MetallicTex, "metal_metallic.png"},
		{"roughness", m.RoughnessTex, "metal_roughness.png"},
		{"ambient", m.AmbientTex, "metal_ao.png"},
		{"normal", m.NormalTex, "metal_normal.png"},
		{"bump", m.BumpTex, "metal_bump.png"},
	}
	for _, tt := range texTests {
		assert.Equal(t, tt.want, tt.got, "%s texture", tt.name)
	}
	assert.Equal(t, "/assets", m.Dir)

	plain := materials[1]
	assert.Equal(t, float32(0.75), plain.Dissolve, "Tr 0.25 gives dissolve 0.75")
	assert.Empty(t, plain.DiffuseTex)
	assert.Empty(t, plain.NormalTex)
	assert.Zero(t, plain.Metallic)
	assert.Zero(t, plain.Roughness)
}

func TestParseMTL_Defaults(t *testing.T) {
	materials, _, err := ParseMTL(strings.NewReader("newmtl empty\n"), "e.mtl", "")
	require.NoError(t, err)

	m := materials[0]
	assert.Equal(t, [3]float32{}, m.Diffuse)
	assert.Equal(t, float32(1), m.Dissolve)
	assert.Equal(t, float32(1), m.IOR)
}

func TestParseMTL_StatementBeforeNewmtl(t *testing.T) {
	materials, warnings, err := ParseMTL(strings.NewReader("Kd 1 1 1\nnewmtl a\n"), "w.mtl", "")
	require.NoError(t, err)

	assert.Len(t, materials, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Line)
}

func TestParseMTL_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"newmtl without name", "newmtl\n", ErrMissingOperand},
		{"bad color", "newmtl a\nKd red green blue\n", ErrMalformedNumber},
		{"missing scalar", "newmtl a\nNs\n", ErrMissingOperand},
		{"bad illum", "newmtl a\nillum two\n", ErrMalformedNumber},
		{"texture without file", "newmtl a\nmap_Kd -bm 0.5\n", ErrMissingOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseMTL(strings.NewReader(tt.src), "bad.mtl", "")
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "bad.mtl", perr.Path)
		})
	}
}

func TestParseOBJ_MalformedLibraryIsFatal(t *testing.T) {
	libs := map[string]string{"broken.mtl": "newmtl a\nKd x y z\n"}
	_, err := ParseOBJ(strings.NewReader("mtllib broken.mtl\n"), "m.obj", mapLoader(libs))
	assert.ErrorIs(t, err, ErrMalformedNumber)
}

func TestParseTextureName(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"wood.png"}, "wood.png"},
		{[]string{"-o", "0.5", "wood.png"}, "wood.png"},
		{[]string{"-s", "2", "2", "1", "-clamp", "on", "wood.png"}, "wood.png"},
		{[]string{"-mm", "0", "1", "-imfchan", "r", "rough.png"}, "rough.png"},
		{[]string{"my", "texture.png"}, "my texture.png"},
		{[]string{`textures\wood.png`}, filepath.FromSlash("textures/wood.png")},
		{[]string{"-t", "1", "2.png"}, "2.png"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got, err := parseTextureName(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
