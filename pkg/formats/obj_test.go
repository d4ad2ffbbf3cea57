package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLoader serves material libraries from memory.
func mapLoader(libs map[string]string) LibraryLoader {
	return func(name string) ([]byte, string, error) {
		data, ok := libs[name]
		if !ok {
			return nil, "", os.ErrNotExist
		}
		return []byte(data), "/lib", nil
	}
}

func parseString(t *testing.T, src string, libs map[string]string) *OBJ {
	t.Helper()
	obj, err := ParseOBJ(strings.NewReader(src), "test.obj", mapLoader(libs))
	require.NoError(t, err)
	return obj
}

const quadOBJ = `# two triangles
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4/4/1
`

func TestParseOBJ_Attributes(t *testing.T) {
	obj := parseString(t, quadOBJ, nil)

	assert.Equal(t, 4, obj.PositionCount())
	assert.Equal(t, 4, obj.TexCoordCount())
	assert.Equal(t, 1, obj.NormalCount())
	require.Len(t, obj.Faces, 2)

	assert.Equal(t, [3]OBJIndex{{0, 0, 0}, {2, 2, 0}, {3, 3, 0}}, obj.Faces[1].Corners)
	for i, f := range obj.Faces {
		assert.Equal(t, NoMaterial, f.MaterialID, "face %d", i)
	}
	assert.Empty(t, obj.Warnings)
}

func TestParseOBJ_CornerForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0.5 0.5
vn 0 0 1
f 1 2 3
f 1/1 2/1 3/1
f 1//1 2//1 3//1
f 1/1/1 2/1/1 3/1/1
`
	obj := parseString(t, src, nil)

	tests := []struct {
		name string
		want OBJIndex
	}{
		{"position only", OBJIndex{0, NoIndex, NoIndex}},
		{"position/texcoord", OBJIndex{0, 0, NoIndex}},
		{"position//normal", OBJIndex{0, NoIndex, 0}},
		{"position/texcoord/normal", OBJIndex{0, 0, 0}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, obj.Faces[i].Corners[0])
		})
	}
}

func facePositions(f OBJFace) [3]int {
	return [3]int{f.Corners[0].Position, f.Corners[1].Position, f.Corners[2].Position}
}

func TestParseOBJ_NegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
v 5 5 5
f -4 -1 -2
`
	obj := parseString(t, src, nil)

	assert.Equal(t, [3]int{0, 1, 2}, facePositions(obj.Faces[0]))
	assert.Equal(t, [3]int{0, 3, 2}, facePositions(obj.Faces[1]), "relative to the vertices declared so far")
}

func TestParseOBJ_Triangulation(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantFaces int
	}{
		{
			name:      "quad",
			src:       "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n",
			wantFaces: 2,
		},
		{
			name:      "convex hexagon",
			src:       "v 2 0 0\nv 1 1.7 0\nv -1 1.7 0\nv -2 0 0\nv -1 -1.7 0\nv 1 -1.7 0\nf 1 2 3 4 5 6\n",
			wantFaces: 4,
		},
		{
			name: "concave L shape",
			src: "v 0 0 0\nv 2 0 0\nv 2 1 0\nv 1 1 0\nv 1 2 0\nv 0 2 0\n" +
				"f 1 2 3 4 5 6\n",
			wantFaces: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := parseString(t, tt.src, nil)
			assert.Len(t, obj.Faces, tt.wantFaces)
		})
	}
}

func TestParseOBJ_ConcaveEarClipStaysInside(t *testing.T) {
	// L shape; a naive fan from corner 0 would emit triangle (0,3,4) that
	// covers area outside the polygon. Ear clipping never uses the reflex
	// corner 3 as an ear tip.
	src := "v 0 0 0\nv 2 0 0\nv 2 1 0\nv 1 1 0\nv 1 2 0\nv 0 2 0\nf 1 2 3 4 5 6\n"
	obj := parseString(t, src, nil)

	var total float64
	for _, f := range obj.Faces {
		var p [3][2]float64
		for i, c := range f.Corners {
			p[i] = [2]float64{float64(obj.Positions[c.Position*3]), float64(obj.Positions[c.Position*3+1])}
		}
		area := cross2(p[0], p[1], p[2]) / 2
		assert.Positive(t, area, "triangle %+v keeps the winding", f.Corners)
		total += area
	}
	assert.InDelta(t, 3, total, 1e-3, "triangles cover the polygon exactly")
}

func TestParseOBJ_ConcaveQuad(t *testing.T) {
	// Dart with its reflex vertex at v4.
	const dart = "v 0 0 0\nv 2 1 0\nv 0 2 0\nv 0.5 1 0\n"
	fanSplit := [][3]int{{0, 1, 2}, {0, 2, 3}}
	otherSplit := [][3]int{{1, 2, 3}, {1, 3, 0}}

	tests := []struct {
		name string
		src  string
		face [4]int
		want [][3]int
	}{
		{"convex", "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\n", [4]int{1, 2, 3, 4}, fanSplit},
		{"reflex first", dart, [4]int{4, 1, 2, 3}, fanSplit},
		{"reflex second", dart, [4]int{3, 4, 1, 2}, otherSplit},
		{"reflex third", dart, [4]int{2, 3, 4, 1}, fanSplit},
		{"reflex fourth", dart, [4]int{1, 2, 3, 4}, otherSplit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src + fmt.Sprintf("f %d %d %d %d\n", tt.face[0], tt.face[1], tt.face[2], tt.face[3])
			obj := parseString(t, src, nil)
			require.Len(t, obj.Faces, 2)

			for i, tri := range tt.want {
				want := [3]int{tt.face[tri[0]] - 1, tt.face[tri[1]] - 1, tt.face[tri[2]] - 1}
				assert.Equal(t, want, facePositions(obj.Faces[i]), "triangle %d", i)
			}
		})
	}
}

func TestParseOBJ_ByteOrderMark(t *testing.T) {
	libs := map[string]string{"m.mtl": "\ufeffnewmtl red\nKd 1 0 0\n"}
	src := "\ufeffv 0 0 0\nv 1 0 0\nv 0 1 0\nmtllib m.mtl\nusemtl red\nf 1 2 3\n"
	obj := parseString(t, src, libs)

	assert.Equal(t, 3, obj.PositionCount())
	require.Len(t, obj.Faces, 1)
	assert.Equal(t, 0, obj.Faces[0].MaterialID)
	require.Len(t, obj.Materials, 1)
	assert.Equal(t, "red", obj.Materials[0].Name)
	assert.Empty(t, obj.Warnings)
}

func TestParseOBJ_MissingPositionFallsBackToFan(t *testing.T) {
	src := "vt 0 0\nf /1 /1 /1 /1 /1\n"
	obj := parseString(t, src, nil)

	require.Len(t, obj.Faces, 3)
	for _, f := range obj.Faces {
		assert.Equal(t, [3]int{NoIndex, NoIndex, NoIndex}, facePositions(f))
	}
	assert.NotEmpty(t, obj.Warnings, "corners without a position are reported")
}

func TestParseOBJ_Materials(t *testing.T) {
	libs := map[string]string{
		"scene.mtl": `newmtl red
Kd 1 0 0
newmtl blue
Kd 0 0 1
map_Kd blue.png
`,
	}
	src := `mtllib scene.mtl
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
usemtl blue
f 1 2 3
usemtl red
f 1 2 3
usemtl missing
f 1 2 3
usemtl missing
f 1 2 3
`
	obj := parseString(t, src, libs)

	require.Len(t, obj.Materials, 2)
	assert.Equal(t, "red", obj.Materials[0].Name, "materials are indexed in declaration order")
	assert.Equal(t, "blue", obj.Materials[1].Name)
	assert.Equal(t, "/lib", obj.Materials[1].Dir)

	wantIDs := []int{NoMaterial, 1, 0, NoMaterial, NoMaterial}
	for i, want := range wantIDs {
		assert.Equal(t, want, obj.Faces[i].MaterialID, "face %d", i)
	}

	require.Len(t, obj.Warnings, 1, "one warning per unknown material name")
	assert.Equal(t, 10, obj.Warnings[0].Line)
	assert.Equal(t, []string{"scene.mtl"}, obj.MaterialLibs)
}

func TestParseOBJ_MaterialLibraryFallbackAndMissing(t *testing.T) {
	libs := map[string]string{"b.mtl": "newmtl only\n"}

	obj := parseString(t, "mtllib a.mtl b.mtl\n", libs)
	assert.Equal(t, []string{"b.mtl"}, obj.MaterialLibs)
	assert.Len(t, obj.Materials, 1)

	obj = parseString(t, "mtllib gone.mtl\nv 0 0 0\n", libs)
	require.Len(t, obj.Warnings, 1)
	assert.Contains(t, obj.Warnings[0].Msg, "gone.mtl")
}

func TestParseOBJ_DuplicateMaterialKeepsFirst(t *testing.T) {
	libs := map[string]string{
		"a.mtl": "newmtl m\nKd 1 1 1\n",
		"b.mtl": "newmtl m\nKd 0 0 0\n",
	}
	obj := parseString(t, "mtllib a.mtl\nmtllib b.mtl\n", libs)

	require.Len(t, obj.Materials, 1)
	assert.Equal(t, [3]float32{1, 1, 1}, obj.Materials[0].Diffuse, "first definition wins")
	assert.Len(t, obj.Warnings, 1)
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantErr  error
		wantLine int
	}{
		{"bad float", "v 0 x 0\n", ErrMalformedNumber, 1},
		{"short vertex", "v 0 0\n", ErrMissingOperand, 1},
		{"zero index", "v 0 0 0\nf 0 1 1\n", ErrInvalidIndex, 2},
		{"index past end", "v 0 0 0\nf 1 1 2\n", ErrIndexOutOfRange, 2},
		{"negative past start", "v 0 0 0\n\nf 1 1 -2\n", ErrIndexOutOfRange, 3},
		{"two corners", "v 0 0 0\nf 1 1\n", ErrDegenerateFace, 2},
		{"four slashes", "v 0 0 0\nf 1/1/1/1 1 1\n", ErrMalformedCorner, 2},
		{"non numeric index", "v 0 0 0\nf a 1 1\n", ErrMalformedNumber, 2},
		{"texcoord out of range", "v 0 0 0\nf 1/1 1/1 1/1\n", ErrIndexOutOfRange, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src), "bad.obj", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantLine, perr.Line)
			assert.Contains(t, err.Error(), "bad.obj", "error names the asset")
		})
	}
}

func TestParseOBJ_LineContinuationAndComments(t *testing.T) {
	src := "v 0 0 0 # origin\nv 1 0 0\nv 0 1 \\\n 0\nf 1 2 \\\n3\n"
	obj := parseString(t, src, nil)

	assert.Equal(t, 3, obj.PositionCount())
	assert.Len(t, obj.Faces, 1)
}

func TestParseOBJ_IgnoredStatements(t *testing.T) {
	src := "o cube\ng side\ns 1\nv 0 0 0 1\nv 1 0 0\nv 0 1 0\nvt 0.5\nl 1 2\np 1\nf 1/1 2/1 3/1\n"
	obj := parseString(t, src, nil)

	require.Len(t, obj.Faces, 1)
	assert.Equal(t, []float32{0.5, 0}, obj.TexCoords, "vt without v defaults v to 0")
}

func TestParseOBJFile(t *testing.T) {
	dir := t.TempDir()
	matDir := filepath.Join(dir, "materials")
	require.NoError(t, os.Mkdir(matDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(matDir, "m.mtl"), []byte("newmtl m\nmap_Kd tex/m.png\n"), 0644))

	objPath := filepath.Join(dir, "mesh.obj")
	src := "mtllib materials/m.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl m\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(objPath, []byte(src), 0644))

	obj, err := ParseOBJFile(objPath, "")
	require.NoError(t, err)
	require.Len(t, obj.Materials, 1)
	assert.Equal(t, matDir, obj.Materials[0].Dir)
	assert.Equal(t, 0, obj.Faces[0].MaterialID)
}

func TestParseOBJFile_Missing(t *testing.T) {
	obj, err := ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj"), "")
	assert.Nil(t, obj)
	assert.ErrorIs(t, err, ErrOpenFailed)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.True(t, strings.HasSuffix(perr.Path, "missing.obj"), "error path names the file, got %s", perr.Path)
}

func TestParseWarning_String(t *testing.T) {
	tests := []struct {
		w    ParseWarning
		want string
	}{
		{ParseWarning{Path: "a.obj", Line: 3, Msg: "oops"}, "a.obj:3: oops"},
		{ParseWarning{Path: "a.obj", Msg: "oops"}, "a.obj: oops"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.w.String())
	}
}
