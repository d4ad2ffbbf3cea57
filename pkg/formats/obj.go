// Package formats provides parsers for the Wavefront OBJ mesh format and its
// MTL material library companion.
package formats

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NoIndex marks an attribute a face corner does not reference.
const NoIndex = -1

// NoMaterial marks a face without a material assignment.
const NoMaterial = -1

// OBJIndex holds the zero-based attribute indices of one face corner.
type OBJIndex struct {
	Position int // Index into OBJ.Positions triples, or NoIndex
	TexCoord int // Index into OBJ.TexCoords pairs, or NoIndex
	Normal   int // Index into OBJ.Normals triples, or NoIndex
}

// OBJFace is a triangle produced by the parser.
type OBJFace struct {
	MaterialID int // Index into OBJ.Materials, or NoMaterial
	Corners    [3]OBJIndex
}

// OBJ represents a parsed, triangulated OBJ file.
type OBJ struct {
	Name         string         // Source path or label
	Positions    []float32      // x, y, z per vertex
	Normals      []float32      // x, y, z per normal
	TexCoords    []float32      // u, v per texture coordinate
	Faces        []OBJFace      // Triangles in file order
	Materials    []MTLMaterial  // Materials from all loaded libraries, in declaration order
	MaterialLibs []string       // Library files that were loaded
	Warnings     []ParseWarning // Non-fatal diagnostics
}

// PositionCount returns the number of position triples.
func (o *OBJ) PositionCount() int { return len(o.Positions) / 3 }

// NormalCount returns the number of normal triples.
func (o *OBJ) NormalCount() int { return len(o.Normals) / 3 }

// TexCoordCount returns the number of texture coordinate pairs.
func (o *OBJ) TexCoordCount() int { return len(o.TexCoords) / 2 }

// LibraryLoader fetches a material library by the name used in an mtllib
// statement. It returns the file contents and the directory the library was
// found in, which later anchors its relative texture names.
type LibraryLoader func(name string) (data []byte, dir string, err error)

// DirLibraryLoader returns a LibraryLoader reading libraries from dir.
func DirLibraryLoader(dir string) LibraryLoader {
	return func(name string) ([]byte, string, error) {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, filepath.FromSlash(name))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Dir(path), nil
	}
}

// ParseOBJFile parses the OBJ file at path. Material libraries are looked up in
// searchDir, which defaults to the directory of path.
func ParseOBJFile(path, searchDir string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: "cannot open mesh file", Err: fmt.Errorf("%w: %v", ErrOpenFailed, err)}
	}
	defer f.Close()

	if searchDir == "" {
		searchDir = filepath.Dir(path)
	}
	return ParseOBJ(f, path, DirLibraryLoader(searchDir))
}

// ParseOBJ parses OBJ data from r. name labels diagnostics. libs may be nil, in
// which case mtllib statements only produce warnings.
func ParseOBJ(r io.Reader, name string, libs LibraryLoader) (*OBJ, error) {
	p := &objParser{
		obj:         &OBJ{Name: name},
		libs:        libs,
		matIndex:    make(map[string]int),
		curMaterial: NoMaterial,
		warnedNames: make(map[string]bool),
	}

	sc := newLineScanner(r)
	for {
		fields, ok := sc.Next()
		if !ok {
			break
		}
		p.line = sc.Line()
		if err := p.statement(fields[0], fields[1:]); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Path: name, Line: sc.line, Msg: "read failed", Err: err}
	}

	return p.obj, nil
}

type objParser struct {
	obj         *OBJ
	libs        LibraryLoader
	matIndex    map[string]int
	curMaterial int
	line        int
	warnedNames map[string]bool
	corners     []OBJIndex
}

func (p *objParser) statement(keyword string, args []string) error {
	switch keyword {
	case "v":
		// Trailing w or vertex color components are ignored.
		v, err := parseFloats(args, 3, 3)
		if err != nil {
			return p.fail("bad vertex position", err)
		}
		p.obj.Positions = append(p.obj.Positions, v...)
	case "vn":
		v, err := parseFloats(args, 3, 3)
		if err != nil {
			return p.fail("bad vertex normal", err)
		}
		p.obj.Normals = append(p.obj.Normals, v...)
	case "vt":
		v, err := parseFloats(args, 1, 2)
		if err != nil {
			return p.fail("bad texture coordinate", err)
		}
		if len(v) == 1 {
			v = append(v, 0)
		}
		p.obj.TexCoords = append(p.obj.TexCoords, v...)
	case "f":
		return p.face(args)
	case "usemtl":
		p.useMaterial(args)
	case "mtllib":
		return p.materialLibrary(args)
	default:
		// Groups, objects, smoothing groups, lines, points and free-form
		// geometry carry nothing the mesh builder consumes.
	}
	return nil
}

func (p *objParser) face(args []string) error {
	if len(args) < 3 {
		return p.fail(fmt.Sprintf("face with %d corners", len(args)), ErrDegenerateFace)
	}

	p.corners = p.corners[:0]
	for _, tok := range args {
		c, err := p.corner(tok)
		if err != nil {
			return err
		}
		p.corners = append(p.corners, c)
	}

	for _, tri := range triangulate(p.corners, p.obj.Positions) {
		p.obj.Faces = append(p.obj.Faces, OBJFace{
			MaterialID: p.curMaterial,
			Corners:    [3]OBJIndex{p.corners[tri[0]], p.corners[tri[1]], p.corners[tri[2]]},
		})
	}
	return nil
}

// corner parses "v", "v/t", "v//n" or "v/t/n".
func (p *objParser) corner(tok string) (OBJIndex, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return OBJIndex{}, p.fail(fmt.Sprintf("corner %q", tok), ErrMalformedCorner)
	}

	c := OBJIndex{Position: NoIndex, TexCoord: NoIndex, Normal: NoIndex}
	var err error

	if parts[0] == "" {
		p.warn(fmt.Sprintf("corner %q has no position index", tok))
	} else if c.Position, err = p.resolveIndex(parts[0], p.obj.PositionCount()); err != nil {
		return OBJIndex{}, p.fail(fmt.Sprintf("position index in %q", tok), err)
	}

	if len(parts) > 1 && parts[1] != "" {
		if c.TexCoord, err = p.resolveIndex(parts[1], p.obj.TexCoordCount()); err != nil {
			return OBJIndex{}, p.fail(fmt.Sprintf("texcoord index in %q", tok), err)
		}
	}

	if len(parts) > 2 && parts[2] != "" {
		if c.Normal, err = p.resolveIndex(parts[2], p.obj.NormalCount()); err != nil {
			return OBJIndex{}, p.fail(fmt.Sprintf("normal index in %q", tok), err)
		}
	}

	return c, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index into a
// zero-based index checked against the attributes declared so far.
func (p *objParser) resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return NoIndex, ErrMalformedNumber
	}
	if n == 0 {
		return NoIndex, ErrInvalidIndex
	}

	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if idx < 0 || idx >= count {
		return NoIndex, fmt.Errorf("%w: %d with %d declared", ErrIndexOutOfRange, n, count)
	}
	return idx, nil
}

func (p *objParser) useMaterial(args []string) {
	if len(args) == 0 {
		p.warn("usemtl without a material name")
		p.curMaterial = NoMaterial
		return
	}

	name := strings.Join(args, " ")
	idx, ok := p.matIndex[name]
	if !ok {
		if !p.warnedNames[name] {
			p.warnedNames[name] = true
			p.warn(fmt.Sprintf("material %q not found in any loaded library", name))
		}
		p.curMaterial = NoMaterial
		return
	}
	p.curMaterial = idx
}

// materialLibrary loads the first library among args that can be read.
func (p *objParser) materialLibrary(args []string) error {
	if len(args) == 0 {
		p.warn("mtllib without a file name")
		return nil
	}
	if p.libs == nil {
		p.warn(fmt.Sprintf("no library loader for %s", strings.Join(args, " ")))
		return nil
	}

	for _, name := range args {
		data, dir, err := p.libs(name)
		if err != nil {
			continue
		}

		materials, warnings, err := ParseMTL(bytes.NewReader(data), name, dir)
		if err != nil {
			return err
		}
		p.obj.Warnings = append(p.obj.Warnings, warnings...)
		p.obj.MaterialLibs = append(p.obj.MaterialLibs, name)

		for _, m := range materials {
			if _, dup := p.matIndex[m.Name]; dup {
				p.warn(fmt.Sprintf("material %q defined more than once, keeping the first", m.Name))
				continue
			}
			p.matIndex[m.Name] = len(p.obj.Materials)
			p.obj.Materials = append(p.obj.Materials, m)
		}
		return nil
	}

	p.warn(fmt.Sprintf("%v: %s", ErrMaterialNotFound, strings.Join(args, " ")))
	return nil
}

func (p *objParser) fail(msg string, err error) error {
	return &ParseError{Path: p.obj.Name, Line: p.line, Msg: msg, Err: err}
}

func (p *objParser) warn(msg string) {
	p.obj.Warnings = append(p.obj.Warnings, ParseWarning{Path: p.obj.Name, Line: p.line, Msg: msg})
}
