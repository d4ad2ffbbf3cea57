package formats

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// MTLMaterial is a raw material record from an MTL library.
type MTLMaterial struct {
	Name string

	Ambient   [3]float32 // Ka
	Diffuse   [3]float32 // Kd
	Specular  [3]float32 // Ks
	Emission  [3]float32 // Ke
	Shininess float32    // Ns
	IOR       float32    // Ni
	Dissolve  float32    // d, or 1 - Tr
	Illum     int        // illum

	// PBR extension
	Roughness float32 // Pr
	Metallic  float32 // Pm

	// Texture file names as written in the library.
	DiffuseTex   string // map_Kd
	AmbientTex   string // map_Ka
	SpecularTex  string // map_Ks
	MetallicTex  string // map_Pm
	RoughnessTex string // map_Pr
	NormalTex    string // norm
	BumpTex      string // map_bump, bump

	// Dir is the directory of the library file; relative texture names are
	// resolved against it.
	Dir string
}

func newMTLMaterial(name, dir string) MTLMaterial {
	return MTLMaterial{
		Name:     name,
		IOR:      1,
		Dissolve: 1,
		Dir:      dir,
	}
}

// textureOptionArgs lists texture map options and how many operands they take.
// Options with a range accept up to max numeric operands.
var textureOptionArgs = map[string][2]int{
	"-blendu":     {1, 1},
	"-blendv":     {1, 1},
	"-bm":         {1, 1},
	"-boost":      {1, 1},
	"-cc":         {1, 1},
	"-clamp":      {1, 1},
	"-imfchan":    {1, 1},
	"-texres":     {1, 1},
	"-type":       {1, 1},
	"-colorspace": {1, 1},
	"-mm":         {2, 2},
	"-o":          {1, 3},
	"-s":          {1, 3},
	"-t":          {1, 3},
}

// ParseMTL parses an MTL library. name labels diagnostics and dir is recorded
// on every material.
func ParseMTL(r io.Reader, name, dir string) ([]MTLMaterial, []ParseWarning, error) {
	var (
		materials []MTLMaterial
		warnings  []ParseWarning
		cur       *MTLMaterial
	)

	sc := newLineScanner(r)
	for {
		fields, ok := sc.Next()
		if !ok {
			break
		}
		line := sc.Line()
		keyword, args := fields[0], fields[1:]

		fail := func(msg string, err error) error {
			return &ParseError{Path: name, Line: line, Msg: msg, Err: err}
		}
		warn := func(msg string) {
			warnings = append(warnings, ParseWarning{Path: name, Line: line, Msg: msg})
		}

		if keyword == "newmtl" {
			if len(args) == 0 {
				return nil, warnings, fail("newmtl without a name", ErrMissingOperand)
			}
			materials = append(materials, newMTLMaterial(strings.Join(args, " "), dir))
			cur = &materials[len(materials)-1]
			continue
		}
		if cur == nil {
			warn(fmt.Sprintf("%q before any newmtl", keyword))
			continue
		}

		var err error
		switch keyword {
		case "Ka":
			cur.Ambient, err = parseColor(args)
		case "Kd":
			cur.Diffuse, err = parseColor(args)
		case "Ks":
			cur.Specular, err = parseColor(args)
		case "Ke":
			cur.Emission, err = parseColor(args)
		case "Ns":
			cur.Shininess, err = parseScalar(args)
		case "Ni":
			cur.IOR, err = parseScalar(args)
		case "Pr":
			cur.Roughness, err = parseScalar(args)
		case "Pm":
			cur.Metallic, err = parseScalar(args)
		case "d":
			if len(args) > 0 && args[0] == "-halo" {
				args = args[1:]
			}
			cur.Dissolve, err = parseScalar(args)
		case "Tr":
			var tr float32
			if tr, err = parseScalar(args); err == nil {
				cur.Dissolve = 1 - tr
			}
		case "illum":
			if len(args) == 0 {
				err = ErrMissingOperand
			} else if cur.Illum, err = strconv.Atoi(args[0]); err != nil {
				err = ErrMalformedNumber
			}
		case "map_Kd":
			cur.DiffuseTex, err = parseTextureName(args)
		case "map_Ka":
			cur.AmbientTex, err = parseTextureName(args)
		case "map_Ks":
			cur.SpecularTex, err = parseTextureName(args)
		case "map_Pm":
			cur.MetallicTex, err = parseTextureName(args)
		case "map_Pr":
			cur.RoughnessTex, err = parseTextureName(args)
		case "norm":
			cur.NormalTex, err = parseTextureName(args)
		case "map_bump", "map_Bump", "bump":
			cur.BumpTex, err = parseTextureName(args)
		default:
			// Unsupported statements (map_d, disp, refl, Tf, ...) are skipped.
		}
		if err != nil {
			return nil, warnings, fail(fmt.Sprintf("bad %s statement", keyword), err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, warnings, &ParseError{Path: name, Line: sc.line, Msg: "read failed", Err: err}
	}

	return materials, warnings, nil
}

// parseColor accepts "r g b" or a single value used for all three channels.
// Spectral and CIEXYZ forms are not supported.
func parseColor(args []string) ([3]float32, error) {
	v, err := parseFloats(args, 1, 3)
	if err != nil {
		return [3]float32{}, err
	}
	switch len(v) {
	case 3:
		return [3]float32{v[0], v[1], v[2]}, nil
	case 1:
		return [3]float32{v[0], v[0], v[0]}, nil
	default:
		return [3]float32{}, ErrMissingOperand
	}
}

func parseScalar(args []string) (float32, error) {
	v, err := parseFloats(args, 1, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// parseTextureName skips texture options and returns the remaining tokens as
// the file name, with backslash separators normalized.
func parseTextureName(args []string) (string, error) {
	i := 0
	for i < len(args) {
		spec, ok := textureOptionArgs[args[i]]
		if !ok {
			break
		}
		i++
		minArgs, maxArgs := spec[0], spec[1]
		if i+minArgs > len(args) {
			return "", ErrMissingOperand
		}
		i += minArgs
		for n := minArgs; n < maxArgs && i < len(args)-1 && isNumber(args[i]); n++ {
			i++
		}
	}
	if i >= len(args) {
		return "", ErrMissingOperand
	}

	name := strings.Join(args[i:], " ")
	return filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")), nil
}
