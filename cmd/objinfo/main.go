// objinfo is a CLI utility for inspecting OBJ meshes the way the viewer
// ingests them.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/engine/mesh"
	"github.com/Faultbox/objmesh/internal/engine/texture"
	"github.com/Faultbox/objmesh/internal/logger"
)

var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(os.Stdout, cfg, config.Args()); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	command := args[0]
	switch command {
	case "help", "-h", "--help":
		printUsage(w)
		return nil
	case "info", "materials", "mats", "submeshes", "subs", "textures", "tex":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		return errUsage
	}
	if len(args) < 2 {
		return errUsage
	}

	opts := mesh.Options{
		FlipTextures: cfg.Loader.FlipTextures,
		SearchPaths:  cfg.Loader.SearchPaths,
	}
	m, warnings, err := mesh.NewBuilder(opts).Load(args[1])
	if err != nil {
		return err
	}

	switch command {
	case "info":
		cmdInfo(w, m, len(warnings))
	case "materials", "mats":
		cmdMaterials(w, m)
	case "submeshes", "subs":
		cmdSubmeshes(w, m)
	case "textures", "tex":
		cmdTextures(w, m)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `objinfo - OBJ mesh inspector

Usage:
  objinfo [flags] <command> <file.obj>

Commands:
  info       Show vertex, submesh and material counts
  materials  List resolved materials and their texture channels
  submeshes  List draw ranges in draw order
  textures   List decoded textures and fallbacks

Flags:
  -config <file>  Config file (default: ./objmesh.yaml)
  -debug          Log every resolved texture
  -no-flip        Keep decoded textures top-down

Examples:
  objinfo info models/sponza.obj
  objinfo -debug materials models/helmet.obj`)
}

func cmdInfo(w io.Writer, m *mesh.Mesh, warnings int) {
	fmt.Fprintf(w, "Mesh:        %s\n", m.Name)
	fmt.Fprintf(w, "Vertices:    %d\n", len(m.Vertices))
	fmt.Fprintf(w, "Triangles:   %d\n", len(m.Vertices)/3)
	fmt.Fprintf(w, "Submeshes:   %d\n", len(m.Submeshes))
	fmt.Fprintf(w, "Materials:   %d\n", len(m.Materials))
	fmt.Fprintf(w, "Bounds:      (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		m.Bounds.Min[0], m.Bounds.Min[1], m.Bounds.Min[2],
		m.Bounds.Max[0], m.Bounds.Max[1], m.Bounds.Max[2])
	fmt.Fprintf(w, "Warnings:    %d\n", warnings)
	fmt.Fprintf(w, "Fallbacks:   %d\n", len(m.Diagnostics))

	for _, d := range m.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

func cmdMaterials(w io.Writer, m *mesh.Mesh) {
	for i := range m.Materials {
		mat := &m.Materials[i]
		kind := "PBR"
		if mat.IsDiffuseOnly() {
			kind = "diffuse only"
		}
		fmt.Fprintf(w, "[%d] %s (%s)\n", i, mat.Name, kind)
		fmt.Fprintf(w, "    base color  (%.3f, %.3f, %.3f)\n", mat.BaseColorFactor[0], mat.BaseColorFactor[1], mat.BaseColorFactor[2])
		fmt.Fprintf(w, "    metallic    %.3f\n", mat.MetallicFactor)
		fmt.Fprintf(w, "    roughness   %.3f\n", mat.RoughnessFactor)
		fmt.Fprintf(w, "    ao          %.3f\n", mat.AOFactor)
		for _, ch := range texture.Channels {
			fmt.Fprintf(w, "    %-18s %s\n", ch.String()+":", describe(mat.Texture(ch)))
		}
	}
}

func cmdSubmeshes(w io.Writer, m *mesh.Mesh) {
	fmt.Fprintf(w, "%-4s %-24s %10s %10s\n", "#", "MATERIAL", "FIRST", "COUNT")
	for i, sm := range m.Submeshes {
		name := "(none)"
		if sm.HasMaterial() {
			name = m.Materials[sm.MaterialID].Name
		}
		fmt.Fprintf(w, "%-4d %-24s %10d %10d\n", i, name, sm.First, sm.Count)
	}
}

func cmdTextures(w io.Writer, m *mesh.Mesh) {
	for _, t := range m.Textures() {
		fmt.Fprintln(w, describe(t))
	}
}

func describe(t *texture.Texture) string {
	switch {
	case t == nil:
		return "(none)"
	case t.IsFallback():
		p := t.Image.Pix
		return fmt.Sprintf("(default #%02x%02x%02x%02x)", p[0], p[1], p[2], p[3])
	case t.Image == nil:
		return t.Path
	default:
		return fmt.Sprintf("%s %dx%d", t.Path, t.Image.Width, t.Image.Height)
	}
}
