// Package main is the entry point for the OBJ mesh viewer.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/logger"
)

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

	logger.Sugar.Debugf("Config: %+v", cfg)

	path, err := meshPath(config.Args())
	if err != nil {
		if err != dialog.ErrCancelled {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		fmt.Fprintln(os.Stderr, "Usage: objview [flags] [file.obj]")
		logger.Sync()
		os.Exit(1)
	}

	v, err := newViewer(cfg, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
	defer v.Close()

	logger.Info("viewing", zap.String("mesh", filepath.Base(path)))
	v.Run()
}

// meshPath returns the mesh named on the command line, or asks for one with a
// native file dialog.
func meshPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return dialog.File().
			Filter("Wavefront OBJ", "obj").
			Filter("All Files", "*").
			Title("Open Mesh").
			Load()
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("expected one mesh file, got %d arguments", len(args))
	}
}
