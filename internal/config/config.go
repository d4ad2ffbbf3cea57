// Package config handles tool configuration loading and management.
package config

// Config holds all settings shared by the objmesh tools.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Loader  LoaderConfig  `yaml:"loader"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds viewer display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoaderConfig holds mesh ingestion settings.
type LoaderConfig struct {
	// FlipTextures flips decoded images vertically so row 0 is the bottom row,
	// which is what OBJ texture coordinates expect under OpenGL.
	FlipTextures bool `yaml:"flip_textures"`
	// SearchPaths are extra directories tried, after the material library's own
	// directory, when resolving relative texture file names.
	SearchPaths []string `yaml:"search_paths"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Loader: LoaderConfig{
			FlipTextures: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
