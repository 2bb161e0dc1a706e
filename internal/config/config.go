// Package config handles pick-alpha configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Picker  PickerConfig  `yaml:"picker"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds settings for the interactive window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// PickerConfig holds the widget settings.
type PickerConfig struct {
	// Tolerance is the initial tolerance, in [0,1].
	Tolerance float32 `yaml:"tolerance"`
	// OutputDir is where exported results are written.
	OutputDir string `yaml:"output_dir"`
	// VertexShader and FragmentShader replace the built-in highlight
	// shaders when set. They are file paths.
	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
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
			Title:  "Pick Alpha",
			Width:  1024,
			Height: 768,
		},
		Picker: PickerConfig{
			Tolerance: 0.3,
			OutputDir: ".",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
