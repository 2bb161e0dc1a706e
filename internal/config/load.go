package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags. A nil
// flags value applies no overrides.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	var configPath string
	if flags != nil {
		configPath = flags.Config
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the widget cannot run with.
func (c *Config) Validate() error {
	if c.Picker.Tolerance < 0 || c.Picker.Tolerance > 1 {
		return fmt.Errorf("picker.tolerance %v outside [0,1]", c.Picker.Tolerance)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d invalid", c.Window.Width, c.Window.Height)
	}
	return nil
}

// ShaderSources reads the configured shader overrides. Unset paths yield
// empty strings, which keep the built-in source for that stage.
func (c *Config) ShaderSources() (vertex, fragment string, err error) {
	read := func(path string) (string, error) {
		if path == "" {
			return "", nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading shader %s: %w", path, err)
		}
		return string(data), nil
	}

	if vertex, err = read(c.Picker.VertexShader); err != nil {
		return "", "", err
	}
	if fragment, err = read(c.Picker.FragmentShader); err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./pickalpha.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "PickAlpha")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PickAlpha")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pickalpha")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pickalpha")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
