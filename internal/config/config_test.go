package config

import (
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Title != "Pick Alpha" {
		t.Errorf("expected title 'Pick Alpha', got %q", cfg.Window.Title)
	}
	if cfg.Window.Width != 1024 || cfg.Window.Height != 768 {
		t.Errorf("expected 1024x768, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}

	if cfg.Picker.Tolerance != 0.3 {
		t.Errorf("expected tolerance 0.3, got %v", cfg.Picker.Tolerance)
	}
	if cfg.Picker.OutputDir != "." {
		t.Errorf("expected output dir '.', got %q", cfg.Picker.OutputDir)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  title: "Knockout"
  width: 1920
  height: 1080

picker:
  tolerance: 0.12
  output_dir: "/tmp/results"
  fragment_shader: "custom.frag"

logging:
  level: "debug"
  log_file: "pickalpha.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Title != "Knockout" || cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Picker.Tolerance != 0.12 {
		t.Errorf("expected tolerance 0.12, got %v", cfg.Picker.Tolerance)
	}
	if cfg.Picker.OutputDir != "/tmp/results" {
		t.Errorf("expected output dir /tmp/results, got %q", cfg.Picker.OutputDir)
	}
	if cfg.Picker.FragmentShader != "custom.frag" || cfg.Picker.VertexShader != "" {
		t.Errorf("shaders = %q, %q", cfg.Picker.VertexShader, cfg.Picker.FragmentShader)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "pickalpha.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("picker:\n  tolerance: 0.5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Picker.Tolerance != 0.5 {
		t.Errorf("expected tolerance 0.5, got %v", cfg.Picker.Tolerance)
	}
	// Untouched sections keep their defaults.
	if cfg.Picker.OutputDir != "." || cfg.Window.Width != 1024 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "pickalpha.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find pickalpha.yaml in current directory")
	}
}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	f.RegisterWindowFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return f
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "no flags",
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Picker.Tolerance != 0.3 {
					t.Errorf("tolerance changed without flag: %v", cfg.Picker.Tolerance)
				}
			},
		},
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "zero tolerance",
			args: []string{"-tolerance", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Picker.Tolerance != 0 {
					t.Errorf("expected tolerance 0, got %v", cfg.Picker.Tolerance)
				}
			},
		},
		{
			name: "output dir",
			args: []string{"-out", "results"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Picker.OutputDir != "results" {
					t.Errorf("expected output dir results, got %q", cfg.Picker.OutputDir)
				}
			},
		},
		{
			name: "width and height flags",
			args: []string{"-width", "2560", "-height", "1440"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			parseFlags(t, tt.args...).apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
picker:
  tolerance: 0.4
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(parseFlags(t, "-config", configPath, "-width", "1920"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height and tolerance from file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
	if cfg.Picker.Tolerance != 0.4 {
		t.Errorf("expected tolerance 0.4 from file, got %v", cfg.Picker.Tolerance)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("picker:\n  tolerance: 1.5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(parseFlags(t, "-config", configPath))
	if err == nil || !strings.Contains(err.Error(), "tolerance") {
		t.Errorf("expected tolerance error, got %v", err)
	}
}

func TestShaderSources(t *testing.T) {
	tmpDir := t.TempDir()
	fragPath := filepath.Join(tmpDir, "custom.frag")
	if err := os.WriteFile(fragPath, []byte("void main() {}\n"), 0644); err != nil {
		t.Fatalf("failed to write shader: %v", err)
	}

	cfg := Default()
	cfg.Picker.FragmentShader = fragPath
	vertex, fragment, err := cfg.ShaderSources()
	if err != nil {
		t.Fatalf("ShaderSources: %v", err)
	}
	if vertex != "" || fragment != "void main() {}\n" {
		t.Errorf("ShaderSources = %q, %q", vertex, fragment)
	}

	cfg.Picker.VertexShader = filepath.Join(tmpDir, "missing.vert")
	if _, _, err := cfg.ShaderSources(); err == nil {
		t.Error("expected error for missing shader file")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Picker.Tolerance = 0.75
	cfg.Window.Title = "Saved"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Picker.Tolerance != 0.75 || loaded.Window.Title != "Saved" {
		t.Errorf("reloaded = %+v", loaded)
	}
}

func TestSavedWindowKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Default().SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var doc map[string]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	var keys []string
	for k := range doc["window"] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if got := strings.Join(keys, ","); got != "height,title,width" {
		t.Errorf("window keys = %s, want height,title,width", got)
	}
}

func TestRegisterFlagsWithoutWindow(t *testing.T) {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	f := RegisterFlags(fs)
	for _, name := range []string{"config", "debug", "tolerance", "out"} {
		if fs.Lookup(name) == nil {
			t.Errorf("flag -%s not registered", name)
		}
	}
	for _, name := range []string{"width", "height"} {
		if fs.Lookup(name) != nil {
			t.Errorf("flag -%s registered without RegisterWindowFlags", name)
		}
	}

	f.RegisterWindowFlags(fs)
	if fs.Lookup("width") == nil || fs.Lookup("height") == nil {
		t.Error("RegisterWindowFlags did not add -width and -height")
	}
}
