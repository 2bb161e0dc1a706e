package config

import "flag"

// Flags are the command-line overrides shared by the pick-alpha commands.
type Flags struct {
	Config    string
	Debug     bool
	Tolerance float64
	OutputDir string
	Width     int
	Height    int
}

// RegisterFlags defines the override flags on fs and returns where their
// values land once fs is parsed.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&f.Tolerance, "tolerance", -1, "Initial tolerance in [0,1]")
	fs.StringVar(&f.OutputDir, "out", "", "Directory exported results are written to")
	return f
}

// RegisterWindowFlags adds the window size overrides, for commands that
// open a visible window.
func (f *Flags) RegisterWindowFlags(fs *flag.FlagSet) {
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Tolerance >= 0 {
		cfg.Picker.Tolerance = float32(f.Tolerance)
	}
	if f.OutputDir != "" {
		cfg.Picker.OutputDir = f.OutputDir
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
}
