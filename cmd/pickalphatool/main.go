// pickalphatool is a headless CLI for the pick-alpha knockout.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/pickalpha/internal/config"
	"github.com/Faultbox/pickalpha/internal/engine/gfx"
	"github.com/Faultbox/pickalpha/internal/engine/texture"
	"github.com/Faultbox/pickalpha/internal/engine/window"
	"github.com/Faultbox/pickalpha/internal/export"
	"github.com/Faultbox/pickalpha/internal/logger"
	"github.com/Faultbox/pickalpha/internal/pickalpha"
	"github.com/Faultbox/pickalpha/internal/pickalpha/shaders"
	"github.com/Faultbox/pickalpha/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "pick":
		err = cmdPick(args)
	case "sample":
		err = cmdSample(args)
	case "info":
		err = cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pickalphatool - knock out a picked color from an image

Usage:
  pickalphatool <command> [options]

Commands:
  pick [options] <image>     Pick a color and export pick-alpha-result.png
  sample <image> <x> <y>     Print the exact color of one pixel
  info <image>               Show size, format and color statistics

Pick options:
  -x, -y       Pixel to pick the color from
  -color r,g,b Pick color as 0-255 channels instead of a pixel
  -tolerance   Tolerance in [0,1] (default from config, 0.3)
  -out         Output directory
  -gpu         Render with OpenGL in a hidden window instead of on the CPU
  -config      Config file
  -debug       Debug logging

Examples:
  pickalphatool pick -x 0 -y 0 -tolerance 0.1 logo.png
  pickalphatool pick -color 255,255,255 -out results scan.jpg
  pickalphatool sample logo.png 10 4`)
}

func cmdPick(args []string) error {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	x := fs.Int("x", -1, "Pixel x to pick")
	y := fs.Int("y", -1, "Pixel y to pick")
	colorArg := fs.String("color", "", "Pick color as r,g,b (0-255)")
	gpu := fs.Bool("gpu", false, "Render with OpenGL")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: pickalphatool pick [options] <image>")
	}
	if *colorArg == "" && (*x < 0 || *y < 0) {
		return fmt.Errorf("pick needs -x and -y or -color")
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if err := logger.InitStderr(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}

	img, format, err := texture.DecodeFile(fs.Arg(0))
	if err != nil {
		return err
	}
	logger.Debug("decoded", zap.String("path", fs.Arg(0)), zap.String("format", format))

	newDevice, closeDevice, err := deviceFactory(*gpu)
	if err != nil {
		return err
	}
	defer closeDevice()

	vertex, fragment, err := cfg.ShaderSources()
	if err != nil {
		return err
	}

	picker := pickalpha.New(pickalpha.NewOffscreenSurface(newDevice),
		pickalpha.WithLogger(logger.Named("picker")),
		pickalpha.WithTolerance(cfg.Picker.Tolerance),
		pickalpha.WithShaderSources(vertex, fragment),
		pickalpha.WithDownloader(export.DirDownloader{Dir: cfg.Picker.OutputDir}),
	)
	if err := picker.Initialize(); err != nil {
		return err
	}
	defer picker.Dispose()

	if err := picker.LoadImage(img); err != nil {
		return err
	}

	if *colorArg != "" {
		col, err := parseColor(*colorArg)
		if err != nil {
			return err
		}
		picker.SetPickColor(col)
	} else {
		b := img.Bounds()
		if *x >= b.Dx() || *y >= b.Dy() {
			return fmt.Errorf("pixel %d,%d outside %dx%d image", *x, *y, b.Dx(), b.Dy())
		}
		// Pixel centers map to themselves on a 1:1 surface.
		picker.PickAt(float64(*x)+0.5, float64(*y)+0.5)
	}

	location, err := picker.Export()
	if err != nil {
		return err
	}

	state := picker.State()
	fmt.Printf("Color:     %s\n", state.DisplayColor())
	fmt.Printf("Tolerance: %.3f\n", state.Tolerance)
	fmt.Printf("Output:    %s\n", location)
	return nil
}

// deviceFactory returns how contexts are created for the chosen backend and
// how to release what backs them.
func deviceFactory(gpu bool) (func(gfx.ContextAttributes) (gfx.Device, error), func(), error) {
	if !gpu {
		soft := func(gfx.ContextAttributes) (gfx.Device, error) {
			return shaders.NewSoftDevice(), nil
		}
		return soft, func() {}, nil
	}

	win, err := window.New(window.Config{
		Title:  "pickalphatool",
		Width:  1,
		Height: 1,
		Hidden: true,
	}, logger.Named("window"))
	if err != nil {
		return nil, nil, err
	}
	return win.Device, win.Close, nil
}

func parseColor(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("color %q: want r,g,b", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("color %q: %w", s, err)
		}
		ch[i] = uint8(v)
	}
	return math.RGB8(ch[0], ch[1], ch[2]), nil
}

func cmdSample(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: pickalphatool sample <image> <x> <y>")
	}
	x, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}

	img, _, err := texture.DecodeFile(args[0])
	if err != nil {
		return err
	}
	pixels := texture.SourcePixels(img)
	if !image.Pt(x, y).In(pixels.Bounds()) {
		return fmt.Errorf("pixel %d,%d outside %dx%d image", x, y, pixels.Bounds().Dx(), pixels.Bounds().Dy())
	}

	c := pixels.NRGBAAt(x, y)
	state := pickalpha.PickState{Color: math.RGB8(c.R, c.G, c.B)}
	fmt.Printf("%d,%d %s alpha %d\n", x, y, state.DisplayColor(), c.A)
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pickalphatool info <image>")
	}

	img, format, err := texture.DecodeFile(args[0])
	if err != nil {
		return err
	}
	pixels := texture.SourcePixels(img)
	b := pixels.Bounds()

	colors := make(map[[3]uint8]int)
	transparent := 0
	for i := 0; i < len(pixels.Pix); i += 4 {
		colors[[3]uint8{pixels.Pix[i], pixels.Pix[i+1], pixels.Pix[i+2]}]++
		if pixels.Pix[i+3] == 0 {
			transparent++
		}
	}

	var top [3]uint8
	topCount := -1
	for c, n := range colors {
		if n > topCount || (n == topCount && less(c, top)) {
			top, topCount = c, n
		}
	}

	fmt.Printf("File:        %s\n", filepath.Base(args[0]))
	fmt.Printf("Format:      %s\n", format)
	fmt.Printf("Size:        %dx%d\n", b.Dx(), b.Dy())
	fmt.Printf("Colors:      %d\n", len(colors))
	fmt.Printf("Transparent: %d\n", transparent)
	if topCount > 0 {
		state := pickalpha.PickState{Color: math.RGB8(top[0], top[1], top[2])}
		fmt.Printf("Most common: %s (%d px)\n", state.DisplayColor(), topCount)
	}
	return nil
}

func less(a, b [3]uint8) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
