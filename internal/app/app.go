// Package app runs the interactive pick-alpha window: an image view that
// picks a color on click, a tolerance slider and export.
package app

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/pickalpha/internal/config"
	"github.com/Faultbox/pickalpha/internal/engine/gfx"
	"github.com/Faultbox/pickalpha/internal/engine/texture"
	"github.com/Faultbox/pickalpha/internal/engine/ui"
	"github.com/Faultbox/pickalpha/internal/export"
	"github.com/Faultbox/pickalpha/internal/pickalpha"
)

const sidebarWidth = 260

// Backdrops shown behind knocked-out pixels.
var backdrops = []struct {
	name  string
	color imgui.Vec4
}{
	{"Dark", imgui.NewVec4(0.15, 0.15, 0.15, 1)},
	{"Light", imgui.NewVec4(0.85, 0.85, 0.85, 1)},
	{"Magenta", imgui.NewVec4(1, 0, 1, 1)},
}

// App is the interactive application state. All fields except the pending
// queues belong to the render thread.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	backend windowBackend
	view    *canvasView
	picker  *pickalpha.Controller

	imagePath string
	outputDir string
	tolerance float32
	lastPick  image.Point
	picked    bool
	backdrop  int
	status    string

	pendingImage  pending[string]
	pendingOutput pending[string]
}

// windowBackend is the part of ui.Backend the app drives.
type windowBackend interface {
	Run(renderFunc func())
	SetWindowTitle(title string)
	GetViewport() (posX, posY, width, height float32)
	Destroy()
}

func openBackend(title string, width, height int32) (windowBackend, error) {
	b, err := ui.NewBackend(title, width, height)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// New creates the window and initializes the picker on its context.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	return newApp(cfg, log, newCanvasView(), openBackend)
}

func newApp(cfg *config.Config, log *zap.Logger, view *canvasView,
	open func(title string, width, height int32) (windowBackend, error)) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		cfg:       cfg,
		log:       log,
		view:      view,
		outputDir: cfg.Picker.OutputDir,
		tolerance: cfg.Picker.Tolerance,
	}

	vertex, fragment, err := cfg.ShaderSources()
	if err != nil {
		return nil, err
	}

	a.backend, err = open(cfg.Window.Title, int32(cfg.Window.Width), int32(cfg.Window.Height))
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	a.picker = pickalpha.New(a.view,
		pickalpha.WithLogger(log.Named("picker")),
		pickalpha.WithTolerance(cfg.Picker.Tolerance),
		pickalpha.WithShaderSources(vertex, fragment),
		pickalpha.WithDownloader(export.DownloaderFunc(a.download)),
	)
	if err := a.picker.Initialize(); err != nil {
		a.backend.Destroy()
		var unavailable *gfx.ContextUnavailableError
		if errors.As(err, &unavailable) {
			dialog.Message("%s", "This system cannot provide the graphics context pick-alpha needs.").
				Title("Pick Alpha").Error()
		}
		return nil, fmt.Errorf("initializing picker: %w", err)
	}

	a.status = "Open an image to start"
	return a, nil
}

// download writes exports to the currently selected output directory.
func (a *App) download(name string, data []byte) (string, error) {
	return export.DirDownloader{Dir: a.outputDir}.Download(name, data)
}

// Open loads an image file into the picker.
func (a *App) Open(path string) error {
	img, format, err := texture.DecodeFile(path)
	if err != nil {
		return err
	}
	if err := a.picker.LoadImage(img); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	a.imagePath = path
	a.picked = false
	b := img.Bounds()
	a.status = fmt.Sprintf("%s: %dx%d %s", filepath.Base(path), b.Dx(), b.Dy(), format)
	a.backend.SetWindowTitle(fmt.Sprintf("%s - %s", a.cfg.Window.Title, filepath.Base(path)))
	a.log.Info("image opened", zap.String("path", path), zap.String("format", format))
	return nil
}

// Run blocks in the render loop until the window closes.
func (a *App) Run() {
	a.backend.Run(a.render)
}

// Close releases the picker's GPU resources.
func (a *App) Close() {
	if a.picker != nil {
		a.picker.Dispose()
	}
}

func (a *App) render() {
	if path, ok := a.pendingImage.take(); ok {
		if err := a.Open(path); err != nil {
			a.fail("open failed", err)
		}
	}
	if dir, ok := a.pendingOutput.take(); ok {
		a.outputDir = dir
		a.status = "Exports go to " + dir
	}

	a.handleShortcuts()
	a.renderMenuBar()

	x, y, w, h := a.backend.GetViewport()
	imgui.SetNextWindowPos(imgui.NewVec2(x, y))
	imgui.SetNextWindowSize(imgui.NewVec2(w, h))
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove | imgui.WindowFlagsNoCollapse
	if imgui.BeginV("##pickalpha", nil, flags) {
		imgui.BeginChildStrV("##sidebar", imgui.NewVec2(sidebarWidth, 0), imgui.ChildFlagsBorders, 0)
		a.renderSidebar()
		imgui.EndChild()

		imgui.SameLine()

		imgui.BeginChildStrV("##canvas", imgui.NewVec2(0, 0), imgui.ChildFlagsBorders, imgui.WindowFlagsHorizontalScrollbar)
		a.renderCanvas()
		imgui.EndChild()
	}
	imgui.End()
}

func (a *App) handleShortcuts() {
	if imgui.IsAnyItemActive() {
		return
	}
	for _, mod := range []imgui.KeyChord{imgui.KeyChord(imgui.ModCtrl), imgui.KeyChord(imgui.ModSuper)} {
		if imgui.IsKeyChordPressed(mod | imgui.KeyChord(imgui.KeyO)) {
			a.openImageDialog()
		}
		if imgui.IsKeyChordPressed(mod | imgui.KeyChord(imgui.KeyS)) {
			a.export()
		}
	}
}

func (a *App) renderMenuBar() {
	if !imgui.BeginMainMenuBar() {
		return
	}
	if imgui.BeginMenu("File") {
		if imgui.MenuItemBool("Open Image...") {
			a.openImageDialog()
		}
		if imgui.MenuItemBool("Export Result") {
			a.export()
		}
		imgui.Separator()
		if imgui.MenuItemBool("Output Folder...") {
			a.outputDirDialog()
		}
		imgui.EndMenu()
	}
	imgui.EndMainMenuBar()
}

func (a *App) renderSidebar() {
	state := a.picker.State()

	imgui.Text("Pick color")
	c := state.Color
	imgui.ColorButtonV("##swatch", imgui.NewVec4(c.X, c.Y, c.Z, 1), 0, imgui.NewVec2(48, 48))
	imgui.SameLine()
	imgui.Text(a.picker.DisplayColor())
	if a.picked {
		imgui.TextDisabled(fmt.Sprintf("from pixel %d, %d", a.lastPick.X, a.lastPick.Y))
	} else {
		imgui.TextDisabled("click the image to pick")
	}

	imgui.Spacing()
	imgui.Separator()
	imgui.Text("Tolerance")
	imgui.SetNextItemWidth(-1)
	if imgui.SliderFloatV("##tolerance", &a.tolerance, 0, 1, "%.2f", imgui.SliderFlagsNone) {
		a.picker.SetTolerance(a.tolerance)
	}

	imgui.Spacing()
	imgui.Text("Backdrop")
	for i, b := range backdrops {
		if i > 0 {
			imgui.SameLine()
		}
		if imgui.RadioButtonBool(b.name, a.backdrop == i) {
			a.backdrop = i
		}
	}

	imgui.Spacing()
	imgui.Separator()
	if imgui.ButtonV("Open image...", imgui.NewVec2(-1, 0)) {
		a.openImageDialog()
	}
	if imgui.ButtonV("Export", imgui.NewVec2(-1, 0)) {
		a.export()
	}
	if imgui.ButtonV("Output folder...", imgui.NewVec2(-1, 0)) {
		a.outputDirDialog()
	}
	imgui.TextDisabled(a.outputDir)

	imgui.Spacing()
	imgui.Separator()
	imgui.TextWrapped(a.status)
}

func (a *App) renderCanvas() {
	if !a.picker.State().HasImage {
		imgui.TextDisabled("No image loaded")
		return
	}

	width, height := a.view.BackingSize()
	size := ui.FitSize(width, height, imgui.ContentRegionAvail(), true)
	rect := ui.GLImage(a.picker.CanvasTexture(), size, backdrops[a.backdrop].color)
	a.view.place(rect)

	if imgui.IsItemClicked() {
		m := imgui.MousePos()
		if p, ok := a.picker.PickAt(float64(m.X), float64(m.Y)); ok {
			a.lastPick, a.picked = p, true
		}
	}
	if imgui.IsItemHovered() {
		m := imgui.MousePos()
		px, py := pickalpha.MapToPixel(rect, width, height, float64(m.X), float64(m.Y))
		imgui.SetTooltip(fmt.Sprintf("%d, %d", px, py))
	}
}

func (a *App) export() {
	if !a.picker.State().HasImage {
		a.status = "Nothing to export"
		return
	}
	location, err := a.picker.Export()
	if err != nil {
		a.fail("export failed", err)
		return
	}
	a.status = "Saved " + location
}

func (a *App) fail(msg string, err error) {
	a.log.Error(msg, zap.Error(err))
	a.status = fmt.Sprintf("%s: %v", msg, err)
}

// openImageDialog shows a native file dialog. SDL/Cocoa window operations
// must happen on the main thread, so the result is queued for render().
func (a *App) openImageDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("Images", texture.Extensions...).
			Filter("All Files", "*").
			Title("Open Image").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				a.log.Warn("file dialog error", zap.Error(err))
			}
			return
		}
		a.pendingImage.put(filename)
	}()
}

func (a *App) outputDirDialog() {
	go func() {
		dir, err := dialog.Directory().Title("Export Folder").Browse()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				a.log.Warn("folder dialog error", zap.Error(err))
			}
			return
		}
		a.pendingOutput.put(dir)
	}()
}
