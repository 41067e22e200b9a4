// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"slice-viewer/internal/app"
	"slice-viewer/internal/version"
	"slice-viewer/internal/viewer"
	"slice-viewer/pkg/geometry"
	"slice-viewer/ui/canvas"
	"slice-viewer/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle       = "Slice Viewer"
	reloadInterval = 2 * time.Second
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app      fyne.App
	state    *app.State
	prefs    *prefs.Prefs
	surfaces *canvas.Registry
	canvases []*canvas.SliceCanvas

	statusBar   *widget.Label
	frameSlider *widget.Slider
	frameRow    *fyne.Container

	crosshairsItem *fyne.MenuItem
	volumeWatcher  *app.Watcher
}

// New creates the main window with one pane per configured plane.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) (*MainWindow, error) {
	mw := &MainWindow{
		Window:   fyneApp.NewWindow(appTitle),
		app:      fyneApp,
		state:    state,
		prefs:    p,
		surfaces: canvas.NewRegistry(),
	}

	mw.restorePreferences()
	if err := mw.setupUI(); err != nil {
		return nil, err
	}
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.SetCloseIntercept(mw.onClose)

	return mw, nil
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() error {
	views, err := mw.state.OpenConfiguredPanes(mw.surfaces)
	if err != nil {
		return err
	}

	panes := make([]fyne.CanvasObject, 0, len(views))
	for _, view := range views {
		sc, ok := mw.surfaces.Get(view.Surface().ID())
		if !ok {
			return fmt.Errorf("pane %v has no canvas", view.Plane())
		}
		v := view
		sc.OnResize = func() {
			mw.state.Do(func() {
				if err := v.Refresh(); err != nil {
					log.Printf("resize %v pane: %v", v.Plane(), err)
				}
			})
		}
		mw.canvases = append(mw.canvases, sc)
		panes = append(panes, container.NewBorder(
			widget.NewLabel(view.Plane().Name), nil, nil, nil, sc))
	}

	mw.statusBar = widget.NewLabel("Open a volume to begin")

	mw.frameSlider = widget.NewSlider(0, 1)
	mw.frameSlider.Step = 1
	mw.frameSlider.OnChanged = func(f float64) {
		mw.state.Do(func() { mw.state.Viewer.SetFrame(int(f)) })
	}
	mw.frameRow = container.NewBorder(nil, nil, widget.NewLabel("Frame:"), nil, mw.frameSlider)
	mw.frameRow.Hide()

	bottom := container.NewVBox(mw.frameRow, container.NewPadded(mw.statusBar))
	grid := container.NewGridWithColumns(len(panes), panes...)

	content := container.NewBorder(
		mw.createToolbar(), // top
		bottom,             // bottom
		nil,                // left
		nil,                // right
		grid,               // center
	)
	mw.SetContent(content)

	if w, h := mw.prefs.FloatWithFallback(prefs.KeyWindowWidth, 0), mw.prefs.FloatWithFallback(prefs.KeyWindowHeight, 0); w > 0 && h > 0 {
		mw.Resize(fyne.NewSize(float32(w), float32(h)))
	}
	return nil
}

// createToolbar creates the toolbar with zoom and display controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), mw.onOpenVolume),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomOutIcon(), mw.onZoomOut),
		widget.NewToolbarAction(theme.ZoomInIcon(), mw.onZoomIn),
		widget.NewToolbarAction(theme.ZoomFitIcon(), mw.onResetView),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.VisibilityIcon(), mw.onToggleCrosshairs),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Volume...", mw.onOpenVolume),
		fyne.NewMenuItem("Reload Volume", mw.onReloadVolume),
	)

	mw.crosshairsItem = fyne.NewMenuItem("Cross-hairs", mw.onToggleCrosshairs)
	mw.crosshairsItem.Checked = mw.state.Crosshairs()

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Reset View", mw.onResetView),
		fyne.NewMenuItemSeparator(),
		mw.crosshairsItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Flip X", func() { mw.onFlip(geometry.AxisX) }),
		fyne.NewMenuItem("Flip Y", func() { mw.onFlip(geometry.AxisY) }),
		fyne.NewMenuItem("Flip Z", func() { mw.onFlip(geometry.AxisZ) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for viewer events.
func (mw *MainWindow) setupEventHandlers() {
	v := mw.state.Viewer

	v.On(viewer.EventCoordChanged, func(data interface{}) {
		if c, ok := data.(geometry.Coord); ok {
			mw.updateStatus(fmt.Sprintf("Cursor %v  Zoom %.1fx", c, v.ZoomFactor()))
		}
	})

	v.On(viewer.EventZoomChanged, func(data interface{}) {
		if f, ok := data.(float64); ok {
			mw.updateStatus(fmt.Sprintf("Cursor %v  Zoom %.1fx", v.CurrentCoord(), f))
		}
	})

	v.On(viewer.EventVolumeLoaded, func(data interface{}) {
		path, _ := data.(string)
		mw.SetTitle(appTitle + " - " + filepath.Base(path))
		mw.updateFrameSlider()
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// StatusText returns the status bar text.
func (mw *MainWindow) StatusText() string {
	return mw.statusBar.Text
}

// Canvases returns the pane canvases in layout order.
func (mw *MainWindow) Canvases() []*canvas.SliceCanvas {
	return mw.canvases
}

func (mw *MainWindow) updateFrameSlider() {
	vol := mw.state.Volume()
	if vol == nil || vol.Frames <= 1 {
		mw.frameRow.Hide()
		return
	}
	// set the fields directly so OnChanged does not redraw again
	mw.frameSlider.Max = float64(vol.Frames - 1)
	mw.frameSlider.Value = float64(mw.state.Viewer.Frame())
	mw.frameSlider.Refresh()
	mw.frameRow.Show()
}

// restorePreferences applies the settings saved by a previous session.
func (mw *MainWindow) restorePreferences() {
	mw.state.SetCrosshairs(mw.prefs.Bool(prefs.KeyCrosshairs, mw.state.Crosshairs()))
	if f := mw.prefs.FloatWithFallback(prefs.KeyZoomFactor, 0); f > 0 {
		mw.state.Viewer.SetZoomFactor(f)
	}
}

// SavePreferences writes the current session settings to disk.
func (mw *MainWindow) SavePreferences() {
	mw.prefs.SetBool(prefs.KeyCrosshairs, mw.state.Crosshairs())
	mw.prefs.SetFloat(prefs.KeyZoomFactor, mw.state.Viewer.ZoomFactor())
	if dir := mw.state.VolumePath(); dir != "" {
		mw.prefs.SetString(prefs.KeyLastVolumeDir, dir)
	}
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	}
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// LoadVolume loads a slice directory into every pane and watches it for
// changes on disk.
func (mw *MainWindow) LoadVolume(dir string) error {
	if err := mw.state.LoadVolume(dir); err != nil {
		return err
	}
	mw.watchVolume(dir)
	return nil
}

// watchVolume reloads the volume whenever files in dir change.
func (mw *MainWindow) watchVolume(dir string) {
	if mw.volumeWatcher != nil {
		mw.volumeWatcher.Stop()
	}
	w := app.NewWatcher(dir, reloadInterval)
	if w == nil {
		return
	}
	// runs on the watcher goroutine; State.SetVolume waits out pane events
	w.OnChange(func() {
		log.Printf("Volume directory %s changed, reloading", dir)
		if err := mw.state.LoadVolume(dir); err != nil {
			log.Printf("Reload failed: %v", err)
		}
		w.ResetBaseline()
		w.Start()
	})
	w.Start()
	mw.volumeWatcher = w
}

// lastDir returns the last opened volume directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastVolumeDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(filepath.Dir(path)))
	if err != nil {
		return nil
	}
	return listable
}

// Menu action handlers

func (mw *MainWindow) onOpenVolume() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		if err := mw.LoadVolume(uri.Path()); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onReloadVolume() {
	dir := mw.state.VolumePath()
	if dir == "" {
		mw.updateStatus("No volume loaded")
		return
	}
	if err := mw.state.LoadVolume(dir); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onZoomIn() {
	if panes := mw.state.Panes(); len(panes) > 0 {
		mw.state.Do(panes[0].ZoomIn)
	}
}

func (mw *MainWindow) onZoomOut() {
	if panes := mw.state.Panes(); len(panes) > 0 {
		mw.state.Do(panes[0].ZoomOut)
	}
}

func (mw *MainWindow) onResetView() {
	mw.state.Do(mw.state.Viewer.ResetView)
}

func (mw *MainWindow) onToggleCrosshairs() {
	on := !mw.state.Crosshairs()
	mw.state.SetCrosshairs(on)
	mw.crosshairsItem.Checked = on
	if menu := mw.MainMenu(); menu != nil {
		menu.Refresh()
	}
}

func (mw *MainWindow) onFlip(axis geometry.Axis) {
	if err := mw.state.FlipAxis(axis); err != nil {
		mw.updateStatus(fmt.Sprintf("Cannot flip %v: %v", axis, err))
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Orthogonal slice viewer for 3D and 4D image volumes.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

func (mw *MainWindow) onClose() {
	mw.SavePreferences()
	mw.Shutdown()
	mw.Close()
}

// Shutdown stops background work and tears down every pane.
func (mw *MainWindow) Shutdown() {
	if mw.volumeWatcher != nil {
		mw.volumeWatcher.Stop()
		mw.volumeWatcher = nil
	}
	mw.state.Close()
	for _, sc := range mw.canvases {
		mw.surfaces.Remove(sc.ID())
	}
}
