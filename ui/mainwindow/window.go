// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"legend-matcher/internal/app"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/matching"
	"legend-matcher/internal/project"
	"legend-matcher/internal/recognize/engine"
	"legend-matcher/internal/sheet"
	"legend-matcher/internal/version"
	"legend-matcher/internal/viewport"
	"legend-matcher/ui/canvas"
	"legend-matcher/ui/panels"
	"legend-matcher/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const appTitle = "Legend Matcher"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	logger    *zap.Logger
	canvas    *canvas.LegendCanvas
	sidePanel *panels.SidePanel
	split     *container.Split
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs, logger *zap.Logger) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		logger: logger,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.restorePreferences()

	win.SetCloseIntercept(func() {
		mw.SavePreferences()
		win.Close()
	})
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewLegendCanvas(mw.state)
	mw.canvas.OnHit(mw.onHit)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel(zoomText(1))

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,   // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		mw.canvas, // center
	)

	mw.split = container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	mw.split.SetOffset(mw.prefs.FloatWithFallback(prefs.KeySplitOffset, 0.25))

	content := container.NewBorder(
		nil, // top
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar)), // bottom
		nil,      // left
		nil,      // right
		mw.split, // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1280, 800))
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewButton("Fit", mw.canvas.FitToView),
		widget.NewButton("1:1", mw.canvas.ResetView),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Catalog...", mw.onOpenCatalog),
		fyne.NewMenuItem("Recognize Legend Image...", mw.onRecognize),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Draft...", mw.onOpenDraft),
		fyne.NewMenuItem("Save Draft", mw.onSaveDraft),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.SavePreferences()
			mw.app.Quit()
		}),
	)

	matchMenu := fyne.NewMenu("Match",
		fyne.NewMenuItem("Create Match", func() { mw.state.CreateMatch() }),
		fyne.NewMenuItem("Clear Selection", mw.state.ClearSelection),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Commit to Library", mw.onCommit),
		fyne.NewMenuItem("Reset All", mw.state.ResetAll),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to View", mw.canvas.FitToView),
		fyne.NewMenuItem("Actual Size", mw.canvas.ResetView),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, matchMenu, viewMenu, helpMenu))
}

// setupShortcuts binds Enter to create a match and Escape to clear the
// selection.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyReturn, fyne.KeyEnter:
			mw.state.CreateMatch()
		case fyne.KeyEscape:
			mw.state.ClearSelection()
		case fyne.KeyPlus, fyne.KeyEqual:
			mw.canvas.ZoomIn()
		case fyne.KeyMinus:
			mw.canvas.ZoomOut()
		}
	})
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDrawingChanged, func(data interface{}) {
		d, _ := data.(*legend.Drawing)
		if d == nil {
			mw.SetTitle(appTitle)
			return
		}
		mw.SetTitle(appTitle + " - " + d.Name)
		mw.prefs.SetString(prefs.KeyLastDrawing, d.ID)
		mw.updateStatus(fmt.Sprintf("Loaded %s: %d symbols, %d texts", d.Name, len(d.Symbols), len(d.Texts)))
	})

	mw.state.On(app.EventViewportChanged, func(data interface{}) {
		if vs, ok := data.(viewport.State); ok {
			mw.zoomLabel.SetText(zoomText(vs.Zoom))
		}
	})

	mw.state.On(app.EventVisibilityChanged, func(data interface{}) {
		if v, ok := data.(matching.Visibility); ok {
			mw.prefs.SetBool(prefs.KeyShowSymbols, v.ShowSymbols)
			mw.prefs.SetBool(prefs.KeyShowTexts, v.ShowTexts)
			mw.prefs.SetBool(prefs.KeyShowMatched, v.ShowMatched)
		}
	})

	mw.state.On(app.EventCommitted, func(data interface{}) {
		if n, ok := data.(int); ok {
			mw.updateStatus(fmt.Sprintf("Committed %d symbols to the library", n))
		}
	})

	mw.state.On(app.EventDraftSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Draft saved: " + path)
		}
	})

	mw.state.On(app.EventCatalogChanged, func(data interface{}) {
		if cat, ok := data.(*legend.Catalog); ok {
			mw.updateStatus(fmt.Sprintf("Catalog has %d drawings", len(cat.Drawings)))
		}
	})
}

// restorePreferences selects the last drawing and visibility flags.
func (mw *MainWindow) restorePreferences() {
	mw.state.SetVisibility(matching.Visibility{
		ShowSymbols: mw.prefs.Bool(prefs.KeyShowSymbols, true),
		ShowTexts:   mw.prefs.Bool(prefs.KeyShowTexts, true),
		ShowMatched: mw.prefs.Bool(prefs.KeyShowMatched, true),
	})

	id := mw.prefs.String(prefs.KeyLastDrawing)
	if id == "" {
		if ids := mw.state.Catalog().IDs(); len(ids) > 0 {
			id = ids[0]
		}
	}
	if id == "" {
		return
	}
	if err := mw.state.SelectDrawing(id); err != nil {
		mw.logger.Warn("Could not restore last drawing", zap.String("drawing", id), zap.Error(err))
	}
}

// SavePreferences writes window preferences to disk.
func (mw *MainWindow) SavePreferences() {
	mw.prefs.SetFloat(prefs.KeySplitOffset, mw.split.Offset)
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("Could not save preferences", zap.Error(err))
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onHit(hit matching.Hit) {
	d := mw.state.Drawing()
	if d == nil {
		return
	}
	switch hit.Kind {
	case matching.HitSymbol:
		if s, ok := d.Symbol(hit.ID); ok {
			mw.updateStatus(fmt.Sprintf("Symbol %s (%.0f%%)", s.ID, s.Confidence*100))
		}
	case matching.HitText:
		if t, ok := d.Text(hit.ID); ok {
			mw.updateStatus(fmt.Sprintf("Text %q (%.0f%%)", t.Text, t.Confidence*100))
		}
	default:
		mw.updateStatus("Selection cleared")
	}
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// openFile shows a file-open dialog filtered by extension.
func (mw *MainWindow) openFile(exts []string, onPath func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		onPath(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// Menu action handlers

func (mw *MainWindow) onOpenCatalog() {
	mw.openFile([]string{".json", ".yaml", ".yml"}, func(path string) {
		if err := mw.state.ReloadCatalog(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if ids := mw.state.Catalog().IDs(); mw.state.Drawing() == nil && len(ids) > 0 {
			if err := mw.state.SelectDrawing(ids[0]); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}
	})
}

func (mw *MainWindow) onRecognize() {
	mw.openFile([]string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}, func(path string) {
		if !sheet.IsSupported(path) {
			dialog.ShowError(fmt.Errorf("unsupported image format: %s", filepath.Ext(path)), mw.Window)
			return
		}

		progress := dialog.NewProgressInfinite("Recognizing", "Detecting symbols and labels...", mw.Window)
		progress.Show()

		// Recognition can take seconds. AddDrawing is serialized by State
		// and Fyne 2.5 widgets and dialogs may be used off the event loop.
		go func() {
			d, err := mw.recognize(path)
			progress.Hide()
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			if err := mw.state.AddDrawing(d); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}()
	})
}

// recognize runs recognition and stores the result next to the image.
func (mw *MainWindow) recognize(path string) (*legend.Drawing, error) {
	rec, err := engine.New(mw.state.Config.Recognition, mw.logger)
	if err != nil {
		return nil, err
	}
	defer rec.Close()

	d, err := rec.RecognizeFile(context.Background(), path)
	if err != nil {
		return nil, fmt.Errorf("recognition failed: %w", err)
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".legend.json"
	if err := legend.SaveDrawing(d, out); err != nil {
		mw.logger.Warn("Could not save recognized drawing", zap.String("path", out), zap.Error(err))
	}
	return d, nil
}

func (mw *MainWindow) onOpenDraft() {
	mw.openFile([]string{project.Extension}, func(path string) {
		if err := mw.state.LoadDraft(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	})
}

func (mw *MainWindow) onSaveDraft() {
	if _, err := mw.state.SaveDraft(""); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onCommit() {
	_, err := mw.state.Commit()
	switch {
	case errors.Is(err, matching.ErrNothingToCommit):
		dialog.ShowInformation("Nothing to Commit", "Create at least one symbol match first.", mw.Window)
	case err != nil:
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Pairs recognized legend symbols with their labels\n"+
			"and builds a reusable symbol library.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

func zoomText(zoom float64) string {
	return fmt.Sprintf("%.0f%%", zoom*100)
}
