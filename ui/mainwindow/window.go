// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"shape-annotator/internal/annotation"
	"shape-annotator/internal/app"
	bgimage "shape-annotator/internal/image"
	"shape-annotator/internal/ocr"
	"shape-annotator/internal/project"
	"shape-annotator/internal/protocol"
	"shape-annotator/internal/version"
	"shape-annotator/pkg/geometry"
	"shape-annotator/ui/canvas"
	"shape-annotator/ui/dialogs"
	"shape-annotator/ui/prefs"
)

const (
	sessionExt   = ".json"
	autosaveKey  = "autosave.json"
	watchPeriod  = 2 * time.Second
	defaultTitle = version.Name
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs

	canvas      *canvas.AnnotationCanvas
	statusBar   *widget.Label
	modeButtons map[protocol.Mode]*widget.Button

	docPath    string
	background *bgimage.Background
	autosave   project.KV
	watcher    *app.FileWatcher
	ocr        *ocr.Engine

	keepEmptyItem *fyne.MenuItem
	ocrItem       *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, session *app.Session, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(defaultTitle)

	mw := &MainWindow{
		Window:      win,
		app:         fyneApp,
		session:     session,
		prefs:       p,
		modeButtons: make(map[protocol.Mode]*widget.Button),
	}

	if kv, err := project.NewDirKV(filepath.Join(filepath.Dir(p.Path()), "sessions")); err != nil {
		log.Printf("autosave disabled: %v", err)
	} else {
		mw.autosave = kv
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	session.SetLabelPolicy(p.LabelPolicy())
	if p.Bool(prefs.KeyOCREnabled, false) {
		mw.setOCR(true)
	}

	win.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, 1024)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, 768)),
	))
	win.SetCloseIntercept(mw.onClose)

	session.Render()
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.prefs.Theme())
	mw.session.SetRenderer(mw.canvas)

	mw.canvas.OnClick(func(p geometry.Point2D) {
		if err := mw.session.Click(p); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	})
	mw.canvas.OnPointerMove(mw.session.PointerMove)
	mw.canvas.OnPointerLeave(mw.session.PointerLeave)

	mw.statusBar = widget.NewLabel("Ready")

	content := container.NewBorder(
		mw.createToolbar(),                // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		mw.canvas,                         // center
	)

	mw.SetContent(content)
}

// createToolbar creates the mode selector.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	for _, m := range []protocol.Mode{protocol.ModeRectangle, protocol.ModeCircle, protocol.ModeSelect} {
		m := m
		mw.modeButtons[m] = widget.NewButton(modeTitle(m), func() {
			mw.session.SetMode(m)
		})
	}
	deleteBtn := widget.NewButton("Delete", mw.onDeleteHovered)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		mw.modeButtons[protocol.ModeRectangle],
		mw.modeButtons[protocol.ModeCircle],
		mw.modeButtons[protocol.ModeSelect],
		widget.NewSeparator(),
		deleteBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Session", mw.onNewSession),
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Open Session...", mw.onOpenSession),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Session", mw.onSaveSession),
		fyne.NewMenuItem("Save Session As...", mw.onSaveSessionAs),
	)

	mw.keepEmptyItem = fyne.NewMenuItem("Keep Unlabeled Shapes", mw.onToggleKeepEmpty)
	mw.keepEmptyItem.Checked = mw.session.LabelPolicy() == app.KeepEmpty

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Delete Hovered", mw.onDeleteHovered),
		fyne.NewMenuItem("Cancel Drawing", mw.session.CancelDraft),
		fyne.NewMenuItemSeparator(),
		mw.keepEmptyItem,
	)

	mw.ocrItem = fyne.NewMenuItem("Suggest Labels from Image", func() {
		mw.setOCR(mw.ocr == nil)
	})
	toolsMenu := fyne.NewMenu("Tools", mw.ocrItem)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventLabelRequested, func(data interface{}) {
		if req, ok := data.(app.LabelRequest); ok {
			mw.showLabelDialog(req)
		}
	})

	mw.session.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(protocol.Mode); ok {
			mw.updateModeButtons(m)
			mw.updateStatus(modeHint(m))
		}
	})

	mw.session.On(app.EventHoverChanged, func(data interface{}) {
		id, _ := data.(string)
		if id == "" {
			return
		}
		for _, a := range mw.session.Annotations() {
			if a.ID == id {
				mw.updateStatus(describe(a) + "  (click to relabel, Delete to remove)")
				return
			}
		}
	})

	mw.session.On(app.EventAnnotationsChanged, func(data interface{}) {
		if n, ok := data.(int); ok {
			mw.updateStatus(fmt.Sprintf("%d annotation(s)", n))
		}
		mw.saveAutosave()
	})

	mw.session.On(app.EventModified, func(data interface{}) {
		mw.updateTitle()
	})
}

func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.session.CancelDraft()
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDeleteHovered()
		case fyne.KeyR:
			mw.session.SetMode(protocol.ModeRectangle)
		case fyne.KeyC:
			mw.session.SetMode(protocol.ModeCircle)
		case fyne.KeyS:
			mw.session.SetMode(protocol.ModeSelect)
		}
	})
}

// OpenSession loads a saved session and its background image.
func (mw *MainWindow) OpenSession(path string) error {
	doc, err := project.LoadFile(path)
	if err != nil {
		return err
	}
	if bgPath := doc.BackgroundPath(path); bgPath != "" {
		if err := mw.loadBackground(bgPath); err != nil {
			log.Printf("background %s: %v", bgPath, err)
		}
	}
	if err := mw.session.Load(doc.Annotations); err != nil {
		return err
	}
	mw.docPath = path
	mw.watch(path)
	mw.updateTitle()

	status := fmt.Sprintf("Loaded %d annotation(s) from %s", len(doc.Annotations), filepath.Base(path))
	if doc.Dropped > 0 {
		status += fmt.Sprintf(", skipped %d incomplete", doc.Dropped)
	}
	mw.updateStatus(status)
	return nil
}

// OpenImage sets the background image. Existing annotations are kept.
func (mw *MainWindow) OpenImage(path string) error {
	if err := mw.loadBackground(path); err != nil {
		return err
	}
	mw.updateStatus(fmt.Sprintf("Image %s (%dx%d)", filepath.Base(path), mw.background.Width(), mw.background.Height()))
	return nil
}

// RestoreAutosave reloads the last autosaved session, if any.
func (mw *MainWindow) RestoreAutosave() {
	if mw.autosave == nil {
		return
	}
	doc, err := project.Load(mw.autosave, autosaveKey)
	if errors.Is(err, project.ErrNoDocument) {
		return
	}
	if err != nil {
		log.Printf("autosave: %v", err)
		return
	}
	if doc.Background != "" {
		if err := mw.loadBackground(doc.Background); err != nil {
			log.Printf("autosave background: %v", err)
		}
	}
	if err := mw.session.Load(doc.Annotations); err != nil {
		log.Printf("autosave: %v", err)
		return
	}
	mw.updateStatus(fmt.Sprintf("Restored %d annotation(s)", len(doc.Annotations)))
}

// SavePreferences stores window geometry and preferences to disk.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("saving preferences: %v", err)
	}
}

func (mw *MainWindow) showLabelDialog(req app.LabelRequest) {
	var onDelete func()
	if !req.New {
		onDelete = func() {
			if err := mw.session.DeletePending(); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}
	}
	dialogs.NewLabelDialog(req, mw.Window,
		func(label string) {
			if err := mw.session.ConfirmLabel(label); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		},
		mw.session.CancelLabel,
		onDelete,
	).Show()
}

func (mw *MainWindow) loadBackground(path string) error {
	bg, err := bgimage.Load(path)
	if err != nil {
		return err
	}
	mw.background = bg
	mw.canvas.SetBackground(bg.Image)
	mw.session.Render()
	return nil
}

func (mw *MainWindow) document(docPath string) *project.Document {
	doc := project.New()
	doc.Annotations = mw.session.Annotations()
	if mw.background != nil {
		if docPath != "" {
			doc.SetBackground(docPath, mw.background.Path)
		} else {
			doc.Background = mw.background.Path
		}
	}
	return doc
}

func (mw *MainWindow) saveAutosave() {
	if mw.autosave == nil {
		return
	}
	if err := project.Save(mw.autosave, autosaveKey, *mw.document("")); err != nil {
		log.Printf("autosave: %v", err)
	}
}

func (mw *MainWindow) saveTo(path string) {
	if err := mw.document(path).SaveFile(path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.docPath = path
	mw.session.SetModified(false)
	mw.watch(path)
	mw.updateStatus("Saved " + filepath.Base(path))
}

// watch follows the session file for changes made outside the application.
func (mw *MainWindow) watch(path string) {
	if mw.watcher != nil {
		mw.watcher.Stop()
		mw.watcher = nil
	}
	w := app.NewFileWatcher(path, watchPeriod)
	if w == nil {
		return
	}
	w.OnChange(func() {
		fyne.Do(func() {
			dialog.ShowConfirm("Session Changed",
				filepath.Base(path)+" was changed by another program.\nReload it?",
				func(reload bool) {
					if !reload {
						return
					}
					if err := mw.OpenSession(path); err != nil {
						dialog.ShowError(err, mw.Window)
					}
				}, mw.Window)
		})
	})
	w.Start()
	mw.watcher = w
}

func (mw *MainWindow) setOCR(enabled bool) {
	if !enabled {
		if mw.ocr != nil {
			mw.ocr.Close()
			mw.ocr = nil
		}
		mw.session.SetSuggester(nil)
		mw.prefs.SetBool(prefs.KeyOCREnabled, false)
		mw.setOCRChecked(false)
		return
	}

	engine, err := ocr.NewEngine(mw.prefs.StringWithFallback(prefs.KeyOCRLanguage, "eng"))
	if err != nil {
		dialog.ShowError(fmt.Errorf("label suggestions unavailable: %w", err), mw.Window)
		mw.setOCRChecked(false)
		return
	}
	engine.SetRestricted(mw.prefs.Bool(prefs.KeyOCRRestricted, false))
	mw.ocr = engine
	mw.session.SetSuggester(app.SuggesterFunc(func(a annotation.Annotation) (string, error) {
		if mw.background == nil {
			return "", nil
		}
		return engine.Suggest(mw.background.Image, a)
	}))
	mw.prefs.SetBool(prefs.KeyOCREnabled, true)
	mw.setOCRChecked(true)
}

func (mw *MainWindow) setOCRChecked(checked bool) {
	if mw.ocrItem == nil {
		return
	}
	mw.ocrItem.Checked = checked
	if menu := mw.MainMenu(); menu != nil {
		menu.Refresh()
	}
}

func (mw *MainWindow) updateModeButtons(active protocol.Mode) {
	for m, btn := range mw.modeButtons {
		if m == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func (mw *MainWindow) updateTitle() {
	title := defaultTitle
	if mw.docPath != "" {
		title += " - " + filepath.Base(mw.docPath)
	}
	if mw.session.Modified() {
		title += " *"
	}
	mw.SetTitle(title)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
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

// Menu action handlers

func (mw *MainWindow) onNewSession() {
	if err := mw.session.Load(nil); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if mw.watcher != nil {
		mw.watcher.Stop()
		mw.watcher = nil
	}
	mw.docPath = ""
	mw.background = nil
	mw.canvas.SetBackground(nil)
	mw.session.Render()
	mw.updateTitle()
	mw.updateStatus("New session")
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.OpenImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(bgimage.Extensions))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenSession() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.OpenSession(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{sessionExt}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveSession() {
	if mw.docPath == "" {
		mw.onSaveSessionAs()
		return
	}
	if mw.watcher != nil {
		mw.watcher.Stop()
	}
	mw.saveTo(mw.docPath)
}

func (mw *MainWindow) onSaveSessionAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != sessionExt {
			os.Remove(path)
			path += sessionExt
		}
		mw.saveLastDir(path)
		mw.saveTo(path)
	}, mw.Window)
	fd.SetFileName("annotations" + sessionExt)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onDeleteHovered() {
	if !mw.session.DeleteHovered() {
		mw.updateStatus("Hover over an annotation in Select mode to delete it")
	}
}

func (mw *MainWindow) onToggleKeepEmpty() {
	policy := app.KeepEmpty
	if mw.session.LabelPolicy() == app.KeepEmpty {
		policy = app.DiscardEmpty
	}
	mw.session.SetLabelPolicy(policy)
	mw.prefs.SetString(prefs.KeyLabelPolicy, policy.String())
	mw.keepEmptyItem.Checked = policy == app.KeepEmpty
	if menu := mw.MainMenu(); menu != nil {
		menu.Refresh()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.Name,
		fmt.Sprintf("%s\n\n"+
			"Draw labeled rectangles and circles over an image.\n"+
			"Two clicks per shape: anchor, then extent.",
			version.String()),
		mw.Window)
}

func (mw *MainWindow) onClose() {
	mw.SavePreferences()
	if mw.watcher != nil {
		mw.watcher.Stop()
	}
	if mw.ocr != nil {
		mw.ocr.Close()
	}
	if !mw.session.Modified() || mw.docPath == "" {
		mw.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"Save changes to "+filepath.Base(mw.docPath)+" before closing?",
		func(save bool) {
			if save {
				mw.saveTo(mw.docPath)
			}
			mw.Close()
		}, mw.Window)
}
