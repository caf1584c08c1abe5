// Package main provides the entry point for the Shape Annotator application.
package main

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"shape-annotator/internal/app"
	bgimage "shape-annotator/internal/image"
	"shape-annotator/internal/version"
	"shape-annotator/ui/mainwindow"
	"shape-annotator/ui/prefs"
)

const appID = "io.github.shapeannotator"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s", version.String())

	level := slog.LevelInfo
	if os.Getenv("ANNOTATOR_DEBUG") != "" {
		level = slog.LevelDebug
	}
	app.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	appPrefs := prefs.Load()

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(app.NewAnnotatorTheme(appPrefs.Theme()))
	session := app.NewSession(app.WithLabelPolicy(appPrefs.LabelPolicy()))

	win := mainwindow.New(a, session, appPrefs)

	// Handle command line arguments
	if len(os.Args) > 1 {
		openArg(win, os.Args[1])
	} else {
		win.RestoreAutosave()
	}

	win.ShowAndRun()
}

// openArg opens either a session file or a background image.
func openArg(win *mainwindow.MainWindow, path string) {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = win.OpenSession(path)
	} else if bgimage.Supported(path) {
		err = win.OpenImage(path)
	} else {
		log.Printf("Ignoring %s: not a session or supported image", path)
		return
	}
	if err != nil {
		log.Printf("Failed to open %s: %v", path, err)
		dialog.ShowError(err, win.Window)
	}
}
