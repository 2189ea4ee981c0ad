// Package main provides the entry point for the Legend Matcher application.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"legend-matcher/internal/app"
	"legend-matcher/internal/config"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/library"
	"legend-matcher/internal/logging"
	"legend-matcher/internal/project"
	"legend-matcher/internal/version"
	"legend-matcher/ui/mainwindow"
	"legend-matcher/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Legend Matcher", zap.String("version", version.Version))

	cat := legend.SampleCatalog()
	if cfg.CatalogPath != "" {
		if cat, err = legend.LoadCatalog(cfg.CatalogPath); err != nil {
			logger.Fatal("Failed to load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
		}
	}

	libPath := cfg.LibraryPath
	if libPath == "" {
		if libPath, err = library.DefaultPath(); err != nil {
			logger.Fatal("No library location", zap.Error(err))
		}
	}
	lib, err := library.Load(libPath, logger)
	if err != nil {
		logger.Fatal("Failed to load symbol library", zap.String("path", libPath), zap.Error(err))
	}

	fyneApp := fyneapp.NewWithID("io.github.legend-matcher")
	fyneApp.Settings().SetTheme(&app.LegendTheme{})

	appState := app.NewState(cfg, cat, lib, libPath, logger)
	win := mainwindow.New(fyneApp, appState, prefs.Load(), logger)

	// Handle command line arguments
	if len(os.Args) > 1 && strings.HasSuffix(os.Args[1], project.Extension) {
		if err := appState.LoadDraft(os.Args[1]); err != nil {
			logger.Error("Failed to load draft", zap.String("path", os.Args[1]), zap.Error(err))
		}
	}

	setupCatalogWatch(appState, cfg.CatalogPath, logger)

	win.ShowAndRun()
}

// setupCatalogWatch reloads the catalog when its file is rewritten, e.g. by
// `legendtool recognize --out`. State serializes the reload against the UI.
func setupCatalogWatch(state *app.State, path string, logger *zap.Logger) {
	if path == "" {
		return
	}
	watcher := app.NewFileWatcher(path, 2*time.Second)
	if watcher == nil {
		logger.Warn("Catalog watch: unable to stat catalog", zap.String("path", path))
		return
	}

	logger.Info("Catalog watch: watching", zap.String("path", watcher.Path()))
	watcher.OnChange(func(p string) {
		logger.Info("Catalog watch: catalog changed", zap.String("path", p))
		if err := state.ReloadCatalog(p); err != nil {
			logger.Error("Catalog watch: reload failed", zap.Error(err))
		}
	})
	watcher.Start()
}
