// Package main provides the entry point for the Slice Viewer application.
package main

import (
	"flag"
	"log"
	"time"

	internalapp "slice-viewer/internal/app"
	"slice-viewer/internal/config"
	"slice-viewer/internal/version"
	"slice-viewer/ui/mainwindow"
	"slice-viewer/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appID = "io.github.sliceviewer"

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	hotReload := flag.Bool("hot-reload", false, "offer a restart when the binary is rebuilt")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Slice Viewer v%s", version.String())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&internalapp.ViewerTheme{})

	state := internalapp.NewState(cfg)
	win, err := mainwindow.New(a, state, prefs.Load())
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}

	// Handle command line arguments
	if flag.NArg() > 0 {
		dir := flag.Arg(0)
		if err := win.LoadVolume(dir); err != nil {
			log.Printf("Failed to load volume %s: %v", dir, err)
		}
	}

	if *hotReload {
		setupHotReload(win)
	}

	win.ShowAndRun()
}

// setupHotReload offers a restart when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := internalapp.NewBinaryWatcher(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.Path(), reloader.Baseline().Format("15:04:05"))

	reloader.OnChange(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Println("Hot reload: saving preferences before restart...")
				win.SavePreferences()
				log.Println("Hot reload: restarting...")
				if err := internalapp.RestartProcess(reloader.Path()); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
