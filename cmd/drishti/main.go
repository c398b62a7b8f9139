package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/server"
	"github.com/ayusman/drishti/internal/store"
	"github.com/ayusman/drishti/internal/tray"
)

func main() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".drishti")

	addr := flag.String("addr", "127.0.0.1:8080", "HTTP listen address")
	dbPath := flag.String("db", filepath.Join(dataDir, "drishti.db"), "SQLite database path")
	cameraID := flag.Int("camera", 0, "camera device ID")
	width := flag.Int("width", 640, "capture width")
	height := flag.Int("height", 480, "capture height")
	screenW := flag.Int("screen-width", 1920, "pointer target width in pixels")
	screenH := flag.Int("screen-height", 1080, "pointer target height in pixels")
	mirror := flag.Bool("mirror", true, "flip camera frames horizontally")
	pluginDir := flag.String("plugins", filepath.Join(dataDir, "plugins"), "event hook directory, empty to disable")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("Drishti - attention and fatigue monitor")

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	cfg := app.DefaultConfig()
	cfg.Store = st
	cfg.Camera.DeviceID = *cameraID
	cfg.Camera.Width, cfg.Camera.Height = *width, *height
	cfg.Camera.Mirror = *mirror
	cfg.Session.Screen = image.Pt(*screenW, *screenH)
	cfg.PluginDir = *pluginDir

	a := app.New(cfg)
	if err := a.LoadSettings(); err != nil {
		log.Printf("Ignoring saved settings: %v", err)
	}
	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	webDir := findWebDir(dataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Controller: a,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if *noTray {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		a.Stop()
		return
	}

	runTray(a, "http://"+*addr)
}

// runTray wires the tray menu to the application and blocks until Quit.
func runTray(a *app.App, url string) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnBreak(func() {
		if err := a.RecordBreak(time.Now()); err != nil {
			log.Printf("Failed to record break: %v", err)
		}
	})
	t.OnCalibrate(func() {
		if err := a.Calibrate(); err != nil {
			log.Printf("Calibration failed: %v", err)
		}
	})
	t.OnOpen(func() { openBrowser(url) })
	t.OnQuit(a.Stop)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			t.Update(a.Status())
		}
	}()

	t.Run()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Open %s in a browser: %v", url, err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
