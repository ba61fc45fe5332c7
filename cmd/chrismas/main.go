package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/RussGuo/Chrismas/internal/gesture"
	"github.com/RussGuo/Chrismas/internal/scene"
	"github.com/RussGuo/Chrismas/internal/server"
	"github.com/RussGuo/Chrismas/internal/session"
	"github.com/RussGuo/Chrismas/internal/store"
	"github.com/RussGuo/Chrismas/internal/tray"
)

const listenAddr = ":8080"

func main() {
	fmt.Println("Chrismas - Gesture-Controlled Holiday Tree")

	// Initialize the data directory and store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".chrismas")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "chrismas.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	mediaDir := filepath.Join(dataDir, "media")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		log.Fatalf("Failed to create media directory: %v", err)
	}

	// The gesture session drives the whole scene: capture, classification,
	// camera orbit, and frame publishing.
	sess := session.New(session.Config{})
	defer sess.Stop()

	hub := server.NewSceneHub()
	sess.OnFrame(hub.Publish)

	trayApp := tray.New()
	sess.OnModeChange(func(ev gesture.Event) {
		trayApp.SetMode(ev.To)
	})
	trayApp.OnToggle(sess.SetEnabled)
	trayApp.OnViewer(func() {
		openBrowser("http://localhost" + listenAddr)
	})

	if err := sess.Start(); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	if sess.Degraded() {
		log.Println("Running degraded: no camera or detector, tree stays autonomous")
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start server
	cfg := server.Config{
		StaticDir: webDir,
		MediaDir:  mediaDir,
		Store:     st,
		Camera:    sess.Camera(),
		Session:   sess,
		Layout:    scene.NewLayout(scene.DefaultParticleCount, 1),
		Hub:       hub,
	}

	srv := server.New(cfg)

	go func() {
		fmt.Printf("Starting server on %s\n", listenAddr)
		if err := srv.ListenAndServe(listenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	trayApp.OnQuit(func() {
		sess.Stop()
	})

	// Blocks until Quit is chosen from the tray menu
	trayApp.Run()
}

// openBrowser opens the given URL in the default browser.
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
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.chrismas/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".chrismas", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
