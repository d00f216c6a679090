package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adnanlatif/webdesk/internal/api"
	"github.com/adnanlatif/webdesk/internal/auth"
	"github.com/adnanlatif/webdesk/internal/config"
	"github.com/adnanlatif/webdesk/internal/desktop"
	"github.com/adnanlatif/webdesk/internal/notepad"
	"github.com/adnanlatif/webdesk/internal/ratelimit"
	"github.com/adnanlatif/webdesk/internal/relay"
	"github.com/adnanlatif/webdesk/internal/session"
	"github.com/adnanlatif/webdesk/internal/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Starting webdesk...")

	cfg, err := config.Load(os.Getenv("WEBDESK_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("✓ Configuration loaded")

	// Record store
	recs, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	log.Printf("✓ Record store open at %s", cfg.DataDir)

	// Auth service and first-run seeding
	authSvc := auth.NewService(recs)
	authSvc.SeedDefaultUser(cfg.DefaultAdminUser, cfg.DefaultAdminPassword)
	log.Println("✓ Auth service initialized")

	// Session store and provider key cache
	keyCache := session.NewKeyCache(cfg.DataDir)
	sessions := session.NewStore(cfg.DataDir, keyCache)
	log.Println("✓ Session store initialized")

	// Credential relay for embedded guest frames
	hub := relay.NewHub(sessions, keyCache, &relay.StoreFetcher{Store: recs}, relay.DefaultPushDelay)
	log.Println("✓ Credential relay initialized")

	// Window manager and shell controller
	windows := desktop.NewManager(cfg.Viewport, cfg.TaskbarHeight)
	ctrl := desktop.NewController(windows, sessions, authSvc, hub, recs, cfg.MaxPrograms)
	ctrl.SeedIcons(cfg.SeedIcons())
	log.Printf("✓ Desktop controller initialized (%dx%d viewport, %d program windows max)",
		cfg.Viewport.Width, cfg.Viewport.Height, cfg.MaxPrograms)

	// Shared notepad with debounced autosave
	notes := notepad.NewService(recs, cfg.NotepadPassword, notepad.DefaultQuietPeriod)
	log.Println("✓ Notepad service initialized")

	// Login rate limiter (10 attempts/minute, burst of 5, per username)
	loginLimiter := ratelimit.NewLimiter(10, 5)
	log.Println("✓ Login rate limiter initialized (10 attempts/min per username)")

	// Setup HTTP handlers
	handler := api.NewHandler(ctrl, authSvc, sessions, notes, hub, recs)
	router := handler.SetupRoutes(loginLimiter, cfg.AssetsDir)
	log.Println("✓ HTTP routes configured")

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("🚀 Server starting on http://localhost%s", cfg.Addr)
		log.Printf("📍 API endpoints available at http://localhost%s/v1", cfg.Addr)
		log.Printf("🖥  Desktop shell assets served from %s", cfg.AssetsDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("\n⏳ Shutting down server gracefully...")

	// Any unflushed notepad edits go to disk before exit.
	notes.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
