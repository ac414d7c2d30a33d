package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"file-portal/internal/server"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	addr := getenvDefault("FP_ADDR", ":3000")

	build := server.BuildInfo{
		Version: getenvDefault("FP_VERSION", "dev"),
		Commit:  getenvDefault("FP_COMMIT", "unknown"),
	}

	maxUpload, err := strconv.ParseInt(getenvDefault("FP_MAX_UPLOAD_BYTES", "0"), 10, 64)
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "bad FP_MAX_UPLOAD_BYTES", err)
		os.Exit(1)
	}

	sessionTTL, err := time.ParseDuration(getenvDefault("FP_SESSION_TTL", "15m"))
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "bad FP_SESSION_TTL", err)
		os.Exit(1)
	}

	cfg := server.Config{
		Addr:           addr,
		UploadDir:      getenvDefault("FP_UPLOAD_DIR", "public/uploads"),
		MaxUploadBytes: maxUpload,
		SessionTTL:     sessionTTL,
		AdminUser:      getenvDefault("FP_ADMIN_USER", "admin"),
		AdminPass:      getenvDefault("FP_ADMIN_PASS", "admin123"),
		Build:          build,
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "startup_failed", err)
		os.Exit(1)
	}

	// Sweep idle sessions in the background until shutdown.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	server.StartSessionCleanup(cleanupCtx, srv.Sessions(), server.CleanupConfig{
		Enabled:  true,
		Interval: time.Minute,
	})

	// Start the HTTP server in a background goroutine so we can listen
	// for OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s version=%s commit=%s",
			"starting", addr, build.Version, build.Commit)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		// Give in-flight requests 5 seconds to finish.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

// getenvDefault reads an environment variable and returns a default
// value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
