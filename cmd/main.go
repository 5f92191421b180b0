package main

import (
	"PulmoScan/cache"
	"PulmoScan/config"
	"PulmoScan/database"
	"PulmoScan/routes"
	"PulmoScan/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	// Load configuration from the environment
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Artifact directories must exist before the first upload
	for _, dir := range []string{cfg.UploadDir, cfg.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	// Initialize the database
	db, err := database.InitDB(context.Background(), cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Cache: redis when configured, in-process otherwise
	store, err := buildCache(cfg)
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}

	// Token maker and login limiter are constructed here and injected;
	// no package-level state
	tokens, err := utils.NewTokenMaker(cfg.SymmetricKey)
	if err != nil {
		log.Fatalf("failed to initialize token maker: %v", err)
	}
	limiter := utils.NewLoginLimiter()

	handler := routes.SetupRoutes(store, cfg, db, tokens, limiter)

	srv := &http.Server{
		Addr:           cfg.Addr,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   120 * time.Second, // inference and report rendering block the request
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		log.Printf("Starting server on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %+v", err)
	}

	wg.Wait()
	log.Println("Server exited gracefully")
}

// loadConfig loads configuration from environment variables.
func loadConfig() (*config.AppConfig, error) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "medical_cdss.db"
	}

	key := os.Getenv("SYMMETRIC_KEY")
	if len(key) != utils.SymmetricKeySize {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be %d bytes long, current length: %d", utils.SymmetricKeySize, len(key))
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8930"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	reportDir := os.Getenv("REPORT_DIR")
	if reportDir == "" {
		reportDir = "reports"
	}

	return &config.AppConfig{
		Addr:         addr,
		DBPath:       dbPath,
		RedisAddress: os.Getenv("REDIS_URL"),
		SymmetricKey: []byte(key),
		UploadDir:    uploadDir,
		ReportDir:    reportDir,
		InferenceURL: os.Getenv("INFERENCE_URL"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     os.Getenv("SMTP_PORT"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
	}, nil
}

// buildCache picks the redis-backed store when REDIS_URL is set and falls
// back to the in-process store otherwise.
func buildCache(cfg *config.AppConfig) (cache.Store, error) {
	if !cfg.RedisEnabled() {
		log.Println("REDIS_URL not set; using in-process cache")
		return cache.NewMemory(), nil
	}

	client, err := database.NewRedisClient(database.LoadRedisConfig(cfg.RedisAddress))
	if err != nil {
		return nil, err
	}
	return cache.NewRedis(client)
}
