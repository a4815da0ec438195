package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"garmin-fitness-assistant/internal/advisor"
	"garmin-fitness-assistant/internal/config"
	"garmin-fitness-assistant/internal/export"
	"garmin-fitness-assistant/internal/handlers"
	"garmin-fitness-assistant/internal/metrics"
	"garmin-fitness-assistant/internal/middleware"
	"garmin-fitness-assistant/internal/ollama"
	"garmin-fitness-assistant/internal/store"
)

func main() {
	// Define CLI flags
	ingestDir := flag.String("ingest-dir", "", "Ingest all Garmin export files from a directory and exit")
	ingestUser := flag.String("user", "", "User identifier for CLI ingestion")
	clearUser := flag.String("clear-user", "", "Delete all stored records for a user and exit")

	flag.Parse()

	// Check if any CLI command was requested
	if *ingestDir != "" || *clearUser != "" {
		runCLI(*ingestDir, *ingestUser, *clearUser)
		return
	}

	// Otherwise, start the server
	runServer()
}

func runCLI(ingestDir, user, clearUser string) {
	// Disable structured logging for CLI
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors
	})))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Open storage
	st, err := store.Open(cfg.StorageDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case clearUser != "":
		handleClearUser(st, clearUser)
	case ingestDir != "":
		if user == "" {
			fmt.Fprintln(os.Stderr, "Error: -user is required with -ingest-dir")
			os.Exit(1)
		}
		handleIngestDir(st, ingestDir, user)
	}
}

func handleClearUser(st *store.Store, user string) {
	if err := st.ClearUser(context.Background(), user); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to clear user data: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Cleared all records for user %s\n", user)
}

func handleIngestDir(st *store.Store, dir, user string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ingesting exports from %s for user %s\n\n", dir, user)

	var ingested, skippedFiles, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		kind, err := export.KindFromFilename(entry.Name())
		if err != nil {
			skippedFiles++
			continue
		}

		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: read failed: %v\n", entry.Name(), err)
			failed++
			continue
		}

		normalized, err := export.Normalize(&export.Bundle{Kind: kind, UserID: user, Payload: payload})
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", entry.Name(), err)
			failed++
			continue
		}

		result, err := st.Ingest(context.Background(), user, normalized.Records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: store failed: %v\n", entry.Name(), err)
			failed++
			continue
		}

		fmt.Printf("  %s (%s)\n", entry.Name(), kind)
		fmt.Printf("    inserted: %d, replaced: %d, skipped entries: %d\n",
			result.Inserted, result.Replaced, normalized.Skipped)
		ingested++
	}

	fmt.Printf("\n✓ Ingested %d file(s), skipped %d unrecognized file(s), %d failure(s)\n",
		ingested, skippedFiles, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func runServer() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting garmin-fitness-assistant server",
		"host", cfg.Host,
		"port", cfg.Port,
		"storage_dir", cfg.StorageDir,
		"llm_enabled", cfg.LLMEnabled,
		"log_level", cfg.LogLevel)

	// Open storage
	st, err := store.Open(cfg.StorageDir)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	logger.Info("Storage opened successfully", "dir", cfg.StorageDir)

	// Create LLM client when augmentation is enabled. The advisor falls
	// back to rule-based output whenever generation fails.
	var generator advisor.TextGenerator
	if cfg.LLMEnabled {
		generator = ollama.NewClient(cfg.LLMEndpoint, cfg.LLMModel, cfg.LLMTimeout, logger)
		logger.Info("LLM augmentation enabled",
			"endpoint", cfg.LLMEndpoint,
			"model", cfg.LLMModel)
	}

	adv := advisor.New(st, generator)

	// Create handlers
	uploadHandler := handlers.NewUploadHandler(st)
	analyzeHandler := handlers.NewAnalyzeHandler(st)
	recommendHandler := handlers.NewRecommendHandler(adv)
	dataHandler := handlers.NewDataHandler(st)

	// Set up HTTP routes
	mux := http.NewServeMux()

	mux.Handle("/upload", middleware.WrapHandler(metrics.EndpointUpload, uploadHandler.HandleUpload))
	mux.Handle("/analyze/race-times", middleware.WrapHandler(metrics.EndpointRaceTimes, analyzeHandler.HandleRaceTimes))
	mux.Handle("/analyze/training-status", middleware.WrapHandler(metrics.EndpointTrainingStatus, analyzeHandler.HandleTrainingStatus))
	mux.Handle("/recommendations", middleware.WrapHandler(metrics.EndpointRecommend, recommendHandler.HandleRecommendations))
	mux.Handle("/training-plan", middleware.WrapHandler(metrics.EndpointTrainingPlan, recommendHandler.HandleTrainingPlan))
	mux.Handle("/data/list", middleware.WrapHandler(metrics.EndpointDataList, dataHandler.HandleDataList))

	// Health check endpoint
	mux.Handle("/health", middleware.WrapHandler(metrics.EndpointHealth, func(w http.ResponseWriter, r *http.Request) {
		if err := st.Health(); err != nil {
			http.Error(w, "Storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second, // Uploads can carry several export files
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start metrics server if enabled
	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())

		metricsAddr := fmt.Sprintf("%s:%d", cfg.MetricsHost, cfg.MetricsPort)
		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: metricsMux,
		}

		go func() {
			logger.Info("Metrics server listening", "addr", metricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Start HTTP server in background
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully...")

	// Shutdown HTTP servers with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", "error", err)
		}
	}

	logger.Info("Server stopped")
}
