// Command ocrengined serves the statement OCR pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tatarana/ocr-engine/internal/classify"
	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/extract"
	"github.com/tatarana/ocr-engine/internal/llm"
	"github.com/tatarana/ocr-engine/internal/llm/gemini"
	"github.com/tatarana/ocr-engine/internal/normalize"
	"github.com/tatarana/ocr-engine/internal/pipeline"
	"github.com/tatarana/ocr-engine/internal/registry"
	"github.com/tatarana/ocr-engine/internal/server"
	"github.com/tatarana/ocr-engine/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewDriveStore(ctx, cfg.Drive.CredentialsPath, logger)
	if err != nil {
		logger.Error("failed to initialize drive storage", "error", err)
		os.Exit(1)
	}

	model, err := gemini.NewClient(ctx, gemini.Config{
		Model:       cfg.LLM.Model,
		ProjectID:   cfg.LLM.ProjectID,
		Region:      cfg.LLM.Region,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize model client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := model.Close(); cerr != nil {
			logger.Warn("model client close error", "error", cerr)
		}
	}()

	gen := llm.NewRateLimitedGenerator(model, cfg.LLM.RatePerSec, cfg.LLM.RateBurst, logger)

	reg := registry.New()
	proc := pipeline.NewProcessor(
		logger,
		store,
		classify.New(gen, logger),
		reg,
		extract.New(gen, extract.RetryPolicy{
			MaxAttempts:    cfg.LLM.MaxAttempts,
			InitialBackoff: cfg.LLM.Backoff,
		}, logger),
		normalize.New(logger),
		cfg.Drive.OutputFolderID,
	)
	proc.MaxFileSizeMB = cfg.Pipeline.MaxFileSizeMB
	batch := pipeline.NewBatch(proc, cfg.Pipeline.Workers, logger)

	srv := server.New(proc, batch, cfg, logger)
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting statement OCR engine", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown interrupted", "error", err)
	}
}
