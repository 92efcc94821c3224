// Command statement-batch processes every statement in a Drive folder and
// prints the batch report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tatarana/ocr-engine/internal/classify"
	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/extract"
	"github.com/tatarana/ocr-engine/internal/llm"
	"github.com/tatarana/ocr-engine/internal/llm/gemini"
	"github.com/tatarana/ocr-engine/internal/normalize"
	"github.com/tatarana/ocr-engine/internal/pipeline"
	"github.com/tatarana/ocr-engine/internal/registry"
	"github.com/tatarana/ocr-engine/internal/storage"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		folder  = flag.String("folder", "", "Drive folder ID to process (defaults to GOOGLE_DRIVE_INPUT_FOLDER_ID)")
		workers = flag.Int("workers", 0, "worker pool size (defaults to PIPELINE_WORKERS)")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	folderID := *folder
	if folderID == "" {
		folderID = cfg.Drive.InputFolderID
	}
	if folderID == "" {
		printError("Error: --folder is required when GOOGLE_DRIVE_INPUT_FOLDER_ID is unset\n")
		os.Exit(1)
	}
	poolSize := *workers
	if poolSize <= 0 {
		poolSize = cfg.Pipeline.Workers
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

	proc := pipeline.NewProcessor(
		logger,
		store,
		classify.New(gen, logger),
		registry.New(),
		extract.New(gen, extract.RetryPolicy{
			MaxAttempts:    cfg.LLM.MaxAttempts,
			InitialBackoff: cfg.LLM.Backoff,
		}, logger),
		normalize.New(logger),
		cfg.Drive.OutputFolderID,
	)
	proc.MaxFileSizeMB = cfg.Pipeline.MaxFileSizeMB
	batch := pipeline.NewBatch(proc, poolSize, logger)

	report, err := batch.Run(ctx, folderID)
	if err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("failed to encode report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if len(report.FailedFiles) > 0 {
		os.Exit(2)
	}
}
