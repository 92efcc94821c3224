package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/entity"
)

// Batch runs per-file pipelines over an input folder on a bounded worker
// pool. One file's failure never aborts the batch; only the folder listing
// itself is request-fatal.
type Batch struct {
	Proc    *Processor
	Workers int
	Logger  *slog.Logger
}

func NewBatch(proc *Processor, workers int, logger *slog.Logger) *Batch {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{Proc: proc, Workers: workers, Logger: logger}
}

// statementCandidate reports whether a listed file could be a statement,
// judged by its reported media type or, failing that, its extension.
func statementCandidate(f entity.FileInfo) bool {
	if constants.IsSupportedMediaType(f.MIMEType) {
		return true
	}
	return constants.MapExtToMediaType(filepath.Ext(f.Name)) != ""
}

// outcome keeps per-file results indexed by discovery order so the report
// preserves it regardless of completion order.
type outcome struct {
	file   entity.FileInfo
	result entity.ProcessingResult
	err    error
}

// Run lists the folder and processes every file independently. Cancellation is
// cooperative between files: in-flight pipelines finish and report, queued
// files are recorded as failed without being dispatched.
func (b *Batch) Run(ctx context.Context, folderID string) (entity.BatchReport, error) {
	start := time.Now()

	listed, err := b.Proc.Store.List(ctx, folderID)
	if err != nil {
		return entity.BatchReport{}, fmt.Errorf("list input folder: %w", err)
	}

	// folders often hold the generated CSVs or stray files; only statement
	// candidates enter the batch
	files := make([]entity.FileInfo, 0, len(listed))
	for _, f := range listed {
		if !statementCandidate(f) {
			b.Logger.Info("pipeline.batch.skip_unsupported",
				"file_id", f.ID, "name", f.Name, "mime_type", f.MIMEType)
			continue
		}
		files = append(files, f)
	}

	b.Logger.Info("pipeline.batch.start",
		"folder_id", folderID, "files", len(files), "workers", b.Workers)

	outcomes := make([]outcome, len(files))
	g := new(errgroup.Group)
	g.SetLimit(b.Workers)

	for i, f := range files {
		outcomes[i].file = f

		if ctx.Err() != nil {
			outcomes[i].err = fmt.Errorf("batch canceled before processing: %w", ctx.Err())
			continue
		}

		g.Go(func() error {
			res, err := b.Proc.ProcessFile(ctx, f.ID)
			if err != nil {
				b.Logger.Error("pipeline.batch.file_failed",
					"file_id", f.ID, "name", f.Name, "error", err)
				outcomes[i].err = err
				return nil
			}
			outcomes[i].result = res
			return nil
		})
	}
	_ = g.Wait()

	report := entity.BatchReport{
		TotalFiles:     len(files),
		ProcessedFiles: make([]entity.ProcessedFile, 0, len(files)),
		FailedFiles:    make([]entity.FailedFile, 0),
	}
	for _, o := range outcomes {
		if o.err != nil {
			report.FailedFiles = append(report.FailedFiles, entity.FailedFile{
				FileName: o.file.Name,
				Error:    o.err.Error(),
			})
			continue
		}
		report.ProcessedFiles = append(report.ProcessedFiles, entity.ProcessedFile{
			FileName: o.file.Name,
			Result:   o.result,
		})
	}
	report.Message = fmt.Sprintf("Processed %d of %d files", len(report.ProcessedFiles), report.TotalFiles)

	b.Logger.Info("pipeline.batch.done",
		"total", report.TotalFiles,
		"processed", len(report.ProcessedFiles),
		"failed", len(report.FailedFiles),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
