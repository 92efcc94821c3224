// Package pipeline drives one file through classify → dispatch → extract →
// normalize → serialize → upload, and runs batches of files with per-file
// failure isolation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/classify"
	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/entity"
	"github.com/tatarana/ocr-engine/internal/export"
	"github.com/tatarana/ocr-engine/internal/extract"
	"github.com/tatarana/ocr-engine/internal/normalize"
	"github.com/tatarana/ocr-engine/internal/registry"
	"github.com/tatarana/ocr-engine/internal/storage"
)

// Processor wires the pipeline stages for single-file processing. It holds no
// per-file state, so one instance serves concurrent files.
type Processor struct {
	Logger         *slog.Logger
	Store          storage.Store
	Classifier     *classify.Classifier
	Registry       *registry.Registry
	Extractor      *extract.Extractor
	Normalizer     *normalize.Normalizer
	OutputFolderID string
	MaxFileSizeMB  int
}

func NewProcessor(
	logger *slog.Logger,
	store storage.Store,
	classifier *classify.Classifier,
	reg *registry.Registry,
	extractor *extract.Extractor,
	normalizer *normalize.Normalizer,
	outputFolderID string,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:         logger,
		Store:          store,
		Classifier:     classifier,
		Registry:       reg,
		Extractor:      extractor,
		Normalizer:     normalizer,
		OutputFolderID: outputFolderID,
		MaxFileSizeMB:  constants.MaxFileSizeMBDefault,
	}
}

// Identify fetches a document and classifies it without extracting anything.
func (p *Processor) Identify(ctx context.Context, fileID string) (entity.Classification, error) {
	doc, err := p.Store.Fetch(ctx, fileID)
	if err != nil {
		return entity.Classification{}, fmt.Errorf("fetch %s: %w", fileID, err)
	}
	return p.Classifier.Classify(ctx, doc, fileID)
}

// ProcessFile runs the full pipeline for one file: the classifier decides the
// (bank, document type) pair and the registry picks the procedure.
func (p *Processor) ProcessFile(ctx context.Context, fileID string) (entity.ProcessingResult, error) {
	return p.process(ctx, fileID, func(ctx context.Context, doc entity.Document) (entity.Classification, error) {
		return p.Classifier.Classify(ctx, doc, fileID)
	})
}

// ProcessTyped runs the pipeline with a caller-supplied classification,
// skipping the classifier call. Used by the explicit bank-statement and
// credit-card endpoints where the caller already knows the document kind.
func (p *Processor) ProcessTyped(ctx context.Context, fileID string, bank constants.Bank, docType constants.DocumentType) (entity.ProcessingResult, error) {
	return p.process(ctx, fileID, func(_ context.Context, doc entity.Document) (entity.Classification, error) {
		if err := classify.CheckDocument(doc); err != nil {
			return entity.Classification{}, err
		}
		return entity.Classification{
			Bank:         bank,
			DocumentType: docType,
			Confidence:   1,
			FileID:       fileID,
		}, nil
	})
}

// Render runs classify → extract → normalize for one file and returns the
// serialized output directly instead of uploading it. Used by the download
// endpoint, which also supports XLSX.
func (p *Processor) Render(ctx context.Context, fileID string, format export.Format) (entity.Document, error) {
	doc, cls, txs, _, err := p.run(ctx, fileID, func(ctx context.Context, doc entity.Document) (entity.Classification, error) {
		return p.Classifier.Classify(ctx, doc, fileID)
	})
	if err != nil {
		return entity.Document{}, err
	}

	data, mediaType, err := export.Marshal(format, txs)
	if err != nil {
		return entity.Document{}, fmt.Errorf("serialize: %w", err)
	}
	return entity.Document{
		Name:     export.Filename(cls.Bank, cls.DocumentType, doc.Name, time.Now(), format),
		MIMEType: mediaType,
		Data:     data,
	}, nil
}

// run is the shared fetch → classify → resolve → extract → normalize core.
func (p *Processor) run(ctx context.Context, fileID string, classifyFn func(context.Context, entity.Document) (entity.Classification, error)) (entity.Document, entity.Classification, []entity.Transaction, int, error) {
	doc, err := p.Store.Fetch(ctx, fileID)
	if err != nil {
		return entity.Document{}, entity.Classification{}, nil, 0, fmt.Errorf("fetch %s: %w", fileID, err)
	}
	if p.MaxFileSizeMB > 0 && len(doc.Data) > p.MaxFileSizeMB<<20 {
		return entity.Document{}, entity.Classification{}, nil, 0, fmt.Errorf("%w: %q is %d bytes, limit %d MB",
			common.ErrUnsupportedFormat, doc.Name, len(doc.Data), p.MaxFileSizeMB)
	}

	cls, err := classifyFn(ctx, doc)
	if err != nil {
		return entity.Document{}, entity.Classification{}, nil, 0, err
	}

	job, err := p.Registry.Resolve(cls, doc)
	if err != nil {
		return entity.Document{}, entity.Classification{}, nil, 0, err
	}

	cands, err := p.Extractor.Extract(ctx, job)
	if err != nil {
		return entity.Document{}, entity.Classification{}, nil, 0, err
	}

	txs, skipped := p.Normalizer.Normalize(job.Entry, cands)
	return doc, cls, txs, skipped, nil
}

func (p *Processor) process(ctx context.Context, fileID string, classifyFn func(context.Context, entity.Document) (entity.Classification, error)) (entity.ProcessingResult, error) {
	start := time.Now()

	doc, cls, txs, skipped, err := p.run(ctx, fileID, classifyFn)
	if err != nil {
		return entity.ProcessingResult{}, err
	}

	csvBytes, err := export.MarshalCSV(txs)
	if err != nil {
		return entity.ProcessingResult{}, fmt.Errorf("serialize: %w", err)
	}

	outName := export.Filename(cls.Bank, cls.DocumentType, doc.Name, time.Now(), export.FormatCSV)
	up, err := p.Store.Upload(ctx, csvBytes, outName, constants.MediaTypeCSV, p.OutputFolderID)
	if err != nil {
		return entity.ProcessingResult{}, fmt.Errorf("upload %s: %w", outName, err)
	}

	elapsed := time.Since(start)
	p.Logger.Info("pipeline.file.ok",
		"file_id", fileID,
		"bank", string(cls.Bank),
		"document_type", string(cls.DocumentType),
		"transactions", len(txs),
		"skipped_records", skipped,
		"csv_file_id", up.ID,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return entity.ProcessingResult{
		Success:               true,
		Message:               fmt.Sprintf("Successfully processed %s %s", cls.Bank, cls.DocumentType),
		CSVFileID:             up.ID,
		CSVFileURL:            up.URL,
		TransactionsCount:     len(txs),
		ProcessingTimeSeconds: elapsed.Seconds(),
	}, nil
}
