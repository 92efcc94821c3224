// Package extract asks the external model to enumerate the transactions in a
// classified document and coerces the answer into raw candidates.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/entity"
	"github.com/tatarana/ocr-engine/internal/llm"
	"github.com/tatarana/ocr-engine/internal/registry"
)

type Extractor struct {
	gen    llm.Generator
	policy RetryPolicy
	log    *slog.Logger
}

func New(gen llm.Generator, policy RetryPolicy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, policy: policy.normalize(), log: logger}
}

// Extract runs the registry prompt for the job against the document. A
// response the model reports as zero transactions is a valid empty result; a
// response that cannot be parsed is retried exactly once with a corrective
// reword before surfacing ErrExtractionParse.
func (e *Extractor) Extract(ctx context.Context, job registry.ExtractionJob) ([]entity.RawTransactionCandidate, error) {
	rid := uuid.New().String()
	start := time.Now()

	req := llm.GenerateRequest{
		Prompt:           job.Entry.PromptTemplate,
		Document:         job.Document,
		ResponseMIMEType: "application/json",
	}

	e.log.Info("extract.start",
		"req_id", rid,
		"bank", string(job.Classification.Bank),
		"document_type", string(job.Classification.DocumentType),
		"file", job.Document.Name,
	)

	raw, err := generateWithRetry(ctx, e.gen, req, e.policy)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	cands, parseErr := parseCandidates(raw)
	if parseErr != nil {
		e.log.Warn("extract.malformed_response",
			"req_id", rid, "error", parseErr, "response_bytes", len(raw))

		retryReq := req
		retryReq.Prompt = req.Prompt + registry.CorrectionSuffix
		raw, err = generateWithRetry(ctx, e.gen, retryReq, e.policy)
		if err != nil {
			return nil, fmt.Errorf("extraction retry call: %w", err)
		}
		cands, parseErr = parseCandidates(raw)
		if parseErr != nil {
			e.log.Error("extract.parse_error", "req_id", rid, "error", parseErr)
			return nil, fmt.Errorf("%w: %v", common.ErrExtractionParse, parseErr)
		}
	}

	e.log.Info("extract.ok",
		"req_id", rid,
		"candidates", len(cands),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cands, nil
}

// parseCandidates coerces a model response into candidate rows: strip fences,
// sanitize optionals, validate against the transactions schema, then decode.
func parseCandidates(raw string) ([]entity.RawTransactionCandidate, error) {
	payload := []byte(llm.StripFences(raw))

	cleaned, _, err := llm.SanitizeTransactionsJSON(payload)
	if err != nil {
		return nil, err
	}
	if err := llm.ValidateJSON(llm.TransactionsSchema, cleaned); err != nil {
		return nil, err
	}

	var body struct {
		Transactions []entity.RawTransactionCandidate `json:"transactions"`
	}
	if err := json.Unmarshal(cleaned, &body); err != nil {
		return nil, err
	}
	return body.Transactions, nil
}
