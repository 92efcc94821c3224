// Package classify maps a raw document to a (bank, document type, confidence)
// triple by asking the external model and strictly parsing its answer.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/entity"
	"github.com/tatarana/ocr-engine/internal/llm"
	"github.com/tatarana/ocr-engine/internal/registry"
)

// Classifier is stateless across calls, so one instance serves concurrent
// file pipelines.
type Classifier struct {
	gen llm.Generator
	log *slog.Logger
}

func New(gen llm.Generator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gen: gen, log: logger}
}

// classificationPayload is the strict intermediate shape of a model response.
type classificationPayload struct {
	Bank         string  `json:"bank"`
	DocumentType string  `json:"document_type"`
	Confidence   float64 `json:"confidence"`
}

// Classify produces the classification triple for a document. Confidence comes
// back exactly as the model reported it, clamped to [0,1]; acting on low
// confidence is the caller's policy decision, not this layer's.
func (c *Classifier) Classify(ctx context.Context, doc entity.Document, fileID string) (entity.Classification, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	if err := CheckDocument(doc); err != nil {
		return entity.Classification{}, err
	}

	c.log.Info("classify.start",
		"req_id", rid, "file", doc.Name, "mime_type", doc.MIMEType, "bytes", len(doc.Data))

	raw, err := c.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:           registry.ClassificationPrompt,
		Document:         doc,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return entity.Classification{}, fmt.Errorf("classification call: %w", err)
	}

	payload := []byte(llm.StripFences(raw))
	if err := llm.ValidateJSON(llm.ClassificationSchema, payload); err != nil {
		c.log.Error("classify.parse_error", "req_id", rid, "error", err, "response_bytes", len(raw))
		return entity.Classification{}, fmt.Errorf("%w: %v", common.ErrClassificationParse, err)
	}

	var p classificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return entity.Classification{}, fmt.Errorf("%w: %v", common.ErrClassificationParse, err)
	}

	bank, ok := constants.ParseBank(p.Bank)
	if !ok {
		c.log.Warn("classify.unknown_bank", "req_id", rid, "label", p.Bank)
		return entity.Classification{}, fmt.Errorf("%w: %q", common.ErrUnsupportedBank, p.Bank)
	}
	docType, ok := constants.ParseDocumentType(p.DocumentType)
	if !ok {
		c.log.Warn("classify.unknown_document_type", "req_id", rid, "label", p.DocumentType)
		return entity.Classification{}, fmt.Errorf("%w: %q", common.ErrUnsupportedDocumentType, p.DocumentType)
	}

	out := entity.Classification{
		Bank:         bank,
		DocumentType: docType,
		Confidence:   entity.ClampConfidence(p.Confidence),
		FileID:       fileID,
	}
	c.log.Info("classify.ok",
		"req_id", rid,
		"bank", string(out.Bank),
		"document_type", string(out.DocumentType),
		"confidence", out.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// CheckDocument rejects empty or unsupported payloads before any model call.
// The declared media type must be supported and must agree with the sniffed
// content type.
func CheckDocument(doc entity.Document) error {
	if doc.Empty() {
		return fmt.Errorf("%w: empty document %q", common.ErrUnsupportedFormat, doc.Name)
	}
	if !constants.IsSupportedMediaType(doc.MIMEType) {
		return fmt.Errorf("%w: %q declares %s", common.ErrUnsupportedFormat, doc.Name, doc.MIMEType)
	}
	detected := mimetype.Detect(doc.Data)
	if !detected.Is(doc.MIMEType) {
		return fmt.Errorf("%w: %q declares %s but looks like %s",
			common.ErrUnsupportedFormat, doc.Name, doc.MIMEType, detected.String())
	}
	return nil
}
