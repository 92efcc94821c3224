package llm

import (
	"context"

	"github.com/tatarana/ocr-engine/internal/entity"
)

// GenerateRequest is one multimodal call to the external model.
type GenerateRequest struct {
	Prompt   string
	Document entity.Document
	// ResponseMIMEType hints the provider to constrain output, e.g.
	// "application/json". Providers that cannot honor it may ignore it;
	// callers validate the response shape regardless.
	ResponseMIMEType string
}

// Generator is the interface the pipeline depends on. Implementations must be
// safe for concurrent use; the pipeline shares one instance across files.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
