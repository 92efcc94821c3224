// Package gemini implements llm.Generator on top of Vertex AI.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/llm"
)

// Config holds the Vertex AI connection and generation settings.
type Config struct {
	Model       string
	ProjectID   string
	Region      string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

// Client is a thin Generator over one Vertex AI generative model.
type Client struct {
	cfg    Config
	client *genai.Client
	log    *slog.Logger
}

// NewClient dials Vertex AI. Close must be called when done.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("gemini: project id and region are required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Client{cfg: cfg, client: base, log: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Generate sends the prompt plus the document payload to the model and returns
// the concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := c.client.GenerativeModel(c.cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		model.GenerationConfig.MaxOutputTokens = genai.Ptr(c.cfg.MaxTokens)
	}
	if req.ResponseMIMEType != "" {
		model.GenerationConfig.ResponseMIMEType = req.ResponseMIMEType
	}

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"mime_type", req.Document.MIMEType,
		"payload_bytes", len(req.Document.Data),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	parts := []genai.Part{genai.Text(req.Prompt)}
	if !req.Document.Empty() {
		parts = append(parts, genai.Blob{MIMEType: req.Document.MIMEType, Data: req.Document.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		mapped := mapProviderError(err)
		c.log.Error("llm.generate.error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", mapped
	}

	text, err := firstCandidateText(resp)
	if err != nil {
		c.log.Error("llm.generate.empty", "req_id", rid, "error", err)
		return "", err
	}

	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"response_bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in model response")
	}
	var out string
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			out += string(t)
		}
	}
	if out == "" {
		return "", fmt.Errorf("model response contained no text parts")
	}
	return out, nil
}

// mapProviderError translates transport errors into the pipeline taxonomy so
// the retry policy can tell transient pushback from terminal auth failures.
func mapProviderError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429:
			return fmt.Errorf("%w: %v", common.ErrRateLimited, err)
		case 401, 403:
			return fmt.Errorf("%w: %v", common.ErrExtractionAuth, err)
		}
		return err
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return fmt.Errorf("%w: %v", common.ErrRateLimited, err)
		case codes.Unauthenticated, codes.PermissionDenied:
			return fmt.Errorf("%w: %v", common.ErrExtractionAuth, err)
		}
	}
	return err
}
