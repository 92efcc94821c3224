// Package server exposes the pipeline over HTTP. Single-file endpoints surface
// the first fatal error as a structured failure; the batch endpoint only fails
// wholesale when the folder listing itself fails.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/pipeline"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

type Server struct {
	Proc   *pipeline.Processor
	Batch  *pipeline.Batch
	Cfg    *common.Config
	Logger *slog.Logger
}

func New(proc *pipeline.Processor, batch *pipeline.Batch, cfg *common.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Proc: proc, Batch: batch, Cfg: cfg, Logger: logger}
}

// Router builds the gin engine with all routes mounted under /api/v1.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.GET("/show-config", s.handleShowConfig)
		v1.GET("/list-input-files", s.handleListInputFiles)
		v1.POST("/identify-file", s.handleIdentifyFile)
		v1.POST("/ocr-file", s.handleOCRFile)
		v1.POST("/export-file", s.handleExportFile)
		v1.POST("/process-bank-statement", s.handleBankStatement)
		v1.POST("/process-credit-card", s.handleCreditCard)
		v1.POST("/process-input-folder", s.handleBatch)
	}
	return r
}

// requestID tags every request with an ID, carried on the request context so
// downstream log lines from the pipeline can be correlated.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header("X-Request-ID", rid)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))

		start := time.Now()
		c.Next()
		s.Logger.Info("server.request",
			"req_id", rid,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleShowConfig reports the effective configuration with secrets redacted.
func (s *Server) handleShowConfig(c *gin.Context) {
	cfg := s.Cfg
	c.JSON(http.StatusOK, gin.H{
		"app": gin.H{
			"name":    "ocr-engine",
			"version": Version,
		},
		"llm": gin.H{
			"model":       cfg.LLM.Model,
			"region":      cfg.LLM.Region,
			"project_id":  configuredMark(cfg.LLM.ProjectID != ""),
			"max_retries": cfg.LLM.MaxAttempts,
		},
		"google_drive": gin.H{
			"credentials":      configuredMark(cfg.Drive.CredentialsPath != ""),
			"input_folder_id":  cfg.Drive.InputFolderID,
			"output_folder_id": cfg.Drive.OutputFolderID,
		},
		"pipeline": gin.H{
			"workers":          cfg.Pipeline.Workers,
			"max_file_size_mb": cfg.Pipeline.MaxFileSizeMB,
		},
	})
}

func configuredMark(set bool) string {
	if set {
		return "***configured***"
	}
	return "***not_configured***"
}

// statusFor maps the error taxonomy onto HTTP statuses. Unsupported inputs are
// the caller's fault; rate limiting and auth point at the provider.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnsupportedFormat),
		errors.Is(err, common.ErrUnsupportedBank),
		errors.Is(err, common.ErrUnsupportedDocumentType),
		errors.Is(err, common.ErrUnsupportedCombination),
		errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, common.ErrExtractionAuth):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error, message string) {
	s.Logger.Error("server.request_failed",
		"req_id", common.RequestIDFromContext(c.Request.Context()),
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(statusFor(err), gin.H{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
