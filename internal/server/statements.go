package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/export"
)

// fileRequest is the body shared by the single-file endpoints.
type fileRequest struct {
	FileID string `json:"file_id" binding:"required"`
	Bank   string `json:"bank,omitempty"`
}

func (s *Server) handleIdentifyFile(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cls, err := s.Proc.Identify(c.Request.Context(), req.FileID)
	if err != nil {
		s.fail(c, err, "Failed to identify file")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bank":          cls.Bank,
		"document_type": cls.DocumentType,
		"confidence":    cls.Confidence,
		"file_id":       cls.FileID,
	})
}

// handleListInputFiles returns the contents of the configured input folder.
func (s *Server) handleListInputFiles(c *gin.Context) {
	folderID := s.Cfg.Drive.InputFolderID
	if folderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no input folder configured"})
		return
	}
	files, err := s.Proc.Store.List(c.Request.Context(), folderID)
	if err != nil {
		s.fail(c, err, "Failed to list input files")
		return
	}
	c.JSON(http.StatusOK, files)
}

// handleExportFile processes a file and returns the rendered table as a
// download instead of uploading it, in CSV or XLSX.
func (s *Server) handleExportFile(c *gin.Context) {
	var req struct {
		FileID string `json:"file_id" binding:"required"`
		Format string `json:"format,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	format, ok := export.ParseFormat(req.Format)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized format: " + req.Format})
		return
	}

	out, err := s.Proc.Render(c.Request.Context(), req.FileID, format)
	if err != nil {
		s.fail(c, err, "Failed to export file")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+out.Name+`"`)
	c.Data(http.StatusOK, out.MIMEType, out.Data)
}

// handleOCRFile classifies and processes a file in one call.
func (s *Server) handleOCRFile(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.Proc.ProcessFile(c.Request.Context(), req.FileID)
	if err != nil {
		s.fail(c, err, "Failed to process file")
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleBankStatement processes a file the caller already knows to be a bank
// statement of the given bank.
func (s *Server) handleBankStatement(c *gin.Context) {
	s.handleTyped(c, constants.BankStatement)
}

// handleCreditCard processes a file the caller already knows to be a credit
// card statement of the given bank.
func (s *Server) handleCreditCard(c *gin.Context) {
	s.handleTyped(c, constants.CreditCardStatement)
}

func (s *Server) handleTyped(c *gin.Context, docType constants.DocumentType) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bank, ok := constants.ParseBank(req.Bank)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized bank: " + req.Bank})
		return
	}

	res, err := s.Proc.ProcessTyped(c.Request.Context(), req.FileID, bank, docType)
	if err != nil {
		s.fail(c, err, "Failed to process "+string(docType))
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleBatch processes every file in the configured input folder.
func (s *Server) handleBatch(c *gin.Context) {
	var req struct {
		FolderID string `json:"folder_id,omitempty"`
	}
	// body is optional; the configured input folder is the default
	_ = c.ShouldBindJSON(&req)
	folderID := req.FolderID
	if folderID == "" {
		folderID = s.Cfg.Drive.InputFolderID
	}
	if folderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no input folder configured"})
		return
	}

	report, err := s.Batch.Run(c.Request.Context(), folderID)
	if err != nil {
		s.fail(c, err, "Failed to process input folder")
		return
	}
	c.JSON(http.StatusOK, report)
}
