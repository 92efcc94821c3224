package entity

import "github.com/tatarana/ocr-engine/constants"

// Classification is the inferred (bank, document type, confidence) triple for a
// document. It is produced once per document and never mutated.
type Classification struct {
	Bank         constants.Bank         `json:"bank"`
	DocumentType constants.DocumentType `json:"document_type"`
	Confidence   float64                `json:"confidence"`
	FileID       string                 `json:"file_id"`
}

// ClampConfidence forces the model-reported confidence into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
