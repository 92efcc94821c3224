// Package storage defines the file transport boundary of the pipeline and its
// Google Drive implementation. The core never manages auth or transport
// retries; it only consumes this interface.
package storage

import (
	"context"

	"github.com/tatarana/ocr-engine/internal/entity"
)

// Store is the storage collaborator the pipeline depends on.
type Store interface {
	// Fetch downloads a document by its storage id.
	Fetch(ctx context.Context, fileID string) (entity.Document, error)
	// List enumerates the files in a folder.
	List(ctx context.Context, folderID string) ([]entity.FileInfo, error)
	// Upload stores bytes under filename in the given folder.
	Upload(ctx context.Context, data []byte, filename, mimeType, folderID string) (entity.UploadResult, error)
}
