package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/entity"
)

// DriveStore implements Store on the Google Drive v3 API with a service
// account credential.
type DriveStore struct {
	svc *drive.Service
	log *slog.Logger
}

// NewDriveStore authenticates against Google Drive.
func NewDriveStore(ctx context.Context, credentialsPath string, logger *slog.Logger) (*DriveStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	logger.Info("storage.drive.authenticated")
	return &DriveStore{svc: svc, log: logger}, nil
}

func (s *DriveStore) Fetch(ctx context.Context, fileID string) (entity.Document, error) {
	start := time.Now()

	meta, err := s.svc.Files.Get(fileID).Fields("name, mimeType").Context(ctx).Do()
	if err != nil {
		return entity.Document{}, fmt.Errorf("drive get metadata %s: %w", fileID, err)
	}

	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return entity.Document{}, fmt.Errorf("drive download %s: %w", fileID, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.log.Warn("storage.drive.body_close_error", "error", cerr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.Document{}, fmt.Errorf("drive read %s: %w", fileID, err)
	}

	s.log.Info("storage.drive.fetch.ok",
		"file_id", fileID, "name", meta.Name, "bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds())

	return entity.Document{Name: meta.Name, MIMEType: meta.MimeType, Data: data}, nil
}

func (s *DriveStore) List(ctx context.Context, folderID string) ([]entity.FileInfo, error) {
	call := s.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
		Fields("files(id, name, mimeType, size, createdTime)").
		PageSize(1000).
		Context(ctx)

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("drive list folder %s: %w", folderID, err)
	}

	files := make([]entity.FileInfo, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, entity.FileInfo{
			ID:          f.Id,
			Name:        f.Name,
			MIMEType:    f.MimeType,
			Size:        f.Size,
			CreatedTime: f.CreatedTime,
		})
	}
	s.log.Info("storage.drive.list.ok", "folder_id", folderID, "files", len(files))
	return files, nil
}

func (s *DriveStore) Upload(ctx context.Context, data []byte, filename, mimeType, folderID string) (entity.UploadResult, error) {
	if mimeType == "" {
		mimeType = constants.MediaTypeCSV
	}
	meta := &drive.File{Name: filename, MimeType: mimeType}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	f, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return entity.UploadResult{}, fmt.Errorf("drive upload %s: %w", filename, err)
	}

	s.log.Info("storage.drive.upload.ok", "name", filename, "file_id", f.Id, "bytes", len(data))
	return entity.UploadResult{ID: f.Id, URL: f.WebViewLink}, nil
}
