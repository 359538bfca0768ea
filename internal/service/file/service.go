package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
)

var importContentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",
	".txt":  "text/plain",
}

type FileService interface {
	// ArchiveImport keeps a copy of an uploaded punch-clock export under
	// imports/YYYY/MM/ and returns its storage path.
	ArchiveImport(ctx context.Context, file io.Reader, filename string, at time.Time) (string, error)
	OpenImport(ctx context.Context, path string) (io.ReadCloser, error)

	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// ArchiveImport implements FileService.
func (s *fileServiceImpl) ArchiveImport(ctx context.Context, file io.Reader, filename string, at time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := importContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("invalid file type: only xlsx, xlsm, xls, csv, txt allowed")
	}

	at = at.UTC()
	name := uuid.Must(uuid.NewV7()).String() + ext
	key := path.Join("imports", at.Format("2006"), at.Format("01"), name)

	uploadedPath, err := s.storage.Upload(ctx, file, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive import: %w", err)
	}
	return uploadedPath, nil
}

// OpenImport implements FileService.
func (s *fileServiceImpl) OpenImport(ctx context.Context, path string) (io.ReadCloser, error) {
	if !strings.HasPrefix(filepath.ToSlash(path), "imports/") {
		return nil, fmt.Errorf("invalid import path: %s", path)
	}
	ok, err := s.storage.Exists(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check import: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrFileNotFound, path)
	}
	return s.storage.Download(ctx, path)
}

// DeleteFile implements FileService.
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL implements FileService.
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}
