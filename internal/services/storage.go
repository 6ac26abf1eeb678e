package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// StorageService writes uploads to request-scoped temporary files. The
// returned cleanup must run on every exit path; the host file system is a
// shared, finite resource.
type StorageService interface {
	SaveTemp(fh *multipart.FileHeader) (string, func(), error)
	EnsureTempDir() error
}

type storageService struct {
	tempDir string
	logger  *zap.Logger
}

func NewStorageService(tempDir string, logger *zap.Logger) StorageService {
	return &storageService{
		tempDir: tempDir,
		logger:  logger,
	}
}

func (s *storageService) EnsureTempDir() error {
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	return nil
}

func (s *storageService) SaveTemp(fh *multipart.FileHeader) (string, func(), error) {
	src, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	pattern := "cv-upload-*" + filepath.Ext(fh.Filename)
	dst, err := os.CreateTemp(s.tempDir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	tempPath := dst.Name()
	cleanup := func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove temp file", zap.String("path", tempPath), zap.Error(err))
		}
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return tempPath, cleanup, nil
}
