// Package storage provides a local-filesystem receipt store for
// development. Production deployments inject the cloud object-storage
// implementation instead.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/adigun/schoolfin/internal/service"
)

// Compile-time check.
var _ service.ReceiptUploader = (*LocalReceiptStore)(nil)

// LocalReceiptStore keeps receipt artifacts under a base directory and
// serves them by file URL.
type LocalReceiptStore struct {
	baseDir string
}

// NewLocalReceiptStore creates the store, making sure the base directory
// exists.
func NewLocalReceiptStore(baseDir string) (*LocalReceiptStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	return &LocalReceiptStore{baseDir: baseDir}, nil
}

// Upload copies the local file into the store and returns its URL.
func (s *LocalReceiptStore) Upload(_ context.Context, localPath, _, _, publicID string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open receipt: %w", err)
	}
	defer src.Close()

	target := s.pathFor(publicID)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create receipt directory: %w", err)
	}
	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to store receipt: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to store receipt: %w", err)
	}
	return "file://" + target, nil
}

// Delete removes a stored artifact by its public id.
func (s *LocalReceiptStore) Delete(_ context.Context, publicID string) error {
	if err := os.Remove(s.pathFor(publicID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}

func (s *LocalReceiptStore) pathFor(publicID string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(publicID))
}
