package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Ensure LocalReportStorage implements ReportStorage
var _ ReportStorage = (*LocalReportStorage)(nil)

// LocalReportStorage keeps reports on the local filesystem. Meant for
// single-node and development deployments; download URLs are plain file paths
// and never expire.
type LocalReportStorage struct {
	root string
}

// NewLocalReportStorage creates the root directory if needed
func NewLocalReportStorage(root string) (*LocalReportStorage, error) {
	if root == "" {
		root = "./reports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &LocalReportStorage{root: root}, nil
}

// path resolves a storage key inside the root, rejecting traversal.
func (s *LocalReportStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Put writes a report document under the key
func (s *LocalReportStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// DownloadURL returns the on-disk path of the report
func (s *LocalReportStorage) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	p, err := s.path(key)
	if err != nil {
		return "", time.Time{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return "", time.Time{}, fmt.Errorf("report not found: %w", err)
	}
	return "file://" + p, time.Time{}, nil
}

// Exists reports whether the key has a stored report
func (s *LocalReportStorage) Exists(ctx context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the stored report; missing keys are fine
func (s *LocalReportStorage) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}
