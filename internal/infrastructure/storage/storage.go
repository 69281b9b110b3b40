// Package storage provides object storage backends for exported reports.
package storage

import (
	"context"
	"time"
)

// ReportStorage stores exported analysis reports and hands out download URLs.
// Implementations: S3ReportStorage for S3-compatible backends, LocalReportStorage
// for single-node deployments.
type ReportStorage interface {
	// Put uploads a report document under the given key.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// DownloadURL returns a URL from which the report can be fetched, plus the
	// moment it expires. Local storage returns a non-expiring path.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)

	// Exists reports whether a report is present under the key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes a stored report. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
