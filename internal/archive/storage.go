// Package archive stores full score and validation report blobs. The
// Postgres rows hold summaries; the archive keeps the complete JSON for
// audit retrieval.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/enviroscope/enviroscope/pkg/config"
)

// Client abstracts blob storage for report archives.
type Client interface {
	PutScore(ctx context.Context, company, id string, data []byte) error
	GetScore(ctx context.Context, company, id string) ([]byte, error)
	PutReport(ctx context.Context, company, id string, data []byte) error
	GetReport(ctx context.Context, company, id string) ([]byte, error)
}

// FromConfig builds the configured archive backend.
func FromConfig(ctx context.Context, cfg config.ArchiveConfig) (Client, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "gcs":
		return NewGCSStorage(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

// Slug makes a company name safe for use as a path segment. Callers that
// record archive keys (the report rows) must use the same rule.
func Slug(company string) string {
	s := strings.ToLower(strings.TrimSpace(company))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}

// LocalStorage implements Client using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(kind, company, id string) string {
	return filepath.Join(s.BaseDir, kind, Slug(company), id+".json")
}

func (s *LocalStorage) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PutScore stores a score result blob.
func (s *LocalStorage) PutScore(ctx context.Context, company, id string, data []byte) error {
	return s.put(s.path("scores", company, id), data)
}

// GetScore retrieves a score result blob.
func (s *LocalStorage) GetScore(ctx context.Context, company, id string) ([]byte, error) {
	return os.ReadFile(s.path("scores", company, id))
}

// PutReport stores a validation report blob.
func (s *LocalStorage) PutReport(ctx context.Context, company, id string, data []byte) error {
	return s.put(s.path("reports", company, id), data)
}

// GetReport retrieves a validation report blob.
func (s *LocalStorage) GetReport(ctx context.Context, company, id string) ([]byte, error) {
	return os.ReadFile(s.path("reports", company, id))
}
