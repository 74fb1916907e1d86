package reports

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/enviroscope/enviroscope/internal/archive"
)

func TestNewService(t *testing.T) {
	// NewService should not panic with nil dependencies (it just stores them).
	svc := NewService(nil, nil)
	if svc == nil {
		t.Fatal("NewService returned nil")
	}
}

func TestStorageRefResolvesArchivedBlob(t *testing.T) {
	// The ref recorded on a summary row must name the key the archive
	// actually wrote for that company, slug included.
	dir := t.TempDir()
	s := archive.NewLocalStorage(dir)
	ctx := context.Background()

	if err := s.PutScore(ctx, "Acme Power", "abc", []byte(`{"score":61.5}`)); err != nil {
		t.Fatalf("PutScore: %v", err)
	}

	ref := storageRef("scores", "Acme Power", "abc")
	if ref != "scores/acme-power/abc.json" {
		t.Errorf("storageRef = %q, want scores/acme-power/abc.json", ref)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(ref))); err != nil {
		t.Errorf("no blob at recorded ref %q: %v", ref, err)
	}

	if got := storageRef("reports", "Acme Power", "def"); got != "reports/acme-power/def.json" {
		t.Errorf("storageRef = %q", got)
	}
}
