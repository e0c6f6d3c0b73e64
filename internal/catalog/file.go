package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/recommender/internal/domain"
)

// FileSource reads the catalog from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

// Open opens the catalog file. A missing file maps to domain.ErrCatalogNotFound.
func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalog %s: %w", s.path, domain.ErrCatalogNotFound)
		}
		return nil, fmt.Errorf("open catalog %s: %w", s.path, err)
	}
	return f, nil
}

// Location returns the file path.
func (s *FileSource) Location() string { return s.path }
