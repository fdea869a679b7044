package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hqminh/image-resize-worker/internal/worker/domain"
)

// Variant selects which namespace a stored image belongs to.
type Variant string

const (
	// VariantOriginal is the image exactly as fetched.
	VariantOriginal Variant = "originals"
	// VariantResized is the thumbnail derivative.
	VariantResized Variant = "resized"
)

// Store persists original and resized image bytes on the local
// filesystem under originals/ and resized/ sibling directories.
// Writes go through a temp file plus rename, so a retry or a duplicate
// concurrent delivery of the same job ID replaces the file atomically
// instead of interleaving with a reader.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates a Store rooted at root and ensures both variant
// directories exist.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	for _, v := range []Variant{VariantOriginal, VariantResized} {
		dir := filepath.Join(root, string(v))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", v, err)
		}
	}

	return &Store{
		root:   root,
		logger: logger,
	}, nil
}

// Save writes data as <root>/<variant>/<jobID>.<ext> and returns the
// final path. Existing files at the path are overwritten. Failures wrap
// domain.StoreError.
func (s *Store) Save(jobID string, variant Variant, data []byte, ext string) (string, error) {
	dir := filepath.Join(s.root, string(variant))
	path := filepath.Join(dir, jobID+"."+ext)

	tmp, err := os.CreateTemp(dir, "."+jobID+"-*")
	if err != nil {
		return "", &domain.StoreError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &domain.StoreError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", &domain.StoreError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", &domain.StoreError{Path: path, Err: err}
	}

	s.logger.Debug("Image stored",
		slog.String("job_id", jobID),
		slog.String("variant", string(variant)),
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	return path, nil
}
