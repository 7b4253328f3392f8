package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists profile pictures and returns a serving URI plus an
// opaque handle used for later deletion.
type ImageStore interface {
	Save(ctx context.Context, fileName string, data io.Reader) (uri string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

// LocalImageStore writes images to a directory served as static files.
type LocalImageStore struct {
	dir     string
	baseURI string
}

func NewLocalImageStore(dir, baseURI string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalImageStore{
		dir:     dir,
		baseURI: strings.TrimSuffix(baseURI, "/"),
	}, nil
}

func (s *LocalImageStore) Save(_ context.Context, fileName string, data io.Reader) (string, string, error) {
	ext := filepath.Ext(fileName)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", "", fmt.Errorf("unsupported image type: %s", ext)
	}

	// Random object name; the original file name never touches the filesystem.
	objectName := uuid.NewString() + strings.ToLower(ext)
	path := filepath.Join(s.dir, objectName)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("failed to write image file: %w", err)
	}

	return s.baseURI + "/" + objectName, objectName, nil
}

func (s *LocalImageStore) Delete(_ context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	// publicID is the object name we generated; reject anything path-like.
	if strings.ContainsAny(publicID, "/\\") {
		return fmt.Errorf("invalid image handle")
	}

	err := os.Remove(filepath.Join(s.dir, publicID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}
