package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem keeps objects under a local directory served at publicBase.
type FileSystem struct {
	urlMapper
	dir string
}

func NewFileSystem(dir, publicBase string) *FileSystem {
	return &FileSystem{
		urlMapper: urlMapper{base: strings.TrimRight(publicBase, "/")},
		dir:       dir,
	}
}

func (fs *FileSystem) Dir() string { return fs.dir }

func (fs *FileSystem) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	abs, err := fs.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	dst, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(abs)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (fs *FileSystem) Delete(_ context.Context, key string) error {
	abs, err := fs.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (fs *FileSystem) fullPath(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(fs.dir, filepath.FromSlash(cleaned)), nil
}
