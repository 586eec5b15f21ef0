// Package storage stores evidence files behind a provider-neutral interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"fieldjobs/internal/config"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Interface is implemented by every object store provider.
type Interface interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// PublicURL returns the URL clients fetch the object from.
	PublicURL(key string) string
	// KeyFromURL inverts PublicURL; ok is false for foreign URLs.
	KeyFromURL(rawURL string) (key string, ok bool)
}

// New builds the provider named by cfg.Provider.
func New(cfg config.StorageConfig) (Interface, error) {
	switch cfg.Provider {
	case "filesystem":
		return NewFileSystem(cfg.Dir, cfg.PublicURL), nil
	case "s3":
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// CleanKey rejects absolute keys and any key escaping its root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

type urlMapper struct {
	base string
}

func (m urlMapper) PublicURL(key string) string {
	return m.base + "/" + key
}

func (m urlMapper) KeyFromURL(rawURL string) (string, bool) {
	prefix := m.base + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key, err := CleanKey(strings.TrimPrefix(rawURL, prefix))
	if err != nil {
		return "", false
	}
	return key, true
}
