package filestorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/offerdesk/internal/pkg/logger"
)

// LocalStorage keeps documents on the local filesystem, served by the API
// under a static route.
type LocalStorage struct {
	basePath string // root directory holding the documents
	baseURL  string // public URL prefix of the static route
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath is the directory the static route serves from
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Put writes to a temp file in the same directory and renames it over the
// target so readers never observe a partial document.
func (ls *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	dstPath, err := ls.path(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(ls.basePath, ".upload-*")
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to create temp file")
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("key", key).Msg("Failed to write document")
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("key", key).Msg("Failed to move document into place")
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	logger.Debug().Str("key", key).Int("bytes", len(data)).Str("contentType", contentType).Msg("Document stored locally")
	return ls.URL(key), nil
}

// Delete removes a document. Returns nil if the file doesn't exist.
func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	physicalPath, err := ls.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// Exists reports whether key is stored
func (ls *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	physicalPath, err := ls.path(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(physicalPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return !info.IsDir(), nil
}

// URL returns the public location for key
func (ls *LocalStorage) URL(key string) string {
	return ls.baseURL + "/" + key
}

func (ls *LocalStorage) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(ls.basePath, key), nil
}

// validateKey accepts flat object names only
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
