package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// FileStore keeps objects in a local directory that is served under
// BaseURL.
type FileStore struct {
	Dir     string
	BaseURL string
}

// NewFileStore returns a FileStore. An empty dir yields ErrNotConfigured.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if dir == "" {
		return nil, ErrNotConfigured
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{Dir: dir, BaseURL: baseURL}, nil
}

// Put copies body to Dir/key.
func (s *FileStore) Put(_ context.Context, key string, body io.ReadSeeker, _ string) (u string, err error) {
	if s == nil || s.Dir == "" {
		return "", ErrNotConfigured
	}
	if key != filepath.Base(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	f, err := os.Create(filepath.Join(s.Dir, key))
	if err != nil {
		return "", fmt.Errorf("create object %s: %w", key, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close object %s: %w", key, cerr))
		}
	}()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	return s.url(key)
}

func (s *FileStore) url(key string) (string, error) {
	if s.BaseURL == "" {
		return "/" + url.PathEscape(key), nil
	}
	return url.JoinPath(s.BaseURL, key)
}
