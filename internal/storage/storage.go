// Package storage persists reports and the stylesheets they describe.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotConfigured means no storage destination was configured.
	ErrNotConfigured = errors.New("persistent storage is missing a destination in configuration")
	// ErrWriteFailed means the local spool copy of a report could not be written.
	ErrWriteFailed = errors.New("failed to write report file to disk")
)

// Store puts objects somewhere durable and returns a URL that resolves to
// each stored object.
type Store interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
}
