package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	reportExt     = "json"
	stylesheetExt = "css"
)

// Persister stores a report and its stylesheet under one session id.
type Persister struct {
	store    Store
	spoolDir string
	log      *zap.Logger
}

// NewPersister returns a Persister writing through store. Reports are
// spooled to spoolDir (os.TempDir when empty) before upload.
func NewPersister(store Store, spoolDir string, log *zap.Logger) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	if spoolDir == "" {
		spoolDir = os.TempDir()
	}
	return &Persister{store: store, spoolDir: spoolDir, log: log.Named("storage")}
}

// Key returns the object key for a session and extension.
func Key(sessionID, ext string) string {
	return sessionID + "." + ext
}

// PersistReport spools the serialized report to disk, uploads it and
// returns its URL.
func (p *Persister) PersistReport(ctx context.Context, sessionID string, report []byte) (u string, err error) {
	if p.store == nil {
		return "", ErrNotConfigured
	}

	key := Key(sessionID, reportExt)
	path := filepath.Join(p.spoolDir, key)
	if err := os.WriteFile(path, report, 0600); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close spool file: %w", cerr))
		}
		if rerr := os.Remove(path); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("remove spool file: %w", rerr))
		}
	}()

	if u, err = p.store.Put(ctx, key, f, "application/json"); err != nil {
		return "", fmt.Errorf("persist report: %w", err)
	}
	p.log.Debug("Report stored", zap.String("session", sessionID), zap.String("url", u))
	return u, nil
}

// PersistStylesheet uploads the original stylesheet and returns its URL.
func (p *Persister) PersistStylesheet(ctx context.Context, sessionID string, content []byte) (string, error) {
	if p.store == nil {
		return "", ErrNotConfigured
	}

	key := Key(sessionID, stylesheetExt)
	u, err := p.store.Put(ctx, key, bytes.NewReader(content), "text/css; charset=utf-8")
	if err != nil {
		return "", fmt.Errorf("persist stylesheet: %w", err)
	}
	p.log.Debug("Stylesheet stored", zap.String("session", sessionID), zap.String("url", u))
	return u, nil
}
