// Package upload validates uploaded stylesheets before they are parsed.
package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
)

// DefaultMaxSize is the largest accepted stylesheet, in bytes.
const DefaultMaxSize int64 = 5_000_000

// DefaultField is the multipart form field carrying the stylesheet.
const DefaultField = "cssfile"

// Validation failures, checked in this order. Only the first one is reported.
var (
	ErrUploadFailed        = errors.New("file upload failed for unknown reason")
	ErrUnsupportedFileType = errors.New("submitted file type is not supported")
	ErrFileTooLarge        = errors.New("the file uploaded exceeds the size limit")
)

// sniffLen is how much of the payload is handed to filetype.
const sniffLen = 262

// File is a validated stylesheet.
type File struct {
	Name    string
	Size    int64
	Content []byte
}

// Text returns the content as a string.
func (f *File) Text() string {
	return string(f.Content)
}

// Validator checks uploads against an extension allow-list and a size
// ceiling.
type Validator struct {
	MaxSize      int64
	Extensions   []string // without the leading dot
	SniffContent bool     // reject payloads recognised as binary formats
}

// NewValidator returns a Validator with the default limits.
func NewValidator() *Validator {
	return &Validator{
		MaxSize:      DefaultMaxSize,
		Extensions:   []string{"css"},
		SniffContent: true,
	}
}

// FromRequest reads and validates the single file in the given multipart
// field.
func (v *Validator) FromRequest(r *http.Request, field string) (*File, error) {
	if field == "" {
		field = DefaultField
	}
	f, header, err := r.FormFile(field)
	if err != nil {
		// A body cut short by http.MaxBytesReader is an oversized upload.
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", ErrFileTooLarge, tooBig.Limit)
		}
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer f.Close()

	if err := v.checkName(header.Filename); err != nil {
		return nil, err
	}
	if err := v.checkSize(header.Size); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(f, v.Limit()+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return v.finish(header.Filename, content)
}

// FromPath reads and validates a local file.
func (v *Validator) FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUploadFailed, path)
	}
	if err := v.checkName(path); err != nil {
		return nil, err
	}
	if err := v.checkSize(info.Size()); err != nil {
		return nil, err
	}

	// #nosec G304 - path comes from the command line or configured globs
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return v.finish(filepath.Base(path), content)
}

// finish re-checks the size of what was actually read and sniffs it.
func (v *Validator) finish(name string, content []byte) (*File, error) {
	if err := v.checkContent(content); err != nil {
		return nil, err
	}
	if err := v.checkSize(int64(len(content))); err != nil {
		return nil, err
	}
	return &File{Name: name, Size: int64(len(content)), Content: content}, nil
}

func (v *Validator) checkName(name string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	allowed := slices.ContainsFunc(v.Extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
	if ext == "" || !allowed {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, filepath.Base(name))
	}
	return nil
}

func (v *Validator) checkContent(content []byte) error {
	if !v.SniffContent || len(content) == 0 {
		return nil
	}
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	kind, err := filetype.Match(head)
	if err == nil && kind != filetype.Unknown {
		return fmt.Errorf("%w: content looks like %s", ErrUnsupportedFileType, kind.MIME.Value)
	}
	return nil
}

func (v *Validator) checkSize(size int64) error {
	if size > v.Limit() {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, v.Limit())
	}
	return nil
}

// Limit returns the effective size ceiling in bytes.
func (v *Validator) Limit() int64 {
	if v.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return v.MaxSize
}

// Message returns the user-facing text for a validation error: the sentinel
// message without the wrapped details.
func Message(err error) string {
	for _, sentinel := range []error{ErrUploadFailed, ErrUnsupportedFileType, ErrFileTooLarge} {
		if errors.Is(err, sentinel) {
			msg := sentinel.Error()
			return strings.ToUpper(msg[:1]) + msg[1:] + "."
		}
	}
	return err.Error()
}
