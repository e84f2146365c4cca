// Package web serves the upload form, the report page and stored objects.
package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	cssreport "github.com/yacobolo/cssreport"
	"github.com/yacobolo/cssreport/internal/upload"
)

// multipartOverhead is the body allowance on top of the file size limit.
const multipartOverhead = 1 << 20

// Runner generates and persists a report for one stylesheet.
type Runner interface {
	Run(ctx context.Context, name string, content []byte) (*cssreport.Result, error)
}

// Config holds the server settings.
type Config struct {
	Addr         string
	Field        string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	FilesDir     string // served under /files/ when set
}

// Server handles stylesheet uploads.
type Server struct {
	conf      Config
	validator *upload.Validator
	runner    Runner
	views     *Views
	log       *zap.Logger
}

// NewServer wires the upload validator and flow runner into HTTP handlers.
func NewServer(conf Config, validator *upload.Validator, runner Runner, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if conf.Field == "" {
		conf.Field = upload.DefaultField
	}
	views, err := NewViews()
	if err != nil {
		return nil, err
	}
	return &Server{
		conf:      conf,
		validator: validator,
		runner:    runner,
		views:     views,
		log:       log.Named("web"),
	}, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("/cssupload", s.handleUpload)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.conf.FilesDir != "" {
		mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(s.conf.FilesDir))))
	}
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.conf.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.conf.ReadTimeout,
		WriteTimeout: s.conf.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", zap.String("addr", s.conf.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return s.views.renderUpload(buf, uploadPage{
			Title:   "Upload a stylesheet",
			Field:   s.conf.Field,
			Accept:  acceptList(s.validator.Extensions),
			MaxSize: s.validator.Limit(),
		})
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.renderError(w, http.StatusMethodNotAllowed, "405 Method Not Allowed")
		return
	}

	// Leave room above the ceiling so an oversized file is still reported
	// as too large rather than as a broken upload.
	r.Body = http.MaxBytesReader(w, r.Body, s.validator.Limit()+multipartOverhead)

	file, err := s.validator.FromRequest(r, s.conf.Field)
	if err != nil {
		s.log.Info("Upload rejected", zap.Error(err))
		s.renderError(w, statusFor(err), upload.Message(err))
		return
	}

	res, err := s.runner.Run(r.Context(), file.Name, file.Content)
	if err != nil {
		s.log.Error("Report generation failed", zap.String("file", file.Name), zap.Error(err))
		s.renderError(w, statusFor(err), messageFor(err))
		return
	}

	s.render(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return s.views.renderReport(buf, res)
	})
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, func(buf *bytes.Buffer) error {
		return s.views.renderError(buf, message)
	})
}

// render executes into a buffer first so a template failure never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, status int, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.log.Error("Template execution failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// statusFor maps validation and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, upload.ErrUploadFailed):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, upload.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the page message for a flow error. Storage errors show
// their sentinel text only.
func messageFor(err error) string {
	for _, sentinel := range cssreport.FlowErrors {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "The report could not be generated."
}

func acceptList(exts []string) string {
	var b bytes.Buffer
	for i, ext := range exts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}
