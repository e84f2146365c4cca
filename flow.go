package cssreport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yacobolo/cssreport/internal/storage"
)

// FlowErrors are the named persistence failures a Flow can return.
var FlowErrors = []error{storage.ErrNotConfigured, storage.ErrWriteFailed}

// Persister stores a serialized report and its stylesheet.
type Persister interface {
	PersistReport(ctx context.Context, sessionID string, report []byte) (string, error)
	PersistStylesheet(ctx context.Context, sessionID string, content []byte) (string, error)
}

// Result is what one run of the flow produced.
type Result struct {
	SessionID     string
	FileName      string
	Report        *Report
	ReportURL     string
	StylesheetURL string
	Warnings      []string
}

// Flow generates a report for a stylesheet and persists both under a fresh
// session id.
type Flow struct {
	persister        Persister
	uniqueProperties []string
	log              *zap.Logger
	newSessionID     func() (string, error)
}

// NewFlow creates a Flow. A nil uniqueProperties uses the defaults.
func NewFlow(persister Persister, uniqueProperties []string, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	if uniqueProperties == nil {
		uniqueProperties = DefaultUniqueProperties()
	}
	return &Flow{
		persister:        persister,
		uniqueProperties: uniqueProperties,
		log:              log.Named("flow"),
		newSessionID:     newSessionID,
	}
}

// newSessionID returns a time-ordered UUID so stored objects sort by upload.
func newSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Run parses content, then persists the report and the stylesheet. The
// first failure stops the flow.
func (f *Flow) Run(ctx context.Context, name string, content []byte) (*Result, error) {
	if f.persister == nil {
		return nil, storage.ErrNotConfigured
	}

	sessionID, err := f.newSessionID()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	log := f.log.With(zap.String("session", sessionID), zap.String("file", name))

	text := string(content)
	report := GenerateReport(text, WithUniqueProperties(f.uniqueProperties))
	log.Debug("Report generated",
		zap.Int("selectors", report.NumSelectors()),
		zap.Int("declarations", report.TotalDeclarations()))

	encoded, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	reportURL, err := f.persister.PersistReport(ctx, sessionID, encoded)
	if err != nil {
		return nil, err
	}
	cssURL, err := f.persister.PersistStylesheet(ctx, sessionID, content)
	if err != nil {
		return nil, err
	}
	log.Info("Report stored", zap.String("report", reportURL), zap.String("stylesheet", cssURL))

	return &Result{
		SessionID:     sessionID,
		FileName:      name,
		Report:        report,
		ReportURL:     reportURL,
		StylesheetURL: cssURL,
		Warnings:      Coverage(text),
	}, nil
}
