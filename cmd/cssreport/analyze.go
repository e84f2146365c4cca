package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	cssreport "github.com/yacobolo/cssreport"
	"github.com/yacobolo/cssreport/internal/render"
	"github.com/yacobolo/cssreport/internal/storage"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Report statistics for local stylesheets",
	Long: `Analyse the given stylesheets, or every file matched by the include
patterns under the source directory. Files listed in .gitignore are skipped
unless named explicitly.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("source", "", "Directory searched by the include patterns (default .)")
	f.StringSlice("include", nil, "Glob patterns for CSS files to include")
	f.String("output-format", "", "Output format: text|json|yaml|markdown (default: text)")
	f.Bool("rules", false, "List the matched selector blocks")
	f.Bool("persist", false, "Publish each report and stylesheet to the configured storage")
	f.String("backend", "", "Storage backend for --persist: filesystem|s3")
	f.Int64("max-size", 0, "Largest accepted file in bytes")
}

// buildAnalyzeConfig constructs cssreport.AnalyzeConfig from koanf state.
func buildAnalyzeConfig(paths []string) cssreport.AnalyzeConfig {
	config := cssreport.AnalyzeConfig{
		SourceDir:        getStringWithFallback("source", "analyze.source", "."),
		Includes:         getStringsWithFallback("include", "analyze.include", nil),
		Paths:            paths,
		UniqueProperties: buildUniqueProperties(),
		MaxSize:          getInt64WithFallback("max-size", "upload.max-size", 0),
		Extensions:       getStringsWithFallback("extensions", "upload.extensions", nil),
	}
	if len(config.Includes) == 0 && len(paths) == 0 {
		config.Includes = []string{"**/*.css"}
	}
	return config
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	config := buildAnalyzeConfig(args)
	result, err := cssreport.Analyze(config, log)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	entries := make([]render.Entry, 0, len(result.Files))
	failed := 0
	for _, f := range result.Files {
		e := render.Entry{Name: f.Path, Report: f.Report, Rules: f.Rules, Warnings: f.Warnings}
		if f.Err != nil {
			e.Error = f.Err.Error()
			failed++
		}
		entries = append(entries, e)
	}

	if getBoolWithFallback("persist", "analyze.persist", false) {
		if err := persistEntries(cmd.Context(), log, result.Files, entries); err != nil {
			return err
		}
	}

	if !getBoolWithFallback("quiet", "quiet", false) {
		format := render.ParseFormat(getStringWithFallback("output-format", "analyze.output-format", "text"))
		opts := render.Options{
			UseColors: render.ShouldUseColors(getBoolWithFallback("color", "color", false)),
			ShowRules: getBoolWithFallback("rules", "analyze.rules", false),
		}
		if err := render.Write(os.Stdout, entries, format, opts); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if len(result.Files) == 0 {
		return errors.New("no stylesheets matched")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d stylesheets could not be analysed", failed, len(result.Files))
	}
	return nil
}

// persistEntries runs every successfully analysed file through the upload
// flow and records where it was published. Failures are collected so one
// bad upload does not hide the rest.
func persistEntries(ctx context.Context, log *zap.Logger, files []cssreport.FileReport, entries []render.Entry) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conf := buildStorageConfig()
	store, _, err := openStore(ctx, conf)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	flow := cssreport.NewFlow(storage.NewPersister(store, conf.SpoolDir, log), buildUniqueProperties(), log)

	var errs error
	for i, f := range files {
		if f.Err != nil {
			continue
		}
		res, err := flow.Run(ctx, f.Path, f.Content)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("persisting %s: %w", f.Path, err))
			continue
		}
		entries[i].SessionID = res.SessionID
		entries[i].ReportURL = res.ReportURL
		entries[i].StylesheetURL = res.StylesheetURL
	}
	return errs
}
