package cssreport

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/yacobolo/cssreport/internal/cssstats"
	"github.com/yacobolo/cssreport/internal/upload"
)

// AnalyzeConfig selects the local stylesheets to analyse.
type AnalyzeConfig struct {
	SourceDir        string   // root for Includes and for .gitignore lookup
	Includes         []string // doublestar patterns relative to SourceDir
	Paths            []string // explicit files, analysed even when ignored
	UniqueProperties []string // nil uses DefaultUniqueProperties
	MaxSize          int64
	Extensions       []string
}

// FileReport is the analysis of one local file. Err is set when the file
// failed validation; Report is nil in that case.
type FileReport struct {
	Path     string
	Report   *Report
	Rules    []cssstats.Rule
	Warnings []string
	Content  []byte
	Err      error
}

// AnalyzeResult contains the per-file reports and scan statistics.
type AnalyzeResult struct {
	Files           []FileReport
	FilesDiscovered int
	FilesSkipped    int // ignored by .gitignore
}

// Analyze expands the configured patterns and reports on every file found.
// A file that fails validation is recorded with its error and does not stop
// the run.
func Analyze(config AnalyzeConfig, log *zap.Logger) (*AnalyzeResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("analyze")

	files, result, err := expandPatterns(config)
	if err != nil {
		return nil, err
	}
	if result.FilesSkipped > 0 {
		log.Debug("Skipped ignored files", zap.Int("skipped", result.FilesSkipped))
	}

	validator := upload.NewValidator()
	if config.MaxSize > 0 {
		validator.MaxSize = config.MaxSize
	}
	if len(config.Extensions) > 0 {
		validator.Extensions = config.Extensions
	}
	unique := config.UniqueProperties
	if unique == nil {
		unique = DefaultUniqueProperties()
	}

	for _, path := range files {
		log.Debug("Parsing", zap.String("file", path))

		f, err := validator.FromPath(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			result.Files = append(result.Files, FileReport{Path: path, Err: err})
			continue
		}

		text := f.Text()
		blocks := cssstats.ExtractBlocks(text)
		result.Files = append(result.Files, FileReport{
			Path:     path,
			Report:   GenerateReport(text, WithUniqueProperties(unique)),
			Rules:    cssstats.Rules(blocks),
			Warnings: Coverage(text),
			Content:  f.Content,
		})
	}

	return result, nil
}

// expandPatterns resolves explicit paths and include globs, in that order,
// without duplicates.
func expandPatterns(config AnalyzeConfig) ([]string, *AnalyzeResult, error) {
	result := &AnalyzeResult{}
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range config.Paths {
		result.FilesDiscovered++
		add(filepath.Clean(path))
	}

	if len(config.Includes) == 0 {
		return files, result, nil
	}

	sourceDir := config.SourceDir
	if sourceDir == "" {
		sourceDir = "."
	}
	gi := loadGitIgnore(sourceDir)

	for _, pattern := range config.Includes {
		// Use doublestar for ** glob support
		matches, err := doublestar.FilepathGlob(filepath.Join(sourceDir, pattern))
		if err != nil {
			return nil, result, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			result.FilesDiscovered++

			if isIgnored(gi, sourceDir, match) {
				result.FilesSkipped++
				continue
			}
			add(match)
		}
	}

	return files, result, nil
}

// loadGitIgnore compiles dir/.gitignore. A missing file means nothing is
// ignored.
func loadGitIgnore(dir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

func isIgnored(gi *ignore.GitIgnore, sourceDir, path string) bool {
	if gi == nil {
		return false
	}
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil {
		return false
	}
	return gi.MatchesPath(filepath.ToSlash(rel))
}
