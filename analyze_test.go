package cssreport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssreport/internal/upload"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestAnalyze_Globs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.css"), "h1{color:red}")
	writeFile(t, filepath.Join(dir, "components", "button.css"), ".btn{color:blue;margin:0}")
	writeFile(t, filepath.Join(dir, "dist", "bundle.css"), "a{color:green}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not css")
	writeFile(t, filepath.Join(dir, ".gitignore"), "dist/\n")

	result, err := Analyze(AnalyzeConfig{
		SourceDir: dir,
		Includes:  []string{"**/*.css"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.FilesDiscovered)
	assert.Equal(t, 1, result.FilesSkipped)
	require.Len(t, result.Files, 2)

	byName := map[string]FileReport{}
	for _, f := range result.Files {
		require.NoError(t, f.Err)
		rel, err := filepath.Rel(dir, f.Path)
		require.NoError(t, err)
		byName[filepath.ToSlash(rel)] = f
	}

	base := byName["base.css"]
	require.NotNil(t, base.Report)
	assert.Equal(t, 1, base.Report.NumSelectors())

	button := byName["components/button.css"]
	require.NotNil(t, button.Report)
	assert.Equal(t, 2, button.Report.TotalDeclarations())
	assert.Equal(t, ".btn", button.Rules[0].Selector)
}

func TestAnalyze_ExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.css")
	bad := filepath.Join(dir, "b.txt")
	writeFile(t, good, "a{color:red} a{color:red}")
	writeFile(t, bad, "a{color:red}")

	result, err := Analyze(AnalyzeConfig{Paths: []string{good, bad, good}}, nil)
	require.NoError(t, err)
	require.Len(t, result.Files, 2, "duplicates are analysed once")

	assert.Equal(t, 2, result.Files[0].Report.NumSelectors())
	assert.Equal(t, []string{"red"}, result.Files[0].Report.ValuesOf("color"))

	assert.Nil(t, result.Files[1].Report)
	require.ErrorIs(t, result.Files[1].Err, upload.ErrUnsupportedFileType)
}

func TestAnalyze_Limits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.less")
	writeFile(t, path, "a{margin:0;color:red}")

	result, err := Analyze(AnalyzeConfig{
		Paths:            []string{path},
		Extensions:       []string{"less"},
		UniqueProperties: []string{"margin"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, map[string][]string{"margin": {"0"}}, result.Files[0].Report.UniqueValues())

	result, err = Analyze(AnalyzeConfig{Paths: []string{path}, Extensions: []string{"less"}, MaxSize: 4}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, result.Files[0].Err, upload.ErrFileTooLarge)
}

func TestAnalyze_BadPattern(t *testing.T) {
	_, err := Analyze(AnalyzeConfig{SourceDir: t.TempDir(), Includes: []string{"[unclosed"}}, nil)
	require.Error(t, err)
}

func TestGenerateReport_RootAPI(t *testing.T) {
	r := GenerateReport("h1{color:red;font-size:12px;}")
	assert.Equal(t, 1, r.NumSelectors())
	assert.Equal(t, map[string]int{"color": 1, "font-size": 1}, r.AttributeCounts())

	defaults := DefaultUniqueProperties()
	defaults[0] = "changed"
	assert.Equal(t, "background", DefaultUniqueProperties()[0])
}
