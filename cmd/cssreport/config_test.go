package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssreport/internal/upload"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssreport.yaml")
	configContent := `
verbose: true

report:
  unique-properties:
    - margin
    - color

upload:
  max-size: 1000

storage:
  backend: s3
  bucket: reports
  region: eu-west-1

server:
  addr: ":9090"
  read-timeout: 5s
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.True(t, k.Bool("verbose"))
	assert.Equal(t, []string{"margin", "color"}, k.Strings("report.unique-properties"))
	assert.Equal(t, int64(1000), k.Int64("upload.max-size"))
	assert.Equal(t, "s3", k.String("storage.backend"))
	assert.Equal(t, "reports", k.String("storage.bucket"))
	assert.Equal(t, ":9090", k.String("server.addr"))
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// Point to non-existent config, should not error
	require.NoError(t, loadConfigFromPath("/nonexistent/.cssreport.yaml"))

	assert.Equal(t, []string{"background", "color", "font-size", "font-family"}, buildUniqueProperties())
	assert.Equal(t, ":8080", buildServerConfig().Addr)
	assert.Equal(t, "filesystem", buildStorageConfig().Backend)
}

func TestBuildUniqueProperties_EmptyListDisablesCollection(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssreport.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("report:\n  unique-properties: []\n"), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	props := buildUniqueProperties()
	assert.NotNil(t, props)
	assert.Empty(t, props)
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssreport.yaml")
	configContent := `
server:
  addr: from-file
analyze:
  persist: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	// Set env vars that should override config file
	t.Setenv("CSSREPORT_SERVER_ADDR", "from-env")
	t.Setenv("CSSREPORT_ANALYZE_PERSIST", "true")

	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "from-env", k.String("server.addr"))
	assert.True(t, k.Bool("analyze.persist"))
}

func TestS3BucketEnvFallback(t *testing.T) {
	resetKoanf()
	t.Setenv("S3_BUCKET", "legacy-bucket")

	require.NoError(t, loadConfigFromPath("/nonexistent/.cssreport.yaml"))
	assert.Equal(t, "legacy-bucket", buildStorageConfig().S3.Bucket)
}

func TestS3BucketEnvFallback_ConfigWins(t *testing.T) {
	resetKoanf()
	t.Setenv("S3_BUCKET", "legacy-bucket")

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssreport.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  bucket: configured\n"), 0644))

	require.NoError(t, loadConfigFromPath(configPath))
	assert.Equal(t, "configured", buildStorageConfig().S3.Bucket)
}

func TestBuildAnalyzeConfig_Defaults(t *testing.T) {
	resetKoanf()

	config := buildAnalyzeConfig(nil)
	assert.Equal(t, ".", config.SourceDir)
	assert.Equal(t, []string{"**/*.css"}, config.Includes)
	assert.Empty(t, config.Paths)
	assert.Equal(t, []string{"background", "color", "font-size", "font-family"}, config.UniqueProperties)
}

func TestBuildAnalyzeConfig_ExplicitPathsSkipDefaultInclude(t *testing.T) {
	resetKoanf()

	config := buildAnalyzeConfig([]string{"site.css"})
	assert.Equal(t, []string{"site.css"}, config.Paths)
	assert.Empty(t, config.Includes)
}

func TestBuildAnalyzeConfig_FromConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssreport.yaml")
	configContent := `
analyze:
  source: web/styles
  include:
    - "components/**/*.css"
upload:
  max-size: 2048
  extensions:
    - css
    - scss
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	config := buildAnalyzeConfig(nil)
	assert.Equal(t, "web/styles", config.SourceDir)
	assert.Equal(t, []string{"components/**/*.css"}, config.Includes)
	assert.Equal(t, int64(2048), config.MaxSize)
	assert.Equal(t, []string{"css", "scss"}, config.Extensions)
}

func TestBuildValidator_Defaults(t *testing.T) {
	resetKoanf()

	v := buildValidator()
	assert.Equal(t, int64(upload.DefaultMaxSize), v.MaxSize)
	assert.Equal(t, []string{"css"}, v.Extensions)
	assert.True(t, v.SniffContent)
}

func TestBuildServerConfig_FromConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssreport.yaml")
	configContent := `
upload:
  field: stylesheet
server:
  addr: "127.0.0.1:9000"
  read-timeout: 5s
  write-timeout: 1m
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	conf := buildServerConfig()
	assert.Equal(t, "127.0.0.1:9000", conf.Addr)
	assert.Equal(t, "stylesheet", conf.Field)
	assert.Equal(t, 5*time.Second, conf.ReadTimeout)
	assert.Equal(t, time.Minute, conf.WriteTimeout)
}

func TestBuildLogConfig(t *testing.T) {
	resetKoanf()
	assert.Equal(t, "normal", buildLogConfig().Level)

	require.NoError(t, k.Set("verbose", true))
	assert.Equal(t, "debug", buildLogConfig().Level)

	require.NoError(t, k.Set("quiet", true))
	assert.Equal(t, "none", buildLogConfig().Level)
}

func TestOpenStore(t *testing.T) {
	ctx := t.Context()

	dir := t.TempDir()
	store, filesDir, err := openStore(ctx, storageConfig{Backend: "filesystem", Dir: dir, BaseURL: "/files"})
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Equal(t, dir, filesDir)

	_, _, err = openStore(ctx, storageConfig{Backend: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")

	_, _, err = openStore(ctx, storageConfig{Backend: "s3"})
	require.Error(t, err)
}

func TestInitCommand_CreatesConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cmd := rootCmd
	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())

	// Verify file was created
	data, err := os.ReadFile(".cssreport.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "unique-properties:")
	assert.Contains(t, string(data), "storage:")
	assert.Contains(t, string(data), "server:")
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// Create existing file
	require.NoError(t, os.WriteFile(".cssreport.yaml", []byte("existing"), 0644))

	cmd := rootCmd
	cmd.SetArgs([]string{"init"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// Create existing file
	require.NoError(t, os.WriteFile(".cssreport.yaml", []byte("existing"), 0644))

	cmd := rootCmd
	cmd.SetArgs([]string{"init", "--force"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(".cssreport.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "font-family")
}

func TestDefaultConfig_Loads(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	path := filepath.Join(dir, ".cssreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(defaultConfig), 0644))
	require.NoError(t, loadConfigFromPath(path))

	assert.Equal(t, "filesystem", buildStorageConfig().Backend)
	assert.Equal(t, 30*time.Second, buildServerConfig().ReadTimeout)
	assert.Equal(t, int64(5000000), buildValidator().MaxSize)
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
}

func TestCompletionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"completion", "bash"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "cssreport")
}

func TestGetStringWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, "default", getStringWithFallback("flag-key", "config.key", "default"))
}

func TestGetBoolWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.False(t, getBoolWithFallback("flag-key", "config.key", false))
	assert.True(t, getBoolWithFallback("flag-key", "config.key", true))
}

func TestGetInt64WithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, int64(42), getInt64WithFallback("flag-key", "config.key", 42))
}

func TestGetStringsWithFallback(t *testing.T) {
	resetKoanf()

	assert.Equal(t, []string{"a"}, getStringsWithFallback("flag-key", "config.key", []string{"a"}))

	require.NoError(t, k.Set("config.key", []string{"b"}))
	assert.Equal(t, []string{"b"}, getStringsWithFallback("flag-key", "config.key", []string{"a"}))

	require.NoError(t, k.Set("flag-key", []string{"c"}))
	assert.Equal(t, []string{"c"}, getStringsWithFallback("flag-key", "config.key", []string{"a"}))
}

func TestGetDurationWithFallback(t *testing.T) {
	resetKoanf()

	assert.Equal(t, time.Second, getDurationWithFallback("flag-key", "config.key", time.Second))
}
