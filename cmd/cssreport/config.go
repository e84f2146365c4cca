package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	cssreport "github.com/yacobolo/cssreport"
	"github.com/yacobolo/cssreport/internal/logging"
	"github.com/yacobolo/cssreport/internal/render"
	"github.com/yacobolo/cssreport/internal/storage"
	"github.com/yacobolo/cssreport/internal/upload"
	"github.com/yacobolo/cssreport/internal/web"
)

const defaultConfigPath = ".cssreport.yaml"

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	// Resolve config file path from flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Load config file and env vars
	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	if err := k.Load(posflag.ProviderWithFlag(cmd.Flags(), ".", k, changedFlags(cmd.Flags())), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// changedFlags skips flags left at their default so that config file and
// environment values are not shadowed by flag defaults.
func changedFlags(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(fs, f)
	}
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (CSSREPORT_* prefix)
	if err := k.Load(env.Provider("CSSREPORT_", ".", func(s string) string {
		// CSSREPORT_SERVER_ADDR -> server.addr
		// CSSREPORT_LOG_LEVEL -> log.level
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "CSSREPORT_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	// The deployment this replaces configured its bucket with S3_BUCKET.
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" && k.String("storage.bucket") == "" {
		if err := k.Set("storage.bucket", bucket); err != nil {
			return fmt.Errorf("loading S3_BUCKET: %w", err)
		}
	}

	return nil
}

// buildLogConfig constructs the logger settings from koanf state.
func buildLogConfig() logging.Config {
	level := getStringWithFallback("log-level", "log.level", "normal")
	if getBoolWithFallback("verbose", "verbose", false) {
		level = "debug"
	}
	if getBoolWithFallback("quiet", "quiet", false) {
		level = "none"
	}
	return logging.Config{
		Level:       level,
		Destination: getStringWithFallback("log-file", "log.file", ""),
		Mode:        getStringWithFallback("log-mode", "log.mode", "append"),
		Color:       render.ShouldUseColors(getBoolWithFallback("color", "color", false)),
	}
}

// newLogger builds the process logger from koanf state.
func newLogger() (*zap.Logger, error) {
	log, err := logging.New(buildLogConfig(), os.Stderr, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare logs: %w", err)
	}
	return log, nil
}

// buildUniqueProperties returns the configured allow-list. An explicitly
// empty list is kept so value collection can be turned off.
func buildUniqueProperties() []string {
	for _, key := range []string{"unique-properties", "report.unique-properties"} {
		if k.Exists(key) {
			return append([]string{}, k.Strings(key)...)
		}
	}
	return cssreport.DefaultUniqueProperties()
}

// buildValidator constructs the upload validator from koanf state.
func buildValidator() *upload.Validator {
	v := upload.NewValidator()
	v.MaxSize = getInt64WithFallback("max-size", "upload.max-size", upload.DefaultMaxSize)
	v.Extensions = getStringsWithFallback("extensions", "upload.extensions", []string{"css"})
	v.SniffContent = getBoolWithFallback("sniff-content", "upload.sniff-content", true)
	return v
}

// storageConfig is the resolved storage section.
type storageConfig struct {
	Backend  string
	S3       storage.S3Config
	Dir      string
	BaseURL  string
	SpoolDir string
}

// buildStorageConfig constructs the storage settings from koanf state.
func buildStorageConfig() storageConfig {
	return storageConfig{
		Backend: getStringWithFallback("backend", "storage.backend", "filesystem"),
		S3: storage.S3Config{
			Bucket:    getStringWithFallback("bucket", "storage.bucket", ""),
			Region:    getStringWithFallback("region", "storage.region", ""),
			Endpoint:  getStringWithFallback("endpoint", "storage.endpoint", ""),
			PublicURL: getStringWithFallback("public-url", "storage.public-url", ""),
		},
		Dir:      getStringWithFallback("storage-dir", "storage.dir", "var/reports"),
		BaseURL:  getStringWithFallback("base-url", "storage.base-url", "/files"),
		SpoolDir: getStringWithFallback("spool-dir", "storage.spool-dir", ""),
	}
}

// openStore creates the configured backend. For the filesystem backend the
// directory is returned so the server can publish it.
func openStore(ctx context.Context, conf storageConfig) (storage.Store, string, error) {
	switch conf.Backend {
	case "s3":
		store, err := storage.NewS3Store(ctx, conf.S3)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case "filesystem", "":
		store, err := storage.NewFileStore(conf.Dir, conf.BaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, conf.Dir, nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q (want s3 or filesystem)", conf.Backend)
	}
}

// buildServerConfig constructs the HTTP server settings from koanf state.
func buildServerConfig() web.Config {
	return web.Config{
		Addr:         getStringWithFallback("addr", "server.addr", ":8080"),
		Field:        getStringWithFallback("field", "upload.field", upload.DefaultField),
		ReadTimeout:  getDurationWithFallback("read-timeout", "server.read-timeout", 30*time.Second),
		WriteTimeout: getDurationWithFallback("write-timeout", "server.write-timeout", 30*time.Second),
	}
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getInt64WithFallback checks the flag key first, then the config file key, then returns the default.
func getInt64WithFallback(flagKey, configKey string, defaultVal int64) int64 {
	if k.Exists(flagKey) {
		return k.Int64(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int64(configKey)
	}
	return defaultVal
}

// getDurationWithFallback checks the flag key first, then the config file key, then returns the default.
func getDurationWithFallback(flagKey, configKey string, defaultVal time.Duration) time.Duration {
	if k.Exists(flagKey) {
		return k.Duration(flagKey)
	}
	if k.Exists(configKey) {
		return k.Duration(configKey)
	}
	return defaultVal
}
