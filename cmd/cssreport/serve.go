package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cssreport "github.com/yacobolo/cssreport"
	"github.com/yacobolo/cssreport/internal/storage"
	"github.com/yacobolo/cssreport/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stylesheet upload form",
	Long: `Serve an upload form. Each accepted stylesheet is analysed, and the report
and the stylesheet are published to the configured storage under a fresh
session id.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "Listen address (default :8080)")
	f.String("field", "", "Multipart field carrying the file (default cssfile)")
	f.Int64("max-size", 0, "Largest accepted upload in bytes")
	f.String("backend", "", "Storage backend: filesystem|s3")
	f.String("storage-dir", "", "Directory for the filesystem backend")
	f.String("base-url", "", "URL prefix of published files for the filesystem backend")
	f.String("bucket", "", "S3 bucket (falls back to $S3_BUCKET)")
	f.String("region", "", "S3 region")
	f.String("endpoint", "", "S3-compatible endpoint URL")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	conf := buildStorageConfig()
	store, filesDir, err := openStore(ctx, conf)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	flow := cssreport.NewFlow(storage.NewPersister(store, conf.SpoolDir, log), buildUniqueProperties(), log)

	serverConf := buildServerConfig()
	serverConf.FilesDir = filesDir
	srv, err := web.NewServer(serverConf, buildValidator(), flow, log)
	if err != nil {
		return err
	}

	log.Info("Serving uploads",
		zap.String("addr", serverConf.Addr),
		zap.String("storage", conf.Backend))
	return srv.ListenAndServe(ctx)
}
