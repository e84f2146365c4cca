package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .cssreport.yaml config file",
	Long:  `Create a .cssreport.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return writeDefaultConfig(defaultConfigPath, force)
	},
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}

const defaultConfig = `# cssreport configuration

# Shared settings
verbose: false
color: false

log:
  level: normal            # none | normal | debug
  file: ""
  mode: append             # append | overwrite

report:
  unique-properties:
    - background
    - color
    - font-size
    - font-family

# Upload validation (web form and local files)
upload:
  field: cssfile
  max-size: 5000000        # bytes
  extensions:
    - css
  sniff-content: true

# Where generated reports and stylesheets are published
storage:
  backend: filesystem      # filesystem | s3
  dir: var/reports
  base-url: /files
  bucket: ""               # falls back to $S3_BUCKET
  region: ""
  endpoint: ""
  public-url: ""
  spool-dir: ""            # defaults to the system temp dir

server:
  addr: ":8080"
  read-timeout: 30s
  write-timeout: 30s

# Local analysis
analyze:
  source: .
  include:
    - "**/*.css"
  output-format: text      # text | json | yaml | markdown
  rules: false
  persist: false
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
