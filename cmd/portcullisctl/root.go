package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/portcullis/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "portcullisctl",
	Short: "Portcullis identity and access-control service",
	Long: `Run and administer the Portcullis identity and access-control service.

Configuration is read from $PORTCULLIS_CONFIG_PATH/portcullis.yml and
PORTCULLIS_* environment variables. The database is named by DATABASE_URL.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// loadConfig loads and validates the configuration, exiting on failure
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg *config.Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "portcullis",
		Level:      cfg.HCLogLevel(),
		JSONFormat: cfg.JSONLogFormat(),
		Output:     os.Stderr,
	})
}
