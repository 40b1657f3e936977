package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/portcullis/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show Portcullis configuration attributes and their sources",
	Long: `Show Portcullis configuration attributes and their sources.

The values displayed by this command reflect the current state of the
configuration sources, the environment variables and config file. They may
not reflect the values used by a running Portcullis server. The secret key
is never displayed.

Config file location: /etc/portcullis/portcullis.yml (or PORTCULLIS_CONFIG_PATH)

Example:
  portcullisctl configuration show
  portcullisctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if output == "json" {
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(jsonOutput)
	} else {
		fmt.Print(cfg.FormatText())
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "\nWarning: %v\n", err)
	}
	return nil
}
