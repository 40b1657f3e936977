package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// secretKeyCmd represents the secret-key command
var secretKeyCmd = &cobra.Command{
	Use:   "secret-key",
	Short: "Manage the token signing key",
	Long:  `Manage the token signing key`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'secret-key' requires a subcommand generate")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(secretKeyCmd)
}
