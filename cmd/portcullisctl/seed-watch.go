package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// seedWatchCmd represents the seed watch command
var seedWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a seed document and re-apply it when it's modified",
	Long: `Apply a seed document, then apply it again every time the file is written.

A document that fails to apply is reported and leaves the database as it was;
the watch continues.

Example:
  portcullisctl seed watch /etc/portcullis/seed.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := newSeedLoader()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := loader.Watch(ctx, args[0], nil); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch seed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	seedCmd.AddCommand(seedWatchCmd)
}
