package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/portcullis/pkg/config"
	"github.com/doodlesbykumbi/portcullis/pkg/seed"
	storegorm "github.com/doodlesbykumbi/portcullis/pkg/server/store/gorm"
)

// seedLoadCmd represents the seed load command
var seedLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Apply a seed document",
	Long: `Apply a seed document in a single transaction.

Groups and permissions are created if missing. Group and object bindings are
replaced for every group and path the document mentions. User bindings are
added. A reference to anything that does not exist aborts the whole load.

Example:
  portcullisctl seed load seed.yml
  portcullisctl seed load --dry-run seed.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		loader, err := newSeedLoader()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		result, err := loader.WithDryRun(dryRun).LoadFromFile(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load seed: %v\n", err)
			os.Exit(1)
		}

		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
	},
}

func init() {
	seedCmd.AddCommand(seedLoadCmd)
	seedLoadCmd.Flags().Bool("dry-run", false, "validate the document without committing")
}

func newSeedLoader() (*seed.Loader, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := openDatabase(false)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	return seed.NewLoader(storegorm.NewAdminStore(database), newLogger(cfg).Named("seed")), nil
}
