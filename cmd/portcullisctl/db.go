package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/pkg/db"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
	Long:  `Manage the database schema and migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'db' requires a subcommand (migrate, down, status)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

// openDatabase connects to DATABASE_URL. With migrate set the schema is
// brought up to date first: SQL migrations for PostgreSQL, model
// auto-migration for SQLite.
func openDatabase(migrate bool) (*gorm.DB, error) {
	dbURL := db.URL()
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if migrate && db.IsPostgres(dbURL) {
		if err := runMigrations(); err != nil {
			return nil, err
		}
	}

	database, err := db.Connect(db.Config{URL: dbURL})
	if err != nil {
		return nil, err
	}

	if migrate && !db.IsPostgres(dbURL) {
		if err := db.AutoMigrate(database); err != nil {
			return nil, err
		}
	}
	return database, nil
}
