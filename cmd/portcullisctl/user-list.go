package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	storegorm "github.com/doodlesbykumbi/portcullis/pkg/server/store/gorm"
)

// userListCmd represents the user list command
var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List usernames in creation order",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := openDatabase(false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to open database: %v\n", err)
			os.Exit(1)
		}

		names, err := storegorm.NewUserStore(database).ListUsernames(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list users: %v\n", err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func init() {
	userCmd.AddCommand(userListCmd)
}
