package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/portcullis/pkg/config"
	"github.com/doodlesbykumbi/portcullis/pkg/provision"
	storegorm "github.com/doodlesbykumbi/portcullis/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user with the same validation as POST /api/users.

This is how the first user is created, before anyone can authenticate to the
API. When --password is not given the password is read from the first line of
standard input.

Example:
  portcullisctl user create --username admin --group ops --permission admin
  echo "$ADMIN_PASSWORD" | portcullisctl user create --username admin`,
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("username")
		plaintext, _ := cmd.Flags().GetString("password")
		group, _ := cmd.Flags().GetString("group")
		perms, _ := cmd.Flags().GetStringSlice("permission")
		bind, _ := cmd.Flags().GetBool("bind-permissions")

		if plaintext == "" {
			line, err := readPassword(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
				os.Exit(1)
			}
			plaintext = line
		}

		req := &provision.CreateUserRequest{
			Username:    &username,
			Password:    &plaintext,
			Permissions: perms,
		}
		if group != "" {
			req.Group = &group
		}

		userID, err := createUser(req, bind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created user %s with id %d\n", username, userID)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringP("username", "u", "", "username")
	userCreateCmd.Flags().String("password", "", "password (read from stdin when empty)")
	userCreateCmd.Flags().StringP("group", "g", "", "group the user belongs to")
	userCreateCmd.Flags().StringSlice("permission", nil, "permission to validate, and bind with --bind-permissions (repeatable)")
	userCreateCmd.Flags().Bool("bind-permissions", false, "bind the permissions to the user regardless of bind_permissions_on_create")
	_ = userCreateCmd.MarkFlagRequired("username")
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func createUser(req *provision.CreateUserRequest, bind bool) (int64, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, err
	}

	database, err := openDatabase(false)
	if err != nil {
		return 0, err
	}

	hasher, err := cfg.Hasher()
	if err != nil {
		return 0, err
	}

	p := provision.New(
		storegorm.NewUserStore(database),
		storegorm.NewPermissionStore(database),
		hasher,
		provision.Options{BindPermissions: bind || cfg.BindPermissionsOnCreate},
	)
	return p.CreateUser(context.Background(), req)
}
